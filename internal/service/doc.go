// Package service dispatches named channels to the core operations.
//
// Every operation the UI can request (scan-folder, create-file, save-world
// and so on) is registered as a Channel. Transports hand the registry a
// channel name plus raw JSON arguments and get back the uniform Result
// envelope; classified failures never escape as Go errors.
//
// Components:
//   - Registry: channel catalog and invoker
//   - Services: the providers and stores channels operate on
//   - RegisterChannels: wires every channel to Services
//
// Example Usage:
//
//	registry := service.NewRegistry(logger).WithObserver(metrics.RecordChannelCall)
//	if err := service.RegisterChannels(registry, services); err != nil {
//		return err
//	}
//	result, err := registry.Invoke(ctx, "scan-folder", []byte(`{"dirPath":"/tmp"}`))
package service
