// Package main is the entry point for the foldergraph server.
//
// The server exposes every folder graph channel over HTTP (POST /ipc/<name>)
// and a WebSocket (/ws), with Prometheus metrics on /metrics.
//
// Configuration:
//   - Defaults for a local single-user setup
//   - A YAML or TOML file (-config, or $FOLDERGRAPH_CONFIG)
//   - Environment variables override the file
//   - -port overrides everything
//
// Usage:
//
//	./server -config ~/.config/foldergraph/config.yaml
//	PORT=9000 LOG_LEVEL=debug ./server
//
// Signals:
//   - SIGINT, SIGTERM: Graceful shutdown
package main
