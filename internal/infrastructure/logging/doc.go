// Package logging provides structured logging using uber/zap.
//
// Two modes are supported:
//   - Production: JSON output for machine parsing
//   - Development: colored console output for human readability
//
// Components receive a plain *zap.Logger, usually from Component, and
// treat nil as zap.NewNop().
//
// Example Usage:
//
//	logger, err := logging.New(logging.Config{Level: "info"})
//	store := world.NewStore(dir, logger.Component("worlds"))
//	logger.Info("Server starting", zap.String("addr", addr))
package logging
