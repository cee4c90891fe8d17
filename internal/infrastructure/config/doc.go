// Package config loads service configuration.
//
// Values are layered: built-in defaults, then an optional YAML or TOML file
// (-config flag or FOLDERGRAPH_CONFIG), then environment variables.
//
// Configuration Sections:
//   - Server: listen address, CORS origins, response compression
//   - Storage: data directory (worlds live in data_dir/worlds) and trash
//   - Scan: glob patterns hidden from directory listings
//   - Refresh: concurrent rescans per refresh
//   - Logging: level, format and outputs
//   - RateLimit: per-IP rate limiting
//
// Example Usage:
//
//	cfg, err := config.Load(*configPath)
//	fmt.Printf("Listening on %s\n", cfg.Addr())
//
// Environment Variables:
//   - HOST, PORT, CORS_ORIGINS, COMPRESS
//   - DATA_DIR, TRASH_DIR, SCAN_IGNORE, REFRESH_CONCURRENCY
//   - LOG_LEVEL, LOG_DEV, LOG_OUTPUTS
//   - RATE_LIMIT_RPS, RATE_LIMIT_BURST, RATE_LIMIT_ENABLED
package config
