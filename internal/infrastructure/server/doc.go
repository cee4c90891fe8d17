// Package server assembles the foldergraph HTTP server from configuration.
package server
