/*
Package monitoring provides Prometheus metrics for the service.

# Overview

Metrics are registered on a private registry owned by each Metrics value and
cover HTTP requests, channel invocations (duration and failures by error
kind), saved worlds and WebSocket traffic.

# Usage

	metrics := monitoring.NewMetrics()
	router.Use(monitoring.Middleware(metrics))
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	registry.WithObserver(metrics.RecordChannelCall)
*/
package monitoring
