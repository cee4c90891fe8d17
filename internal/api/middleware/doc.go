/*
Package middleware holds the gin middleware stack of the HTTP server:
request ids with access logging, panic recovery, CORS, per-IP rate limiting
and gzip compression.
*/
package middleware
