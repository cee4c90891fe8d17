package middleware

import (
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/klauspost/compress/gzip"
)

type gzipWriter struct {
	gin.ResponseWriter
	writer *gzip.Writer
}

func (g *gzipWriter) Write(data []byte) (int, error) {
	g.Header().Del("Content-Length")
	return g.writer.Write(data)
}

func (g *gzipWriter) WriteString(s string) (int, error) {
	g.Header().Del("Content-Length")
	return g.writer.Write([]byte(s))
}

func (g *gzipWriter) WriteHeader(code int) {
	g.Header().Del("Content-Length")
	g.ResponseWriter.WriteHeader(code)
}

// Compress gzips responses for clients that accept it. Requests whose path
// starts with one of the excluded prefixes pass through untouched.
func Compress(level int, excluded ...string) gin.HandlerFunc {
	pool := sync.Pool{
		New: func() any {
			gz, err := gzip.NewWriterLevel(io.Discard, level)
			if err != nil {
				gz, _ = gzip.NewWriterLevel(io.Discard, gzip.DefaultCompression)
			}
			return gz
		},
	}

	return func(c *gin.Context) {
		if !acceptsGzip(c.Request, excluded) {
			c.Next()
			return
		}

		gz := pool.Get().(*gzip.Writer)
		defer pool.Put(gz)
		gz.Reset(c.Writer)

		c.Header("Content-Encoding", "gzip")
		c.Header("Vary", "Accept-Encoding")
		c.Writer = &gzipWriter{ResponseWriter: c.Writer, writer: gz}
		defer func() {
			if c.Writer.Size() < 0 {
				// nothing written; skip the gzip footer
				gz.Reset(io.Discard)
			}
			_ = gz.Close()
		}()

		c.Next()
	}
}

func acceptsGzip(r *http.Request, excluded []string) bool {
	if r.Method == http.MethodHead || r.Header.Get("Upgrade") != "" {
		return false
	}
	if !strings.Contains(r.Header.Get("Accept-Encoding"), "gzip") {
		return false
	}
	for _, prefix := range excluded {
		if strings.HasPrefix(r.URL.Path, prefix) {
			return false
		}
	}
	return true
}
