// Package id provides identifier generation for the backend.
//
// Two families of identifiers exist:
//   - ULIDs for things that are minted once and persisted (world ids,
//     request ids). They are unique and k-sortable.
//   - Name-based UUIDs for filesystem objects. The same cleaned absolute
//     path always yields the same id, so graph nodes and entries keep their
//     identity across rescans.
package id

import (
	"crypto/rand"
	"fmt"
	"io"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// WorldID identifies a saved world
type WorldID string

// RequestID identifies an API request
type RequestID string

// PathID identifies a file or folder by its location
type PathID string

const (
	RequestPrefix = "req"
)

// pathNamespace scopes path-derived UUIDs to this application
var pathNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://foldergraph.local/path"))

// Generator generates ULIDs with optional prefixes
type Generator struct {
	entropy   io.Reader
	entropyMu sync.Mutex // Protects entropy reader
}

var (
	defaultGenerator *Generator
	once             sync.Once
)

// Default returns the singleton generator instance
func Default() *Generator {
	once.Do(func() {
		defaultGenerator = NewGenerator()
	})
	return defaultGenerator
}

// NewGenerator creates a generator backed by crypto/rand with monotonic
// entropy, so ids minted within the same millisecond still sort in order
func NewGenerator() *Generator {
	return &Generator{
		entropy: ulid.Monotonic(rand.Reader, 0),
	}
}

// Generate creates a new ULID
func (g *Generator) Generate() ulid.ULID {
	g.entropyMu.Lock()
	defer g.entropyMu.Unlock()

	return ulid.MustNew(ulid.Timestamp(time.Now()), g.entropy)
}

// GenerateString creates a new ULID as a string
func (g *Generator) GenerateString() string {
	return g.Generate().String()
}

// GenerateWithPrefix creates a prefixed ULID string
func (g *Generator) GenerateWithPrefix(prefix string) string {
	return fmt.Sprintf("%s_%s", prefix, g.GenerateString())
}

// NewWorldID mints a world id. World ids end up in payload filenames, so
// they carry no prefix and use only Crockford base32 characters.
func (g *Generator) NewWorldID() WorldID {
	return WorldID(g.GenerateString())
}

// NewRequestID generates a new request ID
func NewRequestID() RequestID {
	return RequestID(Default().GenerateWithPrefix(RequestPrefix))
}

// ForPath derives the stable id of a filesystem location. Relative paths are
// made absolute against the working directory first.
func ForPath(path string) PathID {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return PathID(uuid.NewSHA1(pathNamespace, []byte(filepath.Clean(path))).String())
}

func (id WorldID) String() string   { return string(id) }
func (id RequestID) String() string { return string(id) }
func (id PathID) String() string    { return string(id) }
