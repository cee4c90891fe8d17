package world

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/foldergraph/internal/providers/filesystem"
	"github.com/GriffinCanCode/foldergraph/internal/shared/failure"
	"github.com/GriffinCanCode/foldergraph/internal/shared/id"
	"github.com/GriffinCanCode/foldergraph/internal/shared/paths"
	"github.com/GriffinCanCode/foldergraph/internal/shared/types"
)

// Store owns the worlds directory. Writers are serialised by an in-process
// mutex and an advisory lock on the lock file, so several processes sharing
// a data directory do not lose index rows.
type Store struct {
	dir    string
	mu     sync.Mutex
	ids    *id.Generator
	now    func() time.Time
	logger *zap.Logger
}

// NewStore creates a store rooted at the worlds directory dir. A nil logger
// discards output.
func NewStore(dir string, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		dir:    dir,
		ids:    id.Default(),
		now:    time.Now,
		logger: logger,
	}
}

// Dir returns the worlds directory
func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) indexPath() string {
	return filepath.Join(s.dir, paths.IndexFile)
}

// Save upserts the world anchored at rootPath. An existing world keeps its
// id and payload file; a new one gets a fresh id.
func (s *Store) Save(ctx context.Context, rootPath string, nodes []types.GraphNode, edges []types.GraphEdge) (*IndexEntry, error) {
	const op = "save-world"

	if err := ctx.Err(); err != nil {
		return nil, failure.IO(op, rootPath, err)
	}
	if rootPath == "" || !filesystem.IsDir(rootPath) {
		return nil, failure.New(failure.RootMissing, op, rootPath, "folder does not exist")
	}
	root, err := paths.Normalize(rootPath)
	if err != nil {
		return nil, failure.IO(op, rootPath, err)
	}

	edges, err = ValidateGraph(op, nodes, edges)
	if err != nil {
		return nil, err
	}
	data, err := sonic.MarshalIndent(Payload{Nodes: nodes, Edges: edges}, "", "  ")
	if err != nil {
		return nil, failure.IO(op, root, fmt.Errorf("encode world: %w", err))
	}

	unlock, err := s.lock(op)
	if err != nil {
		return nil, err
	}
	defer unlock()

	index, _, err := s.readIndex(op)
	if err != nil {
		return nil, err
	}

	pos := -1
	for i := range index {
		if index[i].RootPath == root {
			pos = i
			break
		}
	}

	var entry IndexEntry
	if pos >= 0 {
		entry = index[pos]
	} else {
		worldID := s.ids.NewWorldID().String()
		name := worldName(root)
		entry = IndexEntry{
			ID:        worldID,
			File:      fmt.Sprintf("%s-%s%s", worldID, name, paths.PayloadExt),
			WorldName: name,
			RootPath:  root,
		}
	}
	entry.LastModified = s.now().UTC()

	// payload first: a crash before the index write leaves an orphan file,
	// never an index row pointing at nothing
	if err := writeFileAtomic(filepath.Join(s.dir, entry.File), data); err != nil {
		return nil, failure.IO(op, entry.File, err)
	}

	if pos >= 0 {
		index[pos] = entry
	} else {
		index = append(index, entry)
	}
	if err := s.writeIndex(op, index); err != nil {
		return nil, err
	}

	s.logger.Info("World saved",
		zap.String("id", entry.ID),
		zap.String("file", entry.File),
		zap.String("root", entry.RootPath),
		zap.Bool("created", pos < 0))
	return &entry, nil
}

// Load reads a saved world. It fails with RootMissing when the world's root
// node directory is gone; other vanished nodes are left for a refresh.
func (s *Store) Load(ctx context.Context, file string) (*Payload, error) {
	const op = "load-world"

	if err := ctx.Err(); err != nil {
		return nil, failure.IO(op, file, err)
	}
	if err := validPayloadName(file); err != nil {
		return nil, failure.Wrap(failure.InvalidName, op, file, err)
	}

	data, err := os.ReadFile(filepath.Join(s.dir, file))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, failure.New(failure.NotFound, op, file, "world does not exist")
	}
	if err != nil {
		return nil, failure.IO(op, file, err)
	}

	var payload Payload
	if err := sonic.Unmarshal(data, &payload); err != nil {
		return nil, failure.Wrap(failure.Corrupt, op, file, err)
	}
	root, ok := FindRoot(payload.Nodes)
	if !ok {
		return nil, failure.New(failure.Corrupt, op, file, "world has no nodes")
	}
	if root.Data.DirPath == "" || !filesystem.IsDir(root.Data.DirPath) {
		return nil, failure.New(failure.RootMissing, op, root.Data.DirPath, "world root folder does not exist")
	}
	if payload.Edges == nil {
		payload.Edges = []types.GraphEdge{}
	}
	return &payload, nil
}

// Delete removes a world's index row, then its payload file
func (s *Store) Delete(ctx context.Context, file string) error {
	const op = "delete-world"

	if err := ctx.Err(); err != nil {
		return failure.IO(op, file, err)
	}
	if err := validPayloadName(file); err != nil {
		return failure.Wrap(failure.InvalidName, op, file, err)
	}

	unlock, err := s.lock(op)
	if err != nil {
		return err
	}
	defer unlock()

	index, _, err := s.readIndex(op)
	if err != nil {
		return err
	}
	kept := make([]IndexEntry, 0, len(index))
	for _, e := range index {
		if e.File != file {
			kept = append(kept, e)
		}
	}

	payloadPath := filepath.Join(s.dir, file)
	hasPayload := filesystem.Exists(payloadPath)
	if len(kept) == len(index) && !hasPayload {
		return failure.New(failure.NotFound, op, file, "world does not exist")
	}

	if len(kept) != len(index) {
		if err := s.writeIndex(op, kept); err != nil {
			return err
		}
	}
	if hasPayload {
		if err := os.Remove(payloadPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn("Orphaned world payload", zap.String("file", file), zap.Error(err))
			return failure.IO(op, file, err)
		}
	}

	s.logger.Info("World deleted", zap.String("file", file))
	return nil
}

// List returns the saved worlds whose root folder and payload still exist.
// Stale rows are removed from the index on disk.
func (s *Store) List(ctx context.Context) ([]IndexEntry, error) {
	const op = "list-worlds"

	if err := ctx.Err(); err != nil {
		return nil, failure.IO(op, s.dir, err)
	}

	unlock, err := s.lock(op)
	if err != nil {
		return nil, err
	}
	defer unlock()

	index, exists, err := s.readIndex(op)
	if err != nil {
		return nil, err
	}
	if !exists {
		return []IndexEntry{}, nil
	}

	valid := make([]IndexEntry, 0, len(index))
	for _, e := range index {
		switch {
		case !filesystem.Exists(e.RootPath):
			s.logger.Info("Pruning world with missing root", zap.String("file", e.File), zap.String("root", e.RootPath))
		case e.File == "" || !filesystem.Exists(filepath.Join(s.dir, e.File)):
			s.logger.Warn("Pruning world with missing payload", zap.String("file", e.File), zap.String("root", e.RootPath))
		default:
			valid = append(valid, e)
		}
	}

	if len(valid) != len(index) {
		if err := s.writeIndex(op, valid); err != nil {
			return nil, err
		}
	}
	return valid, nil
}

// lock takes the writer lock. The returned func releases it.
func (s *Store) lock(op string) (func(), error) {
	s.mu.Lock()

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		s.mu.Unlock()
		return nil, failure.IO(op, s.dir, err)
	}
	f, err := os.OpenFile(filepath.Join(s.dir, paths.LockFile), os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		s.mu.Unlock()
		return nil, failure.IO(op, s.dir, err)
	}
	if err := lockFile(f); err != nil {
		f.Close()
		s.mu.Unlock()
		return nil, failure.IO(op, f.Name(), fmt.Errorf("lock index: %w", err))
	}

	return func() {
		if err := unlockFile(f); err != nil {
			s.logger.Warn("Failed to unlock index", zap.Error(err))
		}
		f.Close()
		s.mu.Unlock()
	}, nil
}

// readIndex loads the index. A missing index is empty, not an error.
func (s *Store) readIndex(op string) ([]IndexEntry, bool, error) {
	data, err := os.ReadFile(s.indexPath())
	if errors.Is(err, fs.ErrNotExist) {
		return []IndexEntry{}, false, nil
	}
	if err != nil {
		return nil, false, failure.IO(op, s.indexPath(), err)
	}

	var index []IndexEntry
	if err := sonic.Unmarshal(data, &index); err != nil {
		return nil, true, failure.Wrap(failure.Corrupt, op, s.indexPath(), err)
	}
	if index == nil {
		index = []IndexEntry{}
	}
	return index, true, nil
}

func (s *Store) writeIndex(op string, index []IndexEntry) error {
	data, err := sonic.MarshalIndent(index, "", "  ")
	if err != nil {
		return failure.IO(op, s.indexPath(), fmt.Errorf("encode index: %w", err))
	}
	if err := writeFileAtomic(s.indexPath(), data); err != nil {
		return failure.IO(op, s.indexPath(), err)
	}
	return nil
}

// worldName is the display name of a world: the base name of its root
func worldName(root string) string {
	name := filepath.Base(root)
	if paths.ValidateFileName(name) != nil {
		return "root"
	}
	return name
}

// validPayloadName rejects anything that is not a plain payload file name
// inside the worlds directory
func validPayloadName(file string) error {
	if err := paths.ValidateFileName(file); err != nil {
		return err
	}
	if file == paths.IndexFile || file == paths.LockFile {
		return fmt.Errorf("%q is reserved", file)
	}
	return nil
}
