package clipboard

import (
	"context"
	"path/filepath"
	"sync"

	osclip "github.com/atotto/clipboard"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/foldergraph/internal/providers/filesystem"
	"github.com/GriffinCanCode/foldergraph/internal/shared/failure"
	"github.com/GriffinCanCode/foldergraph/internal/shared/paths"
	"github.com/GriffinCanCode/foldergraph/internal/shared/types"
)

// writeAll is a package-level variable to allow mocking in tests
var writeAll = osclip.WriteAll

// Provider holds the current clipboard item and mirrors copied paths to the
// OS clipboard
type Provider struct {
	mu      sync.RWMutex
	current *types.ClipboardItem
	logger  *zap.Logger
}

// NewProvider creates a clipboard provider. A nil logger discards output.
func NewProvider(logger *zap.Logger) *Provider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Provider{logger: logger}
}

// CopyPath writes the absolute form of path to the OS clipboard and records a
// path-only clipboard item, which paste refuses
func (p *Provider) CopyPath(ctx context.Context, path string) (types.ClipboardItem, error) {
	const op = "copy-path"

	if err := ctx.Err(); err != nil {
		return types.ClipboardItem{}, failure.IO(op, path, err)
	}
	if path == "" || !filesystem.Exists(path) {
		return types.ClipboardItem{}, failure.New(failure.NotFound, op, path, "item does not exist")
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return types.ClipboardItem{}, failure.IO(op, path, err)
	}
	if err := writeAll(abs); err != nil {
		p.logger.Warn("OS clipboard write failed", zap.String("path", abs), zap.Error(err))
		return types.ClipboardItem{}, failure.IO(op, abs, err)
	}

	item := types.ClipboardItem{ItemPath: abs, Kind: types.KindPath}
	p.set(item)
	return item, nil
}

// CopyItem records a file or folder as the source of the next paste
func (p *Provider) CopyItem(ctx context.Context, path string, kind types.ItemKind) (types.ClipboardItem, error) {
	const op = "copy-item"

	if err := ctx.Err(); err != nil {
		return types.ClipboardItem{}, failure.IO(op, path, err)
	}
	if kind != types.KindFile && kind != types.KindFolder {
		return types.ClipboardItem{}, failure.New(failure.InvalidClipboard, op, path, "only files and folders can be copied")
	}
	if path == "" || !filesystem.Exists(path) {
		return types.ClipboardItem{}, failure.New(failure.NotFound, op, path, "item does not exist")
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return types.ClipboardItem{}, failure.IO(op, path, err)
	}

	item := types.ClipboardItem{ItemPath: abs, Kind: kind}
	p.set(item)
	return item, nil
}

// Current returns the recorded clipboard item, if any
func (p *Provider) Current() (types.ClipboardItem, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.current == nil {
		return types.ClipboardItem{}, false
	}
	return *p.current, true
}

// Forget drops the recorded file or folder when it is path or lies inside
// it, so a later paste does not reach for an item that was moved or trashed.
// It reports whether the item was dropped.
func (p *Provider) Forget(path string) bool {
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.current == nil || p.current.Kind == types.KindPath || !paths.IsWithin(p.current.ItemPath, abs) {
		return false
	}
	p.logger.Debug("Clipboard item forgotten", zap.String("path", p.current.ItemPath))
	p.current = nil
	return true
}

func (p *Provider) set(item types.ClipboardItem) {
	p.mu.Lock()
	p.current = &item
	p.mu.Unlock()
	p.logger.Debug("Clipboard updated", zap.String("path", item.ItemPath), zap.String("type", string(item.Kind)))
}
