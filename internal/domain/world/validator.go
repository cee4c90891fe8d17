package world

import (
	"context"
	"errors"
	"io/fs"
	"os"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/GriffinCanCode/foldergraph/internal/shared/failure"
	"github.com/GriffinCanCode/foldergraph/internal/shared/types"
)

// DefaultConcurrency bounds the number of directories rescanned at once
const DefaultConcurrency = 8

// Validator brings a graph in line with the filesystem
type Validator struct {
	scanner     Scanner
	concurrency int
	logger      *zap.Logger
}

// NewValidator creates a validator. Non-positive concurrency uses
// DefaultConcurrency; a nil logger discards output.
func NewValidator(scanner Scanner, concurrency int, logger *zap.Logger) *Validator {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Validator{scanner: scanner, concurrency: concurrency, logger: logger}
}

type probe struct {
	gone   bool
	folder *types.ScannedFolder
}

// Refresh drops nodes whose directory no longer exists, drops edges that
// touched them, and rescans every surviving node. A node whose directory
// exists but cannot be listed keeps its previous contents. Duplicate node
// ids keep their first occurrence.
func (v *Validator) Refresh(ctx context.Context, nodes []types.GraphNode, edges []types.GraphEdge) ([]types.GraphNode, []types.GraphEdge, error) {
	const op = "refresh"

	unique := make([]types.GraphNode, 0, len(nodes))
	seen := make(map[string]struct{}, len(nodes))
	for _, n := range nodes {
		if _, dup := seen[n.ID]; dup {
			continue
		}
		seen[n.ID] = struct{}{}
		unique = append(unique, n)
	}

	probes := make([]probe, len(unique))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(v.concurrency)

	for i := range unique {
		dirPath := unique[i].Data.DirPath
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			info, err := os.Stat(dirPath)
			if dirPath == "" || errors.Is(err, fs.ErrNotExist) || (err == nil && !info.IsDir()) {
				probes[i].gone = true
				return nil
			}

			folder, err := v.scanner.Scan(gctx, dirPath)
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				v.logger.Warn("Keeping stale node contents", zap.String("path", dirPath), zap.Error(err))
				return nil
			}
			probes[i].folder = folder
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, failure.IO(op, "", err)
	}

	live := make([]types.GraphNode, 0, len(unique))
	ids := make(map[string]struct{}, len(unique))
	for i, n := range unique {
		p := probes[i]
		if p.gone {
			v.logger.Info("Dropping vanished node", zap.String("id", n.ID), zap.String("path", n.Data.DirPath))
			continue
		}
		if p.folder != nil {
			n.Data.Files = p.folder.Files
			n.Data.Subfolders = p.folder.Subfolders
		}
		live = append(live, n)
		ids[n.ID] = struct{}{}
	}

	return live, liveEdges(edges, ids), nil
}
