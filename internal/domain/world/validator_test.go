package world

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/GriffinCanCode/foldergraph/internal/providers/filesystem"
	"github.com/GriffinCanCode/foldergraph/internal/shared/failure"
	"github.com/GriffinCanCode/foldergraph/internal/shared/types"
)

type flakyScanner struct {
	Scanner
	failOn string
}

func (f flakyScanner) Scan(ctx context.Context, dirPath string) (*types.ScannedFolder, error) {
	if dirPath == f.failOn {
		return nil, failure.Wrap(failure.NotAccessible, "scan-folder", dirPath, os.ErrPermission)
	}
	return f.Scanner.Scan(ctx, dirPath)
}

func TestRefreshDropsVanishedNodesAndEdges(t *testing.T) {
	defer goleak.VerifyNone(t)

	base := t.TempDir()
	root := mkdir(t, base, "root")
	keep := mkdir(t, root, "keep")
	drop := mkdir(t, root, "drop")
	grand := mkdir(t, keep, "grand")

	rootNode := nodeFor(root, nil)
	keepNode := nodeFor(keep, &rootNode.ID)
	dropNode := nodeFor(drop, &rootNode.ID)
	grandNode := nodeFor(grand, &keepNode.ID)
	nodes := []types.GraphNode{rootNode, keepNode, dropNode, grandNode}
	edges := []types.GraphEdge{
		{ID: types.EdgeID(rootNode.ID, keepNode.ID), Source: rootNode.ID, Target: keepNode.ID},
		{ID: types.EdgeID(rootNode.ID, dropNode.ID), Source: rootNode.ID, Target: dropNode.ID},
		{ID: types.EdgeID(keepNode.ID, grandNode.ID), Source: keepNode.ID, Target: grandNode.ID},
	}

	require.NoError(t, os.RemoveAll(drop))

	v := NewValidator(filesystem.NewScanner(nil), 2, nil)
	gotNodes, gotEdges, err := v.Refresh(context.Background(), nodes, edges)
	require.NoError(t, err)

	var ids []string
	for _, n := range gotNodes {
		ids = append(ids, n.ID)
	}
	assert.Equal(t, []string{rootNode.ID, keepNode.ID, grandNode.ID}, ids)
	for _, e := range gotEdges {
		assert.NotEqual(t, dropNode.ID, e.Source)
		assert.NotEqual(t, dropNode.ID, e.Target)
	}
	assert.Len(t, gotEdges, 2)
}

func TestRefreshRescansContents(t *testing.T) {
	defer goleak.VerifyNone(t)

	root := t.TempDir()
	n := nodeFor(root, nil)
	require.NoError(t, os.WriteFile(filepath.Join(root, "new.txt"), []byte("hello"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(root, "sub"), 0o755))

	v := NewValidator(filesystem.NewScanner(nil), 0, nil)
	nodes, edges, err := v.Refresh(context.Background(), []types.GraphNode{n}, nil)
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.Empty(t, edges)
	assert.NotNil(t, edges)

	require.Len(t, nodes[0].Data.Files, 1)
	assert.Equal(t, "new.txt", nodes[0].Data.Files[0].Name)
	assert.Equal(t, "5 b", nodes[0].Data.Files[0].Size)
	require.Len(t, nodes[0].Data.Subfolders, 1)
	assert.Equal(t, "sub", nodes[0].Data.Subfolders[0].Name)
	assert.Equal(t, n.ID, nodes[0].ID)
}

func TestRefreshKeepsUnreadableNodes(t *testing.T) {
	root := t.TempDir()
	n := nodeFor(root, nil)
	n.Data.Files = []types.Entry{{ID: "stale", Name: "stale.txt", Kind: types.KindFile}}

	v := NewValidator(flakyScanner{Scanner: filesystem.NewScanner(nil), failOn: root}, 1, nil)
	nodes, _, err := v.Refresh(context.Background(), []types.GraphNode{n}, nil)
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.Equal(t, "stale.txt", nodes[0].Data.Files[0].Name)
}

func TestRefreshDropsNodesThatBecameFiles(t *testing.T) {
	base := t.TempDir()
	path := filepath.Join(base, "thing")
	n := nodeFor(path, nil)
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	v := NewValidator(filesystem.NewScanner(nil), 1, nil)
	nodes, _, err := v.Refresh(context.Background(), []types.GraphNode{n}, nil)
	require.NoError(t, err)
	assert.Empty(t, nodes)
}

func TestRefreshDeduplicatesNodes(t *testing.T) {
	root := t.TempDir()
	n := nodeFor(root, nil)

	v := NewValidator(filesystem.NewScanner(nil), 4, nil)
	nodes, _, err := v.Refresh(context.Background(), []types.GraphNode{n, n}, nil)
	require.NoError(t, err)
	assert.Len(t, nodes, 1)
}

func TestRefreshEmptyGraph(t *testing.T) {
	v := NewValidator(filesystem.NewScanner(nil), 4, nil)
	nodes, edges, err := v.Refresh(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Empty(t, nodes)
	assert.Empty(t, edges)
}

func TestRefreshCancelled(t *testing.T) {
	defer goleak.VerifyNone(t)

	root := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	v := NewValidator(filesystem.NewScanner(nil), 1, nil)
	_, _, err := v.Refresh(ctx, []types.GraphNode{nodeFor(root, nil)}, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}
