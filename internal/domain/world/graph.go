package world

import (
	"context"

	"github.com/GriffinCanCode/foldergraph/internal/shared/failure"
	"github.com/GriffinCanCode/foldergraph/internal/shared/types"
)

// RootPosition is where a freshly opened root node is placed
var RootPosition = types.Position{X: 100, Y: 100}

// NewNode wraps a scan result as a graph node
func NewNode(folder *types.ScannedFolder, parentID *string, pos types.Position) types.GraphNode {
	return types.GraphNode{
		ID:       folder.FolderID,
		Type:     NodeType,
		Position: pos,
		Data: types.NodeData{
			DirPath:    folder.DirPath,
			Label:      folder.FolderName,
			Files:      folder.Files,
			Subfolders: folder.Subfolders,
			ParentID:   parentID,
		},
	}
}

// RootNode builds the node shown when a directory is opened as a new world
func RootNode(folder *types.ScannedFolder) types.GraphNode {
	return NewNode(folder, nil, RootPosition)
}

// FindRoot returns the node that anchors a world: the first node without a
// parent, or the first node when every node has one.
func FindRoot(nodes []types.GraphNode) (types.GraphNode, bool) {
	if len(nodes) == 0 {
		return types.GraphNode{}, false
	}
	for _, n := range nodes {
		if n.IsRoot() {
			return n, true
		}
	}
	return nodes[0], true
}

// SpawnRequest asks for a child node for dirPath below ParentID
type SpawnRequest struct {
	DirPath  string            `json:"dirPath"`
	ParentID *string           `json:"parentId"`
	Position types.Position    `json:"position"`
	Nodes    []types.GraphNode `json:"nodes"`
}

// Spawned is a new node and, for child nodes, the edge linking it to its parent
type Spawned struct {
	Node types.GraphNode  `json:"node"`
	Edge *types.GraphEdge `json:"edge,omitempty"`
}

// Spawn scans req.DirPath and builds a node for it. The node id is the stable
// folder id, so spawning a directory already on the canvas is refused.
func Spawn(ctx context.Context, scanner Scanner, req SpawnRequest) (*Spawned, error) {
	const op = "spawn-node"

	if req.ParentID != nil && !hasNode(req.Nodes, *req.ParentID) {
		return nil, failure.New(failure.NotFound, op, *req.ParentID, "parent node does not exist")
	}

	folder, err := scanner.Scan(ctx, req.DirPath)
	if err != nil {
		return nil, err
	}
	if hasNode(req.Nodes, folder.FolderID) {
		return nil, failure.New(failure.InvalidGraph, op, folder.DirPath, "folder is already on the canvas")
	}

	out := &Spawned{Node: NewNode(folder, req.ParentID, req.Position)}
	if req.ParentID != nil {
		out.Edge = &types.GraphEdge{
			ID:     types.EdgeID(*req.ParentID, folder.FolderID),
			Source: *req.ParentID,
			Target: folder.FolderID,
		}
	}
	return out, nil
}

// ValidateGraph rejects empty graphs and duplicate node ids, and returns the
// edges whose endpoints are both present
func ValidateGraph(op string, nodes []types.GraphNode, edges []types.GraphEdge) ([]types.GraphEdge, error) {
	if len(nodes) == 0 {
		return nil, failure.New(failure.InvalidGraph, op, "", "cannot save world with zero nodes")
	}

	ids := make(map[string]struct{}, len(nodes))
	for _, n := range nodes {
		if n.ID == "" {
			return nil, failure.New(failure.InvalidGraph, op, n.Data.DirPath, "node without id")
		}
		if _, dup := ids[n.ID]; dup {
			return nil, failure.New(failure.InvalidGraph, op, n.Data.DirPath, "duplicate node id "+n.ID)
		}
		ids[n.ID] = struct{}{}
	}

	return liveEdges(edges, ids), nil
}

// liveEdges keeps the edges whose source and target are both in ids
func liveEdges(edges []types.GraphEdge, ids map[string]struct{}) []types.GraphEdge {
	out := make([]types.GraphEdge, 0, len(edges))
	for _, e := range edges {
		_, src := ids[e.Source]
		_, dst := ids[e.Target]
		if src && dst {
			out = append(out, e)
		}
	}
	return out
}

func hasNode(nodes []types.GraphNode, id string) bool {
	for _, n := range nodes {
		if n.ID == id {
			return true
		}
	}
	return false
}
