package world

import (
	"context"
	"time"

	"github.com/GriffinCanCode/foldergraph/internal/shared/types"
)

// NodeType is the canvas node type assigned to folder nodes
const NodeType = "folderNode"

// IndexEntry is one saved world. RootPath is unique across the index.
type IndexEntry struct {
	ID           string    `json:"id"`
	File         string    `json:"file"`
	WorldName    string    `json:"worldName"`
	RootPath     string    `json:"rootPath"`
	LastModified time.Time `json:"lastModified"`
}

// Payload is the full saved graph of one world
type Payload struct {
	Nodes []types.GraphNode `json:"nodes"`
	Edges []types.GraphEdge `json:"edges"`
}

// Scanner lists one directory level
type Scanner interface {
	Scan(ctx context.Context, dirPath string) (*types.ScannedFolder, error)
}
