package types

// Position is a canvas coordinate
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// NodeData is the directory content carried by a graph node
type NodeData struct {
	DirPath    string  `json:"dirPath"`
	Label      string  `json:"label"`
	Files      []Entry `json:"files"`
	Subfolders []Entry `json:"subfolders"`
	ParentID   *string `json:"parentId"`
}

// GraphNode wraps one directory listing plus canvas placement. ID equals the
// folderId of the scan that created it.
type GraphNode struct {
	ID       string   `json:"id"`
	Type     string   `json:"type,omitempty"`
	Position Position `json:"position"`
	Data     NodeData `json:"data"`
}

// GraphEdge is a directed parent to child link
type GraphEdge struct {
	ID     string `json:"id"`
	Source string `json:"source"`
	Target string `json:"target"`
}

// IsRoot reports whether the node was opened directly rather than spawned
// from another node
func (n GraphNode) IsRoot() bool {
	return n.Data.ParentID == nil
}

// EdgeID builds the conventional id of the edge from parent to child
func EdgeID(parentID, childID string) string {
	return parentID + "->" + childID
}
