// Package types provides the shared data model and the uniform result
// envelope returned by every invoke channel.
//
// Core Types:
//   - Entry, ScannedFolder: one non-recursive directory listing
//   - GraphNode, GraphEdge, Position: the graph held by the UI
//   - ClipboardItem: the copied file/folder reference or copied path marker
//   - Result: {success, message, data?, error?, kind?}
//
// Example Usage:
//
//	res := types.OK("Folder created", map[string]any{"path": p})
//	res = types.Fail(err)
package types
