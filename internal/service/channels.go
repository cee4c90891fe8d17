package service

import (
	"context"

	"github.com/GriffinCanCode/foldergraph/internal/domain/world"
	"github.com/GriffinCanCode/foldergraph/internal/providers/clipboard"
	"github.com/GriffinCanCode/foldergraph/internal/providers/filesystem"
	"github.com/GriffinCanCode/foldergraph/internal/shared/failure"
	"github.com/GriffinCanCode/foldergraph/internal/shared/types"
)

// Services are the components channels operate on
type Services struct {
	Scanner   *filesystem.Scanner
	Files     *filesystem.Service
	Clipboard *clipboard.Provider
	Worlds    *world.Store
	Validator *world.Validator

	// OnWorldsListed, if set, receives the number of worlds after each listing
	OnWorldsListed func(count int)
}

// Channel arguments
type (
	pathArgs struct {
		Path string `json:"path"`
	}
	dirArgs struct {
		DirPath string `json:"dirPath"`
	}
	createArgs struct {
		DirPath string `json:"dirPath"`
		Name    string `json:"name"`
	}
	renameArgs struct {
		DirPath string `json:"dirPath"`
		Path    string `json:"path"`
		NewName string `json:"newName"`
	}
	moveArgs struct {
		ItemPath string         `json:"itemPath"`
		DestDir  string         `json:"destDir"`
		Kind     types.ItemKind `json:"kind"`
	}
	copyItemArgs struct {
		ItemPath string         `json:"itemPath"`
		Kind     types.ItemKind `json:"kind"`
	}
	pasteArgs struct {
		ClipboardItem *types.ClipboardItem `json:"clipboardItem"`
		DestDir       string               `json:"destDir"`
	}
	graphArgs struct {
		Nodes []types.GraphNode `json:"nodes"`
		Edges []types.GraphEdge `json:"edges"`
	}
	saveArgs struct {
		RootPath string            `json:"rootPath"`
		Nodes    []types.GraphNode `json:"nodes"`
		Edges    []types.GraphEdge `json:"edges"`
	}
	fileArgs struct {
		File string `json:"file"`
	}
)

// Channel results
type (
	// RootSelection is the data of select-root
	RootSelection struct {
		Folder *types.ScannedFolder `json:"folder"`
		Node   types.GraphNode      `json:"node"`
	}
	// Graph is a node and edge set
	Graph struct {
		Nodes []types.GraphNode `json:"nodes"`
		Edges []types.GraphEdge `json:"edges"`
	}
	// PathResult carries the path an operation produced
	PathResult struct {
		Path string `json:"path"`
	}
	// TrashResult carries where a deleted item went
	TrashResult struct {
		TrashedTo string `json:"trashedTo"`
	}
	// ExistsResult is the data of check-exists
	ExistsResult struct {
		Exists bool `json:"exists"`
	}
	// OpenResult is the data of open-item
	OpenResult struct {
		Path string `json:"path"`
		MIME string `json:"mime"`
	}
)

// RegisterChannels registers every channel on r
func RegisterChannels(r *Registry, s Services) error {
	for _, ch := range s.channels() {
		if err := r.Register(ch); err != nil {
			return err
		}
	}
	return nil
}

func (s Services) channels() []Channel {
	return []Channel{
		{Name: "select-root", Description: "Open a directory as the root of a new world", Handler: s.selectRoot},
		{Name: "scan-folder", Description: "List the immediate children of a directory", Handler: s.scanFolder},
		{Name: "check-exists", Description: "Report whether a path exists", Handler: s.checkExists},
		{Name: "copy-path", Description: "Copy an absolute path to the OS clipboard", Handler: s.copyPath},
		{Name: "copy-item", Description: "Remember a file or folder for pasting", Handler: s.copyItem},
		{Name: "clipboard", Description: "Return the remembered clipboard item", Handler: s.currentClipboard},
		{Name: "create-file", Description: "Create an empty file", Handler: s.create(types.KindFile)},
		{Name: "create-folder", Description: "Create an empty folder", Handler: s.create(types.KindFolder)},
		{Name: "rename-file", Description: "Rename a file", Handler: s.rename(types.KindFile)},
		{Name: "rename-folder", Description: "Rename a folder", Handler: s.rename(types.KindFolder)},
		{Name: "delete-file", Description: "Move a file to the trash", Handler: s.delete(types.KindFile)},
		{Name: "delete-folder", Description: "Move a folder to the trash", Handler: s.delete(types.KindFolder)},
		{Name: "move-item", Description: "Move a file or folder into another folder", Handler: s.moveItem},
		{Name: "paste-item", Description: "Copy the clipboard item into a folder", Handler: s.pasteItem},
		{Name: "open-item", Description: "Open a path with the default application", Handler: s.openItem},
		{Name: "spawn-node", Description: "Build a graph node for a directory", Handler: s.spawnNode},
		{Name: "refresh", Description: "Prune and rescan a graph", Handler: s.refresh},
		{Name: "save-world", Description: "Save a graph keyed by its root directory", Handler: s.saveWorld},
		{Name: "load-world", Description: "Load and refresh a saved graph", Handler: s.loadWorld},
		{Name: "delete-world", Description: "Delete a saved graph", Handler: s.deleteWorld},
		{Name: "list-worlds", Description: "List saved graphs, pruning stale ones", Handler: s.listWorlds},
	}
}

func (s Services) selectRoot(ctx context.Context, raw []byte) (string, any, error) {
	const op = "select-root"
	args, err := decode[pathArgs](op, raw)
	if err != nil {
		return "", nil, err
	}
	if args.Path == "" || !filesystem.Exists(args.Path) {
		return "", nil, failure.New(failure.NotFound, op, args.Path, "folder does not exist")
	}
	if !filesystem.IsDir(args.Path) {
		return "", nil, failure.New(failure.NotAccessible, op, args.Path, "not a directory")
	}

	folder, err := s.Scanner.Scan(ctx, args.Path)
	if err != nil {
		return "", nil, err
	}
	return "Scanned folder", RootSelection{Folder: folder, Node: world.RootNode(folder)}, nil
}

func (s Services) scanFolder(ctx context.Context, raw []byte) (string, any, error) {
	args, err := decode[dirArgs]("scan-folder", raw)
	if err != nil {
		return "", nil, err
	}
	folder, err := s.Scanner.Scan(ctx, args.DirPath)
	if err != nil {
		return "", nil, err
	}
	return "Scanned folder", folder, nil
}

func (s Services) checkExists(_ context.Context, raw []byte) (string, any, error) {
	args, err := decode[pathArgs]("check-exists", raw)
	if err != nil {
		return "", nil, err
	}
	exists := args.Path != "" && filesystem.Exists(args.Path)
	return "Checked path", ExistsResult{Exists: exists}, nil
}

func (s Services) copyPath(ctx context.Context, raw []byte) (string, any, error) {
	args, err := decode[pathArgs]("copy-path", raw)
	if err != nil {
		return "", nil, err
	}
	item, err := s.Clipboard.CopyPath(ctx, args.Path)
	if err != nil {
		return "", nil, err
	}
	return "Path copied", item, nil
}

func (s Services) copyItem(ctx context.Context, raw []byte) (string, any, error) {
	args, err := decode[copyItemArgs]("copy-item", raw)
	if err != nil {
		return "", nil, err
	}
	item, err := s.Clipboard.CopyItem(ctx, args.ItemPath, args.Kind)
	if err != nil {
		return "", nil, err
	}
	return label(item.Kind) + " copied", item, nil
}

func (s Services) currentClipboard(context.Context, []byte) (string, any, error) {
	item, ok := s.Clipboard.Current()
	if !ok {
		return "Clipboard is empty", nil, nil
	}
	return "Clipboard item", item, nil
}

func (s Services) create(kind types.ItemKind) Handler {
	op := "create-" + string(kind)
	return func(ctx context.Context, raw []byte) (string, any, error) {
		args, err := decode[createArgs](op, raw)
		if err != nil {
			return "", nil, err
		}
		create := s.Files.CreateFile
		if kind == types.KindFolder {
			create = s.Files.CreateFolder
		}
		path, err := create(ctx, args.DirPath, args.Name)
		if err != nil {
			return "", nil, err
		}
		return label(kind) + " created", PathResult{Path: path}, nil
	}
}

func (s Services) rename(kind types.ItemKind) Handler {
	op := "rename-" + string(kind)
	return func(ctx context.Context, raw []byte) (string, any, error) {
		args, err := decode[renameArgs](op, raw)
		if err != nil {
			return "", nil, err
		}
		rename := s.Files.RenameFile
		if kind == types.KindFolder {
			rename = s.Files.RenameFolder
		}
		path, err := rename(ctx, args.DirPath, args.Path, args.NewName)
		if err != nil {
			return "", nil, err
		}
		return label(kind) + " renamed", PathResult{Path: path}, nil
	}
}

func (s Services) delete(kind types.ItemKind) Handler {
	op := "delete-" + string(kind)
	return func(ctx context.Context, raw []byte) (string, any, error) {
		args, err := decode[pathArgs](op, raw)
		if err != nil {
			return "", nil, err
		}
		del := s.Files.DeleteFile
		if kind == types.KindFolder {
			del = s.Files.DeleteFolder
		}
		trashed, err := del(ctx, args.Path)
		if err != nil {
			return "", nil, err
		}
		s.Clipboard.Forget(args.Path)
		return label(kind) + " moved to trash", TrashResult{TrashedTo: trashed}, nil
	}
}

func (s Services) moveItem(ctx context.Context, raw []byte) (string, any, error) {
	const op = "move-item"
	args, err := decode[moveArgs](op, raw)
	if err != nil {
		return "", nil, err
	}
	if args.Kind != types.KindFile && args.Kind != types.KindFolder {
		return "", nil, failure.New(failure.InvalidArgument, op, args.ItemPath, "kind must be file or folder")
	}
	path, err := s.Files.MoveItem(ctx, args.ItemPath, args.DestDir, args.Kind)
	if err != nil {
		return "", nil, err
	}
	s.Clipboard.Forget(args.ItemPath)
	return label(args.Kind) + " moved", PathResult{Path: path}, nil
}

func (s Services) pasteItem(ctx context.Context, raw []byte) (string, any, error) {
	args, err := decode[pasteArgs]("paste-item", raw)
	if err != nil {
		return "", nil, err
	}

	var item types.ClipboardItem
	if args.ClipboardItem != nil {
		item = *args.ClipboardItem
	} else if current, ok := s.Clipboard.Current(); ok {
		item = current
	}

	path, err := s.Files.PasteItem(ctx, item, args.DestDir)
	if err != nil {
		return "", nil, err
	}
	return label(item.Kind) + " pasted", PathResult{Path: path}, nil
}

func (s Services) openItem(ctx context.Context, raw []byte) (string, any, error) {
	args, err := decode[pathArgs]("open-item", raw)
	if err != nil {
		return "", nil, err
	}
	mime, err := s.Files.OpenItem(ctx, args.Path)
	if err != nil {
		return "", nil, err
	}
	return "Opened item", OpenResult{Path: args.Path, MIME: mime}, nil
}

func (s Services) spawnNode(ctx context.Context, raw []byte) (string, any, error) {
	req, err := decode[world.SpawnRequest]("spawn-node", raw)
	if err != nil {
		return "", nil, err
	}
	out, err := world.Spawn(ctx, s.Scanner, req)
	if err != nil {
		return "", nil, err
	}
	return "Node spawned", out, nil
}

func (s Services) refresh(ctx context.Context, raw []byte) (string, any, error) {
	args, err := decode[graphArgs]("refresh", raw)
	if err != nil {
		return "", nil, err
	}
	nodes, edges, err := s.Validator.Refresh(ctx, args.Nodes, args.Edges)
	if err != nil {
		return "", nil, err
	}
	return "Graph refreshed", Graph{Nodes: nodes, Edges: edges}, nil
}

func (s Services) saveWorld(ctx context.Context, raw []byte) (string, any, error) {
	args, err := decode[saveArgs]("save-world", raw)
	if err != nil {
		return "", nil, err
	}
	entry, err := s.Worlds.Save(ctx, args.RootPath, args.Nodes, args.Edges)
	if err != nil {
		return "", nil, err
	}
	return "World saved", entry, nil
}

func (s Services) loadWorld(ctx context.Context, raw []byte) (string, any, error) {
	args, err := decode[fileArgs]("load-world", raw)
	if err != nil {
		return "", nil, err
	}
	payload, err := s.Worlds.Load(ctx, args.File)
	if err != nil {
		return "", nil, err
	}
	nodes, edges, err := s.Validator.Refresh(ctx, payload.Nodes, payload.Edges)
	if err != nil {
		return "", nil, err
	}
	return "World loaded", Graph{Nodes: nodes, Edges: edges}, nil
}

func (s Services) deleteWorld(ctx context.Context, raw []byte) (string, any, error) {
	args, err := decode[fileArgs]("delete-world", raw)
	if err != nil {
		return "", nil, err
	}
	if err := s.Worlds.Delete(ctx, args.File); err != nil {
		return "", nil, err
	}
	return "World deleted", nil, nil
}

func (s Services) listWorlds(ctx context.Context, _ []byte) (string, any, error) {
	worlds, err := s.Worlds.List(ctx)
	if err != nil {
		return "", nil, err
	}
	if s.OnWorldsListed != nil {
		s.OnWorldsListed(len(worlds))
	}
	return "Worlds listed", worlds, nil
}

func label(kind types.ItemKind) string {
	switch kind {
	case types.KindFolder:
		return "Folder"
	case types.KindFile:
		return "File"
	default:
		return "Item"
	}
}
