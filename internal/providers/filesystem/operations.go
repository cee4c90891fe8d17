package filesystem

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"syscall"

	"github.com/otiai10/copy"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/foldergraph/internal/shared/failure"
	"github.com/GriffinCanCode/foldergraph/internal/shared/paths"
	"github.com/GriffinCanCode/foldergraph/internal/shared/types"
)

// Service performs validated filesystem mutations. Every method checks its
// preconditions first and returns a classified error; nothing panics.
type Service struct {
	trash  Trasher
	logger *zap.Logger
}

// NewService creates a mutation service. A nil logger discards output.
func NewService(trash Trasher, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{trash: trash, logger: logger}
}

// CreateFile creates an empty file dirPath/name
func (s *Service) CreateFile(ctx context.Context, dirPath, name string) (string, error) {
	return s.create(ctx, "create-file", types.KindFile, dirPath, name)
}

// CreateFolder creates an empty directory dirPath/name
func (s *Service) CreateFolder(ctx context.Context, dirPath, name string) (string, error) {
	return s.create(ctx, "create-folder", types.KindFolder, dirPath, name)
}

func (s *Service) create(ctx context.Context, op string, kind types.ItemKind, dirPath, name string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", failure.IO(op, dirPath, err)
	}

	target := filepath.Join(dirPath, name)
	taken, lookupErr := Lexists(target)
	if taken {
		return "", failure.New(failure.NameTaken, op, target, "name already taken")
	}
	if !ValidName(name) {
		return "", failure.New(failure.InvalidName, op, name, noun(kind)+" name contains invalid characters")
	}
	if lookupErr != nil {
		return "", failure.IO(op, target, lookupErr)
	}
	if !IsDir(dirPath) {
		return "", failure.New(failure.NotFound, op, dirPath, "folder does not exist")
	}

	var err error
	if kind == types.KindFolder {
		err = os.Mkdir(target, 0o755)
	} else {
		var f *os.File
		f, err = os.OpenFile(target, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
		if err == nil {
			err = f.Close()
		}
	}
	if errors.Is(err, fs.ErrExist) {
		return "", failure.New(failure.NameTaken, op, target, "name already taken")
	}
	if err != nil {
		s.logger.Warn("Create failed", zap.String("op", op), zap.String("path", target), zap.Error(err))
		return "", failure.IO(op, target, err)
	}

	s.logger.Info("Created", zap.String("op", op), zap.String("path", target))
	return target, nil
}

// RenameFile renames path to dirPath/newName
func (s *Service) RenameFile(ctx context.Context, dirPath, path, newName string) (string, error) {
	return s.rename(ctx, "rename-file", types.KindFile, dirPath, path, newName)
}

// RenameFolder renames path to dirPath/newName
func (s *Service) RenameFolder(ctx context.Context, dirPath, path, newName string) (string, error) {
	return s.rename(ctx, "rename-folder", types.KindFolder, dirPath, path, newName)
}

func (s *Service) rename(ctx context.Context, op string, kind types.ItemKind, dirPath, path, newName string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", failure.IO(op, path, err)
	}

	target := filepath.Join(dirPath, newName)
	taken, lookupErr := Lexists(target)
	if taken {
		return "", failure.New(failure.NameTaken, op, target, "name already taken")
	}
	if path == "" || !Exists(path) {
		return "", failure.New(failure.NotFound, op, path, noun(kind)+" does not exist")
	}
	if !ValidName(newName) {
		return "", failure.New(failure.InvalidName, op, newName, noun(kind)+" name contains invalid characters")
	}
	if lookupErr != nil {
		return "", failure.IO(op, target, lookupErr)
	}

	if err := renameNoReplace(path, target); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return "", failure.New(failure.NameTaken, op, target, "name already taken")
		}
		s.logger.Warn("Rename failed", zap.String("op", op), zap.String("path", path), zap.Error(err))
		return "", failure.IO(op, path, err)
	}

	s.logger.Info("Renamed", zap.String("op", op), zap.String("from", path), zap.String("to", target))
	return target, nil
}

// DeleteFile moves a file to the trash and returns its trash location
func (s *Service) DeleteFile(ctx context.Context, path string) (string, error) {
	return s.delete(ctx, "delete-file", types.KindFile, path)
}

// DeleteFolder moves a folder to the trash and returns its trash location
func (s *Service) DeleteFolder(ctx context.Context, path string) (string, error) {
	return s.delete(ctx, "delete-folder", types.KindFolder, path)
}

func (s *Service) delete(ctx context.Context, op string, kind types.ItemKind, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", failure.IO(op, path, err)
	}
	if path == "" || !Exists(path) {
		return "", failure.New(failure.NotFound, op, path, noun(kind)+" does not exist")
	}

	trashed, err := s.trash.Trash(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", failure.New(failure.NotFound, op, path, noun(kind)+" does not exist")
		}
		s.logger.Warn("Trash failed", zap.String("op", op), zap.String("path", path), zap.Error(err))
		return "", failure.IO(op, path, err)
	}

	s.logger.Info("Moved to trash", zap.String("op", op), zap.String("path", path), zap.String("trash", trashed))
	return trashed, nil
}

// MoveItem relocates itemPath into destDir, keeping its base name
func (s *Service) MoveItem(ctx context.Context, itemPath, destDir string, kind types.ItemKind) (string, error) {
	const op = "move-item"

	if err := ctx.Err(); err != nil {
		return "", failure.IO(op, itemPath, err)
	}
	if itemPath == "" || !Exists(itemPath) {
		return "", failure.New(failure.NotFound, op, itemPath, noun(kind)+" does not exist")
	}
	if !IsDir(destDir) {
		return "", failure.New(failure.NotFound, op, destDir, "destination folder does not exist")
	}
	// a symlink moves as a link, so where it points is irrelevant
	if IsDir(itemPath) && !isSymlink(itemPath) && paths.IsWithin(destDir, itemPath) {
		return "", failure.New(failure.SelfSubdirectory, op, itemPath, "cannot move folder to subdirectory of itself")
	}

	dest := filepath.Join(destDir, filepath.Base(itemPath))
	taken, err := Lexists(dest)
	if err != nil {
		return "", failure.IO(op, dest, err)
	}
	if taken {
		return "", failure.New(failure.NameTaken, op, dest, "name already taken")
	}

	if err := moveInto(itemPath, dest); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return "", failure.New(failure.NameTaken, op, dest, "name already taken")
		}
		s.logger.Warn("Move failed", zap.String("path", itemPath), zap.String("dest", dest), zap.Error(err))
		return "", failure.IO(op, itemPath, err)
	}

	s.logger.Info("Moved", zap.String("from", itemPath), zap.String("to", dest))
	return dest, nil
}

// PasteItem copies the clipboard item into destDir under a collision-free
// name. Folder copies are recursive and not atomic: a failure part way
// leaves whatever was already copied in place.
func (s *Service) PasteItem(ctx context.Context, item types.ClipboardItem, destDir string) (string, error) {
	const op = "paste-item"

	if err := ctx.Err(); err != nil {
		return "", failure.IO(op, item.ItemPath, err)
	}
	if item.Kind == types.KindPath {
		return "", failure.New(failure.InvalidClipboard, op, item.ItemPath, "cannot paste path here")
	}
	if !item.Kind.Valid() || item.ItemPath == "" {
		return "", failure.New(failure.InvalidClipboard, op, item.ItemPath, "clipboard is empty")
	}

	info, err := os.Stat(item.ItemPath)
	if err != nil {
		return "", failure.New(failure.NotFound, op, item.ItemPath, noun(item.Kind)+" does not exist")
	}
	if !IsDir(destDir) {
		return "", failure.New(failure.NotFound, op, destDir, "destination folder does not exist")
	}
	if info.IsDir() && !isSymlink(item.ItemPath) && paths.IsWithin(destDir, item.ItemPath) {
		return "", failure.New(failure.SelfSubdirectory, op, item.ItemPath, "cannot paste folder as subdirectory of itself")
	}

	dest, err := UniquePath(destDir, filepath.Base(item.ItemPath), info.IsDir())
	if err != nil {
		s.logger.Warn("No free paste name", zap.String("src", item.ItemPath), zap.String("dest", destDir), zap.Error(err))
		return "", failure.IO(op, destDir, err)
	}
	opts := copy.Options{
		OnSymlink:     func(string) copy.SymlinkAction { return copy.Shallow },
		PreserveTimes: true,
	}
	if err := copy.Copy(item.ItemPath, dest, opts); err != nil {
		s.logger.Warn("Paste failed", zap.String("src", item.ItemPath), zap.String("dest", dest), zap.Error(err))
		return "", failure.IO(op, dest, err)
	}

	s.logger.Info("Pasted", zap.String("src", item.ItemPath), zap.String("dest", dest))
	return dest, nil
}

// isCrossDevice reports whether err came from renaming across filesystems
func isCrossDevice(err error) bool {
	return errors.Is(err, syscall.EXDEV)
}
