package filesystem

import (
	"context"
	"os/exec"
	"runtime"

	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/foldergraph/internal/shared/failure"
)

// startCommand launches a detached process. Tests replace it.
var startCommand = func(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() { _ = cmd.Wait() }()
	return nil
}

// openCommand returns the launcher for the OS default application
func openCommand(goos, path string) (string, []string) {
	switch goos {
	case "darwin":
		return "open", []string{path}
	case "windows":
		return "cmd", []string{"/c", "start", "", path}
	default:
		return "xdg-open", []string{path}
	}
}

// DirectoryMIME is reported for folders handed to the opener
const DirectoryMIME = "inode/directory"

// OpenItem hands path to the OS default application and returns the MIME
// type the launcher will see
func (s *Service) OpenItem(ctx context.Context, path string) (string, error) {
	const op = "open-item"

	if err := ctx.Err(); err != nil {
		return "", failure.IO(op, path, err)
	}
	if path == "" || !Exists(path) {
		return "", failure.New(failure.NotFound, op, path, "item does not exist")
	}

	mime := DirectoryMIME
	if !IsDir(path) {
		detected, err := mimetype.DetectFile(path)
		if err != nil {
			s.logger.Debug("MIME detection failed", zap.String("path", path), zap.Error(err))
			mime = "application/octet-stream"
		} else {
			mime = detected.String()
		}
	}

	name, args := openCommand(runtime.GOOS, path)
	if err := startCommand(name, args...); err != nil {
		s.logger.Warn("Failed to open item", zap.String("path", path), zap.Error(err))
		return "", failure.IO(op, path, err)
	}
	s.logger.Info("Opened", zap.String("path", path), zap.String("mime", mime))
	return mime, nil
}
