// Package filesystem implements the directory scanner and the validated
// mutation operations behind the folder graph.
//
// This package is organized into specialized modules:
//   - directory: single-level scans and human readable sizes
//   - names: platform naming rules and collision-free destination names
//   - operations: create, rename, delete, move and paste
//   - trash: recoverable deletion into the platform trash
//   - opener: hand a path to the OS default application
//
// All operations:
//   - Run their precondition checks (existence, naming, containment) before
//     touching the filesystem and fail with a classified *failure.Error
//   - Report residual OS errors as failure.IOFailure with the cause attached
//   - Never delete permanently; deletions go through a Trasher
//
// Example Usage:
//
//	svc := filesystem.NewService(filesystem.NewTrash(trashDir), logger)
//	path, err := svc.CreateFolder(ctx, "/home/me/projects", "notes")
//	if failure.Is(err, failure.NameTaken) {
//	    // pick another name
//	}
package filesystem
