package types

// ItemKind distinguishes files, folders and copied-path markers
type ItemKind string

const (
	KindFile   ItemKind = "file"
	KindFolder ItemKind = "folder"
	KindPath   ItemKind = "path"
)

// Valid reports whether k is a known kind
func (k ItemKind) Valid() bool {
	return k == KindFile || k == KindFolder || k == KindPath
}

// Entry is one immediate child of a scanned directory. Size is set only for
// files and is human readable.
type Entry struct {
	ID   string   `json:"id"`
	Name string   `json:"name"`
	Path string   `json:"path"`
	Kind ItemKind `json:"type"`
	Size string   `json:"size,omitempty"`
}

// ScannedFolder is a single-level directory listing
type ScannedFolder struct {
	DirPath    string  `json:"dirPath"`
	FolderID   string  `json:"folderId"`
	FolderName string  `json:"folderName"`
	Files      []Entry `json:"files"`
	Subfolders []Entry `json:"subfolders"`
}

// ClipboardItem is the current copy source. KindPath marks a copied path
// string, which cannot be pasted as a file or folder.
type ClipboardItem struct {
	ItemPath string   `json:"itemPath"`
	Kind     ItemKind `json:"type"`
}
