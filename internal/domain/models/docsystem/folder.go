package docsystem

// FolderType is the kind of a hierarchy node
type FolderType string

const (
	FolderTypeFolder    FolderType = "folder"
	FolderTypeCabinet   FolderType = "cabinet"
	FolderTypeWorkspace FolderType = "workspace"
	FolderTypeProject   FolderType = "project"
)

// TreeFolder is a node of the folder tree with nested children.
// DocumentCount is a display hint and is not kept consistent with Documents.
type TreeFolder struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	Type          FolderType    `json:"type"`
	Path          string        `json:"path"`
	DocumentCount int           `json:"document_count"`
	Children      []*TreeFolder `json:"children,omitempty"` // Pointers for proper nesting
	Documents     []Document    `json:"documents,omitempty"`
	Color         string        `json:"color,omitempty"`
	Icon          string        `json:"icon,omitempty"`
}

// HasChildren reports whether the folder has child folders
func (f *TreeFolder) HasChildren() bool {
	return len(f.Children) > 0
}
