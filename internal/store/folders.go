package store

import (
	"maps"
	"slices"

	"documentum/internal/domain"
	"documentum/internal/domain/models"
	"documentum/internal/domain/models/docsystem"
	docsysService "documentum/internal/service/docsystem"
)

// ClipboardMode distinguishes copied from cut items
type ClipboardMode string

const (
	ClipboardCopy ClipboardMode = "copy"
	ClipboardCut  ClipboardMode = "cut"
)

// Clipboard holds folder or document ids awaiting paste
type Clipboard struct {
	Mode ClipboardMode `json:"mode"`
	IDs  []string      `json:"ids"`
}

// FolderState is the navigation state of the folder tree.
// Tree nodes are shared and treated as immutable.
type FolderState struct {
	Tree        []*docsystem.TreeFolder `json:"-"`
	CurrentID   string                  `json:"current_folder_id,omitempty"`
	CurrentPath []string                `json:"current_path"`
	Expanded    map[string]struct{}     `json:"-"`
	SelectedID  string                  `json:"selected_folder_id,omitempty"`
	Clipboard   *Clipboard              `json:"clipboard,omitempty"`
	SearchQuery string                  `json:"search_query"`
	Loading     bool                    `json:"is_loading"`
}

// ExpandedIDs returns the expanded folder ids in sorted order
func (f FolderState) ExpandedIDs() []string {
	ids := slices.Sorted(maps.Keys(f.Expanded))
	if ids == nil {
		ids = []string{}
	}
	return ids
}

func cloneFolderState(f FolderState) FolderState {
	f.Tree = slices.Clone(f.Tree)
	f.CurrentPath = slices.Clone(f.CurrentPath)
	f.Expanded = cloneSet(f.Expanded)
	if f.Clipboard != nil {
		cb := Clipboard{Mode: f.Clipboard.Mode, IDs: slices.Clone(f.Clipboard.IDs)}
		f.Clipboard = &cb
	}
	return f
}

// FolderStore tracks the current folder, expansion and clipboard
type FolderStore struct {
	*Store[FolderState]
}

// NewFolderStore creates a folder store over tree
func NewFolderStore(tree []*docsystem.TreeFolder) *FolderStore {
	return &FolderStore{New(FolderState{
		Tree:        tree,
		CurrentPath: []string{},
		Expanded:    map[string]struct{}{},
	}, cloneFolderState)}
}

// SetTree replaces the folder tree
func (s *FolderStore) SetTree(tree []*docsystem.TreeFolder) {
	s.Update(func(f *FolderState) { f.Tree = tree })
}

// NavigateToFolder makes id the current folder; "" returns to the root.
// Unknown ids leave the state unchanged and return a NotFoundError.
func (s *FolderStore) NavigateToFolder(id string) error {
	var err error
	s.Update(func(f *FolderState) { err = navigate(f, id) })
	return err
}

func navigate(f *FolderState, id string) error {
	if id == "" {
		f.CurrentID = ""
		f.CurrentPath = []string{}
		f.SelectedID = ""
		return nil
	}
	path := docsysService.BreadcrumbPath(f.Tree, id)
	if len(path) == 0 {
		return &domain.NotFoundError{Resource: "folder", ID: id}
	}
	names := make([]string, len(path))
	for i, folder := range path {
		names[i] = folder.Name
	}
	f.CurrentID = id
	f.CurrentPath = names
	f.SelectedID = id
	return nil
}

// NavigateUp moves to the parent of the current folder, or to the root
func (s *FolderStore) NavigateUp() {
	s.Update(func(f *FolderState) {
		if f.CurrentID == "" {
			return
		}
		parent := docsysService.ParentOf(f.Tree, f.CurrentID)
		if parent == nil {
			f.CurrentID = ""
			f.CurrentPath = []string{}
			return
		}
		_ = navigate(f, parent.ID)
	})
}

// Current returns the current folder, nil at the root
func (s *FolderStore) Current() *docsystem.TreeFolder {
	var folder *docsystem.TreeFolder
	s.Read(func(f *FolderState) {
		if f.CurrentID != "" {
			folder = docsysService.FindByID(f.Tree, f.CurrentID)
		}
	})
	return folder
}

// Breadcrumb returns the folders from the root to the current folder
func (s *FolderStore) Breadcrumb() []*docsystem.TreeFolder {
	var path []*docsystem.TreeFolder
	s.Read(func(f *FolderState) { path = docsysService.BreadcrumbPath(f.Tree, f.CurrentID) })
	return path
}

// ToggleExpanded flips the expansion of id
func (s *FolderStore) ToggleExpanded(id string) {
	s.Update(func(f *FolderState) {
		if _, ok := f.Expanded[id]; ok {
			delete(f.Expanded, id)
		} else {
			f.Expanded[id] = struct{}{}
		}
	})
}

// SetExpanded sets the expansion of id
func (s *FolderStore) SetExpanded(id string, expanded bool) {
	s.Update(func(f *FolderState) {
		if expanded {
			f.Expanded[id] = struct{}{}
		} else {
			delete(f.Expanded, id)
		}
	})
}

// ExpandPath expands every listed id
func (s *FolderStore) ExpandPath(ids []string) {
	s.Update(func(f *FolderState) {
		for _, id := range ids {
			f.Expanded[id] = struct{}{}
		}
	})
}

// Reveal expands every ancestor of id so it is visible in the tree
func (s *FolderStore) Reveal(id string) error {
	var err error
	s.Update(func(f *FolderState) {
		path := docsysService.BreadcrumbPath(f.Tree, id)
		if len(path) == 0 {
			err = &domain.NotFoundError{Resource: "folder", ID: id}
			return
		}
		for _, folder := range path[:len(path)-1] {
			f.Expanded[folder.ID] = struct{}{}
		}
	})
	return err
}

// CollapseAll collapses every folder
func (s *FolderStore) CollapseAll() {
	s.Update(func(f *FolderState) { f.Expanded = map[string]struct{}{} })
}

// IsExpanded reports whether id is expanded
func (s *FolderStore) IsExpanded(id string) bool {
	expanded := false
	s.Read(func(f *FolderState) { _, expanded = f.Expanded[id] })
	return expanded
}

// SelectFolder highlights id without navigating; "" clears
func (s *FolderStore) SelectFolder(id string) {
	s.Update(func(f *FolderState) { f.SelectedID = id })
}

// CopyItems places ids on the clipboard for copying
func (s *FolderStore) CopyItems(ids []string) {
	s.setClipboard(ClipboardCopy, ids)
}

// CutItems places ids on the clipboard for moving
func (s *FolderStore) CutItems(ids []string) {
	s.setClipboard(ClipboardCut, ids)
}

func (s *FolderStore) setClipboard(mode ClipboardMode, ids []string) {
	s.Update(func(f *FolderState) { f.Clipboard = &Clipboard{Mode: mode, IDs: slices.Clone(ids)} })
}

// ClearClipboard empties the clipboard
func (s *FolderStore) ClearClipboard() {
	s.Update(func(f *FolderState) { f.Clipboard = nil })
}

// SetSearchQuery sets the tree filter text
func (s *FolderStore) SetSearchQuery(query string) {
	s.Update(func(f *FolderState) { f.SearchQuery = query })
}

// FilteredTree returns the tree pruned by the search query
func (s *FolderStore) FilteredTree() []*docsystem.TreeFolder {
	var tree []*docsystem.TreeFolder
	s.Read(func(f *FolderState) { tree = docsysService.FilterByName(f.Tree, f.SearchQuery) })
	return tree
}

// SetLoading toggles the loading indicator
func (s *FolderStore) SetLoading(loading bool) {
	s.Update(func(f *FolderState) { f.Loading = loading })
}

// Reset clears navigation, expansion and clipboard; the tree is kept
func (s *FolderStore) Reset() {
	s.Update(func(f *FolderState) {
		*f = FolderState{Tree: f.Tree, CurrentPath: []string{}, Expanded: map[string]struct{}{}}
	})
}

// Preferences returns the persisted subset of the state
func (s *FolderStore) Preferences() models.FoldersPreferences {
	var p models.FoldersPreferences
	s.Read(func(f *FolderState) { p = models.FoldersPreferences{ExpandedFolders: f.ExpandedIDs()} })
	return p
}

// ApplyPreferences restores a persisted subset
func (s *FolderStore) ApplyPreferences(p models.FoldersPreferences) {
	s.Update(func(f *FolderState) {
		f.Expanded = make(map[string]struct{}, len(p.ExpandedFolders))
		for _, id := range p.ExpandedFolders {
			f.Expanded[id] = struct{}{}
		}
	})
}

// WatchPreferences calls fn with the persisted subset after every mutation
func (s *FolderStore) WatchPreferences(fn func(models.FoldersPreferences)) func() {
	return s.Subscribe(func(f FolderState) {
		fn(models.FoldersPreferences{ExpandedFolders: f.ExpandedIDs()})
	})
}
