package docsystem

import (
	"context"
	"log/slog"
	"strings"

	"documentum/internal/domain"
	models "documentum/internal/domain/models/docsystem"
	docsysSvc "documentum/internal/domain/services/docsystem"
)

// FindByID returns the first folder with id in depth-first order, nil if absent
func FindByID(tree []*models.TreeFolder, id string) *models.TreeFolder {
	for _, folder := range tree {
		if folder.ID == id {
			return folder
		}
		if found := FindByID(folder.Children, id); found != nil {
			return found
		}
	}
	return nil
}

// BreadcrumbPath returns the folders from a root down to and including id.
// The result is empty when id is not in the tree.
func BreadcrumbPath(tree []*models.TreeFolder, id string) []*models.TreeFolder {
	path := []*models.TreeFolder{}
	var search func(folders []*models.TreeFolder) bool
	search = func(folders []*models.TreeFolder) bool {
		for _, folder := range folders {
			path = append(path, folder)
			if folder.ID == id || search(folder.Children) {
				return true
			}
			path = path[:len(path)-1]
		}
		return false
	}
	search(tree)
	return path
}

// Depth returns the number of ancestors of id, -1 if absent
func Depth(tree []*models.TreeFolder, id string) int {
	return len(BreadcrumbPath(tree, id)) - 1
}

// ParentOf returns the parent of id; nil for root folders and unknown ids
func ParentOf(tree []*models.TreeFolder, id string) *models.TreeFolder {
	path := BreadcrumbPath(tree, id)
	if len(path) < 2 {
		return nil
	}
	return path[len(path)-2]
}

// FilterByName prunes the tree to folders whose name contains query,
// ignoring case, plus the ancestors of such folders.
//
// A folder that matches itself is returned as is, with all of its children.
// A folder kept only because of matching descendants is returned as a copy
// holding just the filtered children. The input tree is never modified.
// An empty query returns tree itself.
func FilterByName(tree []*models.TreeFolder, query string) []*models.TreeFolder {
	if query == "" {
		return tree
	}
	filtered := filterFolders(tree, strings.ToLower(query))
	if filtered == nil {
		return []*models.TreeFolder{}
	}
	return filtered
}

func filterFolders(folders []*models.TreeFolder, query string) []*models.TreeFolder {
	var out []*models.TreeFolder
	for _, folder := range folders {
		if strings.Contains(strings.ToLower(folder.Name), query) {
			out = append(out, folder)
			continue
		}
		if children := filterFolders(folder.Children, query); len(children) > 0 {
			pruned := *folder
			pruned.Children = children
			out = append(out, &pruned)
		}
	}
	return out
}

// Flatten lists every folder in pre-order
func Flatten(tree []*models.TreeFolder) []*models.TreeFolder {
	var out []*models.TreeFolder
	var walk func(folders []*models.TreeFolder)
	walk = func(folders []*models.TreeFolder) {
		for _, folder := range folders {
			out = append(out, folder)
			walk(folder.Children)
		}
	}
	walk(tree)
	return out
}

// CollectDocuments returns the documents of folder, and of all its
// descendants when recursive is set
func CollectDocuments(folder *models.TreeFolder, recursive bool) []models.Document {
	docs := append([]models.Document{}, folder.Documents...)
	if recursive {
		for _, child := range folder.Children {
			docs = append(docs, CollectDocuments(child, true)...)
		}
	}
	return docs
}

// treeService implements the TreeService interface over a fixed tree
type treeService struct {
	tree   []*models.TreeFolder
	logger *slog.Logger
}

// NewTreeService creates a new tree service
func NewTreeService(tree []*models.TreeFolder, logger *slog.Logger) docsysSvc.TreeService {
	return &treeService{
		tree:   tree,
		logger: logger,
	}
}

func (s *treeService) Roots() []*models.TreeFolder {
	return s.tree
}

func (s *treeService) Folder(ctx context.Context, id string) (*models.TreeFolder, error) {
	folder := FindByID(s.tree, id)
	if folder == nil {
		return nil, &domain.NotFoundError{Resource: "folder", ID: id}
	}
	return folder, nil
}

func (s *treeService) Breadcrumb(ctx context.Context, id string) ([]*models.TreeFolder, error) {
	path := BreadcrumbPath(s.tree, id)
	if len(path) == 0 {
		return nil, &domain.NotFoundError{Resource: "folder", ID: id}
	}
	return path, nil
}

func (s *treeService) Search(ctx context.Context, query string) []*models.TreeFolder {
	result := FilterByName(s.tree, query)
	s.logger.Debug("folder tree searched",
		"query", query,
		"root_count", len(result),
	)
	return result
}

func (s *treeService) Documents(ctx context.Context, folderID string, recursive bool) ([]models.Document, error) {
	folder, err := s.Folder(ctx, folderID)
	if err != nil {
		return nil, err
	}
	docs := CollectDocuments(folder, recursive)
	s.logger.Debug("folder documents listed",
		"folder_id", folderID,
		"recursive", recursive,
		"document_count", len(docs),
	)
	return docs, nil
}
