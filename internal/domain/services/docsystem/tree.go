package docsystem

import (
	"context"

	"documentum/internal/domain/models/docsystem"
)

// TreeService exposes read operations over the folder hierarchy
type TreeService interface {
	// Roots returns the top-level folders
	Roots() []*docsystem.TreeFolder

	// Folder returns the folder with id or a NotFoundError
	Folder(ctx context.Context, id string) (*docsystem.TreeFolder, error)

	// Breadcrumb returns the folders from the root ancestor down to id
	Breadcrumb(ctx context.Context, id string) ([]*docsystem.TreeFolder, error)

	// Search prunes the tree to folders whose names match query
	Search(ctx context.Context, query string) []*docsystem.TreeFolder

	// Documents lists documents in a folder, optionally including subfolders
	Documents(ctx context.Context, folderID string, recursive bool) ([]docsystem.Document, error)
}
