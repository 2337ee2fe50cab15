// Package fixtures loads the embedded folder tree, users and view lists
// that stand in for a document repository backend.
package fixtures

import (
	"embed"
	"fmt"
	"path"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"

	"documentum/internal/domain/models/docsystem"
)

//go:embed data/*.yaml
var dataFiles embed.FS

// Set is one resolved copy of the fixture data.
// Every call to Load returns fresh values that callers may mutate.
type Set struct {
	Users       []docsystem.User
	CurrentUser docsystem.User
	Tree        []*docsystem.TreeFolder
	Documents   []docsystem.Document // every tree document, pre-order
	Recent      []docsystem.Document
	Shared      []docsystem.Document
	Starred     []docsystem.Document
}

type usersFile struct {
	Users       []docsystem.User `yaml:"users"`
	CurrentUser string           `yaml:"current_user"`
}

type folderSpec struct {
	ID            string         `yaml:"id"`
	Name          string         `yaml:"name"`
	Type          string         `yaml:"type"`
	DocumentCount int            `yaml:"document_count"`
	Color         string         `yaml:"color"`
	Icon          string         `yaml:"icon"`
	Children      []folderSpec   `yaml:"children"`
	Documents     []documentSpec `yaml:"documents"`
}

type documentSpec struct {
	ID         string        `yaml:"id"`
	Name       string        `yaml:"name"`
	Type       string        `yaml:"type"`
	Size       int64         `yaml:"size"`
	Status     string        `yaml:"status"`
	Owner      string        `yaml:"owner"`
	UpdatedBy  string        `yaml:"updated_by"`
	CreatedAgo time.Duration `yaml:"created_ago"`
	UpdatedAgo time.Duration `yaml:"updated_ago"`
	Version    int           `yaml:"version"`
	LockedBy   string        `yaml:"locked_by"`
	LockedAgo  time.Duration `yaml:"locked_ago"`
	Checkouts  int           `yaml:"checkouts"`
	Downloads  int           `yaml:"downloads"`
	Tags       []string      `yaml:"tags"`
}

type treeFile struct {
	Folders []folderSpec `yaml:"folders"`
}

type viewsFile struct {
	Recent []struct {
		Document    string        `yaml:"document"`
		AccessedAgo time.Duration `yaml:"accessed_ago"`
	} `yaml:"recent"`
	Shared []struct {
		Document   string        `yaml:"document"`
		SharedBy   string        `yaml:"shared_by"`
		SharedAgo  time.Duration `yaml:"shared_ago"`
		Permission string        `yaml:"permission"`
		ExpiresIn  time.Duration `yaml:"expires_in"`
	} `yaml:"shared"`
	Starred []struct {
		Document   string        `yaml:"document"`
		StarredAgo time.Duration `yaml:"starred_ago"`
	} `yaml:"starred"`
}

// Load reads the embedded fixtures and resolves relative timestamps against now
func Load(now time.Time) (*Set, error) {
	var users usersFile
	if err := readFile("users", &users); err != nil {
		return nil, err
	}
	var tree treeFile
	if err := readFile("tree", &tree); err != nil {
		return nil, err
	}
	var views viewsFile
	if err := readFile("views", &views); err != nil {
		return nil, err
	}

	b := &builder{now: now, users: make(map[string]docsystem.User), docs: make(map[string]docsystem.Document)}
	for _, u := range users.Users {
		if err := validation.Validate(u); err != nil {
			return nil, fmt.Errorf("user %s: %w", u.ID, err)
		}
		b.users[u.ID] = u
		b.set.Users = append(b.set.Users, u)
	}
	current, ok := b.users[users.CurrentUser]
	if !ok {
		return nil, fmt.Errorf("current user %q is not defined", users.CurrentUser)
	}
	b.set.CurrentUser = current
	b.defaultOwner = current

	for _, spec := range tree.Folders {
		folder, err := b.folder(spec, "")
		if err != nil {
			return nil, err
		}
		b.set.Tree = append(b.set.Tree, folder)
	}

	for _, r := range views.Recent {
		doc, err := b.lookup(r.Document)
		if err != nil {
			return nil, fmt.Errorf("recent: %w", err)
		}
		accessed := now.Add(-r.AccessedAgo)
		doc.AccessedAt = &accessed
		b.set.Recent = append(b.set.Recent, doc)
	}

	for _, s := range views.Shared {
		doc, err := b.lookup(s.Document)
		if err != nil {
			return nil, fmt.Errorf("shared: %w", err)
		}
		sharer, ok := b.users[s.SharedBy]
		if !ok {
			return nil, fmt.Errorf("shared %s: unknown user %q", s.Document, s.SharedBy)
		}
		sharing := &docsystem.Sharing{
			SharedBy:   sharer,
			SharedAt:   now.Add(-s.SharedAgo),
			Permission: docsystem.SharePermission(s.Permission),
		}
		if s.ExpiresIn > 0 {
			expires := now.Add(s.ExpiresIn)
			sharing.ExpiresAt = &expires
		}
		doc.Sharing = sharing
		if err := doc.Validate(); err != nil {
			return nil, fmt.Errorf("shared %s: %w", doc.ID, err)
		}
		b.set.Shared = append(b.set.Shared, doc)
	}

	for _, s := range views.Starred {
		doc, err := b.lookup(s.Document)
		if err != nil {
			return nil, fmt.Errorf("starred: %w", err)
		}
		starred := now.Add(-s.StarredAgo)
		doc.IsStarred = true
		doc.StarredAt = &starred
		b.set.Starred = append(b.set.Starred, doc)
	}

	return &b.set, nil
}

func readFile(name string, dest interface{}) error {
	filename := fmt.Sprintf("data/%s.yaml", name)
	data, err := dataFiles.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", filename, err)
	}
	if err := yaml.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("failed to unmarshal %s: %w", filename, err)
	}
	return nil
}

type builder struct {
	now          time.Time
	users        map[string]docsystem.User
	defaultOwner docsystem.User
	docs         map[string]docsystem.Document
	set          Set
}

func (b *builder) folder(spec folderSpec, parentPath string) (*docsystem.TreeFolder, error) {
	folderType := docsystem.FolderType(spec.Type)
	if folderType == "" {
		folderType = docsystem.FolderTypeFolder
	}
	f := &docsystem.TreeFolder{
		ID:            spec.ID,
		Name:          spec.Name,
		Type:          folderType,
		Path:          parentPath + "/" + spec.Name,
		DocumentCount: spec.DocumentCount,
		Color:         spec.Color,
		Icon:          spec.Icon,
	}
	if err := f.Validate(); err != nil {
		return nil, fmt.Errorf("folder %s: %w", spec.ID, err)
	}

	for _, ds := range spec.Documents {
		doc, err := b.document(ds, f)
		if err != nil {
			return nil, err
		}
		f.Documents = append(f.Documents, doc)
	}
	for _, cs := range spec.Children {
		child, err := b.folder(cs, f.Path)
		if err != nil {
			return nil, err
		}
		f.Children = append(f.Children, child)
	}
	return f, nil
}

func (b *builder) document(spec documentSpec, folder *docsystem.TreeFolder) (docsystem.Document, error) {
	if _, dup := b.docs[spec.ID]; dup {
		return docsystem.Document{}, fmt.Errorf("document %s defined twice", spec.ID)
	}
	owner, err := b.user(spec.Owner)
	if err != nil {
		return docsystem.Document{}, fmt.Errorf("document %s owner: %w", spec.ID, err)
	}
	updatedBy, err := b.user(spec.UpdatedBy)
	if err != nil {
		return docsystem.Document{}, fmt.Errorf("document %s updated_by: %w", spec.ID, err)
	}

	ext := strings.TrimPrefix(path.Ext(spec.Name), ".")
	doc := docsystem.Document{
		ID:             spec.ID,
		ObjectID:       "090000018000" + spec.ID,
		Name:           spec.Name,
		Type:           docsystem.DocumentType(spec.Type),
		MimeType:       mimeType(ext),
		Extension:      ext,
		Size:           spec.Size,
		Status:         docsystem.DocumentStatus(spec.Status),
		Metadata:       docsystem.Metadata{Title: strings.TrimSuffix(spec.Name, path.Ext(spec.Name)), Tags: spec.Tags},
		FolderID:       folder.ID,
		FolderPath:     folder.Path,
		Owner:          owner,
		CreatedBy:      owner,
		UpdatedBy:      updatedBy,
		CreatedAt:      b.now.Add(-spec.CreatedAgo),
		UpdatedAt:      b.now.Add(-spec.UpdatedAgo),
		CurrentVersion: spec.Version,
		CheckoutCount:  spec.Checkouts,
		DownloadCount:  spec.Downloads,
	}
	if doc.Metadata.Tags == nil {
		doc.Metadata.Tags = []string{}
	}
	if spec.LockedBy != "" {
		locker, err := b.user(spec.LockedBy)
		if err != nil {
			return docsystem.Document{}, fmt.Errorf("document %s locked_by: %w", spec.ID, err)
		}
		lockedAt := b.now.Add(-spec.LockedAgo)
		doc.IsLocked = true
		doc.LockedBy = &locker
		doc.LockedAt = &lockedAt
	}
	if err := doc.Validate(); err != nil {
		return docsystem.Document{}, fmt.Errorf("document %s: %w", spec.ID, err)
	}

	b.docs[doc.ID] = doc
	b.set.Documents = append(b.set.Documents, doc)
	return doc, nil
}

func (b *builder) user(id string) (docsystem.User, error) {
	if id == "" {
		return b.defaultOwner, nil
	}
	u, ok := b.users[id]
	if !ok {
		return docsystem.User{}, fmt.Errorf("unknown user %q", id)
	}
	return u, nil
}

// lookup returns a copy of a tree document with its own tag slice
func (b *builder) lookup(id string) (docsystem.Document, error) {
	doc, ok := b.docs[id]
	if !ok {
		return docsystem.Document{}, fmt.Errorf("unknown document %q", id)
	}
	doc.Metadata.Tags = append([]string{}, doc.Metadata.Tags...)
	return doc, nil
}

var mimeTypes = map[string]string{
	"pdf":  "application/pdf",
	"docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	"pptx": "application/vnd.openxmlformats-officedocument.presentationml.presentation",
	"svg":  "image/svg+xml",
	"png":  "image/png",
	"zip":  "application/zip",
	"mp4":  "video/mp4",
	"mp3":  "audio/mpeg",
}

func mimeType(ext string) string {
	if m, ok := mimeTypes[strings.ToLower(ext)]; ok {
		return m
	}
	return "application/octet-stream"
}
