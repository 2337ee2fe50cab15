// Package console assembles the per-user set of stores that make up one
// document console session.
package console

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"documentum/internal/domain"
	"documentum/internal/domain/models"
	"documentum/internal/domain/models/docsystem"
	docsysSvc "documentum/internal/domain/services/docsystem"
	"documentum/internal/fixtures"
	"documentum/internal/service"
	docsysService "documentum/internal/service/docsystem"
	"documentum/internal/service/upload"
	"documentum/internal/store"
	"documentum/internal/task"
)

// Options are the collaborators shared by every session
type Options struct {
	Scheduler            task.Scheduler
	Preferences          *service.PreferencesService
	Transport            upload.Transport
	NotificationDuration time.Duration
	Logger               *slog.Logger
}

// Session owns the stores of one signed-in user
type Session struct {
	ID        string
	User      docsystem.User
	StartedAt time.Time

	Documents *store.DocumentStore
	Recent    *store.RecentStore
	Shared    *store.SharedStore
	Starred   *store.StarredStore
	Folders   *store.FolderStore
	UI        *store.UIStore
	Uploads   *upload.Queue
	Tree      docsysSvc.TreeService

	users     []docsystem.User
	scheduler task.Scheduler
	logger    *slog.Logger
	unbinds   []func()
}

// NewSession builds the stores for userID, restores persisted preferences
// and seeds the views from fixtures
func NewSession(ctx context.Context, userID string, opts Options) (*Session, error) {
	now := opts.Scheduler.Now()
	set, err := fixtures.Load(now)
	if err != nil {
		return nil, fmt.Errorf("load fixtures: %w", err)
	}

	user, ok := findUser(set.Users, userID)
	if !ok {
		return nil, &domain.NotFoundError{Resource: "user", ID: userID}
	}

	logger := opts.Logger.With("user_id", userID)
	s := &Session{
		ID:        uuid.NewString(),
		User:      user,
		StartedAt: now,
		Documents: store.NewDocumentStore(),
		Recent:    store.NewRecentStore(),
		Shared:    store.NewSharedStore(),
		Starred:   store.NewStarredStore(),
		Folders:   store.NewFolderStore(set.Tree),
		UI:        store.NewUIStore(opts.Scheduler, opts.NotificationDuration),
		Tree:      docsysService.NewTreeService(set.Tree, logger),
		users:     set.Users,
		scheduler: opts.Scheduler,
		logger:    logger,
	}
	s.Uploads = upload.NewQueue(opts.Transport, logger, s.trackUploads)

	s.Documents.SetDocuments(set.Documents)
	s.Recent.SetDocuments(set.Recent)
	s.Shared.SetDocuments(set.Shared)
	s.Starred.SetDocuments(set.Starred)

	if opts.Preferences != nil {
		p := opts.Preferences
		s.unbinds = append(s.unbinds,
			service.Bind(ctx, p, userID, models.KeyDocuments, s.Documents),
			service.Bind(ctx, p, userID, models.KeyFolders, s.Folders),
			service.Bind(ctx, p, userID, models.KeyUI, s.UI),
			service.Bind(ctx, p, userID, models.KeyRecent, s.Recent),
			service.Bind(ctx, p, userID, models.KeyShared, s.Shared),
			service.Bind(ctx, p, userID, models.KeyStarred, s.Starred),
		)
	}

	logger.Info("console session started",
		"session_id", s.ID,
		"documents", len(set.Documents),
		"recent", len(set.Recent),
		"shared", len(set.Shared),
		"starred", len(set.Starred),
	)
	return s, nil
}

// Collection returns the store behind a document view
func (s *Session) Collection(view docsystem.View) (*store.CollectionStore, error) {
	switch view {
	case docsystem.ViewAll:
		return s.Documents.CollectionStore, nil
	case docsystem.ViewRecent:
		return s.Recent.CollectionStore, nil
	case docsystem.ViewShared:
		return s.Shared.CollectionStore, nil
	case docsystem.ViewStarred:
		return s.Starred.CollectionStore, nil
	}
	return nil, &domain.NotFoundError{Resource: "view", ID: string(view)}
}

// Now is the session clock
func (s *Session) Now() time.Time {
	return s.scheduler.Now()
}

// Users returns the known identities
func (s *Session) Users() []docsystem.User {
	return s.users
}

// OpenDocument makes id the current document and moves it to the top of
// the recent view with a fresh access time
func (s *Session) OpenDocument(id string) (docsystem.Document, error) {
	doc, ok := s.findDocument(id)
	if !ok {
		return docsystem.Document{}, &domain.NotFoundError{Resource: "document", ID: id}
	}

	now := s.scheduler.Now()
	doc.AccessedAt = &now
	s.Documents.SetCurrentDocument(&doc)

	s.Recent.RemoveDocument(id)
	s.Recent.AddDocument(doc)

	s.logger.Debug("document opened", "document_id", id)
	return doc, nil
}

// ToggleStar stars or unstars a document across every view holding it.
// It returns the new starred state.
func (s *Session) ToggleStar(id string) (bool, error) {
	doc, ok := s.findDocument(id)
	if !ok {
		return false, &domain.NotFoundError{Resource: "document", ID: id}
	}

	starred := !containsDocument(s.Starred.CollectionStore, id)
	patch := docsystem.DocumentPatch{IsStarred: &starred}
	s.Documents.UpdateDocument(id, patch)
	s.Recent.UpdateDocument(id, patch)
	s.Shared.UpdateDocument(id, patch)

	if starred {
		now := s.scheduler.Now()
		doc.IsStarred = true
		doc.StarredAt = &now
		s.Starred.AddDocument(doc)
	} else {
		s.Starred.Unstar(id)
	}

	s.logger.Debug("star toggled", "document_id", id, "starred", starred)
	return starred, nil
}

// Upload enqueues files and reports the upload with a notification
func (s *Session) Upload(ctx context.Context, files ...upload.File) []string {
	ids := s.Uploads.Add(ctx, files...)
	s.UI.AddNotification(store.NotificationRequest{
		Kind:        store.NotifyInfo,
		Title:       "Upload started",
		Message:     fmt.Sprintf("%d file(s) queued", len(files)),
		Dismissible: true,
	})
	return ids
}

// Close stops persistence, timers and uploads
func (s *Session) Close() {
	for _, unbind := range s.unbinds {
		unbind()
	}
	s.unbinds = nil
	s.Uploads.Close()
	s.UI.Close()
	s.logger.Info("console session closed", "session_id", s.ID)
}

// trackUploads mirrors the queue summary into the documents store
func (s *Session) trackUploads(sum upload.Summary) {
	s.Documents.SetUploading(sum.Active)
	if sum.Active {
		s.Documents.SetUploadProgress(int(sum.Progress))
	}
}

// findDocument looks in every view, the all-documents store first
func (s *Session) findDocument(id string) (docsystem.Document, bool) {
	for _, c := range []*store.CollectionStore{
		s.Documents.CollectionStore, s.Recent.CollectionStore,
		s.Shared.CollectionStore, s.Starred.CollectionStore,
	} {
		if doc, ok := lookup(c, id); ok {
			return doc, true
		}
	}
	return docsystem.Document{}, false
}

func lookup(c *store.CollectionStore, id string) (docsystem.Document, bool) {
	var (
		doc   docsystem.Document
		found bool
	)
	c.Read(func(col *store.Collection) {
		for _, d := range col.Documents {
			if d.ID == id {
				doc, found = d, true
				return
			}
		}
	})
	return doc, found
}

func containsDocument(c *store.CollectionStore, id string) bool {
	_, ok := lookup(c, id)
	return ok
}

func findUser(users []docsystem.User, id string) (docsystem.User, bool) {
	for _, u := range users {
		if u.ID == id {
			return u, true
		}
	}
	return docsystem.User{}, false
}
