package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"documentum/internal/domain/models"
	"documentum/internal/domain/models/docsystem"
	"documentum/internal/domain/repositories"
	"documentum/internal/domain/services"
	"documentum/internal/store"
)

// PreferencesService implements the PreferencesService interface
type PreferencesService struct {
	repo      repositories.SnapshotRepository
	txManager repositories.TransactionManager
	logger    *slog.Logger

	mu          sync.Mutex
	lastWritten map[string][]byte
}

// NewPreferencesService creates a new preferences service
func NewPreferencesService(
	repo repositories.SnapshotRepository,
	txManager repositories.TransactionManager,
	logger *slog.Logger,
) *PreferencesService {
	return &PreferencesService{
		repo:        repo,
		txManager:   txManager,
		logger:      logger,
		lastWritten: make(map[string][]byte),
	}
}

var _ services.PreferencesService = (*PreferencesService)(nil)

// Read returns the stored data for key, nil if nothing is stored
func (s *PreferencesService) Read(ctx context.Context, owner, key string) (models.JSONMap, error) {
	snap, err := s.repo.Get(ctx, owner, key)
	if err != nil {
		return nil, fmt.Errorf("get snapshot: %w", err)
	}
	if snap == nil {
		return nil, nil
	}
	return snap.Data, nil
}

// ReadAll returns every stored snapshot of owner
func (s *PreferencesService) ReadAll(ctx context.Context, owner string) (map[string]models.JSONMap, error) {
	out := make(map[string]models.JSONMap, len(models.SnapshotKeys))
	for _, key := range models.SnapshotKeys {
		data, err := s.Read(ctx, owner, key)
		if err != nil {
			return nil, err
		}
		if data != nil {
			out[key] = data
		}
	}
	return out, nil
}

// Write stores v under key unless its JSON form equals the last payload
// written for the same owner and key
func (s *PreferencesService) Write(ctx context.Context, owner, key string, v interface{}) (bool, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return false, fmt.Errorf("encode %s: %w", key, err)
	}

	cacheKey := owner + "/" + key
	s.mu.Lock()
	defer s.mu.Unlock()

	if last, ok := s.lastWritten[cacheKey]; ok && bytes.Equal(last, payload) {
		return false, nil
	}

	snap := &models.Snapshot{Owner: owner, Key: key}
	if err := snap.Encode(v); err != nil {
		return false, fmt.Errorf("encode %s: %w", key, err)
	}
	if err := s.repo.Upsert(ctx, snap); err != nil {
		return false, fmt.Errorf("upsert snapshot: %w", err)
	}
	s.lastWritten[cacheKey] = payload

	s.logger.Debug("preferences written", "owner", owner, "key", key)
	return true, nil
}

// ResetAll deletes every snapshot of owner in one transaction
func (s *PreferencesService) ResetAll(ctx context.Context, owner string) error {
	err := s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		for _, key := range models.SnapshotKeys {
			if err := s.repo.Delete(ctx, owner, key); err != nil {
				return fmt.Errorf("delete %s: %w", key, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.mu.Lock()
	for _, key := range models.SnapshotKeys {
		delete(s.lastWritten, owner+"/"+key)
	}
	s.mu.Unlock()

	s.logger.Info("preferences reset", "owner", owner)
	return nil
}

// remember records v as the last payload so hydrated state is not written back
func (s *PreferencesService) remember(owner, key string, v interface{}) {
	payload, err := json.Marshal(v)
	if err != nil {
		return
	}
	s.mu.Lock()
	s.lastWritten[owner+"/"+key] = payload
	s.mu.Unlock()
}

// Persistable is a store exposing a persisted subset of its state
type Persistable[P any] interface {
	Preferences() P
	ApplyPreferences(P)
	WatchPreferences(fn func(P)) func()
}

// Load decodes the snapshot under key on top of defaults and validates it.
// Absent snapshots return defaults; malformed ones are logged and also return defaults.
func Load[P any](ctx context.Context, s *PreferencesService, owner, key string, defaults P) P {
	snap, err := s.repo.Get(ctx, owner, key)
	if err != nil {
		s.logger.Warn("snapshot unreadable, using defaults", "owner", owner, "key", key, "error", err)
		return defaults
	}
	if snap == nil {
		s.logger.Debug("no snapshot found, using defaults", "owner", owner, "key", key)
		return defaults
	}

	loaded, err := decodeOnto(snap, defaults)
	if err != nil {
		s.logger.Warn("snapshot malformed, using defaults", "owner", owner, "key", key, "error", err)
		return defaults
	}
	if err := validatePreferences(loaded); err != nil {
		s.logger.Warn("snapshot invalid, using defaults", "owner", owner, "key", key, "error", err)
		return defaults
	}

	return loaded
}

// Bind hydrates target from its snapshot and then writes the persisted
// subset after each mutation. The returned func stops persisting.
func Bind[P any](ctx context.Context, s *PreferencesService, owner, key string, target Persistable[P]) func() {
	target.ApplyPreferences(Load(ctx, s, owner, key, target.Preferences()))
	s.remember(owner, key, target.Preferences())

	writeCtx := context.WithoutCancel(ctx)
	return target.WatchPreferences(func(p P) {
		if _, err := s.Write(writeCtx, owner, key, p); err != nil {
			s.logger.Error("persist preferences", "owner", owner, "key", key, "error", err)
		}
	})
}

// decodeOnto overlays the snapshot fields on a copy of defaults so
// missing fields keep their default values
func decodeOnto[P any](snap *models.Snapshot, defaults P) (P, error) {
	raw, err := json.Marshal(defaults)
	if err != nil {
		return defaults, err
	}
	var out P
	if err := json.Unmarshal(raw, &out); err != nil {
		return defaults, err
	}
	if err := snap.Decode(&out); err != nil {
		return defaults, err
	}
	return out, nil
}

// validatePreferences checks enumerations and bounds of a decoded subset
func validatePreferences(p interface{}) error {
	switch v := p.(type) {
	case models.DocumentsPreferences:
		return validation.ValidateStruct(&v,
			validation.Field(&v.ViewMode, validation.By(isViewMode)),
			validation.Field(&v.SortBy, validation.By(sortKeyIn(store.DocumentSortKeys))),
			validation.Field(&v.SortOrder, validation.By(isSortDirection)),
			validation.Field(&v.PageSize, validation.Required, validation.Min(1), validation.Max(docsystem.MaxPageSize)),
		)
	case models.FoldersPreferences:
		return validation.ValidateStruct(&v,
			validation.Field(&v.ExpandedFolders, validation.Each(validation.Required)),
		)
	case models.UIPreferences:
		return validation.ValidateStruct(&v,
			validation.Field(&v.Theme, validation.Required, validation.In(models.ThemeLight, models.ThemeDark, models.ThemeSystem)),
		)
	case models.RecentPreferences:
		return validation.ValidateStruct(&v,
			validation.Field(&v.TimeFilter, validation.By(isTimeFilter)),
			validation.Field(&v.SortBy, validation.By(sortKeyIn(store.RecentSortKeys))),
			validation.Field(&v.TypeFilters, validation.Each(validation.By(isDocumentType))),
		)
	case models.SharedPreferences:
		return validation.ValidateStruct(&v,
			validation.Field(&v.SortBy, validation.By(sortKeyIn(store.SharedSortKeys))),
			validation.Field(&v.PermissionFilter, validation.By(isPermissionFilter)),
			validation.Field(&v.SharedByFilters, validation.Each(validation.Required)),
		)
	case models.StarredPreferences:
		return validation.ValidateStruct(&v,
			validation.Field(&v.SortBy, validation.By(sortKeyIn(store.StarredSortKeys))),
			validation.Field(&v.ViewMode, validation.By(isViewMode)),
		)
	}
	return nil
}

func isViewMode(value interface{}) error {
	if m, _ := value.(docsystem.ViewMode); !docsystem.ValidViewMode(m) {
		return fmt.Errorf("unknown view mode %q", m)
	}
	return nil
}

func isSortDirection(value interface{}) error {
	if d, _ := value.(docsystem.SortDirection); !docsystem.ValidSortDirection(d) {
		return fmt.Errorf("unknown sort direction %q", d)
	}
	return nil
}

func isTimeFilter(value interface{}) error {
	if f, _ := value.(docsystem.TimeFilter); !docsystem.ValidTimeFilter(f) {
		return fmt.Errorf("unknown time filter %q", f)
	}
	return nil
}

func isDocumentType(value interface{}) error {
	if t, _ := value.(docsystem.DocumentType); !docsystem.ValidDocumentType(t) {
		return fmt.Errorf("unknown document type %q", t)
	}
	return nil
}

func isPermissionFilter(value interface{}) error {
	f, _ := value.(models.PermissionFilter)
	if f == models.PermissionAll || slices.Contains(docsystem.SharePermissions, docsystem.SharePermission(f)) {
		return nil
	}
	return fmt.Errorf("unknown permission filter %q", f)
}

func sortKeyIn(keys []docsystem.SortKey) validation.RuleFunc {
	return func(value interface{}) error {
		if k, _ := value.(docsystem.SortKey); !slices.Contains(keys, k) {
			return fmt.Errorf("unsupported sort key %q", k)
		}
		return nil
	}
}
