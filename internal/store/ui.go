package store

import (
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"documentum/internal/domain"
	"documentum/internal/domain/models"
	"documentum/internal/task"
)

// DefaultNotificationDuration is how long a notification stays when the
// caller does not say otherwise
const DefaultNotificationDuration = 5000 * time.Millisecond

// ThemeProvider is the single source of the console theme
type ThemeProvider interface {
	CurrentTheme() models.Theme
	SetTheme(theme models.Theme) error
}

// NotificationKind is the severity of a notification
type NotificationKind string

const (
	NotifySuccess NotificationKind = "success"
	NotifyError   NotificationKind = "error"
	NotifyWarning NotificationKind = "warning"
	NotifyInfo    NotificationKind = "info"
)

// Notification is a transient message in the notification queue
type Notification struct {
	ID          string           `json:"id"`
	Kind        NotificationKind `json:"type"`
	Title       string           `json:"title"`
	Message     string           `json:"message,omitempty"`
	Duration    time.Duration    `json:"duration"`
	Dismissible bool             `json:"dismissible"`
	CreatedAt   time.Time        `json:"created_at"`
}

// NotificationRequest describes a notification to add.
// A nil Duration uses the store default; zero keeps it until dismissed.
type NotificationRequest struct {
	Kind        NotificationKind
	Title       string
	Message     string
	Duration    *time.Duration
	Dismissible bool
}

// Modal is an open dialog on the modal stack
type Modal struct {
	ID    string                 `json:"id"`
	Type  string                 `json:"type"`
	Props map[string]interface{} `json:"props,omitempty"`
}

// DragData is the payload of an active drag
type DragData struct {
	Type string   `json:"type"`
	IDs  []string `json:"ids"`
}

// ContextMenu is an open context menu
type ContextMenu struct {
	X    int         `json:"x"`
	Y    int         `json:"y"`
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

// UIState is the non-domain chrome of the console
type UIState struct {
	Theme              models.Theme   `json:"theme"`
	SidebarOpen        bool           `json:"sidebar_open"`
	SidebarCollapsed   bool           `json:"sidebar_collapsed"`
	DetailsPanelOpen   bool           `json:"details_panel_open"`
	SearchPanelOpen    bool           `json:"search_panel_open"`
	Modals             []Modal        `json:"modals"`
	Notifications      []Notification `json:"notifications"`
	CommandPaletteOpen bool           `json:"command_palette_open"`
	GlobalSearchQuery  string         `json:"global_search_query"`
	Dragging           bool           `json:"is_dragging"`
	DragData           *DragData      `json:"drag_data,omitempty"`
	ContextMenu        *ContextMenu   `json:"context_menu,omitempty"`
}

func defaultUIState() UIState {
	return UIState{
		Theme:         models.ThemeDark,
		SidebarOpen:   true,
		Modals:        []Modal{},
		Notifications: []Notification{},
	}
}

func cloneUIState(u UIState) UIState {
	u.Modals = slices.Clone(u.Modals)
	for i := range u.Modals {
		u.Modals[i].Props = maps.Clone(u.Modals[i].Props)
	}
	u.Notifications = slices.Clone(u.Notifications)
	if u.DragData != nil {
		d := DragData{Type: u.DragData.Type, IDs: slices.Clone(u.DragData.IDs)}
		u.DragData = &d
	}
	if u.ContextMenu != nil {
		m := *u.ContextMenu
		u.ContextMenu = &m
	}
	return u
}

var themeCycle = []models.Theme{models.ThemeLight, models.ThemeDark, models.ThemeSystem}

// UIStore holds theme, panels, modals, notifications and drag state.
// Notification expiry runs on the scheduler.
type UIStore struct {
	*Store[UIState]

	scheduler       task.Scheduler
	defaultDuration time.Duration

	mu              sync.Mutex
	modalSeq        int
	notificationSeq int
	timers          map[string]task.Timer
}

var _ ThemeProvider = (*UIStore)(nil)

// NewUIStore creates a UI store. defaultDuration <= 0 uses DefaultNotificationDuration.
func NewUIStore(scheduler task.Scheduler, defaultDuration time.Duration) *UIStore {
	if defaultDuration <= 0 {
		defaultDuration = DefaultNotificationDuration
	}
	return &UIStore{
		Store:           New(defaultUIState(), cloneUIState),
		scheduler:       scheduler,
		defaultDuration: defaultDuration,
		timers:          make(map[string]task.Timer),
	}
}

// CurrentTheme returns the active theme
func (s *UIStore) CurrentTheme() models.Theme {
	var theme models.Theme
	s.Read(func(u *UIState) { theme = u.Theme })
	return theme
}

// SetTheme selects a theme
func (s *UIStore) SetTheme(theme models.Theme) error {
	if !slices.Contains(themeCycle, theme) {
		return &domain.ValidationError{Message: fmt.Sprintf("invalid theme: %q", theme)}
	}
	s.Update(func(u *UIState) { u.Theme = theme })
	return nil
}

// ToggleTheme cycles light, dark, system
func (s *UIStore) ToggleTheme() models.Theme {
	var next models.Theme
	s.Update(func(u *UIState) {
		i := slices.Index(themeCycle, u.Theme)
		u.Theme = themeCycle[(i+1)%len(themeCycle)]
		next = u.Theme
	})
	return next
}

func (s *UIStore) ToggleSidebar() {
	s.Update(func(u *UIState) { u.SidebarOpen = !u.SidebarOpen })
}

func (s *UIStore) SetSidebarOpen(open bool) {
	s.Update(func(u *UIState) { u.SidebarOpen = open })
}

func (s *UIStore) ToggleSidebarCollapsed() {
	s.Update(func(u *UIState) { u.SidebarCollapsed = !u.SidebarCollapsed })
}

func (s *UIStore) SetSidebarCollapsed(collapsed bool) {
	s.Update(func(u *UIState) { u.SidebarCollapsed = collapsed })
}

func (s *UIStore) ToggleDetailsPanel() {
	s.Update(func(u *UIState) { u.DetailsPanelOpen = !u.DetailsPanelOpen })
}

func (s *UIStore) SetDetailsPanelOpen(open bool) {
	s.Update(func(u *UIState) { u.DetailsPanelOpen = open })
}

func (s *UIStore) ToggleSearchPanel() {
	s.Update(func(u *UIState) { u.SearchPanelOpen = !u.SearchPanelOpen })
}

func (s *UIStore) SetSearchPanelOpen(open bool) {
	s.Update(func(u *UIState) { u.SearchPanelOpen = open })
}

// OpenModal pushes a modal and returns its id
func (s *UIStore) OpenModal(modalType string, props map[string]interface{}) string {
	s.mu.Lock()
	s.modalSeq++
	id := fmt.Sprintf("modal-%d", s.modalSeq)
	s.mu.Unlock()

	s.Update(func(u *UIState) {
		u.Modals = append(u.Modals, Modal{ID: id, Type: modalType, Props: maps.Clone(props)})
	})
	return id
}

// CloseModal removes the modal with id from the stack
func (s *UIStore) CloseModal(id string) {
	s.Update(func(u *UIState) {
		u.Modals = slices.DeleteFunc(u.Modals, func(m Modal) bool { return m.ID == id })
	})
}

// CloseAllModals empties the modal stack
func (s *UIStore) CloseAllModals() {
	s.Update(func(u *UIState) { u.Modals = []Modal{} })
}

// AddNotification queues a notification and schedules its expiry
func (s *UIStore) AddNotification(req NotificationRequest) string {
	duration := s.defaultDuration
	if req.Duration != nil {
		duration = max(*req.Duration, 0)
	}
	kind := req.Kind
	if kind == "" {
		kind = NotifyInfo
	}

	s.mu.Lock()
	s.notificationSeq++
	id := fmt.Sprintf("notification-%d", s.notificationSeq)
	s.mu.Unlock()

	s.Update(func(u *UIState) {
		u.Notifications = append(u.Notifications, Notification{
			ID:          id,
			Kind:        kind,
			Title:       req.Title,
			Message:     req.Message,
			Duration:    duration,
			Dismissible: req.Dismissible,
			CreatedAt:   s.scheduler.Now(),
		})
	})

	if duration > 0 {
		// expire takes mu, so the timer is registered before it can be removed
		s.mu.Lock()
		s.timers[id] = s.scheduler.AfterFunc(duration, func() { s.expire(id) })
		s.mu.Unlock()
	}
	return id
}

func (s *UIStore) expire(id string) {
	s.mu.Lock()
	delete(s.timers, id)
	s.mu.Unlock()
	s.dropNotification(id)
}

// RemoveNotification dismisses a notification and cancels its expiry
func (s *UIStore) RemoveNotification(id string) {
	s.mu.Lock()
	if timer, ok := s.timers[id]; ok {
		timer.Stop()
		delete(s.timers, id)
	}
	s.mu.Unlock()
	s.dropNotification(id)
}

func (s *UIStore) dropNotification(id string) {
	s.Update(func(u *UIState) {
		u.Notifications = slices.DeleteFunc(u.Notifications, func(n Notification) bool { return n.ID == id })
	})
}

// ClearNotifications dismisses every notification
func (s *UIStore) ClearNotifications() {
	s.stopTimers()
	s.Update(func(u *UIState) { u.Notifications = []Notification{} })
}

func (s *UIStore) ToggleCommandPalette() {
	s.Update(func(u *UIState) { u.CommandPaletteOpen = !u.CommandPaletteOpen })
}

func (s *UIStore) SetCommandPaletteOpen(open bool) {
	s.Update(func(u *UIState) { u.CommandPaletteOpen = open })
}

func (s *UIStore) SetGlobalSearchQuery(query string) {
	s.Update(func(u *UIState) { u.GlobalSearchQuery = query })
}

// StartDrag records the dragged items
func (s *UIStore) StartDrag(dragType string, ids []string) {
	s.Update(func(u *UIState) {
		u.Dragging = true
		u.DragData = &DragData{Type: dragType, IDs: slices.Clone(ids)}
	})
}

// EndDrag clears the drag payload
func (s *UIStore) EndDrag() {
	s.Update(func(u *UIState) {
		u.Dragging = false
		u.DragData = nil
	})
}

// OpenContextMenu shows a context menu at x, y
func (s *UIStore) OpenContextMenu(x, y int, menuType string, data interface{}) {
	s.Update(func(u *UIState) { u.ContextMenu = &ContextMenu{X: x, Y: y, Type: menuType, Data: data} })
}

func (s *UIStore) CloseContextMenu() {
	s.Update(func(u *UIState) { u.ContextMenu = nil })
}

// Reset restores the defaults and cancels pending expiries
func (s *UIStore) Reset() {
	s.stopTimers()
	s.Update(func(u *UIState) { *u = defaultUIState() })
}

// Close cancels pending expiries
func (s *UIStore) Close() {
	s.stopTimers()
}

func (s *UIStore) stopTimers() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, timer := range s.timers {
		timer.Stop()
		delete(s.timers, id)
	}
}

// Preferences returns the persisted subset of the state
func (s *UIStore) Preferences() models.UIPreferences {
	var p models.UIPreferences
	s.Read(func(u *UIState) { p = uiPreferences(*u) })
	return p
}

// ApplyPreferences restores a persisted subset
func (s *UIStore) ApplyPreferences(p models.UIPreferences) {
	s.Update(func(u *UIState) {
		u.Theme = p.Theme
		u.SidebarCollapsed = p.SidebarCollapsed
	})
}

// WatchPreferences calls fn with the persisted subset after every mutation
func (s *UIStore) WatchPreferences(fn func(models.UIPreferences)) func() {
	return s.Subscribe(func(u UIState) { fn(uiPreferences(u)) })
}

func uiPreferences(u UIState) models.UIPreferences {
	return models.UIPreferences{Theme: u.Theme, SidebarCollapsed: u.SidebarCollapsed}
}
