package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"documentum/internal/auth"
	"documentum/internal/domain/models"
	"documentum/internal/domain/repositories"
	"documentum/internal/fixtures"
	"documentum/internal/httputil"
	"documentum/internal/repository/memory"
	"documentum/internal/service"
	authService "documentum/internal/service/auth"
	"documentum/internal/service/console"
	"documentum/internal/service/upload"
	"documentum/internal/store"
	"documentum/internal/task"
)

var testStart = time.Date(2026, 3, 10, 15, 30, 0, 0, time.UTC)

type testEnv struct {
	mux           *http.ServeMux
	scheduler     *task.VirtualScheduler
	manager       *console.Manager
	authenticator *authService.Authenticator
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	scheduler := task.NewVirtualScheduler(testStart)

	prefs := service.NewPreferencesService(memory.NewSnapshotRepository(), repositories.DirectTransactionManager{}, logger)
	manager := console.NewManager(console.Options{
		Scheduler:            scheduler,
		Preferences:          prefs,
		Transport:            upload.NewSimulatedTransport(scheduler, 3),
		NotificationDuration: store.DefaultNotificationDuration,
		Logger:               logger,
	})
	t.Cleanup(manager.Close)

	set, err := fixtures.Load(testStart)
	if err != nil {
		t.Fatalf("fixtures.Load: %v", err)
	}
	tokens, err := auth.NewHMACTokenService("test-secret", time.Hour, scheduler.Now, logger)
	if err != nil {
		t.Fatalf("NewHMACTokenService: %v", err)
	}
	authenticator := authService.NewAuthenticator(scheduler, tokens, set.Users, set.CurrentUser, logger)

	tree := NewTreeHandler(manager, logger)
	views := NewViewHandler(manager, logger)
	ui := NewUIHandler(manager, logger)
	uploads := NewUploadHandler(manager, logger)
	userPrefs := NewUserPreferencesHandler(prefs, manager, logger)
	authH := NewAuthHandler(authenticator, manager, scheduler, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", HealthCheck)
	mux.HandleFunc("GET /api/tree", tree.GetTree)
	mux.HandleFunc("POST /api/folders/navigate", tree.Navigate)
	mux.HandleFunc("GET /api/folders/{id}", tree.GetFolder)
	mux.HandleFunc("GET /api/folders/{id}/breadcrumb", tree.GetBreadcrumb)
	mux.HandleFunc("GET /api/folders/{id}/documents", tree.GetFolderDocuments)
	mux.HandleFunc("POST /api/folders/{id}/toggle", tree.ToggleExpanded)
	mux.HandleFunc("GET /api/views/{view}", views.GetView)
	mux.HandleFunc("PATCH /api/views/{view}/filter", views.UpdateFilter)
	mux.HandleFunc("DELETE /api/views/{view}/filter", views.ClearFilter)
	mux.HandleFunc("PUT /api/views/{view}/sort", views.SetSort)
	mux.HandleFunc("PUT /api/views/{view}/mode", views.SetMode)
	mux.HandleFunc("PUT /api/views/{view}/page", views.SetPage)
	mux.HandleFunc("POST /api/views/{view}/selection", views.UpdateSelection)
	mux.HandleFunc("POST /api/documents/{id}/open", views.OpenDocument)
	mux.HandleFunc("POST /api/documents/{id}/star", views.ToggleStar)
	mux.HandleFunc("GET /api/ui", ui.GetUI)
	mux.HandleFunc("PUT /api/ui/theme", ui.SetTheme)
	mux.HandleFunc("POST /api/ui/theme/toggle", ui.ToggleTheme)
	mux.HandleFunc("PATCH /api/ui/panels", ui.UpdatePanels)
	mux.HandleFunc("POST /api/ui/notifications", ui.AddNotification)
	mux.HandleFunc("DELETE /api/ui/notifications/{id}", ui.DismissNotification)
	mux.HandleFunc("GET /api/uploads", uploads.ListUploads)
	mux.HandleFunc("POST /api/uploads", uploads.CreateUploads)
	mux.HandleFunc("DELETE /api/uploads/{id}", uploads.RemoveUpload)
	mux.HandleFunc("POST /api/uploads/clear-completed", uploads.ClearCompleted)
	mux.HandleFunc("GET /api/users/me/preferences", userPrefs.GetPreferences)
	mux.HandleFunc("DELETE /api/users/me/preferences", userPrefs.ResetPreferences)
	mux.HandleFunc("GET /api/auth/providers", authH.ListProviders)
	mux.HandleFunc("POST /api/auth/oauth/{provider}", authH.OAuthLogin)
	mux.HandleFunc("POST /api/auth/login", authH.EmailLogin)
	mux.HandleFunc("POST /api/auth/signout", authH.StartSignOut)
	mux.HandleFunc("GET /api/auth/signout", authH.GetSignOut)
	mux.HandleFunc("POST /api/auth/signout/skip", authH.SkipSignOut)
	mux.HandleFunc("DELETE /api/auth/signout", authH.CancelSignOut)

	return &testEnv{mux: mux, scheduler: scheduler, manager: manager, authenticator: authenticator}
}

// do sends a request as user-1. A nil body sends no body.
func (e *testEnv) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	return e.doAs(t, "user-1", method, path, body)
}

func (e *testEnv) doAs(t *testing.T, userID, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if userID != "" {
		req = httputil.WithUserID(req, userID)
	}
	rec := httptest.NewRecorder()
	e.mux.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return out
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("status = %d, want %d; body = %s", rec.Code, want, rec.Body.String())
	}
}

func TestSessionRequired(t *testing.T) {
	env := newTestEnv(t)

	expectStatus(t, env.doAs(t, "", http.MethodGet, "/api/tree", nil), http.StatusUnauthorized)
	expectStatus(t, env.doAs(t, "user-99", http.MethodGet, "/api/tree", nil), http.StatusNotFound)
	expectStatus(t, env.doAs(t, "", http.MethodGet, "/health", nil), http.StatusOK)
}

func TestTreeHandler(t *testing.T) {
	env := newTestEnv(t)

	type treeResponse struct {
		Folders []struct {
			ID string `json:"id"`
		} `json:"folders"`
		State folderStateResponse `json:"state"`
	}

	tree := decode[treeResponse](t, env.do(t, http.MethodGet, "/api/tree", nil))
	if len(tree.Folders) != 4 {
		t.Fatalf("roots = %d, want 4", len(tree.Folders))
	}

	tree = decode[treeResponse](t, env.do(t, http.MethodGet, "/api/tree?q=Finance", nil))
	if len(tree.Folders) != 1 || tree.Folders[0].ID != "cabinet-1" || tree.State.SearchQuery != "Finance" {
		t.Fatalf("search result = %+v", tree)
	}

	rec := env.do(t, http.MethodPost, "/api/folders/navigate", NavigateRequest{FolderID: "folder-1-2"})
	expectStatus(t, rec, http.StatusOK)
	state := decode[folderStateResponse](t, rec)
	if state.CurrentID != "folder-1-2" || len(state.Breadcrumb) != 2 {
		t.Fatalf("state after navigate = %+v", state)
	}
	if len(state.Expanded) == 0 || state.Expanded[0] != "cabinet-1" {
		t.Errorf("ancestors not expanded: %v", state.Expanded)
	}

	state = decode[folderStateResponse](t, env.do(t, http.MethodPost, "/api/folders/navigate", NavigateRequest{Up: true}))
	if state.CurrentID != "cabinet-1" {
		t.Errorf("after up current = %q, want cabinet-1", state.CurrentID)
	}

	expectStatus(t, env.do(t, http.MethodPost, "/api/folders/navigate", NavigateRequest{FolderID: "nowhere"}), http.StatusNotFound)
	expectStatus(t, env.do(t, http.MethodGet, "/api/folders/nowhere", nil), http.StatusNotFound)
	expectStatus(t, env.do(t, http.MethodPost, "/api/folders/nowhere/toggle", nil), http.StatusNotFound)

	crumbs := decode[[]struct {
		ID string `json:"id"`
	}](t, env.do(t, http.MethodGet, "/api/folders/folder-1-2/breadcrumb", nil))
	if len(crumbs) != 2 || crumbs[0].ID != "cabinet-1" || crumbs[1].ID != "folder-1-2" {
		t.Errorf("breadcrumb = %+v", crumbs)
	}

	rec = env.do(t, http.MethodGet, "/api/folders/cabinet-1/documents?recursive=true", nil)
	expectStatus(t, rec, http.StatusOK)
	if docs := decode[[]json.RawMessage](t, rec); len(docs) == 0 {
		t.Error("recursive listing is empty")
	}
}

func TestViewHandler_GetAndPaging(t *testing.T) {
	env := newTestEnv(t)

	view := decode[ViewResponse](t, env.do(t, http.MethodGet, "/api/views/starred", nil))
	if view.Page.Total != 5 {
		t.Fatalf("starred total = %d, want 5", view.Page.Total)
	}
	expectStatus(t, env.do(t, http.MethodGet, "/api/views/trash", nil), http.StatusNotFound)

	rec := env.do(t, http.MethodPut, "/api/views/documents/page", PageRequest{PageSize: 10})
	expectStatus(t, rec, http.StatusOK)
	view = decode[ViewResponse](t, env.do(t, http.MethodPut, "/api/views/documents/page", PageRequest{Action: "next"}))
	if view.Page.Page != 2 || len(view.Page.Items) != 10 || !view.Page.HasPrevious {
		t.Fatalf("page = %+v", view.Page)
	}

	view = decode[ViewResponse](t, env.do(t, http.MethodPut, "/api/views/documents/page", PageRequest{Page: 4}))
	if view.Page.Page != 4 || len(view.Page.Items) != 7 || view.Page.HasNext {
		t.Fatalf("last page = %+v", view.Page)
	}

	tests := []struct {
		name string
		req  PageRequest
	}{
		{"out of range", PageRequest{Page: 9}},
		{"page size too large", PageRequest{PageSize: 500}},
		{"unknown action", PageRequest{Action: "last"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expectStatus(t, env.do(t, http.MethodPut, "/api/views/documents/page", tt.req), http.StatusBadRequest)
		})
	}
}

func TestViewHandler_FilterSortMode(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPatch, "/api/views/documents/filter", map[string]interface{}{"types": []string{"pdf"}})
	expectStatus(t, rec, http.StatusOK)
	view := decode[ViewResponse](t, rec)
	if view.Page.Total == 0 || view.Page.Total >= 37 {
		t.Fatalf("pdf total = %d", view.Page.Total)
	}
	for _, d := range view.Page.Items {
		if d.Type != "pdf" {
			t.Errorf("document %s has type %s", d.ID, d.Type)
		}
	}

	view = decode[ViewResponse](t, env.do(t, http.MethodDelete, "/api/views/documents/filter", nil))
	if view.Page.Total != 37 {
		t.Errorf("total after clear = %d, want 37", view.Page.Total)
	}

	view = decode[ViewResponse](t, env.do(t, http.MethodPut, "/api/views/documents/sort", SortRequest{SortBy: "name"}))
	if view.SortBy != "name" || view.SortOrder != "asc" {
		t.Errorf("sort = %s %s, want name asc", view.SortBy, view.SortOrder)
	}
	expectStatus(t, env.do(t, http.MethodPut, "/api/views/documents/sort", SortRequest{SortBy: "colour"}), http.StatusBadRequest)
	expectStatus(t, env.do(t, http.MethodPut, "/api/views/documents/mode", ModeRequest{ViewMode: "carousel"}), http.StatusBadRequest)
	expectStatus(t, env.do(t, http.MethodPatch, "/api/views/shared/filter", map[string]interface{}{"permissions": []string{"view", "edit"}}), http.StatusBadRequest)
	expectStatus(t, env.do(t, http.MethodPatch, "/api/views/shared/filter", map[string]interface{}{"permissions": []string{"edit"}}), http.StatusOK)

	view = decode[ViewResponse](t, env.do(t, http.MethodPut, "/api/views/documents/mode", ModeRequest{ViewMode: "table"}))
	if view.ViewMode != "table" {
		t.Errorf("view mode = %s", view.ViewMode)
	}
}

func TestViewHandler_Selection(t *testing.T) {
	env := newTestEnv(t)

	view := decode[ViewResponse](t, env.do(t, http.MethodPost, "/api/views/starred/selection", SelectionRequest{Action: "all"}))
	if len(view.Selected) != 5 {
		t.Fatalf("selected = %v, want 5", view.Selected)
	}

	view = decode[ViewResponse](t, env.do(t, http.MethodPost, "/api/views/starred/selection", SelectionRequest{Action: "toggle", IDs: []string{"d009"}}))
	if len(view.Selected) != 4 {
		t.Fatalf("selected after toggle = %v", view.Selected)
	}

	view = decode[ViewResponse](t, env.do(t, http.MethodPost, "/api/views/starred/selection", SelectionRequest{Action: "none"}))
	if len(view.Selected) != 0 {
		t.Fatalf("selected after none = %v", view.Selected)
	}

	expectStatus(t, env.do(t, http.MethodPost, "/api/views/starred/selection", SelectionRequest{Action: "invert"}), http.StatusBadRequest)
}

func TestViewHandler_OpenAndStar(t *testing.T) {
	env := newTestEnv(t)

	expectStatus(t, env.do(t, http.MethodPost, "/api/documents/d004/open", nil), http.StatusOK)
	view := decode[ViewResponse](t, env.do(t, http.MethodGet, "/api/views/recent", nil))
	if len(view.Page.Items) == 0 || view.Page.Items[0].ID != "d004" {
		t.Fatalf("recent head = %+v", view.Page.Items)
	}

	starred := decode[map[string]bool](t, env.do(t, http.MethodPost, "/api/documents/d009/star", nil))
	if starred["is_starred"] {
		t.Fatal("d009 should be unstarred")
	}
	view = decode[ViewResponse](t, env.do(t, http.MethodGet, "/api/views/starred", nil))
	if view.Page.Total != 4 {
		t.Errorf("starred total = %d, want 4", view.Page.Total)
	}

	expectStatus(t, env.do(t, http.MethodPost, "/api/documents/missing/star", nil), http.StatusNotFound)
}

func TestUIHandler(t *testing.T) {
	env := newTestEnv(t)

	expectStatus(t, env.do(t, http.MethodPut, "/api/ui/theme", ThemeRequest{Theme: "sepia"}), http.StatusBadRequest)

	theme := decode[ThemeRequest](t, env.do(t, http.MethodPost, "/api/ui/theme/toggle", nil))
	if theme.Theme != models.ThemeSystem {
		t.Errorf("toggle from dark = %s, want system", theme.Theme)
	}

	ui := decode[store.UIState](t, env.do(t, http.MethodPatch, "/api/ui/panels", map[string]interface{}{
		"sidebar_collapsed":   true,
		"global_search_query": "budget",
	}))
	if !ui.SidebarCollapsed || ui.GlobalSearchQuery != "budget" || !ui.SidebarOpen {
		t.Errorf("panels = %+v", ui)
	}
	ui = decode[store.UIState](t, env.do(t, http.MethodPatch, "/api/ui/panels", map[string]interface{}{"global_search_query": nil}))
	if ui.GlobalSearchQuery != "" || !ui.SidebarCollapsed {
		t.Errorf("panels after null query = %+v", ui)
	}

	rec := env.do(t, http.MethodPost, "/api/ui/notifications", map[string]interface{}{"type": "success", "title": "Saved", "duration_ms": 1000})
	expectStatus(t, rec, http.StatusCreated)
	rec = env.do(t, http.MethodPost, "/api/ui/notifications", map[string]interface{}{"title": "Sticky", "duration_ms": 0})
	expectStatus(t, rec, http.StatusCreated)
	sticky := decode[map[string]string](t, rec)["id"]

	env.scheduler.Advance(time.Second)
	ui = decode[store.UIState](t, env.do(t, http.MethodGet, "/api/ui", nil))
	if len(ui.Notifications) != 1 || ui.Notifications[0].ID != sticky {
		t.Fatalf("notifications after expiry = %+v", ui.Notifications)
	}

	expectStatus(t, env.do(t, http.MethodDelete, "/api/ui/notifications/"+sticky, nil), http.StatusNoContent)
	ui = decode[store.UIState](t, env.do(t, http.MethodGet, "/api/ui", nil))
	if len(ui.Notifications) != 0 {
		t.Fatalf("notifications after dismiss = %+v", ui.Notifications)
	}

	expectStatus(t, env.do(t, http.MethodPost, "/api/ui/notifications", map[string]interface{}{"title": ""}), http.StatusBadRequest)
	expectStatus(t, env.do(t, http.MethodPost, "/api/ui/notifications", map[string]interface{}{"title": "x", "type": "fatal"}), http.StatusBadRequest)
	expectStatus(t, env.do(t, http.MethodPost, "/api/ui/notifications", map[string]interface{}{"title": "<i></i>"}), http.StatusBadRequest)

	expectStatus(t, env.do(t, http.MethodPost, "/api/ui/notifications", map[string]interface{}{"title": "<b>Q3</b> & Q4", "message": "<script>x()</script>ok"}), http.StatusCreated)
	ui = decode[store.UIState](t, env.do(t, http.MethodGet, "/api/ui", nil))
	if len(ui.Notifications) != 1 || ui.Notifications[0].Title != "Q3 & Q4" || ui.Notifications[0].Message != "ok" {
		t.Errorf("sanitized notification = %+v", ui.Notifications)
	}
}

func multipartRequest(t *testing.T, names ...string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, name := range names {
		part, err := mw.CreateFormFile("files", name)
		if err != nil {
			t.Fatalf("CreateFormFile: %v", err)
		}
		part.Write([]byte("content of " + name))
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/uploads", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return httputil.WithUserID(req, "user-1")
}

func TestUploadHandler(t *testing.T) {
	env := newTestEnv(t)

	rec := httptest.NewRecorder()
	env.mux.ServeHTTP(rec, multipartRequest(t, "a.pdf", "b.docx"))
	expectStatus(t, rec, http.StatusAccepted)
	created := decode[UploadsResponse](t, rec)
	if len(created.Uploads) != 2 || !created.Summary.Active {
		t.Fatalf("created = %+v", created)
	}

	expectStatus(t, env.do(t, http.MethodDelete, "/api/uploads/"+created.Uploads[1].ID, nil), http.StatusNoContent)
	expectStatus(t, env.do(t, http.MethodDelete, "/api/uploads/"+created.Uploads[1].ID, nil), http.StatusNotFound)

	for i := 0; i < 1000; i++ {
		list := decode[UploadsResponse](t, env.do(t, http.MethodGet, "/api/uploads", nil))
		if !list.Summary.Active {
			break
		}
		env.scheduler.Advance(upload.SimulatedTickInterval)
	}

	list := decode[UploadsResponse](t, env.do(t, http.MethodGet, "/api/uploads", nil))
	if len(list.Uploads) != 1 || list.Uploads[0].Status != upload.StatusComplete {
		t.Fatalf("uploads = %+v", list)
	}

	list = decode[UploadsResponse](t, env.do(t, http.MethodPost, "/api/uploads/clear-completed", nil))
	if len(list.Uploads) != 0 {
		t.Fatalf("uploads after clear = %+v", list.Uploads)
	}

	expectStatus(t, env.do(t, http.MethodPost, "/api/uploads", nil), http.StatusBadRequest)
}

func TestUserPreferencesHandler(t *testing.T) {
	env := newTestEnv(t)

	expectStatus(t, env.do(t, http.MethodPut, "/api/ui/theme", ThemeRequest{Theme: models.ThemeLight}), http.StatusOK)

	prefs := decode[map[string]map[string]interface{}](t, env.do(t, http.MethodGet, "/api/users/me/preferences", nil))
	if prefs[models.KeyUI]["theme"] != string(models.ThemeLight) {
		t.Fatalf("stored preferences = %+v", prefs)
	}

	expectStatus(t, env.do(t, http.MethodDelete, "/api/users/me/preferences", nil), http.StatusNoContent)
	prefs = decode[map[string]map[string]interface{}](t, env.do(t, http.MethodGet, "/api/users/me/preferences", nil))
	if len(prefs) != 0 {
		t.Fatalf("preferences after reset = %+v", prefs)
	}

	// the next request starts a fresh session from defaults
	theme := decode[store.UIState](t, env.do(t, http.MethodGet, "/api/ui", nil)).Theme
	if theme != models.ThemeDark {
		t.Errorf("theme after reset = %s, want dark", theme)
	}
}

// awaitLoginResponse serves a login request while advancing virtual time
// past the login delay
func (e *testEnv) awaitLoginResponse(t *testing.T, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader = http.NoBody
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(http.MethodPost, path, reader)
	rec := httptest.NewRecorder()
	client := clientKey(req)

	done := make(chan struct{})
	go func() {
		e.mux.ServeHTTP(rec, req)
		close(done)
	}()

	deadline := time.After(5 * time.Second)
	for {
		select {
		case <-done:
			return rec
		case <-deadline:
			t.Fatal("login did not complete")
		default:
		}
		if e.authenticator.Loading(client) != "" {
			e.scheduler.Advance(authService.LoginDelay)
		}
		time.Sleep(time.Millisecond)
	}
}

func TestClientKey(t *testing.T) {
	tests := []struct {
		name   string
		header string
		remote string
		want   string
	}{
		{"header wins", "tab-42", "10.0.0.1:5555", "tab-42"},
		{"remote host", "", "10.0.0.1:5555", "10.0.0.1"},
		{"bare remote", "", "pipe", "pipe"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
			req.RemoteAddr = tt.remote
			if tt.header != "" {
				req.Header.Set(ClientIDHeader, tt.header)
			}
			if got := clientKey(req); got != tt.want {
				t.Errorf("clientKey = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAuthHandler_Login(t *testing.T) {
	env := newTestEnv(t)

	providers := decode[ProvidersResponse](t, env.doAs(t, "", http.MethodGet, "/api/auth/providers", nil))
	if len(providers.Providers) != 4 {
		t.Fatalf("providers = %+v", providers)
	}

	rec := env.awaitLoginResponse(t, "/api/auth/oauth/github", nil)
	expectStatus(t, rec, http.StatusOK)
	result := decode[authService.LoginResult](t, rec)
	if result.Token == "" || result.User.ID != "user-1" {
		t.Fatalf("oauth result = %+v", result)
	}

	rec = env.awaitLoginResponse(t, "/api/auth/login", authService.EmailLogin{Email: "nobody@company.com", Password: "x"})
	expectStatus(t, rec, http.StatusUnauthorized)

	rec = env.doAs(t, "", http.MethodPost, "/api/auth/login", authService.EmailLogin{Email: "not-an-email"})
	expectStatus(t, rec, http.StatusBadRequest)
	problem := decode[struct {
		Detail string            `json:"detail"`
		Errors map[string]string `json:"errors"`
	}](t, rec)
	if problem.Detail != "invalid login" || problem.Errors["email"] == "" || problem.Errors["password"] == "" {
		t.Errorf("problem = %+v", problem)
	}
	expectStatus(t, env.doAs(t, "", http.MethodPost, "/api/auth/oauth/myspace", nil), http.StatusBadRequest)
}

func TestAuthHandler_SignOut(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	first, err := env.manager.Session(ctx, "user-1")
	if err != nil {
		t.Fatalf("Session: %v", err)
	}

	expectStatus(t, env.do(t, http.MethodGet, "/api/auth/signout", nil), http.StatusNotFound)

	rec := env.do(t, http.MethodPost, "/api/auth/signout", nil)
	expectStatus(t, rec, http.StatusAccepted)
	if st := decode[authService.SignOutState](t, rec); st.Remaining != authService.SignOutSeconds {
		t.Fatalf("initial countdown = %+v", st)
	}

	env.scheduler.Advance(2 * authService.SignOutTick)
	st := decode[authService.SignOutState](t, env.do(t, http.MethodGet, "/api/auth/signout", nil))
	if st.Remaining != 3 || st.Progress != 40 {
		t.Fatalf("countdown after 2s = %+v", st)
	}

	env.scheduler.Advance(3 * authService.SignOutTick)
	st = decode[authService.SignOutState](t, env.do(t, http.MethodGet, "/api/auth/signout", nil))
	if !st.Done {
		t.Fatalf("countdown not done: %+v", st)
	}

	second, err := env.manager.Session(ctx, "user-1")
	if err != nil {
		t.Fatalf("Session: %v", err)
	}
	if first == second {
		t.Fatal("session survived sign-out")
	}
}

func TestAuthHandler_CancelSignOut(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	first, err := env.manager.Session(ctx, "user-1")
	if err != nil {
		t.Fatalf("Session: %v", err)
	}

	expectStatus(t, env.do(t, http.MethodPost, "/api/auth/signout", nil), http.StatusAccepted)
	expectStatus(t, env.do(t, http.MethodDelete, "/api/auth/signout", nil), http.StatusNoContent)
	env.scheduler.Advance(10 * authService.SignOutTick)

	second, err := env.manager.Session(ctx, "user-1")
	if err != nil {
		t.Fatalf("Session: %v", err)
	}
	if first != second {
		t.Fatal("cancelled sign-out ended the session")
	}
}
