// Package upload tracks files being uploaded into the console and drives
// them through a Transport.
package upload

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"sync"

	"github.com/google/uuid"
)

// MaxFileSize is the largest file the console accepts
const MaxFileSize int64 = 100 << 20

// Status is the lifecycle state of one upload
type Status string

const (
	StatusPending   Status = "pending"
	StatusUploading Status = "uploading"
	StatusComplete  Status = "complete"
	StatusError     Status = "error"
)

// File is a file handed to the queue
type File struct {
	Name        string
	Size        int64
	ContentType string
	Body        io.Reader
}

// Entry is the queue's view of one upload
type Entry struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Size     int64   `json:"size"`
	Progress float64 `json:"progress"`
	Status   Status  `json:"status"`
	Error    string  `json:"error,omitempty"`
}

// Summary is the aggregate state reported to observers
type Summary struct {
	Active   bool    `json:"active"`
	Progress float64 `json:"progress"`
}

// Transport moves bytes for one upload. report receives progress in percent;
// done is called exactly once unless the returned cancel func runs first.
type Transport interface {
	Start(ctx context.Context, id string, f File, report func(progress float64), done func(err error)) (cancel func())
}

// Queue holds uploads in insertion order
type Queue struct {
	transport Transport
	logger    *slog.Logger
	observer  func(Summary)

	mu      sync.Mutex
	entries []Entry
	cancels map[string]func()
}

// NewQueue creates an empty queue. observer may be nil.
func NewQueue(transport Transport, logger *slog.Logger, observer func(Summary)) *Queue {
	return &Queue{
		transport: transport,
		logger:    logger,
		observer:  observer,
		cancels:   make(map[string]func()),
	}
}

// Add enqueues files and starts their transfer. Oversized files are
// rejected with StatusError. It returns the new entry ids.
func (q *Queue) Add(ctx context.Context, files ...File) []string {
	ids := make([]string, 0, len(files))
	var start []File
	var startIDs []string

	q.mu.Lock()
	for _, f := range files {
		e := Entry{ID: uuid.NewString(), Name: f.Name, Size: f.Size, Status: StatusPending}
		if f.Size > MaxFileSize {
			e.Status = StatusError
			e.Error = fmt.Sprintf("file exceeds %d MB", MaxFileSize>>20)
		} else {
			e.Status = StatusUploading
			start = append(start, f)
			startIDs = append(startIDs, e.ID)
		}
		q.entries = append(q.entries, e)
		ids = append(ids, e.ID)
	}
	q.mu.Unlock()

	for i, f := range start {
		id := startIDs[i]
		q.logger.Debug("upload started", "id", id, "name", f.Name, "size", f.Size)
		cancel := q.transport.Start(ctx, id, f,
			func(progress float64) { q.report(id, progress) },
			func(err error) { q.finish(id, err) },
		)
		q.mu.Lock()
		if i := q.index(id); i >= 0 && q.entries[i].Status == StatusUploading {
			q.cancels[id] = cancel
			cancel = nil
		}
		q.mu.Unlock()
		if cancel != nil {
			// removed or finished while starting
			cancel()
		}
	}

	q.notify()
	return ids
}

// Remove drops an entry, cancelling its transfer if still running
func (q *Queue) Remove(id string) {
	q.mu.Lock()
	i := q.index(id)
	if i < 0 {
		q.mu.Unlock()
		return
	}
	q.entries = slices.Delete(q.entries, i, i+1)
	cancel := q.cancels[id]
	delete(q.cancels, id)
	q.mu.Unlock()

	if cancel != nil {
		cancel()
		q.logger.Debug("upload cancelled", "id", id)
	}
	q.notify()
}

// ClearCompleted drops every completed entry
func (q *Queue) ClearCompleted() {
	q.mu.Lock()
	q.entries = slices.DeleteFunc(q.entries, func(e Entry) bool { return e.Status == StatusComplete })
	q.mu.Unlock()
	q.notify()
}

// Entries returns a copy of the queue in insertion order
func (q *Queue) Entries() []Entry {
	q.mu.Lock()
	defer q.mu.Unlock()
	return slices.Clone(q.entries)
}

// Entry returns the entry with id
func (q *Queue) Entry(id string) (Entry, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if i := q.index(id); i >= 0 {
		return q.entries[i], true
	}
	return Entry{}, false
}

// Summary reports whether any upload is running and the mean progress of
// the entries that have not failed
func (q *Queue) Summary() Summary {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.summary()
}

// Close cancels every running transfer
func (q *Queue) Close() {
	q.mu.Lock()
	cancels := q.cancels
	q.cancels = make(map[string]func())
	q.mu.Unlock()
	for _, cancel := range cancels {
		cancel()
	}
}

func (q *Queue) summary() Summary {
	var s Summary
	var total float64
	var n int
	for _, e := range q.entries {
		switch e.Status {
		case StatusError:
			continue
		case StatusUploading, StatusPending:
			s.Active = true
		}
		total += e.Progress
		n++
	}
	if n > 0 && s.Active {
		s.Progress = total / float64(n)
	}
	return s
}

func (q *Queue) report(id string, progress float64) {
	q.mu.Lock()
	i := q.index(id)
	if i < 0 || q.entries[i].Status != StatusUploading {
		q.mu.Unlock()
		return
	}
	q.entries[i].Progress = min(max(progress, 0), 100)
	q.mu.Unlock()
	q.notify()
}

func (q *Queue) finish(id string, err error) {
	q.mu.Lock()
	i := q.index(id)
	if i < 0 {
		q.mu.Unlock()
		return
	}
	delete(q.cancels, id)
	if err != nil {
		q.entries[i].Status = StatusError
		q.entries[i].Error = err.Error()
	} else {
		q.entries[i].Status = StatusComplete
		q.entries[i].Progress = 100
	}
	e := q.entries[i]
	q.mu.Unlock()

	if err != nil {
		q.logger.Warn("upload failed", "id", id, "name", e.Name, "error", err)
	} else {
		q.logger.Info("upload complete", "id", id, "name", e.Name, "size", e.Size)
	}
	q.notify()
}

func (q *Queue) notify() {
	if q.observer == nil {
		return
	}
	q.observer(q.Summary())
}

func (q *Queue) index(id string) int {
	return slices.IndexFunc(q.entries, func(e Entry) bool { return e.ID == id })
}
