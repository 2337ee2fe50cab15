package docsystem

import (
	"time"
)

// DocumentType is the coarse content category of a document
type DocumentType string

const (
	TypeDocument     DocumentType = "document"
	TypeSpreadsheet  DocumentType = "spreadsheet"
	TypePresentation DocumentType = "presentation"
	TypeImage        DocumentType = "image"
	TypeVideo        DocumentType = "video"
	TypeAudio        DocumentType = "audio"
	TypeArchive      DocumentType = "archive"
	TypePDF          DocumentType = "pdf"
	TypeOther        DocumentType = "other"
)

// DocumentTypes lists every document type in display order
var DocumentTypes = []DocumentType{
	TypeDocument, TypeSpreadsheet, TypePresentation, TypeImage,
	TypeVideo, TypeAudio, TypeArchive, TypePDF, TypeOther,
}

// DocumentStatus is the lifecycle state of a document
type DocumentStatus string

const (
	StatusDraft         DocumentStatus = "draft"
	StatusPendingReview DocumentStatus = "pending_review"
	StatusApproved      DocumentStatus = "approved"
	StatusPublished     DocumentStatus = "published"
	StatusArchived      DocumentStatus = "archived"
	StatusDeleted       DocumentStatus = "deleted"
)

// DocumentStatuses lists every lifecycle status
var DocumentStatuses = []DocumentStatus{
	StatusDraft, StatusPendingReview, StatusApproved,
	StatusPublished, StatusArchived, StatusDeleted,
}

// Role is the access role of a user
type Role string

const (
	RoleViewer     Role = "viewer"
	RoleEditor     Role = "editor"
	RoleAdmin      Role = "admin"
	RoleSuperadmin Role = "superadmin"
)

// SharePermission is the level granted when a document is shared with the current user
type SharePermission string

const (
	PermissionView    SharePermission = "view"
	PermissionEdit    SharePermission = "edit"
	PermissionComment SharePermission = "comment"
)

// SharePermissions lists every share permission
var SharePermissions = []SharePermission{PermissionView, PermissionEdit, PermissionComment}

// User is an identity attached to documents as owner, creator, updater or sharer
type User struct {
	ID     string  `json:"id" yaml:"id"`
	Name   string  `json:"name" yaml:"name"`
	Email  string  `json:"email" yaml:"email"`
	Role   Role    `json:"role" yaml:"role"`
	Avatar *string `json:"avatar,omitempty" yaml:"avatar,omitempty"`
}

// Sharing describes how a document was shared with the current user
type Sharing struct {
	SharedBy   User            `json:"shared_by"`
	SharedAt   time.Time       `json:"shared_at"`
	Permission SharePermission `json:"permission"`
	ExpiresAt  *time.Time      `json:"expires_at,omitempty"`
}

// Metadata holds descriptive fields of a document
type Metadata struct {
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags"`
	Category    string   `json:"category,omitempty"`
}

type Document struct {
	ID        string         `json:"id"`
	ObjectID  string         `json:"object_id"` // r_object_id style identifier
	Name      string         `json:"name"`
	Type      DocumentType   `json:"type"`
	MimeType  string         `json:"mime_type"`
	Extension string         `json:"extension"`
	Size      int64          `json:"size"`
	Status    DocumentStatus `json:"status"`
	Metadata  Metadata       `json:"metadata"`

	FolderID   string `json:"folder_id"`
	FolderPath string `json:"folder_path"`

	Owner     User      `json:"owner"`
	CreatedBy User      `json:"created_by"`
	UpdatedBy User      `json:"updated_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	CurrentVersion int        `json:"current_version"`
	IsLocked       bool       `json:"is_locked"`
	LockedBy       *User      `json:"locked_by,omitempty"`
	LockedAt       *time.Time `json:"locked_at,omitempty"`

	CheckoutCount int `json:"checkout_count"`
	DownloadCount int `json:"download_count"`

	IsStarred  bool       `json:"is_starred,omitempty"`
	StarredAt  *time.Time `json:"starred_at,omitempty"`
	AccessedAt *time.Time `json:"accessed_at,omitempty"`
	Sharing    *Sharing   `json:"sharing,omitempty"`
}

// LastActivity returns the access time, falling back to the update time
func (d *Document) LastActivity() time.Time {
	if d.AccessedAt != nil {
		return *d.AccessedAt
	}
	return d.UpdatedAt
}

// Tags returns the document tags
func (d *Document) Tags() []string {
	return d.Metadata.Tags
}

// DocumentPatch carries a partial update; nil fields are left unchanged
type DocumentPatch struct {
	Name      *string
	Status    *DocumentStatus
	IsStarred *bool
	IsLocked  *bool
	LockedBy  *User
	Tags      []string // nil = unchanged
}

// Apply merges the patch into a copy of the document
func (p DocumentPatch) Apply(d Document) Document {
	if p.Name != nil {
		d.Name = *p.Name
	}
	if p.Status != nil {
		d.Status = *p.Status
	}
	if p.IsStarred != nil {
		d.IsStarred = *p.IsStarred
	}
	if p.IsLocked != nil {
		d.IsLocked = *p.IsLocked
		if !d.IsLocked {
			d.LockedBy = nil
			d.LockedAt = nil
		}
	}
	if p.LockedBy != nil {
		user := *p.LockedBy
		d.LockedBy = &user
	}
	if p.Tags != nil {
		d.Metadata.Tags = append([]string(nil), p.Tags...)
	}
	return d
}
