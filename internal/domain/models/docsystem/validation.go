package docsystem

import (
	"errors"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

func typeValues() []interface{} {
	out := make([]interface{}, len(DocumentTypes))
	for i, t := range DocumentTypes {
		out[i] = t
	}
	return out
}

func statusValues() []interface{} {
	out := make([]interface{}, len(DocumentStatuses))
	for i, s := range DocumentStatuses {
		out[i] = s
	}
	return out
}

// Validate implements validation.Validatable
func (u User) Validate() error {
	return validation.ValidateStruct(&u,
		validation.Field(&u.ID, validation.Required),
		validation.Field(&u.Name, validation.Required),
		validation.Field(&u.Email, validation.Required, is.EmailFormat),
		validation.Field(&u.Role, validation.Required,
			validation.In(RoleViewer, RoleEditor, RoleAdmin, RoleSuperadmin)),
	)
}

// Validate implements validation.Validatable
func (s Sharing) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.SharedBy),
		validation.Field(&s.SharedAt, validation.Required),
		validation.Field(&s.Permission, validation.Required,
			validation.In(PermissionView, PermissionEdit, PermissionComment)),
	)
}

// Validate checks the document invariants: closed enumerations,
// a placed folder, size >= 0 and currentVersion >= 1.
func (d Document) Validate() error {
	err := validation.ValidateStruct(&d,
		validation.Field(&d.ID, validation.Required),
		validation.Field(&d.Name, validation.Required, validation.Length(1, 255)),
		validation.Field(&d.Type, validation.Required, validation.In(typeValues()...)),
		validation.Field(&d.Status, validation.Required, validation.In(statusValues()...)),
		validation.Field(&d.FolderID, validation.Required),
		validation.Field(&d.Owner),
		validation.Field(&d.CreatedBy),
		validation.Field(&d.UpdatedBy),
		validation.Field(&d.CurrentVersion, validation.Required, validation.Min(1)),
		validation.Field(&d.Sharing),
	)
	if err != nil {
		return err
	}
	// Min skips zero values, so negative sizes are checked explicitly
	if d.Size < 0 {
		return validation.Errors{"size": errors.New("must be no less than 0")}
	}
	if d.CheckoutCount < 0 || d.DownloadCount < 0 {
		return validation.Errors{"counters": errors.New("must be no less than 0")}
	}
	return nil
}

// Validate implements validation.Validatable
func (f *TreeFolder) Validate() error {
	return validation.ValidateStruct(f,
		validation.Field(&f.ID, validation.Required),
		validation.Field(&f.Name, validation.Required, validation.Length(1, 255)),
		validation.Field(&f.Type, validation.Required,
			validation.In(FolderTypeFolder, FolderTypeCabinet, FolderTypeWorkspace, FolderTypeProject)),
		validation.Field(&f.DocumentCount, validation.Min(0)),
	)
}

// ValidViewMode reports whether m is a known view mode
func ValidViewMode(m ViewMode) bool {
	return validation.Validate(m, validation.Required, validation.In(ViewModeGrid, ViewModeList, ViewModeTable)) == nil
}

// ValidSortDirection reports whether d is asc or desc
func ValidSortDirection(d SortDirection) bool {
	return validation.Validate(d, validation.Required, validation.In(SortAsc, SortDesc)) == nil
}

// ValidTimeFilter reports whether t is a known time window
func ValidTimeFilter(t TimeFilter) bool {
	return validation.Validate(t, validation.Required, validation.In(TimeToday, TimeWeek, TimeMonth, TimeAll)) == nil
}

// ValidDocumentType reports whether t is a known document type
func ValidDocumentType(t DocumentType) bool {
	return validation.Validate(t, validation.Required, validation.In(typeValues()...)) == nil
}
