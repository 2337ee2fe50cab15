package httputil

import (
	"bytes"
	"encoding/json"
)

// OptionalString is a JSON merge-patch (RFC 7396) string member:
//   - Present=false: absent, leave the field alone
//   - Present=true, Value=nil: null, clear the field
//   - Present=true, Value set: replace the field
type OptionalString struct {
	Present bool
	Value   *string
}

// UnmarshalJSON is only called for members present in the document
func (o *OptionalString) UnmarshalJSON(data []byte) error {
	o.Present = true
	if string(bytes.TrimSpace(data)) == "null" {
		o.Value = nil
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	o.Value = &s
	return nil
}

// Apply calls set with the patched value when the member was present.
// null clears to "".
func (o OptionalString) Apply(set func(string)) {
	if !o.Present {
		return
	}
	if o.Value == nil {
		set("")
		return
	}
	set(*o.Value)
}
