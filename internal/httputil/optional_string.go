package httputil

import (
	"bytes"
	"encoding/json"
)

// OptionalString is a PATCH field that tells an absent key apart from an explicit
// null. Set is true whenever the key appeared in the body; Null marks a JSON null.
type OptionalString struct {
	Set   bool
	Null  bool
	Value string
}

// UnmarshalJSON only runs for keys present in the body
func (o *OptionalString) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Null = true
		o.Value = ""
		return nil
	}
	return json.Unmarshal(data, &o.Value)
}

// Update returns the new value, or nil when the field is absent or null
func (o OptionalString) Update() *string {
	if !o.Set || o.Null {
		return nil
	}
	v := o.Value
	return &v
}

// Reset is like Update but turns null into the empty string, for fields where
// null means back to the default
func (o OptionalString) Reset() *string {
	if !o.Set {
		return nil
	}
	v := o.Value
	return &v
}
