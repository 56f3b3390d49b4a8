package models

import "time"

// Well-known setting keys used by the client
const (
	SettingBackground = "background"
	SettingLogo       = "logo"
)

// Setting is one key/value pair. Kind is set for image-valued settings.
type Setting struct {
	Key       string    `json:"key" db:"key" bson:"_id"`
	Value     string    `json:"value" db:"value" bson:"value"`
	Kind      ImageKind `json:"kind,omitempty" db:"kind" bson:"kind,omitempty"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at" bson:"updated_at"`
}

// SettingsView is the response shape for the settings endpoint
type SettingsView struct {
	Settings map[string]string    `json:"settings"`
	Kinds    map[string]ImageKind `json:"kinds,omitempty"`
}

// NewSettingsView flattens settings into the key/value map the client consumes
func NewSettingsView(settings []Setting) *SettingsView {
	view := &SettingsView{
		Settings: make(map[string]string, len(settings)),
		Kinds:    make(map[string]ImageKind),
	}
	for _, s := range settings {
		view.Settings[s.Key] = s.Value
		if s.Kind != "" {
			view.Kinds[s.Key] = s.Kind
		}
	}
	return view
}

// PutSettingRequest upserts one setting
type PutSettingRequest struct {
	Key   string    `json:"key"`
	Value string    `json:"value"`
	Kind  ImageKind `json:"kind,omitempty"`
}
