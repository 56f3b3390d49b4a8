package config

import "time"

const (
	// MaxMemberNameLength is the maximum length for member names.
	// Limited to 255 to fit in PostgreSQL VARCHAR(255).
	MaxMemberNameLength = 255

	// MaxImageRefLength bounds stored image references (URLs, asset paths, class names).
	MaxImageRefLength = 2048

	// MaxSettingKeyLength is the maximum length for setting keys.
	MaxSettingKeyLength = 100

	// MaxUsernameLength is the maximum length for usernames.
	MaxUsernameLength = 100

	// MinPasswordLength applies to signup and password reset.
	MinPasswordLength = 6

	// DefaultUploadLimit is the per-file size cap for image uploads (5 MiB).
	DefaultUploadLimit = 5 << 20

	// ResetTokenTTL is how long a password reset token stays valid.
	ResetTokenTTL = time.Hour

	// DefaultRootName names the member created when the tree is empty.
	DefaultRootName = "عبدالعزيز"
)
