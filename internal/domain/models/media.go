package models

import "time"

// MediaFile describes an uploaded image
type MediaFile struct {
	Name string `json:"name"`
	URL  string `json:"url"`
	Size int64  `json:"size,omitempty"`
	Type string `json:"type,omitempty"`
}

// StoredObject is what a media backend reports when listing
type StoredObject struct {
	Name       string
	Size       int64
	ModifiedAt time.Time
}

// Upload is one file received from a multipart request
type Upload struct {
	Filename string
	Size     int64
	Data     []byte
}
