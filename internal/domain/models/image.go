package models

import (
	"fmt"
	"strings"
)

// ImageKind tags how an image reference must be resolved by a renderer
type ImageKind string

const (
	// ImageKindUpload is a file stored by the media service (e.g. /uploads/123-abc-photo.png)
	ImageKindUpload ImageKind = "upload"
	// ImageKindAsset is a static asset bundled with the client (e.g. /assets/members/default.svg)
	ImageKindAsset ImageKind = "asset"
	// ImageKindRemote is an absolute http(s) URL
	ImageKindRemote ImageKind = "remote"
	// ImageKindCSSClass is a style class name used for plain backgrounds (e.g. bg-slate-800)
	ImageKindCSSClass ImageKind = "css-class"
)

// Valid reports whether k is one of the known kinds
func (k ImageKind) Valid() bool {
	switch k {
	case ImageKindUpload, ImageKindAsset, ImageKindRemote, ImageKindCSSClass:
		return true
	}
	return false
}

// ImageRef is an explicit tagged image reference.
// The kind is decided when the reference is written and never re-inferred on read.
type ImageRef struct {
	Kind  ImageKind `json:"kind" yaml:"kind"`
	Value string    `json:"value" yaml:"value"`
}

// DefaultImageRef is the placeholder member image
func DefaultImageRef() ImageRef {
	return ImageRef{Kind: ImageKindAsset, Value: DefaultMemberImage}
}

// IsImage reports whether the reference points at an image rather than a style class
func (r ImageRef) IsImage() bool {
	return r.Kind != ImageKindCSSClass
}

// ClassifyImage decides the kind of a raw reference string.
// It is only meant for write paths where the caller did not state a kind.
func ClassifyImage(raw, uploadPrefix string) ImageRef {
	value := strings.TrimSpace(raw)
	if uploadPrefix == "" {
		uploadPrefix = "/uploads/"
	}
	if !strings.HasSuffix(uploadPrefix, "/") {
		uploadPrefix += "/"
	}

	switch {
	case value == "":
		return DefaultImageRef()
	case strings.HasPrefix(value, "http://"), strings.HasPrefix(value, "https://"):
		return ImageRef{Kind: ImageKindRemote, Value: value}
	case strings.HasPrefix(value, uploadPrefix):
		return ImageRef{Kind: ImageKindUpload, Value: value}
	case strings.HasPrefix(value, "/"):
		return ImageRef{Kind: ImageKindAsset, Value: value}
	default:
		return ImageRef{Kind: ImageKindCSSClass, Value: value}
	}
}

// NewImageRef builds a reference with an explicit kind, classifying only when kind is empty
func NewImageRef(raw string, kind ImageKind, uploadPrefix string) (ImageRef, error) {
	if kind == "" {
		return ClassifyImage(raw, uploadPrefix), nil
	}
	if !kind.Valid() {
		return ImageRef{}, fmt.Errorf("unknown image kind %q", kind)
	}
	value := strings.TrimSpace(raw)
	if value == "" {
		if kind == ImageKindCSSClass {
			return ImageRef{}, fmt.Errorf("css-class reference requires a value")
		}
		return DefaultImageRef(), nil
	}
	return ImageRef{Kind: kind, Value: value}, nil
}
