package models

import "time"

// Photo embedded evidence photo.
// Hosted photos carry URL and PublicID (the storage key); legacy photos
// carry an inline Base64 payload in Data until they are backfilled.
type Photo struct {
	URL          string     `json:"url,omitempty"`
	PublicID     string     `json:"publicId,omitempty"`
	Data         string     `json:"data,omitempty"`
	MimeType     string     `json:"mimeType,omitempty"`
	OriginalName string     `json:"originalName,omitempty"`
	Size         int64      `json:"size,omitempty"`
	UploadedAt   *time.Time `json:"uploadedAt,omitempty"`
}

// Hosted reports whether the photo lives in object storage
func (p Photo) Hosted() bool {
	return p.URL != "" && p.PublicID != ""
}

// Inline reports whether the photo still carries an encoded payload
func (p Photo) Inline() bool {
	return p.Data != ""
}

// PhotoCarrier is implemented by every entry type
type PhotoCarrier interface {
	GetID() string
	GetPhotos() []Photo
	SetPhotos(photos []Photo)
}
