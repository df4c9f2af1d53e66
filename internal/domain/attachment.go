package domain

import "time"

// Attachment records uploaded file metadata. The bytes themselves live in an
// external object store addressed by StorageKey.
type Attachment struct {
	ID         string
	CommentID  string
	StorageKey string
	FileName   string
	MimeType   string
	SizeBytes  int64
	CreatedAt  time.Time
}
