package models

import "time"

// FileCategory groups the files attached to a client
type FileCategory string

const (
	CategoryBefore    FileCategory = "before"
	CategoryAfter     FileCategory = "after"
	CategoryBlueprint FileCategory = "blueprint"
	CategoryMedia     FileCategory = "media"
)

// Valid reports whether c is a known category
func (c FileCategory) Valid() bool {
	switch c {
	case CategoryBefore, CategoryAfter, CategoryBlueprint, CategoryMedia:
		return true
	}
	return false
}

// ProjectFile is a stored blob attached to a client's project
type ProjectFile struct {
	ID          int          `json:"id"`
	ClientID    int          `json:"client_id"`
	Category    FileCategory `json:"category"`
	Name        string       `json:"name"`
	ObjectKey   string       `json:"object_key"`
	URL         string       `json:"url"`
	ContentType string       `json:"content_type"`
	Size        int64        `json:"size"`
	Annotations []byte       `json:"-"`
	UploadedAt  time.Time    `json:"uploaded_at"`
}

// GetID returns the file id
func (f *ProjectFile) GetID() int { return f.ID }
