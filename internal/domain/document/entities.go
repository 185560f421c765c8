package document

import (
	"time"
)

type Status string

const (
	StatusUploaded Status = "UPLOADED"
	StatusVerified Status = "VERIFIED"
	StatusRejected Status = "REJECTED"
)

// Terminal reports whether no further review transition is allowed.
func (s Status) Terminal() bool { return s == StatusVerified || s == StatusRejected }

type Document struct {
	ID           uint64    `gorm:"primaryKey;column:id" json:"id"`
	DocumentID   string    `gorm:"size:32;uniqueIndex:ux_documents_document_id" json:"document_id"`
	UserID       uint64    `gorm:"column:user_id;not null;index:idx_documents_user" json:"user_id"`
	DocumentType string    `gorm:"size:64;not null" json:"document_type"`
	FileName     string    `gorm:"size:255" json:"file_name"`
	StorageKey   string    `gorm:"size:320;not null" json:"-"`
	ContentType  string    `gorm:"size:128" json:"content_type"`
	FileSize     int64     `json:"file_size"`
	Status       Status    `gorm:"size:16;not null;default:'UPLOADED'" json:"status"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Document) TableName() string { return "documents" }

// AllVerified is the document gate: the set must be non-empty and every
// document VERIFIED.
func AllVerified(docs []Document) bool {
	if len(docs) == 0 {
		return false
	}
	for _, d := range docs {
		if d.Status != StatusVerified {
			return false
		}
	}
	return true
}
