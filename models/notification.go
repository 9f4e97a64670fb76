package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	NotificationDocumentDone = "document_done"
	NotificationRoleAssigned = "role_assigned"
)

type Notification struct {
	ID      uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID  uuid.UUID `gorm:"type:uuid;not null" json:"user_id"` // người nhận
	Title   string    `gorm:"size:255;not null" json:"title"`
	Message string    `gorm:"type:text;not null" json:"message"`
	Type    string    `gorm:"size:50" json:"type"` // document_done | role_assigned | ...
	IsRead  bool      `gorm:"default:false" json:"is_read"`

	DocumentID *uuid.UUID `gorm:"type:uuid" json:"document_id,omitempty"` // ID tài liệu liên quan (nếu có)
	RelatedURL *string    `gorm:"size:500" json:"related_url,omitempty"`  // URL đích (tùy chọn)

	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	ReadAt    *time.Time `json:"read_at,omitempty"`

	User User `gorm:"constraint:OnDelete:CASCADE;" json:"user,omitempty"`
}
