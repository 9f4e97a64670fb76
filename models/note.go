package models

import (
	"time"

	"github.com/google/uuid"
)

type Note struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID     uuid.UUID `gorm:"type:uuid;not null" json:"user_id"`
	User       User      `gorm:"constraint:OnDelete:CASCADE;" json:"user"`
	DocumentID uuid.UUID `gorm:"type:uuid;not null" json:"document_id"`
	Document   Document  `gorm:"constraint:OnDelete:CASCADE;" json:"document"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	Position   *int      `json:"position"` // vị trí trong tài liệu (trang hoặc đoạn)
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
