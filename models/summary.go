package models

import (
	"time"

	"github.com/google/uuid"
)

type Summary struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	DocumentID uuid.UUID `gorm:"type:uuid;not null" json:"document_id"`
	Document   Document  `gorm:"constraint:OnDelete:CASCADE;" json:"-"`
	UserID     uuid.UUID `gorm:"type:uuid;not null" json:"user_id"` // người yêu cầu tóm tắt
	User       User      `gorm:"constraint:OnDelete:CASCADE;" json:"-"`

	SummaryText  string `gorm:"type:text;not null" json:"summary_text"`
	BulletPoints string `gorm:"type:text" json:"bullet_points"` // mỗi ý một dòng
	Degraded     bool   `gorm:"default:false" json:"degraded"`  // true nếu dùng nội dung dự phòng khi AI lỗi

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}
