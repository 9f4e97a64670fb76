package models

import (
	"time"

	"github.com/google/uuid"
)

// Kết quả tự đánh giá khi ôn flashcard
const (
	ReviewKnown   = "known"
	ReviewUnknown = "unknown"
)

// FlashcardReview ghi lại từng lượt ôn flashcard của user
type FlashcardReview struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID      uuid.UUID `gorm:"type:uuid;not null" json:"user_id"`
	User        User      `gorm:"constraint:OnDelete:CASCADE;" json:"-"`
	FlashcardID uuid.UUID `gorm:"type:uuid;not null" json:"flashcard_id"`
	Flashcard   Flashcard `gorm:"constraint:OnDelete:CASCADE;" json:"flashcard,omitempty"`

	Outcome    string    `gorm:"size:20;not null" json:"outcome"` // known | unknown
	ReviewedAt time.Time `gorm:"autoCreateTime" json:"reviewed_at"`
}
