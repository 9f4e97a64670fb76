package models

import (
	"time"

	"github.com/google/uuid"
)

type QuizSet struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	DocumentID  uuid.UUID `gorm:"type:uuid;not null" json:"document_id"`
	Document    Document  `gorm:"constraint:OnDelete:CASCADE;" json:"-"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`

	CreatedBy uuid.UUID `gorm:"type:uuid;not null" json:"created_by"`
	Creator   User      `gorm:"foreignKey:CreatedBy;references:ID;constraint:OnDelete:CASCADE;" json:"creator,omitempty"`

	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	Questions []QuizQuestion `gorm:"foreignKey:QuizSetID" json:"questions,omitempty"`
}

type QuizQuestion struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	QuizSetID uuid.UUID `gorm:"type:uuid;not null" json:"quiz_set_id"`
	QuizSet   QuizSet   `gorm:"constraint:OnDelete:CASCADE;" json:"quiz_set,omitempty"`

	Question   string `gorm:"type:text;not null" json:"question"`
	SourceText string `gorm:"type:text" json:"source_text"` // đoạn tài liệu sinh ra câu hỏi
	Difficulty string `gorm:"size:20;default:'easy'" json:"difficulty"`
	Hint       string `gorm:"type:text" json:"hint"`

	CreatedAt time.Time    `gorm:"autoCreateTime" json:"created_at"`
	Options   []QuizOption `gorm:"foreignKey:QuestionID" json:"options,omitempty"`
}

type QuizOption struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	QuestionID uuid.UUID `gorm:"type:uuid;not null" json:"question_id"`
	OptionText string    `gorm:"type:text;not null" json:"option_text"`
	IsCorrect  bool      `gorm:"default:false" json:"is_correct"`
}

type QuizAttempt struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID     uuid.UUID `gorm:"type:uuid;not null" json:"user_id"`
	User       User      `gorm:"constraint:OnDelete:CASCADE;" json:"-"`
	DocumentID uuid.UUID `gorm:"type:uuid;not null" json:"document_id"`
	Document   Document  `gorm:"constraint:OnDelete:CASCADE;" json:"document,omitempty"`
	QuizSetID  uuid.UUID `gorm:"type:uuid;not null" json:"quiz_set_id"`
	QuizSet    QuizSet   `gorm:"constraint:OnDelete:CASCADE;" json:"quiz_set,omitempty"`

	Score          float64 `gorm:"type:numeric(5,2)" json:"score"`
	CorrectCount   int     `json:"correct_count"`
	IncorrectCount int     `json:"incorrect_count"`
	DurationSec    int     `json:"duration_sec"`

	TakenAt   time.Time            `gorm:"autoCreateTime" json:"taken_at"`
	Histories []QuizAttemptHistory `gorm:"foreignKey:AttemptID" json:"histories,omitempty"`
}

type QuizAttemptHistory struct {
	ID         uuid.UUID    `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	AttemptID  uuid.UUID    `gorm:"type:uuid;not null" json:"attempt_id"`
	QuestionID uuid.UUID    `gorm:"type:uuid;not null" json:"question_id"`
	Question   QuizQuestion `gorm:"foreignKey:QuestionID;references:ID" json:"question,omitempty"`

	SelectedID     uuid.UUID  `gorm:"type:uuid" json:"selected_id"` // uuid.Nil nếu bỏ trống
	SelectedOption QuizOption `gorm:"foreignKey:SelectedID;references:ID" json:"selected_option,omitempty"`

	IsCorrect  bool      `json:"is_correct"`
	AnsweredAt time.Time `json:"answered_at"`
}

// DTO trả về khi chấm bài
type QuizOptionDTO struct {
	ID         uuid.UUID `json:"id"`
	OptionText string    `json:"option_text"`
	IsCorrect  bool      `json:"is_correct"`
}

type AnswerResult struct {
	QuestionID uuid.UUID       `json:"question_id"`
	Question   string          `json:"question"`
	SelectedID uuid.UUID       `json:"selected_id"`
	CorrectID  uuid.UUID       `json:"correct_id"`
	IsCorrect  bool            `json:"is_correct"`
	SourceText string          `json:"source_text"`
	Options    []QuizOptionDTO `json:"options"`
}
