package models

import (
	"time"

	"github.com/google/uuid"
)

type UserRole string

const (
	RoleAdmin   UserRole = "admin"   // Quản trị hệ thống
	RoleTeacher UserRole = "teacher" // Giáo viên (quản trị nội dung)
	RoleStudent UserRole = "student" // Học sinh / sinh viên
)

// ValidRole kiểm tra role có nằm trong 3 giá trị cho phép không
func ValidRole(r UserRole) bool {
	return r == RoleAdmin || r == RoleTeacher || r == RoleStudent
}

type User struct {
	ID       uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	FullName string    `gorm:"size:150;not null" json:"full_name"`
	Email    string    `gorm:"size:150;uniqueIndex;not null" json:"email"`
	Password string    `gorm:"type:text" json:"-"` // để trống nếu đăng nhập Google
	ImageURL string    `gorm:"size:500" json:"image_url,omitempty"`

	// Role để trống ("") cho đến khi user chọn vai trò lần đầu
	Role UserRole `gorm:"type:varchar(20);default:''" json:"role,omitempty"`

	CreatedAt  time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
	LastSignIn *time.Time `json:"last_sign_in,omitempty"`

	// Quan hệ
	Documents  []Document  `json:"documents,omitempty"`
	Notes      []Note      `json:"notes,omitempty"`
	Flashcards []Flashcard `json:"flashcards,omitempty"`
}
