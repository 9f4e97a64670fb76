package utils

import (
	"errors"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/vnkhanh/notes-ninja-backend/models"
)

// Claims là payload của session token.
// Role để trống cho đến khi user chọn vai trò; SessionOnly = true
// nghĩa là role chỉ tồn tại trong token, chưa ghi được vào DB.
type Claims struct {
	UserID      string          `json:"sub_id"`
	Email       string          `json:"email"`
	Role        models.UserRole `json:"role,omitempty"`
	SessionOnly bool            `json:"session_only,omitempty"`
	jwt.RegisteredClaims
}

var ErrInvalidToken = errors.New("token không hợp lệ")

func jwtSecret() []byte {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "notes-ninja-dev-secret" // chỉ dùng khi chạy local
	}
	return []byte(secret)
}

// GenerateToken sinh session token mới. Role có thể để trống.
func GenerateToken(userID, email string, role models.UserRole, sessionOnly bool) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:      userID,
		Email:       email,
		Role:        role,
		SessionOnly: sessionOnly,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(72 * time.Hour)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtSecret())
}

// VerifyToken giải mã và kiểm tra chữ ký + hạn của token
func VerifyToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return jwtSecret(), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
