package services

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/vnkhanh/notes-ninja-backend/models"
)

// Lỗi "cứng": trả thẳng về client, không bao giờ degrade
var (
	ErrInvalidRole = errors.New("vai trò không hợp lệ")
	ErrForbidden   = errors.New("không có quyền thực hiện thao tác này")
)

// ResolveInput là yêu cầu gán vai trò.
// TargetID để uuid.Nil nghĩa là caller tự gán cho chính mình.
type ResolveInput struct {
	CallerID   uuid.UUID
	CallerRole models.UserRole
	TargetID   uuid.UUID
	Role       models.UserRole

	// Thông tin profile dùng khi phải tạo mới user record
	Email    string
	FullName string
	ImageURL string
}

// Resolution là kết quả gán vai trò. SessionOnly = true nghĩa là
// không ghi được vào DB, role chỉ còn nằm trong session token.
type Resolution struct {
	UserID      uuid.UUID
	Email       string
	Role        models.UserRole
	SessionOnly bool
	User        *models.User // nil khi session-only
}

// RoleResolver gán vai trò cho user: cố ghi bền vào directory,
// DB lỗi thì hạ xuống chế độ session-only thay vì báo lỗi.
// Việc chọn vai trò không bao giờ được chặn vì DB chết.
type RoleResolver struct {
	Store UserStore
}

func NewRoleResolver(store UserStore) *RoleResolver {
	return &RoleResolver{Store: store}
}

// validate kiểm tra input + quyền. Chỉ 2 loại lỗi này được phép nổi lên.
func (r *RoleResolver) validate(in ResolveInput) (uuid.UUID, error) {
	if !models.ValidRole(in.Role) {
		return uuid.Nil, ErrInvalidRole
	}

	target := in.TargetID
	if target == uuid.Nil {
		target = in.CallerID
	}

	isAdmin := in.CallerRole == models.RoleAdmin
	if target != in.CallerID && !isAdmin {
		return uuid.Nil, ErrForbidden
	}
	// Chặn tự nâng quyền: non-admin không bao giờ được gán admin
	if in.Role == models.RoleAdmin && !isAdmin {
		return uuid.Nil, ErrForbidden
	}

	return target, nil
}

// Resolve cố ghi role vào directory (upsert), lỗi hạ tầng thì degrade.
func (r *RoleResolver) Resolve(ctx context.Context, in ResolveInput) (Resolution, error) {
	target, err := r.validate(in)
	if err != nil {
		return Resolution{}, err
	}

	user, err := r.Store.FindByID(ctx, target)
	switch {
	case err == nil:
		// Đã có record: chỉ cập nhật role (idempotent nếu role không đổi)
		if user.Role != in.Role {
			if uerr := r.Store.UpdateRole(ctx, target, in.Role); uerr != nil {
				return r.degrade(in, target, uerr), nil
			}
			user.Role = in.Role
		}
		log.Printf("Đã gán role %s cho user %s (durable)", in.Role, target)
		return Resolution{UserID: target, Email: user.Email, Role: in.Role, User: user}, nil

	case errors.Is(err, ErrUserNotFound):
		// Chưa có record: tạo mới với role + profile từ caller
		now := time.Now()
		newUser := &models.User{
			ID:         target,
			Email:      in.Email,
			FullName:   in.FullName,
			ImageURL:   in.ImageURL,
			Role:       in.Role,
			LastSignIn: &now,
		}
		if cerr := r.Store.Create(ctx, newUser); cerr != nil {
			return r.degrade(in, target, cerr), nil
		}
		log.Printf("Đã tạo user %s với role %s (durable)", target, in.Role)
		return Resolution{UserID: target, Email: newUser.Email, Role: in.Role, User: newUser}, nil

	default:
		// Lookup lỗi (DB không kết nối được...) -> session-only
		return r.degrade(in, target, err), nil
	}
}

// ResolveSessionOnly gán role chỉ trong session token, không đụng DB.
// Vẫn kiểm tra input + quyền như đường bền.
func (r *RoleResolver) ResolveSessionOnly(ctx context.Context, in ResolveInput) (Resolution, error) {
	target, err := r.validate(in)
	if err != nil {
		return Resolution{}, err
	}
	log.Printf("Gán role %s cho user %s ở chế độ session-only", in.Role, target)
	return Resolution{UserID: target, Email: in.Email, Role: in.Role, SessionOnly: true}, nil
}

func (r *RoleResolver) degrade(in ResolveInput, target uuid.UUID, cause error) Resolution {
	log.Printf("Không ghi được role %s cho user %s, degrade sang session-only: %v", in.Role, target, cause)
	return Resolution{UserID: target, Email: in.Email, Role: in.Role, SessionOnly: true}
}
