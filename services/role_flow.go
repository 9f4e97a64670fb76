package services

import (
	"context"
	"errors"
	"log"

	"github.com/google/uuid"

	"github.com/vnkhanh/notes-ninja-backend/models"
	"github.com/vnkhanh/notes-ninja-backend/utils"
)

// ErrRoleIndeterminate: không tìm được role từ bất kỳ nguồn nào
var ErrRoleIndeterminate = errors.New("không xác định được vai trò từ nguồn nào")

// RoleSource là một nguồn có thể chứa role user đã chọn
// (query param, cookie, token hiện tại...).
type RoleSource struct {
	Name  string
	Value string
}

// PickRole duyệt các nguồn theo đúng thứ tự ưu tiên và trả về
// role hợp lệ đầu tiên cùng tên nguồn. Gom việc đọc role về một chỗ
// thay vì rải rác từng nơi tự đọc cache riêng.
func PickRole(sources []RoleSource) (models.UserRole, string, error) {
	for _, src := range sources {
		role := models.UserRole(src.Value)
		if models.ValidRole(role) {
			return role, src.Name, nil
		}
	}
	return "", "", ErrRoleIndeterminate
}

// StrategyOutcome là kết quả của một chiến lược gán role, gắn tên
// chiến lược đã thành công để log / debug.
type StrategyOutcome struct {
	Strategy   string
	Resolution Resolution
	Token      string
}

// RoleStrategy là một cách gán role, thử lần lượt theo thứ tự.
type RoleStrategy struct {
	Name string
	Run  func(ctx context.Context) (StrategyOutcome, error)
}

// RoleFlow chạy các chiến lược theo thứ tự cho MỘT lần chọn role.
// Dùng một lần: gọi Run lần hai chỉ trả lại kết quả cũ (chống double-submit).
type RoleFlow struct {
	strategies []RoleStrategy
	started    bool
	outcome    StrategyOutcome
	err        error
}

func NewRoleFlow(strategies ...RoleStrategy) *RoleFlow {
	return &RoleFlow{strategies: strategies}
}

// Run thử từng chiến lược đến khi một cái thành công.
// Lỗi policy (ErrForbidden / ErrInvalidRole) dừng luôn cả flow:
// không được "degrade" qua một vi phạm quyền.
func (f *RoleFlow) Run(ctx context.Context) (StrategyOutcome, error) {
	if f.started {
		return f.outcome, f.err
	}
	f.started = true

	var lastErr error
	for _, s := range f.strategies {
		out, err := s.Run(ctx)
		if err == nil {
			out.Strategy = s.Name
			f.outcome = out
			return out, nil
		}
		if errors.Is(err, ErrForbidden) || errors.Is(err, ErrInvalidRole) {
			f.err = err
			return StrategyOutcome{}, err
		}
		log.Printf("Chiến lược gán role %q thất bại, thử cái tiếp theo: %v", s.Name, err)
		lastErr = err
	}

	if lastErr == nil {
		lastErr = ErrRoleIndeterminate
	}
	f.err = lastErr
	return StrategyOutcome{}, lastErr
}

// StandardRoleStrategies dựng 3 chiến lược mặc định cho một lần chọn role:
//  1. durable:      ghi bền qua resolver (resolver tự degrade khi DB lỗi)
//  2. session-only: resolver bỏ qua DB, role chỉ nằm trong token
//  3. direct:       đường cùng, tự mint token mới, không qua resolver
func StandardRoleStrategies(resolver *RoleResolver, callerID uuid.UUID, callerRole models.UserRole, email, fullName string, role models.UserRole) []RoleStrategy {
	in := ResolveInput{
		CallerID:   callerID,
		CallerRole: callerRole,
		Role:       role,
		Email:      email,
		FullName:   fullName,
	}

	mintToken := func(res Resolution) (StrategyOutcome, error) {
		token, err := utils.GenerateToken(res.UserID.String(), res.Email, res.Role, res.SessionOnly)
		if err != nil {
			return StrategyOutcome{}, err
		}
		return StrategyOutcome{Resolution: res, Token: token}, nil
	}

	return []RoleStrategy{
		{
			Name: "durable",
			Run: func(ctx context.Context) (StrategyOutcome, error) {
				res, err := resolver.Resolve(ctx, in)
				if err != nil {
					return StrategyOutcome{}, err
				}
				return mintToken(res)
			},
		},
		{
			Name: "session-only",
			Run: func(ctx context.Context) (StrategyOutcome, error) {
				res, err := resolver.ResolveSessionOnly(ctx, in)
				if err != nil {
					return StrategyOutcome{}, err
				}
				return mintToken(res)
			},
		},
		{
			Name: "direct",
			Run: func(ctx context.Context) (StrategyOutcome, error) {
				// Không qua resolver nữa, nhưng vẫn không cho tự nâng quyền
				if role == models.RoleAdmin && callerRole != models.RoleAdmin {
					return StrategyOutcome{}, ErrForbidden
				}
				return mintToken(Resolution{UserID: callerID, Email: email, Role: role, SessionOnly: true})
			},
		},
	}
}
