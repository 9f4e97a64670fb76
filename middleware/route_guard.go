package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/notes-ninja-backend/models"
	"github.com/vnkhanh/notes-ninja-backend/utils"
)

// Các path đặc biệt mà route guard xử lý
const (
	PathRoot          = "/"
	PathRoleSelect    = "/auth"               // trang chọn vai trò
	PathApplyRole     = "/auth/apply-role"    // bootstrap gán vai trò
	PathDashboardJump = "/dashboard-redirect" // bootstrap chuyển hướng dashboard
)

// GuardDecision là kết quả của route guard: cho qua hoặc chuyển hướng.
type GuardDecision struct {
	Allow    bool
	Redirect string
}

func allow() GuardDecision                   { return GuardDecision{Allow: true} }
func redirectTo(target string) GuardDecision { return GuardDecision{Redirect: target} }

// DashboardPath trả về dashboard tương ứng với role
func DashboardPath(role models.UserRole) string {
	switch role {
	case models.RoleStudent:
		return "/student/dashboard"
	case models.RoleTeacher:
		return "/teacher/dashboard"
	case models.RoleAdmin:
		return "/admin/dashboard"
	default:
		return PathRoleSelect
	}
}

// roleNamespace trả về role gắn với prefix của path ("" nếu path không thuộc namespace nào)
func roleNamespace(path string) models.UserRole {
	switch {
	case path == "/student" || strings.HasPrefix(path, "/student/"):
		return models.RoleStudent
	case path == "/teacher" || strings.HasPrefix(path, "/teacher/"):
		return models.RoleTeacher
	case path == "/admin" || strings.HasPrefix(path, "/admin/"):
		return models.RoleAdmin
	default:
		return ""
	}
}

func isBypassPath(path string) bool {
	return strings.HasPrefix(path, "/api/") ||
		strings.HasPrefix(path, "/ws/") ||
		strings.HasPrefix(path, "/assets/") ||
		path == "/health" || path == "/ping" || path == "/favicon.ico"
}

func isBootstrapPath(path string) bool {
	return path == PathRoleSelect || path == PathApplyRole || path == PathDashboardJump
}

// GuardRequest quyết định cho qua hay chuyển hướng một request trang.
// Hàm thuần: chỉ nhìn vào (path, query, claims), không đụng DB.
// Chạy trên mọi request nên không được làm I/O ngoài việc decode token.
// Thứ tự ưu tiên cố định, nhánh khớp đầu tiên thắng.
func GuardRequest(path string, query url.Values, claims *utils.Claims) GuardDecision {
	// 1. Lối thoát: redirect bootstrap mang role=undefined -> quay về chọn vai trò
	if path == PathDashboardJump && query.Get("role") == "undefined" {
		return redirectTo(PathRoleSelect)
	}

	// 2. API / websocket / asset: handler tự kiểm tra quyền
	if isBypassPath(path) {
		return allow()
	}

	// 3. Có dấu hiệu vừa redirect xong (_ts) -> không chặn lại lần nữa
	if query.Get("_ts") != "" {
		return allow()
	}

	// 4. Trang gốc: điều hướng theo role trong token
	if path == PathRoot {
		if claims != nil && claims.Role != "" {
			return redirectTo(DashboardPath(claims.Role))
		}
		return redirectTo(PathRoleSelect)
	}

	// 5. Các trang bootstrap: cho qua, trừ khi đã có role mà vẫn vào trang chọn
	if isBootstrapPath(path) {
		if path == PathRoleSelect && claims != nil && claims.Role != "" {
			return redirectTo(DashboardPath(claims.Role))
		}
		return allow()
	}

	// 6. Các trang còn lại: cần token hợp lệ
	if claims == nil {
		return redirectTo(PathRoleSelect)
	}
	if ns := roleNamespace(path); ns != "" {
		if claims.Role == "" {
			return redirectTo(PathRoleSelect)
		}
		// Sai khu vực -> đưa về đúng dashboard của user, không trả trang lỗi
		if claims.Role != ns {
			return redirectTo(DashboardPath(claims.Role))
		}
	}

	// 7. Cho qua
	return allow()
}

// RouteGuard áp GuardRequest cho các route trang (không phải /api).
// Token lấy từ cookie HTTP-only; token hỏng coi như không có.
func RouteGuard() gin.HandlerFunc {
	return func(c *gin.Context) {
		var claims *utils.Claims
		if cookie, err := c.Cookie(SessionCookieName); err == nil && cookie != "" {
			if parsed, err := utils.VerifyToken(cookie); err == nil {
				claims = parsed
			}
		}

		decision := GuardRequest(c.Request.URL.Path, c.Request.URL.Query(), claims)
		if !decision.Allow {
			c.Redirect(http.StatusFound, decision.Redirect)
			c.Abort()
			return
		}
		c.Next()
	}
}
