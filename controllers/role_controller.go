package controllers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/vnkhanh/notes-ninja-backend/config"
	"github.com/vnkhanh/notes-ninja-backend/middleware"
	"github.com/vnkhanh/notes-ninja-backend/models"
	"github.com/vnkhanh/notes-ninja-backend/services"
	"github.com/vnkhanh/notes-ninja-backend/utils"
	"github.com/vnkhanh/notes-ninja-backend/ws"
)

// Cookie lưu lựa chọn role phía client. Ghi 2 nơi để còn đọc lại được
// khi một cookie bị mất (choice là lựa chọn mới nhất, prev là bản lưu dự phòng).
const (
	RoleChoiceCookie = "nn_role_choice"
	RolePrevCookie   = "nn_role_prev"
)

// RoleController xử lý việc gán vai trò. Khác các controller còn lại,
// resolver và store được inject qua constructor để test được với store giả.
type RoleController struct {
	Resolver *services.RoleResolver
	Store    services.UserStore
}

func NewRoleController(resolver *services.RoleResolver, store services.UserStore) *RoleController {
	return &RoleController{Resolver: resolver, Store: store}
}

type AssignRoleInput struct {
	UserID string `json:"user_id"` // bỏ trống = tự gán cho chính mình
	Role   string `json:"role" binding:"required"`

	// Profile dùng khi admin gán cho user chưa có record trong DB
	Email    string `json:"email"`
	FullName string `json:"full_name"`
}

// claimsFromContext lấy claims mà AuthMiddleware đã verify
func claimsFromContext(c *gin.Context) (*utils.Claims, uuid.UUID, bool) {
	v, ok := c.Get("claims")
	if !ok {
		return nil, uuid.Nil, false
	}
	claims, ok := v.(*utils.Claims)
	if !ok {
		return nil, uuid.Nil, false
	}
	callerID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, uuid.Nil, false
	}
	return claims, callerID, true
}

func writeRoleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidRole):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Vai trò không hợp lệ"})
	case errors.Is(err, services.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "Bạn không có quyền thực hiện thao tác này"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể gán vai trò"})
	}
}

// POST /api/auth/role
// Gán role bền vào DB. DB lỗi thì vẫn trả thành công với _session_only = true,
// role lúc đó chỉ sống trong token của phiên này.
func (rc *RoleController) AssignRole(c *gin.Context) {
	claims, callerID, ok := claimsFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Chưa đăng nhập"})
		return
	}

	var input AssignRoleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	targetID := uuid.Nil
	if input.UserID != "" {
		parsed, err := uuid.Parse(input.UserID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "user_id không hợp lệ"})
			return
		}
		targetID = parsed
	}

	// Gán cho chính mình thì profile lấy từ claims; admin gán cho người khác
	// thì phải dùng profile trong body, không được dính email của admin
	email, fullName := claims.Email, ""
	if targetID != uuid.Nil && targetID != callerID {
		email, fullName = input.Email, input.FullName
	}

	res, err := rc.Resolver.Resolve(c.Request.Context(), services.ResolveInput{
		CallerID:   callerID,
		CallerRole: claims.Role,
		TargetID:   targetID,
		Role:       models.UserRole(input.Role),
		Email:      email,
		FullName:   fullName,
	})
	if err != nil {
		writeRoleError(c, err)
		return
	}

	// Admin gán cho người khác: báo cho người đó biết (chỉ khi ghi bền thành công)
	if res.UserID != callerID && !res.SessionOnly {
		notifyRoleAssigned(res.UserID, res.Role)
	}

	// Chỉ mint token mới khi caller tự gán cho chính mình
	body := gin.H{
		"success": true,
		"message": "Gán vai trò thành công",
		"user": gin.H{
			"id":    res.UserID,
			"email": res.Email,
			"role":  res.Role,
		},
		"_session_only": res.SessionOnly,
	}
	if res.UserID == callerID {
		token, terr := utils.GenerateToken(res.UserID.String(), res.Email, res.Role, res.SessionOnly)
		if terr != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể tạo token"})
			return
		}
		setSessionCookie(c, token)
		body["token"] = token
	}

	c.JSON(http.StatusOK, body)
}

// notifyRoleAssigned tạo thông báo + đẩy badge cho user được gán role
func notifyRoleAssigned(userID uuid.UUID, role models.UserRole) {
	if config.DB == nil {
		return
	}
	relatedURL := middleware.DashboardPath(role)
	notif := models.Notification{
		UserID:     userID,
		Title:      "Vai trò đã được cập nhật",
		Message:    "Tài khoản của bạn đã được gán vai trò " + string(role),
		Type:       models.NotificationRoleAssigned,
		RelatedURL: &relatedURL,
	}
	if err := config.DB.Create(&notif).Error; err != nil {
		log.Printf("Không tạo được thông báo gán role cho user %s: %v", userID, err)
		return
	}

	var unread int64
	config.DB.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&unread)
	ws.SendBadgeUpdate(userID.String(), unread)
}

type SessionRoleInput struct {
	Role string `json:"role" binding:"required"`
}

// POST /api/auth/session-role
// Gán role chỉ trong session token, không đụng DB.
func (rc *RoleController) AssignSessionRole(c *gin.Context) {
	claims, callerID, ok := claimsFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Chưa đăng nhập"})
		return
	}

	var input SessionRoleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := rc.Resolver.ResolveSessionOnly(c.Request.Context(), services.ResolveInput{
		CallerID:   callerID,
		CallerRole: claims.Role,
		Role:       models.UserRole(input.Role),
		Email:      claims.Email,
	})
	if err != nil {
		writeRoleError(c, err)
		return
	}

	token, err := utils.GenerateToken(res.UserID.String(), res.Email, res.Role, true)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể tạo token"})
		return
	}
	setSessionCookie(c, token)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Gán vai trò cho phiên thành công",
		"user": gin.H{
			"id":    res.UserID,
			"email": res.Email,
			"role":  res.Role,
		},
		"token":         token,
		"_session_only": true,
	})
}

// GET /api/auth/me
// Trả profile từ DB; DB lỗi thì trả thông tin trong token với _session_only = true
// thay vì 500, để client vẫn render được.
func (rc *RoleController) Me(c *gin.Context) {
	claims, callerID, ok := claimsFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Chưa đăng nhập"})
		return
	}

	user, err := rc.Store.FindByID(c.Request.Context(), callerID)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{
			"user": gin.H{
				"id":    claims.UserID,
				"email": claims.Email,
				"role":  claims.Role,
			},
			"_session_only": true,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user": gin.H{
			"id":           user.ID,
			"email":        user.Email,
			"full_name":    user.FullName,
			"image_url":    user.ImageURL,
			"role":         user.Role,
			"last_sign_in": user.LastSignIn,
		},
		"_session_only": claims.SessionOnly,
	})
}

// GET /auth/apply-role
// Trang trung gian sau màn chọn role: gom role từ các nguồn theo thứ tự
// ưu tiên, chạy lần lượt các chiến lược gán, rồi redirect về dashboard.
func (rc *RoleController) ApplyRolePage(c *gin.Context) {
	tokenStr, err := c.Cookie(middleware.SessionCookieName)
	if err != nil || tokenStr == "" {
		c.Redirect(http.StatusFound, middleware.PathRoleSelect)
		return
	}
	claims, err := utils.VerifyToken(tokenStr)
	if err != nil {
		c.Redirect(http.StatusFound, middleware.PathRoleSelect)
		return
	}
	callerID, err := uuid.Parse(claims.UserID)
	if err != nil {
		c.Redirect(http.StatusFound, middleware.PathRoleSelect)
		return
	}

	// Thứ tự ưu tiên các nguồn: query mới nhất, rồi cookie lựa chọn,
	// rồi cookie dự phòng, cuối cùng là role đã có sẵn trong token.
	choiceCookie, _ := c.Cookie(RoleChoiceCookie)
	prevCookie, _ := c.Cookie(RolePrevCookie)
	role, source, err := services.PickRole([]services.RoleSource{
		{Name: "query", Value: c.Query("role")},
		{Name: "cookie-choice", Value: choiceCookie},
		{Name: "cookie-prev", Value: prevCookie},
		{Name: "token", Value: string(claims.Role)},
	})
	if err != nil {
		// Không tìm được role từ nguồn nào: quay về màn chọn sau vài giây
		c.Header("Refresh", "3;url="+middleware.PathRoleSelect)
		c.JSON(http.StatusOK, gin.H{
			"message": "Không xác định được vai trò, đang quay về trang chọn vai trò...",
		})
		return
	}

	flow := services.NewRoleFlow(services.StandardRoleStrategies(
		rc.Resolver, callerID, claims.Role, claims.Email, "", role,
	)...)
	outcome, err := flow.Run(c.Request.Context())
	if err != nil {
		if errors.Is(err, services.ErrInvalidRole) || errors.Is(err, services.ErrForbidden) {
			writeRoleError(c, err)
			return
		}
		c.Header("Refresh", "3;url="+middleware.PathRoleSelect)
		c.JSON(http.StatusOK, gin.H{
			"message": "Không gán được vai trò, đang quay về trang chọn vai trò...",
		})
		return
	}

	// Lưu lựa chọn vào cả 2 cookie rồi phát hành token mới
	maxAge := int(30 * 24 * time.Hour / time.Second)
	c.SetCookie(RoleChoiceCookie, string(role), maxAge, "/", "", false, false)
	c.SetCookie(RolePrevCookie, string(role), maxAge, "/", "", false, false)
	setSessionCookie(c, outcome.Token)

	log.Printf("Áp dụng role %s (nguồn %s, chiến lược %s) cho user %s", role, source, outcome.Strategy, callerID)

	// _ts để route guard biết đây là redirect vừa phát hành, tránh vòng lặp
	target := fmt.Sprintf("%s?_ts=%d", middleware.DashboardPath(role), time.Now().UnixMilli())
	c.Redirect(http.StatusFound, target)
}
