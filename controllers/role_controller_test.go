package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vnkhanh/notes-ninja-backend/middleware"
	"github.com/vnkhanh/notes-ninja-backend/models"
	"github.com/vnkhanh/notes-ninja-backend/services"
	"github.com/vnkhanh/notes-ninja-backend/utils"
)

// memUserStore là store trong bộ nhớ cho test controller
type memUserStore struct {
	users map[uuid.UUID]*models.User
	fail  bool
}

func newMemUserStore() *memUserStore {
	return &memUserStore{users: make(map[uuid.UUID]*models.User)}
}

func (s *memUserStore) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if s.fail {
		return nil, errors.New("db down")
	}
	u, ok := s.users[id]
	if !ok {
		return nil, services.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *memUserStore) Create(ctx context.Context, user *models.User) error {
	if s.fail {
		return errors.New("db down")
	}
	s.users[user.ID] = user
	return nil
}

func (s *memUserStore) UpdateRole(ctx context.Context, id uuid.UUID, role models.UserRole) error {
	if s.fail {
		return errors.New("db down")
	}
	if u, ok := s.users[id]; ok {
		u.Role = role
	}
	return nil
}

func newRoleTestRouter(t *testing.T, store *memUserStore) *gin.Engine {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret")
	gin.SetMode(gin.TestMode)

	rc := NewRoleController(services.NewRoleResolver(store), store)

	r := gin.New()
	r.GET("/auth/apply-role", rc.ApplyRolePage)
	authed := r.Group("/api/auth", middleware.AuthMiddleware())
	authed.POST("/role", rc.AssignRole)
	authed.POST("/session-role", rc.AssignSessionRole)
	authed.GET("/me", rc.Me)
	return r
}

func authedRequest(t *testing.T, method, path, body string, role models.UserRole) *http.Request {
	t.Helper()
	token, err := utils.GenerateToken(uuid.NewString(), "sv@example.com", role, false)
	require.NoError(t, err)

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+token)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestAssignRoleRequiresAuth(t *testing.T) {
	r := newRoleTestRouter(t, newMemUserStore())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/auth/role", strings.NewReader(`{"role":"student"}`))
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAssignRoleRejectsInvalidRole(t *testing.T) {
	r := newRoleTestRouter(t, newMemUserStore())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, authedRequest(t, http.MethodPost, "/api/auth/role", `{"role":"superuser"}`, ""))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAssignRoleForbidsOtherUsersForNonAdmin(t *testing.T) {
	r := newRoleTestRouter(t, newMemUserStore())

	body := `{"role":"student","user_id":"` + uuid.NewString() + `"}`
	w := httptest.NewRecorder()
	r.ServeHTTP(w, authedRequest(t, http.MethodPost, "/api/auth/role", body, models.RoleStudent))

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAssignRoleDurableSuccess(t *testing.T) {
	store := newMemUserStore()
	r := newRoleTestRouter(t, store)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, authedRequest(t, http.MethodPost, "/api/auth/role", `{"role":"student"}`, ""))

	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, false, body["_session_only"])
	assert.NotEmpty(t, body["token"])

	user := body["user"].(map[string]any)
	assert.Equal(t, "sv@example.com", user["email"])
	assert.Equal(t, "student", user["role"])
	assert.NotEmpty(t, user["id"])

	// User chưa có record được tạo mới với role đã chọn
	require.Len(t, store.users, 1)
	for _, u := range store.users {
		assert.Equal(t, models.RoleStudent, u.Role)
	}

	// Token mới nằm luôn trong cookie phiên
	cookies := w.Result().Cookies()
	var found bool
	for _, ck := range cookies {
		if ck.Name == middleware.SessionCookieName {
			found = true
			claims, err := utils.VerifyToken(ck.Value)
			require.NoError(t, err)
			assert.Equal(t, models.RoleStudent, claims.Role)
		}
	}
	assert.True(t, found)
}

func TestAssignRoleDegradesWhenStoreFails(t *testing.T) {
	store := newMemUserStore()
	store.fail = true
	r := newRoleTestRouter(t, store)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, authedRequest(t, http.MethodPost, "/api/auth/role", `{"role":"teacher"}`, ""))

	// DB chết vẫn phải 200, chỉ đánh dấu session-only
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, true, body["_session_only"])
	assert.NotEmpty(t, body["token"])
	assert.Equal(t, "teacher", body["user"].(map[string]any)["role"])
}

func TestAssignRolePolicyErrorNotDegraded(t *testing.T) {
	store := newMemUserStore()
	store.fail = true
	r := newRoleTestRouter(t, store)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, authedRequest(t, http.MethodPost, "/api/auth/role", `{"role":"admin"}`, models.RoleStudent))

	// Tự nâng quyền phải 403 dù store đang chết
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAssignSessionRoleSkipsStore(t *testing.T) {
	store := newMemUserStore()
	store.fail = true
	r := newRoleTestRouter(t, store)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, authedRequest(t, http.MethodPost, "/api/auth/session-role", `{"role":"student"}`, ""))

	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, true, body["_session_only"])
	assert.Equal(t, "student", body["user"].(map[string]any)["role"])
	require.NotEmpty(t, body["token"])

	claims, err := utils.VerifyToken(body["token"].(string))
	require.NoError(t, err)
	assert.True(t, claims.SessionOnly)
	assert.Equal(t, models.RoleStudent, claims.Role)
}

func TestAdminAssignRoleToNewUserUsesProvidedProfile(t *testing.T) {
	store := newMemUserStore()
	r := newRoleTestRouter(t, store)

	target := uuid.New()
	body := `{"role":"teacher","user_id":"` + target.String() +
		`","email":"gv@example.com","full_name":"Giảng Viên"}`
	w := httptest.NewRecorder()
	r.ServeHTTP(w, authedRequest(t, http.MethodPost, "/api/auth/role", body, models.RoleAdmin))

	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeBody(t, w)
	assert.Equal(t, true, resp["success"])
	assert.Equal(t, false, resp["_session_only"])
	// Không mint token khi gán cho người khác
	assert.NotContains(t, resp, "token")

	// Record mới mang profile trong body, không phải email của admin
	created := store.users[target]
	require.NotNil(t, created)
	assert.Equal(t, "gv@example.com", created.Email)
	assert.Equal(t, "Giảng Viên", created.FullName)
	assert.Equal(t, models.RoleTeacher, created.Role)
	assert.Equal(t, "gv@example.com", resp["user"].(map[string]any)["email"])
}

func TestMeFallsBackToClaimsWhenStoreFails(t *testing.T) {
	store := newMemUserStore()
	store.fail = true
	r := newRoleTestRouter(t, store)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, authedRequest(t, http.MethodGet, "/api/auth/me", "", models.RoleStudent))

	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, true, body["_session_only"])
	user := body["user"].(map[string]any)
	assert.Equal(t, "sv@example.com", user["email"])
	assert.Equal(t, "student", user["role"])
}

func applyRoleRequest(t *testing.T, url string, sessionRole models.UserRole, extraCookies ...*http.Cookie) *http.Request {
	t.Helper()
	token, err := utils.GenerateToken(uuid.NewString(), "sv@example.com", sessionRole, false)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, url, nil)
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: token})
	for _, ck := range extraCookies {
		req.AddCookie(ck)
	}
	return req
}

func TestApplyRoleRedirectsWithoutSession(t *testing.T) {
	r := newRoleTestRouter(t, newMemUserStore())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/auth/apply-role?role=student", nil))

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, middleware.PathRoleSelect, w.Header().Get("Location"))
}

func TestApplyRoleUsesQueryFirst(t *testing.T) {
	store := newMemUserStore()
	r := newRoleTestRouter(t, store)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, applyRoleRequest(t, "/auth/apply-role?role=teacher", "",
		&http.Cookie{Name: RoleChoiceCookie, Value: "student"}))

	require.Equal(t, http.StatusFound, w.Code)
	loc := w.Header().Get("Location")
	assert.True(t, strings.HasPrefix(loc, "/teacher/dashboard?_ts="), "location = %s", loc)

	// Lựa chọn mới được ghi lại vào cả 2 cookie
	var choice, prev string
	for _, ck := range w.Result().Cookies() {
		switch ck.Name {
		case RoleChoiceCookie:
			choice = ck.Value
		case RolePrevCookie:
			prev = ck.Value
		}
	}
	assert.Equal(t, "teacher", choice)
	assert.Equal(t, "teacher", prev)
}

func TestApplyRoleFallsBackToCookieThenToken(t *testing.T) {
	r := newRoleTestRouter(t, newMemUserStore())

	// Không query, không cookie choice: dùng cookie prev
	w := httptest.NewRecorder()
	r.ServeHTTP(w, applyRoleRequest(t, "/auth/apply-role", "",
		&http.Cookie{Name: RolePrevCookie, Value: "student"}))
	require.Equal(t, http.StatusFound, w.Code)
	assert.True(t, strings.HasPrefix(w.Header().Get("Location"), "/student/dashboard?_ts="))

	// Không nguồn client nào: rơi về role có sẵn trong token
	w = httptest.NewRecorder()
	r.ServeHTTP(w, applyRoleRequest(t, "/auth/apply-role", models.RoleTeacher))
	require.Equal(t, http.StatusFound, w.Code)
	assert.True(t, strings.HasPrefix(w.Header().Get("Location"), "/teacher/dashboard?_ts="))
}

func TestApplyRoleIndeterminateShowsDelayedFallback(t *testing.T) {
	r := newRoleTestRouter(t, newMemUserStore())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, applyRoleRequest(t, "/auth/apply-role?role=undefined", ""))

	// Không redirect ngay mà để Refresh header đưa về trang chọn sau vài giây
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "3;url="+middleware.PathRoleSelect, w.Header().Get("Refresh"))
}

func TestApplyRoleSucceedsWhenStoreDown(t *testing.T) {
	store := newMemUserStore()
	store.fail = true
	r := newRoleTestRouter(t, store)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, applyRoleRequest(t, "/auth/apply-role?role=student", ""))

	// Resolver degrade sang session-only, user vẫn vào được dashboard
	require.Equal(t, http.StatusFound, w.Code)
	assert.True(t, strings.HasPrefix(w.Header().Get("Location"), "/student/dashboard?_ts="))

	for _, ck := range w.Result().Cookies() {
		if ck.Name == middleware.SessionCookieName {
			claims, err := utils.VerifyToken(ck.Value)
			require.NoError(t, err)
			assert.True(t, claims.SessionOnly)
		}
	}
}
