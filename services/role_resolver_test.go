package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vnkhanh/notes-ninja-backend/models"
)

// fakeUserStore là store trong bộ nhớ, có thể ép lỗi từng thao tác
type fakeUserStore struct {
	users map[uuid.UUID]*models.User

	findErr   error
	createErr error
	updateErr error

	updateCalls int
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[uuid.UUID]*models.User)}
}

func (s *fakeUserStore) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	u, ok := s.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *fakeUserStore) Create(ctx context.Context, user *models.User) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.users[user.ID] = user
	return nil
}

func (s *fakeUserStore) UpdateRole(ctx context.Context, id uuid.UUID, role models.UserRole) error {
	s.updateCalls++
	if s.updateErr != nil {
		return s.updateErr
	}
	if u, ok := s.users[id]; ok {
		u.Role = role
	}
	return nil
}

func TestResolveRejectsInvalidRole(t *testing.T) {
	r := NewRoleResolver(newFakeUserStore())

	_, err := r.Resolve(context.Background(), ResolveInput{
		CallerID: uuid.New(),
		Role:     "superuser",
	})
	assert.ErrorIs(t, err, ErrInvalidRole)

	_, err = r.Resolve(context.Background(), ResolveInput{
		CallerID: uuid.New(),
		Role:     "",
	})
	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestResolveForbidsAssigningOthers(t *testing.T) {
	r := NewRoleResolver(newFakeUserStore())

	_, err := r.Resolve(context.Background(), ResolveInput{
		CallerID:   uuid.New(),
		CallerRole: models.RoleStudent,
		TargetID:   uuid.New(),
		Role:       models.RoleStudent,
	})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestResolveForbidsSelfPromotionToAdmin(t *testing.T) {
	r := NewRoleResolver(newFakeUserStore())

	_, err := r.Resolve(context.Background(), ResolveInput{
		CallerID:   uuid.New(),
		CallerRole: models.RoleStudent,
		Role:       models.RoleAdmin,
	})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestResolveAdminCanAssignOthers(t *testing.T) {
	store := newFakeUserStore()
	target := uuid.New()
	store.users[target] = &models.User{ID: target, Email: "hv@example.com"}
	r := NewRoleResolver(store)

	res, err := r.Resolve(context.Background(), ResolveInput{
		CallerID:   uuid.New(),
		CallerRole: models.RoleAdmin,
		TargetID:   target,
		Role:       models.RoleTeacher,
	})
	require.NoError(t, err)
	assert.Equal(t, target, res.UserID)
	assert.Equal(t, models.RoleTeacher, res.Role)
	assert.False(t, res.SessionOnly)
	assert.Equal(t, models.RoleTeacher, store.users[target].Role)
}

func TestResolveDurableUpdatesExistingUser(t *testing.T) {
	store := newFakeUserStore()
	caller := uuid.New()
	store.users[caller] = &models.User{ID: caller, Email: "sv@example.com"}
	r := NewRoleResolver(store)

	res, err := r.Resolve(context.Background(), ResolveInput{
		CallerID: caller,
		Role:     models.RoleStudent,
	})
	require.NoError(t, err)
	assert.False(t, res.SessionOnly)
	assert.Equal(t, models.RoleStudent, res.Role)
	assert.Equal(t, "sv@example.com", res.Email)
	assert.NotNil(t, res.User)
}

func TestResolveIsIdempotentForSameRole(t *testing.T) {
	store := newFakeUserStore()
	caller := uuid.New()
	store.users[caller] = &models.User{ID: caller, Role: models.RoleStudent}
	r := NewRoleResolver(store)

	_, err := r.Resolve(context.Background(), ResolveInput{
		CallerID: caller,
		Role:     models.RoleStudent,
	})
	require.NoError(t, err)
	// Role không đổi thì không ghi lại DB
	assert.Equal(t, 0, store.updateCalls)
}

func TestResolveCreatesMissingUser(t *testing.T) {
	store := newFakeUserStore()
	caller := uuid.New()
	r := NewRoleResolver(store)

	res, err := r.Resolve(context.Background(), ResolveInput{
		CallerID: caller,
		Role:     models.RoleStudent,
		Email:    "new@example.com",
		FullName: "Người Mới",
	})
	require.NoError(t, err)
	assert.False(t, res.SessionOnly)

	created := store.users[caller]
	require.NotNil(t, created)
	assert.Equal(t, "new@example.com", created.Email)
	assert.Equal(t, models.RoleStudent, created.Role)
	assert.NotNil(t, created.LastSignIn)
}

func TestResolveDegradesWhenLookupFails(t *testing.T) {
	store := newFakeUserStore()
	store.findErr = errors.New("connection refused")
	r := NewRoleResolver(store)

	caller := uuid.New()
	res, err := r.Resolve(context.Background(), ResolveInput{
		CallerID: caller,
		Role:     models.RoleStudent,
		Email:    "sv@example.com",
	})
	// DB chết không phải lỗi của user: vẫn thành công, chỉ là session-only
	require.NoError(t, err)
	assert.True(t, res.SessionOnly)
	assert.Equal(t, caller, res.UserID)
	assert.Equal(t, models.RoleStudent, res.Role)
	assert.Nil(t, res.User)
}

func TestResolveDegradesWhenUpdateFails(t *testing.T) {
	store := newFakeUserStore()
	caller := uuid.New()
	store.users[caller] = &models.User{ID: caller, Role: models.RoleStudent}
	store.updateErr = errors.New("write timeout")
	r := NewRoleResolver(store)

	res, err := r.Resolve(context.Background(), ResolveInput{
		CallerID: caller,
		Role:     models.RoleTeacher,
	})
	require.NoError(t, err)
	assert.True(t, res.SessionOnly)
	assert.Equal(t, models.RoleTeacher, res.Role)
}

func TestResolveDegradesWhenCreateFails(t *testing.T) {
	store := newFakeUserStore()
	store.createErr = errors.New("insert failed")
	r := NewRoleResolver(store)

	res, err := r.Resolve(context.Background(), ResolveInput{
		CallerID: uuid.New(),
		Role:     models.RoleStudent,
	})
	require.NoError(t, err)
	assert.True(t, res.SessionOnly)
}

func TestResolveNeverDegradesPolicyErrors(t *testing.T) {
	// Store chết hoàn toàn nhưng lỗi quyền vẫn phải trả thẳng
	store := newFakeUserStore()
	store.findErr = errors.New("down")
	r := NewRoleResolver(store)

	_, err := r.Resolve(context.Background(), ResolveInput{
		CallerID:   uuid.New(),
		CallerRole: models.RoleStudent,
		Role:       models.RoleAdmin,
	})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestResolveSessionOnlySkipsStore(t *testing.T) {
	store := newFakeUserStore()
	store.findErr = errors.New("down")
	r := NewRoleResolver(store)

	caller := uuid.New()
	res, err := r.ResolveSessionOnly(context.Background(), ResolveInput{
		CallerID: caller,
		Role:     models.RoleTeacher,
		Email:    "gv@example.com",
	})
	require.NoError(t, err)
	assert.True(t, res.SessionOnly)
	assert.Equal(t, models.RoleTeacher, res.Role)
	assert.Equal(t, "gv@example.com", res.Email)
}

func TestResolveSessionOnlyStillValidates(t *testing.T) {
	r := NewRoleResolver(newFakeUserStore())

	_, err := r.ResolveSessionOnly(context.Background(), ResolveInput{
		CallerID: uuid.New(),
		Role:     "hacker",
	})
	assert.ErrorIs(t, err, ErrInvalidRole)

	_, err = r.ResolveSessionOnly(context.Background(), ResolveInput{
		CallerID:   uuid.New(),
		CallerRole: models.RoleStudent,
		Role:       models.RoleAdmin,
	})
	assert.ErrorIs(t, err, ErrForbidden)
}
