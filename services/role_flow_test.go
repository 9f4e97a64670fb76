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

func TestPickRolePriorityOrder(t *testing.T) {
	role, source, err := PickRole([]RoleSource{
		{Name: "query", Value: "teacher"},
		{Name: "cookie_choice", Value: "student"},
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleTeacher, role)
	assert.Equal(t, "query", source)
}

func TestPickRoleSkipsInvalidValues(t *testing.T) {
	role, source, err := PickRole([]RoleSource{
		{Name: "query", Value: "undefined"},
		{Name: "cookie_choice", Value: ""},
		{Name: "cookie_prev", Value: "null"},
		{Name: "token", Value: "student"},
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleStudent, role)
	assert.Equal(t, "token", source)
}

func TestPickRoleIndeterminate(t *testing.T) {
	_, _, err := PickRole([]RoleSource{
		{Name: "query", Value: ""},
		{Name: "cookie_choice", Value: "garbage"},
	})
	assert.ErrorIs(t, err, ErrRoleIndeterminate)

	_, _, err = PickRole(nil)
	assert.ErrorIs(t, err, ErrRoleIndeterminate)
}

func okStrategy(name string) RoleStrategy {
	return RoleStrategy{
		Name: name,
		Run: func(ctx context.Context) (StrategyOutcome, error) {
			return StrategyOutcome{Token: "token-" + name}, nil
		},
	}
}

func failStrategy(name string, err error) RoleStrategy {
	return RoleStrategy{
		Name: name,
		Run:  func(ctx context.Context) (StrategyOutcome, error) { return StrategyOutcome{}, err },
	}
}

func TestRoleFlowStopsAtFirstSuccess(t *testing.T) {
	secondRan := false
	flow := NewRoleFlow(
		okStrategy("first"),
		RoleStrategy{
			Name: "second",
			Run: func(ctx context.Context) (StrategyOutcome, error) {
				secondRan = true
				return StrategyOutcome{}, nil
			},
		},
	)

	out, err := flow.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "first", out.Strategy)
	assert.Equal(t, "token-first", out.Token)
	assert.False(t, secondRan)
}

func TestRoleFlowFallsThroughInfraErrors(t *testing.T) {
	flow := NewRoleFlow(
		failStrategy("durable", errors.New("db down")),
		failStrategy("session-only", errors.New("signing key missing")),
		okStrategy("direct"),
	)

	out, err := flow.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "direct", out.Strategy)
}

func TestRoleFlowAbortsOnPolicyError(t *testing.T) {
	fallbackRan := false
	flow := NewRoleFlow(
		failStrategy("durable", ErrForbidden),
		RoleStrategy{
			Name: "session-only",
			Run: func(ctx context.Context) (StrategyOutcome, error) {
				fallbackRan = true
				return StrategyOutcome{}, nil
			},
		},
	)

	_, err := flow.Run(context.Background())
	assert.ErrorIs(t, err, ErrForbidden)
	assert.False(t, fallbackRan)
}

func TestRoleFlowAbortsOnInvalidRole(t *testing.T) {
	flow := NewRoleFlow(
		failStrategy("durable", ErrInvalidRole),
		okStrategy("session-only"),
	)

	_, err := flow.Run(context.Background())
	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestRoleFlowReturnsLastErrorWhenAllFail(t *testing.T) {
	last := errors.New("token mint failed")
	flow := NewRoleFlow(
		failStrategy("durable", errors.New("db down")),
		failStrategy("direct", last),
	)

	_, err := flow.Run(context.Background())
	assert.ErrorIs(t, err, last)
}

func TestRoleFlowEmptyIsIndeterminate(t *testing.T) {
	flow := NewRoleFlow()
	_, err := flow.Run(context.Background())
	assert.ErrorIs(t, err, ErrRoleIndeterminate)
}

func TestRoleFlowRunsOnlyOnce(t *testing.T) {
	runs := 0
	flow := NewRoleFlow(RoleStrategy{
		Name: "durable",
		Run: func(ctx context.Context) (StrategyOutcome, error) {
			runs++
			return StrategyOutcome{Token: "t"}, nil
		},
	})

	first, err := flow.Run(context.Background())
	require.NoError(t, err)
	second, err := flow.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, runs)
}

func TestRoleFlowRunsOnlyOnceAfterError(t *testing.T) {
	runs := 0
	flow := NewRoleFlow(RoleStrategy{
		Name: "durable",
		Run: func(ctx context.Context) (StrategyOutcome, error) {
			runs++
			return StrategyOutcome{}, ErrForbidden
		},
	})

	_, err := flow.Run(context.Background())
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = flow.Run(context.Background())
	assert.ErrorIs(t, err, ErrForbidden)
	assert.Equal(t, 1, runs)
}

func TestStandardRoleStrategiesDurableFirst(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	store := newFakeUserStore()
	caller := uuid.New()
	store.users[caller] = &models.User{ID: caller, Email: "sv@example.com"}
	resolver := NewRoleResolver(store)

	strategies := StandardRoleStrategies(resolver, caller, "", "sv@example.com", "Sinh Viên", models.RoleStudent)
	require.Len(t, strategies, 3)
	assert.Equal(t, "durable", strategies[0].Name)
	assert.Equal(t, "session-only", strategies[1].Name)
	assert.Equal(t, "direct", strategies[2].Name)

	out, err := NewRoleFlow(strategies...).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "durable", out.Strategy)
	assert.False(t, out.Resolution.SessionOnly)
	assert.NotEmpty(t, out.Token)
	assert.Equal(t, models.RoleStudent, store.users[caller].Role)
}

func TestStandardRoleStrategiesDirectBlocksAdminGrab(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	resolver := NewRoleResolver(newFakeUserStore())
	strategies := StandardRoleStrategies(resolver, uuid.New(), models.RoleStudent, "sv@example.com", "", models.RoleAdmin)

	_, err := NewRoleFlow(strategies...).Run(context.Background())
	assert.ErrorIs(t, err, ErrForbidden)
}
