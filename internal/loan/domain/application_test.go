package domain

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wyfcoding/creditsea/pkg/idgen"
)

var (
	applicant = Actor{ID: "USR1", Name: "John Doe", Role: RoleApplicant}
	verifier  = Actor{ID: "USR2", Name: "Verifier Account", Role: RoleVerifier}
	admin     = Actor{ID: "USR3", Name: "Admin Account", Role: RoleAdmin}
)

func newPendingApplication(t *testing.T) *CreditApplication {
	t.Helper()
	app, err := NewCreditApplication(applicant, "Personal Loan", decimal.NewFromInt(5000), idgen.NewSnowflake(1))
	require.NoError(t, err)
	return app
}

func TestNewCreditApplication(t *testing.T) {
	t.Run("starts pending with generated id", func(t *testing.T) {
		app := newPendingApplication(t)
		assert.Equal(t, StatusPending, app.Status)
		assert.Regexp(t, `^APP\d+$`, app.ID)
		assert.Equal(t, "John Doe", app.ApplicantName)
		assert.False(t, app.Date.IsZero())
	})

	t.Run("rejects non-applicant submitter", func(t *testing.T) {
		_, err := NewCreditApplication(verifier, "Personal Loan", decimal.NewFromInt(100), idgen.NewSnowflake(1))
		require.ErrorIs(t, err, ErrRoleNotAllowed)
	})

	t.Run("rejects non-positive amount", func(t *testing.T) {
		for _, amount := range []decimal.Decimal{decimal.Zero, decimal.NewFromInt(-50)} {
			_, err := NewCreditApplication(applicant, "Personal Loan", amount, idgen.NewSnowflake(1))
			require.ErrorIs(t, err, ErrInvalidAmount)
		}
	})
}

func TestApplicationLifecycle(t *testing.T) {
	ctx := context.Background()

	t.Run("pending verified approved path", func(t *testing.T) {
		app := newPendingApplication(t)
		require.NoError(t, app.Verify(ctx, verifier))
		assert.Equal(t, StatusVerified, app.Status)

		require.NoError(t, app.Approve(ctx, admin))
		assert.Equal(t, StatusApproved, app.Status)
		assert.True(t, app.IsTerminal())
	})

	t.Run("verifier rejects pending application", func(t *testing.T) {
		app := newPendingApplication(t)
		require.NoError(t, app.Reject(ctx, verifier))
		assert.Equal(t, StatusRejected, app.Status)
		assert.True(t, app.IsTerminal())
	})

	t.Run("admin rejects verified application", func(t *testing.T) {
		app := newPendingApplication(t)
		require.NoError(t, app.Verify(ctx, verifier))
		require.NoError(t, app.Reject(ctx, admin))
		assert.Equal(t, StatusRejected, app.Status)
	})

	t.Run("cannot approve straight from pending", func(t *testing.T) {
		app := newPendingApplication(t)
		err := app.Approve(ctx, admin)
		require.ErrorIs(t, err, ErrInvalidTransition)
		assert.Equal(t, StatusPending, app.Status)
	})

	t.Run("terminal states admit no further transitions", func(t *testing.T) {
		app := newPendingApplication(t)
		require.NoError(t, app.Verify(ctx, verifier))
		require.NoError(t, app.Approve(ctx, admin))

		for _, target := range []ApplicationStatus{StatusVerified, StatusApproved, StatusRejected} {
			err := app.TransitionTo(ctx, target, admin)
			require.Error(t, err)
			assert.Equal(t, StatusApproved, app.Status)
		}
	})
}

func TestRoleGating(t *testing.T) {
	ctx := context.Background()

	t.Run("verify requires verifier", func(t *testing.T) {
		for _, actor := range []Actor{applicant, admin} {
			app := newPendingApplication(t)
			err := app.Verify(ctx, actor)
			require.ErrorIs(t, err, ErrRoleNotAllowed)
			assert.Equal(t, StatusPending, app.Status)
		}
	})

	t.Run("approve requires admin", func(t *testing.T) {
		app := newPendingApplication(t)
		require.NoError(t, app.Verify(ctx, verifier))

		for _, actor := range []Actor{applicant, verifier} {
			err := app.Approve(ctx, actor)
			require.ErrorIs(t, err, ErrRoleNotAllowed)
			assert.Equal(t, StatusVerified, app.Status)
		}
	})

	t.Run("rejecting pending requires verifier not admin", func(t *testing.T) {
		app := newPendingApplication(t)
		err := app.Reject(ctx, admin)
		require.ErrorIs(t, err, ErrRoleNotAllowed)
		assert.Equal(t, StatusPending, app.Status)
	})

	t.Run("rejecting verified requires admin not verifier", func(t *testing.T) {
		app := newPendingApplication(t)
		require.NoError(t, app.Verify(ctx, verifier))

		err := app.Reject(ctx, verifier)
		require.ErrorIs(t, err, ErrRoleNotAllowed)
		assert.Equal(t, StatusVerified, app.Status)
	})
}

func TestTransitionTo(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown target state is rejected", func(t *testing.T) {
		app := newPendingApplication(t)
		err := app.TransitionTo(ctx, StatusPending, verifier)
		require.ErrorIs(t, err, ErrInvalidTransition)

		err = app.TransitionTo(ctx, ApplicationStatus("bogus"), admin)
		require.ErrorIs(t, err, ErrInvalidTransition)
	})

	t.Run("dispatches by target state", func(t *testing.T) {
		app := newPendingApplication(t)
		require.NoError(t, app.TransitionTo(ctx, StatusVerified, verifier))
		require.NoError(t, app.TransitionTo(ctx, StatusApproved, admin))
		assert.Equal(t, StatusApproved, app.Status)
	})
}

func TestInitFSMAfterRehydration(t *testing.T) {
	// 从快照恢复的聚合没有状态机，首次流转时惰性初始化
	app := &CreditApplication{
		ID:            "APP42",
		ApplicantName: "Jane Smith",
		Amount:        decimal.NewFromInt(15000),
		Status:        StatusVerified,
	}

	require.NoError(t, app.Approve(context.Background(), admin))
	assert.Equal(t, StatusApproved, app.Status)
}
