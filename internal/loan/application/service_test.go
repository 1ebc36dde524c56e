package application

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wyfcoding/creditsea/internal/loan/domain"
	"github.com/wyfcoding/creditsea/internal/loan/infrastructure/persistence"
	"github.com/wyfcoding/creditsea/pkg/idgen"
	"github.com/wyfcoding/creditsea/pkg/kvstore"
	"github.com/wyfcoding/creditsea/pkg/metrics"
)

var (
	applicant = domain.Actor{ID: "USR1", Name: "John Doe", Role: domain.RoleApplicant}
	verifier  = domain.Actor{ID: "USR2", Name: "Verifier Account", Role: domain.RoleVerifier}
	admin     = domain.Actor{ID: "USR3", Name: "Admin Account", Role: domain.RoleAdmin}
)

type recordingPublisher struct {
	topics []string
}

func (p *recordingPublisher) Publish(ctx context.Context, topic, key string, event any) error {
	p.topics = append(p.topics, topic)
	return nil
}

func newServices(t *testing.T) (*CommandService, *QueryService, *recordingPublisher) {
	t.Helper()
	repo, err := persistence.NewSnapshotRepository(context.Background(), kvstore.NewMemory(), persistence.SnapshotKey)
	require.NoError(t, err)

	pub := &recordingPublisher{}
	m := metrics.New("test")
	return NewCommandService(repo, pub, idgen.NewSnowflake(1), m), NewQueryService(repo, m), pub
}

func TestSubmitApplication(t *testing.T) {
	ctx := context.Background()

	t.Run("applicant submits and application becomes pending", func(t *testing.T) {
		commands, queries, pub := newServices(t)

		dto, err := commands.SubmitApplication(ctx, applicant, "Personal Loan", decimal.NewFromInt(3000))
		require.NoError(t, err)
		assert.Equal(t, "pending", dto.Status)
		assert.Equal(t, "3000", dto.Amount)
		assert.Contains(t, pub.topics, domain.TopicApplicationSubmitted)

		got, err := queries.GetApplication(ctx, dto.ID)
		require.NoError(t, err)
		assert.Equal(t, dto.ID, got.ID)
	})

	t.Run("blank loan type fails validation", func(t *testing.T) {
		commands, _, _ := newServices(t)
		_, err := commands.SubmitApplication(ctx, applicant, "   ", decimal.NewFromInt(100))
		require.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("non-positive amount is rejected", func(t *testing.T) {
		commands, _, _ := newServices(t)
		_, err := commands.SubmitApplication(ctx, applicant, "Personal Loan", decimal.Zero)
		require.ErrorIs(t, err, domain.ErrInvalidAmount)
	})

	t.Run("verifier cannot submit", func(t *testing.T) {
		commands, _, _ := newServices(t)
		_, err := commands.SubmitApplication(ctx, verifier, "Personal Loan", decimal.NewFromInt(100))
		require.ErrorIs(t, err, domain.ErrRoleNotAllowed)
	})
}

func TestUpdateApplicationStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("full lifecycle submit verify approve", func(t *testing.T) {
		commands, queries, pub := newServices(t)

		dto, err := commands.SubmitApplication(ctx, applicant, "Home Loan", decimal.NewFromInt(250000))
		require.NoError(t, err)

		verified, err := commands.UpdateApplicationStatus(ctx, dto.ID, domain.StatusVerified, verifier)
		require.NoError(t, err)
		assert.Equal(t, "verified", verified.Status)

		approved, err := commands.UpdateApplicationStatus(ctx, dto.ID, domain.StatusApproved, admin)
		require.NoError(t, err)
		assert.Equal(t, "approved", approved.Status)

		assert.Contains(t, pub.topics, domain.TopicApplicationStatusChanged)

		got, err := queries.GetApplication(ctx, dto.ID)
		require.NoError(t, err)
		assert.Equal(t, "approved", got.Status)
	})

	t.Run("unknown id yields not found", func(t *testing.T) {
		commands, _, _ := newServices(t)
		_, err := commands.UpdateApplicationStatus(ctx, "APP-missing", domain.StatusVerified, verifier)
		require.ErrorIs(t, err, domain.ErrApplicationNotFound)
	})

	t.Run("invalid transition does not mutate", func(t *testing.T) {
		commands, queries, _ := newServices(t)

		dto, err := commands.SubmitApplication(ctx, applicant, "Personal Loan", decimal.NewFromInt(500))
		require.NoError(t, err)

		_, err = commands.UpdateApplicationStatus(ctx, dto.ID, domain.StatusApproved, admin)
		require.ErrorIs(t, err, domain.ErrInvalidTransition)

		got, err := queries.GetApplication(ctx, dto.ID)
		require.NoError(t, err)
		assert.Equal(t, "pending", got.Status)
	})

	t.Run("wrong role does not mutate", func(t *testing.T) {
		commands, queries, _ := newServices(t)

		dto, err := commands.SubmitApplication(ctx, applicant, "Personal Loan", decimal.NewFromInt(500))
		require.NoError(t, err)

		_, err = commands.UpdateApplicationStatus(ctx, dto.ID, domain.StatusVerified, applicant)
		require.ErrorIs(t, err, domain.ErrRoleNotAllowed)

		got, err := queries.GetApplication(ctx, dto.ID)
		require.NoError(t, err)
		assert.Equal(t, "pending", got.Status)
	})
}

func TestQueries(t *testing.T) {
	ctx := context.Background()

	t.Run("list by status reflects live collection", func(t *testing.T) {
		commands, queries, _ := newServices(t)

		dto, err := commands.SubmitApplication(ctx, applicant, "Education Loan", decimal.NewFromInt(20000))
		require.NoError(t, err)

		pending, err := queries.ListByStatus(ctx, domain.StatusPending)
		require.NoError(t, err)
		// 种子数据含一条 pending，加上新提交的一条
		assert.Len(t, pending, 2)

		_, err = commands.UpdateApplicationStatus(ctx, dto.ID, domain.StatusVerified, verifier)
		require.NoError(t, err)

		pending, err = queries.ListByStatus(ctx, domain.StatusPending)
		require.NoError(t, err)
		assert.Len(t, pending, 1)
	})

	t.Run("applicant view only shows own applications", func(t *testing.T) {
		commands, queries, _ := newServices(t)

		_, err := commands.SubmitApplication(ctx, applicant, "Personal Loan", decimal.NewFromInt(100))
		require.NoError(t, err)

		mine, err := queries.ListByApplicant(ctx, applicant.Name)
		require.NoError(t, err)
		for _, app := range mine {
			assert.Equal(t, applicant.Name, app.ApplicantName)
		}
	})

	t.Run("stats recompute on every read", func(t *testing.T) {
		commands, queries, _ := newServices(t)

		before, err := queries.GetStats(ctx)
		require.NoError(t, err)
		assert.Equal(t, 4, before.Total)
		assert.Equal(t, 1, before.Pending)
		assert.Equal(t, 1, before.Verified)
		assert.Equal(t, 1, before.Approved)
		assert.Equal(t, 1, before.Rejected)

		dto, err := commands.SubmitApplication(ctx, applicant, "Personal Loan", decimal.NewFromInt(1000))
		require.NoError(t, err)

		after, err := queries.GetStats(ctx)
		require.NoError(t, err)
		assert.Equal(t, before.Total+1, after.Total)
		assert.Equal(t, before.Pending+1, after.Pending)

		_, err = commands.UpdateApplicationStatus(ctx, dto.ID, domain.StatusVerified, verifier)
		require.NoError(t, err)

		moved, err := queries.GetStats(ctx)
		require.NoError(t, err)
		assert.Equal(t, after.Pending-1, moved.Pending)
		assert.Equal(t, after.Verified+1, moved.Verified)
		assert.Equal(t, after.Total, moved.Total)
	})

	t.Run("stats are idempotent across reads", func(t *testing.T) {
		_, queries, _ := newServices(t)

		first, err := queries.GetStats(ctx)
		require.NoError(t, err)
		second, err := queries.GetStats(ctx)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})
}
