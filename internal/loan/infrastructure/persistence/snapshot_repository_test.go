package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wyfcoding/creditsea/internal/loan/domain"
	"github.com/wyfcoding/creditsea/pkg/idgen"
	"github.com/wyfcoding/creditsea/pkg/kvstore"
)

func newApplication(t *testing.T) *domain.CreditApplication {
	t.Helper()
	app, err := domain.NewCreditApplication(
		domain.Actor{ID: "USR1", Name: "John Doe", Role: domain.RoleApplicant},
		"Personal Loan", decimal.NewFromInt(5000), idgen.NewSnowflake(1))
	require.NoError(t, err)
	return app
}

func TestSnapshotRepositorySeeding(t *testing.T) {
	ctx := context.Background()

	t.Run("empty store falls back to seed data", func(t *testing.T) {
		store := kvstore.NewMemory()
		repo, err := NewSnapshotRepository(ctx, store, SnapshotKey)
		require.NoError(t, err)

		apps, err := repo.List(ctx)
		require.NoError(t, err)
		assert.Len(t, apps, 4)

		// 种子数据写回了快照
		_, err = store.Get(ctx, SnapshotKey)
		require.NoError(t, err)
	})

	t.Run("corrupt snapshot falls back to seed data", func(t *testing.T) {
		store := kvstore.NewMemory()
		require.NoError(t, store.Set(ctx, SnapshotKey, []byte("not json")))

		repo, err := NewSnapshotRepository(ctx, store, SnapshotKey)
		require.NoError(t, err)

		apps, err := repo.List(ctx)
		require.NoError(t, err)
		assert.Len(t, apps, 4)
	})

	t.Run("existing snapshot is restored verbatim", func(t *testing.T) {
		store := kvstore.NewMemory()
		first, err := NewSnapshotRepository(ctx, store, SnapshotKey)
		require.NoError(t, err)

		app := newApplication(t)
		require.NoError(t, first.Save(ctx, app))

		second, err := NewSnapshotRepository(ctx, store, SnapshotKey)
		require.NoError(t, err)

		got, err := second.Get(ctx, app.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "John Doe", got.ApplicantName)
		assert.True(t, got.Amount.Equal(decimal.NewFromInt(5000)))
		assert.Equal(t, domain.StatusPending, got.Status)
	})
}

func TestSnapshotRepositoryCRUD(t *testing.T) {
	ctx := context.Background()

	t.Run("get on unknown id returns nil without error", func(t *testing.T) {
		store := kvstore.NewMemory()
		repo, err := NewSnapshotRepository(ctx, store, SnapshotKey)
		require.NoError(t, err)

		got, err := repo.Get(ctx, "APP-nope")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("update persists status change", func(t *testing.T) {
		store := kvstore.NewMemory()
		repo, err := NewSnapshotRepository(ctx, store, SnapshotKey)
		require.NoError(t, err)

		app := newApplication(t)
		require.NoError(t, repo.Save(ctx, app))

		require.NoError(t, app.Verify(ctx, domain.Actor{Role: domain.RoleVerifier}))
		require.NoError(t, repo.Update(ctx, app))

		got, err := repo.Get(ctx, app.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusVerified, got.Status)
	})

	t.Run("update on unknown id fails", func(t *testing.T) {
		store := kvstore.NewMemory()
		repo, err := NewSnapshotRepository(ctx, store, SnapshotKey)
		require.NoError(t, err)

		app := newApplication(t)
		err = repo.Update(ctx, app)
		require.ErrorIs(t, err, domain.ErrApplicationNotFound)
	})

	t.Run("list filters by status and applicant", func(t *testing.T) {
		store := kvstore.NewMemory()
		repo, err := NewSnapshotRepository(ctx, store, SnapshotKey)
		require.NoError(t, err)

		pending, err := repo.ListByStatus(ctx, domain.StatusPending)
		require.NoError(t, err)
		require.Len(t, pending, 1)
		assert.Equal(t, "John Doe", pending[0].ApplicantName)

		mine, err := repo.ListByApplicant(ctx, "Jane Smith")
		require.NoError(t, err)
		require.Len(t, mine, 1)
		assert.Equal(t, domain.StatusVerified, mine[0].Status)
	})

	t.Run("list is ordered newest first", func(t *testing.T) {
		store := kvstore.NewMemory()
		repo, err := NewSnapshotRepository(ctx, store, SnapshotKey)
		require.NoError(t, err)

		apps, err := repo.List(ctx)
		require.NoError(t, err)
		for i := 1; i < len(apps); i++ {
			assert.False(t, apps[i-1].Date.Before(apps[i].Date))
		}
	})
}

func TestSnapshotFormat(t *testing.T) {
	ctx := context.Background()

	t.Run("amounts serialize as numbers", func(t *testing.T) {
		store := kvstore.NewMemory()
		_, err := NewSnapshotRepository(ctx, store, SnapshotKey)
		require.NoError(t, err)

		raw, err := store.Get(ctx, SnapshotKey)
		require.NoError(t, err)

		var records []map[string]any
		require.NoError(t, json.Unmarshal(raw, &records))
		require.NotEmpty(t, records)

		amount, ok := records[0]["amount"].(float64)
		require.True(t, ok, "amount should decode as a JSON number")
		assert.Equal(t, 5000.0, amount)
		assert.Equal(t, "pending", records[0]["status"])
	})
}

type failingStore struct {
	inner kvstore.Store
	fail  bool
}

func (f *failingStore) Get(ctx context.Context, key string) ([]byte, error) {
	return f.inner.Get(ctx, key)
}

func (f *failingStore) Set(ctx context.Context, key string, value []byte) error {
	if f.fail {
		return errors.New("backend unavailable")
	}
	return f.inner.Set(ctx, key, value)
}

func (f *failingStore) Delete(ctx context.Context, key string) error {
	return f.inner.Delete(ctx, key)
}

func TestSnapshotFailureRollsBack(t *testing.T) {
	ctx := context.Background()
	store := &failingStore{inner: kvstore.NewMemory()}

	repo, err := NewSnapshotRepository(ctx, store, SnapshotKey)
	require.NoError(t, err)

	before, err := repo.List(ctx)
	require.NoError(t, err)

	store.fail = true

	t.Run("failed save leaves collection unchanged", func(t *testing.T) {
		err := repo.Save(ctx, newApplication(t))
		require.Error(t, err)

		after, lerr := repo.List(ctx)
		require.NoError(t, lerr)
		assert.Len(t, after, len(before))
	})

	t.Run("failed update keeps previous record", func(t *testing.T) {
		pending, lerr := repo.ListByStatus(ctx, domain.StatusPending)
		require.NoError(t, lerr)
		require.NotEmpty(t, pending)

		app := pending[0]
		require.NoError(t, app.Verify(ctx, domain.Actor{Role: domain.RoleVerifier}))
		require.Error(t, repo.Update(ctx, app))

		got, gerr := repo.Get(ctx, app.ID)
		require.NoError(t, gerr)
		assert.Equal(t, domain.StatusPending, got.Status)
	})
}
