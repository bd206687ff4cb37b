package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/redlink/internal/domain"
)

func TestDonorRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewDonorRepository()
	t0 := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Create(ctx, domain.Donor{ID: "d2", Name: "Jane Roe", CreatedAt: t0.Add(time.Minute)}))
	require.NoError(t, repo.Create(ctx, domain.Donor{ID: "d1", Name: "John Doe", CreatedAt: t0}))
	require.Error(t, repo.Create(ctx, domain.Donor{ID: "d1"}))

	byName, err := repo.GetByName(ctx, "  john DOE ")
	require.NoError(t, err)
	assert.Equal(t, "d1", byName.ID)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "d1", list[0].ID)

	updated, err := repo.Update(ctx, "d1", func(d *domain.Donor) error {
		d.IsAvailable = true
		return nil
	})
	require.NoError(t, err)
	assert.True(t, updated.IsAvailable)

	boom := errors.New("boom")
	_, err = repo.Update(ctx, "d1", func(d *domain.Donor) error {
		d.IsAvailable = false
		d.DonationCount = 9
		return boom
	})
	require.ErrorIs(t, err, boom)
	stored, err := repo.GetByID(ctx, "d1")
	require.NoError(t, err)
	assert.True(t, stored.IsAvailable, "failed update must not commit")
	assert.Zero(t, stored.DonationCount)

	require.NoError(t, repo.Delete(ctx, "d1"))
	_, err = repo.GetByID(ctx, "d1")
	assert.ErrorIs(t, err, domain.ErrDonorNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, "d1"), domain.ErrDonorNotFound)
	_, err = repo.Update(ctx, "d1", func(*domain.Donor) error { return nil })
	assert.ErrorIs(t, err, domain.ErrDonorNotFound)
}
