package eligibility

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/redlink/internal/domain"
)

var now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func TestCheckRegistration(t *testing.T) {
	cases := []struct {
		name   string
		age    int
		weight float64
		want   error
	}{
		{"eligible", 30, 70, nil},
		{"boundaries", 18, 50, nil},
		{"too young", 17, 70, domain.ErrIneligibleAge},
		{"too light", 30, 49.9, domain.ErrIneligibleWeight},
		{"age reported first", 16, 40, domain.ErrIneligibleAge},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := CheckRegistration(tc.age, tc.weight)
			if tc.want == nil {
				require.NoError(t, err)
				assert.True(t, IsEligibleToRegister(tc.age, tc.weight))
				return
			}
			require.ErrorIs(t, err, tc.want)
			assert.False(t, IsEligibleToRegister(tc.age, tc.weight))
		})
	}
}

func TestIsInRecovery(t *testing.T) {
	assert.False(t, IsInRecovery(nil, now))

	last := now.Add(-89 * 24 * time.Hour)
	assert.True(t, IsInRecovery(&last, now))

	last = now.Add(-RecoveryWindow)
	assert.False(t, IsInRecovery(&last, now), "deadline instant itself is outside the window")

	assert.Equal(t, now, RecoveryDeadline(now.Add(-RecoveryWindow)))
}

func TestIsHardLocked(t *testing.T) {
	recent := now.Add(-24 * time.Hour)
	old := now.Add(-200 * 24 * time.Hour)

	assert.False(t, IsHardLocked(domain.Donor{}, now))
	assert.False(t, IsHardLocked(domain.Donor{DonationCount: 1, LastDonationAt: &old}, now))
	assert.True(t, IsHardLocked(domain.Donor{DonationCount: 2}, now))
	assert.True(t, IsHardLocked(domain.Donor{DonationCount: 1, LastDonationAt: &recent}, now))

	// the recovery lock lifts by itself once the clock passes the deadline
	later := RecoveryDeadline(recent)
	assert.False(t, IsHardLocked(domain.Donor{DonationCount: 1, LastDonationAt: &recent}, later))
}

func TestRecordDonation(t *testing.T) {
	d := domain.Donor{ID: "d1", DonationCount: 0}
	updated := RecordDonation(d, now)

	assert.Equal(t, 0, d.DonationCount)
	assert.Nil(t, d.LastDonationAt)
	assert.Equal(t, 1, updated.DonationCount)
	require.NotNil(t, updated.LastDonationAt)
	assert.Equal(t, now, *updated.LastDonationAt)
}
