package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func TestStorageDays(t *testing.T) {
	arrival := time.Date(2024, 10, 13, 8, 0, 0, 0, time.UTC)

	cases := []struct {
		name     string
		released time.Time
		want     int
	}{
		{"same instant", arrival, 0},
		{"same day", arrival.Add(6 * time.Hour), 1},
		{"exactly one day", arrival.Add(24 * time.Hour), 1},
		{"one day and an hour", arrival.Add(25 * time.Hour), 2},
		{"ten days", arrival.Add(240 * time.Hour), 10},
		{"clock skew before arrival", arrival.Add(-time.Hour), 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, StorageDays(arrival, tc.released))
		})
	}
}

func TestChargeableDaysMinimumFloor(t *testing.T) {
	s := Settings{MinimumChargeDays: 3}
	assert.Equal(t, 3, ChargeableDays(0, DayPolicyMinimumFloor, s))
	assert.Equal(t, 3, ChargeableDays(2, DayPolicyMinimumFloor, s))
	assert.Equal(t, 7, ChargeableDays(7, DayPolicyMinimumFloor, s))
}

func TestChargeableDaysGracePeriod(t *testing.T) {
	s := Settings{GracePeriodDays: 2}
	assert.Equal(t, 0, ChargeableDays(0, DayPolicyGracePeriod, s))
	assert.Equal(t, 0, ChargeableDays(2, DayPolicyGracePeriod, s))
	assert.Equal(t, 5, ChargeableDays(7, DayPolicyGracePeriod, s))
}

func TestComputeChargeMinimumBoundary(t *testing.T) {
	// Released same day as arrival with a 3-day minimum: billed for 3 days.
	arrival := time.Date(2024, 10, 13, 8, 0, 0, 0, time.UTC)
	s := Settings{
		StorageRatePerDay: d("1"),
		MinimumChargeDays: 3,
	}

	bd := ComputeCharge(arrival, arrival, 10, DayPolicyMinimumFloor, s)
	assert.Equal(t, 0, bd.StorageDays)
	assert.Equal(t, 3, bd.ChargeableDays)
	assert.True(t, bd.StorageCharge.Equal(d("3")), bd.StorageCharge.String())
	assert.True(t, bd.Total.Equal(d("3")))
}

func TestComputeChargeFullBreakdown(t *testing.T) {
	arrival := time.Date(2024, 10, 1, 0, 0, 0, 0, time.UTC)
	released := arrival.Add(10 * 24 * time.Hour)
	s := Settings{
		StorageRatePerDay:   d("2.50"),
		StorageRatePerBox:   d("0.75"),
		ReleaseHandlingFee:  d("15"),
		ReleasePerBoxFee:    d("1.25"),
		ReleaseTransportFee: d("20"),
	}

	bd := ComputeCharge(arrival, released, 8, DayPolicyMinimumFloor, s)
	assert.Equal(t, 10, bd.StorageDays)
	assert.Equal(t, 10, bd.ChargeableDays)
	// 10*2.50 + 8*0.75 = 31.00
	assert.True(t, bd.StorageCharge.Equal(d("31")), bd.StorageCharge.String())
	// 15 + 8*1.25 + 20 = 45.00
	assert.True(t, bd.ReleaseFees.Equal(d("45")), bd.ReleaseFees.String())
	assert.True(t, bd.Subtotal.Equal(d("76")))
	assert.True(t, bd.TaxAmount.IsZero())
	assert.True(t, bd.Total.Equal(d("76")))
}

func TestComputeChargeTaxLine(t *testing.T) {
	arrival := time.Date(2024, 10, 1, 0, 0, 0, 0, time.UTC)
	s := Settings{
		StorageRatePerDay: d("10"),
		MinimumChargeDays: 1,
		TaxEnabled:        true,
		TaxRate:           d("0.10"),
	}

	bd := ComputeCharge(arrival, arrival, 1, DayPolicyMinimumFloor, s)
	assert.True(t, bd.Subtotal.Equal(d("10")))
	assert.True(t, bd.TaxAmount.Equal(d("1")))
	assert.True(t, bd.Total.Equal(d("11")))
}

func TestComputeChargeNoSettingsDegradesToZero(t *testing.T) {
	arrival := time.Date(2024, 10, 1, 0, 0, 0, 0, time.UTC)
	bd := ComputeCharge(arrival, arrival.Add(48*time.Hour), 5, DayPolicyMinimumFloor, Settings{})
	assert.Equal(t, 2, bd.StorageDays)
	assert.True(t, bd.StorageCharge.IsZero())
	assert.True(t, bd.ReleaseFees.IsZero())
	assert.True(t, bd.Total.IsZero())
}

func TestComputeChargeGracePolicy(t *testing.T) {
	arrival := time.Date(2024, 10, 1, 0, 0, 0, 0, time.UTC)
	released := arrival.Add(7 * 24 * time.Hour)
	s := Settings{
		StorageRatePerDay: d("4"),
		GracePeriodDays:   2,
		MinimumChargeDays: 3, // ignored under grace policy
	}

	bd := ComputeCharge(arrival, released, 1, DayPolicyGracePeriod, s)
	assert.Equal(t, 5, bd.ChargeableDays)
	assert.True(t, bd.StorageCharge.Equal(d("20")))
}
