package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DayPolicy selects how raw storage days become chargeable days.
type DayPolicy string

const (
	// DayPolicyMinimumFloor charges at least MinimumChargeDays.
	DayPolicyMinimumFloor DayPolicy = "minimum_floor"
	// DayPolicyGracePeriod charges max(0, storageDays - GracePeriodDays).
	DayPolicyGracePeriod DayPolicy = "grace_period"
)

// ChargeBreakdown is the pre-tax charge decomposition for a release, plus the
// tax line when the org has tax enabled. All amounts are unrounded; callers
// round only at presentation.
type ChargeBreakdown struct {
	StorageDays    int             `json:"storage_days"`
	ChargeableDays int             `json:"chargeable_days"`
	ReleasedBoxes  int             `json:"released_boxes"`
	DayPolicy      DayPolicy       `json:"day_policy"`
	StorageCharge  decimal.Decimal `json:"storage_charge"`
	ReleaseFees    decimal.Decimal `json:"release_fees"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	TaxAmount      decimal.Decimal `json:"tax_amount"`
	Total          decimal.Decimal `json:"total"`
}

// StorageDays counts elapsed whole days between arrival and release, rounding
// any started day up. Same-day release is zero days.
func StorageDays(arrival, releasedAt time.Time) int {
	elapsed := releasedAt.Sub(arrival)
	if elapsed <= 0 {
		return 0
	}
	days := int(elapsed / (24 * time.Hour))
	if elapsed%(24*time.Hour) != 0 {
		days++
	}
	return days
}

// ChargeableDays applies the shipment's day policy to raw storage days.
func ChargeableDays(storageDays int, policy DayPolicy, s Settings) int {
	switch policy {
	case DayPolicyGracePeriod:
		d := storageDays - s.GracePeriodDays
		if d < 0 {
			return 0
		}
		return d
	default:
		if storageDays < s.MinimumChargeDays {
			return s.MinimumChargeDays
		}
		return storageDays
	}
}

// ComputeCharge derives the full charge breakdown for releasing
// releasedBoxes boxes of a shipment that arrived at arrival. It never fails:
// zero-value settings produce zero-amount components.
func ComputeCharge(arrival, releasedAt time.Time, releasedBoxes int, policy DayPolicy, s Settings) ChargeBreakdown {
	storageDays := StorageDays(arrival, releasedAt)
	chargeableDays := ChargeableDays(storageDays, policy, s)
	boxes := decimal.NewFromInt(int64(releasedBoxes))

	storage := s.StorageRatePerDay.Mul(decimal.NewFromInt(int64(chargeableDays))).
		Add(s.StorageRatePerBox.Mul(boxes))
	fees := s.ReleaseHandlingFee.
		Add(s.ReleasePerBoxFee.Mul(boxes)).
		Add(s.ReleaseTransportFee)
	subtotal := storage.Add(fees)

	tax := decimal.Zero
	if s.TaxEnabled && s.TaxRate.IsPositive() {
		tax = subtotal.Mul(s.TaxRate)
	}

	return ChargeBreakdown{
		StorageDays:    storageDays,
		ChargeableDays: chargeableDays,
		ReleasedBoxes:  releasedBoxes,
		DayPolicy:      policy,
		StorageCharge:  storage,
		ReleaseFees:    fees,
		Subtotal:       subtotal,
		TaxAmount:      tax,
		Total:          subtotal.Add(tax),
	}
}
