// Package domain defines the release operation: moving boxes out of storage,
// settling rack capacity, and deriving storage charges.
package domain

import (
	"context"
	"errors"

	billingdomain "github.com/warelane/warelane/internal/billing/domain"
)

type ReleaseRequest struct {
	ShipmentID    string   `json:"-"`
	BoxNumbers    []int    `json:"box_numbers"`
	ReleaseAll    bool     `json:"release_all"`
	CollectorID   string   `json:"collector_id"`
	ReleasePhotos []string `json:"release_photos"`
}

type ReleaseResult struct {
	ReleasedCount  int                            `json:"released_count"`
	RemainingCount int                            `json:"remaining_count"`
	ShipmentStatus string                         `json:"shipment_status"`
	Charges        *billingdomain.ChargeBreakdown `json:"charges,omitempty"`
}

var (
	ErrPartialReleaseForbidden = errors.New("partial_release_forbidden")
	ErrBelowMinimumPartial     = errors.New("below_minimum_partial")
)

type Service interface {
	// Release moves the selected in-storage boxes out of the warehouse.
	// Box numbers not currently in storage are filtered, not errors. On the
	// call that releases the final box, the shipment is stamped released
	// and its storage charge persisted.
	Release(ctx context.Context, req ReleaseRequest) (*ReleaseResult, error)

	// PreviewCharges quotes releasing everything still stored, at now,
	// without writing anything.
	PreviewCharges(ctx context.Context, shipmentID string) (*billingdomain.ChargeBreakdown, error)
}
