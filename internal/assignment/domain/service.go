// Package domain defines the rack assignment operation: claiming a batch of
// pending boxes onto a rack as a single unit of work.
package domain

import "context"

type AssignRequest struct {
	ShipmentID string   `json:"-"`
	RackID     string   `json:"rack_id" binding:"required"`
	BoxNumbers []int    `json:"box_numbers" binding:"required,min=1"`
	PhotoURLs  []string `json:"photo_urls"`
}

type AssignResult struct {
	Assigned       int      `json:"assigned"`
	PhotosUploaded int      `json:"photos_uploaded"`
	PhotoURLs      []string `json:"photo_urls,omitempty"`
	RackUsed       int      `json:"rack_capacity_used"`
	RackStatus     string   `json:"rack_status"`
	ShipmentStatus string   `json:"shipment_status"`
}

type Service interface {
	// Assign moves the given pending boxes of a shipment onto a rack,
	// all-or-nothing. Box numbers outside the shipment's pending unracked
	// set fail the whole batch.
	Assign(ctx context.Context, req AssignRequest) (*AssignResult, error)
}
