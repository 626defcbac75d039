// Package domain defines universal code resolution: one endpoint accepts any
// scanned label and answers with the entity it identifies.
package domain

import (
	"context"
	"errors"

	rackdomain "github.com/warelane/warelane/internal/rack/domain"
	shipmentdomain "github.com/warelane/warelane/internal/shipment/domain"
)

type ScanRequest struct {
	Code string `json:"code" binding:"required"`
}

// ScanResult reports the classified kind plus whichever entity the code
// resolved to. Exactly one of Shipment/Box/Rack is set for a known code.
type ScanResult struct {
	Kind     string                      `json:"kind"`
	Shipment *shipmentdomain.Shipment    `json:"shipment,omitempty"`
	Box      *shipmentdomain.BoxWithRack `json:"box,omitempty"`
	Rack     *rackdomain.RackView        `json:"rack,omitempty"`
}

var ErrUnknownCode = errors.New("unknown_code")

type Service interface {
	Resolve(ctx context.Context, req ScanRequest) (*ScanResult, error)
}
