package domain

import (
	"context"
	"time"

	"github.com/warelane/warelane/pkg/db/pagination"
)

// CreateIntakeRequest creates one shipment plus its full box set. The total
// box count is PalletCount * BoxesPerPallet and must stay within the piece QR
// format range.
type CreateIntakeRequest struct {
	ReferenceCode  string         `json:"reference_code"`
	ClientName     string         `json:"client_name" binding:"required"`
	ClientPhone    string         `json:"client_phone"`
	PalletCount    int            `json:"pallet_count" binding:"required,min=1"`
	BoxesPerPallet int            `json:"boxes_per_pallet" binding:"required,min=1"`
	ChargePolicy   ChargePolicy   `json:"charge_policy"`
	ArrivalDate    *time.Time     `json:"arrival_date"`
	WarehouseData  map[string]any `json:"warehouse_data"`
}

type ListShipmentsRequest struct {
	Statuses  []ShipmentStatus
	PageSize  int
	PageToken string
}

type ListShipmentsResponse struct {
	pagination.PageInfo
	Shipments []Shipment `json:"shipments"`
}

// BoxWithRack is a box joined with its rack's code for the boxes listing.
type BoxWithRack struct {
	Box
	RackCode string `json:"rack_code,omitempty"`
}

type Service interface {
	Intake(ctx context.Context, req CreateIntakeRequest) (*Shipment, error)
	Get(ctx context.Context, id string) (*Shipment, error)
	List(ctx context.Context, req ListShipmentsRequest) (ListShipmentsResponse, error)
	ListBoxes(ctx context.Context, shipmentID string) ([]BoxWithRack, error)
}
