// Package domain contains the shipment and box models plus the box lifecycle
// state machine.
package domain

import (
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type ShipmentStatus string

const (
	ShipmentStatusPending   ShipmentStatus = "pending"
	ShipmentStatusInStorage ShipmentStatus = "in_storage"
	ShipmentStatusPartial   ShipmentStatus = "partial"
	ShipmentStatusReleased  ShipmentStatus = "released"
)

type BoxStatus string

const (
	BoxStatusPending   BoxStatus = "pending"
	BoxStatusInStorage BoxStatus = "in_storage"
	BoxStatusReleased  BoxStatus = "released"
)

// ChargePolicy selects how chargeable storage days are derived at release.
// The two policies exist for different shipment categories and are chosen at
// intake, never inferred later.
type ChargePolicy string

const (
	// ChargePolicyMinimumFloor bills at least the configured minimum number
	// of days, even for same-day releases.
	ChargePolicyMinimumFloor ChargePolicy = "minimum_floor"
	// ChargePolicyGracePeriod subtracts the configured grace days before
	// billing begins.
	ChargePolicyGracePeriod ChargePolicy = "grace_period"
)

// Shipment is one client intake. OriginalBoxCount, PalletCount and
// BoxesPerPallet are fixed at intake; CurrentBoxCount always equals the count
// of its boxes not yet released.
type Shipment struct {
	ID               snowflake.ID      `gorm:"primaryKey" json:"id"`
	OrgID            snowflake.ID      `gorm:"not null;index" json:"org_id"`
	ReferenceCode    string            `gorm:"type:text;not null;index" json:"reference_code"`
	Barcode          string            `gorm:"type:text;not null;uniqueIndex" json:"barcode"`
	ClientName       string            `gorm:"type:text;not null" json:"client_name"`
	ClientPhone      string            `gorm:"type:text" json:"client_phone,omitempty"`
	OriginalBoxCount int               `gorm:"not null" json:"original_box_count"`
	CurrentBoxCount  int               `gorm:"not null" json:"current_box_count"`
	PalletCount      int               `gorm:"not null" json:"pallet_count"`
	BoxesPerPallet   int               `gorm:"not null" json:"boxes_per_pallet"`
	Status           ShipmentStatus    `gorm:"type:text;not null;index" json:"status"`
	ChargePolicy     ChargePolicy      `gorm:"type:text;not null;default:minimum_floor" json:"charge_policy"`
	ArrivalDate      time.Time         `gorm:"not null" json:"arrival_date"`
	AssignedAt       *time.Time        `json:"assigned_at,omitempty"`
	ReleasedAt       *time.Time        `json:"released_at,omitempty"`
	StorageCharge    *decimal.Decimal  `gorm:"type:decimal(12,2)" json:"storage_charge,omitempty"`
	WarehouseData    datatypes.JSONMap `json:"warehouse_data,omitempty"`
	CreatedAt        time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt        time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`

	Boxes []Box `gorm:"foreignKey:ShipmentID" json:"boxes,omitempty"`
}

func (Shipment) TableName() string { return "shipments" }

// Box is one physical piece of a shipment. RackID is non-nil exactly while the
// box is in storage.
type Box struct {
	ID         snowflake.ID  `gorm:"primaryKey" json:"id"`
	OrgID      snowflake.ID  `gorm:"not null;index" json:"org_id"`
	ShipmentID snowflake.ID  `gorm:"not null;index:idx_shipment_box,unique" json:"shipment_id"`
	BoxNumber  int           `gorm:"not null;index:idx_shipment_box,unique" json:"box_number"`
	PieceQR    string        `gorm:"type:text;not null" json:"piece_qr"`
	RackID     *snowflake.ID `gorm:"index" json:"rack_id,omitempty"`
	Status     BoxStatus     `gorm:"type:text;not null;index" json:"status"`
	AssignedAt *time.Time    `json:"assigned_at,omitempty"`
	ReleasedAt *time.Time    `json:"released_at,omitempty"`
	CreatedAt  time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt  time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Box) TableName() string { return "shipment_boxes" }

var (
	ErrShipmentNotFound    = errors.New("shipment_not_found")
	ErrInvalidPalletConfig = errors.New("invalid_pallet_config")
	ErrTooManyBoxes        = errors.New("too_many_boxes")
	ErrInvalidBoxNumbers   = errors.New("invalid_box_numbers")
	ErrBoxAlreadyStored    = errors.New("box_already_stored")
	ErrBoxAlreadyReleased  = errors.New("box_already_released")
	ErrBoxNeverAssigned    = errors.New("box_never_assigned")
)

// DeriveStatus recomputes the shipment-level status from its boxes. It is
// always computed from scratch over the full box set; the stored column is a
// cache of this result.
func DeriveStatus(boxes []Box) ShipmentStatus {
	if len(boxes) == 0 {
		return ShipmentStatusPending
	}
	var stored, released int
	for _, b := range boxes {
		switch b.Status {
		case BoxStatusInStorage:
			stored++
		case BoxStatusReleased:
			released++
		}
	}
	switch {
	case released == len(boxes):
		return ShipmentStatusReleased
	case released > 0:
		return ShipmentStatusPartial
	case stored > 0:
		return ShipmentStatusInStorage
	default:
		return ShipmentStatusPending
	}
}

// RemainingCount is the number of boxes not yet released.
func RemainingCount(boxes []Box) int {
	n := 0
	for _, b := range boxes {
		if b.Status != BoxStatusReleased {
			n++
		}
	}
	return n
}

// CanAssign reports whether a box may transition to in_storage. The lifecycle
// is monotonic: released is terminal, re-assigning a stored box is a conflict.
func CanAssign(b Box) error {
	switch b.Status {
	case BoxStatusPending:
		return nil
	case BoxStatusInStorage:
		return ErrBoxAlreadyStored
	default:
		return ErrBoxAlreadyReleased
	}
}

// CanRelease reports whether a box may transition to released. A box that was
// never assigned cannot be released.
func CanRelease(b Box) error {
	switch b.Status {
	case BoxStatusInStorage:
		return nil
	case BoxStatusPending:
		return ErrBoxNeverAssigned
	default:
		return ErrBoxAlreadyReleased
	}
}
