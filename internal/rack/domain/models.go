// Package domain contains rack models, the derived rack status, and the
// pallet-slot capacity calculator.
package domain

import (
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

type RackStatus string

const (
	RackStatusActive RackStatus = "active"
	RackStatusFull   RackStatus = "full"
)

// Rack is a storage rack. CapacityUsed is a cache of the capacity calculator's
// result over the boxes currently on the rack; it is only ever written as a
// recomputation, never incremented.
type Rack struct {
	ID            snowflake.ID `gorm:"primaryKey" json:"id"`
	OrgID         snowflake.ID `gorm:"not null;index:idx_org_rack_code,unique" json:"org_id"`
	Code          string       `gorm:"type:text;not null;index:idx_org_rack_code,unique" json:"code"`
	QRCode        string       `gorm:"type:text;not null" json:"qr_code"`
	CapacityTotal int          `gorm:"not null" json:"capacity_total"`
	CapacityUsed  int          `gorm:"not null;default:0" json:"capacity_used"`
	CreatedAt     time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt     time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Rack) TableName() string { return "racks" }

// Status derives the rack state from its fill level. Over-capacity is
// permitted during assignment; full is a reporting signal, not a constraint.
func (r Rack) Status() RackStatus {
	if r.CapacityTotal > 0 && r.CapacityUsed >= r.CapacityTotal {
		return RackStatusFull
	}
	return RackStatusActive
}

type ActivityType string

const (
	ActivityAssign  ActivityType = "assign"
	ActivityRelease ActivityType = "release"
)

// RackActivity is an append-only audit entry, one per assignment or release
// batch per rack touched.
type RackActivity struct {
	ID            snowflake.ID      `gorm:"primaryKey" json:"id"`
	OrgID         snowflake.ID      `gorm:"not null;index" json:"org_id"`
	RackID        snowflake.ID      `gorm:"not null;index" json:"rack_id"`
	ActorID       snowflake.ID      `gorm:"index" json:"actor_id,omitempty"`
	Type          ActivityType      `gorm:"type:text;not null" json:"type"`
	Detail        string            `gorm:"type:text" json:"detail"`
	QuantityAfter int               `gorm:"not null" json:"quantity_after"`
	PhotoURLs     datatypes.JSONMap `json:"photo_urls,omitempty"`
	CreatedAt     time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (RackActivity) TableName() string { return "rack_activities" }

var (
	ErrRackNotFound      = errors.New("rack_not_found")
	ErrInvalidRackCode   = errors.New("invalid_rack_code")
	ErrInvalidCapacity   = errors.New("invalid_capacity")
	ErrDuplicateRackCode = errors.New("duplicate_rack_code")
)
