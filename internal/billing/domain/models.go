// Package domain holds the org-scoped billing configuration and the storage
// charge calculator. The core engine reads these settings but never writes
// them; administration happens through an outer surface.
package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Settings configures storage and release billing for one organization.
// A missing row degrades to the zero value: every charge component computes
// to zero and a release is never blocked by absent configuration.
type Settings struct {
	ID    snowflake.ID `gorm:"primaryKey" json:"id"`
	OrgID snowflake.ID `gorm:"not null;uniqueIndex" json:"org_id"`

	Currency string `gorm:"type:text;not null;default:USD" json:"currency"`

	StorageRatePerDay   decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"storage_rate_per_day"`
	StorageRatePerBox   decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"storage_rate_per_box"`
	ReleaseHandlingFee  decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"release_handling_fee"`
	ReleasePerBoxFee    decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"release_per_box_fee"`
	ReleaseTransportFee decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"release_transport_fee"`

	MinimumChargeDays int `gorm:"not null;default:0" json:"minimum_charge_days"`
	GracePeriodDays   int `gorm:"not null;default:0" json:"grace_period_days"`

	AllowPartialRelease bool `gorm:"not null;default:true" json:"allow_partial_release"`
	MinimumPartialBoxes int  `gorm:"not null;default:0" json:"minimum_partial_boxes"`

	TaxEnabled bool            `gorm:"not null;default:false" json:"tax_enabled"`
	TaxRate    decimal.Decimal `gorm:"type:decimal(10,4);not null;default:0" json:"tax_rate"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Settings) TableName() string { return "billing_settings" }

type Repository interface {
	// GetSettings returns the org's billing settings, or the zero value when
	// none are configured.
	GetSettings(ctx context.Context, db *gorm.DB, orgID snowflake.ID) (Settings, error)
}
