// Package seed creates the rows a fresh installation needs before the first
// request: the default organization and its billing settings.
package seed

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	billingdomain "github.com/warelane/warelane/internal/billing/domain"
	organizationdomain "github.com/warelane/warelane/internal/organization/domain"
	"gorm.io/gorm"
)

const (
	defaultOrgName = "Default Warehouse"
	defaultOrgSlug = "default"
)

// OrgSeedOptions customizes the identity of the seeded organization.
type OrgSeedOptions struct {
	OrgID snowflake.ID
	Name  string
	Slug  string
}

// EnsureDefaultOrg creates the default organization and an empty billing
// settings row when neither exists. Re-running is a no-op.
func EnsureDefaultOrg(db *gorm.DB, opts OrgSeedOptions) (*organizationdomain.Organization, error) {
	if db == nil {
		return nil, errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(opts.Name)
	if name == "" {
		name = defaultOrgName
	}
	slugValue := strings.TrimSpace(opts.Slug)
	if slugValue == "" {
		slugValue = defaultOrgSlug
	}
	slugValue = slug.Make(slugValue)

	ctx := context.Background()
	var org organizationdomain.Organization
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("slug = ?", slugValue).Limit(1).Find(&org)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			org = organizationdomain.Organization{
				ID:        node.Generate(),
				Name:      name,
				Slug:      slugValue,
				IsDefault: true,
			}
			if opts.OrgID != 0 {
				org.ID = opts.OrgID
			}
			if err := tx.Create(&org).Error; err != nil {
				return err
			}
		}

		var count int64
		if err := tx.Model(&billingdomain.Settings{}).Where("org_id = ?", org.ID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			settings := billingdomain.Settings{
				ID:                  node.Generate(),
				OrgID:               org.ID,
				Currency:            "USD",
				AllowPartialRelease: true,
			}
			if err := tx.Create(&settings).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &org, nil
}
