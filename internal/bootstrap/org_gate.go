package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/snowflake"
	organizationdomain "github.com/warelane/warelane/internal/organization/domain"
	"gorm.io/gorm"
)

var ErrOrgNotFound = errors.New("organization not found")

// OrgGate verifies that a tenant referenced by a request actually exists.
type OrgGate interface {
	MustExist(ctx context.Context, orgID snowflake.ID) error
}

type orgGate struct {
	db *gorm.DB
}

func NewOrgGate(db *gorm.DB) OrgGate {
	return &orgGate{db: db}
}

func (g *orgGate) MustExist(ctx context.Context, orgID snowflake.ID) error {
	if orgID == 0 {
		return errors.New("org id is required")
	}

	var count int64
	err := g.db.WithContext(ctx).
		Model(&organizationdomain.Organization{}).
		Where("id = ?", orgID).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count == 0 {
		return fmt.Errorf("%w: %s", ErrOrgNotFound, orgID)
	}
	return nil
}
