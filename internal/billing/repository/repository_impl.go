package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	billingdomain "github.com/warelane/warelane/internal/billing/domain"
	"gorm.io/gorm"
)

type repository struct{}

func NewRepository() billingdomain.Repository {
	return &repository{}
}

func (r *repository) GetSettings(ctx context.Context, db *gorm.DB, orgID snowflake.ID) (billingdomain.Settings, error) {
	var s billingdomain.Settings
	err := db.WithContext(ctx).
		Where("org_id = ?", orgID).
		First(&s).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return billingdomain.Settings{OrgID: orgID}, nil
		}
		return billingdomain.Settings{}, err
	}
	return s, nil
}
