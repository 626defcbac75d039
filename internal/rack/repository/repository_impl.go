package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	rackdomain "github.com/warelane/warelane/internal/rack/domain"
	"gorm.io/gorm"
)

type repository struct{}

func NewRepository() rackdomain.Repository {
	return &repository{}
}

func (r *repository) Insert(ctx context.Context, db *gorm.DB, rack *rackdomain.Rack) error {
	err := db.WithContext(ctx).Create(rack).Error
	if err != nil && strings.Contains(strings.ToLower(err.Error()), "unique") {
		return rackdomain.ErrDuplicateRackCode
	}
	return err
}

func (r *repository) Get(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*rackdomain.Rack, error) {
	var rack rackdomain.Rack
	err := db.WithContext(ctx).
		Where("org_id = ? AND id = ?", orgID, id).
		First(&rack).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rack, nil
}

func (r *repository) GetByCode(ctx context.Context, db *gorm.DB, orgID snowflake.ID, code string) (*rackdomain.Rack, error) {
	var rack rackdomain.Rack
	err := db.WithContext(ctx).
		Where("org_id = ? AND code = ?", orgID, code).
		First(&rack).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rack, nil
}

func (r *repository) List(ctx context.Context, db *gorm.DB, orgID snowflake.ID, limit, offset int) ([]rackdomain.Rack, int64, error) {
	q := db.WithContext(ctx).Model(&rackdomain.Rack{}).Where("org_id = ?", orgID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var racks []rackdomain.Rack
	err := q.Order("code ASC").Limit(limit).Offset(offset).Find(&racks).Error
	return racks, total, err
}

func (r *repository) UpdateCapacityUsed(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID, used int) error {
	return db.WithContext(ctx).
		Model(&rackdomain.Rack{}).
		Where("org_id = ? AND id = ?", orgID, id).
		Update("capacity_used", used).Error
}

func (r *repository) InsertActivity(ctx context.Context, db *gorm.DB, a *rackdomain.RackActivity) error {
	return db.WithContext(ctx).Create(a).Error
}

func (r *repository) ListActivity(ctx context.Context, db *gorm.DB, orgID, rackID snowflake.ID, limit, offset int) ([]rackdomain.RackActivity, int64, error) {
	q := db.WithContext(ctx).Model(&rackdomain.RackActivity{}).
		Where("org_id = ? AND rack_id = ?", orgID, rackID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var entries []rackdomain.RackActivity
	err := q.Order("created_at DESC, id DESC").Limit(limit).Offset(offset).Find(&entries).Error
	return entries, total, err
}
