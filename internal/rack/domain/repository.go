package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, r *Rack) error
	Get(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*Rack, error)
	GetByCode(ctx context.Context, db *gorm.DB, orgID snowflake.ID, code string) (*Rack, error)
	List(ctx context.Context, db *gorm.DB, orgID snowflake.ID, limit, offset int) ([]Rack, int64, error)
	UpdateCapacityUsed(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID, used int) error

	InsertActivity(ctx context.Context, db *gorm.DB, a *RackActivity) error
	ListActivity(ctx context.Context, db *gorm.DB, orgID, rackID snowflake.ID, limit, offset int) ([]RackActivity, int64, error)
}
