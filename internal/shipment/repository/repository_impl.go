package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	shipmentdomain "github.com/warelane/warelane/internal/shipment/domain"
	"gorm.io/gorm"
)

type repository struct{}

func NewRepository() shipmentdomain.Repository {
	return &repository{}
}

func (r *repository) InsertShipment(ctx context.Context, db *gorm.DB, s *shipmentdomain.Shipment) error {
	return db.WithContext(ctx).Create(s).Error
}

func (r *repository) InsertBoxes(ctx context.Context, db *gorm.DB, boxes []shipmentdomain.Box) error {
	if len(boxes) == 0 {
		return nil
	}
	return db.WithContext(ctx).CreateInBatches(boxes, 200).Error
}

func (r *repository) GetShipment(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*shipmentdomain.Shipment, error) {
	var s shipmentdomain.Shipment
	err := db.WithContext(ctx).
		Where("org_id = ? AND id = ?", orgID, id).
		First(&s).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

func (r *repository) GetShipmentByBarcode(ctx context.Context, db *gorm.DB, orgID snowflake.ID, barcode string) (*shipmentdomain.Shipment, error) {
	var s shipmentdomain.Shipment
	err := db.WithContext(ctx).
		Where("org_id = ? AND barcode = ?", orgID, barcode).
		First(&s).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

func (r *repository) ListShipments(ctx context.Context, db *gorm.DB, orgID snowflake.ID, statuses []shipmentdomain.ShipmentStatus, limit, offset int) ([]shipmentdomain.Shipment, int64, error) {
	q := db.WithContext(ctx).Model(&shipmentdomain.Shipment{}).Where("org_id = ?", orgID)
	if len(statuses) > 0 {
		q = q.Where("status IN ?", statuses)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []shipmentdomain.Shipment
	err := q.Order("created_at DESC, id DESC").Limit(limit).Offset(offset).Find(&items).Error
	return items, total, err
}

func (r *repository) ListBoxes(ctx context.Context, db *gorm.DB, orgID, shipmentID snowflake.ID) ([]shipmentdomain.Box, error) {
	var boxes []shipmentdomain.Box
	err := db.WithContext(ctx).
		Where("org_id = ? AND shipment_id = ?", orgID, shipmentID).
		Order("box_number ASC").
		Find(&boxes).Error
	return boxes, err
}

func (r *repository) ListBoxesByRack(ctx context.Context, db *gorm.DB, orgID, rackID snowflake.ID) ([]shipmentdomain.Box, error) {
	var boxes []shipmentdomain.Box
	err := db.WithContext(ctx).
		Where("org_id = ? AND rack_id = ?", orgID, rackID).
		Order("shipment_id ASC, box_number ASC").
		Find(&boxes).Error
	return boxes, err
}

func (r *repository) GetBoxByPieceQR(ctx context.Context, db *gorm.DB, orgID snowflake.ID, pieceQR string) (*shipmentdomain.Box, error) {
	var b shipmentdomain.Box
	err := db.WithContext(ctx).
		Where("org_id = ? AND piece_qr = ?", orgID, pieceQR).
		First(&b).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &b, nil
}

func (r *repository) UpdateBoxes(ctx context.Context, db *gorm.DB, boxes []shipmentdomain.Box) error {
	for i := range boxes {
		if err := db.WithContext(ctx).
			Model(&shipmentdomain.Box{}).
			Where("id = ?", boxes[i].ID).
			Updates(map[string]any{
				"rack_id":     boxes[i].RackID,
				"status":      boxes[i].Status,
				"assigned_at": boxes[i].AssignedAt,
				"released_at": boxes[i].ReleasedAt,
				"updated_at":  boxes[i].UpdatedAt,
			}).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *repository) UpdateShipment(ctx context.Context, db *gorm.DB, s *shipmentdomain.Shipment) error {
	return db.WithContext(ctx).
		Model(&shipmentdomain.Shipment{}).
		Where("org_id = ? AND id = ?", s.OrgID, s.ID).
		Updates(map[string]any{
			"status":            s.Status,
			"current_box_count": s.CurrentBoxCount,
			"assigned_at":       s.AssignedAt,
			"released_at":       s.ReleasedAt,
			"storage_charge":    s.StorageCharge,
			"updated_at":        s.UpdatedAt,
		}).Error
}
