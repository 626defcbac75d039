package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// Repository is the shipment/box persistence port. Implementations must scope
// every query by org. The db handle is passed per call so services can re-bind
// the repository inside a transaction.
type Repository interface {
	InsertShipment(ctx context.Context, db *gorm.DB, s *Shipment) error
	InsertBoxes(ctx context.Context, db *gorm.DB, boxes []Box) error

	GetShipment(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*Shipment, error)
	GetShipmentByBarcode(ctx context.Context, db *gorm.DB, orgID snowflake.ID, barcode string) (*Shipment, error)
	ListShipments(ctx context.Context, db *gorm.DB, orgID snowflake.ID, statuses []ShipmentStatus, limit, offset int) ([]Shipment, int64, error)

	ListBoxes(ctx context.Context, db *gorm.DB, orgID, shipmentID snowflake.ID) ([]Box, error)
	ListBoxesByRack(ctx context.Context, db *gorm.DB, orgID, rackID snowflake.ID) ([]Box, error)
	GetBoxByPieceQR(ctx context.Context, db *gorm.DB, orgID snowflake.ID, pieceQR string) (*Box, error)

	UpdateBoxes(ctx context.Context, db *gorm.DB, boxes []Box) error
	UpdateShipment(ctx context.Context, db *gorm.DB, s *Shipment) error
}
