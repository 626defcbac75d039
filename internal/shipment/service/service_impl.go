package service

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/oklog/ulid/v2"
	"github.com/warelane/warelane/internal/clock"
	"github.com/warelane/warelane/internal/label"
	"github.com/warelane/warelane/internal/orgcontext"
	rackdomain "github.com/warelane/warelane/internal/rack/domain"
	shipmentdomain "github.com/warelane/warelane/internal/shipment/domain"
	"github.com/warelane/warelane/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Service struct {
	db  *gorm.DB
	log *zap.Logger

	genID *snowflake.Node
	clock clock.Clock
	repo  shipmentdomain.Repository
	racks rackdomain.Repository

	rngMu sync.Mutex
	rng   *rand.Rand
}

type ServiceParam struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Clock    clock.Clock
	Repo     shipmentdomain.Repository
	RackRepo rackdomain.Repository
}

func NewService(p ServiceParam) shipmentdomain.Service {
	return &Service{
		db:  p.DB,
		log: p.Log.Named("shipment.service"),

		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
		racks: p.RackRepo,

		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (s *Service) Intake(ctx context.Context, req shipmentdomain.CreateIntakeRequest) (*shipmentdomain.Shipment, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, shipmentdomain.ErrShipmentNotFound
	}

	if req.PalletCount < 1 || req.BoxesPerPallet < 1 {
		return nil, shipmentdomain.ErrInvalidPalletConfig
	}
	totalBoxes := req.PalletCount * req.BoxesPerPallet
	if totalBoxes > label.MaxPieceNumber {
		return nil, shipmentdomain.ErrTooManyBoxes
	}

	now := s.clock.Now(ctx)
	arrival := now
	if req.ArrivalDate != nil && !req.ArrivalDate.IsZero() {
		arrival = req.ArrivalDate.UTC()
	}

	policy := req.ChargePolicy
	switch policy {
	case shipmentdomain.ChargePolicyMinimumFloor, shipmentdomain.ChargePolicyGracePeriod:
	case "":
		policy = shipmentdomain.ChargePolicyMinimumFloor
	default:
		return nil, shipmentdomain.ErrInvalidPalletConfig
	}

	reference := strings.TrimSpace(req.ReferenceCode)
	if reference == "" {
		reference = ulid.Make().String()
	}

	s.rngMu.Lock()
	barcode := label.Barcode(now, s.rng)
	s.rngMu.Unlock()

	sh := &shipmentdomain.Shipment{
		ID:               s.genID.Generate(),
		OrgID:            orgID,
		ReferenceCode:    reference,
		Barcode:          barcode,
		ClientName:       strings.TrimSpace(req.ClientName),
		ClientPhone:      strings.TrimSpace(req.ClientPhone),
		OriginalBoxCount: totalBoxes,
		CurrentBoxCount:  totalBoxes,
		PalletCount:      req.PalletCount,
		BoxesPerPallet:   req.BoxesPerPallet,
		Status:           shipmentdomain.ShipmentStatusPending,
		ChargePolicy:     policy,
		ArrivalDate:      arrival,
		WarehouseData:    datatypes.JSONMap(req.WarehouseData),
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	boxes := make([]shipmentdomain.Box, 0, totalBoxes)
	for n := 1; n <= totalBoxes; n++ {
		qr, err := label.PieceQR(barcode, n)
		if err != nil {
			return nil, err
		}
		boxes = append(boxes, shipmentdomain.Box{
			ID:         s.genID.Generate(),
			OrgID:      orgID,
			ShipmentID: sh.ID,
			BoxNumber:  n,
			PieceQR:    qr,
			Status:     shipmentdomain.BoxStatusPending,
			CreatedAt:  now,
			UpdatedAt:  now,
		})
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.InsertShipment(ctx, tx, sh); err != nil {
			return err
		}
		return s.repo.InsertBoxes(ctx, tx, boxes)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("shipment intake",
		zap.Int64("shipment_id", int64(sh.ID)),
		zap.String("barcode", sh.Barcode),
		zap.Int("boxes", totalBoxes))

	sh.Boxes = boxes
	return sh, nil
}

func (s *Service) Get(ctx context.Context, id string) (*shipmentdomain.Shipment, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, shipmentdomain.ErrShipmentNotFound
	}

	shipmentID, err := parseID(id)
	if err != nil {
		return nil, shipmentdomain.ErrShipmentNotFound
	}

	sh, err := s.repo.GetShipment(ctx, s.db, orgID, shipmentID)
	if err != nil {
		return nil, err
	}
	if sh == nil {
		return nil, shipmentdomain.ErrShipmentNotFound
	}
	return sh, nil
}

func (s *Service) List(ctx context.Context, req shipmentdomain.ListShipmentsRequest) (shipmentdomain.ListShipmentsResponse, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return shipmentdomain.ListShipmentsResponse{}, shipmentdomain.ErrShipmentNotFound
	}

	limit := pagination.ClampPageSize(req.PageSize)
	offset, err := pagination.DecodeToken(req.PageToken)
	if err != nil {
		return shipmentdomain.ListShipmentsResponse{}, err
	}

	items, total, err := s.repo.ListShipments(ctx, s.db, orgID, req.Statuses, limit, offset)
	if err != nil {
		return shipmentdomain.ListShipmentsResponse{}, err
	}

	return shipmentdomain.ListShipmentsResponse{
		PageInfo: pagination.PageInfo{
			TotalCount:    total,
			NextPageToken: pagination.EncodeToken(offset+len(items), total),
		},
		Shipments: items,
	}, nil
}

func (s *Service) ListBoxes(ctx context.Context, shipmentID string) ([]shipmentdomain.BoxWithRack, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, shipmentdomain.ErrShipmentNotFound
	}

	id, err := parseID(shipmentID)
	if err != nil {
		return nil, shipmentdomain.ErrShipmentNotFound
	}

	sh, err := s.repo.GetShipment(ctx, s.db, orgID, id)
	if err != nil {
		return nil, err
	}
	if sh == nil {
		return nil, shipmentdomain.ErrShipmentNotFound
	}

	boxes, err := s.repo.ListBoxes(ctx, s.db, orgID, id)
	if err != nil {
		return nil, err
	}

	rackCodes := map[snowflake.ID]string{}
	out := make([]shipmentdomain.BoxWithRack, 0, len(boxes))
	for _, b := range boxes {
		view := shipmentdomain.BoxWithRack{Box: b}
		if b.RackID != nil {
			code, cached := rackCodes[*b.RackID]
			if !cached {
				rack, err := s.racks.Get(ctx, s.db, orgID, *b.RackID)
				if err != nil {
					return nil, err
				}
				if rack != nil {
					code = rack.Code
				}
				rackCodes[*b.RackID] = code
			}
			view.RackCode = code
		}
		out = append(out, view)
	}
	return out, nil
}

func parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("parse id: %w", err)
	}
	return id, nil
}
