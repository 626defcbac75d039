package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	assignmentdomain "github.com/warelane/warelane/internal/assignment/domain"
	"github.com/warelane/warelane/internal/clock"
	"github.com/warelane/warelane/internal/metrics"
	"github.com/warelane/warelane/internal/orgcontext"
	rackdomain "github.com/warelane/warelane/internal/rack/domain"
	shipmentdomain "github.com/warelane/warelane/internal/shipment/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Service struct {
	db  *gorm.DB
	log *zap.Logger

	genID     *snowflake.Node
	clock     clock.Clock
	shipments shipmentdomain.Repository
	racks     rackdomain.Repository
	metrics   *metrics.Metrics
}

type ServiceParam struct {
	fx.In

	DB           *gorm.DB
	Log          *zap.Logger
	GenID        *snowflake.Node
	Clock        clock.Clock
	ShipmentRepo shipmentdomain.Repository
	RackRepo     rackdomain.Repository
	Metrics      *metrics.Metrics `optional:"true"`
}

func NewService(p ServiceParam) assignmentdomain.Service {
	return &Service{
		db:  p.DB,
		log: p.Log.Named("assignment.service"),

		genID:     p.GenID,
		clock:     p.Clock,
		shipments: p.ShipmentRepo,
		racks:     p.RackRepo,
		metrics:   p.Metrics,
	}
}

func (s *Service) Assign(ctx context.Context, req assignmentdomain.AssignRequest) (*assignmentdomain.AssignResult, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, shipmentdomain.ErrShipmentNotFound
	}

	shipmentID, err := snowflake.ParseString(strings.TrimSpace(req.ShipmentID))
	if err != nil {
		return nil, shipmentdomain.ErrShipmentNotFound
	}
	rackID, err := snowflake.ParseString(strings.TrimSpace(req.RackID))
	if err != nil {
		return nil, rackdomain.ErrRackNotFound
	}
	if len(req.BoxNumbers) == 0 {
		return nil, shipmentdomain.ErrInvalidBoxNumbers
	}

	now := s.clock.Now(ctx)
	var result assignmentdomain.AssignResult

	// The whole batch runs in one transaction: box updates, the rack
	// capacity recompute and the audit entry land together or not at all.
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		sh, err := s.shipments.GetShipment(ctx, tx, orgID, shipmentID)
		if err != nil {
			return err
		}
		if sh == nil {
			return shipmentdomain.ErrShipmentNotFound
		}

		rack, err := s.racks.Get(ctx, tx, orgID, rackID)
		if err != nil {
			return err
		}
		if rack == nil {
			return rackdomain.ErrRackNotFound
		}

		boxes, err := s.shipments.ListBoxes(ctx, tx, orgID, shipmentID)
		if err != nil {
			return err
		}

		targets, err := selectAssignable(boxes, req.BoxNumbers)
		if err != nil {
			return err
		}

		for i := range targets {
			targets[i].RackID = &rackID
			targets[i].Status = shipmentdomain.BoxStatusInStorage
			assignedAt := now
			targets[i].AssignedAt = &assignedAt
			targets[i].UpdatedAt = now
		}
		if err := s.shipments.UpdateBoxes(ctx, tx, targets); err != nil {
			return err
		}

		// Recompute over every box now on the rack, not just this batch.
		used, err := s.recomputeRack(ctx, tx, orgID, rack, boxesPerPalletLookup{sh.ID: sh.BoxesPerPallet})
		if err != nil {
			return err
		}

		activity := &rackdomain.RackActivity{
			ID:            s.genID.Generate(),
			OrgID:         orgID,
			RackID:        rackID,
			Type:          rackdomain.ActivityAssign,
			Detail:        fmt.Sprintf("assigned %d boxes of shipment %s", len(targets), sh.Barcode),
			QuantityAfter: used,
			PhotoURLs:     photoMap(req.PhotoURLs),
			CreatedAt:     now,
		}
		if actor, ok := orgcontext.UserIDFromContext(ctx); ok {
			activity.ActorID = actor
		}
		if err := s.racks.InsertActivity(ctx, tx, activity); err != nil {
			return err
		}

		refreshed, err := s.shipments.ListBoxes(ctx, tx, orgID, shipmentID)
		if err != nil {
			return err
		}
		sh.Status = shipmentdomain.DeriveStatus(refreshed)
		sh.CurrentBoxCount = shipmentdomain.RemainingCount(refreshed)
		if sh.AssignedAt == nil && allStored(refreshed) {
			stamped := now
			sh.AssignedAt = &stamped
		}
		sh.UpdatedAt = now
		if err := s.shipments.UpdateShipment(ctx, tx, sh); err != nil {
			return err
		}

		rackAfter := *rack
		rackAfter.CapacityUsed = used
		result = assignmentdomain.AssignResult{
			Assigned:       len(targets),
			PhotosUploaded: len(req.PhotoURLs),
			PhotoURLs:      req.PhotoURLs,
			RackUsed:       used,
			RackStatus:     string(rackAfter.Status()),
			ShipmentStatus: string(sh.Status),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.AssignmentsTotal.Inc()
		s.metrics.BoxesStoredTotal.Add(float64(result.Assigned))
	}

	s.log.Info("boxes assigned",
		zap.Int64("shipment_id", int64(shipmentID)),
		zap.Int64("rack_id", int64(rackID)),
		zap.Int("assigned", result.Assigned),
		zap.Int("rack_used", result.RackUsed))

	return &result, nil
}

func allStored(boxes []shipmentdomain.Box) bool {
	for _, b := range boxes {
		if b.Status != shipmentdomain.BoxStatusInStorage {
			return false
		}
	}
	return len(boxes) > 0
}

// selectAssignable resolves requested box numbers against the shipment's box
// set. Every requested number must name a pending, unracked box; anything else
// fails the batch rather than being silently ignored.
func selectAssignable(boxes []shipmentdomain.Box, numbers []int) ([]shipmentdomain.Box, error) {
	byNumber := make(map[int]shipmentdomain.Box, len(boxes))
	for _, b := range boxes {
		byNumber[b.BoxNumber] = b
	}

	seen := make(map[int]struct{}, len(numbers))
	targets := make([]shipmentdomain.Box, 0, len(numbers))
	for _, n := range numbers {
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}

		b, ok := byNumber[n]
		if !ok {
			return nil, shipmentdomain.ErrInvalidBoxNumbers
		}
		if err := shipmentdomain.CanAssign(b); err != nil {
			return nil, err
		}
		if b.RackID != nil {
			return nil, shipmentdomain.ErrBoxAlreadyStored
		}
		targets = append(targets, b)
	}
	return targets, nil
}

type boxesPerPalletLookup map[snowflake.ID]int

// recomputeRack derives the rack's occupied pallet slots from the boxes
// currently on it and persists the result. The stored counter is a cache;
// recomputation keeps it self-healing.
func (s *Service) recomputeRack(ctx context.Context, tx *gorm.DB, orgID snowflake.ID, rack *rackdomain.Rack, known boxesPerPalletLookup) (int, error) {
	onRack, err := s.shipments.ListBoxesByRack(ctx, tx, orgID, rack.ID)
	if err != nil {
		return 0, err
	}

	refs := make([]rackdomain.PalletRef, 0, len(onRack))
	for _, b := range onRack {
		perPallet, ok := known[b.ShipmentID]
		if !ok {
			owner, err := s.shipments.GetShipment(ctx, tx, orgID, b.ShipmentID)
			if err != nil {
				return 0, err
			}
			if owner != nil {
				perPallet = owner.BoxesPerPallet
			}
			known[b.ShipmentID] = perPallet
		}
		refs = append(refs, rackdomain.PalletRef{
			ShipmentID:     int64(b.ShipmentID),
			BoxNumber:      b.BoxNumber,
			BoxesPerPallet: perPallet,
		})
	}

	used := rackdomain.OccupiedPalletSlots(refs)
	if err := s.racks.UpdateCapacityUsed(ctx, tx, orgID, rack.ID, used); err != nil {
		return 0, err
	}
	return used, nil
}

func photoMap(urls []string) datatypes.JSONMap {
	if len(urls) == 0 {
		return nil
	}
	m := datatypes.JSONMap{}
	for i, u := range urls {
		m[fmt.Sprintf("photo_%d", i+1)] = u
	}
	return m
}
