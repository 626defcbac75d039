package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	billingdomain "github.com/warelane/warelane/internal/billing/domain"
	"github.com/warelane/warelane/internal/clock"
	"github.com/warelane/warelane/internal/metrics"
	"github.com/warelane/warelane/internal/orgcontext"
	rackdomain "github.com/warelane/warelane/internal/rack/domain"
	releasedomain "github.com/warelane/warelane/internal/release/domain"
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
	billing   billingdomain.Repository
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
	BillingRepo  billingdomain.Repository
	Metrics      *metrics.Metrics `optional:"true"`
}

func NewService(p ServiceParam) releasedomain.Service {
	return &Service{
		db:  p.DB,
		log: p.Log.Named("release.service"),

		genID:     p.GenID,
		clock:     p.Clock,
		shipments: p.ShipmentRepo,
		racks:     p.RackRepo,
		billing:   p.BillingRepo,
		metrics:   p.Metrics,
	}
}

func (s *Service) Release(ctx context.Context, req releasedomain.ReleaseRequest) (*releasedomain.ReleaseResult, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, shipmentdomain.ErrShipmentNotFound
	}

	shipmentID, err := snowflake.ParseString(strings.TrimSpace(req.ShipmentID))
	if err != nil {
		return nil, shipmentdomain.ErrShipmentNotFound
	}
	if !req.ReleaseAll && len(req.BoxNumbers) == 0 {
		return nil, shipmentdomain.ErrInvalidBoxNumbers
	}

	now := s.clock.Now(ctx)
	var result releasedomain.ReleaseResult

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		sh, err := s.shipments.GetShipment(ctx, tx, orgID, shipmentID)
		if err != nil {
			return err
		}
		if sh == nil {
			return shipmentdomain.ErrShipmentNotFound
		}

		boxes, err := s.shipments.ListBoxes(ctx, tx, orgID, shipmentID)
		if err != nil {
			return err
		}

		// Already-released or never-assigned numbers are filtered out
		// before processing; only in-storage boxes are candidates.
		targets := selectReleasable(boxes, req.BoxNumbers, req.ReleaseAll)
		if len(targets) == 0 {
			// Everything requested was already released or never stored;
			// idempotent no-op, nothing written.
			result = releasedomain.ReleaseResult{
				ReleasedCount:  0,
				RemainingCount: shipmentdomain.RemainingCount(boxes),
				ShipmentStatus: string(sh.Status),
			}
			return nil
		}

		stored := 0
		for _, b := range boxes {
			if b.Status == shipmentdomain.BoxStatusInStorage {
				stored++
			}
		}
		pendingLeft := shipmentdomain.RemainingCount(boxes) - stored

		settings, err := s.billing.GetSettings(ctx, tx, orgID)
		if err != nil {
			return err
		}

		// Partial means boxes remain un-released after this call.
		partial := len(targets) < stored || pendingLeft > 0
		if partial {
			if !settings.AllowPartialRelease {
				return releasedomain.ErrPartialReleaseForbidden
			}
			if settings.MinimumPartialBoxes > 0 && len(targets) < settings.MinimumPartialBoxes {
				return releasedomain.ErrBelowMinimumPartial
			}
		}

		// Track which racks lose boxes; one audit entry per rack touched.
		rackIDs := make([]snowflake.ID, 0, 2)
		seenRacks := map[snowflake.ID]struct{}{}
		for i := range targets {
			if targets[i].RackID != nil {
				if _, ok := seenRacks[*targets[i].RackID]; !ok {
					seenRacks[*targets[i].RackID] = struct{}{}
					rackIDs = append(rackIDs, *targets[i].RackID)
				}
			}
			targets[i].RackID = nil
			targets[i].Status = shipmentdomain.BoxStatusReleased
			releasedAt := now
			targets[i].ReleasedAt = &releasedAt
			targets[i].UpdatedAt = now
		}
		if err := s.shipments.UpdateBoxes(ctx, tx, targets); err != nil {
			return err
		}

		perPallet := boxesPerPalletLookup{sh.ID: sh.BoxesPerPallet}
		for _, rackID := range rackIDs {
			rack, err := s.racks.Get(ctx, tx, orgID, rackID)
			if err != nil {
				return err
			}
			if rack == nil {
				return rackdomain.ErrRackNotFound
			}
			used, err := s.recomputeRack(ctx, tx, orgID, rack, perPallet)
			if err != nil {
				return err
			}

			activity := &rackdomain.RackActivity{
				ID:            s.genID.Generate(),
				OrgID:         orgID,
				RackID:        rackID,
				Type:          rackdomain.ActivityRelease,
				Detail:        fmt.Sprintf("released boxes of shipment %s (collector %s)", sh.Barcode, strings.TrimSpace(req.CollectorID)),
				QuantityAfter: used,
				PhotoURLs:     photoMap(req.ReleasePhotos),
				CreatedAt:     now,
			}
			if actor, ok := orgcontext.UserIDFromContext(ctx); ok {
				activity.ActorID = actor
			}
			if err := s.racks.InsertActivity(ctx, tx, activity); err != nil {
				return err
			}
		}

		refreshed, err := s.shipments.ListBoxes(ctx, tx, orgID, shipmentID)
		if err != nil {
			return err
		}
		sh.Status = shipmentdomain.DeriveStatus(refreshed)
		sh.CurrentBoxCount = shipmentdomain.RemainingCount(refreshed)
		sh.UpdatedAt = now

		var charges *billingdomain.ChargeBreakdown
		if sh.Status == shipmentdomain.ShipmentStatusReleased && sh.ReleasedAt == nil {
			stamped := now
			sh.ReleasedAt = &stamped

			bd := billingdomain.ComputeCharge(
				sh.ArrivalDate, now, sh.OriginalBoxCount,
				billingdomain.DayPolicy(sh.ChargePolicy), settings,
			)
			charges = &bd
			total := bd.Total
			sh.StorageCharge = &total
		}

		if err := s.shipments.UpdateShipment(ctx, tx, sh); err != nil {
			return err
		}

		result = releasedomain.ReleaseResult{
			ReleasedCount:  len(targets),
			RemainingCount: sh.CurrentBoxCount,
			ShipmentStatus: string(sh.Status),
			Charges:        charges,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.ReleasesTotal.Inc()
		s.metrics.BoxesFreedTotal.Add(float64(result.ReleasedCount))
	}

	s.log.Info("boxes released",
		zap.Int64("shipment_id", int64(shipmentID)),
		zap.Int("released", result.ReleasedCount),
		zap.Int("remaining", result.RemainingCount),
		zap.String("status", result.ShipmentStatus))

	return &result, nil
}

func (s *Service) PreviewCharges(ctx context.Context, shipmentID string) (*billingdomain.ChargeBreakdown, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, shipmentdomain.ErrShipmentNotFound
	}

	id, err := snowflake.ParseString(strings.TrimSpace(shipmentID))
	if err != nil {
		return nil, shipmentdomain.ErrShipmentNotFound
	}

	sh, err := s.shipments.GetShipment(ctx, s.db, orgID, id)
	if err != nil {
		return nil, err
	}
	if sh == nil {
		return nil, shipmentdomain.ErrShipmentNotFound
	}

	settings, err := s.billing.GetSettings(ctx, s.db, orgID)
	if err != nil {
		return nil, err
	}

	bd := billingdomain.ComputeCharge(
		sh.ArrivalDate, s.clock.Now(ctx), sh.OriginalBoxCount,
		billingdomain.DayPolicy(sh.ChargePolicy), settings,
	)
	return &bd, nil
}

// selectReleasable picks the in-storage boxes targeted by the request.
func selectReleasable(boxes []shipmentdomain.Box, numbers []int, releaseAll bool) []shipmentdomain.Box {
	wanted := map[int]struct{}{}
	for _, n := range numbers {
		wanted[n] = struct{}{}
	}

	targets := make([]shipmentdomain.Box, 0, len(boxes))
	for _, b := range boxes {
		if shipmentdomain.CanRelease(b) != nil {
			continue
		}
		if !releaseAll {
			if _, ok := wanted[b.BoxNumber]; !ok {
				continue
			}
		}
		targets = append(targets, b)
	}
	return targets
}

type boxesPerPalletLookup map[snowflake.ID]int

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
