package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/redis/go-redis/v9"
	"github.com/warelane/warelane/internal/label"
	"github.com/warelane/warelane/internal/metrics"
	"github.com/warelane/warelane/internal/orgcontext"
	rackdomain "github.com/warelane/warelane/internal/rack/domain"
	scandomain "github.com/warelane/warelane/internal/scan/domain"
	shipmentdomain "github.com/warelane/warelane/internal/shipment/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ServiceParam struct {
	fx.In

	DB           *gorm.DB
	Log          *zap.Logger
	Redis        *redis.Client `optional:"true"`
	CacheTTL     time.Duration `name:"scan_cache_ttl" optional:"true"`
	ShipmentRepo shipmentdomain.Repository
	RackRepo     rackdomain.Repository
	Metrics      *metrics.Metrics `optional:"true"`
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	redis     *redis.Client
	cacheTTL  time.Duration
	shipments shipmentdomain.Repository
	racks     rackdomain.Repository
	metrics   *metrics.Metrics
}

func NewService(p ServiceParam) scandomain.Service {
	ttl := p.CacheTTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Service{
		db:  p.DB,
		log: p.Log.Named("scan.service"),

		redis:     p.Redis,
		cacheTTL:  ttl,
		shipments: p.ShipmentRepo,
		racks:     p.RackRepo,
		metrics:   p.Metrics,
	}
}

// cacheEntry pins a resolved code to the entity that answered it, so repeat
// scans of the same label skip classification and lookup.
type cacheEntry struct {
	Kind       string `json:"kind"`
	ShipmentID string `json:"shipment_id,omitempty"`
	BoxNumber  int    `json:"box_number,omitempty"`
	RackID     string `json:"rack_id,omitempty"`
}

func (s *Service) Resolve(ctx context.Context, req scandomain.ScanRequest) (*scandomain.ScanResult, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, scandomain.ErrUnknownCode
	}

	raw := strings.TrimSpace(req.Code)
	if raw == "" {
		return nil, scandomain.ErrUnknownCode
	}

	if hit := s.fromCache(ctx, orgID, raw); hit != nil {
		if res, err := s.materialize(ctx, orgID, hit); err == nil && res != nil {
			s.count(res.Kind)
			return res, nil
		}
		// Stale entry, fall through to a fresh resolve.
	}

	kind := label.Classify(raw)
	res, err := s.resolve(ctx, orgID, kind, raw)
	if err != nil {
		if s.metrics != nil {
			s.metrics.ScanTotal.WithLabelValues(string(label.KindUnknown)).Inc()
		}
		return nil, err
	}

	s.store(ctx, orgID, raw, res)
	s.count(res.Kind)
	return res, nil
}

func (s *Service) resolve(ctx context.Context, orgID snowflake.ID, kind label.Kind, raw string) (*scandomain.ScanResult, error) {
	switch kind {
	case label.KindPiece:
		box, err := s.shipments.GetBoxByPieceQR(ctx, s.db, orgID, raw)
		if err != nil {
			return nil, err
		}
		if box == nil {
			return nil, scandomain.ErrUnknownCode
		}
		return &scandomain.ScanResult{Kind: string(kind), Box: s.withRack(ctx, orgID, *box)}, nil

	case label.KindBarcode:
		sh, err := s.shipments.GetShipmentByBarcode(ctx, s.db, orgID, raw)
		if err != nil {
			return nil, err
		}
		if sh == nil {
			return nil, scandomain.ErrUnknownCode
		}
		return &scandomain.ScanResult{Kind: string(kind), Shipment: sh}, nil

	case label.KindMaster:
		ref, err := label.ParseMasterQR(raw)
		if err != nil {
			return nil, scandomain.ErrUnknownCode
		}
		sh, err := s.shipments.GetShipmentByBarcode(ctx, s.db, orgID, ref.Barcode)
		if err != nil {
			return nil, err
		}
		if sh == nil {
			return nil, scandomain.ErrUnknownCode
		}
		return &scandomain.ScanResult{Kind: string(kind), Shipment: sh}, nil

	case label.KindRack:
		code, err := label.ParseRackQR(raw)
		if err != nil {
			return nil, scandomain.ErrUnknownCode
		}
		rack, err := s.racks.GetByCode(ctx, s.db, orgID, code)
		if err != nil {
			return nil, err
		}
		if rack == nil {
			return nil, scandomain.ErrUnknownCode
		}
		view := &rackdomain.RackView{Rack: *rack, Status: rack.Status()}
		return &scandomain.ScanResult{Kind: string(kind), Rack: view}, nil

	default:
		return nil, scandomain.ErrUnknownCode
	}
}

func (s *Service) withRack(ctx context.Context, orgID snowflake.ID, box shipmentdomain.Box) *shipmentdomain.BoxWithRack {
	out := &shipmentdomain.BoxWithRack{Box: box}
	if box.RackID == nil {
		return out
	}
	rack, err := s.racks.Get(ctx, s.db, orgID, *box.RackID)
	if err != nil || rack == nil {
		return out
	}
	out.RackCode = rack.Code
	return out
}

func (s *Service) cacheKey(orgID snowflake.ID, raw string) string {
	return "scan:" + orgID.String() + ":" + raw
}

func (s *Service) fromCache(ctx context.Context, orgID snowflake.ID, raw string) *cacheEntry {
	if s.redis == nil {
		return nil
	}
	val, err := s.redis.Get(ctx, s.cacheKey(orgID, raw)).Result()
	if err != nil {
		return nil
	}
	var entry cacheEntry
	if err := json.Unmarshal([]byte(val), &entry); err != nil {
		return nil
	}
	return &entry
}

func (s *Service) store(ctx context.Context, orgID snowflake.ID, raw string, res *scandomain.ScanResult) {
	if s.redis == nil || res == nil {
		return
	}
	entry := cacheEntry{Kind: res.Kind}
	switch {
	case res.Shipment != nil:
		entry.ShipmentID = res.Shipment.ID.String()
	case res.Box != nil:
		entry.ShipmentID = res.Box.ShipmentID.String()
		entry.BoxNumber = res.Box.BoxNumber
	case res.Rack != nil:
		entry.RackID = res.Rack.ID.String()
	}
	payload, err := json.Marshal(entry)
	if err != nil {
		return
	}
	if err := s.redis.Set(ctx, s.cacheKey(orgID, raw), payload, s.cacheTTL).Err(); err != nil {
		s.log.Debug("scan cache write failed", zap.Error(err))
	}
}

// materialize re-reads the cached entity so responses never serve stale rows.
func (s *Service) materialize(ctx context.Context, orgID snowflake.ID, entry *cacheEntry) (*scandomain.ScanResult, error) {
	switch {
	case entry.RackID != "":
		id, err := snowflake.ParseString(entry.RackID)
		if err != nil {
			return nil, err
		}
		rack, err := s.racks.Get(ctx, s.db, orgID, id)
		if err != nil || rack == nil {
			return nil, scandomain.ErrUnknownCode
		}
		view := &rackdomain.RackView{Rack: *rack, Status: rack.Status()}
		return &scandomain.ScanResult{Kind: entry.Kind, Rack: view}, nil

	case entry.BoxNumber > 0:
		id, err := snowflake.ParseString(entry.ShipmentID)
		if err != nil {
			return nil, err
		}
		boxes, err := s.shipments.ListBoxes(ctx, s.db, orgID, id)
		if err != nil {
			return nil, err
		}
		for _, b := range boxes {
			if b.BoxNumber == entry.BoxNumber {
				return &scandomain.ScanResult{Kind: entry.Kind, Box: s.withRack(ctx, orgID, b)}, nil
			}
		}
		return nil, scandomain.ErrUnknownCode

	case entry.ShipmentID != "":
		id, err := snowflake.ParseString(entry.ShipmentID)
		if err != nil {
			return nil, err
		}
		sh, err := s.shipments.GetShipment(ctx, s.db, orgID, id)
		if err != nil || sh == nil {
			return nil, scandomain.ErrUnknownCode
		}
		return &scandomain.ScanResult{Kind: entry.Kind, Shipment: sh}, nil
	}
	return nil, scandomain.ErrUnknownCode
}

func (s *Service) count(kind string) {
	if s.metrics != nil {
		s.metrics.ScanTotal.WithLabelValues(kind).Inc()
	}
}
