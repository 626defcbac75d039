package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"github.com/warelane/warelane/internal/clock"
	"github.com/warelane/warelane/internal/label"
	"github.com/warelane/warelane/internal/orgcontext"
	rackdomain "github.com/warelane/warelane/internal/rack/domain"
	"github.com/warelane/warelane/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	db  *gorm.DB
	log *zap.Logger

	genID *snowflake.Node
	clock clock.Clock
	repo  rackdomain.Repository
}

type ServiceParam struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  rackdomain.Repository
}

func NewService(p ServiceParam) rackdomain.Service {
	return &Service{
		db:  p.DB,
		log: p.Log.Named("rack.service"),

		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req rackdomain.CreateRackRequest) (*rackdomain.Rack, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, rackdomain.ErrRackNotFound
	}

	code := slug.Make(strings.TrimSpace(req.Code))
	if code == "" {
		return nil, rackdomain.ErrInvalidRackCode
	}
	if req.CapacityTotal < 1 {
		return nil, rackdomain.ErrInvalidCapacity
	}

	now := s.clock.Now(ctx)
	rack := &rackdomain.Rack{
		ID:            s.genID.Generate(),
		OrgID:         orgID,
		Code:          code,
		QRCode:        label.RackQR(code),
		CapacityTotal: req.CapacityTotal,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repo.Insert(ctx, s.db, rack); err != nil {
		return nil, err
	}

	s.log.Info("rack created",
		zap.Int64("rack_id", int64(rack.ID)),
		zap.String("code", rack.Code),
		zap.Int("capacity_total", rack.CapacityTotal))

	return rack, nil
}

func (s *Service) Get(ctx context.Context, id string) (*rackdomain.RackView, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, rackdomain.ErrRackNotFound
	}

	rackID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return nil, rackdomain.ErrRackNotFound
	}

	rack, err := s.repo.Get(ctx, s.db, orgID, rackID)
	if err != nil {
		return nil, err
	}
	if rack == nil {
		return nil, rackdomain.ErrRackNotFound
	}
	return &rackdomain.RackView{Rack: *rack, Status: rack.Status()}, nil
}

func (s *Service) List(ctx context.Context, req rackdomain.ListRacksRequest) (rackdomain.ListRacksResponse, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return rackdomain.ListRacksResponse{}, rackdomain.ErrRackNotFound
	}

	limit := pagination.ClampPageSize(req.PageSize)
	offset, err := pagination.DecodeToken(req.PageToken)
	if err != nil {
		return rackdomain.ListRacksResponse{}, err
	}

	racks, total, err := s.repo.List(ctx, s.db, orgID, limit, offset)
	if err != nil {
		return rackdomain.ListRacksResponse{}, err
	}

	views := make([]rackdomain.RackView, 0, len(racks))
	for _, r := range racks {
		views = append(views, rackdomain.RackView{Rack: r, Status: r.Status()})
	}

	return rackdomain.ListRacksResponse{
		PageInfo: pagination.PageInfo{
			TotalCount:    total,
			NextPageToken: pagination.EncodeToken(offset+len(racks), total),
		},
		Racks: views,
	}, nil
}

func (s *Service) ListActivity(ctx context.Context, rackID string, req rackdomain.ListRacksRequest) (rackdomain.ListActivityResponse, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return rackdomain.ListActivityResponse{}, rackdomain.ErrRackNotFound
	}

	id, err := snowflake.ParseString(strings.TrimSpace(rackID))
	if err != nil {
		return rackdomain.ListActivityResponse{}, rackdomain.ErrRackNotFound
	}

	rack, err := s.repo.Get(ctx, s.db, orgID, id)
	if err != nil {
		return rackdomain.ListActivityResponse{}, err
	}
	if rack == nil {
		return rackdomain.ListActivityResponse{}, rackdomain.ErrRackNotFound
	}

	limit := pagination.ClampPageSize(req.PageSize)
	offset, err := pagination.DecodeToken(req.PageToken)
	if err != nil {
		return rackdomain.ListActivityResponse{}, err
	}

	entries, total, err := s.repo.ListActivity(ctx, s.db, orgID, id, limit, offset)
	if err != nil {
		return rackdomain.ListActivityResponse{}, err
	}

	return rackdomain.ListActivityResponse{
		PageInfo: pagination.PageInfo{
			TotalCount:    total,
			NextPageToken: pagination.EncodeToken(offset+len(entries), total),
		},
		Activity: entries,
	}, nil
}
