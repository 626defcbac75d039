// Package receipt renders release receipts as PDF documents.
package receipt

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"
	billingdomain "github.com/warelane/warelane/internal/billing/domain"
	"github.com/warelane/warelane/internal/clock"
	"github.com/warelane/warelane/internal/orgcontext"
	shipmentdomain "github.com/warelane/warelane/internal/shipment/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service interface {
	// ReleaseReceipt renders the receipt for a released or partially
	// released shipment, including its charge breakdown when priced.
	ReleaseReceipt(ctx context.Context, shipmentID string) ([]byte, error)
}

type ServiceParam struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	Clock       clock.Clock
	Repo        shipmentdomain.Repository
	BillingRepo billingdomain.Repository
}

type service struct {
	db      *gorm.DB
	log     *zap.Logger
	clock   clock.Clock
	repo    shipmentdomain.Repository
	billing billingdomain.Repository
}

func NewService(p ServiceParam) Service {
	return &service{
		db:  p.DB,
		log: p.Log.Named("receipt.service"),

		clock:   p.Clock,
		repo:    p.Repo,
		billing: p.BillingRepo,
	}
}

var Module = fx.Module("receipt",
	fx.Provide(NewService),
)

func (s *service) ReleaseReceipt(ctx context.Context, shipmentID string) ([]byte, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, shipmentdomain.ErrShipmentNotFound
	}
	id, err := snowflake.ParseString(shipmentID)
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

	settings, err := s.billing.GetSettings(ctx, s.db, orgID)
	if err != nil {
		return nil, err
	}

	doc, err := s.render(sh, boxes, settings)
	if err != nil {
		return nil, fmt.Errorf("render receipt: %w", err)
	}
	return doc, nil
}

func (s *service) render(sh *shipmentdomain.Shipment, boxes []shipmentdomain.Box, settings billingdomain.Settings) ([]byte, error) {
	cfg := config.NewBuilder().
		WithLeftMargin(15).
		WithRightMargin(15).
		Build()
	m := maroto.New(cfg)

	m.AddRows(
		row.New(12).Add(
			text.NewCol(8, "Storage Release Receipt", props.Text{
				Size:  16,
				Style: fontstyle.Bold,
			}),
			code.NewQrCol(4, sh.Barcode, props.Rect{Center: true}),
		),
		row.New(6).Add(
			text.NewCol(12, "Reference "+sh.ReferenceCode, props.Text{Size: 9}),
		),
	)

	m.AddRow(4, line.NewCol(12))

	released := 0
	for _, b := range boxes {
		if b.Status == shipmentdomain.BoxStatusReleased {
			released++
		}
	}

	pairs := [][2]string{
		{"Barcode", sh.Barcode},
		{"Client", sh.ClientName},
		{"Arrived", sh.ArrivalDate.Format("2006-01-02")},
		{"Boxes received", fmt.Sprintf("%d (%d pallets x %d)", sh.OriginalBoxCount, sh.PalletCount, sh.BoxesPerPallet)},
		{"Boxes released", fmt.Sprintf("%d", released)},
		{"Boxes remaining", fmt.Sprintf("%d", sh.CurrentBoxCount)},
		{"Status", string(sh.Status)},
	}
	if sh.ReleasedAt != nil {
		pairs = append(pairs, [2]string{"Released", sh.ReleasedAt.Format("2006-01-02 15:04 MST")})
	}
	for _, p := range pairs {
		m.AddRow(6,
			text.NewCol(4, p[0], props.Text{Size: 9, Style: fontstyle.Bold}),
			text.NewCol(8, p[1], props.Text{Size: 9}),
		)
	}

	if sh.StorageCharge != nil {
		m.AddRow(4, line.NewCol(12))
		m.AddRow(8,
			text.NewCol(4, "Total charge", props.Text{Size: 11, Style: fontstyle.Bold}),
			text.NewCol(8, sh.StorageCharge.StringFixed(2), props.Text{Size: 11, Align: align.Right}),
		)
		if settings.TaxEnabled {
			m.AddRow(5,
				text.NewCol(12, fmt.Sprintf("Includes tax at %s%%", settings.TaxRate.String()), props.Text{Size: 8}),
			)
		}
	}

	m.AddRow(6, col.New(12))
	m.AddRow(5,
		text.NewCol(12, "Generated "+s.clock.Now(context.Background()).Format(time.RFC1123), props.Text{Size: 7}),
	)

	document, err := m.Generate()
	if err != nil {
		return nil, err
	}
	return document.GetBytes(), nil
}
