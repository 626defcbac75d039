package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/redis/go-redis/v9"
	"github.com/warelane/warelane/internal/label"
	"github.com/warelane/warelane/internal/orgcontext"
	rackdomain "github.com/warelane/warelane/internal/rack/domain"
	rackrepo "github.com/warelane/warelane/internal/rack/repository"
	scandomain "github.com/warelane/warelane/internal/scan/domain"
	shipmentdomain "github.com/warelane/warelane/internal/shipment/domain"
	shipmentrepo "github.com/warelane/warelane/internal/shipment/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	svc   scandomain.Service
	db    *gorm.DB
	node  *snowflake.Node
	ctx   context.Context
	orgID snowflake.ID
}

func newFixture(t *testing.T, rdb *redis.Client) *fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&shipmentdomain.Shipment{},
		&shipmentdomain.Box{},
		&rackdomain.Rack{},
	))

	node, err := snowflake.NewNode(3)
	require.NoError(t, err)

	f := &fixture{
		db:    db,
		node:  node,
		orgID: node.Generate(),
	}
	f.ctx = orgcontext.WithOrgID(context.Background(), f.orgID)
	f.svc = NewService(ServiceParam{
		DB:           db,
		Log:          zap.NewNop(),
		Redis:        rdb,
		CacheTTL:     time.Minute,
		ShipmentRepo: shipmentrepo.NewRepository(),
		RackRepo:     rackrepo.NewRepository(),
	})
	return f
}

func (f *fixture) seedShipment(t *testing.T, barcode string) *shipmentdomain.Shipment {
	t.Helper()
	now := time.Now().UTC()
	sh := &shipmentdomain.Shipment{
		ID:               f.node.Generate(),
		OrgID:            f.orgID,
		ReferenceCode:    "REF-" + barcode,
		Barcode:          barcode,
		OriginalBoxCount: 1,
		CurrentBoxCount:  1,
		PalletCount:      1,
		BoxesPerPallet:   1,
		Status:           shipmentdomain.ShipmentStatusPending,
		ChargePolicy:     shipmentdomain.ChargePolicyMinimumFloor,
		ArrivalDate:      now,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	require.NoError(t, f.db.Create(sh).Error)
	return sh
}

func (f *fixture) seedBox(t *testing.T, sh *shipmentdomain.Shipment, n int) *shipmentdomain.Box {
	t.Helper()
	qr, err := label.PieceQR(sh.Barcode, n)
	require.NoError(t, err)
	now := time.Now().UTC()
	box := &shipmentdomain.Box{
		ID:         f.node.Generate(),
		OrgID:      f.orgID,
		ShipmentID: sh.ID,
		BoxNumber:  n,
		PieceQR:    qr,
		Status:     shipmentdomain.BoxStatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	require.NoError(t, f.db.Create(box).Error)
	return box
}

func TestResolvePieceQR(t *testing.T) {
	f := newFixture(t, nil)
	sh := f.seedShipment(t, "WH2410130042")
	box := f.seedBox(t, sh, 7)

	res, err := f.svc.Resolve(f.ctx, scandomain.ScanRequest{Code: box.PieceQR})
	require.NoError(t, err)
	assert.Equal(t, string(label.KindPiece), res.Kind)
	require.NotNil(t, res.Box)
	assert.Equal(t, 7, res.Box.BoxNumber)
	assert.Equal(t, sh.ID, res.Box.ShipmentID)
}

func TestResolveBarcodeAndMaster(t *testing.T) {
	f := newFixture(t, nil)
	sh := f.seedShipment(t, "WH2410130042")

	res, err := f.svc.Resolve(f.ctx, scandomain.ScanRequest{Code: sh.Barcode})
	require.NoError(t, err)
	assert.Equal(t, string(label.KindBarcode), res.Kind)
	require.NotNil(t, res.Shipment)
	assert.Equal(t, sh.ID, res.Shipment.ID)

	master := label.MasterQR(sh.Barcode, time.Now(), 1, 1, 1, 1, 1)
	res, err = f.svc.Resolve(f.ctx, scandomain.ScanRequest{Code: master})
	require.NoError(t, err)
	assert.Equal(t, string(label.KindMaster), res.Kind)
	require.NotNil(t, res.Shipment)
	assert.Equal(t, sh.ID, res.Shipment.ID)
}

func TestResolveRackQR(t *testing.T) {
	f := newFixture(t, nil)
	now := time.Now().UTC()
	rack := &rackdomain.Rack{
		ID:            f.node.Generate(),
		OrgID:         f.orgID,
		Code:          "a-01",
		QRCode:        label.RackQR("a-01"),
		CapacityTotal: 10,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	require.NoError(t, f.db.Create(rack).Error)

	res, err := f.svc.Resolve(f.ctx, scandomain.ScanRequest{Code: "RACK_a_01"})
	require.NoError(t, err)
	assert.Equal(t, string(label.KindRack), res.Kind)
	require.NotNil(t, res.Rack)
	assert.Equal(t, rack.ID, res.Rack.ID)
	assert.Equal(t, rackdomain.RackStatusActive, res.Rack.Status)
}

func TestResolveUnknownCode(t *testing.T) {
	f := newFixture(t, nil)

	_, err := f.svc.Resolve(f.ctx, scandomain.ScanRequest{Code: "garbage"})
	assert.ErrorIs(t, err, scandomain.ErrUnknownCode)

	_, err = f.svc.Resolve(f.ctx, scandomain.ScanRequest{Code: "WH9912319999"})
	assert.ErrorIs(t, err, scandomain.ErrUnknownCode)
}

func TestResolveUsesCache(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	f := newFixture(t, rdb)
	sh := f.seedShipment(t, "WH2410130042")

	res, err := f.svc.Resolve(f.ctx, scandomain.ScanRequest{Code: sh.Barcode})
	require.NoError(t, err)
	require.NotNil(t, res.Shipment)

	key := "scan:" + f.orgID.String() + ":" + sh.Barcode
	assert.True(t, mr.Exists(key))

	// The cached entry still answers, re-read from the database.
	res, err = f.svc.Resolve(f.ctx, scandomain.ScanRequest{Code: sh.Barcode})
	require.NoError(t, err)
	require.NotNil(t, res.Shipment)
	assert.Equal(t, sh.ID, res.Shipment.ID)
}
