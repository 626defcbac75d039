package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	assignmentdomain "github.com/warelane/warelane/internal/assignment/domain"
	"github.com/warelane/warelane/internal/clock"
	"github.com/warelane/warelane/internal/orgcontext"
	rackdomain "github.com/warelane/warelane/internal/rack/domain"
	rackrepo "github.com/warelane/warelane/internal/rack/repository"
	shipmentdomain "github.com/warelane/warelane/internal/shipment/domain"
	shipmentrepo "github.com/warelane/warelane/internal/shipment/repository"
	shipmentservice "github.com/warelane/warelane/internal/shipment/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var testTime = time.Date(2024, 10, 13, 9, 0, 0, 0, time.UTC)

type fixture struct {
	db     *gorm.DB
	node   *snowflake.Node
	assign assignmentdomain.Service
	intake shipmentdomain.Service
	racks  rackdomain.Repository
	boxes  shipmentdomain.Repository
	ctx    context.Context
	orgID  snowflake.ID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&shipmentdomain.Shipment{},
		&shipmentdomain.Box{},
		&rackdomain.Rack{},
		&rackdomain.RackActivity{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	log := zap.NewNop()
	clk := clock.Fixed(testTime)
	shRepo := shipmentrepo.NewRepository()
	rkRepo := rackrepo.NewRepository()

	f := &fixture{
		db:    db,
		node:  node,
		racks: rkRepo,
		boxes: shRepo,
		orgID: node.Generate(),
	}
	f.ctx = orgcontext.WithOrgID(context.Background(), f.orgID)
	f.intake = shipmentservice.NewService(shipmentservice.ServiceParam{
		DB: db, Log: log, GenID: node, Clock: clk, Repo: shRepo, RackRepo: rkRepo,
	})
	f.assign = NewService(ServiceParam{
		DB: db, Log: log, GenID: node, Clock: clk, ShipmentRepo: shRepo, RackRepo: rkRepo,
	})
	return f
}

func (f *fixture) newShipment(t *testing.T, pallets, perPallet int) *shipmentdomain.Shipment {
	t.Helper()
	sh, err := f.intake.Intake(f.ctx, shipmentdomain.CreateIntakeRequest{
		ClientName:     "Acme Traders",
		PalletCount:    pallets,
		BoxesPerPallet: perPallet,
	})
	require.NoError(t, err)
	return sh
}

func (f *fixture) newRack(t *testing.T, code string, capacity int) *rackdomain.Rack {
	t.Helper()
	rack := &rackdomain.Rack{
		ID:            f.node.Generate(),
		OrgID:         f.orgID,
		Code:          code,
		QRCode:        "RACK_" + code,
		CapacityTotal: capacity,
		CreatedAt:     testTime,
		UpdatedAt:     testTime,
	}
	require.NoError(t, f.racks.Insert(f.ctx, f.db, rack))
	return rack
}

func TestAssignAllBoxes(t *testing.T) {
	f := newFixture(t)
	sh := f.newShipment(t, 2, 5)
	rack := f.newRack(t, "r1", 5)

	res, err := f.assign.Assign(f.ctx, assignmentdomain.AssignRequest{
		ShipmentID: sh.ID.String(),
		RackID:     rack.ID.String(),
		BoxNumbers: []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10},
	})
	require.NoError(t, err)
	assert.Equal(t, 10, res.Assigned)
	assert.Equal(t, 2, res.RackUsed) // 10 boxes at 5/pallet = 2 slots
	assert.Equal(t, string(shipmentdomain.ShipmentStatusInStorage), res.ShipmentStatus)

	got, err := f.boxes.GetShipment(f.ctx, f.db, f.orgID, sh.ID)
	require.NoError(t, err)
	assert.Equal(t, shipmentdomain.ShipmentStatusInStorage, got.Status)
	assert.NotNil(t, got.AssignedAt)
	assert.Equal(t, 10, got.CurrentBoxCount)

	boxes, err := f.boxes.ListBoxes(f.ctx, f.db, f.orgID, sh.ID)
	require.NoError(t, err)
	for _, b := range boxes {
		assert.Equal(t, shipmentdomain.BoxStatusInStorage, b.Status)
		require.NotNil(t, b.RackID)
		assert.Equal(t, rack.ID, *b.RackID)
	}

	entries, total, err := f.racks.ListActivity(f.ctx, f.db, f.orgID, rack.ID, 10, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, rackdomain.ActivityAssign, entries[0].Type)
	assert.Equal(t, 2, entries[0].QuantityAfter)
}

func TestAssignPartialBatchKeepsShipmentPending(t *testing.T) {
	f := newFixture(t)
	sh := f.newShipment(t, 1, 4)
	rack := f.newRack(t, "r1", 5)

	res, err := f.assign.Assign(f.ctx, assignmentdomain.AssignRequest{
		ShipmentID: sh.ID.String(),
		RackID:     rack.ID.String(),
		BoxNumbers: []int{1, 2},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Assigned)
	assert.Equal(t, string(shipmentdomain.ShipmentStatusInStorage), res.ShipmentStatus)

	got, err := f.boxes.GetShipment(f.ctx, f.db, f.orgID, sh.ID)
	require.NoError(t, err)
	// Some boxes assigned, none released: shipment is in storage but not
	// fully assigned, so AssignedAt is not stamped yet.
	assert.Equal(t, shipmentdomain.ShipmentStatusInStorage, got.Status)
	assert.Nil(t, got.AssignedAt)
}

func TestAssignForeignBoxNumberFailsWholeBatch(t *testing.T) {
	f := newFixture(t)
	sh := f.newShipment(t, 1, 4)
	rack := f.newRack(t, "r1", 5)

	_, err := f.assign.Assign(f.ctx, assignmentdomain.AssignRequest{
		ShipmentID: sh.ID.String(),
		RackID:     rack.ID.String(),
		BoxNumbers: []int{1, 2, 99},
	})
	require.ErrorIs(t, err, shipmentdomain.ErrInvalidBoxNumbers)

	// All-or-nothing: boxes 1 and 2 must be untouched.
	boxes, err := f.boxes.ListBoxes(f.ctx, f.db, f.orgID, sh.ID)
	require.NoError(t, err)
	for _, b := range boxes {
		assert.Equal(t, shipmentdomain.BoxStatusPending, b.Status)
		assert.Nil(t, b.RackID)
	}

	got, err := f.racks.Get(f.ctx, f.db, f.orgID, rack.ID)
	require.NoError(t, err)
	assert.Zero(t, got.CapacityUsed)
}

func TestAssignAlreadyStoredBoxConflicts(t *testing.T) {
	f := newFixture(t)
	sh := f.newShipment(t, 1, 4)
	rack := f.newRack(t, "r1", 5)

	_, err := f.assign.Assign(f.ctx, assignmentdomain.AssignRequest{
		ShipmentID: sh.ID.String(), RackID: rack.ID.String(), BoxNumbers: []int{1, 2},
	})
	require.NoError(t, err)

	_, err = f.assign.Assign(f.ctx, assignmentdomain.AssignRequest{
		ShipmentID: sh.ID.String(), RackID: rack.ID.String(), BoxNumbers: []int{2, 3},
	})
	require.ErrorIs(t, err, shipmentdomain.ErrBoxAlreadyStored)

	// Box 3 must not have been assigned by the failed batch.
	boxes, err := f.boxes.ListBoxes(f.ctx, f.db, f.orgID, sh.ID)
	require.NoError(t, err)
	assert.Equal(t, shipmentdomain.BoxStatusPending, boxes[2].Status)
}

func TestAssignOverCapacityCompletesSoftly(t *testing.T) {
	f := newFixture(t)
	sh := f.newShipment(t, 3, 1) // 3 boxes, one slot each
	rack := f.newRack(t, "tiny", 2)

	res, err := f.assign.Assign(f.ctx, assignmentdomain.AssignRequest{
		ShipmentID: sh.ID.String(),
		RackID:     rack.ID.String(),
		BoxNumbers: []int{1, 2, 3},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, res.RackUsed)
	assert.Equal(t, string(rackdomain.RackStatusFull), res.RackStatus)
}

func TestAssignMixedShipmentsOnOneRack(t *testing.T) {
	f := newFixture(t)
	dense := f.newShipment(t, 1, 5)  // 5 boxes on 1 pallet
	sparse := f.newShipment(t, 2, 1) // 2 boxes on 2 pallets
	rack := f.newRack(t, "shared", 5)

	_, err := f.assign.Assign(f.ctx, assignmentdomain.AssignRequest{
		ShipmentID: dense.ID.String(), RackID: rack.ID.String(), BoxNumbers: []int{1, 2, 3, 4, 5},
	})
	require.NoError(t, err)

	res, err := f.assign.Assign(f.ctx, assignmentdomain.AssignRequest{
		ShipmentID: sparse.ID.String(), RackID: rack.ID.String(), BoxNumbers: []int{1, 2},
	})
	require.NoError(t, err)
	// 1 slot for the dense shipment + 2 for the sparse one.
	assert.Equal(t, 3, res.RackUsed)
}
