package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	assignmentservice "github.com/warelane/warelane/internal/assignment/service"
	billingdomain "github.com/warelane/warelane/internal/billing/domain"
	billingrepo "github.com/warelane/warelane/internal/billing/repository"
	"github.com/warelane/warelane/internal/clock"
	"github.com/warelane/warelane/internal/config"
	exportservice "github.com/warelane/warelane/internal/export/service"
	"github.com/warelane/warelane/internal/metrics"
	rackdomain "github.com/warelane/warelane/internal/rack/domain"
	rackrepo "github.com/warelane/warelane/internal/rack/repository"
	rackservice "github.com/warelane/warelane/internal/rack/service"
	"github.com/warelane/warelane/internal/receipt"
	releaseservice "github.com/warelane/warelane/internal/release/service"
	scanservice "github.com/warelane/warelane/internal/scan/service"
	shipmentdomain "github.com/warelane/warelane/internal/shipment/domain"
	shipmentrepo "github.com/warelane/warelane/internal/shipment/repository"
	shipmentservice "github.com/warelane/warelane/internal/shipment/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var testTime = time.Date(2024, 10, 13, 9, 0, 0, 0, time.UTC)

type testServer struct {
	engine *gin.Engine
	db     *gorm.DB
	orgID  snowflake.ID
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&shipmentdomain.Shipment{},
		&shipmentdomain.Box{},
		&rackdomain.Rack{},
		&rackdomain.RackActivity{},
		&billingdomain.Settings{},
	))

	node, err := snowflake.NewNode(5)
	require.NoError(t, err)

	log := zap.NewNop()
	clk := clock.Fixed(testTime)
	shRepo := shipmentrepo.NewRepository()
	rkRepo := rackrepo.NewRepository()
	blRepo := billingrepo.NewRepository()
	m := metrics.New()

	srv := NewServer(Params{
		Log:     log,
		Cfg:     config.Config{},
		DB:      db,
		Metrics: m,
		ShipmentSvc: shipmentservice.NewService(shipmentservice.ServiceParam{
			DB: db, Log: log, GenID: node, Clock: clk, Repo: shRepo, RackRepo: rkRepo,
		}),
		RackSvc: rackservice.NewService(rackservice.ServiceParam{
			DB: db, Log: log, GenID: node, Clock: clk, Repo: rkRepo,
		}),
		AssignSvc: assignmentservice.NewService(assignmentservice.ServiceParam{
			DB: db, Log: log, GenID: node, Clock: clk, ShipmentRepo: shRepo, RackRepo: rkRepo, Metrics: m,
		}),
		ReleaseSvc: releaseservice.NewService(releaseservice.ServiceParam{
			DB: db, Log: log, GenID: node, Clock: clk, ShipmentRepo: shRepo, RackRepo: rkRepo, BillingRepo: blRepo, Metrics: m,
		}),
		ScanSvc: scanservice.NewService(scanservice.ServiceParam{
			DB: db, Log: log, ShipmentRepo: shRepo, RackRepo: rkRepo, Metrics: m,
		}),
		ExportSvc:  exportservice.NewExportService(db),
		ReceiptSvc: receipt.NewService(receipt.ServiceParam{DB: db, Log: log, Clock: clk, Repo: shRepo, BillingRepo: blRepo}),
	})

	return &testServer{
		engine: srv.Engine(),
		db:     db,
		orgID:  node.Generate(),
	}
}

func (ts *testServer) do(t *testing.T, method, path string, body any, withOrg bool) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if withOrg {
		req.Header.Set("X-Org-ID", ts.orgID.String())
	}

	w := httptest.NewRecorder()
	ts.engine.ServeHTTP(w, req)
	return w
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var envelope struct {
		Data map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	return envelope.Data
}

func (ts *testServer) intake(t *testing.T, pallets, perPallet int) string {
	t.Helper()
	w := ts.do(t, http.MethodPost, "/v1/shipments", gin.H{
		"client_name":      "Acme Traders",
		"pallet_count":     pallets,
		"boxes_per_pallet": perPallet,
	}, true)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return decodeData(t, w)["id"].(string)
}

func (ts *testServer) createRack(t *testing.T, code string, capacity int) string {
	t.Helper()
	w := ts.do(t, http.MethodPost, "/v1/racks", gin.H{
		"code":           code,
		"capacity_total": capacity,
	}, true)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return decodeData(t, w)["id"].(string)
}

func TestCreateShipmentGeneratesBoxes(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/v1/shipments", gin.H{
		"client_name":      "Acme Traders",
		"pallet_count":     2,
		"boxes_per_pallet": 3,
	}, true)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	data := decodeData(t, w)
	assert.EqualValues(t, 6, data["original_box_count"])
	assert.Equal(t, "pending", data["status"])
	assert.NotEmpty(t, data["barcode"])

	boxesResp := ts.do(t, http.MethodGet, "/v1/shipments/"+data["id"].(string)+"/boxes", nil, true)
	require.Equal(t, http.StatusOK, boxesResp.Code)
	var list struct {
		Data []map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(boxesResp.Body.Bytes(), &list))
	assert.Len(t, list.Data, 6)
}

func TestCreateShipmentRejectsBadPalletConfig(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/v1/shipments", gin.H{
		"client_name":      "Acme Traders",
		"pallet_count":     0,
		"boxes_per_pallet": 3,
	}, true)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMissingOrgHeaderUnauthorized(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodGet, "/v1/shipments", nil, false)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGetShipmentNotFound(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodGet, "/v1/shipments/123456789", nil, true)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAssignReleaseFlow(t *testing.T) {
	ts := newTestServer(t)
	shipmentID := ts.intake(t, 1, 4)
	rackID := ts.createRack(t, "Aisle 1", 5)

	w := ts.do(t, http.MethodPost, "/v1/shipments/"+shipmentID+"/assign-boxes", gin.H{
		"rack_id":     rackID,
		"box_numbers": []int{1, 2, 3, 4},
	}, true)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	data := decodeData(t, w)
	assert.EqualValues(t, 4, data["assigned"])
	assert.Equal(t, "in_storage", data["shipment_status"])

	// Re-assigning a stored box is a conflict.
	w = ts.do(t, http.MethodPost, "/v1/shipments/"+shipmentID+"/assign-boxes", gin.H{
		"rack_id":     rackID,
		"box_numbers": []int{1},
	}, true)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = ts.do(t, http.MethodPost, "/v1/shipments/"+shipmentID+"/release-boxes", gin.H{
		"release_all": true,
	}, true)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	data = decodeData(t, w)
	assert.EqualValues(t, 4, data["released_count"])
	assert.Equal(t, "released", data["shipment_status"])
}

func TestAssignInvalidBoxNumber(t *testing.T) {
	ts := newTestServer(t)
	shipmentID := ts.intake(t, 1, 2)
	rackID := ts.createRack(t, "Aisle 2", 5)

	w := ts.do(t, http.MethodPost, "/v1/shipments/"+shipmentID+"/assign-boxes", gin.H{
		"rack_id":     rackID,
		"box_numbers": []int{1, 9},
	}, true)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestDuplicateRackCodeConflict(t *testing.T) {
	ts := newTestServer(t)
	ts.createRack(t, "Aisle 3", 5)

	w := ts.do(t, http.MethodPost, "/v1/racks", gin.H{
		"code":           "Aisle 3",
		"capacity_total": 5,
	}, true)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestScanEndpoint(t *testing.T) {
	ts := newTestServer(t)
	shipmentID := ts.intake(t, 1, 1)

	w := ts.do(t, http.MethodGet, "/v1/shipments/"+shipmentID, nil, true)
	require.Equal(t, http.StatusOK, w.Code)
	barcode := decodeData(t, w)["barcode"].(string)

	w = ts.do(t, http.MethodPost, "/v1/scan", gin.H{"code": barcode}, true)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	data := decodeData(t, w)
	assert.Equal(t, "barcode", data["kind"])

	w = ts.do(t, http.MethodPost, "/v1/scan", gin.H{"code": "nonsense"}, true)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestChargePreviewEndpoint(t *testing.T) {
	ts := newTestServer(t)
	shipmentID := ts.intake(t, 1, 2)

	w := ts.do(t, http.MethodGet, "/v1/shipments/"+shipmentID+"/charges/preview", nil, true)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	data := decodeData(t, w)
	// No billing settings configured: the quote degrades to zero.
	assert.Equal(t, "0", fmt.Sprint(data["total"]))
}

func TestRackActivityExportCSV(t *testing.T) {
	ts := newTestServer(t)
	shipmentID := ts.intake(t, 1, 2)
	rackID := ts.createRack(t, "Aisle 4", 5)

	w := ts.do(t, http.MethodPost, "/v1/shipments/"+shipmentID+"/assign-boxes", gin.H{
		"rack_id":     rackID,
		"box_numbers": []int{1, 2},
	}, true)
	require.Equal(t, http.StatusOK, w.Code)

	day := testTime.Format("2006-01-02")
	w = ts.do(t, http.MethodGet, "/v1/racks/"+rackID+"/activity/export?start_date="+day+"&end_date="+day, nil, true)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "1", w.Header().Get("X-Export-Count"))
	assert.NotEmpty(t, w.Header().Get("X-Export-Checksum"))
	assert.Contains(t, w.Body.String(), "quantity_after")
}

func TestHealthEndpoints(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodGet, "/healthz", nil, false)
	assert.Equal(t, http.StatusOK, w.Code)

	w = ts.do(t, http.MethodGet, "/readyz", nil, false)
	assert.Equal(t, http.StatusOK, w.Code)

	w = ts.do(t, http.MethodGet, "/metrics", nil, false)
	assert.Equal(t, http.StatusOK, w.Code)
}
