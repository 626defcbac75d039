package server

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	shipmentdomain "github.com/warelane/warelane/internal/shipment/domain"
	"github.com/warelane/warelane/pkg/db/pagination"
)

type createShipmentRequest struct {
	ReferenceCode  string         `json:"reference_code"`
	ClientName     string         `json:"client_name" binding:"required"`
	ClientPhone    string         `json:"client_phone"`
	PalletCount    int            `json:"pallet_count" binding:"required,min=1"`
	BoxesPerPallet int            `json:"boxes_per_pallet" binding:"required,min=1"`
	ChargePolicy   string         `json:"charge_policy"`
	ArrivalDate    *time.Time     `json:"arrival_date"`
	WarehouseData  map[string]any `json:"warehouse_data"`
}

// @Summary      Intake Shipment
// @Description  Register a shipment and generate its box set and labels
// @Tags         shipments
// @Accept       json
// @Produce      json
// @Param        X-Org-ID  header  string  true  "Organization ID"
// @Param        request body createShipmentRequest true "Intake Request"
// @Success      200  {object}  DataResponse
// @Router       /v1/shipments [post]
func (s *Server) CreateShipment(c *gin.Context) {
	var req createShipmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	policy := shipmentdomain.ChargePolicy(strings.TrimSpace(req.ChargePolicy))
	switch policy {
	case "", shipmentdomain.ChargePolicyMinimumFloor, shipmentdomain.ChargePolicyGracePeriod:
	default:
		AbortWithError(c, newValidationError("charge_policy", "invalid_charge_policy", "unknown charge policy"))
		return
	}

	sh, err := s.shipmentSvc.Intake(c.Request.Context(), shipmentdomain.CreateIntakeRequest{
		ReferenceCode:  strings.TrimSpace(req.ReferenceCode),
		ClientName:     strings.TrimSpace(req.ClientName),
		ClientPhone:    strings.TrimSpace(req.ClientPhone),
		PalletCount:    req.PalletCount,
		BoxesPerPallet: req.BoxesPerPallet,
		ChargePolicy:   policy,
		ArrivalDate:    req.ArrivalDate,
		WarehouseData:  req.WarehouseData,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondData(c, sh)
}

// @Summary      List Shipments
// @Description  List shipments, optionally filtered by status
// @Tags         shipments
// @Produce      json
// @Param        X-Org-ID  header  string  true  "Organization ID"
// @Param        status      query  string  false  "Comma-separated statuses"
// @Param        page_token  query  string  false  "Page Token"
// @Param        page_size   query  int     false  "Page Size"
// @Success      200  {object}  ListResponse
// @Router       /v1/shipments [get]
func (s *Server) ListShipments(c *gin.Context) {
	var query struct {
		Status    string `form:"status"`
		PageToken string `form:"page_token"`
		PageSize  int    `form:"page_size"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	var statuses []shipmentdomain.ShipmentStatus
	for _, raw := range strings.Split(query.Status, ",") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		switch st := shipmentdomain.ShipmentStatus(raw); st {
		case shipmentdomain.ShipmentStatusPending,
			shipmentdomain.ShipmentStatusInStorage,
			shipmentdomain.ShipmentStatusPartial,
			shipmentdomain.ShipmentStatusReleased:
			statuses = append(statuses, st)
		default:
			AbortWithError(c, newValidationError("status", "invalid_status", "unknown shipment status"))
			return
		}
	}

	resp, err := s.shipmentSvc.List(c.Request.Context(), shipmentdomain.ListShipmentsRequest{
		Statuses:  statuses,
		PageSize:  query.PageSize,
		PageToken: query.PageToken,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondList(c, resp.Shipments, &resp.PageInfo)
}

// @Summary      Get Shipment
// @Tags         shipments
// @Produce      json
// @Param        X-Org-ID  header  string  true  "Organization ID"
// @Param        id   path  string  true  "Shipment ID"
// @Success      200  {object}  DataResponse
// @Router       /v1/shipments/{id} [get]
func (s *Server) GetShipment(c *gin.Context) {
	sh, err := s.shipmentSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, sh)
}

// @Summary      List Shipment Boxes
// @Description  List every box of a shipment with its rack location
// @Tags         shipments
// @Produce      json
// @Param        X-Org-ID  header  string  true  "Organization ID"
// @Param        id   path  string  true  "Shipment ID"
// @Success      200  {object}  ListResponse
// @Router       /v1/shipments/{id}/boxes [get]
func (s *Server) ListShipmentBoxes(c *gin.Context) {
	boxes, err := s.shipmentSvc.ListBoxes(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondList(c, boxes, &pagination.PageInfo{TotalCount: int64(len(boxes))})
}
