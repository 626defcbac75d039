package server

import (
	"github.com/gin-gonic/gin"
	releasedomain "github.com/warelane/warelane/internal/release/domain"
)

// @Summary      Release Boxes
// @Description  Release stored boxes back to the client; a full release closes
// @Description  the shipment and computes its storage charge
// @Tags         shipments
// @Accept       json
// @Produce      json
// @Param        X-Org-ID  header  string  true  "Organization ID"
// @Param        id   path  string  true  "Shipment ID"
// @Param        request body releasedomain.ReleaseRequest true "Release Request"
// @Success      200  {object}  DataResponse
// @Router       /v1/shipments/{id}/release-boxes [post]
func (s *Server) ReleaseBoxes(c *gin.Context) {
	var req releasedomain.ReleaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.ShipmentID = c.Param("id")

	if !req.ReleaseAll && len(req.BoxNumbers) == 0 {
		AbortWithError(c, newValidationError("box_numbers", "empty_release", "no boxes requested"))
		return
	}

	result, err := s.releaseSvc.Release(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, result)
}

// @Summary      Preview Charges
// @Description  Quote the charge for releasing the remaining boxes now
// @Tags         shipments
// @Produce      json
// @Param        X-Org-ID  header  string  true  "Organization ID"
// @Param        id   path  string  true  "Shipment ID"
// @Success      200  {object}  DataResponse
// @Router       /v1/shipments/{id}/charges/preview [get]
func (s *Server) PreviewCharges(c *gin.Context) {
	breakdown, err := s.releaseSvc.PreviewCharges(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, breakdown)
}
