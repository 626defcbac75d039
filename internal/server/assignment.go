package server

import (
	"github.com/gin-gonic/gin"
	assignmentdomain "github.com/warelane/warelane/internal/assignment/domain"
)

// @Summary      Assign Boxes
// @Description  Place a batch of pending boxes onto a rack, all-or-nothing
// @Tags         shipments
// @Accept       json
// @Produce      json
// @Param        X-Org-ID  header  string  true  "Organization ID"
// @Param        id   path  string  true  "Shipment ID"
// @Param        request body assignmentdomain.AssignRequest true "Assign Request"
// @Success      200  {object}  DataResponse
// @Router       /v1/shipments/{id}/assign-boxes [post]
func (s *Server) AssignBoxes(c *gin.Context) {
	var req assignmentdomain.AssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.ShipmentID = c.Param("id")

	result, err := s.assignSvc.Assign(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, result)
}
