package server

import (
	"github.com/gin-gonic/gin"
	scandomain "github.com/warelane/warelane/internal/scan/domain"
)

// @Summary      Scan Code
// @Description  Resolve any scanned label (piece QR, rack QR, barcode, master QR)
// @Tags         scan
// @Accept       json
// @Produce      json
// @Param        X-Org-ID  header  string  true  "Organization ID"
// @Param        request body scandomain.ScanRequest true "Scan Request"
// @Success      200  {object}  DataResponse
// @Router       /v1/scan [post]
func (s *Server) Scan(c *gin.Context) {
	var req scandomain.ScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	result, err := s.scanSvc.Resolve(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, result)
}
