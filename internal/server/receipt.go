package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// @Summary      Release Receipt
// @Description  Download the PDF receipt for a shipment's release
// @Tags         shipments
// @Produce      application/pdf
// @Param        X-Org-ID  header  string  true  "Organization ID"
// @Param        id   path  string  true  "Shipment ID"
// @Success      200  {file}  file
// @Router       /v1/shipments/{id}/receipt [get]
func (s *Server) ReleaseReceipt(c *gin.Context) {
	pdf, err := s.receiptSvc.ReleaseReceipt(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="release-receipt.pdf"`)
	c.Data(http.StatusOK, "application/pdf", pdf)
}
