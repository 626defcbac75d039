package server

import (
	"github.com/gin-gonic/gin"
	rackdomain "github.com/warelane/warelane/internal/rack/domain"
)

// @Summary      Create Rack
// @Description  Register a rack and mint its QR label
// @Tags         racks
// @Accept       json
// @Produce      json
// @Param        X-Org-ID  header  string  true  "Organization ID"
// @Param        request body rackdomain.CreateRackRequest true "Create Rack Request"
// @Success      200  {object}  DataResponse
// @Router       /v1/racks [post]
func (s *Server) CreateRack(c *gin.Context) {
	var req rackdomain.CreateRackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	rack, err := s.rackSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, rack)
}

// @Summary      List Racks
// @Tags         racks
// @Produce      json
// @Param        X-Org-ID  header  string  true  "Organization ID"
// @Param        page_token  query  string  false  "Page Token"
// @Param        page_size   query  int     false  "Page Size"
// @Success      200  {object}  ListResponse
// @Router       /v1/racks [get]
func (s *Server) ListRacks(c *gin.Context) {
	var query struct {
		PageToken string `form:"page_token"`
		PageSize  int    `form:"page_size"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.rackSvc.List(c.Request.Context(), rackdomain.ListRacksRequest{
		PageSize:  query.PageSize,
		PageToken: query.PageToken,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondList(c, resp.Racks, &resp.PageInfo)
}

// @Summary      Get Rack
// @Tags         racks
// @Produce      json
// @Param        X-Org-ID  header  string  true  "Organization ID"
// @Param        id   path  string  true  "Rack ID"
// @Success      200  {object}  DataResponse
// @Router       /v1/racks/{id} [get]
func (s *Server) GetRack(c *gin.Context) {
	rack, err := s.rackSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, rack)
}

// @Summary      List Rack Activity
// @Description  Append-only assignment and release history for a rack
// @Tags         racks
// @Produce      json
// @Param        X-Org-ID  header  string  true  "Organization ID"
// @Param        id   path  string  true  "Rack ID"
// @Param        page_token  query  string  false  "Page Token"
// @Param        page_size   query  int     false  "Page Size"
// @Success      200  {object}  ListResponse
// @Router       /v1/racks/{id}/activity [get]
func (s *Server) ListRackActivity(c *gin.Context) {
	var query struct {
		PageToken string `form:"page_token"`
		PageSize  int    `form:"page_size"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.rackSvc.ListActivity(c.Request.Context(), c.Param("id"), rackdomain.ListRacksRequest{
		PageSize:  query.PageSize,
		PageToken: query.PageToken,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondList(c, resp.Activity, &resp.PageInfo)
}
