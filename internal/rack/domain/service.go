package domain

import (
	"context"

	"github.com/warelane/warelane/pkg/db/pagination"
)

type CreateRackRequest struct {
	Code          string `json:"code" binding:"required"`
	CapacityTotal int    `json:"capacity_total" binding:"required,min=1"`
}

type ListRacksRequest struct {
	PageSize  int
	PageToken string
}

type ListRacksResponse struct {
	pagination.PageInfo
	Racks []RackView `json:"racks"`
}

// RackView is a rack plus its derived status for API responses.
type RackView struct {
	Rack
	Status RackStatus `json:"status"`
}

type ListActivityResponse struct {
	pagination.PageInfo
	Activity []RackActivity `json:"activity"`
}

type Service interface {
	Create(ctx context.Context, req CreateRackRequest) (*Rack, error)
	Get(ctx context.Context, id string) (*RackView, error)
	List(ctx context.Context, req ListRacksRequest) (ListRacksResponse, error)
	ListActivity(ctx context.Context, rackID string, req ListRacksRequest) (ListActivityResponse, error)
}
