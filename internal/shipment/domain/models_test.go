package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boxes(statuses ...BoxStatus) []Box {
	out := make([]Box, len(statuses))
	for i, st := range statuses {
		out[i] = Box{BoxNumber: i + 1, Status: st}
	}
	return out
}

func TestDeriveStatus(t *testing.T) {
	cases := []struct {
		name string
		in   []Box
		want ShipmentStatus
	}{
		{"no boxes", nil, ShipmentStatusPending},
		{"all pending", boxes(BoxStatusPending, BoxStatusPending), ShipmentStatusPending},
		{"all stored", boxes(BoxStatusInStorage, BoxStatusInStorage), ShipmentStatusInStorage},
		{"all released", boxes(BoxStatusReleased, BoxStatusReleased), ShipmentStatusReleased},
		{"stored and pending", boxes(BoxStatusInStorage, BoxStatusPending), ShipmentStatusPartial},
		{"stored and released", boxes(BoxStatusInStorage, BoxStatusReleased), ShipmentStatusPartial},
		{"released and pending", boxes(BoxStatusReleased, BoxStatusPending), ShipmentStatusPartial},
		{"all three", boxes(BoxStatusPending, BoxStatusInStorage, BoxStatusReleased), ShipmentStatusPartial},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, DeriveStatus(tc.in))
		})
	}
}

func TestRemainingCount(t *testing.T) {
	assert.Zero(t, RemainingCount(nil))
	assert.Equal(t, 3, RemainingCount(boxes(BoxStatusPending, BoxStatusInStorage, BoxStatusInStorage)))
	assert.Equal(t, 1, RemainingCount(boxes(BoxStatusReleased, BoxStatusReleased, BoxStatusInStorage)))
	assert.Zero(t, RemainingCount(boxes(BoxStatusReleased)))
}

func TestCanAssign(t *testing.T) {
	require.NoError(t, CanAssign(Box{Status: BoxStatusPending}))
	assert.ErrorIs(t, CanAssign(Box{Status: BoxStatusInStorage}), ErrBoxAlreadyStored)
	assert.ErrorIs(t, CanAssign(Box{Status: BoxStatusReleased}), ErrBoxAlreadyReleased)
}

func TestCanRelease(t *testing.T) {
	require.NoError(t, CanRelease(Box{Status: BoxStatusInStorage}))
	assert.ErrorIs(t, CanRelease(Box{Status: BoxStatusPending}), ErrBoxNeverAssigned)
	assert.ErrorIs(t, CanRelease(Box{Status: BoxStatusReleased}), ErrBoxAlreadyReleased)
}
