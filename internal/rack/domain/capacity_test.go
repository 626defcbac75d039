package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func refs(shipmentID int64, perPallet int, boxNumbers ...int) []PalletRef {
	out := make([]PalletRef, 0, len(boxNumbers))
	for _, n := range boxNumbers {
		out = append(out, PalletRef{ShipmentID: shipmentID, BoxNumber: n, BoxesPerPallet: perPallet})
	}
	return out
}

func TestOccupiedPalletSlots(t *testing.T) {
	cases := []struct {
		name string
		in   []PalletRef
		want int
	}{
		{"empty", nil, 0},
		{"two full pallets", refs(1, 4, 1, 2, 3, 4, 5, 6, 7, 8), 2},
		{"sparse boxes still two groups", refs(1, 4, 1, 5), 2},
		{"unset ratio means one box per slot", refs(1, 0, 1, 2, 3), 3},
		{"negative ratio treated as one", refs(1, -2, 1, 2), 2},
		{"single pallet partially filled", refs(1, 5, 1, 2, 3), 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, OccupiedPalletSlots(tc.in))
		})
	}
}

func TestOccupiedPalletSlotsMixedShipments(t *testing.T) {
	// Two shipments packed at different densities sharing a rack are counted
	// per their own ratios.
	in := append(refs(1, 5, 1, 2, 3, 4, 5), refs(2, 2, 1, 2, 3, 4)...)
	assert.Equal(t, 3, OccupiedPalletSlots(in))
}

func TestOccupiedPalletSlotsUnknownShipmentGroup(t *testing.T) {
	// Missing shipment linkage collapses into one counted group rather than
	// being dropped.
	in := []PalletRef{
		{ShipmentID: 0, BoxNumber: 1, BoxesPerPallet: 10},
		{ShipmentID: 0, BoxNumber: 2, BoxesPerPallet: 10},
	}
	assert.Equal(t, 1, OccupiedPalletSlots(in))
}

func TestOccupiedPalletSlotsIdempotent(t *testing.T) {
	in := refs(7, 3, 1, 2, 3, 4, 7, 9)
	first := OccupiedPalletSlots(in)
	assert.Equal(t, first, OccupiedPalletSlots(in))
}

func TestRackDerivedStatus(t *testing.T) {
	assert.Equal(t, RackStatusActive, Rack{CapacityTotal: 5, CapacityUsed: 4}.Status())
	assert.Equal(t, RackStatusFull, Rack{CapacityTotal: 5, CapacityUsed: 5}.Status())
	assert.Equal(t, RackStatusFull, Rack{CapacityTotal: 5, CapacityUsed: 7}.Status())
	assert.Equal(t, RackStatusActive, Rack{CapacityTotal: 0, CapacityUsed: 0}.Status())
}
