package domain

// PalletRef locates one box inside its shipment's pallet grouping. A zero
// ShipmentID is allowed and forms a single unknown group; a box's existence
// always consumes capacity.
type PalletRef struct {
	ShipmentID     int64
	BoxNumber      int
	BoxesPerPallet int
}

type palletKey struct {
	shipmentID  int64
	palletIndex int
}

// OccupiedPalletSlots counts the distinct pallet slots a set of boxes
// occupies. Boxes group into pallets by ceil(boxNumber / boxesPerPallet)
// within their shipment; one pallet consumes exactly one rack slot however
// many boxes it holds. Pure and idempotent: the same box set always yields
// the same count.
func OccupiedPalletSlots(refs []PalletRef) int {
	if len(refs) == 0 {
		return 0
	}
	seen := make(map[palletKey]struct{}, len(refs))
	for _, ref := range refs {
		perPallet := ref.BoxesPerPallet
		if perPallet <= 0 {
			perPallet = 1
		}
		idx := (ref.BoxNumber + perPallet - 1) / perPallet
		seen[palletKey{shipmentID: ref.ShipmentID, palletIndex: idx}] = struct{}{}
	}
	return len(seen)
}
