package label

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBarcodeFormat(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	at := time.Date(2024, 10, 13, 9, 30, 0, 0, time.UTC)

	code := Barcode(at, rng)
	require.Len(t, code, 12)
	assert.Equal(t, "WH241013", code[:8])

	date, suffix, err := ParseBarcode(code)
	require.NoError(t, err)
	assert.Equal(t, "241013", date)
	assert.Len(t, suffix, 4)
}

func TestParseBarcodeRejectsGarbage(t *testing.T) {
	for _, code := range []string{"", "WH2410", "XX2410130001", "WH24101300012", "WH24101300ab"} {
		_, _, err := ParseBarcode(code)
		assert.ErrorIs(t, err, ErrInvalidBarcode, code)
	}
}

func TestPieceQRRoundTrip(t *testing.T) {
	qr, err := PieceQR("WH2410130042", 7)
	require.NoError(t, err)
	assert.Equal(t, "PIECE_WH2410130042_007", qr)

	ref, err := ParsePieceQR(qr)
	require.NoError(t, err)
	assert.Equal(t, "WH2410130042", ref.Barcode)
	assert.Equal(t, 7, ref.PieceNumber)
}

func TestPieceQRDateOnlyBarcode(t *testing.T) {
	// Early labels carried the date portion only; those still parse.
	qr, err := PieceQR("WH241013", 7)
	require.NoError(t, err)

	ref, err := ParsePieceQR(qr)
	require.NoError(t, err)
	assert.Equal(t, "WH241013", ref.Barcode)
	assert.Equal(t, 7, ref.PieceNumber)
}

func TestPieceQRRange(t *testing.T) {
	_, err := PieceQR("WH2410130042", 0)
	assert.ErrorIs(t, err, ErrPieceNumberRange)

	_, err = PieceQR("WH2410130042", 1000)
	assert.ErrorIs(t, err, ErrPieceNumberRange)

	qr, err := PieceQR("WH2410130042", MaxPieceNumber)
	require.NoError(t, err)

	ref, err := ParsePieceQR(qr)
	require.NoError(t, err)
	assert.Equal(t, 999, ref.PieceNumber)
}

func TestRackQRRoundTrip(t *testing.T) {
	qr := RackQR("a1-left-3")
	assert.Equal(t, "RACK_a1_left_3", qr)

	code, err := ParseRackQR(qr)
	require.NoError(t, err)
	assert.Equal(t, "a1-left-3", code)

	_, err = ParseRackQR("RACK_")
	assert.ErrorIs(t, err, ErrInvalidRackQR)
}

func TestMasterQRRoundTrip(t *testing.T) {
	issued := time.Date(2024, 10, 13, 9, 30, 0, 0, time.UTC)

	t.Run("with pallet segment", func(t *testing.T) {
		qr := MasterQR("WH2410130042", issued, 2, 5, 10, 3, 10)
		ref, err := ParseMasterQR(qr)
		require.NoError(t, err)
		assert.Equal(t, "WH2410130042", ref.Barcode)
		assert.Equal(t, issued, ref.IssuedAt)
		assert.Equal(t, 2, ref.PalletCount)
		assert.Equal(t, 5, ref.BoxesPerPallet)
		assert.Equal(t, 10, ref.TotalBoxes)
		assert.Equal(t, 3, ref.BoxNumber)
		assert.Equal(t, 10, ref.BoxTotal)
	})

	t.Run("legacy label without pallet segment", func(t *testing.T) {
		qr := MasterQR("WH2410130042", issued, 0, 0, 0, 1, 4)
		ref, err := ParseMasterQR(qr)
		require.NoError(t, err)
		assert.Zero(t, ref.PalletCount)
		assert.Equal(t, 1, ref.BoxNumber)
		assert.Equal(t, 4, ref.BoxTotal)
	})
}

func TestClassify(t *testing.T) {
	cases := []struct {
		raw  string
		want Kind
	}{
		{"PIECE_WH2410130042_007", KindPiece},
		{"RACK_a1_left_3", KindRack},
		{"WH2410130042", KindBarcode},
		{"SHIPMENT-WH2410130042-1728811800-BOX-1-OF-4", KindMaster},
		{"SHIPMENT-WH2410130042-1728811800-P2-BPP5-T10-BOX-3-OF-10", KindMaster},
		{"nonsense", KindUnknown},
		{"", KindUnknown},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Classify(tc.raw), tc.raw)
	}
}
