// Package label generates and parses the barcode/QR identifiers printed on
// shipments, individual pieces and racks. Formats are a wire contract with
// physical labels already in circulation; widening any of them requires a
// format version bump.
package label

import (
	"errors"
	"fmt"
	"math/rand"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	barcodePrefix = "WH"
	piecePrefix   = "PIECE_"
	rackPrefix    = "RACK_"
	masterPrefix  = "SHIPMENT-"

	// MaxPieceNumber is the largest box number representable by the
	// three-digit piece QR padding.
	MaxPieceNumber = 999
)

var (
	ErrInvalidBarcode   = errors.New("invalid_barcode")
	ErrInvalidPieceQR   = errors.New("invalid_piece_qr")
	ErrInvalidRackQR    = errors.New("invalid_rack_qr")
	ErrInvalidMasterQR  = errors.New("invalid_master_qr")
	ErrPieceNumberRange = errors.New("piece_number_out_of_range")
)

var (
	barcodeRe = regexp.MustCompile(`^WH(\d{6})(\d{4})$`)
	pieceRe   = regexp.MustCompile(`^PIECE_(WH\d+)_(\d{3})$`)
	masterRe  = regexp.MustCompile(`^SHIPMENT-(WH\d{10})-(\d+)(?:-P(\d+)-BPP(\d+)-T(\d+))?-BOX-(\d+)-OF-(\d+)$`)
)

// Barcode identifies a shipment: WH + YYMMDD + 4 random digits. The suffix is
// only locally distinguishable per day; global uniqueness is enforced by the
// database, not the format.
func Barcode(at time.Time, rng *rand.Rand) string {
	suffix := rng.Intn(10000)
	return fmt.Sprintf("%s%s%04d", barcodePrefix, at.Format("060102"), suffix)
}

// ParseBarcode validates a shipment barcode and returns its date and suffix
// portions.
func ParseBarcode(code string) (date string, suffix string, err error) {
	m := barcodeRe.FindStringSubmatch(strings.TrimSpace(code))
	if m == nil {
		return "", "", ErrInvalidBarcode
	}
	return m[1], m[2], nil
}

// PieceRef is the decoded form of a piece QR.
type PieceRef struct {
	Barcode     string
	PieceNumber int
}

// PieceQR encodes one box of a shipment. Numbers above MaxPieceNumber do not
// fit the padding and are rejected rather than truncated.
func PieceQR(barcode string, pieceNumber int) (string, error) {
	if pieceNumber < 1 || pieceNumber > MaxPieceNumber {
		return "", ErrPieceNumberRange
	}
	return fmt.Sprintf("%s%s_%03d", piecePrefix, barcode, pieceNumber), nil
}

// ParsePieceQR reverses PieceQR.
func ParsePieceQR(code string) (PieceRef, error) {
	m := pieceRe.FindStringSubmatch(strings.TrimSpace(code))
	if m == nil {
		return PieceRef{}, ErrInvalidPieceQR
	}
	n, err := strconv.Atoi(m[2])
	if err != nil || n < 1 {
		return PieceRef{}, ErrInvalidPieceQR
	}
	return PieceRef{Barcode: m[1], PieceNumber: n}, nil
}

// RackQR encodes a rack code, substituting '-' with '_'. The substitution is
// ambiguous when the rack code itself contains underscores; kept as-is for
// compatibility with printed rack labels.
func RackQR(rackCode string) string {
	return rackPrefix + strings.ReplaceAll(rackCode, "-", "_")
}

// ParseRackQR reverses RackQR.
func ParseRackQR(code string) (string, error) {
	code = strings.TrimSpace(code)
	if !strings.HasPrefix(code, rackPrefix) || len(code) == len(rackPrefix) {
		return "", ErrInvalidRackQR
	}
	return strings.ReplaceAll(strings.TrimPrefix(code, rackPrefix), "_", "-"), nil
}

// MasterRef is the decoded form of a master shipment QR.
type MasterRef struct {
	Barcode        string
	IssuedAt       time.Time
	PalletCount    int
	BoxesPerPallet int
	TotalBoxes     int
	BoxNumber      int
	BoxTotal       int
}

// MasterQR builds the per-box master shipment QR. Pallet configuration is
// optional; the -BOX-n-OF-total suffix is always present.
func MasterQR(barcode string, issuedAt time.Time, palletCount, boxesPerPallet, totalBoxes, boxNumber, boxTotal int) string {
	var b strings.Builder
	b.WriteString(masterPrefix)
	b.WriteString(barcode)
	fmt.Fprintf(&b, "-%d", issuedAt.Unix())
	if palletCount > 0 && boxesPerPallet > 0 {
		fmt.Fprintf(&b, "-P%d-BPP%d-T%d", palletCount, boxesPerPallet, totalBoxes)
	}
	fmt.Fprintf(&b, "-BOX-%d-OF-%d", boxNumber, boxTotal)
	return b.String()
}

// ParseMasterQR parses a master shipment QR. Parsing is structured but accepts
// every string MasterQR has ever generated, including labels without the
// pallet segment.
func ParseMasterQR(code string) (MasterRef, error) {
	m := masterRe.FindStringSubmatch(strings.TrimSpace(code))
	if m == nil {
		return MasterRef{}, ErrInvalidMasterQR
	}
	unix, err := strconv.ParseInt(m[2], 10, 64)
	if err != nil {
		return MasterRef{}, ErrInvalidMasterQR
	}
	ref := MasterRef{
		Barcode:  m[1],
		IssuedAt: time.Unix(unix, 0).UTC(),
	}
	if m[3] != "" {
		ref.PalletCount, _ = strconv.Atoi(m[3])
		ref.BoxesPerPallet, _ = strconv.Atoi(m[4])
		ref.TotalBoxes, _ = strconv.Atoi(m[5])
	}
	ref.BoxNumber, _ = strconv.Atoi(m[6])
	ref.BoxTotal, _ = strconv.Atoi(m[7])
	if ref.BoxNumber < 1 || ref.BoxTotal < 1 {
		return MasterRef{}, ErrInvalidMasterQR
	}
	return ref, nil
}

// Kind classifies a scanned string.
type Kind string

const (
	KindPiece   Kind = "piece"
	KindRack    Kind = "rack"
	KindBarcode Kind = "barcode"
	KindMaster  Kind = "master"
	KindUnknown Kind = "unknown"
)

// Classify inspects a raw scan and reports which label family it belongs to.
// It does not validate the referenced entity exists.
func Classify(raw string) Kind {
	raw = strings.TrimSpace(raw)
	switch {
	case pieceRe.MatchString(raw):
		return KindPiece
	case strings.HasPrefix(raw, rackPrefix) && len(raw) > len(rackPrefix):
		return KindRack
	case masterRe.MatchString(raw):
		return KindMaster
	case barcodeRe.MatchString(raw):
		return KindBarcode
	default:
		return KindUnknown
	}
}
