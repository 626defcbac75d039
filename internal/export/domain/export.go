package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
)

// ExportFormat selects the serialization for rack activity exports.
type ExportFormat string

const (
	ExportFormatCSV  ExportFormat = "csv"
	ExportFormatJSON ExportFormat = "json"
)

// ExportRequest bounds one rack activity export. The date range is half-open:
// entries at EndDate are excluded.
type ExportRequest struct {
	RackID    snowflake.ID
	StartDate time.Time
	EndDate   time.Time
	Format    ExportFormat
	Types     []string
	// Compress wraps the payload in snappy block format for large pulls.
	Compress bool
}

// ExportResult carries the payload plus a SHA-256 checksum computed over the
// uncompressed bytes so receivers can verify integrity after decompression.
type ExportResult struct {
	Data       []byte
	Checksum   string
	Format     ExportFormat
	Count      int
	Compressed bool
}

type Service interface {
	Export(ctx context.Context, req ExportRequest) (*ExportResult, error)
}
