package service

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/golang/snappy"
	exportdomain "github.com/warelane/warelane/internal/export/domain"
	"github.com/warelane/warelane/internal/orgcontext"
	rackdomain "github.com/warelane/warelane/internal/rack/domain"
	"gorm.io/gorm"
)

type ExportService struct {
	db *gorm.DB
}

func NewExportService(db *gorm.DB) exportdomain.Service {
	return &ExportService{db: db}
}

func (s *ExportService) Export(ctx context.Context, req exportdomain.ExportRequest) (*exportdomain.ExportResult, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, rackdomain.ErrRackNotFound
	}

	query := s.db.WithContext(ctx).Model(&rackdomain.RackActivity{}).
		Where("org_id = ? AND rack_id = ?", orgID, req.RackID).
		Where("created_at >= ? AND created_at < ?", req.StartDate, req.EndDate)
	if len(req.Types) > 0 {
		query = query.Where("type IN ?", req.Types)
	}

	var entries []rackdomain.RackActivity
	if err := query.Order("created_at ASC").Find(&entries).Error; err != nil {
		return nil, err
	}

	var data []byte
	var err error
	switch req.Format {
	case exportdomain.ExportFormatCSV:
		data, err = formatCSV(entries)
	case exportdomain.ExportFormatJSON:
		data, err = formatJSON(entries)
	default:
		return nil, fmt.Errorf("unsupported export format: %s", req.Format)
	}
	if err != nil {
		return nil, err
	}

	checksum := sha256.Sum256(data)
	result := &exportdomain.ExportResult{
		Data:     data,
		Checksum: hex.EncodeToString(checksum[:]),
		Format:   req.Format,
		Count:    len(entries),
	}
	if req.Compress {
		result.Data = snappy.Encode(nil, data)
		result.Compressed = true
	}
	return result, nil
}

func formatCSV(entries []rackdomain.RackActivity) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{"timestamp", "rack_id", "actor_id", "type", "detail", "quantity_after", "photo_urls"}
	if err := w.Write(header); err != nil {
		return nil, err
	}

	for _, e := range entries {
		photos, _ := json.Marshal(e.PhotoURLs)
		row := []string{
			e.CreatedAt.Format(time.RFC3339),
			e.RackID.String(),
			formatActor(e),
			string(e.Type),
			e.Detail,
			strconv.Itoa(e.QuantityAfter),
			string(photos),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func formatJSON(entries []rackdomain.RackActivity) ([]byte, error) {
	type record struct {
		Timestamp     string         `json:"timestamp"`
		RackID        string         `json:"rack_id"`
		ActorID       string         `json:"actor_id,omitempty"`
		Type          string         `json:"type"`
		Detail        string         `json:"detail,omitempty"`
		QuantityAfter int            `json:"quantity_after"`
		PhotoURLs     map[string]any `json:"photo_urls,omitempty"`
	}

	records := make([]record, 0, len(entries))
	for _, e := range entries {
		records = append(records, record{
			Timestamp:     e.CreatedAt.Format(time.RFC3339),
			RackID:        e.RackID.String(),
			ActorID:       formatActor(e),
			Type:          string(e.Type),
			Detail:        e.Detail,
			QuantityAfter: e.QuantityAfter,
			PhotoURLs:     e.PhotoURLs,
		})
	}
	return json.MarshalIndent(records, "", "  ")
}

func formatActor(e rackdomain.RackActivity) string {
	if e.ActorID == 0 {
		return ""
	}
	return e.ActorID.String()
}
