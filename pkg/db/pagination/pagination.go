// Package pagination implements the opaque page-token scheme shared by list
// endpoints.
package pagination

import (
	"encoding/base64"
	"errors"
	"strconv"
)

const (
	DefaultPageSize = 25
	MaxPageSize     = 200
)

var ErrInvalidPageToken = errors.New("invalid_page_token")

// PageInfo is embedded in list responses.
type PageInfo struct {
	TotalCount    int64  `json:"total_count"`
	NextPageToken string `json:"next_page_token,omitempty"`
}

// ClampPageSize normalizes a requested page size into [1, MaxPageSize].
func ClampPageSize(size int) int {
	if size <= 0 {
		return DefaultPageSize
	}
	if size > MaxPageSize {
		return MaxPageSize
	}
	return size
}

// DecodeToken converts an opaque page token back into a row offset. An empty
// token means the first page.
func DecodeToken(token string) (int, error) {
	if token == "" {
		return 0, nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return 0, ErrInvalidPageToken
	}
	offset, err := strconv.Atoi(string(raw))
	if err != nil || offset < 0 {
		return 0, ErrInvalidPageToken
	}
	return offset, nil
}

// EncodeToken builds the token for the page starting at offset. It returns
// the empty string when offset is at or past total, meaning no further pages.
func EncodeToken(offset int, total int64) string {
	if int64(offset) >= total {
		return ""
	}
	return base64.RawURLEncoding.EncodeToString([]byte(strconv.Itoa(offset)))
}
