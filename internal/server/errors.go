package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	labelcodes "github.com/warelane/warelane/internal/label"
	rackdomain "github.com/warelane/warelane/internal/rack/domain"
	releasedomain "github.com/warelane/warelane/internal/release/domain"
	scandomain "github.com/warelane/warelane/internal/scan/domain"
	shipmentdomain "github.com/warelane/warelane/internal/shipment/domain"
	"github.com/warelane/warelane/pkg/db/pagination"
)

// ErrInvalidRequest covers malformed bodies and query strings before any
// domain rule gets a say.
var ErrInvalidRequest = errors.New("invalid_request")

type apiError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

func (e *apiError) Error() string { return e.Code }

func invalidRequestError() error {
	return &apiError{Status: http.StatusBadRequest, Code: "invalid_request", Message: "invalid request"}
}

func newValidationError(field, code, message string) error {
	return &apiError{Status: http.StatusUnprocessableEntity, Code: code, Message: message, Field: field}
}

// statusFor maps domain sentinels onto HTTP statuses. Unknown errors are
// internal; their text never leaves the process.
func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, pagination.ErrInvalidPageToken):
		return http.StatusBadRequest

	case errors.Is(err, shipmentdomain.ErrShipmentNotFound),
		errors.Is(err, rackdomain.ErrRackNotFound),
		errors.Is(err, scandomain.ErrUnknownCode):
		return http.StatusNotFound

	case errors.Is(err, shipmentdomain.ErrBoxAlreadyStored),
		errors.Is(err, shipmentdomain.ErrBoxAlreadyReleased),
		errors.Is(err, shipmentdomain.ErrBoxNeverAssigned),
		errors.Is(err, rackdomain.ErrDuplicateRackCode),
		errors.Is(err, releasedomain.ErrPartialReleaseForbidden),
		errors.Is(err, releasedomain.ErrBelowMinimumPartial):
		return http.StatusConflict

	case errors.Is(err, shipmentdomain.ErrInvalidPalletConfig),
		errors.Is(err, shipmentdomain.ErrTooManyBoxes),
		errors.Is(err, shipmentdomain.ErrInvalidBoxNumbers),
		errors.Is(err, rackdomain.ErrInvalidRackCode),
		errors.Is(err, rackdomain.ErrInvalidCapacity),
		errors.Is(err, labelcodes.ErrInvalidBarcode),
		errors.Is(err, labelcodes.ErrInvalidPieceQR),
		errors.Is(err, labelcodes.ErrInvalidRackQR),
		errors.Is(err, labelcodes.ErrInvalidMasterQR),
		errors.Is(err, labelcodes.ErrPieceNumberRange):
		return http.StatusUnprocessableEntity

	default:
		return http.StatusInternalServerError
	}
}

func AbortWithError(c *gin.Context, err error) {
	var api *apiError
	if errors.As(err, &api) {
		c.AbortWithStatusJSON(api.Status, gin.H{"error": api})
		return
	}

	status := statusFor(err)
	body := gin.H{"code": err.Error()}
	if status == http.StatusInternalServerError {
		body = gin.H{"code": "internal_error"}
	}
	c.AbortWithStatusJSON(status, gin.H{"error": body})
}
