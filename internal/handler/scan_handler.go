package handler

import (
	"net/http"

	"github.com/admitra/admitra-backend/internal/middleware"
	"github.com/admitra/admitra-backend/internal/model"
	"github.com/admitra/admitra-backend/internal/response"
	"github.com/admitra/admitra-backend/internal/service"
	"github.com/admitra/admitra-backend/internal/validator"
	"github.com/gin-gonic/gin"
)

// ScanHandler handles check-in validation from proctor devices.
type ScanHandler struct {
	scanService *service.ScanService
}

// NewScanHandler creates a new ScanHandler.
func NewScanHandler(scanService *service.ScanService) *ScanHandler {
	return &ScanHandler{scanService: scanService}
}

// Scan godoc
// POST /api/v1/scan
// Validates a scanned admission QR. A rejected token answers HTTP 200 with
// result "invalid" — the ledger treats it as a normal, recorded outcome, not
// a request error.
func (h *ScanHandler) Scan(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req model.ScanRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	verdict, err := h.scanService.Validate(c.Request.Context(), service.ScanInput{
		Payload:    req.QRPayload,
		Signature:  req.QRSignature,
		ProctorID:  claims.UserID,
		DeviceInfo: req.DeviceInfo,
	})
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, verdict)
}
