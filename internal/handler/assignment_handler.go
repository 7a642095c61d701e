package handler

import (
	"errors"
	"net/http"

	"github.com/admitra/admitra-backend/internal/model"
	"github.com/admitra/admitra-backend/internal/repository"
	"github.com/admitra/admitra-backend/internal/response"
	"github.com/admitra/admitra-backend/internal/service"
	"github.com/admitra/admitra-backend/internal/token"
	"github.com/admitra/admitra-backend/internal/validator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const qrImageSize = 512 // px, comfortable for A4 printouts

// AssignmentHandler handles admin-facing assignment issuance.
type AssignmentHandler struct {
	issuanceService *service.IssuanceService
	assignments     *repository.AssignmentRepository
}

// NewAssignmentHandler creates a new AssignmentHandler.
func NewAssignmentHandler(issuanceService *service.IssuanceService, assignments *repository.AssignmentRepository) *AssignmentHandler {
	return &AssignmentHandler{issuanceService: issuanceService, assignments: assignments}
}

// IssueAssignment godoc
// POST /api/v1/admin/assignments
// Assigns an application to an exam session and mints its admission token.
// Fails with 409 when the room is full or the application already holds an
// assignment; no row is written in either case.
func (h *AssignmentHandler) IssueAssignment(c *gin.Context) {
	var req model.IssueAssignmentRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	assignment, err := h.issuanceService.IssueAssignment(
		c.Request.Context(), req.ApplicationID, req.ExamSessionID, req.SeatNumber)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrCapacityExceeded):
			response.Fail(c, http.StatusConflict, response.ErrCapacityExceeded)
		case errors.Is(err, repository.ErrAlreadyAssigned):
			response.Fail(c, http.StatusConflict, response.ErrAlreadyAssigned)
		case errors.Is(err, pgx.ErrNoRows):
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"assignment": assignment})
}

// GetQRCode godoc
// GET /api/v1/admin/assignments/:id/qr.png
// Renders the assignment's admission token as a QR PNG for printing.
func (h *AssignmentHandler) GetQRCode(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	assignment, err := h.assignments.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	png, err := token.RenderQR(assignment.Payload, assignment.Signature, qrImageSize)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	c.Data(http.StatusOK, "image/png", png)
}
