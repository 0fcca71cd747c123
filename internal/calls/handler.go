package calls

import (
	"net/http"
	"strconv"

	"propertyvoice_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Handler serves the read-only manager API for call records.
type Handler struct {
	repo *Repository
}

func NewHandler(repo *Repository) *Handler {
	return &Handler{repo: repo}
}

// HandleListCalls returns recent calls, newest first.
func (h *Handler) HandleListCalls(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	records, err := h.repo.List(c.Request.Context(), limit, offset)
	if err != nil {
		httpkit.Error(c, http.StatusInternalServerError, "failed to list calls", nil)
		return
	}

	responses := make([]CallResponse, 0, len(records))
	for _, rec := range records {
		responses = append(responses, toResponse(rec))
	}
	httpkit.OK(c, gin.H{"calls": responses})
}

// HandleGetCall returns one call record by ID.
func (h *Handler) HandleGetCall(c *gin.Context) {
	id, err := uuid.Parse(c.Param("callId"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid call id", nil)
		return
	}

	rec, err := h.repo.GetByID(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, toResponse(rec))
}
