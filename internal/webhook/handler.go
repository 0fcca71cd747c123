package webhook

import (
	"io"
	"net/http"

	"propertyvoice_backend/platform/httpkit"
	"propertyvoice_backend/platform/logger"

	"github.com/gin-gonic/gin"
)

// maxBodyBytes caps a notification body; transcripts are text and never
// legitimately reach this size.
const maxBodyBytes = 4 << 20

// Handler receives the voice platform's call-ended notifications.
type Handler struct {
	svc *Service
	log *logger.Logger
}

func NewHandler(svc *Service, log *logger.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

// HandleCallEnded runs the pipeline. The platform always gets a success
// acknowledgment unless the call record itself could not be saved, in
// which case a retryable error status tells it to redeliver.
func (h *Handler) HandleCallEnded(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBodyBytes))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "failed to read request body", err.Error())
		return
	}

	outcome, err := h.svc.Process(c.Request.Context(), body)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}

	message := "Call processed successfully"
	if outcome.Replayed {
		message = "Call already processed"
	}

	httpkit.OK(c, gin.H{
		"status":  "success",
		"call_id": outcome.CallID,
		"state":   outcome.State,
		"message": message,
	})
}
