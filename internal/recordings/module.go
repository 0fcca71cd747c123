package recordings

import (
	"net/http"

	"propertyvoice_backend/internal/calls"
	"propertyvoice_backend/internal/events"
	apphttp "propertyvoice_backend/internal/http"
	"propertyvoice_backend/platform/apperr"
	"propertyvoice_backend/platform/httpkit"
	"propertyvoice_backend/platform/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Module is the recordings module implementing http.Module. It owns the
// archive store, the event-driven archiver and the playback URL endpoint.
type Module struct {
	store    *Store
	archiver *Archiver
	repo     *calls.Repository
	log      *logger.Logger
}

// NewModule creates the recordings module and subscribes the archiver.
func NewModule(store *Store, repo *calls.Repository, bus events.Bus, log *logger.Logger) *Module {
	archiver := NewArchiver(store, repo, log)
	archiver.Subscribe(bus)
	return &Module{store: store, archiver: archiver, repo: repo, log: log}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "recordings"
}

// RegisterRoutes mounts the playback URL endpoint.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Protected.GET("/calls/:callId/recording", m.handleRecordingURL)
}

// handleRecordingURL returns a presigned link to the archived recording,
// falling back to the voice platform's URL when archival hasn't happened.
func (m *Module) handleRecordingURL(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}

	callID, err := uuid.Parse(c.Param("callId"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid call id", err.Error())
		return
	}

	rec, err := m.repo.GetByID(c.Request.Context(), callID)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}

	if rec.RecordingKey != nil && *rec.RecordingKey != "" {
		url, expiresAt, err := m.store.DownloadURL(c.Request.Context(), *rec.RecordingKey)
		if err != nil {
			httpkit.HandleError(c, err)
			return
		}
		// Call audio is sensitive; keep a trace of who pulled the link.
		m.log.Info("recording link issued", "callId", callID, "userId", id.UserID())
		httpkit.OK(c, gin.H{"url": url, "expiresAt": expiresAt, "archived": true})
		return
	}

	if rec.RecordingURL != nil && *rec.RecordingURL != "" {
		httpkit.OK(c, gin.H{"url": *rec.RecordingURL, "archived": false})
		return
	}

	httpkit.HandleError(c, apperr.NotFound("no recording for call").WithOp("recordings.handleRecordingURL"))
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
