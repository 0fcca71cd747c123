package maintenance

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"propertyvoice_backend/internal/units"
	"propertyvoice_backend/platform/apperr"
	"propertyvoice_backend/platform/httpkit"
	"propertyvoice_backend/platform/logger"

	"github.com/gin-gonic/gin"
)

// Handler serves the live-call ticket and troubleshooting tools plus the
// admin ticket listing.
type Handler struct {
	svc   *Service
	repo  *Repository
	units *units.Repository
	log   *logger.Logger
}

func NewHandler(svc *Service, repo *Repository, unitsRepo *units.Repository, log *logger.Logger) *Handler {
	return &Handler{svc: svc, repo: repo, units: unitsRepo, log: log}
}

type createTicketRequest struct {
	UnitNumber  string `json:"unit_number"`
	IssueType   string `json:"issue_type"`
	Description string `json:"description"`
	Urgency     string `json:"urgency"`
	CallerName  string `json:"caller_name"`
	CallerPhone string `json:"caller_phone"`
}

type toolResponse struct {
	Response string `json:"response"`
}

// Spoken responses for the voice agent.
const (
	askUnitNumberSpeech = "I need your unit number to create a maintenance ticket. What unit do you live in?"

	unknownUnitSpeechFmt = "I couldn't find unit %s in our system. " +
		"Could you double-check that unit number for me? " +
		"It should be something like 101, 2B, or similar."

	ticketErrorSpeech = "I apologize, but I'm having trouble creating the ticket right now. " +
		"Let me transfer you to our maintenance team directly."

	emergencyTicketSpeechFmt = "I've created an emergency work order, ticket number %s. " +
		"I'm dispatching our emergency maintenance team right now. " +
		"Someone will be there within 2 hours. Please make sure they can access your unit. " +
		"Is there anything else you need while you wait?"

	urgentTicketSpeechFmt = "I've created an urgent maintenance ticket, number %s. " +
		"Our team will be out within 24 hours to take care of this. " +
		"We'll call you before arriving. Is there a specific time that works best for you?"

	routineTicketSpeechFmt = "I've created maintenance ticket number %s for you. " +
		"Our team will schedule this within 3 to 5 business days. " +
		"We'll call you the day before to confirm a time. " +
		"Is there anything else I can help you with today?"
)

// HandleCreateTicket opens a work order from a live call. Failures come
// back as spoken apologies, never as HTTP errors: the voice platform
// reads the response field to the caller verbatim.
func (h *Handler) HandleCreateTicket(c *gin.Context) {
	var req createTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	unitNumber := strings.TrimSpace(req.UnitNumber)
	if unitNumber == "" {
		httpkit.OK(c, toolResponse{Response: askUnitNumberSpeech})
		return
	}

	ctx := c.Request.Context()
	if _, err := h.units.GetByNumber(ctx, unitNumber); err != nil {
		if apperr.GetKind(err) == apperr.KindNotFound {
			httpkit.OK(c, toolResponse{Response: fmt.Sprintf(unknownUnitSpeechFmt, unitNumber)})
			return
		}
		h.log.DatabaseError("maintenance.HandleCreateTicket", err)
		httpkit.OK(c, toolResponse{Response: ticketErrorSpeech})
		return
	}

	issueType := req.IssueType
	if issueType == "" {
		issueType = "General Maintenance"
	}

	result, err := h.svc.CreateTicket(ctx, CreateTicketInput{
		UnitNumber:  unitNumber,
		IssueType:   issueType,
		Description: req.Description,
		Urgency:     req.Urgency,
		Metadata: map[string]any{
			"caller_name":  req.CallerName,
			"caller_phone": req.CallerPhone,
			"source":       "live_call",
		},
	})
	if err != nil {
		h.log.Error("create ticket failed", "error", err)
		httpkit.OK(c, toolResponse{Response: ticketErrorSpeech})
		return
	}

	httpkit.OK(c, toolResponse{Response: ticketSpeech(result.Ticket)})
}

func ticketSpeech(t Ticket) string {
	switch t.Urgency {
	case UrgencyEmergency:
		return fmt.Sprintf(emergencyTicketSpeechFmt, t.TicketNumber)
	case UrgencyUrgent:
		return fmt.Sprintf(urgentTicketSpeechFmt, t.TicketNumber)
	default:
		return fmt.Sprintf(routineTicketSpeechFmt, t.TicketNumber)
	}
}

type troubleshootRequest struct {
	IssueType   string `json:"issue_type"`
	Description string `json:"description"`
	Urgency     string `json:"urgency"`
}

type troubleshootResponse struct {
	Response            string   `json:"response"`
	Steps               []string `json:"steps"`
	Urgency             string   `json:"urgency"`
	EstimatedResolution string   `json:"estimatedResolution"`
	CanSelfResolve      bool     `json:"canSelfResolve"`
}

// HandleTroubleshoot returns guidance steps for an issue description
// without creating a ticket. Used mid-call before the caller decides
// whether a visit is needed.
func (h *Handler) HandleTroubleshoot(c *gin.Context) {
	var req troubleshootRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	urgency := strings.ToLower(strings.TrimSpace(req.Urgency))
	if !ValidUrgency(urgency) {
		urgency = AnalyzeUrgency(req.Description)
	}
	guidance := Advise(req.IssueType, req.Description, urgency)

	httpkit.OK(c, troubleshootResponse{
		Response:            troubleshootSpeech(guidance, urgency),
		Steps:               guidance.Steps,
		Urgency:             urgency,
		EstimatedResolution: guidance.EstimatedResolution,
		CanSelfResolve:      guidance.CanSelfResolve,
	})
}

func troubleshootSpeech(g Guidance, urgency string) string {
	if urgency == UrgencyEmergency {
		return "This sounds like an emergency. " + g.SafetyWarning +
			" I'm going to create an emergency work order for you right away."
	}

	var b strings.Builder
	b.WriteString("Here are a few things you can try first. ")
	for i, step := range g.Steps {
		fmt.Fprintf(&b, "%d: %s. ", i+1, step)
	}
	b.WriteString("If that doesn't fix it, I can create a maintenance ticket for you. Would you like me to do that?")
	return b.String()
}

// HandleListTickets returns recent tickets for back-office review.
func (h *Handler) HandleListTickets(c *gin.Context) {
	urgency := strings.ToLower(c.Query("urgency"))
	if urgency != "" && !ValidUrgency(urgency) {
		httpkit.Error(c, http.StatusBadRequest, "invalid urgency filter", urgency)
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	tickets, err := h.repo.List(c.Request.Context(), urgency, limit, offset)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, gin.H{"tickets": tickets, "count": len(tickets)})
}
