package tours

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"propertyvoice_backend/platform/httpkit"
	"propertyvoice_backend/platform/logger"

	"github.com/gin-gonic/gin"
)

// Handler serves the live-call tour scheduling tool and the admin listing.
type Handler struct {
	svc  *Service
	repo *Repository
	log  *logger.Logger
}

func NewHandler(svc *Service, repo *Repository, log *logger.Logger) *Handler {
	return &Handler{svc: svc, repo: repo, log: log}
}

// scheduleTourRequest uses `any` for the numeric fields because the voice
// platform sends them as either numbers or spoken strings.
type scheduleTourRequest struct {
	Name          string `json:"name"`
	Phone         string `json:"phone"`
	Email         string `json:"email"`
	PreferredDate string `json:"preferred_date"`
	Date          string `json:"date"`
	PreferredTime string `json:"preferred_time"`
	Time          string `json:"time"`
	Bedrooms      any    `json:"bedrooms"`
	Budget        any    `json:"budget"`
	MoveInDate    string `json:"move_in_date"`
}

type toolResponse struct {
	Response string `json:"response"`
}

// Spoken responses for the voice agent.
const (
	askNameSpeech = "I'd be happy to schedule a tour for you! May I have your name please?"

	askContactSpeechFmt = "Thanks, %s! What's the best phone number or email to reach you at?"

	tourConfirmedSpeechFmt = "Wonderful, %s! I've scheduled your tour for %s at %s. " +
		"You'll receive a confirmation email shortly with all the details. " +
		"Our leasing office is located at the main entrance. " +
		"Is there anything specific you'd like us to prepare for your visit?"

	tourDateOnlySpeechFmt = "Great, %s! I've noted your preference for %s. " +
		"Our leasing team will call you shortly to confirm the exact time. " +
		"Is morning or afternoon generally better for you?"

	tourPendingSpeechFmt = "Perfect, %s! I've added you to our tour schedule. " +
		"Our leasing team will reach out within the next few hours to find a time that works for you. " +
		"In the meantime, is there anything specific you'd like to know about the property?"

	tourErrorSpeechFmt = "I apologize %s, I'm having trouble with our scheduling system. " +
		"Let me take your information and have our leasing team call you directly. " +
		"They'll reach out within the hour. What's the best number to reach you?"
)

// HandleScheduleTour books a tour from a live call. Missing details come
// back as spoken follow-up questions rather than HTTP errors.
func (h *Handler) HandleScheduleTour(c *gin.Context) {
	var req scheduleTourRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		httpkit.OK(c, toolResponse{Response: askNameSpeech})
		return
	}
	if strings.TrimSpace(req.Phone) == "" && strings.TrimSpace(req.Email) == "" {
		httpkit.OK(c, toolResponse{Response: fmt.Sprintf(askContactSpeechFmt, name)})
		return
	}

	date := firstNonEmpty(req.PreferredDate, req.Date)
	timeOfDay := firstNonEmpty(req.PreferredTime, req.Time)

	result, err := h.svc.Schedule(c.Request.Context(), ScheduleInput{
		VisitorName:        name,
		VisitorPhone:       req.Phone,
		VisitorEmail:       req.Email,
		PreferredDate:      date,
		PreferredTime:      timeOfDay,
		BedroomsInterested: coerceInt(req.Bedrooms),
		MaxBudgetCents:     coerceMoneyCents(req.Budget),
		MoveInDate:         req.MoveInDate,
	})
	if err != nil {
		h.log.Error("schedule tour failed", "error", err)
		httpkit.OK(c, toolResponse{Response: fmt.Sprintf(tourErrorSpeechFmt, name)})
		return
	}

	httpkit.OK(c, toolResponse{Response: tourSpeech(result.Tour)})
}

func tourSpeech(t TourRequest) string {
	switch {
	case t.PreferredDate != "" && t.PreferredTime != "":
		return fmt.Sprintf(tourConfirmedSpeechFmt, t.VisitorName, t.PreferredDate, t.PreferredTime)
	case t.PreferredDate != "":
		return fmt.Sprintf(tourDateOnlySpeechFmt, t.VisitorName, t.PreferredDate)
	default:
		return fmt.Sprintf(tourPendingSpeechFmt, t.VisitorName)
	}
}

// HandleListTours returns recent tour requests for back-office review.
func (h *Handler) HandleListTours(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	tours, err := h.repo.List(c.Request.Context(), c.Query("status"), limit, offset)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, gin.H{"tours": tours, "count": len(tours)})
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}

// coerceInt parses a loosely typed number from the voice platform.
func coerceInt(v any) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case string:
		if i, err := strconv.Atoi(strings.TrimSpace(n)); err == nil {
			return i
		}
	}
	return 0
}

// coerceMoneyCents parses a dollar amount that may arrive as a number or
// a spoken string like "$1,800" and converts it to cents.
func coerceMoneyCents(v any) int64 {
	switch n := v.(type) {
	case float64:
		return int64(n * 100)
	case string:
		cleaned := strings.TrimSpace(strings.ReplaceAll(strings.TrimPrefix(strings.TrimSpace(n), "$"), ",", ""))
		if f, err := strconv.ParseFloat(cleaned, 64); err == nil {
			return int64(f * 100)
		}
	}
	return 0
}
