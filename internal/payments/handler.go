// Package payments serves the static payment information tool for live calls.
package payments

import (
	"net/http"
	"strings"

	"propertyvoice_backend/platform/httpkit"
	"propertyvoice_backend/platform/logger"

	"github.com/gin-gonic/gin"
)

// Handler serves the payment info tool.
type Handler struct {
	log *logger.Logger
}

func NewHandler(log *logger.Logger) *Handler {
	return &Handler{log: log}
}

type paymentInfoRequest struct {
	UnitNumber  string `json:"unit_number"`
	InquiryType string `json:"inquiry_type"`
}

type toolResponse struct {
	Response string `json:"response"`
}

// Spoken payment information. The portal URL is spelled out so the voice
// agent reads it clearly.
const (
	basePaymentSpeech = "For rent payments, you have several convenient options. " +
		"You can pay online through our resident portal at payments dot sunsetapts dot com, " +
		"where you can set up auto-pay or make one-time payments with a credit card or bank transfer. " +
		"You can also drop off a check or money order at our leasing office during business hours, " +
		"Monday through Friday, 9 AM to 5 PM. "

	lateFeeSpeech = "Regarding late fees, rent is due on the 1st of each month, " +
		"with a grace period until the 5th. " +
		"After the 5th, a late fee of $50 applies. " +
		"If you're experiencing financial hardship, I recommend speaking with our manager " +
		"about possible payment arrangements."

	balanceSpeech = "To check your current balance, you can log into the resident portal " +
		"or call our office directly and they can look that up for you."

	generalFollowUpSpeech = "Would you like me to connect you with our accounting team for more specific questions, " +
		"or is there anything else I can help you with?"
)

// HandlePaymentInfo answers payment questions with static property policy.
func (h *Handler) HandlePaymentInfo(c *gin.Context) {
	var req paymentInfoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	httpkit.OK(c, toolResponse{Response: paymentSpeech(req.InquiryType)})
}

func paymentSpeech(inquiryType string) string {
	inquiry := strings.ToLower(inquiryType)
	switch {
	case strings.Contains(inquiry, "late"):
		return basePaymentSpeech + lateFeeSpeech
	case strings.Contains(inquiry, "balance"):
		return basePaymentSpeech + balanceSpeech
	default:
		return basePaymentSpeech + generalFollowUpSpeech
	}
}
