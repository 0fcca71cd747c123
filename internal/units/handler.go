package units

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"propertyvoice_backend/platform/httpkit"
	"propertyvoice_backend/platform/logger"

	"github.com/gin-gonic/gin"
)

// Handler serves the live-call availability tool.
type Handler struct {
	repo *Repository
	log  *logger.Logger
}

func NewHandler(repo *Repository, log *logger.Logger) *Handler {
	return &Handler{repo: repo, log: log}
}

// checkAvailabilityRequest uses `any` for numeric fields because the voice
// platform sends them as either numbers or spoken strings ("$1,800").
type checkAvailabilityRequest struct {
	Bedrooms   any    `json:"bedrooms"`
	MaxRent    any    `json:"max_rent"`
	MoveInDate string `json:"move_in_date"`
}

type toolResponse struct {
	Response string `json:"response"`
}

// HandleCheckAvailability searches available units and formats the result
// as text for the voice agent to speak.
func (h *Handler) HandleCheckAvailability(c *gin.Context) {
	var req checkAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	filter := AvailabilityFilter{
		Bedrooms:     coerceInt(req.Bedrooms),
		MaxRentCents: coerceMoneyCents(req.MaxRent),
	}

	ctx := c.Request.Context()
	matched, err := h.repo.ListAvailable(ctx, filter)
	if err != nil {
		h.log.DatabaseError("units.HandleCheckAvailability", err)
		httpkit.OK(c, toolResponse{Response: availabilityErrorSpeech})
		return
	}

	if len(matched) == 0 {
		all, err := h.repo.ListAvailable(ctx, AvailabilityFilter{})
		if err != nil {
			h.log.DatabaseError("units.HandleCheckAvailability", err)
			httpkit.OK(c, toolResponse{Response: availabilityErrorSpeech})
			return
		}
		if len(all) == 0 {
			httpkit.OK(c, toolResponse{Response: noUnitsSpeech})
			return
		}
		httpkit.OK(c, toolResponse{Response: fmt.Sprintf(otherUnitsSpeechFmt, len(all))})
		return
	}

	httpkit.OK(c, toolResponse{Response: speakUnits(matched)})
}

const (
	availabilityErrorSpeech = "I'm having a bit of trouble accessing our availability system right now. " +
		"Let me connect you with our leasing office directly, or I can take your contact information " +
		"and have someone call you back within the hour."
	noUnitsSpeech = "I apologize, but we don't have any units available at the moment. " +
		"However, I'd be happy to add you to our waitlist so you're the first to know when something opens up. " +
		"Can I get your email address?"
	otherUnitsSpeechFmt = "I don't have any units that match those exact criteria, but we do have %d " +
		"other units available. Would you like me to tell you about those options instead?"
)

func speakUnits(matched []Unit) string {
	if len(matched) == 1 {
		unit := matched[0]
		size := "spacious"
		if unit.SquareFeet != nil {
			size = strconv.Itoa(*unit.SquareFeet)
		}
		speech := fmt.Sprintf(
			"Great news! I found a %d bedroom, %s bathroom unit available. "+
				"It's unit %s, %s square feet, for $%s per month. ",
			unit.Bedrooms, speakBathrooms(unit.Bathrooms), unit.UnitNumber, size, speakRent(unit.RentCents),
		)
		if len(unit.Amenities) > 0 {
			top := unit.Amenities
			if len(top) > 3 {
				top = top[:3]
			}
			speech += "It includes " + strings.Join(top, ", ") + ". "
		}
		return speech + "Would you like to schedule a tour to see it?"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "I found %d units that might work for you. Let me tell you about the top options: ", len(matched))
	top := matched
	if len(top) > 3 {
		top = top[:3]
	}
	for i, unit := range top {
		fmt.Fprintf(&b, "Option %d: Unit %s - %d bedroom, %s bath for $%s per month. ",
			i+1, unit.UnitNumber, unit.Bedrooms, speakBathrooms(unit.Bathrooms), speakRent(unit.RentCents))
	}
	b.WriteString("Would you like more details on any of these, or would you like to schedule tours?")
	return b.String()
}

func speakRent(cents int64) string {
	return strconv.FormatInt(cents/100, 10)
}

func speakBathrooms(bathrooms float64) string {
	return strconv.FormatFloat(bathrooms, 'f', -1, 64)
}

// coerceInt accepts a JSON number or a numeric string.
func coerceInt(value any) int {
	switch typed := value.(type) {
	case float64:
		return int(typed)
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(typed))
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}

// coerceMoneyCents accepts a JSON number (dollars) or a string like "$1,800".
func coerceMoneyCents(value any) int64 {
	switch typed := value.(type) {
	case float64:
		return int64(typed * 100)
	case string:
		cleaned := strings.NewReplacer("$", "", ",", "").Replace(strings.TrimSpace(typed))
		f, err := strconv.ParseFloat(cleaned, 64)
		if err != nil {
			return 0
		}
		return int64(f * 100)
	default:
		return 0
	}
}
