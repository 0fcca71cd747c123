package maintenance

import "strings"

// Urgency levels, most severe first.
const (
	UrgencyEmergency = "emergency"
	UrgencyUrgent    = "urgent"
	UrgencyRoutine   = "routine"
)

// emergencyKeywords flag situations needing immediate dispatch.
var emergencyKeywords = []string{
	"flood", "flooding", "water leak", "burst pipe", "gas leak", "gas smell",
	"no heat", "no hot water", "no electricity", "power out", "fire",
	"smoke", "break in", "broken door", "broken window", "locked out",
	"sewage", "toilet overflow", "electrical spark", "sparking",
}

// urgentKeywords flag same-day issues that are not life-safety.
var urgentKeywords = []string{
	"no ac", "no air conditioning", "refrigerator not working", "fridge broken",
	"stove not working", "oven broken", "dishwasher leak", "washing machine leak",
	"toilet running", "sink clogged", "drain clogged",
}

// AnalyzeUrgency classifies a maintenance description by keyword match.
// Emergency keywords win over urgent ones; anything else is routine.
func AnalyzeUrgency(description string) string {
	lower := strings.ToLower(description)

	for _, keyword := range emergencyKeywords {
		if strings.Contains(lower, keyword) {
			return UrgencyEmergency
		}
	}

	for _, keyword := range urgentKeywords {
		if strings.Contains(lower, keyword) {
			return UrgencyUrgent
		}
	}

	return UrgencyRoutine
}

// ValidUrgency reports whether the value is one of the known levels.
func ValidUrgency(urgency string) bool {
	switch urgency {
	case UrgencyEmergency, UrgencyUrgent, UrgencyRoutine:
		return true
	}
	return false
}
