// Package maintenance provides the maintenance bounded context: urgency
// classification, troubleshooting guidance, and work order tickets.
package maintenance

import "strings"

// Guidance is the troubleshooting advice for one reported issue.
type Guidance struct {
	// Steps is the ordered list of things the tenant can try before the
	// maintenance visit. Always empty for emergencies.
	Steps               []string
	Category            string
	Subcategory         string
	CanSelfResolve      bool
	EstimatedResolution string
	SafetyWarning       string
	FollowUpMessage     string
}

const maxGuidanceSteps = 5

// tipCategory holds the per-subcategory step lists for one issue category.
// The "general" subcategory is the fallback within a category.
type tipCategory map[string][]string

var troubleshootingTips = map[string]tipCategory{
	"plumbing": {
		"general": {
			"Check if the water supply valve is fully open",
			"Look for any visible leaks under sinks or behind toilets",
			"Try turning the water off and on again at the main valve",
		},
		"toilet": {
			"Check if the water supply valve behind the toilet is fully open",
			"Try flushing - if no water flows, ensure the valve is open",
			"If overflowing, turn off the water supply valve immediately",
			"Check if the flapper inside the tank is properly sealing",
			"For clogs, try using a plunger with firm, steady pressure",
		},
		"sink": {
			"Check if the faucet aerator is clogged (unscrew and clean)",
			"For slow drains, try hot water and dish soap first",
			"Check under the sink for visible leaks or loose connections",
			"Ensure the P-trap isn't clogged (place bucket underneath before removing)",
		},
		"shower": {
			"Check if the showerhead is clogged (soak in vinegar for 30 minutes)",
			"Ensure the water supply valves are fully open",
			"For low pressure, clean the showerhead filter",
			"Check if other fixtures have water to isolate the issue",
		},
	},
	"electrical": {
		"general": {
			"Check if the circuit breaker has tripped and reset if needed",
			"Try plugging a different device into the same outlet to test",
			"Do NOT attempt to repair electrical issues yourself",
			"If you smell burning or see sparks, evacuate and call 911",
		},
		"outlet": {
			"Check the circuit breaker panel for tripped breakers",
			"Test with a different device to rule out device issues",
			"Look for GFCI outlets nearby and press the RESET button",
			"Do not use the outlet if it feels hot or looks damaged",
		},
		"lights": {
			"Try replacing the light bulb first",
			"Check if other lights in the room work",
			"Ensure the light switch is functioning properly",
			"Check the circuit breaker for that area",
		},
	},
	"hvac": {
		"general": {
			"Check if the thermostat is set to the correct mode (heat/cool)",
			"Ensure the thermostat batteries are working",
			"Check if the air filter needs replacing (do monthly)",
			"Make sure all vents are open and unobstructed",
		},
		"heating": {
			"Set thermostat to heat mode and 5°F above current temperature",
			"Check if the pilot light is on (if gas furnace)",
			"Ensure vents and radiators aren't blocked by furniture",
			"Replace air filter if it's dirty or clogged",
		},
		"cooling": {
			"Set thermostat to cool mode and 5°F below current temperature",
			"Check if the outdoor unit is running",
			"Clean or replace the air filter",
			"Ensure outdoor unit isn't blocked by debris or vegetation",
		},
	},
	"appliance": {
		"general": {
			"Check if the appliance is properly plugged in",
			"Ensure the circuit breaker hasn't tripped",
			"Consult the appliance manual for troubleshooting steps",
			"Check if there's a reset button on the appliance",
		},
		"refrigerator": {
			"Ensure the temperature is set between 37-40°F",
			"Check if the door seals properly and isn't left open",
			"Clean the condenser coils (usually in back or bottom)",
			"Make sure vents inside aren't blocked by food items",
		},
		"dishwasher": {
			"Check if the door latches properly",
			"Ensure the water supply valve under the sink is open",
			"Clean the filter at the bottom of the dishwasher",
			"Make sure the spray arms can rotate freely",
		},
		"washer": {
			"Check if the water supply valves are fully open",
			"Ensure the drain hose isn't kinked or clogged",
			"Clean the lint filter if applicable",
			"Make sure the load is balanced",
		},
	},
	"door_lock": {
		"general": {
			"Try using WD-40 or graphite lubricant on the lock mechanism",
			"Check if the key is worn or damaged",
			"Ensure the door is properly aligned with the frame",
			"Try the spare key if available",
		},
	},
	"window": {
		"general": {
			"Check if the window lock is fully disengaged",
			"Clean the window tracks and remove debris",
			"Lubricate the window tracks with silicone spray",
			"Check for visible obstructions or damage",
		},
	},
}

var fallbackSteps = []string{
	"Please document the issue with photos if possible",
	"Note when the problem started and if it's getting worse",
	"Check if the issue affects other areas of your unit",
	"Our maintenance team will assess and resolve the issue",
}

// selfResolvableCategories are the categories a tenant can plausibly fix
// themselves when the issue is routine.
var selfResolvableCategories = map[string]bool{
	"plumbing":  true,
	"hvac":      true,
	"appliance": true,
}

const defaultFollowUpMessage = "Try these steps and let us know if the issue persists. " +
	"Our maintenance team will follow up within the estimated timeframe."

// Advise returns troubleshooting guidance for the reported issue.
// Emergencies never get do-it-yourself steps: the tenant is told that
// help has been dispatched and nothing else.
func Advise(issueType, description, urgency string) Guidance {
	if urgency == UrgencyEmergency {
		return Guidance{
			Steps:               []string{},
			Category:            matchCategory(issueType, description),
			CanSelfResolve:      false,
			EstimatedResolution: "Emergency response dispatched",
			SafetyWarning:       "Please stay safe and do not attempt repairs. If there's immediate danger, evacuate and call 911.",
			FollowUpMessage:     "Our maintenance team has been notified and will respond immediately.",
		}
	}

	category := matchCategory(issueType, description)
	var steps []string
	var subcategory string

	if subcats, ok := troubleshootingTips[category]; ok {
		subcategory = matchSubcategory(subcats, issueType, description)
		if subcategory != "" {
			steps = append(steps, subcats[subcategory]...)
		} else if general, ok := subcats["general"]; ok {
			steps = append(steps, general...)
		}
	}

	if len(steps) == 0 {
		steps = append(steps, fallbackSteps...)
	}
	if len(steps) > maxGuidanceSteps {
		steps = steps[:maxGuidanceSteps]
	}

	displayCategory := category
	if displayCategory == "" {
		displayCategory = "general"
	}

	return Guidance{
		Steps:               steps,
		Category:            displayCategory,
		Subcategory:         subcategory,
		CanSelfResolve:      urgency == UrgencyRoutine && selfResolvableCategories[category],
		EstimatedResolution: "Professional maintenance: " + resolutionEstimate(urgency),
		FollowUpMessage:     defaultFollowUpMessage,
	}
}

// ResolutionEstimate is the human-readable follow-up window for an urgency.
func resolutionEstimate(urgency string) string {
	switch urgency {
	case UrgencyEmergency:
		return "0-2 hours"
	case UrgencyUrgent:
		return "same day (4-24 hours)"
	default:
		return "1-3 business days"
	}
}

// matchCategory picks the category with the most keyword matches against
// the issue type and description. An issue-type match outweighs any single
// description mention; ties go to the longer (more specific) category name.
func matchCategory(issueType, description string) string {
	normalized := normalizeIssueType(issueType)
	descLower := strings.ToLower(description)

	best := ""
	bestScore := 0
	for category, subcats := range troubleshootingTips {
		score := 0
		if normalized != "" && (strings.Contains(normalized, category) || strings.Contains(category, normalized)) {
			score += 3
		}
		if strings.Contains(descLower, strings.ReplaceAll(category, "_", " ")) {
			score++
		}
		for subcategory := range subcats {
			if subcategory != "general" && strings.Contains(descLower, subcategory) {
				score++
			}
		}
		if score > bestScore || (score == bestScore && score > 0 && len(category) > len(best)) {
			best = category
			bestScore = score
		}
	}
	return best
}

// matchSubcategory finds the most specific subcategory mentioned in the
// description or issue type. "general" never matches explicitly.
func matchSubcategory(subcats tipCategory, issueType, description string) string {
	normalized := normalizeIssueType(issueType)
	descLower := strings.ToLower(description)

	best := ""
	for subcategory := range subcats {
		if subcategory == "general" {
			continue
		}
		if strings.Contains(descLower, subcategory) || strings.Contains(normalized, subcategory) {
			if len(subcategory) > len(best) {
				best = subcategory
			}
		}
	}
	return best
}

func normalizeIssueType(issueType string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(issueType)), " ", "_")
}
