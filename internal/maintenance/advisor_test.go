package maintenance

import (
	"strings"
	"testing"
	"time"
)

func mustParse(t *testing.T, value string) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, value)
	if err != nil {
		t.Fatalf("parse %q: %v", value, err)
	}
	return ts
}

func TestAdviseEmergencyHasNoSteps(t *testing.T) {
	emergencies := []struct {
		issueType   string
		description string
	}{
		{"plumbing", "burst pipe flooding the bathroom"},
		{"electrical", "sparking outlet and smoke"},
		{"hvac", "no heat and it's freezing"},
	}

	for _, e := range emergencies {
		g := Advise(e.issueType, e.description, UrgencyEmergency)
		if len(g.Steps) != 0 {
			t.Fatalf("Advise(%q, %q, emergency) returned %d steps, want 0", e.issueType, e.description, len(g.Steps))
		}
		if g.CanSelfResolve {
			t.Fatalf("Advise(%q, emergency) marked self-resolvable", e.issueType)
		}
		if g.EstimatedResolution != "Emergency response dispatched" {
			t.Fatalf("emergency resolution = %q", g.EstimatedResolution)
		}
		if g.SafetyWarning == "" {
			t.Fatal("emergency guidance missing safety warning")
		}
	}
}

func TestAdviseCategorySelection(t *testing.T) {
	tests := []struct {
		name            string
		issueType       string
		description     string
		wantCategory    string
		wantSubcategory string
	}{
		{"toilet maps to plumbing/toilet", "plumbing", "the toilet keeps running", "plumbing", "toilet"},
		{"sink from description", "plumbing", "my sink is leaking badly", "plumbing", "sink"},
		{"outlet maps to electrical", "electrical", "the outlet in the bedroom is dead", "electrical", "outlet"},
		{"cooling from description", "hvac", "the cooling stopped working yesterday", "hvac", "cooling"},
		{"refrigerator appliance", "appliance", "the refrigerator isn't staying cold", "appliance", "refrigerator"},
		{"door lock with space", "door lock", "my key sticks in the lock", "door_lock", ""},
		{"description only, no issue type", "", "the dishwasher won't drain", "appliance", "dishwasher"},
		{"unknown gets fallback", "landscaping", "the hedge needs trimming", "general", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := Advise(tt.issueType, tt.description, UrgencyRoutine)
			if g.Category != tt.wantCategory {
				t.Fatalf("category = %q, want %q", g.Category, tt.wantCategory)
			}
			if g.Subcategory != tt.wantSubcategory {
				t.Fatalf("subcategory = %q, want %q", g.Subcategory, tt.wantSubcategory)
			}
			if len(g.Steps) == 0 {
				t.Fatal("non-emergency guidance has no steps")
			}
			if len(g.Steps) > maxGuidanceSteps {
				t.Fatalf("guidance has %d steps, max is %d", len(g.Steps), maxGuidanceSteps)
			}
		})
	}
}

func TestAdviseResolutionWindows(t *testing.T) {
	tests := []struct {
		urgency string
		want    string
	}{
		{UrgencyUrgent, "Professional maintenance: same day (4-24 hours)"},
		{UrgencyRoutine, "Professional maintenance: 1-3 business days"},
	}
	for _, tt := range tests {
		g := Advise("plumbing", "slow draining sink", tt.urgency)
		if g.EstimatedResolution != tt.want {
			t.Fatalf("resolution for %s = %q, want %q", tt.urgency, g.EstimatedResolution, tt.want)
		}
	}
}

func TestAdviseSelfResolvable(t *testing.T) {
	tests := []struct {
		issueType string
		urgency   string
		want      bool
	}{
		{"plumbing", UrgencyRoutine, true},
		{"hvac", UrgencyRoutine, true},
		{"appliance", UrgencyRoutine, true},
		{"electrical", UrgencyRoutine, false},
		{"plumbing", UrgencyUrgent, false},
	}
	for _, tt := range tests {
		g := Advise(tt.issueType, "general issue", tt.urgency)
		if g.CanSelfResolve != tt.want {
			t.Fatalf("CanSelfResolve(%s, %s) = %v, want %v", tt.issueType, tt.urgency, g.CanSelfResolve, tt.want)
		}
	}
}

func TestAdviseFallbackSteps(t *testing.T) {
	g := Advise("pest control", "ants in the kitchen", UrgencyRoutine)
	if len(g.Steps) == 0 {
		t.Fatal("fallback guidance has no steps")
	}
	found := false
	for _, s := range g.Steps {
		if strings.Contains(s, "photos") {
			found = true
		}
	}
	if !found {
		t.Fatalf("fallback steps missing documentation advice: %v", g.Steps)
	}
}

func TestFollowUpTimeSkipsWeekends(t *testing.T) {
	// 2026-08-28 is a Friday; three business days later is Wednesday.
	friday := mustParse(t, "2026-08-28T10:00:00Z")
	got := followUpTime(friday, UrgencyRoutine)
	if got.Weekday().String() != "Wednesday" {
		t.Fatalf("routine follow-up from Friday lands on %s, want Wednesday", got.Weekday())
	}

	if d := followUpTime(friday, UrgencyEmergency).Sub(friday).Hours(); d != 2 {
		t.Fatalf("emergency follow-up delta = %v hours, want 2", d)
	}
	if d := followUpTime(friday, UrgencyUrgent).Sub(friday).Hours(); d != 24 {
		t.Fatalf("urgent follow-up delta = %v hours, want 24", d)
	}
}
