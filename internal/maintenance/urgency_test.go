package maintenance

import "testing"

func TestAnalyzeUrgency(t *testing.T) {
	tests := []struct {
		name        string
		description string
		want        string
	}{
		{"flooding is emergency", "My apartment is flooding from the ceiling", UrgencyEmergency},
		{"gas leak is emergency", "I smell a gas leak in the kitchen", UrgencyEmergency},
		{"no heat is emergency", "There is no heat in the whole unit", UrgencyEmergency},
		{"toilet overflow is emergency", "The toilet overflow won't stop", UrgencyEmergency},
		{"no ac is urgent", "The no AC situation is unbearable", UrgencyUrgent},
		{"clogged sink is urgent", "My sink clogged up last night", UrgencyUrgent},
		{"fridge broken is urgent", "The fridge broken again, food is spoiling", UrgencyUrgent},
		{"leaking sink without flood words is not emergency", "My sink is leaking badly", UrgencyRoutine},
		{"squeaky door is routine", "The closet door squeaks when opened", UrgencyRoutine},
		{"empty description is routine", "", UrgencyRoutine},
		{"emergency beats urgent", "The washing machine leak turned into a flood", UrgencyEmergency},
		{"case insensitive", "BURST PIPE in the bathroom!", UrgencyEmergency},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AnalyzeUrgency(tt.description); got != tt.want {
				t.Fatalf("AnalyzeUrgency(%q) = %q, want %q", tt.description, got, tt.want)
			}
		})
	}
}

func TestValidUrgency(t *testing.T) {
	for _, u := range []string{UrgencyEmergency, UrgencyUrgent, UrgencyRoutine} {
		if !ValidUrgency(u) {
			t.Fatalf("ValidUrgency(%q) = false, want true", u)
		}
	}
	for _, u := range []string{"", "critical", "EMERGENCY", "asap"} {
		if ValidUrgency(u) {
			t.Fatalf("ValidUrgency(%q) = true, want false", u)
		}
	}
}
