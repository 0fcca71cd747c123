package email

import (
	"strings"
	"testing"
	"time"
)

func TestRenderCallSummaryTemplate(t *testing.T) {
	data := CallSummaryData{
		PropertyName:     "Sunset Apartments",
		ExternalCallID:   "abc123",
		CallerName:       "John Smith",
		CallerPhone:      "+19045551234",
		UnitNumber:       "204",
		CallType:         "maintenance",
		Sentiment:        "negative",
		DurationSeconds:  222,
		StartedAt:        time.Date(2026, 8, 20, 14, 30, 0, 0, time.UTC),
		Overview:         "Tenant reported a kitchen sink leak.",
		ActionItems:      []string{"Dispatch plumber to unit 204"},
		NextSteps:        []string{"Troubleshooting: Turn off the water valve under the sink"},
		KeyDetails:       []KeyDetail{{Label: "Ticket Number", Value: "MT-20260820-0001"}},
		Highlights:       []string{"Caller mentioned water pooling under the cabinet"},
		RecordingURL:     "https://recordings.example.com/abc123.wav",
		RequiresCallback: true,
		CallbackReason:   "Confirm plumber access time",
	}

	html, err := renderEmailTemplate("call_summary.html", callSummaryTemplateData(data))
	if err != nil {
		t.Fatalf("render call summary: %v", err)
	}

	for _, want := range []string{
		"Sunset Apartments",
		"John Smith",
		"+19045551234",
		"Unit 204",
		"MAINTENANCE",
		"NEGATIVE",
		"3m 42s",
		"Aug 20, 2026 2:30 PM UTC",
		"Tenant reported a kitchen sink leak.",
		"Dispatch plumber to unit 204",
		"MT-20260820-0001",
		"Confirm plumber access time",
		"https://recordings.example.com/abc123.wav",
		typeColors["maintenance"],
		sentimentColors["negative"],
	} {
		if !strings.Contains(html, want) {
			t.Errorf("call summary email missing %q", want)
		}
	}
}

func TestRenderCallSummaryTemplateMinimal(t *testing.T) {
	data := CallSummaryData{
		PropertyName: "Sunset Apartments",
		CallType:     "general",
		Sentiment:    "neutral",
	}

	html, err := renderEmailTemplate("call_summary.html", callSummaryTemplateData(data))
	if err != nil {
		t.Fatalf("render minimal call summary: %v", err)
	}
	if !strings.Contains(html, "No summary available") {
		t.Error("expected overview fallback text")
	}
	if !strings.Contains(html, "Unknown") {
		t.Error("expected unknown caller fallback")
	}
	if strings.Contains(html, "Callback Required") {
		t.Error("callback block rendered without RequiresCallback")
	}
}

func TestRenderTicketFollowUpTemplate(t *testing.T) {
	data := TicketFollowUpData{
		PropertyName:   "Sunset Apartments",
		TicketNumber:   "MT-20260820-0002",
		Category:       "plumbing",
		Urgency:        "urgent",
		Description:    "Bathroom sink is draining slowly",
		UnitNumber:     "101",
		ContactName:    "Jane Doe",
		ContactPhone:   "+19045550000",
		ResolutionTime: "Professional maintenance: same day (4-24 hours)",
	}

	html, err := renderEmailTemplate("ticket_follow_up.html", ticketFollowUpTemplateData(data))
	if err != nil {
		t.Fatalf("render ticket follow-up: %v", err)
	}

	for _, want := range []string{
		"MT-20260820-0002",
		"Plumbing",
		"URGENT",
		"Bathroom sink is draining slowly",
		"Jane Doe",
		"+19045550000",
		urgencyColors["urgent"],
	} {
		if !strings.Contains(html, want) {
			t.Errorf("follow-up email missing %q", want)
		}
	}
}

func TestRenderTourConfirmationTemplate(t *testing.T) {
	data := TourConfirmationData{
		PropertyName:  "Sunset Apartments",
		ProspectName:  "Maria Lopez",
		ProspectPhone: "+19045559876",
		ProspectEmail: "maria@example.com",
		TourDate:      "next Saturday",
		TourTime:      "2pm",
		UnitPref:      "2 bedrooms",
	}

	html, err := renderEmailTemplate("tour_confirmation.html", tourConfirmationTemplateData(data))
	if err != nil {
		t.Fatalf("render tour confirmation: %v", err)
	}

	for _, want := range []string{"Maria Lopez", "next Saturday", "2pm", "2 bedrooms", "Sunset Apartments"} {
		if !strings.Contains(html, want) {
			t.Errorf("tour confirmation email missing %q", want)
		}
	}
}

func TestRenderEscapesHTML(t *testing.T) {
	data := CallSummaryData{
		PropertyName: "Sunset Apartments",
		CallerName:   `<script>alert("x")</script>`,
		CallType:     "general",
		Sentiment:    "neutral",
	}

	html, err := renderEmailTemplate("call_summary.html", callSummaryTemplateData(data))
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.Contains(html, "<script>") {
		t.Error("caller name was not escaped")
	}
}

func TestCallSummarySubject(t *testing.T) {
	tests := []struct {
		name string
		data CallSummaryData
		want string
	}{
		{
			name: "named caller",
			data: CallSummaryData{PropertyName: "Sunset Apartments", CallType: "leasing", CallerName: "Maria Lopez"},
			want: "\U0001F4DE Leasing Call - Maria Lopez - Sunset Apartments",
		},
		{
			name: "phone fallback",
			data: CallSummaryData{PropertyName: "Sunset Apartments", CallType: "general", CallerPhone: "+19045551234"},
			want: "\U0001F4DE General Call - +19045551234 - Sunset Apartments",
		},
		{
			name: "unknown caller",
			data: CallSummaryData{PropertyName: "Sunset Apartments", CallType: "payment"},
			want: "\U0001F4DE Payment Call - Unknown - Sunset Apartments",
		},
		{
			name: "emergency prefix",
			data: CallSummaryData{PropertyName: "Sunset Apartments", CallType: "maintenance", CallerName: "John", Emergency: true},
			want: "\U0001F6A8 URGENT: \U0001F4DE Maintenance Call - John - Sunset Apartments",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := callSummarySubject(tt.data); got != tt.want {
				t.Fatalf("subject = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		seconds int
		want    string
	}{
		{0, "0s"},
		{42, "42s"},
		{60, "1m 0s"},
		{222, "3m 42s"},
	}
	for _, tt := range tests {
		if got := formatDuration(tt.seconds); got != tt.want {
			t.Errorf("formatDuration(%d) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}
