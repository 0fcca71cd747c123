package summarizer

import "testing"

func TestFallback(t *testing.T) {
	tests := []struct {
		name         string
		callType     string
		duration     int
		wantOverview string
		wantType     string
	}{
		{"maintenance call", "maintenance", 180, "Call handled: maintenance, duration 180s", "maintenance"},
		{"zero duration", "leasing", 0, "Call handled: leasing, duration 0s", "leasing"},
		{"unknown type defaults to general", "spam", 42, "Call handled: general, duration 42s", "general"},
		{"empty type defaults to general", "", 5, "Call handled: general, duration 5s", "general"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Fallback(tt.callType, tt.duration)
			if s.Overview != tt.wantOverview {
				t.Fatalf("overview = %q, want %q", s.Overview, tt.wantOverview)
			}
			if s.CallType != tt.wantType {
				t.Fatalf("call type = %q, want %q", s.CallType, tt.wantType)
			}
			if s.Sentiment != "neutral" {
				t.Fatalf("sentiment = %q, want neutral", s.Sentiment)
			}
			if s.Resolved {
				t.Fatal("fallback summary marked resolved")
			}
			if !s.Fallback {
				t.Fatal("fallback summary not flagged as fallback")
			}
			if s.ActionItems == nil {
				t.Fatal("fallback action items is nil")
			}
		})
	}
}

func TestParseSummary(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
		check   func(t *testing.T, s Summary)
	}{
		{
			name: "plain json",
			raw:  `{"call_type":"maintenance","overview":"Tenant reported a leak.","sentiment":"negative","resolved":false,"action_items":["dispatch plumber"]}`,
			check: func(t *testing.T, s Summary) {
				if s.CallType != "maintenance" || s.Sentiment != "negative" {
					t.Fatalf("unexpected summary: %+v", s)
				}
				if len(s.ActionItems) != 1 {
					t.Fatalf("action items = %v", s.ActionItems)
				}
			},
		},
		{
			name: "fenced json",
			raw:  "```json\n{\"call_type\":\"leasing\",\"overview\":\"Prospect asked about two bedrooms.\",\"sentiment\":\"positive\"}\n```",
			check: func(t *testing.T, s Summary) {
				if s.CallType != "leasing" {
					t.Fatalf("call type = %q", s.CallType)
				}
			},
		},
		{
			name: "unknown enums are clamped",
			raw:  `{"call_type":"complaint","overview":"Caller was upset.","sentiment":"furious"}`,
			check: func(t *testing.T, s Summary) {
				if s.CallType != "general" {
					t.Fatalf("call type = %q, want general", s.CallType)
				}
				if s.Sentiment != "neutral" {
					t.Fatalf("sentiment = %q, want neutral", s.Sentiment)
				}
			},
		},
		{name: "missing overview", raw: `{"call_type":"general","sentiment":"neutral"}`, wantErr: true},
		{name: "not json", raw: "Sorry, I cannot help with that.", wantErr: true},
		{name: "empty output", raw: "   ", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := parseSummary(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("parseSummary(%q) succeeded, want error", tt.raw)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseSummary: %v", err)
			}
			tt.check(t, s)
		})
	}
}
