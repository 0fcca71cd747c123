package payments

import (
	"strings"
	"testing"
)

func TestPaymentSpeech(t *testing.T) {
	tests := []struct {
		name        string
		inquiryType string
		wantPart    string
	}{
		{"late fee inquiry", "late fee", "$50"},
		{"late anywhere in type", "paying late", "grace period until the 5th"},
		{"balance inquiry", "balance check", "current balance"},
		{"general inquiry", "general", "accounting team"},
		{"empty inquiry", "", "accounting team"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := paymentSpeech(tt.inquiryType)
			if !strings.HasPrefix(got, basePaymentSpeech) {
				t.Fatalf("response missing base payment info: %q", got)
			}
			if !strings.Contains(got, tt.wantPart) {
				t.Fatalf("paymentSpeech(%q) missing %q", tt.inquiryType, tt.wantPart)
			}
		})
	}
}
