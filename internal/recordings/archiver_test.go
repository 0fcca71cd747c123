package recordings

import "testing"

func TestObjectKey(t *testing.T) {
	tests := []struct {
		name        string
		callID      string
		url         string
		contentType string
		want        string
	}{
		{"extension from url", "abc123", "https://cdn.example.com/rec/abc123.mp3", "", "calls/abc123.mp3"},
		{"query string stripped", "abc123", "https://cdn.example.com/rec/abc123.wav?token=x", "", "calls/abc123.wav"},
		{"wav from content type", "abc123", "https://cdn.example.com/rec/abc123", "audio/wav", "calls/abc123.wav"},
		{"mp3 from content type", "abc123", "https://cdn.example.com/rec/abc123", "audio/mpeg", "calls/abc123.mp3"},
		{"unknown falls back", "abc123", "https://cdn.example.com/rec/abc123", "application/octet-stream", "calls/abc123.audio"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := objectKey(tt.callID, tt.url, tt.contentType); got != tt.want {
				t.Fatalf("objectKey = %q, want %q", got, tt.want)
			}
		})
	}
}
