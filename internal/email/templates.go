package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"
	"time"
)

//go:embed templates/*.html
var templateFS embed.FS

type baseEmailData struct {
	Title        string
	Heading      string
	PropertyName string
}

type callSummaryEmailData struct {
	baseEmailData
	ExternalCallID   string
	CallerHTML       template.HTML
	CallType         string
	TypeColor        string
	Sentiment        string
	SentimentColor   string
	Duration         string
	StartedAt        string
	Overview         string
	ActionItems      []string
	NextSteps        []string
	KeyDetails       []KeyDetail
	Highlights       []string
	RecordingURL     string
	RequiresCallback bool
	CallbackReason   string
}

type ticketFollowUpEmailData struct {
	baseEmailData
	TicketNumber   string
	Category       string
	Urgency        string
	UrgencyColor   string
	Description    string
	UnitNumber     string
	ContactName    string
	ContactPhone   string
	ResolutionTime string
}

type tourConfirmationEmailData struct {
	baseEmailData
	ProspectName  string
	ProspectPhone string
	ProspectEmail string
	TourDate      string
	TourTime      string
	UnitPref      string
}

var typeColors = map[string]string{
	"leasing":     "#667eea",
	"maintenance": "#ed8936",
	"payment":     "#48bb78",
	"general":     "#a0aec0",
}

var sentimentColors = map[string]string{
	"positive": "#48bb78",
	"neutral":  "#a0aec0",
	"negative": "#f56565",
}

var urgencyColors = map[string]string{
	"emergency": "#f56565",
	"urgent":    "#ed8936",
	"routine":   "#a0aec0",
}

func badgeColor(colors map[string]string, key string) string {
	if color, ok := colors[strings.ToLower(key)]; ok {
		return color
	}
	return "#a0aec0"
}

func renderEmailTemplate(name string, data any) (string, error) {
	templates := []string{"templates/base.html", "templates/" + name}
	tmpl, err := template.New("base.html").ParseFS(templateFS, templates...)
	if err != nil {
		return "", fmt.Errorf("parse email template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "email", data); err != nil {
		return "", fmt.Errorf("execute email template %s: %w", name, err)
	}
	return buf.String(), nil
}

// formatDuration renders seconds as "3m 42s", or "42s" for sub-minute calls.
func formatDuration(seconds int) string {
	if seconds < 60 {
		return fmt.Sprintf("%ds", seconds)
	}
	return fmt.Sprintf("%dm %ds", seconds/60, seconds%60)
}

func formatStartedAt(t time.Time) string {
	if t.IsZero() {
		return "Unknown"
	}
	return t.Format("Jan 2, 2006 3:04 PM MST")
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// buildCallerHTML assembles the caller block. Falls back to the raw phone
// number when no contact details were resolved.
func buildCallerHTML(data CallSummaryData) template.HTML {
	var b strings.Builder
	if data.CallerName != "" {
		b.WriteString("<strong>" + template.HTMLEscapeString(data.CallerName) + "</strong><br>")
	}
	if data.CallerPhone != "" {
		b.WriteString("\U0001F4F1 " + template.HTMLEscapeString(data.CallerPhone) + "<br>")
	}
	if data.CallerEmail != "" {
		b.WriteString("\U0001F4E7 " + template.HTMLEscapeString(data.CallerEmail) + "<br>")
	}
	if data.UnitNumber != "" {
		b.WriteString("\U0001F3E0 Unit " + template.HTMLEscapeString(data.UnitNumber))
	}
	if b.Len() == 0 {
		return template.HTML("\U0001F4F1 Unknown")
	}
	return template.HTML(strings.TrimSuffix(b.String(), "<br>"))
}

func callSummaryTemplateData(data CallSummaryData) callSummaryEmailData {
	return callSummaryEmailData{
		baseEmailData: baseEmailData{
			Title:        "Call Summary",
			Heading:      "\U0001F4DE Call Summary",
			PropertyName: data.PropertyName,
		},
		ExternalCallID:   data.ExternalCallID,
		CallerHTML:       buildCallerHTML(data),
		CallType:         strings.ToUpper(data.CallType),
		TypeColor:        badgeColor(typeColors, data.CallType),
		Sentiment:        strings.ToUpper(data.Sentiment),
		SentimentColor:   badgeColor(sentimentColors, data.Sentiment),
		Duration:         formatDuration(data.DurationSeconds),
		StartedAt:        formatStartedAt(data.StartedAt),
		Overview:         data.Overview,
		ActionItems:      data.ActionItems,
		NextSteps:        data.NextSteps,
		KeyDetails:       data.KeyDetails,
		Highlights:       data.Highlights,
		RecordingURL:     data.RecordingURL,
		RequiresCallback: data.RequiresCallback,
		CallbackReason:   data.CallbackReason,
	}
}

func ticketFollowUpTemplateData(data TicketFollowUpData) ticketFollowUpEmailData {
	return ticketFollowUpEmailData{
		baseEmailData: baseEmailData{
			Title:        "Maintenance Follow-up",
			Heading:      "\U0001F527 Maintenance Follow-up",
			PropertyName: data.PropertyName,
		},
		TicketNumber:   data.TicketNumber,
		Category:       titleCase(data.Category),
		Urgency:        strings.ToUpper(data.Urgency),
		UrgencyColor:   badgeColor(urgencyColors, data.Urgency),
		Description:    data.Description,
		UnitNumber:     data.UnitNumber,
		ContactName:    data.ContactName,
		ContactPhone:   data.ContactPhone,
		ResolutionTime: data.ResolutionTime,
	}
}

func tourConfirmationTemplateData(data TourConfirmationData) tourConfirmationEmailData {
	return tourConfirmationEmailData{
		baseEmailData: baseEmailData{
			Title:        "Tour Scheduled",
			Heading:      "\U0001F3E2 Tour Scheduled",
			PropertyName: data.PropertyName,
		},
		ProspectName:  data.ProspectName,
		ProspectPhone: data.ProspectPhone,
		ProspectEmail: data.ProspectEmail,
		TourDate:      data.TourDate,
		TourTime:      data.TourTime,
		UnitPref:      data.UnitPref,
	}
}
