package summarizer

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"google.golang.org/adk/agent"
	"google.golang.org/adk/agent/llmagent"
	"google.golang.org/adk/runner"
	"google.golang.org/adk/session"
	"google.golang.org/genai"

	"propertyvoice_backend/platform/ai/moonshot"
)

const appName = "call-summarizer"

// minTranscriptLen is the shortest transcript worth sending to the model.
const minTranscriptLen = 10

// Agent is the AI-backed Summarizer. One model run per call, serialized
// by runMu; each run gets a throwaway session.
type Agent struct {
	agent          agent.Agent
	runner         *runner.Runner
	sessionService session.Service
	timeout        time.Duration
	runMu          sync.Mutex
}

// NewAgent creates a summarizer agent without tools.
func NewAgent(apiKey string, timeout time.Duration) (*Agent, error) {
	kimi := moonshot.NewModel(moonshot.Config{
		APIKey:          apiKey,
		DisableThinking: true,
	})

	adkAgent, err := llmagent.New(llmagent.Config{
		Name:        "CallSummarizer",
		Model:       kimi,
		Description: "Extracts structured summaries from property management call transcripts.",
		Instruction: summarySystemPrompt,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create summarizer agent: %w", err)
	}

	sessionService := session.InMemoryService()
	r, err := runner.New(runner.Config{
		AppName:        appName,
		Agent:          adkAgent,
		SessionService: sessionService,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create summarizer runner: %w", err)
	}

	return &Agent{
		agent:          adkAgent,
		runner:         r,
		sessionService: sessionService,
		timeout:        timeout,
	}, nil
}

// Summarize runs the model over the transcript and parses the structured
// result. Any failure (timeout, transport, malformed output) is returned
// as an error; callers substitute Fallback.
func (a *Agent) Summarize(ctx context.Context, transcript string) (Summary, error) {
	if len(strings.TrimSpace(transcript)) < minTranscriptLen {
		return Summary{}, fmt.Errorf("transcript too short to analyze")
	}

	a.runMu.Lock()
	defer a.runMu.Unlock()

	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	sessionID := uuid.New().String()
	userID := "call-summary-" + sessionID

	_, err := a.sessionService.Create(ctx, &session.CreateRequest{
		AppName:   appName,
		UserID:    userID,
		SessionID: sessionID,
	})
	if err != nil {
		return Summary{}, fmt.Errorf("call summary: create session: %w", err)
	}
	defer func() {
		_ = a.sessionService.Delete(ctx, &session.DeleteRequest{
			AppName:   appName,
			UserID:    userID,
			SessionID: sessionID,
		})
	}()

	userMessage := &genai.Content{
		Role: "user",
		Parts: []*genai.Part{{
			Text: buildSummaryPrompt(transcript),
		}},
	}

	runConfig := agent.RunConfig{StreamingMode: agent.StreamingModeNone}

	var outputText strings.Builder
	for event, err := range a.runner.Run(ctx, userID, sessionID, userMessage, runConfig) {
		if err != nil {
			return Summary{}, fmt.Errorf("call summary: run failed: %w", err)
		}
		if event.Content == nil {
			continue
		}
		for _, part := range event.Content.Parts {
			outputText.WriteString(part.Text)
		}
	}

	return parseSummary(outputText.String())
}

// parseSummary decodes the model output, tolerating markdown code fences.
func parseSummary(raw string) (Summary, error) {
	cleaned := stripCodeFence(strings.TrimSpace(raw))
	if cleaned == "" {
		return Summary{}, fmt.Errorf("call summary: empty model output")
	}

	var s Summary
	if err := json.Unmarshal([]byte(cleaned), &s); err != nil {
		return Summary{}, fmt.Errorf("call summary: parse output: %w", err)
	}
	if strings.TrimSpace(s.Overview) == "" {
		return Summary{}, fmt.Errorf("call summary: output missing overview")
	}
	s.normalize("general")
	return s, nil
}

func stripCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func buildSummaryPrompt(transcript string) string {
	return fmt.Sprintf(`Analyze this property management call transcript and return a structured JSON response.

TRANSCRIPT:
%s

Return a JSON object with this exact structure:
{
    "call_type": "leasing" | "maintenance" | "payment" | "general",
    "overview": "Brief 2-3 sentence summary of the call",
    "sentiment": "positive" | "neutral" | "negative",
    "resolved": true | false,
    "caller_info": {
        "name": "Caller's name if mentioned",
        "phone": "Phone number if mentioned",
        "email": "Email if mentioned",
        "unit_number": "Unit number if tenant/resident"
    },
    "action_items": [
        "List of specific actions that need to be taken"
    ],
    "key_details": {
        "issue_type": "Type of maintenance issue, for maintenance calls",
        "urgency": "emergency | urgent | routine, for maintenance calls",
        "move_in_date": "Desired move-in date, for leasing calls",
        "bedrooms_requested": "Number of bedrooms, for leasing calls",
        "budget": "Maximum rent budget, for leasing calls",
        "inquiry_type": "Type of payment inquiry, for payment calls"
    },
    "conversation_highlights": [
        "Key quotes or important exchanges from the call"
    ],
    "next_steps": [
        "List of next steps for follow-up"
    ],
    "requires_callback": true | false,
    "callback_reason": "Reason for callback if required"
}

Only include key_details fields that are relevant to the call type. Use null for missing information. Output only JSON, no extra commentary.`, transcript)
}

const summarySystemPrompt = `You are a property management assistant that analyzes call transcripts and extracts structured information.

Your task is to:
1. Identify the type of call (leasing, maintenance, payment, or general)
2. Extract key information based on the call type
3. List action items that need follow-up
4. Determine the sentiment of the call and whether the issue was resolved during the call
5. Summarize the conversation clearly

Be concise but thorough. Focus on actionable information.`
