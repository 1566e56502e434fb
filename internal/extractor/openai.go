package extractor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ashureev/hr-assistant/internal/domain"
	"github.com/ashureev/hr-assistant/internal/llm"
)

// DefaultHistoryWindow is the number of prior messages sent as context.
const DefaultHistoryWindow = 4

// OpenAI extracts slots by prompting a chat model for JSON.
type OpenAI struct {
	completer llm.Completer
	window    int
	now       func() time.Time
}

// NewOpenAI creates an LLM backed extractor. window bounds the history sent
// with each request.
func NewOpenAI(completer llm.Completer, window int) *OpenAI {
	if window <= 0 {
		window = DefaultHistoryWindow
	}
	return &OpenAI{completer: completer, window: window, now: time.Now}
}

func (o *OpenAI) Extract(ctx context.Context, text string, history []domain.Message) (Result, error) {
	if len(history) > o.window {
		history = history[len(history)-o.window:]
	}
	prior := make([]llm.Message, 0, len(history))
	for _, m := range history {
		role := llm.RoleUser
		if m.Role == domain.RoleAssistant {
			role = llm.RoleAssistant
		}
		prior = append(prior, llm.Message{Role: role, Content: m.Content})
	}

	content, err := o.completer.Complete(ctx, llm.CompletionRequest{
		System:      extractionPrompt(o.now().Format("2006-01-02")),
		History:     prior,
		Prompt:      text,
		Temperature: 0.1,
		MaxTokens:   300,
	})
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", domain.ErrExternalService, err)
	}
	return ParseJSON(content)
}

func extractionPrompt(today string) string {
	return strings.ReplaceAll(extractionPromptTemplate, "{{today}}", today)
}

const extractionPromptTemplate = `You are an HR assistant that extracts structured data from natural language commands.

CRITICAL: You MUST ALWAYS respond with ONLY valid JSON. No explanation, no text, ONLY JSON.

DATE PARSING RULES:
- TODAY'S DATE: {{today}}
- Convert ALL relative dates to YYYY-MM-DD format
- "immediately", "today", "now" -> today's date
- "tomorrow" -> add 1 day to today
- "next Monday", "next Friday", etc. -> find next occurrence of that weekday
- "next week" -> add 7 days to today
- "end of week" -> next Friday
- "end of month" -> last day of current month

Supported commands:
1. hire_employee: REQUIRED fields: name, team, country. Optional: title, salary, startDate
2. give_bonus: REQUIRED fields: name, amount. Optional: bonusType, reason
3. change_title: REQUIRED fields: name, newTitle. Optional: effectiveDate
4. terminate_employee: REQUIRED fields: name. Optional: termDate, reason
5. view_employees: Show all employees. Optional: team
6. view_employee: Show specific employee. REQUIRED: name
7. view_teams: Show all teams
8. view_history: Show this session's action history
9. view_global_history: Show all actions across all sessions. Optional: action
10. help: Show all available commands

CONTEXT EXTRACTION RULES:
- Scan ALL previous messages for names, teams, countries, amounts, dates
- Merge information from conversation history with the current message

INCOMPLETE COMMAND HANDLING:
- If ANY required field is missing or null, return "incomplete" intent with the fields you found and null for the missing ones
- Incomplete commands have confidence 0.0 and needsConfirmation false

RESPONSE FORMAT (JSON ONLY):
{"intent": "command_type_or_incomplete_or_unknown", "slots": {"field": "value"}, "confidence": 0.0-1.0, "needsConfirmation": true/false}

Example:
"hire John Smith to engineering team in Canada"
-> {"intent": "hire_employee", "slots": {"name": "John Smith", "team": "engineering", "country": "Canada"}, "confidence": 0.95, "needsConfirmation": true}`
