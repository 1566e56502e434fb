package phrasing

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ashureev/hr-assistant/internal/domain"
	"github.com/ashureev/hr-assistant/internal/llm"
)

// LLM phrases messages with a chat model and falls back to its templates
// whenever the model fails or answers with nothing.
type LLM struct {
	completer llm.Completer
	fallback  Phraser
	logger    *slog.Logger
}

// NewLLM creates an LLM phraser.
func NewLLM(completer llm.Completer, fallback Phraser, logger *slog.Logger) *LLM {
	if fallback == nil {
		fallback = NewTemplates(nil)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &LLM{completer: completer, fallback: fallback, logger: logger}
}

const confirmationPrompt = `Generate a clear, professional confirmation message for HR actions.
Be specific about what will happen and ask for explicit confirmation.

Examples:
- "I will hire John Smith as a Software Engineer in the engineering team located in Canada, starting immediately. Should I proceed?"
- "I will give Sarah Chen a $5,000 performance bonus. This will be added to her next payroll cycle. Should I proceed?"
- "I will change Maria Lopez's title from Designer to Senior Designer, effective immediately. Should I proceed?"
- "I will terminate Alex Kim effective Friday, August 30th, 2024. This will trigger offboarding procedures. Should I proceed?"

For dates: always convert YYYY-MM-DD to a human-readable format like "Friday, August 30th, 2024".`

const successPrompt = `Generate a success message for completed HR actions.
Be positive and specific, and mention any next steps or side effects. Start the message with "✅".

Examples:
- "✅ Successfully hired John Smith! Employee profile created and the manager has been notified."
- "✅ Bonus approved! $5,000 performance bonus added to Sarah Chen's payroll. Payment will be processed in the next cycle."
- "✅ Title updated! Maria Lopez is now Senior Designer."
- "✅ Termination processed. Alex Kim's final day is January 31st. Offboarding checklist created."`

const incompletePrompt = `Generate a helpful message asking for missing information in HR commands.
Be polite and specific about what's needed.

Examples:
- "I need more information to proceed. Could you please specify which country for the hire?"
- "I see you want to give a bonus, but could you specify the amount?"`

func (p *LLM) Confirmation(ctx context.Context, intent domain.Intent, slots domain.Slots) string {
	prompt := fmt.Sprintf("Intent: %s, Slots: %s", intent, toJSON(slots))
	if out, ok := p.complete(ctx, confirmationPrompt, prompt, 0.3, 150); ok {
		return out
	}
	return p.fallback.Confirmation(ctx, intent, slots)
}

func (p *LLM) Success(ctx context.Context, intent domain.Intent, slots domain.Slots, result domain.CommandResult) string {
	if !intent.Mutating() {
		return p.fallback.Success(ctx, intent, slots, result)
	}
	prompt := fmt.Sprintf("Intent: %s, Slots: %s, Result: %s", intent, toJSON(slots), toJSON(result.Data))
	if out, ok := p.complete(ctx, successPrompt, prompt, 0.4, 200); ok {
		return out
	}
	return p.fallback.Success(ctx, intent, slots, result)
}

func (p *LLM) Incomplete(ctx context.Context, slots domain.Slots) string {
	prompt := fmt.Sprintf("Missing information for slots: %s", toJSON(slots))
	if out, ok := p.complete(ctx, incompletePrompt, prompt, 0.3, 150); ok {
		return out
	}
	return p.fallback.Incomplete(ctx, slots)
}

func (p *LLM) complete(ctx context.Context, system, prompt string, temperature float64, maxTokens int) (string, bool) {
	if p.completer == nil {
		return "", false
	}
	out, err := p.completer.Complete(ctx, llm.CompletionRequest{
		System:      system,
		Prompt:      prompt,
		Temperature: temperature,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		p.logger.Warn("phrasing completion failed, using template", "error", err)
		return "", false
	}
	out = strings.TrimSpace(out)
	return out, out != ""
}

func toJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "{}"
	}
	return string(b)
}
