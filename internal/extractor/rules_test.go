package extractor

import (
	"context"
	"testing"

	"github.com/ashureev/hr-assistant/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRulesExtract(t *testing.T) {
	tests := []struct {
		text   string
		intent domain.Intent
		slots  domain.Slots
	}{
		{"Hire Ada Lovelace to the engineering team in Canada", domain.IntentHireEmployee,
			domain.Slots{"name": "Ada Lovelace", "team": "engineering", "country": "Canada"}},
		{"hire Grace Hopper on platform in United States.", domain.IntentHireEmployee,
			domain.Slots{"name": "Grace Hopper", "team": "platform", "country": "United States"}},
		{"Give Sarah Chen a $5,000 bonus", domain.IntentGiveBonus,
			domain.Slots{"name": "Sarah Chen", "amount": "$5,000"}},
		{"give Alex Kim a 2k spot bonus!", domain.IntentGiveBonus,
			domain.Slots{"name": "Alex Kim", "amount": "2k", "bonusType": "spot"}},
		{"Change Maria Lopez's title to Senior Designer", domain.IntentChangeTitle,
			domain.Slots{"name": "Maria Lopez", "newTitle": "Senior Designer"}},
		{"Terminate Alex Kim effective next Friday", domain.IntentTerminateEmployee,
			domain.Slots{"name": "Alex Kim", "termDate": "next Friday"}},
		{"fire Alex Kim immediately", domain.IntentTerminateEmployee,
			domain.Slots{"name": "Alex Kim", "termDate": "immediately"}},
		{"terminate Yuki Tanaka", domain.IntentTerminateEmployee,
			domain.Slots{"name": "Yuki Tanaka"}},
		{"show all employees", domain.IntentViewEmployees, domain.Slots{}},
		{"list employees on the platform team", domain.IntentViewEmployees, domain.Slots{"team": "platform"}},
		{"show teams", domain.IntentViewTeams, domain.Slots{}},
		{"show my history", domain.IntentViewHistory, domain.Slots{}},
		{"show all history", domain.IntentViewGlobalHistory, domain.Slots{}},
		{"who is Sarah Chen?", domain.IntentViewEmployee, domain.Slots{"name": "Sarah Chen"}},
		{"help", domain.IntentHelp, domain.Slots{}},
		{"hire John Smith", domain.IntentIncomplete,
			domain.Slots{"name": "John Smith", "team": nil, "country": nil}},
		{"give a bonus to Sarah Chen", domain.IntentIncomplete,
			domain.Slots{"name": "Sarah Chen", "amount": nil}},
		{"what's the weather like", domain.IntentUnknown, domain.Slots{}},
	}

	r := NewRules()
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			res, err := r.Extract(context.Background(), tt.text, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.intent, res.Intent)
			assert.Equal(t, tt.slots, res.Slots)
			switch tt.intent {
			case domain.IntentIncomplete, domain.IntentUnknown:
				assert.Equal(t, 0.0, res.Confidence)
				assert.False(t, res.NeedsConfirmation)
			default:
				assert.GreaterOrEqual(t, res.Confidence, 0.7)
				assert.True(t, res.NeedsConfirmation)
			}
		})
	}
}
