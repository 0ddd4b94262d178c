package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/leadscore/internal/model"
)

func newTestEngine(c Completer) *Engine {
	return NewEngine(c, Config{})
}

func TestRoleScore(t *testing.T) {
	e := newTestEngine(nil)

	tests := []struct {
		name     string
		role     string
		expected int
	}{
		{"ceo is decision maker", "CEO", 30},
		{"lowercase ceo matches", "ceo", 30},
		{"vp of sales is decision maker", "VP of Sales", 30},
		{"head of growth is decision maker", "Head of Growth", 30},
		{"co-founder is decision maker", "Co-Founder & CTO", 30},
		{"senior engineer is influencer", "Senior Engineer", 15},
		{"product manager is influencer", "Product Manager", 15},
		{"tech lead is influencer", "Tech Lead", 15},
		{"intern scores zero", "Intern", 0},
		{"empty role scores zero", "", 0},
		{"whitespace trimmed", "  Director  ", 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, e.roleScore(tt.role))
		})
	}
}

func TestRoleScore_DecisionMakerWinsOverInfluencer(t *testing.T) {
	e := newTestEngine(nil)

	// "Senior Director" matches both marker lists; the decision-maker
	// check runs first and only one fires.
	assert.Equal(t, 30, e.roleScore("Senior Director"))
}

func TestIndustryScore(t *testing.T) {
	e := newTestEngine(nil)

	tests := []struct {
		name     string
		industry string
		useCases []string
		expected int
	}{
		{"exact match", "SaaS", []string{"saas"}, 25},
		{"exact match with whitespace", "  Fintech ", []string{"fintech"}, 25},
		{"token overlap is adjacent", "B2B SaaS", []string{"saas platforms"}, 10},
		{"substring keyword is adjacent", "healthtech", []string{"health"}, 10},
		{"no overlap", "Agriculture", []string{"fintech", "saas"}, 0},
		{"empty industry", "", []string{"saas"}, 0},
		{"no use cases", "SaaS", nil, 0},
		{"exact beats adjacent on first use case", "saas", []string{"saas", "saas platforms"}, 25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			offer := model.Offer{IdealUseCases: tt.useCases}
			assert.Equal(t, tt.expected, e.industryScore(tt.industry, offer))
		})
	}
}

func TestCompletenessScore(t *testing.T) {
	e := newTestEngine(nil)

	full := model.Lead{Name: "Ava", Role: "CEO", Company: "Acme", Industry: "SaaS"}
	assert.Equal(t, 10, e.completenessScore(full))

	// No partial credit for 3 of 4.
	for _, blank := range []model.Lead{
		{Role: "CEO", Company: "Acme", Industry: "SaaS"},
		{Name: "Ava", Company: "Acme", Industry: "SaaS"},
		{Name: "Ava", Role: "CEO", Industry: "SaaS"},
		{Name: "Ava", Role: "CEO", Company: "Acme"},
		{Name: "Ava", Role: "CEO", Company: "Acme", Industry: "   "},
	} {
		assert.Equal(t, 0, e.completenessScore(blank))
	}
}

func TestRuleScore_Sum(t *testing.T) {
	e := newTestEngine(nil)
	offer := model.Offer{IdealUseCases: []string{"saas"}}

	lead := model.Lead{Name: "Ava", Role: "CEO", Company: "Acme", Industry: "SaaS"}
	// 30 role + 25 exact industry + 10 completeness.
	assert.Equal(t, 65, e.RuleScore(lead, offer))

	empty := model.Lead{}
	assert.Equal(t, 0, e.RuleScore(empty, offer))
}
