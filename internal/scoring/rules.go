package scoring

import (
	"strings"

	"github.com/sells-group/leadscore/internal/model"
)

// decisionMakerMarkers and influencerMarkers are matched as substrings of the
// lowercased role. The decision-maker check runs first; at most one fires.
var decisionMakerMarkers = []string{
	"ceo", "cto", "cfo", "president", "founder", "co-founder",
	"head of", "director", "vp", "chief", "owner",
}

var influencerMarkers = []string{
	"manager", "senior", "lead", "architect", "principal",
}

// RuleScore computes the deterministic sub-score for a lead against a
// normalized offer. Pure, no failure modes.
func (e *Engine) RuleScore(lead model.Lead, offer model.Offer) int {
	return e.roleScore(lead.Role) + e.industryScore(lead.Industry, offer) + e.completenessScore(lead)
}

func (e *Engine) roleScore(role string) int {
	if role == "" {
		return 0
	}
	clean := strings.ToLower(strings.TrimSpace(role))

	for _, marker := range decisionMakerMarkers {
		if strings.Contains(clean, marker) {
			return e.weights.DecisionMaker
		}
	}
	for _, marker := range influencerMarkers {
		if strings.Contains(clean, marker) {
			return e.weights.Influencer
		}
	}
	return 0
}

func (e *Engine) industryScore(industry string, offer model.Offer) int {
	if industry == "" || len(offer.IdealUseCases) == 0 {
		return 0
	}
	industryLower := strings.ToLower(strings.TrimSpace(industry))
	industryKeywords := strings.Fields(industryLower)

	for _, useCase := range offer.IdealUseCases {
		useCaseLower := strings.ToLower(strings.TrimSpace(useCase))

		if industryLower == useCaseLower {
			return e.weights.ExactICP
		}

		useCaseKeywords := strings.Fields(useCaseLower)
		if intersects(industryKeywords, useCaseKeywords) {
			return e.weights.AdjacentICP
		}

		// Cross-substring check: any keyword of one string contained in the
		// other. Matches the observed heuristic, including its over-eager
		// behavior on short generic tokens.
		if anyContained(useCaseLower, industryKeywords) || anyContained(industryLower, useCaseKeywords) {
			return e.weights.AdjacentICP
		}
	}
	return 0
}

// completenessScore awards points only when all four required fields are
// non-blank after trimming. No partial credit.
func (e *Engine) completenessScore(lead model.Lead) int {
	for _, field := range []string{lead.Name, lead.Role, lead.Company, lead.Industry} {
		if strings.TrimSpace(field) == "" {
			return 0
		}
	}
	return e.weights.Completeness
}

func intersects(a, b []string) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	set := make(map[string]struct{}, len(a))
	for _, w := range a {
		set[w] = struct{}{}
	}
	for _, w := range b {
		if _, ok := set[w]; ok {
			return true
		}
	}
	return false
}

func anyContained(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
