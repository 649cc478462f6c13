package scoring

import (
	"fmt"
	"strings"

	"github.com/danielbowman/calspread/models"
)

// Decide maps (final score, liquidity score) to a recommendation, a risk
// tier and the triggered rule explanations. The score input is the final
// composite after business-rule adjustments, so a setup penalized for
// expensive vol or thin liquidity can drop below a threshold its raw
// composite would clear. It is a pure function: no randomness, no hidden
// state, identical inputs always yield identical output. Calendars are
// non-directional, so a passing score resolves to a direction-neutral Enter.
func Decide(score, liquidity float64) (models.Recommendation, models.RiskTier, []string) {
	if liquidity < recMinLiquidity {
		return models.Skip, models.RiskHigh, []string{
			fmt.Sprintf("liquidity score %.0f below the %.0f floor, fills would be poor", liquidity, recMinLiquidity),
		}
	}
	switch {
	case score >= recEnterScore:
		risk := models.RiskMedium
		reasons := []string{fmt.Sprintf("composite score %.0f clears the %.0f entry bar", score, recEnterScore)}
		if score >= recLowRiskScore {
			risk = models.RiskLow
			reasons = append(reasons, fmt.Sprintf("score %.0f or better marks the setup low risk", recLowRiskScore))
		}
		return models.Enter, risk, reasons
	case score >= recMaybeScore:
		return models.Maybe, models.RiskMedium, []string{
			fmt.Sprintf("composite score %.0f is workable but below the %.0f entry bar", score, recEnterScore),
		}
	default:
		return models.Skip, models.RiskHigh, []string{
			fmt.Sprintf("composite score %.0f below the %.0f minimum", score, recMaybeScore),
		}
	}
}

// Reasoning renders the triggered rules plus the applied score adjustments
// as one human-readable string, so the presentation layer never re-derives
// numbers.
func Reasoning(rules []string, b models.ScoreBreakdown) string {
	parts := append([]string{}, rules...)
	for _, adj := range b.Adjustments {
		parts = append(parts, fmt.Sprintf("%s (x%.2f)", adj.Rule, adj.Multiplier))
	}
	return strings.Join(parts, "; ")
}
