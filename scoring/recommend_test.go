package scoring

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/danielbowman/calspread/models"
)

func TestDecideLiquidityFloor(t *testing.T) {
	// Liquidity 35 fails the floor no matter how good the score is.
	for _, score := range []float64{0, 59, 74, 90, 100} {
		rec, risk, reasons := Decide(score, 35)
		assert.Equal(t, models.Skip, rec)
		assert.Equal(t, models.RiskHigh, risk)
		assert.NotEmpty(t, reasons)
	}
}

func TestDecideTiers(t *testing.T) {
	cases := []struct {
		score, liquidity float64
		rec              models.Recommendation
		risk             models.RiskTier
	}{
		{90, 60, models.Enter, models.RiskLow}, // score >= 85 branch
		{85, 60, models.Enter, models.RiskLow},
		{80, 60, models.Enter, models.RiskMedium},
		{75, 60, models.Enter, models.RiskMedium},
		{70, 60, models.Maybe, models.RiskMedium},
		{60, 60, models.Maybe, models.RiskMedium},
		{59.9, 60, models.Skip, models.RiskHigh},
		{0, 100, models.Skip, models.RiskHigh},
	}
	for _, tc := range cases {
		rec, risk, _ := Decide(tc.score, tc.liquidity)
		assert.Equal(t, tc.rec, rec, "score %.1f liquidity %.1f", tc.score, tc.liquidity)
		assert.Equal(t, tc.risk, risk, "score %.1f liquidity %.1f", tc.score, tc.liquidity)
	}
}

func TestDecideIsPure(t *testing.T) {
	for _, score := range []float64{10, 55, 62, 77, 88} {
		for _, liq := range []float64{20, 45, 70} {
			rec1, risk1, reasons1 := Decide(score, liq)
			rec2, risk2, reasons2 := Decide(score, liq)
			assert.Equal(t, rec1, rec2)
			assert.Equal(t, risk1, risk2)
			assert.Equal(t, reasons1, reasons2)
		}
	}
}

func TestReasoningIncludesAdjustments(t *testing.T) {
	b := models.ScoreBreakdown{
		Adjustments: []models.AppliedAdjustment{{Rule: "thin liquidity", Multiplier: 0.9}},
	}
	s := Reasoning([]string{"composite score 80 clears the 75 entry bar"}, b)
	assert.True(t, strings.Contains(s, "entry bar"))
	assert.True(t, strings.Contains(s, "thin liquidity (x0.90)"))
}
