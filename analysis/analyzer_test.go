package analysis

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielbowman/calspread/models"
)

func testSnapshot() models.ChainSnapshot {
	snap := chainWithExpiries(100, []float64{95, 100, 105}, 30, 70)

	// Alternating +/-1% closes around 100 keep realized vol moderate.
	price := 100.0
	day := testAsOf.AddDate(0, 0, -80)
	for i := 0; i < 80; i++ {
		if i%2 == 0 {
			price *= 1.01
		} else {
			price /= 1.01
		}
		snap.History = append(snap.History, models.DailyBar{
			Date: day.AddDate(0, 0, i), Open: price, High: price * 1.005,
			Low: price * 0.995, Close: price, Volume: 1_000_000,
		})
	}

	for i := 0; i < 252; i++ {
		snap.IVHistory = append(snap.IVHistory, 0.15+float64(i%60)*0.005)
	}
	return snap
}

func testConfig() models.Config {
	cfg := models.DefaultConfig()
	seed := uint64(7)
	cfg.Seed = &seed
	cfg.MonteCarloPaths = 2000
	cfg.Workers = 2
	return cfg
}

func TestNewRejectsBadConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Weights.Liquidity = 0.5 // sums to 1.2
	_, err := New(cfg, zerolog.Nop())
	assert.Error(t, err)

	cfg = testConfig()
	cfg.MonteCarloPaths = 0
	_, err = New(cfg, zerolog.Nop())
	assert.Error(t, err)

	cfg = testConfig()
	cfg.StrikeMode = "DELTA"
	_, err = New(cfg, zerolog.Nop())
	assert.Error(t, err)
}

func TestAnalyzeChainProducesRankedOpportunities(t *testing.T) {
	engine, err := New(testConfig(), zerolog.Nop())
	require.NoError(t, err)

	result, err := engine.AnalyzeChain(context.Background(), testSnapshot())
	require.NoError(t, err)
	require.Len(t, result.Opportunities, 2) // call and put calendars at the ATM strike
	assert.Empty(t, result.Excluded)

	for _, opp := range result.Opportunities {
		assert.NotEmpty(t, opp.ID)
		assert.Equal(t, "SPY", opp.Symbol)
		assert.Equal(t, 100.0, opp.Spread.Strike)
		assert.NotEmpty(t, opp.Reasoning)
		assert.NotZero(t, opp.Recommendation)
		assert.NotZero(t, opp.Risk)

		assert.GreaterOrEqual(t, opp.Score.Final, 0.0)
		assert.LessOrEqual(t, opp.Score.Final, 100.0)
		assert.InDelta(t, opp.Spread.NetDebit(), opp.Profile.MaxLoss, 1e-9)

		// The volatility picture rides along for reporting.
		assert.Equal(t, opp.Spread.Front.ImpliedVolatility, opp.Volatility.FrontIV)
		assert.InDelta(t, opp.Spread.Back.ImpliedVolatility-opp.Spread.Front.ImpliedVolatility,
			opp.Volatility.Skew, 1e-9)
		assert.Greater(t, opp.Volatility.HistoricalVol, 0.0)
		assert.Greater(t, opp.Volatility.Parkinson, 0.0)
		assert.Greater(t, opp.Volatility.GarmanKlass, 0.0)

		// Long back, short front: net theta should favor the position
		// (front decays faster than back for same-strike calendars).
		assert.Greater(t, opp.Greeks.Net.Theta, 0.0)
	}

	// Ranked by final score descending.
	for i := 1; i < len(result.Opportunities); i++ {
		assert.GreaterOrEqual(t,
			result.Opportunities[i-1].Score.Final,
			result.Opportunities[i].Score.Final)
	}
}

func TestAnalyzeDeterministicWithSeed(t *testing.T) {
	engine, err := New(testConfig(), zerolog.Nop())
	require.NoError(t, err)

	first, err := engine.AnalyzeChain(context.Background(), testSnapshot())
	require.NoError(t, err)
	second, err := engine.AnalyzeChain(context.Background(), testSnapshot())
	require.NoError(t, err)
	require.Equal(t, len(first.Opportunities), len(second.Opportunities))

	for i := range first.Opportunities {
		a, b := first.Opportunities[i], second.Opportunities[i]
		assert.Equal(t, a.Symbol, b.Symbol)
		assert.Equal(t, a.Spread.OptionType, b.Spread.OptionType)
		assert.InDelta(t, a.Profile.ProbabilityOfProfit, b.Profile.ProbabilityOfProfit, 0.005)
		assert.Equal(t, a.Score.Final, b.Score.Final)
	}
}

func TestAnalyzeExcludesShortIVHistory(t *testing.T) {
	engine, err := New(testConfig(), zerolog.Nop())
	require.NoError(t, err)

	snap := testSnapshot()
	snap.IVHistory = snap.IVHistory[:5]

	result, err := engine.AnalyzeChain(context.Background(), snap)
	require.NoError(t, err)
	assert.Empty(t, result.Opportunities)
	require.NotEmpty(t, result.Excluded)
	for _, exc := range result.Excluded {
		assert.Equal(t, ReasonInsufficientHistory, exc.Reason)
	}
}

func TestAnalyzeRejectsInvalidSnapshot(t *testing.T) {
	engine, err := New(testConfig(), zerolog.Nop())
	require.NoError(t, err)

	snap := testSnapshot()
	snap.Spot = 0

	result, err := engine.AnalyzeChain(context.Background(), snap)
	require.NoError(t, err)
	assert.Empty(t, result.Opportunities)
	require.Len(t, result.Excluded, 1)
	assert.Equal(t, ReasonInvalidSnapshot, result.Excluded[0].Reason)
}

func TestAnalyzeCancelledContext(t *testing.T) {
	engine, err := New(testConfig(), zerolog.Nop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := engine.Analyze(ctx, []models.ChainSnapshot{testSnapshot()}, nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, result.Opportunities)
	assert.Empty(t, result.Excluded)
}

func TestAnalyzeProgressCallback(t *testing.T) {
	engine, err := New(testConfig(), zerolog.Nop())
	require.NoError(t, err)

	var calls, lastCompleted, lastTotal int
	_, err = engine.Analyze(context.Background(), []models.ChainSnapshot{testSnapshot()}, func(completed, total int) {
		calls++
		lastCompleted, lastTotal = completed, total
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Equal(t, 2, lastCompleted)
	assert.Equal(t, 2, lastTotal)
}
