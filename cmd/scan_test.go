package cmd

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielbowman/calspread/models"
	"github.com/danielbowman/calspread/pricing"
)

func TestBackfillImpliedVol(t *testing.T) {
	logger = zerolog.Nop()

	asOf := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	const rate = 0.05

	// Theoretical mid for a 45 DTE ATM call at 22% vol; the solver should
	// recover that vol from the price alone.
	theo, err := pricing.Price(pricing.Input{
		Spot: 100, Strike: 100, TTE: 45.0 / 365.0, Sigma: 0.22, Rate: rate,
		Type: models.Call,
	})
	require.NoError(t, err)

	snap := models.ChainSnapshot{
		Symbol: "SPY", AsOf: asOf, Spot: 100,
		Quotes: []models.OptionQuote{
			{
				Symbol: "missing-iv", Strike: 100, Expiration: asOf.AddDate(0, 0, 45),
				OptionType: models.Call, Bid: theo, Ask: theo,
			},
			{
				Symbol: "has-iv", Strike: 100, Expiration: asOf.AddDate(0, 0, 45),
				OptionType: models.Call, Bid: 3.00, Ask: 3.10, ImpliedVolatility: 0.30,
			},
			{
				Symbol: "expired", Strike: 100, Expiration: asOf.AddDate(0, 0, -1),
				OptionType: models.Call, Bid: 3.00, Ask: 3.10,
			},
			{
				Symbol: "no-market", Strike: 100, Expiration: asOf.AddDate(0, 0, 45),
				OptionType: models.Put,
			},
		},
	}

	backfillImpliedVol(&snap, rate)

	assert.InDelta(t, 0.22, snap.Quotes[0].ImpliedVolatility, 1e-4)
	assert.Equal(t, 0.30, snap.Quotes[1].ImpliedVolatility, "existing IV untouched")
	assert.Zero(t, snap.Quotes[2].ImpliedVolatility, "expired quote skipped")
	assert.Zero(t, snap.Quotes[3].ImpliedVolatility, "zero midpoint skipped")
}
