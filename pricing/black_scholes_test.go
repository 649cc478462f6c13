package pricing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielbowman/calspread/models"
)

// Reference values for S=100, K=100, T=1y, sigma=20%, r=5%, cross-checked
// against standard Black-Scholes tables.
var atmCall = Input{Spot: 100, Strike: 100, TTE: 1, Sigma: 0.20, Rate: 0.05, Type: models.Call}

func TestPriceKnownValues(t *testing.T) {
	price, err := Price(atmCall)
	require.NoError(t, err)
	assert.InDelta(t, 10.4506, price, 1e-3)

	put := atmCall
	put.Type = models.Put
	price, err = Price(put)
	require.NoError(t, err)
	assert.InDelta(t, 5.5735, price, 1e-3)
}

func TestGreeksKnownValues(t *testing.T) {
	g, err := Greeks(atmCall)
	require.NoError(t, err)

	assert.InDelta(t, 0.6368, g.Delta, 1e-3)
	assert.InDelta(t, 0.01876, g.Gamma, 1e-4)
	assert.InDelta(t, 0.3752, g.Vega, 1e-3)
	assert.InDelta(t, -0.01757, g.Theta, 1e-4) // per calendar day
	assert.InDelta(t, 0.5323, g.Rho, 1e-3)

	put := atmCall
	put.Type = models.Put
	g, err = Greeks(put)
	require.NoError(t, err)
	assert.InDelta(t, -0.3632, g.Delta, 1e-3)
	assert.InDelta(t, -0.004542, g.Theta, 1e-4)
	assert.InDelta(t, -0.4189, g.Rho, 1e-3)
}

func TestGreeksBounds(t *testing.T) {
	spots := []float64{50, 80, 100, 120, 200}
	sigmas := []float64{0.05, 0.2, 0.6, 1.5}
	ttes := []float64{0.01, 0.25, 1, 2}

	for _, s := range spots {
		for _, sigma := range sigmas {
			for _, tte := range ttes {
				call, err := Greeks(Input{Spot: s, Strike: 100, TTE: tte, Sigma: sigma, Rate: 0.05, Type: models.Call})
				require.NoError(t, err)
				assert.GreaterOrEqual(t, call.Delta, 0.0)
				assert.LessOrEqual(t, call.Delta, 1.0)
				assert.GreaterOrEqual(t, call.Gamma, 0.0)
				assert.GreaterOrEqual(t, call.Vega, 0.0)

				put, err := Greeks(Input{Spot: s, Strike: 100, TTE: tte, Sigma: sigma, Rate: 0.05, Type: models.Put})
				require.NoError(t, err)
				assert.GreaterOrEqual(t, put.Delta, -1.0)
				assert.LessOrEqual(t, put.Delta, 0.0)
			}
		}
	}
}

func TestInvalidInputs(t *testing.T) {
	cases := map[string]Input{
		"zero tte":      {Spot: 100, Strike: 100, TTE: 0, Sigma: 0.2, Rate: 0.05, Type: models.Call},
		"negative tte":  {Spot: 100, Strike: 100, TTE: -0.1, Sigma: 0.2, Rate: 0.05, Type: models.Call},
		"zero sigma":    {Spot: 100, Strike: 100, TTE: 1, Sigma: 0, Rate: 0.05, Type: models.Call},
		"negative spot": {Spot: -1, Strike: 100, TTE: 1, Sigma: 0.2, Rate: 0.05, Type: models.Call},
		"zero strike":   {Spot: 100, Strike: 0, TTE: 1, Sigma: 0.2, Rate: 0.05, Type: models.Put},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Price(in)
			assert.ErrorIs(t, err, ErrInvalidInput)
			_, err = Greeks(in)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestIntrinsic(t *testing.T) {
	assert.Equal(t, 5.0, Intrinsic(105, 100, models.Call))
	assert.Equal(t, 0.0, Intrinsic(95, 100, models.Call))
	assert.Equal(t, 5.0, Intrinsic(95, 100, models.Put))
	assert.Equal(t, 0.0, Intrinsic(105, 100, models.Put))
}

func TestImpliedVolatilityRoundTrip(t *testing.T) {
	target, err := Price(atmCall)
	require.NoError(t, err)

	iv, err := ImpliedVolatility(Input{Spot: 100, Strike: 100, TTE: 1, Rate: 0.05, Type: models.Call}, target)
	require.NoError(t, err)
	assert.InDelta(t, 0.20, iv, 1e-4)
}

func TestImpliedVolatilityRejectsBadTarget(t *testing.T) {
	_, err := ImpliedVolatility(atmCall, 0)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestPutCallParity(t *testing.T) {
	call, err := Price(atmCall)
	require.NoError(t, err)
	put := atmCall
	put.Type = models.Put
	putPrice, err := Price(put)
	require.NoError(t, err)

	// C - P = S - K*e^{-rT}
	parity := atmCall.Spot - atmCall.Strike*math.Exp(-atmCall.Rate*atmCall.TTE)
	assert.InDelta(t, parity, call-putPrice, 1e-9)
}
