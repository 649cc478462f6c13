package analysis

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/danielbowman/calspread/models"
	"github.com/danielbowman/calspread/pnl"
	"github.com/danielbowman/calspread/pricing"
	"github.com/danielbowman/calspread/scoring"
	"github.com/danielbowman/calspread/volatility"
)

// Exclusion reason codes surfaced on batch results.
const (
	ReasonInsufficientHistory = "insufficient_history"
	ReasonInvalidStructure    = "invalid_structure"
	ReasonInvalidSnapshot     = "invalid_snapshot"
	ReasonCandidatePanic      = "candidate_panic"
)

// Exclusion records one candidate or symbol dropped from the batch and why.
// Excluded candidates never carry partial scores.
type Exclusion struct {
	Symbol string            `json:"symbol"`
	Strike float64           `json:"strike,omitempty"`
	Type   models.OptionType `json:"type,omitempty"`
	Reason string            `json:"reason"`
	Detail string            `json:"detail,omitempty"`
}

// Result is one batch outcome: ranked opportunities plus every exclusion.
type Result struct {
	Opportunities []models.Opportunity `json:"opportunities"`
	Excluded      []Exclusion          `json:"excluded,omitempty"`
}

// ProgressFunc is invoked once per completed candidate so a front-end can
// drive a progress bar without this package importing one.
type ProgressFunc func(completed, total int)

// Analyzer is the engine facade. It holds configuration and a logger and no
// other state; every invocation is a pure function of its inputs.
type Analyzer struct {
	cfg models.Config
	log zerolog.Logger
}

// New validates the configuration and builds an Analyzer. Config problems
// are the only fatal errors in the subsystem.
func New(cfg models.Config, logger zerolog.Logger) (*Analyzer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Analyzer{cfg: cfg, log: logger}, nil
}

// Analyze evaluates a batch of snapshots and returns opportunities ranked by
// final score descending, ties broken by symbol then strike then type for
// deterministic output. On context cancellation all partial results are
// discarded and ctx.Err() returned.
func (a *Analyzer) Analyze(ctx context.Context, snaps []models.ChainSnapshot, progress ProgressFunc) (Result, error) {
	var result Result
	var jobs []candidate

	for _, snap := range snaps {
		symJobs, excluded := a.prepareSymbol(snap)
		result.Excluded = append(result.Excluded, excluded...)
		jobs = append(jobs, symJobs...)
	}
	a.log.Info().Int("symbols", len(snaps)).Int("candidates", len(jobs)).Msg("batch prepared")

	opps, excluded, err := a.processCandidates(ctx, jobs, progress)
	if err != nil {
		return Result{}, err
	}
	result.Opportunities = opps
	result.Excluded = append(result.Excluded, excluded...)

	sort.Slice(result.Opportunities, func(i, j int) bool {
		oi, oj := result.Opportunities[i], result.Opportunities[j]
		if oi.Score.Final != oj.Score.Final {
			return oi.Score.Final > oj.Score.Final
		}
		if oi.Symbol != oj.Symbol {
			return oi.Symbol < oj.Symbol
		}
		if oi.Spread.Strike != oj.Spread.Strike {
			return oi.Spread.Strike < oj.Spread.Strike
		}
		return oi.Spread.OptionType < oj.Spread.OptionType
	})
	return result, nil
}

// AnalyzeChain is the single-symbol convenience wrapper.
func (a *Analyzer) AnalyzeChain(ctx context.Context, snap models.ChainSnapshot) (Result, error) {
	return a.Analyze(ctx, []models.ChainSnapshot{snap}, nil)
}

// candidate is one unit of independent work: a constructed spread plus the
// per-symbol context it is scored against.
type candidate struct {
	spread models.CalendarSpread
	snap   models.ChainSnapshot

	atrRatio       float64
	trendStrength  float64
	levelProximity float64
}

// prepareSymbol validates the snapshot, constructs candidates and computes
// the per-symbol stability signals shared by all of them.
func (a *Analyzer) prepareSymbol(snap models.ChainSnapshot) ([]candidate, []Exclusion) {
	if err := snap.Validate(); err != nil {
		a.log.Warn().Err(err).Str("symbol", snap.Symbol).Msg("snapshot rejected")
		return nil, []Exclusion{{Symbol: snap.Symbol, Reason: ReasonInvalidSnapshot, Detail: err.Error()}}
	}

	spreads := FindCalendarSpreads(snap, a.cfg)
	if len(spreads) == 0 {
		// Soft condition: no qualifying structure contributes nothing.
		a.log.Debug().Str("symbol", snap.Symbol).Msg("no qualifying calendar structure")
		return nil, nil
	}

	closes := snap.Closes()
	atr := volatility.ATR(snap.History)
	c := candidate{
		snap:           snap,
		trendStrength:  volatility.TrendStrength(closes),
		levelProximity: volatility.LevelProximity(snap.Spot, volatility.SwingLevels(snap.History)),
	}
	if snap.Spot > 0 {
		c.atrRatio = atr / snap.Spot
	}

	jobs := make([]candidate, 0, len(spreads))
	for _, spread := range spreads {
		job := c
		job.spread = spread
		jobs = append(jobs, job)
	}
	return jobs, nil
}

// processCandidates fans the candidates out across a worker pool. Candidates
// are independent with no shared mutable state, so ordering across workers
// is irrelevant; the caller sorts.
func (a *Analyzer) processCandidates(ctx context.Context, jobs []candidate, progress ProgressFunc) ([]models.Opportunity, []Exclusion, error) {
	if len(jobs) == 0 {
		return nil, nil, nil
	}

	workers := a.cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(jobs) {
		workers = len(jobs)
	}

	type outcome struct {
		opp *models.Opportunity
		exc *Exclusion
		err error
	}

	jobChan := make(chan candidate, len(jobs))
	outChan := make(chan outcome, len(jobs))
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobChan {
				select {
				case <-ctx.Done():
					outChan <- outcome{err: ctx.Err()}
					continue
				default:
				}
				opp, exc, err := a.evaluate(ctx, job)
				outChan <- outcome{opp: opp, exc: exc, err: err}
			}
		}()
	}

	for _, job := range jobs {
		jobChan <- job
	}
	close(jobChan)

	go func() {
		wg.Wait()
		close(outChan)
	}()

	var opps []models.Opportunity
	var excluded []Exclusion
	var firstErr error
	completed := 0
	for out := range outChan {
		completed++
		if progress != nil {
			progress(completed, len(jobs))
		}
		switch {
		case out.err != nil:
			if firstErr == nil {
				firstErr = out.err
			}
		case out.opp != nil:
			opps = append(opps, *out.opp)
		case out.exc != nil:
			excluded = append(excluded, *out.exc)
		}
	}
	if firstErr != nil {
		// Cancellation discards the whole batch; there are no valid
		// partial results.
		return nil, nil, firstErr
	}
	return opps, excluded, nil
}

// evaluate runs the full per-candidate pipeline. Hard numeric errors from
// malformed external data are converted here into exclusions instead of
// aborting the batch; only context errors propagate.
func (a *Analyzer) evaluate(ctx context.Context, job candidate) (opp *models.Opportunity, exc *Exclusion, err error) {
	spread := job.spread
	defer func() {
		if r := recover(); r != nil {
			a.log.Error().Interface("panic", r).Str("symbol", spread.Symbol).Msg("candidate panicked")
			opp, err = nil, nil
			exc = &Exclusion{
				Symbol: spread.Symbol, Strike: spread.Strike, Type: spread.OptionType,
				Reason: ReasonCandidatePanic, Detail: fmt.Sprint(r),
			}
		}
	}()

	if verr := spread.Validate(); verr != nil {
		return nil, &Exclusion{
			Symbol: spread.Symbol, Strike: spread.Strike, Type: spread.OptionType,
			Reason: ReasonInvalidStructure, Detail: verr.Error(),
		}, nil
	}

	frontDTE := spread.Front.DTE(job.snap.AsOf)
	backDTE := spread.Back.DTE(job.snap.AsOf)

	frontGreeks := a.legGreeks(spread, spread.Front, frontDTE)
	backGreeks := a.legGreeks(spread, spread.Back, backDTE)
	spreadGreeks := models.NetGreeks(frontGreeks, backGreeks)

	volMetrics, verr := volatility.Analyze(
		spread.Front.ImpliedVolatility, spread.Back.ImpliedVolatility,
		job.snap.IVHistory, job.snap.History,
	)
	if verr != nil {
		if errors.Is(verr, volatility.ErrInsufficientData) {
			return nil, &Exclusion{
				Symbol: spread.Symbol, Strike: spread.Strike, Type: spread.OptionType,
				Reason: ReasonInsufficientHistory, Detail: verr.Error(),
			}, nil
		}
		return nil, nil, verr
	}

	profile, perr := pnl.Compute(ctx, pnl.Params{
		Spread:        spread,
		FrontDTE:      frontDTE,
		BackDTE:       backDTE,
		BackIV:        spread.Back.ImpliedVolatility,
		HistoricalVol: volMetrics.HistoricalVol,
		Rate:          a.cfg.RiskFreeRate,
		Paths:         a.cfg.MonteCarloPaths,
		Seed:          a.cfg.Seed,
	})
	if perr != nil {
		return nil, nil, perr
	}
	if profile.LowConfidence {
		a.log.Debug().Str("symbol", spread.Symbol).Float64("strike", spread.Strike).
			Msg("breakeven search could not bracket two roots")
	}

	breakdown := scoring.Score(scoring.Inputs{
		FrontTheta:     frontGreeks.Theta,
		BackTheta:      backGreeks.Theta,
		FrontIV:        volMetrics.FrontIV,
		Skew:           volMetrics.Skew,
		IVPercentile:   volMetrics.IVPercentile,
		HistoricalVol:  volMetrics.HistoricalVol,
		ATRRatio:       job.atrRatio,
		TrendStrength:  job.trendStrength,
		LevelProximity: job.levelProximity,
		ReturnStdev:    volMetrics.ReturnStdev,
		Volume:         spread.Front.Volume + spread.Back.Volume,
		OpenInterest:   spread.Front.OpenInterest + spread.Back.OpenInterest,
	}, a.cfg.Weights)

	rec, risk, rules := scoring.Decide(breakdown.Final, breakdown.Liquidity)

	return &models.Opportunity{
		ID:             uuid.NewString(),
		Symbol:         spread.Symbol,
		Spread:         spread,
		Greeks:         spreadGreeks,
		Volatility:     volMetrics,
		Profile:        profile,
		Score:          breakdown,
		Recommendation: rec,
		Risk:           risk,
		Reasoning:      scoring.Reasoning(rules, breakdown),
	}, nil, nil
}

// legGreeks prices one leg, substituting intrinsic value and zero Greeks
// when the leg is at or past expiry per the invalid-input recovery rule.
func (a *Analyzer) legGreeks(spread models.CalendarSpread, leg models.OptionQuote, dte int) models.Greeks {
	g, err := pricing.Greeks(pricing.Input{
		Spot:   spread.Spot,
		Strike: leg.Strike,
		TTE:    float64(dte) / 365.0,
		Sigma:  leg.ImpliedVolatility,
		Rate:   a.cfg.RiskFreeRate,
		Type:   leg.OptionType,
	})
	if err != nil {
		// Expired or degenerate input: intrinsic value only, zero Greeks.
		a.log.Debug().Err(err).Str("symbol", leg.Symbol).Msg("greeks fallback to intrinsic")
		return models.Greeks{}
	}
	return g
}
