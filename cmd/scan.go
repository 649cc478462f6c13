package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/olekukonko/tablewriter"
	"github.com/shirou/gopsutil/cpu"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/vbauerster/mpb/v7"
	"github.com/vbauerster/mpb/v7/decor"
	"github.com/xhhuango/json"

	"github.com/danielbowman/calspread/analysis"
	"github.com/danielbowman/calspread/models"
	"github.com/danielbowman/calspread/pricing"
)

var (
	chainPath     string
	historyPath   string
	ivHistoryPath string
	spotOverride  float64
	mcPaths       int
	mcSeed        int64
	workers       int
	outPath       string
	topN          int
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Rank calendar-spread candidates from snapshot files",
	RunE:  runScan,
}

func init() {
	scanCmd.Flags().StringVar(&chainPath, "chain", "", "chain snapshot JSON file (required)")
	scanCmd.Flags().StringVar(&historyPath, "history", "", "daily OHLCV history CSV")
	scanCmd.Flags().StringVar(&ivHistoryPath, "iv-history", "", "daily ATM implied-volatility CSV")
	scanCmd.Flags().Float64Var(&spotOverride, "spot", 0, "override the snapshot spot price")
	scanCmd.Flags().IntVar(&mcPaths, "paths", 0, "Monte Carlo paths per candidate")
	scanCmd.Flags().Int64Var(&mcSeed, "seed", -1, "random seed for reproducible runs (-1 = random)")
	scanCmd.Flags().IntVar(&workers, "workers", 0, "worker goroutines (0 = physical CPU count)")
	scanCmd.Flags().StringVar(&outPath, "out", "", "write the full JSON report here")
	scanCmd.Flags().IntVar(&topN, "top", 10, "rows to print in the ranking table")
	_ = scanCmd.MarkFlagRequired("chain")
	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	cfg := buildConfig()

	snap, err := loadSnapshot()
	if err != nil {
		return err
	}
	backfillImpliedVol(&snap, cfg.RiskFreeRate)

	engine, err := analysis.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("engine config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	progress := mpb.New(mpb.WithWidth(64))
	var bar *mpb.Bar
	onProgress := func(completed, total int) {
		if bar == nil {
			bar = progress.AddBar(int64(total),
				mpb.PrependDecorators(decor.Name("candidates"), decor.Percentage(decor.WCSyncSpace)),
				mpb.AppendDecorators(decor.CountersNoUnit("(%d / %d)", decor.WCSyncSpace)),
			)
		}
		bar.SetCurrent(int64(completed))
	}

	start := time.Now()
	result, err := engine.Analyze(ctx, []models.ChainSnapshot{snap}, onProgress)
	progress.Wait()
	if err != nil {
		return fmt.Errorf("analysis aborted: %w", err)
	}
	logger.Info().
		Int("opportunities", len(result.Opportunities)).
		Int("excluded", len(result.Excluded)).
		Dur("elapsed", time.Since(start)).
		Msg("scan complete")

	printRanking(result)

	if outPath != "" {
		report, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("marshalling report: %w", err)
		}
		if err := os.WriteFile(outPath, report, 0o644); err != nil {
			return fmt.Errorf("writing report: %w", err)
		}
		logger.Info().Str("path", outPath).Msg("report written")
	}
	return nil
}

func buildConfig() models.Config {
	cfg := models.DefaultConfig()
	if viper.IsSet("engine") {
		_ = viper.UnmarshalKey("engine", &cfg)
	}
	if mcPaths > 0 {
		cfg.MonteCarloPaths = mcPaths
	}
	if mcSeed >= 0 {
		seed := uint64(mcSeed)
		cfg.Seed = &seed
	}
	cfg.Workers = workers
	if cfg.Workers <= 0 {
		if counts, err := cpu.Counts(false); err == nil && counts > 0 {
			cfg.Workers = counts
		}
	}
	return cfg
}

func loadSnapshot() (models.ChainSnapshot, error) {
	var snap models.ChainSnapshot

	raw, err := os.ReadFile(chainPath)
	if err != nil {
		return snap, fmt.Errorf("reading chain snapshot: %w", err)
	}
	if err := json.Unmarshal(raw, &snap); err != nil {
		return snap, fmt.Errorf("decoding chain snapshot: %w", err)
	}
	if snap.AsOf.IsZero() {
		snap.AsOf = time.Now()
	}
	if spotOverride > 0 {
		snap.Spot = spotOverride
	}

	if historyPath != "" {
		bars, err := loadHistory(historyPath)
		if err != nil {
			return snap, err
		}
		snap.History = bars
	}
	if ivHistoryPath != "" {
		ivs, err := loadIVHistory(ivHistoryPath)
		if err != nil {
			return snap, err
		}
		snap.IVHistory = ivs
	}
	return snap, nil
}

// backfillImpliedVol solves for an implied volatility on quotes that arrived
// without one, using the quote midpoint. Quotes the solver cannot price keep
// their zero IV and fall out per candidate during analysis.
func backfillImpliedVol(snap *models.ChainSnapshot, rate float64) {
	for i := range snap.Quotes {
		q := &snap.Quotes[i]
		if q.ImpliedVolatility > 0 {
			continue
		}
		mid := q.Mid()
		dte := q.DTE(snap.AsOf)
		if mid <= 0 || dte <= 0 {
			continue
		}
		iv, err := pricing.ImpliedVolatility(pricing.Input{
			Spot:   snap.Spot,
			Strike: q.Strike,
			TTE:    float64(dte) / 365.0,
			Rate:   rate,
			Type:   q.OptionType,
		}, mid)
		if err != nil {
			logger.Debug().Err(err).Str("symbol", q.Symbol).Float64("strike", q.Strike).
				Msg("implied vol backfill failed")
			continue
		}
		q.ImpliedVolatility = iv
	}
}

// csvBar mirrors models.DailyBar with a string date so gocsv needs no
// custom time unmarshaler.
type csvBar struct {
	Date   string  `csv:"date"`
	Open   float64 `csv:"open"`
	High   float64 `csv:"high"`
	Low    float64 `csv:"low"`
	Close  float64 `csv:"close"`
	Volume int     `csv:"volume"`
}

func loadHistory(path string) ([]models.DailyBar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening history: %w", err)
	}
	defer f.Close()

	var rows []*csvBar
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		return nil, fmt.Errorf("decoding history: %w", err)
	}
	bars := make([]models.DailyBar, 0, len(rows))
	for _, row := range rows {
		date, err := time.Parse("2006-01-02", row.Date)
		if err != nil {
			return nil, fmt.Errorf("parsing history date %q: %w", row.Date, err)
		}
		bars = append(bars, models.DailyBar{
			Date: date, Open: row.Open, High: row.High, Low: row.Low,
			Close: row.Close, Volume: row.Volume,
		})
	}
	return bars, nil
}

type csvIV struct {
	IV float64 `csv:"iv"`
}

func loadIVHistory(path string) ([]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening IV history: %w", err)
	}
	defer f.Close()

	var rows []*csvIV
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		return nil, fmt.Errorf("decoding IV history: %w", err)
	}
	ivs := make([]float64, len(rows))
	for i, row := range rows {
		ivs[i] = row.IV
	}
	return ivs, nil
}

func printRanking(result analysis.Result) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"#", "Symbol", "Type", "Strike", "Score", "POP", "EV", "Max Loss", "Max Profit", "Rec", "Risk"})
	table.SetBorder(false)

	rows := result.Opportunities
	if topN > 0 && len(rows) > topN {
		rows = rows[:topN]
	}
	for i, opp := range rows {
		table.Append([]string{
			fmt.Sprintf("%d", i+1),
			opp.Symbol,
			string(opp.Spread.OptionType),
			fmt.Sprintf("%.2f", opp.Spread.Strike),
			fmt.Sprintf("%.1f", opp.Score.Final),
			fmt.Sprintf("%.1f%%", opp.Profile.ProbabilityOfProfit*100),
			fmt.Sprintf("%.2f", opp.Profile.ExpectedValue),
			fmt.Sprintf("%.2f", opp.Profile.MaxLoss),
			fmt.Sprintf("%.2f", opp.Profile.MaxProfit),
			string(opp.Recommendation),
			string(opp.Risk),
		})
	}
	table.Render()

	for _, exc := range result.Excluded {
		logger.Warn().Str("symbol", exc.Symbol).Str("reason", exc.Reason).Str("detail", exc.Detail).Msg("excluded")
	}
}
