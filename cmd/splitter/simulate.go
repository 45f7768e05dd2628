package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"text/tabwriter"
	"time"

	"github.com/puzpuzpuz/xsync/v4"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/arloliu/splitter"
	"github.com/arloliu/splitter/sink"
	"github.com/arloliu/splitter/source"
	"github.com/arloliu/splitter/types"
)

// ReasonSimulationFinished is recorded on experiments completed when traffic ends.
const ReasonSimulationFinished = "simulation finished"

const (
	outputTable = "table"
	outputJSON  = "json"
)

type simulateOptions struct {
	file        string
	profiles    string
	users       int
	workers     int
	rates       map[string]string
	baseRate    float64
	seed        uint64
	metricsAddr string
	natsURL     string
	follow      bool
	finish      bool
	output      string
}

func newSimulateCmd(global *globalOptions) *cobra.Command {
	opts := &simulateOptions{}

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run synthetic traffic through experiments",
		Long: `Simulate creates and starts the experiments of a definitions file, sends
synthetic users through the assignment engine, records conversions and
sessions with per-variant probabilities and prints the analysis.

When a NATS URL is configured (--nats-url or sink.url in the config file),
experiments, assignments and results are persisted to a JetStream KV bucket
and analytics events are published to NATS.

Examples:
  splitter simulate -f experiments.yaml --users 20000
  splitter simulate -f experiments.yaml --rate control=0.10 --rate treatment=0.13
  splitter simulate -f experiments.yaml --profiles profiles.yaml --metrics-addr :9090
  splitter simulate -f experiments.yaml --nats-url nats://127.0.0.1:4222 --follow`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSimulate(cmd, global, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.file, "file", "f", "", "Experiments file (YAML)")
	flags.StringVar(&opts.profiles, "profiles", "", "User profiles file (YAML) for segmentation")
	flags.IntVarP(&opts.users, "users", "n", 10000, "Number of synthetic users")
	flags.IntVarP(&opts.workers, "workers", "w", 8, "Concurrent traffic workers")
	flags.StringToStringVar(&opts.rates, "rate", nil, "Conversion probability per variant ID (variant=rate)")
	flags.Float64Var(&opts.baseRate, "base-rate", 0.1, "Conversion probability for variants without --rate")
	flags.Uint64Var(&opts.seed, "seed", 1, "Random seed for synthetic behavior")
	flags.StringVar(&opts.metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address")
	flags.StringVar(&opts.natsURL, "nats-url", "", "NATS server URL (overrides sink.url)")
	flags.BoolVar(&opts.follow, "follow", false, "Subscribe to published events and count them (requires NATS)")
	flags.BoolVar(&opts.finish, "finish", true, "Complete running experiments after traffic ends")
	flags.StringVarP(&opts.output, "output", "o", outputTable, "Output format: table, json")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func (o *simulateOptions) validate() error {
	if o.users <= 0 {
		return errors.New("--users must be positive")
	}
	if o.workers <= 0 {
		return errors.New("--workers must be positive")
	}
	if o.baseRate < 0 || o.baseRate > 1 {
		return fmt.Errorf("--base-rate must be within [0,1], got %v", o.baseRate)
	}
	if o.output != outputTable && o.output != outputJSON {
		return fmt.Errorf("unknown output format %q", o.output)
	}

	return nil
}

func runSimulate(cmd *cobra.Command, global *globalOptions, opts *simulateOptions) error {
	if err := opts.validate(); err != nil {
		return err
	}

	rates, err := parseRates(opts.rates)
	if err != nil {
		return err
	}

	cfg, err := global.loadConfig()
	if err != nil {
		return err
	}
	if opts.natsURL != "" {
		cfg.Sink.URL = opts.natsURL
	}

	logger, err := global.newLogger(cmd)
	if err != nil {
		return err
	}

	defs, err := loadDefinitions(opts.file)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	engineOpts := []splitter.Option{splitter.WithLogger(logger)}

	if opts.metricsAddr != "" {
		srv, metrics, err := startMetricsServer(opts.metricsAddr, logger)
		if err != nil {
			return err
		}
		defer srv.shutdown(context.WithoutCancel(ctx))
		engineOpts = append(engineOpts, splitter.WithMetrics(metrics))
	}

	sinks, err := openSinks(ctx, cfg, opts.follow, logger)
	if err != nil {
		return err
	}
	defer sinks.close()
	engineOpts = append(engineOpts, splitter.WithStore(sinks.store), splitter.WithEventPublisher(sinks.publisher))

	if opts.profiles != "" {
		profiles, err := source.LoadStatic(opts.profiles)
		if err != nil {
			return err
		}
		logger.Info("profiles loaded", "count", profiles.Len())
		engineOpts = append(engineOpts, splitter.WithProfileSource(profiles))
	}

	engine, err := splitter.NewEngine(&cfg, engineOpts...)
	if err != nil {
		return err
	}
	defer func() {
		if err := engine.Close(context.WithoutCancel(ctx)); err != nil {
			logger.Warn("engine close failed", "error", err)
		}
	}()

	ids := make([]string, 0, len(defs))
	for _, def := range defs {
		exp, err := engine.CreateExperiment(ctx, def)
		if err != nil {
			return err
		}
		if _, err := engine.StartExperiment(ctx, exp.ID); err != nil {
			return err
		}
		ids = append(ids, exp.ID)
	}

	if err := sinks.follow(ctx, ids); err != nil {
		return err
	}

	start := time.Now()
	tally := newTrafficTally()
	if err := driveTraffic(ctx, engine, ids, opts, rates, tally); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logger.Info("traffic finished", "users", opts.users, "experiments", len(ids), "elapsed", time.Since(start))

	stopped, err := engine.CheckNow(ctx)
	if err != nil {
		return err
	}
	for _, id := range stopped {
		logger.Info("experiment auto-stopped", "experiment_id", id)
	}

	reports := make([]experimentReport, 0, len(ids))
	for _, id := range ids {
		report, err := finishExperiment(ctx, engine, id, opts.finish)
		if err != nil {
			return err
		}
		report.Included = tally.value(id, "")
		report.Excluded = tally.excluded(id)
		reports = append(reports, report)
	}

	if opts.follow {
		logger.Info("events received", "count", sinks.received.Load())
	}

	return printReports(cmd.OutOrStdout(), opts.output, reports)
}

// driveTraffic sends every synthetic user through every experiment.
// Users are striped across workers so each user is handled by one goroutine.
func driveTraffic(ctx context.Context, engine *splitter.Engine, ids []string, opts *simulateOptions, rates map[string]float64, tally *trafficTally) error {
	g, gctx := errgroup.WithContext(ctx)

	for w := range opts.workers {
		g.Go(func() error {
			rng := rand.New(rand.NewPCG(opts.seed, uint64(w))) //nolint:gosec // synthetic behavior only

			for u := w; u < opts.users; u += opts.workers {
				if err := gctx.Err(); err != nil {
					return err
				}

				userID := fmt.Sprintf("user-%07d", u)
				for _, id := range ids {
					if err := simulateUser(gctx, engine, rng, userID, id, opts.baseRate, rates, tally); err != nil {
						return err
					}
				}
			}

			return nil
		})
	}

	return g.Wait()
}

func simulateUser(ctx context.Context, engine *splitter.Engine, rng *rand.Rand, userID, experimentID string, baseRate float64, rates map[string]float64, tally *trafficTally) error {
	decision, err := engine.Decide(ctx, userID, experimentID)
	if err != nil {
		return err
	}
	if !decision.Included {
		tally.inc(experimentID, decision.Reason.String())
		return nil
	}
	tally.inc(experimentID, "")

	rate, ok := rates[decision.Variant.ID]
	if !ok {
		rate = baseRate
	}

	if err := engine.RecordSession(ctx, userID, experimentID, time.Duration(30+rng.IntN(600))*time.Second); err != nil {
		return err
	}
	if rng.Float64() < rate {
		if err := engine.RecordConversion(ctx, userID, experimentID, 1); err != nil {
			return err
		}
	}
	if rng.Float64() < rate {
		if err := engine.RecordRetention(ctx, userID, experimentID, 7); err != nil {
			return err
		}
	}

	return nil
}

// trafficTally counts decisions per experiment; an empty reason means included.
type trafficTally struct {
	counts *xsync.Map[string, *xsync.Counter]
}

func newTrafficTally() *trafficTally {
	return &trafficTally{counts: xsync.NewMap[string, *xsync.Counter]()}
}

func (t *trafficTally) inc(experimentID, reason string) {
	key := experimentID + "/" + reason
	counter, ok := t.counts.Load(key)
	if !ok {
		counter, _ = t.counts.LoadOrStore(key, xsync.NewCounter())
	}
	counter.Inc()
}

func (t *trafficTally) value(experimentID, reason string) int64 {
	counter, ok := t.counts.Load(experimentID + "/" + reason)
	if !ok {
		return 0
	}

	return counter.Value()
}

func (t *trafficTally) excluded(experimentID string) map[string]int64 {
	out := make(map[string]int64)
	for _, reason := range []types.ExclusionReason{
		types.ExclusionNotRunning, types.ExclusionTraffic, types.ExclusionSegment, types.ExclusionOverlap,
	} {
		if n := t.value(experimentID, reason.String()); n > 0 {
			out[reason.String()] = n
		}
	}

	return out
}

type experimentReport struct {
	ID       string           `json:"id"`
	Name     string           `json:"name"`
	Status   splitter.Status  `json:"status"`
	Included int64            `json:"included"`
	Excluded map[string]int64 `json:"excluded,omitempty"`
	Results  splitter.Results `json:"results"`
}

func finishExperiment(ctx context.Context, engine *splitter.Engine, id string, complete bool) (experimentReport, error) {
	exp, err := engine.GetExperiment(ctx, id)
	if err != nil {
		return experimentReport{}, err
	}

	if complete && !exp.Status.IsTerminal() {
		exp, err = engine.CompleteExperiment(ctx, id, ReasonSimulationFinished)
		if err != nil {
			return experimentReport{}, err
		}
	}

	var results splitter.Results
	if exp.Status.IsTerminal() {
		results, err = engine.Results(ctx, id)
	} else {
		results, err = engine.Analyze(ctx, id)
	}
	if err != nil {
		return experimentReport{}, err
	}

	return experimentReport{ID: exp.ID, Name: exp.Name, Status: exp.Status, Results: results}, nil
}

func printReports(w io.Writer, format string, reports []experimentReport) error {
	if format == outputJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")

		return enc.Encode(reports)
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, r := range reports {
		_, _ = fmt.Fprintf(tw, "%s (%s)\tstatus=%s\tincluded=%d\texcluded=%v\n", r.ID, r.Name, r.Status, r.Included, r.Excluded)
		_, _ = fmt.Fprintln(tw, "  VARIANT\tCONTROL\tPARTICIPANTS\tVALUE\tIMPROVEMENT\tINTERVAL")
		for _, v := range r.Results.Variants {
			_, _ = fmt.Fprintf(tw, "  %s\t%t\t%d\t%.4f\t%+.2f%%\t[%.4f, %.4f]\n",
				v.VariantID, v.IsControl, v.Participants, v.Value, v.ImprovementPct, v.Interval.Lower, v.Interval.Upper)
		}
		_, _ = fmt.Fprintf(tw, "  significance=%s\trecommendation=%s\tconfidence=%.2f\n",
			r.Results.Significance, r.Results.Recommendation, r.Results.Confidence)
		if r.Results.Summary != "" {
			_, _ = fmt.Fprintf(tw, "  %s\n", r.Results.Summary)
		}
		_, _ = fmt.Fprintln(tw)
	}

	return tw.Flush()
}
