package stats

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/arloliu/splitter/types"
)

// Input is one variant's identity and metrics fed to the analyzer.
type Input struct {
	VariantID string
	Name      string
	IsControl bool
	Metrics   types.Metrics
}

// InputsFrom converts experiment variant states into analyzer inputs.
func InputsFrom(variants []types.VariantState) []Input {
	inputs := make([]Input, len(variants))
	for i, v := range variants {
		inputs[i] = Input{
			VariantID: v.ID,
			Name:      v.Name,
			IsControl: v.IsControl,
			Metrics:   v.Metrics,
		}
	}

	return inputs
}

// Analysis is the outcome of one analyzer run.
type Analysis struct {
	// Target is the metric the verdict is based on.
	Target types.TargetMetric

	// Level is the configured confidence level.
	Level float64

	// Variants holds per-variant values, improvements and intervals in input order.
	Variants []types.VariantResult

	// Significance is the overall verdict.
	Significance types.Significance

	// Confidence is the confidence attached to a significant verdict, 0 otherwise.
	Confidence float64

	// Best is the ID of the non-control variant with the highest improvement.
	Best string

	// BestImprovement is Best's improvement over control in percent.
	BestImprovement float64

	// TotalParticipants sums participants over all variants.
	TotalParticipants int64
}

// Analyzer computes significance verdicts and recommendations.
//
// An Analyzer is immutable after construction and safe for concurrent use.
type Analyzer struct {
	method            Method
	relativeThreshold float64
	minParticipants   int64
	adoptionThreshold float64
	intervalWidth     float64
}

// NewAnalyzer creates an analyzer.
//
// Parameters:
//   - opts: Optional settings (WithMethod, WithRelativeThreshold, WithMinParticipants,
//     WithAdoptionThreshold, WithIntervalWidth)
//
// Returns:
//   - *Analyzer: Analyzer with defaults applied to unset settings
//
// Example:
//
//	analyzer := stats.NewAnalyzer(stats.WithMethod(stats.MethodTwoProportionZ))
//	analysis := analyzer.Analyze(stats.InputsFrom(exp.Variants), exp.TargetMetric, 0.95)
func NewAnalyzer(opts ...Option) *Analyzer {
	a := &Analyzer{
		method:            MethodRelativeDifference,
		relativeThreshold: DefaultRelativeThreshold,
		minParticipants:   DefaultMinParticipants,
		adoptionThreshold: DefaultAdoptionThreshold,
		intervalWidth:     DefaultIntervalWidth,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(a)
		}
	}

	return a
}

// Method returns the configured significance method.
func (a *Analyzer) Method() Method {
	return a.method
}

// Analyze computes per-variant results and the overall significance verdict.
//
// Verdict rules, in order:
//   - underpowered: fewer than two variants, or no control
//   - inconclusive: the control's value is 0, so relative differences are undefined
//   - significant: some treatment differs from the control and both arms have enough participants
//   - not_significant: otherwise
//
// Parameters:
//   - variants: Variants with their metrics, in declared order
//   - target: Metric to compare
//   - level: Configured confidence level, in (0,1)
//
// Returns:
//   - Analysis: Per-variant results and verdict
func (a *Analyzer) Analyze(variants []Input, target types.TargetMetric, level float64) Analysis {
	out := Analysis{
		Target:   target,
		Level:    level,
		Variants: make([]types.VariantResult, len(variants)),
	}

	control := -1
	for i, v := range variants {
		value := v.Metrics.Value(target)
		out.Variants[i] = types.VariantResult{
			VariantID:    v.VariantID,
			Name:         v.Name,
			IsControl:    v.IsControl,
			Participants: v.Metrics.Participants,
			Value:        value,
			Interval:     a.interval(value, level),
		}
		out.TotalParticipants += v.Metrics.Participants
		if v.IsControl && control < 0 {
			control = i
		}
	}

	if len(variants) < 2 || control < 0 {
		out.Significance = types.SignificanceUnderpowered
		return out
	}

	ctrl := out.Variants[control]
	if ctrl.Value == 0 {
		out.Significance = types.SignificanceInconclusive
		return out
	}

	out.Significance = types.SignificanceNotSignificant
	bestSet := false
	for i := range out.Variants {
		if i == control {
			continue
		}

		vr := &out.Variants[i]
		vr.ImprovementPct = (vr.Value - ctrl.Value) / ctrl.Value * 100
		if !bestSet || vr.ImprovementPct > out.BestImprovement {
			out.Best = vr.VariantID
			out.BestImprovement = vr.ImprovementPct
			bestSet = true
		}

		if vr.Participants < a.minParticipants || ctrl.Participants < a.minParticipants {
			continue
		}

		if significant, confidence := a.compare(variants[control].Metrics, variants[i].Metrics, target, level); significant {
			out.Significance = types.SignificanceSignificant
			out.Confidence = math.Max(out.Confidence, confidence)
		}
	}

	return out
}

// compare decides whether one treatment differs from the control.
func (a *Analyzer) compare(control, treatment types.Metrics, target types.TargetMetric, level float64) (bool, float64) {
	if a.method == MethodTwoProportionZ && target.IsProportion() {
		p := TwoProportionPValue(
			control.Successes(target), control.Participants,
			treatment.Successes(target), treatment.Participants,
		)
		if p < 1-level {
			return true, 1 - p
		}

		return false, 0
	}

	c := control.Value(target)
	diff := math.Abs(treatment.Value(target)-c) / c
	if diff > a.relativeThreshold {
		return true, level
	}

	return false, 0
}

func (a *Analyzer) interval(value, level float64) types.ConfidenceInterval {
	half := math.Abs(value) * a.intervalWidth
	return types.ConfidenceInterval{
		Lower: value - half,
		Upper: value + half,
		Level: level,
	}
}

// Conclude maps a completed analysis to a recommendation.
//
// Policy:
//   - significant with the best treatment above the adoption threshold: adopt_treatment
//   - significant otherwise: keep_control
//   - not significant or underpowered: run_longer
//   - inconclusive: redesign_experiment
func (a *Analyzer) Conclude(analysis Analysis) types.Recommendation {
	switch analysis.Significance {
	case types.SignificanceSignificant:
		if analysis.Best != "" && analysis.BestImprovement > a.adoptionThreshold {
			return types.RecommendAdoptTreatment
		}

		return types.RecommendKeepControl
	case types.SignificanceInconclusive:
		return types.RecommendRedesign
	default:
		return types.RecommendRunLonger
	}
}

// Finalize analyzes and concludes in one step, producing frozen results.
//
// Parameters:
//   - variants: Variants with their final metrics
//   - target: Metric to compare
//   - level: Configured confidence level
//   - stopReason: Why the experiment ended
//   - at: Completion time
//
// Returns:
//   - types.Results: Results with recommendation and summary filled in
func (a *Analyzer) Finalize(variants []Input, target types.TargetMetric, level float64, stopReason string, at time.Time) types.Results {
	analysis := a.Analyze(variants, target, level)
	rec := a.Conclude(analysis)

	return analysis.Results(rec, stopReason, at)
}

// Results converts the analysis into a results record.
//
// Interim analyses pass types.RecommendNone.
func (an Analysis) Results(rec types.Recommendation, stopReason string, at time.Time) types.Results {
	return types.Results{
		TotalParticipants: an.TotalParticipants,
		Variants:          append([]types.VariantResult(nil), an.Variants...),
		Significance:      an.Significance,
		Confidence:        an.Confidence,
		Recommendation:    rec,
		Summary:           Summarize(an, rec),
		StopReason:        stopReason,
		CompletedAt:       at,
	}
}

// Summarize renders a one-paragraph human-readable description of an analysis.
func Summarize(an Analysis, rec types.Recommendation) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d participants across %d variants; target metric %s. ",
		an.TotalParticipants, len(an.Variants), an.Target)

	switch an.Significance {
	case types.SignificanceUnderpowered:
		b.WriteString("Not enough variants or no control to compare.")
	case types.SignificanceInconclusive:
		b.WriteString("Control value is zero, so improvements cannot be measured.")
	case types.SignificanceSignificant:
		fmt.Fprintf(&b, "Result is significant at %.0f%% confidence; best variant %q changed %s by %+.2f%% versus control.",
			an.Confidence*100, an.Best, an.Target, an.BestImprovement)
	default:
		if an.Best != "" {
			fmt.Fprintf(&b, "No significant difference yet; best variant %q at %+.2f%% versus control.",
				an.Best, an.BestImprovement)
		} else {
			b.WriteString("No significant difference yet.")
		}
	}

	if rec != types.RecommendNone {
		fmt.Fprintf(&b, " Recommendation: %s.", rec)
	}

	return b.String()
}
