package analysis

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/KaramelBytes/fraudlens-cli/internal/dataset"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Options controls the summary pipeline.
type Options struct {
	// BucketSeconds is the time-trend bucket width; 0 means one hour.
	BucketSeconds float64
	// TopFeatures caps the feature ranking; 0 means DefaultTopFeatures.
	TopFeatures int
	// Parallel runs the independent engines concurrently.
	Parallel bool
}

// DefaultOptions returns the standard dashboard settings.
func DefaultOptions() Options {
	return Options{BucketSeconds: DefaultBucketSeconds, TopFeatures: DefaultTopFeatures, Parallel: true}
}

// Dashboard is every panel derived from one table. It holds only plain
// strings and numbers so any renderer can consume it.
type Dashboard struct {
	ID                 string             `json:"id" yaml:"id"`
	Source             string             `json:"source" yaml:"source"`
	GeneratedAt        time.Time          `json:"generated_at" yaml:"generated_at"`
	Rows               int                `json:"rows" yaml:"rows"`
	Roles              dataset.Roles      `json:"roles" yaml:"roles"`
	ClassDistribution  ClassDistribution  `json:"class_distribution" yaml:"class_distribution"`
	AmountDistribution AmountDistribution `json:"amount_distribution" yaml:"amount_distribution"`
	TimeTrend          TimeTrend          `json:"time_trend" yaml:"time_trend"`
	FeatureMeans       FeatureMeans       `json:"feature_means" yaml:"feature_means"`
	Correlation        *CorrelationMatrix `json:"correlation" yaml:"correlation"`
	Ranking            FeatureRanking     `json:"ranking" yaml:"ranking"`
	Warnings           []string           `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// Run resolves column roles once and computes every panel. Structural
// failures (empty table, missing or ambiguous role columns) abort with a
// single *StageError; degenerate statistics resolve to sentinels.
func Run(t *dataset.Table, opt Options) (*Dashboard, error) {
	if err := checkTable(StageResolve, t); err != nil {
		return nil, err
	}
	roles, err := dataset.ResolveRoles(t.Columns())
	if err != nil {
		se := &StageError{Stage: StageResolve, Err: err}
		var re *dataset.RoleError
		if errors.As(err, &re) {
			se.Column = string(re.Role)
		}
		return nil, se
	}
	log.Debugf("resolved roles for %s: amount=%s class=%s time=%s features=%d",
		t.Name(), roles.Amount, roles.Class, roles.Time, len(roles.Features))

	d := &Dashboard{
		ID:          uuid.NewString(),
		Source:      t.Name(),
		GeneratedAt: time.Now().UTC(),
		Rows:        t.Len(),
		Roles:       roles,
	}
	steps := []func() error{
		timed(StageClassDistribution, func() (err error) {
			d.ClassDistribution, err = CountClasses(t, roles)
			return err
		}),
		timed(StageAmountDistribution, func() (err error) {
			d.AmountDistribution, err = SplitAmounts(t, roles)
			return err
		}),
		timed(StageTimeTrend, func() (err error) {
			d.TimeTrend, err = BucketTimes(t, roles, opt.BucketSeconds)
			return err
		}),
		timed(StageFeatureMeans, func() (err error) {
			if d.FeatureMeans, err = MeanFeatures(t, roles); err != nil {
				return err
			}
			d.Ranking = RankFeatures(d.FeatureMeans, opt.TopFeatures)
			return nil
		}),
		timed(StageCorrelation, func() (err error) {
			d.Correlation, err = Correlate(t, roles.HeatmapColumns())
			return err
		}),
	}
	if opt.Parallel {
		var g errgroup.Group
		for _, step := range steps {
			g.Go(step)
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	} else {
		for _, step := range steps {
			if err := step(); err != nil {
				return nil, err
			}
		}
	}
	d.Warnings = warnings(d)
	return d, nil
}

func timed(stage Stage, fn func() error) func() error {
	return func() error {
		start := time.Now()
		err := fn()
		log.Debugf("%s took %s", stage, time.Since(start))
		return err
	}
}

// warnings surfaces sentinel substitutions so no panel shows a placeholder
// value unexplained.
func warnings(d *Dashboard) []string {
	var out []string
	if n := d.AmountDistribution.Skipped; n > 0 {
		out = append(out, plural(n, "row")+" with a non-numeric amount left out of the amount distribution")
	}
	if n := d.TimeTrend.Skipped; n > 0 {
		out = append(out, plural(n, "row")+" with a non-numeric or out-of-range time left out of the time trend")
	}
	var fraudRows, legitRows int
	for _, c := range d.ClassDistribution.Counts {
		switch c.Name {
		case dataset.LabelFraud.String():
			fraudRows += c.Count
		case dataset.LabelLegit.String():
			legitRows += c.Count
		}
	}
	if other := d.Rows - fraudRows - legitRows; other > 0 {
		out = append(out, plural(other, "row")+" with a class other than 0 or 1 counted in the class distribution only")
	}
	if len(d.Roles.Features) > 0 {
		if fraudRows == 0 {
			out = append(out, "no fraudulent rows: fraud feature means default to 0")
		}
		if legitRows == 0 {
			out = append(out, "no non-fraudulent rows: non-fraud feature means default to 0")
		}
	}
	if s := d.AmountDistribution.FraudSummary; s.Overflow {
		out = append(out, "fraudulent amount summary overflowed float64 (affected statistics shown as 0)")
	}
	if s := d.AmountDistribution.NonFraudSummary; s.Overflow {
		out = append(out, "non-fraudulent amount summary overflowed float64 (affected statistics shown as 0)")
	}
	var overflowed []string
	for _, fm := range d.FeatureMeans.Features {
		if fm.Overflow {
			overflowed = append(overflowed, fm.Feature)
		}
	}
	if len(overflowed) > 0 {
		out = append(out, "feature means overflowed float64 (shown as 0): "+joinNames(overflowed))
	}
	if m := d.Correlation; m != nil {
		if len(m.ZeroVariance) > 0 {
			out = append(out, "zero-variance columns have undefined correlation (shown as 0): "+joinNames(m.ZeroVariance))
		}
		if pairs := undefinedPairs(m); len(pairs) > 0 {
			out = append(out, "correlation undefined for column pairs (shown as 0): "+joinNames(pairs))
		}
	}
	return out
}

// undefinedPairs names each undefined off-diagonal cell once, leaving out
// pairs already explained by a zero-variance column.
func undefinedPairs(m *CorrelationMatrix) []string {
	flat := make(map[string]bool, len(m.ZeroVariance))
	for _, c := range m.ZeroVariance {
		flat[c] = true
	}
	var out []string
	seen := map[CellRef]bool{}
	for _, c := range m.Undefined {
		if c.Row == c.Col || flat[c.Row] || flat[c.Col] || seen[CellRef{Row: c.Col, Col: c.Row}] {
			continue
		}
		seen[c] = true
		out = append(out, c.Row+"/"+c.Col)
	}
	return out
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

func joinNames(names []string) string { return strings.Join(names, ", ") }
