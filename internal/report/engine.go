package report

import (
	"context"
	"io"
	"sort"

	"github.com/KaramelBytes/driftdash/internal/dataset"
)

// Artifact is a rendered report document.
type Artifact interface {
	Render(w io.Writer) error
}

// Engine computes a report from reference and current data. Run blocks until
// the whole report is computed; failures are *MetricComputationError.
type Engine interface {
	Run(ctx context.Context, cfg Config, reference, current *dataset.Table) (Artifact, error)
}

// Settings carries the knobs shared by engines.
type Settings struct {
	// HistogramBins is the number of bins for numeric distributions and PSI.
	HistogramBins int
	// DriftThreshold is the PSI at or above which a column counts as drifted.
	DriftThreshold float64
	// DriftShare is the share of drifted columns at or above which the dataset drifts.
	DriftShare float64
	// TopCategories caps the categories shown for text columns.
	TopCategories int
}

// DefaultSettings returns the engine defaults.
func DefaultSettings() Settings {
	return Settings{HistogramBins: 10, DriftThreshold: 0.1, DriftShare: 0.5, TopCategories: 10}
}

func (s Settings) withDefaults() Settings {
	d := DefaultSettings()
	if s.HistogramBins <= 0 {
		s.HistogramBins = d.HistogramBins
	}
	if s.DriftThreshold <= 0 {
		s.DriftThreshold = d.DriftThreshold
	}
	if s.DriftShare <= 0 {
		s.DriftShare = d.DriftShare
	}
	if s.TopCategories <= 0 {
		s.TopCategories = d.TopCategories
	}
	return s
}

// EngineFactory builds an Engine from settings.
type EngineFactory func(Settings) Engine

// EngineBuiltin is the name of the engine implemented in this package.
const EngineBuiltin = "builtin"

var engines = map[string]EngineFactory{}

// RegisterEngine makes an engine available by name.
func RegisterEngine(name string, f EngineFactory) { engines[name] = f }

// NewEngine creates the named engine if it is registered.
func NewEngine(name string, s Settings) (Engine, bool) {
	if f, ok := engines[name]; ok {
		return f(s.withDefaults()), true
	}
	return nil, false
}

// EngineNames lists registered engines in sorted order.
func EngineNames() []string {
	names := make([]string, 0, len(engines))
	for n := range engines {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func init() {
	RegisterEngine(EngineBuiltin, func(s Settings) Engine { return NewBuiltin(s) })
}

type runIDKey struct{}

// WithRunID attaches a run id that engines embed in their artifacts.
func WithRunID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, runIDKey{}, id)
}

// RunIDFrom returns the run id attached with WithRunID.
func RunIDFrom(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(runIDKey{}).(string)
	return id, ok && id != ""
}
