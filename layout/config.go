// Package layout produces a View from a datamodel Model alone (spec.md
// §4.8): metadata extraction, chain detection, SFDP force-directed
// placement, simulated-annealing crossing reduction, label placement,
// connector routing, and normalization. Grounded on
// `original_source/simlin-engine/src/layout/mod.rs`, the one layout
// source file the retrieval pack kept, generalized into the teacher's
// functional-options/struct-config idiom (`analyzer/option.go`).
package layout

// Option configures a Config at construction, matching the teacher's
// `type Option func(*Analyzer)` pattern.
type Option func(*Config)

// Config holds every tunable the pipeline's steps reference. Structured
// for yaml.v3 loading (LoadConfig) the same way the teacher tags
// `linage.Scope`/`linage.Identifier` for serialization.
type Config struct {
	RepulsionK          float64 `yaml:"repulsion_k"`
	AttractionExponent  float64 `yaml:"attraction_exponent"`
	CoolingRate         float64 `yaml:"cooling_rate"`
	MaxIterations       int     `yaml:"max_iterations"`
	MaxDeltaAux         float64 `yaml:"max_delta_aux"`
	MaxDeltaChain       float64 `yaml:"max_delta_chain"`
	LoopCurvatureFactor float64 `yaml:"loop_curvature_factor"`
	StockWidth          float64 `yaml:"stock_width"`
	HorizontalSpacing   float64 `yaml:"horizontal_spacing"`
	Margin              float64 `yaml:"margin"`
	AnnealingRounds     int     `yaml:"annealing_rounds"`
}

// DefaultConfig returns the pipeline's built-in tuning, used whenever a
// caller doesn't load a Config from disk.
func DefaultConfig() Config {
	return Config{
		RepulsionK:          150,
		AttractionExponent:  2,
		CoolingRate:         0.95,
		MaxIterations:       200,
		MaxDeltaAux:         40,
		MaxDeltaChain:       8,
		LoopCurvatureFactor: 0.25,
		StockWidth:          80,
		HorizontalSpacing:   120,
		Margin:              20,
		AnnealingRounds:     30,
	}
}

// WithRepulsionK overrides the SFDP repulsion constant.
func WithRepulsionK(k float64) Option { return func(c *Config) { c.RepulsionK = k } }

// WithMaxIterations overrides the SFDP iteration budget.
func WithMaxIterations(n int) Option { return func(c *Config) { c.MaxIterations = n } }

// NewConfig builds a Config from DefaultConfig with opts applied.
func NewConfig(opts ...Option) Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}
