// Package options carries the user-tunable knobs named in spec.md §6:
// tolerances, strategy selectors, and the limits that feed C3/C4/C7.
package options

// SimplexStrategy selects the outer algorithm. Only StrategyDual and
// StrategyPAMI (dual simplex, optionally with its multiple-pricing
// worker pool) have a code path in simplex; StrategyPrimal and
// StrategySIP are accepted so cmd/highs's flag can name them, but both
// fall through to running the dual algorithm unchanged.
type SimplexStrategy int

const (
	StrategyDual SimplexStrategy = iota
	StrategyPrimal
	StrategySIP
	StrategyPAMI
)

// DualEdgeWeightStrategy selects the CHUZR pricing rule.
type DualEdgeWeightStrategy int

const (
	WeightDantzig DualEdgeWeightStrategy = iota
	WeightDevex
	WeightSteepestEdge
)

// PriceStrategy selects how PRICE is computed.
type PriceStrategy int

const (
	PriceColumn PriceStrategy = iota
	PriceRow
	PriceRowSwitch
	PriceRowUltra
)

// MPSParserType selects the MPS reader variant.
type MPSParserType int

const (
	MPSFree MPSParserType = iota
	MPSFixed
)

// Options bundles every knob in spec.md's §6 table, plus the internal
// limits named by C3/C4/C7 that the table leaves as documented
// defaults rather than named options.
type Options struct {
	MPSParserType MPSParserType
	KeepNRows     bool

	SimplexStrategy        SimplexStrategy
	DualEdgeWeightStrategy DualEdgeWeightStrategy
	PriceStrategy          PriceStrategy

	PrimalFeasibilityTolerance float64
	DualFeasibilityTolerance   float64
	PerturbCosts               bool
	UpdateLimit                int
	InfiniteBound               float64
	InfiniteCost                 float64
	SmallMatrixValue             float64
	LargeMatrixValue             float64

	// MaxIterations bounds the number of major iterations across both
	// phases; zero means unbounded. MaxAllowedDevexWeightRatio and
	// DevexReferenceSetIterationFloor drive the new-framework trigger in
	// C5. PAMIWorkers bounds the optional worker pool of §5.
	MaxIterations                   int
	MaxAllowedDevexWeightRatio      float64
	DevexReferenceSetIterationFloor int
	PAMIWorkers                     int

	RandomSeed int64
}

// Default returns the option set with every spec.md §6 default and the
// internal defaults named alongside each component in §4.
func Default() Options {
	return Options{
		MPSParserType: MPSFree,
		KeepNRows:     false,

		SimplexStrategy:        StrategyDual,
		DualEdgeWeightStrategy: WeightSteepestEdge,
		PriceStrategy:          PriceRowSwitch,

		PrimalFeasibilityTolerance: 1e-7,
		DualFeasibilityTolerance:   1e-7,
		PerturbCosts:               true,
		UpdateLimit:                5000,
		InfiniteBound:               1e20,
		InfiniteCost:                1e20,
		SmallMatrixValue:            1e-9,
		LargeMatrixValue:            1e15,

		MaxIterations:                   0,
		MaxAllowedDevexWeightRatio:      3.0,
		DevexReferenceSetIterationFloor: 25,
		PAMIWorkers:                     1,

		RandomSeed: 1,
	}
}
