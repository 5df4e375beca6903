package reconciler

import (
	"github.com/shopspring/decimal"
)

// DefaultTolerance is the absolute amount difference still treated as equal.
var DefaultTolerance = decimal.New(1, -2)

// Options tunes the engine.
type Options struct {
	// Tolerance is the largest absolute difference between two amounts that
	// still counts as agreement. Differences strictly greater are mismatches.
	Tolerance decimal.Decimal

	// OneToOne makes every counterpart record joinable at most once. Records
	// that lose a join because their key was already consumed are reported
	// as duplicate anomalies.
	OneToOne bool
}

// DefaultOptions returns first-match-wins joins with a 0.01 tolerance.
func DefaultOptions() Options {
	return Options{Tolerance: DefaultTolerance}
}

func (o Options) withinTolerance(a, b decimal.Decimal) bool {
	return !a.Sub(b).Abs().GreaterThan(o.Tolerance)
}
