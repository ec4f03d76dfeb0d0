package snapshot

import (
	"fmt"
	"math"
)

// Linearize is the k value that merges every container it can.
var Linearize = math.Inf(1)

// Params is the compression policy of one run.
type Params struct {
	// K is container-merge aggressiveness in [0, 1], or Linearize.
	K float64 `json:"k"`
	// L is text-compression aggressiveness in [0, 1].
	L float64 `json:"l"`
	// M is the attribute-retention threshold in [0, 1].
	M float64 `json:"m"`
}

// Linearized reports whether p.K is the Linearize sentinel.
func (p Params) Linearized() bool { return math.IsInf(p.K, 1) }

// Validate checks every parameter is in range. NaN is rejected.
func (p Params) Validate() error {
	if !p.Linearized() && !unit(p.K) {
		return &ParamError{Name: "k", Value: p.K}
	}
	if !unit(p.L) {
		return &ParamError{Name: "l", Value: p.L}
	}
	if !unit(p.M) {
		return &ParamError{Name: "m", Value: p.M}
	}
	return nil
}

func (p Params) String() string {
	k := fmt.Sprintf("%.4g", p.K)
	if p.Linearized() {
		k = "inf"
	}
	return fmt.Sprintf("k=%s l=%.4g m=%.4g", k, p.L, p.M)
}

func unit(v float64) bool { return v >= 0 && v <= 1 }
