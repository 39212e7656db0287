package unmix

import (
	"fmt"
	"math"
	"slices"

	vecmath "github.com/cwbudde/algo-vecmath"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"specmix/internal/faults"
)

// Result is the outcome of one unmixing run.
type Result struct {
	Algorithm Algorithm `json:"algorithm"`
	// Names are the surviving end-members, in selection order.
	Names      []string  `json:"endmembers"`
	Abundances []float64 `json:"abundances"`
	// Errors are 1-σ abundance errors, sqrt(diag((E W Eᵀ)⁻¹)).
	Errors []float64 `json:"errors"`
	// Normalized is set for STO only: abundances with the blackbody entry
	// zeroed and the rest rescaled to sum to one.
	Normalized []float64 `json:"normalized_abundances,omitempty"`
	Fit        []float64 `json:"fit"`
	Residual   []float64 `json:"residual"`
	RMS        float64   `json:"rms"`
	// Pruned lists the end-members removed in each pruning round.
	Pruned [][]string `json:"pruned,omitempty"`
}

// RunWLS solves A = (E W Eᵀ)⁻¹ E W M, pruning end-members whose rounded
// abundance is not positive until a fixed point is reached. E has one row per
// end-member; w is the diagonal of W.
//
// When pruning removes every end-member the error wraps
// faults.ErrNoEndMembersRemaining and the returned Result is still non-nil:
// it carries Algorithm and Pruned only, so callers can report the rounds.
func RunWLS(E [][]float64, M, w []float64, names []string, opts Options) (*Result, error) {
	return run(WLS, E, M, w, names, opts)
}

// RunSTO is RunWLS with the sum-to-one constraint applied through the
// projection A = (I − P1·P2·1ᵀ)·A_wls + P1·P2, P1 = Q·1, P2 = 1/(1ᵀQ1).
// Q, P1, P2 and the projection are rebuilt after every pruning round. The
// partial Result on ErrNoEndMembersRemaining matches RunWLS.
func RunSTO(E [][]float64, M, w []float64, names []string, opts Options) (*Result, error) {
	return run(STO, E, M, w, names, opts)
}

// Run solves ds with the given algorithm.
func Run(ds *Dataset, alg Algorithm, opts Options) (*Result, error) {
	if ds == nil {
		return nil, ErrNoSelection
	}
	switch alg {
	case WLS:
		return RunWLS(ds.EndMembers, ds.Mixed, ds.Weights, ds.Names, opts)
	case STO:
		return RunSTO(ds.EndMembers, ds.Mixed, ds.Weights, ds.Names, opts)
	default:
		return nil, fmt.Errorf("unknown algorithm %q", alg)
	}
}

func run(alg Algorithm, E [][]float64, M, w []float64, names []string, opts Options) (*Result, error) {
	if err := checkShapes(E, M, w, names); err != nil {
		return nil, err
	}

	active := make([]int, len(E))
	for i := range active {
		active[i] = i
	}

	res := &Result{Algorithm: alg}
	var (
		sys *system
		a   *mat.VecDense
	)
	for {
		var err error
		sys, err = newSystem(E, active, M, w, opts.MinRCond)
		if err != nil {
			return nil, err
		}
		a = sys.wls()
		if alg == STO {
			if a, err = sys.sumToOne(a); err != nil {
				return nil, err
			}
		}

		drop := nonPositive(a, opts.RoundDecimals)
		if len(drop) == 0 {
			break
		}
		removed := make([]string, 0, len(drop))
		for _, idx := range drop {
			removed = append(removed, names[active[idx]])
		}
		res.Pruned = append(res.Pruned, removed)
		active = without(active, drop)
		if len(active) == 0 {
			return res, fmt.Errorf("%w: pruned %v", faults.ErrNoEndMembersRemaining, flatten(res.Pruned))
		}
	}

	k := len(active)
	res.Names = make([]string, k)
	res.Abundances = make([]float64, k)
	res.Errors = make([]float64, k)
	for i, idx := range active {
		res.Names[i] = names[idx]
		res.Abundances[i] = a.AtVec(i)
		res.Errors[i] = math.Sqrt(sys.q.At(i, i))
	}

	res.Fit = make([]float64, len(M))
	scaled := make([]float64, len(M))
	for i, idx := range active {
		vecmath.ScaleBlock(scaled, E[idx], res.Abundances[i])
		vecmath.AddBlockInPlace(res.Fit, scaled)
	}
	res.Residual = make([]float64, len(M))
	floats.SubTo(res.Residual, M, res.Fit)
	res.RMS = math.Sqrt(floats.Dot(res.Residual, res.Residual) / float64(len(M)))

	if alg == STO {
		res.Normalized = normalizeWithout(res.Names, res.Abundances, opts.BlackbodyName)
	}
	return res, nil
}

// system holds the weighted normal equations for one active end-member set.
type system struct {
	// q is (E W Eᵀ)⁻¹.
	q *mat.Dense
	// b is E W M.
	b *mat.VecDense
}

func newSystem(E [][]float64, active []int, M, w []float64, minRCond float64) (*system, error) {
	k, n := len(active), len(M)
	e := mat.NewDense(k, n, nil)
	ew := mat.NewDense(k, n, nil)
	row := make([]float64, n)
	for i, idx := range active {
		e.SetRow(i, E[idx])
		vecmath.MulBlock(row, E[idx], w)
		ew.SetRow(i, row)
	}

	var gram mat.Dense
	gram.Mul(ew, e.T())

	cond := mat.Cond(&gram, 1)
	if math.IsInf(cond, 0) || math.IsNaN(cond) || cond*minRCond > 1 {
		return nil, fmt.Errorf("%w: E W Eᵀ has condition number %g; remove duplicate or collinear end-members",
			faults.ErrSingularMatrix, cond)
	}
	var q mat.Dense
	if err := q.Inverse(&gram); err != nil {
		return nil, fmt.Errorf("%w: %v", faults.ErrSingularMatrix, err)
	}

	b := mat.NewVecDense(k, nil)
	b.MulVec(ew, mat.NewVecDense(n, slices.Clone(M)))
	return &system{q: &q, b: b}, nil
}

func (s *system) wls() *mat.VecDense {
	k, _ := s.q.Dims()
	a := mat.NewVecDense(k, nil)
	a.MulVec(s.q, s.b)
	return a
}

func (s *system) sumToOne(awls *mat.VecDense) (*mat.VecDense, error) {
	k, _ := s.q.Dims()
	ones := mat.NewVecDense(k, nil)
	for i := 0; i < k; i++ {
		ones.SetVec(i, 1)
	}

	p1 := mat.NewVecDense(k, nil)
	p1.MulVec(s.q, ones)
	denom := mat.Dot(ones, p1)
	if denom == 0 || math.IsNaN(denom) || math.IsInf(denom, 0) {
		return nil, fmt.Errorf("%w: 1ᵀ(E W Eᵀ)⁻¹1 is %g", faults.ErrSingularMatrix, denom)
	}
	p2 := 1 / denom

	var proj mat.Dense
	proj.Outer(p2, p1, ones)
	eye := mat.NewDiagDense(k, slices.Clone(ones.RawVector().Data))
	var stop mat.Dense
	stop.Sub(eye, &proj)

	projected := mat.NewVecDense(k, nil)
	projected.MulVec(&stop, awls)
	a := mat.NewVecDense(k, nil)
	a.AddScaledVec(projected, p2, p1)
	return a, nil
}

func checkShapes(E [][]float64, M, w []float64, names []string) error {
	if len(E) == 0 {
		return ErrNoSelection
	}
	if len(names) != len(E) {
		return fmt.Errorf("%w: %d end-member rows but %d names", faults.ErrDatasetAlignment, len(E), len(names))
	}
	if len(M) == 0 {
		return ErrNoOverlap
	}
	if len(w) != len(M) {
		return fmt.Errorf("%w: %d weights for %d channels", faults.ErrDatasetAlignment, len(w), len(M))
	}
	for i, row := range E {
		if len(row) != len(M) {
			return fmt.Errorf("%w: end-member %q has %d channels, mixed spectrum has %d",
				faults.ErrDatasetAlignment, names[i], len(row), len(M))
		}
	}
	return nil
}

// nonPositive returns the indices whose value, rounded half to even at the
// given number of decimals, is zero or negative. NaN abundances are treated
// as non-positive.
func nonPositive(a *mat.VecDense, decimals int) []int {
	scale := math.Pow(10, float64(decimals))
	var out []int
	for i := 0; i < a.Len(); i++ {
		r := math.RoundToEven(a.AtVec(i)*scale) / scale
		if !(r > 0) {
			out = append(out, i)
		}
	}
	return out
}

func without(active []int, drop []int) []int {
	out := make([]int, 0, len(active)-len(drop))
	for i, idx := range active {
		if !slices.Contains(drop, i) {
			out = append(out, idx)
		}
	}
	return out
}

func flatten(rounds [][]string) []string {
	var out []string
	for _, r := range rounds {
		out = append(out, r...)
	}
	return out
}

// normalizeWithout zeroes the blackbody entry and rescales the remainder to
// sum to one. Without a blackbody entry the abundances are returned as a
// copy. When nothing but the blackbody remains the result is all zeros.
func normalizeWithout(names []string, abundances []float64, blackbody string) []float64 {
	out := slices.Clone(abundances)
	idx := slices.Index(names, blackbody)
	if blackbody == "" || idx < 0 {
		return out
	}
	for i, name := range names {
		if name == blackbody {
			out[i] = 0
		}
	}
	sum := floats.Sum(out)
	if sum == 0 {
		return out
	}
	floats.Scale(1/sum, out)
	return out
}
