package rpca

import (
	"github.com/san-kum/sysid/internal/ident"
	"github.com/san-kum/sysid/internal/lagembed"
	"github.com/san-kum/sysid/internal/tseries"
)

// FilterStop is the default iteration contract of LowRankFilter.
var FilterStop = ident.Stop{MaxIter: 500, Tol: 1e-3}

// LowRankFilter removes sparse impulsive noise from x by decomposing its
// lag embedding of dimension n and averaging the low-rank part back into a
// series. A degenerate decomposition passes x through unchanged.
func LowRankFilter(x []float64, n int, opts ...Option) ([]float64, ident.Report, error) {
	if !tseries.Finite(x) {
		return nil, ident.Report{}, ident.Dimension("low-rank filter", "series has non-finite samples")
	}
	H, err := lagembed.Embed(x, n)
	if err != nil {
		return nil, ident.Report{}, err
	}

	res, err := Decompose(H, append([]Option{WithStop(FilterStop)}, opts...)...)
	if err != nil {
		return nil, ident.Report{}, err
	}
	if res.Status == ident.Degenerate {
		out := make([]float64, len(x))
		copy(out, x)
		return out, res.Report, nil
	}

	out, err := lagembed.Deembed(res.L)
	if err != nil {
		return nil, res.Report, err
	}
	return out, res.Report, nil
}
