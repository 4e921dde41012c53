package reservoir

import (
	"math"

	"github.com/containerd/errdefs"
	"github.com/pkg/errors"
)

// ErrInvalidQuantile is returned by Snapshot.GetValue for quantiles outside
// [0, 1]. It matches errdefs.IsInvalidArgument.
var ErrInvalidQuantile = errors.Wrap(errdefs.ErrInvalidArgument, "quantile must be within [0, 1]")

func checkQuantile(q float64) error {
	if math.IsNaN(q) || q < 0 || q > 1 {
		return errors.Wrapf(ErrInvalidQuantile, "got %v", q)
	}
	return nil
}
