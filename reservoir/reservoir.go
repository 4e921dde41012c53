package reservoir

import (
	"strings"

	"github.com/containerd/errdefs"
	"github.com/pkg/errors"

	"github.com/wesleyorama2/reservoir/internal/atomicx"
)

// Reservoir is a bounded summary of an unbounded stream of observations.
//
// Implementations are safe for concurrent use and none of the methods can
// fail: an idle reservoir yields an empty snapshot.
type Reservoir interface {
	// Update offers a value, with an optional label ("" for none).
	Update(value int64, label string)

	// GetSnapshot returns an immutable view of the current samples. When
	// reset is true the reservoir is cleared after the snapshot is taken.
	GetSnapshot(reset bool) Snapshot

	// Reset clears all accumulated state.
	Reset()

	// Count returns the number of updates since the last reset.
	Count() int64

	// Size returns the number of samples currently held.
	Size() int
}

// Kind names a reservoir algorithm.
type Kind string

const (
	KindUniform               Kind = "uniform"
	KindSlidingWindow         Kind = "sliding-window"
	KindExponentiallyDecaying Kind = "exponentially-decaying"
	KindHdrHistogram          Kind = "hdr-histogram"
)

// DefaultKind is used when no kind is configured.
const DefaultKind = KindExponentiallyDecaying

// Kinds lists every supported kind.
var Kinds = []Kind{KindUniform, KindSlidingWindow, KindExponentiallyDecaying, KindHdrHistogram}

var kindAliases = map[string]Kind{
	"uniform":                KindUniform,
	"algorithm-r":            KindUniform,
	"sliding-window":         KindSlidingWindow,
	"sliding":                KindSlidingWindow,
	"exponentially-decaying": KindExponentiallyDecaying,
	"exp-decay":              KindExponentiallyDecaying,
	"forward-decay":          KindExponentiallyDecaying,
	"hdr-histogram":          KindHdrHistogram,
	"hdr":                    KindHdrHistogram,
}

// ParseKind parses a kind name or one of its aliases, case-insensitively.
// An empty string yields DefaultKind.
func ParseKind(s string) (Kind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return DefaultKind, nil
	}
	k, ok := kindAliases[s]
	if !ok {
		return "", errors.Wrapf(errdefs.ErrInvalidArgument, "unknown reservoir type %q", s)
	}
	return k, nil
}

// String returns the canonical name.
func (k Kind) String() string { return string(k) }

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k), nil
}

// New builds a reservoir of the given kind.
func New(kind Kind, opts ...Option) (Reservoir, error) {
	switch kind {
	case KindUniform:
		return NewUniform(opts...), nil
	case KindSlidingWindow:
		return NewSlidingWindow(opts...), nil
	case KindExponentiallyDecaying, "":
		return NewExponentiallyDecaying(opts...), nil
	case KindHdrHistogram:
		return NewHdrHistogram(opts...), nil
	default:
		return nil, errors.Wrapf(errdefs.ErrInvalidArgument, "unknown reservoir type %q", string(kind))
	}
}

// takeCount loads the update counter, zeroing it in the same step when reset
// is set so that no concurrent increment is lost.
func takeCount(count *atomicx.Int64, reset bool) int64 {
	if reset {
		return count.Swap(0)
	}
	return count.Load()
}

func minSize(count int64, capacity int) int {
	if count < int64(capacity) {
		return int(count)
	}
	return capacity
}
