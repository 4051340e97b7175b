// Package proximity decides, from geographic distance, which tier a user
// falls into for a place and whether that tier opens the place's chat room.
// It also tracks per-session episode state so entry notifications fire at
// most once per visit.
package proximity

import "github.com/rotisserie/eris"

// ErrInvalidThresholds is returned when a threshold set does not satisfy
// 0 < hot < close < range, or when a cooldown is negative.
var ErrInvalidThresholds = eris.New("invalid proximity thresholds")

// Tier is the distance band a user occupies relative to a place. Tiers are
// totally ordered: Far < InRange < Close < Hot.
type Tier int

const (
	TierFar Tier = iota
	TierInRange
	TierClose
	TierHot
)

func (t Tier) String() string {
	switch t {
	case TierHot:
		return "hot"
	case TierClose:
		return "close"
	case TierInRange:
		return "in_range"
	default:
		return "far"
	}
}

// Thresholds holds the tier cutoffs in meters. A distance equal to a cutoff
// counts as within the tighter tier.
type Thresholds struct {
	HotMeters   float64 `json:"hot_meters"`
	CloseMeters float64 `json:"close_meters"`
	RangeMeters float64 `json:"range_meters"`
}

// DefaultThresholds returns the standard 100/200/500 m tier cutoffs.
func DefaultThresholds() Thresholds {
	return Thresholds{HotMeters: 100, CloseMeters: 200, RangeMeters: 500}
}

// Validate enforces strictly increasing, positive cutoffs.
func (t Thresholds) Validate() error {
	if t.HotMeters <= 0 || t.CloseMeters <= 0 || t.RangeMeters <= 0 {
		return eris.Wrapf(ErrInvalidThresholds, "cutoffs must be positive, got %v/%v/%v",
			t.HotMeters, t.CloseMeters, t.RangeMeters)
	}
	if t.HotMeters >= t.CloseMeters || t.CloseMeters >= t.RangeMeters {
		return eris.Wrapf(ErrInvalidThresholds, "want hot < close < range, got %v/%v/%v",
			t.HotMeters, t.CloseMeters, t.RangeMeters)
	}
	return nil
}

// Policy classifies distances against a validated threshold set.
type Policy struct {
	thresholds Thresholds
}

// NewPolicy builds a Policy, rejecting misordered or non-positive cutoffs.
func NewPolicy(t Thresholds) (*Policy, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &Policy{thresholds: t}, nil
}

// Thresholds returns the cutoffs the policy was built with.
func (p *Policy) Thresholds() Thresholds { return p.thresholds }

// Classify maps a distance in meters to the tightest tier it satisfies.
func (p *Policy) Classify(distanceM float64) Tier {
	switch {
	case distanceM <= p.thresholds.HotMeters:
		return TierHot
	case distanceM <= p.thresholds.CloseMeters:
		return TierClose
	case distanceM <= p.thresholds.RangeMeters:
		return TierInRange
	default:
		return TierFar
	}
}

// CanJoinChat reports whether a tier permits access to the place's chat room.
// Everything except Far does.
func CanJoinChat(t Tier) bool { return t != TierFar }
