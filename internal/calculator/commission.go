package calculator

import "sort"

// GenericUSPlatform is the default broker profile: $1 per trade.
const GenericUSPlatform = "Generic US Platform"

// CommissionSchedule prices one leg (buy or sell) of a trade.
type CommissionSchedule interface {
	Fee(notional float64) float64
}

// FlatFee charges the same dollar amount on every leg.
type FlatFee float64

func (f FlatFee) Fee(float64) float64 { return float64(f) }

var platforms = map[string]CommissionSchedule{
	GenericUSPlatform: FlatFee(1),
}

// PlatformCommission looks up the schedule for a platform. Unknown platforms
// trade for free.
func PlatformCommission(platform string) CommissionSchedule {
	if s, ok := platforms[platform]; ok {
		return s
	}
	return FlatFee(0)
}

// Platforms lists the known platform names in sorted order.
func Platforms() []string {
	names := make([]string, 0, len(platforms))
	for name := range platforms {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
