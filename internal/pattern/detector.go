// Package pattern finds candlestick formations in a candle series.
//
// Detection is a pure forward scan. For every index i the single-candle
// classifiers run on i, the two-candle classifiers on (i-1, i) and the
// three-candle classifiers on (i-2, i-1, i). Matches are emitted in that
// order and, within a group, in table order; overlapping matches are all kept.
package pattern

import (
	"iter"
	"slices"

	"CandleSentinel/internal/model"
)

var singleCandle = []struct {
	kind  model.PatternKind
	match func(model.Candle) bool
}{
	{model.Doji, IsDoji},
	{model.Hammer, IsHammer},
	{model.InvertedHammer, IsInvertedHammer},
	{model.ShootingStar, IsShootingStar},
	{model.SpinningTop, IsSpinningTop},
	{model.BullishMarubozu, IsBullishMarubozu},
	{model.BearishMarubozu, IsBearishMarubozu},
}

var twoCandle = []struct {
	kind  model.PatternKind
	match func(prev, curr model.Candle) bool
}{
	{model.BullishEngulfing, IsBullishEngulfing},
	{model.BearishEngulfing, IsBearishEngulfing},
	{model.BullishHarami, IsBullishHarami},
	{model.BearishHarami, IsBearishHarami},
	{model.PiercingPattern, IsPiercingPattern},
	{model.DarkCloudCover, IsDarkCloudCover},
	{model.TweezerTops, IsTweezerTops},
	{model.TweezerBottoms, IsTweezerBottoms},
}

var threeCandle = []struct {
	kind  model.PatternKind
	match func(c1, c2, c3 model.Candle) bool
}{
	{model.MorningStar, IsMorningStar},
	{model.EveningStar, IsEveningStar},
}

// Kinds lists every kind the detector can emit, in emission order.
func Kinds() []model.PatternKind {
	kinds := make([]model.PatternKind, 0, len(singleCandle)+len(twoCandle)+len(threeCandle))
	for _, s := range singleCandle {
		kinds = append(kinds, s.kind)
	}
	for _, s := range twoCandle {
		kinds = append(kinds, s.kind)
	}
	for _, s := range threeCandle {
		kinds = append(kinds, s.kind)
	}
	return kinds
}

// All lazily yields every occurrence in series. The sequence can be ranged
// over any number of times and never modifies series.
func All(series model.Series) iter.Seq[model.Occurrence] {
	return func(yield func(model.Occurrence) bool) {
		for i, c := range series {
			for _, s := range singleCandle {
				if s.match(c) && !yield(occurrence(series, s.kind, i)) {
					return
				}
			}
			if i >= 1 {
				prev := series[i-1]
				for _, s := range twoCandle {
					if s.match(prev, c) && !yield(occurrence(series, s.kind, i-1, i)) {
						return
					}
				}
			}
			if i >= 2 {
				c1, c2 := series[i-2], series[i-1]
				for _, s := range threeCandle {
					if s.match(c1, c2, c) && !yield(occurrence(series, s.kind, i-2, i-1, i)) {
						return
					}
				}
			}
		}
	}
}

// Detect materialises All. The result is empty, never nil.
func Detect(series model.Series) []model.Occurrence {
	out := slices.Collect(All(series))
	if out == nil {
		return []model.Occurrence{}
	}
	return out
}

// AnchoredAt groups occurrences by the index of their last covered candle,
// keeping emission order inside each group.
func AnchoredAt(occs []model.Occurrence) map[int][]model.Occurrence {
	byAnchor := make(map[int][]model.Occurrence)
	for _, o := range occs {
		byAnchor[o.Anchor] = append(byAnchor[o.Anchor], o)
	}
	return byAnchor
}

func occurrence(series model.Series, kind model.PatternKind, indices ...int) model.Occurrence {
	anchor := indices[len(indices)-1]
	return model.Occurrence{
		Kind:       kind,
		Indices:    indices,
		Anchor:     anchor,
		AnchorTime: series[anchor].Time,
	}
}
