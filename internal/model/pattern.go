package model

import "time"

// PatternKind names a candlestick formation.
type PatternKind string

const (
	Doji            PatternKind = "Doji"
	Hammer          PatternKind = "Hammer"
	InvertedHammer  PatternKind = "Inverted Hammer"
	ShootingStar    PatternKind = "Shooting Star"
	SpinningTop     PatternKind = "Spinning Top"
	BullishMarubozu PatternKind = "Bullish Marubozu"
	BearishMarubozu PatternKind = "Bearish Marubozu"

	BullishEngulfing PatternKind = "Bullish Engulfing"
	BearishEngulfing PatternKind = "Bearish Engulfing"
	BullishHarami    PatternKind = "Bullish Harami"
	BearishHarami    PatternKind = "Bearish Harami"
	PiercingPattern  PatternKind = "Piercing Pattern"
	DarkCloudCover   PatternKind = "Dark Cloud Cover"
	TweezerTops      PatternKind = "Tweezer Tops"
	TweezerBottoms   PatternKind = "Tweezer Bottoms"

	MorningStar PatternKind = "Morning Star"
	EveningStar PatternKind = "Evening Star"
)

// Occurrence is one detected pattern. Indices covers 1-3 consecutive candles
// and Anchor is always the last of them.
type Occurrence struct {
	Kind       PatternKind `json:"kind"`
	Indices    []int       `json:"indices"`
	Anchor     int         `json:"anchor"`
	AnchorTime time.Time   `json:"anchor_time"`
}
