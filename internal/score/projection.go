// Package score maps a 0-100 evaluation score onto its display projection.
package score

import (
	"fmt"
	"math"
)

// Color is an opaque 8-bit RGB colour.
type Color struct {
	R, G, B uint8
}

// Hex renders the colour as #RRGGBB.
func (c Color) Hex() string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

var (
	Red    = Color{R: 0xFF, G: 0x52, B: 0x52}
	Orange = Color{R: 0xFF, G: 0x98, B: 0x00}
	Yellow = Color{R: 0xFF, G: 0xEB, B: 0x3B}
	Green  = Color{R: 0x1E, G: 0xD7, B: 0x60}
)

// Clamp bounds s to 0..100.
func Clamp(s int) int {
	if s < 0 {
		return 0
	}
	if s > 100 {
		return 100
	}
	return s
}

type colorStop struct {
	from, to   float64
	start, end Color
}

var gradient = []colorStop{
	{from: 40, to: 55, start: Red, end: Orange},
	{from: 55, to: 70, start: Orange, end: Yellow},
	{from: 70, to: 85, start: Yellow, end: Green},
}

// ColorFor returns the display colour of a score.
func ColorFor(s int) Color {
	return colorAt(float64(Clamp(s)))
}

func colorAt(s float64) Color {
	if s < gradient[0].from {
		return Red
	}
	for _, stop := range gradient {
		if s < stop.to {
			return lerp(stop.start, stop.end, (s-stop.from)/(stop.to-stop.from))
		}
	}
	return Green
}

func lerp(a, b Color, t float64) Color {
	mix := func(x, y uint8) uint8 {
		return uint8(math.Round(float64(x) + (float64(y)-float64(x))*t))
	}
	return Color{R: mix(a.R, b.R), G: mix(a.G, b.G), B: mix(a.B, b.B)}
}

// Bucket is a qualitative score band. Higher buckets are better.
type Bucket int

const (
	BucketNeedsPractice Bucket = iota
	BucketKeepTrying
	BucketOkay
	BucketGood
	BucketGreat
	BucketPerfect
)

var bucketThresholds = [...]int{40, 55, 70, 85, 95}

// BucketFor returns the band of a score.
func BucketFor(s int) Bucket {
	s = Clamp(s)
	b := BucketNeedsPractice
	for _, threshold := range bucketThresholds {
		if s < threshold {
			break
		}
		b++
	}
	return b
}

var bucketMessages = [...]string{
	BucketNeedsPractice: "더 연습이 필요합니다",
	BucketKeepTrying:    "조금 더 노력해보세요",
	BucketOkay:          "괜찮아요, 계속 해보세요",
	BucketGood:          "잘하고 있어요!",
	BucketGreat:         "훌륭합니다!",
	BucketPerfect:       "완벽해요!",
}

var bucketEmoji = [...]string{
	BucketNeedsPractice: "😰",
	BucketKeepTrying:    "😐",
	BucketOkay:          "🙂",
	BucketGood:          "😊",
	BucketGreat:         "🎉",
	BucketPerfect:       "🌟",
}

func (b Bucket) Message() string { return bucketMessages[b] }
func (b Bucket) Emoji() string   { return bucketEmoji[b] }

// MessageFor returns the encouragement message of a score.
func MessageFor(s int) string {
	return BucketFor(s).Message()
}

// EmojiFor returns the emoji of a score.
func EmojiFor(s int) string {
	return BucketFor(s).Emoji()
}

// Headline is the title line shown above the feedback details.
func Headline(s int) string {
	switch s = Clamp(s); {
	case s >= 85:
		return "✨ 훌륭한 응답입니다!"
	case s >= 70:
		return "👍 좋은 시도입니다!"
	case s >= 50:
		return "💪 연습이 필요합니다!"
	default:
		return "📚 기초부터 다시 점검해봅시다!"
	}
}

// Projection bundles everything a shell renders for a score.
type Projection struct {
	Score    int    `json:"score"`
	Color    string `json:"color"`
	Message  string `json:"message"`
	Emoji    string `json:"emoji"`
	Headline string `json:"headline"`
}

// Project computes the full projection of a score.
func Project(s int) Projection {
	s = Clamp(s)
	return Projection{
		Score:    s,
		Color:    ColorFor(s).Hex(),
		Message:  MessageFor(s),
		Emoji:    EmojiFor(s),
		Headline: Headline(s),
	}
}
