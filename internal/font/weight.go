package font

import (
	"strconv"
	"strings"
)

// Standard CSS weight classes.
const (
	WeightThin       = 100
	WeightExtraLight = 200
	WeightLight      = 300
	WeightRegular    = 400
	WeightMedium     = 500
	WeightSemiBold   = 600
	WeightBold       = 700
	WeightExtraBold  = 800
	WeightBlack      = 900
)

var weightLabels = map[int]string{
	WeightThin:       "Thin",
	WeightExtraLight: "ExtraLight",
	WeightLight:      "Light",
	WeightRegular:    "Regular",
	WeightMedium:     "Medium",
	WeightSemiBold:   "SemiBold",
	WeightBold:       "Bold",
	WeightExtraBold:  "ExtraBold",
	WeightBlack:      "Black",
}

var styleSeparators = strings.NewReplacer(" ", "", "-", "", "_", "")

func normalizeStyle(style string) string {
	return styleSeparators.Replace(strings.ToLower(style))
}

// ParseWeight infers a weight class from a style name such as "SemiBold Italic".
// Compound names are checked before their suffixes ("extrabold" before "bold").
func ParseWeight(style string) int {
	s := normalizeStyle(style)
	switch {
	case strings.Contains(s, "thin"), strings.Contains(s, "hairline"):
		return WeightThin
	case strings.Contains(s, "extralight"), strings.Contains(s, "ultralight"):
		return WeightExtraLight
	case strings.Contains(s, "light"):
		return WeightLight
	case strings.Contains(s, "medium"):
		return WeightMedium
	case strings.Contains(s, "semibold"), strings.Contains(s, "demibold"):
		return WeightSemiBold
	case strings.Contains(s, "extrabold"), strings.Contains(s, "ultrabold"):
		return WeightExtraBold
	case strings.Contains(s, "black"), strings.Contains(s, "heavy"):
		return WeightBlack
	case strings.Contains(s, "bold"):
		return WeightBold
	default:
		return WeightRegular
	}
}

// WeightLabel names a weight class, falling back to the number.
func WeightLabel(weight int) string {
	if label, ok := weightLabels[weight]; ok {
		return label
	}
	return strconv.Itoa(weight)
}

// IsItalic reports whether the style names an italic or oblique face.
func IsItalic(style string) bool {
	s := normalizeStyle(style)
	return strings.Contains(s, "italic") || strings.Contains(s, "oblique")
}

// Stretch returns "condensed", "expanded" or "normal".
func Stretch(style string) string {
	s := normalizeStyle(style)
	switch {
	case strings.Contains(s, "narrow"), strings.Contains(s, "condensed"):
		return "condensed"
	case strings.Contains(s, "extended"), strings.Contains(s, "expanded"):
		return "expanded"
	default:
		return "normal"
	}
}
