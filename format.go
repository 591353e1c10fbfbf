// format.go: pure number formatter.
//
// Formatting is independent of evaluation: it maps a float64 plus display
// options to text. Options come from the solve Config (places, zero
// stripping, digit grouping, notation) and from the per-declaration
// decoration (full precision, money/percent, base).
package mathpad

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Notation selects the rendering family for decimal values.
type Notation int

const (
	NotationFloat Notation = iota
	NotationSci
	NotationEng
)

// FormatOpts are the knobs of one formatting call.
type FormatOpts struct {
	Places        int
	StripZeros    bool
	GroupDigits   bool
	Notation      Notation
	FullPrecision bool   // :: and ->> markers
	Format        Format // money / percent
	Base          int    // 0 or 10 = decimal
}

// FormatNumber renders v per the options. Non-finite inputs render as the
// literals NaN / Infinity / -Infinity regardless of options.
func FormatNumber(v float64, o FormatOpts) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "Infinity"
	case math.IsInf(v, -1):
		return "-Infinity"
	}

	if o.Base != 0 && o.Base != 10 {
		return formatBase(v, o.Base)
	}

	switch o.Format {
	case FmtMoney:
		return formatMoney(v, o)
	case FmtPercent:
		return formatPercent(v, o)
	}

	switch o.Notation {
	case NotationSci:
		return formatSci(v, o, false)
	case NotationEng:
		return formatSci(v, o, true)
	}
	return formatFloat(v, o)
}

// formatBase renders the value as an integer in base b, uppercase, with a
// trailing #b suffix.
func formatBase(v float64, b int) string {
	n := int64(math.Round(v))
	neg := n < 0
	if neg {
		n = -n
	}
	s := strings.ToUpper(strconv.FormatInt(n, b))
	if neg {
		s = "-" + s
	}
	return fmt.Sprintf("%s#%d", s, b)
}

func formatFloat(v float64, o FormatOpts) string {
	var s string
	if o.FullPrecision {
		s = strconv.FormatFloat(v, 'f', -1, 64)
	} else {
		s = strconv.FormatFloat(v, 'f', o.Places, 64)
		if o.StripZeros {
			s = stripTrailingZeros(s, 0)
		}
	}
	if o.GroupDigits {
		s = groupThousands(s)
	}
	return s
}

// formatMoney renders with at least two decimals and the sign placed before
// the dollar sign.
func formatMoney(v float64, o FormatOpts) string {
	abs := math.Abs(v)
	var s string
	if o.FullPrecision {
		s = strconv.FormatFloat(abs, 'f', -1, 64)
	} else {
		places := o.Places
		if places < 2 {
			places = 2
		}
		s = strconv.FormatFloat(abs, 'f', places, 64)
		if o.StripZeros {
			s = stripTrailingZeros(s, 2)
		}
	}
	if decimalsOf(s) < 2 {
		s = strconv.FormatFloat(abs, 'f', 2, 64)
	}
	if o.GroupDigits {
		s = groupThousands(s)
	}
	if v < 0 {
		return "-$" + s
	}
	return "$" + s
}

// formatPercent renders value*100 with a % suffix; trailing zeros are always
// stripped, but never below two decimals unless they strip away entirely.
func formatPercent(v float64, o FormatOpts) string {
	places := o.Places
	if places < 2 {
		places = 2
	}
	var s string
	if o.FullPrecision {
		s = strconv.FormatFloat(v*100, 'f', -1, 64)
	} else {
		s = strconv.FormatFloat(v*100, 'f', places, 64)
		s = stripTrailingZeros(s, 0)
	}
	if o.GroupDigits {
		s = groupThousands(s)
	}
	return s + "%"
}

func formatSci(v float64, o FormatOpts, eng bool) string {
	if v == 0 {
		return zeroSci(o)
	}
	exp := int(math.Floor(math.Log10(math.Abs(v))))
	if eng {
		// Engineering notation keeps the exponent a multiple of three.
		exp = int(math.Floor(float64(exp)/3)) * 3
	}
	mant := v / math.Pow(10, float64(exp))
	// Guard against log10 edge rounding (e.g. 999.9999...).
	if math.Abs(mant) >= 10 && !eng {
		mant /= 10
		exp++
	}
	var ms string
	if o.FullPrecision {
		ms = strconv.FormatFloat(mant, 'f', -1, 64)
	} else {
		ms = strconv.FormatFloat(mant, 'f', o.Places, 64)
		if o.StripZeros {
			ms = stripTrailingZeros(ms, 0)
		}
	}
	return fmt.Sprintf("%se%d", ms, exp)
}

func zeroSci(o FormatOpts) string {
	if o.FullPrecision {
		return "0e0"
	}
	s := strconv.FormatFloat(0, 'f', o.Places, 64)
	if o.StripZeros {
		s = stripTrailingZeros(s, 0)
	}
	return s + "e0"
}

// stripTrailingZeros removes trailing fraction zeros down to keep decimals,
// dropping the point itself when the fraction strips away entirely.
func stripTrailingZeros(s string, keep int) string {
	dot := strings.IndexByte(s, '.')
	if dot < 0 {
		return s
	}
	end := len(s)
	min := dot + 1 + keep
	for end > min && s[end-1] == '0' {
		end--
	}
	if keep == 0 && end == dot+1 {
		end = dot
	}
	// Never end on a bare point.
	if end > dot && end <= dot+1 {
		end = dot
	}
	return s[:end]
}

// groupThousands inserts commas into the integer part.
func groupThousands(s string) string {
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	intPart := s
	rest := ""
	if i := strings.IndexAny(s, ".e"); i >= 0 {
		intPart, rest = s[:i], s[i:]
	}
	if len(intPart) > 3 {
		var b strings.Builder
		lead := len(intPart) % 3
		if lead > 0 {
			b.WriteString(intPart[:lead])
		}
		for i := lead; i < len(intPart); i += 3 {
			if b.Len() > 0 {
				b.WriteByte(',')
			}
			b.WriteString(intPart[i : i+3])
		}
		intPart = b.String()
	}
	out := intPart + rest
	if neg {
		out = "-" + out
	}
	return out
}

func decimalsOf(s string) int {
	if i := strings.IndexByte(s, '.'); i >= 0 {
		return len(s) - i - 1
	}
	return 0
}
