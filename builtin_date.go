// builtin_date.go: date/time builtins over the YYYYMMDD.hhmmss encoding.
//
// A date value packs the civil date into the integer part and the time of day
// into the fraction: August 26 2026 at 14:30:05 is 20260826.143005. Two-digit
// years map 00-49 to the 2000s and 50-99 to the 1900s. Conversions ride on a
// single proleptic-Gregorian <-> Julian-day-number pair; days/date count from
// 1899-12-31 so that 1900-01-01 is day 1, while jdays/jdate use the
// astronomical Julian day number itself.
package mathpad

import (
	"math"
	"time"
)

// epochJDN is the Julian day number of 1899-12-31.
const epochJDN = 2415020

func init() {
	register("now", 0, 0, func(_ *EvalContext, _ []float64) (float64, error) {
		t := time.Now()
		return encodeDate(t.Year(), int(t.Month()), t.Day(), t.Hour(), t.Minute(), t.Second()), nil
	})

	register1("days", func(d float64) float64 {
		jdn, frac := dateToJDN(d)
		return float64(jdn-epochJDN) + frac
	})
	register1("jdays", func(d float64) float64 {
		jdn, frac := dateToJDN(d)
		return float64(jdn) + frac
	})
	register1("date", func(n float64) float64 {
		return jdnToDate(n + epochJDN)
	})
	register1("jdate", jdnToDate)

	register1("year", func(d float64) float64 {
		y, _, _ := decodeCivil(d)
		return float64(y)
	})
	register1("month", func(d float64) float64 {
		_, m, _ := decodeCivil(d)
		return float64(m)
	})
	register1("day", func(d float64) float64 {
		_, _, dd := decodeCivil(d)
		return float64(dd)
	})

	// weekday: 1=Sunday .. 7=Saturday.
	register1("weekday", func(d float64) float64 {
		jdn, _ := dateToJDN(d)
		w := (jdn%7 + 2) % 7
		if w <= 0 {
			w += 7
		}
		return float64(w)
	})

	register1("hour", func(d float64) float64 {
		h, _, _ := decodeTime(d)
		return float64(h)
	})
	register1("minute", func(d float64) float64 {
		_, m, _ := decodeTime(d)
		return float64(m)
	})
	register1("second", func(d float64) float64 {
		_, _, s := decodeTime(d)
		return float64(s)
	})

	// hours: time of day as decimal hours.
	register1("hours", func(d float64) float64 {
		h, m, s := decodeTime(d)
		return float64(h) + float64(m)/60 + float64(s)/3600
	})

	// hms: decimal hours to the hh.mmss encoding.
	register1("hms", func(h float64) float64 {
		sign := 1.0
		if h < 0 {
			sign, h = -1, -h
		}
		hh := math.Trunc(h)
		rem := (h - hh) * 60
		mm := math.Trunc(rem)
		ss := math.Round((rem - mm) * 60)
		if ss >= 60 {
			ss -= 60
			mm++
		}
		if mm >= 60 {
			mm -= 60
			hh++
		}
		return sign * (hh + mm/100 + ss/10000)
	})
}

// encodeDate packs civil fields into the date encoding.
func encodeDate(y, mo, d, h, mi, s int) float64 {
	return float64(y*10000+mo*100+d) + float64(h*10000+mi*100+s)/1e6
}

// decodeCivil unpacks the integer part, expanding two-digit years.
func decodeCivil(v float64) (year, month, day int) {
	n := int(math.Trunc(math.Abs(v)))
	year = n / 10000
	month = n / 100 % 100
	day = n % 100
	if year < 50 {
		year += 2000
	} else if year < 100 {
		year += 1900
	}
	return
}

// decodeTime unpacks the .hhmmss fraction.
func decodeTime(v float64) (hour, minute, second int) {
	frac := math.Abs(v) - math.Trunc(math.Abs(v))
	t := int(math.Round(frac * 1e6))
	return t / 10000, t / 100 % 100, t % 100
}

// dateToJDN converts an encoded date to a Julian day number plus the time of
// day as a day fraction.
func dateToJDN(v float64) (jdn int, dayFrac float64) {
	y, mo, d := decodeCivil(v)
	h, mi, s := decodeTime(v)
	return civilToJDN(y, mo, d), (float64(h) + float64(mi)/60 + float64(s)/3600) / 24
}

// jdnToDate converts a (possibly fractional) Julian day number back to the
// date encoding.
func jdnToDate(jd float64) float64 {
	jdn := int(math.Floor(jd))
	frac := jd - math.Floor(jd)
	y, mo, d := jdnToCivil(jdn)

	secs := int(math.Round(frac * 86400))
	if secs >= 86400 {
		secs -= 86400
		y2, m2, d2 := jdnToCivil(jdn + 1)
		y, mo, d = y2, m2, d2
	}
	return encodeDate(y, mo, d, secs/3600, secs/60%60, secs%60)
}

// civilToJDN is the standard proleptic-Gregorian conversion.
func civilToJDN(y, m, d int) int {
	a := (14 - m) / 12
	y2 := y + 4800 - a
	m2 := m + 12*a - 3
	return d + (153*m2+2)/5 + 365*y2 + y2/4 - y2/100 + y2/400 - 32045
}

// jdnToCivil inverts civilToJDN.
func jdnToCivil(jdn int) (y, m, d int) {
	a := jdn + 32044
	b := (4*a + 3) / 146097
	c := a - 146097*b/4
	dd := (4*c + 3) / 1461
	e := c - 1461*dd/4
	mm := (5*e + 2) / 153
	d = e - (153*mm+2)/5 + 1
	m = mm + 3 - 12*(mm/10)
	y = 100*b + dd - 4800 + mm/10
	return
}
