// Package archive reads and writes the MathPad text-archive interchange
// format. An archive is a sequence of records, each carrying two optional
// header lines, the record text, and a separator line of 27 tildes:
//
//	Category = "Personal"; Secret = 0
//	Places = 2; StripZeros = 1
//	width w: 4
//	area = w**2
//	~~~~~~~~~~~~~~~~~~~~~~~~~~~
//
// Both header lines may be absent; readers fall back to an Unfiled,
// non-secret record with 14 places and zero stripping on. End of input
// before a separator closes the last record.
package archive

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

const (
	categoryPrefix = `Category = "`
	placesPrefix   = `Places = `
	separator      = "~~~~~~~~~~~~~~~~~~~~~~~~~~~"

	// maxCategory is the longest category name that survives a round trip.
	maxCategory = 15
	// maxText is the record text cap carried over from the handheld's
	// record size limit.
	maxText = 4096
)

// DefaultCategory is the category of records whose header is absent.
const DefaultCategory = "Unfiled"

// Record is one archived document.
type Record struct {
	Category   string
	Secret     bool
	Places     int
	StripZeros bool
	Text       string
}

// Read parses every record from r. A malformed header line is treated as
// record text, matching the permissive importer this format comes from.
func Read(r io.Reader) ([]Record, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 4096), maxText+1)

	var recs []Record
	for {
		rec, ok, err := readRecord(sc)
		if err != nil {
			return recs, err
		}
		if !ok {
			return recs, nil
		}
		recs = append(recs, rec)
	}
}

func readRecord(sc *bufio.Scanner) (Record, bool, error) {
	rec := Record{
		Category:   DefaultCategory,
		Places:     14,
		StripZeros: true,
	}

	// Skip blank lines between records so trailing blank lines never load
	// as an empty record.
	var line string
	for {
		if !sc.Scan() {
			return rec, false, sc.Err()
		}
		line = trimEOL(sc.Text())
		if line != "" {
			break
		}
	}

	if cat, secret, ok := parseCategoryLine(line); ok {
		rec.Category, rec.Secret = cat, secret
		if !sc.Scan() {
			return rec, false, sc.Err()
		}
		line = trimEOL(sc.Text())
	}
	if places, strip, ok := parsePlacesLine(line); ok {
		rec.Places, rec.StripZeros = places, strip
		if !sc.Scan() {
			return rec, false, sc.Err()
		}
		line = trimEOL(sc.Text())
	}

	var text strings.Builder
	for {
		if strings.HasPrefix(line, separator) {
			break
		}
		if text.Len() > 0 {
			text.WriteByte('\n')
		}
		text.WriteString(line)
		if !sc.Scan() {
			if err := sc.Err(); err != nil {
				return rec, false, err
			}
			break
		}
		line = trimEOL(sc.Text())
	}
	rec.Text = text.String()
	if len(rec.Text) > maxText {
		return rec, false, fmt.Errorf("archive: record text exceeds %d bytes", maxText)
	}
	return rec, true, nil
}

func parseCategoryLine(line string) (category string, secret bool, ok bool) {
	if !strings.HasPrefix(line, categoryPrefix) {
		return "", false, false
	}
	rest := line[len(categoryPrefix):]
	end := strings.IndexByte(rest, '"')
	if end < 0 {
		return "", false, false
	}
	category = rest[:end]
	if len(category) > maxCategory {
		category = category[:maxCategory]
	}
	if eq := strings.LastIndexByte(rest[end:], '='); eq >= 0 {
		secret = atoiPrefix(rest[end+eq+1:]) != 0
	}
	return category, secret, true
}

func parsePlacesLine(line string) (places int, strip bool, ok bool) {
	if !strings.HasPrefix(line, placesPrefix) {
		return 0, false, false
	}
	rest := line[len(placesPrefix):]
	places = atoiPrefix(rest)
	strip = true
	if eq := strings.LastIndexByte(rest, '='); eq >= 0 {
		strip = atoiPrefix(rest[eq+1:]) != 0
	}
	return places, strip, true
}

// atoiPrefix parses the leading integer of s, ignoring surrounding spaces
// and any trailing junk, like atoi does.
func atoiPrefix(s string) int {
	s = strings.TrimLeft(s, " \t")
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0
	}
	return n
}

func trimEOL(s string) string {
	return strings.TrimRight(s, "\r")
}

// Write emits recs in the exact interchange form, headers always present.
func Write(w io.Writer, recs []Record) error {
	bw := bufio.NewWriter(w)
	for _, rec := range recs {
		cat := rec.Category
		if cat == "" {
			cat = DefaultCategory
		}
		if len(cat) > maxCategory {
			cat = cat[:maxCategory]
		}
		fmt.Fprintf(bw, "Category = \"%s\"; Secret = %d\n", cat, boolInt(rec.Secret))
		fmt.Fprintf(bw, "Places = %d; StripZeros = %d\n", rec.Places, boolInt(rec.StripZeros))
		bw.WriteString(rec.Text)
		bw.WriteByte('\n')
		bw.WriteString(separator)
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
