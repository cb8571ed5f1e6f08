// Package thaidate provides Thai civil-calendar labels for report text:
// month names, Buddhist-era years, and forecast month sequences.
package thaidate

import "fmt"

var monthNames = [12]string{
	"มกราคม", "กุมภาพันธ์", "มีนาคม", "เมษายน", "พฤษภาคม", "มิถุนายน",
	"กรกฎาคม", "สิงหาคม", "กันยายน", "ตุลาคม", "พฤศจิกายน", "ธันวาคม",
}

var monthAbbrs = [12]string{
	"ม.ค.", "ก.พ.", "มี.ค.", "เม.ย.", "พ.ค.", "มิ.ย.",
	"ก.ค.", "ส.ค.", "ก.ย.", "ต.ค.", "พ.ย.", "ธ.ค.",
}

// MonthName returns the full Thai month name for 1..12, "" otherwise.
func MonthName(m int) string {
	if m < 1 || m > 12 {
		return ""
	}
	return monthNames[m-1]
}

// MonthAbbr returns the abbreviated Thai month name for 1..12, "" otherwise.
func MonthAbbr(m int) string {
	if m < 1 || m > 12 {
		return ""
	}
	return monthAbbrs[m-1]
}

// BuddhistYear converts a Gregorian year to the Buddhist era.
func BuddhistYear(year int) int {
	return year + 543
}

// Month describes one forecast month.
type Month struct {
	Year         int
	Month        int
	Name         string
	BuddhistYear int
}

// MonthsForLeads returns one Month per lead offset from the base
// (year, month), carrying into the next year when the month-of-year wraps.
// Leads need not start at zero or be contiguous.
func MonthsForLeads(year, month int, leads []int) []Month {
	months := make([]Month, 0, len(leads))
	for _, lead := range leads {
		idx := month + lead - 1
		m := idx%12 + 1
		y := year + idx/12
		months = append(months, Month{
			Year:         y,
			Month:        m,
			Name:         MonthName(m),
			BuddhistYear: BuddhistYear(y),
		})
	}
	return months
}

// rangeSeparator joins the two ends of a month range (spaced en dash).
const rangeSeparator = " – "

// FormatMonthRange renders a human-readable Thai month range. When both ends
// share a Buddhist year it is mentioned once at the end; otherwise each
// month carries its own year.
func FormatMonthRange(first, last Month) string {
	if first.BuddhistYear == last.BuddhistYear {
		return fmt.Sprintf("%s%s%s %d", first.Name, rangeSeparator, last.Name, last.BuddhistYear)
	}
	return fmt.Sprintf("%s %d%s%s %d", first.Name, first.BuddhistYear, rangeSeparator, last.Name, last.BuddhistYear)
}
