package bookings

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the canonical wire format for stay dates.
const DateLayout = "2006-01-02"

var (
	isoDate = regexp.MustCompile(`^(\d{4})-(\d{1,2})-(\d{1,2})$`)
	dmyDate = regexp.MustCompile(`^(\d{1,2})-(\d{1,2})-(\d{4})$`)
)

// ParseDate accepts yyyy-mm-dd and dd-mm-yyyy using '-', '/' or '.' as the
// separator. ok is false when value is blank.
func ParseDate(value string) (t time.Time, ok bool, err error) {
	input := strings.TrimSpace(value)
	if input == "" {
		return time.Time{}, false, nil
	}
	input = strings.NewReplacer("/", "-", ".", "-").Replace(input)

	var y, m, d string
	if parts := isoDate.FindStringSubmatch(input); parts != nil {
		y, m, d = parts[1], parts[2], parts[3]
	} else if parts := dmyDate.FindStringSubmatch(input); parts != nil {
		d, m, y = parts[1], parts[2], parts[3]
	} else {
		return time.Time{}, false, fmt.Errorf("unrecognized date %q", value)
	}

	year, _ := strconv.Atoi(y)
	month, _ := strconv.Atoi(m)
	day, _ := strconv.Atoi(d)
	t = time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || int(t.Month()) != month || t.Day() != day {
		return time.Time{}, false, fmt.Errorf("invalid calendar date %q", value)
	}
	return t, true, nil
}

// DateOnly truncates t to midnight UTC of its calendar day.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
