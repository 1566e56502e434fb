package command

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the canonical date format used in slots and records.
const DateLayout = "2006-01-02"

var (
	nextWeekdayPattern = regexp.MustCompile(`^next\s+(monday|tuesday|wednesday|thursday|friday|saturday|sunday)$`)
	isoDatePattern     = regexp.MustCompile(`^(\d{4})-(\d{1,2})-(\d{1,2})$`)
	usDatePattern      = regexp.MustCompile(`^(\d{1,2})[/-](\d{1,2})[/-](\d{4})$`)
)

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// ParseDate resolves relative phrases such as "tomorrow" or "next friday"
// against now and returns a YYYY-MM-DD date. Empty input means today.
// Input that cannot be interpreted is returned unchanged.
func ParseDate(input string, now time.Time) string {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	s := strings.ToLower(strings.TrimSpace(input))

	switch s {
	case "", "immediately", "today", "now":
		return today.Format(DateLayout)
	case "tomorrow":
		return today.AddDate(0, 0, 1).Format(DateLayout)
	case "next week":
		return today.AddDate(0, 0, 7).Format(DateLayout)
	case "next month":
		return today.AddDate(0, 1, 0).Format(DateLayout)
	case "end of week", "end of the week":
		days := (int(time.Friday) - int(today.Weekday()) + 7) % 7
		if days == 0 {
			days = 7
		}
		return today.AddDate(0, 0, days).Format(DateLayout)
	case "end of month", "end of the month":
		return time.Date(today.Year(), today.Month()+1, 0, 0, 0, 0, 0, today.Location()).Format(DateLayout)
	}

	if m := nextWeekdayPattern.FindStringSubmatch(s); m != nil {
		days := int(weekdays[m[1]]) - int(today.Weekday())
		if days <= 0 {
			days += 7
		}
		return today.AddDate(0, 0, days).Format(DateLayout)
	}
	if m := isoDatePattern.FindStringSubmatch(s); m != nil {
		if d, ok := calendarDate(m[1], m[2], m[3]); ok {
			return d
		}
	}
	if m := usDatePattern.FindStringSubmatch(s); m != nil {
		if d, ok := calendarDate(m[3], m[1], m[2]); ok {
			return d
		}
	}
	return strings.TrimSpace(input)
}

// calendarDate rejects dates that time.Date would normalise, such as Feb 30.
func calendarDate(year, month, day string) (string, bool) {
	y, _ := strconv.Atoi(year)
	m, _ := strconv.Atoi(month)
	d, _ := strconv.Atoi(day)
	t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	if t.Year() != y || int(t.Month()) != m || t.Day() != d {
		return "", false
	}
	return t.Format(DateLayout), true
}
