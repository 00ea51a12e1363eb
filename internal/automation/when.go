package automation

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	defaultHour = 9
	maxAhead    = 366 * 24 * time.Hour
)

var (
	relativePattern = regexp.MustCompile(`^in (\d+|an?) (minute|min|hour|hr|day|week)s?$`)
	clockPattern    = regexp.MustCompile(`(?:^|\s)(at\s+)?(\d{1,2})(?::(\d{2}))?\s*(am|pm)?(?:\s|$)`)
)

var units = map[string]time.Duration{
	"minute": time.Minute,
	"min":    time.Minute,
	"hour":   time.Hour,
	"hr":     time.Hour,
	"day":    24 * time.Hour,
	"week":   7 * 24 * time.Hour,
}

var periods = map[string]int{
	"morning":   9,
	"noon":      12,
	"afternoon": 14,
	"evening":   18,
	"tonight":   20,
}

var weekdays = map[string]time.Weekday{
	"sunday": time.Sunday, "sun": time.Sunday,
	"monday": time.Monday, "mon": time.Monday,
	"tuesday": time.Tuesday, "tue": time.Tuesday, "tues": time.Tuesday,
	"wednesday": time.Wednesday, "wed": time.Wednesday,
	"thursday": time.Thursday, "thu": time.Thursday, "thurs": time.Thursday,
	"friday": time.Friday, "fri": time.Friday,
	"saturday": time.Saturday, "sat": time.Saturday,
}

// Filler words accepted around day and clock expressions.
var fillers = map[string]bool{"on": true, "next": true, "this": true, "at": true, "in": true, "the": true}

// ParseWhen resolves a spoken time such as "in 2 hours", "tomorrow at 9am",
// "friday", "tonight" or an RFC3339 timestamp relative to now. A clock time
// without a day that has already passed today means tomorrow.
func ParseWhen(phrase string, now time.Time) (time.Time, error) {
	raw := strings.TrimSpace(phrase)
	if raw == "" {
		return time.Time{}, errors.New("no time given")
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		if !t.After(now) {
			return time.Time{}, fmt.Errorf("time %q is in the past", phrase)
		}
		return t, nil
	}

	s := strings.TrimSuffix(strings.ToLower(raw), ".")
	if s == "now" {
		return now, nil
	}

	if m := relativePattern.FindStringSubmatch(s); m != nil {
		n := 1
		if m[1] != "a" && m[1] != "an" {
			var err error
			if n, err = strconv.Atoi(m[1]); err != nil {
				return time.Time{}, fmt.Errorf("time %q is more than a year ahead", phrase)
			}
		}
		unit := units[m[2]]
		if time.Duration(n) > maxAhead/unit {
			return time.Time{}, fmt.Errorf("time %q is more than a year ahead", phrase)
		}
		return now.Add(time.Duration(n) * unit), nil
	}

	hour, minute := -1, 0
	hasAMPM := false
	if m := clockPattern.FindStringSubmatchIndex(s); m != nil && (m[2] >= 0 || m[6] >= 0 || m[8] >= 0) {
		h, mm, err := parseClock(s, m)
		if err != nil {
			return time.Time{}, fmt.Errorf("time %q: %w", phrase, err)
		}
		hour, minute, hasAMPM = h, mm, m[8] >= 0
		s = s[:m[0]] + " " + s[m[1]:]
	}

	day := now
	dayGiven := false
	for _, w := range strings.Fields(s) {
		switch wd, isWeekday := weekdays[w]; {
		case fillers[w]:
		case w == "today":
			dayGiven = true
		case w == "tomorrow":
			day = now.AddDate(0, 0, 1)
			dayGiven = true
		case isWeekday:
			ahead := (int(wd) - int(now.Weekday()) + 7) % 7
			if ahead == 0 {
				ahead = 7
			}
			day = now.AddDate(0, 0, ahead)
			dayGiven = true
		case periods[w] > 0:
			switch {
			case hour < 0:
				hour = periods[w]
			case !hasAMPM && hour < 12 && periods[w] >= 12:
				hour += 12
			}
			if w == "tonight" {
				dayGiven = true
			}
		default:
			return time.Time{}, fmt.Errorf("cannot understand time %q", phrase)
		}
	}

	if hour < 0 {
		if !dayGiven {
			return time.Time{}, fmt.Errorf("cannot understand time %q", phrase)
		}
		hour = defaultHour
	}

	at := time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, now.Location())
	if !at.After(now) {
		if dayGiven {
			return time.Time{}, fmt.Errorf("time %q is in the past", phrase)
		}
		at = at.AddDate(0, 0, 1)
	}

	return at, nil
}

func parseClock(s string, m []int) (hour, minute int, err error) {
	hour, _ = strconv.Atoi(s[m[4]:m[5]])
	if m[6] >= 0 {
		minute, _ = strconv.Atoi(s[m[6]:m[7]])
	}
	if minute > 59 {
		return 0, 0, fmt.Errorf("invalid minute %d", minute)
	}

	if m[8] < 0 {
		if hour > 23 {
			return 0, 0, fmt.Errorf("invalid hour %d", hour)
		}
		return hour, minute, nil
	}

	if hour < 1 || hour > 12 {
		return 0, 0, fmt.Errorf("invalid hour %d", hour)
	}
	switch s[m[8]:m[9]] {
	case "am":
		if hour == 12 {
			hour = 0
		}
	case "pm":
		if hour != 12 {
			hour += 12
		}
	}
	return hour, minute, nil
}
