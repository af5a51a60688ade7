// Package racetime parses and formats rowing race times.
//
// Data entry follows the "smart digit" convention used by race recording
// tools: bare digits are interpreted positionally (first digit minutes, next
// two seconds, next three milliseconds), so "704" means 7:04.000 and
// "1150123" means 11:50.123. Formatted input like "7:04.123" is also
// accepted.
package racetime

import (
	"fmt"
	"strconv"
	"strings"
)

// Parse returns minutes, seconds and milliseconds for a time entry.
func Parse(text string) (minutes, seconds, millis int, err error) {
	text = strings.TrimSpace(text)

	if strings.ContainsAny(text, ":.") {
		minutes, seconds, millis, err = parseFormatted(text)
		if err == nil {
			return minutes, seconds, millis, nil
		}
		// fall through to digit parsing
	}

	var digits strings.Builder
	for _, r := range text {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	d := digits.String()
	if d == "" {
		return 0, 0, 0, fmt.Errorf("no digits in %q", text)
	}

	if len(d) <= 6 {
		d = d + strings.Repeat("0", 6-len(d))
		minutes, _ = strconv.Atoi(d[:1])
		seconds, _ = strconv.Atoi(d[1:3])
		millis, _ = strconv.Atoi(d[3:6])
	} else {
		// extra leading digits become tens of minutes
		tens, convErr := strconv.Atoi(d[:len(d)-6])
		if convErr != nil {
			return 0, 0, 0, fmt.Errorf("parse minutes of %q: %w", text, convErr)
		}
		core := d[len(d)-6:]
		ones, _ := strconv.Atoi(core[:1])
		minutes = tens*10 + ones
		seconds, _ = strconv.Atoi(core[1:3])
		millis, _ = strconv.Atoi(core[3:6])
	}

	if seconds >= 60 {
		return 0, 0, 0, fmt.Errorf("seconds must be less than 60 in %q", text)
	}
	return minutes, seconds, millis, nil
}

func parseFormatted(text string) (minutes, seconds, millis int, err error) {
	secPart := text
	if i := strings.IndexByte(text, ':'); i >= 0 {
		if text[:i] != "" {
			minutes, err = strconv.Atoi(text[:i])
			if err != nil {
				return 0, 0, 0, fmt.Errorf("parse minutes of %q: %w", text, err)
			}
		}
		secPart = text[i+1:]
	}

	if j := strings.IndexByte(secPart, '.'); j >= 0 {
		msStr := secPart[j+1:]
		secPart = secPart[:j]
		// pad or truncate to milliseconds
		if len(msStr) < 3 {
			msStr = msStr + strings.Repeat("0", 3-len(msStr))
		}
		msStr = msStr[:3]
		millis, err = strconv.Atoi(msStr)
		if err != nil {
			return 0, 0, 0, fmt.Errorf("parse millis of %q: %w", text, err)
		}
	}
	if secPart != "" {
		seconds, err = strconv.Atoi(secPart)
		if err != nil {
			return 0, 0, 0, fmt.Errorf("parse seconds of %q: %w", text, err)
		}
	}
	if seconds >= 60 {
		return 0, 0, 0, fmt.Errorf("seconds must be less than 60 in %q", text)
	}
	return minutes, seconds, millis, nil
}

// ToSeconds converts a time entry to total seconds.
func ToSeconds(text string) (float64, error) {
	m, s, ms, err := Parse(text)
	if err != nil {
		return 0, err
	}
	return float64(m)*60 + float64(s) + float64(ms)/1000, nil
}

// Format renders total seconds as mm:ss.fff.
func Format(totalSeconds float64) string {
	totalMS := int64(totalSeconds*1000 + 0.5)
	minutes := totalMS / 60000
	remainder := totalMS % 60000
	return fmt.Sprintf("%02d:%02d.%03d", minutes, remainder/1000, remainder%1000)
}

// FormatMargin renders a margin in seconds as +mm:ss.fff. The winner (zero or
// nil margin handled by the caller) gets "Winner".
func FormatMargin(marginSeconds float64) string {
	if marginSeconds <= 0 {
		return "Winner"
	}
	return "+" + Format(marginSeconds)
}
