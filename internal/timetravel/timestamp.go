// Copyright (c) 2025 Sqlferry
// Licensed under the MIT License. See LICENSE file in the project root for details.

package timetravel

import (
	"regexp"
	"strconv"
	"time"

	apperr "sqlferry/cli/internal/errors"
)

// ISOFormat renders instants the way the bookmark endpoint expects them.
const ISOFormat = "2006-01-02T15:04:05.000Z"

// Window is how far back a restore target may lie.
const Window = 30 * 24 * time.Hour

var (
	epochSeconds = regexp.MustCompile(`^\d{10}$`)
	epochNumber  = regexp.MustCompile(`^-?\d+$`)
)

var isoLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.000Z07:00",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseTimestamp reads s as a Unix epoch (ten digits are seconds, any other
// integer is milliseconds) or as an ISO-8601 date or date-time.
func ParseTimestamp(s string, now time.Time) (time.Time, error) {
	switch {
	case epochSeconds.MatchString(s):
		n, _ := strconv.ParseInt(s, 10, 64)
		return time.Unix(n, 0).UTC(), nil
	case epochNumber.MatchString(s):
		n, err := strconv.ParseInt(s, 10, 64)
		if err == nil {
			return time.UnixMilli(n).UTC(), nil
		}
	default:
		for _, layout := range isoLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t.UTC(), nil
			}
		}
	}
	return time.Time{}, apperr.User("Invalid timestamp '%s'. Please provide a valid Unix timestamp or ISO string, for example: %s",
		s, now.UTC().Format(ISOFormat))
}

// CheckWindow rejects instants older than Window or later than now.
func CheckWindow(t, now time.Time) error {
	if t.Before(now.Add(-Window)) {
		return apperr.User("Invalid timestamp '%s'. Please provide a timestamp within the last 30 days", t.Format(ISOFormat))
	}
	if t.After(now) {
		return apperr.User("Invalid timestamp '%s'. Please provide a timestamp in the past", t.Format(ISOFormat))
	}
	return nil
}

// ConvertTimestamp parses s, checks it against the restore window and returns
// it in ISOFormat.
func ConvertTimestamp(s string, now time.Time) (string, error) {
	t, err := ParseTimestamp(s, now)
	if err != nil {
		return "", err
	}
	if err := CheckWindow(t, now); err != nil {
		return "", err
	}
	return t.Format(ISOFormat), nil
}
