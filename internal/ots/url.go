package ots

import (
	"fmt"
	"net/url"
)

// Calendar URL rules: https scheme, no userinfo, no query string, no
// fragment. The canonical string form is exactly what net/url produces.
// The check runs both when parsing pending leaves off the wire and when
// accepting user-supplied calendar URLs.

// ParseCalendarURL validates raw against the calendar URL rules and
// returns its canonical string form.
func ParseCalendarURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid URL %q: %w", raw, err)
	}
	if u.Scheme != "https" {
		return "", fmt.Errorf("invalid URL %q: scheme must be https", raw)
	}
	if u.User != nil {
		return "", fmt.Errorf("invalid URL %q: userinfo not allowed", raw)
	}
	if u.RawQuery != "" || u.ForceQuery {
		return "", fmt.Errorf("invalid URL %q: query string not allowed", raw)
	}
	if u.Fragment != "" {
		return "", fmt.Errorf("invalid URL %q: fragment not allowed", raw)
	}
	if u.Host == "" {
		return "", fmt.Errorf("invalid URL %q: missing host", raw)
	}
	return u.String(), nil
}
