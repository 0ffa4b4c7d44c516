package web

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"anime365-client/lib/timezone"
)

var trailingNumber = regexp.MustCompile(`(\d+)$`)

// ExtractIdentifiers reads the series and episode ids out of a catalog url
// of the form /catalog/{slug}-{seriesId}/{slug}-{episodeId}. Missing ids are 0.
func ExtractIdentifiers(u *url.URL) (seriesId int, episodeId int) {
	var parts []string
	for _, p := range strings.Split(u.Path, "/") {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) < 2 || parts[0] != "catalog" {
		return 0, 0
	}

	seriesId = trailingId(parts[1])
	if len(parts) >= 3 {
		episodeId = trailingId(parts[2])
	}
	return seriesId, episodeId
}

func trailingId(segment string) int {
	groups := trailingNumber.FindStringSubmatch(segment)
	if len(groups) < 2 {
		return 0
	}
	id, err := strconv.Atoi(groups[1])
	if err != nil {
		return 0
	}
	return id
}

// ParseDuration parses "mm:ss" or "hh:mm:ss".
func ParseDuration(value string) (time.Duration, error) {
	segments := strings.Split(strings.TrimSpace(value), ":")
	numbers := make([]int, len(segments))
	for i, s := range segments {
		n, err := strconv.Atoi(s)
		if err != nil {
			return 0, fmt.Errorf("invalid duration %q: %w", value, err)
		}
		numbers[i] = n
	}

	switch len(numbers) {
	case 2:
		return time.Duration(numbers[0])*time.Minute +
			time.Duration(numbers[1])*time.Second, nil
	case 3:
		return time.Duration(numbers[0])*time.Hour +
			time.Duration(numbers[1])*time.Minute +
			time.Duration(numbers[2])*time.Second, nil
	default:
		return 0, fmt.Errorf("invalid duration %q: expected mm:ss or hh:mm:ss", value)
	}
}

var webDateRegex = regexp.MustCompile(`^\d{2}\.\d{2}\.\d{4} \d{2}:\d{2}$`)

const webDateLayout = "02.01.2006 15:04"

// ParseWebDate parses dates shown on pages ("15.01.2024 14:30", Moscow time).
func ParseWebDate(value string) (time.Time, error) {
	if !webDateRegex.MatchString(value) {
		return time.Time{}, fmt.Errorf("invalid date %q: expected dd.MM.yyyy HH:mm", value)
	}
	return timezone.Parse(webDateLayout, value)
}

// ResolveUrl resolves `ref` (usually an href or src attribute) against `base`.
func ResolveUrl(base *url.URL, ref string) (string, error) {
	parsed, err := url.Parse(strings.TrimSpace(ref))
	if err != nil {
		return "", err
	}
	return base.ResolveReference(parsed).String(), nil
}

var loginPageMarkers = []string{
	"Вход или регистрация",
	"Вход - Anime 365",
	"Вход по паролю",
}

// IsLoginPage reports whether `html` is the page served to anonymous users
// in place of a members-only page.
func IsLoginPage(html string) bool {
	for _, marker := range loginPageMarkers {
		if strings.Contains(html, marker) {
			return true
		}
	}
	return false
}
