// Package slug derives and validates the public address segment for a
// published site. Ownership and uniqueness checks live in the orchestrator;
// everything here is pure string work.
package slug

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

const (
	MinLength = 3
	MaxLength = 30
)

// ErrInvalid marks a candidate that cannot become a valid subdomain.
var ErrInvalid = errors.New("invalid subdomain")

var (
	hyphenRuns = regexp.MustCompile(`-+`)
	wellFormed = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*[a-z0-9]$`)
)

// reserved blocks subdomains that collide with API routes under /sites/;
// a site published at one of these names could never be loaded.
var reserved = map[string]struct{}{
	"publish":       {},
	"sub-publish":   {},
	"unpublish":     {},
	"status":        {},
	"deploy-status": {},
	"config":        {},
	"analytics":     {},
	"healthz":       {},
	"sites":         {},
	"api":           {},
	"admin":         {},
	"www":           {},
}

// Normalize lowercases the input, turns ASCII punctuation and whitespace
// into hyphen separators, drops everything else (accented letters, emoji),
// then collapses hyphen runs and trims the ends. The result is not
// guaranteed valid; call Validate.
func Normalize(raw string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(raw)) {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
		case r < 128:
			b.WriteByte('-')
		}
	}
	s := hyphenRuns.ReplaceAllString(b.String(), "-")
	return strings.Trim(s, "-")
}

// Validate rejects subdomains outside the 3-30 char window or not matching
// ^[a-z0-9][a-z0-9-]*[a-z0-9]$.
func Validate(s string) error {
	if len(s) < MinLength {
		return fmt.Errorf("%w: %q is shorter than %d characters", ErrInvalid, s, MinLength)
	}
	if len(s) > MaxLength {
		return fmt.Errorf("%w: %q is longer than %d characters", ErrInvalid, s, MaxLength)
	}
	if !wellFormed.MatchString(s) {
		return fmt.Errorf("%w: %q may only contain lowercase letters, digits, and inner hyphens", ErrInvalid, s)
	}
	if _, taken := reserved[s]; taken {
		return fmt.Errorf("%w: %q is reserved", ErrInvalid, s)
	}
	return nil
}

// Derive picks the first usable candidate in priority order: the explicit
// user-supplied slug, the designer name from the about section, the account
// display name, then an account-id fallback that always validates.
func Derive(explicit, aboutName, displayName, accountID string) (string, error) {
	if explicit = strings.TrimSpace(explicit); explicit != "" {
		s := Normalize(explicit)
		if err := Validate(s); err != nil {
			// An explicit choice that does not validate is an error, not a
			// reason to silently fall through to another name.
			return "", err
		}
		return s, nil
	}
	for _, candidate := range []string{aboutName, displayName} {
		s := Normalize(candidate)
		if Validate(s) == nil {
			return s, nil
		}
	}
	s := Normalize("user-" + accountID)
	if len(s) > MaxLength {
		s = strings.Trim(s[:MaxLength], "-")
	}
	if err := Validate(s); err != nil {
		return "", fmt.Errorf("no usable subdomain source: %w", err)
	}
	return s, nil
}

// Suggestions generates 3-5 valid alternatives for a taken subdomain.
func Suggestions(base, ownerUsername string, year int) []string {
	base = Normalize(base)
	candidates := []string{
		base + "-portfolio",
		base + "-" + strconv.Itoa(year),
		base + "-design",
		base + "-work",
	}
	if owner := Normalize(ownerUsername); owner != "" && owner != base {
		candidates = append(candidates, owner+"-"+base)
	}

	seen := make(map[string]struct{}, len(candidates))
	out := make([]string, 0, 5)
	for _, c := range candidates {
		if len(c) > MaxLength {
			c = strings.Trim(c[:MaxLength], "-")
		}
		if Validate(c) != nil {
			continue
		}
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
		if len(out) == 5 {
			break
		}
	}
	return out
}
