package core

import (
	"fmt"
	"regexp"
	"strings"
)

// PrivacyFilter declines pastes that look like secrets before they reach the
// vault. A nil filter ignores nothing.
type PrivacyFilter struct {
	// If true, patterns are regular expressions; otherwise case-insensitive
	// substrings.
	UseRegex bool
	Patterns []string

	compiled []*regexp.Regexp
}

func NewPrivacyFilter(patterns []string, useRegex bool) (*PrivacyFilter, error) {
	pf := &PrivacyFilter{UseRegex: useRegex}
	for _, p := range patterns {
		if strings.TrimSpace(p) == "" {
			continue
		}
		pf.Patterns = append(pf.Patterns, p)
		if !useRegex {
			continue
		}
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("ignore pattern %q: %w", p, err)
		}
		pf.compiled = append(pf.compiled, re)
	}
	return pf, nil
}

// ShouldIgnore reports whether content matches any pattern.
func (pf *PrivacyFilter) ShouldIgnore(content string) bool {
	if pf == nil || content == "" {
		return false
	}

	if pf.UseRegex {
		for _, re := range pf.compiled {
			if re.MatchString(content) {
				return true
			}
		}
		return false
	}

	low := strings.ToLower(content)
	for _, p := range pf.Patterns {
		p = strings.ToLower(strings.TrimSpace(p))
		if strings.Contains(low, p) {
			return true
		}
	}
	return false
}
