package model

import (
	"fmt"
	"regexp"
	"strings"
)

// Filter type tags.
const (
	FilterManual = "manual"
	FilterText   = "text"
)

// TextFilter match modes.
const (
	MatchWildcard = "wildcard"
	MatchRegexp   = "regexp"
)

// Filter is a rule attached to a category that connects transactions to it.
// The set of variants is closed: ManualFilter and *TextFilter. Code that
// dispatches on the concrete type should switch exhaustively on both.
type Filter interface {
	// FilterID is unique within the owning category; re-adding a filter
	// with an existing id replaces it.
	FilterID() int
	// Type returns the filter type tag (FilterManual or FilterText).
	Type() string
}

// ManualFilter pins one specific transaction by its identity hash.
type ManualFilter struct {
	ID          int
	Transaction uint64
}

func (f ManualFilter) FilterID() int { return f.ID }
func (f ManualFilter) Type() string  { return FilterManual }

// TextFilter matches transactions on content, case-insensitively, with
// either a wildcard pattern (* = any sequence, everything else literal) or a
// regular expression. The description pattern is matched against the
// transaction description; the contra-account pattern against the
// counter-account id and display name. An empty pattern matches any value,
// but a filter with both patterns empty matches nothing.
type TextFilter struct {
	ID                   int
	DisplayName          string
	MatchType            string
	DescriptionPattern   string
	ContraAccountPattern string

	description   *regexp.Regexp
	contraAccount *regexp.Regexp
}

// NewTextFilter builds a TextFilter, compiling its patterns. An unknown
// match type or an invalid pattern is a ValidationError; this is the only
// point where patterns are validated, assignment never fails on them.
func NewTextFilter(id int, displayName, matchType, descriptionPattern, contraAccountPattern string) (*TextFilter, error) {
	if matchType != MatchWildcard && matchType != MatchRegexp {
		return nil, &ValidationError{Reason: fmt.Sprintf("match type must be %q or %q, got %q", MatchWildcard, MatchRegexp, matchType)}
	}
	f := &TextFilter{
		ID:                   id,
		DisplayName:          displayName,
		MatchType:            matchType,
		DescriptionPattern:   descriptionPattern,
		ContraAccountPattern: contraAccountPattern,
	}
	var err error
	if descriptionPattern != "" {
		if f.description, err = compilePattern(matchType, descriptionPattern); err != nil {
			return nil, err
		}
	}
	if contraAccountPattern != "" {
		if f.contraAccount, err = compilePattern(matchType, contraAccountPattern); err != nil {
			return nil, err
		}
	}
	return f, nil
}

func (f *TextFilter) FilterID() int { return f.ID }
func (f *TextFilter) Type() string  { return FilterText }

// Matches reports whether the transaction satisfies every configured
// pattern. Both patterns must match when both are configured.
func (f *TextFilter) Matches(t Transaction) bool {
	if f.description == nil && f.contraAccount == nil {
		return false
	}
	if f.description != nil && !f.description.MatchString(t.Description) {
		return false
	}
	if f.contraAccount != nil &&
		!f.contraAccount.MatchString(t.ContraAccount) &&
		!f.contraAccount.MatchString(t.ContraAccountName) {
		return false
	}
	return true
}

func compilePattern(matchType, pattern string) (*regexp.Regexp, error) {
	expr := pattern
	if matchType == MatchWildcard {
		expr = wildcardToRegexp(pattern)
	}
	re, err := regexp.Compile("(?i)" + expr)
	if err != nil {
		return nil, &ValidationError{Reason: fmt.Sprintf("invalid pattern %q: %v", pattern, err)}
	}
	return re, nil
}

// wildcardToRegexp translates a wildcard pattern into a regular expression:
// every * becomes "any sequence", all other characters are literal.
func wildcardToRegexp(pattern string) string {
	parts := strings.Split(pattern, "*")
	for i, part := range parts {
		parts[i] = regexp.QuoteMeta(part)
	}
	return strings.Join(parts, ".*")
}
