// Package shared holds helpers common to the catalog packages.
package shared

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

// ListFilters represents standard list filters.
type ListFilters struct {
	Search string
}

// SearchPattern returns an ILIKE pattern for the search term, or nil when empty.
func (f ListFilters) SearchPattern() *string {
	term := strings.TrimSpace(f.Search)
	if term == "" {
		return nil
	}
	p := "%" + term + "%"
	return &p
}

var validate = validator.New()

// ValidEmail reports whether s is a syntactically valid email address.
func ValidEmail(s string) bool {
	return validate.Var(s, "required,email") == nil
}

// Optional trims v and maps blank strings to nil.
func Optional(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	if t == "" {
		return nil
	}
	return &t
}
