package rewrite

import (
	"fmt"
	"sort"

	"github.com/dgallion1/rebrand/internal/classify"
)

// Action is what the policy does with an occurrence of a category.
type Action string

const (
	// Replace substitutes the token in place, preserving casing.
	Replace Action = "replace"
	// ReplaceAndAugment inserts the new token adjacent to the old one, so
	// both coexist (tag lists, keyword sets).
	ReplaceAndAugment Action = "replace_and_augment"
	// Keep leaves the occurrence untouched.
	Keep Action = "keep"
)

// PolicySpec is the configured action for one category.
type PolicySpec struct {
	Action Action `yaml:"action"`
	// Separator joins the new and old token on augment. Defaults to ", ".
	Separator string `yaml:"separator,omitempty"`
}

// Table maps each category to its policy. Exactly one entry must exist per
// category used in a run; an unmapped category is a configuration error.
type Table map[classify.Category]PolicySpec

// UnmappedCategoryError reports a category used by the rule set that has
// no policy entry.
type UnmappedCategoryError struct {
	Category classify.Category
}

func (e *UnmappedCategoryError) Error() string {
	return fmt.Sprintf("no policy configured for category %q", e.Category)
}

// Validate checks that every used category has a well-formed policy entry.
// The fallback category is always considered used.
func (t Table) Validate(used []classify.Category) error {
	seen := map[classify.Category]bool{classify.GenericReference: true}
	for _, c := range used {
		seen[c] = true
	}

	var cats []classify.Category
	for c := range seen {
		cats = append(cats, c)
	}
	sort.Slice(cats, func(i, j int) bool { return cats[i] < cats[j] })

	for _, c := range cats {
		spec, ok := t[c]
		if !ok {
			return &UnmappedCategoryError{Category: c}
		}
		switch spec.Action {
		case Replace, ReplaceAndAugment, Keep:
		default:
			return fmt.Errorf("category %q: unknown action %q", c, spec.Action)
		}
	}

	for c := range t {
		if !c.Known() {
			return fmt.Errorf("policy references unknown category %q", c)
		}
	}
	return nil
}

// separator returns the configured augment separator with its default.
func (p PolicySpec) separator() string {
	if p.Separator == "" {
		return ", "
	}
	return p.Separator
}
