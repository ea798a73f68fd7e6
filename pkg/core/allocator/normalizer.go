package allocator

import (
	"fmt"
	"strings"

	"github.com/pibshift/pibshift/pkg/core/model"
)

// AliasRule maps any raw name containing Fragment (case-insensitive) to Canonical
type AliasRule struct {
	Fragment  string `yaml:"fragment" json:"fragment" validate:"required"`
	Canonical string `yaml:"canonical" json:"canonical" validate:"required"`
}

// Normalizer turns free-text volunteer names into canonical identities.
//
// Alias matching is substring based: a short fragment such as "lay" also
// matches "Playton Silva". Keep fragments specific enough for the roster.
type Normalizer struct {
	aliases []AliasRule
}

// NewNormalizer creates a Normalizer that checks aliases in the given order
func NewNormalizer(aliases []AliasRule) *Normalizer {
	lowered := make([]AliasRule, 0, len(aliases))
	for _, alias := range aliases {
		fragment := strings.ToLower(strings.TrimSpace(alias.Fragment))
		if fragment == "" {
			continue
		}
		lowered = append(lowered, AliasRule{Fragment: fragment, Canonical: alias.Canonical})
	}
	return &Normalizer{aliases: lowered}
}

// Normalize returns the canonical identity for a raw name.
// The first alias whose fragment occurs in the lower-cased name wins; otherwise
// the first and last whitespace-separated tokens are kept.
func (n *Normalizer) Normalize(raw string) model.Identity {
	trimmed := strings.TrimSpace(raw)
	lower := strings.ToLower(trimmed)

	for _, alias := range n.aliases {
		if strings.Contains(lower, alias.Fragment) {
			return model.Identity(alias.Canonical)
		}
	}

	parts := strings.Fields(trimmed)
	switch len(parts) {
	case 0:
		return ""
	case 1:
		return model.Identity(parts[0])
	default:
		return model.Identity(parts[0] + " " + parts[len(parts)-1])
	}
}

// CheckFixedPoints verifies that every canonical name normalizes to itself
func (n *Normalizer) CheckFixedPoints() error {
	for _, alias := range n.aliases {
		got := n.Normalize(alias.Canonical)
		if string(got) != alias.Canonical {
			return fmt.Errorf("alias %q: canonical name %q normalizes to %q", alias.Fragment, alias.Canonical, got)
		}
	}
	return nil
}
