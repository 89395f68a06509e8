package domain

import (
	"fmt"
	"strings"
)

// LoaderVariant identifies a mod loader ecosystem
type LoaderVariant string

const (
	VariantVanilla  LoaderVariant = "vanilla"
	VariantFabric   LoaderVariant = "fabric"
	VariantNeoForge LoaderVariant = "neoforge"
	VariantQuilt    LoaderVariant = "quilt"
	VariantForge    LoaderVariant = "forge" // Legacy: recognized but never installed
)

// Variants lists every recognized variant in display order
var Variants = []LoaderVariant{
	VariantVanilla,
	VariantFabric,
	VariantNeoForge,
	VariantQuilt,
	VariantForge,
}

func (v LoaderVariant) String() string {
	return string(v)
}

// IsKnown reports whether v is one of the recognized variants
func (v LoaderVariant) IsKnown() bool {
	for _, known := range Variants {
		if v == known {
			return true
		}
	}
	return false
}

// ParseLoaderVariant converts a user-supplied string to a LoaderVariant.
// Matching is case-insensitive; unknown names return ErrUnsupportedVariant.
func ParseLoaderVariant(s string) (LoaderVariant, error) {
	v := LoaderVariant(strings.ToLower(strings.TrimSpace(s)))
	if !v.IsKnown() {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedVariant, s)
	}
	return v, nil
}
