package preprocess

import (
	"fmt"
	"strings"
)

// Strategy selects which transforms run and in what order.
type Strategy int

const (
	// MultiVariant denoises, produces contrast, shadow and global
	// threshold variants and selects the high contrast one.
	MultiVariant Strategy = iota
	// Deskew runs skew correction before MultiVariant.
	Deskew
	// Fast upscales and applies a single global threshold.
	Fast
)

var strategyNames = map[Strategy]string{
	MultiVariant: "multi-variant",
	Deskew:       "deskew",
	Fast:         "fast",
}

func (s Strategy) String() string {
	if name, ok := strategyNames[s]; ok {
		return name
	}
	return fmt.Sprintf("strategy(%d)", int(s))
}

// ParseStrategy accepts the names printed by String. Empty means MultiVariant.
func ParseStrategy(name string) (Strategy, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return MultiVariant, nil
	}
	for s, n := range strategyNames {
		if n == name {
			return s, nil
		}
	}
	return MultiVariant, fmt.Errorf("unknown preprocessing strategy: %s (supported: multi-variant, deskew, fast)", name)
}
