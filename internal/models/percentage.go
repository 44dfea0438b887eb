package models

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	randomPercentageMin  = 20
	randomPercentageSpan = 30
)

// IntN is the random source percentages and samplers draw from.
// *math/rand/v2.Rand satisfies it.
type IntN interface {
	IntN(n int) int
}

// Percentage is a highlight target: a fixed value in [0,100] or "random"
type Percentage struct {
	value  int
	random bool
}

// FixedPercentage returns a fixed target, clamped to [0,100]
func FixedPercentage(v int) Percentage {
	return Percentage{value: min(max(v, 0), 100)}
}

// RandomPercentage returns a target resolved uniformly from [20,50) at use
func RandomPercentage() Percentage {
	return Percentage{random: true}
}

// ParsePercentage accepts "random", an integer, or an integer with a trailing '%'
func ParsePercentage(s string) (Percentage, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "random" {
		return RandomPercentage(), nil
	}
	v, err := strconv.Atoi(strings.TrimSuffix(s, "%"))
	if err != nil {
		return Percentage{}, fmt.Errorf("percentage must be an integer between 0 and 100 or \"random\": %q", s)
	}
	if v < 0 || v > 100 {
		return Percentage{}, fmt.Errorf("percentage must be between 0 and 100: %d", v)
	}
	return FixedPercentage(v), nil
}

// IsRandom reports whether the value is drawn at resolve time
func (p Percentage) IsRandom() bool { return p.random }

// Resolve returns the concrete percentage, drawing from rng when random
func (p Percentage) Resolve(rng IntN) int {
	if p.random {
		return randomPercentageMin + rng.IntN(randomPercentageSpan)
	}
	return p.value
}

func (p Percentage) String() string {
	if p.random {
		return "random"
	}
	return strconv.Itoa(p.value)
}
