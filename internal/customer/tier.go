package customer

import (
	"fmt"
	"strings"
)

// Tier classifies a customer for freight discounts.
type Tier int

const (
	// Bronze pays full freight. It is the zero value.
	Bronze Tier = iota
	// Silver pays half freight.
	Silver
	// Gold ships for free.
	Gold
)

func (t Tier) String() string {
	switch t {
	case Bronze:
		return "BRONZE"
	case Silver:
		return "SILVER"
	case Gold:
		return "GOLD"
	default:
		return fmt.Sprintf("Tier(%d)", int(t))
	}
}

// Valid reports whether t is one of the known tiers.
func (t Tier) Valid() bool {
	switch t {
	case Bronze, Silver, Gold:
		return true
	default:
		return false
	}
}

// ParseTier maps a stored or transmitted tier name onto a Tier.
func ParseTier(value string) (Tier, error) {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case "BRONZE", "":
		return Bronze, nil
	case "SILVER":
		return Silver, nil
	case "GOLD":
		return Gold, nil
	default:
		return Bronze, fmt.Errorf("customer: unknown tier %q", value)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (t Tier) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("customer: invalid tier %d", int(t))
	}
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Tier) UnmarshalText(text []byte) error {
	parsed, err := ParseTier(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
