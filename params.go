package handodds

import (
	"fmt"
	"strconv"
	"strings"
)

// BadHandParams describes an opening hand drawn from a deck holding
// GoodCount desired and BadCount undesired marked cards.
type BadHandParams struct {
	Deck      int `json:"deck" mapstructure:"deck"`
	Hand      int `json:"hand" mapstructure:"hand"`
	GoodCount int `json:"good_count" mapstructure:"good_count"`
	BadCount  int `json:"bad_count" mapstructure:"bad_count"`
}

// MulliganParams describes an opening hand drawn from a deck holding
// MarkedCount cards that end the mulligan when drawn.
type MulliganParams struct {
	Deck        int `json:"deck" mapstructure:"deck"`
	Hand        int `json:"hand" mapstructure:"hand"`
	MarkedCount int `json:"marked_count" mapstructure:"marked_count"`
}

// CombinationParams are the arguments of C(n, k)
type CombinationParams struct {
	N int `json:"n"`
	K int `json:"k"`
}

// CombinationKey identifies a cached coefficient. It holds the arguments as
// given, never the symmetric reduction.
type CombinationKey struct {
	N int
	K int
}

// String renders the key as "n,k", the Redis hash field format.
func (k CombinationKey) String() string {
	return strconv.Itoa(k.N) + "," + strconv.Itoa(k.K)
}

// ParseCombinationKey is the inverse of CombinationKey.String
func ParseCombinationKey(s string) (CombinationKey, error) {
	left, right, ok := strings.Cut(s, ",")
	if !ok {
		return CombinationKey{}, fmt.Errorf("invalid combination key %q: missing separator", s)
	}
	n, err := strconv.Atoi(left)
	if err != nil {
		return CombinationKey{}, fmt.Errorf("invalid combination key %q: %w", s, err)
	}
	k, err := strconv.Atoi(right)
	if err != nil {
		return CombinationKey{}, fmt.Errorf("invalid combination key %q: %w", s, err)
	}
	return CombinationKey{N: n, K: k}, nil
}

// DefaultBadHandParams returns the 60/7 deck with 4 good and 1 bad card
func DefaultBadHandParams() BadHandParams {
	return BadHandParams{
		Deck:      DefaultDeckSize,
		Hand:      DefaultHandSize,
		GoodCount: DefaultGoodCount,
		BadCount:  DefaultBadCount,
	}
}

// DefaultMulliganParams returns the 60/7 deck with 4 marked cards
func DefaultMulliganParams() MulliganParams {
	return MulliganParams{
		Deck:        DefaultDeckSize,
		Hand:        DefaultHandSize,
		MarkedCount: DefaultMarkedCount,
	}
}
