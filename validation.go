package handodds

import (
	"strconv"
	"strings"
)

// Field names reported by InvalidInput errors
const (
	FieldDeck        = "deck"
	FieldHand        = "hand"
	FieldGoodCount   = "goodCount"
	FieldBadCount    = "badCount"
	FieldMarkedCount = "markedCount"
	FieldN           = "n"
	FieldK           = "k"
)

type namedCount struct {
	field string
	value int
}

// validateCounts reports the first negative value, in order.
func validateCounts(counts ...namedCount) error {
	for _, c := range counts {
		if c.value < 0 {
			return NewInvalidInputError(c.field)
		}
	}
	return nil
}

// validateHand checks hand <= deck
func validateHand(deck, hand int) error {
	if hand > deck {
		return NewConstraintViolationError("hand must not exceed deck")
	}
	return nil
}

// ValidateBadHandParams returns p unchanged, or the first failing rule:
// non-negative fields, hand <= deck, goodCount+badCount <= deck.
func ValidateBadHandParams(p BadHandParams) (BadHandParams, error) {
	if err := validateCounts(
		namedCount{FieldDeck, p.Deck},
		namedCount{FieldHand, p.Hand},
		namedCount{FieldGoodCount, p.GoodCount},
		namedCount{FieldBadCount, p.BadCount},
	); err != nil {
		return p, err
	}
	if err := validateHand(p.Deck, p.Hand); err != nil {
		return p, err
	}
	// both counts are non-negative here; subtracting cannot overflow
	if p.GoodCount > p.Deck || p.BadCount > p.Deck-p.GoodCount {
		return p, NewConstraintViolationError("goodCount + badCount must not exceed deck")
	}
	return p, nil
}

// ValidateMulliganParams returns p unchanged, or the first failing rule:
// non-negative fields, hand <= deck, markedCount <= deck.
func ValidateMulliganParams(p MulliganParams) (MulliganParams, error) {
	if err := validateCounts(
		namedCount{FieldDeck, p.Deck},
		namedCount{FieldHand, p.Hand},
		namedCount{FieldMarkedCount, p.MarkedCount},
	); err != nil {
		return p, err
	}
	if err := validateHand(p.Deck, p.Hand); err != nil {
		return p, err
	}
	if p.MarkedCount > p.Deck {
		return p, NewConstraintViolationError("markedCount must not exceed deck")
	}
	return p, nil
}

// ValidateCombinationParams only requires n and k to be non-negative;
// k > n is a defined zero result.
func ValidateCombinationParams(p CombinationParams) (CombinationParams, error) {
	return p, validateCounts(namedCount{FieldN, p.N}, namedCount{FieldK, p.K})
}

// ParseCount converts caller-supplied text into a count. Anything that is not
// a non-negative integer, including "3.5", "-1" and "", is InvalidInput for
// field.
func ParseCount(field, raw string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, NewInvalidInputError(field).WithCause(err)
	}
	if v < 0 {
		return 0, NewInvalidInputError(field)
	}
	return v, nil
}
