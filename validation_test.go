package handodds

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateBadHandParams(t *testing.T) {
	tests := []struct {
		name      string
		params    BadHandParams
		wantKind  ErrorKind
		wantField string
	}{
		{name: "valid defaults", params: DefaultBadHandParams()},
		{name: "all zero", params: BadHandParams{}},
		{name: "marked equals deck", params: BadHandParams{Deck: 10, Hand: 10, GoodCount: 5, BadCount: 5}},
		{name: "negative deck", params: BadHandParams{Deck: -1, Hand: 7}, wantKind: KindInvalidInput, wantField: FieldDeck},
		{name: "negative hand", params: BadHandParams{Deck: 60, Hand: -7}, wantKind: KindInvalidInput, wantField: FieldHand},
		{name: "negative good", params: BadHandParams{Deck: 60, Hand: 7, GoodCount: -1}, wantKind: KindInvalidInput, wantField: FieldGoodCount},
		{name: "negative bad", params: BadHandParams{Deck: 60, Hand: 7, BadCount: -1}, wantKind: KindInvalidInput, wantField: FieldBadCount},
		{
			name:      "first failing field wins",
			params:    BadHandParams{Deck: -1, Hand: 99, GoodCount: -3, BadCount: 0},
			wantKind:  KindInvalidInput,
			wantField: FieldDeck,
		},
		{
			name:     "invalid input reported before constraint",
			params:   BadHandParams{Deck: 10, Hand: 11, GoodCount: 0, BadCount: -1},
			wantKind: KindInvalidInput, wantField: FieldBadCount,
		},
		{name: "hand exceeds deck", params: BadHandParams{Deck: 10, Hand: 11}, wantKind: KindConstraintViolation},
		{name: "marked exceed deck", params: BadHandParams{Deck: 10, Hand: 5, GoodCount: 6, BadCount: 5}, wantKind: KindConstraintViolation},
		{
			name:     "marked total beyond int range",
			params:   BadHandParams{Deck: 10, Hand: 5, GoodCount: math.MaxInt, BadCount: 1},
			wantKind: KindConstraintViolation,
		},
		{
			name:     "hand checked before marked total",
			params:   BadHandParams{Deck: 10, Hand: 11, GoodCount: 6, BadCount: 5},
			wantKind: KindConstraintViolation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateBadHandParams(tt.params)
			assert.Equal(t, tt.params, got)

			if tt.wantKind == "" {
				require.NoError(t, err)
				return
			}

			var calcErr *CalcError
			require.True(t, errors.As(err, &calcErr), "expected *CalcError, got %v", err)
			assert.Equal(t, tt.wantKind, calcErr.Kind)
			assert.Equal(t, tt.wantField, calcErr.Field)
			assert.NotEmpty(t, calcErr.Message)
		})
	}
}

func TestValidateBadHandParams_ConstraintMessages(t *testing.T) {
	_, err := ValidateBadHandParams(BadHandParams{Deck: 10, Hand: 11})
	assert.EqualError(t, err, "hand must not exceed deck")

	_, err = ValidateBadHandParams(BadHandParams{Deck: 10, Hand: 5, GoodCount: 6, BadCount: 5})
	assert.EqualError(t, err, "goodCount + badCount must not exceed deck")
}

func TestValidateMulliganParams(t *testing.T) {
	tests := []struct {
		name      string
		params    MulliganParams
		wantKind  ErrorKind
		wantField string
	}{
		{name: "valid defaults", params: DefaultMulliganParams()},
		{name: "every card marked", params: MulliganParams{Deck: 60, Hand: 7, MarkedCount: 60}},
		{name: "negative marked", params: MulliganParams{Deck: 60, Hand: 7, MarkedCount: -4}, wantKind: KindInvalidInput, wantField: FieldMarkedCount},
		{name: "hand exceeds deck", params: MulliganParams{Deck: 6, Hand: 7}, wantKind: KindConstraintViolation},
		{name: "marked exceeds deck", params: MulliganParams{Deck: 10, Hand: 7, MarkedCount: 11}, wantKind: KindConstraintViolation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ValidateMulliganParams(tt.params)
			if tt.wantKind == "" {
				require.NoError(t, err)
				return
			}
			assert.Equal(t, tt.wantKind, KindOf(err))

			var calcErr *CalcError
			require.ErrorAs(t, err, &calcErr)
			assert.Equal(t, tt.wantField, calcErr.Field)
		})
	}
}

func TestValidateCombinationParams(t *testing.T) {
	_, err := ValidateCombinationParams(CombinationParams{N: 3, K: 5})
	assert.NoError(t, err, "k > n is a defined zero result, not an error")

	_, err = ValidateCombinationParams(CombinationParams{N: -1, K: 2})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = ValidateCombinationParams(CombinationParams{N: 4, K: -2})
	var calcErr *CalcError
	require.ErrorAs(t, err, &calcErr)
	assert.Equal(t, FieldK, calcErr.Field)
}

func TestParseCount(t *testing.T) {
	tests := []struct {
		raw     string
		want    int
		wantErr bool
	}{
		{raw: "60", want: 60},
		{raw: " 7 ", want: 7},
		{raw: "0", want: 0},
		{raw: "3.5", wantErr: true},
		{raw: "-1", wantErr: true},
		{raw: "", wantErr: true},
		{raw: "seven", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseCount(FieldHand, tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidInput)
				assert.Contains(t, err.Error(), FieldHand)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
