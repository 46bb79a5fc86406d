package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- ParseKind ---

func TestParseKind(t *testing.T) {
	k, err := ParseKind("single")
	require.NoError(t, err)
	assert.Equal(t, KindSingle, k)

	k, err = ParseKind("patti")
	require.NoError(t, err)
	assert.Equal(t, KindPatti, k)

	_, err = ParseKind("jodi")
	assert.ErrorIs(t, err, ErrInvalidValue)

	_, err = ParseKind("")
	assert.ErrorIs(t, err, ErrInvalidValue)
}

// --- ParseValue ---

func TestParseValue_Single(t *testing.T) {
	v, err := ParseValue(KindSingle, "0")
	require.NoError(t, err)
	assert.Equal(t, 0, v)

	v, err = ParseValue(KindSingle, "9")
	require.NoError(t, err)
	assert.Equal(t, 9, v)

	_, err = ParseValue(KindSingle, "10")
	assert.ErrorIs(t, err, ErrInvalidValue)

	// "05" é dois caracteres, não é um dígito único válido
	_, err = ParseValue(KindSingle, "05")
	assert.ErrorIs(t, err, ErrInvalidValue)
}

func TestParseValue_Patti(t *testing.T) {
	v, err := ParseValue(KindPatti, "578")
	require.NoError(t, err)
	assert.Equal(t, 578, v)

	// zeros à esquerda são aceitos
	v, err = ParseValue(KindPatti, "005")
	require.NoError(t, err)
	assert.Equal(t, 5, v)

	v, err = ParseValue(KindPatti, "000")
	require.NoError(t, err)
	assert.Equal(t, 0, v)

	_, err = ParseValue(KindPatti, "1000")
	assert.ErrorIs(t, err, ErrInvalidValue)

	_, err = ParseValue(KindPatti, "-1")
	assert.ErrorIs(t, err, ErrInvalidValue)

	_, err = ParseValue(KindPatti, "57a")
	assert.ErrorIs(t, err, ErrInvalidValue)

	_, err = ParseValue(KindPatti, "")
	assert.ErrorIs(t, err, ErrInvalidValue)
}

// --- ValidateAmount ---

func TestValidateAmount_Bounds(t *testing.T) {
	r := DefaultRules()

	assert.NoError(t, r.ValidateAmount(5))
	assert.NoError(t, r.ValidateAmount(5000))
	assert.ErrorIs(t, r.ValidateAmount(4), ErrInvalidAmount)
	assert.ErrorIs(t, r.ValidateAmount(5001), ErrInvalidAmount)
	assert.ErrorIs(t, r.ValidateAmount(0), ErrInvalidAmount)
	assert.ErrorIs(t, r.ValidateAmount(-10), ErrInvalidAmount)
}

// --- DeriveSingle ---

func TestDeriveSingle(t *testing.T) {
	cases := []struct {
		patti int
		want  int
	}{
		{578, 0}, // 5+7+8=20 -> 0
		{5, 5},   // "005" -> 0+0+5
		{0, 0},
		{999, 7}, // 27 -> 7
		{123, 6},
		{100, 1},
		{910, 0}, // 10 -> 0
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, DeriveSingle(tc.patti), "patti %d", tc.patti)
	}
}

// --- Payout ---

func TestPayout_Single(t *testing.T) {
	r := DefaultRules()

	// resultado 578 -> single 0
	assert.Equal(t, int64(900), r.Payout(KindSingle, 0, 100, 578, 0))
	assert.Equal(t, int64(0), r.Payout(KindSingle, 3, 100, 578, 0))
}

func TestPayout_Patti(t *testing.T) {
	r := DefaultRules()

	assert.Equal(t, int64(4500), r.Payout(KindPatti, 578, 50, 578, 0))
	assert.Equal(t, int64(0), r.Payout(KindPatti, 577, 50, 578, 0))

	// patti não paga no acerto do single derivado
	assert.Equal(t, int64(0), r.Payout(KindPatti, 0, 50, 578, 0))
}

// --- AggregateWinners ---

func TestAggregateWinners(t *testing.T) {
	r := DefaultRules()
	wagers := []Wager{
		{UserID: 1, Kind: KindSingle, Value: 0, Amount: 100}, // ganha 900
		{UserID: 2, Kind: KindPatti, Value: 578, Amount: 50}, // ganha 4500
		{UserID: 3, Kind: KindSingle, Value: 3, Amount: 100}, // perde
	}

	winners := r.AggregateWinners(wagers, 578)

	require.Len(t, winners, 2)
	assert.Equal(t, int64(900), winners[1])
	assert.Equal(t, int64(4500), winners[2])
	_, ok := winners[3]
	assert.False(t, ok)
}

func TestAggregateWinners_MultipleWinsSameUser(t *testing.T) {
	r := DefaultRules()
	wagers := []Wager{
		{UserID: 7, Kind: KindSingle, Value: 0, Amount: 100}, // 900
		{UserID: 7, Kind: KindPatti, Value: 578, Amount: 10}, // 900
		{UserID: 7, Kind: KindSingle, Value: 5, Amount: 100}, // 0
	}

	winners := r.AggregateWinners(wagers, 578)

	require.Len(t, winners, 1)
	assert.Equal(t, int64(1800), winners[7])
}

func TestAggregateWinners_NoBets(t *testing.T) {
	winners := DefaultRules().AggregateWinners(nil, 578)
	assert.Empty(t, winners)
}

// --- FormatPatti ---

func TestFormatPatti(t *testing.T) {
	assert.Equal(t, "005", FormatPatti(5))
	assert.Equal(t, "000", FormatPatti(0))
	assert.Equal(t, "578", FormatPatti(578))
	assert.Equal(t, "045", FormatPatti(45))
}

// --- ValidCombination ---

func TestValidCombination(t *testing.T) {
	assert.True(t, ValidCombination(0))
	assert.True(t, ValidCombination(999))
	assert.False(t, ValidCombination(-1))
	assert.False(t, ValidCombination(1000))
}
