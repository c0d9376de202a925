package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeDerivedRatios(t *testing.T) {
	// every derived field must be exactly price * multiplier * ratio
	cases := []struct {
		name  string
		price float64
		cond  Condition
	}{
		{"new item", 100, ConditionNew},
		{"like new", 250, ConditionLikeNew},
		{"good", 80, ConditionGood},
		{"fair", 19.99, ConditionFair},
		{"poor", 1000, ConditionPoor},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Compute(tc.price, tc.cond, "USD")
			require.NoError(t, err)

			adjusted := tc.price * tc.cond.Multiplier()
			assert.Equal(t, tc.price, got.BasePrice)
			assert.Equal(t, adjusted, got.AdjustedPrice)
			assert.Equal(t, adjusted*0.8, got.QuickSale)
			assert.Equal(t, adjusted*0.85, got.Competitive)
			assert.Equal(t, adjusted*1.15, got.Recommended)
			assert.Equal(t, adjusted*1.2, got.MaxProfit)
			assert.Equal(t, "USD", got.Currency)
		})
	}
}

func TestComputeDefaultsCurrency(t *testing.T) {
	got, err := Compute(50, ConditionGood, "")
	require.NoError(t, err)
	assert.Equal(t, "USD", got.Currency)
}

func TestComputeRejectsBadInput(t *testing.T) {
	_, err := Compute(0, ConditionNew, "USD")
	assert.Error(t, err)

	_, err = Compute(-5, ConditionNew, "USD")
	assert.Error(t, err)

	_, err = Compute(100, Condition("mint"), "USD")
	assert.Error(t, err)
}

func TestParseCondition(t *testing.T) {
	for _, s := range []string{"new", "like_new", "good", "fair", "poor"} {
		c, err := ParseCondition(s)
		require.NoError(t, err)
		assert.Equal(t, Condition(s), c)
		assert.Greater(t, c.Multiplier(), 0.0)
	}

	_, err := ParseCondition("mint")
	assert.Error(t, err)
	_, err = ParseCondition("")
	assert.Error(t, err)
}

func TestMultiplierOrdering(t *testing.T) {
	// better condition never prices below worse condition
	order := []Condition{ConditionNew, ConditionLikeNew, ConditionGood, ConditionFair, ConditionPoor}
	for i := 1; i < len(order); i++ {
		assert.Greater(t, order[i-1].Multiplier(), order[i].Multiplier(),
			"%s should outprice %s", order[i-1], order[i])
	}
}
