package pricing

import "fmt"

// Condition enum
type Condition string

const (
	ConditionNew     Condition = "new"
	ConditionLikeNew Condition = "like_new"
	ConditionGood    Condition = "good"
	ConditionFair    Condition = "fair"
	ConditionPoor    Condition = "poor"
)

// Fixed ratios applied on top of the condition-adjusted price.
const (
	quickSaleRatio   = 0.8
	competitiveRatio = 0.85
	recommendedRatio = 1.15
	maxProfitRatio   = 1.2
)

// ParseCondition validates a condition string from a request.
func ParseCondition(s string) (Condition, error) {
	switch Condition(s) {
	case ConditionNew, ConditionLikeNew, ConditionGood, ConditionFair, ConditionPoor:
		return Condition(s), nil
	}
	return "", fmt.Errorf("invalid condition: %q (allowed: new, like_new, good, fair, poor)", s)
}

// Multiplier returns the discount factor for the item's condition.
func (c Condition) Multiplier() float64 {
	switch c {
	case ConditionNew:
		return 1.0
	case ConditionLikeNew:
		return 0.9
	case ConditionGood:
		return 0.8
	case ConditionFair:
		return 0.65
	case ConditionPoor:
		return 0.5
	}
	return 0
}

// Intelligence value object: the derived price points for a listing.
type Intelligence struct {
	BasePrice     float64 `json:"base_price"`
	AdjustedPrice float64 `json:"adjusted_price"`
	QuickSale     float64 `json:"quick_sale"`
	Competitive   float64 `json:"competitive"`
	Recommended   float64 `json:"recommended"`
	MaxProfit     float64 `json:"max_profit"`
	Currency      string  `json:"currency"`
}

// Compute derives the four price points from a base price and condition.
// Each derived field is exactly basePrice * conditionMultiplier * ratio.
func Compute(basePrice float64, cond Condition, currency string) (Intelligence, error) {
	if basePrice <= 0 {
		return Intelligence{}, fmt.Errorf("base price must be positive, got %v", basePrice)
	}
	m := cond.Multiplier()
	if m == 0 {
		return Intelligence{}, fmt.Errorf("invalid condition: %q", cond)
	}
	if currency == "" {
		currency = "USD"
	}
	adjusted := basePrice * m
	return Intelligence{
		BasePrice:     basePrice,
		AdjustedPrice: adjusted,
		QuickSale:     adjusted * quickSaleRatio,
		Competitive:   adjusted * competitiveRatio,
		Recommended:   adjusted * recommendedRatio,
		MaxProfit:     adjusted * maxProfitRatio,
		Currency:      currency,
	}, nil
}
