package margin

import (
	"github.com/shopspring/decimal"
)

// InitialMargin (初始保證金) = position value / leverage
func InitialMargin(positionValue, leverage float64) float64 {
	if leverage <= 0 {
		return positionValue
	}
	return decimal.NewFromFloat(positionValue).
		Div(decimal.NewFromFloat(leverage)).
		InexactFloat64()
}

// MaintenanceMargin (維持保證金) by bracket
func MaintenanceMargin(positionValue float64, tiers Tiers) float64 {
	return decimal.NewFromFloat(positionValue).
		Mul(decimal.NewFromFloat(tiers.Rate(positionValue))).
		InexactFloat64()
}

// MaxPositionParams max position calculator input
type MaxPositionParams struct {
	WalletBalance float64 `json:"wallet_balance" validate:"gt=0,lte=1e12"`
	Leverage      float64 `json:"leverage" validate:"gte=1,lte=125"`
	EntryPrice    float64 `json:"entry_price" validate:"gt=0,lte=1e10"`
}

// MaxPositionResult largest position the wallet can open
type MaxPositionResult struct {
	MaxQuantity      float64 `json:"max_quantity"`
	MaxPositionValue float64 `json:"max_position_value"`
	RequiredMargin   float64 `json:"required_margin"`
	// maintenance margin the full-size position would carry
	MaintenanceMargin float64 `json:"maintenance_margin"`
	// bracket limit at that size, 0 when no bracket applies
	BracketMaxLeverage float64 `json:"bracket_max_leverage"`
}

// MaxPosition (最大可開倉位)
//
//	maxQuantity      = walletBalance * leverage / entryPrice
//	maxPositionValue = walletBalance * leverage
func MaxPosition(p MaxPositionParams, tiers Tiers) MaxPositionResult {
	value := decimal.NewFromFloat(p.WalletBalance).Mul(decimal.NewFromFloat(p.Leverage))
	quantity := value.Div(decimal.NewFromFloat(p.EntryPrice))

	return MaxPositionResult{
		MaxQuantity:        quantity.InexactFloat64(),
		MaxPositionValue:   value.InexactFloat64(),
		RequiredMargin:     p.WalletBalance,
		MaintenanceMargin:  MaintenanceMargin(value.InexactFloat64(), tiers),
		BracketMaxLeverage: tiers.MaxLeverage(value.InexactFloat64()),
	}
}
