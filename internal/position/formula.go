package position

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// DefaultMaintenanceMarginRate 0.5%
const DefaultMaintenanceMarginRate = 0.005

var (
	ErrInvalidParameter = errors.New("invalid parameter")
	ErrInvalidLeverage  = fmt.Errorf("%w: leverage must be greater than zero", ErrInvalidParameter)
	ErrInvalidPrice     = fmt.Errorf("%w: average price must be greater than zero", ErrInvalidParameter)
)

// LiquidationPrice (強平價格)
//
//	LONG:  avgPrice * (1 - 1/leverage + maintenanceMarginRate)
//	SHORT: avgPrice * (1 + 1/leverage - maintenanceMarginRate)
func LiquidationPrice(side Side, leverage, avgPrice, maintenanceMarginRate float64) (float64, error) {
	if leverage <= 0 {
		return 0, ErrInvalidLeverage
	}
	if avgPrice <= 0 {
		return 0, ErrInvalidPrice
	}

	one := decimal.NewFromInt(1)
	buffer := one.Div(decimal.NewFromFloat(leverage)) // 每單位價格可承受的跌幅
	mmr := decimal.NewFromFloat(maintenanceMarginRate)

	var factor decimal.Decimal
	if side == LONG {
		factor = one.Sub(buffer).Add(mmr)
	} else {
		factor = one.Add(buffer).Sub(mmr)
	}

	return decimal.NewFromFloat(avgPrice).Mul(factor).InexactFloat64(), nil
}

// MustLiquidationPrice panics on parameters validation should have rejected.
func MustLiquidationPrice(side Side, leverage, avgPrice, maintenanceMarginRate float64) float64 {
	price, err := LiquidationPrice(side, leverage, avgPrice, maintenanceMarginRate)
	if err != nil {
		panic(err)
	}
	return price
}

// UnrealizedPnL (未實現盈虧)
func UnrealizedPnL(side Side, avgPrice, currentPrice, quantity float64) float64 {
	if side == LONG {
		return (currentPrice - avgPrice) * quantity
	}
	return (avgPrice - currentPrice) * quantity
}

// ROE percent, 0 without margin.
func ROE(pnl, margin float64) float64 {
	if margin <= 0 {
		return 0
	}
	return pnl / margin * 100
}

// TotalValue notional value
func TotalValue(price, quantity float64) float64 {
	return price * quantity
}

// MarginRatio margin / totalValue, 0 when totalValue <= 0.
func MarginRatio(margin, totalValue float64) float64 {
	if totalValue <= 0 {
		return 0
	}
	return margin / totalValue
}

// DistanceToLiquidation percent move left before liquidation, oriented by side.
func DistanceToLiquidation(currentPrice, liquidationPrice float64, side Side) float64 {
	if currentPrice <= 0 || liquidationPrice <= 0 {
		return 0
	}
	if side == LONG {
		return (currentPrice - liquidationPrice) / currentPrice * 100
	}
	return (liquidationPrice - currentPrice) / currentPrice * 100
}
