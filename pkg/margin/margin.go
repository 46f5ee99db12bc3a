// Package margin computes position-level risk figures. It shares the
// fixed-point helpers with the matching engine but is otherwise independent
// of book state.
package margin

import (
	"errors"
	"math/big"

	"github.com/oddlot/optionbook/pkg/numutil"
)

// ErrNoDebt means the position borrows nothing, so no spot price can
// liquidate it.
var ErrNoDebt = errors.New("position has no debt")

// LiquidationPrice returns the spot price (in quote base units per unit of
// collateral) at which a position's collateral value falls to the minimum
// collateralization ratio over its debt. Rounded up: crossing the returned
// price is guaranteed to be liquidatable, one tick below is not promised.
//
//	price = ceil(debt * ratioBps / (collateral * 10000))
func LiquidationPrice(collateral, debt *big.Int, minCollateralRatioBps int64) (*big.Int, error) {
	if debt.Sign() == 0 {
		return nil, ErrNoDebt
	}
	if collateral.Sign() <= 0 {
		return nil, errors.New("collateral must be positive")
	}
	if minCollateralRatioBps <= 0 {
		return nil, errors.New("collateral ratio must be positive")
	}
	denom := new(big.Int).Mul(collateral, big.NewInt(10_000))
	return numutil.MulDivCeil(debt, big.NewInt(minCollateralRatioBps), denom), nil
}

// IsUndercollateralized reports whether collateral valued at spot covers debt
// at the required ratio: collateral*spot*10000 >= debt*ratioBps*spotScale is
// checked exactly via cross-multiplication, never through division.
func IsUndercollateralized(collateral, debt, spot *big.Int, minCollateralRatioBps int64, spotScale *big.Int) bool {
	if debt.Sign() == 0 {
		return false
	}
	// collateral*spot/spotScale < debt*ratioBps/10000
	left := new(big.Int).Mul(collateral, spot)
	left.Mul(left, big.NewInt(10_000))
	right := new(big.Int).Mul(debt, big.NewInt(minCollateralRatioBps))
	right.Mul(right, spotScale)
	return left.Cmp(right) < 0
}
