package client

import (
	"math/big"

	"github.com/shopspring/decimal"

	"github.com/hundredx/go100x/hundredx/types"
)

// WeiDecimals is the fixed-point scale of every price and quantity on the wire.
const WeiDecimals = 18

var weiFactor = decimal.New(1, WeiDecimals)

// ToWei scales a decimal amount by 1e18. Digits past the 18th decimal place
// are truncated, never rounded. Negative amounts are rejected.
func ToWei(field string, amount decimal.Decimal) (*big.Int, error) {
	if amount.IsNegative() {
		return nil, types.NewValidationError(field, "must not be negative, got %s", amount)
	}
	return amount.Mul(weiFactor).Truncate(0).BigInt(), nil
}

// FromWei converts a 1e18-scaled integer back into a decimal amount.
func FromWei(wei *big.Int) decimal.Decimal {
	if wei == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(wei, -WeiDecimals)
}

// WeiToDecimal rescales an API amount (already decoded as a decimal) to units.
func WeiToDecimal(wei decimal.Decimal) decimal.Decimal {
	return wei.Shift(-WeiDecimals)
}
