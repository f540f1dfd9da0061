package domain

import (
	"math"

	"github.com/holiman/uint256"
)

// MaxPoint is the largest balance the storage columns can hold.
const MaxPoint uint64 = math.MaxInt64

// PercentOf returns floor(amount * percent / 100).
func PercentOf(amount uint64, percent uint64) uint64 {
	x := new(uint256.Int).SetUint64(amount)
	x.Mul(x, uint256.NewInt(percent))
	x.Div(x, uint256.NewInt(100))
	if !x.IsUint64() {
		return math.MaxUint64
	}
	return x.Uint64()
}

// PercentOfPrice is PercentOf for token amounts.
func PercentOfPrice(price int64, percent uint64) int64 {
	if price <= 0 {
		return 0
	}
	return int64(PercentOf(uint64(price), percent))
}

// ExchangeAmount converts points to MIS units: floor(points * 10^4 / misByPoint).
func ExchangeAmount(points, misByPoint, scale uint64) (int64, error) {
	if misByPoint == 0 {
		return 0, InvalidArgument("exchange ratio is not set")
	}
	x := new(uint256.Int).SetUint64(points)
	x.Mul(x, uint256.NewInt(scale))
	x.Div(x, uint256.NewInt(misByPoint))
	if !x.IsUint64() || x.Uint64() > math.MaxInt64 {
		return 0, InvalidArgument("token amount overflow")
	}
	return int64(x.Uint64()), nil
}
