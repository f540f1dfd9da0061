package misblock

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

func NewMIS(units int64) Asset {
	return Asset{Amount: units, Symbol: TokenSymbol}
}

func (a Asset) String() string {
	sign := ""
	amount := a.Amount
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	return fmt.Sprintf("%s%d.%04d %s", sign, amount/TokenPrecisionScale, amount%TokenPrecisionScale, a.Symbol)
}

func (a Asset) IsMIS() bool {
	return a.Symbol == TokenSymbol
}

// ParseAsset reads "12.3456 MIS". The fraction must carry exactly four digits.
func ParseAsset(s string) (Asset, error) {
	parts := strings.Fields(strings.TrimSpace(s))
	if len(parts) != 2 {
		return Asset{}, fmt.Errorf("invalid asset %q", s)
	}
	number, symbol := parts[0], parts[1]
	if symbol == "" || strings.ToUpper(symbol) != symbol {
		return Asset{}, fmt.Errorf("invalid asset symbol %q", symbol)
	}

	negative := strings.HasPrefix(number, "-")
	number = strings.TrimPrefix(number, "-")

	whole, frac, ok := strings.Cut(number, ".")
	if !ok || len(frac) != TokenPrecision || whole == "" {
		return Asset{}, fmt.Errorf("invalid asset precision %q", s)
	}
	w, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return Asset{}, fmt.Errorf("invalid asset amount %q", s)
	}
	f, err := strconv.ParseInt(frac, 10, 64)
	if err != nil || f < 0 {
		return Asset{}, fmt.Errorf("invalid asset amount %q", s)
	}
	if w > (1<<63-1-f)/TokenPrecisionScale {
		return Asset{}, fmt.Errorf("asset amount out of range %q", s)
	}
	amount := w*TokenPrecisionScale + f
	if negative {
		amount = -amount
	}
	return Asset{Amount: amount, Symbol: symbol}, nil
}

func (a Asset) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

func (a *Asset) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseAsset(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// IsValidName reports whether s is a well-formed account name:
// 1 to 12 characters of a-z, 1-5 and '.', not ending with '.'.
func IsValidName(s string) bool {
	if len(s) == 0 || len(s) > 12 {
		return false
	}
	if s[len(s)-1] == '.' {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z':
		case c >= '1' && c <= '5':
		case c == '.':
		default:
			return false
		}
	}
	return true
}
