package model

import (
	"math/big"
	"strings"
)

// TokenDecimals is the precision of the approved tokens in use (DAI, wETH).
const TokenDecimals = 18

// FormatUnits renders a base-unit amount as a decimal string with at most maxFrac
// fractional digits, truncating. nil renders as "-".
func FormatUnits(v *big.Int, decimals, maxFrac int) string {
	if v == nil {
		return "-"
	}
	neg := v.Sign() < 0
	abs := new(big.Int).Abs(v)
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	whole, frac := new(big.Int).QuoRem(abs, scale, new(big.Int))

	out := whole.String()
	if decimals > 0 && maxFrac > 0 {
		fs := frac.String()
		fs = strings.Repeat("0", decimals-len(fs)) + fs
		if len(fs) > maxFrac {
			fs = fs[:maxFrac]
		}
		fs = strings.TrimRight(fs, "0")
		if fs != "" {
			out += "." + fs
		}
	}
	if neg {
		out = "-" + out
	}
	return out
}
