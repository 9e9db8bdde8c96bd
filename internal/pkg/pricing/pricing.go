package pricing

import (
	"crypto/rand"
	"fmt"
	"math"
	"math/big"
)

const DefaultTaxRate = 5.0

const refAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Round2 rounds half away from zero to two decimals.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func AmountWithTax(amount, ratePercent float64) float64 {
	return Round2(amount + amount*ratePercent/100)
}

func DiscountedPrice(price float64, discount int) float64 {
	if discount <= 0 {
		return Round2(price)
	}
	return Round2(price - price*float64(discount)/100)
}

func FormattedPrice(v float64) string { return fmt.Sprintf("$%.2f", v) }

func FormattedDiscount(d int) string { return fmt.Sprintf("%d%% off", d) }

// Progress is the rounded percentage of reads over total, 0 for an empty course.
func Progress(reads, total int64) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(reads) / float64(total) * 100))
}

func Percent1(score, total int) float64 {
	if total <= 0 {
		return 0
	}
	return math.Round(float64(score)/float64(total)*1000) / 10
}

func OrderNumber() string { return "GI-C-" + randomRef(32) }

func TrxReference() string { return "GI-TX-" + randomRef(32) }

func Narration(n int) string {
	if n == 1 {
		return "Payment for 1 course"
	}
	return fmt.Sprintf("Payment for %d courses", n)
}

func randomRef(n int) string {
	out := make([]byte, n)
	max := big.NewInt(int64(len(refAlphabet)))
	for i := range out {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			panic(fmt.Errorf("crypto/rand: %w", err))
		}
		out[i] = refAlphabet[idx.Int64()]
	}
	return string(out)
}
