package upstream

import (
	"math"
	"strconv"
	"strings"
)

// TokenDeriver computes the per-post token the syndication feed requires.
// The scheme is undocumented and may change upstream, so it is kept behind
// this interface.
type TokenDeriver interface {
	Token(postID string) string
}

// RadixToken derives the token the way the official embed widget does:
// (id / 1e15) * π rendered in base 36, with every '0' and '.' removed.
type RadixToken struct{}

// Token implements TokenDeriver.
func (RadixToken) Token(postID string) string {
	id, err := strconv.ParseFloat(postID, 64)
	if err != nil {
		return ""
	}
	s := formatRadix((id/1e15)*math.Pi, 36)
	return strings.NewReplacer("0", "", ".", "").Replace(s)
}

// StaticToken sends the same token for every post.
type StaticToken string

// Token implements TokenDeriver.
func (t StaticToken) Token(string) string {
	return string(t)
}

const radixDigits = "0123456789abcdefghijklmnopqrstuvwxyz"

// formatRadix renders value in the given radix using the shortest digit
// sequence that reads back to the same float64, matching the output of
// Number.prototype.toString(radix) in browsers.
func formatRadix(value float64, radix int) string {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return strconv.FormatFloat(value, 'g', -1, 64)
	}
	negative := value < 0
	if negative {
		value = -value
	}
	r := float64(radix)

	integer := math.Floor(value)
	fraction := value - integer
	// Half the distance to the next representable double; digits below
	// this precision are noise.
	delta := 0.5 * (math.Nextafter(value, math.Inf(1)) - value)
	delta = math.Max(math.Nextafter(0, 1), delta)

	var frac []byte
	if fraction >= delta {
		for {
			fraction *= r
			delta *= r
			digit := int(fraction)
			frac = append(frac, radixDigits[digit])
			fraction -= float64(digit)

			if fraction > 0.5 || (fraction == 0.5 && digit&1 == 1) {
				if fraction+delta > 1 {
					frac, integer = roundUp(frac, integer, radix)
					break
				}
			}
			if fraction < delta {
				break
			}
		}
	}

	// Digits beyond double precision are emitted as zeros.
	zeros := 0
	for integer/r >= 1<<53 {
		integer /= r
		zeros++
	}
	var whole []byte
	for {
		rem := math.Mod(integer, r)
		whole = append(whole, radixDigits[int(rem)])
		integer = (integer - rem) / r
		if integer <= 0 {
			break
		}
	}
	for i, j := 0, len(whole)-1; i < j; i, j = i+1, j-1 {
		whole[i], whole[j] = whole[j], whole[i]
	}

	var b strings.Builder
	if negative {
		b.WriteByte('-')
	}
	b.Write(whole)
	b.WriteString(strings.Repeat("0", zeros))
	if len(frac) > 0 {
		b.WriteByte('.')
		b.Write(frac)
	}
	return b.String()
}

// roundUp increments the last fractional digit, carrying into the integer
// part when every digit overflows.
func roundUp(frac []byte, integer float64, radix int) ([]byte, float64) {
	for len(frac) > 0 {
		last := strings.IndexByte(radixDigits, frac[len(frac)-1])
		frac = frac[:len(frac)-1]
		if last+1 < radix {
			return append(frac, radixDigits[last+1]), integer
		}
	}
	return frac, integer + 1
}
