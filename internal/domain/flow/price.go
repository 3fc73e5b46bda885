package flow

import (
	"errors"
	"strconv"
	"strings"
)

// FreePrice is the symbolic value for giveaways.
const FreePrice = "Даром"

var freeSynonyms = []string{"даром", "бесплатно", "free"}

var ErrInvalidPrice = errors.New("invalid price format")

// FormatPrice normalises user price input. A free synonym yields FreePrice;
// otherwise the input must parse as a strictly positive integer and is
// rendered with space thousands separators and the ruble suffix
// ("5000" -> "5 000 ₽"). Anything else is ErrInvalidPrice.
func FormatPrice(text string) (string, error) {
	s := strings.TrimSpace(text)
	for _, syn := range freeSynonyms {
		if strings.EqualFold(s, syn) {
			return FreePrice, nil
		}
	}

	n, err := strconv.Atoi(strings.ReplaceAll(s, " ", ""))
	if err != nil || n <= 0 {
		return "", ErrInvalidPrice
	}
	return groupThousands(n) + " ₽", nil
}

func groupThousands(n int) string {
	digits := strconv.Itoa(n)
	var b strings.Builder
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(d)
	}
	return b.String()
}
