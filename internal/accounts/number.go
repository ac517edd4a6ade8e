package accounts

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
)

// DefaultAgency is the single agency code issued to new accounts.
const DefaultAgency = "0001"

const numberBaseDigits = 8

// GenerateNumber produces an account number: an 8-digit random base plus a
// weighted modulo-11 check digit, formatted NNNNNNNN-D. Uniqueness is not
// guaranteed here; the accounts.number unique constraint is, and callers
// retry on conflict.
func GenerateNumber() (string, error) {
	max := big.NewInt(90000000)
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", fmt.Errorf("accounts: generate number: %w", err)
	}
	base := 10000000 + n.Int64()
	return fmt.Sprintf("%08d-%d", base, checkDigit(fmt.Sprintf("%08d", base))), nil
}

// ValidNumber recomputes the check digit of a NNNNNNNN-D account number.
func ValidNumber(number string) bool {
	base, digit, ok := strings.Cut(number, "-")
	if !ok || len(base) != numberBaseDigits || len(digit) != 1 {
		return false
	}
	for i := 0; i < len(base); i++ {
		if base[i] < '0' || base[i] > '9' {
			return false
		}
	}
	if digit[0] < '0' || digit[0] > '9' {
		return false
	}
	return int(digit[0]-'0') == checkDigit(base)
}

// checkDigit sums digits times weights cycling 2..9 from the least
// significant digit; remainders below 2 map to 0, otherwise 11-remainder.
func checkDigit(base string) int {
	sum := 0
	weight := 2
	for i := len(base) - 1; i >= 0; i-- {
		sum += int(base[i]-'0') * weight
		weight++
		if weight > 9 {
			weight = 2
		}
	}
	remainder := sum % 11
	if remainder < 2 {
		return 0
	}
	return 11 - remainder
}
