package shared

// ValidCPF checks a Brazilian CPF document number. The input must be the
// bare 11 digits, no punctuation; both check digits are recomputed.
func ValidCPF(cpf string) bool {
	if len(cpf) != 11 {
		return false
	}
	digits := make([]int, 11)
	allSame := true
	for i := 0; i < 11; i++ {
		c := cpf[i]
		if c < '0' || c > '9' {
			return false
		}
		digits[i] = int(c - '0')
		if digits[i] != digits[0] {
			allSame = false
		}
	}
	// Sequences like 00000000000 pass the checksum but are not valid CPFs.
	if allSame {
		return false
	}
	return digits[9] == cpfCheckDigit(digits, 9) && digits[10] == cpfCheckDigit(digits, 10)
}

func cpfCheckDigit(digits []int, length int) int {
	sum := 0
	for i := 0; i < length; i++ {
		sum += digits[i] * (length + 1 - i)
	}
	remainder := sum % 11
	if remainder < 2 {
		return 0
	}
	return 11 - remainder
}
