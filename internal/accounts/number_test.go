package accounts

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateNumberFormat(t *testing.T) {
	for i := 0; i < 100; i++ {
		number, err := GenerateNumber()
		require.NoError(t, err)
		require.Len(t, number, 10)
		require.Equal(t, byte('-'), number[8])
		require.True(t, ValidNumber(number), "check digit mismatch for %s", number)
	}
}

func TestCheckDigitWeights(t *testing.T) {
	// 12345678: weights cycle 2..9 from the least significant digit.
	// 8*2+7*3+6*4+5*5+4*6+3*7+2*8+1*9 = 156; 156%11 = 2 -> digit 9.
	require.Equal(t, 9, checkDigit("12345678"))
	require.True(t, ValidNumber("12345678-9"))
	require.False(t, ValidNumber("12345678-0"))
}

func TestCheckDigitRemainderBelowTwo(t *testing.T) {
	// Sums with remainder below 2 collapse to check digit 0.
	require.Equal(t, 0, checkDigit("00000000"))
	// 11111111: 2+3+4+5+6+7+8+9 = 44; 44%11 = 0 -> digit 0.
	require.Equal(t, 0, checkDigit("11111111"))
}

func TestValidNumberRejectsMalformed(t *testing.T) {
	for _, number := range []string{
		"",
		"12345678",
		"1234567-9",
		"123456789-1",
		"1234567a-9",
		"12345678-x",
		"12345678_9",
	} {
		require.False(t, ValidNumber(number), "expected %s to be rejected", strings.ReplaceAll(number, " ", "_"))
	}
}
