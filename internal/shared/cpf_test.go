package shared

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidCPF(t *testing.T) {
	valid := []string{"52998224725", "11144477735", "12345678909"}
	for _, cpf := range valid {
		require.True(t, ValidCPF(cpf), "expected %s to be valid", cpf)
	}

	invalid := []string{
		"12345678901",
		"00000000000",
		"11111111111",
		"99999999999",
		"123456789",
		"123456789012",
		"123.456.789-01",
		"",
	}
	for _, cpf := range invalid {
		require.False(t, ValidCPF(cpf), "expected %s to be invalid", cpf)
	}
}
