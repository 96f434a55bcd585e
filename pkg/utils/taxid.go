package utils

import "strings"

// OnlyDigits strips every non-digit from s ("123.456.789-09" -> "12345678909").
func OnlyDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// IsValidTaxID accepts a CPF (11 digits) or CNPJ (14 digits) with valid
// check digits. Punctuation is ignored.
func IsValidTaxID(s string) bool {
	digits := OnlyDigits(s)
	switch len(digits) {
	case 11:
		return IsValidCPF(digits)
	case 14:
		return IsValidCNPJ(digits)
	default:
		return false
	}
}

// IsValidCPF validates the two CPF check digits.
func IsValidCPF(s string) bool {
	d := OnlyDigits(s)
	if len(d) != 11 || allSame(d) {
		return false
	}
	first := cpfDigit(d[:9], 10)
	second := cpfDigit(d[:10], 11)
	return int(d[9]-'0') == first && int(d[10]-'0') == second
}

func cpfDigit(d string, weight int) int {
	sum := 0
	for i := 0; i < len(d); i++ {
		sum += int(d[i]-'0') * (weight - i)
	}
	rest := (sum * 10) % 11
	if rest == 10 {
		return 0
	}
	return rest
}

var (
	cnpjFirstWeights  = []int{5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}
	cnpjSecondWeights = []int{6, 5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}
)

// IsValidCNPJ validates the two CNPJ check digits.
func IsValidCNPJ(s string) bool {
	d := OnlyDigits(s)
	if len(d) != 14 || allSame(d) {
		return false
	}
	first := cnpjDigit(d[:12], cnpjFirstWeights)
	second := cnpjDigit(d[:13], cnpjSecondWeights)
	return int(d[12]-'0') == first && int(d[13]-'0') == second
}

func cnpjDigit(d string, weights []int) int {
	sum := 0
	for i := 0; i < len(d); i++ {
		sum += int(d[i]-'0') * weights[i]
	}
	rest := sum % 11
	if rest < 2 {
		return 0
	}
	return 11 - rest
}

func allSame(d string) bool {
	return strings.Count(d, d[:1]) == len(d)
}
