package util

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

var (
	// ErrInvalidCPF is returned for CPFs with the wrong length or check digits.
	ErrInvalidCPF = errors.New("CPF inválido")
	// ErrInvalidCNPJ is returned for CNPJs with the wrong length or check digits.
	ErrInvalidCNPJ = errors.New("CNPJ inválido")
	// ErrInvalidCEP is returned for CEPs that are not eight digits.
	ErrInvalidCEP = errors.New("CEP deve conter exatamente 8 dígitos")
)

var (
	cnpjFirstWeights  = []int{5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}
	cnpjSecondWeights = []int{6, 5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}
)

// OnlyDigits strips every non-digit rune from s.
func OnlyDigits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}

	return b.String()
}

func allSame(digits string) bool {
	return strings.Count(digits, digits[:1]) == len(digits)
}

func digitAt(digits string, i int) int {
	return int(digits[i] - '0')
}

// NormalizeCPF validates the check digits and returns the CPF as 000.000.000-00.
func NormalizeCPF(value string) (string, error) {
	cpf := OnlyDigits(value)
	if len(cpf) != 11 || allSame(cpf) {
		return "", ErrInvalidCPF
	}

	for i := 9; i < 11; i++ {
		sum := 0
		for n := 0; n < i; n++ {
			sum += digitAt(cpf, n) * (i + 1 - n)
		}
		if (sum*10)%11%10 != digitAt(cpf, i) {
			return "", ErrInvalidCPF
		}
	}

	return fmt.Sprintf("%s.%s.%s-%s", cpf[:3], cpf[3:6], cpf[6:9], cpf[9:]), nil
}

func cnpjDigit(cnpj string, weights []int) int {
	sum := 0
	for i, w := range weights {
		sum += digitAt(cnpj, i) * w
	}
	if rest := sum % 11; rest >= 2 {
		return 11 - rest
	}

	return 0
}

// NormalizeCNPJ validates the check digits and returns the CNPJ as 00.000.000/0000-00.
func NormalizeCNPJ(value string) (string, error) {
	cnpj := OnlyDigits(value)
	if len(cnpj) != 14 || allSame(cnpj) {
		return "", ErrInvalidCNPJ
	}

	if cnpjDigit(cnpj, cnpjFirstWeights) != digitAt(cnpj, 12) ||
		cnpjDigit(cnpj, cnpjSecondWeights) != digitAt(cnpj, 13) {
		return "", ErrInvalidCNPJ
	}

	return fmt.Sprintf("%s.%s.%s/%s-%s", cnpj[:2], cnpj[2:5], cnpj[5:8], cnpj[8:12], cnpj[12:]), nil
}

// NormalizeCEP returns the CEP as eight digits.
func NormalizeCEP(value string) (string, error) {
	cep := OnlyDigits(value)
	if len(cep) != 8 {
		return "", ErrInvalidCEP
	}

	return cep, nil
}

// IsValidPhoneBR accepts Brazilian numbers with area code, optionally prefixed by 55.
func IsValidPhoneBR(value string) bool {
	digits := OnlyDigits(value)
	if strings.HasPrefix(digits, "55") && len(digits) > 11 {
		digits = digits[2:]
	}

	return len(digits) == 10 || len(digits) == 11
}
