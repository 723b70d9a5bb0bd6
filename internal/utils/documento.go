package utils

import (
	"fmt"
	"strings"
)

// SomenteDigitos remove tudo que não for 0-9. CPF, CNPJ e telefones são
// gravados nesse formato.
func SomenteDigitos(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}

// FormatarCPF devolve 000.000.000-00; entradas que não têm 11 dígitos voltam como vieram.
func FormatarCPF(s string) string {
	d := SomenteDigitos(s)
	if len(d) != 11 {
		return s
	}
	return fmt.Sprintf("%s.%s.%s-%s", d[:3], d[3:6], d[6:9], d[9:11])
}

// FormatarCNPJ devolve 00.000.000/0000-00.
func FormatarCNPJ(s string) string {
	d := SomenteDigitos(s)
	if len(d) != 14 {
		return s
	}
	return fmt.Sprintf("%s.%s.%s/%s-%s", d[:2], d[2:5], d[5:8], d[8:12], d[12:14])
}

// FormatarTelefone aceita fixo (10 dígitos) ou celular (11 dígitos) com DDD.
func FormatarTelefone(s string) string {
	d := SomenteDigitos(s)
	switch len(d) {
	case 10:
		return fmt.Sprintf("(%s) %s-%s", d[:2], d[2:6], d[6:10])
	case 11:
		return fmt.Sprintf("(%s) %s-%s", d[:2], d[2:7], d[7:11])
	}
	return s
}

// CPFValido confere os dígitos verificadores.
func CPFValido(s string) bool {
	d := SomenteDigitos(s)
	if len(d) != 11 || strings.Count(d, d[:1]) == 11 {
		return false
	}
	dv := func(n int) byte {
		soma := 0
		for i := 0; i < n; i++ {
			soma += int(d[i]-'0') * (n + 1 - i)
		}
		resto := (soma * 10) % 11
		if resto == 10 {
			resto = 0
		}
		return byte('0' + resto)
	}
	return d[9] == dv(9) && d[10] == dv(10)
}

// CNPJValido confere os dígitos verificadores.
func CNPJValido(s string) bool {
	d := SomenteDigitos(s)
	if len(d) != 14 || strings.Count(d, d[:1]) == 14 {
		return false
	}
	dv := func(pesos []int) byte {
		soma := 0
		for i, p := range pesos {
			soma += int(d[i]-'0') * p
		}
		resto := soma % 11
		if resto < 2 {
			return '0'
		}
		return byte('0' + 11 - resto)
	}
	return d[12] == dv([]int{5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}) &&
		d[13] == dv([]int{6, 5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2})
}
