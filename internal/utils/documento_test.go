package utils

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatarTelefone(t *testing.T) {
	assert.Equal(t, "(11) 3456-7890", FormatarTelefone("1134567890"))
	assert.Equal(t, "(11) 98765-4321", FormatarTelefone("11987654321"))
	assert.Equal(t, "123", FormatarTelefone("123"))
}

func TestFormatarCPFECNPJ(t *testing.T) {
	assert.Equal(t, "529.982.247-25", FormatarCPF("52998224725"))
	assert.Equal(t, "12.345.678/0001-95", FormatarCNPJ("12345678000195"))
	assert.Equal(t, "abc", FormatarCPF("abc"))
}

func TestFormatarENormalizarIdaEVolta(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	for i := 0; i < 500; i++ {
		n := 10 + r.Intn(2)
		digitos := ""
		for j := 0; j < n; j++ {
			digitos += fmt.Sprint(r.Intn(10))
		}
		assert.Equal(t, digitos, SomenteDigitos(FormatarTelefone(digitos)))
		if n == 11 {
			assert.Equal(t, digitos, SomenteDigitos(FormatarCPF(digitos)))
		}
	}
}

func TestCPFValido(t *testing.T) {
	assert.True(t, CPFValido("529.982.247-25"))
	assert.False(t, CPFValido("529.982.247-26"))
	assert.False(t, CPFValido("111.111.111-11"))
	assert.False(t, CPFValido("1234"))
}

func TestCNPJValido(t *testing.T) {
	assert.True(t, CNPJValido("12.345.678/0001-95"))
	assert.True(t, CNPJValido("11222333000181"))
	assert.False(t, CNPJValido("11222333000182"))
	assert.False(t, CNPJValido("00000000000000"))
}
