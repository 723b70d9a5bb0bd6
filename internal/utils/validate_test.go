package utils

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type entradaTeste struct {
	Nome     string  `json:"nome" validate:"required"`
	Email    string  `json:"email" validate:"omitempty,email"`
	CPF      string  `json:"cpf" validate:"omitempty,cpf"`
	Telefone string  `json:"telefone" validate:"omitempty,telefone"`
	Valor    float64 `json:"valor" validate:"gte=0"`
}

func TestValidarOK(t *testing.T) {
	assert.NoError(t, Validar(entradaTeste{Nome: "Ana", CPF: "529.982.247-25", Telefone: "(11) 98765-4321"}))
}

func TestValidarMensagensPorCampo(t *testing.T) {
	err := Validar(entradaTeste{Email: "x", CPF: "123", Telefone: "1", Valor: -1})
	var v *ErrValidacao
	require.True(t, errors.As(err, &v))
	assert.Len(t, v.Mensagens, 5)
	assert.Contains(t, v.Mensagens, "nome é obrigatório")
	assert.Contains(t, v.Mensagens, "cpf inválido")
}
