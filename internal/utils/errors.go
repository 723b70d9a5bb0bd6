package utils

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// ErrValidacao indica entrada inválida; cada mensagem corresponde a um campo.
type ErrValidacao struct {
	Mensagens []string
}

func (e *ErrValidacao) Error() string {
	return strings.Join(e.Mensagens, "; ")
}

// NovoErrValidacao cria um ErrValidacao de uma mensagem só.
func NovoErrValidacao(format string, args ...any) error {
	return &ErrValidacao{Mensagens: []string{fmt.Sprintf(format, args...)}}
}

// ErrNaoEncontrado indica recurso inexistente (ou de outra empresa).
type ErrNaoEncontrado struct {
	Recurso string
}

func (e *ErrNaoEncontrado) Error() string {
	return fmt.Sprintf("%s não encontrado(a)", e.Recurso)
}

// ErrConflito indica estado incompatível com a operação, como uma transição de status proibida.
type ErrConflito struct {
	Mensagem string
}

func (e *ErrConflito) Error() string { return e.Mensagem }

// ErrRegraNegocio indica operação recusada por regra de negócio.
type ErrRegraNegocio struct {
	Mensagem string
}

func (e *ErrRegraNegocio) Error() string { return e.Mensagem }

// ErrProibido indica que o perfil logado não pode executar a ação.
type ErrProibido struct {
	Mensagem string
}

func (e *ErrProibido) Error() string {
	if e.Mensagem == "" {
		return "acesso negado"
	}
	return e.Mensagem
}

// ErrNaoAutorizado indica credencial ausente, inválida ou expirada.
type ErrNaoAutorizado struct {
	Mensagem string
}

func (e *ErrNaoAutorizado) Error() string {
	if e.Mensagem == "" {
		return "não autenticado"
	}
	return e.Mensagem
}

// NaoEncontrado troca gorm.ErrRecordNotFound por ErrNaoEncontrado do recurso.
func NaoEncontrado(err error, recurso string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &ErrNaoEncontrado{Recurso: recurso}
	}
	return err
}
