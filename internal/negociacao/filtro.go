package negociacao

import (
	"strings"

	"github.com/imobgestor/api-imobiliaria/internal/models"
	"github.com/imobgestor/api-imobiliaria/internal/utils"
)

// Visões da listagem (parâmetro "filtro").
const (
	VisaoTodos              = "TODOS"
	VisaoCancelados         = "CANCELADOS"
	VisaoTodosComCancelados = "TODOS_COM_CANCELADOS"
)

// condicaoVisao traduz a visão numa condição SQL sobre negociacoes.status.
// Sem visão vale TODOS, que esconde as canceladas.
func condicaoVisao(visao string) (string, []any, error) {
	switch strings.ToUpper(strings.TrimSpace(visao)) {
	case "", VisaoTodos:
		return "negociacoes.status <> ?", []any{models.StatusCancelado}, nil
	case VisaoCancelados:
		return "negociacoes.status = ?", []any{models.StatusCancelado}, nil
	case VisaoTodosComCancelados:
		return "", nil, nil
	}
	return "", nil, utils.NovoErrValidacao("filtro inválido: %s", visao)
}
