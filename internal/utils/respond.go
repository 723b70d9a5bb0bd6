package utils

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type erroResposta struct {
	Message any `json:"message"`
}

// WriteJSON serializa data com o status informado.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// WriteError responde {"message": msg}. msg pode ser string ou []string.
func WriteError(w http.ResponseWriter, status int, msg any) {
	WriteJSON(w, status, erroResposta{Message: msg})
}

// ResponderErro traduz erros de domínio para status HTTP.
func ResponderErro(w http.ResponseWriter, err error, logger *zap.Logger) {
	var validacao *ErrValidacao
	var naoEncontrado *ErrNaoEncontrado
	var conflito *ErrConflito
	var regra *ErrRegraNegocio
	var proibido *ErrProibido
	var naoAutorizado *ErrNaoAutorizado

	switch {
	case errors.As(err, &validacao):
		logger.Debug("validação", zap.Strings("mensagens", validacao.Mensagens))
		if len(validacao.Mensagens) == 1 {
			WriteError(w, http.StatusBadRequest, validacao.Mensagens[0])
			return
		}
		WriteError(w, http.StatusBadRequest, validacao.Mensagens)
	case errors.As(err, &naoEncontrado):
		logger.Debug("não encontrado", zap.String("recurso", naoEncontrado.Recurso))
		WriteError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, gorm.ErrRecordNotFound):
		WriteError(w, http.StatusNotFound, "registro não encontrado")
	case errors.As(err, &conflito):
		logger.Debug("conflito", zap.String("erro", err.Error()))
		WriteError(w, http.StatusConflict, err.Error())
	case errors.As(err, &regra):
		logger.Debug("regra de negócio", zap.String("erro", err.Error()))
		WriteError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.As(err, &proibido):
		logger.Warn("acesso negado", zap.String("erro", err.Error()))
		WriteError(w, http.StatusForbidden, err.Error())
	case errors.As(err, &naoAutorizado):
		logger.Warn("não autorizado", zap.String("erro", err.Error()))
		WriteError(w, http.StatusUnauthorized, err.Error())
	default:
		logger.Error("erro interno", zap.Error(err))
		WriteError(w, http.StatusInternalServerError, "erro interno do servidor")
	}
}
