package configuracao

import (
	"net/http"

	"github.com/imobgestor/api-imobiliaria/internal/auth"
	"github.com/imobgestor/api-imobiliaria/internal/utils"
	"go.uber.org/zap"
)

type Handler struct {
	Service *Service
	Logger  *zap.Logger
}

// GET /configuracoes
func (h *Handler) Obter(w http.ResponseWriter, r *http.Request) {
	sessao, _ := auth.SessaoDe(r.Context())
	c, err := h.Service.Obter(r.Context(), sessao.EmpresaID)
	if err != nil {
		utils.ResponderErro(w, err, h.Logger)
		return
	}
	utils.WriteJSON(w, http.StatusOK, c)
}

// PUT /configuracoes
func (h *Handler) Atualizar(w http.ResponseWriter, r *http.Request) {
	sessao, _ := auth.SessaoDe(r.Context())
	var req AtualizarRequest
	if err := utils.DecodificarJSON(r, &req); err != nil {
		utils.ResponderErro(w, err, h.Logger)
		return
	}
	if err := utils.Validar(req); err != nil {
		utils.ResponderErro(w, err, h.Logger)
		return
	}
	c, err := h.Service.Atualizar(r.Context(), sessao.EmpresaID, req)
	if err != nil {
		utils.ResponderErro(w, err, h.Logger)
		return
	}
	h.Logger.Info("configuração atualizada", zap.Uint("empresaId", sessao.EmpresaID), zap.Uint("por", sessao.UsuarioID))
	utils.WriteJSON(w, http.StatusOK, c)
}
