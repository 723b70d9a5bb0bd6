package auth

import (
	"net/http"
	"strings"
	"time"

	"github.com/imobgestor/api-imobiliaria/internal/utils"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type LoginRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Senha     string `json:"senha" validate:"required"`
	EmpresaID uint   `json:"empresaId"`
}

type EmpresaOpcao struct {
	ID      uint   `json:"id"`
	Nome    string `json:"nome"`
	LogoURL string `json:"logoUrl"`
}

// SelecaoEmpresaResponse é devolvida quando o e-mail existe em mais de uma empresa.
type SelecaoEmpresaResponse struct {
	RequiresSelection bool           `json:"requiresSelection"`
	Empresas          []EmpresaOpcao `json:"empresas"`
}

type UsuarioLogado struct {
	Sessao
	EmpresaNome string `json:"empresaNome"`
	EmpresaLogo string `json:"empresaLogo,omitempty"`
}

type TokenResponse struct {
	Token     string        `json:"token"`
	TokenType string        `json:"tokenType"`
	ExpiresIn int           `json:"expiresIn"`
	Usuario   UsuarioLogado `json:"usuario"`
}

type Handler struct {
	DB           *gorm.DB
	Contas       Contas
	Tokens       *TokenManager
	RefreshTTL   time.Duration
	CookieSecure bool
	Logger       *zap.Logger
}

// Login valida e-mail e senha (POST /auth/login).
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := utils.DecodificarJSON(r, &req); err != nil {
		utils.ResponderErro(w, err, h.Logger)
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := utils.Validar(req); err != nil {
		utils.ResponderErro(w, err, h.Logger)
		return
	}

	contas, err := h.Contas.ContasPorEmail(r.Context(), h.DB, req.Email)
	if err != nil {
		utils.ResponderErro(w, err, h.Logger)
		return
	}

	var validas []Conta
	for _, c := range contas {
		if utils.VerificarSenha(c.SenhaHash, req.Senha) {
			validas = append(validas, c)
		}
	}

	if req.EmpresaID != 0 {
		var escolhida []Conta
		for _, c := range validas {
			if c.EmpresaID == req.EmpresaID {
				escolhida = append(escolhida, c)
			}
		}
		validas = escolhida
	}

	switch {
	case len(validas) == 0:
		h.Logger.Info("login recusado", zap.String("email", req.Email))
		utils.WriteError(w, http.StatusUnauthorized, "e-mail ou senha inválidos")
		return
	case len(validas) > 1:
		opcoes := make([]EmpresaOpcao, 0, len(validas))
		for _, c := range validas {
			opcoes = append(opcoes, EmpresaOpcao{ID: c.EmpresaID, Nome: c.EmpresaNome, LogoURL: c.EmpresaLogo})
		}
		utils.WriteJSON(w, http.StatusOK, SelecaoEmpresaResponse{RequiresSelection: true, Empresas: opcoes})
		return
	}

	resp, err := h.emitirTokens(r.Context(), w, validas[0], "")
	if err != nil {
		utils.ResponderErro(w, err, h.Logger)
		return
	}
	h.Logger.Info("login",
		zap.Uint("usuarioId", validas[0].UsuarioID),
		zap.Uint("empresaId", validas[0].EmpresaID))
	utils.WriteJSON(w, http.StatusOK, resp)
}

// Me devolve a sessão do token (GET /auth/me).
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	s, ok := SessaoDe(r.Context())
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "não autenticado")
		return
	}
	utils.WriteJSON(w, http.StatusOK, s)
}
