package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/imobgestor/api-imobiliaria/internal/utils"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const RefreshCookie = "rt"

func genRaw() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func hashRaw(raw string) string {
	h := sha256.Sum256([]byte(raw))
	return base64.RawURLEncoding.EncodeToString(h[:])
}

// Em localhost (http) o cookie precisa de Secure=false; em produção COOKIE_SECURE=true.
func (h *Handler) setRTCookie(w http.ResponseWriter, raw string, exp time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshCookie,
		Value:    raw,
		Path:     "/auth",
		HttpOnly: true,
		Secure:   h.CookieSecure,
		SameSite: http.SameSiteLaxMode,
		Expires:  exp,
	})
}

func (h *Handler) clearRTCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshCookie,
		Value:    "",
		Path:     "/auth",
		HttpOnly: true,
		Secure:   h.CookieSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}

// emitirTokens gera o access token e um refresh novo na família informada
// (família vazia inicia uma nova, no login).
func (h *Handler) emitirTokens(ctx context.Context, w http.ResponseWriter, conta Conta, familyID string) (TokenResponse, error) {
	access, err := h.Tokens.Gerar(conta.Sessao())
	if err != nil {
		return TokenResponse{}, err
	}
	raw, err := genRaw()
	if err != nil {
		return TokenResponse{}, err
	}
	if familyID == "" {
		familyID = uuid.NewString()
	}
	rt := RefreshToken{
		UsuarioID: conta.UsuarioID,
		EmpresaID: conta.EmpresaID,
		FamilyID:  familyID,
		Hash:      hashRaw(raw),
		ExpiresAt: time.Now().Add(h.RefreshTTL),
	}
	if err := h.DB.WithContext(ctx).Create(&rt).Error; err != nil {
		return TokenResponse{}, err
	}
	h.setRTCookie(w, raw, rt.ExpiresAt)
	return TokenResponse{
		Token:     access,
		TokenType: "Bearer",
		ExpiresIn: int(h.Tokens.AccessTTL.Seconds()),
		Usuario: UsuarioLogado{
			Sessao:      conta.Sessao(),
			EmpresaNome: conta.EmpresaNome,
			EmpresaLogo: conta.EmpresaLogo,
		},
	}, nil
}

// Refresh troca o cookie de refresh por um novo par de tokens (POST /auth/refresh).
// Reapresentar um refresh já revogado derruba a família inteira.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	c, err := r.Cookie(RefreshCookie)
	if err != nil || c.Value == "" {
		utils.WriteError(w, http.StatusUnauthorized, "refresh ausente")
		return
	}

	db := h.DB.WithContext(ctx)
	var cur RefreshToken
	if err := db.Where("hash = ?", hashRaw(c.Value)).First(&cur).Error; err != nil {
		h.clearRTCookie(w)
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			h.Logger.Error("buscar refresh", zap.Error(err))
		}
		utils.WriteError(w, http.StatusUnauthorized, "refresh inválido")
		return
	}

	now := time.Now()
	if cur.RevokedAt != nil {
		h.Logger.Warn("refresh reutilizado, revogando família",
			zap.Uint("usuarioId", cur.UsuarioID), zap.String("familyId", cur.FamilyID))
		_ = db.Model(&RefreshToken{}).
			Where("family_id = ? AND revoked_at IS NULL", cur.FamilyID).
			Update("revoked_at", now).Error
		h.clearRTCookie(w)
		utils.WriteError(w, http.StatusUnauthorized, "refresh revogado")
		return
	}
	if now.After(cur.ExpiresAt) {
		h.clearRTCookie(w)
		utils.WriteError(w, http.StatusUnauthorized, "refresh expirado")
		return
	}

	if err := db.Model(&cur).Update("revoked_at", now).Error; err != nil {
		utils.ResponderErro(w, err, h.Logger)
		return
	}

	// recarrega o usuário: perfil ou status podem ter mudado desde o login
	conta, err := h.Contas.ContaPorID(ctx, h.DB, cur.UsuarioID)
	if err != nil || conta.EmpresaID != cur.EmpresaID {
		h.clearRTCookie(w)
		utils.WriteError(w, http.StatusUnauthorized, "usuário inativo")
		return
	}

	resp, err := h.emitirTokens(ctx, w, *conta, cur.FamilyID)
	if err != nil {
		h.clearRTCookie(w)
		utils.ResponderErro(w, err, h.Logger)
		return
	}
	utils.WriteJSON(w, http.StatusOK, resp)
}

// Logout revoga o refresh atual (POST /auth/logout).
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(RefreshCookie); err == nil && c.Value != "" {
		now := time.Now()
		err := h.DB.WithContext(r.Context()).Model(&RefreshToken{}).
			Where("hash = ?", hashRaw(c.Value)).
			Update("revoked_at", &now).Error
		if err != nil {
			h.Logger.Warn("revogar refresh no logout", zap.Error(err))
		}
	}
	h.clearRTCookie(w)
	w.WriteHeader(http.StatusNoContent)
}
