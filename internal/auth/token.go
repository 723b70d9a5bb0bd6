package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/imobgestor/api-imobiliaria/internal/models"
)

const issuer = "api-imobiliaria"

// Sessao é o usuário logado, como carregado no token de acesso.
type Sessao struct {
	UsuarioID    uint          `json:"usuarioId"`
	EmpresaID    uint          `json:"empresaId"`
	Perfil       models.Perfil `json:"perfil"`
	Nome         string        `json:"nome"`
	Email        string        `json:"email"`
	EmpresaAdmin bool          `json:"empresaAdmin"`
}

// Claims do token de acesso (HS256).
type Claims struct {
	Sessao
	jwt.RegisteredClaims
}

// TokenManager emite e valida tokens de acesso.
type TokenManager struct {
	secret    []byte
	AccessTTL time.Duration
	agora     func() time.Time
}

func NewTokenManager(secret string, accessTTL time.Duration) *TokenManager {
	return &TokenManager{secret: []byte(secret), AccessTTL: accessTTL, agora: time.Now}
}

// Gerar assina um token para a sessão.
func (m *TokenManager) Gerar(s Sessao) (string, error) {
	now := m.agora()
	claims := &Claims{
		Sessao: s,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   fmt.Sprint(s.UsuarioID),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.AccessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now.Add(-1 * time.Minute)),
			ID:        fmt.Sprintf("%d-%d", s.UsuarioID, now.UnixNano()),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// Validar confere assinatura, emissor e validade.
func (m *TokenManager) Validar(raw string) (*Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.agora),
	)
	tok, err := parser.ParseWithClaims(raw, &Claims{}, func(*jwt.Token) (interface{}, error) {
		return m.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("token inválido ou expirado: %w", err)
	}
	c, ok := tok.Claims.(*Claims)
	if !ok || !tok.Valid {
		return nil, errors.New("claims inválidas")
	}
	if c.UsuarioID == 0 || c.EmpresaID == 0 {
		return nil, errors.New("token sem usuário ou empresa")
	}
	return c, nil
}
