package configuracao

import (
	"context"
	"errors"
	"time"

	"github.com/imobgestor/api-imobiliaria/internal/cache"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Service lê e grava a configuração da empresa, com cache em memória.
type Service struct {
	DB     *gorm.DB
	Logger *zap.Logger
	cache  *cache.TTL[uint, Configuracao]
}

func NewService(ctx context.Context, db *gorm.DB, ttl time.Duration, logger *zap.Logger) *Service {
	return &Service{DB: db, Logger: logger, cache: cache.New[uint, Configuracao](ctx, ttl)}
}

// Obter devolve a configuração da empresa, criando os valores padrão na primeira leitura.
func (s *Service) Obter(ctx context.Context, empresaID uint) (Configuracao, error) {
	return s.cache.GetOrLoad(empresaID, func() (Configuracao, error) {
		var c Configuracao
		err := s.DB.WithContext(ctx).Where("empresa_id = ?", empresaID).First(&c).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c = Padrao(empresaID)
			err = s.DB.WithContext(ctx).Create(&c).Error
		}
		return c, err
	})
}

// TaxaAdministracao nunca falha: sem configuração legível cai para TaxaFallback.
func (s *Service) TaxaAdministracao(ctx context.Context, empresaID uint) float64 {
	c, err := s.Obter(ctx, empresaID)
	if err != nil {
		s.Logger.Warn("taxa de administração indisponível, usando fallback",
			zap.Uint("empresaId", empresaID), zap.Float64("taxa", TaxaFallback), zap.Error(err))
		return TaxaFallback
	}
	return c.TaxaAdministracao
}

func (s *Service) Atualizar(ctx context.Context, empresaID uint, req AtualizarRequest) (Configuracao, error) {
	s.cache.Delete(empresaID)
	c, err := s.Obter(ctx, empresaID)
	if err != nil {
		return c, err
	}
	if req.TaxaAdministracao != nil {
		c.TaxaAdministracao = *req.TaxaAdministracao
	}
	if req.DiaVencimentoPadrao != nil {
		c.DiaVencimentoPadrao = *req.DiaVencimentoPadrao
	}
	err = s.DB.WithContext(ctx).Save(&c).Error
	s.cache.Delete(empresaID)
	return c, err
}

// CriarPadrao grava a configuração inicial dentro da transação do cadastro da empresa.
func CriarPadrao(tx *gorm.DB, empresaID uint) error {
	c := Padrao(empresaID)
	return tx.Create(&c).Error
}
