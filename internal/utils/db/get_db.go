package db

import (
	"context"

	"github.com/imobgestor/api-imobiliaria/internal/config"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// GetDB resolve as credenciais e abre a conexão com o PostgreSQL.
func GetDB(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*gorm.DB, error) {
	creds, err := ResolverCredenciais(ctx, cfg, nil)
	if err != nil {
		return nil, err
	}
	logger.Info("conectando ao banco",
		zap.String("host", cfg.DBHost),
		zap.Int("port", cfg.DBPort),
		zap.String("database", cfg.DBName),
		zap.Bool("secretsManager", cfg.DBUsername == "" && cfg.DBSecretID != ""),
	)
	return ConnectDataBase(DSN(cfg, creds))
}
