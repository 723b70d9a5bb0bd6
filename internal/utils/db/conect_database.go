package db

import (
	"fmt"

	"github.com/imobgestor/api-imobiliaria/internal/config"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DSN monta a string de conexão do driver postgres.
func DSN(cfg *config.Config, creds Credentials) string {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d TimeZone=%s",
		cfg.DBHost, creds.Username, creds.Password, cfg.DBName, cfg.DBPort, cfg.Timezone)
	if cfg.DBSSLModeDisabled {
		dsn += " sslmode=disable"
	}
	return dsn
}

func ConnectDataBase(dsn string) (*gorm.DB, error) {
	database, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Error),
	})
	if err != nil {
		return nil, fmt.Errorf("abrir conexão: %w", err)
	}
	return database, nil
}

// Migrar roda o AutoMigrate de todos os modelos informados.
func Migrar(database *gorm.DB, modelos ...any) error {
	if err := database.AutoMigrate(modelos...); err != nil {
		return fmt.Errorf("migração: %w", err)
	}
	return nil
}
