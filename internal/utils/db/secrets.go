package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/imobgestor/api-imobiliaria/internal/config"
)

type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// SecretsAPI é o subconjunto do cliente do Secrets Manager usado aqui.
type SecretsAPI interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

func initSecretsConfig(ctx context.Context) (SecretsAPI, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("carregar config aws: %w", err)
	}
	return secretsmanager.NewFromConfig(awsCfg), nil
}

// ResolverCredenciais usa DB_USERNAME/DB_PASSWORD quando definidos e, caso
// contrário, busca o segredo DB_SECRET_ID. client nil cria um cliente padrão.
func ResolverCredenciais(ctx context.Context, cfg *config.Config, client SecretsAPI) (Credentials, error) {
	if cfg.DBUsername != "" && cfg.DBPassword != "" {
		return Credentials{Username: cfg.DBUsername, Password: cfg.DBPassword}, nil
	}
	if cfg.DBSecretID == "" {
		return Credentials{}, errors.New("credenciais do banco ausentes: defina DB_USERNAME/DB_PASSWORD ou DB_SECRET_ID")
	}

	if client == nil {
		var err error
		if client, err = initSecretsConfig(ctx); err != nil {
			return Credentials{}, err
		}
	}

	result, err := client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId:     aws.String(cfg.DBSecretID),
		VersionStage: aws.String("AWSCURRENT"),
	})
	if err != nil {
		return Credentials{}, fmt.Errorf("buscar segredo %s: %w", cfg.DBSecretID, err)
	}
	if result.SecretString == nil {
		return Credentials{}, fmt.Errorf("segredo %s sem SecretString", cfg.DBSecretID)
	}

	var secret Credentials
	if err := json.Unmarshal([]byte(*result.SecretString), &secret); err != nil {
		return Credentials{}, fmt.Errorf("segredo %s malformado: %w", cfg.DBSecretID, err)
	}
	return secret, nil
}
