package config

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
)

// Interfaces para abstrair o SDK da AWS (Permite Mocking)
type SecretsClient interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

type SSMClient interface {
	GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

// ResolveCredentials preenche, no boot, as credenciais que a configuração
// referencia por ID em vez de trazer inline: a chave do upstream (Secrets
// Manager ou Parameter Store) e o token do storage durável (Secrets Manager).
func ResolveCredentials(ctx context.Context, cfg *ServiceConfig) error {
	needsSecrets := cfg.Upstream.APIKeySecretID != "" || cfg.Storage.TokenSecretID != ""
	needsSSM := cfg.Upstream.APIKeySSMPath != ""
	if !needsSecrets && !needsSSM {
		return nil
	}

	awsCfg, err := GetAWSConfig(ctx, cfg.Upstream.Region)
	if err != nil {
		return fmt.Errorf("erro ao carregar config AWS: %w", err)
	}

	var secrets SecretsClient
	var params SSMClient
	if needsSecrets {
		secrets = secretsmanager.NewFromConfig(awsCfg)
	}
	if needsSSM {
		params = ssm.NewFromConfig(awsCfg)
	}
	return resolveCredentialsInternal(ctx, cfg, secrets, params)
}

// resolveCredentialsInternal contém a lógica pura, testável via Mock.
func resolveCredentialsInternal(ctx context.Context, cfg *ServiceConfig, secrets SecretsClient, params SSMClient) error {
	if cfg.Upstream.APIKeySecretID != "" && cfg.Upstream.APIKey == "" {
		val, err := getSecret(ctx, secrets, cfg.Upstream.APIKeySecretID)
		if err != nil {
			return err
		}
		cfg.Upstream.APIKey = val
	}

	if cfg.Upstream.APIKeySSMPath != "" && cfg.Upstream.APIKey == "" {
		val, err := getParameter(ctx, params, cfg.Upstream.APIKeySSMPath)
		if err != nil {
			return err
		}
		cfg.Upstream.APIKey = val
	}

	if cfg.Storage.TokenSecretID != "" && cfg.Storage.Token == "" {
		val, err := getSecret(ctx, secrets, cfg.Storage.TokenSecretID)
		if err != nil {
			return err
		}
		cfg.Storage.Token = val
	}

	return nil
}

func getSecret(ctx context.Context, client SecretsClient, secretID string) (string, error) {
	out, err := client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: &secretID,
	})
	if err != nil {
		return "", fmt.Errorf("erro no SecretsManager (%s): %w", secretID, err)
	}
	return *out.SecretString, nil
}

func getParameter(ctx context.Context, client SSMClient, path string) (string, error) {
	decrypt := true
	out, err := client.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           &path,
		WithDecryption: &decrypt,
	})
	if err != nil {
		return "", fmt.Errorf("erro no SSM GetParameter (%s): %w", path, err)
	}
	return *out.Parameter.Value, nil
}
