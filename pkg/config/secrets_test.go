package config

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	ssmtypes "github.com/aws/aws-sdk-go-v2/service/ssm/types"
)

// --- Mocks ---

type MockSecretsClient struct {
	GetSecretValueFunc func(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

func (m *MockSecretsClient) GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error) {
	return m.GetSecretValueFunc(ctx, params, optFns...)
}

type MockSSMClient struct {
	GetParameterFunc func(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

func (m *MockSSMClient) GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error) {
	return m.GetParameterFunc(ctx, params, optFns...)
}

func secretValue(v string) *secretsmanager.GetSecretValueOutput {
	return &secretsmanager.GetSecretValueOutput{SecretString: &v}
}

// --- Testes ---

func TestResolveCredentials_APIKeyViaSecretsManager(t *testing.T) {
	cfg := &ServiceConfig{}
	cfg.Upstream.APIKeySecretID = "prod/music-api/key"

	secrets := &MockSecretsClient{
		GetSecretValueFunc: func(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error) {
			if *params.SecretId != "prod/music-api/key" {
				t.Errorf("SecretId incorreto: %s", *params.SecretId)
			}
			return secretValue("chave-secreta"), nil
		},
	}

	if err := resolveCredentialsInternal(context.Background(), cfg, secrets, nil); err != nil {
		t.Fatalf("Erro inesperado: %v", err)
	}
	if cfg.Upstream.APIKey != "chave-secreta" {
		t.Errorf("APIKey não resolvida: %s", cfg.Upstream.APIKey)
	}
}

func TestResolveCredentials_APIKeyViaSSM(t *testing.T) {
	cfg := &ServiceConfig{}
	cfg.Upstream.APIKeySSMPath = "/music-api/key"

	value := "chave-ssm"
	params := &MockSSMClient{
		GetParameterFunc: func(ctx context.Context, in *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error) {
			if in.WithDecryption == nil || !*in.WithDecryption {
				t.Error("Parâmetro deveria ser lido com decriptação")
			}
			return &ssm.GetParameterOutput{
				Parameter: &ssmtypes.Parameter{Value: &value},
			}, nil
		},
	}

	if err := resolveCredentialsInternal(context.Background(), cfg, nil, params); err != nil {
		t.Fatalf("Erro inesperado: %v", err)
	}
	if cfg.Upstream.APIKey != "chave-ssm" {
		t.Errorf("APIKey não resolvida via SSM: %s", cfg.Upstream.APIKey)
	}
}

func TestResolveCredentials_ChaveInlineTemPrecedencia(t *testing.T) {
	cfg := &ServiceConfig{}
	cfg.Upstream.APIKey = "inline"
	cfg.Upstream.APIKeySecretID = "prod/key"

	secrets := &MockSecretsClient{
		GetSecretValueFunc: func(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error) {
			t.Error("Chave inline não deveria disparar chamada ao SecretsManager")
			return secretValue(""), nil
		},
	}

	if err := resolveCredentialsInternal(context.Background(), cfg, secrets, nil); err != nil {
		t.Fatalf("Erro inesperado: %v", err)
	}
	if cfg.Upstream.APIKey != "inline" {
		t.Errorf("Chave inline sobrescrita: %s", cfg.Upstream.APIKey)
	}
}

func TestResolveCredentials_TokenDoStorage(t *testing.T) {
	cfg := &ServiceConfig{}
	cfg.Storage.TokenSecretID = "prod/webdfs/token"

	secrets := &MockSecretsClient{
		GetSecretValueFunc: func(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error) {
			return secretValue("token-dfs"), nil
		},
	}

	if err := resolveCredentialsInternal(context.Background(), cfg, secrets, nil); err != nil {
		t.Fatalf("Erro inesperado: %v", err)
	}
	if cfg.Storage.Token != "token-dfs" {
		t.Errorf("Token do storage não resolvido: %s", cfg.Storage.Token)
	}
}

func TestResolveCredentials_ErroPropaga(t *testing.T) {
	cfg := &ServiceConfig{}
	cfg.Upstream.APIKeySecretID = "prod/key"

	secrets := &MockSecretsClient{
		GetSecretValueFunc: func(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error) {
			return nil, errors.New("access denied")
		},
	}

	if err := resolveCredentialsInternal(context.Background(), cfg, secrets, nil); err == nil {
		t.Error("Falha no SecretsManager deveria propagar")
	}
}
