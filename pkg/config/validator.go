package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

type ConfigValidator struct {
	validate *validator.Validate
}

// NewValidator cria uma nova instância do validador
func NewValidator() *ConfigValidator {
	return &ConfigValidator{
		validate: validator.New(),
	}
}

// Validate realiza validações estruturais (tags) e semânticas (lógica)
func (cv *ConfigValidator) Validate(cfg *ServiceConfig) error {
	// 1. Validação Estrutural (Tags do struct: required, oneof, etc)
	if err := cv.validate.Struct(cfg); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			var errMsgs []string
			for _, e := range validationErrors {
				errMsgs = append(errMsgs, fmt.Sprintf("Campo '%s' falhou na regra '%s'", e.Field(), e.Tag()))
			}
			return fmt.Errorf("erros de validação estrutural:\n- %s", strings.Join(errMsgs, "\n- "))
		}
		return fmt.Errorf("erro de validação estrutural: %w", err)
	}

	// 2. Validação Semântica (Regras de negócio da configuração)
	if err := cv.validateSemantics(cfg); err != nil {
		return fmt.Errorf("erro de validação semântica: %w", err)
	}

	return nil
}

func (cv *ConfigValidator) validateSemantics(cfg *ServiceConfig) error {
	// 1. Storage habilitado exige os campos do driver escolhido
	if cfg.Storage.Enabled {
		switch cfg.Storage.Driver {
		case "webdfs":
			if cfg.Storage.BaseURL == "" {
				return fmt.Errorf("storage webdfs exige 'base_url'")
			}
		case "s3":
			if cfg.Storage.Bucket == "" {
				return fmt.Errorf("storage s3 exige 'bucket'")
			}
		default:
			return fmt.Errorf("storage habilitado exige um 'driver' válido (webdfs ou s3)")
		}
		if cfg.Storage.CacheRoot == "" {
			return fmt.Errorf("storage habilitado exige 'cache_root'")
		}
	}

	// 2. Cache redis exige endereço
	if cfg.Cache.Backend == "redis" && cfg.Cache.Redis.Addr == "" {
		return fmt.Errorf("cache redis exige 'redis.addr'")
	}

	// 3. Upstream habilitado exige alguma fonte de credencial
	if cfg.Upstream.Enabled {
		if cfg.Upstream.APIKey == "" && cfg.Upstream.APIKeySecretID == "" && cfg.Upstream.APIKeySSMPath == "" {
			return fmt.Errorf("upstream habilitado exige 'api_key', 'api_key_secret_id' ou 'api_key_ssm_path'")
		}
	}

	return nil
}
