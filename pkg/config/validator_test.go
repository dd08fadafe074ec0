package config

import (
	"strings"
	"testing"
)

func baseConfig() *ServiceConfig {
	return &ServiceConfig{
		Version: "1.0",
		Service: ServiceDetails{
			Name:    "music-api",
			Runtime: "local",
			Port:    8080,
		},
		Methods: MethodsConf{BaseURL: "https://config.example.com"},
	}
}

func TestValidate_ConfiguracaoMinima(t *testing.T) {
	if err := NewValidator().Validate(baseConfig()); err != nil {
		t.Errorf("Configuração mínima deveria passar: %v", err)
	}
}

func TestValidate_RuntimeInvalido(t *testing.T) {
	cfg := baseConfig()
	cfg.Service.Runtime = "mainframe"

	err := NewValidator().Validate(cfg)
	if err == nil || !strings.Contains(err.Error(), "Runtime") {
		t.Errorf("Runtime inválido deveria falhar na regra oneof: %v", err)
	}
}

func TestValidate_StorageSemDriver(t *testing.T) {
	cfg := baseConfig()
	cfg.Storage.Enabled = true

	if err := NewValidator().Validate(cfg); err == nil {
		t.Error("Storage habilitado sem driver deveria falhar")
	}
}

func TestValidate_StorageWebDFSSemBaseURL(t *testing.T) {
	cfg := baseConfig()
	cfg.Storage = StorageConf{Enabled: true, Driver: "webdfs", CacheRoot: "cache"}

	if err := NewValidator().Validate(cfg); err == nil {
		t.Error("Storage webdfs sem base_url deveria falhar")
	}
}

func TestValidate_StorageS3Completo(t *testing.T) {
	cfg := baseConfig()
	cfg.Storage = StorageConf{Enabled: true, Driver: "s3", Bucket: "b", CacheRoot: "cache"}

	if err := NewValidator().Validate(cfg); err != nil {
		t.Errorf("Storage s3 completo deveria passar: %v", err)
	}
}

func TestValidate_RedisSemEndereco(t *testing.T) {
	cfg := baseConfig()
	cfg.Cache.Backend = "redis"

	if err := NewValidator().Validate(cfg); err == nil {
		t.Error("Cache redis sem addr deveria falhar")
	}
}

func TestValidate_UpstreamSemCredencial(t *testing.T) {
	cfg := baseConfig()
	cfg.Upstream = UpstreamConf{Enabled: true, BaseURL: "https://parser.example.com"}

	if err := NewValidator().Validate(cfg); err == nil {
		t.Error("Upstream habilitado sem fonte de credencial deveria falhar")
	}
}
