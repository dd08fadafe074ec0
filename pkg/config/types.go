package config

import "time"

// ServiceConfig representa a estrutura raiz do arquivo YAML do serviço.
type ServiceConfig struct {
	Version  string         `yaml:"version" validate:"required"`
	Service  ServiceDetails `yaml:"service" validate:"required"`
	Methods  MethodsConf    `yaml:"methods" validate:"required"`
	Upstream UpstreamConf   `yaml:"upstream"`
	Storage  StorageConf    `yaml:"storage"`
	Cache    CacheConf      `yaml:"cache"`
	Reload   ReloadConf     `yaml:"reload"`
}

// ServiceDetails contém os metadados e configurações de runtime do serviço.
type ServiceDetails struct {
	Name    string      `yaml:"name" validate:"required,hostname_rfc1123"`
	Runtime string      `yaml:"runtime" validate:"required,oneof=local lambda ecs eks ec2"`
	Port    int         `yaml:"port" validate:"required_if=Runtime local"` // Obrigatório apenas se local
	Timeout string      `yaml:"timeout"`                                   // Ex: "500ms", "2s"
	Logging LoggingConf `yaml:"logging"`
	Metrics MetricsConf `yaml:"metrics"`
}

// MethodsConf aponta para a fonte remota dos templates de método (platform x operação).
type MethodsConf struct {
	BaseURL  string `yaml:"base_url" validate:"required,url"`
	CacheTTL string `yaml:"cache_ttl"` // default: 24h
}

// UpstreamConf descreve o backend de parse (resolução de links de áudio).
// A chave de API pode vir inline ou ser resolvida no boot via Secrets Manager / Parameter Store.
type UpstreamConf struct {
	Enabled        bool   `yaml:"enabled"`
	BaseURL        string `yaml:"base_url" validate:"required_if=Enabled true,omitempty,url"`
	APIKey         string `yaml:"api_key"`
	APIKeySecretID string `yaml:"api_key_secret_id"`
	APIKeySSMPath  string `yaml:"api_key_ssm_path"`
	Region         string `yaml:"region"`
	Timeout        string `yaml:"timeout"`
}

// StorageConf descreve o cache durável (Tier 2), compartilhado entre processos.
type StorageConf struct {
	Enabled       bool   `yaml:"enabled"`
	Driver        string `yaml:"driver" validate:"omitempty,oneof=webdfs s3"`
	BaseURL       string `yaml:"base_url"`
	Token         string `yaml:"token"`
	TokenSecretID string `yaml:"token_secret_id"`
	Bucket        string `yaml:"bucket"`
	Region        string `yaml:"region"`
	CacheRoot     string `yaml:"cache_root"`
}

// CacheConf configura o Tier 1 (em processo por padrão, redis para cache compartilhado).
type CacheConf struct {
	Backend string    `yaml:"backend" validate:"omitempty,oneof=memory redis"`
	TTL     string    `yaml:"ttl"` // default: 24h
	Redis   RedisConf `yaml:"redis"`
}

type RedisConf struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
}

// ReloadConf habilita o flush do cache de method configs via fila SQS (hot reload).
type ReloadConf struct {
	SQSQueueURL string `yaml:"sqs_queue_url"`
	Region      string `yaml:"region"`
}

type LoggingConf struct {
	Enabled bool   `yaml:"enabled"`
	Level   string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
	Format  string `yaml:"format" validate:"omitempty,oneof=json console"`
}

type MetricsConf struct {
	Datadog DatadogConf `yaml:"datadog"`
}

type DatadogConf struct {
	Enabled   bool   `yaml:"enabled" env:"DD_ENABLED"`
	Addr      string `yaml:"addr" env:"DD_AGENT_HOST" validate:"required_if=Enabled true"`
	Namespace string `yaml:"namespace"`
}

const (
	defaultTimeout  = 30 * time.Second
	defaultCacheTTL = 24 * time.Hour
)

func parseDuration(raw string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func (s ServiceDetails) GetTimeout() time.Duration {
	return parseDuration(s.Timeout, defaultTimeout)
}

func (m MethodsConf) GetCacheTTL() time.Duration {
	return parseDuration(m.CacheTTL, defaultCacheTTL)
}

func (u UpstreamConf) GetTimeout() time.Duration {
	return parseDuration(u.Timeout, defaultTimeout)
}

func (c CacheConf) GetTTL() time.Duration {
	return parseDuration(c.TTL, defaultCacheTTL)
}
