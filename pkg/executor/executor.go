package executor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/raywall/music-api-toolkit/pkg/expr"
	"github.com/raywall/music-api-toolkit/pkg/method"
	"github.com/rs/zerolog/log"
)

// ErrUpstreamRequest indica falha de rede ou de decode na chamada à API da plataforma.
var ErrUpstreamRequest = errors.New("falha na chamada à API da plataforma")

// User-Agent identificador padrão; headers do template vencem em conflito.
const defaultUserAgent = "MusicAPIToolkit/1.0"

// ConfigResolver abstrai o cache de method configs (permite Mocking nos testes).
type ConfigResolver interface {
	Get(ctx context.Context, platform, operation string) (*method.Config, error)
}

// Executor monta e dispara a requisição descrita pelo template do método,
// resolvido contra as variáveis do caller, e aplica transform e pós-processamento
// de plataforma sobre a resposta.
type Executor struct {
	configs  ConfigResolver
	resolver *expr.Resolver
	client   *http.Client
}

func New(configs ConfigResolver, timeout time.Duration) *Executor {
	return &Executor{
		configs:  configs,
		resolver: expr.NewResolver(),
		client:   &http.Client{Timeout: timeout},
	}
}

// Execute roda a operação para a plataforma com as variáveis informadas e
// devolve o JSON (possivelmente transformado e reescrito) da resposta.
func (e *Executor) Execute(ctx context.Context, platform, operation string, vars map[string]string) (interface{}, error) {
	cfg, err := e.configs.Get(ctx, platform, operation)
	if err != nil {
		return nil, err
	}
	if cfg == nil || cfg.URL == "" {
		return nil, fmt.Errorf("%w: %s/%s", method.ErrConfigMissing, platform, operation)
	}

	bindings := expr.BuildBindings(vars)

	// A URL do template também pode carregar placeholders (tipicamente é estática)
	targetURL := e.resolver.ResolveString(cfg.URL, bindings)

	httpMethod := strings.ToUpper(cfg.Method)
	if httpMethod == "" {
		httpMethod = http.MethodGet
	}

	var bodyReader *bytes.Reader
	switch httpMethod {
	case http.MethodGet:
		if len(cfg.Params) > 0 {
			resolved, ok := e.resolver.Resolve(cfg.Params, bindings).(map[string]interface{})
			if ok && len(resolved) > 0 {
				targetURL, err = appendQuery(targetURL, resolved)
				if err != nil {
					return nil, fmt.Errorf("%w: %v", ErrUpstreamRequest, err)
				}
			}
		}
		bodyReader = bytes.NewReader(nil)

	case http.MethodPost:
		bodyReader = bytes.NewReader(nil)
		if cfg.Body != nil {
			resolved := e.resolver.Resolve(cfg.Body, bindings)
			payload, err := json.Marshal(resolved)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrUpstreamRequest, err)
			}
			bodyReader = bytes.NewReader(payload)
		}

	default:
		return nil, fmt.Errorf("%w: método HTTP não suportado '%s'", method.ErrConfigMissing, cfg.Method)
	}

	req, err := http.NewRequestWithContext(ctx, httpMethod, targetURL, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamRequest, err)
	}

	// Default primeiro; headers do template são aplicados depois e vencem no conflito
	req.Header.Set("User-Agent", defaultUserAgent)
	if httpMethod == http.MethodPost && cfg.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range cfg.Headers {
		req.Header.Set(k, v)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamRequest, err)
	}
	defer resp.Body.Close()

	var result interface{}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamRequest, err)
	}

	// Transform é fail-soft: falha só gera log e a resposta original segue adiante
	if cfg.Transform != "" {
		transformed, err := expr.EvalTransform(cfg.Transform, result)
		if err != nil {
			log.Ctx(ctx).Warn().Err(err).
				Str("platform", platform).
				Str("operation", operation).
				Msg("falha no transform, devolvendo resposta original")
		} else {
			result = transformed
		}
	}

	if platform == "kuwo" {
		result = RewriteProxyURLs(result)
	}

	return result, nil
}

// appendQuery anexa os params resolvidos como query string da URL base.
func appendQuery(rawURL string, params map[string]interface{}) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}

	q := u.Query()
	for k, v := range params {
		q.Set(k, expr.FormatValue(v))
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}
