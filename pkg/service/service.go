package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/raywall/music-api-toolkit/pkg/cache"
	"github.com/raywall/music-api-toolkit/pkg/metrics"
	"github.com/raywall/music-api-toolkit/pkg/storage"
	"github.com/raywall/music-api-toolkit/pkg/tracker"
	"github.com/raywall/music-api-toolkit/pkg/upstream"
)

// ErrParseDisabled indica que o backend de parse não está habilitado no YAML.
var ErrParseDisabled = errors.New("operação de parse desabilitada na configuração")

// MethodExecutor abstrai o executor de templates (permite Mocking nos testes).
type MethodExecutor interface {
	Execute(ctx context.Context, platform, operation string, vars map[string]string) (interface{}, error)
}

// ParseBackend abstrai o cliente do backend de parse.
type ParseBackend interface {
	Parse(ctx context.Context, platform string, ids []string, quality string) (*upstream.Response, error)
	DownloadMedia(ctx context.Context, mediaURL string) ([]byte, string, error)
}

// Deps agrupa os colaboradores do serviço. Parser e Durable são opcionais:
// nil desliga o parse e o tier durável, respectivamente.
type Deps struct {
	Executor  MethodExecutor
	Parser    ParseBackend
	Tier1     cache.Store
	Durable   storage.DurableStore
	Tracker   *tracker.Tracker
	Metrics   metrics.Provider
	CacheRoot string
	TTL       time.Duration
}

// Service orquestra as operações de catálogo e parse, envelopadas pelo
// cache de resultados em dois tiers.
type Service struct {
	deps Deps

	// cliente usado para buscar blobs JSON apontados pelo tier durável
	blobClient *http.Client
	logger     zerolog.Logger
}

func New(deps Deps) *Service {
	return &Service{
		deps:       deps,
		blobClient: &http.Client{Timeout: 30 * time.Second},
		logger:     log.With().Str("component", "service").Logger(),
	}
}

// Toplists devolve as paradas disponíveis da plataforma.
func (s *Service) Toplists(ctx context.Context, platform string) (interface{}, error) {
	key := cache.BuildKey("toplists", platform)
	return s.cached(ctx, key, func() (interface{}, error) {
		return s.deps.Executor.Execute(ctx, platform, "toplists", nil)
	})
}

// Toplist devolve as faixas de uma parada específica.
func (s *Service) Toplist(ctx context.Context, platform, id string) (interface{}, error) {
	key := cache.BuildKey("toplist", platform, id)
	return s.cached(ctx, key, func() (interface{}, error) {
		return s.deps.Executor.Execute(ctx, platform, "toplist", map[string]string{"id": id})
	})
}

// Playlist devolve as faixas de uma playlist pública.
func (s *Service) Playlist(ctx context.Context, platform, id string) (interface{}, error) {
	key := cache.BuildKey("playlist", platform, id)
	return s.cached(ctx, key, func() (interface{}, error) {
		return s.deps.Executor.Execute(ctx, platform, "playlist", map[string]string{"id": id})
	})
}

// Search busca faixas por palavra-chave, com paginação.
func (s *Service) Search(ctx context.Context, platform, keyword, page, pageSize string) (interface{}, error) {
	key := cache.BuildKey("search", platform, keyword, page, pageSize)
	return s.cached(ctx, key, func() (interface{}, error) {
		return s.deps.Executor.Execute(ctx, platform, "search", map[string]string{
			"keyword":  keyword,
			"page":     page,
			"pageSize": pageSize,
		})
	})
}

// cached envelopa uma operação com leitura e escrita no Tier 1.
func (s *Service) cached(ctx context.Context, key string, fetch func() (interface{}, error)) (interface{}, error) {
	if raw, ok := s.deps.Tier1.Get(ctx, key); ok {
		var out interface{}
		if err := json.Unmarshal(raw, &out); err == nil {
			s.deps.Metrics.Count("cache.result.hit", 1, []string{"tier:1"})
			return out, nil
		}
		// Entrada corrompida conta como miss e é sobrescrita adiante
		s.logger.Warn().Str("key", key).Msg("entrada corrompida no tier 1, ignorando")
	}
	s.deps.Metrics.Count("cache.result.miss", 1, []string{"tier:1"})

	result, err := fetch()
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(result); err == nil {
		if err := s.deps.Tier1.Set(ctx, key, raw, s.deps.TTL); err != nil {
			s.logger.Warn().Err(err).Str("key", key).Msg("falha ao gravar no tier 1")
		}
	}
	return result, nil
}
