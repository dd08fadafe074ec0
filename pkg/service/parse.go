package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"

	"github.com/raywall/music-api-toolkit/pkg/cache"
	"github.com/raywall/music-api-toolkit/pkg/executor"
	"github.com/raywall/music-api-toolkit/pkg/expr"
	"github.com/raywall/music-api-toolkit/pkg/storage"
)

// Parse resolve uma lista de IDs em links de áudio, com leitura nos dois tiers
// antes de falar com o backend e escrita durável assíncrona depois.
func (s *Service) Parse(ctx context.Context, platform string, ids []string, quality string) (interface{}, error) {
	if s.deps.Parser == nil {
		return nil, ErrParseDisabled
	}

	sorted := append([]string(nil), ids...)
	sort.Strings(sorted)
	key := cache.BuildKey("parse", platform, strings.Join(sorted, "-"), quality)

	// Tier 1
	if raw, ok := s.deps.Tier1.Get(ctx, key); ok {
		var out interface{}
		if err := json.Unmarshal(raw, &out); err == nil {
			s.deps.Metrics.Count("cache.result.hit", 1, []string{"tier:1"})
			return out, nil
		}
	}

	// Tier 2: hit durável evita a chamada ao backend por completo
	resultPath := storage.ResultPath(s.deps.CacheRoot, platform, ids, quality)
	if cached, ok := s.readDurableResult(ctx, resultPath); ok {
		s.deps.Metrics.Count("cache.result.hit", 1, []string{"tier:2"})
		if raw, err := json.Marshal(cached); err == nil {
			s.deps.Tier1.Set(ctx, key, raw, s.deps.TTL)
		}
		return cached, nil
	}
	s.deps.Metrics.Count("cache.result.miss", 1, []string{"tier:2"})

	resp, err := s.deps.Parser.Parse(ctx, platform, ids, quality)
	if err != nil {
		return nil, err
	}

	// Código de erro do backend segue para o caller, mas nunca entra no cache
	if resp.Code != 0 {
		return resp, nil
	}

	s.populateMedia(ctx, platform, quality, resp.Data)

	if platform == "kuwo" {
		resp.Data = executor.RewriteProxyURLs(resp.Data)
	}

	raw, merr := json.Marshal(resp)
	if merr == nil {
		if err := s.deps.Tier1.Set(ctx, key, raw, s.deps.TTL); err != nil {
			s.logger.Warn().Err(err).Str("key", key).Msg("falha ao gravar no tier 1")
		}
	}

	// Escrita durável é melhor esforço e não atrasa a resposta
	if s.deps.Durable != nil && merr == nil {
		go func() {
			ctx := context.Background()
			if err := s.deps.Durable.Upload(ctx, resultPath, raw, "application/json"); err != nil {
				s.logger.Warn().Err(err).Str("path", resultPath).Msg("falha na escrita durável do resultado")
			}
		}()
	}

	return resp, nil
}

// readDurableResult tenta ler e decodificar o blob JSON do tier durável.
// Qualquer falha (ausência, rede, corpo malformado) conta como miss.
func (s *Service) readDurableResult(ctx context.Context, path string) (interface{}, bool) {
	if s.deps.Durable == nil {
		return nil, false
	}

	fileURL, err := s.deps.Durable.GetFileURL(ctx, path)
	if err != nil {
		return nil, false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return nil, false
	}
	resp, err := s.blobClient.Do(req)
	if err != nil {
		s.logger.Warn().Err(err).Str("path", path).Msg("falha ao buscar blob do tier durável")
		return nil, false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, false
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, false
	}

	var out interface{}
	if err := json.Unmarshal(body, &out); err != nil {
		s.logger.Warn().Err(err).Str("path", path).Msg("blob durável malformado, tratando como miss")
		return nil, false
	}
	return out, true
}

// populateMedia verifica a presença durável de cada faixa resolvida. Presente:
// a URL é reescrita para a durável e o item marcado cached. Ausente: o item é
// marcado não-cached e a população dispara em background via single-flight —
// a resposta ao caller não espera.
func (s *Service) populateMedia(ctx context.Context, platform, quality string, data interface{}) {
	if s.deps.Durable == nil || s.deps.Tracker == nil {
		return
	}

	items, ok := data.([]interface{})
	if !ok {
		return
	}

	for _, entry := range items {
		item, ok := entry.(map[string]interface{})
		if !ok {
			continue
		}

		idVal, hasID := item["id"]
		mediaURL, _ := item["url"].(string)
		if !hasID || idVal == nil || mediaURL == "" {
			continue
		}
		songID := expr.FormatValue(idVal)

		mediaPath := storage.MediaPath(s.deps.CacheRoot, platform, songID, quality)
		if durableURL, err := s.deps.Durable.GetFileURL(ctx, mediaPath); err == nil {
			item["url"] = durableURL
			item["cached"] = true
			continue
		}

		item["cached"] = false
		s.enqueueMedia(platform, songID, quality, mediaURL, mediaPath)
	}
}

func (s *Service) enqueueMedia(platform, songID, quality, mediaURL, mediaPath string) {
	taskKey := cache.BuildKey("media", platform, songID, quality)

	// producer e sink rodam em sequência dentro do mesmo voo, então o
	// content-type pode atravessar por captura
	var contentType string
	s.deps.Tracker.EnsureCached(taskKey,
		func(ctx context.Context) ([]byte, error) {
			data, ct, err := s.deps.Parser.DownloadMedia(ctx, mediaURL)
			if err != nil {
				return nil, fmt.Errorf("download de mídia %s: %w", songID, err)
			}
			contentType = ct
			return data, nil
		},
		func(ctx context.Context, data []byte) error {
			return s.deps.Durable.Upload(ctx, mediaPath, data, contentType)
		},
	)
}
