package method

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Source busca templates de método no serviço remoto de configuração.
type Source struct {
	baseURL string
	client  *http.Client
}

func NewSource(baseURL string, timeout time.Duration) *Source {
	return &Source{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// Fetch executa um GET em {base}/v1/methods/{platform}/{operation}.
// Sem retry interno: política de retentativa, se existir, é do caller.
func (s *Source) Fetch(ctx context.Context, platform, operation string) (*Config, error) {
	url := fmt.Sprintf("%s/v1/methods/%s/%s", s.baseURL, platform, operation)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigUnavailable, err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d em %s", ErrConfigUnavailable, resp.StatusCode, url)
	}

	var payload struct {
		Data *Config `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigUnavailable, err)
	}

	if payload.Data == nil || payload.Data.URL == "" {
		return nil, fmt.Errorf("%w: %s/%s", ErrConfigMissing, platform, operation)
	}

	return payload.Data, nil
}
