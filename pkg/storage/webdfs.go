package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// WebDFSStore fala com um gateway de arquivos HTTP: POST /api/fs/get devolve
// {code, data:{raw_url}} para leitura e PUT /api/fs/put grava bytes no caminho
// indicado pelo header File-Path.
type WebDFSStore struct {
	baseURL string
	token   string
	client  *http.Client
}

func NewWebDFSStore(baseURL, token string) *WebDFSStore {
	return &WebDFSStore{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		token:   token,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (s *WebDFSStore) GetFileURL(ctx context.Context, path string) (string, error) {
	payload, _ := json.Marshal(map[string]string{"path": path})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/api/fs/get", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNotCached, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", s.token)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNotCached, err)
	}
	defer resp.Body.Close()

	var out struct {
		Code int `json:"code"`
		Data struct {
			RawURL string `json:"raw_url"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("%w: %v", ErrNotCached, err)
	}

	// Só code 200 com raw_url presente conta como hit; qualquer outra coisa é ausência
	if out.Code != 200 || out.Data.RawURL == "" {
		return "", fmt.Errorf("%w: code %d para %s", ErrNotCached, out.Code, path)
	}

	return out.Data.RawURL, nil
}

func (s *WebDFSStore) Upload(ctx context.Context, path string, content []byte, contentType string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, s.baseURL+"/api/fs/put", bytes.NewReader(content))
	if err != nil {
		return fmt.Errorf("erro ao montar upload: %w", err)
	}
	req.Header.Set("Authorization", s.token)
	req.Header.Set("File-Path", url.PathEscape(path))
	req.Header.Set("Content-Type", contentType)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("erro no upload para %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("upload para %s retornou status %d", path, resp.StatusCode)
	}
	return nil
}

var _ DurableStore = (*WebDFSStore)(nil)
