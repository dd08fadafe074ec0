package storage

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/raywall/music-api-toolkit/pkg/config"
)

// ErrNotCached sinaliza ausência no tier durável. Erro de rede, código
// inesperado ou corpo malformado colapsam todos neste sentinel — para o
// Result Cache, "não consegui ler" e "não existe" são a mesma coisa.
var ErrNotCached = errors.New("objeto não encontrado no storage durável")

// DurableStore é o contrato lógico do Tier 2: um cache mais lento, endereçado
// por caminho, que sobrevive a restarts e é visível a outros processos.
// Objetos nunca são removidos por aqui (retenção é política do storage).
type DurableStore interface {
	// GetFileURL devolve a URL de leitura do objeto, ou ErrNotCached.
	GetFileURL(ctx context.Context, path string) (string, error)
	// Upload grava o conteúdo no caminho indicado.
	Upload(ctx context.Context, path string, content []byte, contentType string) error
}

// NewFromConfig instancia o driver configurado.
func NewFromConfig(ctx context.Context, cfg config.StorageConf) (DurableStore, error) {
	switch cfg.Driver {
	case "webdfs":
		return NewWebDFSStore(cfg.BaseURL, cfg.Token), nil
	case "s3":
		return NewS3Store(ctx, cfg.Bucket, cfg.Region)
	default:
		return nil, fmt.Errorf("driver de storage desconhecido: %s", cfg.Driver)
	}
}

// ResultPath monta o caminho do blob JSON de um resultado de parse:
// raiz/plataforma/json/ids-ordenados_quality.json. IDs são ordenados para que
// a mesma requisição gere sempre o mesmo caminho.
func ResultPath(root, platform string, ids []string, quality string) string {
	sorted := append([]string(nil), ids...)
	sort.Strings(sorted)
	return fmt.Sprintf("%s/%s/json/%s_%s.json",
		strings.TrimSuffix(root, "/"), platform, strings.Join(sorted, "-"), quality)
}

// MediaPath monta o caminho do blob de áudio de uma faixa individual.
func MediaPath(root, platform, songID, quality string) string {
	return fmt.Sprintf("%s/%s/%s_%s.mp3",
		strings.TrimSuffix(root, "/"), platform, songID, quality)
}
