package cache

import (
	"context"
	"time"
)

// Store define o contrato do Tier 1 (cache rápido de resultados).
// A implementação padrão vive em memória; redis entra quando o cache
// precisa ser compartilhado entre instâncias.
type Store interface {
	// Get devolve (nil, false) em miss ou expiração.
	Get(ctx context.Context, key string) ([]byte, bool)
	// Set grava com o TTL informado. TTL <= 0 significa não cachear.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Delete é idempotente: remover chave inexistente não é erro.
	Delete(ctx context.Context, key string) error
}
