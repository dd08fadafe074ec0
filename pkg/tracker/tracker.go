package tracker

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

// Tracker garante no máximo uma tarefa de população em voo por chave lógica.
// Vários callers podem pedir o mesmo recurso antes da escrita durável terminar;
// só o primeiro dispara producer+sink, os demais recebem o sinal de conclusão
// da tarefa já em andamento.
type Tracker struct {
	group  singleflight.Group
	logger zerolog.Logger

	mu       sync.Mutex
	inflight map[string]struct{}
}

func New() *Tracker {
	return &Tracker{
		logger:   log.With().Str("component", "tracker").Logger(),
		inflight: make(map[string]struct{}),
	}
}

// EnsureCached dispara (ou adere a) a tarefa de população da chave: producer
// baixa os bytes, sink grava no tier durável. O canal devolvido sinaliza a
// conclusão compartilhada — o caller pode aguardar, mas o caminho de requisição
// nunca bloqueia nele. A tarefa roda em contexto próprio: uma vez iniciada,
// segue até o fim independente do ciclo de vida da requisição de origem.
func (t *Tracker) EnsureCached(key string, producer func(ctx context.Context) ([]byte, error), sink func(ctx context.Context, data []byte) error) <-chan error {
	results := t.group.DoChan(key, func() (interface{}, error) {
		t.markRunning(key)
		// Desregistro incondicional: sucesso, falha ou pânico — uma tarefa
		// travada não pode bloquear retentativas futuras da mesma chave.
		defer t.markDone(key)

		ctx := context.Background()

		data, err := producer(ctx)
		if err != nil {
			return nil, err
		}
		return nil, sink(ctx, data)
	})

	done := make(chan error, 1)
	go func() {
		res := <-results
		if res.Err != nil {
			// Falha de população é melhor esforço: log e nada de retry
			// automático — a próxima requisição da chave recomeça do zero.
			t.logger.Warn().Err(res.Err).Str("key", key).Msg("população do cache durável falhou")
		}
		done <- res.Err
	}()
	return done
}

// InFlight informa se existe tarefa em execução para a chave.
func (t *Tracker) InFlight(key string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.inflight[key]
	return ok
}

// Pending informa quantas tarefas estão em execução (hook de drain/observação).
func (t *Tracker) Pending() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.inflight)
}

func (t *Tracker) markRunning(key string) {
	t.mu.Lock()
	t.inflight[key] = struct{}{}
	t.mu.Unlock()
}

func (t *Tracker) markDone(key string) {
	t.mu.Lock()
	delete(t.inflight, key)
	t.mu.Unlock()
}
