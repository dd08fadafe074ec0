package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/raywall/music-api-toolkit/pkg/cache"
	"github.com/raywall/music-api-toolkit/pkg/storage"
	"github.com/raywall/music-api-toolkit/pkg/tracker"
	"github.com/raywall/music-api-toolkit/pkg/upstream"
)

type fakeExecutor struct {
	mu      sync.Mutex
	calls   int
	lastOp  string
	lastVar map[string]string
	result  interface{}
	err     error
}

func (f *fakeExecutor) Execute(ctx context.Context, platform, operation string, vars map[string]string) (interface{}, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.lastOp = operation
	f.lastVar = vars
	return f.result, f.err
}

type fakeParser struct {
	mu        sync.Mutex
	calls     int
	resp      *upstream.Response
	err       error
	mediaData []byte
	mediaErr  error
}

func (f *fakeParser) Parse(ctx context.Context, platform string, ids []string, quality string) (*upstream.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.resp, f.err
}

func (f *fakeParser) DownloadMedia(ctx context.Context, mediaURL string) ([]byte, string, error) {
	return f.mediaData, "audio/mpeg", f.mediaErr
}

func (f *fakeParser) parseCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type noopMetrics struct{}

func (noopMetrics) Count(string, float64, []string) error     { return nil }
func (noopMetrics) Gauge(string, float64, []string) error     { return nil }
func (noopMetrics) Histogram(string, float64, []string) error { return nil }

func newTestService(exec *fakeExecutor, parser *fakeParser, durable storage.DurableStore) *Service {
	var backend ParseBackend
	if parser != nil {
		backend = parser
	}
	return New(Deps{
		Executor:  exec,
		Parser:    backend,
		Tier1:     cache.NewMemoryStore(),
		Durable:   durable,
		Tracker:   tracker.New(),
		Metrics:   noopMetrics{},
		CacheRoot: "cache",
		TTL:       time.Hour,
	})
}

func TestSearchCacheiaResultado(t *testing.T) {
	exec := &fakeExecutor{result: map[string]interface{}{"total": float64(1)}}
	svc := newTestService(exec, nil, nil)

	ctx := context.Background()
	first, err := svc.Search(ctx, "netease", "foo", "1", "20")
	if err != nil {
		t.Fatalf("Erro inesperado: %v", err)
	}

	second, err := svc.Search(ctx, "netease", "foo", "1", "20")
	if err != nil {
		t.Fatalf("Erro inesperado na segunda chamada: %v", err)
	}

	if exec.calls != 1 {
		t.Errorf("Executor deveria ser chamado uma vez, foi %d", exec.calls)
	}

	fm, sm := first.(map[string]interface{}), second.(map[string]interface{})
	if fm["total"] != sm["total"] {
		t.Errorf("Resultado cacheado divergente: %v vs %v", first, second)
	}
}

func TestSearchPaginaDiferenteNaoCompartilhaCache(t *testing.T) {
	exec := &fakeExecutor{result: map[string]interface{}{"ok": true}}
	svc := newTestService(exec, nil, nil)

	ctx := context.Background()
	svc.Search(ctx, "netease", "foo", "1", "20")
	svc.Search(ctx, "netease", "foo", "2", "20")

	if exec.calls != 2 {
		t.Errorf("Páginas diferentes deveriam gerar chaves diferentes: %d chamadas", exec.calls)
	}
}

func TestSearchPropagaVariaveis(t *testing.T) {
	exec := &fakeExecutor{result: map[string]interface{}{}}
	svc := newTestService(exec, nil, nil)

	svc.Search(context.Background(), "qq", "banda", "3", "50")

	if exec.lastOp != "search" {
		t.Errorf("Operação incorreta: %s", exec.lastOp)
	}
	want := map[string]string{"keyword": "banda", "page": "3", "pageSize": "50"}
	for k, v := range want {
		if exec.lastVar[k] != v {
			t.Errorf("Variável %s esperada %q, recebida %q", k, v, exec.lastVar[k])
		}
	}
}

func TestToplistEPlaylistUsamID(t *testing.T) {
	exec := &fakeExecutor{result: map[string]interface{}{}}
	svc := newTestService(exec, nil, nil)
	ctx := context.Background()

	if _, err := svc.Toplist(ctx, "netease", "42"); err != nil {
		t.Fatalf("Erro inesperado: %v", err)
	}
	if exec.lastOp != "toplist" || exec.lastVar["id"] != "42" {
		t.Errorf("Toplist com variáveis incorretas: op=%s vars=%v", exec.lastOp, exec.lastVar)
	}

	if _, err := svc.Playlist(ctx, "netease", "99"); err != nil {
		t.Fatalf("Erro inesperado: %v", err)
	}
	if exec.lastOp != "playlist" || exec.lastVar["id"] != "99" {
		t.Errorf("Playlist com variáveis incorretas: op=%s vars=%v", exec.lastOp, exec.lastVar)
	}
}

func TestErroDoExecutorNaoEntraNoCache(t *testing.T) {
	exec := &fakeExecutor{err: errors.New("boom")}
	svc := newTestService(exec, nil, nil)
	ctx := context.Background()

	if _, err := svc.Toplists(ctx, "netease"); err == nil {
		t.Fatal("Erro do executor deveria propagar")
	}

	exec.err = nil
	exec.result = map[string]interface{}{"ok": true}
	if _, err := svc.Toplists(ctx, "netease"); err != nil {
		t.Fatalf("Retentativa deveria funcionar: %v", err)
	}
	if exec.calls != 2 {
		t.Errorf("Falha não pode ser memoizada: %d chamadas", exec.calls)
	}
}

func TestParseDesabilitado(t *testing.T) {
	svc := newTestService(&fakeExecutor{}, nil, nil)

	_, err := svc.Parse(context.Background(), "netease", []string{"1"}, "320k")
	if !errors.Is(err, ErrParseDisabled) {
		t.Errorf("Esperado ErrParseDisabled, recebido %v", err)
	}
}
