package transport

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/raywall/music-api-toolkit/pkg/executor"
	"github.com/raywall/music-api-toolkit/pkg/method"
	"github.com/raywall/music-api-toolkit/pkg/responder"
	"github.com/raywall/music-api-toolkit/pkg/service"
	"github.com/raywall/music-api-toolkit/pkg/upstream"
)

// Handlers expõe a superfície de operações do serviço sobre HTTP.
type Handlers struct {
	svc         *service.Service
	timeout     time.Duration
	proxyClient *http.Client
}

func NewHandlers(svc *service.Service, timeout time.Duration) *Handlers {
	return &Handlers{
		svc:         svc,
		timeout:     timeout,
		proxyClient: &http.Client{Timeout: timeout},
	}
}

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	responder.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handlers) Toplists(w http.ResponseWriter, r *http.Request) {
	params, ok := requireQuery(w, r, "platform")
	if !ok {
		return
	}

	ctx, cancel := h.opCtx(r)
	defer cancel()

	result, err := h.svc.Toplists(ctx, params["platform"])
	h.respond(ctx, w, result, err)
}

func (h *Handlers) Toplist(w http.ResponseWriter, r *http.Request) {
	params, ok := requireQuery(w, r, "platform", "id")
	if !ok {
		return
	}

	ctx, cancel := h.opCtx(r)
	defer cancel()

	result, err := h.svc.Toplist(ctx, params["platform"], params["id"])
	h.respond(ctx, w, result, err)
}

func (h *Handlers) Playlist(w http.ResponseWriter, r *http.Request) {
	params, ok := requireQuery(w, r, "platform", "id")
	if !ok {
		return
	}

	ctx, cancel := h.opCtx(r)
	defer cancel()

	result, err := h.svc.Playlist(ctx, params["platform"], params["id"])
	h.respond(ctx, w, result, err)
}

func (h *Handlers) Search(w http.ResponseWriter, r *http.Request) {
	params, ok := requireQuery(w, r, "platform", "keyword")
	if !ok {
		return
	}

	page := queryDefault(r, "page", "1")
	pageSize := queryDefault(r, "pageSize", "20")

	ctx, cancel := h.opCtx(r)
	defer cancel()

	result, err := h.svc.Search(ctx, params["platform"], params["keyword"], page, pageSize)
	h.respond(ctx, w, result, err)
}

type parseRequest struct {
	Platform string   `json:"platform"`
	IDs      []string `json:"ids"`
	Quality  string   `json:"quality"`
}

// Parse aceita GET (ids separados por vírgula na query) e POST (body JSON).
func (h *Handlers) Parse(w http.ResponseWriter, r *http.Request) {
	var in parseRequest

	switch r.Method {
	case http.MethodPost:
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			responder.Error(w, http.StatusBadRequest, "body JSON inválido", err)
			return
		}
	default:
		in.Platform = r.URL.Query().Get("platform")
		if raw := r.URL.Query().Get("ids"); raw != "" {
			for _, id := range strings.Split(raw, ",") {
				if id = strings.TrimSpace(id); id != "" {
					in.IDs = append(in.IDs, id)
				}
			}
		}
		in.Quality = r.URL.Query().Get("quality")
	}

	if in.Platform == "" || len(in.IDs) == 0 {
		responder.Error(w, http.StatusBadRequest, "parâmetros obrigatórios ausentes: platform, ids", nil)
		return
	}
	if in.Quality == "" {
		in.Quality = "320k"
	}

	ctx, cancel := h.opCtx(r)
	defer cancel()

	result, err := h.svc.Parse(ctx, in.Platform, in.IDs, in.Quality)
	h.respond(ctx, w, result, err)
}

// Proxy repassa conteúdo http dos CDNs conhecidos (imagens que o cliente não
// consegue carregar direto). Qualquer outra URL é recusada.
func (h *Handlers) Proxy(w http.ResponseWriter, r *http.Request) {
	target := r.URL.Query().Get("url")
	if target == "" {
		responder.Error(w, http.StatusBadRequest, "parâmetro obrigatório ausente: url", nil)
		return
	}
	if !executor.IsProxyableURL(target) {
		responder.Error(w, http.StatusForbidden, "URL fora dos CDNs permitidos", nil)
		return
	}

	ctx, cancel := h.opCtx(r)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		responder.Error(w, http.StatusBadRequest, "URL inválida", err)
		return
	}

	resp, err := h.proxyClient.Do(req)
	if err != nil {
		responder.Error(w, http.StatusBadGateway, "falha ao buscar conteúdo no CDN", err)
		return
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "" {
		w.Header().Set("Content-Type", ct)
	}
	w.WriteHeader(resp.StatusCode)
	io.Copy(w, resp.Body)
}

func (h *Handlers) opCtx(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), h.timeout)
}

// respond mapeia o resultado (ou erro) da operação para o envelope HTTP.
func (h *Handlers) respond(ctx context.Context, w http.ResponseWriter, result interface{}, err error) {
	if err == nil {
		responder.JSON(w, http.StatusOK, result)
		return
	}

	log.Ctx(ctx).Error().Err(err).Msg("falha na execução da operação")

	switch {
	case errors.Is(err, service.ErrParseDisabled):
		responder.Error(w, http.StatusForbidden, "operação desabilitada", err)
	case errors.Is(err, method.ErrConfigUnavailable),
		errors.Is(err, method.ErrConfigMissing),
		errors.Is(err, executor.ErrUpstreamRequest),
		errors.Is(err, upstream.ErrRequestFailed):
		responder.Error(w, http.StatusBadGateway, "falha no provedor", err)
	default:
		responder.Error(w, http.StatusInternalServerError, "erro interno", err)
	}
}

func requireQuery(w http.ResponseWriter, r *http.Request, names ...string) (map[string]string, bool) {
	params := make(map[string]string, len(names))
	for _, name := range names {
		v := r.URL.Query().Get(name)
		if v == "" {
			responder.Error(w, http.StatusBadRequest, "parâmetro obrigatório ausente: "+name, nil)
			return nil, false
		}
		params[name] = v
	}
	return params, true
}

func queryDefault(r *http.Request, name, fallback string) string {
	if v := r.URL.Query().Get(name); v != "" {
		return v
	}
	return fallback
}
