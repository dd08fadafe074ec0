package transport

import (
	"bytes"
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/rs/zerolog/log"
)

// LambdaHandler adapta eventos do API Gateway para o router HTTP, de forma
// que o modo lambda e o modo local compartilhem exatamente as mesmas rotas.
type LambdaHandler struct {
	router http.Handler
}

func NewLambdaHandler(h *Handlers) *LambdaHandler {
	return &LambdaHandler{router: NewRouter(h)}
}

// Handle converte a requisição proxy em http.Request, despacha no router e
// devolve a resposta gravada.
func (h *LambdaHandler) Handle(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	target := req.Path
	query := url.Values{}
	for k, v := range req.QueryStringParameters {
		query.Set(k, v)
	}
	if enc := query.Encode(); enc != "" {
		target += "?" + enc
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.HTTPMethod, target, strings.NewReader(req.Body))
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("evento do API Gateway inválido")
		return events.APIGatewayProxyResponse{
			StatusCode: http.StatusBadRequest,
			Body:       `{"code":400,"message":"requisição inválida"}`,
		}, nil
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	rec := &lambdaRecorder{header: make(http.Header)}
	h.router.ServeHTTP(rec, httpReq)

	respHeaders := make(map[string]string, len(rec.header))
	for k, v := range rec.header {
		if len(v) > 0 {
			respHeaders[k] = v[0]
		}
	}

	return events.APIGatewayProxyResponse{
		StatusCode: rec.status,
		Headers:    respHeaders,
		Body:       rec.body.String(),
	}, nil
}

// lambdaRecorder captura a resposta do router para reembalar no formato do
// API Gateway.
type lambdaRecorder struct {
	header http.Header
	body   bytes.Buffer
	status int
}

func (r *lambdaRecorder) Header() http.Header { return r.header }

func (r *lambdaRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.body.Write(b)
}

func (r *lambdaRecorder) WriteHeader(code int) {
	if r.status == 0 {
		r.status = code
	}
}
