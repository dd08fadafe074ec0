package method

import "errors"

var (
	// ErrConfigUnavailable indica que o template remoto não pôde ser buscado.
	ErrConfigUnavailable = errors.New("method config indisponível")
	// ErrConfigMissing indica que a resposta veio sem payload utilizável.
	ErrConfigMissing = errors.New("method config sem payload")
)

// Config descreve como executar uma operação para uma plataforma: o template
// de requisição buscado da fonte remota. Imutável depois de buscado — a
// resolução de placeholders sempre trabalha sobre uma cópia derivada.
type Config struct {
	URL       string                 `json:"url"`
	Method    string                 `json:"method"` // GET | POST
	Headers   map[string]string      `json:"headers"`
	Params    map[string]interface{} `json:"params"`
	Body      interface{}            `json:"body"`
	Transform string                 `json:"transform"`
}
