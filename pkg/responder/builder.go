package responder

import (
	"encoding/json"
	"net/http"
)

// ErrorPayload é o envelope de erro devolvido pelo front door.
type ErrorPayload struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// JSON serializa o payload com o status informado.
func JSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

// Error monta o envelope estruturado de erro. O campo "error" carrega o
// detalhe técnico; "message" é o texto estável para o cliente.
func Error(w http.ResponseWriter, status int, message string, err error) {
	payload := ErrorPayload{
		Code:    status,
		Message: message,
	}
	if err != nil {
		payload.Error = err.Error()
	}
	JSON(w, status, payload)
}
