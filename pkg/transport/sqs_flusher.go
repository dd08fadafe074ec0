package transport

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// SQSClient define a interface necessária para o flusher (permite Mocking)
type SQSClient interface {
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

// Flusher define a interface para descartar os method configs memoizados.
type Flusher interface {
	Flush()
}

// SQSFlusher escuta a fila de eventos de alteração de templates e força o
// refetch dos method configs sem reiniciar o serviço.
type SQSFlusher struct {
	client   SQSClient
	queueUrl string
	flusher  Flusher
	logger   zerolog.Logger
}

func NewSQSFlusher(client SQSClient, queueUrl string, flusher Flusher) *SQSFlusher {
	return &SQSFlusher{
		client:   client,
		queueUrl: queueUrl,
		flusher:  flusher,
		logger:   log.With().Str("component", "sqs_flusher").Logger(),
	}
}

// Start inicia o monitoramento (bloqueante)
func (s *SQSFlusher) Start(ctx context.Context) {
	if s.queueUrl == "" {
		s.logger.Warn().Msg("URL da fila SQS não configurada. Hot Reload desativado.")
		return
	}

	s.logger.Info().Str("queue", s.queueUrl).Msg("📡 Monitorando fila SQS para Hot Reload")

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("Parando monitoramento SQS")
			return
		default:
			out, err := s.client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
				QueueUrl:            aws.String(s.queueUrl),
				MaxNumberOfMessages: 1,
				WaitTimeSeconds:     20, // Long polling
			})

			if err != nil {
				if ctx.Err() != nil {
					return
				}
				s.logger.Error().Err(err).Msg("Erro no SQS. Retentando em 5s...")
				time.Sleep(5 * time.Second)
				continue
			}

			if len(out.Messages) > 0 {
				s.logger.Info().Msg("🔔 Evento de alteração de templates recebido via SQS!")

				s.flusher.Flush()
				s.logger.Info().Msg("✅ Method configs descartados, próximo acesso refaz o fetch")

				_, _ = s.client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
					QueueUrl:      aws.String(s.queueUrl),
					ReceiptHandle: out.Messages[0].ReceiptHandle,
				})
			}
		}
	}
}
