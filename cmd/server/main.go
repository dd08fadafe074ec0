package main

import (
	"context"
	"fmt"
	stdlog "log"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/rs/zerolog/log"

	"github.com/raywall/music-api-toolkit/pkg/cache"
	"github.com/raywall/music-api-toolkit/pkg/config"
	"github.com/raywall/music-api-toolkit/pkg/executor"
	"github.com/raywall/music-api-toolkit/pkg/logger"
	"github.com/raywall/music-api-toolkit/pkg/method"
	"github.com/raywall/music-api-toolkit/pkg/observability"
	"github.com/raywall/music-api-toolkit/pkg/service"
	"github.com/raywall/music-api-toolkit/pkg/storage"
	"github.com/raywall/music-api-toolkit/pkg/tracker"
	"github.com/raywall/music-api-toolkit/pkg/transport"
	"github.com/raywall/music-api-toolkit/pkg/upstream"
)

var (
	configPath string
	// Variáveis injetáveis para mocking
	serverStarter = transport.StartHTTPServer
	lambdaStarter = lambda.Start
)

func init() {
	configPath = os.Getenv("CONFIG_FILE_PATH")
}

func main() {
	// A validação ocorre aqui para não quebrar os testes unitários
	if configPath == "" {
		stdlog.Fatalln("FATAL: CONFIG_FILE_PATH não definido")
	}

	if err := run(context.Background(), configPath); err != nil {
		stdlog.Fatalf("FATAL: %v", err)
	}
}

// run contém a lógica principal testável
func run(ctx context.Context, cfgPath string) error {
	// 1. Carrega e valida a configuração (arquivo local ou s3://)
	cfg, err := config.Load(ctx, cfgPath)
	if err != nil {
		return err
	}

	log.Logger = logger.Configure(cfg.Service.Logging)

	// 2. Resolve credenciais referenciadas por ID (Secrets Manager / SSM)
	if err := config.ResolveCredentials(ctx, cfg); err != nil {
		return err
	}

	provider, err := observability.SetupMetrics(cfg.Service.Metrics)
	if err != nil {
		return err
	}

	timeout := cfg.Service.GetTimeout()

	// 3. Monta a cadeia de execução: templates remotos -> executor
	methodCache := method.NewCache(
		method.NewSource(cfg.Methods.BaseURL, timeout),
		cfg.Methods.GetCacheTTL(),
	)
	exec := executor.New(methodCache, timeout)

	// 4. Tiers de cache de resultado
	var tier1 cache.Store = cache.NewMemoryStore()
	if cfg.Cache.Backend == "redis" {
		tier1 = cache.NewRedisStore(cfg.Cache.Redis.Addr, cfg.Cache.Redis.Password)
	}

	var durable storage.DurableStore
	if cfg.Storage.Enabled {
		durable, err = storage.NewFromConfig(ctx, cfg.Storage)
		if err != nil {
			return err
		}
	}

	var parser service.ParseBackend
	if cfg.Upstream.Enabled {
		parser = upstream.NewClient(cfg.Upstream.BaseURL, cfg.Upstream.APIKey, cfg.Upstream.GetTimeout())
	}

	svc := service.New(service.Deps{
		Executor:  exec,
		Parser:    parser,
		Tier1:     tier1,
		Durable:   durable,
		Tracker:   tracker.New(),
		Metrics:   provider,
		CacheRoot: cfg.Storage.CacheRoot,
		TTL:       cfg.Cache.GetTTL(),
	})
	handlers := transport.NewHandlers(svc, timeout)

	// 5. Hot reload dos templates via SQS (opcional)
	if cfg.Reload.SQSQueueURL != "" {
		awsCfg, err := config.GetAWSConfig(ctx, cfg.Reload.Region)
		if err != nil {
			return err
		}
		flusher := transport.NewSQSFlusher(sqs.NewFromConfig(awsCfg), cfg.Reload.SQSQueueURL, methodCache)
		go flusher.Start(ctx)
	}

	// 6. Seleciona Runtime Strategy
	switch cfg.Service.Runtime {
	case "local", "ec2", "ecs", "eks":
		return serverStarter(cfg.Service.Port, handlers)
	case "lambda":
		lambdaStarter(transport.NewLambdaHandler(handlers).Handle)
		return nil
	default:
		return fmt.Errorf("runtime desconhecido: %s", cfg.Service.Runtime)
	}
}
