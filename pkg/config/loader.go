package config

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"gopkg.in/yaml.v3"
)

// S3Downloader abstrai o cliente S3 para permitir Mocking nos testes.
type S3Downloader interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Load detecta o esquema da fonte (arquivo local ou s3://bucket/chave),
// carrega o YAML e valida a configuração resultante.
func Load(ctx context.Context, source string) (*ServiceConfig, error) {
	var rawData []byte
	var err error

	if strings.HasPrefix(source, "s3://") {
		rawData, err = loadFromS3(ctx, source)
	} else {
		rawData, err = os.ReadFile(source)
	}
	if err != nil {
		return nil, fmt.Errorf("erro ao ler configuração '%s': %w", source, err)
	}

	return Parse(rawData)
}

// Parse decodifica e valida os bytes do YAML de configuração.
func Parse(rawData []byte) (*ServiceConfig, error) {
	var cfg ServiceConfig
	if err := yaml.Unmarshal(rawData, &cfg); err != nil {
		return nil, fmt.Errorf("erro no parse do YAML: %w", err)
	}

	if err := NewValidator().Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func loadFromS3(ctx context.Context, source string) ([]byte, error) {
	u, err := url.Parse(source)
	if err != nil {
		return nil, fmt.Errorf("URI S3 inválida: %w", err)
	}

	awsCfg, err := GetAWSConfig(ctx, "")
	if err != nil {
		return nil, err
	}
	return downloadFromS3(ctx, s3.NewFromConfig(awsCfg), u.Host, strings.TrimPrefix(u.Path, "/"))
}

// downloadFromS3 contém a lógica pura, testável via Mock.
func downloadFromS3(ctx context.Context, client S3Downloader, bucket, key string) ([]byte, error) {
	out, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	})
	if err != nil {
		return nil, fmt.Errorf("erro ao baixar configuração do S3: %w", err)
	}
	defer out.Body.Close()

	return io.ReadAll(out.Body)
}
