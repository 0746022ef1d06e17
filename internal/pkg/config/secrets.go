// internal/pkg/config/secrets.go
package config

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

// Keys looked up in the secret document and overlaid onto the config.
const (
	SecretDBPassword      = "DB_PASSWORD"
	SecretRedisPassword   = "REDIS_PASSWORD"
	SecretAWSAccessKeyID  = "AWS_ACCESS_KEY_ID"
	SecretAWSSecretAccess = "AWS_SECRET_ACCESS_KEY"
)

// SecretSource returns the values it holds for keys; absent keys are
// simply left out of the map.
type SecretSource interface {
	GetSecrets(ctx context.Context, keys []string) (map[string]string, error)
}

type secretValueGetter interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// AWSSecretsManager reads one JSON secret document and caches it.
type AWSSecretsManager struct {
	client     secretValueGetter
	secretName string
	ttl        time.Duration
	logger     *slog.Logger

	mu        sync.Mutex
	values    map[string]string
	fetchedAt time.Time
}

var _ SecretSource = (*AWSSecretsManager)(nil)

func NewAWSSecretsManager(ctx context.Context, region, secretName string, logger *slog.Logger) (*AWSSecretsManager, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return newAWSSecretsManager(secretsmanager.NewFromConfig(cfg), secretName, logger), nil
}

func newAWSSecretsManager(client secretValueGetter, secretName string, logger *slog.Logger) *AWSSecretsManager {
	return &AWSSecretsManager{
		client:     client,
		secretName: secretName,
		ttl:        5 * time.Minute,
		logger:     logger.With(slog.String("component", "secrets"), slog.String("secret", secretName)),
	}
}

// GetSecret returns one key, failing when the document lacks it.
func (sm *AWSSecretsManager) GetSecret(ctx context.Context, key string) (string, error) {
	values, err := sm.GetSecrets(ctx, []string{key})
	if err != nil {
		return "", err
	}
	v, ok := values[key]
	if !ok {
		return "", fmt.Errorf("secret %s has no key %s", sm.secretName, key)
	}
	return v, nil
}

func (sm *AWSSecretsManager) GetSecrets(ctx context.Context, keys []string) (map[string]string, error) {
	doc, err := sm.document(ctx)
	if err != nil {
		return nil, err
	}

	out := make(map[string]string, len(keys))
	for _, k := range keys {
		if v, ok := doc[k]; ok {
			out[k] = v
		} else {
			sm.logger.Debug("secret key not present", slog.String("key", k))
		}
	}
	return out, nil
}

// document returns the cached secret, refetching once the ttl lapses.
func (sm *AWSSecretsManager) document(ctx context.Context) (map[string]string, error) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.values != nil && time.Since(sm.fetchedAt) < sm.ttl {
		return sm.values, nil
	}

	sm.logger.Info("fetching secret")
	res, err := sm.client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId:     aws.String(sm.secretName),
		VersionStage: aws.String("AWSCURRENT"),
	})
	if err != nil {
		return nil, fmt.Errorf("get secret %s: %w", sm.secretName, err)
	}
	if res.SecretString == nil {
		return nil, fmt.Errorf("secret %s is not a string secret", sm.secretName)
	}

	values := map[string]string{}
	if err := json.Unmarshal([]byte(*res.SecretString), &values); err != nil {
		return nil, fmt.Errorf("decode secret %s: %w", sm.secretName, err)
	}
	sm.values, sm.fetchedAt = values, time.Now()
	return values, nil
}

// ApplySecrets overlays credentials held by src onto cfg. Keys src does not
// hold keep their environment values.
func ApplySecrets(ctx context.Context, cfg *Config, src SecretSource) error {
	values, err := src.GetSecrets(ctx, []string{
		SecretDBPassword, SecretRedisPassword, SecretAWSAccessKeyID, SecretAWSSecretAccess,
	})
	if err != nil {
		return err
	}

	targets := map[string][]*string{
		SecretDBPassword:      {&cfg.Database.Password},
		SecretRedisPassword:   {&cfg.Redis.Password, &cfg.Asynq.RedisPassword},
		SecretAWSAccessKeyID:  {&cfg.AWS.AccessKeyID},
		SecretAWSSecretAccess: {&cfg.AWS.SecretAccessKey},
	}
	for key, v := range values {
		for _, dst := range targets[key] {
			*dst = v
		}
	}
	return nil
}
