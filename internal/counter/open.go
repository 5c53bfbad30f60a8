package counter

import (
	"context"
	"fmt"
	"os"
	"time"

	"cloud.google.com/go/datastore"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/redis/go-redis/v9"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"

	"github.com/tckz/go-visit-counter/internal/config"
)

func nopClose() error {
	return nil
}

// Open builds the counter selected by cfg.Backend. The returned func releases the store client.
func Open(ctx context.Context, cfg config.Config) (Counter, func() error, error) {
	switch cfg.Backend {
	case config.BackendDynamoDB:
		cl, err := NewDynamoDBClient(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		return NewDynamoDBCounter(cl, cfg.TableName), nopClose, nil
	case config.BackendRedis:
		cl := redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs:        []string{cfg.RedisAddr},
			DialTimeout:  time.Second * 2,
			ReadTimeout:  time.Second * 2,
			WriteTimeout: time.Second * 2,
			PoolSize:     200,
			PoolTimeout:  time.Second * 5,
		})
		return NewRedisCounter(cl, cfg.TableName), cl.Close, nil
	case config.BackendDatastore:
		cl, err := NewDatastoreClient(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		return NewDatastoreCounter(cl, cfg.TableName), cl.Close, nil
	case config.BackendLocal:
		return NewLocalCounter(0), nopClose, nil
	default:
		return nil, nil, fmt.Errorf("unknown backend: %s", cfg.Backend)
	}
}

func NewDynamoDBClient(ctx context.Context, cfg config.Config) (*dynamodb.Client, error) {
	var loadOpts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(cfg.Region))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("awsconfig.LoadDefaultConfig: %w", err)
	}

	return dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if cfg.DynamoDBEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.DynamoDBEndpoint)
		}
	}), nil
}

func NewDatastoreClient(ctx context.Context, cfg config.Config) (*datastore.Client, error) {
	var opts []option.ClientOption
	if cfg.GoogleCredentialsFile != "" {
		b, err := os.ReadFile(cfg.GoogleCredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("os.ReadFile: %w", err)
		}
		creds, err := google.CredentialsFromJSON(ctx, b, datastore.ScopeDatastore)
		if err != nil {
			return nil, fmt.Errorf("google.CredentialsFromJSON: %w", err)
		}
		opts = append(opts, option.WithCredentials(creds))
	}

	cl, err := datastore.NewClient(ctx, cfg.ProjectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("datastore.NewClient: %w", err)
	}
	return cl, nil
}
