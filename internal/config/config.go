package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/samber/lo"
)

const (
	BackendDynamoDB  = "dynamodb"
	BackendRedis     = "redis"
	BackendDatastore = "datastore"
	BackendLocal     = "local"
)

var Backends = []string{BackendDynamoDB, BackendRedis, BackendDatastore, BackendLocal}

// Config is resolved once at process start and shared by every invocation.
type Config struct {
	// TableName is the DynamoDB table, the Datastore kind and the Redis key prefix.
	TableName string
	Backend   string
	LogLevel  string

	Region           string
	DynamoDBEndpoint string

	RedisAddr string

	ProjectID             string
	GoogleCredentialsFile string
}

// LookupFunc matches os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// Load reads the configuration from the process environment.
func Load() (Config, error) {
	return LoadFrom(os.LookupEnv)
}

func LoadFrom(lookup LookupFunc) (Config, error) {
	get := func(key, def string) string {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
		return def
	}

	c := Config{
		TableName:             get("TABLE_NAME", ""),
		Backend:               strings.ToLower(get("COUNTER_BACKEND", BackendDynamoDB)),
		LogLevel:              get("LOG_LEVEL", "info"),
		Region:                get("AWS_REGION", ""),
		DynamoDBEndpoint:      get("DYNAMODB_ENDPOINT", ""),
		RedisAddr:             get("REDIS_ADDR", ""),
		ProjectID:             get("PROJECT_ID", ""),
		GoogleCredentialsFile: get("GOOGLE_CREDENTIALS_FILE", ""),
	}

	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// LoadProjectFrom is for tools that only talk to Pub/Sub and have no counter table.
func LoadProjectFrom(lookup LookupFunc) (string, error) {
	v, _ := lookup("PROJECT_ID")
	if v = strings.TrimSpace(v); v == "" {
		return "", errors.New("PROJECT_ID must be specified")
	}
	return v, nil
}

func (c Config) Validate() error {
	if c.TableName == "" {
		return errors.New("TABLE_NAME must be specified")
	}
	if !lo.Contains(Backends, c.Backend) {
		return fmt.Errorf("unknown COUNTER_BACKEND %q, must be one of %s", c.Backend, strings.Join(Backends, "|"))
	}
	if c.Backend == BackendRedis && c.RedisAddr == "" {
		return errors.New("REDIS_ADDR must be specified for redis backend")
	}
	return nil
}
