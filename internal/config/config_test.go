package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envOf(m map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

func TestLoadFrom_Defaults(t *testing.T) {
	c, err := LoadFrom(envOf(map[string]string{"TABLE_NAME": "visits"}))
	require.NoError(t, err)

	assert.Equal(t, "visits", c.TableName)
	assert.Equal(t, BackendDynamoDB, c.Backend)
	assert.Equal(t, "info", c.LogLevel)
	assert.Empty(t, c.DynamoDBEndpoint)
}

func TestLoadFrom_AllValues(t *testing.T) {
	c, err := LoadFrom(envOf(map[string]string{
		"TABLE_NAME":              " visits ",
		"COUNTER_BACKEND":         "Redis",
		"LOG_LEVEL":               "warn",
		"AWS_REGION":              "ap-northeast-1",
		"DYNAMODB_ENDPOINT":       "http://localhost:8000",
		"REDIS_ADDR":              "localhost:6379",
		"PROJECT_ID":              "pj",
		"GOOGLE_CREDENTIALS_FILE": "/tmp/sa.json",
	}))
	require.NoError(t, err)

	assert.Equal(t, Config{
		TableName:             "visits",
		Backend:               BackendRedis,
		LogLevel:              "warn",
		Region:                "ap-northeast-1",
		DynamoDBEndpoint:      "http://localhost:8000",
		RedisAddr:             "localhost:6379",
		ProjectID:             "pj",
		GoogleCredentialsFile: "/tmp/sa.json",
	}, c)
}

func TestLoadFrom_Errors(t *testing.T) {
	cases := []struct {
		name string
		env  map[string]string
		want string
	}{
		{
			name: "missing table",
			env:  map[string]string{},
			want: "TABLE_NAME",
		},
		{
			name: "blank table",
			env:  map[string]string{"TABLE_NAME": "   "},
			want: "TABLE_NAME",
		},
		{
			name: "unknown backend",
			env:  map[string]string{"TABLE_NAME": "t", "COUNTER_BACKEND": "mysql"},
			want: `unknown COUNTER_BACKEND "mysql"`,
		},
		{
			name: "redis without addr",
			env:  map[string]string{"TABLE_NAME": "t", "COUNTER_BACKEND": "redis"},
			want: "REDIS_ADDR",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadFrom(envOf(tc.env))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestLoadProjectFrom(t *testing.T) {
	pj, err := LoadProjectFrom(envOf(map[string]string{"PROJECT_ID": " my-project "}))
	require.NoError(t, err)
	assert.Equal(t, "my-project", pj)

	_, err = LoadProjectFrom(envOf(map[string]string{"TABLE_NAME": "visits"}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PROJECT_ID")
}
