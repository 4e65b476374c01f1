package cfg

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/DRSN-tech/visual-matcher/pkg/e"
	"github.com/DRSN-tech/visual-matcher/pkg/logger"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	c, err := LoadFrom(viper.New(), logger.NewNopLogger())
	require.NoError(t, err)

	assert.Equal(t, "5000", c.Http.Port)
	assert.Equal(t, []string{"http://localhost:5173"}, c.Http.CORSOrigins)
	assert.Equal(t, CatalogSourceFile, c.Catalog.Source)
	assert.Equal(t, "data/products.json", c.Catalog.Path)
	assert.Equal(t, 1, c.Ml.MaxRetries)
	assert.Equal(t, 30*time.Second, c.Ml.Timeout)
	assert.Equal(t, int64(10<<20), c.Upload.MaxFileSize)
	assert.Equal(t, 15*time.Second, c.Upload.DownloadTimeout)

	assert.Nil(t, c.Minio)
	assert.Nil(t, c.Db)
	assert.Nil(t, c.Qdrant)
	assert.Nil(t, c.Redis)
	assert.Nil(t, c.Kafka)
	assert.Empty(t, c.Tracing.Endpoint)
}

func TestLoadOptionalIntegrations(t *testing.T) {
	v := viper.New()
	v.Set("MINIO_ENDPOINT", "minio:9000")
	v.Set("QDRANT_HOST", "qdrant")
	v.Set("REDIS_ADDR", "redis:6379")
	v.Set("KAFKA_BROKERS", "k1:9092, k2:9092,")
	v.Set("REDIS_READ_TIMEOUT", "1s")
	v.Set("REDIS_WRITE_TIMEOUT", "4s")

	c, err := LoadFrom(v, logger.NewNopLogger())
	require.NoError(t, err)

	require.NotNil(t, c.Minio)
	assert.Equal(t, "visual-matcher", c.Minio.BucketName)
	require.NotNil(t, c.Qdrant)
	assert.Equal(t, uint64(512), c.Qdrant.VectorSize)
	assert.Equal(t, 6334, c.Qdrant.Port)
	require.NotNil(t, c.Redis)
	assert.Equal(t, 4*time.Second, c.Redis.Timeout)
	require.NotNil(t, c.Kafka)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, c.Kafka.Brokers)
	assert.Equal(t, "catalog.published", c.Kafka.Topic)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"Duration", "ML_TIMEOUT", "soon"},
		{"Retries", "ML_MAX_RETRIES", "0"},
		{"Source", "CATALOG_SOURCE", "ftp"},
		{"Bool", "ML_CHECK_ON_START", "maybe"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := viper.New()
			v.Set(tt.key, tt.value)

			_, err := LoadFrom(v, logger.NewNopLogger())
			assert.Error(t, err)
		})
	}
}

func TestLoadSourceRequiresIntegration(t *testing.T) {
	v := viper.New()
	v.Set("CATALOG_SOURCE", "postgres")

	_, err := LoadFrom(v, logger.NewNopLogger())
	assert.Error(t, err)
}

func TestLoadPostgresRequiresCredentials(t *testing.T) {
	v := viper.New()
	v.Set("POSTGRES_HOST", "db")
	v.Set("POSTGRES_USER", "u")

	_, err := LoadFrom(v, logger.NewNopLogger())
	assert.Error(t, err)
}

func TestParseIntEnvMarksError(t *testing.T) {
	v := viper.New()
	v.Set("X", "abc")

	_, err := source{v: v}.parseIntEnv("X", 1)
	assert.ErrorIs(t, err, e.ErrIncorrectEnvVariable)
}

func TestLoadReadsConfigFileAndEnvWins(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("http_port: \"9000\"\nml_model_name: from-file\n"), 0o600))

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("ML_MODEL_NAME", "from-env")

	c, err := Load(logger.NewNopLogger())
	require.NoError(t, err)

	assert.Equal(t, "9000", c.Http.Port)
	assert.Equal(t, "from-env", c.Ml.ModelName)
}
