package cfg

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/DRSN-tech/visual-matcher/pkg/e"
	"github.com/DRSN-tech/visual-matcher/pkg/logger"
	"github.com/jimlawless/whereami"
	"github.com/spf13/viper"
)

// Источники каталога.
const (
	CatalogSourceFile     = "file"
	CatalogSourceMinIO    = "minio"
	CatalogSourcePostgres = "postgres"
)

// Config объединяет настройки всех компонентов.
// Необязательные интеграции (MinIO, Postgres, Qdrant, Redis, Kafka) равны nil, если не заданы их адреса.
type Config struct {
	Http    *HTTPConfig
	Grpc    *GRPCConfig
	Ml      *MLServiceCfg
	Catalog *CatalogCfg
	Upload  *UploadCfg
	Minio   *MinIOCfg
	Db      *PGDBCfg
	Qdrant  *QdrantCfg
	Redis   *RedisCfg
	Kafka   *KafkaCfg
	Tracing *TracingCfg
	Builder *BuilderCfg
}

type HTTPConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	CORSOrigins     []string
}

type GRPCConfig struct {
	Port        string
	NetworkMode string
}

type MLServiceCfg struct {
	URL          string        // базовый адрес inference-сервера (KServe v2)
	ModelName    string        // имя модели на inference-сервере
	Timeout      time.Duration // таймаут одного вызова модели
	MaxRetries   int           // общее число попыток, 1 - без повторов
	RetryBackoff time.Duration
	CheckOnStart bool // проверять готовность модели при старте
}

type CatalogCfg struct {
	Source    string // file | minio | postgres
	Path      string // путь к JSON-каталогу для source=file и для сборщика
	ObjectKey string // ключ объекта каталога в бакете для source=minio
}

type UploadCfg struct {
	MaxFileSize     int64
	DownloadTimeout time.Duration
	UserAgent       string
	Dir             string // каталог загрузок, если MinIO не настроен
}

type MinIOCfg struct {
	MinioEndpoint     string // Адрес конечной точки Minio
	BucketName        string // Название бакета для загрузок и каталога
	MinioRootUser     string
	MinioRootPassword string
	MinioUseSSL       bool
	CleanupTimeout    time.Duration // таймаут фоновой очистки объектов
}

type PGDBCfg struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type QdrantCfg struct {
	Port                 int
	Host                 string
	ApiKey               string
	QdrantCollectionName string
	UseTLS               bool
	VectorSize           uint64
}

type RedisCfg struct {
	Addr         string
	Password     string
	User         string
	DB           int
	MaxRetries   int
	DialTimeout  time.Duration
	Timeout      time.Duration
	EmbeddingTTL time.Duration // время жизни закешированного эмбеддинга запроса
}

type KafkaCfg struct {
	Brokers           []string
	Topic             string
	GroupID           string
	NetworkMode       string
	Partitions        int
	ReplicationFactor int
}

type TracingCfg struct {
	Endpoint    string // адрес OTLP-коллектора, пустой - трассировка выключена
	ServiceName string
	Insecure    bool
	SampleRatio float64
}

type BuilderCfg struct {
	SourceURL         string
	Total             int
	PageSize          int
	RequestsPerSecond float64
	Concurrency       int
	RequestTimeout    time.Duration
}

// Load загружает конфигурацию из окружения и, если задан CONFIG_FILE, из YAML-файла.
// Переменные окружения приоритетнее файла.
func Load(log logger.Logger) (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			log.Errorf(err, "failed to read config file %s", path)
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}
	}

	return LoadFrom(v, log)
}

// LoadFrom собирает конфигурацию из готового экземпляра viper.
func LoadFrom(v *viper.Viper, log logger.Logger) (*Config, error) {
	src := source{v: v}

	http, err := loadHTTPConfig(src, log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	ml, err := loadMLServiceCfg(src, log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	catalog, err := loadCatalogCfg(src)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	upload, err := loadUploadCfg(src, log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	minio, err := loadMinIOCfg(src, log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	db, err := loadPGDBCfg(src, log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	qdrant, err := loadQdrantCfg(src, log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	redis, err := loadRedisCfg(src, log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	kafka, err := loadKafkaCfg(src)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	tracing, err := loadTracingCfg(src)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	builder, err := loadBuilderCfg(src)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	cfg := &Config{
		Http:    http,
		Grpc:    loadGRPCConfig(src),
		Ml:      ml,
		Catalog: catalog,
		Upload:  upload,
		Minio:   minio,
		Db:      db,
		Qdrant:  qdrant,
		Redis:   redis,
		Kafka:   kafka,
		Tracing: tracing,
		Builder: builder,
	}

	if err := cfg.validate(); err != nil {
		log.Errorf(err, "inconsistent configuration")
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Catalog.Source {
	case CatalogSourceMinIO:
		if c.Minio == nil {
			return fmt.Errorf("CATALOG_SOURCE=minio requires MINIO_ENDPOINT")
		}
	case CatalogSourcePostgres:
		if c.Db == nil {
			return fmt.Errorf("CATALOG_SOURCE=postgres requires POSTGRES_HOST")
		}
	}

	return nil
}

func loadHTTPConfig(src source, log logger.Logger) (*HTTPConfig, error) {
	const (
		defaultPort            = "5000"
		defaultReadTimeout     = 15 * time.Second
		defaultWriteTimeout    = 60 * time.Second
		defaultIdleTimeout     = 60 * time.Second
		defaultShutdownTimeout = 10 * time.Second
		defaultCORSOrigins     = "http://localhost:5173"
	)

	readTimeout, err := src.parseDurationEnv("HTTP_READ_TIMEOUT", defaultReadTimeout)
	if err != nil {
		log.Errorf(err, "invalid HTTP_READ_TIMEOUT")
		return nil, err
	}

	writeTimeout, err := src.parseDurationEnv("HTTP_WRITE_TIMEOUT", defaultWriteTimeout)
	if err != nil {
		log.Errorf(err, "invalid HTTP_WRITE_TIMEOUT")
		return nil, err
	}

	idleTimeout, err := src.parseDurationEnv("KEEP_ALIVE", defaultIdleTimeout)
	if err != nil {
		log.Errorf(err, "invalid KEEP_ALIVE")
		return nil, err
	}

	shutdownTimeout, err := src.parseDurationEnv("SHUTDOWN_TIMEOUT", defaultShutdownTimeout)
	if err != nil {
		log.Errorf(err, "invalid SHUTDOWN_TIMEOUT")
		return nil, err
	}

	return &HTTPConfig{
		Port:            src.getEnvOrDefault("HTTP_PORT", defaultPort),
		ReadTimeout:     readTimeout,
		WriteTimeout:    writeTimeout,
		IdleTimeout:     idleTimeout,
		ShutdownTimeout: shutdownTimeout,
		CORSOrigins:     src.parseListEnv("CORS_ORIGINS", defaultCORSOrigins),
	}, nil
}

func loadGRPCConfig(src source) *GRPCConfig {
	const (
		defaultPort        = "8091"
		defaultNetworkMode = "tcp"
	)

	return &GRPCConfig{
		Port:        src.getEnvOrDefault("GRPC_PORT", defaultPort),
		NetworkMode: src.getEnvOrDefault("GRPC_NETWORK_MODE", defaultNetworkMode),
	}
}

func loadMLServiceCfg(src source, log logger.Logger) (*MLServiceCfg, error) {
	const (
		defaultURL          = "http://ml-service:8080"
		defaultModelName    = "clip-vit-base-patch32"
		defaultTimeout      = 30 * time.Second
		defaultMaxRetries   = 1
		defaultRetryBackoff = 200 * time.Millisecond
		defaultCheckOnStart = true
	)

	timeout, err := src.parseDurationEnv("ML_TIMEOUT", defaultTimeout)
	if err != nil {
		log.Errorf(err, "invalid ML_TIMEOUT")
		return nil, err
	}

	maxRetries, err := src.parseIntEnv("ML_MAX_RETRIES", defaultMaxRetries)
	if err != nil || maxRetries < 1 {
		err = e.Wrap("ML_MAX_RETRIES", e.ErrIncorrectEnvVariable)
		log.Errorf(err, "invalid ML_MAX_RETRIES")
		return nil, err
	}

	backoff, err := src.parseDurationEnv("ML_RETRY_BACKOFF", defaultRetryBackoff)
	if err != nil {
		log.Errorf(err, "invalid ML_RETRY_BACKOFF")
		return nil, err
	}

	checkOnStart, err := src.parseBoolEnv("ML_CHECK_ON_START", defaultCheckOnStart)
	if err != nil {
		log.Errorf(err, "invalid ML_CHECK_ON_START")
		return nil, err
	}

	return &MLServiceCfg{
		URL:          strings.TrimRight(src.getEnvOrDefault("ML_URL", defaultURL), "/"),
		ModelName:    src.getEnvOrDefault("ML_MODEL_NAME", defaultModelName),
		Timeout:      timeout,
		MaxRetries:   maxRetries,
		RetryBackoff: backoff,
		CheckOnStart: checkOnStart,
	}, nil
}

func loadCatalogCfg(src source) (*CatalogCfg, error) {
	const (
		defaultSource    = CatalogSourceFile
		defaultPath      = "data/products.json"
		defaultObjectKey = "catalog/products.json"
	)

	catalogSource := strings.ToLower(src.getEnvOrDefault("CATALOG_SOURCE", defaultSource))
	switch catalogSource {
	case CatalogSourceFile, CatalogSourceMinIO, CatalogSourcePostgres:
	default:
		return nil, e.Wrap("CATALOG_SOURCE="+catalogSource, e.ErrIncorrectEnvVariable)
	}

	return &CatalogCfg{
		Source:    catalogSource,
		Path:      src.getEnvOrDefault("CATALOG_PATH", defaultPath),
		ObjectKey: src.getEnvOrDefault("CATALOG_OBJECT_KEY", defaultObjectKey),
	}, nil
}

func loadUploadCfg(src source, log logger.Logger) (*UploadCfg, error) {
	const (
		defaultMaxFileSize     = 10 << 20
		defaultDownloadTimeout = 15 * time.Second
		defaultUserAgent       = "VisualProductMatcher/1.0"
		defaultDir             = "uploads"
	)

	maxSize, err := src.parseIntEnv("MAX_CONTENT_LENGTH", defaultMaxFileSize)
	if err != nil || maxSize <= 0 {
		err = e.Wrap("MAX_CONTENT_LENGTH", e.ErrIncorrectEnvVariable)
		log.Errorf(err, "invalid MAX_CONTENT_LENGTH")
		return nil, err
	}

	timeout, err := src.parseDurationEnv("URL_DOWNLOAD_TIMEOUT", defaultDownloadTimeout)
	if err != nil {
		log.Errorf(err, "invalid URL_DOWNLOAD_TIMEOUT")
		return nil, err
	}

	return &UploadCfg{
		MaxFileSize:     int64(maxSize),
		DownloadTimeout: timeout,
		UserAgent:       src.getEnvOrDefault("DOWNLOAD_USER_AGENT", defaultUserAgent),
		Dir:             src.getEnvOrDefault("UPLOAD_DIR", defaultDir),
	}, nil
}

func loadMinIOCfg(src source, log logger.Logger) (*MinIOCfg, error) {
	const (
		defaultUseSSL         = false
		defaultBucket         = "visual-matcher"
		defaultCleanupTimeout = 30 * time.Second
	)

	endpoint := src.getEnv("MINIO_ENDPOINT")
	if endpoint == "" {
		return nil, nil
	}

	useSSL, err := src.parseBoolEnv("MINIO_USE_SSL", defaultUseSSL)
	if err != nil {
		log.Errorf(err, "invalid MINIO_USE_SSL")
		return nil, err
	}

	cleanupTimeout, err := src.parseDurationEnv("MINIO_CLEANUP_TIMEOUT", defaultCleanupTimeout)
	if err != nil {
		log.Errorf(err, "invalid MINIO_CLEANUP_TIMEOUT")
		return nil, err
	}

	return &MinIOCfg{
		MinioEndpoint:     endpoint,
		BucketName:        src.getEnvOrDefault("BUCKET_NAME", defaultBucket),
		MinioRootUser:     src.getEnv("MINIO_ROOT_USER"),
		MinioRootPassword: src.getEnv("MINIO_ROOT_PASSWORD"),
		MinioUseSSL:       useSSL,
		CleanupTimeout:    cleanupTimeout,
	}, nil
}

func loadPGDBCfg(src source, log logger.Logger) (*PGDBCfg, error) {
	const (
		defaultPort    = "5432"
		defaultSSLMode = "disable"
	)

	host := src.getEnv("POSTGRES_HOST")
	if host == "" {
		return nil, nil
	}

	for _, key := range []string{"POSTGRES_USER", "POSTGRES_PASSWORD", "POSTGRES_DB"} {
		if src.getEnv(key) == "" {
			err := fmt.Errorf("%s is required", key)
			log.Errorf(err, "missing %s", key)
			return nil, err
		}
	}

	return &PGDBCfg{
		Host:     host,
		Port:     src.getEnvOrDefault("POSTGRES_PORT", defaultPort),
		User:     src.getEnv("POSTGRES_USER"),
		Password: src.getEnv("POSTGRES_PASSWORD"),
		DBName:   src.getEnv("POSTGRES_DB"),
		SSLMode:  src.getEnvOrDefault("SSL_MODE", defaultSSLMode),
	}, nil
}

func loadQdrantCfg(src source, log logger.Logger) (*QdrantCfg, error) {
	const (
		defaultQdrantGRPCPort = 6334
		defaultUseTLS         = false
		defaultVectorSize     = 512
		defaultCollection     = "catalog_products"
	)

	host := src.getEnv("QDRANT_HOST")
	if host == "" {
		return nil, nil
	}

	port, err := src.parseIntEnv("QDRANT_GRPC_PORT", defaultQdrantGRPCPort)
	if err != nil {
		log.Errorf(err, "invalid QDRANT_GRPC_PORT")
		return nil, err
	}

	useTLS, err := src.parseBoolEnv("QDRANT_USE_TLS", defaultUseTLS)
	if err != nil {
		log.Errorf(err, "invalid QDRANT_USE_TLS")
		return nil, err
	}

	vectorSize, err := strconv.ParseUint(src.getEnvOrDefault("VECTOR_SIZE", strconv.Itoa(defaultVectorSize)), 10, 64)
	if err != nil {
		log.Errorf(err, "invalid VECTOR_SIZE")
		return nil, err
	}

	return &QdrantCfg{
		Host:                 host,
		Port:                 port,
		ApiKey:               src.getEnv("QDRANT__SERVICE__API_KEY"),
		QdrantCollectionName: src.getEnvOrDefault("COLLECTION_NAME", defaultCollection),
		UseTLS:               useTLS,
		VectorSize:           vectorSize,
	}, nil
}

func loadRedisCfg(src source, log logger.Logger) (*RedisCfg, error) {
	const (
		defaultDB           = 0
		defaultMaxRetries   = 3
		defaultDialTimeout  = 5 * time.Second
		defaultReadTimeout  = 3 * time.Second
		defaultWriteTimeout = 3 * time.Second
		defaultEmbeddingTTL = 10 * time.Minute
	)

	addr := src.getEnv("REDIS_ADDR")
	if addr == "" {
		return nil, nil
	}

	db, err := src.parseIntEnv("REDIS_DB_ID", defaultDB)
	if err != nil {
		log.Errorf(err, "invalid REDIS_DB_ID")
		return nil, err
	}

	maxRetries, err := src.parseIntEnv("REDIS_MAX_RETRIES", defaultMaxRetries)
	if err != nil {
		log.Errorf(err, "invalid REDIS_MAX_RETRIES")
		return nil, err
	}

	dialTimeout, err := src.parseDurationEnv("REDIS_DIAL_TIMEOUT", defaultDialTimeout)
	if err != nil {
		log.Errorf(err, "invalid REDIS_DIAL_TIMEOUT")
		return nil, err
	}

	readTimeout, err := src.parseDurationEnv("REDIS_READ_TIMEOUT", defaultReadTimeout)
	if err != nil {
		log.Errorf(err, "invalid REDIS_READ_TIMEOUT")
		return nil, err
	}

	writeTimeout, err := src.parseDurationEnv("REDIS_WRITE_TIMEOUT", defaultWriteTimeout)
	if err != nil {
		log.Errorf(err, "invalid REDIS_WRITE_TIMEOUT")
		return nil, err
	}

	ttl, err := src.parseDurationEnv("EMBEDDING_CACHE_TTL", defaultEmbeddingTTL)
	if err != nil {
		log.Errorf(err, "invalid EMBEDDING_CACHE_TTL")
		return nil, err
	}

	return &RedisCfg{
		Addr:         addr,
		Password:     src.getEnv("REDIS_PASSWORD"),
		User:         src.getEnv("REDIS_USER"),
		DB:           db,
		MaxRetries:   maxRetries,
		DialTimeout:  dialTimeout,
		Timeout:      max(readTimeout, writeTimeout),
		EmbeddingTTL: ttl,
	}, nil
}

func loadKafkaCfg(src source) (*KafkaCfg, error) {
	const (
		defaultTopic             = "catalog.published"
		defaultGroupID           = "visual-matcher"
		defaultPartitions        = 1
		defaultReplicationFactor = 1
		defaultNetworkMode       = "tcp"
	)

	brokers := src.parseListEnv("KAFKA_BROKERS", "")
	if len(brokers) == 0 {
		return nil, nil
	}

	partitions, err := src.parseIntEnv("KAFKA_PARTITIONS", defaultPartitions)
	if err != nil {
		return nil, e.Wrap("KAFKA_PARTITIONS", err)
	}

	replicationFactor, err := src.parseIntEnv("REPLICATION_FACTOR", defaultReplicationFactor)
	if err != nil {
		return nil, e.Wrap("REPLICATION_FACTOR", err)
	}

	return &KafkaCfg{
		Brokers:           brokers,
		Topic:             src.getEnvOrDefault("KAFKA_TOPIC", defaultTopic),
		GroupID:           src.getEnvOrDefault("KAFKA_GROUP_ID", defaultGroupID),
		NetworkMode:       src.getEnvOrDefault("KAFKA_NETWORK_MODE", defaultNetworkMode),
		Partitions:        partitions,
		ReplicationFactor: replicationFactor,
	}, nil
}

func loadTracingCfg(src source) (*TracingCfg, error) {
	const (
		defaultServiceName = "visual-matcher"
		defaultInsecure    = true
		defaultSampleRatio = 1.0
	)

	insecure, err := src.parseBoolEnv("OTEL_EXPORTER_OTLP_INSECURE", defaultInsecure)
	if err != nil {
		return nil, e.Wrap("OTEL_EXPORTER_OTLP_INSECURE", err)
	}

	ratio, err := src.parseFloatEnv("OTEL_TRACES_SAMPLER_ARG", defaultSampleRatio)
	if err != nil {
		return nil, e.Wrap("OTEL_TRACES_SAMPLER_ARG", err)
	}

	return &TracingCfg{
		Endpoint:    src.getEnv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		ServiceName: src.getEnvOrDefault("OTEL_SERVICE_NAME", defaultServiceName),
		Insecure:    insecure,
		SampleRatio: ratio,
	}, nil
}

func loadBuilderCfg(src source) (*BuilderCfg, error) {
	const (
		defaultSourceURL         = "https://dummyjson.com/products"
		defaultTotal             = 60
		defaultPageSize          = 30
		defaultRequestsPerSecond = 2.0
		defaultConcurrency       = 4
		defaultRequestTimeout    = 30 * time.Second
	)

	total, err := src.parseIntEnv("BUILDER_TOTAL", defaultTotal)
	if err != nil {
		return nil, e.Wrap("BUILDER_TOTAL", err)
	}

	pageSize, err := src.parseIntEnv("BUILDER_PAGE_SIZE", defaultPageSize)
	if err != nil || pageSize <= 0 {
		return nil, e.Wrap("BUILDER_PAGE_SIZE", e.ErrIncorrectEnvVariable)
	}

	rps, err := src.parseFloatEnv("BUILDER_RPS", defaultRequestsPerSecond)
	if err != nil {
		return nil, e.Wrap("BUILDER_RPS", err)
	}

	concurrency, err := src.parseIntEnv("BUILDER_CONCURRENCY", defaultConcurrency)
	if err != nil || concurrency <= 0 {
		return nil, e.Wrap("BUILDER_CONCURRENCY", e.ErrIncorrectEnvVariable)
	}

	timeout, err := src.parseDurationEnv("BUILDER_REQUEST_TIMEOUT", defaultRequestTimeout)
	if err != nil {
		return nil, e.Wrap("BUILDER_REQUEST_TIMEOUT", err)
	}

	return &BuilderCfg{
		SourceURL:         src.getEnvOrDefault("BUILDER_SOURCE_URL", defaultSourceURL),
		Total:             total,
		PageSize:          pageSize,
		RequestsPerSecond: rps,
		Concurrency:       concurrency,
		RequestTimeout:    timeout,
	}, nil
}

// source читает значения через viper: переменные окружения и, при наличии, файл конфигурации.
type source struct {
	v *viper.Viper
}

// getEnv возвращает значение ключа или пустую строку, если он не задан.
func (s source) getEnv(key string) string {
	return strings.TrimSpace(s.v.GetString(key))
}

// getEnvOrDefault возвращает значение ключа или значение по умолчанию.
func (s source) getEnvOrDefault(key, defaultValue string) string {
	if value := s.getEnv(key); value != "" {
		return value
	}

	return defaultValue
}

// parseDurationEnv считывает длительность или возвращает значение по умолчанию.
func (s source) parseDurationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	if v := s.getEnv(key); v != "" {
		return time.ParseDuration(v)
	}

	return defaultValue, nil
}

func (s source) parseIntEnv(key string, defaultValue int) (int, error) {
	v := s.getEnv(key)
	if v == "" {
		return defaultValue, nil
	}

	intValue, err := strconv.Atoi(v)
	if err != nil {
		return defaultValue, e.ErrIncorrectEnvVariable
	}

	return intValue, nil
}

func (s source) parseFloatEnv(key string, defaultValue float64) (float64, error) {
	v := s.getEnv(key)
	if v == "" {
		return defaultValue, nil
	}

	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return defaultValue, e.ErrIncorrectEnvVariable
	}

	return f, nil
}

func (s source) parseBoolEnv(key string, defaultValue bool) (bool, error) {
	v := s.getEnv(key)
	if v == "" {
		return defaultValue, nil
	}

	return strconv.ParseBool(v)
}

// parseListEnv разбивает значение по запятым, пустые элементы отбрасываются.
func (s source) parseListEnv(key, defaultValue string) []string {
	var out []string
	for _, item := range strings.Split(s.getEnvOrDefault(key, defaultValue), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}

	return out
}
