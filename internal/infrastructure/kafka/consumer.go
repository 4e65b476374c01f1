package kafka

import (
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/DRSN-tech/visual-matcher/internal/cfg"
	"github.com/DRSN-tech/visual-matcher/internal/usecase"
	"github.com/DRSN-tech/visual-matcher/pkg/jitter"
	"github.com/DRSN-tech/visual-matcher/pkg/logger"
	"github.com/segmentio/kafka-go"
)

// MessageReader - часть kafka.Reader, нужная потребителю.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// CatalogConsumer перезагружает каталог по событиям catalog.published.
type CatalogConsumer struct {
	reader   MessageReader
	catalog  usecase.CatalogUC
	logger   logger.Logger
	backoff  jitter.Backoff
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	stopOnce sync.Once
}

// NewReader создаёт reader с группой, уникальной для экземпляра сервиса:
// каждое событие должно дойти до каждого сервера.
func NewReader(c *cfg.KafkaCfg) *kafka.Reader {
	groupID := c.GroupID
	if host, err := os.Hostname(); err == nil && host != "" {
		groupID += "-" + host
	}

	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:     c.Brokers,
		Topic:       c.Topic,
		GroupID:     groupID,
		StartOffset: kafka.LastOffset,
		MaxWait:     time.Second,
	})
}

func NewCatalogConsumer(reader MessageReader, catalog usecase.CatalogUC, logger logger.Logger) *CatalogConsumer {
	return &CatalogConsumer{
		reader:  reader,
		catalog: catalog,
		logger:  logger,
		backoff: jitter.Backoff{
			Base:   time.Second,
			Max:    30 * time.Second,
			Factor: jitter.DefaultFactor,
		},
	}
}

// Start запускает чтение в фоне до Stop или отмены ctx.
func (c *CatalogConsumer) Start(ctx context.Context) {
	ctx, c.cancel = context.WithCancel(ctx)

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.run(ctx)
	}()
}

// Stop останавливает чтение и закрывает reader.
func (c *CatalogConsumer) Stop() error {
	var err error
	c.stopOnce.Do(func() {
		if c.cancel != nil {
			c.cancel()
		}
		c.wg.Wait()
		err = c.reader.Close()
	})

	return err
}

func (c *CatalogConsumer) run(ctx context.Context) {
	c.logger.Infof("Catalog event consumer started")

	failures := 0
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, io.EOF) {
				c.logger.Infof("Catalog event consumer stopped")
				return
			}

			delay := c.backoff.Delay(failures)
			failures++
			c.logger.Warnf("failed to fetch catalog event, retrying in %v: %v", delay, err)
			if !sleep(ctx, delay) {
				return
			}
			continue
		}
		failures = 0

		c.handle(ctx, msg)

		if err := c.reader.CommitMessages(ctx, msg); err != nil && ctx.Err() == nil {
			c.logger.Warnf("failed to commit catalog event offset %d: %v", msg.Offset, err)
		}
	}
}

func (c *CatalogConsumer) handle(ctx context.Context, msg kafka.Message) {
	event, err := decodeEvent(msg.Value)
	if err != nil {
		c.logger.Warnf("skipping malformed catalog event at offset %d: %v", msg.Offset, err)
		return
	}

	c.logger.Infof("Received catalog event %s from %s (%d products)", event.EventID, event.Source, event.Products)

	for attempt := 0; ; attempt++ {
		_, err := c.catalog.Reload(ctx)
		if err == nil {
			return
		}

		if !isRetryableError(err) || attempt >= 2 {
			c.logger.Errorf(err, "catalog reload for event %s failed", event.EventID)
			return
		}

		if !sleep(ctx, c.backoff.Delay(attempt)) {
			return
		}
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	select {
	case <-time.After(d):
		return true
	case <-ctx.Done():
		return false
	}
}

func isRetryableError(err error) bool {
	if err == nil {
		return false
	}
	errStr := strings.ToLower(err.Error())
	retryablePhrases := []string{
		"connection refused",
		"i/o timeout",
		"network is unreachable",
		"connection reset",
		"broken pipe",
		"no such host",
	}
	for _, phrase := range retryablePhrases {
		if strings.Contains(errStr, phrase) {
			return true
		}
	}
	return false
}
