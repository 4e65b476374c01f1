package kafka

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/DRSN-tech/visual-matcher/internal/cfg"
	"github.com/DRSN-tech/visual-matcher/internal/usecase"
	"github.com/DRSN-tech/visual-matcher/pkg/e"
	"github.com/DRSN-tech/visual-matcher/pkg/logger"
	"github.com/jimlawless/whereami"
	"github.com/segmentio/kafka-go"
)

// Producer публикует события о новых каталогах.
type Producer struct {
	writer *kafka.Writer
	logger logger.Logger
	cfg    *cfg.KafkaCfg
}

func NewProducer(logger logger.Logger, cfg *cfg.KafkaCfg) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchSize:    1,
		WriteTimeout: 10 * time.Second,
	}

	return &Producer{
		writer: writer,
		logger: logger,
		cfg:    cfg,
	}
}

// PublishCatalog синхронно пишет событие catalog.published.
func (p *Producer) PublishCatalog(ctx context.Context, event *usecase.CatalogPublishedEvent) error {
	value, err := encodeEvent(event)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	if err := p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.Source),
		Value: value,
	}); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	p.logger.Infof("Published catalog event %s to %s", event.EventID, p.cfg.Topic)
	return nil
}

// EnsureTopic создаёт топик через контроллер кластера, если его ещё нет.
func (p *Producer) EnsureTopic(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	dialer := &kafka.Dialer{Timeout: timeout}
	conn, err := dialer.DialContext(ctx, p.cfg.NetworkMode, p.cfg.Brokers[0])
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(timeout))

	if partitions, err := conn.ReadPartitions(p.cfg.Topic); err == nil && len(partitions) > 0 {
		return nil
	}

	controller, err := conn.Controller()
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	ctrl, err := dialer.DialContext(ctx, p.cfg.NetworkMode, net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}
	defer ctrl.Close()
	_ = ctrl.SetDeadline(time.Now().Add(timeout))

	if err := ctrl.CreateTopics(kafka.TopicConfig{
		Topic:             p.cfg.Topic,
		NumPartitions:     p.cfg.Partitions,
		ReplicationFactor: p.cfg.ReplicationFactor,
	}); err != nil {
		return e.Wrap(whereami.WhereAmI(), fmt.Errorf("failed to create topic %s: %w", p.cfg.Topic, err))
	}

	p.logger.Infof("Created kafka topic %s", p.cfg.Topic)
	return nil
}

func (p *Producer) Close() error {
	return p.writer.Close()
}
