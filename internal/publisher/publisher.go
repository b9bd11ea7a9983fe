package publisher

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	config "github.com/tokengraph/indexer/configs"
	"github.com/tokengraph/indexer/internal/common"
	"github.com/tokengraph/indexer/internal/metrics"
	"github.com/twmb/franz-go/pkg/kgo"
	"github.com/twmb/franz-go/pkg/sasl/plain"
)

// Publisher forwards processed transfers and updated account snapshots to
// Kafka. It is a no-op unless brokers are configured.
type Publisher struct {
	client *kgo.Client
	mu     sync.RWMutex
}

var (
	instance *Publisher
	once     sync.Once
)

type PublishableMessage[T common.Transfer | common.Account] struct {
	Data   T      `json:"data"`
	Status string `json:"status"`
}

// GetInstance returns the singleton Publisher instance
func GetInstance() *Publisher {
	once.Do(func() {
		instance = &Publisher{}
		if err := instance.initialize(); err != nil {
			log.Error().Err(err).Msg("Failed to initialize publisher")
		}
	})
	return instance
}

func (p *Publisher) initialize() error {
	if !config.Cfg.Publisher.Enabled {
		log.Debug().Msg("Publisher is disabled, skipping initialization")
		return nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if config.Cfg.Publisher.Brokers == "" {
		log.Info().Msg("No Kafka brokers configured, skipping publisher initialization")
		return nil
	}

	brokers := strings.Split(config.Cfg.Publisher.Brokers, ",")
	opts := []kgo.Opt{
		kgo.SeedBrokers(brokers...),
		kgo.AllowAutoTopicCreation(),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
		kgo.ClientID("tokengraph-indexer"),
		kgo.MetadataMaxAge(60 * time.Second),
		kgo.DialTimeout(10 * time.Second),
	}

	if config.Cfg.Publisher.Username != "" && config.Cfg.Publisher.Password != "" {
		opts = append(opts, kgo.SASL(plain.Auth{
			User: config.Cfg.Publisher.Username,
			Pass: config.Cfg.Publisher.Password,
		}.AsMechanism()))
		tlsDialer := &tls.Dialer{NetDialer: &net.Dialer{Timeout: 10 * time.Second}}
		opts = append(opts, kgo.Dialer(tlsDialer.DialContext))
	}

	client, err := kgo.NewClient(opts...)
	if err != nil {
		return fmt.Errorf("failed to create Kafka client: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := client.Ping(ctx); err != nil {
		client.Close()
		return fmt.Errorf("failed to connect to Kafka: %v", err)
	}
	p.client = client
	return nil
}

// PublishTransfer emits one processed transfer and the account snapshots it
// touched.
func (p *Publisher) PublishTransfer(transfer *common.Transfer, accounts []common.Account) error {
	if p.client == nil || transfer == nil {
		return nil
	}

	publishStart := time.Now()

	messages := make([]*kgo.Record, 0, len(accounts)+1)
	transferMsg, err := p.createTransferMessage(transfer)
	if err != nil {
		return fmt.Errorf("failed to create transfer message: %v", err)
	}
	messages = append(messages, transferMsg)

	for i := range accounts {
		accountMsg, err := p.createAccountMessage(&accounts[i])
		if err != nil {
			return fmt.Errorf("failed to create account message: %v", err)
		}
		messages = append(messages, accountMsg)
	}

	if err := p.publishMessages(context.Background(), messages); err != nil {
		return err
	}

	metrics.PublisherTransferCounter.Inc()
	metrics.PublisherAccountCounter.Add(float64(len(accounts)))
	metrics.PublishDuration.Observe(time.Since(publishStart).Seconds())
	return nil
}

func (p *Publisher) createTransferMessage(transfer *common.Transfer) (*kgo.Record, error) {
	msg := PublishableMessage[common.Transfer]{
		Data:   *transfer,
		Status: "new",
	}
	msgJson, err := json.Marshal(msg)
	if err != nil {
		return nil, err
	}
	return &kgo.Record{
		Topic: topicOrDefault(config.Cfg.Publisher.TransfersTopic, "tokengraph.transfers"),
		Key:   []byte(transfer.ID),
		Value: msgJson,
	}, nil
}

func (p *Publisher) createAccountMessage(account *common.Account) (*kgo.Record, error) {
	msg := PublishableMessage[common.Account]{
		Data:   *account,
		Status: "updated",
	}
	msgJson, err := json.Marshal(msg)
	if err != nil {
		return nil, err
	}
	return &kgo.Record{
		Topic: topicOrDefault(config.Cfg.Publisher.AccountsTopic, "tokengraph.accounts"),
		Key:   []byte(account.ID),
		Value: msgJson,
	}, nil
}

func topicOrDefault(topic string, fallback string) string {
	if topic != "" {
		return topic
	}
	return fallback
}

func (p *Publisher) publishMessages(ctx context.Context, messages []*kgo.Record) error {
	if len(messages) == 0 {
		return nil
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.client == nil {
		return nil // Skip if no client configured
	}

	var wg sync.WaitGroup
	wg.Add(len(messages))
	for _, msg := range messages {
		p.client.Produce(ctx, msg, func(_ *kgo.Record, err error) {
			defer wg.Done()
			if err != nil {
				log.Error().Err(err).Msg("Failed to publish message to Kafka")
			}
		})
	}
	wg.Wait()

	return nil
}

func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.client != nil {
		p.client.Close()
		log.Debug().Msg("Publisher client closed")
	}
	return nil
}
