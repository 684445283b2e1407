package app

import (
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/crs/internal/messaging/kafka"
)

// initKafkaProducer создаёт Kafka producer для публикации outbox-событий.
// Пустой список брокеров означает запуск без Kafka и не считается ошибкой.
func initKafkaProducer(brokersRaw string, logger *log.Entry) (*kafka.Producer, error) {
	brokersRaw = strings.TrimSpace(brokersRaw)
	if brokersRaw == "" {
		return nil, nil
	}

	brokers := strings.Split(brokersRaw, ",")
	for i := range brokers {
		brokers[i] = strings.TrimSpace(brokers[i])
	}

	producer, err := kafka.NewProducer(brokers)
	if err != nil {
		return nil, err
	}

	logger.WithField("brokers", brokers).Info("kafka producer initialized")
	return producer, nil
}

// closeKafka закрывает producer, если он был создан.
func closeKafka(producer *kafka.Producer, logger *log.Entry) {
	if producer == nil {
		return
	}
	if err := producer.Close(); err != nil {
		logger.WithError(err).Warn("failed to close kafka producer")
		return
	}
	logger.Info("kafka producer closed")
}
