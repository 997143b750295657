package skn

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/segmentio/kafka-go"
)

const (
	PaymentsTopic = "payments_approved"
	paymentsGroup = "skn_placements"
)

// Событие об одобренной оплате
type PaymentApproved struct {
	MemberID  string `json:"memberId"`
	SponsorID string `json:"sponsorId"`
}

func ParsePaymentApproved(data []byte) (*PaymentApproved, error) {
	var p PaymentApproved
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("payment event: %w", err)
	}
	if p.MemberID == "" {
		return nil, fmt.Errorf("payment event: memberId is empty")
	}
	return &p, nil
}

type KafkaPayments struct {
	reader *kafka.Reader
}

func GetNewReader(topic string) (reader *KafkaPayments, err error) {
	// config
	kafkaurl := os.Getenv("SKN_KAFKA_URL")
	if kafkaurl == "" {
		return nil, fmt.Errorf("env SKN_KAFKA_URL is not set")
	}
	kafkaport := os.Getenv("SKN_KAFKA_PORT")
	if kafkaport == "" {
		return nil, fmt.Errorf("env SKN_KAFKA_PORT is not set")
	}

	kafkaconfig := kafka.ReaderConfig{
		Brokers: []string{kafkaurl + ":" + kafkaport},
		Topic:   topic,
		GroupID: paymentsGroup,
	}
	return &KafkaPayments{kafka.NewReader(kafkaconfig)}, nil
}

// Сообщение без коммита, коммит после обработки
func (k *KafkaPayments) GetNewMessage(ctx context.Context) (kafka.Message, error) {
	return k.reader.FetchMessage(ctx)
}

func (k *KafkaPayments) Commit(ctx context.Context, msg kafka.Message) error {
	return k.reader.CommitMessages(ctx, msg)
}

func (k *KafkaPayments) CloseReader() {
	k.reader.Close()
}
