package skn

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	amqp "github.com/rabbitmq/amqp091-go"
)

type RabbitConsumer struct {
	conn  *amqp.Connection
	ch    *amqp.Channel
	Msg   <-chan amqp.Delivery
	chout *amqp.Channel
}

const queue = "withdrawals"
const queueout = "withdrawal_confirms"

// Заявка на вывод из очереди
type WithdrawalMessage struct {
	RequestID string `json:"requestId"`
	MemberID  string `json:"memberId"`
	Amount    int64  `json:"amount"`
	Pin       string `json:"pin"`
}

func ParseWithdrawal(data []byte) (*WithdrawalMessage, error) {
	var w WithdrawalMessage
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("withdrawal message: %w", err)
	}
	if w.RequestID == "" {
		return nil, fmt.Errorf("withdrawal message: requestId is empty")
	}
	if w.MemberID == "" {
		return &w, fmt.Errorf("withdrawal message %s: memberId is empty", w.RequestID)
	}
	return &w, nil
}

func rabbitURL() (string, error) {
	rabbiturl := os.Getenv("SKN_RABBIT_URL")
	if rabbiturl == "" {
		return "", fmt.Errorf("env SKN_RABBIT_URL is not set")
	}
	rabbitport := os.Getenv("SKN_RABBIT_PORT")
	if rabbitport == "" {
		return "", fmt.Errorf("env SKN_RABBIT_PORT is not set")
	}
	rabbituser := os.Getenv("SKN_RABBIT_USER")
	if rabbituser == "" {
		return "", fmt.Errorf("env SKN_RABBIT_USER is not set")
	}
	rabbitpass := os.Getenv("SKN_RABBIT_PASSWORD")
	if rabbitpass == "" {
		return "", fmt.Errorf("env SKN_RABBIT_PASSWORD is not set")
	}
	return "amqp://" + rabbituser + ":" + rabbitpass + "@" + rabbiturl + ":" + rabbitport + "/skn", nil
}

func NewRabbitConsumer() (rabbit *RabbitConsumer, err error) {
	rabbitconn, err := rabbitURL()
	if err != nil {
		return nil, err
	}
	conn, err := amqp.Dial(rabbitconn)
	if err != nil {
		return nil, err
	}
	// канал для входящих
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}
	_, err = ch.QueueDeclare(
		queue, // name
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	// канал для исходящих
	chout, err := conn.Channel()
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}
	_, err = chout.QueueDeclare(
		queueout, // name
		true,     // durable
		false,    // delete when unused
		false,    // exclusive
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		chout.Close()
		ch.Close()
		conn.Close()
		return nil, err
	}

	msg, err := ch.Consume(
		queue, // queue
		"",    // consumer
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,   // args
	)
	if err != nil {
		chout.Close()
		ch.Close()
		conn.Close()
		return nil, err
	}

	return &RabbitConsumer{conn, ch, msg, chout}, nil
}

func (r *RabbitConsumer) Close() {
	r.chout.Close()
	r.ch.Close()
	r.conn.Close()
}

type WithdrawalConfirm struct {
	RequestID    string `json:"requestId"`
	WithdrawalID string `json:"withdrawalId,omitempty"`
	Success      bool   `json:"success"`
	Error        string `json:"error,omitempty"`
}

// подтверждение заявки
func (r *RabbitConsumer) Processed(ctx context.Context, confirm WithdrawalConfirm) error {
	msg, err := json.Marshal(confirm)
	if err != nil {
		return err
	}

	return r.chout.PublishWithContext(ctx,
		"",       // exchange
		queueout, // routing key
		false,    // mandatory
		false,    // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         msg,
		})
}
