// Job - размещение участников по событиям об оплате
// Опрос Kafka -> Settle до успеха или постоянной ошибки -> коммит по порядку смещений
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/glkeru/skn/internal/app"
	kafka "github.com/glkeru/skn/internal/external/kafka"
	observability "github.com/glkeru/skn/observability/otel"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const (
	settleTries = 5
	// пауза между сериями повторов при временной ошибке
	settlePause = 10 * time.Second
)

func main() {
	// log
	logger, err := app.NewLogger()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdown, err := observability.InitTracer(ctx, "skn-placements", logger)
	if err != nil {
		logger.Warn("tracing is disabled", zap.Error(err))
	}
	defer shutdown()

	// kafka
	reader, err := kafka.GetNewReader(kafka.PaymentsTopic)
	if err != nil {
		panic(err)
	}
	defer reader.CloseReader()

	a, err := app.New(ctx, logger)
	if err != nil {
		logger.Fatal("init", zap.Error(err))
	}
	defer a.Close()

	// os signals
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-interrupt
		cancel()
	}()

	wg := &sync.WaitGroup{}
	semaphore := make(chan struct{}, app.Workers("SKN_PLACEMENTS_COUNT", 5))
	offsets := kafka.NewOffsetTracker()

	for {
		msg, err := reader.GetNewMessage(ctx)
		if err != nil {
			if !errors.Is(err, context.Canceled) {
				logger.Error("kafka", zap.Error(err))
			}
			break
		}

		semaphore <- struct{}{}
		offsets.Start(msg)
		wg.Add(1)
		go func(msg kafkago.Message) {
			defer wg.Done()
			defer func() { <-semaphore }()
			if !handle(ctx, a, msg) {
				return
			}
			if err := offsets.Complete(ctx, msg, reader.Commit); err != nil {
				logger.Error("kafka commit", zap.Int64("offset", msg.Offset), zap.Error(err))
			}
		}(msg)
	}
	wg.Wait()
}

// false - обработка прервана остановкой, сообщение не коммитится и придет снова
func handle(ctx context.Context, a *app.App, msg kafkago.Message) bool {
	logger := a.Logger
	event, err := kafka.ParsePaymentApproved(msg.Value)
	if err != nil {
		// битое сообщение не повторяем
		logger.Error("skip message", zap.Int64("offset", msg.Offset), zap.Error(err))
		return true
	}

	for {
		err = app.Retry(ctx, settleTries, func() error {
			return a.Placement.Settle(ctx, event.MemberID, event.SponsorID)
		})
		if err == nil {
			return true
		}
		if ctx.Err() != nil {
			return false
		}
		if !app.Transient(err) {
			logger.Error("settle",
				zap.String("member", event.MemberID),
				zap.Error(err),
			)
			return true
		}
		logger.Warn("settle, retrying",
			zap.String("member", event.MemberID),
			zap.Error(err),
		)
		select {
		case <-ctx.Done():
			return false
		case <-time.After(settlePause):
		}
	}
}
