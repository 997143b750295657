// Job - обработка заявок на вывод из RabbitMQ
package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/glkeru/skn/internal/app"
	rabbit "github.com/glkeru/skn/internal/external/rabbitmq"
	skn "github.com/glkeru/skn/internal/services"
	"go.uber.org/zap"
)

func main() {
	// log
	logger, err := app.NewLogger()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	// rabbitmq
	reader, err := rabbit.NewRabbitConsumer()
	if err != nil {
		logger.Error(err.Error())
		panic(err)
	}
	defer reader.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

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

	// workers
	semcount := app.Workers("SKN_WITHDRAWALS_COUNT", 5)
	wg := &sync.WaitGroup{}
	wg.Add(semcount)
	for i := 0; i < semcount; i++ {
		go worker(ctx, a.Admin, wg, logger, reader)
	}
	wg.Wait()
}

// worker for rabbitmq messages
// Повторная доставка безопасна: requestId - ID заявки, повтор возвращает ту же заявку
func worker(ctx context.Context, serv *skn.AdminService, wg *sync.WaitGroup, logger *zap.Logger, reader *rabbit.RabbitConsumer) {
	defer wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-reader.Msg:
			if !ok {
				return
			}
			confirm, err := process(ctx, serv, msg.Body)
			if err != nil {
				// временная ошибка хранилища: сообщение вернется в очередь
				logger.Warn("withdrawal, requeue", zap.String("request", confirm.RequestID), zap.Error(err))
				_ = msg.Nack(false, true)
				continue
			}
			if confirm.RequestID != "" {
				if err := reader.Processed(ctx, confirm); err != nil {
					logger.Error("confirm", zap.String("request", confirm.RequestID), zap.Error(err))
					_ = msg.Nack(false, true)
					continue
				}
			} else {
				logger.Warn("skip message without requestId", zap.ByteString("body", msg.Body))
			}
			if err := msg.Ack(false); err != nil {
				logger.Error("ack", zap.Error(err))
			}
		}
	}
}

// Ошибка возвращается только временная, остальные уходят в подтверждение
func process(ctx context.Context, serv *skn.AdminService, body []byte) (rabbit.WithdrawalConfirm, error) {
	req, err := rabbit.ParseWithdrawal(body)
	if err != nil {
		if req == nil {
			return rabbit.WithdrawalConfirm{}, nil
		}
		return rabbit.WithdrawalConfirm{RequestID: req.RequestID, Error: err.Error()}, nil
	}
	w, err := serv.CreateWithdrawal(ctx, req.RequestID, req.MemberID, req.Amount, req.Pin)
	if app.Transient(err) {
		return rabbit.WithdrawalConfirm{RequestID: req.RequestID}, err
	}
	if err != nil {
		return rabbit.WithdrawalConfirm{RequestID: req.RequestID, Error: err.Error()}, nil
	}
	return rabbit.WithdrawalConfirm{RequestID: req.RequestID, WithdrawalID: w.ID, Success: true}, nil
}
