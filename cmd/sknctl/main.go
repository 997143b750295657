// CLI администратора: пин-коды, ручное размещение, reconcile по расписанию
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/glkeru/skn/internal/app"
	"github.com/glkeru/skn/internal/cli"
)

func main() {
	// log
	logger, err := app.NewLogger()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	open := func(ctx context.Context) (*cli.Services, error) {
		a, err := app.New(ctx, logger)
		if err != nil {
			return nil, err
		}
		return &cli.Services{
			Logger:    logger,
			Placement: a.Placement,
			Pins:      a.Admin,
			Close:     a.Close,
		}, nil
	}

	if err := cli.NewRootCommand(open).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
