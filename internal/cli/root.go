package cli

import (
	"context"
	"time"

	model "github.com/glkeru/skn/internal/models"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type Placer interface {
	PlaceMember(ctx context.Context, memberID string, sponsorID string) error
	Resume(ctx context.Context, memberID string) error
	Reconcile(ctx context.Context, olderThan time.Duration, limit int64, workers int) (int, error)
}

type PinGenerator interface {
	GeneratePins(ctx context.Context, count int, adminID string) ([]model.Pin, error)
}

// Сервисы для команд, открываются только при запуске команды
type Services struct {
	Logger    *zap.Logger
	Placement Placer
	Pins      PinGenerator
	Close     func()
}

type Opener func(ctx context.Context) (*Services, error)

// NewRootCommand creates the sknctl command tree.
func NewRootCommand(open Opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "sknctl",
		Short:         "Administration of the binary placement tree",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(NewPinsCommand(open))
	cmd.AddCommand(NewPlaceCommand(open))
	cmd.AddCommand(NewResumeCommand(open))
	cmd.AddCommand(NewReconcileCommand(open))

	return cmd
}

func withServices(cmd *cobra.Command, open Opener, run func(ctx context.Context, s *Services) error) error {
	ctx := cmd.Context()
	s, err := open(ctx)
	if err != nil {
		return err
	}
	if s.Close != nil {
		defer s.Close()
	}
	return run(ctx, s)
}
