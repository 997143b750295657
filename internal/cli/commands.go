package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func NewPinsCommand(open Opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pins",
		Short: "Referral PIN codes",
	}

	var count int
	var admin string
	generate := &cobra.Command{
		Use:   "generate",
		Short: "Generate a batch of unused PIN codes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if count < 1 || count > 1000 {
				return fmt.Errorf("--count must be between 1 and 1000")
			}
			return withServices(cmd, open, func(ctx context.Context, s *Services) error {
				pins, err := s.Pins.GeneratePins(ctx, count, admin)
				if err != nil {
					return err
				}
				for _, p := range pins {
					fmt.Fprintln(cmd.OutOrStdout(), p.Code)
				}
				return nil
			})
		},
	}
	generate.Flags().IntVar(&count, "count", 10, "number of codes")
	generate.Flags().StringVar(&admin, "admin", "sknctl", "admin id recorded on the codes")
	cmd.AddCommand(generate)

	return cmd
}

func NewPlaceCommand(open Opener) *cobra.Command {
	var sponsor string
	cmd := &cobra.Command{
		Use:   "place <member>",
		Short: "Place a member into the tree under the sponsor's subtree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(cmd, open, func(ctx context.Context, s *Services) error {
				if err := s.Placement.PlaceMember(ctx, args[0], sponsor); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "placed %s\n", args[0])
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&sponsor, "sponsor", "", "sponsor id (default: member's own sponsor)")
	return cmd
}

func NewResumeCommand(open Opener) *cobra.Command {
	return &cobra.Command{
		Use:   "resume <member>",
		Short: "Continue an interrupted propagation from its checkpoint",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(cmd, open, func(ctx context.Context, s *Services) error {
				if err := s.Placement.Resume(ctx, args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "resumed %s\n", args[0])
				return nil
			})
		},
	}
}

type reconcileOptions struct {
	every     string
	olderThan time.Duration
	limit     int64
	workers   int
}

func NewReconcileCommand(open Opener) *cobra.Command {
	opts := &reconcileOptions{}
	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Resume stalled propagations, once or on a cron schedule",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			schedule, err := parseSchedule(opts.every)
			if err != nil {
				return err
			}
			return withServices(cmd, open, func(ctx context.Context, s *Services) error {
				if schedule == nil {
					return reconcileOnce(ctx, cmd, s, opts)
				}
				return reconcileEvery(ctx, cmd, s, opts, schedule)
			})
		},
	}
	cmd.Flags().StringVar(&opts.every, "every", "", `cron schedule, e.g. "@every 5m" (default: run once)`)
	cmd.Flags().DurationVar(&opts.olderThan, "older-than", time.Minute, "skip propagations updated more recently")
	cmd.Flags().Int64Var(&opts.limit, "limit", 500, "members per run")
	cmd.Flags().IntVar(&opts.workers, "workers", 4, "concurrent resumes")
	return cmd
}

func parseSchedule(spec string) (cron.Schedule, error) {
	if spec == "" {
		return nil, nil
	}
	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, fmt.Errorf("--every: %w", err)
	}
	return schedule, nil
}

func reconcileOnce(ctx context.Context, cmd *cobra.Command, s *Services, opts *reconcileOptions) error {
	n, err := s.Placement.Reconcile(ctx, opts.olderThan, opts.limit, opts.workers)
	fmt.Fprintf(cmd.OutOrStdout(), "resumed %d\n", n)
	return err
}

// запуск по расписанию до отмены контекста
func reconcileEvery(ctx context.Context, cmd *cobra.Command, s *Services, opts *reconcileOptions, schedule cron.Schedule) error {
	c := cron.New()
	c.Schedule(schedule, cron.FuncJob(func() {
		n, err := s.Placement.Reconcile(ctx, opts.olderThan, opts.limit, opts.workers)
		if err != nil {
			s.Logger.Error("reconcile", zap.Int("resumed", n), zap.Error(err))
			return
		}
		s.Logger.Info("reconcile", zap.Int("resumed", n))
	}))
	c.Start()
	s.Logger.Info("reconcile scheduled", zap.String("every", opts.every))

	<-ctx.Done()
	<-c.Stop().Done()
	return nil
}
