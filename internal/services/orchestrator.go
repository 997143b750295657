package skn

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/glkeru/skn/internal/config"
	interf "github.com/glkeru/skn/internal/interfaces"
	model "github.com/glkeru/skn/internal/models"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// попыток занять слот при гонке размещений
const maxPlacementAttempts = 8

type PlacementService struct {
	logger   *zap.Logger
	members  interf.MemberStorage
	resolver *Resolver
	engine   *PropagationEngine
	plan     *config.Plan
}

func NewPlacementService(logger *zap.Logger, members interf.MemberStorage, resolver *Resolver, engine *PropagationEngine, plan *config.Plan) *PlacementService {
	return &PlacementService{logger, members, resolver, engine, plan}
}

// Размещение активированного участника под спонсором.
// Уже размещенный участник - без изменений и без повторного распространения
func (s *PlacementService) PlaceMember(ctx context.Context, memberID string, sponsorID string) error {
	ctx, span := tracer.Start(ctx, "PlaceMember")
	defer span.End()
	span.SetAttributes(attribute.String("member", memberID))

	member, err := s.members.GetMember(ctx, memberID)
	if err != nil {
		return fmt.Errorf("place %s: %w", memberID, err)
	}
	if member.Placed() {
		s.logger.Debug("member already placed", zap.String("member", memberID))
		placementsTotal.WithLabelValues("noop").Inc()
		return nil
	}

	rootID := sponsorID
	if rootID == "" {
		rootID = member.SponsorID
	}
	if rootID == "" || rootID == memberID {
		placementsTotal.WithLabelValues("no_sponsor").Inc()
		return fmt.Errorf("place %s: %w", memberID, model.ErrNoSponsor)
	}

	slot, err := s.attach(ctx, memberID, rootID)
	if errors.Is(err, model.ErrAlreadyPlaced) {
		placementsTotal.WithLabelValues("noop").Inc()
		return nil
	}
	if err != nil {
		placementsTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("place %s: %w", memberID, err)
	}

	s.logger.Info("member placed",
		zap.String("member", memberID),
		zap.String("parent", slot.ParentID),
		zap.String("side", string(slot.Side)),
		zap.Int("depth", slot.Depth),
	)
	placementsTotal.WithLabelValues("placed").Inc()

	return s.engine.Propagate(ctx, memberID, slot.ParentID, slot.Side)
}

// Позиция участника, затем указатель родителя. Проиграли гонку за слот -
// позиция снимается и слот ищется заново
func (s *PlacementService) attach(ctx context.Context, memberID string, rootID string) (model.Slot, error) {
	for attempt := 1; attempt <= maxPlacementAttempts; attempt++ {
		slot, err := s.resolver.FindSlot(ctx, rootID, s.plan.Strategy)
		if err != nil {
			return slot, err
		}

		pos := model.Position{
			Slot:       slot,
			Checkpoint: model.Checkpoint{NextAncestorID: slot.ParentID, Side: slot.Side},
		}
		if err := s.members.SetPosition(ctx, memberID, pos); err != nil {
			return slot, err
		}

		err = s.members.ClaimChild(ctx, slot.ParentID, slot.Side, memberID)
		if err == nil {
			return slot, nil
		}
		if !errors.Is(err, model.ErrConcurrentPlacement) {
			// позиция записана, указатель починит Resume или следующий поиск слота
			return slot, err
		}

		casConflicts.WithLabelValues("slot").Inc()
		s.logger.Info("slot taken, retrying",
			zap.String("member", memberID),
			zap.String("parent", slot.ParentID),
			zap.String("side", string(slot.Side)),
			zap.Int("attempt", attempt),
		)
		if err := s.members.ClearPosition(ctx, memberID, slot.ParentID); err != nil {
			return slot, err
		}
	}
	return model.Slot{}, model.ErrConcurrentPlacement
}

// Продолжить прерванное распространение с сохраненного предка
func (s *PlacementService) Resume(ctx context.Context, memberID string) error {
	member, err := s.members.GetMember(ctx, memberID)
	if err != nil {
		return fmt.Errorf("resume %s: %w", memberID, err)
	}
	if !member.PropagationPending() {
		return nil
	}
	cp := *member.Propagation

	if member.ParentID != "" {
		err = s.members.ClaimChild(ctx, member.ParentID, member.Side, member.ID)
		if errors.Is(err, model.ErrConcurrentPlacement) && cp.NextAncestorID == member.ParentID {
			// указатель так и не был записан, а слот занят другим: размещаем заново
			s.logger.Warn("position lost, placing again",
				zap.String("member", memberID),
				zap.String("parent", member.ParentID),
			)
			if err := s.members.ClearPosition(ctx, memberID, member.ParentID); err != nil {
				return fmt.Errorf("resume %s: %w", memberID, err)
			}
			return s.PlaceMember(ctx, memberID, member.SponsorID)
		}
		if err != nil {
			return fmt.Errorf("resume %s: %w", memberID, err)
		}
	}

	s.logger.Info("resume propagation",
		zap.String("member", memberID),
		zap.String("ancestor", cp.NextAncestorID),
	)
	return s.engine.Propagate(ctx, memberID, cp.NextAncestorID, cp.Side)
}

// Размещение или продолжение - безопасно для повторов из очередей
func (s *PlacementService) Settle(ctx context.Context, memberID string, sponsorID string) error {
	member, err := s.members.GetMember(ctx, memberID)
	if err != nil {
		return fmt.Errorf("settle %s: %w", memberID, err)
	}
	switch {
	case !member.Placed():
		return s.PlaceMember(ctx, memberID, sponsorID)
	case member.PropagationPending():
		return s.Resume(ctx, memberID)
	}
	return nil
}

// Продолжить незавершенные распространения, которые не двигались дольше olderThan
func (s *PlacementService) Reconcile(ctx context.Context, olderThan time.Duration, limit int64, workers int) (resumed int, err error) {
	pending, err := s.members.PendingPropagations(ctx, time.Now().Add(-olderThan), limit)
	if err != nil {
		return 0, fmt.Errorf("reconcile: %w", err)
	}

	var done atomic.Int64
	g := &errgroup.Group{}
	g.SetLimit(max(workers, 1))
	for _, m := range pending {
		g.Go(func() error {
			if err := s.Resume(ctx, m.ID); err != nil {
				s.logger.Error("reconcile",
					zap.String("member", m.ID),
					zap.Error(err),
				)
				return err
			}
			done.Add(1)
			return nil
		})
	}
	err = g.Wait()
	return int(done.Load()), err
}

// Предпросмотр слота для спонсора
func (s *PlacementService) PreviewSlot(ctx context.Context, sponsorID string) (model.Slot, error) {
	return s.resolver.FindSlot(ctx, sponsorID, s.plan.Strategy)
}

func (s *PlacementService) Member(ctx context.Context, memberID string) (*model.Member, error) {
	return s.members.GetMember(ctx, memberID)
}
