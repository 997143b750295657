package skn

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/glkeru/skn/internal/config"
	interf "github.com/glkeru/skn/internal/interfaces"
	model "github.com/glkeru/skn/internal/models"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// сколько раз перечитывать предка при конфликте версий
const maxVersionRetries = 16

// Подъем по дереву после размещения: счетчики, пары, звезды
type PropagationEngine struct {
	logger  *zap.Logger
	members interf.MemberStorage
	ledger  *LedgerWriter
	cache   interf.CacheStorage
	plan    *config.Plan
}

func NewPropagationEngine(logger *zap.Logger, members interf.MemberStorage, ledger *LedgerWriter, cache interf.CacheStorage, plan *config.Plan) *PropagationEngine {
	return &PropagationEngine{logger, members, ledger, cache, plan}
}

func placementKey(placedID string) string {
	return "place:" + placedID
}

// Обход предков от startParentID. Прогресс хранится в Propagation размещенного
// участника: чекпоинт сдвигается с предка на следующего, и только потом с предка
// снимается ключ размещения. Сдвинул чекпоинт другой обход - этот останавливается
func (e *PropagationEngine) Propagate(ctx context.Context, placedID string, startParentID string, side model.Side) error {
	ctx, span := tracer.Start(ctx, "Propagate")
	defer span.End()
	span.SetAttributes(attribute.String("member", placedID), attribute.String("start", startParentID))

	if startParentID == "" {
		err := e.finish(ctx, placedID, "")
		if errors.Is(err, model.ErrCheckpointMoved) {
			return nil
		}
		return err
	}

	key := placementKey(placedID)
	ancestorID := startParentID
	for ancestorID != "" {
		next, nextSide, err := e.step(ctx, key, placedID, ancestorID, side)
		if errors.Is(err, model.ErrCheckpointMoved) {
			e.superseded(placedID, ancestorID)
			return nil
		}
		if err != nil {
			return fmt.Errorf("propagate %s at %s: %w", placedID, ancestorID, err)
		}
		propagationSteps.Inc()
		span.AddEvent("ancestor", trace.WithAttributes(attribute.String("id", ancestorID)))

		if next == "" {
			err = e.finish(ctx, placedID, ancestorID)
		} else {
			err = e.members.SaveCheckpoint(ctx, placedID, ancestorID, model.Checkpoint{NextAncestorID: next, Side: nextSide})
		}
		if errors.Is(err, model.ErrCheckpointMoved) {
			e.superseded(placedID, ancestorID)
			return nil
		}
		if err != nil {
			return fmt.Errorf("checkpoint %s: %w", placedID, err)
		}

		// оставшийся ключ за пройденным чекпоинтом ни на что не влияет
		if err := e.members.ReleaseKey(ctx, ancestorID, key); err != nil {
			e.logger.Warn("release placement key",
				zap.String("ancestor", ancestorID),
				zap.String("member", placedID),
				zap.Error(err),
			)
		}
		ancestorID, side = next, nextSide
	}
	return nil
}

// Бонус спонсору и закрытие чекпоинта, стоящего на from
func (e *PropagationEngine) finish(ctx context.Context, placedID string, from string) error {
	if err := e.CreditSponsorBonus(ctx, placedID); err != nil {
		return err
	}
	return e.members.SaveCheckpoint(ctx, placedID, from, model.Checkpoint{Done: true})
}

func (e *PropagationEngine) superseded(placedID string, ancestorID string) {
	e.logger.Debug("propagation continued by another run",
		zap.String("member", placedID),
		zap.String("ancestor", ancestorID),
	)
}

// Один предок. Возвращает следующего предка и сторону, с которой к нему пришли
func (e *PropagationEngine) step(ctx context.Context, key string, placedID string, ancestorID string, side model.Side) (next string, nextSide model.Side, err error) {
	for attempt := 0; ; attempt++ {
		// предок читается до чекпоинта: если другой обход уже прошел предка,
		// здесь виден сдвинутый чекпоинт, иначе не пройдет CAS по версии
		anc, err := e.members.GetMember(ctx, ancestorID)
		if err != nil {
			return "", "", err
		}
		placed, err := e.members.GetMember(ctx, placedID)
		if err != nil {
			return "", "", err
		}
		if !placed.PropagationAt(ancestorID) {
			return "", "", model.ErrCheckpointMoved
		}
		if anc.Pending(key) {
			e.logger.Debug("placement already counted",
				zap.String("ancestor", anc.ID),
				zap.String("member", placedID),
			)
			return anc.ParentID, anc.Side, nil
		}

		counters, err := e.apply(ctx, anc, placedID, side)
		if err != nil {
			return "", "", err
		}

		err = e.members.UpdateCounters(ctx, anc.ID, anc.Version, counters, key)
		if errors.Is(err, model.ErrVersionConflict) && attempt < maxVersionRetries {
			casConflicts.WithLabelValues("counters").Inc()
			continue
		}
		if err != nil {
			return "", "", err
		}
		e.invalidate(ctx, anc.ID)
		return anc.ParentID, anc.Side, nil
	}
}

// Новые счетчики предка и записи в журнал для новых пар и звезды.
// В TotalEarnings входят и записи, созданные раньше прерванной попыткой
func (e *PropagationEngine) apply(ctx context.Context, anc *model.Member, placedID string, side model.Side) (model.Counters, error) {
	before := anc.Counters()
	after := before
	if side == model.SideLeft {
		after.LeftActiveCount++
	} else {
		after.RightActiveCount++
	}

	possible := min(after.LeftActiveCount, after.RightActiveCount)
	newPairs := max(0, possible-before.PairsCompleted)

	leftID, rightID := placedID, anc.RightChildID
	if side == model.SideRight {
		leftID, rightID = anc.LeftChildID, placedID
	}
	for i := before.PairsCompleted + 1; i <= before.PairsCompleted+newPairs; i++ {
		amount := e.plan.PairAmount(i)
		created, err := e.ledger.CreatePairRecord(ctx, model.PairRecord{
			MemberID:      anc.ID,
			PairNumber:    i,
			LeftMemberID:  leftID,
			RightMemberID: rightID,
			Amount:        amount,
		})
		if err != nil {
			return after, fmt.Errorf("pair %d: %w", i, err)
		}
		_, err = e.ledger.CreateEarning(ctx, model.Earning{
			MemberID:   anc.ID,
			SourceType: model.SourcePair,
			SourceID:   model.PairSourceID(i),
			Amount:     amount,
			Currency:   e.plan.Currency,
		})
		if err != nil {
			return after, fmt.Errorf("pair earning %d: %w", i, err)
		}
		if created {
			pairsCredited.Inc()
		}
		after.TotalEarnings += amount
	}
	after.PairsCompleted = before.PairsCompleted + newPairs

	// только верхний достигнутый уровень
	if level, ok := e.plan.StarLevelFor(after.PairsCompleted); ok && level.Level > before.StarLevel {
		created, err := e.ledger.CreateEarning(ctx, model.Earning{
			MemberID:   anc.ID,
			SourceType: model.SourceStarReward,
			SourceID:   model.StarSourceID(level.Level),
			Amount:     level.Reward,
			Currency:   e.plan.Currency,
			Note:       level.Title,
		})
		if err != nil {
			return after, fmt.Errorf("star %d: %w", level.Level, err)
		}
		if created {
			starRewards.WithLabelValues(strconv.Itoa(level.Level)).Inc()
			e.logger.Info("star level reached",
				zap.String("member", anc.ID),
				zap.Int("level", level.Level),
				zap.Int64("reward", level.Reward),
			)
		}
		after.TotalEarnings += level.Reward
		after.StarLevel = level.Level
	}
	return after, nil
}

// Бонус спонсору за размещенного участника, если включен в плане
func (e *PropagationEngine) CreditSponsorBonus(ctx context.Context, placedID string) error {
	if e.plan.SponsorBonus <= 0 {
		return nil
	}
	placed, err := e.members.GetMember(ctx, placedID)
	if err != nil {
		return fmt.Errorf("sponsor bonus for %s: %w", placedID, err)
	}
	if placed.SponsorID == "" || placed.SponsorID == placedID {
		return nil
	}
	err = e.credit(ctx, "bonus:"+placedID, model.Earning{
		MemberID:   placed.SponsorID,
		SourceType: model.SourceSponsorBonus,
		SourceID:   model.SponsorSourceID(placedID),
		Amount:     e.plan.SponsorBonus,
		Currency:   e.plan.Currency,
	})
	if err != nil {
		return fmt.Errorf("sponsor bonus for %s: %w", placedID, err)
	}
	return nil
}

// Ручное начисление администратором, sourceID - ключ идемпотентности
func (e *PropagationEngine) CreditManual(ctx context.Context, memberID string, sourceID string, amount int64, note string) error {
	if amount <= 0 {
		return model.ErrInvalidAmount
	}
	if sourceID == "" {
		return fmt.Errorf("manual credit for %s: source id is required", memberID)
	}
	return e.credit(ctx, "manual:"+sourceID, model.Earning{
		MemberID:   memberID,
		SourceType: model.SourceManual,
		SourceID:   sourceID,
		Amount:     amount,
		Currency:   e.plan.Currency,
		Note:       note,
	})
}

// Начисление вне пар: TotalEarnings тем же CAS, что и при подъеме, затем запись в журнал.
// Повтор с тем же ключом ничего не добавляет
func (e *PropagationEngine) credit(ctx context.Context, key string, earning model.Earning) error {
	applied, err := updateOnce(ctx, e.members, earning.MemberID, onceUpdate{
		key: key,
		op:  "credit",
		recorded: func(ctx context.Context) (bool, error) {
			return e.ledger.Recorded(ctx, earning)
		},
		change: func(m *model.Member) (model.Counters, error) {
			counters := m.Counters()
			counters.TotalEarnings += earning.Amount
			return counters, nil
		},
		record: func(ctx context.Context) error {
			_, err := e.ledger.CreateEarning(ctx, earning)
			return err
		},
	})
	if applied {
		e.logger.Info("earning credited",
			zap.String("member", earning.MemberID),
			zap.String("source", string(earning.SourceType)),
			zap.String("id", earning.SourceID),
			zap.Int64("amount", earning.Amount),
		)
		e.invalidate(ctx, earning.MemberID)
	}
	return err
}

func (e *PropagationEngine) invalidate(ctx context.Context, memberID string) {
	if e.cache == nil {
		return
	}
	if err := e.cache.InvalidateBalance(ctx, memberID); err != nil {
		e.logger.Warn("balance cache",
			zap.String("member", memberID),
			zap.Error(err),
		)
	}
}
