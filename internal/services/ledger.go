package skn

import (
	"context"
	"errors"

	interf "github.com/glkeru/skn/internal/interfaces"
	model "github.com/glkeru/skn/internal/models"
	"go.uber.org/zap"
)

// Журнал пар и начислений. Повторная запись по тому же ключу - не ошибка
type LedgerWriter struct {
	logger *zap.Logger
	db     interf.LedgerStorage
}

func NewLedgerWriter(logger *zap.Logger, db interf.LedgerStorage) *LedgerWriter {
	return &LedgerWriter{logger, db}
}

func (l *LedgerWriter) CreatePairRecord(ctx context.Context, pair model.PairRecord) (created bool, err error) {
	err = l.db.InsertPair(ctx, pair)
	if errors.Is(err, model.ErrLedgerConflict) {
		l.logger.Debug("pair already recorded",
			zap.String("member", pair.MemberID),
			zap.Int64("pair", pair.PairNumber),
		)
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (l *LedgerWriter) CreateEarning(ctx context.Context, earning model.Earning) (created bool, err error) {
	err = l.db.InsertEarning(ctx, earning)
	if errors.Is(err, model.ErrLedgerConflict) {
		l.logger.Debug("earning already recorded",
			zap.String("member", earning.MemberID),
			zap.String("source", earning.SourceID),
		)
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (l *LedgerWriter) Recorded(ctx context.Context, earning model.Earning) (bool, error) {
	return l.db.HasEarning(ctx, earning.MemberID, earning.SourceType, earning.SourceID)
}

func (l *LedgerWriter) Pairs(ctx context.Context, memberID string) ([]model.PairRecord, error) {
	return l.db.GetPairs(ctx, memberID)
}

func (l *LedgerWriter) Earnings(ctx context.Context, memberID string) ([]model.Earning, error) {
	return l.db.GetEarnings(ctx, memberID)
}
