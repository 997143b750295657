package skn

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	interf "github.com/glkeru/skn/internal/interfaces"
	model "github.com/glkeru/skn/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	pinAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	pinLength   = 6
	maxPinBatch = 1000
)

// Заявки на оплату и вывод, пин-коды, доступный баланс
type AdminService struct {
	logger    *zap.Logger
	members   interf.MemberStorage
	db        interf.AdminStorage
	cache     interf.CacheStorage
	placement *PlacementService
}

func NewAdminService(logger *zap.Logger, members interf.MemberStorage, db interf.AdminStorage, cache interf.CacheStorage, placement *PlacementService) *AdminService {
	return &AdminService{logger, members, db, cache, placement}
}

// Одобрение оплаты: пин участнику, статус оплаты, размещение в дереве.
// Заявка закрывается последней, повтор после сбоя доводит размещение до конца
func (a *AdminService) ApprovePayment(ctx context.Context, requestID string, adminID string, notes string) error {
	req, err := a.db.GetPaymentRequest(ctx, requestID)
	if err != nil {
		return fmt.Errorf("payment %s: %w", requestID, err)
	}
	if req.Status != model.RequestPending {
		return fmt.Errorf("payment %s: %w", requestID, model.ErrInvalidStatus)
	}
	member, err := a.members.GetMember(ctx, req.MemberID)
	if err != nil {
		return fmt.Errorf("payment %s: %w", requestID, err)
	}

	pin := member.ReferralPin
	if pin == "" {
		p, err := a.memberPin(ctx, member.ID)
		if err != nil {
			return fmt.Errorf("payment %s: %w", requestID, err)
		}
		pin = p.Code
	}
	if err := a.members.SetPayment(ctx, member.ID, model.PaymentApproved, pin); err != nil {
		return fmt.Errorf("payment %s: %w", requestID, err)
	}

	sponsor := req.SponsorID
	if sponsor == "" {
		sponsor = member.SponsorID
	}
	if err := a.placement.Settle(ctx, member.ID, sponsor); err != nil {
		return fmt.Errorf("payment %s: %w", requestID, err)
	}

	if err := a.db.ResolvePaymentRequest(ctx, requestID, model.RequestApproved, adminID, notes); err != nil {
		return fmt.Errorf("payment %s: %w", requestID, err)
	}
	a.logger.Info("payment approved",
		zap.String("request", requestID),
		zap.String("member", member.ID),
		zap.String("admin", adminID),
	)
	return nil
}

// Пин, выданный прошлой попыткой одобрения, иначе новый
func (a *AdminService) memberPin(ctx context.Context, memberID string) (*model.Pin, error) {
	p, err := a.db.AssignedPin(ctx, memberID)
	if errors.Is(err, model.ErrNotFound) {
		return a.db.TakeUnusedPin(ctx, memberID)
	}
	return p, err
}

func (a *AdminService) RejectPayment(ctx context.Context, requestID string, adminID string, reason string) error {
	req, err := a.db.GetPaymentRequest(ctx, requestID)
	if err != nil {
		return fmt.Errorf("payment %s: %w", requestID, err)
	}
	if err := a.db.ResolvePaymentRequest(ctx, requestID, model.RequestRejected, adminID, reason); err != nil {
		return fmt.Errorf("payment %s: %w", requestID, err)
	}
	if err := a.members.SetPayment(ctx, req.MemberID, model.PaymentRejected, ""); err != nil {
		return fmt.Errorf("payment %s: %w", requestID, err)
	}
	a.logger.Info("payment rejected",
		zap.String("request", requestID),
		zap.String("member", req.MemberID),
		zap.String("admin", adminID),
	)
	return nil
}

func withdrawalKey(id string) string {
	return "withdrawal:" + id
}

func refundKey(id string) string {
	return "refund:" + id
}

// Заявка на вывод: сумма > 0, пин участника, не больше доступного баланса.
// Сумма резервируется в WithdrawnTotal тем же CAS по версии, что и начисления.
// requestID - ключ идемпотентности, повтор возвращает уже созданную заявку
func (a *AdminService) CreateWithdrawal(ctx context.Context, requestID string, memberID string, amount int64, pin string) (*model.WithdrawalRequest, error) {
	if amount <= 0 {
		return nil, model.ErrInvalidAmount
	}
	if requestID == "" {
		requestID = uuid.NewString()
	}
	if w, err := a.existingWithdrawal(ctx, requestID, memberID, amount); w != nil || err != nil {
		return w, err
	}

	member, err := a.members.GetMember(ctx, memberID)
	if err != nil {
		return nil, fmt.Errorf("withdrawal for %s: %w", memberID, err)
	}
	if member.ReferralPin == "" || member.ReferralPin != pin {
		return nil, model.ErrInvalidPin
	}

	w := model.WithdrawalRequest{
		ID:        requestID,
		MemberID:  memberID,
		Amount:    amount,
		Status:    model.RequestPending,
		CreatedAt: time.Now(),
	}
	applied, err := updateOnce(ctx, a.members, memberID, onceUpdate{
		key: withdrawalKey(requestID),
		op:  "withdrawal",
		recorded: func(ctx context.Context) (bool, error) {
			return a.withdrawalExists(ctx, requestID)
		},
		change: func(m *model.Member) (model.Counters, error) {
			if amount > m.Available() {
				return model.Counters{}, model.ErrInsufficientBalance
			}
			counters := m.Counters()
			counters.WithdrawnTotal += amount
			return counters, nil
		},
		record: func(ctx context.Context) error {
			err := a.db.CreateWithdrawal(ctx, w)
			if errors.Is(err, model.ErrDuplicate) {
				return nil
			}
			return err
		},
	})
	if applied {
		a.invalidate(ctx, memberID)
	}
	if errors.Is(err, model.ErrInsufficientBalance) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("withdrawal %s: %w", requestID, err)
	}
	if !applied {
		// заявку дописал параллельный повтор
		return a.db.GetWithdrawal(ctx, requestID)
	}
	a.logger.Info("withdrawal requested",
		zap.String("request", requestID),
		zap.String("member", memberID),
		zap.Int64("amount", amount),
	)
	return &w, nil
}

// Повтор заявки: та же заявка или ErrDuplicate, если ID занят другой
func (a *AdminService) existingWithdrawal(ctx context.Context, id string, memberID string, amount int64) (*model.WithdrawalRequest, error) {
	w, err := a.db.GetWithdrawal(ctx, id)
	if errors.Is(err, model.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("withdrawal %s: %w", id, err)
	}
	if w.MemberID != memberID || w.Amount != amount {
		return nil, fmt.Errorf("withdrawal %s: %w", id, model.ErrDuplicate)
	}
	return w, nil
}

func (a *AdminService) withdrawalExists(ctx context.Context, id string) (bool, error) {
	_, err := a.db.GetWithdrawal(ctx, id)
	if errors.Is(err, model.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (a *AdminService) ApproveWithdrawal(ctx context.Context, id string, adminID string, notes string) error {
	w, err := a.db.GetWithdrawal(ctx, id)
	if err != nil {
		return fmt.Errorf("withdrawal %s: %w", id, err)
	}
	if err := a.db.ResolveWithdrawal(ctx, id, model.RequestApproved, adminID, notes); err != nil {
		return fmt.Errorf("withdrawal %s: %w", id, err)
	}
	a.resolved(w, model.RequestApproved, adminID)
	return nil
}

// Отклонение возвращает резерв в баланс. Повтор после сбоя довозвращает резерв
func (a *AdminService) RejectWithdrawal(ctx context.Context, id string, adminID string, reason string) error {
	w, err := a.db.GetWithdrawal(ctx, id)
	if err != nil {
		return fmt.Errorf("withdrawal %s: %w", id, err)
	}
	if w.Status != model.RequestRejected {
		if err := a.db.ResolveWithdrawal(ctx, id, model.RequestRejected, adminID, reason); err != nil {
			return fmt.Errorf("withdrawal %s: %w", id, err)
		}
	}

	applied, err := updateOnce(ctx, a.members, w.MemberID, onceUpdate{
		key: refundKey(id),
		op:  "refund",
		recorded: func(ctx context.Context) (bool, error) {
			cur, err := a.db.GetWithdrawal(ctx, id)
			if err != nil {
				return false, err
			}
			return cur.Refunded, nil
		},
		change: func(m *model.Member) (model.Counters, error) {
			counters := m.Counters()
			counters.WithdrawnTotal = max(0, counters.WithdrawnTotal-w.Amount)
			return counters, nil
		},
		record: func(ctx context.Context) error {
			return a.db.MarkRefunded(ctx, id)
		},
	})
	if applied {
		a.invalidate(ctx, w.MemberID)
	}
	if err != nil {
		return fmt.Errorf("withdrawal %s refund: %w", id, err)
	}
	a.resolved(w, model.RequestRejected, adminID)
	return nil
}

func (a *AdminService) resolved(w *model.WithdrawalRequest, status model.RequestStatus, adminID string) {
	a.logger.Info("withdrawal resolved",
		zap.String("request", w.ID),
		zap.String("member", w.MemberID),
		zap.String("status", string(status)),
		zap.String("admin", adminID),
	)
}

// Доступно к выводу: заработано минус выводы в ожидании и одобренные
func (a *AdminService) AvailableBalance(ctx context.Context, memberID string) (int64, error) {
	if a.cache != nil {
		amount, err := a.cache.GetBalance(ctx, memberID)
		if err == nil {
			return amount, nil
		}
		if !errors.Is(err, model.ErrNotFound) {
			a.logger.Warn("balance cache",
				zap.String("member", memberID),
				zap.Error(err),
			)
		}
	}

	member, err := a.members.GetMember(ctx, memberID)
	if err != nil {
		return 0, fmt.Errorf("balance %s: %w", memberID, err)
	}
	amount := member.Available()

	if a.cache != nil {
		if err := a.cache.SetBalance(ctx, memberID, amount); err != nil {
			a.logger.Warn("balance cache",
				zap.String("member", memberID),
				zap.Error(err),
			)
		}
	}
	return amount, nil
}

// Пачка новых пин-кодов
func (a *AdminService) GeneratePins(ctx context.Context, count int, adminID string) ([]model.Pin, error) {
	if count <= 0 || count > maxPinBatch {
		return nil, fmt.Errorf("pin count must be between 1 and %d", maxPinBatch)
	}
	now := time.Now()
	seen := make(map[string]bool, count)
	pins := make([]model.Pin, 0, count)
	for len(pins) < count {
		code, err := newPinCode()
		if err != nil {
			return nil, err
		}
		if seen[code] {
			continue
		}
		seen[code] = true
		pins = append(pins, model.Pin{
			ID:          uuid.NewString(),
			Code:        code,
			Status:      model.PinUnused,
			GeneratedBy: adminID,
			CreatedAt:   now,
		})
	}
	if err := a.db.InsertPins(ctx, pins); err != nil {
		return nil, fmt.Errorf("insert pins: %w", err)
	}
	a.logger.Info("pins generated",
		zap.Int("count", count),
		zap.String("admin", adminID),
	)
	return pins, nil
}

func newPinCode() (string, error) {
	code := make([]byte, pinLength)
	n := big.NewInt(int64(len(pinAlphabet)))
	for i := range code {
		idx, err := rand.Int(rand.Reader, n)
		if err != nil {
			return "", err
		}
		code[i] = pinAlphabet[idx.Int64()]
	}
	return string(code), nil
}

func (a *AdminService) invalidate(ctx context.Context, memberID string) {
	if a.cache == nil {
		return
	}
	if err := a.cache.InvalidateBalance(ctx, memberID); err != nil {
		a.logger.Warn("balance cache",
			zap.String("member", memberID),
			zap.Error(err),
		)
	}
}
