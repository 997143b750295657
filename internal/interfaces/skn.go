package interfaces

import (
	"context"
	"time"

	model "github.com/glkeru/skn/internal/models"
)

//go:generate mockgen -destination=./../services/mock_interfaces_test.go -package=skn . LedgerStorage,CacheStorage,AdminStorage

// Хранилище участников (документная БД)
type MemberStorage interface {
	GetMember(ctx context.Context, id string) (*model.Member, error)
	// участник, который считает себя ребенком parentID на стороне side
	FindChildClaim(ctx context.Context, parentID string, side model.Side) (*model.Member, error)
	// позиция записывается только если у участника еще нет родителя
	SetPosition(ctx context.Context, memberID string, pos model.Position) error
	ClearPosition(ctx context.Context, memberID string, parentID string) error
	// указатель на ребенка пишется только если слот пуст
	ClaimChild(ctx context.Context, parentID string, side model.Side, childID string) error
	// compare-and-swap по версии, key добавляется в PendingKeys
	UpdateCounters(ctx context.Context, memberID string, version int64, counters model.Counters, key string) error
	ReleaseKey(ctx context.Context, memberID string, key string) error
	// чекпоинт сдвигается только с предка from, иначе ErrCheckpointMoved
	SaveCheckpoint(ctx context.Context, memberID string, from string, cp model.Checkpoint) error
	// незавершенные распространения с чекпоинтом старше before
	PendingPropagations(ctx context.Context, before time.Time, limit int64) ([]model.Member, error)
	SetPayment(ctx context.Context, memberID string, status model.PaymentStatus, pin string) error
	FindByPin(ctx context.Context, pin string) (*model.Member, error)
}

// Журнал начислений (только вставка)
type LedgerStorage interface {
	InsertPair(ctx context.Context, pair model.PairRecord) error
	InsertEarning(ctx context.Context, earning model.Earning) error
	HasEarning(ctx context.Context, memberID string, source model.SourceType, sourceID string) (bool, error)
	GetPairs(ctx context.Context, memberID string) ([]model.PairRecord, error)
	GetEarnings(ctx context.Context, memberID string) ([]model.Earning, error)
}

type CacheStorage interface {
	GetBalance(ctx context.Context, member string) (amount int64, err error)
	SetBalance(ctx context.Context, member string, amount int64) (err error)
	InvalidateBalance(ctx context.Context, member string) error
}

// Заявки на оплату, вывод и пин-коды
type AdminStorage interface {
	GetPaymentRequest(ctx context.Context, id string) (*model.PaymentRequest, error)
	ResolvePaymentRequest(ctx context.Context, id string, status model.RequestStatus, adminID string, note string) error
	// пин, уже выданный участнику
	AssignedPin(ctx context.Context, memberID string) (*model.Pin, error)
	TakeUnusedPin(ctx context.Context, memberID string) (*model.Pin, error)
	InsertPins(ctx context.Context, pins []model.Pin) error
	// повтор с тем же ID - ErrDuplicate
	CreateWithdrawal(ctx context.Context, w model.WithdrawalRequest) error
	GetWithdrawal(ctx context.Context, id string) (*model.WithdrawalRequest, error)
	ResolveWithdrawal(ctx context.Context, id string, status model.RequestStatus, adminID string, note string) error
	MarkRefunded(ctx context.Context, id string) error
}

//go:generate mockgen -destination=./../api/mock_services_test.go -package=api . Placement,Ledger,Crediter,Admin

// Сервисы, которые использует HTTP API
type Placement interface {
	PlaceMember(ctx context.Context, memberID string, sponsorID string) error
	PreviewSlot(ctx context.Context, sponsorID string) (model.Slot, error)
	Member(ctx context.Context, memberID string) (*model.Member, error)
}

type Ledger interface {
	Pairs(ctx context.Context, memberID string) ([]model.PairRecord, error)
	Earnings(ctx context.Context, memberID string) ([]model.Earning, error)
}

type Crediter interface {
	CreditManual(ctx context.Context, memberID string, sourceID string, amount int64, note string) error
}

type Admin interface {
	ApprovePayment(ctx context.Context, requestID string, adminID string, notes string) error
	RejectPayment(ctx context.Context, requestID string, adminID string, reason string) error
	CreateWithdrawal(ctx context.Context, requestID string, memberID string, amount int64, pin string) (*model.WithdrawalRequest, error)
	ApproveWithdrawal(ctx context.Context, id string, adminID string, notes string) error
	RejectWithdrawal(ctx context.Context, id string, adminID string, reason string) error
	GeneratePins(ctx context.Context, count int, adminID string) ([]model.Pin, error)
	AvailableBalance(ctx context.Context, memberID string) (int64, error)
}
