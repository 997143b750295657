package models

import (
	"slices"
	"time"
)

// Сторона в бинарном дереве
type Side string

const (
	SideLeft  Side = "left"
	SideRight Side = "right"
)

func (s Side) Valid() bool {
	return s == SideLeft || s == SideRight
}

func (s Side) Opposite() Side {
	if s == SideLeft {
		return SideRight
	}
	return SideLeft
}

// Стратегия размещения
type Strategy string

const (
	StrategyLeftmost Strategy = "leftmost"
	StrategyBalanced Strategy = "balanced"
)

func (s Strategy) Valid() bool {
	return s == StrategyLeftmost || s == StrategyBalanced
}

type PaymentStatus string

const (
	PaymentNotSubmitted PaymentStatus = "not_submitted"
	PaymentPending      PaymentStatus = "pending"
	PaymentApproved     PaymentStatus = "approved"
	PaymentRejected     PaymentStatus = "rejected"
)

// Прогресс подъема по дереву после размещения участника.
// NextAncestorID - следующий необработанный предок, Side - сторона, с которой к нему пришли.
type Checkpoint struct {
	NextAncestorID string    `bson:"nextAncestorId" json:"nextAncestorId"`
	Side           Side      `bson:"side" json:"side"`
	Done           bool      `bson:"done" json:"done"`
	UpdatedAt      time.Time `bson:"updatedAt" json:"updatedAt"`
}

// Участник - узел бинарного дерева
type Member struct {
	ID            string        `bson:"_id" json:"id"`
	Name          string        `bson:"name" json:"name"`
	Email         string        `bson:"email" json:"email"`
	SponsorID     string        `bson:"sponsorId" json:"sponsorId,omitempty"`
	ReferralCode  string        `bson:"referralCode" json:"referralCode"`
	ReferralPin   string        `bson:"referralPin,omitempty" json:"-"`
	PaymentStatus PaymentStatus `bson:"paymentStatus" json:"paymentStatus"`
	IsActive      bool          `bson:"isActive" json:"isActive"`

	// позиция в дереве
	ParentID     string   `bson:"parentId" json:"parentId,omitempty"`
	Side         Side     `bson:"side,omitempty" json:"side,omitempty"`
	LeftChildID  string   `bson:"leftChildId" json:"leftChildId,omitempty"`
	RightChildID string   `bson:"rightChildId" json:"rightChildId,omitempty"`
	Depth        int      `bson:"depth" json:"depth"`
	Path         []string `bson:"path,omitempty" json:"path,omitempty"`

	// счетчики, меняются только через UpdateCounters
	LeftActiveCount  int64 `bson:"leftActiveCount" json:"leftActiveCount"`
	RightActiveCount int64 `bson:"rightActiveCount" json:"rightActiveCount"`
	PairsCompleted   int64 `bson:"pairsCompleted" json:"pairsCompleted"`
	TotalEarnings    int64 `bson:"totalEarnings" json:"totalEarnings"`
	StarLevel        int   `bson:"starLevel" json:"starLevel"`
	// сумма заявок на вывод в ожидании и одобренных
	WithdrawnTotal   int64 `bson:"withdrawnTotal" json:"withdrawnTotal"`

	Version     int64       `bson:"version" json:"-"`
	// ключи изменений, результат которых еще не записан (чекпоинт, журнал, заявка)
	PendingKeys []string    `bson:"pendingKeys,omitempty" json:"-"`
	Propagation *Checkpoint `bson:"propagation,omitempty" json:"propagation,omitempty"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// Участник уже стоит в дереве (корень активен без родителя)
func (m *Member) Placed() bool {
	return m.ParentID != "" || m.IsActive
}

func (m *Member) ChildID(side Side) string {
	if side == SideLeft {
		return m.LeftChildID
	}
	return m.RightChildID
}

func (m *Member) Pending(key string) bool {
	return slices.Contains(m.PendingKeys, key)
}

func (m *Member) PropagationPending() bool {
	return m.Propagation != nil && !m.Propagation.Done
}

// Распространение этого участника стоит на предке ancestorID
func (m *Member) PropagationAt(ancestorID string) bool {
	return m.PropagationPending() && m.Propagation.NextAncestorID == ancestorID
}

func (m *Member) Available() int64 {
	return m.TotalEarnings - m.WithdrawnTotal
}

func (m *Member) Counters() Counters {
	return Counters{
		LeftActiveCount:  m.LeftActiveCount,
		RightActiveCount: m.RightActiveCount,
		PairsCompleted:   m.PairsCompleted,
		TotalEarnings:    m.TotalEarnings,
		StarLevel:        m.StarLevel,
		WithdrawnTotal:   m.WithdrawnTotal,
	}
}

// Счетчики участника, сохраняются одним обновлением
type Counters struct {
	LeftActiveCount  int64
	RightActiveCount int64
	PairsCompleted   int64
	TotalEarnings    int64
	StarLevel        int
	WithdrawnTotal   int64
}

// Свободное место под родителем
type Slot struct {
	ParentID string   `json:"parentId"`
	Side     Side     `json:"side"`
	Depth    int      `json:"depth"`
	Path     []string `json:"path"`
}

// Позиция участника вместе с начальной точкой распространения
type Position struct {
	Slot
	Checkpoint Checkpoint
}
