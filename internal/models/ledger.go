package models

import (
	"strconv"
	"time"

	"github.com/google/uuid"
)

type SourceType string

const (
	SourcePair         SourceType = "pair"
	SourceStarReward   SourceType = "star_reward"
	SourceSponsorBonus SourceType = "sponsor_bonus"
	SourceManual       SourceType = "manual"
)

func (s SourceType) Valid() bool {
	switch s {
	case SourcePair, SourceStarReward, SourceSponsorBonus, SourceManual:
		return true
	}
	return false
}

// Закрытая пара: ключ идемпотентности MemberID + PairNumber
type PairRecord struct {
	UUID          uuid.UUID `json:"id"`
	MemberID      string    `json:"memberId"`
	PairNumber    int64     `json:"pairNumber"`
	LeftMemberID  string    `json:"leftMemberId"`
	RightMemberID string    `json:"rightMemberId"`
	Amount        int64     `json:"amount"`
	CompletedAt   time.Time `json:"completedAt"`
}

// Начисление: ключ идемпотентности MemberID + SourceType + SourceID
type Earning struct {
	UUID       uuid.UUID  `json:"id"`
	MemberID   string     `json:"memberId"`
	SourceType SourceType `json:"sourceType"`
	SourceID   string     `json:"sourceId"`
	Amount     int64      `json:"amount"`
	Currency   string     `json:"currency"`
	Note       string     `json:"note,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
}

// Звездный уровень - справочник
type StarLevel struct {
	Level         int    `yaml:"level" json:"level"`
	RequiredPairs int64  `yaml:"requiredPairs" json:"requiredPairs"`
	Reward        int64  `yaml:"reward" json:"reward"`
	Title         string `yaml:"title" json:"title"`
}

func PairSourceID(pairNumber int64) string {
	return "pair_" + strconv.FormatInt(pairNumber, 10)
}

func StarSourceID(level int) string {
	return "star_" + strconv.Itoa(level)
}

func SponsorSourceID(memberID string) string {
	return "sponsor_" + memberID
}
