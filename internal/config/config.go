package config

import (
	"fmt"
	"os"
	"strconv"

	model "github.com/glkeru/skn/internal/models"
	"gopkg.in/yaml.v3"
)

// уровней звезд в плане не больше
const MaxStarLevels = 12

// Бизнес-план: стратегия размещения, тарифы за пары, таблица звезд
type Plan struct {
	Strategy            model.Strategy
	FirstPairEarning    int64
	RegularPairEarning  int64
	After100PairEarning int64
	SponsorBonus        int64
	Currency            string
	RegistrationFee     int64
	StarLevels          []model.StarLevel
	MaxTreeDepth        int
}

func DefaultStarLevels() []model.StarLevel {
	thresholds := []int64{10, 30, 100, 550, 1100, 2500, 5000, 10000, 20000, 30000, 40000, 50000}
	rewards := []int64{500, 1500, 3000, 25000, 35000, 60000, 140000, 300000, 600000, 1000000, 1500000, 2000000}
	levels := make([]model.StarLevel, len(thresholds))
	for i := range thresholds {
		levels[i] = model.StarLevel{
			Level:         i + 1,
			RequiredPairs: thresholds[i],
			Reward:        rewards[i],
			Title:         strconv.Itoa(i+1) + " Star",
		}
	}
	return levels
}

func DefaultPlan() *Plan {
	return &Plan{
		Strategy:            model.StrategyLeftmost,
		FirstPairEarning:    400,
		RegularPairEarning:  200,
		After100PairEarning: 100,
		Currency:            "PKR",
		RegistrationFee:     850,
		StarLevels:          DefaultStarLevels(),
		MaxTreeDepth:        4096,
	}
}

// Загрузка плана из env, незаданные значения берутся по умолчанию
func LoadPlan() (*Plan, error) {
	plan := DefaultPlan()

	if s := os.Getenv("SKN_PLACEMENT_STRATEGY"); s != "" {
		plan.Strategy = model.Strategy(s)
	}
	ints := []struct {
		env string
		dst *int64
	}{
		{"SKN_FIRST_PAIR_EARNING", &plan.FirstPairEarning},
		{"SKN_REGULAR_PAIR_EARNING", &plan.RegularPairEarning},
		{"SKN_AFTER100_PAIR_EARNING", &plan.After100PairEarning},
		{"SKN_SPONSOR_BONUS", &plan.SponsorBonus},
		{"SKN_REGISTRATION_FEE", &plan.RegistrationFee},
	}
	for _, v := range ints {
		val := os.Getenv(v.env)
		if val == "" {
			continue
		}
		n, err := strconv.ParseInt(val, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("env %s: %w", v.env, err)
		}
		*v.dst = n
	}
	if c := os.Getenv("SKN_CURRENCY"); c != "" {
		plan.Currency = c
	}
	if d := os.Getenv("SKN_MAX_TREE_DEPTH"); d != "" {
		n, err := strconv.Atoi(d)
		if err != nil {
			return nil, fmt.Errorf("env SKN_MAX_TREE_DEPTH: %w", err)
		}
		plan.MaxTreeDepth = n
	}
	if f := os.Getenv("SKN_STAR_LEVELS_FILE"); f != "" {
		levels, err := LoadStarLevels(f)
		if err != nil {
			return nil, err
		}
		plan.StarLevels = levels
	}

	if err := plan.Validate(); err != nil {
		return nil, err
	}
	return plan, nil
}

type starFile struct {
	Levels []model.StarLevel `yaml:"levels"`
}

// Таблица звезд из YAML файла
func LoadStarLevels(path string) ([]model.StarLevel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read star levels: %w", err)
	}
	return ParseStarLevels(data)
}

func ParseStarLevels(data []byte) ([]model.StarLevel, error) {
	f := &starFile{}
	if err := yaml.Unmarshal(data, f); err != nil {
		return nil, fmt.Errorf("parse star levels: %w", err)
	}
	if len(f.Levels) == 0 {
		return nil, fmt.Errorf("star levels file has no levels")
	}
	return f.Levels, nil
}

func (p *Plan) Validate() error {
	if !p.Strategy.Valid() {
		return fmt.Errorf("unknown placement strategy %q", p.Strategy)
	}
	if p.FirstPairEarning < 0 || p.RegularPairEarning < 0 || p.After100PairEarning < 0 || p.SponsorBonus < 0 {
		return fmt.Errorf("earning amounts must not be negative")
	}
	if p.MaxTreeDepth <= 0 {
		return fmt.Errorf("max tree depth must be positive")
	}
	if len(p.StarLevels) > MaxStarLevels {
		return fmt.Errorf("%d star levels, at most %d allowed", len(p.StarLevels), MaxStarLevels)
	}
	var prev int64
	for i, l := range p.StarLevels {
		if l.Level != i+1 {
			return fmt.Errorf("star level %d out of order at position %d", l.Level, i+1)
		}
		if l.RequiredPairs <= prev {
			return fmt.Errorf("star level %d threshold %d is not above %d", l.Level, l.RequiredPairs, prev)
		}
		prev = l.RequiredPairs
	}
	return nil
}

// Сумма за пару с номером n: 1 - первая, 2..99 - обычная, от 100 - сниженная
func (p *Plan) PairAmount(n int64) int64 {
	switch {
	case n <= 0:
		return 0
	case n == 1:
		return p.FirstPairEarning
	case n < 100:
		return p.RegularPairEarning
	default:
		return p.After100PairEarning
	}
}

// Наибольший уровень, порог которого не выше pairs. ok=false если не достигнут ни один
func (p *Plan) StarLevelFor(pairs int64) (level model.StarLevel, ok bool) {
	for _, l := range p.StarLevels {
		if l.RequiredPairs > pairs {
			break
		}
		level, ok = l, true
	}
	return level, ok
}
