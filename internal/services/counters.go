package skn

import (
	"context"
	"errors"

	interf "github.com/glkeru/skn/internal/interfaces"
	model "github.com/glkeru/skn/internal/models"
)

// Изменение счетчиков, которое должно примениться ровно один раз.
// Ключ лежит в PendingKeys участника с момента CAS до записи результата:
// пока он там, повтор только дописывает результат. После снятия ключа
// повтор видит результат через recorded
type onceUpdate struct {
	key string
	// метка для casConflicts
	op       string
	recorded func(ctx context.Context) (bool, error)
	change   func(m *model.Member) (model.Counters, error)
	record   func(ctx context.Context) error
}

// applied - счетчики изменены этим вызовом
func updateOnce(ctx context.Context, members interf.MemberStorage, memberID string, u onceUpdate) (applied bool, err error) {
	for attempt := 0; ; attempt++ {
		member, err := members.GetMember(ctx, memberID)
		if err != nil {
			return false, err
		}
		if !member.Pending(u.key) {
			done, err := u.recorded(ctx)
			if err != nil {
				return false, err
			}
			if done {
				return false, nil
			}
			counters, err := u.change(member)
			if err != nil {
				return false, err
			}
			err = members.UpdateCounters(ctx, memberID, member.Version, counters, u.key)
			if errors.Is(err, model.ErrVersionConflict) && attempt < maxVersionRetries {
				casConflicts.WithLabelValues(u.op).Inc()
				continue
			}
			if err != nil {
				return false, err
			}
			applied = true
		}

		if err := u.record(ctx); err != nil {
			return applied, err
		}
		return applied, members.ReleaseKey(ctx, memberID, u.key)
	}
}
