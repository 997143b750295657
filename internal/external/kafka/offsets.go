package skn

import (
	"context"
	"sync"

	"github.com/segmentio/kafka-go"
)

// Коммит смещений по порядку при параллельной обработке.
// В каждой партиции коммитится старшее обработанное сообщение, ниже которого
// нет сообщений в работе: упавшее или прерванное сообщение не будет пропущено
type OffsetTracker struct {
	mu         sync.Mutex
	partitions map[int]*partitionOffsets
}

type partitionOffsets struct {
	inflight map[int64]struct{}
	done     map[int64]kafka.Message
}

func NewOffsetTracker() *OffsetTracker {
	return &OffsetTracker{partitions: make(map[int]*partitionOffsets)}
}

func (t *OffsetTracker) partition(n int) *partitionOffsets {
	p, ok := t.partitions[n]
	if !ok {
		p = &partitionOffsets{
			inflight: make(map[int64]struct{}),
			done:     make(map[int64]kafka.Message),
		}
		t.partitions[n] = p
	}
	return p
}

// Сообщение взято в работу, вызывать до запуска обработчика
func (t *OffsetTracker) Start(msg kafka.Message) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.partition(msg.Partition).inflight[msg.Offset] = struct{}{}
}

// Сообщение обработано. commit вызывается под блокировкой, поэтому смещения
// в партиции коммитятся только по возрастанию. Ошибка коммита возвращается,
// сообщения остаются и уйдут со следующим Complete
func (t *OffsetTracker) Complete(ctx context.Context, msg kafka.Message, commit func(context.Context, kafka.Message) error) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	p := t.partition(msg.Partition)
	delete(p.inflight, msg.Offset)
	p.done[msg.Offset] = msg

	upto, ok := p.committable()
	if !ok {
		return nil
	}
	if err := commit(ctx, upto); err != nil {
		return err
	}
	for off := range p.done {
		if off <= upto.Offset {
			delete(p.done, off)
		}
	}
	return nil
}

// старшее обработанное сообщение ниже всех сообщений в работе
func (p *partitionOffsets) committable() (kafka.Message, bool) {
	var lowest int64 = -1
	for off := range p.inflight {
		if lowest < 0 || off < lowest {
			lowest = off
		}
	}
	var upto kafka.Message
	found := false
	for off, m := range p.done {
		if lowest >= 0 && off > lowest {
			continue
		}
		if !found || off > upto.Offset {
			upto, found = m, true
		}
	}
	return upto, found
}
