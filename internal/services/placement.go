package skn

import (
	"context"
	"errors"
	"fmt"

	interf "github.com/glkeru/skn/internal/interfaces"
	model "github.com/glkeru/skn/internal/models"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Поиск свободного места в дереве спонсора
type Resolver struct {
	logger   *zap.Logger
	members  interf.MemberStorage
	maxDepth int
}

func NewResolver(logger *zap.Logger, members interf.MemberStorage, maxDepth int) *Resolver {
	return &Resolver{logger, members, maxDepth}
}

type queued struct {
	id   string
	path []string // от корня поиска до узла включительно
}

// Обход в ширину от rootID. leftmost: первый пустой слот, левый раньше правого.
// balanced: если оба ребенка заняты, первым в очередь идет меньшее поддерево
func (r *Resolver) FindSlot(ctx context.Context, rootID string, strategy model.Strategy) (slot model.Slot, err error) {
	ctx, span := tracer.Start(ctx, "FindSlot")
	defer span.End()
	span.SetAttributes(attribute.String("root", rootID), attribute.String("strategy", string(strategy)))

	if !strategy.Valid() {
		return slot, fmt.Errorf("unknown placement strategy %q", strategy)
	}

	queue := []queued{{id: rootID}}
	visited := make(map[string]bool)
	for len(queue) > 0 {
		item := queue[0]
		queue = queue[1:]
		if visited[item.id] {
			r.logger.Warn("cycle in tree",
				zap.String("root", rootID),
				zap.String("member", item.id),
			)
			continue
		}
		visited[item.id] = true

		node, err := r.members.GetMember(ctx, item.id)
		if err != nil {
			return slot, fmt.Errorf("load %s: %w", item.id, err)
		}
		path := append(append([]string{}, item.path...), node.ID)

		left, err := r.child(ctx, node, model.SideLeft)
		if err != nil {
			return slot, err
		}
		if left == "" {
			return newSlot(node, model.SideLeft, path), nil
		}
		right, err := r.child(ctx, node, model.SideRight)
		if err != nil {
			return slot, err
		}
		if right == "" {
			return newSlot(node, model.SideRight, path), nil
		}

		first, second := left, right
		if strategy == model.StrategyBalanced {
			lc, rc, err := r.countBoth(ctx, left, right)
			if err != nil {
				return slot, err
			}
			if rc < lc {
				first, second = right, left
			}
		}
		queue = append(queue, queued{first, path}, queued{second, path})
	}

	r.logger.Error("no open slot in tree",
		zap.String("root", rootID),
		zap.Int("visited", len(visited)),
		zap.Error(model.ErrSlotNotFound),
	)
	return slot, model.ErrSlotNotFound
}

func newSlot(parent *model.Member, side model.Side, path []string) model.Slot {
	return model.Slot{
		ParentID: parent.ID,
		Side:     side,
		Depth:    parent.Depth + 1,
		Path:     path,
	}
}

// Ребенок на стороне side. Если указатель пуст, но есть участник,
// который считает себя этим ребенком, указатель восстанавливается
func (r *Resolver) child(ctx context.Context, node *model.Member, side model.Side) (string, error) {
	if id := node.ChildID(side); id != "" {
		return id, nil
	}
	claim, err := r.members.FindChildClaim(ctx, node.ID, side)
	if errors.Is(err, model.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("child claim %s/%s: %w", node.ID, side, err)
	}

	r.logger.Warn("repair child pointer",
		zap.String("parent", node.ID),
		zap.String("side", string(side)),
		zap.String("member", claim.ID),
	)
	err = r.members.ClaimChild(ctx, node.ID, side, claim.ID)
	if err == nil {
		return claim.ID, nil
	}
	if !errors.Is(err, model.ErrConcurrentPlacement) {
		return "", fmt.Errorf("repair %s/%s: %w", node.ID, side, err)
	}
	// слот успели занять
	fresh, err := r.members.GetMember(ctx, node.ID)
	if err != nil {
		return "", fmt.Errorf("load %s: %w", node.ID, err)
	}
	return fresh.ChildID(side), nil
}

func (r *Resolver) countBoth(ctx context.Context, left, right string) (lc, rc int, err error) {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		lc, err = r.CountDescendants(gctx, left)
		return err
	})
	g.Go(func() (err error) {
		rc, err = r.CountDescendants(gctx, right)
		return err
	})
	if err = g.Wait(); err != nil {
		return 0, 0, err
	}
	return lc, rc, nil
}

// Размер поддерева вместе с самим участником.
// Обход стеком, повторные узлы и узлы глубже maxDepth не считаются
func (r *Resolver) CountDescendants(ctx context.Context, memberID string) (int, error) {
	type frame struct {
		id    string
		depth int
	}
	stack := []frame{{memberID, 0}}
	visited := make(map[string]bool)
	count := 0
	truncated := false

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[f.id] {
			continue
		}
		visited[f.id] = true

		node, err := r.members.GetMember(ctx, f.id)
		if err != nil {
			return 0, fmt.Errorf("count %s: %w", f.id, err)
		}
		count++

		if f.depth >= r.maxDepth {
			truncated = true
			continue
		}
		if node.RightChildID != "" {
			stack = append(stack, frame{node.RightChildID, f.depth + 1})
		}
		if node.LeftChildID != "" {
			stack = append(stack, frame{node.LeftChildID, f.depth + 1})
		}
	}
	if truncated {
		r.logger.Warn("descendant count truncated",
			zap.String("member", memberID),
			zap.Int("maxDepth", r.maxDepth),
		)
	}
	return count, nil
}
