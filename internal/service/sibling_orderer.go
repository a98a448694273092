package service

import (
	"context"

	"github.com/alexanderramin/casetree/internal/domain"
	"github.com/alexanderramin/casetree/internal/repository"
)

// siblingOrderer keeps each sibling group numbered 0..N-1. It persists the
// other siblings only; the node being placed is saved by its caller.
type siblingOrderer struct {
	nodes repository.NodeRepo
}

func newSiblingOrderer(nodes repository.NodeRepo) *siblingOrderer {
	return &siblingOrderer{nodes: nodes}
}

// place positions n at index among the group named by n.ParentID and
// returns how many siblings were renumbered.
func (o *siblingOrderer) place(ctx context.Context, n *domain.Node, index int) (int, error) {
	siblings, err := o.nodes.ListSiblings(ctx, n)
	if err != nil {
		return 0, err
	}
	changed := domain.PlaceAmongSiblings(siblings, n, index)
	return len(changed), o.persist(ctx, changed)
}

// closeGap renumbers the group n.ParentID after n left it.
func (o *siblingOrderer) closeGap(ctx context.Context, n *domain.Node) (int, error) {
	siblings, err := o.nodes.ListSiblings(ctx, n)
	if err != nil {
		return 0, err
	}
	changed := domain.RenumberSiblings(siblings)
	return len(changed), o.persist(ctx, changed)
}

func (o *siblingOrderer) persist(ctx context.Context, changed []*domain.Node) error {
	for _, s := range changed {
		if err := o.nodes.UpdateOrder(ctx, s.ID, s.Order); err != nil {
			return err
		}
	}
	return nil
}
