package service

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/casetree/internal/db"
	"github.com/alexanderramin/casetree/internal/domain"
	"github.com/alexanderramin/casetree/internal/repository"
)

type nodeService struct {
	nodes    repository.NodeRepo
	keywords repository.KeywordRepo
	uow      db.UnitOfWork
	observer UseCaseObserver
}

func NewNodeService(
	nodes repository.NodeRepo,
	keywords repository.KeywordRepo,
	uow db.UnitOfWork,
	observers ...UseCaseObserver,
) NodeService {
	return &nodeService{
		nodes:    nodes,
		keywords: keywords,
		uow:      uow,
		observer: useCaseObserverOrNoop(observers),
	}
}

// loadParent resolves a parent reference, rejecting cases as parents.
func loadParent(ctx context.Context, nodes repository.NodeRepo, parentID *int64) (*domain.Node, error) {
	if parentID == nil {
		return nil, nil
	}
	parent, err := nodes.GetByID(ctx, *parentID)
	if err != nil {
		return nil, fmt.Errorf("loading parent: %w", err)
	}
	if parent.IsCase() {
		return nil, &domain.ValidationError{Field: "Parent", Reason: "cases cannot have children"}
	}
	return parent, nil
}

func (s *nodeService) Create(ctx context.Context, n *domain.Node) (err error) {
	ctx, uc := beginUseCase(ctx, s.observer, "node-create")
	defer func() { uc.end(ctx, err) }()

	if err = n.Validate(); err != nil {
		return err
	}
	now := time.Now().UTC()
	n.CreatedAt = now
	n.UpdatedAt = now
	requested := n.Order

	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txNodes := repository.NewSQLiteNodeRepo(tx)

		parent, err := loadParent(ctx, txNodes, n.ParentID)
		if err != nil {
			return err
		}
		if err := txNodes.Create(ctx, n); err != nil {
			return err
		}
		if err := newPathMaintainer(txNodes).assign(ctx, n, parent); err != nil {
			return err
		}
		changed, err := newSiblingOrderer(txNodes).place(ctx, n, requested)
		if err != nil {
			return err
		}
		uc.set("node_id", n.ID)
		uc.set("orders_changed", changed)
		return txNodes.UpdateOrder(ctx, n.ID, n.Order)
	})
}

func (s *nodeService) GetByID(ctx context.Context, id int64) (*domain.Node, error) {
	return s.nodes.GetByID(ctx, id)
}

func (s *nodeService) ListChildren(ctx context.Context, parentID *int64) ([]*domain.Node, error) {
	if parentID != nil {
		if _, err := s.nodes.GetByID(ctx, *parentID); err != nil {
			return nil, err
		}
	}
	return s.nodes.ListChildren(ctx, parentID)
}

func (s *nodeService) Update(ctx context.Context, n *domain.Node) (err error) {
	ctx, uc := beginUseCase(ctx, s.observer, "node-update")
	defer func() { uc.end(ctx, err) }()
	uc.set("node_id", n.ID)

	if err = n.Validate(); err != nil {
		return err
	}

	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txNodes := repository.NewSQLiteNodeRepo(tx)
		existing, err := txNodes.GetByID(ctx, n.ID)
		if err != nil {
			return err
		}
		if n.Type != existing.Type {
			return &domain.ValidationError{Field: "Type", Reason: "cannot be changed after creation"}
		}
		existing.Name = n.Name
		existing.Details = n.Details
		existing.UpdatedAt = time.Now().UTC()
		if err := txNodes.Update(ctx, existing); err != nil {
			return err
		}
		*n = *existing
		return nil
	})
}

func (s *nodeService) Move(ctx context.Context, id int64, newParentID *int64, index int) (moved *domain.Node, err error) {
	ctx, uc := beginUseCase(ctx, s.observer, "node-move")
	defer func() { uc.end(ctx, err) }()
	uc.set("node_id", id)

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txNodes := repository.NewSQLiteNodeRepo(tx)
		orderer := newSiblingOrderer(txNodes)

		n, err := txNodes.GetByID(ctx, id)
		if err != nil {
			return err
		}

		if domain.SameParent(n.ParentID, newParentID) {
			changed, err := orderer.place(ctx, n, index)
			if err != nil {
				return err
			}
			uc.set("orders_changed", changed)
			moved = n
			return txNodes.UpdateOrder(ctx, n.ID, n.Order)
		}

		if newParentID != nil && *newParentID == n.ID {
			return fmt.Errorf("moving node %d under itself: %w", n.ID, domain.ErrInvalidMove)
		}
		parent, err := loadParent(ctx, txNodes, newParentID)
		if err != nil {
			return err
		}
		if parent != nil && domain.IsDescendantPath(n.Path, parent.Path) {
			return fmt.Errorf("moving node %d under its descendant %d: %w", n.ID, parent.ID, domain.ErrInvalidMove)
		}

		closed, err := orderer.closeGap(ctx, n)
		if err != nil {
			return err
		}

		oldPath := n.Path
		n.ParentID = newParentID
		newPath, err := domain.OwnPath(n, parent)
		if err != nil {
			return err
		}
		n.Path = newPath

		placed, err := orderer.place(ctx, n, index)
		if err != nil {
			return err
		}
		n.UpdatedAt = time.Now().UTC()
		if err := txNodes.Update(ctx, n); err != nil {
			return err
		}

		rewritten, err := newPathMaintainer(txNodes).propagate(ctx, oldPath, newPath)
		if err != nil {
			return err
		}
		uc.set("orders_changed", closed+placed)
		uc.set("paths_rewritten", rewritten)
		moved = n
		return nil
	})
	if err != nil {
		return nil, err
	}
	return moved, nil
}

func (s *nodeService) Reorder(ctx context.Context, id int64, index int) (n *domain.Node, err error) {
	ctx, uc := beginUseCase(ctx, s.observer, "node-reorder")
	defer func() { uc.end(ctx, err) }()
	uc.set("node_id", id)

	n, err = db.InTx(ctx, s.uow, func(ctx context.Context, tx db.DBTX) (*domain.Node, error) {
		txNodes := repository.NewSQLiteNodeRepo(tx)
		n, err := txNodes.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		changed, err := newSiblingOrderer(txNodes).place(ctx, n, index)
		if err != nil {
			return nil, err
		}
		uc.set("orders_changed", changed)
		if err := txNodes.UpdateOrder(ctx, n.ID, n.Order); err != nil {
			return nil, err
		}
		return n, nil
	})
	return n, err
}

func (s *nodeService) Delete(ctx context.Context, id int64, force bool) (err error) {
	ctx, uc := beginUseCase(ctx, s.observer, "node-delete")
	defer func() { uc.end(ctx, err) }()
	uc.set("node_id", id)
	uc.set("force", force)

	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txNodes := repository.NewSQLiteNodeRepo(tx)
		txKeywords := repository.NewSQLiteKeywordRepo(tx)

		n, err := txNodes.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if !force {
			children, err := txNodes.CountChildren(ctx, id)
			if err != nil {
				return err
			}
			if children > 0 {
				return fmt.Errorf("deleting node %d with %d children: %w", id, children, domain.ErrHasChildren)
			}
		}

		untagged, err := txKeywords.DeleteForSubtree(ctx, n.Path)
		if err != nil {
			return err
		}
		deleted, err := txNodes.DeleteSubtree(ctx, n.Path)
		if err != nil {
			return err
		}
		changed, err := newSiblingOrderer(txNodes).closeGap(ctx, n)
		if err != nil {
			return err
		}
		uc.set("keywords_deleted", untagged)
		uc.set("nodes_deleted", deleted)
		uc.set("orders_changed", changed)
		return nil
	})
}

func (s *nodeService) SetCaseActive(ctx context.Context, id int64, active bool) (err error) {
	ctx, uc := beginUseCase(ctx, s.observer, "case-set-active")
	defer func() { uc.end(ctx, err) }()
	uc.set("node_id", id)
	uc.set("active", active)

	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		n, err := repository.NewSQLiteNodeRepo(tx).GetByID(ctx, id)
		if err != nil {
			return err
		}
		if !n.IsCase() {
			return &domain.ValidationError{Field: "Node", Reason: fmt.Sprintf("%s nodes have no active flag", n.Type)}
		}
		return repository.NewSQLiteCaseStatusRepo(tx).SetActive(ctx, id, active)
	})
}

func (s *nodeService) Tag(ctx context.Context, id int64, keyword string) (err error) {
	ctx, uc := beginUseCase(ctx, s.observer, "node-tag")
	defer func() { uc.end(ctx, err) }()
	uc.set("node_id", id)

	name, err := domain.NormalizeKeyword(keyword)
	if err != nil {
		return err
	}
	uc.set("keyword", name)

	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		if _, err := repository.NewSQLiteNodeRepo(tx).GetByID(ctx, id); err != nil {
			return err
		}
		return repository.NewSQLiteKeywordRepo(tx).Tag(ctx, id, name)
	})
}

func (s *nodeService) Untag(ctx context.Context, id int64, keyword string) (err error) {
	ctx, uc := beginUseCase(ctx, s.observer, "node-untag")
	defer func() { uc.end(ctx, err) }()
	uc.set("node_id", id)

	name, err := domain.NormalizeKeyword(keyword)
	if err != nil {
		return err
	}
	return s.keywords.Untag(ctx, id, name)
}

func (s *nodeService) ListKeywords(ctx context.Context, id int64) ([]string, error) {
	if _, err := s.nodes.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return s.keywords.ListByNode(ctx, id)
}
