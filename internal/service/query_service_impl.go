package service

import (
	"context"

	"github.com/alexanderramin/casetree/internal/domain"
	"github.com/alexanderramin/casetree/internal/repository"
)

type queryService struct {
	nodes    repository.NodeRepo
	plans    repository.TestPlanRepo
	tree     repository.TreeQueryRepo
	observer UseCaseObserver
}

func NewQueryService(
	nodes repository.NodeRepo,
	plans repository.TestPlanRepo,
	tree repository.TreeQueryRepo,
	observers ...UseCaseObserver,
) QueryService {
	return &queryService{
		nodes:    nodes,
		plans:    plans,
		tree:     tree,
		observer: useCaseObserverOrNoop(observers),
	}
}

func (s *queryService) Subtree(ctx context.Context, ancestorID int64, planID *int64, filter domain.SubtreeFilter) (entries []domain.TreeEntry, err error) {
	ctx, uc := beginUseCase(ctx, s.observer, "tree-subtree")
	defer func() { uc.end(ctx, err) }()
	uc.set("ancestor_id", ancestorID)

	q := repository.SubtreeQuery{Filter: filter}
	if ancestorID != domain.RootSentinel {
		ancestor, err := s.nodes.GetByID(ctx, ancestorID)
		if err != nil {
			return nil, err
		}
		q.ScopePath = ancestor.Path
	}
	if planID != nil {
		if _, err := s.plans.GetByID(ctx, *planID); err != nil {
			return nil, err
		}
		q.PlanID = planID
		uc.set("plan_id", *planID)
	}
	if filter.Query != "" {
		uc.set("text_filter", true)
	}

	entries, err = s.tree.Subtree(ctx, q)
	if err != nil {
		return nil, err
	}
	uc.set("result_count", len(entries))
	return entries, nil
}

func (s *queryService) DescendantCases(ctx context.Context, id int64, withPlanInfo bool) (entries []domain.TreeEntry, err error) {
	ctx, uc := beginUseCase(ctx, s.observer, "tree-descendant-cases")
	defer func() { uc.end(ctx, err) }()
	uc.set("node_id", id)
	uc.set("with_plan_info", withPlanInfo)

	n, err := s.nodes.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	entries, err = s.tree.DescendantCases(ctx, n.Path, withPlanInfo)
	if err != nil {
		return nil, err
	}
	uc.set("result_count", len(entries))
	return entries, nil
}
