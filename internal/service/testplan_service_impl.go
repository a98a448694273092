package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/casetree/internal/db"
	"github.com/alexanderramin/casetree/internal/domain"
	"github.com/alexanderramin/casetree/internal/repository"
)

type testPlanService struct {
	plans    repository.TestPlanRepo
	uow      db.UnitOfWork
	observer UseCaseObserver
}

func NewTestPlanService(plans repository.TestPlanRepo, uow db.UnitOfWork, observers ...UseCaseObserver) TestPlanService {
	return &testPlanService{
		plans:    plans,
		uow:      uow,
		observer: useCaseObserverOrNoop(observers),
	}
}

func (s *testPlanService) Create(ctx context.Context, name string) (p *domain.TestPlan, err error) {
	ctx, uc := beginUseCase(ctx, s.observer, "plan-create")
	defer func() { uc.end(ctx, err) }()

	p = &domain.TestPlan{
		Name:      strings.TrimSpace(name),
		CreatedAt: time.Now().UTC(),
	}
	if err = p.Validate(); err != nil {
		return nil, err
	}
	if err = s.plans.Create(ctx, p); err != nil {
		return nil, err
	}
	uc.set("plan_id", p.ID)
	return p, nil
}

func (s *testPlanService) GetByID(ctx context.Context, id int64) (*domain.TestPlan, error) {
	return s.plans.GetByID(ctx, id)
}

func (s *testPlanService) List(ctx context.Context) ([]*domain.TestPlan, error) {
	return s.plans.List(ctx)
}

// AddCases adds every case or none.
func (s *testPlanService) AddCases(ctx context.Context, planID int64, caseIDs ...int64) (err error) {
	ctx, uc := beginUseCase(ctx, s.observer, "plan-add-cases")
	defer func() { uc.end(ctx, err) }()
	uc.set("plan_id", planID)
	uc.set("case_count", len(caseIDs))

	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txPlans := repository.NewSQLiteTestPlanRepo(tx)
		txNodes := repository.NewSQLiteNodeRepo(tx)

		if _, err := txPlans.GetByID(ctx, planID); err != nil {
			return err
		}
		for _, id := range caseIDs {
			n, err := txNodes.GetByID(ctx, id)
			if err != nil {
				return err
			}
			if !n.IsCase() {
				return &domain.ValidationError{Field: "Case", Reason: fmt.Sprintf("node %d is a %s", id, n.Type)}
			}
			if err := txPlans.AddCase(ctx, planID, id); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *testPlanService) RemoveCase(ctx context.Context, planID, caseID int64) (err error) {
	ctx, uc := beginUseCase(ctx, s.observer, "plan-remove-case")
	defer func() { uc.end(ctx, err) }()
	uc.set("plan_id", planID)
	uc.set("case_id", caseID)

	return s.plans.RemoveCase(ctx, planID, caseID)
}

func (s *testPlanService) ListCaseIDs(ctx context.Context, planID int64) ([]int64, error) {
	if _, err := s.plans.GetByID(ctx, planID); err != nil {
		return nil, err
	}
	return s.plans.ListCaseIDs(ctx, planID)
}

func (s *testPlanService) Delete(ctx context.Context, id int64) (err error) {
	ctx, uc := beginUseCase(ctx, s.observer, "plan-delete")
	defer func() { uc.end(ctx, err) }()
	uc.set("plan_id", id)

	return s.plans.Delete(ctx, id)
}
