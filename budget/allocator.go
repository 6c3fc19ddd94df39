package budget

import (
	"context"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"itinera/logging"
	"itinera/models"
)

// Totals is the allocated budget written back onto an itinerary.
type Totals struct {
	Breakdown     models.BudgetBreakdown `json:"budget_analysis"`
	TotalBudget   int64                  `json:"total_budget"`
	CostPerPerson int64                  `json:"cost_per_person"`
}

func ceilDiv(n int64, d int) int64 {
	return decimal.NewFromInt(n).Div(decimal.NewFromInt(int64(d))).Ceil().IntPart()
}

func roundDiv(n int64, d int) int64 {
	return decimal.NewFromInt(n).Div(decimal.NewFromInt(int64(d))).Round(0).IntPart()
}

func finish(shared, personal int64, headcount int, limit int64) Totals {
	b := models.BudgetBreakdown{
		TotalShared:    shared,
		SharePerPerson: ceilDiv(shared, headcount),
		TotalPersonal:  personal,
		Headcount:      headcount,
	}
	b.GrandTotalPerPerson = b.SharePerPerson + b.TotalPersonal
	if limit > 0 && b.GrandTotalPerPerson > limit {
		b.IsOverBudget = true
		b.OverAmount = b.GrandTotalPerPerson - limit
	}
	return Totals{
		Breakdown:     b,
		TotalBudget:   shared + personal*int64(headcount),
		CostPerPerson: b.GrandTotalPerPerson,
	}
}

// Allocate splits an estimate into shared and per-person totals.
func Allocate(est *Estimate, budgetLimit int64) Totals {
	h := est.Headcount
	if h < 1 {
		h = 1
	}
	shared := est.Accommodation + est.SharedTransport + est.SharedStops
	personal := roundDiv(est.PrivateTransport, h) + est.PersonalStops
	return finish(shared, personal, h, budgetLimit)
}

// Fallback sums raw stop costs when estimation cannot run.
func Fallback(it *models.Itinerary, headcount int) Totals {
	if headcount < 1 {
		headcount = it.Headcount()
	}
	var shared, personal int64
	for _, d := range it.Days {
		for _, s := range d.Stops {
			if s.Status == models.StopSkipped {
				continue
			}
			if s.CostType == models.CostPerPerson {
				personal += s.EstimatedCost
			} else {
				shared += s.EstimatedCost
			}
		}
	}
	t := finish(shared, personal, headcount, it.BudgetLimit)
	t.Breakdown.Degraded = true
	return t
}

// Report is the read-only budget view of an itinerary.
type Report struct {
	Estimate *Estimate `json:"estimate,omitempty"`
	Totals
}

// Service runs estimation and allocation, degrading to Fallback on error.
type Service struct {
	estimator *Estimator
	logger    *zap.Logger
}

func NewService(estimator *Estimator, logger *zap.Logger) *Service {
	return &Service{estimator: estimator, logger: logging.OrNop(logger)}
}

// Compute never fails. Estimation errors are logged and produce a degraded report.
func (s *Service) Compute(ctx context.Context, it *models.Itinerary, places map[string]models.Place, opts Options) Report {
	est, err := s.estimator.Estimate(ctx, it, places, opts)
	if err != nil {
		s.logger.Warn("budget estimation failed, using fallback",
			zap.String("itinerary_id", it.ItineraryID), zap.Error(err))
		return Report{Totals: Fallback(it, opts.Headcount)}
	}
	return Report{Estimate: est, Totals: Allocate(est, it.BudgetLimit)}
}

// Sync recomputes the persisted budget fields of it.
func (s *Service) Sync(ctx context.Context, it *models.Itinerary, places map[string]models.Place) {
	r := s.Compute(ctx, it, places, Options{IncludeAccommodation: true})
	it.BudgetAnalysis = r.Breakdown
	it.TotalBudget = r.TotalBudget
	it.CostPerPerson = r.CostPerPerson
}
