package services

import (
	"time"

	"golang.org/x/sync/singleflight"

	"stockroom/internal/domain"
	"stockroom/internal/repos"
)

// Overview is everything the reports page shows: headline metrics, the
// chart rows, the low-stock list and the recent movement feed.
type Overview struct {
	Metrics     domain.Metrics
	Products    []domain.Product
	LowStock    []domain.Product
	MaxQuantity int
	Movements   []repos.MovementRow
	Stats       repos.MovementStats
	GeneratedAt time.Time
}

const recentMovementLimit = 12

// ReportService assembles report overviews and export snapshots. A burst
// of identical page loads collapses into one set of queries.
type ReportService struct {
	Products  *repos.ProductRepo
	Movements *repos.MovementRepo

	group singleflight.Group
	now   func() time.Time
}

func NewReportService(products *repos.ProductRepo, movements *repos.MovementRepo) *ReportService {
	return &ReportService{Products: products, Movements: movements, now: time.Now}
}

func (s *ReportService) Overview() (Overview, error) {
	v, err, _ := s.group.Do("overview", func() (any, error) {
		return s.buildOverview()
	})
	if err != nil {
		return Overview{}, err
	}
	return v.(Overview), nil
}

func (s *ReportService) buildOverview() (Overview, error) {
	products, err := s.Products.List()
	if err != nil {
		return Overview{}, err
	}
	moves, err := s.Movements.Recent(recentMovementLimit)
	if err != nil {
		return Overview{}, err
	}
	stats, err := s.Movements.Stats()
	if err != nil {
		return Overview{}, err
	}

	o := Overview{
		Metrics:     domain.Aggregate(products),
		Products:    products,
		Movements:   moves,
		Stats:       stats,
		GeneratedAt: s.now(),
	}
	for _, p := range products {
		if p.Status() == domain.StatusLowStock {
			o.LowStock = append(o.LowStock, p)
		}
		if p.Quantity > o.MaxQuantity {
			o.MaxQuantity = p.Quantity
		}
	}
	return o, nil
}

// Snapshot freezes the inventory for the exporters.
func (s *ReportService) Snapshot() (domain.ReportSnapshot, error) {
	products, err := s.Products.List()
	if err != nil {
		return domain.ReportSnapshot{}, err
	}
	snap := domain.ReportSnapshot{
		Products:    products,
		GeneratedAt: s.now(),
	}
	m := domain.Aggregate(products)
	snap.TotalValue = m.TotalValue
	for _, p := range products {
		if p.Status() == domain.StatusLowStock {
			snap.LowStock = append(snap.LowStock, p)
		}
	}
	return snap, nil
}
