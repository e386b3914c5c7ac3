package handlers

import (
	"time"

	"github.com/jmoiron/sqlx"

	"stockroom/internal/alerts"
	"stockroom/internal/config"
	"stockroom/internal/export"
	"stockroom/internal/inflight"
	"stockroom/internal/repos"
	"stockroom/internal/services"
)

type Deps struct {
	DashboardHandler *DashboardHandler
	ProductHandler   *ProductHandler
	ReportHandler    *ReportHandler
	StockAPIHandler  *StockAPIHandler
}

func NewDeps(db *sqlx.DB, cfg config.Config, notify alerts.Notifier) *Deps {
	prodRepo := repos.NewProductRepo(db)
	movRepo := repos.NewMovementRepo(db)

	stockSvc := services.NewStockService(prodRepo, notify)
	reportSvc := services.NewReportService(prodRepo, movRepo)

	// One tracker for every guarded action, so a product busy restocking
	// is also busy for selling.
	actions := inflight.New()

	return &Deps{
		DashboardHandler: &DashboardHandler{Stock: stockSvc, Actions: actions, Now: time.Now},
		ProductHandler:   &ProductHandler{Stock: stockSvc, Movements: movRepo, Actions: actions},
		ReportHandler:    &ReportHandler{Reports: reportSvc, Exporter: export.FileExporter{}},
		StockAPIHandler:  &StockAPIHandler{Stock: stockSvc},
	}
}
