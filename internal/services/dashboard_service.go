package services

import (
	"github.com/shopspring/decimal"

	"goldengate/internal/domain"
)

type Summary struct {
	TotalInventoryValue decimal.Decimal `json:"totalInventoryValue"`
	ActiveFinancing     int             `json:"activeFinancing"`
	TotalDebt           decimal.Decimal `json:"totalDebt"`
	InventoryItems      int             `json:"inventoryItems"`
}

type DashboardService struct {
	Inv *InventoryService
	Fin *FinancingService
}

func NewDashboardService(inv *InventoryService, fin *FinancingService) *DashboardService {
	return &DashboardService{Inv: inv, Fin: fin}
}

func (s *DashboardService) Summary() Summary {
	return Summarize(s.Inv.List(), s.Fin.List())
}

// Summarize computes the dashboard cards from the current collections.
func Summarize(items []domain.InventoryItem, records []domain.FinancingRecord) Summary {
	value := decimal.Zero
	for _, it := range items {
		value = value.Add(decimal.NewFromFloat(it.Price).Mul(decimal.NewFromInt(int64(it.Stock))))
	}

	debt := decimal.Zero
	active := 0
	for _, r := range records {
		debt = debt.Add(decimal.NewFromFloat(r.TotalPrice).Sub(decimal.NewFromFloat(r.Paid)))
		if r.Status == domain.StatusActive {
			active++
		}
	}

	return Summary{
		TotalInventoryValue: value,
		ActiveFinancing:     active,
		TotalDebt:           debt,
		InventoryItems:      len(items),
	}
}
