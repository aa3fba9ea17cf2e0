package services

import (
	"context"
	"strings"
	"time"

	"goldengate/internal/domain"
)

const FinancingSlot = "financingRecords"

var defaultClock = time.Now

// FinancingFields is what the account form submits. Status is taken as given;
// it is never derived from the payments or the due date.
type FinancingFields struct {
	Customer   string
	Item       string
	TotalPrice float64
	Paid       float64
	DueDate    string
	Status     domain.FinancingStatus
}

type FinancingService struct {
	Records *Collection[domain.FinancingRecord]
}

func NewFinancingService(b Backing) *FinancingService {
	if b.Clock == nil {
		b.Clock = defaultClock
	}
	return &FinancingService{
		Records: NewCollection(b, CollectionConfig[domain.FinancingRecord]{
			Key:      FinancingSlot,
			IDPrefix: "fin",
			Seed:     domain.SeedFinancing,
		}),
	}
}

func (s *FinancingService) Load(ctx context.Context) ([]domain.FinancingRecord, error) {
	return s.Records.Load(ctx)
}

func (s *FinancingService) List() []domain.FinancingRecord { return s.Records.List() }

func (s *FinancingService) Get(id string) (domain.FinancingRecord, bool) { return s.Records.Get(id) }

func (s *FinancingService) Create(ctx context.Context, f FinancingFields) (domain.FinancingRecord, error) {
	return s.Records.Create(ctx, func(id string) domain.FinancingRecord {
		rec := domain.FinancingRecord{ID: id}
		applyFinancingFields(&rec, f)
		return rec
	})
}

func (s *FinancingService) Update(ctx context.Context, id string, f FinancingFields) (domain.FinancingRecord, bool, error) {
	return s.Records.Update(ctx, id, func(rec domain.FinancingRecord) domain.FinancingRecord {
		applyFinancingFields(&rec, f)
		return rec
	})
}

func (s *FinancingService) Delete(ctx context.Context, id string) (bool, error) {
	return s.Records.Delete(ctx, id)
}

func applyFinancingFields(rec *domain.FinancingRecord, f FinancingFields) {
	rec.Customer = f.Customer
	rec.Item = f.Item
	rec.TotalPrice = f.TotalPrice
	rec.Paid = f.Paid
	rec.DueDate = DateOnly(f.DueDate)
	rec.Status = f.Status
}

// DateOnly strips a time-of-day suffix from an ISO timestamp.
func DateOnly(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, 'T'); i >= 0 {
		return s[:i]
	}
	return s
}
