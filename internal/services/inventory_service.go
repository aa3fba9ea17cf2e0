package services

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"

	"goldengate/internal/domain"
)

const InventorySlot = "inventoryItems"

// InventoryFields is what the item form submits. Values are already validated.
type InventoryFields struct {
	Name     string
	Category string
	Type     string
	Stock    int
	Price    float64
	Karats   *float64
	Grams    *float64
	ImageURL string
}

type InventoryService struct {
	Items *Collection[domain.InventoryItem]
	b     Backing
}

func NewInventoryService(b Backing) *InventoryService {
	if b.Clock == nil {
		b.Clock = defaultClock
	}
	return &InventoryService{
		Items: NewCollection(b, CollectionConfig[domain.InventoryItem]{
			Key:       InventorySlot,
			IDPrefix:  "inv",
			Seed:      domain.SeedInventory,
			Protected: domain.ProtectedInventoryIDs,
		}),
		b: b,
	}
}

func (s *InventoryService) Load(ctx context.Context) ([]domain.InventoryItem, error) {
	return s.Items.Load(ctx)
}

func (s *InventoryService) List() []domain.InventoryItem { return s.Items.List() }

func (s *InventoryService) Get(id string) (domain.InventoryItem, bool) { return s.Items.Get(id) }

// Deletable reports whether id may ever be deleted (bulk materials may not).
func (s *InventoryService) Deletable(id string) bool { return !s.Items.IsProtected(id) }

func (s *InventoryService) Create(ctx context.Context, f InventoryFields) (domain.InventoryItem, error) {
	return s.Items.Create(ctx, func(id string) domain.InventoryItem {
		item := domain.InventoryItem{ID: id}
		applyInventoryFields(&item, f)
		item.Image = s.imageFor(f, nil)
		return item
	})
}

// Update overwrites every form field of the item; the image is kept unless a
// new URL was given.
func (s *InventoryService) Update(ctx context.Context, id string, f InventoryFields) (domain.InventoryItem, bool, error) {
	return s.Items.Update(ctx, id, func(item domain.InventoryItem) domain.InventoryItem {
		current := item.Image
		applyInventoryFields(&item, f)
		item.Image = s.imageFor(f, &current)
		return item
	})
}

func (s *InventoryService) Delete(ctx context.Context, id string) (bool, error) {
	return s.Items.Delete(ctx, id)
}

func applyInventoryFields(item *domain.InventoryItem, f InventoryFields) {
	item.Name = f.Name
	item.Category = f.Category
	item.Type = f.Type
	item.Stock = f.Stock
	item.Price = f.Price
	item.Karats = f.Karats
	item.Grams = f.Grams
}

func (s *InventoryService) imageFor(f InventoryFields, existing *domain.Image) domain.Image {
	if url := strings.TrimSpace(f.ImageURL); url != "" {
		return domain.Image{
			ID:          fmt.Sprintf("custom-%d", s.b.Clock().UnixMilli()),
			URL:         url,
			Description: f.Name,
			Hint:        strings.ToLower(f.Type),
		}
	}
	if existing != nil {
		return *existing
	}
	if img, ok := domain.PlaceholderForType(f.Type); ok {
		return img
	}
	return domain.PlaceholderImages[rand.IntN(len(domain.PlaceholderImages))]
}
