package domain

import "strings"

// PlaceholderImages is the catalog used for items created without an image URL.
var PlaceholderImages = []Image{
	{ID: "gold-ingot-1", URL: "https://picsum.photos/seed/gold-ingot-1/400/400", Description: "Lingote de oro", Hint: "gold ingot lingote"},
	{ID: "silver-ingot-1", URL: "https://picsum.photos/seed/silver-ingot-1/400/400", Description: "Lingote de plata", Hint: "silver ingot lingote"},
	{ID: "platinum-band-1", URL: "https://picsum.photos/seed/platinum-band-1/400/400", Description: "Anillo de platino", Hint: "platinum ring anillo"},
	{ID: "luxury-watch-1", URL: "https://picsum.photos/seed/luxury-watch-1/400/400", Description: "Reloj de lujo", Hint: "luxury watch reloj"},
	{ID: "pearl-earrings-1", URL: "https://picsum.photos/seed/pearl-earrings-1/400/400", Description: "Aretes de perla", Hint: "pearl earrings aretes"},
}

// Placeholder returns the catalog image with the given id.
func Placeholder(id string) (Image, bool) {
	for _, img := range PlaceholderImages {
		if img.ID == id {
			return img, true
		}
	}
	return Image{}, false
}

// PlaceholderForType returns the first catalog image whose hint mentions typ.
func PlaceholderForType(typ string) (Image, bool) {
	typ = strings.ToLower(strings.TrimSpace(typ))
	if typ == "" {
		return Image{}, false
	}
	for _, img := range PlaceholderImages {
		if strings.Contains(img.Hint, typ) {
			return img, true
		}
	}
	return Image{}, false
}

// Bulk materials sold by the gram; they can never be deleted.
var ProtectedInventoryIDs = []string{"inv-007", "inv-008"}

func f64(v float64) *float64 { return &v }

func mustPlaceholder(id string) Image {
	img, ok := Placeholder(id)
	if !ok {
		panic("unknown placeholder " + id)
	}
	return img
}

// SeedInventory returns a fresh copy of the default inventory.
func SeedInventory() []InventoryItem {
	return []InventoryItem{
		{ID: "inv-007", Name: "Oro (por gramo)", Category: "Material", Type: "Lingote", Stock: 1000, Price: 280000, Grams: f64(1), Image: mustPlaceholder("gold-ingot-1")},
		{ID: "inv-008", Name: "Plata (por gramo)", Category: "Material", Type: "Lingote", Stock: 5000, Price: 3500, Grams: f64(1), Image: mustPlaceholder("silver-ingot-1")},
		{ID: "inv-001", Name: "Anillo de Boda de Platino", Category: "Joyería", Type: "Anillo", Stock: 20, Price: 4500000, Grams: f64(5), Image: mustPlaceholder("platinum-band-1")},
		{ID: "inv-002", Name: "Reloj de Lujo (Cronógrafo)", Category: "Relojería", Type: "Reloj", Stock: 10, Price: 45000000, Grams: f64(150), Image: mustPlaceholder("luxury-watch-1")},
		{ID: "inv-005", Name: "Aretes de Perla", Category: "Joyería", Type: "Aretes", Stock: 50, Price: 940000, Grams: f64(3), Image: mustPlaceholder("pearl-earrings-1")},
	}
}

// SeedFinancing returns a fresh copy of the default financing accounts.
func SeedFinancing() []FinancingRecord {
	return []FinancingRecord{
		{ID: "fin-001", Customer: "Javier Rodríguez", Item: "Anillo de Diamante Solitario", TotalPrice: 7500000, Paid: 1875000, DueDate: "2024-08-15", Status: StatusActive},
		{ID: "fin-002", Customer: "Sofía García", Item: "Reloj Cronógrafo", TotalPrice: 1800000, Paid: 1800000, DueDate: "2024-05-20", Status: StatusPaid},
		{ID: "fin-003", Customer: "Mateo Hernandez", Item: "Tiara Exquisita", TotalPrice: 16800000, Paid: 3750000, DueDate: "2024-09-01", Status: StatusActive},
		{ID: "fin-004", Customer: "Valentina Martinez", Item: "Cadena de Oro", TotalPrice: 3375000, Paid: 375000, DueDate: "2024-07-30", Status: StatusDueSoon},
		{ID: "fin-005", Customer: "Isabella Lopez", Item: "Aretes de Perla", TotalPrice: 940000, Paid: 187500, DueDate: "2024-06-10", Status: StatusOverdue},
	}
}
