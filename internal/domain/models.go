package domain

// Image is owned by the inventory item that carries it.
type Image struct {
	ID          string `json:"id"`
	URL         string `json:"imageUrl"`
	Description string `json:"description"`
	Hint        string `json:"imageHint"`
}

type InventoryItem struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Category string   `json:"category"`
	Type     string   `json:"type"`
	Stock    int      `json:"stock"`
	Price    float64  `json:"price"`
	Karats   *float64 `json:"karats,omitempty"`
	Grams    *float64 `json:"grams,omitempty"`
	Image    Image    `json:"image"`
}

func (i InventoryItem) RecordID() string { return i.ID }

// FinancingStatus values are persisted with the labels the shop floor uses.
type FinancingStatus string

const (
	StatusActive  FinancingStatus = "Activo"
	StatusPaid    FinancingStatus = "Pagado"
	StatusDueSoon FinancingStatus = "Vence Pronto"
	StatusOverdue FinancingStatus = "Vencido"
)

var FinancingStatuses = []FinancingStatus{StatusActive, StatusPaid, StatusDueSoon, StatusOverdue}

func (s FinancingStatus) Valid() bool {
	for _, v := range FinancingStatuses {
		if s == v {
			return true
		}
	}
	return false
}

type FinancingRecord struct {
	ID         string          `json:"id"`
	Customer   string          `json:"customer"`
	Item       string          `json:"item"`
	TotalPrice float64         `json:"totalPrice"`
	Paid       float64         `json:"paid"`
	DueDate    string          `json:"dueDate"` // YYYY-MM-DD
	Status     FinancingStatus `json:"status"`
}

func (f FinancingRecord) RecordID() string { return f.ID }

// Remaining is the unpaid balance of the account.
func (f FinancingRecord) Remaining() float64 { return f.TotalPrice - f.Paid }
