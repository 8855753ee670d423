package optimizer

import (
	"testing"

	"github.com/andresuchdata/inventory-optimizer/internal/domain"
)

func TestClassifyPriority(t *testing.T) {
	tests := []struct {
		ratio float64
		want  domain.Priority
	}{
		{ratio: 0, want: domain.PriorityCritical},
		{ratio: 0.3, want: domain.PriorityCritical},
		{ratio: 0.31, want: domain.PriorityHigh},
		{ratio: 0.6, want: domain.PriorityHigh},
		{ratio: 0.61, want: domain.PriorityMedium},
		{ratio: 0.8, want: domain.PriorityMedium},
		{ratio: 0.81, want: domain.PriorityLow},
		{ratio: 1, want: domain.PriorityLow},
	}

	for _, tt := range tests {
		if got := ClassifyPriority(tt.ratio); got != tt.want {
			t.Errorf("ClassifyPriority(%v) = %q, want %q", tt.ratio, got, tt.want)
		}
	}
}

func TestGeneratePurchaseOrdersScenario(t *testing.T) {
	profiles := []domain.VelocityProfile{profile("1", 12, 2, 7, 10)}
	snapshots := []domain.InventorySnapshot{snapshot("2024-01-10", "1", 50)}

	orders := GeneratePurchaseOrders(profiles, snapshots)
	if len(orders) != 1 {
		t.Fatalf("got %d orders, want 1", len(orders))
	}

	want := domain.PurchaseOrder{
		ProductID:     "1",
		ProductName:   "Product 1",
		Supplier:      "Supplier A",
		CurrentStock:  50,
		ReorderPoint:  107,
		OrderQuantity: 110,
		Priority:      domain.PriorityHigh,
		EstimatedCost: 1106.5,
		LeadTimeDays:  7,
	}
	if orders[0] != want {
		t.Errorf("order = %+v, want %+v", orders[0], want)
	}
}

func TestGeneratePurchaseOrders(t *testing.T) {
	profiles := []domain.VelocityProfile{
		profile("A", 10, 0, 10, 2.5),  // ROP 100, optimal 150
		profile("B", 10, 0, 10, 1),    // ROP 100, optimal 150
		profile("C", 10, 0, 10, 1),    // ROP 100, optimal 150
		profile("D", 0, 0, 7, 1),      // ROP 0, optimal 0
		profile("E", 10, 0, 10, 0.33), // ROP 100, optimal 150
		profile("F", 10, 0, 10, 1),    // ROP 100, optimal 150
		profile("G", 10, 0, 10, 2),    // ROP 100, optimal 150
	}
	snapshots := []domain.InventorySnapshot{
		snapshot("2024-01-01", "A", 90),
		snapshot("2024-01-02", "A", 85),
		snapshot("2024-01-02", "B", 20),
		snapshot("2024-01-02", "C", 120),
		snapshot("2024-01-02", "E", 70),
		snapshot("2024-01-02", "F", 149.5),
		snapshot("2024-01-02", "G", 99.5),
	}

	orders := GeneratePurchaseOrders(profiles, snapshots)

	tests := []struct {
		id       string
		quantity int
		priority domain.Priority
		cost     float64
	}{
		{id: "B", quantity: 130, priority: domain.PriorityCritical, cost: 130},
		{id: "E", quantity: 80, priority: domain.PriorityMedium, cost: 26.4},
		{id: "A", quantity: 65, priority: domain.PriorityLow, cost: 162.5},
		{id: "G", quantity: 50, priority: domain.PriorityLow, cost: 101},
	}

	if len(orders) != len(tests) {
		t.Fatalf("got %d orders, want %d: %+v", len(orders), len(tests), orders)
	}

	for i, tt := range tests {
		got := orders[i]
		if got.ProductID != tt.id {
			t.Errorf("orders[%d].ProductID = %q, want %q", i, got.ProductID, tt.id)
			continue
		}
		if got.OrderQuantity != tt.quantity {
			t.Errorf("%s: OrderQuantity = %d, want %d", tt.id, got.OrderQuantity, tt.quantity)
		}
		if got.Priority != tt.priority {
			t.Errorf("%s: Priority = %q, want %q", tt.id, got.Priority, tt.priority)
		}
		if got.EstimatedCost != tt.cost {
			t.Errorf("%s: EstimatedCost = %v, want %v", tt.id, got.EstimatedCost, tt.cost)
		}
	}

	for _, o := range orders {
		if o.OrderQuantity <= 0 {
			t.Errorf("%s: order quantity %d is not positive", o.ProductID, o.OrderQuantity)
		}
	}
}

func TestGeneratePurchaseOrdersMissingSnapshot(t *testing.T) {
	profiles := []domain.VelocityProfile{profile("X", 5, 1, 5, 2)}

	orders := GeneratePurchaseOrders(profiles, nil)
	if len(orders) != 1 {
		t.Fatalf("got %d orders, want 1", len(orders))
	}
	if orders[0].CurrentStock != 0 || orders[0].Priority != domain.PriorityCritical {
		t.Errorf("order = %+v, want zero stock at Critical priority", orders[0])
	}
}
