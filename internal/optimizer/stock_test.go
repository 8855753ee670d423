package optimizer

import (
	"testing"

	"github.com/andresuchdata/inventory-optimizer/internal/domain"
)

func TestLatestStock(t *testing.T) {
	snapshots := []domain.InventorySnapshot{
		snapshot("2024-01-03", "P1", 30),
		snapshot("2024-01-01", "P1", 10),
		snapshot("2024-01-02", "P2", 5),
		snapshot("2024-01-02", "P2", 7),
	}

	stock := LatestStock(snapshots)

	tests := []struct {
		name string
		id   string
		want float64
	}{
		{name: "most recent date wins", id: "P1", want: 30},
		{name: "later row wins a tie", id: "P2", want: 7},
		{name: "missing product has no stock", id: "P9", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stock.Of(tt.id); got != tt.want {
				t.Errorf("Of(%q) = %v, want %v", tt.id, got, tt.want)
			}
		})
	}
}
