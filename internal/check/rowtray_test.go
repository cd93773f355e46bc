package check

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/shelfcheck/item-audit/internal/config"
	"github.com/shelfcheck/item-audit/internal/domain"
	"github.com/shelfcheck/item-audit/internal/staging"
)

func newRowTrayTestCheck(store staging.Store) *RowTrayCheck {
	cfg := &config.Config{
		SkipLocations: []string{"WRLC Gemtrac Drawer", "WRLC Microfilm Cabinet"},
		ExcludedNotes: []string{"At WRLC waiting to be processed", "DO NOT DELETE", "WD"},
	}
	return NewRowTrayCheck(store, cfg, zap.NewNop())
}

func TestRowTrayShouldProcess(t *testing.T) {
	c := newRowTrayTestCheck(staging.NewMockStore())

	tests := []struct {
		name string
		item domain.Item
		want bool
	}{
		{
			name: "valid shelving code passes",
			item: domain.Item{Barcode: "b1", AltCallNumber: "R12M03S04"},
			want: false,
		},
		{
			name: "valid code in internal note passes",
			item: domain.Item{Barcode: "b2", InternalNote: "R1M1S1 tray 4"},
			want: false,
		},
		{
			name: "malformed code fails",
			item: domain.Item{Barcode: "b3", AltCallNumber: "shelf 12"},
			want: true,
		},
		{
			name: "markers out of order fails",
			item: domain.Item{Barcode: "b4", AltCallNumber: "M03R12S04"},
			want: true,
		},
		{
			name: "both fields empty fails",
			item: domain.Item{Barcode: "b5"},
			want: true,
		},
		{
			name: "one valid field does not excuse a malformed one",
			item: domain.Item{Barcode: "b6", AltCallNumber: "R12M03S04", InternalNote: "misc note"},
			want: true,
		},
		{
			name: "skip location is exempt from the format",
			item: domain.Item{Barcode: "b7", AltCallNumber: "WRLC Gemtrac Drawer 42"},
			want: false,
		},
		{
			name: "skip location with empty second field still counts as populated",
			item: domain.Item{Barcode: "b8", InternalNote: "WRLC Microfilm Cabinet 7"},
			want: false,
		},
		{
			name: "excluded note suppresses staging",
			item: domain.Item{Barcode: "b9", InternalNote: "WD"},
			want: false,
		},
		{
			name: "excluded note must match exactly",
			item: domain.Item{Barcode: "b10", InternalNote: "WD soon"},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.ShouldProcess(&tt.item); got != tt.want {
				t.Errorf("ShouldProcess(%+v) = %v, want %v", tt.item, got, tt.want)
			}
		})
	}
}

func TestRowTrayProcessStagesItem(t *testing.T) {
	store := staging.NewMockStore()
	c := newRowTrayTestCheck(store)

	item := &domain.Item{Barcode: "31197000001", AltCallNumber: "bad"}
	if err := c.Process(context.Background(), item); err != nil {
		t.Fatalf("Process() error: %v", err)
	}

	if got := store.Count(RowTrayCheckName); got != 1 {
		t.Fatalf("staged count = %d, want 1", got)
	}

	// Staging the same barcode twice must not duplicate.
	if err := c.Process(context.Background(), item); err != nil {
		t.Fatalf("Process() second call error: %v", err)
	}
	if got := store.Count(RowTrayCheckName); got != 1 {
		t.Fatalf("staged count after re-stage = %d, want 1", got)
	}
}

func TestRowTrayProcessPropagatesStoreError(t *testing.T) {
	store := staging.NewMockStore()
	store.UpsertErr = context.DeadlineExceeded
	c := newRowTrayTestCheck(store)

	err := c.Process(context.Background(), &domain.Item{Barcode: "b1"})
	if err == nil {
		t.Fatal("Process() expected error, got nil")
	}
}
