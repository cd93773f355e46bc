package report

import (
	"strings"
	"testing"

	"github.com/shelfcheck/item-audit/internal/domain"
)

func TestSingleItem(t *testing.T) {
	check := &domain.CheckConfig{EmailSubject: "Barcode corrected"}
	item := &domain.Item{Barcode: "31197000123X", Title: "The Odyssey"}

	html, err := SingleItem(check, item)
	if err != nil {
		t.Fatalf("SingleItem() error: %v", err)
	}

	for _, want := range []string{"Barcode corrected", "The Odyssey", "31197000123X"} {
		if !strings.Contains(html, want) {
			t.Errorf("report missing %q", want)
		}
	}
	// Empty fields render as a placeholder, not a blank cell.
	if !strings.Contains(html, "None") {
		t.Error("empty author should render as None")
	}
}

func TestConsolidated(t *testing.T) {
	check := &domain.CheckConfig{EmailSubject: "Row/tray audit"}
	items := []*domain.Item{
		{Barcode: "b1", Title: "First", AltCallNumber: "shelf 9"},
		{Barcode: "b2", Title: "Second", InternalNote: "misfiled"},
	}

	html, err := Consolidated(check, items)
	if err != nil {
		t.Fatalf("Consolidated() error: %v", err)
	}

	for _, want := range []string{"Row/tray audit", "b1", "b2", "shelf 9", "misfiled"} {
		if !strings.Contains(html, want) {
			t.Errorf("report missing %q", want)
		}
	}
	if got := strings.Count(html, "<tr>"); got != 3 {
		t.Errorf("row count = %d, want header plus 2 items", got)
	}
}

func TestConsolidatedEscapesHTML(t *testing.T) {
	check := &domain.CheckConfig{EmailSubject: "audit"}
	items := []*domain.Item{{Barcode: "b1", Title: `<script>alert("x")</script>`}}

	html, err := Consolidated(check, items)
	if err != nil {
		t.Fatalf("Consolidated() error: %v", err)
	}
	if strings.Contains(html, "<script>") {
		t.Error("title not escaped")
	}
}
