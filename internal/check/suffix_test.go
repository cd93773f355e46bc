package check

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/shelfcheck/item-audit/internal/domain"
	"github.com/shelfcheck/item-audit/internal/ims"
	"github.com/shelfcheck/item-audit/internal/notifier"
	"github.com/shelfcheck/item-audit/internal/ratelimiter"
	"github.com/shelfcheck/item-audit/internal/repository"
)

const testMarker = "X"

func newSuffixTestCheck(cfgRepo repository.ConfigRepository, client ims.Client, gateway notifier.Gateway) *SuffixCheck {
	return NewSuffixCheck(cfgRepo, client, gateway, ratelimiter.New(1000), testMarker, zap.NewNop())
}

func TestSuffixShouldProcess(t *testing.T) {
	c := newSuffixTestCheck(repository.NewMockConfigRepository(), ims.NewMockClient(), notifier.NewMockGateway())

	if c.ShouldProcess(&domain.Item{Barcode: "31197000123X"}) {
		t.Error("barcode with marker should be skipped")
	}
	if !c.ShouldProcess(&domain.Item{Barcode: "31197000123"}) {
		t.Error("barcode without marker should be processed")
	}
}

func TestSuffixProcessCorrectsAndNotifies(t *testing.T) {
	cfgRepo := repository.NewMockConfigRepository()
	cfgRepo.AddCheck(&domain.CheckConfig{
		ID:           2,
		Name:         SuffixCheckName,
		APIKey:       "key-2",
		EmailSubject: "Barcode corrected",
	})
	cfgRepo.AddSubscribers(2, "ops@example.edu", "cataloging@example.edu")

	client := ims.NewMockClient()
	gateway := notifier.NewMockGateway()
	c := newSuffixTestCheck(cfgRepo, client, gateway)

	item := &domain.Item{Barcode: "31197000123", Title: "The Odyssey"}
	if err := c.Process(context.Background(), item); err != nil {
		t.Fatalf("Process() error: %v", err)
	}

	if len(client.Updates) != 1 {
		t.Fatalf("upstream updates = %d, want 1", len(client.Updates))
	}
	if got := client.Updates[0].Barcode; got != "31197000123X" {
		t.Errorf("corrected barcode = %q, want %q", got, "31197000123X")
	}
	// The fetched snapshot must stay untouched.
	if item.Barcode != "31197000123" {
		t.Errorf("original item mutated: barcode = %q", item.Barcode)
	}

	if gateway.Count() != 1 {
		t.Fatalf("notifications sent = %d, want 1", gateway.Count())
	}
	sent := gateway.Sent[0]
	if len(sent.Recipients) != 2 {
		t.Errorf("recipients = %v, want 2 entries", sent.Recipients)
	}
	if sent.Subject != "Barcode corrected" {
		t.Errorf("subject = %q", sent.Subject)
	}
	if !strings.Contains(sent.HTMLBody, "31197000123X") {
		t.Errorf("report body missing corrected barcode: %q", sent.HTMLBody)
	}
}

func TestSuffixProcessMissingAPIKey(t *testing.T) {
	cfgRepo := repository.NewMockConfigRepository()
	cfgRepo.AddCheck(&domain.CheckConfig{ID: 2, Name: SuffixCheckName})

	client := ims.NewMockClient()
	c := newSuffixTestCheck(cfgRepo, client, notifier.NewMockGateway())

	err := c.Process(context.Background(), &domain.Item{Barcode: "31197000123"})
	if !errors.Is(err, domain.ErrMissingAPIKey) {
		t.Fatalf("Process() error = %v, want ErrMissingAPIKey", err)
	}
	if len(client.Updates) != 0 {
		t.Errorf("no upstream update expected, got %d", len(client.Updates))
	}
}

func TestSuffixProcessUpdateFailureSkipsNotification(t *testing.T) {
	cfgRepo := repository.NewMockConfigRepository()
	cfgRepo.AddCheck(&domain.CheckConfig{ID: 2, Name: SuffixCheckName, APIKey: "key-2"})

	client := ims.NewMockClient()
	client.UpdateErr = errors.New("upstream 500")
	gateway := notifier.NewMockGateway()
	c := newSuffixTestCheck(cfgRepo, client, gateway)

	if err := c.Process(context.Background(), &domain.Item{Barcode: "31197000123"}); err == nil {
		t.Fatal("Process() expected error, got nil")
	}
	if gateway.Count() != 0 {
		t.Errorf("notification sent despite failed update")
	}
}
