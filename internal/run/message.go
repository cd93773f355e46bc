package run

import (
	"encoding/json"
	"fmt"

	"github.com/shelfcheck/item-audit/internal/domain"
)

// Continuation is the queue message that carries a batch run forward.
// It holds references, not data: the worklist lives in blob storage and the
// authoritative cursor lives on the run row, keeping message size bounded.
type Continuation struct {
	RunID       string `json:"run_id"`
	WorklistRef string `json:"worklist_ref"`
	Cursor      int    `json:"cursor"`
}

// Encode marshals the continuation for the queue. Marshalling a plain
// struct of strings and ints cannot fail, so the error is swallowed.
func (c Continuation) Encode() []byte {
	data, _ := json.Marshal(c)
	return data
}

// ParseContinuation validates and decodes a raw queue payload.
// Returns domain.ErrMalformedMessage for anything the worker cannot act on.
func ParseContinuation(data []byte) (Continuation, error) {
	var c Continuation
	if err := json.Unmarshal(data, &c); err != nil {
		return Continuation{}, fmt.Errorf("%w: %v", domain.ErrMalformedMessage, err)
	}
	if c.RunID == "" || c.WorklistRef == "" || c.Cursor < 0 {
		return Continuation{}, fmt.Errorf("%w: missing run_id, worklist_ref or cursor", domain.ErrMalformedMessage)
	}
	return c, nil
}
