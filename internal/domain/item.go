package domain

// Item is a snapshot of a physical item's metadata at fetch time.
// It is never mutated in place once fetched; a correction is expressed as a
// new barcode value sent back to the item-management platform via Update.
type Item struct {
	Barcode       string `json:"barcode"`
	Title         string `json:"title"`
	Author        string `json:"author"`
	CallNumber    string `json:"call_number"`
	AltCallNumber string `json:"alt_call_number"`
	InternalNote  string `json:"internal_note"`
	Location      string `json:"location"`
	TempLocation  string `json:"temp_location"`
	Provenance    string `json:"provenance"`
	Institution   string `json:"institution"`
}

// WithBarcode returns a copy of the item with a replacement barcode.
// Used by corrective checks so the fetched snapshot stays immutable.
func (i Item) WithBarcode(barcode string) Item {
	i.Barcode = barcode
	return i
}

// ItemEvent is the inbound webhook envelope for an item change-event.
type ItemEvent struct {
	Item Item `json:"item"`
}
