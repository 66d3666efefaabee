package models

// Feed methods
const (
	MethodBottle  = "bottle"
	MethodNursing = "nursing"
)

// Feed is a single feeding. Bottle feeds carry Amount in ounces, nursing
// feeds carry Duration in minutes.
type Feed struct {
	ID       int64    `json:"id"`
	Method   string   `json:"method"`
	FedAt    int64    `json:"fed_at"`
	Amount   *float64 `json:"amount"`
	Duration *int     `json:"duration"`
	InfantID int64    `json:"infant_id"`
}

// NewFeed is the payload for logging a feed.
type NewFeed struct {
	Method   string   `json:"method" validate:"required,oneof=bottle nursing"`
	FedAt    *int64   `json:"fed_at" validate:"required,min=0"`
	Amount   *float64 `json:"amount" validate:"omitempty,gt=0"`
	Duration *int     `json:"duration" validate:"omitempty,gt=0"`
	InfantID int64    `json:"infant_id" validate:"required"`
}

// FeedPatch lists the feed columns a partial update may touch.
type FeedPatch struct {
	Method   *string  `json:"method" validate:"omitempty,oneof=bottle nursing"`
	FedAt    *int64   `json:"fed_at" validate:"omitempty,min=0"`
	Amount   *float64 `json:"amount" validate:"omitempty,gt=0"`
	Duration *int     `json:"duration" validate:"omitempty,gt=0"`
}

// IsEmpty reports whether the patch sets nothing.
func (p FeedPatch) IsEmpty() bool {
	return p.Method == nil && p.FedAt == nil && p.Amount == nil && p.Duration == nil
}

// Columns maps the set fields to their column names.
func (p FeedPatch) Columns() map[string]any {
	cols := make(map[string]any)
	if p.Method != nil {
		cols["method"] = *p.Method
	}
	if p.FedAt != nil {
		cols["fed_at"] = *p.FedAt
	}
	if p.Amount != nil {
		cols["amount"] = *p.Amount
	}
	if p.Duration != nil {
		cols["duration"] = *p.Duration
	}
	return cols
}

// ApplyTo merges the patch over f, giving the feed as it would be stored.
func (p FeedPatch) ApplyTo(f Feed) NewFeed {
	merged := NewFeed{
		Method:   f.Method,
		FedAt:    &f.FedAt,
		Amount:   f.Amount,
		Duration: f.Duration,
		InfantID: f.InfantID,
	}
	if p.Method != nil {
		merged.Method = *p.Method
	}
	if p.FedAt != nil {
		merged.FedAt = p.FedAt
	}
	if p.Amount != nil {
		merged.Amount = p.Amount
	}
	if p.Duration != nil {
		merged.Duration = p.Duration
	}
	return merged
}
