package models

// Diaper types and sizes
const (
	DiaperDry    = "dry"
	DiaperWet    = "wet"
	DiaperSoiled = "soiled"
	DiaperMixed  = "mixed"

	SizeLight  = "light"
	SizeMedium = "medium"
	SizeHeavy  = "heavy"
)

// Diaper is a single diaper change.
type Diaper struct {
	ID        int64  `json:"id"`
	Type      string `json:"type"`
	Size      string `json:"size"`
	ChangedAt int64  `json:"changed_at"`
	InfantID  int64  `json:"infant_id"`
}

// NewDiaper is the payload for logging a diaper change. The store keeps Size
// as given; NormalizeDiaperSize is applied where submissions are built.
type NewDiaper struct {
	Type      string `json:"type" validate:"required,oneof=dry wet soiled mixed"`
	Size      string `json:"size" validate:"required,oneof=light medium heavy"`
	ChangedAt *int64 `json:"changed_at" validate:"required,min=0"`
	InfantID  int64  `json:"infant_id" validate:"required"`
}

// DiaperPatch lists the diaper columns a partial update may touch.
type DiaperPatch struct {
	Type      *string `json:"type" validate:"omitempty,oneof=dry wet soiled mixed"`
	Size      *string `json:"size" validate:"omitempty,oneof=light medium heavy"`
	ChangedAt *int64  `json:"changed_at" validate:"omitempty,min=0"`
}

// IsEmpty reports whether the patch sets nothing.
func (p DiaperPatch) IsEmpty() bool {
	return p.Type == nil && p.Size == nil && p.ChangedAt == nil
}

// Columns maps the set fields to their column names.
func (p DiaperPatch) Columns() map[string]any {
	cols := make(map[string]any)
	if p.Type != nil {
		cols["type"] = *p.Type
	}
	if p.Size != nil {
		cols["size"] = *p.Size
	}
	if p.ChangedAt != nil {
		cols["changed_at"] = *p.ChangedAt
	}
	return cols
}

// NormalizeDiaperSize forces dry diapers to light.
func NormalizeDiaperSize(diaperType, size string) string {
	if diaperType == DiaperDry {
		return SizeLight
	}
	return size
}

// IsWet counts toward the wet total.
func (d Diaper) IsWet() bool {
	return d.Type == DiaperWet || d.Type == DiaperMixed
}

// IsSoiled counts toward the soiled total.
func (d Diaper) IsSoiled() bool {
	return d.Type == DiaperSoiled || d.Type == DiaperMixed
}
