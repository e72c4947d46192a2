package eligibility

// FeeRow is one row of the rate table. A row applies when its application
// type matches (empty means any type) and its category is selected (empty
// means the row is a flat fee for the application type itself).
type FeeRow struct {
	Code        string          `yaml:"code"`
	Description string          `yaml:"description"`
	AppliesTo   ApplicationType `yaml:"applies_to,omitempty"`
	Category    Category        `yaml:"category,omitempty"`
	AmountCents int64           `yaml:"amount_cents"`
}

// FeeTable is the state fee rate table. Loaded once at startup; read-only
// afterwards.
type FeeTable struct {
	Currency string   `yaml:"currency"`
	Rows     []FeeRow `yaml:"fees"`
}

// FeeLine is one applicable fee of a concrete application.
type FeeLine struct {
	Code        string
	Description string
	Category    Category
	AmountCents int64
}

// CalculateApplicationFees resolves the fee lines for an application type and
// category selection. Categories are treated as a set: ordering and duplicate
// entries cannot change the outcome, and each matching row appears exactly
// once. Rows are emitted in rate-table order, so the result is deterministic.
func (e *Engine) CalculateApplicationFees(appType ApplicationType, categories []Category) []FeeLine {
	selected := make(map[Category]bool, len(categories))
	for _, c := range categories {
		selected[c] = true
	}

	var lines []FeeLine
	for _, row := range e.fees.Rows {
		if row.AppliesTo != "" && row.AppliesTo != appType {
			continue
		}
		if row.Category != "" && !selected[row.Category] {
			continue
		}
		lines = append(lines, FeeLine{
			Code:        row.Code,
			Description: row.Description,
			Category:    row.Category,
			AmountCents: row.AmountCents,
		})
	}
	return lines
}

// TotalFees sums fee lines into a total in cents.
func TotalFees(lines []FeeLine) int64 {
	var total int64
	for _, line := range lines {
		total += line.AmountCents
	}
	return total
}
