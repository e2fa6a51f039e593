package catalog

// NoOption marks a missing option label on quotation lines
const NoOption = "-"

// QuoteLine is one priced line of a quotation
type QuoteLine struct {
	No        int
	Title     string
	Option1   string
	Option2   string
	Quantity  int
	UnitPrice float64
	Note      string
}

// Amount is the line total
func (l QuoteLine) Amount() float64 {
	return l.UnitPrice * float64(l.Quantity)
}

// QuoteLines expands products into numbered quotation lines, one per option
// or one per optionless product, each with quantity 1.
func QuoteLines(products []Product) []QuoteLine {
	lines := make([]QuoteLine, 0, TotalRows(products))
	for _, p := range products {
		title := p.DisplayTitle()
		if len(p.Options) == 0 {
			lines = append(lines, QuoteLine{
				No:        len(lines) + 1,
				Title:     title,
				Option1:   NoOption,
				Option2:   NoOption,
				Quantity:  1,
				UnitPrice: p.EffectivePrice(),
			})
			continue
		}
		for _, opt := range p.Options {
			lines = append(lines, QuoteLine{
				No:        len(lines) + 1,
				Title:     title,
				Option1:   orDash(opt.Label1()),
				Option2:   orDash(opt.Label2()),
				Quantity:  1,
				UnitPrice: opt.EffectivePrice(),
				Note:      opt.SKU,
			})
		}
	}
	return lines
}

func orDash(s string) string {
	if s == "" {
		return NoOption
	}
	return s
}
