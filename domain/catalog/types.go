package catalog

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// UntitledProduct is written when a product carries neither title.
const UntitledProduct = "제목 없음"

// Product is a crawled supplier product with its option combinations
type Product struct {
	ID        string   `json:"id,omitempty"`
	Title     Text     `json:"title,omitempty"`
	TitleCn   Text     `json:"titleCn,omitempty"`
	Price     Price    `json:"price"`
	SalePrice Price    `json:"salePrice"`
	BasePrice Price    `json:"basePrice"`
	Platform  string   `json:"platform,omitempty"`
	URL       string   `json:"url,omitempty"`
	SourceURL string   `json:"sourceUrl,omitempty"`
	MainImage string   `json:"mainImage,omitempty"`
	Options   []Option `json:"results,omitempty"`
}

// Option is one option combination of a product
type Option struct {
	OptionName1   Text   `json:"optionName1,omitempty"`
	OptionName1Cn Text   `json:"optionName1Cn,omitempty"`
	OptionName2   Text   `json:"optionName2,omitempty"`
	OptionName2Cn Text   `json:"optionName2Cn,omitempty"`
	Price         Price  `json:"price"`
	SalePrice     Price  `json:"salePrice"`
	BasePrice     Price  `json:"basePrice"`
	SKU           string `json:"sku,omitempty"`
}

// DisplayTitle returns the title, falling back to the localized title and
// then to UntitledProduct.
func (p Product) DisplayTitle() string {
	if title := firstNonEmpty(p.Title, p.TitleCn); title != "" {
		return title
	}
	return UntitledProduct
}

// EffectivePrice applies the price > sale price > base price > 0 chain
func (p Product) EffectivePrice() float64 {
	return firstPrice(p.Price, p.SalePrice, p.BasePrice)
}

// SourceLink returns the product page the record was crawled from
func (p Product) SourceLink() string {
	if p.URL != "" {
		return p.URL
	}
	return p.SourceURL
}

// RowCount is the number of rows the product expands into
func (p Product) RowCount() int {
	if len(p.Options) == 0 {
		return 1
	}
	return len(p.Options)
}

// Label1 returns the first option dimension, or "" when absent
func (o Option) Label1() string {
	return firstNonEmpty(o.OptionName1, o.OptionName1Cn)
}

// Label2 returns the second option dimension, or "" when absent
func (o Option) Label2() string {
	return firstNonEmpty(o.OptionName2, o.OptionName2Cn)
}

// EffectivePrice applies the price > sale price > base price > 0 chain
func (o Option) EffectivePrice() float64 {
	return firstPrice(o.Price, o.SalePrice, o.BasePrice)
}

// CombinedName joins the non-empty parts with single spaces.
func CombinedName(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			kept = append(kept, part)
		}
	}
	return strings.Join(kept, " ")
}

// TotalRows returns Σ max(1, len(options)) over products
func TotalRows(products []Product) int {
	total := 0
	for _, p := range products {
		total += p.RowCount()
	}
	return total
}

func firstNonEmpty(values ...Text) string {
	for _, v := range values {
		if s := strings.TrimSpace(string(v)); s != "" {
			return s
		}
	}
	return ""
}

func firstPrice(prices ...Price) float64 {
	for _, p := range prices {
		if amount, ok := p.Amount(); ok {
			return amount
		}
	}
	return 0
}

// SharedFields are the scalar values repeated on every expanded row
type SharedFields struct {
	Category   string `json:"category"`
	SearchTags string `json:"search_tags"`
	Size       string `json:"size"`
	Weight     string `json:"weight"`
}

// Dimensions is a package size in centimetres
type Dimensions struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Depth  float64 `json:"depth"`
}

// String renders the size the way templates expect it, e.g. "10x20x30".
// A size with no dimensions renders as "".
func (d Dimensions) String() string {
	if d == (Dimensions{}) {
		return ""
	}
	return formatNumber(d.Width) + "x" + formatNumber(d.Height) + "x" + formatNumber(d.Depth)
}

// ParseDimensions reads a "WxHxD" size. An empty string yields zero dimensions.
func ParseDimensions(s string) (Dimensions, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Dimensions{}, nil
	}
	parts := strings.Split(strings.ToLower(s), "x")
	if len(parts) != 3 {
		return Dimensions{}, fmt.Errorf("size %q must look like WxHxD", s)
	}
	var values [3]float64
	for i, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil || v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return Dimensions{}, fmt.Errorf("size %q has an invalid dimension %q", s, part)
		}
		values[i] = v
	}
	return Dimensions{Width: values[0], Height: values[1], Depth: values[2]}, nil
}

// JoinTags renders search tags as a single comma separated cell value
func JoinTags(tags []string) string {
	kept := make([]string, 0, len(tags))
	for _, tag := range tags {
		if tag = strings.TrimSpace(tag); tag != "" {
			kept = append(kept, tag)
		}
	}
	return strings.Join(kept, ", ")
}

// FormatWeight renders a weight in grams, e.g. "500" becomes "500g".
// Values that already carry the unit are kept as they are.
func FormatWeight(grams Text) string {
	w := strings.TrimSpace(string(grams))
	if w == "" || strings.HasSuffix(strings.ToLower(w), "g") {
		return w
	}
	return w + "g"
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

var platformNames = map[string]string{
	"1688-product":       "1688",
	"coupang-product":    "쿠팡",
	"aliexpress-product": "알리익스프레스",
}

// PlatformName returns the display name of a crawler platform id
func PlatformName(platform string) string {
	if name, ok := platformNames[platform]; ok {
		return name
	}
	if platform != "" {
		return platform
	}
	return "알 수 없음"
}
