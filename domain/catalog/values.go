package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	apperrors "quotefill/internal/errors"
)

// Text is a label that crawlers emit either as a JSON string or a number.
type Text string

func (t *Text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*t = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = Text(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("label must be a string or number, got %s", data)
	}
	*t = Text(n.String())
	return nil
}

// Price is an optional amount. A zero amount counts as absent so the
// fallback chain moves on to the next price source.
type Price struct {
	amount float64
	set    bool
}

// NewPrice returns a price holding amount
func NewPrice(amount float64) Price {
	return Price{amount: amount, set: true}
}

// Amount returns the price and whether it can be used
func (p Price) Amount() (float64, bool) {
	if !p.set || p.amount == 0 {
		return 0, false
	}
	return p.amount, true
}

func (p *Price) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*p = Price{}
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
		if s == "" {
			*p = Price{}
			return nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil || !isFinite(v) {
			return fmt.Errorf("price %q is not a number", s)
		}
		*p = NewPrice(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil || !isFinite(v) {
		return fmt.Errorf("price must be a number, got %s", data)
	}
	*p = NewPrice(v)
	return nil
}

// isFinite rejects NaN and the infinities, which excelize would write as
// numeric cells Excel refuses to open.
func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func (p Price) MarshalJSON() ([]byte, error) {
	if !p.set {
		return []byte("null"), nil
	}
	return json.Marshal(p.amount)
}

// DecodeProducts parses a JSON array of product records. Anything that is not
// an array of objects is rejected before any row is written.
func DecodeProducts(data []byte) ([]Product, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, apperrors.InvalidInput("products must be a JSON array of records")
	}
	var products []Product
	if err := json.Unmarshal(trimmed, &products); err != nil {
		return nil, apperrors.Wrap(apperrors.InvalidInput(err.Error()), "malformed product records")
	}
	return products, nil
}

// UnmarshalJSON rejects anything but an object so a stray string or number in
// the product list is reported as malformed input.
func (p *Product) UnmarshalJSON(data []byte) error {
	if err := requireObject(data, "product"); err != nil {
		return err
	}
	type plain Product
	var decoded plain
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	*p = Product(decoded)
	return nil
}

func (o *Option) UnmarshalJSON(data []byte) error {
	if err := requireObject(data, "option"); err != nil {
		return err
	}
	type plain Option
	var decoded plain
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	*o = Option(decoded)
	return nil
}

func requireObject(data []byte, what string) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '{' {
		return fmt.Errorf("%s record must be an object, got %s", what, truncate(data, 32))
	}
	return nil
}

func truncate(data []byte, n int) string {
	if len(data) <= n {
		return string(data)
	}
	return string(data[:n]) + "..."
}
