package models

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrNotInteger indicates a numeric field could not be parsed as an integer.
var ErrNotInteger = errors.New("value is not an integer")

// StrictInt decodes a JSON integer, or a string holding one, and rejects
// everything else (fractions, exponents, blanks, words).
type StrictInt int

// UnmarshalJSON implements json.Unmarshaler.
func (n *StrictInt) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if strings.HasPrefix(raw, `"`) {
		unquoted, err := strconv.Unquote(raw)
		if err != nil {
			return fmt.Errorf("%w: %s", ErrNotInteger, raw)
		}
		raw = unquoted
	}

	value, err := strconv.Atoi(raw)
	if err != nil {
		return fmt.Errorf("%w: %q", ErrNotInteger, raw)
	}

	*n = StrictInt(value)
	return nil
}

// Int returns the decoded value, or 0 when n is nil.
func (n *StrictInt) Int() int {
	if n == nil {
		return 0
	}
	return int(*n)
}

// ParseStrictInt parses query-string integers with the same rules as StrictInt.
func ParseStrictInt(value string) (int, error) {
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrNotInteger, value)
	}
	return parsed, nil
}

// CountPayload is the HTTP body of a count submission.
type CountPayload struct {
	ItemName         string     `json:"item_name" binding:"required"`
	CurrentCount     *StrictInt `json:"current_count" binding:"required"`
	RestocksReceived *StrictInt `json:"restocks_received" binding:"required"`
	Date             string     `json:"date"`
}

// ToSubmit converts the payload into service input.
func (p CountPayload) ToSubmit() SubmitCount {
	return SubmitCount{
		ItemName:         strings.TrimSpace(p.ItemName),
		CurrentCount:     p.CurrentCount.Int(),
		RestocksReceived: p.RestocksReceived.Int(),
		Date:             strings.TrimSpace(p.Date),
	}
}

// TheftCheckPayload is the HTTP body of a theft check.
type TheftCheckPayload struct {
	ItemName        string     `json:"item_name"`
	Date            string     `json:"date"`
	CalculatedSales *StrictInt `json:"calculated_sales"`
	ActualSales     *StrictInt `json:"actual_sales" binding:"required"`
}

// ToRequest converts the payload into service input.
func (p TheftCheckPayload) ToRequest() TheftCheckRequest {
	req := TheftCheckRequest{
		ItemName:    strings.TrimSpace(p.ItemName),
		Date:        strings.TrimSpace(p.Date),
		ActualSales: p.ActualSales.Int(),
	}
	if p.CalculatedSales != nil {
		calculated := p.CalculatedSales.Int()
		req.CalculatedSales = &calculated
	}
	return req
}
