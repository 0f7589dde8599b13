package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Price is an amount in minor currency units (cents).
//
// It encodes as a JSON integer. On decode it also accepts a decimal string in
// major units with at most two fractional digits, so "12.34" becomes 1234.
type Price int64

// MarshalJSON implements json.Marshaler.
func (p Price) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatInt(int64(p), 10)), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (p *Price) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		v, err := ParsePrice(s)
		if err != nil {
			return err
		}
		*p = v
		return nil
	}

	v, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return fmt.Errorf("price must be an integer amount in minor units: %s", data)
	}
	*p = Price(v)
	return nil
}

// maxPriceUnits is the largest whole-unit amount whose minor units fit int64.
const maxPriceUnits = (math.MaxInt64 - 99) / 100

// ParsePrice parses a major-unit decimal such as "10", "10.5" or "10.50".
func ParsePrice(s string) (Price, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("price is empty")
	}

	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	whole, frac, hasFrac := strings.Cut(s, ".")
	if !isDigits(whole) || (hasFrac && (!isDigits(frac) || len(frac) > 2)) {
		return 0, fmt.Errorf("invalid price: %q", s)
	}
	for len(frac) < 2 {
		frac += "0"
	}

	units, err := strconv.ParseInt(whole, 10, 64)
	if err != nil || units > maxPriceUnits {
		return 0, fmt.Errorf("price out of range: %q", s)
	}
	cents, err := strconv.ParseInt(frac, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid price: %q", s)
	}

	v := units*100 + cents
	if neg {
		v = -v
	}
	return Price(v), nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// String renders the price in major units with two decimals.
func (p Price) String() string {
	v := int64(p)
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}
