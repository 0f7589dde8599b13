package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// RecordID is an identifier that may arrive as a JSON string or integer.
// Integer ids are kept in their decimal form.
type RecordID string

func (id *RecordID) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*id = RecordID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a string or number")
	}
	if _, err := strconv.ParseInt(n.String(), 10, 64); err != nil {
		return fmt.Errorf("id must be an integer when numeric")
	}
	*id = RecordID(n.String())
	return nil
}

// UnmarshalJSON accepts documents whose ids are integers.
func (p *Product) UnmarshalJSON(data []byte) error {
	type plain Product
	aux := struct {
		*plain
		ID RecordID `json:"id"`
	}{plain: (*plain)(p)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	p.ID = string(aux.ID)
	return nil
}

// UnmarshalJSON accepts documents whose ids are integers.
func (c *Category) UnmarshalJSON(data []byte) error {
	type plain Category
	aux := struct {
		*plain
		ID RecordID `json:"id"`
	}{plain: (*plain)(c)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	c.ID = string(aux.ID)
	return nil
}
