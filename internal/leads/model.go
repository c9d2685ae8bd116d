package leads

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

const DefaultTopic = "startups"

type CreateRequest struct {
	Name  string `json:"name" validate:"trimmin=2,max=120"`
	Email string `json:"email" validate:"emaillite,max=200"`
	Topic string `json:"topic" validate:"omitempty,category"`
	Price Amount `json:"priceKZT"`
	Notes string `json:"notes" validate:"max=2000"`
}

// Amount decodes a desired price sent either as a JSON number or as the raw
// text of a form field. Anything that is not a finite number in
// [0, math.MaxInt32] becomes 0.
type Amount int

func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*a = 0
		return nil
	}
	raw := string(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		raw = strings.TrimSpace(s)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || v < 0 || v > math.MaxInt32 {
		*a = 0
		return nil
	}
	*a = Amount(math.Trunc(v))
	return nil
}
