package common

import (
	"bytes"
	"encoding/json"
	"strconv"

	"invoicedesk/internal/settlement"
)

// LenientAmount decodes a money field from a JSON number, a numeric string or
// null. Input that does not parse as a non-negative number decodes as 0.
type LenientAmount float64

func (a *LenientAmount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		s, err := strconv.Unquote(string(data))
		if err != nil {
			*a = 0
			return nil
		}
		*a = LenientAmount(settlement.CoerceAmount(s))
		return nil
	}
	*a = LenientAmount(settlement.CoerceAmount(string(data)))
	return nil
}

func (a LenientAmount) MarshalJSON() ([]byte, error) {
	return json.Marshal(float64(a))
}

// Float64 returns the decoded amount
func (a LenientAmount) Float64() float64 {
	return float64(a)
}
