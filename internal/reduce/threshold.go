package reduce

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// JSONThreshold is a threshold as carried in JSON documents. JSON numbers
// cannot hold infinity, so +Inf (the collapse-to-mean threshold) is written
// as the string "Inf". Decoding accepts plain numbers and any string
// strconv.ParseFloat understands, such as "Inf" or "+Inf".
type JSONThreshold float64

func (t JSONThreshold) MarshalJSON() ([]byte, error) {
	v := float64(t)
	switch {
	case math.IsInf(v, 1):
		return []byte(`"Inf"`), nil
	case math.IsInf(v, -1):
		return []byte(`"-Inf"`), nil
	case math.IsNaN(v):
		return []byte(`"NaN"`), nil
	}
	return json.Marshal(v)
}

func (t *JSONThreshold) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("threshold %q is not a number", s)
		}
		*t = JSONThreshold(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("threshold must be a number: %w", err)
	}
	*t = JSONThreshold(v)
	return nil
}
