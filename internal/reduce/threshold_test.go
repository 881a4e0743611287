package reduce

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONThreshold_Marshal(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want string
	}{
		{name: "finite", in: 35, want: `35`},
		{name: "fraction", in: 0.5, want: `0.5`},
		{name: "positive infinity", in: math.Inf(1), want: `"Inf"`},
		{name: "negative infinity", in: math.Inf(-1), want: `"-Inf"`},
		{name: "nan", in: math.NaN(), want: `"NaN"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := json.Marshal(JSONThreshold(tt.in))
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestJSONThreshold_Unmarshal(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{in: `35`, want: 35},
		{in: `"Inf"`, want: math.Inf(1)},
		{in: `"+Inf"`, want: math.Inf(1)},
		{in: `"infinity"`, want: math.Inf(1)},
		{in: `"12.5"`, want: 12.5},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var got JSONThreshold
			require.NoError(t, json.Unmarshal([]byte(tt.in), &got))
			assert.Equal(t, tt.want, float64(got))
		})
	}

	var bad JSONThreshold
	assert.Error(t, json.Unmarshal([]byte(`"wide"`), &bad))
	assert.Error(t, json.Unmarshal([]byte(`true`), &bad))
}

func TestJSONThreshold_InfinityRoundTrip(t *testing.T) {
	data, err := json.Marshal(JSONThreshold(math.Inf(1)))
	require.NoError(t, err)

	var back JSONThreshold
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, math.IsInf(float64(back), 1))
}
