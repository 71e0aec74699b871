package quality

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLabelForMetric(t *testing.T) {
	t.Parallel()

	tests := []struct {
		code Metric
		want string
	}{
		{MP1, "Multipath12"},
		{MP2, "Multipath21"},
		{MP5, "Multipath15"},
		{CRMP1, "Obs per Slip:MP12"},
		{CRMP2, "Obs per Slip:MP21"},
		{CRMP5, "Obs per Slip:MP15"},
		{CRGF, "Obs per Slip:GF"},
		{CRMW, "Obs per Slip:MW"},
		{CRIOD, "Obs per Slip:IOD"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(string(tt.code), func(t *testing.T) {
			t.Parallel()
			got, ok := LabelForMetric(tt.code)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLabelForMetric_Unknown(t *testing.T) {
	t.Parallel()

	for _, code := range []Metric{"", "mp1", "MP3", "SNR", "CRIOD "} {
		got, ok := LabelForMetric(code)
		assert.False(t, ok, "code %q", code)
		assert.Empty(t, got, "code %q", code)
	}
}

func TestAxisLabelForMetric(t *testing.T) {
	t.Parallel()

	got, ok := AxisLabelForMetric(MP2)
	require.True(t, ok)
	assert.Equal(t, "Multipath21 (m)", got)

	got, ok = AxisLabelForMetric(CRMW)
	require.True(t, ok)
	assert.Equal(t, "Obs per Slip:MW", got)

	_, ok = AxisLabelForMetric("XX")
	assert.False(t, ok)
}

func TestMetricsCoverEveryCode(t *testing.T) {
	t.Parallel()

	descriptors := Metrics()
	require.Len(t, descriptors, 9)
	seen := make(map[Metric]bool)
	for i, d := range descriptors {
		assert.False(t, seen[d.Code], "duplicate code %s", d.Code)
		seen[d.Code] = true
		assert.Equal(t, MetricCodes()[i], d.Code)
		assert.NotEmpty(t, d.Label)
		assert.NotEmpty(t, d.AxisLabel)
	}
	assert.Equal(t, MP1, descriptors[0].Code)
	assert.Equal(t, CRIOD, descriptors[8].Code)
}

func TestParseMetric(t *testing.T) {
	t.Parallel()

	m, ok := ParseMetric(" crgf ")
	require.True(t, ok)
	assert.Equal(t, CRGF, m)

	_, ok = ParseMetric("bogus")
	assert.False(t, ok)
}
