package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUnitEntry_GPSQuality(t *testing.T) {
	tests := []struct {
		accuracy float64
		want     GPSQuality
	}{
		{0, GPSQualityHigh},
		{9.99, GPSQualityHigh},
		{10, GPSQualityMedium},
		{50, GPSQualityMedium},
		{50.01, GPSQualityLow},
		{120, GPSQualityLow},
	}

	for _, tt := range tests {
		entry := UnitEntry{Location: GPSLocation{Accuracy: tt.accuracy}}
		assert.Equal(t, tt.want, entry.GPSQuality(), "accuracy %.2f", tt.accuracy)
		assert.Equal(t, tt.want == GPSQualityHigh, entry.HasValidGPS())
	}
}

func TestValidDisputeCategory(t *testing.T) {
	for _, c := range []DisputeCategory{
		DisputeQuantity, DisputeRate, DisputeLocation, DisputePhotos,
		DisputeWorkQuality, DisputeDuplicate, DisputeOther,
	} {
		assert.True(t, ValidDisputeCategory(c), string(c))
	}
	assert.False(t, ValidDisputeCategory("pricing"))
	assert.False(t, ValidDisputeCategory(""))
}
