package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHospitalWeight(t *testing.T) {
	h := Hospital{Owner: "hospitala"}
	h.Record(ActivityReview)
	h.Record(ActivityEMRSale)
	h.Record(ActivityVisitor)
	for i := 0; i < 100; i++ {
		h.Record(ActivityLike)
	}
	assert.InDelta(t, 1+1+100+1.0, h.ServiceWeight, 1e-9)

	h.ResetPeriod()
	assert.Equal(t, uint64(1), h.ReviewCount)
	assert.Zero(t, h.EMRSales)
	assert.Zero(t, h.ReviewVisitors)
	assert.Zero(t, h.TotalReviewsLike)
	assert.InDelta(t, 1.0, h.ServiceWeight, 1e-9)
}

func TestValidateURL(t *testing.T) {
	assert.NoError(t, ValidateURL("https://example.com"))
	long := make([]byte, MaxURLLength)
	assert.ErrorIs(t, ValidateURL(string(long)), ErrInvalidArgument)
}
