package usecase_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/totegamma/misblock/internal/domain"
	"github.com/totegamma/misblock/internal/usecase"
)

func TestRegisterHospitalRoundTrip(t *testing.T) {
	h := newHarness(t)

	_, err := h.hospitals.Register(as("hospitala"), "hospitala", "url1")
	require.NoError(t, err)

	h.update(t, func(tx usecase.Tx) error {
		hosp, err := tx.GetHospital("hospitala")
		require.NoError(t, err)
		hosp.ReviewCount = 4
		hosp.EMRSales = 2
		hosp.Recompute()
		return tx.SaveHospital(hosp)
	})

	updated, err := h.hospitals.Register(as("hospitala"), "hospitala", "url2")
	require.NoError(t, err)
	assert.Equal(t, "url2", updated.URL)
	assert.Equal(t, uint64(4), updated.ReviewCount)
	assert.Equal(t, uint64(2), updated.EMRSales)
	assert.InDelta(t, 6.0, updated.ServiceWeight, 1e-9)

	got, err := h.hospitals.Get(as("anyone"), "hospitala")
	require.NoError(t, err)
	assert.Equal(t, "url2", got.URL)

	_, err = h.hospitals.Register(as("hospitalb"), "hospitala", "url3")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	_, err = h.hospitals.Register(as(admin), "hospitalc", "url")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	_, err = h.hospitals.Register(as("hospitala"), "hospitala", strings.Repeat("u", domain.MaxURLLength))
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestRecordEMRSale(t *testing.T) {
	h := newHarness(t)
	_, err := h.hospitals.Register(as("hospitala"), "hospitala", "url")
	require.NoError(t, err)

	_, err = h.hospitals.RecordEMRSale(as("hospitala"), "hospitala")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	hosp, err := h.hospitals.RecordEMRSale(as(admin), "hospitala")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), hosp.EMRSales)
	assert.InDelta(t, 1.0, hosp.ServiceWeight, 1e-9)

	_, err = h.hospitals.RecordEMRSale(as(admin), "nowhere")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	ranking, err := h.hospitals.Ranking(as("anyone"), 0)
	require.NoError(t, err)
	require.Len(t, ranking, 1)
	assert.Equal(t, "hospitala", ranking[0].Owner)
}
