package usecase_test

import (
	"encoding/hex"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/totegamma/misblock"
	"github.com/totegamma/misblock/internal/domain"
	"github.com/totegamma/misblock/internal/usecase"
)

func TestPostReviewConsumesSettlement(t *testing.T) {
	h := newHarness(t)
	h.settle(t, "alice", "hospitala")

	input := usecase.PostReviewInput{
		Owner:    "alice",
		Hospital: "hospitala",
		ReviewID: "r1",
		Title:    "great",
		Body:     `{"stars":5}`,
	}
	review, err := h.reviews.Post(as("alice"), input)
	require.NoError(t, err)
	assert.Equal(t, int32(0), review.Likes)
	assert.False(t, review.IsExpired)

	hosp, err := h.hospitals.Get(as("alice"), "hospitala")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), hosp.ReviewCount)
	assert.InDelta(t, 1.0, hosp.ServiceWeight, 1e-9)

	input.ReviewID = "r2"
	_, err = h.reviews.Post(as("alice"), input)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	h.settle(t, "alice", "hospitala")
	input.ReviewID = "r1"
	_, err = h.reviews.Post(as("alice"), input)
	assert.ErrorIs(t, err, domain.ErrDuplicateKey)

	input.ReviewID = "r2"
	_, err = h.reviews.Post(as("bob"), input)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	input.Body = "not json"
	_, err = h.reviews.Post(as("alice"), input)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	input.Body = `{}`
	input.Hospital = "nowhere"
	_, err = h.reviews.Post(as("alice"), input)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPostReviewSignature(t *testing.T) {
	h := newHarness(t)
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	priv := hex.EncodeToString(crypto.FromECDSA(key))
	pub, err := misblock.PrivKeyToPubKey(priv)
	require.NoError(t, err)

	input := usecase.PostReviewInput{
		Owner:    "alice",
		Hospital: "hospitala",
		ReviewID: "r1",
		Title:    "great",
		Body:     `{"stars":5}`,
	}
	message := misblock.SignedReview{
		Owner:    input.Owner,
		Hospital: input.Hospital,
		ReviewID: input.ReviewID,
		Title:    input.Title,
		Body:     input.Body,
	}.Message()
	sig, err := misblock.SignBytes(message, priv)
	require.NoError(t, err)
	input.Signature = hex.EncodeToString(sig)

	h.settle(t, "alice", "hospitala")

	_, err = h.reviews.Post(as("alice"), input)
	assert.ErrorIs(t, err, domain.ErrInvalidSignature)

	_, err = h.config.SetVerificationKey(as(admin), pub)
	require.NoError(t, err)

	tampered := input
	tampered.Title = "awful"
	_, err = h.reviews.Post(as("alice"), tampered)
	assert.ErrorIs(t, err, domain.ErrInvalidSignature)

	review, err := h.reviews.Post(as("alice"), input)
	require.NoError(t, err)
	assert.Equal(t, "r1", review.ID)
}

func TestLikeQuota(t *testing.T) {
	h := newHarness(t)
	for _, id := range []string{"r1", "r2", "r3", "r4", "r5"} {
		h.postReview(t, "alice", "hospitala", id)
	}

	for _, id := range []string{"r1", "r2", "r3"} {
		result, err := h.reviews.Like(as("bob"), "bob", id)
		require.NoError(t, err)
		assert.Equal(t, domain.DefaultLikeReward, result.Reward)
	}
	_, err := h.reviews.Like(as("bob"), "bob", "r4")
	assert.ErrorIs(t, err, domain.ErrQuotaExhausted)

	bob, err := h.points.GetCustomer(as("bob"), "bob")
	require.NoError(t, err)
	assert.Equal(t, uint64(60), bob.Point)
	assert.Equal(t, uint8(0), bob.RemainingLikes)

	h.advance(24 * time.Hour)
	result, err := h.reviews.Like(as("bob"), "bob", "r4")
	require.NoError(t, err)
	assert.Equal(t, uint8(2), result.Customer.RemainingLikes)

	r4, err := h.reviews.Get(as("bob"), "r4")
	require.NoError(t, err)
	assert.Equal(t, int32(1), r4.Likes)

	hosp, err := h.hospitals.Get(as("bob"), "hospitala")
	require.NoError(t, err)
	assert.Equal(t, uint64(4), hosp.TotalReviewsLike)
	assert.InDelta(t, 5+0.04, hosp.ServiceWeight, 1e-9)
	h.requireConsistentSupply(t)
}

func TestLikeAddsTierBonus(t *testing.T) {
	h := newHarness(t)
	h.postReview(t, "alice", "hospitala", "r1")
	_, err := h.points.Credit(as(admin), "bob", 100000000, "")
	require.NoError(t, err)

	result, err := h.reviews.Like(as("bob"), "bob", "r1")
	require.NoError(t, err)
	assert.Equal(t, uint64(25), result.Reward)

	_, err = h.reviews.Like(as("bob"), "alice", "r1")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	_, err = h.reviews.Like(as("bob"), "bob", "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestLikeRollsBackQuotaOnFailure(t *testing.T) {
	h := newHarness(t)
	h.postReview(t, "alice", "hospitala", "r1")
	h.update(t, func(tx usecase.Tx) error {
		cfg, err := tx.LockConfig(domain.DefaultLedgerConfig(h.now))
		require.NoError(t, err)
		cfg.TotalPointSupply = domain.MaxPoint
		return tx.SaveConfig(cfg)
	})

	_, err := h.reviews.Like(as("bob"), "bob", "r1")
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	_, err = h.points.GetCustomer(as("bob"), "bob")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	r1, err := h.reviews.Get(as("bob"), "r1")
	require.NoError(t, err)
	assert.Equal(t, int32(0), r1.Likes)
}
