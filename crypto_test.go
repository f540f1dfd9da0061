package misblock

import (
	"encoding/hex"
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestKey(t *testing.T) (string, string) {
	t.Helper()
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	priv := hex.EncodeToString(crypto.FromECDSA(key))
	pub, err := PrivKeyToPubKey(priv)
	require.NoError(t, err)
	return priv, pub
}

func TestSignAndVerify(t *testing.T) {
	priv, pub := newTestKey(t)

	review := SignedReview{Owner: "alice", Hospital: "hospitala", ReviewID: "r1", Title: "good", Body: `{"stars":5}`}
	sig, err := SignBytes(review.Message(), priv)
	require.NoError(t, err)
	require.Len(t, sig, 65)

	assert.NoError(t, VerifySignature(review.Message(), sig, pub))

	recovered, err := RecoverKey(GetHash(review.Message()), sig)
	require.NoError(t, err)
	assert.Equal(t, pub, recovered)

	tampered := review
	tampered.Title = "bad"
	assert.ErrorIs(t, VerifySignature(tampered.Message(), sig, pub), ErrSignatureMismatch)
}

func TestVerifyAcceptsLegacyRecoveryID(t *testing.T) {
	priv, pub := newTestKey(t)
	sig, err := SignBytes([]byte("hello"), priv)
	require.NoError(t, err)
	sig[64] += 27
	assert.NoError(t, VerifySignature([]byte("hello"), sig, pub))
}

func TestNormalizePublicKey(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	compressed := hex.EncodeToString(crypto.CompressPubkey(&key.PublicKey))
	uncompressed := hex.EncodeToString(crypto.FromECDSAPub(&key.PublicKey))

	got, err := NormalizePublicKey(uncompressed)
	require.NoError(t, err)
	assert.Equal(t, compressed, got)

	got, err = NormalizePublicKey("0x" + compressed)
	require.NoError(t, err)
	assert.Equal(t, compressed, got)

	_, err = NormalizePublicKey("abcd")
	assert.Error(t, err)
}
