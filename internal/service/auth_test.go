package service

import (
	"context"
	"encoding/hex"
	"strconv"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/totegamma/misblock"
	"github.com/totegamma/misblock/internal/domain"
	"github.com/totegamma/misblock/jwt"
)

func newIssuer(t *testing.T) (string, string) {
	t.Helper()
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	priv := hex.EncodeToString(crypto.FromECDSA(key))
	pub, err := misblock.PrivKeyToPubKey(priv)
	require.NoError(t, err)
	return priv, pub
}

func TestAuthJwt(t *testing.T) {
	priv, pub := newIssuer(t)
	now := time.Unix(1715310000, 0)

	s := NewAuthService(domain.Config{AuthKey: pub, Audience: "misblock"})
	s.now = func() time.Time { return now }

	token, err := jwt.Create(jwt.Claims{
		Subject:        "alice",
		Audience:       "misblock",
		ExpirationTime: strconv.FormatInt(now.Add(time.Hour).Unix(), 10),
	}, priv)
	require.NoError(t, err)

	result, err := s.AuthJwt(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "alice", result.Requester)

	_, found := s.cache.Get(token)
	assert.True(t, found)

	wrongAudience, err := jwt.Create(jwt.Claims{Subject: "alice", Audience: "other"}, priv)
	require.NoError(t, err)
	_, err = s.AuthJwt(context.Background(), wrongAudience)
	assert.Error(t, err)

	badSubject, err := jwt.Create(jwt.Claims{Subject: "Alice!", Audience: "misblock"}, priv)
	require.NoError(t, err)
	_, err = s.AuthJwt(context.Background(), badSubject)
	assert.Error(t, err)

	otherPriv, _ := newIssuer(t)
	foreign, err := jwt.Create(jwt.Claims{Subject: "misadmin", Audience: "misblock"}, otherPriv)
	require.NoError(t, err)
	_, err = s.AuthJwt(context.Background(), foreign)
	assert.Error(t, err)
}

func TestAuthJwtWithoutKey(t *testing.T) {
	priv, _ := newIssuer(t)
	token, err := jwt.Create(jwt.Claims{Subject: "alice"}, priv)
	require.NoError(t, err)

	_, err = NewAuthService(domain.Config{}).AuthJwt(context.Background(), token)
	assert.Error(t, err)
}

func TestCacheLifetime(t *testing.T) {
	now := time.Unix(1000, 0)
	assert.Equal(t, maxCachedTokenLifetime, cacheLifetime(&jwt.Claims{}, now))
	assert.Equal(t, time.Minute, cacheLifetime(&jwt.Claims{ExpirationTime: "1060"}, now))
	assert.Equal(t, maxCachedTokenLifetime, cacheLifetime(&jwt.Claims{ExpirationTime: "999999"}, now))
}
