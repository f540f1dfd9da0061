package jwt

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/totegamma/misblock"
)

const Algorithm = "ES256K"

// clock skew tolerated on iat
const issuedAtLeeway = time.Minute

var (
	ErrMalformed   = errors.New("malformed jwt")
	ErrUnsupported = errors.New("unsupported jwt type")
	ErrExpired     = errors.New("jwt is already expired")
	ErrNotYetValid = errors.New("jwt is issued in the future")
)

func encodeSegment(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func decodeSegment(seg string, dst any) error {
	b, err := base64.RawURLEncoding.DecodeString(seg)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if err := json.Unmarshal(b, dst); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return nil
}

// unixClaim parses a time claim. Empty claims are reported as absent.
func unixClaim(v string) (time.Time, bool, error) {
	if v == "" {
		return time.Time{}, false, nil
	}
	sec, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("%w: bad time claim %q", ErrMalformed, v)
	}
	return time.Unix(sec, 0), true, nil
}

// Create signs claims with a secp256k1 private key. The key id is the
// compressed public key of the signer.
func Create(claims Claims, privatekey string) (string, error) {
	pubkey, err := misblock.PrivKeyToPubKey(privatekey)
	if err != nil {
		return "", err
	}

	header, err := encodeSegment(Header{Type: "JWT", Algorithm: Algorithm, KeyID: pubkey})
	if err != nil {
		return "", err
	}
	payload, err := encodeSegment(claims)
	if err != nil {
		return "", err
	}
	signingInput := header + "." + payload

	signature, err := misblock.SignBytes([]byte(signingInput), privatekey)
	if err != nil {
		return "", err
	}
	return signingInput + "." + base64.RawURLEncoding.EncodeToString(signature), nil
}

// Validate checks that token was signed by trustedKey and is valid at now.
func Validate(token string, trustedKey string, now time.Time) (*Header, *Claims, error) {
	segments := strings.Split(token, ".")
	if len(segments) != 3 {
		return nil, nil, ErrMalformed
	}

	var header Header
	if err := decodeSegment(segments[0], &header); err != nil {
		return nil, nil, err
	}
	if header.Type != "JWT" || header.Algorithm != Algorithm {
		return nil, nil, ErrUnsupported
	}

	var claims Claims
	if err := decodeSegment(segments[1], &claims); err != nil {
		return nil, nil, err
	}

	exp, ok, err := unixClaim(claims.ExpirationTime)
	if err != nil {
		return nil, nil, err
	}
	if ok && exp.Before(now) {
		return nil, nil, ErrExpired
	}
	iat, ok, err := unixClaim(claims.IssuedAt)
	if err != nil {
		return nil, nil, err
	}
	if ok && iat.After(now.Add(issuedAtLeeway)) {
		return nil, nil, ErrNotYetValid
	}

	signature, err := base64.RawURLEncoding.DecodeString(segments[2])
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	signingInput := segments[0] + "." + segments[1]
	if err := misblock.VerifySignature([]byte(signingInput), signature, trustedKey); err != nil {
		return nil, nil, err
	}

	return &header, &claims, nil
}
