package misblock

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
)

var ErrSignatureMismatch = fmt.Errorf("signature does not match public key")

func GetHash(data []byte) []byte {
	sum := sha256.Sum256(data)
	return sum[:]
}

// SignBytes hashes data and signs the digest with a hex encoded secp256k1 key.
// The result is the 65 byte [R || S || V] recoverable form.
func SignBytes(data []byte, privatekey string) ([]byte, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(privatekey, "0x"))
	if err != nil {
		return nil, errors.Wrap(err, "invalid private key")
	}
	return crypto.Sign(GetHash(data), key)
}

// RecoverKey returns the compressed hex public key that produced signature over digest.
func RecoverKey(digest []byte, signature []byte) (string, error) {
	if len(signature) != 65 {
		return "", fmt.Errorf("signature must be 65 bytes, got %d", len(signature))
	}
	sig := make([]byte, 65)
	copy(sig, signature)
	if sig[64] >= 27 {
		sig[64] -= 27
	}
	pub, err := crypto.SigToPub(digest, sig)
	if err != nil {
		return "", errors.Wrap(err, "recover public key")
	}
	return hex.EncodeToString(crypto.CompressPubkey(pub)), nil
}

// VerifySignature checks that signature over data was made by publicKey.
func VerifySignature(data []byte, signature []byte, publicKey string) error {
	expected, err := NormalizePublicKey(publicKey)
	if err != nil {
		return err
	}
	recovered, err := RecoverKey(GetHash(data), signature)
	if err != nil {
		return err
	}
	if recovered != expected {
		return ErrSignatureMismatch
	}
	return nil
}

// NormalizePublicKey accepts a compressed (33 byte) or uncompressed (65 byte)
// hex key and returns its compressed hex form.
func NormalizePublicKey(publicKey string) (string, error) {
	raw, err := hex.DecodeString(strings.TrimPrefix(strings.TrimSpace(publicKey), "0x"))
	if err != nil {
		return "", errors.Wrap(err, "invalid public key encoding")
	}
	switch len(raw) {
	case 33:
		pub, err := crypto.DecompressPubkey(raw)
		if err != nil {
			return "", errors.Wrap(err, "invalid public key")
		}
		return hex.EncodeToString(crypto.CompressPubkey(pub)), nil
	case 65:
		pub, err := crypto.UnmarshalPubkey(raw)
		if err != nil {
			return "", errors.Wrap(err, "invalid public key")
		}
		return hex.EncodeToString(crypto.CompressPubkey(pub)), nil
	default:
		return "", fmt.Errorf("public key must be 33 or 65 bytes, got %d", len(raw))
	}
}

func PrivKeyToPubKey(privatekey string) (string, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(privatekey, "0x"))
	if err != nil {
		return "", errors.Wrap(err, "invalid private key")
	}
	return hex.EncodeToString(crypto.CompressPubkey(&key.PublicKey)), nil
}

func DecodeSignature(s string) ([]byte, error) {
	sig, err := hex.DecodeString(strings.TrimPrefix(strings.TrimSpace(s), "0x"))
	if err != nil {
		return nil, errors.Wrap(err, "invalid signature encoding")
	}
	return sig, nil
}
