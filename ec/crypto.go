package ec

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha512"
	"crypto/x509"
	"fmt"
)

// Adapter is the opaque interface the block/header/segment codec and
// checksum logic consume for hashing and signing (spec.md §4.2, §6.3).
// It never assumes a fixed digest or key length.
type Adapter interface {
	HQu(msg []byte) []byte
	HSq(msg []byte) []byte
	Sign(msg []byte, privKey []byte) ([]byte, error)
	Verify(msg []byte, pubKey []byte, sig []byte) bool
}

// RsaAdapter is the reference CryptoAdapter implementation shipped
// with this module so the core is runnable without an external
// provider. It signs with RSA-PKCS1v15 over a SHA-512 digest; the
// public key is marshaled with x509's PKIX encoding, which is why a
// public key identifier naturally clears the 128-byte pubkey band of
// spec.md §4.3 (see DESIGN.md for why this replaces the teacher's
// fixed-size secp256k1 engine).
type RsaAdapter struct{}

var _ Adapter = RsaAdapter{}

func (RsaAdapter) HQu(msg []byte) []byte { return HQu(msg) }
func (RsaAdapter) HSq(msg []byte) []byte { return HSq(msg) }

func (RsaAdapter) Sign(msg []byte, privKeyDER []byte) ([]byte, error) {
	priv, err := x509.ParsePKCS1PrivateKey(privKeyDER)
	if err != nil {
		return nil, fmt.Errorf("ec: parse private key: %w", err)
	}
	digest := sha512.Sum512(msg)
	return rsa.SignPKCS1v15(rand.Reader, priv, crypto.SHA512, digest[:])
}

func (RsaAdapter) Verify(msg []byte, pubKeyDER []byte, sig []byte) bool {
	pub, err := parsePublicKey(pubKeyDER)
	if err != nil {
		return false
	}
	digest := sha512.Sum512(msg)
	return rsa.VerifyPKCS1v15(pub, crypto.SHA512, digest[:], sig) == nil
}

func parsePublicKey(der []byte) (*rsa.PublicKey, error) {
	pub, err := x509.ParsePKIXPublicKey(der)
	if err != nil {
		return nil, fmt.Errorf("ec: parse public key: %w", err)
	}
	rsaPub, ok := pub.(*rsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("ec: public key is not RSA")
	}
	return rsaPub, nil
}

// KeyBits is the modulus size used when this module generates its own
// keys (GenerateKeyPair). 2048 bits marshals to a ~294-byte PKIX DER
// public key, comfortably inside spec.md §4.3's [129,2500] band.
const KeyBits = 2048

// GenerateKeyPair returns a fresh RSA private key (PKCS1 DER) and its
// matching public key (PKIX DER), the encodings RsaAdapter expects.
func GenerateKeyPair() (privDER, pubDER []byte, err error) {
	priv, err := rsa.GenerateKey(rand.Reader, KeyBits)
	if err != nil {
		return nil, nil, err
	}
	pubDER, err = x509.MarshalPKIXPublicKey(&priv.PublicKey)
	if err != nil {
		return nil, nil, err
	}
	return x509.MarshalPKCS1PrivateKey(priv), pubDER, nil
}
