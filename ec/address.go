package ec

import (
	"ixichain/util"

	"bytes"
	"fmt"
)

const _MAINNET_ADDRESS_PREFIX = "ix1"
const _TESTNET_ADDRESS_PREFIX = "tx1"

var _isMainNet = true

// addressDigestSize is the length of the raw digest hashed into the
// display/wire address form. It is an internal choice of this
// reference AddressCodec, not a spec-mandated constant.
const addressDigestSize = 20

// MinAddressLen, MaxAddressLen, MinPubKeyLen and MaxPubKeyLen are the
// identifier length bands from spec.md §4.3.
const (
	MinAddressLen = 36
	MaxAddressLen = 128
	MinPubKeyLen  = MaxAddressLen + 1
	MaxPubKeyLen  = 2500
)

// IdentifierKind classifies a signer identifier by its length, per
// spec.md §4.3.
type IdentifierKind int

const (
	InvalidIdentifier IdentifierKind = iota
	AddressIdentifier
	PublicKeyIdentifier
)

func ClassifyIdentifier(id []byte) IdentifierKind {
	n := len(id)
	switch {
	case n >= MinAddressLen && n <= MaxAddressLen:
		return AddressIdentifier
	case n >= MinPubKeyLen && n <= MaxPubKeyLen:
		return PublicKeyIdentifier
	default:
		return InvalidIdentifier
	}
}

func getAddressPrefix() string {
	if _isMainNet {
		return _MAINNET_ADDRESS_PREFIX
	}
	return _TESTNET_ADDRESS_PREFIX
}

// SetMainNet switches the address display prefix used by
// DeriveAddress. Tests and alternate networks may call this with
// false to get testnet-prefixed addresses.
func SetMainNet(main bool) {
	_isMainNet = main
}

// DeriveAddress computes the canonical address form of a signer
// identifier. If id is already in the address length band, it is
// returned unchanged (a copy). If it is in the public-key length band,
// the address is derived as the Crockford base32, checksum-suffixed
// encoding of the first addressDigestSize bytes of H_sq(id) — the same
// display encoding util.BytesToBase32Sum produces for any other
// address, just computed from a longer, variable-length key instead of
// a fixed-size one. Any other length is an error.
func DeriveAddress(id []byte) ([]byte, error) {
	switch ClassifyIdentifier(id) {
	case AddressIdentifier:
		return util.CloneBytes(id), nil
	case PublicKeyIdentifier:
		digest := HSq(id)[:addressDigestSize]
		addr := util.BytesToBase32Sum(digest, getAddressPrefix(), 4, true)
		return []byte(addr), nil
	default:
		return nil, fmt.Errorf("ec: identifier has invalid length %d", len(id))
	}
}

// Equivalent reports whether two signer identifiers resolve to the
// same address, regardless of whether either is stored in address or
// public-key form.
func Equivalent(id1, id2 []byte) bool {
	a1, err1 := DeriveAddress(id1)
	a2, err2 := DeriveAddress(id2)
	if err1 != nil || err2 != nil {
		return false
	}
	return bytes.Equal(a1, a2)
}
