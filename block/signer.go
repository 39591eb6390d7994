package block

import (
	"ixichain/ec"
	"ixichain/util"

	"bytes"
	"sort"
	"sync"
)

// CryptoAdapter is the opaque collaborator this package consumes for
// hashing and signing. ec.Adapter already has this shape; it is
// re-declared here so block does not force every caller onto a
// concrete ec type.
type CryptoAdapter interface {
	HQu(msg []byte) []byte
	HSq(msg []byte) []byte
	Sign(msg []byte, privKey []byte) ([]byte, error)
	Verify(msg []byte, pubKey []byte, sig []byte) bool
}

// WalletEntry is what a WalletResolver returns for a known address.
type WalletEntry struct {
	PublicKey []byte // nil if this wallet's public key is not yet known
}

// WalletResolver is the opaque collaborator that maps addresses to
// public keys, and reports the local node's own signing identity.
type WalletResolver interface {
	GetWallet(address []byte) (WalletEntry, bool)
	PrimaryAddress() []byte
	PrimaryPublicKey() []byte
	PrimaryPrivateKey() []byte
}

// signerEntry is one record in a signerSet: either a bare identifier
// (Sig is nil, used by SuperBlockSegment.SignatureFreezeSigners) or a
// (signature, identifier) pair (used by Block.Signatures and
// SuperBlockSegment.LegacySignatureFreezeSigners).
type signerEntry struct {
	Sig []byte
	Id  []byte
}

func (e signerEntry) clone() signerEntry {
	return signerEntry{Sig: util.CloneBytes(e.Sig), Id: util.CloneBytes(e.Id)}
}

// signerSet is a mutex-guarded, insertion-ordered collection of
// signerEntry values, deduplicated by the address form of the
// identifier (spec.md §3.4). Order at rest is insertion order;
// callers that need a canonical order (hashing) sort a snapshot
// themselves rather than storing one.
type signerSet struct {
	mx      sync.Mutex
	entries []signerEntry
}

func newSignerSet() *signerSet {
	return &signerSet{}
}

// snapshot returns a deep copy of the current entries, safe to read
// or mutate off-lock.
func (s *signerSet) snapshot() []signerEntry {
	s.mx.Lock()
	defer s.mx.Unlock()

	out := make([]signerEntry, len(s.entries))
	for i, e := range s.entries {
		out[i] = e.clone()
	}
	return out
}

func (s *signerSet) len() int {
	s.mx.Lock()
	defer s.mx.Unlock()
	return len(s.entries)
}

// containsAddress reports whether any entry's identifier derives to
// the same address as id. Invalid identifiers never match.
func (s *signerSet) containsAddress(id []byte) bool {
	addr, err := ec.DeriveAddress(id)
	if err != nil {
		return false
	}

	s.mx.Lock()
	defer s.mx.Unlock()
	for _, e := range s.entries {
		a, err := ec.DeriveAddress(e.Id)
		if err == nil && bytes.Equal(a, addr) {
			return true
		}
	}
	return false
}

// tryAppend appends e iff no entry with an equivalent address is
// already present, and reports whether it appended.
func (s *signerSet) tryAppend(e signerEntry) bool {
	addr, err := ec.DeriveAddress(e.Id)
	if err != nil {
		return false
	}

	s.mx.Lock()
	defer s.mx.Unlock()
	for _, x := range s.entries {
		a, err := ec.DeriveAddress(x.Id)
		if err == nil && bytes.Equal(a, addr) {
			return false
		}
	}
	s.entries = append(s.entries, e.clone())
	return true
}

// replaceAll atomically swaps the entries for a new list, used by
// verifySignatures to apply purges computed off a snapshot.
func (s *signerSet) replaceAll(entries []signerEntry) {
	s.mx.Lock()
	defer s.mx.Unlock()
	s.entries = entries
}

// sortedByIdentifier returns a snapshot sorted ascending by raw
// identifier bytes, the canonical order used by hashing.
func sortedByIdentifier(entries []signerEntry) []signerEntry {
	out := make([]signerEntry, len(entries))
	copy(out, entries)
	sort.Slice(out, func(i, j int) bool {
		return bytes.Compare(out[i].Id, out[j].Id) < 0
	})
	return out
}
