package wallet

import (
	"ixichain/block"
	"ixichain/ec"
	"ixichain/util"

	"io/ioutil"
	"os"

	"halftwo/mangos/vbs"
	"halftwo/mangos/xerr"
)

// record is the on-disk form of a single identity (spec's signer
// identifiers are opaque byte strings; the private key never leaves
// this package).
type record struct {
	PrivateKey []byte
	PublicKey  []byte
}

// Identity is this node's own signing key, loaded from or generated
// into a file the way genesis.Document used to load/save itself.
type Identity struct {
	Address    []byte
	PublicKey  []byte
	PrivateKey []byte
}

// LoadOrGenerateIdentity reads an identity record from file, or
// generates a fresh RSA key pair and writes it there if the file does
// not exist yet.
func LoadOrGenerateIdentity(file string) (*Identity, error) {
	bz, err := ioutil.ReadFile(file)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, xerr.Trace(err, "Couldn't read wallet file")
		}
		return generateAndSave(file)
	}

	var rec record
	if err := vbs.Unmarshal(bz, &rec); err != nil {
		return nil, xerr.Tracef(err, "Error reading wallet file at %v", file)
	}

	addr, err := ec.DeriveAddress(rec.PublicKey)
	if err != nil {
		return nil, xerr.Trace(err, "Wallet file has an invalid public key")
	}

	return &Identity{Address: addr, PublicKey: rec.PublicKey, PrivateKey: rec.PrivateKey}, nil
}

func generateAndSave(file string) (*Identity, error) {
	priv, pub, err := ec.GenerateKeyPair()
	if err != nil {
		return nil, err
	}
	addr, err := ec.DeriveAddress(pub)
	if err != nil {
		return nil, err
	}

	rec := record{PrivateKey: priv, PublicKey: pub}
	bz, err := vbs.Marshal(&rec)
	util.AssertNoError(err)

	if err := ioutil.WriteFile(file, bz, 0600); err != nil {
		return nil, xerr.Trace(err, "Couldn't save wallet file")
	}

	return &Identity{Address: addr, PublicKey: pub, PrivateKey: priv}, nil
}

// Registry maps addresses to their known public keys and implements
// block.WalletResolver. It always knows about its own Identity; other
// addresses must be added explicitly as they're seen on the wire.
type Registry struct {
	self *Identity

	known *util.StringMap // string(address) -> public key ([]byte)
}

func NewRegistry(self *Identity) *Registry {
	r := &Registry{self: self, known: util.NewStringMap()}
	r.known.Set(string(self.Address), self.PublicKey)
	return r
}

// Learn records address's public key, e.g. after it is first seen on
// a signed block. It is a no-op if the address is already known.
func (r *Registry) Learn(address, publicKey []byte) {
	if !r.known.Has(string(address)) {
		r.known.Set(string(address), publicKey)
	}
}

// GetWallet implements block.WalletResolver.
func (r *Registry) GetWallet(address []byte) (entry block.WalletEntry, ok bool) {
	v := r.known.Get(string(address))
	if v == nil {
		return block.WalletEntry{}, false
	}
	return block.WalletEntry{PublicKey: v.([]byte)}, true
}

func (r *Registry) PrimaryAddress() []byte    { return r.self.Address }
func (r *Registry) PrimaryPublicKey() []byte  { return r.self.PublicKey }
func (r *Registry) PrimaryPrivateKey() []byte { return r.self.PrivateKey }

var _ block.WalletResolver = (*Registry)(nil)
