package ec

import (
	"bytes"
	"testing"
)

func TestDeriveAddressFromAddress(t *testing.T) {
	id := bytes.Repeat([]byte{0x42}, 40)
	addr, err := DeriveAddress(id)
	if err != nil {
		t.Fatalf("DeriveAddress: %v", err)
	}
	if !bytes.Equal(addr, id) {
		t.Fatalf("an already-address-shaped identifier must be returned unchanged")
	}
}

func TestDeriveAddressFromPubKeyIsAddressShaped(t *testing.T) {
	_, pubDER, err := GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair: %v", err)
	}
	if ClassifyIdentifier(pubDER) != PublicKeyIdentifier {
		t.Fatalf("generated public key (%d bytes) is not in the pubkey band", len(pubDER))
	}

	addr, err := DeriveAddress(pubDER)
	if err != nil {
		t.Fatalf("DeriveAddress: %v", err)
	}
	if ClassifyIdentifier(addr) != AddressIdentifier {
		t.Fatalf("derived address (%d bytes) is not in the address band", len(addr))
	}
}

func TestEquivalentAddressAndPubKey(t *testing.T) {
	_, pubDER, err := GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair: %v", err)
	}
	addr, err := DeriveAddress(pubDER)
	if err != nil {
		t.Fatalf("DeriveAddress: %v", err)
	}
	if !Equivalent(addr, pubDER) {
		t.Fatalf("an address and the public key it was derived from must be equivalent signers")
	}
}

func TestClassifyIdentifierInvalidLength(t *testing.T) {
	if ClassifyIdentifier(make([]byte, 10)) != InvalidIdentifier {
		t.Fatalf("a too-short identifier must classify as invalid")
	}
	if ClassifyIdentifier(make([]byte, 3000)) != InvalidIdentifier {
		t.Fatalf("a too-long identifier must classify as invalid")
	}
}

func TestSignAndVerifyRoundTrip(t *testing.T) {
	privDER, pubDER, err := GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair: %v", err)
	}

	adapter := RsaAdapter{}
	msg := []byte("block checksum bytes go here")

	sig, err := adapter.Sign(msg, privDER)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if !adapter.Verify(msg, pubDER, sig) {
		t.Fatalf("Verify should accept a signature produced by Sign over the same message and key")
	}
	if adapter.Verify([]byte("different message"), pubDER, sig) {
		t.Fatalf("Verify must reject a signature over a different message")
	}
}
