package auth

import (
	"encoding/hex"
	"fmt"
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
)

func signMessage(t *testing.T, message string) (string, string) {
	t.Helper()

	privateKey, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey() failed: %v", err)
	}

	prefixedMessage := fmt.Sprintf("\x19Ethereum Signed Message:\n%d%s", len(message), message)
	hash := crypto.Keccak256Hash([]byte(prefixedMessage))

	signature, err := crypto.Sign(hash.Bytes(), privateKey)
	if err != nil {
		t.Fatalf("Sign() failed: %v", err)
	}

	address := crypto.PubkeyToAddress(privateKey.PublicKey).Hex()
	return address, "0x" + hex.EncodeToString(signature)
}

func TestRecoverAddress_RoundTrip(t *testing.T) {
	message := "sign me"
	address, signature := signMessage(t, message)

	recovered, err := RecoverAddress(message, signature)
	if err != nil {
		t.Fatalf("RecoverAddress() failed: %v", err)
	}
	if NormalizeAddress(recovered.Hex()) != NormalizeAddress(address) {
		t.Fatalf("recovered %s, want %s", recovered.Hex(), address)
	}
}

func TestRecoverAddress_DifferentMessage(t *testing.T) {
	address, signature := signMessage(t, "original message")

	recovered, err := RecoverAddress("tampered message", signature)
	if err != nil {
		t.Fatalf("RecoverAddress() failed: %v", err)
	}
	if NormalizeAddress(recovered.Hex()) == NormalizeAddress(address) {
		t.Fatal("recovery over a different message must not yield the signer address")
	}
}

func TestRecoverAddress_MalformedSignature(t *testing.T) {
	cases := []struct {
		name      string
		signature string
	}{
		{"not hex", "0xzzzz"},
		{"too short", "0xdeadbeef"},
		{"empty", ""},
		{"wrong length", "0x" + "ab"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := RecoverAddress("msg", tc.signature); err == nil {
				t.Fatalf("expected error for signature %q", tc.signature)
			}
		})
	}
}

func TestValidWalletAddress(t *testing.T) {
	cases := []struct {
		address string
		want    bool
	}{
		{"0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266", true},
		{"0xf39fd6e51aad88f6f4ce6ab8827279cfffb92266", true},
		{"f39Fd6e51aad88F6F4ce6aB8827279cffFb92266", false},
		{"0xf39Fd6e51aad88F6F4ce6aB8827279cffFb9226", false},
		{"0xf39Fd6e51aad88F6F4ce6aB8827279cffFb922666", false},
		{"0xg39Fd6e51aad88F6F4ce6aB8827279cffFb92266", false},
		{"", false},
	}

	for _, tc := range cases {
		if got := ValidWalletAddress(tc.address); got != tc.want {
			t.Errorf("ValidWalletAddress(%q) = %v, want %v", tc.address, got, tc.want)
		}
	}
}

func TestNormalizeAddress(t *testing.T) {
	got := NormalizeAddress("0xF39FD6E51AAD88F6F4CE6AB8827279CFFFB92266")
	want := "0xf39fd6e51aad88f6f4ce6ab8827279cfffb92266"
	if got != want {
		t.Fatalf("NormalizeAddress() = %s, want %s", got, want)
	}
}
