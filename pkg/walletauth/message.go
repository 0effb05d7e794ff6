package walletauth

import (
	"fmt"
	"strings"
	"time"
)

// BuildSignMessage produces the exact message a wallet is asked to sign for a
// login challenge. The client must echo it back byte-identical; the embedded
// nonce ties it to the live challenge for the address.
func BuildSignMessage(appName, domain, nonce string, issuedAt time.Time) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Welcome to %s!\n\n", appName)
	b.WriteString("Sign this message to log in. This request will not trigger a blockchain transaction or cost any gas fees.\n\n")
	if domain != "" {
		fmt.Fprintf(&b, "Domain: %s\n", domain)
	}
	fmt.Fprintf(&b, "Nonce: %s\n", nonce)
	fmt.Fprintf(&b, "Issued At: %s", issuedAt.UTC().Format(time.RFC3339))

	return b.String()
}
