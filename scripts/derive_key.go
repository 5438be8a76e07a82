// derive_key.go prints the public key and SS58 address for a secret held in
// a file (mnemonic, hex seed or secret URI such as //Alice).
// Usage: go run scripts/derive_key.go <secretfile>
package main

import (
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"github.com/jungoai/jungo-cli/internal/wallet"
	"github.com/jungoai/jungo-cli/pkg/ss58"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: derive_key <secretfile>")
		os.Exit(1)
	}
	data, err := os.ReadFile(os.Args[1])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	kp, err := wallet.Keypair(strings.TrimSpace(string(data)))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	addr, err := ss58.Encode(kp.PublicKey, ss58.DefaultFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Printf("pubkey=0x%s\n", hex.EncodeToString(kp.PublicKey))
	fmt.Printf("address=%s\n", addr)
}
