package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/saturnino-fabrica-de-software/metamind/internal/domain"
)

// Mints an API key, or hashes an existing one with -hash. The server accepts
// either the plain or the hashed form as API_KEY; prefer the hashed form so
// the plain key never sits in the server environment.
func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("genkey", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	env := fs.String("env", domain.EnvLive, "key environment (live or test)")
	existing := fs.String("hash", "", "print the API_KEY value for an existing key instead of minting one")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *existing != "" {
		if !domain.IsValidFormat(*existing) {
			return errors.New("not a MetaMind key (want mm_<live|test>_<32 base62 chars>)")
		}
		fmt.Fprintf(out, "API_KEY=%s%s\n", domain.HashedKeyPrefix, domain.HashAPIKey(*existing))
		return nil
	}

	key, err := domain.GenerateAPIKey(*env)
	if err != nil {
		return err
	}
	if !domain.IsValidFormat(key.Plain) {
		return fmt.Errorf("generated malformed key %s...", key.Display)
	}

	fmt.Fprintf(out, "# give to the client (%s...)\n", key.Display)
	fmt.Fprintf(out, "METAMIND_API_KEY=%s\n", key.Plain)
	fmt.Fprintln(out, "# server configuration")
	fmt.Fprintf(out, "API_KEY=%s\n", key.Hashed)
	return nil
}
