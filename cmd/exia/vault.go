package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/daisukixci/telegram-bot/internal/vault"
)

const defaultVaultPath = "vault.json"

// Replaceable for testing error paths.
var (
	vaultCreate = vault.Create
	vaultUnlock = vault.Unlock
)

// runVault dispatches vault subcommands: get, set, delete, list.
func runVault(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		printVaultUsage(stderr)
		return 1
	}

	scanner := bufio.NewScanner(stdin)

	switch args[0] {
	case "set":
		return vaultSet(args[1:], scanner, stdout, stderr)
	case "get":
		return vaultGet(args[1:], scanner, stdout, stderr)
	case "delete":
		return vaultDelete(args[1:], scanner, stdout, stderr)
	case "list":
		return vaultList(args[1:], scanner, stdout, stderr)
	default:
		fmt.Fprintf(stderr, "vault: unknown subcommand %q\n", args[0])
		printVaultUsage(stderr)
		return 1
	}
}

func vaultSet(args []string, scanner *bufio.Scanner, stdout, stderr io.Writer) int {
	if len(args) != 1 {
		fmt.Fprintln(stderr, "Usage: exia vault set <name>")
		return 1
	}
	name := args[0]

	passphrase, err := readPassphrase(scanner, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	value, err := readValue(scanner, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	v, err := createOrUnlockVault(passphrase, defaultVaultPath)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %s\n", vaultUserError(err))
		return 1
	}

	if err := v.Set(name, value); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	slog.Info("secret stored", "component", "vault-cli", "operation", "set", "name", name)
	fmt.Fprintf(stderr, "Secret stored: %s\n", name)
	return 0
}

func vaultGet(args []string, scanner *bufio.Scanner, stdout, stderr io.Writer) int {
	if len(args) != 1 {
		fmt.Fprintln(stderr, "Usage: exia vault get <name>")
		return 1
	}
	name := args[0]

	passphrase, err := readPassphrase(scanner, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	v, err := vaultUnlock(defaultVaultPath, passphrase)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %s\n", vaultUserError(err))
		return 1
	}

	value, err := v.Get(name)
	if err != nil {
		if errors.Is(err, vault.ErrNotFound) {
			fmt.Fprintf(stderr, "Error: secret %q not found\n", name)
		} else {
			fmt.Fprintf(stderr, "Error: %s\n", vaultUserError(err))
		}
		return 1
	}
	slog.Info("secret retrieved", "component", "vault-cli", "operation", "get", "name", name)
	fmt.Fprintln(stdout, value)
	return 0
}

func vaultDelete(args []string, scanner *bufio.Scanner, stdout, stderr io.Writer) int {
	if len(args) != 1 {
		fmt.Fprintln(stderr, "Usage: exia vault delete <name>")
		return 1
	}
	name := args[0]

	passphrase, err := readPassphrase(scanner, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	v, err := vaultUnlock(defaultVaultPath, passphrase)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %s\n", vaultUserError(err))
		return 1
	}

	if err := v.Delete(name); err != nil {
		if errors.Is(err, vault.ErrNotFound) {
			fmt.Fprintf(stderr, "Error: secret %q not found\n", name)
		} else {
			fmt.Fprintf(stderr, "Error: %v\n", err)
		}
		return 1
	}
	slog.Info("secret deleted", "component", "vault-cli", "operation", "delete", "name", name)
	fmt.Fprintf(stderr, "Secret deleted: %s\n", name)
	return 0
}

func vaultList(args []string, scanner *bufio.Scanner, stdout, stderr io.Writer) int {
	if len(args) != 0 {
		fmt.Fprintln(stderr, "Usage: exia vault list")
		return 1
	}

	passphrase, err := readPassphrase(scanner, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	v, err := vaultUnlock(defaultVaultPath, passphrase)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %s\n", vaultUserError(err))
		return 1
	}

	names := v.List()
	for _, n := range names {
		fmt.Fprintln(stdout, n)
	}
	slog.Info("vault listed", "component", "vault-cli", "operation", "list", "count", len(names))
	return 0
}

// readPassphrase prompts on w and reads a line from the scanner.
func readPassphrase(scanner *bufio.Scanner, w io.Writer) (string, error) {
	fmt.Fprint(w, "Passphrase: ")
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return "", fmt.Errorf("reading passphrase: %w", err)
		}
		return "", fmt.Errorf("reading passphrase: unexpected end of input")
	}
	return strings.TrimRight(scanner.Text(), "\r\n"), nil
}

// readValue prompts on w and reads a line from the scanner.
func readValue(scanner *bufio.Scanner, w io.Writer) (string, error) {
	fmt.Fprint(w, "Value: ")
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return "", fmt.Errorf("reading value: %w", err)
		}
		return "", fmt.Errorf("reading value: unexpected end of input")
	}
	return strings.TrimRight(scanner.Text(), "\r\n"), nil
}

// createOrUnlockVault unlocks an existing vault or creates a new one if
// no file exists yet.
func createOrUnlockVault(passphrase, path string) (*vault.Vault, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		v, err := vaultCreate(path, passphrase)
		if err != nil {
			return nil, fmt.Errorf("vault: create: %w", err)
		}
		return v, nil
	}
	v, err := vaultUnlock(path, passphrase)
	if err != nil {
		return nil, fmt.Errorf("vault: unlock: %w", err)
	}
	return v, nil
}

// vaultUserError returns a user-friendly error message.
func vaultUserError(err error) string {
	if errors.Is(err, vault.ErrBadPassphrase) {
		return "wrong passphrase or corrupted vault"
	}
	return err.Error()
}

func printVaultUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: exia vault <subcommand>")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Subcommands:")
	fmt.Fprintln(w, "  set <name>     Store a secret")
	fmt.Fprintln(w, "  get <name>     Retrieve a secret")
	fmt.Fprintln(w, "  delete <name>  Delete a secret")
	fmt.Fprintln(w, "  list           List all secret names")
}
