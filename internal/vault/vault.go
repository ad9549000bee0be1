// Package vault stores bot credentials encrypted at rest. Values are
// sealed individually with AES-256-GCM under a key derived from a
// passphrase; the file itself is plain JSON and safe to back up.
package vault

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"

	"github.com/daisukixci/telegram-bot/internal/platform"
)

// Sentinel errors callers branch on.
var (
	ErrNotFound      = errors.New("vault: key not found")
	ErrBadPassphrase = errors.New("vault: wrong passphrase or corrupted file")
)

const (
	filePerm    = 0600
	fileVersion = 1

	// checkPlaintext is sealed at creation time so Unlock can reject a
	// wrong passphrase before any entry is touched.
	checkPlaintext = "exia-vault"
)

// Replaceable for testing error paths.
var atomicWrite = platform.AtomicWrite

// diskFormat is the on-disk JSON layout.
type diskFormat struct {
	Version int               `json:"version"`
	Salt    string            `json:"salt"`
	Check   string            `json:"check"`
	Entries map[string]string `json:"entries"`
}

// Vault holds sealed entries in memory and persists them to one file.
type Vault struct {
	path    string
	key     []byte
	salt    []byte
	entries map[string][]byte
}

// Create writes a new empty vault at path, protected by passphrase.
func Create(path, passphrase string) (*Vault, error) {
	salt, err := newSalt()
	if err != nil {
		return nil, fmt.Errorf("vault: create: %w", err)
	}
	v := &Vault{
		path:    path,
		key:     deriveKey(passphrase, salt),
		salt:    salt,
		entries: make(map[string][]byte),
	}
	if err := v.save(); err != nil {
		return nil, fmt.Errorf("vault: create: %w", err)
	}
	slog.Info("vault created", "component", "vault", "operation", "create", "path", path)
	return v, nil
}

// Unlock opens the vault at path. A wrong passphrase yields
// ErrBadPassphrase; a missing file yields an os.ErrNotExist chain.
func Unlock(path, passphrase string) (*Vault, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("vault: unlock: %w", err)
	}
	var f diskFormat
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("vault: unlock: unmarshal: %w", err)
	}
	salt, err := base64.StdEncoding.DecodeString(f.Salt)
	if err != nil {
		return nil, fmt.Errorf("vault: unlock: decode salt: %w", err)
	}

	v := &Vault{
		path:    path,
		key:     deriveKey(passphrase, salt),
		salt:    salt,
		entries: make(map[string][]byte, len(f.Entries)),
	}

	check, err := base64.StdEncoding.DecodeString(f.Check)
	if err != nil {
		return nil, fmt.Errorf("vault: unlock: decode check: %w", err)
	}
	plain, err := unseal(v.key, check)
	if err != nil || string(plain) != checkPlaintext {
		return nil, ErrBadPassphrase
	}

	for name, encoded := range f.Entries {
		sealed, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return nil, fmt.Errorf("vault: unlock: decode entry %q: %w", name, err)
		}
		v.entries[name] = sealed
	}
	slog.Info("vault unlocked", "component", "vault", "operation", "unlock", "path", path, "entries", len(v.entries))
	return v, nil
}

// Get returns the decrypted value for name.
func (v *Vault) Get(name string) (string, error) {
	sealed, ok := v.entries[name]
	if !ok {
		return "", ErrNotFound
	}
	plain, err := unseal(v.key, sealed)
	if err != nil {
		return "", fmt.Errorf("vault: get %q: %w", name, err)
	}
	return string(plain), nil
}

// Set seals value under name and persists the vault.
func (v *Vault) Set(name, value string) error {
	sealed, err := seal(v.key, []byte(value))
	if err != nil {
		return fmt.Errorf("vault: set %q: %w", name, err)
	}
	prev, existed := v.entries[name]
	v.entries[name] = sealed
	if err := v.save(); err != nil {
		if existed {
			v.entries[name] = prev
		} else {
			delete(v.entries, name)
		}
		return fmt.Errorf("vault: set %q: %w", name, err)
	}
	slog.Info("secret stored", "component", "vault", "operation", "set", "key", name)
	return nil
}

// Delete removes name from the vault and persists the change.
func (v *Vault) Delete(name string) error {
	sealed, ok := v.entries[name]
	if !ok {
		return ErrNotFound
	}
	delete(v.entries, name)
	if err := v.save(); err != nil {
		v.entries[name] = sealed
		return fmt.Errorf("vault: delete %q: %w", name, err)
	}
	slog.Info("secret deleted", "component", "vault", "operation", "delete", "key", name)
	return nil
}

// List returns all entry names, sorted. Nothing is decrypted.
func (v *Vault) List() []string {
	names := make([]string, 0, len(v.entries))
	for name := range v.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (v *Vault) save() error {
	check, err := seal(v.key, []byte(checkPlaintext))
	if err != nil {
		return fmt.Errorf("vault: save: %w", err)
	}
	f := diskFormat{
		Version: fileVersion,
		Salt:    base64.StdEncoding.EncodeToString(v.salt),
		Check:   base64.StdEncoding.EncodeToString(check),
		Entries: make(map[string]string, len(v.entries)),
	}
	for name, sealed := range v.entries {
		f.Entries[name] = base64.StdEncoding.EncodeToString(sealed)
	}
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("vault: save: marshal: %w", err)
	}
	return atomicWrite(v.path, append(data, '\n'), filePerm)
}
