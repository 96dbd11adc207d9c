// Package keychain stores workflow secrets in the macOS login keychain
// by driving the security(1) command.
package keychain

import (
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"regexp"
	"strings"

	wferrors "github.com/Aman-CERP/wfkit/internal/errors"
)

// Exit codes of security(1).
const (
	exitNotFound = 44
	exitExists   = 45
)

// Sentinels for errors.Is. Errors returned by Keychain carry the same codes.
var (
	ErrPasswordNotFound = wferrors.New(wferrors.ErrCodeKeychainNotFound, "password not found", nil)
	ErrPasswordExists   = wferrors.New(wferrors.ErrCodeKeychainExists, "password already exists", nil)
)

// ExitError reports an unexpected security(1) failure.
type ExitError struct {
	ExitCode int
	Output   string
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("security exited with status %d: %s", e.ExitCode, e.Output)
}

// Runner runs a command and returns its combined output and exit code.
// A non-nil error means the command could not be run at all.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (output []byte, exitCode int, err error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

// Run implements Runner.
func (ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, int, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return out, exitErr.ExitCode(), nil
		}
		return out, -1, err
	}
	return out, 0, nil
}

// Keychain reads and writes generic passwords for one service.
type Keychain struct {
	service string
	runner  Runner
}

// Option configures a Keychain.
type Option func(*Keychain)

// WithRunner replaces the command runner.
func WithRunner(r Runner) Option {
	return func(k *Keychain) { k.runner = r }
}

// New returns a keychain for service, usually the workflow's bundle id.
func New(service string, opts ...Option) *Keychain {
	k := &Keychain{service: service, runner: ExecRunner{}}
	for _, opt := range opts {
		opt(k)
	}
	return k
}

// Service returns the keychain service name.
func (k *Keychain) Service() string {
	return k.service
}

// Save stores password for account. An existing different password is
// replaced; an identical one is left alone.
func (k *Keychain) Save(ctx context.Context, account, password string) error {
	_, err := k.call(ctx, "add-generic-password", account, "-w", password)
	if err == nil {
		slog.Debug("saved password", slog.String("service", k.service), slog.String("account", account))
		return nil
	}
	if !errors.Is(err, ErrPasswordExists) {
		return err
	}

	current, err := k.Get(ctx, account)
	if err != nil {
		return err
	}
	if current == password {
		slog.Debug("password unchanged", slog.String("service", k.service), slog.String("account", account))
		return nil
	}

	if err := k.Delete(ctx, account); err != nil {
		return err
	}
	if _, err := k.call(ctx, "add-generic-password", account, "-w", password); err != nil {
		return err
	}
	slog.Debug("replaced password", slog.String("service", k.service), slog.String("account", account))
	return nil
}

// passwordPattern matches `password: 0x<hex>  "text"` as printed by
// find-generic-password -g. Either part may be absent.
var passwordPattern = regexp.MustCompile(`password:\s*(?:0x([0-9A-Fa-f]+)\s*)?(?:"(.*)")?`)

// Get returns the password stored for account.
func (k *Keychain) Get(ctx context.Context, account string) (string, error) {
	out, err := k.call(ctx, "find-generic-password", account, "-g")
	if err != nil {
		return "", err
	}

	password, ok := parsePassword(out)
	if !ok {
		return "", wferrors.New(wferrors.ErrCodeKeychainFailed, "cannot parse security output", nil).
			WithDetail("account", account)
	}
	return password, nil
}

func parsePassword(output string) (string, bool) {
	m := passwordPattern.FindStringSubmatch(output)
	if m == nil {
		return "", false
	}
	// Non-printable passwords are only given in hex
	if m[1] != "" {
		decoded, err := hex.DecodeString(m[1])
		if err != nil {
			return "", false
		}
		return string(decoded), true
	}
	return m[2], true
}

// Delete removes the password stored for account.
func (k *Keychain) Delete(ctx context.Context, account string) error {
	_, err := k.call(ctx, "delete-generic-password", account)
	if err == nil {
		slog.Debug("deleted password", slog.String("service", k.service), slog.String("account", account))
	}
	return err
}

func (k *Keychain) call(ctx context.Context, action, account string, args ...string) (string, error) {
	argv := append([]string{action, "-s", k.service, "-a", account}, args...)
	out, code, err := k.runner.Run(ctx, "security", argv...)
	if err != nil {
		return "", wferrors.New(wferrors.ErrCodeKeychainFailed, "cannot run security", err)
	}

	output := string(bytes.TrimSpace(out))
	switch code {
	case 0:
		return output, nil
	case exitNotFound:
		return "", wferrors.New(wferrors.ErrCodeKeychainNotFound,
			fmt.Sprintf("no password for %s in %s", account, k.service), nil).
			WithDetail("account", account)
	case exitExists:
		return "", wferrors.New(wferrors.ErrCodeKeychainExists,
			fmt.Sprintf("password for %s already exists in %s", account, k.service), nil).
			WithDetail("account", account)
	default:
		return "", wferrors.New(wferrors.ErrCodeKeychainFailed, "keychain error",
			&ExitError{ExitCode: code, Output: strings.TrimSpace(output)})
	}
}
