package keychain

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	wferrors "github.com/Aman-CERP/wfkit/internal/errors"
)

// fakeSecurity emulates security(1) over an in-memory keychain.
type fakeSecurity struct {
	passwords map[string]string // "service/account" -> password
	calls     []string
	failWith  int
}

func newFakeSecurity() *fakeSecurity {
	return &fakeSecurity{passwords: make(map[string]string)}
}

func (f *fakeSecurity) Run(_ context.Context, name string, args ...string) ([]byte, int, error) {
	if name != "security" {
		return nil, -1, fmt.Errorf("unexpected command %s", name)
	}
	f.calls = append(f.calls, args[0])
	if f.failWith != 0 {
		return []byte("SecKeychainSearchCopyNext: boom"), f.failWith, nil
	}

	flags := map[string]string{}
	for i := 1; i+1 < len(args); i += 2 {
		flags[args[i]] = args[i+1]
	}
	key := flags["-s"] + "/" + flags["-a"]

	switch args[0] {
	case "add-generic-password":
		if _, ok := f.passwords[key]; ok {
			return []byte("The specified item already exists in the keychain."), exitExists, nil
		}
		f.passwords[key] = flags["-w"]
		return nil, 0, nil
	case "find-generic-password":
		pw, ok := f.passwords[key]
		if !ok {
			return []byte("The specified item could not be found in the keychain."), exitNotFound, nil
		}
		out := fmt.Sprintf("keychain: \"/Users/me/Library/Keychains/login.keychain-db\"\nclass: \"genp\"\npassword: %q\n", pw)
		return []byte(out), 0, nil
	case "delete-generic-password":
		if _, ok := f.passwords[key]; !ok {
			return []byte("The specified item could not be found in the keychain."), exitNotFound, nil
		}
		delete(f.passwords, key)
		return []byte("password has been deleted."), 0, nil
	}
	return nil, 1, nil
}

func newTestKeychain() (*Keychain, *fakeSecurity) {
	fake := newFakeSecurity()
	return New("net.example.apps", WithRunner(fake)), fake
}

// =============================================================================
// Save / Get / Delete
// =============================================================================

func TestKeychain_SaveAndGet(t *testing.T) {
	ctx := context.Background()
	k, fake := newTestKeychain()

	require.NoError(t, k.Save(ctx, "api", "hunter2"))

	pw, err := k.Get(ctx, "api")
	require.NoError(t, err)
	assert.Equal(t, "hunter2", pw)
	assert.Equal(t, "hunter2", fake.passwords["net.example.apps/api"])
	assert.Equal(t, "net.example.apps", k.Service())
}

func TestKeychain_SaveReplacesDifferentPassword(t *testing.T) {
	ctx := context.Background()
	k, fake := newTestKeychain()
	require.NoError(t, k.Save(ctx, "api", "old"))
	fake.calls = nil

	// When: saving a new password
	require.NoError(t, k.Save(ctx, "api", "new"))

	// Then: the old one is read, deleted and the new one added
	assert.Equal(t, []string{
		"add-generic-password",
		"find-generic-password",
		"delete-generic-password",
		"add-generic-password",
	}, fake.calls)
	assert.Equal(t, "new", fake.passwords["net.example.apps/api"])
}

func TestKeychain_SaveSamePasswordIsNoop(t *testing.T) {
	ctx := context.Background()
	k, fake := newTestKeychain()
	require.NoError(t, k.Save(ctx, "api", "same"))
	fake.calls = nil

	require.NoError(t, k.Save(ctx, "api", "same"))

	assert.Equal(t, []string{"add-generic-password", "find-generic-password"}, fake.calls)
}

func TestKeychain_GetMissing(t *testing.T) {
	k, _ := newTestKeychain()

	_, err := k.Get(context.Background(), "nobody")

	assert.True(t, errors.Is(err, ErrPasswordNotFound))
	assert.False(t, errors.Is(err, ErrPasswordExists))
	assert.Equal(t, wferrors.CategoryKeychain, wferrors.GetCategory(err))
}

func TestKeychain_Delete(t *testing.T) {
	ctx := context.Background()
	k, _ := newTestKeychain()
	require.NoError(t, k.Save(ctx, "api", "pw"))

	require.NoError(t, k.Delete(ctx, "api"))

	_, err := k.Get(ctx, "api")
	assert.ErrorIs(t, err, ErrPasswordNotFound)
	assert.ErrorIs(t, k.Delete(ctx, "api"), ErrPasswordNotFound)
}

func TestKeychain_UnknownExitCode(t *testing.T) {
	k, fake := newTestKeychain()
	fake.failWith = 51

	_, err := k.Get(context.Background(), "api")

	require.Error(t, err)
	assert.Equal(t, wferrors.ErrCodeKeychainFailed, wferrors.GetCode(err))
	var exitErr *ExitError
	require.True(t, errors.As(err, &exitErr))
	assert.Equal(t, 51, exitErr.ExitCode)
	assert.Contains(t, exitErr.Output, "boom")
}

type brokenRunner struct{}

func (brokenRunner) Run(context.Context, string, ...string) ([]byte, int, error) {
	return nil, -1, errors.New("executable file not found in $PATH")
}

func TestKeychain_RunnerFailure(t *testing.T) {
	k := New("svc", WithRunner(brokenRunner{}))

	err := k.Delete(context.Background(), "api")

	assert.Equal(t, wferrors.ErrCodeKeychainFailed, wferrors.GetCode(err))
	we, ok := wferrors.As(err)
	require.True(t, ok)
	assert.ErrorContains(t, we.Cause, "not found in $PATH")
}

// =============================================================================
// Output parsing
// =============================================================================

func TestParsePassword(t *testing.T) {
	tests := []struct {
		name   string
		output string
		want   string
		ok     bool
	}{
		{"quoted", `password: "hunter2"`, "hunter2", true},
		{"hex only", `password: 0x68C3A9`, "hé", true},
		{"hex and quoted", `password: 0x6869  "hi"`, "hi", true},
		{"empty", `password: `, "", true},
		{"surrounded", "class: \"genp\"\npassword: \"with \\\"quote\"\nattributes:", `with \"quote`, true},
		{"missing", `class: "genp"`, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parsePassword(tt.output)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
