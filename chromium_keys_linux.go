//go:build linux && !android

package cookierinse

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/zalando/go-keyring"
)

func chromiumDecryptor(vendor chromiumVendor, _ []chromiumStore, timeout time.Duration) (chromiumDecryptFunc, []string) {
	password, warnings := linuxSafeStoragePassword(vendor, timeout)

	// v10 cookies use the hardcoded "peanuts" password; some distributions
	// ship stores encrypted with an empty one.
	v10Key := deriveAESCBCKey("peanuts", aesCBCIterationsLinux)
	emptyKey := deriveAESCBCKey("", aesCBCIterationsLinux)
	v11Key := deriveAESCBCKey(password, aesCBCIterationsLinux)

	return func(encrypted []byte, metaVersion int64) ([]byte, bool) {
		if len(encrypted) < 3 {
			return nil, false
		}
		var keys [][]byte
		switch string(encrypted[:3]) {
		case "v10":
			keys = [][]byte{v10Key, emptyKey}
		case "v11":
			keys = [][]byte{v11Key, emptyKey}
		default:
			return nil, false
		}
		for _, key := range keys {
			if plain, err := decryptAESCBC(encrypted, key, metaVersion, false); err == nil {
				return plain, true
			}
		}
		return nil, false
	}, warnings
}

func linuxSafeStoragePassword(vendor chromiumVendor, timeout time.Duration) (string, []string) {
	// Escape hatch for deterministic tooling/CI.
	if override := strings.TrimSpace(os.Getenv(envSafeStoragePassword)); override != "" {
		return override, nil
	}

	if pw, err := keyring.Get(vendor.safeStorageService, vendor.safeStorageAccount); err == nil && strings.TrimSpace(pw) != "" {
		return strings.TrimSpace(pw), nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	stdout, _, err := execCapture(ctx, "secret-tool", []string{
		"lookup", "service", vendor.safeStorageService, "account", vendor.safeStorageAccount,
	})
	if err == nil && strings.TrimSpace(stdout) != "" {
		return strings.TrimSpace(stdout), nil
	}

	return "", []string{"cookierinse: failed to read the Linux keyring; v11 cookies may be unavailable"}
}
