//go:build darwin && !ios

package cookierinse

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"
)

func chromiumDecryptor(vendor chromiumVendor, _ []chromiumStore, timeout time.Duration) (chromiumDecryptFunc, []string) {
	password := strings.TrimSpace(os.Getenv(envSafeStoragePassword))
	if password == "" {
		pw, err := macosKeychainPassword(timeout, vendor.safeStorageService, vendor.safeStorageAccount)
		if err != nil {
			return nil, []string{fmt.Sprintf("cookierinse: macOS keychain read failed (%s): %v", vendor.safeStorageService, err)}
		}
		password = strings.TrimSpace(pw)
	}
	if password == "" {
		return nil, []string{fmt.Sprintf("cookierinse: macOS keychain returned an empty %s password", vendor.safeStorageService)}
	}

	key := deriveAESCBCKey(password, aesCBCIterationsMacOS)
	return func(encrypted []byte, metaVersion int64) ([]byte, bool) {
		plain, err := decryptAESCBC(encrypted, key, metaVersion, true)
		return plain, err == nil
	}, nil
}

func macosKeychainPassword(timeout time.Duration, service, account string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	stdout, stderr, err := execCapture(ctx, "security", []string{
		"find-generic-password",
		"-w",
		"-a", account,
		"-s", service,
	})
	if err != nil {
		if stderr != "" {
			return "", fmt.Errorf("%w: %s", err, strings.TrimSpace(stderr))
		}
		return "", err
	}
	return strings.TrimSpace(stdout), nil
}
