//go:build !darwin && !linux && !windows

package cookierinse

import "time"

func chromiumDecryptor(_ chromiumVendor, _ []chromiumStore, _ time.Duration) (chromiumDecryptFunc, []string) {
	return nil, []string{"cookierinse: chromium cookie decryption unsupported on this OS"}
}
