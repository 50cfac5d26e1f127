package cookierinse

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha1" //nolint:gosec // Chromium's legacy cookie encryption uses PBKDF2("saltysalt", sha1).
	"errors"
	"fmt"
	"unicode/utf8"

	"golang.org/x/crypto/pbkdf2"
)

const (
	aesCBCSalt            = "saltysalt"
	aesCBCIV              = "                " // 16 spaces
	aesCBCIterationsLinux = 1
	aesCBCIterationsMacOS = 1003
	aesCBCKeyLen          = 16
)

func deriveAESCBCKey(password string, iterations int) []byte {
	return pbkdf2.Key([]byte(password), []byte(aesCBCSalt), iterations, aesCBCKeyLen, sha1.New)
}

func decryptAESCBC(encrypted, key []byte, metaVersion int64, treatUnknownPrefixAsPlaintext bool) ([]byte, error) {
	if len(encrypted) <= 3 {
		return nil, fmt.Errorf("encrypted value too short (%d bytes)", len(encrypted))
	}

	if !hasVersionPrefix(encrypted) {
		if !treatUnknownPrefixAsPlaintext {
			return nil, errors.New("missing v## prefix")
		}
		return bytes.Clone(encrypted), nil
	}

	ciphertext := encrypted[3:]
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	if len(ciphertext)%aes.BlockSize != 0 {
		return nil, errors.New("cipher input not full blocks")
	}

	out := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, []byte(aesCBCIV)).CryptBlocks(out, ciphertext)

	out, err = stripPKCS7Padding(out)
	if err != nil {
		return nil, err
	}
	return stripDomainHashPrefix(out, metaVersion), nil
}

func decryptAES256GCM(encrypted, key []byte, metaVersion int64) ([]byte, error) {
	if len(encrypted) < 3+12+16 {
		return nil, errors.New("encrypted value too short")
	}
	if !hasVersionPrefix(encrypted) {
		return nil, errors.New("missing v## prefix")
	}

	payload := encrypted[3:]
	nonce, sealed := payload[:12], payload[12:]

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	plain, err := aesgcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, err
	}
	return stripDomainHashPrefix(plain, metaVersion), nil
}

// Schema 24+ prefixes plaintext values with a 32-byte SHA-256 of the host key.
func stripDomainHashPrefix(plain []byte, metaVersion int64) []byte {
	if metaVersion >= 24 && len(plain) >= 32 {
		return plain[32:]
	}
	return plain
}

func hasVersionPrefix(b []byte) bool {
	return len(b) >= 3 && b[0] == 'v' && isDigit(b[1]) && isDigit(b[2])
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

func stripPKCS7Padding(b []byte) ([]byte, error) {
	if len(b) == 0 {
		return b, nil
	}
	padLen := int(b[len(b)-1])
	if padLen <= 0 || padLen > aes.BlockSize || padLen > len(b) {
		return nil, fmt.Errorf("invalid padding length: %d", padLen)
	}
	for _, p := range b[len(b)-padLen:] {
		if int(p) != padLen {
			return nil, errors.New("invalid padding bytes")
		}
	}
	return b[:len(b)-padLen], nil
}

func decodeCookieValue(b []byte) (string, bool) {
	i := 0
	for i < len(b) && b[i] < 0x20 {
		i++
	}
	b = b[i:]
	if !utf8.Valid(b) {
		return "", false
	}
	return string(b), true
}
