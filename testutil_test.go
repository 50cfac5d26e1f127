package cookierinse

import (
	"crypto/aes"
	"crypto/cipher"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"
)

func openTestSQLite(t *testing.T, path string) *sql.DB {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	db, err := sql.Open("sqlite", "file:"+filepath.ToSlash(path)+"?mode=rwc")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

type testChromiumCookie struct {
	host       string
	name       string
	path       string
	value      string
	encrypted  []byte
	expiresUTC int64
	secure     int
	persistent int
}

// newChromiumFixture creates a minimal Chromium Cookies DB at path.
func newChromiumFixture(t *testing.T, path string, metaVersion int, cookies []testChromiumCookie) {
	t.Helper()
	db := openTestSQLite(t, path)

	if _, err := db.Exec(`CREATE TABLE meta (key TEXT PRIMARY KEY, value TEXT)`); err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec(`INSERT INTO meta (key, value) VALUES ('version', ?)`, metaVersion); err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec(`CREATE TABLE cookies (
		host_key TEXT, name TEXT, path TEXT, value TEXT,
		encrypted_value BLOB, expires_utc INTEGER, is_secure INTEGER, is_persistent INTEGER)`); err != nil {
		t.Fatal(err)
	}
	for _, c := range cookies {
		if _, err := db.Exec(
			`INSERT INTO cookies VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			c.host, c.name, c.path, c.value, c.encrypted, c.expiresUTC, c.secure, c.persistent,
		); err != nil {
			t.Fatal(err)
		}
	}
	if err := db.Close(); err != nil {
		t.Fatal(err)
	}
}

// newFirefoxFixture creates a minimal cookies.sqlite at path.
func newFirefoxFixture(t *testing.T, path string, rows [][6]any) {
	t.Helper()
	db := openTestSQLite(t, path)

	if _, err := db.Exec(`CREATE TABLE moz_cookies (
		host TEXT, name TEXT, value TEXT, path TEXT, expiry INTEGER, isSecure INTEGER)`); err != nil {
		t.Fatal(err)
	}
	for _, r := range rows {
		if _, err := db.Exec(`INSERT INTO moz_cookies VALUES (?, ?, ?, ?, ?, ?)`,
			r[0], r[1], r[2], r[3], r[4], r[5]); err != nil {
			t.Fatal(err)
		}
	}
	if err := db.Close(); err != nil {
		t.Fatal(err)
	}
}

func pkcs7Pad(t *testing.T, b []byte) []byte {
	t.Helper()
	paddingLen := aes.BlockSize - (len(b) % aes.BlockSize)
	if paddingLen == 0 {
		paddingLen = aes.BlockSize
	}
	out := make([]byte, 0, len(b)+paddingLen)
	out = append(out, b...)
	for i := 0; i < paddingLen; i++ {
		out = append(out, byte(paddingLen))
	}
	return out
}

func encryptAESCBCForTest(t *testing.T, prefix string, key []byte, plaintext []byte) []byte {
	t.Helper()
	block, err := aes.NewCipher(key)
	if err != nil {
		t.Fatal(err)
	}
	padded := pkcs7Pad(t, plaintext)
	ciphertext := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, []byte(aesCBCIV)).CryptBlocks(ciphertext, padded)
	return append([]byte(prefix), ciphertext...)
}

func encryptAESGCMForTest(t *testing.T, prefix string, key []byte, nonce []byte, plaintext []byte) []byte {
	t.Helper()
	block, err := aes.NewCipher(key)
	if err != nil {
		t.Fatal(err)
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		t.Fatal(err)
	}
	ciphertextAndTag := aesgcm.Seal(nil, nonce, plaintext, nil)
	out := make([]byte, 0, len(prefix)+len(nonce)+len(ciphertextAndTag))
	out = append(out, []byte(prefix)...)
	out = append(out, nonce...)
	out = append(out, ciphertextAndTag...)
	return out
}
