package cookierinse

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
)

func chromiumMicros(unixSeconds int64) int64 {
	return (unixSeconds + 11644473600) * 1e6
}

func TestDeriveAESCBCKey(t *testing.T) {
	linuxKey := deriveAESCBCKey("pw", aesCBCIterationsLinux)
	if len(linuxKey) != aesCBCKeyLen {
		t.Fatalf("key length = %d, want %d", len(linuxKey), aesCBCKeyLen)
	}
	if !bytes.Equal(linuxKey, deriveAESCBCKey("pw", aesCBCIterationsLinux)) {
		t.Fatalf("derivation must be deterministic")
	}
	if bytes.Equal(linuxKey, deriveAESCBCKey("pw", aesCBCIterationsMacOS)) {
		t.Fatalf("different iteration counts must give different keys")
	}
}

func TestDecryptAESCBC_RoundTrip(t *testing.T) {
	key := deriveAESCBCKey("pw", aesCBCIterationsLinux)
	enc := encryptAESCBCForTest(t, "v10", key, []byte("hello"))

	got, err := decryptAESCBC(enc, key, 0, false)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "hello" {
		t.Fatalf("got %q, want hello", got)
	}
}

func TestDecryptAESCBC_StripsDomainHashPrefix(t *testing.T) {
	key := deriveAESCBCKey("pw", aesCBCIterationsLinux)
	plain := append(bytes.Repeat([]byte{0xAA}, 32), []byte("hello")...)
	enc := encryptAESCBCForTest(t, "v10", key, plain)

	got, err := decryptAESCBC(enc, key, 30, false)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "hello" {
		t.Fatalf("got %q, want hello with the hash prefix stripped", got)
	}
}

func TestDecryptAESCBC_UnknownPrefix(t *testing.T) {
	key := deriveAESCBCKey("pw", aesCBCIterationsLinux)

	got, err := decryptAESCBC([]byte("plaintext"), key, 0, true)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "plaintext" {
		t.Fatalf("got %q, want passthrough", got)
	}

	if _, err := decryptAESCBC([]byte("plaintext"), key, 0, false); err == nil {
		t.Fatalf("expected error when unknown prefixes are not passthrough")
	}
}

func TestDecryptAESCBC_BadInput(t *testing.T) {
	key := deriveAESCBCKey("pw", aesCBCIterationsLinux)

	if _, err := decryptAESCBC([]byte("v1"), key, 0, false); err == nil {
		t.Fatalf("short input accepted")
	}
	// Not a multiple of the block size.
	if _, err := decryptAESCBC([]byte("v10abcdef"), key, 0, false); err == nil {
		t.Fatalf("partial block accepted")
	}
	// Valid blocks, wrong key: padding check must reject.
	enc := encryptAESCBCForTest(t, "v10", key, []byte("hello"))
	wrong := deriveAESCBCKey("other", aesCBCIterationsLinux)
	if _, err := decryptAESCBC(enc, wrong, 0, false); err == nil {
		t.Fatalf("wrong key accepted")
	}
}

func TestDecryptAES256GCM(t *testing.T) {
	key := bytes.Repeat([]byte{0x11}, 32)
	nonce := bytes.Repeat([]byte{0x22}, 12)
	plain := append(bytes.Repeat([]byte{0xBB}, 32), []byte("hello")...)
	enc := encryptAESGCMForTest(t, "v10", key, nonce, plain)

	got, err := decryptAES256GCM(enc, key, 24)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "hello" {
		t.Fatalf("got %q, want hello", got)
	}

	wrong := bytes.Repeat([]byte{0x33}, 32)
	if _, err := decryptAES256GCM(enc, wrong, 24); err == nil {
		t.Fatalf("wrong key accepted")
	}
	if _, err := decryptAES256GCM([]byte("v10short"), key, 24); err == nil {
		t.Fatalf("short input accepted")
	}
}

func TestStripPKCS7Padding(t *testing.T) {
	got, err := stripPKCS7Padding([]byte{'a', 'b', 2, 2})
	if err != nil || string(got) != "ab" {
		t.Fatalf("got %q, %v", got, err)
	}
	if _, err := stripPKCS7Padding([]byte{'a', 'b', 1, 2}); err == nil {
		t.Fatalf("inconsistent padding accepted")
	}
	if _, err := stripPKCS7Padding([]byte{0}); err == nil {
		t.Fatalf("zero padding length accepted")
	}
}

func TestDecodeCookieValue(t *testing.T) {
	val, ok := decodeCookieValue([]byte{0x01, 0x02, 'o', 'k'})
	if !ok || val != "ok" {
		t.Fatalf("got %q, %v", val, ok)
	}
	if _, ok := decodeCookieValue([]byte{'a', 0xFF, 0xFE}); ok {
		t.Fatalf("invalid UTF-8 accepted")
	}
}

func TestChromiumExpiresToUnix(t *testing.T) {
	if got := chromiumExpiresToUnix(0); got != 0 {
		t.Fatalf("zero = %d", got)
	}
	if got := chromiumExpiresToUnix(chromiumMicros(1700000000)); got != 1700000000 {
		t.Fatalf("got %d, want 1700000000", got)
	}
	// Values before the unix epoch are session cookies.
	if got := chromiumExpiresToUnix(1); got != 0 {
		t.Fatalf("pre-epoch = %d, want 0", got)
	}
}

func TestChromiumReadRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Cookies")
	newChromiumFixture(t, path, 24, []testChromiumCookie{
		{host: ".github.com", name: "user_session", path: "/", value: "abc",
			expiresUTC: chromiumMicros(1900000000), secure: 1, persistent: 1},
		{host: "example.com", name: "sid", path: "/", value: "v"},
	})

	ctx := context.Background()
	db, err := openCookieDB(ctx, path)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = db.Close() }()

	if v := chromiumMetaVersion(ctx, db); v != 24 {
		t.Fatalf("meta version = %d, want 24", v)
	}

	rows, err := chromiumReadRows(ctx, db)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	// ORDER BY host_key puts ".github.com" first.
	if rows[0].hostKey != ".github.com" || !rows[0].isSecure || !rows[0].isPersistent {
		t.Fatalf("unexpected first row: %+v", rows[0])
	}
	if rows[1].isPersistent {
		t.Fatalf("second row must be a session cookie")
	}
}

func TestChromiumRowToExport(t *testing.T) {
	persistent := chromiumRow{
		hostKey: ".github.com", name: "user_session", path: "/", value: "abc",
		expiresUTC: chromiumMicros(1900000000), isSecure: true, isPersistent: true,
	}
	c, ok := chromiumRowToExport(persistent, 24, nil)
	if !ok {
		t.Fatalf("expected cookie")
	}
	if c.expiry != 1900000000 || !c.secure || c.value != "abc" {
		t.Fatalf("unexpected cookie: %+v", c)
	}

	session := persistent
	session.isPersistent = false
	if c, _ := chromiumRowToExport(session, 24, nil); c.expiry != 0 {
		t.Fatalf("session expiry = %d, want 0", c.expiry)
	}

	if _, ok := chromiumRowToExport(chromiumRow{hostKey: "a", name: ""}, 24, nil); ok {
		t.Fatalf("nameless cookie accepted")
	}
	if _, ok := chromiumRowToExport(chromiumRow{hostKey: "a", name: "b"}, 24, nil); ok {
		t.Fatalf("valueless cookie without decryptor accepted")
	}
}

func TestChromiumRowToExport_Decrypts(t *testing.T) {
	key := deriveAESCBCKey("pw", aesCBCIterationsLinux)
	row := chromiumRow{
		hostKey:        "example.com",
		name:           "sid",
		encryptedValue: encryptAESCBCForTest(t, "v10", key, []byte("secret")),
	}
	decrypt := func(encrypted []byte, metaVersion int64) ([]byte, bool) {
		plain, err := decryptAESCBC(encrypted, key, metaVersion, false)
		return plain, err == nil
	}

	c, ok := chromiumRowToExport(row, 0, decrypt)
	if !ok || c.value != "secret" {
		t.Fatalf("got %+v, %v", c, ok)
	}
}

func TestSnapshotStore(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "Cookies")
	if err := os.WriteFile(src, []byte("db"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(src+"-wal", []byte("wal"), 0o600); err != nil {
		t.Fatal(err)
	}

	snap, cleanup, _, err := snapshotStore(src)
	if err != nil {
		t.Fatal(err)
	}
	defer cleanup()

	if raw, _ := os.ReadFile(snap); string(raw) != "db" {
		t.Fatalf("snapshot = %q", raw)
	}
	if raw, _ := os.ReadFile(snap + "-wal"); string(raw) != "wal" {
		t.Fatalf("wal sidecar = %q", raw)
	}

	cleanup()
	if fileExists(snap) {
		t.Fatalf("cleanup left the snapshot behind")
	}
}

func TestSnapshotStore_MissingSource(t *testing.T) {
	if _, _, _, err := snapshotStore(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Fatalf("expected error for missing source")
	}
}

func TestChromiumResolveOverride_DBPath(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "Default", "Network", "Cookies")
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(dbPath, []byte("db"), 0o600); err != nil {
		t.Fatal(err)
	}

	stores, warnings := chromiumResolveOverride(BrowserChrome, dbPath)
	if len(warnings) != 0 {
		t.Fatalf("warnings = %v", warnings)
	}
	if len(stores) != 1 || stores[0].cookiesDB != dbPath {
		t.Fatalf("stores = %+v", stores)
	}
	if stores[0].profile != "Default" {
		t.Fatalf("profile = %q, want Default", stores[0].profile)
	}
}

func TestChromiumResolveOverride_ProfileDir(t *testing.T) {
	dir := t.TempDir()
	profDir := filepath.Join(dir, "Work")
	dbPath := filepath.Join(profDir, "Cookies")
	if err := os.MkdirAll(profDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(dbPath, []byte("db"), 0o600); err != nil {
		t.Fatal(err)
	}

	stores, warnings := chromiumResolveOverride(BrowserChrome, profDir)
	if len(warnings) != 0 {
		t.Fatalf("warnings = %v", warnings)
	}
	if len(stores) != 1 || stores[0].cookiesDB != dbPath || stores[0].profile != "Work" {
		t.Fatalf("stores = %+v", stores)
	}
}

func TestChromiumStoresInUserData(t *testing.T) {
	userData := t.TempDir()
	localState := `{"profile":{"info_cache":{"Profile 1":{"name":"Work"}}}}`
	if err := os.WriteFile(filepath.Join(userData, "Local State"), []byte(localState), 0o600); err != nil {
		t.Fatal(err)
	}
	dbPath := filepath.Join(userData, "Profile 1", "Cookies")
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(dbPath, []byte("db"), 0o600); err != nil {
		t.Fatal(err)
	}

	stores := chromiumStoresInUserData(userData)
	if len(stores) != 1 || stores[0].profile != "Work" || stores[0].cookiesDB != dbPath {
		t.Fatalf("stores = %+v", stores)
	}
}

func TestNetscapeLine(t *testing.T) {
	line := netscapeLine(exportCookie{
		host: ".example.com", secure: true, expiry: 1700000000, name: "sid", value: "v",
	})
	want := ".example.com\tTRUE\t/\tTRUE\t1700000000\tsid\tv"
	if line != want {
		t.Fatalf("line = %q, want %q", line, want)
	}

	rec, ok := parseRecord(line)
	if !ok || rec.Domain != ".example.com" || rec.Name != "sid" || rec.Expiry != 1700000000 {
		t.Fatalf("exported line must round-trip through the parser: %+v, %v", rec, ok)
	}
}
