package cookierinse

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver (pure Go).
)

// envSafeStoragePassword overrides the OS keychain/keyring lookup of the
// Chromium Safe Storage password. Escape hatch for deterministic tooling.
const envSafeStoragePassword = "COOKIERINSE_SAFE_STORAGE_PASSWORD"

type chromiumVendor struct {
	browser Browser
	label   string

	// "Safe Storage" secret identifier in the OS keychain/keyring.
	safeStorageService string
	safeStorageAccount string
}

func chromiumVendorFor(b Browser) chromiumVendor {
	switch b {
	case BrowserChrome:
		return chromiumVendor{browser: b, label: "Chrome", safeStorageService: "Chrome Safe Storage", safeStorageAccount: "Chrome"}
	case BrowserChromium:
		return chromiumVendor{browser: b, label: "Chromium", safeStorageService: "Chromium Safe Storage", safeStorageAccount: "Chromium"}
	case BrowserEdge:
		return chromiumVendor{browser: b, label: "Microsoft Edge", safeStorageService: "Microsoft Edge Safe Storage", safeStorageAccount: "Microsoft Edge"}
	case BrowserBrave:
		return chromiumVendor{browser: b, label: "Brave", safeStorageService: "Brave Safe Storage", safeStorageAccount: "Brave"}
	case BrowserVivaldi:
		return chromiumVendor{browser: b, label: "Vivaldi", safeStorageService: "Vivaldi Safe Storage", safeStorageAccount: "Vivaldi"}
	case BrowserOpera:
		return chromiumVendor{browser: b, label: "Opera", safeStorageService: "Opera Safe Storage", safeStorageAccount: "Opera"}
	default:
		return chromiumVendor{browser: b, label: string(b), safeStorageService: fmt.Sprintf("%s Safe Storage", b), safeStorageAccount: string(b)}
	}
}

type chromiumStore struct {
	cookiesDB string
	userData  string
	profile   string
}

func exportChromium(ctx context.Context, vendor chromiumVendor, opts ExportOptions) ([]exportCookie, []string, error) {
	stores, warnings := chromiumResolveStores(vendor.browser, opts.Profile)
	if len(stores) == 0 {
		return nil, warnings, fmt.Errorf("cookierinse: %s cookie store not found", vendor.label)
	}

	decrypt, decryptWarnings := chromiumDecryptor(vendor, stores, opts.Timeout)
	warnings = append(warnings, decryptWarnings...)

	var out []exportCookie
	for _, st := range stores {
		cookies, w := exportChromiumStore(ctx, vendor, st, decrypt)
		warnings = append(warnings, w...)
		out = append(out, cookies...)
	}
	return out, warnings, nil
}

func exportChromiumStore(ctx context.Context, vendor chromiumVendor, st chromiumStore, decrypt chromiumDecryptFunc) ([]exportCookie, []string) {
	snapshot, cleanup, warnings, err := snapshotStore(st.cookiesDB)
	if err != nil {
		return nil, warnings
	}
	defer cleanup()

	db, err := openCookieDB(ctx, snapshot)
	if err != nil {
		return nil, append(warnings, fmt.Sprintf("cookierinse: failed to open %s cookies DB: %v", vendor.label, err))
	}
	defer func() { _ = db.Close() }()

	metaVersion := chromiumMetaVersion(ctx, db)

	rows, err := chromiumReadRows(ctx, db)
	if err != nil {
		return nil, append(warnings, fmt.Sprintf("cookierinse: failed to read %s cookies: %v", vendor.label, err))
	}

	undecryptable := 0
	var out []exportCookie
	for _, r := range rows {
		c, ok := chromiumRowToExport(r, metaVersion, decrypt)
		if !ok {
			undecryptable++
			continue
		}
		out = append(out, c)
	}
	if undecryptable > 0 {
		warnings = append(warnings, fmt.Sprintf("cookierinse: %d %s cookies skipped (no readable value)", undecryptable, vendor.label))
	}
	return out, warnings
}

type chromiumRow struct {
	hostKey        string
	name           string
	path           string
	value          string
	encryptedValue []byte
	expiresUTC     int64
	isSecure       bool
	isPersistent   bool
}

func chromiumReadRows(ctx context.Context, db *sql.DB) ([]chromiumRow, error) {
	if db == nil {
		return nil, errors.New("nil db")
	}

	query := `SELECT host_key, name, path, value, encrypted_value, expires_utc, is_secure, is_persistent
FROM cookies ORDER BY host_key, name`

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []chromiumRow
	for rows.Next() {
		var r chromiumRow
		var encrypted []byte
		var expires, secure, persistent sql.NullInt64

		if err := rows.Scan(&r.hostKey, &r.name, &r.path, &r.value, &encrypted, &expires, &secure, &persistent); err != nil {
			return nil, err
		}
		r.encryptedValue = encrypted
		if expires.Valid {
			r.expiresUTC = expires.Int64
		}
		r.isSecure = secure.Valid && secure.Int64 == 1
		r.isPersistent = persistent.Valid && persistent.Int64 == 1
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

type chromiumDecryptFunc func(encrypted []byte, metaVersion int64) ([]byte, bool)

func chromiumRowToExport(r chromiumRow, metaVersion int64, decrypt chromiumDecryptFunc) (exportCookie, bool) {
	if r.name == "" || r.hostKey == "" {
		return exportCookie{}, false
	}

	value := r.value
	if value == "" && len(r.encryptedValue) > 0 && decrypt != nil {
		if plain, ok := decrypt(r.encryptedValue, metaVersion); ok {
			if decoded, ok := decodeCookieValue(plain); ok {
				value = decoded
			}
		}
	}
	if value == "" {
		return exportCookie{}, false
	}

	var expiry int64
	if r.isPersistent {
		expiry = chromiumExpiresToUnix(r.expiresUTC)
	}

	return exportCookie{
		host:   r.hostKey,
		path:   r.path,
		secure: r.isSecure,
		expiry: expiry,
		name:   r.name,
		value:  value,
	}, true
}

// chromiumExpiresToUnix converts Chromium's microseconds-since-1601 into
// unix seconds. Non-positive results mean session cookies and map to 0.
func chromiumExpiresToUnix(expiresUTC int64) int64 {
	const epochDiffMicros = int64(11644473600000000)
	unixMicros := expiresUTC - epochDiffMicros
	if unixMicros <= 0 {
		return 0
	}
	return unixMicros / 1e6
}

func chromiumMetaVersion(ctx context.Context, db *sql.DB) int64 {
	if db == nil {
		return 0
	}
	var value string
	if err := db.QueryRowContext(ctx, `SELECT value FROM meta WHERE key = 'version'`).Scan(&value); err != nil {
		return 0
	}
	v, err := parseInt64(value)
	if err != nil {
		return 0
	}
	return v
}

// snapshotStore copies a cookie DB (with any WAL sidecars) into a temp dir
// so the browser's live store is never opened directly.
func snapshotStore(dbPath string) (snapshotPath string, cleanup func(), warnings []string, err error) {
	dir, err := os.MkdirTemp("", "cookierinse-")
	if err != nil {
		return "", nil, nil, err
	}
	cleanup = func() { _ = os.RemoveAll(dir) }

	target := filepath.Join(dir, filepath.Base(dbPath))
	if err := copyFile(dbPath, target); err != nil {
		warnings = append(warnings, fmt.Sprintf("cookierinse: failed to copy cookie DB: %v", err))
		cleanup()
		return "", nil, warnings, err
	}

	// If WAL mode is enabled, recent writes may live in sidecars.
	_ = copyFileIfExists(dbPath+"-wal", target+"-wal")
	_ = copyFileIfExists(dbPath+"-shm", target+"-shm")

	return target, cleanup, warnings, nil
}

func openCookieDB(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", "file:"+filepath.ToSlash(path)+"?mode=ro")
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func chromiumResolveStores(b Browser, profileOverride string) ([]chromiumStore, []string) {
	if profileOverride != "" {
		return chromiumResolveOverride(b, profileOverride)
	}

	var out []chromiumStore
	for _, root := range chromiumUserDataDirs(b) {
		out = append(out, chromiumStoresInUserData(root)...)
	}
	return out, nil
}

func chromiumStoresInUserData(userDataDir string) []chromiumStore {
	stateBytes, err := os.ReadFile(filepath.Join(userDataDir, "Local State"))
	if err != nil {
		return nil
	}

	var localState struct {
		Profile struct {
			InfoCache map[string]struct {
				Name string `json:"name"`
			} `json:"info_cache"`
		} `json:"profile"`
	}
	if err := json.Unmarshal(stateBytes, &localState); err != nil {
		// Still probe the conventional default profile.
		return chromiumStoresForProfileDir(userDataDir, "Default", "Default")
	}

	var out []chromiumStore
	for profDir, prof := range localState.Profile.InfoCache {
		name := prof.Name
		if name == "" {
			name = profDir
		}
		out = append(out, chromiumStoresForProfileDir(userDataDir, profDir, name)...)
	}
	if len(out) == 0 {
		out = chromiumStoresForProfileDir(userDataDir, "Default", "Default")
	}
	return out
}

func chromiumStoresForProfileDir(userDataDir, profDir, profName string) []chromiumStore {
	var out []chromiumStore
	candidates := []string{
		filepath.Join(userDataDir, profDir, "Network", "Cookies"),
		filepath.Join(userDataDir, profDir, "Cookies"),
	}
	for _, p := range candidates {
		if fileExists(p) {
			out = append(out, chromiumStore{cookiesDB: p, userData: userDataDir, profile: profName})
		}
	}
	return out
}

func chromiumResolveOverride(b Browser, override string) ([]chromiumStore, []string) {
	override = strings.TrimSpace(override)

	if fi, err := os.Stat(override); err == nil {
		if fi.IsDir() {
			stores := chromiumStoresForProfileDir(filepath.Dir(override), filepath.Base(override), filepath.Base(override))
			if len(stores) == 0 {
				return nil, []string{fmt.Sprintf("cookierinse: no cookie DB under %q", override)}
			}
			return stores, nil
		}
		dir := filepath.Dir(override)
		if filepath.Base(dir) == "Network" {
			dir = filepath.Dir(dir)
		}
		return []chromiumStore{{
			cookiesDB: override,
			userData:  filepath.Dir(dir),
			profile:   filepath.Base(dir),
		}}, nil
	}

	// Treat as a profile name under the known roots.
	var out []chromiumStore
	for _, root := range chromiumUserDataDirs(b) {
		out = append(out, chromiumStoresForProfileDir(root, override, override)...)
	}
	if len(out) == 0 {
		return nil, []string{fmt.Sprintf("cookierinse: %s profile %q not found", b, override)}
	}
	return out, nil
}
