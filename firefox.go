package cookierinse

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-ini/ini"
)

func exportFirefox(ctx context.Context, opts ExportOptions) ([]exportCookie, []string, error) {
	dbs, warnings := firefoxResolveCookieDBs(opts.Profile)
	if len(dbs) == 0 {
		return nil, warnings, fmt.Errorf("cookierinse: Firefox cookie store not found")
	}

	var out []exportCookie
	for _, dbPath := range dbs {
		cookies, w := exportFirefoxStore(ctx, dbPath)
		warnings = append(warnings, w...)
		out = append(out, cookies...)
	}
	return out, warnings, nil
}

func exportFirefoxStore(ctx context.Context, db firefoxDB) ([]exportCookie, []string) {
	snap, cleanup, warnings, err := snapshotStore(db.path)
	if err != nil {
		return nil, warnings
	}
	defer cleanup()

	conn, err := openCookieDB(ctx, snap)
	if err != nil {
		return nil, append(warnings, fmt.Sprintf("cookierinse: failed to open Firefox cookies DB: %v", err))
	}
	defer func() { _ = conn.Close() }()

	rows, err := conn.QueryContext(ctx,
		`SELECT host, name, value, path, expiry, isSecure FROM moz_cookies ORDER BY host, name`)
	if err != nil {
		return nil, append(warnings, fmt.Sprintf("cookierinse: failed to read Firefox cookies: %v", err))
	}
	defer func() { _ = rows.Close() }()

	var out []exportCookie
	for rows.Next() {
		var c exportCookie
		var expiry, secure sql.NullInt64
		if err := rows.Scan(&c.host, &c.name, &c.value, &c.path, &expiry, &secure); err != nil {
			return out, append(warnings, fmt.Sprintf("cookierinse: failed to scan Firefox cookie: %v", err))
		}
		if c.name == "" || c.host == "" || c.value == "" {
			continue
		}
		if expiry.Valid && expiry.Int64 > 0 {
			c.expiry = expiry.Int64
		}
		c.secure = secure.Valid && secure.Int64 == 1
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		warnings = append(warnings, fmt.Sprintf("cookierinse: failed to read Firefox cookies: %v", err))
	}
	return out, warnings
}

type firefoxDB struct {
	path    string
	profile string
}

// firefoxResolveCookieDBs finds cookies.sqlite stores, either from an
// explicit override (store path or profile dir) or by walking profiles.ini
// under the platform's Firefox roots.
func firefoxResolveCookieDBs(override string) ([]firefoxDB, []string) {
	override = strings.TrimSpace(override)
	if override != "" {
		if fi, err := os.Stat(override); err == nil {
			if fi.IsDir() {
				dbPath := filepath.Join(override, "cookies.sqlite")
				if fileExists(dbPath) {
					return []firefoxDB{{path: dbPath, profile: filepath.Base(override)}}, nil
				}
				return nil, []string{fmt.Sprintf("cookierinse: Firefox cookies.sqlite not found in %q", override)}
			}
			return []firefoxDB{{path: override, profile: filepath.Base(filepath.Dir(override))}}, nil
		}
	}

	var out []firefoxDB
	for _, root := range firefoxRoots() {
		out = append(out, firefoxProfilesFromRoot(root, override)...)
	}

	if override != "" && len(out) == 0 {
		return nil, []string{fmt.Sprintf("cookierinse: Firefox profile %q not found", override)}
	}
	return out, nil
}

// firefoxProfilesFromRoot lists the cookie stores registered in one root's
// profiles.ini, optionally filtered by profile name or directory.
func firefoxProfilesFromRoot(root, override string) []firefoxDB {
	cfg, err := ini.Load(filepath.Join(root, "profiles.ini"))
	if err != nil {
		return nil
	}

	var out []firefoxDB
	for _, secName := range cfg.SectionStrings() {
		if !strings.HasPrefix(secName, "Profile") {
			continue
		}
		sec := cfg.Section(secName)
		name := sec.Key("Name").String()
		pathStr := filepath.FromSlash(sec.Key("Path").String())
		if pathStr == "" {
			continue
		}
		if sec.Key("IsRelative").String() == "1" {
			pathStr = filepath.Join(root, pathStr)
		}
		dbPath := filepath.Join(pathStr, "cookies.sqlite")
		if !fileExists(dbPath) {
			continue
		}

		prof := name
		if prof == "" {
			prof = filepath.Base(pathStr)
		}
		if override != "" && prof != override && filepath.Base(pathStr) != override {
			continue
		}
		out = append(out, firefoxDB{path: dbPath, profile: prof})
	}
	return out
}
