package cookierinse

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Browser identifies a local cookie store to export from.
type Browser string

const (
	// BrowserChrome is Google Chrome.
	BrowserChrome Browser = "chrome"
	// BrowserChromium is Chromium.
	BrowserChromium Browser = "chromium"
	// BrowserEdge is Microsoft Edge.
	BrowserEdge Browser = "edge"
	// BrowserBrave is Brave Browser.
	BrowserBrave Browser = "brave"
	// BrowserVivaldi is Vivaldi.
	BrowserVivaldi Browser = "vivaldi"
	// BrowserOpera is Opera.
	BrowserOpera Browser = "opera"
	// BrowserFirefox is Mozilla Firefox.
	BrowserFirefox Browser = "firefox"
)

// ExportOptions configures a browser store export.
type ExportOptions struct {
	Browser Browser

	// Profile overrides store selection: a profile name, a profile
	// directory, or an explicit cookie DB path.
	Profile string

	// IncludeExpired keeps cookies whose expiry is in the past. Session
	// cookies are always kept (expiry rendered as 0).
	IncludeExpired bool

	// Timeout bounds OS helper calls (keychain/keyring).
	Timeout time.Duration
}

// ExportResult holds the rendered cookies.txt lines of one export.
type ExportResult struct {
	Lines    []string
	Warnings []string
}

// Export reads a local browser cookie store and renders it as Netscape
// cookies.txt lines suitable for Analyze and Clean. The store is read from
// a temporary snapshot; the browser's own files are never written.
func Export(ctx context.Context, opts ExportOptions) (*ExportResult, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = 3 * time.Second
	}

	var cookies []exportCookie
	var warnings []string
	var err error

	switch opts.Browser {
	case BrowserChrome, BrowserChromium, BrowserEdge, BrowserBrave, BrowserVivaldi, BrowserOpera:
		cookies, warnings, err = exportChromium(ctx, chromiumVendorFor(opts.Browser), opts)
	case BrowserFirefox:
		cookies, warnings, err = exportFirefox(ctx, opts)
	default:
		return nil, fmt.Errorf("cookierinse: unsupported browser %q", opts.Browser)
	}
	if err != nil {
		errorsTotal.WithLabelValues("export").Inc()
		return nil, err
	}

	now := time.Now().Unix()
	res := &ExportResult{Warnings: warnings}
	for _, c := range cookies {
		if !opts.IncludeExpired && c.expiry > 0 && c.expiry < now {
			continue
		}
		res.Lines = append(res.Lines, netscapeLine(c))
	}
	exportsTotal.WithLabelValues(string(opts.Browser)).Inc()
	return res, nil
}

// exportCookie is one cookie pulled out of a browser store, pre-rendering.
type exportCookie struct {
	host   string // raw host key; a leading dot marks an include-subdomains cookie
	path   string
	secure bool
	expiry int64 // unix seconds, 0 = session
	name   string
	value  string
}

func netscapeLine(c exportCookie) string {
	includeSub := "FALSE"
	if strings.HasPrefix(c.host, ".") {
		includeSub = "TRUE"
	}
	secure := "FALSE"
	if c.secure {
		secure = "TRUE"
	}
	path := c.path
	if path == "" {
		path = "/"
	}
	return strings.Join([]string{
		c.host,
		includeSub,
		path,
		secure,
		fmt.Sprintf("%d", c.expiry),
		c.name,
		c.value,
	}, "\t")
}
