//go:build !darwin && !linux && !windows

package cookierinse

func chromiumUserDataDirs(Browser) []string { return nil }

func firefoxRoots() []string { return nil }
