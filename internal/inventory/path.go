package inventory

import (
	"path"
	"path/filepath"
	"regexp"
	"strings"
)

const (
	longPathPrefix    = `\\?\`
	longUNCPathPrefix = `\\?\UNC\`
)

var drivePrefix = regexp.MustCompile(`^[A-Za-z]:/`)

// NormalizePath turns a file path reported by Plex into an absolute,
// slash-separated path. The Windows long-path prefix is removed, UNC shares
// keep their leading double slash, and drive-letter paths are kept as-is
// apart from separator conversion. Relative paths are resolved against the
// working directory.
func NormalizePath(raw string) string {
	p := strings.TrimSpace(raw)
	if p == "" {
		return ""
	}
	switch {
	case strings.HasPrefix(p, longUNCPathPrefix):
		p = `\\` + strings.TrimPrefix(p, longUNCPathPrefix)
	case strings.HasPrefix(p, longPathPrefix):
		p = strings.TrimPrefix(p, longPathPrefix)
	}
	p = strings.ReplaceAll(p, `\`, "/")

	if strings.HasPrefix(p, "//") {
		return "/" + path.Clean(p[1:])
	}
	if drivePrefix.MatchString(p) {
		return p[:2] + path.Clean(p[2:])
	}
	if !path.IsAbs(p) {
		if abs, err := filepath.Abs(filepath.FromSlash(p)); err == nil {
			p = filepath.ToSlash(abs)
		}
	}
	return path.Clean(p)
}
