package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"episodegap/internal/config"
	"episodegap/internal/services"
	"episodegap/internal/services/plex"
	"episodegap/internal/services/tvdb"
)

const checkTimeout = 10 * time.Second

// CheckPlex verifies Plex connectivity and token validity.
func CheckPlex(ctx context.Context, baseURL, token string) Result {
	const name = "Plex"

	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if base == "" {
		return Result{Name: name, Detail: "missing url"}
	}
	if strings.TrimSpace(token) == "" {
		return Result{Name: name, Detail: "missing token"}
	}

	checkCtx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	client := plex.New(base, token, "episodegap-doctor", plex.WithTimeout(checkTimeout))
	identity, err := client.Identity(checkCtx)
	if err != nil {
		return Result{Name: name, Detail: summarizeError(err, "invalid token")}
	}
	detail := "Reachable"
	if identity.Version != "" {
		detail = fmt.Sprintf("Reachable (server %s)", identity.Version)
	}
	return Result{Name: name, Passed: true, Detail: detail}
}

// CheckTVDB verifies that TheTVDB accepts the configured API key.
func CheckTVDB(ctx context.Context, cfg config.TVDB) Result {
	const name = "TheTVDB"

	if strings.TrimSpace(cfg.APIKey) == "" {
		return Result{Name: name, Detail: "missing api key"}
	}

	checkCtx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	client, err := tvdb.New(cfg.APIKey, cfg.PIN, cfg.BaseURL,
		tvdb.WithHTTPClient(&http.Client{Timeout: checkTimeout}))
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	if err := client.Login(checkCtx); err != nil {
		return Result{Name: name, Detail: summarizeError(err, "invalid api key or pin")}
	}
	return Result{Name: name, Passed: true, Detail: "Login ok"}
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// summarizeError produces a human-readable summary for a failed check.
func summarizeError(err error, unauthorized string) string {
	if errors.Is(err, services.ErrUnauthorized) {
		return "auth failed (" + unauthorized + ")"
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "check timed out (service unresponsive)"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "check timed out (service unreachable)"
	}
	return err.Error()
}
