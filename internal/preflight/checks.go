package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"github.com/satishgoda/watchtower/internal/config"
	"github.com/satishgoda/watchtower/internal/dataurls"
)

const providerTimeout = 5 * time.Second

// CheckProvider verifies the data source answers the context resource with
// the configured credentials.
func CheckProvider(ctx context.Context, cfg *config.Config) Result {
	const name = "Data source"
	base := strings.TrimRight(strings.TrimSpace(cfg.DataSource.BaseURL), "/")
	if base == "" {
		return Result{Name: name, Detail: "missing base_url"}
	}
	path, err := dataurls.FromConfig(cfg).Path(dataurls.ResourceContext, "")
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}

	checkCtx, cancel := context.WithTimeout(ctx, providerTimeout)
	defer cancel()

	client := &http.Client{Timeout: providerTimeout}
	req, err := http.NewRequestWithContext(checkCtx, http.MethodGet, base+path, nil)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("request failed (%v)", err)}
	}
	req.Header.Set("Accept", "application/json")
	if ua := strings.TrimSpace(cfg.DataSource.UserAgent); ua != "" {
		req.Header.Set("User-Agent", ua)
	}
	if token := strings.TrimSpace(cfg.DataSource.APIToken); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := client.Do(req)
	if err != nil {
		return Result{Name: name, Detail: summarizeRequestError(base, err)}
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (reachable, %s mode)", base, cfg.DataSource.Mode)}
	case http.StatusUnauthorized, http.StatusForbidden:
		return Result{Name: name, Detail: "auth failed (check api_token)"}
	case http.StatusNotFound:
		return Result{Name: name, Detail: fmt.Sprintf("%s not found (check mode and base_path)", path)}
	default:
		return Result{Name: name, Detail: fmt.Sprintf("check failed (%d)", resp.StatusCode)}
	}
}

// CheckDataTree verifies a local static export: the directory is readable and
// holds the shared context document.
func CheckDataTree(name, root string) Result {
	if res := checkDir(name, root, unix.R_OK|unix.X_OK); !res.Passed {
		return res
	}
	file, err := dataurls.StaticFile(dataurls.ResourceContext, "")
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	if _, err := os.Stat(filepath.Join(root, filepath.FromSlash(file))); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %s missing)", root, file)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (readable)", root)}
}

// CheckWritableDir verifies that path is a writable directory. A missing
// directory passes when its nearest existing parent is writable, since it is
// created on first use.
func CheckWritableDir(name, path string) Result {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		parent := path
		for {
			next := filepath.Dir(parent)
			if next == parent {
				break
			}
			parent = next
			if _, err := os.Stat(parent); err == nil {
				break
			}
		}
		res := checkDir(name, parent, unix.W_OK|unix.X_OK)
		if !res.Passed {
			return res
		}
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (will be created)", path)}
	}
	res := checkDir(name, path, unix.R_OK|unix.W_OK|unix.X_OK)
	if res.Passed {
		res.Detail = fmt.Sprintf("%s (read/write ok)", path)
	}
	return res
}

func checkDir(name, path string, mode uint32) Result {
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
	if err := unix.Access(path, mode); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: path}
}

// summarizeRequestError produces a human-readable summary for connection failures.
func summarizeRequestError(base string, err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Sprintf("%s timed out", base)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Sprintf("%s timed out", base)
	}
	return fmt.Sprintf("%s unreachable (%v)", base, err)
}
