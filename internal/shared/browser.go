package shared

import (
	"fmt"
	"net/url"
	"os/exec"
	"runtime"
	"strconv"
	"strings"
)

var getRuntime = func() string { return runtime.GOOS }

// browserCommand returns the launcher for the current platform.
func browserCommand(target string) (*exec.Cmd, error) {
	switch rt := getRuntime(); rt {
	case "darwin":
		return exec.Command("open", target), nil
	case "linux", "freebsd", "openbsd":
		return exec.Command("xdg-open", target), nil
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", target), nil
	default:
		return nil, fmt.Errorf("unsupported platform: %s", rt)
	}
}

// OpenBrowser opens the default system browser at target.
func OpenBrowser(target string) error {
	cmd, err := browserCommand(target)
	if err != nil {
		return err
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to open browser: %w", err)
	}
	return nil
}

// CorrectionURL builds the web page address for a correction, with the compare query when compareID is set.
func CorrectionURL(baseURL string, correctionID, compareID int) (string, error) {
	if baseURL == "" {
		return "", fmt.Errorf("%w: web.base_url is empty", ErrMissingConfig)
	}

	u, err := url.Parse(strings.TrimRight(baseURL, "/") + "/correction/" + strconv.Itoa(correctionID))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	if compareID > 0 {
		q := u.Query()
		q.Set("compare", strconv.Itoa(compareID))
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}
