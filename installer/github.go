package installer

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/ptpanel/ptpanel/logger"
)

// DefaultVersion is the pingtunnel release fetched when no version is
// given.
const DefaultVersion = "2.8"

const binaryName = "pingtunnel"

// archAssets maps GOARCH onto the release asset suffix.
var archAssets = map[string]string{
	"amd64": "pingtunnel_linux_amd64.zip",
	"arm64": "pingtunnel_linux_arm64.zip",
	"arm":   "pingtunnel_linux_arm64.zip",
	"386":   "pingtunnel_linux_386.zip",
}

// GithubInstaller downloads release zips from the upstream project.
type GithubInstaller struct {
	// BaseURL is overridable for tests; defaults to the upstream release
	// download root.
	BaseURL string
	Client  *http.Client
	Retries int
}

func NewGithubInstaller() *GithubInstaller {
	return &GithubInstaller{
		BaseURL: "https://github.com/esrrhs/pingtunnel/releases/download",
		Client:  &http.Client{Timeout: 60 * time.Second},
		Retries: 4,
	}
}

func (g *GithubInstaller) FetchAndPlaceBinary(ctx context.Context, version string, targetDir string) (string, error) {
	if version == "" {
		version = DefaultVersion
	}
	asset, ok := archAssets[runtime.GOARCH]
	if !ok {
		return "", fmt.Errorf("unsupported architecture: %s", runtime.GOARCH)
	}
	url := fmt.Sprintf("%s/%s/%s", g.BaseURL, version, asset)

	if err := os.MkdirAll(targetDir, 0o755); err != nil {
		return "", err
	}

	color.Yellow("downloading %s ...", url)
	zipPath, err := g.download(ctx, url)
	if err != nil {
		return "", err
	}
	defer os.Remove(zipPath)

	color.Yellow("extracting ...")
	if err := safeExtract(zipPath, targetDir); err != nil {
		return "", err
	}

	binPath, err := FindBinary(targetDir)
	if err != nil {
		return "", err
	}
	if err := os.Chmod(binPath, 0o755); err != nil {
		return "", err
	}
	color.Green("binary placed at %s", binPath)
	return binPath, nil
}

// download retrieves url into a temp file, retrying transient failures
// with a growing delay.
func (g *GithubInstaller) download(ctx context.Context, url string) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= g.Retries; attempt++ {
		path, err := g.downloadOnce(ctx, url)
		if err == nil {
			return path, nil
		}
		lastErr = err
		logger.Warningf("download attempt %d/%d failed: %v", attempt, g.Retries, err)
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(time.Duration(attempt) * time.Second):
		}
	}
	return "", fmt.Errorf("download %s: %w", url, lastErr)
}

func (g *GithubInstaller) downloadOnce(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	resp, err := g.Client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %s", resp.Status)
	}

	tmp, err := os.CreateTemp("", "ptpanel-*.zip")
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	return tmp.Name(), nil
}

// safeExtract unpacks the zip into targetDir, rejecting entries that
// would escape it.
func safeExtract(zipPath string, targetDir string) error {
	reader, err := zip.OpenReader(zipPath)
	if err != nil {
		return err
	}
	defer reader.Close()

	root, err := filepath.Abs(targetDir)
	if err != nil {
		return err
	}
	for _, file := range reader.File {
		dest := filepath.Join(root, file.Name)
		if !strings.HasPrefix(dest, root+string(os.PathSeparator)) {
			return fmt.Errorf("unsafe zip entry: %s", file.Name)
		}
		if file.FileInfo().IsDir() {
			if err := os.MkdirAll(dest, 0o755); err != nil {
				return err
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return err
		}
		if err := extractFile(file, dest); err != nil {
			return err
		}
	}
	return nil
}

func extractFile(file *zip.File, dest string) error {
	src, err := file.Open()
	if err != nil {
		return err
	}
	defer src.Close()
	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, file.Mode())
	if err != nil {
		return err
	}
	defer out.Close()
	_, err = io.Copy(out, src)
	return err
}

// FindBinary locates the extracted tunnel executable under dir.
func FindBinary(dir string) (string, error) {
	var found string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && strings.Contains(strings.ToLower(info.Name()), binaryName) {
			found = path
			return filepath.SkipAll
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	if found == "" {
		return "", fmt.Errorf("%s binary not found after extraction", binaryName)
	}
	return found, nil
}
