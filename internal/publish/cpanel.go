package publish

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"io/fs"
	"mime/multipart"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"time"

	"launchpage/internal/config"
)

// CPanelPublisher uploads sites through the cPanel UAPI Fileman module.
type CPanelPublisher struct {
	cfg     config.CPanel
	client  *http.Client
	baseURL string
}

// NewCPanelPublisher creates a cPanel publisher from config. The API token
// is read from the environment variable named by token_env.
func NewCPanelPublisher(cfg config.CPanel) *CPanelPublisher {
	return &CPanelPublisher{
		cfg:     cfg,
		client:  &http.Client{Timeout: 60 * time.Second},
		baseURL: fmt.Sprintf("https://%s:2083/execute", cfg.Host),
	}
}

// IsConfigured reports whether host, user, and token are all present.
func (p *CPanelPublisher) IsConfigured() bool {
	return p.cfg.Host != "" && p.cfg.User != "" && os.Getenv(p.cfg.TokenEnv) != ""
}

// Publish uploads every file in the site directory to docroot/<id>/ via
// Fileman/upload_files and returns the public URL.
func (p *CPanelPublisher) Publish(ctx context.Context, siteDir, id string) (string, error) {
	if !p.IsConfigured() {
		return "", fmt.Errorf("cpanel publish not configured: need host, user, and %s", p.cfg.TokenEnv)
	}

	err := filepath.WalkDir(siteDir, func(lp string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		rel, err := filepath.Rel(siteDir, lp)
		if err != nil {
			return err
		}
		remoteDir := path.Join(p.cfg.DocRoot, id, path.Dir(filepath.ToSlash(rel)))
		return p.uploadFile(ctx, lp, remoteDir)
	})
	if err != nil {
		return "", err
	}

	return joinURL(p.cfg.BaseURL, id), nil
}

func (p *CPanelPublisher) uploadFile(ctx context.Context, localPath, remoteDir string) error {
	data, err := os.ReadFile(localPath)
	if err != nil {
		return err
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if err := mw.WriteField("dir", remoteDir); err != nil {
		return err
	}
	part, err := mw.CreateFormFile("file-1", filepath.Base(localPath))
	if err != nil {
		return err
	}
	if _, err := part.Write(data); err != nil {
		return err
	}
	if err := mw.Close(); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", p.baseURL+"/Fileman/upload_files", &body)
	if err != nil {
		return fmt.Errorf("creating upload request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", fmt.Sprintf("cpanel %s:%s", p.cfg.User, os.Getenv(p.cfg.TokenEnv)))

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("cpanel upload error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("cpanel upload returned %d: %s", resp.StatusCode, string(respBody))
	}
	return nil
}
