// Package site persists generated sites and uploaded assets on disk.
//
// Layout under the data directory:
//
//	sites/<id>/index.html
//	sites/<id>/assets/<file>
//	uploads/<timestamped file>
package site

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"launchpage/internal/brief"
	"launchpage/internal/page"
)

// MaxUploadBytes caps a single asset upload.
const MaxUploadBytes = 8 << 20

var allowedExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".svg":  true,
	".webp": true,
}

// Store manages the on-disk site and upload directories.
type Store struct {
	dataDir string
}

// NewStore creates the store, making its directories if needed.
func NewStore(dataDir string) (*Store, error) {
	s := &Store{dataDir: dataDir}
	for _, dir := range []string{s.SitesDir(), s.UploadsDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	return s, nil
}

// SitesDir returns the directory holding generated sites.
func (s *Store) SitesDir() string { return filepath.Join(s.dataDir, "sites") }

// UploadsDir returns the flat directory holding uploaded assets.
func (s *Store) UploadsDir() string { return filepath.Join(s.dataDir, "uploads") }

// SitePath returns the directory of one site.
func (s *Store) SitePath(id string) string { return filepath.Join(s.SitesDir(), id) }

// SaveUpload stores an uploaded asset under a timestamped, collision-avoiding
// name and returns its serving path (/uploads/<name>).
func (s *Store) SaveUpload(filename string, r io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedExtensions[ext] {
		return "", fmt.Errorf("unsupported asset type %q", ext)
	}

	stamp := strings.ReplaceAll(time.Now().UTC().Format("20060102T150405.000000000"), ".", "")
	base := sanitizeFilename(strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename)))
	name := fmt.Sprintf("%s_%s%s", stamp, base, ext)

	dst := filepath.Join(s.UploadsDir(), name)
	f, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("creating upload: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, io.LimitReader(r, MaxUploadBytes+1)); err != nil {
		os.Remove(dst)
		return "", fmt.Errorf("writing upload: %w", err)
	}
	if info, err := f.Stat(); err == nil && info.Size() > MaxUploadBytes {
		os.Remove(dst)
		return "", fmt.Errorf("upload exceeds %d bytes", MaxUploadBytes)
	}

	return "/uploads/" + name, nil
}

// SaveSite resolves the brief's asset references, splices them into the
// document, and writes sites/<id>/index.html. Uploaded assets are copied
// into the site's assets/ folder and referenced relatively, so the site
// directory is self-contained (and so ZIP export and remote publish carry
// everything they need). Returns the final document.
func (s *Store) SaveSite(id, doc string, b brief.Brief) (string, error) {
	dir := s.SitePath(id)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating site directory: %w", err)
	}

	logoSrc, err := s.resolveAsset(dir, b.Logo)
	if err != nil {
		return "", err
	}
	bgSrc, err := s.resolveAsset(dir, b.Background)
	if err != nil {
		return "", err
	}

	final := page.InjectAssets(doc, logoSrc, bgSrc)
	if err := os.WriteFile(filepath.Join(dir, "index.html"), []byte(final), 0o644); err != nil {
		return "", fmt.Errorf("writing index.html: %w", err)
	}
	return final, nil
}

// resolveAsset maps a brief asset reference to the src the document should
// use. Data URIs pass through; /uploads/ paths are copied into the site's
// assets/ folder and rewritten relative.
func (s *Store) resolveAsset(siteDir, ref string) (string, error) {
	switch {
	case ref == "":
		return "", nil
	case strings.HasPrefix(ref, "data:image/"):
		return ref, nil
	case strings.HasPrefix(ref, "/uploads/"):
		name := filepath.Base(ref)
		src := filepath.Join(s.UploadsDir(), name)
		assetsDir := filepath.Join(siteDir, "assets")
		if err := os.MkdirAll(assetsDir, 0o755); err != nil {
			return "", fmt.Errorf("creating assets directory: %w", err)
		}
		if err := copyFile(src, filepath.Join(assetsDir, name)); err != nil {
			return "", fmt.Errorf("copying asset %s: %w", name, err)
		}
		return "assets/" + name, nil
	default:
		return "", fmt.Errorf("unresolvable asset reference %q", ref)
	}
}

// LoadSite reads a site's index.html.
func (s *Store) LoadSite(id string) (string, error) {
	data, err := os.ReadFile(filepath.Join(s.SitePath(id), "index.html"))
	if err != nil {
		return "", fmt.Errorf("reading site %s: %w", id, err)
	}
	return string(data), nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}

// sanitizeFilename keeps filenames shell- and URL-safe.
func sanitizeFilename(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, name)
}
