package publish

import (
	"context"
	"fmt"
	"io/fs"
	"net"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"

	"launchpage/internal/config"
)

// SFTPPublisher uploads sites over SFTP with password auth.
type SFTPPublisher struct {
	cfg config.SFTP
}

// NewSFTPPublisher creates an SFTP publisher from config. The password is
// read from the environment variable named by password_env.
func NewSFTPPublisher(cfg config.SFTP) *SFTPPublisher {
	return &SFTPPublisher{cfg: cfg}
}

// IsConfigured reports whether host, user, and password are all present.
func (p *SFTPPublisher) IsConfigured() bool {
	return p.cfg.Host != "" && p.cfg.User != "" && os.Getenv(p.cfg.PasswordEnv) != ""
}

// Publish uploads the site directory to remote_dir/<id>/ and returns the
// public URL.
func (p *SFTPPublisher) Publish(ctx context.Context, siteDir, id string) (string, error) {
	if !p.IsConfigured() {
		return "", fmt.Errorf("sftp publish not configured: need host, user, and %s", p.cfg.PasswordEnv)
	}

	addr := net.JoinHostPort(p.cfg.Host, fmt.Sprintf("%d", p.cfg.Port))
	sshCfg := &ssh.ClientConfig{
		User:            p.cfg.User,
		Auth:            []ssh.AuthMethod{ssh.Password(os.Getenv(p.cfg.PasswordEnv))},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         30 * time.Second,
	}

	// ssh.Dial has no context support; dial ourselves so the request
	// deadline applies to connection setup.
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return "", fmt.Errorf("dialing %s: %w", addr, err)
	}
	sshConn, chans, reqs, err := ssh.NewClientConn(conn, addr, sshCfg)
	if err != nil {
		conn.Close()
		return "", fmt.Errorf("ssh handshake with %s: %w", addr, err)
	}
	sshClient := ssh.NewClient(sshConn, chans, reqs)
	defer sshClient.Close()

	client, err := sftp.NewClient(sshClient)
	if err != nil {
		return "", fmt.Errorf("opening sftp session: %w", err)
	}
	defer client.Close()

	remoteRoot := path.Join(p.cfg.RemoteDir, id)
	if err := uploadDir(ctx, client, siteDir, remoteRoot); err != nil {
		return "", err
	}

	return joinURL(p.cfg.BaseURL, id), nil
}

func uploadDir(ctx context.Context, client *sftp.Client, localRoot, remoteRoot string) error {
	return filepath.WalkDir(localRoot, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		rel, err := filepath.Rel(localRoot, p)
		if err != nil {
			return err
		}
		remote := path.Join(remoteRoot, filepath.ToSlash(rel))
		if d.IsDir() {
			if err := client.MkdirAll(remote); err != nil {
				return fmt.Errorf("creating remote dir %s: %w", remote, err)
			}
			return nil
		}

		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		f, err := client.Create(remote)
		if err != nil {
			return fmt.Errorf("creating remote file %s: %w", remote, err)
		}
		if _, err := f.Write(data); err != nil {
			f.Close()
			return fmt.Errorf("writing remote file %s: %w", remote, err)
		}
		return f.Close()
	})
}

func joinURL(base, id string) string {
	if base == "" {
		return ""
	}
	return strings.TrimRight(base, "/") + "/" + id + "/"
}
