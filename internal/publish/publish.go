// Package publish pushes generated sites to remote hosts.
package publish

import "context"

// Publisher uploads a site directory to a remote host and returns the
// public URL it will be served from.
type Publisher interface {
	Publish(ctx context.Context, siteDir, id string) (string, error)
	IsConfigured() bool
}
