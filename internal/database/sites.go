package database

import (
	"database/sql"
	"fmt"
)

// Site statuses.
const (
	StatusGenerated = "generated"
	StatusFallback  = "fallback"
)

// Site is one generated landing page record.
type Site struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Ticker       string  `json:"ticker,omitempty"`
	Description  string  `json:"description,omitempty"`
	Attempts     int     `json:"attempts"`
	Status       string  `json:"status"`
	PublishedURL *string `json:"published_url,omitempty"`
	CreatedAt    string  `json:"created_at"`
}

// InsertSite records a generated site.
func (db *DB) InsertSite(id, name, ticker, description string, attempts int, status string) error {
	_, err := db.conn.Exec(
		`INSERT INTO sites (id, name, ticker, description, attempts, status) VALUES (?, ?, ?, ?, ?, ?)`,
		id, name, ticker, description, attempts, status,
	)
	if err != nil {
		return fmt.Errorf("inserting site %s: %w", id, err)
	}
	return nil
}

// GetSite returns a site by ID, or nil if it does not exist.
func (db *DB) GetSite(id string) (*Site, error) {
	row := db.conn.QueryRow(
		`SELECT id, name, ticker, description, attempts, status, published_url, created_at FROM sites WHERE id = ?`,
		id,
	)
	s, err := scanSite(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting site %s: %w", id, err)
	}
	return s, nil
}

// ListSites returns the most recent sites, newest first.
func (db *DB) ListSites(limit int) ([]Site, error) {
	rows, err := db.conn.Query(
		`SELECT id, name, ticker, description, attempts, status, published_url, created_at
		 FROM sites ORDER BY created_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing sites: %w", err)
	}
	defer rows.Close()

	var sites []Site
	for rows.Next() {
		s, err := scanSite(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning site: %w", err)
		}
		sites = append(sites, *s)
	}
	return sites, rows.Err()
}

// SetPublishedURL records where a site was published.
func (db *DB) SetPublishedURL(id, url string) error {
	res, err := db.conn.Exec(`UPDATE sites SET published_url = ? WHERE id = ?`, url, id)
	if err != nil {
		return fmt.Errorf("updating site %s: %w", id, err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("site %s not found", id)
	}
	return nil
}

// Stats summarizes the site index.
type Stats struct {
	TotalSites     int
	FallbackSites  int
	PublishedSites int
}

// GetStats returns counts over the site index.
func (db *DB) GetStats() (*Stats, error) {
	var s Stats
	err := db.conn.QueryRow(`
		SELECT
			COUNT(*),
			COUNT(CASE WHEN status = 'fallback' THEN 1 END),
			COUNT(published_url)
		FROM sites
	`).Scan(&s.TotalSites, &s.FallbackSites, &s.PublishedSites)
	if err != nil {
		return nil, fmt.Errorf("getting stats: %w", err)
	}
	return &s, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSite(row scanner) (*Site, error) {
	var s Site
	err := row.Scan(&s.ID, &s.Name, &s.Ticker, &s.Description, &s.Attempts, &s.Status, &s.PublishedURL, &s.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
