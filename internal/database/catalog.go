// Chinook Dashboard - Music Store Sales Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chinookdash

package database

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"time"
)

// catalogSeparator joins multi-valued annotation columns. Unit separator
// never occurs in Chinook names.
const catalogSeparator = "\x1f"

var catalogTables = []struct {
	name string
	ddl  string
}{
	{
		name: "genre_catalog",
		ddl: `CREATE TEMP TABLE IF NOT EXISTS genre_catalog AS
			SELECT g.Name AS genre, COUNT(t.TrackId) AS num_tracks
			FROM Genre g
			LEFT JOIN Track t ON t.GenreId = g.GenreId
			GROUP BY g.Name`,
	},
	{
		name: "artist_catalog",
		ddl: `CREATE TEMP TABLE IF NOT EXISTS artist_catalog AS
			SELECT ar.Name AS artist, COUNT(t.TrackId) AS num_tracks
			FROM Artist ar
			LEFT JOIN Album al ON al.ArtistId = ar.ArtistId
			LEFT JOIN Track t ON t.AlbumId = al.AlbumId
			GROUP BY ar.Name`,
	},
}

// EnsureCatalog creates the genre and artist catalog tables on q if they
// do not exist yet. The tables are static for the life of the connection.
func EnsureCatalog(ctx context.Context, q Querier) error {
	for _, tbl := range catalogTables {
		if _, err := q.ExecContext(ctx, tbl.ddl); err != nil {
			return fmt.Errorf("failed to create %s: %w", tbl.name, err)
		}
	}
	return nil
}

// CatalogReady reports whether both catalog tables exist on q.
func CatalogReady(ctx context.Context, q Querier) (bool, error) {
	var n int
	err := q.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM duckdb_tables()
		WHERE temporary AND table_name IN ('genre_catalog', 'artist_catalog')`).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to check catalog tables: %w", err)
	}
	return n == len(catalogTables), nil
}

// AnnotatedInvoice is one working-set row with its catalog metadata.
type AnnotatedInvoice struct {
	CustomerID     int64     `json:"customer_id"`
	Date           time.Time `json:"date"`
	InvoiceID      int64     `json:"invoice_id"`
	BillingCountry string    `json:"billing_country"`
	Genres         []string  `json:"genres"`
	Artists        []string  `json:"artists"`

	// Largest catalog among the invoice's genres and artists.
	GenreCatalogTracks  *int64 `json:"genre_catalog_tracks,omitempty"`
	ArtistCatalogTracks *int64 `json:"artist_catalog_tracks,omitempty"`
}

const annotateSQL = `
WITH lines AS (
    SELECT
        il.InvoiceId,
        g.Name AS genre,
        ar.Name AS artist,
        gc.num_tracks AS genre_tracks,
        ac.num_tracks AS artist_tracks
    FROM InvoiceLine il
    JOIN Track t ON il.TrackId = t.TrackId
    JOIN Album al ON t.AlbumId = al.AlbumId
    JOIN Artist ar ON al.ArtistId = ar.ArtistId
    JOIN Genre g ON t.GenreId = g.GenreId
    LEFT JOIN genre_catalog gc ON gc.genre = g.Name
    LEFT JOIN artist_catalog ac ON ac.artist = ar.Name
    WHERE il.InvoiceId IN (SELECT InvoiceId FROM filtered_invoices)
),
per_invoice AS (
    SELECT
        InvoiceId,
        STRING_AGG(DISTINCT genre, chr(31)) AS genres,
        STRING_AGG(DISTINCT artist, chr(31)) AS artists,
        MAX(genre_tracks) AS genre_tracks,
        MAX(artist_tracks) AS artist_tracks
    FROM lines
    GROUP BY InvoiceId
)
SELECT
    fi.CustomerId,
    fi.dt,
    fi.InvoiceId,
    i.BillingCountry,
    p.genres,
    p.artists,
    p.genre_tracks,
    p.artist_tracks
FROM filtered_invoices fi
LEFT JOIN Invoice i ON i.InvoiceId = fi.InvoiceId
LEFT JOIN per_invoice p ON p.InvoiceId = fi.InvoiceId
ORDER BY fi.CustomerId, fi.dt, fi.InvoiceId
`

// AnnotateWorkingSet returns every working-set row joined to its invoice
// country and catalog metadata. Only LEFT JOINs on unique keys are used,
// so the output has exactly one row per working-set row.
func AnnotateWorkingSet(ctx context.Context, q Querier) ([]AnnotatedInvoice, error) {
	rows, err := q.QueryContext(ctx, annotateSQL)
	if err != nil {
		return nil, fmt.Errorf("failed to annotate working set: %w", err)
	}
	defer closeQuietly(rows)

	var out []AnnotatedInvoice
	for rows.Next() {
		var (
			a                   AnnotatedInvoice
			country             sql.NullString
			genres, artists     sql.NullString
			genreTrk, artistTrk sql.NullInt64
		)
		if err := rows.Scan(&a.CustomerID, &a.Date, &a.InvoiceID, &country, &genres, &artists, &genreTrk, &artistTrk); err != nil {
			return nil, fmt.Errorf("failed to scan annotated row: %w", err)
		}
		a.BillingCountry = country.String
		a.Genres = splitAnnotation(genres)
		a.Artists = splitAnnotation(artists)
		a.GenreCatalogTracks = nullInt64Ptr(genreTrk)
		a.ArtistCatalogTracks = nullInt64Ptr(artistTrk)
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating annotated rows: %w", err)
	}
	return out, nil
}

// CountAnnotated returns the row count of the annotated working set.
func CountAnnotated(ctx context.Context, q Querier) (int64, error) {
	var n int64
	if err := q.QueryRowContext(ctx, "SELECT COUNT(*) FROM ("+annotateSQL+")").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count annotated rows: %w", err)
	}
	return n, nil
}

func splitAnnotation(s sql.NullString) []string {
	if !s.Valid || s.String == "" {
		return nil
	}
	parts := strings.Split(s.String, catalogSeparator)
	sort.Strings(parts)
	return parts
}
