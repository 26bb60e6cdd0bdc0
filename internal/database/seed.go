// Chinook Dashboard - Music Store Sales Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chinookdash

package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/tomtom215/chinookdash/internal/logging"
)

// chinookSchema is the subset of the Chinook schema the dashboard reads.
var chinookSchema = []string{
	`CREATE TABLE IF NOT EXISTS Genre (
		GenreId INTEGER PRIMARY KEY,
		Name VARCHAR
	)`,
	`CREATE TABLE IF NOT EXISTS Artist (
		ArtistId INTEGER PRIMARY KEY,
		Name VARCHAR
	)`,
	`CREATE TABLE IF NOT EXISTS Album (
		AlbumId INTEGER PRIMARY KEY,
		Title VARCHAR NOT NULL,
		ArtistId INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS Track (
		TrackId INTEGER PRIMARY KEY,
		Name VARCHAR NOT NULL,
		AlbumId INTEGER,
		GenreId INTEGER,
		Composer VARCHAR,
		Milliseconds INTEGER NOT NULL,
		UnitPrice DECIMAL(10,2) NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS Customer (
		CustomerId INTEGER PRIMARY KEY,
		FirstName VARCHAR NOT NULL,
		LastName VARCHAR NOT NULL,
		Country VARCHAR,
		Email VARCHAR NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS Invoice (
		InvoiceId INTEGER PRIMARY KEY,
		CustomerId INTEGER NOT NULL,
		InvoiceDate TIMESTAMP NOT NULL,
		BillingCity VARCHAR,
		BillingCountry VARCHAR,
		Total DECIMAL(10,2) NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS InvoiceLine (
		InvoiceLineId INTEGER PRIMARY KEY,
		InvoiceId INTEGER NOT NULL,
		TrackId INTEGER NOT NULL,
		UnitPrice DECIMAL(10,2) NOT NULL,
		Quantity INTEGER NOT NULL
	)`,
}

type seedTrack struct {
	name    string
	album   int
	genre   int
	millis  int
	cents   int
	hasSale bool
}

// SeedDemoData creates the Chinook tables and fills them with a small
// deterministic store history from Jan 2009 to Dec 2013. The last genre,
// artist and album have catalog entries but are never sold.
func (db *DB) SeedDemoData(ctx context.Context) error {
	logging.Info().Msg("Seeding database with demo data...")

	for _, stmt := range chinookSchema {
		if _, err := db.conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}

	genres := []string{"Rock", "Jazz", "Metal", "Blues", "Latin", "Classical"}
	artists := []string{"AC/DC", "Miles Davis", "Metallica", "B.B. King", "Caetano Veloso", "Aerosmith", "Yo-Yo Ma"}
	albums := []struct {
		title  string
		artist int
	}{
		{"Back in Black", 1},
		{"Kind of Blue", 2},
		{"Master of Puppets", 3},
		{"Live at the Regal", 4},
		{"Prenda Minha", 5},
		{"Toys in the Attic", 6},
		{"Bach: Cello Suites", 7},
	}
	tracks := []seedTrack{
		{"Hells Bells", 1, 1, 312000, 99, true},
		{"Shoot to Thrill", 1, 1, 317000, 99, true},
		{"Back in Black", 1, 1, 255000, 99, true},
		{"So What", 2, 2, 562000, 99, true},
		{"Blue in Green", 2, 2, 337000, 99, true},
		{"Freddie Freeloader", 2, 2, 589000, 99, true},
		{"Battery", 3, 3, 312000, 99, true},
		{"Master of Puppets", 3, 3, 515000, 99, true},
		{"Orion", 3, 3, 507000, 99, true},
		{"Every Day I Have the Blues", 4, 4, 163000, 99, true},
		{"Sweet Little Angel", 4, 4, 249000, 99, true},
		{"Sozinho", 5, 5, 226000, 99, true},
		{"Sampa", 5, 5, 250000, 99, true},
		{"Walk This Way", 6, 1, 220000, 199, true},
		{"Sweet Emotion", 6, 1, 274000, 199, true},
		{"Toys in the Attic", 6, 1, 187000, 199, false},
		{"Prelude in G Major", 7, 6, 152000, 99, false},
		{"Sarabande", 7, 6, 240000, 99, false},
	}
	customers := []struct {
		first, last, city, country string
	}{
		{"Frank", "Harris", "Mountain View", "USA"},
		{"Jack", "Smith", "Redmond", "USA"},
		{"Michelle", "Brooks", "New York", "USA"},
		{"François", "Tremblay", "Montréal", "Canada"},
		{"Mark", "Philips", "Edmonton", "Canada"},
		{"Luís", "Gonçalves", "São José dos Campos", "Brazil"},
		{"Camille", "Bernard", "Paris", "France"},
		{"Leonie", "Köhler", "Stuttgart", "Germany"},
		{"Hannah", "Schneider", "Berlin", "Germany"},
		{"Emma", "Jones", "London", "United Kingdom"},
		{"Manoj", "Pareek", "Delhi", "India"},
		{"Mark", "Taylor", "Sydney", "Australia"},
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin seed transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }() //nolint:errcheck // no-op after commit

	exec := func(what, query string, args ...interface{}) error {
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to seed %s: %w", what, err)
		}
		return nil
	}

	for i, name := range genres {
		if err := exec("genre", "INSERT INTO Genre VALUES (?, ?)", i+1, name); err != nil {
			return err
		}
	}
	for i, name := range artists {
		if err := exec("artist", "INSERT INTO Artist VALUES (?, ?)", i+1, name); err != nil {
			return err
		}
	}
	for i, a := range albums {
		if err := exec("album", "INSERT INTO Album VALUES (?, ?, ?)", i+1, a.title, a.artist); err != nil {
			return err
		}
	}
	var sellable []int
	for i, t := range tracks {
		if err := exec("track", "INSERT INTO Track VALUES (?, ?, ?, ?, NULL, ?, CAST(? AS DECIMAL(10,2)))",
			i+1, t.name, t.album, t.genre, t.millis, centsToDecimal(t.cents)); err != nil {
			return err
		}
		if t.hasSale {
			sellable = append(sellable, i)
		}
	}
	for i, c := range customers {
		email := fmt.Sprintf("customer%02d@chinook.example", i+1)
		if err := exec("customer", "INSERT INTO Customer VALUES (?, ?, ?, ?, ?)", i+1, c.first, c.last, c.country, email); err != nil {
			return err
		}
	}

	numInvoices, numLines, err := seedInvoices(ctx, tx, len(customers), sellable, tracks, func(i int) (string, string) {
		return customers[i].city, customers[i].country
	})
	if err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit seed transaction: %w", err)
	}

	logging.Info().
		Int("genres", len(genres)).
		Int("artists", len(artists)).
		Int("tracks", len(tracks)).
		Int("customers", len(customers)).
		Int("invoices", numInvoices).
		Int("invoice_lines", numLines).
		Msg("Demo data seeded")
	return nil
}

// seedInvoices writes two invoices per month for 60 months. Customers are
// visited round-robin with a stride so everyone returns at a different
// cadence; lines pick sellable tracks in a rotating pattern.
func seedInvoices(ctx context.Context, tx *sql.Tx, numCustomers int, sellable []int, tracks []seedTrack,
	billing func(i int) (city, country string)) (int, int, error) {

	const months = 60
	base := time.Date(2009, time.January, 1, 0, 0, 0, 0, time.UTC)

	invoiceID, lineID := 0, 0
	for m := 0; m < months; m++ {
		for slot := 0; slot < 2; slot++ {
			seq := m*2 + slot
			cust := (seq*5 + m/12) % numCustomers
			day := 1 + (seq*7)%27
			date := base.AddDate(0, m, day-1)

			nLines := 1 + (m+slot*3)%4
			var total int
			lines := make([]int, 0, nLines)
			for j := 0; j < nLines; j++ {
				idx := sellable[(seq*3+j*4)%len(sellable)]
				lines = append(lines, idx)
				total += tracks[idx].cents
			}

			invoiceID++
			city, country := billing(cust)
			if _, err := tx.ExecContext(ctx, "INSERT INTO Invoice VALUES (?, ?, ?, ?, ?, CAST(? AS DECIMAL(10,2)))",
				invoiceID, cust+1, date, city, country, centsToDecimal(total)); err != nil {
				return 0, 0, fmt.Errorf("failed to seed invoice %d: %w", invoiceID, err)
			}
			for _, idx := range lines {
				lineID++
				if _, err := tx.ExecContext(ctx, "INSERT INTO InvoiceLine VALUES (?, ?, ?, CAST(? AS DECIMAL(10,2)), 1)",
					lineID, invoiceID, idx+1, centsToDecimal(tracks[idx].cents)); err != nil {
					return 0, 0, fmt.Errorf("failed to seed invoice line %d: %w", lineID, err)
				}
			}
		}
	}
	return invoiceID, lineID, nil
}

// centsToDecimal renders cents as an exact decimal string.
func centsToDecimal(cents int) string {
	return fmt.Sprintf("%d.%02d", cents/100, cents%100)
}
