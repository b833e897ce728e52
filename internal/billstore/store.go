package billstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"oralia-konnector/internal/chrono"
	"oralia-konnector/internal/scrapers/oralia"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RunContext describes the run a batch of bills was scraped in.
type RunContext struct {
	Vendor string
	Login  string
	// Identifiers are the labels used to match bills against bank operations.
	Identifiers []string
}

type SaveResult struct {
	RunId    string
	Inserted int
	Skipped  int
	// New holds the documents that were not already stored.
	New []oralia.Document
}

type Bill struct {
	Id    string
	RunId string
	oralia.Document
}

type Store struct {
	db   *sql.DB
	time chrono.TimeAPI
}

func NewStore(database *sql.DB, clock chrono.TimeAPI) Store {
	if clock == nil {
		clock = chrono.NewStandardTime()
	}
	return Store{db: database, time: clock}
}

// SaveBills stores the documents of one run. A document whose filename is
// already stored for its vendor is skipped.
func (s Store) SaveBills(ctx context.Context, documents []oralia.Document, run RunContext) (SaveResult, error) {
	identifiers, err := json.Marshal(run.Identifiers)
	if err != nil {
		return SaveResult{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return SaveResult{}, err
	}
	defer tx.Rollback()

	result := SaveResult{RunId: uuid.NewString()}
	_, err = tx.ExecContext(
		ctx,
		"insert into run(id, vendor, login, identifiers, started_at) values (?, ?, ?, ?, ?)",
		result.RunId, run.Vendor, run.Login, string(identifiers), s.time.Now().Unix(),
	)
	if err != nil {
		return SaveResult{}, fmt.Errorf("insert run: %w", err)
	}

	for _, d := range documents {
		res, err := tx.ExecContext(
			ctx,
			`insert or ignore into bill(
				id, run_id, vendor, date, amount, currency,
				file_url, filename, import_date, version
			) values (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			uuid.NewString(), result.RunId, d.Vendor, d.Date.Unix(), d.Amount.String(), d.Currency,
			d.FileUrl, d.Filename, d.Metadata.ImportDate.Unix(), d.Metadata.Version,
		)
		if err != nil {
			return SaveResult{}, fmt.Errorf("insert bill %s: %w", d.Filename, err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return SaveResult{}, err
		}
		if affected == 0 {
			result.Skipped++
			continue
		}
		result.Inserted++
		result.New = append(result.New, d)
	}

	_, err = tx.ExecContext(
		ctx,
		"update run set inserted = ?, skipped = ? where id = ?",
		result.Inserted, result.Skipped, result.RunId,
	)
	if err != nil {
		return SaveResult{}, fmt.Errorf("update run: %w", err)
	}

	return result, tx.Commit()
}

// ListBills returns the stored bills of a vendor ordered by date.
func (s Store) ListBills(ctx context.Context, vendor string) ([]Bill, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`select id, run_id, vendor, date, amount, currency, file_url, filename, import_date, version
		from bill where vendor = ? order by date, filename`,
		vendor,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bills []Bill
	for rows.Next() {
		var b Bill
		var date, importDate int64
		var amount string
		err := rows.Scan(
			&b.Id, &b.RunId, &b.Vendor, &date, &amount, &b.Currency,
			&b.FileUrl, &b.Filename, &importDate, &b.Metadata.Version,
		)
		if err != nil {
			return nil, err
		}
		b.Amount, err = decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("bill %s amount: %w", b.Id, err)
		}
		b.Date = time.Unix(date, 0).UTC()
		b.Metadata.ImportDate = time.Unix(importDate, 0).UTC()
		bills = append(bills, b)
	}
	return bills, rows.Err()
}
