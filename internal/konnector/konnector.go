// Package konnector sequences one scraping run: login, walk the extranet,
// hand the documents to storage and optionally download their files.
package konnector

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"oralia-konnector/internal/assert"
	"oralia-konnector/internal/billstore"
	"oralia-konnector/internal/scrapers/oralia"
	"oralia-konnector/internal/telemetry"
)

const report_konnector_download = "konnector.download"

// Saver persists the documents of a run.
type Saver interface {
	SaveBills(ctx context.Context, documents []oralia.Document, run billstore.RunContext) (billstore.SaveResult, error)
}

type Options struct {
	Login    string
	Password string
	// DownloadDir receives the file of every scraped document that is not on
	// disk yet, nothing is downloaded when it is empty.
	DownloadDir string
}

type Result struct {
	Documents  int
	Inserted   int
	Skipped    int
	Downloaded int
}

type Konnector struct {
	client *oralia.Client
	saver  Saver
	tel    telemetry.API
}

func New(client *oralia.Client, saver Saver, tel telemetry.API) Konnector {
	assert.NotNil(client)
	assert.NotNil(saver)
	assert.NotNil(tel)

	return Konnector{
		client: client,
		saver:  saver,
		tel:    telemetry.NewScopedAPI("konnector", tel),
	}
}

// Run performs a full scan, any error aborts the run.
func (k Konnector) Run(ctx context.Context, opts Options) (Result, error) {
	slog.InfoContext(ctx, "authenticating")
	session, err := k.client.Login(ctx, opts.Login, opts.Password)
	if err != nil {
		return Result{}, err
	}
	slog.InfoContext(ctx, "successfully logged in")

	slog.InfoContext(ctx, "fetching the list of documents")
	documents, err := k.client.Documents(ctx, session)
	if err != nil {
		return Result{}, err
	}

	slog.InfoContext(ctx, "saving documents", "count", len(documents))
	saved, err := k.saver.SaveBills(ctx, documents, billstore.RunContext{
		Vendor:      oralia.Vendor,
		Login:       opts.Login,
		Identifiers: oralia.BankIdentifiers,
	})
	if err != nil {
		return Result{}, fmt.Errorf("save bills: %w", err)
	}
	for _, d := range saved.New {
		slog.InfoContext(ctx, "new document", "filename", d.Filename, "date", d.Date)
	}

	result := Result{
		Documents: len(documents),
		Inserted:  saved.Inserted,
		Skipped:   saved.Skipped,
	}
	if opts.DownloadDir == "" {
		return result, nil
	}

	// files missing from an earlier run are fetched again, the store only
	// knows about rows
	result.Downloaded, err = k.download(ctx, session, documents, opts.DownloadDir)
	if err != nil {
		return result, err
	}
	return result, nil
}

func (k Konnector) download(ctx context.Context, session *oralia.Session, documents []oralia.Document, dir string) (int, error) {
	err := os.MkdirAll(dir, 0777)
	if err != nil {
		return 0, fmt.Errorf("download dir: %w", err)
	}

	downloaded := 0
	for _, d := range documents {
		path := filepath.Join(dir, d.Filename)
		_, err := os.Stat(path)
		if err == nil {
			k.tel.ReportDebug("file already exists", path)
			continue
		}
		if !errors.Is(err, os.ErrNotExist) {
			return downloaded, err
		}

		err = session.Download(ctx, d.FileUrl, path)
		if err != nil {
			k.tel.ReportBroken(report_konnector_download, err, d.FileUrl)
			return downloaded, fmt.Errorf("download %s: %w", d.Filename, err)
		}
		downloaded++
	}
	k.tel.ReportCount(report_konnector_download, int64(downloaded))
	return downloaded, nil
}
