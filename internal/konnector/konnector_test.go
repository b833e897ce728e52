package konnector

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"oralia-konnector/internal/billstore"
	"oralia-konnector/internal/chrono"
	"oralia-konnector/internal/scrapers/oralia"
	"oralia-konnector/internal/scrapers/oralia/oraliatest"
	"oralia-konnector/internal/telemetry"

	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

var now = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

type recordingSaver struct {
	documents []oralia.Document
	run       billstore.RunContext
	err       error
}

func (s *recordingSaver) SaveBills(_ context.Context, documents []oralia.Document, run billstore.RunContext) (billstore.SaveResult, error) {
	if s.err != nil {
		return billstore.SaveResult{}, s.err
	}
	s.documents = documents
	s.run = run
	return billstore.SaveResult{Inserted: len(documents), New: documents}, nil
}

func newKonnector(t *testing.T, extranet *oraliatest.Extranet, saver Saver) Konnector {
	server := extranet.Start(t)
	client := oralia.NewClient(oralia.ClientOptions{
		BaseUrl:           server.URL,
		RequestsPerSecond: rate.Inf,
		Time:              chrono.FixedTime(now),
	}, &telemetry.Recorder{})
	return New(client, saver, &telemetry.Recorder{})
}

func TestRun(t *testing.T) {
	saver := &recordingSaver{}
	k := newKonnector(t, oraliatest.New(), saver)

	result, err := k.Run(context.Background(), Options{
		Login:    oraliatest.Login,
		Password: oraliatest.Password,
	})
	require.NoError(t, err)
	require.Equal(t, Result{Documents: 2, Inserted: 2}, result)

	require.Len(t, saver.documents, 2)
	require.Equal(t, billstore.RunContext{
		Vendor:      "oralia",
		Login:       oraliatest.Login,
		Identifiers: []string{"oralia", "faure"},
	}, saver.run)
}

func TestRunBadCredentials(t *testing.T) {
	extranet := oraliatest.New()
	extranet.LoginResult = "login_two_scripts.html"
	saver := &recordingSaver{}
	k := newKonnector(t, extranet, saver)

	_, err := k.Run(context.Background(), Options{
		Login:    oraliatest.Login,
		Password: "wrong",
	})
	require.True(t, errors.Is(err, oralia.ErrAuth))
	require.Nil(t, saver.documents)
}

func TestRunSaveError(t *testing.T) {
	saver := &recordingSaver{err: errors.New("disk full")}
	k := newKonnector(t, oraliatest.New(), saver)

	_, err := k.Run(context.Background(), Options{
		Login:    oraliatest.Login,
		Password: oraliatest.Password,
	})
	require.ErrorContains(t, err, "disk full")
}

func TestRunWithStoreAndDownloads(t *testing.T) {
	db, err := billstore.Open(context.Background(), ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	store := billstore.NewStore(db, chrono.FixedTime(now))

	dir := t.TempDir()
	extranet := oraliatest.New()
	k := newKonnector(t, extranet, store)

	opts := Options{
		Login:       oraliatest.Login,
		Password:    oraliatest.Password,
		DownloadDir: dir,
	}
	result, err := k.Run(context.Background(), opts)
	require.NoError(t, err)
	require.Equal(t, Result{Documents: 2, Inserted: 2, Downloaded: 2}, result)

	contents, err := os.ReadFile(filepath.Join(dir, "2021-01-10_oralia_lot_12_relevé_janvier"))
	require.NoError(t, err)
	require.Equal(t, "%PDF-1.4 document 1", string(contents))

	// a second full scan finds the same documents and stores nothing new
	result, err = k.Run(context.Background(), opts)
	require.NoError(t, err)
	require.Equal(t, Result{Documents: 2, Skipped: 2}, result)
}

func TestRunDownloadsFilesMissingFromEarlierRun(t *testing.T) {
	db, err := billstore.Open(context.Background(), ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	store := billstore.NewStore(db, chrono.FixedTime(now))
	k := newKonnector(t, oraliatest.New(), store)

	// a regular file in the way makes the download dir impossible to create
	blocker := filepath.Join(t.TempDir(), "blocker")
	err = os.WriteFile(blocker, nil, 0666)
	require.NoError(t, err)

	result, err := k.Run(context.Background(), Options{
		Login:       oraliatest.Login,
		Password:    oraliatest.Password,
		DownloadDir: filepath.Join(blocker, "docs"),
	})
	require.ErrorContains(t, err, "download dir")
	require.Equal(t, Result{Documents: 2, Inserted: 2}, result)

	dir := t.TempDir()
	result, err = k.Run(context.Background(), Options{
		Login:       oraliatest.Login,
		Password:    oraliatest.Password,
		DownloadDir: dir,
	})
	require.NoError(t, err)
	require.Equal(t, Result{Documents: 2, Skipped: 2, Downloaded: 2}, result)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 2)
}
