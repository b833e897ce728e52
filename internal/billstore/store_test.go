package billstore

import (
	"context"
	"testing"
	"time"

	"oralia-konnector/internal/chrono"
	"oralia-konnector/internal/scrapers/oralia"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func document(date time.Time, filename string) oralia.Document {
	return oralia.Document{
		Vendor:   oralia.Vendor,
		Date:     date,
		Amount:   decimal.Zero,
		Currency: oralia.Currency,
		FileUrl:  "https://www.myoralia.fr/extranet/docs/" + filename,
		Filename: filename,
		Metadata: oralia.Metadata{ImportDate: now, Version: oralia.MetadataVersion},
	}
}

func openStore(t *testing.T) Store {
	db, err := Open(context.Background(), ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return NewStore(db, chrono.FixedTime(now))
}

func TestStore(t *testing.T) {
	store := openStore(t)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	run := RunContext{
		Vendor:      oralia.Vendor,
		Login:       "someone@example.com",
		Identifiers: oralia.BankIdentifiers,
	}
	january := document(time.Date(2021, 1, 10, 0, 0, 0, 0, time.UTC), "2021-01-10_oralia_lot_12_releve")
	february := document(time.Date(2021, 2, 3, 0, 0, 0, 0, time.UTC), "2021-02-03_oralia_lot_12_appel")

	{
		bills, err := store.ListBills(ctx, oralia.Vendor)
		require.NoError(t, err)
		require.Len(t, bills, 0)
	}
	{
		result, err := store.SaveBills(ctx, []oralia.Document{february, january}, run)
		require.NoError(t, err)
		require.Equal(t, 2, result.Inserted)
		require.Equal(t, 0, result.Skipped)
		require.Len(t, result.New, 2)
		require.NotEmpty(t, result.RunId)
	}
	{
		march := document(time.Date(2021, 3, 1, 0, 0, 0, 0, time.UTC), "2021-03-01_oralia_lot_12_releve")
		result, err := store.SaveBills(ctx, []oralia.Document{january, march}, run)
		require.NoError(t, err)
		require.Equal(t, 1, result.Inserted)
		require.Equal(t, 1, result.Skipped)
		require.Equal(t, []oralia.Document{march}, result.New)
	}
	{
		bills, err := store.ListBills(ctx, oralia.Vendor)
		require.NoError(t, err)
		require.Len(t, bills, 3)

		documents := make([]oralia.Document, len(bills))
		for i, b := range bills {
			require.NotEmpty(t, b.Id)
			documents[i] = b.Document
		}
		if diff := cmp.Diff(
			[]oralia.Document{january, february},
			documents[:2],
			cmpopts.EquateApproxTime(0),
		); diff != "" {
			t.Fatalf("unexpected bills (-want +got):\n%s", diff)
		}
	}
	{
		bills, err := store.ListBills(ctx, "someone-else")
		require.NoError(t, err)
		require.Len(t, bills, 0)
	}
}

func TestRunRecorded(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	result, err := store.SaveBills(ctx, []oralia.Document{
		document(time.Date(2021, 1, 10, 0, 0, 0, 0, time.UTC), "a"),
	}, RunContext{Vendor: oralia.Vendor, Identifiers: []string{"oralia", "faure"}})
	require.NoError(t, err)

	var identifiers string
	var inserted, startedAt int64
	err = store.db.QueryRowContext(
		ctx,
		"select identifiers, inserted, started_at from run where id = ?",
		result.RunId,
	).Scan(&identifiers, &inserted, &startedAt)
	require.NoError(t, err)
	require.Equal(t, `["oralia","faure"]`, identifiers)
	require.Equal(t, int64(1), inserted)
	require.Equal(t, now.Unix(), startedAt)
}

func TestIsRemote(t *testing.T) {
	require.True(t, isRemote("libsql://bills.turso.io"))
	require.True(t, isRemote("https://bills.turso.io"))
	require.False(t, isRemote("bills.db"))
	require.False(t, isRemote(":memory:"))
}
