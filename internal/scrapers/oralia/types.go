package oralia

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	Vendor         = "oralia"
	Currency       = "EUR"
	DefaultBaseUrl = "https://www.myoralia.fr"

	// MetadataVersion is bumped whenever the shape of Document changes.
	MetadataVersion = 1

	documentsMarkerClass = "**MESDOCUMENTS**"
)

// BankIdentifiers are the labels the vendor uses on bank statements, they are
// stored alongside bills so that bank operations can be matched to them.
var BankIdentifiers = []string{"oralia", "faure"}

type Account struct {
	// Name is normalized with textutil.NormalizeName.
	Name          string
	NavigationUrl string
}

type DashboardLink struct {
	Url         string
	IsDocuments bool
}

type Metadata struct {
	ImportDate time.Time
	Version    int
}

// Document is a downloadable bill or statement. Amount is always zero, the
// portal does not expose amounts.
type Document struct {
	Vendor   string
	Date     time.Time
	Amount   decimal.Decimal
	Currency string
	FileUrl  string
	Filename string
	Metadata Metadata
}
