package oralia

import (
	"context"
	"fmt"
	"time"

	"oralia-konnector/lib/htmlutil"
	"oralia-konnector/lib/textutil"

	"github.com/PuerkitoBio/goquery"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

var meter = otel.Meter("oralia-konnector/scrapers/oralia")

func parseName(s string) (any, error) {
	return textutil.NormalizeName(s), nil
}

func parseDate(s string) (any, error) {
	return textutil.ParseDocumentDate(s)
}

func (c *Client) accountSchema() htmlutil.Schema {
	return htmlutil.Schema{
		"name": htmlutil.Text{Selector: ".details h3", Parse: parseName},
		"url": htmlutil.Attr{Attr: "onclick", Parse: func(s string) (any, error) {
			return c.links.ParseAjaxLoadUrl(s)
		}},
	}
}

func (c *Client) dashboardSchema() htmlutil.Schema {
	return htmlutil.Schema{
		"url": htmlutil.Attr{Attr: "href", Parse: func(s string) (any, error) {
			return c.links.Resolve(s), nil
		}},
		"isDocuments": htmlutil.HasClass(documentsMarkerClass),
	}
}

func (c *Client) documentSchema() htmlutil.Schema {
	return htmlutil.Schema{
		"name": htmlutil.Text{Selector: "b", Parse: parseName},
		"date": htmlutil.Text{Selector: "small", Parse: parseDate},
		"url": htmlutil.Attr{Selector: "a", Attr: "href", Parse: func(s string) (any, error) {
			return c.links.Resolve(s), nil
		}},
	}
}

func scrape(doc *goquery.Document, container string, schema htmlutil.Schema) ([]htmlutil.Record, error) {
	records, err := htmlutil.Scrape(doc.Selection, container, schema)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}
	return records, nil
}

// Accounts lists the accounts on the account selection page.
func (c *Client) Accounts(ctx context.Context, session *Session) ([]Account, error) {
	doc, err := session.Get(ctx, c.links.SelectionAccountUrl())
	if err != nil {
		return nil, fmt.Errorf("account selection: %w", err)
	}

	records, err := scrape(doc, ".account-item", c.accountSchema())
	if err != nil {
		return nil, fmt.Errorf("account selection: %w", err)
	}

	accounts := make([]Account, len(records))
	for i, r := range records {
		navigationUrl := r.String("url")
		if navigationUrl == "" {
			return nil, fmt.Errorf("%w: account %q has no onclick action", ErrParse, r.String("name"))
		}
		accounts[i] = Account{
			Name:          r.String("name"),
			NavigationUrl: navigationUrl,
		}
	}
	return accounts, nil
}

// Dashboard follows the account's ajax action to its session-scoped
// dashboard and returns the navigation links found there.
func (c *Client) Dashboard(ctx context.Context, session *Session, account Account) ([]DashboardLink, error) {
	hash, err := session.PostText(ctx, account.NavigationUrl)
	if err != nil {
		return nil, fmt.Errorf("select account %s: %w", account.Name, err)
	}
	c.tel.ReportDebug("session hash", account.Name, hash)

	doc, err := session.Get(ctx, c.links.Resolve(hash))
	if err != nil {
		return nil, fmt.Errorf("dashboard of %s: %w", account.Name, err)
	}

	records, err := scrape(doc, "a.nav-link", c.dashboardSchema())
	if err != nil {
		return nil, fmt.Errorf("dashboard of %s: %w", account.Name, err)
	}

	links := make([]DashboardLink, len(records))
	for i, r := range records {
		links[i] = DashboardLink{
			Url:         r.String("url"),
			IsDocuments: r.Bool("isDocuments"),
		}
	}
	return links, nil
}

// AccountDocuments scrapes the documents page linked from the account's
// dashboard. An account without a documents link has no documents.
func (c *Client) AccountDocuments(ctx context.Context, session *Session, account Account) ([]Document, error) {
	ctx, span := tracer.Start(ctx, "client:AccountDocuments", trace.WithAttributes(
		attribute.String("account", account.Name),
	))
	defer span.End()

	links, err := c.Dashboard(ctx, session, account)
	if err != nil {
		span.SetStatus(codes.Error, "dashboard")
		return nil, err
	}

	var documentsLink *DashboardLink
	for i := range links {
		if links[i].IsDocuments {
			documentsLink = &links[i]
			break
		}
	}
	if documentsLink == nil {
		c.tel.ReportWarning(report_client_documents, "no documents link", account.Name)
		return nil, nil
	}

	doc, err := session.Get(ctx, documentsLink.Url)
	if err != nil {
		span.SetStatus(codes.Error, "documents page")
		return nil, fmt.Errorf("documents of %s: %w", account.Name, err)
	}

	records, err := scrape(doc, "#cREPMAIN ul li", c.documentSchema())
	if err != nil {
		span.SetStatus(codes.Error, "documents page")
		return nil, fmt.Errorf("documents of %s: %w", account.Name, err)
	}

	importDate := c.time.Now()
	documents := make([]Document, len(records))
	for i, r := range records {
		date, ok := r["date"].(time.Time)
		if !ok {
			return nil, fmt.Errorf("%w: document %q of %s has no date", ErrParse, r.String("name"), account.Name)
		}
		fileUrl := r.String("url")
		if fileUrl == "" {
			return nil, fmt.Errorf("%w: document %q of %s has no link", ErrParse, r.String("name"), account.Name)
		}

		documents[i] = Document{
			Vendor:   Vendor,
			Date:     date,
			Amount:   decimal.Zero,
			Currency: Currency,
			FileUrl:  fileUrl,
			Filename: textutil.ComposeFilename(date, Vendor, account.Name, r.String("name")),
			Metadata: Metadata{
				ImportDate: importDate,
				Version:    MetadataVersion,
			},
		}
	}
	span.SetAttributes(attribute.Int("documents", len(documents)))
	return documents, nil
}

// Documents walks every account sequentially and collects their documents.
func (c *Client) Documents(ctx context.Context, session *Session) ([]Document, error) {
	ctx, span := tracer.Start(ctx, "client:Documents")
	defer span.End()

	accounts, err := c.Accounts(ctx, session)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "accounts")
		c.tel.ReportBroken(report_client_documents, err)
		return nil, err
	}
	c.tel.ReportCount("client.accounts", int64(len(accounts)))

	var documents []Document
	for _, account := range accounts {
		accountDocuments, err := c.AccountDocuments(ctx, session, account)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "account documents")
			c.tel.ReportBroken(report_client_documents, err, account.Name)
			return nil, err
		}
		documents = append(documents, accountDocuments...)

		if c.opts.FirstAccountOnly {
			break
		}
	}

	c.tel.ReportCount(report_client_documents, int64(len(documents)))
	counter, err := meter.Int64Counter("oralia.documents", metric.WithDescription("documents scraped"))
	if err == nil {
		counter.Add(ctx, int64(len(documents)))
	}
	return documents, nil
}
