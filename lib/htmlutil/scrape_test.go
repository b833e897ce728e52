package htmlutil

import (
	"errors"
	"strconv"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

const fixture = `
<html><body>
<ul id="items">
	<li class="item featured" data-id="1"><b> First </b><a href="one.pdf">dl</a></li>
	<li class="item" data-id="2"><b>Second</b></li>
	<li class="item" data-id="x"><a>no href</a></li>
</ul>
<form id="login" action="/submit">
	<input type="hidden" name="token" value="abc">
	<input type="text" name="email">
	<input type="checkbox" name="remember">
	<input type="checkbox" name="terms" checked>
	<input type="submit" name="go" value="Go">
	<select name="lang"><option value="en">en</option><option value="fr" selected>fr</option></select>
</form>
</body></html>`

func parseFixture(t *testing.T) *goquery.Document {
	doc, err := ParseDocument([]byte(fixture))
	if err != nil {
		t.Fatal(err)
	}
	return doc
}

func TestScrape(t *testing.T) {
	doc := parseFixture(t)

	records, err := Scrape(doc.Selection, "#items li", Schema{
		"name": Text{Selector: "b", Parse: func(s string) (any, error) {
			return strings.ToUpper(s), nil
		}},
		"href":     Attr{Selector: "a", Attr: "href"},
		"id":       Attr{Attr: "data-id"},
		"featured": HasClass("featured"),
	})
	if err != nil {
		t.Fatal(err)
	}

	expected := []Record{
		{"name": "FIRST", "href": "one.pdf", "id": "1", "featured": true},
		{"name": "SECOND", "href": "", "id": "2", "featured": false},
		{"name": "", "href": "", "id": "x", "featured": false},
	}
	if diff := cmp.Diff(expected, records); diff != "" {
		t.Fatalf("unexpected records (-want +got):\n%s", diff)
	}

	require.Equal(t, "FIRST", records[0].String("name"))
	require.True(t, records[0].Bool("featured"))
	require.False(t, records[1].Bool("featured"))
	require.True(t, records[0].Time("name").IsZero())
}

func TestScrapeNoMatches(t *testing.T) {
	doc := parseFixture(t)

	records, err := Scrape(doc.Selection, "table tr", Schema{
		"name": Text{Selector: "td"},
	})
	require.NoError(t, err)
	require.Len(t, records, 0)
}

func TestScrapeParseError(t *testing.T) {
	doc := parseFixture(t)

	_, err := Scrape(doc.Selection, "#items li", Schema{
		"id": Attr{Attr: "data-id", Parse: func(s string) (any, error) {
			return strconv.Atoi(s)
		}},
	})
	require.Error(t, err)

	var fieldErr *FieldError
	require.True(t, errors.As(err, &fieldErr))
	require.Equal(t, 2, fieldErr.Index)
	require.Equal(t, "id", fieldErr.Field)

	var numErr *strconv.NumError
	require.True(t, errors.As(err, &numErr))
}

func TestFormValues(t *testing.T) {
	doc := parseFixture(t)

	values := FormValues(doc.Find("#login"))
	expected := map[string]string{
		"token": "abc",
		"email": "",
		"terms": "on",
		"lang":  "fr",
	}
	if diff := cmp.Diff(expected, values); diff != "" {
		t.Fatalf("unexpected form values (-want +got):\n%s", diff)
	}
}
