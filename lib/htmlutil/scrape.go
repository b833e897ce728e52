package htmlutil

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// ParseFunc converts an extracted string into a field value.
type ParseFunc func(string) (any, error)

// Rule describes how a single field is pulled out of a container element.
// It is one of Text, Attr or Computed.
type Rule interface {
	rule()
}

// Text takes the trimmed text of the elements matching Selector inside the
// container, or of the container itself when Selector is empty.
type Text struct {
	Selector string
	Parse    ParseFunc
}

// Attr takes an attribute of the first element matching Selector inside the
// container, or of the container itself when Selector is empty.
type Attr struct {
	Selector string
	Attr     string
	Parse    ParseFunc
}

// Computed derives a value from the container selection.
type Computed struct {
	Fn func(*goquery.Selection) any
}

func (Text) rule()     {}
func (Attr) rule()     {}
func (Computed) rule() {}

// Schema maps output field names to their extraction rule.
type Schema map[string]Rule

// Record is one scraped container. Absent matches are stored as "".
type Record map[string]any

func (r Record) String(field string) string {
	s, _ := r[field].(string)
	return s
}

func (r Record) Bool(field string) bool {
	b, _ := r[field].(bool)
	return b
}

func (r Record) Time(field string) time.Time {
	t, _ := r[field].(time.Time)
	return t
}

// FieldError is returned when a parse function rejects an extracted value.
type FieldError struct {
	Container string
	Index     int
	Field     string
	Err       error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("scrape %s[%d].%s: %s", e.Container, e.Index, e.Field, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// Scrape builds one record per element matching container, in document order.
func Scrape(root *goquery.Selection, container string, schema Schema) ([]Record, error) {
	// fields are applied in a stable order so errors are deterministic
	fields := make([]string, 0, len(schema))
	for name := range schema {
		fields = append(fields, name)
	}
	sort.Strings(fields)

	matches := root.Find(container)
	records := make([]Record, 0, matches.Length())
	for i := range matches.Nodes {
		el := matches.Eq(i)
		record := Record{}
		for _, field := range fields {
			value, err := extract(el, schema[field])
			if err != nil {
				return nil, &FieldError{
					Container: container,
					Index:     i,
					Field:     field,
					Err:       err,
				}
			}
			record[field] = value
		}
		records = append(records, record)
	}
	return records, nil
}

func extract(el *goquery.Selection, rule Rule) (any, error) {
	switch r := rule.(type) {
	case Text:
		target := el
		if r.Selector != "" {
			target = el.Find(r.Selector)
		}
		if target.Length() == 0 {
			return "", nil
		}
		return parse(strings.TrimSpace(target.Text()), r.Parse)
	case Attr:
		target := el
		if r.Selector != "" {
			target = el.Find(r.Selector).First()
		}
		value, exists := target.Attr(r.Attr)
		if !exists {
			return "", nil
		}
		return parse(value, r.Parse)
	case Computed:
		return r.Fn(el), nil
	default:
		panic(fmt.Sprintf("htmlutil: unknown rule %T", rule))
	}
}

func parse(value string, fn ParseFunc) (any, error) {
	if fn == nil {
		return value, nil
	}
	return fn(value)
}
