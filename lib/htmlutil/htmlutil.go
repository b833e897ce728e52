package htmlutil

import (
	"bytes"
	"fmt"

	"github.com/PuerkitoBio/goquery"
)

// ParseDocument parses a response body into a goquery document.
func ParseDocument(body []byte) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return doc, nil
}

// HasClass returns a Computed rule reporting whether the container carries class.
func HasClass(class string) Computed {
	return Computed{Fn: func(s *goquery.Selection) any {
		return s.HasClass(class)
	}}
}

// FormValues collects the named inputs of a form the way a browser would
// submit them, skipping unchecked checkboxes and radios.
func FormValues(form *goquery.Selection) map[string]string {
	values := map[string]string{}
	form.Find("input[name], select[name], textarea[name]").Each(func(_ int, s *goquery.Selection) {
		name := s.AttrOr("name", "")
		switch goquery.NodeName(s) {
		case "input":
			value := s.AttrOr("value", "")
			switch s.AttrOr("type", "text") {
			case "submit", "button", "image", "file":
				return
			case "checkbox", "radio":
				if _, checked := s.Attr("checked"); !checked {
					return
				}
				value = s.AttrOr("value", "on")
			}
			values[name] = value
		case "select":
			values[name] = s.Find("option[selected]").First().AttrOr("value", "")
		case "textarea":
			values[name] = s.Text()
		}
	})
	return values
}
