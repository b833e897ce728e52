package textutil

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// ErrDate is returned when a document date cannot be read out of its label.
var ErrDate = errors.New("unparseable document date")

// DateLabel prefixes every document date on the documents page.
const DateLabel = "créé le "

const dateLayout = "2006-01-02"

// NormalizeName lowercases a scraped name and replaces its spaces with
// underscores. It is applied the same way to account and document names.
func NormalizeName(name string) string {
	name = strings.ReplaceAll(name, " ", "_")
	name = strings.ToLower(name)
	name = strings.TrimSpace(name)
	return name
}

// ParseDocumentDate reads the fixed-width date that follows DateLabel.
// Widths are counted in characters, so a label spelled with non-breaking
// spaces lines up the same way. Anything past the 10th character after the
// label is ignored.
func ParseDocumentDate(raw string) (time.Time, error) {
	runes := []rune(raw)
	start := utf8.RuneCountInString(DateLabel)
	end := start + len(dateLayout)
	if len(runes) < end {
		return time.Time{}, fmt.Errorf("%w: %q is too short", ErrDate, raw)
	}
	window := strings.TrimSpace(string(runes[start:end]))

	date, err := time.ParseInLocation(dateLayout, window, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q: %w", ErrDate, raw, err)
	}
	return date, nil
}

// ComposeFilename builds the on-disk name of a document:
// {date}_{vendor}_{account}_{document}, made safe for filesystems.
func ComposeFilename(date time.Time, vendor, account, document string) string {
	name := strings.Join([]string{
		date.Format(dateLayout),
		vendor,
		account,
		document,
	}, "_")
	return SanitizeFilename(name)
}

const illegalFilenameChars = `<>:"/\|?*`

// SanitizeFilename drops characters that are illegal on common filesystems.
func SanitizeFilename(name string) string {
	name = strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return -1
		}
		if strings.ContainsRune(illegalFilenameChars, r) {
			return -1
		}
		return r
	}, name)
	return strings.Trim(name, " .")
}
