package oralia

import "errors"

var (
	// ErrAuth is returned when the login form is rejected or the logged-in
	// page signature is missing.
	ErrAuth = errors.New("oralia: login failed")
	// ErrFetch is returned for transport failures and non-2xx responses.
	ErrFetch = errors.New("oralia: fetch failed")
	// ErrParse is returned when scraped markup does not have the expected shape.
	ErrParse = errors.New("oralia: unexpected markup")
)
