// Package oraliatest serves fixture pages that mimic the oralia extranet.
package oraliatest

import (
	"embed"
	"net/http"
	"net/http/httptest"
	"path"
	"sync"
	"testing"
)

//go:embed testdata/*.html
var testdata embed.FS

const (
	Login    = "someone@example.com"
	Password = "hunter2"

	sessionCookie = "PHPSESSID"
	sessionValue  = "session-1"
)

// Extranet chains the fixture pages the way the real extranet does. The
// exported fields name the testdata file served for each step.
type Extranet struct {
	LoginResult string
	Accounts    string
	Dashboard   string
	Documents   string

	mu       sync.Mutex
	requests []string
	form     map[string]string
}

func New() *Extranet {
	return &Extranet{
		LoginResult: "login_ok.html",
		Accounts:    "selection_account.html",
		Dashboard:   "dashboard.html",
		Documents:   "documents.html",
	}
}

// Start serves the extranet until the test ends.
func (e *Extranet) Start(t testing.TB) *httptest.Server {
	server := httptest.NewServer(e.handler())
	t.Cleanup(server.Close)
	return server
}

// Requests lists "<METHOD> <request uri>" for every request received so far.
func (e *Extranet) Requests() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.requests...)
}

// Form returns the last submitted login form.
func (e *Extranet) Form() map[string]string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.form
}

func (e *Extranet) serveFile(w http.ResponseWriter, name string) {
	contents, err := testdata.ReadFile(path.Join("testdata", name))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("content-type", "text/html; charset=utf-8")
	w.Write(contents)
}

func loggedIn(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(sessionCookie)
		if err != nil || cookie.Value != sessionValue {
			http.Error(w, "not logged in", http.StatusForbidden)
			return
		}
		next(w, r)
	}
}

func (e *Extranet) login(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		e.serveFile(w, "login.html")
		return
	}

	err := r.ParseForm()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	form := map[string]string{}
	for k := range r.PostForm {
		form[k] = r.PostForm.Get(k)
	}
	e.mu.Lock()
	e.form = form
	e.mu.Unlock()

	if form["email"] == Login && form["password"] == Password {
		http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: sessionValue, Path: "/"})
	}
	e.serveFile(w, e.LoginResult)
}

func (e *Extranet) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/index.php", e.login)
	mux.HandleFunc("/extranet/selection_account.php", loggedIn(func(w http.ResponseWriter, r *http.Request) {
		e.serveFile(w, e.Accounts)
	}))
	mux.HandleFunc("/extranet/include/ajax_load.php", loggedIn(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		// the session hash comes back as plain text
		switch r.URL.Query().Get("id") {
		case "42":
			w.Write([]byte("dashboard.php?h=abc123\n"))
		case "43":
			w.Write([]byte("dashboard.php?h=def456"))
		default:
			http.NotFound(w, r)
		}
	}))
	mux.HandleFunc("/extranet/dashboard.php", loggedIn(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("h") == "" {
			http.NotFound(w, r)
			return
		}
		e.serveFile(w, e.Dashboard)
	}))
	mux.HandleFunc("/extranet/documents.php", loggedIn(func(w http.ResponseWriter, r *http.Request) {
		e.serveFile(w, e.Documents)
	}))
	mux.HandleFunc("/extranet/docs/get.php", loggedIn(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("content-type", "application/pdf")
		w.Write([]byte("%PDF-1.4 document " + r.URL.Query().Get("id")))
	}))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		e.mu.Lock()
		e.requests = append(e.requests, r.Method+" "+r.URL.RequestURI())
		e.mu.Unlock()
		mux.ServeHTTP(w, r)
	})
}
