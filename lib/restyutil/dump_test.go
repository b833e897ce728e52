package restyutil

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/require"
)

func TestDump(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("x-page", r.URL.Path)
		w.Write([]byte("hello " + r.URL.Path))
	}))
	defer server.Close()

	dir := filepath.Join(t.TempDir(), "dump")
	output, err := NewFilesystemOutput(dir)
	require.NoError(t, err)

	client := resty.New()
	Dump(client, output)

	_, err = client.R().Get(server.URL + "/one")
	require.NoError(t, err)
	_, err = client.R().SetFormData(map[string]string{"email": "a@b.c"}).Post(server.URL + "/two")
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, "0001.txt", entries[0].Name())

	contents, err := os.ReadFile(filepath.Join(dir, "0002.txt"))
	require.NoError(t, err)
	message := string(contents)
	require.True(t, strings.HasPrefix(message, "---- REQUEST ----\n\nPOST "+server.URL+"/two"))
	require.Contains(t, message, "email=a%40b.c")
	require.Contains(t, message, "X-Page: /two")
	require.Contains(t, message, "hello /two")
}
