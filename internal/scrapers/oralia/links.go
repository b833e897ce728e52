package oralia

import (
	"fmt"
	"strings"

	"oralia-konnector/internal/assert"
)

const (
	ajaxLoadPrefix = "ajaxload('"
	ajaxLoadSuffix = "')"
)

// Resolver rebuilds absolute urls out of the relative hrefs and inline
// onclick actions found on extranet pages.
type Resolver struct {
	BaseUrl         string
	ExtranetBaseUrl string
	AjaxLoadUrl     string
}

func NewResolver(baseUrl string) Resolver {
	assert.NotEmptyStr(baseUrl, "base url")
	baseUrl = strings.TrimSuffix(baseUrl, "/")
	extranet := baseUrl + "/extranet"
	return Resolver{
		BaseUrl:         baseUrl,
		ExtranetBaseUrl: extranet,
		AjaxLoadUrl:     extranet + "/include/ajax_load.php",
	}
}

func (r Resolver) LoginUrl() string {
	return r.BaseUrl + "/index.php"
}

func (r Resolver) SelectionAccountUrl() string {
	return r.ExtranetBaseUrl + "/selection_account.php"
}

// Resolve joins a path relative to the extranet root. It is a plain string
// join, hrefs on the extranet are always relative to it.
func (r Resolver) Resolve(relative string) string {
	return r.ExtranetBaseUrl + "/" + relative
}

// ParseAjaxLoadUrl decodes an account row action of the form
// `ajaxload('<query>')` into `<AjaxLoadUrl>?<query>`.
func (r Resolver) ParseAjaxLoadUrl(onclick string) (string, error) {
	onclick = strings.TrimSpace(onclick)
	if !strings.HasPrefix(onclick, ajaxLoadPrefix) || !strings.HasSuffix(onclick, ajaxLoadSuffix) {
		return "", fmt.Errorf("%w: onclick %q is not an ajaxload call", ErrParse, onclick)
	}
	query := strings.ReplaceAll(onclick, ajaxLoadPrefix, "")
	query = strings.ReplaceAll(query, ajaxLoadSuffix, "")
	return r.AjaxLoadUrl + "?" + query, nil
}
