package generate

import (
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/docmill/pkg/errors"
	"github.com/matzehuels/docmill/pkg/reference"
	"github.com/matzehuels/docmill/pkg/traverse"
)

// redirect maps one alias URL onto the canonical page URL.
type redirect struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

type redirectsFile struct {
	Redirects []redirect `yaml:"redirects"`
}

// buildRedirects collects one redirect per alias of every page-owning
// symbol, sorted by source path. Fragments need no redirects: their
// aliases resolve through the parent page.
func buildRedirects(idx *traverse.Index, resolver *reference.Resolver, sitePath string) []redirect {
	sitePrefix := "/" + sitePath + "/"

	var redirects []redirect
	for _, mainName := range pageNames(idx, resolver) {
		for _, alias := range idx.Duplicates[mainName] {
			if alias == mainName {
				continue
			}
			redirects = append(redirects, redirect{
				From: sitePrefix + strings.ReplaceAll(alias, ".", "/"),
				To:   sitePrefix + strings.ReplaceAll(mainName, ".", "/"),
			})
		}
	}

	sort.Slice(redirects, func(i, j int) bool {
		return redirects[i].From < redirects[j].From
	})
	return redirects
}

// marshalRedirects serializes the redirect map, or returns nil when
// there is nothing to redirect.
func marshalRedirects(redirects []redirect) ([]byte, error) {
	if len(redirects) == 0 {
		return nil, nil
	}
	data, err := yaml.Marshal(redirectsFile{Redirects: redirects})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "serialize _redirects.yaml")
	}
	return data, nil
}
