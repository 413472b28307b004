// Package scrape fetches raw encyclopedic content for a work name from
// multiple independent wiki sources, tolerating partial failure.
package scrape

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Source is one configured encyclopedic source, reached via a name-to-URL
// template. The template contains a {name} placeholder.
type Source struct {
	Name        string `yaml:"name"`
	URLTemplate string `yaml:"url_template"`
}

// URL builds the fetch URL for a work name, percent-encoding the name.
func (s Source) URL(workName string) string {
	return strings.ReplaceAll(s.URLTemplate, "{name}", url.PathEscape(workName))
}

// DefaultSources returns the three wiki sources used when no sources file is
// configured.
func DefaultSources() []Source {
	return []Source{
		{Name: "moegirl", URLTemplate: "https://zh.moegirl.org.cn/{name}"},
		{Name: "baike", URLTemplate: "https://baike.baidu.com/item/{name}"},
		{Name: "wikipedia", URLTemplate: "https://zh.wikipedia.org/wiki/{name}"},
	}
}

type sourcesFile struct {
	Sources []Source `yaml:"sources"`
}

// LoadSources reads the source list from a YAML file. A missing file falls
// back to DefaultSources; a present but invalid file is an error.
func LoadSources(path string) ([]Source, error) {
	if path == "" {
		return DefaultSources(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultSources(), nil
		}
		return nil, fmt.Errorf("read sources file: %w", err)
	}

	var f sourcesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse sources file: %w", err)
	}
	if len(f.Sources) == 0 {
		return nil, fmt.Errorf("sources file %s lists no sources", path)
	}
	for _, s := range f.Sources {
		if s.Name == "" || s.URLTemplate == "" {
			return nil, fmt.Errorf("sources file %s: every source needs a name and url_template", path)
		}
		if !strings.Contains(s.URLTemplate, "{name}") {
			return nil, fmt.Errorf("sources file %s: url_template for %s has no {name} placeholder", path, s.Name)
		}
	}
	return f.Sources, nil
}
