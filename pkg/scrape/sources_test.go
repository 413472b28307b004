package scrape

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSourceURL_EncodesName(t *testing.T) {
	src := Source{Name: "moegirl", URLTemplate: "https://zh.moegirl.org.cn/{name}"}
	assert.Equal(t, "https://zh.moegirl.org.cn/%E8%91%AC%E9%80%81%E7%9A%84%E8%8A%99%E8%8E%89%E8%8E%B2",
		src.URL("葬送的芙莉莲"))
}

func TestLoadSources_MissingFileFallsBack(t *testing.T) {
	sources, err := LoadSources(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Len(t, sources, 3)
	assert.Equal(t, "moegirl", sources[0].Name)
}

func TestLoadSources_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sources.yaml")
	content := `sources:
  - name: fandom
    url_template: "https://example.fandom.com/wiki/{name}"
  - name: bangumi
    url_template: "https://bgm.tv/subject_search/{name}"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	sources, err := LoadSources(path)
	require.NoError(t, err)
	require.Len(t, sources, 2)
	assert.Equal(t, "fandom", sources[0].Name)
	assert.Equal(t, "https://bgm.tv/subject_search/EVA", sources[1].URL("EVA"))
}

func TestLoadSources_RejectsTemplateWithoutPlaceholder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sources.yaml")
	content := `sources:
  - name: broken
    url_template: "https://example.com/fixed"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	_, err := LoadSources(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "{name}")
}

func TestLoadSources_RejectsEmptyList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sources.yaml")
	require.NoError(t, os.WriteFile(path, []byte("sources: []\n"), 0o644))

	_, err := LoadSources(path)
	require.Error(t, err)
}
