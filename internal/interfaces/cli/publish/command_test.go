package publish

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedPut struct {
	Path    string
	Message string `json:"message"`
	Content string `json:"content"`
	Branch  string `json:"branch"`
	Auth    string
}

func fakeGitHub(t *testing.T) (*httptest.Server, func() []recordedPut) {
	t.Helper()
	var (
		mu   sync.Mutex
		puts []recordedPut
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		var put recordedPut
		_ = json.NewDecoder(r.Body).Decode(&put)
		put.Path = r.URL.Path
		put.Auth = r.Header.Get("Authorization")
		mu.Lock()
		puts = append(puts, put)
		mu.Unlock()
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"content":{"sha":"b"},"commit":{"sha":"c0ffee"}}`))
	}))
	t.Cleanup(srv.Close)

	return srv, func() []recordedPut {
		mu.Lock()
		defer mu.Unlock()
		return append([]recordedPut(nil), puts...)
	}
}

func writeFiles(t *testing.T, apiURL string) (config, template string) {
	t.Helper()
	dir := t.TempDir()
	config = filepath.Join(dir, "config.yaml")
	template = filepath.Join(dir, "template.json")

	body := "logger:\n  level: error\ngithub:\n  token: tok\n  owner: me\n  repo: configs\n  max_retries: 1\n  api_base_url: " + apiURL + "\n"
	require.NoError(t, os.WriteFile(config, []byte(body), 0o600))
	require.NoError(t, os.WriteFile(template, []byte(`{"outbounds":[{"tag":"direct","type":"direct"}]}`), 0o600))
	return config, template
}

func execute(stdin string, args ...string) (string, error) {
	cmd := NewCommand()
	var out bytes.Buffer
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestPublishCommand(t *testing.T) {
	srv, puts := fakeGitHub(t)
	config, template := writeFiles(t, srv.URL)

	out, err := execute("trojan://pw@a.example:443#Alpha\n",
		"--config", config, "--template", template, "--path", "clients/sing-box.json", "-m", "nightly")
	require.NoError(t, err)
	assert.Contains(t, out, "commit c0ffee")

	recorded := puts()
	require.Len(t, recorded, 1)
	assert.Equal(t, "/repos/me/configs/contents/clients/sing-box.json", recorded[0].Path)
	assert.Equal(t, "nightly", recorded[0].Message)
	assert.Equal(t, "main", recorded[0].Branch)
	assert.Equal(t, "Bearer tok", recorded[0].Auth)

	content, err := base64.StdEncoding.DecodeString(recorded[0].Content)
	require.NoError(t, err)
	assert.Contains(t, string(content), `"tag": "Alpha 01"`)
}

func TestPublishCommand_NothingConverted(t *testing.T) {
	srv, puts := fakeGitHub(t)
	config, template := writeFiles(t, srv.URL)

	_, err := execute("bogus\n", "--config", config, "--template", template)
	assert.ErrorContains(t, err, "nothing published")
	assert.Empty(t, puts())
}

func TestPublishCommand_NoToken(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "")
	dir := t.TempDir()
	config := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(config, []byte("logger:\n  level: error\n"), 0o600))

	_, err := execute("trojan://pw@a.example:443\n", "--config", config)
	assert.ErrorContains(t, err, "no GitHub token")
}
