package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/figicons/cmd/figicons/commands"
	"git.home.luguber.info/inful/figicons/internal/figma"
	"git.home.luguber.info/inful/figicons/internal/testutil"
)

const svgMarkup = `<svg xmlns="http://www.w3.org/2000/svg" width="16" height="16"><path stroke="#333333" d="M0 0L16 16"/></svg>`

type cliEnv struct {
	root   string
	stdout *bytes.Buffer
	stderr *bytes.Buffer
	srv    *httptest.Server
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"FIGMA_TOKEN", "FIGICONS_FILE_KEY", "FIGICONS_PAGE", "FIGICONS_SIZE", "FIGICONS_PREFIX",
		"FIGICONS_OUTPUT_DIR", "FIGICONS_INDEX_PATH", "FIGICONS_FORMAT", "FIGICONS_SCRATCH_DIR",
		"FIGICONS_API_URL", "FIGICONS_LOG_LEVEL", "FIGICONS_LOG_FORMAT", "FIGICONS_OTEL_ENDPOINT",
		"FIGICONS_METRICS_TEXTFILE", "FIGICONS_EXPORT_RETRIES",
	} {
		t.Setenv(k, "")
	}
}

// newCLIEnv starts a fake API serving a two-page document with two icons.
func newCLIEnv(t *testing.T) *cliEnv {
	t.Helper()
	clearEnv(t)
	env := &cliEnv{root: t.TempDir(), stdout: &bytes.Buffer{}, stderr: &bytes.Buffer{}}

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/files/KEY", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get(figma.TokenHeader) != "good-token" {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		box := &figma.BoundingBox{Width: 16, Height: 16}
		_ = json.NewEncoder(w).Encode(figma.File{Document: figma.Node{
			ID: "0:0", Type: figma.NodeTypeDocument,
			Children: []figma.Node{
				{ID: "0:1", Type: figma.NodeTypeCanvas, Name: "Icons", Children: []figma.Node{
					{ID: "1:1", Type: "COMPONENT", Name: "ui/close", AbsoluteBoundingBox: box},
					{ID: "1:2", Type: "COMPONENT", Name: "ui/open", AbsoluteBoundingBox: box},
				}},
				{ID: "0:2", Type: figma.NodeTypeCanvas, Name: "Drafts"},
			},
		}})
	})
	mux.HandleFunc("/v1/images/KEY", func(w http.ResponseWriter, r *http.Request) {
		images := map[string]string{}
		for _, id := range strings.Split(r.URL.Query().Get("ids"), ",") {
			images[id] = env.srv.URL + "/assets/" + strings.ReplaceAll(id, ":", "-") + ".svg"
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"err": nil, "images": images})
	})
	mux.HandleFunc("/assets/", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, svgMarkup)
	})
	env.srv = httptest.NewServer(mux)
	t.Cleanup(env.srv.Close)
	return env
}

func (e *cliEnv) writeConfig(t *testing.T, token string) string {
	t.Helper()
	path := filepath.Join(e.root, "figicons.yaml")
	content := fmt.Sprintf(`figma:
  file_key: KEY
  token: %s
  api_url: %s/v1
selection:
  page: Icons
output:
  directory: %s
  index_path: %s
`, token, e.srv.URL, filepath.Join(e.root, "icons"), filepath.Join(e.root, ".figicons", "index.json"))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func (e *cliEnv) run(args ...string) int {
	g := &commands.Global{Stdout: e.stdout, Stderr: e.stderr}
	return run(args, g)
}

func TestRun_Version(t *testing.T) {
	env := newCLIEnv(t)
	code := env.run("--version")
	assert.Equal(t, 0, code)
	assert.Contains(t, env.stdout.String(), "figicons dev")
}

func TestRun_UnknownFlag(t *testing.T) {
	env := newCLIEnv(t)
	code := env.run("bundle", "--no-such-flag")
	assert.Equal(t, 2, code)
	assert.Contains(t, env.stderr.String(), "no-such-flag")
}

func TestRun_Bundle(t *testing.T) {
	env := newCLIEnv(t)
	cfg := env.writeConfig(t, "good-token")

	code := env.run("-c", cfg, "bundle")
	require.Equal(t, 0, code, env.stderr.String())
	assert.Contains(t, env.stdout.String(), "Bundled 2 icons")

	output := filepath.Join(env.root, "icons", "icons.json")
	bundle := testutil.ReadBundle(t, output)
	assert.Contains(t, bundle, "close")
	assert.Contains(t, bundle, "open")
	testutil.AssertSameContent(t, filepath.Join(env.root, ".figicons", "index.json"), output)
}

func TestRun_BundleFlagsOverrideConfig(t *testing.T) {
	env := newCLIEnv(t)
	cfg := env.writeConfig(t, "wrong-token")
	out := filepath.Join(env.root, "flag-out")
	metricsFile := filepath.Join(env.root, "metrics", "figicons.prom")
	reportFile := filepath.Join(env.root, "report.json")

	code := env.run("-c", cfg, "bundle",
		"--token", "good-token",
		"--file-key", "https://www.figma.com/design/KEY/Design-System",
		"--output", out,
		"--prefix", "ui/close",
		"--metrics-textfile", metricsFile,
		"--report", reportFile)
	require.Equal(t, 0, code, env.stderr.String())
	assert.Contains(t, env.stdout.String(), "Bundled 1 icons")

	_, err := os.Stat(filepath.Join(out, "icons.json"))
	assert.NoError(t, err)
	prom, err := os.ReadFile(metricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(prom), "figicons_bundle_icons 1")
	_, err = os.Stat(reportFile)
	assert.NoError(t, err)
}

func TestRun_BundleAuthFailure(t *testing.T) {
	env := newCLIEnv(t)
	cfg := env.writeConfig(t, "wrong-token")

	code := env.run("-c", cfg, "bundle")
	assert.Equal(t, 5, code)
	assert.Contains(t, env.stderr.String(), "Error (auth): unauthorized or file doesn't exist (check the access token and the file key)")
	testutil.AssertNotExist(t, filepath.Join(env.root, "icons", "icons.json"))
}

func TestRun_BundlePageNotFound(t *testing.T) {
	env := newCLIEnv(t)
	cfg := env.writeConfig(t, "good-token")

	code := env.run("-c", cfg, "bundle", "--page", "Glyphs")
	assert.Equal(t, 4, code)
	assert.Contains(t, env.stderr.String(), "Error (not_found): page not found")
}

func TestRun_BundleMissingToken(t *testing.T) {
	env := newCLIEnv(t)
	cfg := env.writeConfig(t, "")

	code := env.run("-c", cfg, "bundle")
	assert.Equal(t, 7, code)
	assert.Contains(t, env.stderr.String(), "access token is required (set figma.token, FIGMA_TOKEN or --token)")
}

func TestRun_Pages(t *testing.T) {
	env := newCLIEnv(t)
	cfg := env.writeConfig(t, "good-token")

	code := env.run("-c", cfg, "pages")
	require.Equal(t, 0, code, env.stderr.String())
	assert.Equal(t, "Icons\nDrafts\n", env.stdout.String())
}

func TestRun_Init(t *testing.T) {
	env := newCLIEnv(t)
	path := filepath.Join(env.root, "new.yaml")

	require.Equal(t, 0, env.run("-c", path, "init"))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "file_key: YOUR_FILE_KEY")

	assert.Equal(t, 7, env.run("-c", path, "init"))
	assert.Equal(t, 0, env.run("-c", path, "init", "--force"))
}

func TestRun_CleanOptimizesScratchIcons(t *testing.T) {
	env := newCLIEnv(t)
	cfg := env.writeConfig(t, "good-token")
	dir := filepath.Join(env.root, "svg")
	require.NoError(t, os.MkdirAll(dir, 0o750))
	padded := strings.Replace(svgMarkup, "><path", ">\n  <!-- exported -->\n  <path", 1)
	good := filepath.Join(dir, "close.svg")
	require.NoError(t, os.WriteFile(good, []byte(padded), 0o600))
	broken := `<svg width="16" height="16"><path d="M0 0`
	bad := filepath.Join(dir, "open.svg")
	require.NoError(t, os.WriteFile(bad, []byte(broken), 0o600))

	code := env.run("-c", cfg, "clean", "--scratch-dir", dir)
	require.Equal(t, 0, code, env.stderr.String())
	assert.Contains(t, env.stdout.String(), "Cleaned 1 icons in "+dir)
	assert.Contains(t, env.stdout.String(), "Skipped 1 of 2 icons")
	assert.Contains(t, env.stderr.String(), "open")

	data, err := os.ReadFile(good)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "exported")
	assert.Less(t, len(data), len(padded))
	testutil.AssertFileContent(t, bad, broken)
}

func TestRun_CleanAfterBundle(t *testing.T) {
	env := newCLIEnv(t)
	cfg := env.writeConfig(t, "good-token")
	dir := filepath.Join(env.root, "svg")

	require.Equal(t, 0, env.run("-c", cfg, "bundle", "--scratch-dir", dir), env.stderr.String())
	env.stdout.Reset()

	code := env.run("-c", cfg, "clean", "--scratch-dir", dir)
	require.Equal(t, 0, code, env.stderr.String())
	assert.Contains(t, env.stdout.String(), "Cleaned 2 icons")
	assert.NotContains(t, env.stdout.String(), "Skipped")
}

func TestRun_CleanWithoutScratchDir(t *testing.T) {
	env := newCLIEnv(t)
	cfg := env.writeConfig(t, "good-token")

	code := env.run("-c", cfg, "clean")
	assert.Equal(t, 7, code)
	assert.Contains(t, env.stderr.String(), "no scratch directory configured (set download.scratch_dir or pass --scratch-dir)")

	env.stderr.Reset()
	code = env.run("-c", cfg, "clean", "--scratch-dir", filepath.Join(env.root, "missing"))
	assert.Equal(t, 11, code)
	assert.Contains(t, env.stderr.String(), "failed to list scratch directory")
}
