package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/figicons/internal/figma"
	"git.home.luguber.info/inful/figicons/internal/metrics"
)

const (
	testKey   = "KEY"
	goodToken = "good-token"
)

const goodMarkup = `<svg xmlns="http://www.w3.org/2000/svg" width="24" height="24" viewBox="0 0 24 24"><path stroke="#000000" d="M0 0L24 24"/></svg>`

// fakeFigma serves a one-page document whose children are square 24px icons
// with ids "1:<index>".
type fakeFigma struct {
	names        []string
	omit         map[int]bool
	badMarkup    map[int]string // served instead of goodMarkup
	brokenAsset  map[int]bool
	imagesStatus int
	imagesFailN  int32 // fail this many image requests with 500 first
	imageCalls   atomic.Int32
	srv          *httptest.Server
}

func newFakeFigma(t *testing.T, names ...string) *fakeFigma {
	t.Helper()
	f := &fakeFigma{
		names:       names,
		omit:        map[int]bool{},
		badMarkup:   map[int]string{},
		brokenAsset: map[int]bool{},
	}
	f.srv = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.srv.Close)
	return f
}

func iconNames(n int) []string {
	names := make([]string, n)
	for i := range names {
		names[i] = fmt.Sprintf("Icons/icon-%02d", i)
	}
	return names
}

func (f *fakeFigma) client(t *testing.T, token string) *figma.Client {
	t.Helper()
	c, err := figma.NewClient(figma.ClientConfig{APIURL: f.srv.URL + "/v1", Token: token}, f.srv.Client())
	require.NoError(t, err)
	return c
}

func (f *fakeFigma) serve(w http.ResponseWriter, r *http.Request) {
	switch {
	case strings.HasPrefix(r.URL.Path, "/assets/"):
		f.serveAsset(w, r)
		return
	case r.Header.Get(figma.TokenHeader) != goodToken:
		http.Error(w, `{"status":403,"err":"Invalid token"}`, http.StatusForbidden)
		return
	}

	switch r.URL.Path {
	case "/v1/files/" + testKey:
		f.serveFile(w)
	case "/v1/images/" + testKey:
		f.serveImages(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (f *fakeFigma) serveFile(w http.ResponseWriter) {
	children := make([]figma.Node, len(f.names))
	for i, name := range f.names {
		children[i] = figma.Node{
			ID:                  "1:" + strconv.Itoa(i),
			Type:                "COMPONENT",
			Name:                name,
			AbsoluteBoundingBox: &figma.BoundingBox{Width: 24, Height: 24},
		}
	}
	file := figma.File{
		Name: "Design System",
		Document: figma.Node{
			ID:   "0:0",
			Type: figma.NodeTypeDocument,
			Children: []figma.Node{
				{ID: "0:1", Type: figma.NodeTypeCanvas, Name: "Icons", Children: children},
				{ID: "0:2", Type: figma.NodeTypeCanvas, Name: "Archive"},
			},
		},
	}
	_ = json.NewEncoder(w).Encode(file)
}

func (f *fakeFigma) serveImages(w http.ResponseWriter, r *http.Request) {
	n := f.imageCalls.Add(1)
	if n <= f.imagesFailN {
		http.Error(w, "overloaded", http.StatusInternalServerError)
		return
	}
	if f.imagesStatus != 0 {
		http.Error(w, "rejected", f.imagesStatus)
		return
	}
	if r.URL.Query().Get("format") != "svg" {
		http.Error(w, "bad format", http.StatusBadRequest)
		return
	}

	images := map[string]*string{}
	for _, id := range strings.Split(r.URL.Query().Get("ids"), ",") {
		idx, _ := strconv.Atoi(strings.TrimPrefix(id, "1:"))
		if f.omit[idx] {
			images[id] = nil
			continue
		}
		u := fmt.Sprintf("%s/assets/%d.svg", f.srv.URL, idx)
		images[id] = &u
	}
	_ = json.NewEncoder(w).Encode(map[string]any{"err": nil, "images": images})
}

func (f *fakeFigma) serveAsset(w http.ResponseWriter, r *http.Request) {
	idx, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/assets/"), ".svg"))
	if err != nil || f.brokenAsset[idx] {
		http.Error(w, "gone", http.StatusInternalServerError)
		return
	}
	if body, ok := f.badMarkup[idx]; ok {
		_, _ = io.WriteString(w, body)
		return
	}
	_, _ = io.WriteString(w, goodMarkup)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// countingRecorder captures the metrics a run records.
type countingRecorder struct {
	metrics.NoopRecorder
	mu       sync.Mutex
	stages   map[string]metrics.ResultLabel
	skipped  map[string]int
	outcomes map[string]int
	size     int
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{
		stages:   map[string]metrics.ResultLabel{},
		skipped:  map[string]int{},
		outcomes: map[string]int{},
	}
}

func (r *countingRecorder) IncStageResult(stage string, res metrics.ResultLabel) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stages[stage] = res
}

func (r *countingRecorder) IncRunOutcome(outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes[outcome]++
}

func (r *countingRecorder) IncIconsSkipped(reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.skipped[reason]++
}

func (r *countingRecorder) SetBundleSize(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.size = n
}
