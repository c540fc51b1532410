//go:build e2e

package e2e

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/legal-eagles/govwatch/internal/api/handlers"
	"github.com/legal-eagles/govwatch/internal/fetch"
	"github.com/legal-eagles/govwatch/internal/index"
	"github.com/legal-eagles/govwatch/internal/jobs"
	"github.com/legal-eagles/govwatch/internal/monitor"
	"github.com/legal-eagles/govwatch/internal/processor"
	"github.com/legal-eagles/govwatch/internal/repository"
	"github.com/legal-eagles/govwatch/internal/server"
	"github.com/legal-eagles/govwatch/internal/testutil"
)

// FakePages serves mutable HTML pages, standing in for monitored sites.
type FakePages struct {
	mu    sync.Mutex
	pages map[string]string
	srv   *httptest.Server
}

func NewFakePages() *FakePages {
	fp := &FakePages{pages: make(map[string]string)}
	fp.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fp.mu.Lock()
		body, ok := fp.pages[r.URL.Path]
		fp.mu.Unlock()
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprintf(w, "<html><body><main>%s</main></body></html>", body)
	}))
	return fp
}

func (fp *FakePages) Set(path, content string) {
	fp.mu.Lock()
	defer fp.mu.Unlock()
	fp.pages[path] = content
}

func (fp *FakePages) Remove(path string) {
	fp.mu.Lock()
	defer fp.mu.Unlock()
	delete(fp.pages, path)
}

func (fp *FakePages) URL(path string) string {
	return fp.srv.URL + path
}

func (fp *FakePages) Close() {
	fp.srv.Close()
}

// fakeEmbedder produces deterministic embeddings derived from the text.
type fakeEmbedder struct{}

func (fakeEmbedder) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	sum := sha256.Sum256([]byte(text))
	embedding := make([]float32, 1536)
	for i := range embedding {
		v := binary.BigEndian.Uint16(sum[(i*2)%30 : (i*2)%30+2])
		embedding[i] = float32(v)/65535.0 - 0.5
	}
	return embedding, nil
}

// Env holds all resources for an end-to-end run.
type Env struct {
	T          *testing.T
	Ctx        context.Context
	Pool       *pgxpool.Pool
	Pages      *FakePages
	Cycle      *jobs.MonitorCycle
	ServerURL  string
	HTTPClient *http.Client

	PageRepo      *repository.PageRepository
	ChangeLogRepo *repository.ChangeLogRepository
	DocumentRepo  *repository.DocumentRepository

	closers []func()
}

// Setup builds the full stack against a pgvector container and fake pages.
func Setup(t *testing.T, paths map[string]string) *Env {
	ctx := context.Background()

	pgC := testutil.NewPostgresContainer(ctx, t)
	pool := testutil.NewTestPool(ctx, t, pgC, "../../migrations")

	pages := NewFakePages()
	urls := make([]string, 0, len(paths))
	for path, content := range paths {
		pages.Set(path, content)
		urls = append(urls, pages.URL(path))
	}

	pageRepo := repository.NewPageRepository(pool)
	changeLogRepo := repository.NewChangeLogRepository(pool)
	documentRepo := repository.NewDocumentRepository(pool)

	fetcher := fetch.NewFetcher(fetch.Config{
		Timeout:   10 * time.Second,
		MaxConns:  3,
		UserAgent: "govwatch-e2e",
	})

	mon := monitor.New(fetcher, pageRepo, urls, 3)
	knowledgeIndex := index.New(fakeEmbedder{}, documentRepo)
	proc := processor.New(knowledgeIndex, changeLogRepo)
	cycle := jobs.NewMonitorCycle(mon, proc)

	router := server.NewRouter(server.RouterConfig{
		MonitorHandler: handlers.NewMonitorHandler(mon, cycle, proc, changeLogRepo, pageRepo, knowledgeIndex),
		SearchHandler:  handlers.NewSearchHandler(knowledgeIndex),
	})
	apiSrv := httptest.NewServer(router)

	env := &Env{
		T:             t,
		Ctx:           ctx,
		Pool:          pool,
		Pages:         pages,
		Cycle:         cycle,
		ServerURL:     apiSrv.URL,
		HTTPClient:    &http.Client{Timeout: 30 * time.Second},
		PageRepo:      pageRepo,
		ChangeLogRepo: changeLogRepo,
		DocumentRepo:  documentRepo,
	}
	env.closers = append(env.closers,
		apiSrv.Close,
		fetcher.Close,
		pages.Close,
		pool.Close,
		func() { _ = pgC.Terminate(ctx) },
	)

	t.Cleanup(env.Close)
	return env
}

func (e *Env) Close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		e.closers[i]()
	}
}

// GetJSON performs a GET and decodes the "data" envelope into out.
func (e *Env) GetJSON(path string, out interface{}) error {
	resp, err := e.HTTPClient.Get(e.ServerURL + path)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return decodeEnvelope(resp, out)
}

// PostJSON performs a POST and decodes the "data" envelope into out.
func (e *Env) PostJSON(path string, body, out interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(data)
	}

	resp, err := e.HTTPClient.Post(e.ServerURL+path, "application/json", reqBody)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return decodeEnvelope(resp, out)
}

func decodeEnvelope(resp *http.Response, out interface{}) error {
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("status %d: %s", resp.StatusCode, raw)
	}
	if out == nil {
		return nil
	}

	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return err
	}
	return json.Unmarshal(envelope.Data, out)
}
