package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/nao1215/vegancheck/internal/classifier"
	"github.com/nao1215/vegancheck/internal/model"
	"github.com/nao1215/vegancheck/internal/report"
)

const gummyPage = `<html><head><title>Gummy Bears</title></head><body>
<nav>Home | Candy</nav>
<h1>Gummy Bears</h1>
<p>Ingredients: sugar, glucose syrup, gelatin.</p>
<button id="add-to-cart">Add to Cart</button>
</body></html>`

// fakeService is an httptest classifier that counts analyze calls.
type fakeService struct {
	server   *httptest.Server
	analyzes atomic.Int32
	requests chan classifier.Request
}

func newFakeService(t *testing.T, status int, result model.AnalysisResult) *fakeService {
	t.Helper()

	s := &fakeService{requests: make(chan classifier.Request, 16)}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("POST /api/analyze", func(w http.ResponseWriter, r *http.Request) {
		s.analyzes.Add(1)

		var req classifier.Request
		if err := json.NewDecoder(r.Body).Decode(&req); err == nil {
			s.requests <- req
		}

		if status != http.StatusOK {
			w.WriteHeader(status)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(result) //nolint:errcheck // test server
	})
	s.server = httptest.NewServer(mux)
	t.Cleanup(s.server.Close)
	return s
}

// cli runs vegancheck commands against one database and config file.
type cli struct {
	dbDir  string
	config string
}

func newCLI(t *testing.T, endpoint string) *cli {
	t.Helper()

	dir := t.TempDir()
	configPath := filepath.Join(dir, ".vegancheck")
	if err := os.WriteFile(configPath, []byte("endpoint: "+endpoint+"\n"), 0600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return &cli{dbDir: filepath.Join(dir, "db"), config: configPath}
}

func (c *cli) run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(append([]string{"--config", c.config, "--db-dir", c.dbDir}, args...))

	err := root.Execute()
	if err != nil {
		t.Logf("stderr: %s", stderr.String())
	}
	return stdout.String(), err
}

func writePage(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write page: %v", err)
	}
	return path
}

func veganResult() model.AnalysisResult {
	return model.AnalysisResult{
		Analysis: model.Analysis{
			IsShoppingItem:  model.Bool(true),
			IsVegan:         model.Bool(true),
			ConfidenceLevel: model.ConfidencePtr(model.ConfidenceHigh),
			Summary:         "Plant-based gummies",
		},
		PageTitle: "Gummy Bears",
	}
}

// TestAnalyzeIntegration runs analyze, history and ingredients end to end.
func TestAnalyzeIntegration(t *testing.T) {
	service := newFakeService(t, http.StatusOK, veganResult())
	c := newCLI(t, service.server.URL)
	page := writePage(t, "gummy.html", gummyPage)

	if _, err := c.run(t, "ingredients", "add", "  Palm Oil "); err != nil {
		t.Fatalf("ingredients add failed: %v", err)
	}

	out, err := c.run(t, "analyze", "--json", page)
	if err != nil {
		t.Fatalf("analyze failed: %v", err)
	}

	var decoded report.JSONReport
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("analyze output is not JSON: %v\n%s", err, out)
	}
	if decoded.Verdict != "🌱 This item is VEGAN" {
		t.Errorf("unexpected verdict %q", decoded.Verdict)
	}
	if decoded.Report == nil || decoded.Report.Trigger != "click" {
		t.Errorf("expected the cart button to be clicked, got %+v", decoded.Report)
	}
	if decoded.Report != nil && len(decoded.Report.CartControls) != 1 {
		t.Errorf("expected 1 cart control, got %v", decoded.Report.CartControls)
	}

	select {
	case req := <-service.requests:
		if req.Title != "Gummy Bears" {
			t.Errorf("unexpected title %q", req.Title)
		}
		if len(req.UserAvoidedIngredients) != 1 || req.UserAvoidedIngredients[0] != "Palm Oil" {
			t.Errorf("expected trimmed avoided ingredients, got %v", req.UserAvoidedIngredients)
		}
		if strings.Contains(req.Content, "Home | Candy") {
			t.Error("navigation should be stripped from the content")
		}
		if !strings.Contains(req.Content, "gelatin") {
			t.Errorf("expected ingredients in content, got %q", req.Content)
		}
	default:
		t.Fatal("expected the classifier to receive a request")
	}

	// The second check is served from the cache and leaves no history entry.
	if _, err := c.run(t, "analyze", page); err != nil {
		t.Fatalf("second analyze failed: %v", err)
	}
	if n := service.analyzes.Load(); n != 1 {
		t.Errorf("expected 1 classifier call, got %d", n)
	}

	out, err = c.run(t, "history", "list", "--json")
	if err != nil {
		t.Fatalf("history list failed: %v", err)
	}
	var history []model.HistoryEntry
	if err := json.Unmarshal([]byte(out), &history); err != nil {
		t.Fatalf("history output is not JSON: %v", err)
	}
	if len(history) != 1 || history[0].Title != "Gummy Bears" {
		t.Errorf("unexpected history %+v", history)
	}

	if _, err := c.run(t, "history", "clear"); err != nil {
		t.Fatalf("history clear failed: %v", err)
	}
	out, err = c.run(t, "history", "list")
	if err != nil {
		t.Fatalf("history list failed: %v", err)
	}
	if !strings.Contains(out, "No analysis history yet") {
		t.Errorf("expected empty history, got %q", out)
	}

	out, err = c.run(t, "sweep")
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	if !strings.Contains(out, "Removed 0 expired result(s)") {
		t.Errorf("fresh results must survive the sweep, got %q", out)
	}
}

// TestAnalyzeIntegration_ClassifierFailure tests that a failing classifier
// fails the command.
func TestAnalyzeIntegration_ClassifierFailure(t *testing.T) {
	service := newFakeService(t, http.StatusInternalServerError, model.AnalysisResult{})
	c := newCLI(t, service.server.URL)
	page := writePage(t, "gummy.html", gummyPage)

	out, err := c.run(t, "analyze", page)
	if err == nil {
		t.Fatal("expected an error")
	}
	if !strings.Contains(err.Error(), "1 of 1 page checks failed") {
		t.Errorf("unexpected error %v", err)
	}
	if !strings.Contains(out, "ERROR") {
		t.Errorf("expected the report to show the error, got %q", out)
	}
}

// TestIngredientsCmd tests the avoided-ingredient commands.
func TestIngredientsCmd(t *testing.T) {
	c := newCLI(t, "http://127.0.0.1:1")

	out, err := c.run(t, "ingredients", "list")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if !strings.Contains(out, "No avoided ingredients") {
		t.Errorf("expected empty list, got %q", out)
	}

	if _, err := c.run(t, "ingredients", "add", " honey "); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if _, err := c.run(t, "ingredients", "add", "honey"); err == nil {
		t.Error("expected duplicate ingredient to fail")
	}

	out, err = c.run(t, "ingredients", "list")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if strings.TrimSpace(out) != "honey" {
		t.Errorf("expected honey, got %q", out)
	}

	if _, err := c.run(t, "ingredients", "remove", "honey"); err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	if _, err := c.run(t, "ingredients", "remove", "honey"); err == nil {
		t.Error("expected removing a missing ingredient to fail")
	}
}

// TestHealthCmd tests the classifier health check.
func TestHealthCmd(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		service := newFakeService(t, http.StatusOK, veganResult())
		c := newCLI(t, service.server.URL)

		out, err := c.run(t, "health")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(out, "is healthy") {
			t.Errorf("unexpected output %q", out)
		}
	})

	t.Run("unhealthy", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		t.Cleanup(server.Close)
		c := newCLI(t, "http://127.0.0.1:1")

		_, err := c.run(t, "health", "-e", server.URL)
		if err == nil || !strings.Contains(err.Error(), "unhealthy") {
			t.Errorf("expected unhealthy error, got %v", err)
		}
	})
}
