package oracle

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"
)

type fakeExecutor struct {
	responses [][]byte
	errs      []error
	calls     int
	lookPath  error
	lastDir   string
	lastArgs  []string
}

func (f *fakeExecutor) Run(ctx context.Context, dir, name string, args ...string) ([]byte, []byte, error) {
	f.lastDir = dir
	f.lastArgs = append([]string{name}, args...)
	i := f.calls
	f.calls++
	var err error
	if i < len(f.errs) {
		err = f.errs[i]
	}
	var out []byte
	if i < len(f.responses) {
		out = f.responses[i]
	}
	return out, nil, err
}

func (f *fakeExecutor) LookPath(string) error { return f.lookPath }

func envelope(t *testing.T, answer string) []byte {
	t.Helper()
	out, err := json.Marshal(map[string]string{"result": answer})
	if err != nil {
		t.Fatalf("marshal envelope: %v", err)
	}
	return out
}

func newTestClient(exec Executor) *Client {
	return NewClient(Config{
		Binary:      "claude",
		Model:       "sonnet",
		Timeout:     time.Second,
		MaxAttempts: 3,
	}, exec, nil)
}

func TestEnrichBatchParsesDirectArray(t *testing.T) {
	answer := `[{"description":"A grey stone wall.","tags":["wall","stone"],"tile_type":"wall"}]`
	exec := &fakeExecutor{responses: [][]byte{envelope(t, answer)}}
	client := newTestClient(exec)

	results, err := client.EnrichBatch(context.Background(), "prompt", t.TempDir())
	if err != nil {
		t.Fatalf("EnrichBatch returned error: %v", err)
	}
	if len(results) != 1 || results[0].TileType != "wall" {
		t.Fatalf("unexpected results: %+v", results)
	}
	if exec.lastArgs[0] != "claude" || exec.lastArgs[1] != "-p" {
		t.Fatalf("unexpected argv: %v", exec.lastArgs)
	}
}

func TestEnrichBatchStripsCodeFences(t *testing.T) {
	answer := "Here you go:\n```json\n[{\"description\":\"d\",\"tags\":[\"door\"],\"tile_type\":\"door\"}]\n```"
	exec := &fakeExecutor{responses: [][]byte{envelope(t, answer)}}
	results, err := newTestClient(exec).EnrichBatch(context.Background(), "prompt", t.TempDir())
	if err != nil {
		t.Fatalf("EnrichBatch returned error: %v", err)
	}
	if len(results) != 1 || results[0].Tags[0] != "door" {
		t.Fatalf("unexpected results: %+v", results)
	}
}

func TestEnrichBatchScansForEmbeddedArray(t *testing.T) {
	answer := `Sure. The array is [{"description":"d","tags":["floor"],"tile_type":"floor"}] as requested.`
	exec := &fakeExecutor{responses: [][]byte{envelope(t, answer)}}
	results, err := newTestClient(exec).EnrichBatch(context.Background(), "prompt", t.TempDir())
	if err != nil {
		t.Fatalf("EnrichBatch returned error: %v", err)
	}
	if len(results) != 1 || results[0].TileType != "floor" {
		t.Fatalf("unexpected results: %+v", results)
	}
}

func TestEnrichBatchReadsContentBlockEnvelope(t *testing.T) {
	body := map[string]any{
		"content": []map[string]string{
			{"type": "text", "text": `[{"description":"d","tags":["wall"],"tile_type":"wall"}]`},
		},
	}
	out, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal envelope: %v", err)
	}
	exec := &fakeExecutor{responses: [][]byte{out}}
	results, err := newTestClient(exec).EnrichBatch(context.Background(), "prompt", t.TempDir())
	if err != nil {
		t.Fatalf("EnrichBatch returned error: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("unexpected results: %+v", results)
	}
}

func TestEnrichBatchRetriesTransientFailures(t *testing.T) {
	good := envelope(t, `[{"description":"d","tags":["wall"],"tile_type":"wall"}]`)
	exec := &fakeExecutor{
		responses: [][]byte{nil, []byte("not json"), good},
		errs:      []error{fmt.Errorf("exit status 1"), nil, nil},
	}
	results, err := newTestClient(exec).EnrichBatch(context.Background(), "prompt", t.TempDir())
	if err != nil {
		t.Fatalf("EnrichBatch returned error: %v", err)
	}
	if exec.calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", exec.calls)
	}
	if len(results) != 1 {
		t.Fatalf("unexpected results: %+v", results)
	}
}

func TestEnrichBatchExhaustsRetries(t *testing.T) {
	exec := &fakeExecutor{
		responses: [][]byte{nil, nil, nil},
		errs:      []error{errors.New("boom"), errors.New("boom"), errors.New("boom")},
	}
	_, err := newTestClient(exec).EnrichBatch(context.Background(), "prompt", t.TempDir())
	if err == nil {
		t.Fatal("expected error after exhausted retries")
	}
	if !errors.Is(err, ErrTransport) {
		t.Fatalf("expected ErrTransport, got %v", err)
	}
	if exec.calls != 3 {
		t.Fatalf("expected exactly 3 attempts, got %d", exec.calls)
	}
}

func TestVerifyBatchKeepsOnlyIndexedFixes(t *testing.T) {
	answer := `[{"index":2,"tags":["altar","sacred"]},{"tags":["no-index"]},{"index":0,"tags":["bad"]}]`
	exec := &fakeExecutor{responses: [][]byte{envelope(t, answer)}}
	fixes, err := newTestClient(exec).VerifyBatch(context.Background(), "prompt", t.TempDir())
	if err != nil {
		t.Fatalf("VerifyBatch returned error: %v", err)
	}
	if len(fixes) != 1 || fixes[0].Index != 2 {
		t.Fatalf("unexpected fixes: %+v", fixes)
	}
}

func TestVerifyBatchEmptyArrayMeansAllOK(t *testing.T) {
	exec := &fakeExecutor{responses: [][]byte{envelope(t, "[]")}}
	fixes, err := newTestClient(exec).VerifyBatch(context.Background(), "prompt", t.TempDir())
	if err != nil {
		t.Fatalf("VerifyBatch returned error: %v", err)
	}
	if len(fixes) != 0 {
		t.Fatalf("expected no fixes, got %+v", fixes)
	}
}

func TestAvailable(t *testing.T) {
	if err := newTestClient(&fakeExecutor{}).Available(); err != nil {
		t.Fatalf("Available returned error: %v", err)
	}
	missing := &fakeExecutor{lookPath: errors.New("not found")}
	if err := newTestClient(missing).Available(); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestScrubEnvDropsNestingVars(t *testing.T) {
	env := []string{"PATH=/bin", "CLAUDECODE=1", "CLAUDECODE_SESSION=x", "HOME=/root"}
	got := scrubEnv(env)
	if len(got) != 2 || got[0] != "PATH=/bin" || got[1] != "HOME=/root" {
		t.Fatalf("unexpected scrubbed env: %v", got)
	}
}
