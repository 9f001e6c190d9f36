package judge

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/verte-zerg/blindcode/internal/model"
)

type fakeJudge struct {
	creates  atomic.Int32
	polls    atomic.Int32
	results  []submissionResult
	mu       sync.Mutex
	lastBody createRequest
	lastKey  string
	lastHost string
}

func (f *fakeJudge) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/submissions", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		f.creates.Add(1)
		f.mu.Lock()
		defer f.mu.Unlock()
		f.lastKey = r.Header.Get("X-RapidAPI-Key")
		f.lastHost = r.Header.Get("X-RapidAPI-Host")
		if err := json.NewDecoder(r.Body).Decode(&f.lastBody); err != nil {
			t.Errorf("decode create body: %v", err)
		}
		_ = json.NewEncoder(w).Encode(createResponse{Token: "tok-1"})
	})
	mux.HandleFunc("/submissions/tok-1", func(w http.ResponseWriter, r *http.Request) {
		n := int(f.polls.Add(1)) - 1
		if n >= len(f.results) {
			n = len(f.results) - 1
		}
		_ = json.NewEncoder(w).Encode(f.results[n])
	})
	return mux
}

func newTestClient(url string) *Client {
	return New(Config{
		BaseURL:      url,
		Host:         "judge.test",
		APIKey:       "secret",
		PollInterval: time.Millisecond,
		MaxWait:      2 * time.Second,
	})
}

func done(stdout, stderr, compile string) submissionResult {
	return submissionResult{
		Status:        submissionStatus{ID: 3, Description: "Accepted"},
		Stdout:        stdout,
		Stderr:        stderr,
		CompileOutput: compile,
	}
}

func TestExecuteReturnsStdout(t *testing.T) {
	judge := &fakeJudge{results: []submissionResult{done("42\n", "", "")}}
	srv := httptest.NewServer(judge.handler(t))
	defer srv.Close()

	out := newTestClient(srv.URL).Execute(context.Background(), "print(15+27)", model.LanguagePython, "")
	if out.Failed() {
		t.Fatalf("unexpected error: %q", out.Error)
	}
	if out.Output != "42\n" {
		t.Fatalf("expected raw stdout, got %q", out.Output)
	}
	judge.mu.Lock()
	defer judge.mu.Unlock()
	if judge.lastBody.LanguageID != 71 || judge.lastBody.SourceCode != "print(15+27)" {
		t.Fatalf("unexpected create body: %+v", judge.lastBody)
	}
	if judge.lastKey != "secret" || judge.lastHost != "judge.test" {
		t.Fatalf("unexpected auth headers: key=%q host=%q", judge.lastKey, judge.lastHost)
	}
}

func TestExecutePollsUntilTerminal(t *testing.T) {
	judge := &fakeJudge{results: []submissionResult{
		{Status: submissionStatus{ID: 1, Description: "In Queue"}},
		{Status: submissionStatus{ID: 2, Description: "Processing"}},
		done("ok", "", ""),
	}}
	srv := httptest.NewServer(judge.handler(t))
	defer srv.Close()

	out := newTestClient(srv.URL).Execute(context.Background(), "x", model.LanguagePython, "10\n7")
	if out.Output != "ok" {
		t.Fatalf("expected ok, got %+v", out)
	}
	if got := judge.polls.Load(); got != 3 {
		t.Fatalf("expected 3 polls, got %d", got)
	}
	judge.mu.Lock()
	defer judge.mu.Unlock()
	if judge.lastBody.Stdin != "10\n7" {
		t.Fatalf("expected stdin forwarded, got %q", judge.lastBody.Stdin)
	}
}

func TestExecuteOutputMapping(t *testing.T) {
	cases := []struct {
		name    string
		result  submissionResult
		output  string
		errText string
		failure model.FailureKind
	}{
		{name: "stdout wins over stderr", result: done("42", "warning", ""), output: "42"},
		{name: "stderr", result: done("", "Traceback", ""), errText: "Traceback", failure: model.FailureRuntime},
		{name: "compile output", result: done("", "", "SyntaxError"), errText: "Compilation Error:\nSyntaxError", failure: model.FailureCompilation},
		{name: "status description", result: submissionResult{Status: submissionStatus{ID: 5, Description: "Time Limit Exceeded"}}, output: "Time Limit Exceeded"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			judge := &fakeJudge{results: []submissionResult{tc.result}}
			srv := httptest.NewServer(judge.handler(t))
			defer srv.Close()

			out := newTestClient(srv.URL).Execute(context.Background(), "x", model.LanguagePython, "")
			if out.Output != tc.output || out.Error != tc.errText || out.Failure != tc.failure {
				t.Fatalf("unexpected outcome: %+v", out)
			}
		})
	}
}

func TestExecuteMissingKeyMakesNoCalls(t *testing.T) {
	judge := &fakeJudge{results: []submissionResult{done("42", "", "")}}
	srv := httptest.NewServer(judge.handler(t))
	defer srv.Close()

	client := New(Config{BaseURL: srv.URL, PollInterval: time.Millisecond})
	out := client.Execute(context.Background(), "x", model.LanguagePython, "")
	if out.Output != "" || out.Error != MsgMissingAPIKey || out.Failure != model.FailureConfiguration {
		t.Fatalf("unexpected outcome: %+v", out)
	}
	if judge.creates.Load() != 0 || judge.polls.Load() != 0 {
		t.Fatalf("expected no network calls, got creates=%d polls=%d", judge.creates.Load(), judge.polls.Load())
	}
}

func TestExecuteUnsupportedLanguageMakesNoCalls(t *testing.T) {
	judge := &fakeJudge{results: []submissionResult{done("42", "", "")}}
	srv := httptest.NewServer(judge.handler(t))
	defer srv.Close()

	out := newTestClient(srv.URL).Execute(context.Background(), "x", "brainfuck", "")
	if out.Error != "Unsupported language: brainfuck" || out.Failure != model.FailureConfiguration {
		t.Fatalf("unexpected outcome: %+v", out)
	}
	if judge.creates.Load() != 0 {
		t.Fatalf("expected no network calls")
	}
}

func TestExecutePrefersUpstreamMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"message":"You have exceeded the rate limit"}`))
	}))
	defer srv.Close()

	out := newTestClient(srv.URL).Execute(context.Background(), "x", model.LanguagePython, "")
	if out.Error != "You have exceeded the rate limit" || out.Failure != model.FailureTransport {
		t.Fatalf("unexpected outcome: %+v", out)
	}
}

func TestExecuteFallbackMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("boom"))
	}))
	defer srv.Close()

	out := newTestClient(srv.URL).Execute(context.Background(), "x", model.LanguagePython, "")
	if out.Output != "" || out.Error != MsgUnexpected {
		t.Fatalf("unexpected outcome: %+v", out)
	}
}

func TestExecuteEmptyTokenIsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	out := newTestClient(srv.URL).Execute(context.Background(), "x", model.LanguagePython, "")
	if out.Error != MsgUnexpected || out.Failure != model.FailureTransport {
		t.Fatalf("unexpected outcome: %+v", out)
	}
}

func TestExecuteTimesOutWhenJobNeverFinishes(t *testing.T) {
	judge := &fakeJudge{results: []submissionResult{{Status: submissionStatus{ID: 2, Description: "Processing"}}}}
	srv := httptest.NewServer(judge.handler(t))
	defer srv.Close()

	client := New(Config{
		BaseURL:      srv.URL,
		APIKey:       "secret",
		PollInterval: 5 * time.Millisecond,
		MaxWait:      60 * time.Millisecond,
	})
	out := client.Execute(context.Background(), "x", model.LanguagePython, "")
	if out.Failure != model.FailureTimeout {
		t.Fatalf("expected timeout, got %+v", out)
	}
	if !strings.HasPrefix(out.Error, "Execution timed out after") {
		t.Fatalf("unexpected timeout message: %q", out.Error)
	}
	if judge.polls.Load() == 0 {
		t.Fatalf("expected at least one poll before timing out")
	}
}

func TestErrorKinds(t *testing.T) {
	err := error(transportError("", errors.New("dial tcp")))
	if !IsKind(err, KindTransport) {
		t.Fatalf("expected transport kind")
	}
	if IsKind(err, KindTimeout) {
		t.Fatalf("did not expect timeout kind")
	}
	if !strings.Contains(err.Error(), "dial tcp") {
		t.Fatalf("expected wrapped message, got %q", err.Error())
	}
}
