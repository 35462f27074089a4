package debugpage

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// recorder is a Handler that keeps every report.
type recorder struct {
	reports []*Report
}

func (r *recorder) Handle(rep *Report) error {
	r.reports = append(r.reports, rep)
	return nil
}

func TestRegistry_RegisterUnregister(t *testing.T) {
	reg := NewRegistry(Options{})

	if err := reg.Unregister(); !errors.Is(err, ErrNotRegistered) {
		t.Errorf("Unregister on empty registry: got %v, want ErrNotRegistered", err)
	}
	if err := reg.Register(&recorder{}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if !reg.IsRegistered() {
		t.Error("expected registered")
	}
	if err := reg.Register(&recorder{}); !errors.Is(err, ErrAlreadyRegistered) {
		t.Errorf("second Register: got %v, want ErrAlreadyRegistered", err)
	}
	if err := reg.Unregister(); err != nil {
		t.Fatalf("Unregister failed: %v", err)
	}
	if reg.IsRegistered() {
		t.Error("expected unregistered")
	}
}

func TestRegistry_Handle(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	reg := NewRegistry(Options{Logger: zap.New(core)})

	if err := reg.Handle(errors.New("boom")); !errors.Is(err, ErrNotRegistered) {
		t.Errorf("Handle without handler: got %v", err)
	}

	rec := &recorder{}
	if err := reg.Register(rec); err != nil {
		t.Fatal(err)
	}
	if err := reg.Handle(errors.New("boom")); err != nil {
		t.Fatalf("Handle failed: %v", err)
	}

	if len(rec.reports) != 1 {
		t.Fatalf("expected 1 report, got %d", len(rec.reports))
	}
	rep := rec.reports[0]
	if rep.Message != "boom" {
		t.Errorf("Message = %q", rep.Message)
	}
	if !strings.HasSuffix(rep.Frames[0].Function, "TestRegistry_Handle") {
		t.Errorf("first frame should be the caller of Handle, got %s", rep.Frames[0].Function)
	}

	if logs.Len() != 1 || logs.All()[0].Message != "boom" {
		t.Errorf("expected one logged failure, got %+v", logs.All())
	}
}

func panicky() {
	panic("kaboom")
}

func TestRegistry_RecoverExits(t *testing.T) {
	exitCode := -1
	rec := &recorder{}
	reg := NewRegistry(Options{Exit: func(code int) { exitCode = code }})
	if err := reg.Register(rec); err != nil {
		t.Fatal(err)
	}

	func() {
		defer reg.Recover()
		panicky()
	}()

	if exitCode != PanicExitCode {
		t.Errorf("exit code = %d, want %d", exitCode, PanicExitCode)
	}
	if len(rec.reports) != 1 {
		t.Fatalf("expected 1 report, got %d", len(rec.reports))
	}
	rep := rec.reports[0]
	if rep.Message != "panic: kaboom" {
		t.Errorf("Message = %q", rep.Message)
	}

	var open *Frame
	for i := range rep.Frames {
		if rep.Frames[i].Open {
			open = &rep.Frames[i]
		}
	}
	if open == nil || !strings.HasSuffix(open.Function, ".panicky") {
		t.Errorf("error location should be panicky, got %+v", open)
	}
}

func TestRegistry_RecoverWithoutHandlerRepanics(t *testing.T) {
	reg := NewRegistry(Options{Exit: func(int) { t.Error("exit must not be called") }})

	defer func() {
		if v := recover(); v != "kaboom" {
			t.Errorf("expected the original panic, got %v", v)
		}
	}()

	func() {
		defer reg.Recover()
		panicky()
	}()
}

func TestRegistry_Middleware(t *testing.T) {
	reg := NewRegistry(Options{})
	handler := reg.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic(errors.New("handler failed"))
	}))

	t.Run("json for ajax", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/index.php?route=checkout/cart", nil)
		req.Header.Set("X-Requested-With", "XMLHttpRequest")
		rr := httptest.NewRecorder()

		handler.ServeHTTP(rr, req)

		if rr.Code != http.StatusInternalServerError {
			t.Errorf("status = %d", rr.Code)
		}
		if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}
		var payload map[string]any
		if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if payload["message"] != "panic: handler failed" {
			t.Errorf("message = %v", payload["message"])
		}
		info := payload["tech_info"].(map[string]any)
		if info["requestMethod"] != http.MethodPost || info["requestUri"] != "/index.php?route=checkout/cart" {
			t.Errorf("request not recorded: %v", info)
		}
	})

	t.Run("text otherwise", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Accept", "text/html,application/xhtml+xml")
		rr := httptest.NewRecorder()

		handler.ServeHTTP(rr, req)

		if !strings.HasPrefix(rr.Header().Get("Content-Type"), "text/plain") {
			t.Errorf("Content-Type = %q", rr.Header().Get("Content-Type"))
		}
		if !strings.Contains(rr.Body.String(), "panic: handler failed") {
			t.Errorf("body missing message:\n%s", rr.Body.String())
		}
	})
}

func TestRegistry_MiddlewareHideDetails(t *testing.T) {
	reg := NewRegistry(Options{HideDetails: true, ErrorPage: "/error.html"})
	handler := reg.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("secret")
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	if rr.Code != http.StatusFound || rr.Header().Get("Location") != "/error.html" {
		t.Errorf("expected redirect, got %d %q", rr.Code, rr.Header().Get("Location"))
	}
	if strings.Contains(rr.Body.String(), "secret") {
		t.Error("details leaked into the redirect")
	}
}

func TestWriterHandler(t *testing.T) {
	var buf bytes.Buffer
	h := NewWriterHandler(&buf, TextRenderer{})

	if err := h.Handle(Capture(errors.New("disk full"), 0)); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "disk full") {
		t.Errorf("output missing message:\n%s", buf.String())
	}
}

func TestRegistry_MiddlewareServer(t *testing.T) {
	reg := NewRegistry(Options{})
	ts := httptest.NewServer(reg.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/ok" {
			_, _ = w.Write([]byte("fine"))
			return
		}
		panic("template missing")
	})))
	client := ts.Client()
	defer func() {
		client.CloseIdleConnections()
		ts.Close()
	}()

	resp, err := client.Get(ts.URL + "/ok")
	if err != nil {
		t.Fatal(err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("healthy route status = %d", resp.StatusCode)
	}

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/broken", nil)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Accept", "application/json")
	resp, err = client.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("status = %d", resp.StatusCode)
	}
	var payload map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if payload["message"] != "panic: template missing" {
		t.Errorf("message = %v", payload["message"])
	}
}
