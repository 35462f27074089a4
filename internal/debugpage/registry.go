// Package debugpage captures failures with their stack and source context
// and renders them as a debug page.
//
// Handlers are installed through an explicit Registry owned by main instead
// of process-wide hooks. A Registry is used three ways:
//   - Handle reports an error to the registered handler
//   - Recover, deferred in main, turns a panic into a report and exits
//   - Middleware recovers panics inside HTTP handlers and answers with the
//     rendered report
package debugpage

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"

	"go.uber.org/zap"

	"github.com/cartwryte/sleuth/internal/config"
)

var (
	// ErrAlreadyRegistered indicates a handler is already installed.
	ErrAlreadyRegistered = errors.New("debug handler already registered")

	// ErrNotRegistered indicates no handler is installed.
	ErrNotRegistered = errors.New("debug handler not registered")
)

// PanicExitCode is the process exit code after a recovered panic.
const PanicExitCode = 2

// Handler receives captured reports.
type Handler interface {
	Handle(rep *Report) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(rep *Report) error

// Handle implements Handler.
func (f HandlerFunc) Handle(rep *Report) error {
	return f(rep)
}

// WriterHandler renders every report to a writer.
type WriterHandler struct {
	w        io.Writer
	renderer Renderer
}

// NewWriterHandler returns a handler rendering to w.
func NewWriterHandler(w io.Writer, renderer Renderer) *WriterHandler {
	return &WriterHandler{w: w, renderer: renderer}
}

// Handle implements Handler.
func (h *WriterHandler) Handle(rep *Report) error {
	return h.renderer.Render(h.w, rep)
}

// Options configure a Registry.
type Options struct {
	// Capturer builds reports; nil uses NewCapturer with links disabled
	Capturer *Capturer

	// Logger receives every handled failure; nil discards
	Logger *zap.Logger

	// HideDetails answers HTTP failures with a redirect to ErrorPage
	// instead of the report
	HideDetails bool
	ErrorPage   string

	// Exit ends the process after a recovered panic; nil uses os.Exit
	Exit func(code int)
}

// Registry holds at most one handler.
type Registry struct {
	mu       sync.Mutex
	handler  Handler
	capturer *Capturer
	logger   *zap.Logger
	opts     Options
	exit     func(int)
}

// NewRegistry creates an empty registry.
func NewRegistry(opts Options) *Registry {
	r := &Registry{
		capturer: opts.Capturer,
		logger:   opts.Logger,
		opts:     opts,
		exit:     opts.Exit,
	}
	if r.capturer == nil {
		r.capturer = NewCapturer(config.EditorConfig{})
	}
	if r.logger == nil {
		r.logger = zap.NewNop()
	}
	if r.exit == nil {
		r.exit = os.Exit
	}
	r.logger = r.logger.Named("debugpage")
	return r
}

// Register installs h.
func (r *Registry) Register(h Handler) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.handler != nil {
		return ErrAlreadyRegistered
	}
	r.handler = h
	return nil
}

// Unregister removes the installed handler.
func (r *Registry) Unregister() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.handler == nil {
		return ErrNotRegistered
	}
	r.handler = nil
	return nil
}

// IsRegistered reports whether a handler is installed.
func (r *Registry) IsRegistered() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.handler != nil
}

// Handle captures err at the caller and passes the report to the handler.
func (r *Registry) Handle(err error) error {
	h := r.current()
	if h == nil {
		return ErrNotRegistered
	}
	rep := r.capturer.Capture(err, 1)
	r.log(rep)
	return h.Handle(rep)
}

// Recover must be deferred directly. A panic is captured, handed to the
// handler and ends the process with PanicExitCode. Without a handler the
// panic continues.
func (r *Registry) Recover() {
	v := recover()
	if v == nil {
		return
	}

	h := r.current()
	if h == nil {
		panic(v)
	}

	// Skip runtime.gopanic so the report starts at the panicking frame
	rep := r.capturer.Capture(panicError(v), 1)
	r.log(rep)
	if err := h.Handle(rep); err != nil {
		r.logger.Error("debug handler failed", zap.Error(err))
	}
	r.exit(PanicExitCode)
}

// Middleware recovers panics in next and answers with the rendered report:
// JSON for AJAX callers, plain text otherwise. http.ErrAbortHandler is
// re-panicked so net/http can abort the connection.
func (r *Registry) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		defer func() {
			v := recover()
			if v == nil {
				return
			}
			if err, ok := v.(error); ok && errors.Is(err, http.ErrAbortHandler) {
				panic(v)
			}

			rep := r.capturer.Capture(panicError(v), 1).WithRequest(req)
			r.log(rep)
			r.respond(w, req, rep)
		}()
		next.ServeHTTP(w, req)
	})
}

func (r *Registry) respond(w http.ResponseWriter, req *http.Request, rep *Report) {
	if r.opts.HideDetails {
		http.Redirect(w, req, r.opts.ErrorPage, http.StatusFound)
		return
	}

	renderer := RendererFor(DetectResponseType(req))
	w.Header().Set("Content-Type", renderer.ContentType())
	w.WriteHeader(http.StatusInternalServerError)
	if err := renderer.Render(w, rep); err != nil {
		r.logger.Error("failed to render debug page", zap.Error(err))
	}
}

func (r *Registry) current() Handler {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.handler
}

func (r *Registry) log(rep *Report) {
	r.logger.Error(rep.Message,
		zap.String("class", rep.Class),
		zap.String("file", rep.File),
		zap.Int("line", rep.Line),
	)
}

// panicError converts a recovered value to an error.
func panicError(v any) error {
	if err, ok := v.(error); ok {
		return fmt.Errorf("panic: %w", err)
	}
	return fmt.Errorf("panic: %v", v)
}
