// Package browser provides a transform runtime that runs project JavaScript
// in headless Chrome pages, one page per project.
package browser

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/custodia-labs/docere-indexer/internal/core/domain"
	"github.com/custodia-labs/docere-indexer/internal/core/ports/driven"
	"github.com/custodia-labs/docere-indexer/internal/logger"
)

// Name is the runtime name projects select with runtime = "browser".
const Name = "browser"

// Ensure Runtime and Session implement the interfaces.
var (
	_ driven.TransformRuntime = (*Runtime)(nil)
	_ driven.TransformSession = (*Session)(nil)
)

// Config configures the browser runtime.
type Config struct {
	// RemoteURL is the DevTools WebSocket URL of an external Chrome.
	// Empty launches a local headless Chrome.
	RemoteURL string

	// Bin is the Chrome binary to launch. Empty lets the launcher find or
	// download one.
	Bin string
}

// Runtime owns the Chrome process shared by all browser sessions. Chrome is
// started on the first NewSession.
type Runtime struct {
	cfg Config

	mu      sync.Mutex
	browser *rod.Browser
	lnch    *launcher.Launcher
	closed  bool
}

// New creates a browser runtime.
func New(cfg Config) *Runtime {
	return &Runtime{cfg: cfg}
}

// Name returns the runtime name.
func (r *Runtime) Name() string {
	return Name
}

// NewSession opens a page, installs the bootstrap and injects the project's
// scripts. Script files are read before Chrome is touched.
func (r *Runtime) NewSession(ctx context.Context, cfg *domain.ProjectConfig) (driven.TransformSession, error) {
	scripts, err := readScripts(cfg.Scripts)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrSessionInit, err)
	}

	b, err := r.connect()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrSessionInit, err)
	}

	page, err := b.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return nil, fmt.Errorf("%w: create page: %w", domain.ErrSessionInit, err)
	}

	if err := setup(page.Context(ctx), cfg, scripts); err != nil {
		_ = page.Close()
		return nil, fmt.Errorf("%w: project %s: %w", domain.ErrSessionInit, cfg.ID, err)
	}

	logger.Debug("Browser page ready for project %s (%d scripts)", cfg.ID, len(scripts))
	return &Session{page: page}, nil
}

func setup(page *rod.Page, cfg *domain.ProjectConfig, scripts []script) error {
	if _, err := page.Eval(bootstrap); err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}
	if _, err := page.Eval(`(config) => __docere.configure(config)`, cfg.Config); err != nil {
		return fmt.Errorf("configure: %w", err)
	}
	for _, s := range scripts {
		if err := page.AddScriptTag("", s.source); err != nil {
			return fmt.Errorf("inject %s: %w", s.path, err)
		}
	}

	res, err := page.Eval(`() => __docere.ready()`)
	if err != nil {
		return err
	}
	var missing []string
	if err := res.Value.Unmarshal(&missing); err != nil {
		return err
	}
	if len(missing) > 0 {
		return fmt.Errorf("scripts replaced stage functions with non-functions: %v", missing)
	}
	return nil
}

type script struct {
	path   string
	source string
}

// readScripts loads the include scripts, then the stage scripts, skipping
// empty references.
func readScripts(s domain.Scripts) ([]script, error) {
	paths := append(append([]string{}, s.Include...), s.Normalize, s.Entities, s.Metadata, s.Facsimiles)
	seen := make(map[string]bool, len(paths))

	var out []script
	for _, p := range paths {
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("read script: %w", err)
		}
		out = append(out, script{path: p, source: string(data)})
	}
	return out, nil
}

func (r *Runtime) connect() (*rod.Browser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, errors.New("browser runtime closed")
	}
	if r.browser != nil {
		return r.browser, nil
	}

	wsURL := r.cfg.RemoteURL
	if wsURL == "" {
		l := launcher.New().Headless(true)
		if r.cfg.Bin != "" {
			l = l.Bin(r.cfg.Bin)
		}
		u, err := l.Launch()
		if err != nil {
			return nil, fmt.Errorf("launch chrome: %w", err)
		}
		wsURL = u
		r.lnch = l
		logger.Info("Launched headless Chrome")
	}

	b := rod.New().ControlURL(wsURL)
	if err := b.Connect(); err != nil {
		r.cleanup()
		return nil, fmt.Errorf("connect chrome: %w", err)
	}
	r.browser = b
	return b, nil
}

// Close shuts Chrome down. Sessions must be closed first.
func (r *Runtime) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return r.cleanup()
}

func (r *Runtime) cleanup() error {
	var err error
	if r.browser != nil {
		err = r.browser.Close()
		r.browser = nil
	}
	if r.lnch != nil {
		r.lnch.Cleanup()
		r.lnch = nil
	}
	return err
}
