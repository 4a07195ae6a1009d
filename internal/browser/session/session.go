// File: internal/browser/session/session.go
package session

import (
	"context"
	"sync"

	"github.com/chromedp/chromedp"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/autoedu/autoedu-cli/api/schemas"
	"github.com/autoedu/autoedu-cli/internal/config"
)

// Manager owns browser session lifecycle: launch, initial navigation,
// teardown. One Manager can open sessions sequentially; a session is
// owned exclusively by one pipeline run.
type Manager struct {
	cfg    config.BrowserConfig
	logger *zap.Logger
}

// NewManager creates a session manager.
func NewManager(cfg config.BrowserConfig, logger *zap.Logger) *Manager {
	return &Manager{cfg: cfg, logger: logger.Named("session")}
}

// Session is one live Chrome session. It implements
// schemas.SessionContext; element primitives live in primitives.go.
type Session struct {
	id     string
	ctx    context.Context
	logger *zap.Logger

	cancelBrowser context.CancelFunc
	cancelAlloc   context.CancelFunc
	closeOnce     sync.Once
}

var _ schemas.SessionContext = (*Session)(nil)

// Open launches a browser, navigates to targetURL and maximizes the
// window. Launch plus navigation must finish within the configured
// startup timeout or Open fails with a session error and nothing leaks.
func (m *Manager) Open(ctx context.Context, targetURL string) (*Session, error) {
	sessionID := uuid.New().String()
	log := m.logger.With(zap.String("session_id", sessionID))

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", m.cfg.Headless),
		chromedp.Flag("start-maximized", true),
		// Portal sites routinely run with sloppy TLS on staging mirrors.
		chromedp.IgnoreCertErrors,
	)

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(log.Sugar().Debugf),
		chromedp.WithErrorf(log.Sugar().Errorf),
	)

	s := &Session{
		id:            sessionID,
		ctx:           browserCtx,
		logger:        log,
		cancelBrowser: cancelBrowser,
		cancelAlloc:   cancelAlloc,
	}

	startCtx := browserCtx
	if m.cfg.StartupTimeout > 0 {
		var cancel context.CancelFunc
		startCtx, cancel = context.WithTimeout(browserCtx, m.cfg.StartupTimeout)
		defer cancel()
	}

	log.Info("Launching browser", zap.String("url", targetURL), zap.Bool("headless", m.cfg.Headless))
	if err := chromedp.Run(startCtx, chromedp.Navigate(targetURL)); err != nil {
		s.Close()
		return nil, schemas.NewSessionError("browser startup or initial navigation failed", err)
	}

	return s, nil
}

// Close releases the session. Idempotent: the session manager contract
// guarantees release on every exit path, so callers defer it freely.
func (m *Manager) Close(s *Session) {
	if s != nil {
		s.Close()
	}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Close terminates the browser and releases the allocator. Safe to
// call more than once.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.logger.Info("Closing session")
		// Graceful browser shutdown first, then kill the allocator.
		if err := chromedp.Cancel(s.ctx); err != nil {
			s.logger.Debug("Browser shutdown reported error", zap.Error(err))
		}
		s.cancelBrowser()
		s.cancelAlloc()
	})
}

// Navigate loads a URL in the session.
func (s *Session) Navigate(ctx context.Context, url string) error {
	runCtx, cancel := combineContext(s.ctx, ctx)
	defer cancel()

	s.logger.Info("Navigating", zap.String("url", url))
	if err := chromedp.Run(runCtx, chromedp.Navigate(url)); err != nil {
		if s.ctx.Err() != nil {
			return schemas.NewSessionError("session closed during navigation", err)
		}
		return err
	}
	return nil
}

// CurrentURL reports the page the session is on.
func (s *Session) CurrentURL(ctx context.Context) (string, error) {
	runCtx, cancel := combineContext(s.ctx, ctx)
	defer cancel()

	var url string
	if err := chromedp.Run(runCtx, chromedp.Location(&url)); err != nil {
		return "", err
	}
	return url, nil
}
