// File: internal/portal/udise/portal.go

// Package udise automates the student workflows of the UDISE+ school
// education portal: credential login with manual captcha entry, student
// import by PEN and date of birth, PEN recovery by Aadhaar number,
// release requests towards a student's current school, and section
// shifts within a class.
package udise

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/autoedu/autoedu-cli/api/schemas"
	"github.com/autoedu/autoedu-cli/internal/browser/interactor"
	"github.com/autoedu/autoedu-cli/internal/browser/resolver"
	"github.com/autoedu/autoedu-cli/internal/config"
	"github.com/autoedu/autoedu-cli/internal/dispatch"
)

const (
	// ModuleKey identifies the student module in the task registry.
	ModuleKey = "student"
	// TaskImport imports students into the logged-in school.
	TaskImport = "import"
	// TaskSearchPEN recovers a student's PEN from Aadhaar details.
	TaskSearchPEN = "search_pen"
	// TaskReleaseRequest asks a student's current school to release
	// them so a later import can go through.
	TaskReleaseRequest = "release_request"
	// TaskSectionShift moves students into the section their record
	// names.
	TaskSectionShift = "section_shift"
)

// Portal drives the UDISE+ student module through the resilient
// interaction core. One Portal serves one logged-in browser session.
type Portal struct {
	cfg    config.PortalConfig
	inter  *interactor.Interactor
	res    *resolver.Resolver
	logger *zap.Logger

	// probeWait bounds a single presence check; verdictWait bounds the
	// whole wait for the portal's lookup verdict; verdictPoll paces the
	// rounds in between.
	probeWait   time.Duration
	verdictWait time.Duration
	verdictPoll time.Duration

	menuReady        bool
	releaseMenuReady bool
	shiftMenuReady   bool
	shiftPages       int
}

// New creates a portal bound to the interaction core of one session.
func New(cfg config.PortalConfig, inter *interactor.Interactor, res *resolver.Resolver, logger *zap.Logger) *Portal {
	return &Portal{
		cfg:         cfg,
		inter:       inter,
		res:         res,
		logger:      logger.Named("udise"),
		probeWait:   2 * time.Second,
		verdictWait: 12 * time.Second,
		verdictPoll: 250 * time.Millisecond,
	}
}

// Register binds the portal's routines into the task registry.
func (p *Portal) Register(reg *dispatch.Registry) {
	reg.Register(ModuleKey, TaskImport, p.ImportStudent)
	reg.Register(ModuleKey, TaskSearchPEN, p.SearchPEN)
	reg.Register(ModuleKey, TaskReleaseRequest, p.GenerateReleaseRequest)
	reg.Register(ModuleKey, TaskSectionShift, p.ShiftSection)
}

// probe checks for an element's presence within a short bounded wait.
// Absence is an expected outcome here, not an error.
func (p *Portal) probe(ctx context.Context, sess schemas.PagePrimitives, loc schemas.Locator) (schemas.ElementHandle, bool) {
	probeCtx, cancel := context.WithTimeout(ctx, p.probeWait)
	defer cancel()

	h, err := sess.ResolveNode(probeCtx, loc)
	if err != nil {
		return nil, false
	}
	return h, true
}

// probeText reads the visible text of an element if it is present.
func (p *Portal) probeText(ctx context.Context, sess schemas.PagePrimitives, loc schemas.Locator) (string, bool) {
	h, ok := p.probe(ctx, sess, loc)
	if !ok {
		return "", false
	}
	text, err := sess.NodeText(ctx, h)
	if err != nil {
		return "", false
	}
	return text, true
}

func (p *Portal) click(ctx context.Context, loc schemas.Locator) error {
	if out := p.inter.ClickWithRetry(ctx, loc); !out.Success {
		return out.Err
	}
	return nil
}

func (p *Portal) fill(ctx context.Context, loc schemas.Locator, value string) error {
	if out := p.inter.FillField(ctx, loc, value); !out.Success {
		return out.Err
	}
	return nil
}
