// File: internal/mocks/page.go
// Scripted fakes for the browser driver boundary. The interaction core
// is exercised against these instead of a live Chrome: each element
// script states how many resolves fail, how many simulated clicks are
// blocked, and what the fallback does.
package mocks

import (
	"context"
	"errors"
	"sync"

	"github.com/autoedu/autoedu-cli/api/schemas"
)

// ElementScript describes how a fake element behaves over successive
// interactions.
type ElementScript struct {
	// NeverFound makes every resolve block until the wait expires.
	NeverFound bool
	// FindFailures is how many initial resolves time out before the
	// element appears.
	FindFailures int
	// ClickBlocked is how many initial simulated clicks are rejected
	// with an interaction-blocked error.
	ClickBlocked int
	// ResolveErr makes every resolve fail immediately instead of
	// blocking, as when the driver rejects a malformed selector.
	ResolveErr error
	// ScriptClickErr is returned by the fallback click; nil succeeds.
	ScriptClickErr error
	// TextErr is returned by NodeText instead of Text.
	TextErr error
	// Value is the element's current input value; Text its innerText.
	Value string
	Text  string
	// ReportedValue, when set, is what NodeValue returns regardless of
	// what was typed (simulates a portal rewriting the field).
	ReportedValue *string

	finds        int
	Clicks       int
	ScriptClicks int
	TypedText    []string
	Cleared      int
	Selected     []string
}

// Finds reports how many resolves the element has served.
func (s *ElementScript) Finds() int { return s.finds }

// FakeSession implements schemas.SessionContext with scripted element
// behavior for tests.
type FakeSession struct {
	mu       sync.Mutex
	id       string
	elements map[string]*ElementScript

	NavigateErr error
	NavigatedTo []string
	URL         string
}

var _ schemas.SessionContext = (*FakeSession)(nil)

// NewFakeSession creates an empty fake session.
func NewFakeSession() *FakeSession {
	return &FakeSession{
		id:       "fake-session",
		elements: make(map[string]*ElementScript),
	}
}

// Script registers behavior for a locator and returns the script so
// tests can inspect counters afterwards.
func (f *FakeSession) Script(loc schemas.Locator, script *ElementScript) *ElementScript {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.elements[loc.String()] = script
	return script
}

type fakeHandle struct {
	loc    schemas.Locator
	script *ElementScript
}

func (h *fakeHandle) Locator() schemas.Locator { return h.loc }

func (f *FakeSession) ID() string { return f.id }

func (f *FakeSession) Navigate(_ context.Context, url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.NavigateErr != nil {
		return f.NavigateErr
	}
	f.NavigatedTo = append(f.NavigatedTo, url)
	f.URL = url
	return nil
}

func (f *FakeSession) CurrentURL(context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.URL, nil
}

func (f *FakeSession) ResolveNode(ctx context.Context, loc schemas.Locator) (schemas.ElementHandle, error) {
	f.mu.Lock()
	script, ok := f.elements[loc.String()]
	if ok {
		script.finds++
	}
	missing := !ok || script.NeverFound || script.finds <= script.FindFailures
	f.mu.Unlock()

	if ok && script.ResolveErr != nil {
		return nil, script.ResolveErr
	}
	if missing {
		// A real wait blocks until the deadline; emulate that so the
		// resolver classifies the failure as a timeout.
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return &fakeHandle{loc: loc, script: script}, nil
}

func (f *FakeSession) ResolveNodes(ctx context.Context, loc schemas.Locator, atLeastOne bool) ([]schemas.ElementHandle, error) {
	f.mu.Lock()
	script, ok := f.elements[loc.String()]
	f.mu.Unlock()

	if !ok || script.NeverFound {
		if !atLeastOne {
			return nil, nil
		}
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return []schemas.ElementHandle{&fakeHandle{loc: loc, script: script}}, nil
}

func (f *FakeSession) ClickNode(_ context.Context, h schemas.ElementHandle) error {
	script := h.(*fakeHandle).script
	f.mu.Lock()
	defer f.mu.Unlock()
	script.Clicks++
	if script.Clicks <= script.ClickBlocked {
		return schemas.NewInteractionBlockedError(h.Locator(), errors.New("click intercepted by overlay"))
	}
	return nil
}

func (f *FakeSession) ScriptClick(_ context.Context, h schemas.ElementHandle) error {
	script := h.(*fakeHandle).script
	f.mu.Lock()
	defer f.mu.Unlock()
	script.ScriptClicks++
	return script.ScriptClickErr
}

func (f *FakeSession) TypeIntoNode(_ context.Context, h schemas.ElementHandle, text string) error {
	script := h.(*fakeHandle).script
	f.mu.Lock()
	defer f.mu.Unlock()
	script.TypedText = append(script.TypedText, text)
	script.Value += text
	return nil
}

func (f *FakeSession) ClearNode(_ context.Context, h schemas.ElementHandle) error {
	script := h.(*fakeHandle).script
	f.mu.Lock()
	defer f.mu.Unlock()
	script.Cleared++
	script.Value = ""
	return nil
}

func (f *FakeSession) SelectOption(_ context.Context, h schemas.ElementHandle, value string) error {
	script := h.(*fakeHandle).script
	f.mu.Lock()
	defer f.mu.Unlock()
	script.Selected = append(script.Selected, value)
	script.Value = value
	return nil
}

func (f *FakeSession) NodeValue(_ context.Context, h schemas.ElementHandle) (string, error) {
	script := h.(*fakeHandle).script
	f.mu.Lock()
	defer f.mu.Unlock()
	if script.ReportedValue != nil {
		return *script.ReportedValue, nil
	}
	return script.Value, nil
}

func (f *FakeSession) NodeText(_ context.Context, h schemas.ElementHandle) (string, error) {
	script := h.(*fakeHandle).script
	f.mu.Lock()
	defer f.mu.Unlock()
	if script.TextErr != nil {
		return "", script.TextErr
	}
	return script.Text, nil
}
