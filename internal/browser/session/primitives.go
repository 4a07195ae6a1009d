// File: internal/browser/session/primitives.go
package session

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/autoedu/autoedu-cli/api/schemas"
)

// nodeHandle is the chromedp-backed schemas.ElementHandle.
type nodeHandle struct {
	loc  schemas.Locator
	node *cdp.Node
}

func (h *nodeHandle) Locator() schemas.Locator { return h.loc }

// selectorFor maps a Locator onto a chromedp selector and query option.
func selectorFor(loc schemas.Locator) (string, chromedp.QueryOption, error) {
	switch loc.Strategy {
	case schemas.ByID:
		return "#" + loc.Selector, chromedp.ByQuery, nil
	case schemas.ByName:
		return fmt.Sprintf(`[name=%q]`, loc.Selector), chromedp.ByQuery, nil
	case schemas.ByCSS:
		return loc.Selector, chromedp.ByQuery, nil
	case schemas.ByXPath:
		return loc.Selector, chromedp.BySearch, nil
	default:
		return "", nil, fmt.Errorf("unknown locator strategy %q", loc.Strategy)
	}
}

// ResolveNode waits until one element matching loc is visible and
// returns its handle. The wait is bounded by ctx; timeout
// classification is the resolver's job.
func (s *Session) ResolveNode(ctx context.Context, loc schemas.Locator) (schemas.ElementHandle, error) {
	sel, opt, err := selectorFor(loc)
	if err != nil {
		return nil, err
	}

	runCtx, cancel := combineContext(s.ctx, ctx)
	defer cancel()

	var nodes []*cdp.Node
	if err := chromedp.Run(runCtx, chromedp.Nodes(sel, &nodes, opt, chromedp.NodeVisible)); err != nil {
		return nil, err
	}
	if len(nodes) == 0 {
		return nil, fmt.Errorf("no node matched selector %q", sel)
	}
	return &nodeHandle{loc: loc, node: nodes[0]}, nil
}

// ResolveNodes collects elements matching loc. With atLeastOne it
// blocks until a match exists; otherwise the current (possibly empty)
// set is returned immediately.
func (s *Session) ResolveNodes(ctx context.Context, loc schemas.Locator, atLeastOne bool) ([]schemas.ElementHandle, error) {
	sel, opt, err := selectorFor(loc)
	if err != nil {
		return nil, err
	}

	runCtx, cancel := combineContext(s.ctx, ctx)
	defer cancel()

	opts := []chromedp.QueryOption{opt}
	if !atLeastOne {
		opts = append(opts, chromedp.AtLeast(0))
	}

	var nodes []*cdp.Node
	if err := chromedp.Run(runCtx, chromedp.Nodes(sel, &nodes, opts...)); err != nil {
		return nil, err
	}

	handles := make([]schemas.ElementHandle, 0, len(nodes))
	for _, n := range nodes {
		handles = append(handles, &nodeHandle{loc: loc, node: n})
	}
	return handles, nil
}

// ClickNode scrolls the element into view and performs a simulated
// mouse click. Failures on a resolved node (covered, stale, zero box
// model) are classified as interaction-blocked so the interactor can
// fall back to a script click.
func (s *Session) ClickNode(ctx context.Context, h schemas.ElementHandle) error {
	nh, err := asNodeHandle(h)
	if err != nil {
		return err
	}

	runCtx, cancel := combineContext(s.ctx, ctx)
	defer cancel()

	err = chromedp.Run(runCtx,
		chromedp.ActionFunc(func(ctx context.Context) error {
			return dom.ScrollIntoViewIfNeeded().WithNodeID(nh.node.NodeID).Do(ctx)
		}),
		chromedp.MouseClickNode(nh.node),
	)
	if err != nil {
		if runCtx.Err() != nil {
			return err
		}
		s.logger.Debug("Simulated click rejected", zap.String("locator", nh.loc.String()), zap.Error(err))
		return schemas.NewInteractionBlockedError(nh.loc, err)
	}
	return nil
}

// ScriptClick invokes the element's click() handler directly via the
// DevTools runtime. This bypasses hit testing, so overlays rendered by
// slow portal JS cannot intercept it.
func (s *Session) ScriptClick(ctx context.Context, h schemas.ElementHandle) error {
	nh, err := asNodeHandle(h)
	if err != nil {
		return err
	}

	runCtx, cancel := combineContext(s.ctx, ctx)
	defer cancel()

	return chromedp.Run(runCtx, chromedp.ActionFunc(func(ctx context.Context) error {
		obj, err := dom.ResolveNode().WithNodeID(nh.node.NodeID).Do(ctx)
		if err != nil {
			return fmt.Errorf("failed to resolve node %s: %w", nh.loc, err)
		}
		_, exp, err := runtime.CallFunctionOn("function() { this.click(); }").
			WithObjectID(obj.ObjectID).
			Do(ctx)
		if err != nil {
			return err
		}
		if exp != nil {
			return fmt.Errorf("script click threw: %w", exp)
		}
		return nil
	}))
}

// TypeIntoNode focuses the element and types text as key events, the
// closest analogue of a user typing.
func (s *Session) TypeIntoNode(ctx context.Context, h schemas.ElementHandle, text string) error {
	nh, err := asNodeHandle(h)
	if err != nil {
		return err
	}

	runCtx, cancel := combineContext(s.ctx, ctx)
	defer cancel()

	return chromedp.Run(runCtx,
		chromedp.ActionFunc(func(ctx context.Context) error {
			return dom.Focus().WithNodeID(nh.node.NodeID).Do(ctx)
		}),
		chromedp.KeyEvent(text),
	)
}

// ClearNode empties an input's value and fires input/change events so
// framework-bound fields notice the reset.
func (s *Session) ClearNode(ctx context.Context, h schemas.ElementHandle) error {
	const clearScript = `function() {
		this.value = '';
		this.dispatchEvent(new Event('input', {bubbles: true}));
		this.dispatchEvent(new Event('change', {bubbles: true}));
	}`
	return s.callOnNode(ctx, h, clearScript, nil)
}

// SelectOption sets a select element's value and fires a change event
// so framework bindings pick up the new selection.
func (s *Session) SelectOption(ctx context.Context, h schemas.ElementHandle, value string) error {
	lit, err := json.Marshal(value)
	if err != nil {
		return err
	}
	script := fmt.Sprintf(`function() {
		this.value = %s;
		this.dispatchEvent(new Event('change', {bubbles: true}));
	}`, lit)
	return s.callOnNode(ctx, h, script, nil)
}

// NodeValue reads back an input element's current value.
func (s *Session) NodeValue(ctx context.Context, h schemas.ElementHandle) (string, error) {
	var value string
	err := s.callOnNode(ctx, h, "function() { return this.value; }", &value)
	return value, err
}

// NodeText reads an element's visible text.
func (s *Session) NodeText(ctx context.Context, h schemas.ElementHandle) (string, error) {
	var text string
	err := s.callOnNode(ctx, h, "function() { return this.innerText || this.textContent || ''; }", &text)
	return text, err
}

// callOnNode runs a function declaration with `this` bound to the
// element, optionally decoding the by-value result into res.
func (s *Session) callOnNode(ctx context.Context, h schemas.ElementHandle, fn string, res interface{}) error {
	nh, err := asNodeHandle(h)
	if err != nil {
		return err
	}

	runCtx, cancel := combineContext(s.ctx, ctx)
	defer cancel()

	return chromedp.Run(runCtx, chromedp.ActionFunc(func(ctx context.Context) error {
		obj, err := dom.ResolveNode().WithNodeID(nh.node.NodeID).Do(ctx)
		if err != nil {
			return fmt.Errorf("failed to resolve node %s: %w", nh.loc, err)
		}
		ret, exp, err := runtime.CallFunctionOn(fn).
			WithObjectID(obj.ObjectID).
			WithReturnByValue(true).
			Do(ctx)
		if err != nil {
			return err
		}
		if exp != nil {
			return fmt.Errorf("script on node %s threw: %w", nh.loc, exp)
		}
		if res != nil && ret != nil && ret.Value != nil {
			if err := json.Unmarshal(ret.Value, res); err != nil {
				return fmt.Errorf("failed to decode script result: %w", err)
			}
		}
		return nil
	}))
}

func asNodeHandle(h schemas.ElementHandle) (*nodeHandle, error) {
	nh, ok := h.(*nodeHandle)
	if !ok {
		return nil, fmt.Errorf("element handle %T does not belong to this session", h)
	}
	return nh, nil
}
