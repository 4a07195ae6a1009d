package schemas

import "context"

// PagePrimitives is the browser driver boundary. The chromedp-backed
// session implements it; resolver and interactor consume it, which
// keeps the interaction core testable with a scripted fake.
//
// Resolve calls block cooperatively until the element is interactable
// or ctx expires; timeout classification is the resolver's job.
type PagePrimitives interface {
	// ResolveNode waits for a single element matching loc to become
	// visible and returns a handle to it.
	ResolveNode(ctx context.Context, loc Locator) (ElementHandle, error)
	// ResolveNodes waits for elements matching loc. With atLeastOne it
	// blocks until one exists; otherwise it returns the current set,
	// which may be empty.
	ResolveNodes(ctx context.Context, loc Locator, atLeastOne bool) ([]ElementHandle, error)
	// ClickNode performs a simulated-input (mouse) click on the handle.
	ClickNode(ctx context.Context, h ElementHandle) error
	// ScriptClick invokes the element's click() programmatically. Used
	// as the fallback when the simulated click is blocked.
	ScriptClick(ctx context.Context, h ElementHandle) error
	// TypeIntoNode focuses the element and types text as key events.
	TypeIntoNode(ctx context.Context, h ElementHandle, text string) error
	// ClearNode empties an input's value and fires input/change events.
	ClearNode(ctx context.Context, h ElementHandle) error
	// SelectOption sets a select element's value and fires a change
	// event, mirroring a user picking the option.
	SelectOption(ctx context.Context, h ElementHandle, value string) error
	// NodeValue reads back an input element's current value.
	NodeValue(ctx context.Context, h ElementHandle) (string, error)
	// NodeText reads an element's visible text content.
	NodeText(ctx context.Context, h ElementHandle) (string, error)
}

// SessionContext is what task routines receive: the page primitives
// plus session identity and navigation.
type SessionContext interface {
	PagePrimitives
	ID() string
	Navigate(ctx context.Context, url string) error
	CurrentURL(ctx context.Context) (string, error)
}

// Routine is one automation task executed once per record. It returns
// the record's terminal status; an error return (or panic) is
// classified by the pipeline, not by the routine's caller site.
type Routine func(ctx context.Context, sess SessionContext, rec Record) (RecordStatus, error)
