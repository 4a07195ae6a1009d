package session

import "context"

// combineContext derives a context from parentCtx (keeping its values,
// which chromedp needs to address the browser target) that is also
// canceled when secondaryCtx is done. The returned cancel must be
// called to release the watcher goroutine.
func combineContext(parentCtx, secondaryCtx context.Context) (context.Context, context.CancelFunc) {
	combinedCtx, cancel := context.WithCancel(parentCtx)

	go func() {
		select {
		case <-secondaryCtx.Done():
			cancel()
		case <-combinedCtx.Done():
		}
	}()

	return combinedCtx, cancel
}
