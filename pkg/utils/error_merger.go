// Package utils holds small concurrency helpers shared by the server.
package utils //nolint:revive // var-naming: utils is an acceptable package name for shared utilities

import "sync"

// MergeErrorChans fans several error channels into one. Nil errors are
// dropped so a listener that shut down cleanly does not look like a failure.
// The output channel is closed once every input is closed.
//
//	httpErrs := serve(ctx)
//	metricsErrs := m.Listen(ctx, 9090)
//	for err := range MergeErrorChans(httpErrs, metricsErrs) {
//		log.Error("Listener failed", logger.ErrorField(err))
//	}
func MergeErrorChans(channels ...<-chan error) <-chan error {
	out := make(chan error)
	var wg sync.WaitGroup

	for _, ch := range channels {
		if ch == nil {
			continue
		}
		wg.Add(1)
		go func(c <-chan error) {
			defer wg.Done()
			for err := range c {
				if err != nil {
					out <- err
				}
			}
		}(ch)
	}

	go func() {
		wg.Wait()
		close(out)
	}()

	return out
}
