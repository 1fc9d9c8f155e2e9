package engine

import (
	"fmt"
	"sync"
	"time"

	"github.com/chazu/simplex/pkg/scene"
)

// DefaultTimeout bounds a single evaluation unless the engine is built
// with New.
const DefaultTimeout = 5 * time.Second

// evalResult carries what the evaluating goroutine produced.
type evalResult struct {
	scene  *scene.Scene
	errors []EvalError
	err    error
}

// waitWithTimeout returns the result sent on ch, or an error once timeout
// passes. A result from generation gen is discarded as superseded when a
// later Evaluate has started since.
//
// A timed-out goroutine keeps running; its result is dropped into the
// buffered channel and never read.
func waitWithTimeout(
	ch <-chan evalResult,
	timeout time.Duration,
	gen uint64,
	mu *sync.Mutex,
	currentGen *uint64,
) (*scene.Scene, []EvalError, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case res := <-ch:
		mu.Lock()
		current := *currentGen
		mu.Unlock()

		if gen != current {
			return nil, nil, fmt.Errorf("evaluation superseded by newer request")
		}
		return res.scene, res.errors, res.err

	case <-timer.C:
		log.Warningf("scene script abandoned after %s", timeout)
		return nil, nil, fmt.Errorf("evaluation timed out after %s", timeout)
	}
}
