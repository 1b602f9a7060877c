package source

import (
	"context"
	"sync"

	"github.com/xiaoshi2013/warden/types"
)

type delivery struct {
	previous *types.TopologySnapshot
	current  *types.TopologySnapshot
}

// recordingListener records deliveries and can fail on demand.
type recordingListener struct {
	mu         sync.Mutex
	deliveries []delivery
	err        error
	inFlight   int
	maxFlight  int
}

func (l *recordingListener) ClusterChanged(_ context.Context, previous, current *types.TopologySnapshot) error {
	l.mu.Lock()
	l.inFlight++
	if l.inFlight > l.maxFlight {
		l.maxFlight = l.inFlight
	}
	l.deliveries = append(l.deliveries, delivery{previous: previous, current: current})
	err := l.err
	l.inFlight--
	l.mu.Unlock()

	return err
}

func (l *recordingListener) snapshot() []delivery {
	l.mu.Lock()
	defer l.mu.Unlock()

	return append([]delivery(nil), l.deliveries...)
}

func (l *recordingListener) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return len(l.deliveries)
}
