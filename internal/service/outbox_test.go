package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"jsmc-rsvp/internal/model"
	"jsmc-rsvp/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	sent   []string
	failOn string
}

func (p *recordingPublisher) Publish(_ context.Context, msg model.OutboxMessage) error {
	if msg.Key == p.failOn {
		return errors.New("broker unavailable")
	}
	p.sent = append(p.sent, msg.Key)
	return nil
}

func TestRelayPublishesInOrderAndStopsOnError(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	o := NewOutbox(db)
	for _, key := range []string{"a", "b", "c"} {
		require.NoError(t, o.Enqueue(db, EventRSVPSubmitted, key, map[string]string{"key": key}))
	}

	pub := &recordingPublisher{failOn: "b"}
	n, err := o.Relay(ctx, pub)
	require.Error(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []string{"a"}, pub.sent)

	pub.failOn = ""
	n, err = o.Relay(ctx, pub)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"a", "b", "c"}, pub.sent)

	var ready int64
	require.NoError(t, db.Model(&model.OutboxMessage{}).Where("status = ?", model.OutboxReady).Count(&ready).Error)
	assert.Zero(t, ready)

	n, err = o.Relay(ctx, pub)
	require.NoError(t, err)
	assert.Zero(t, n)
}

// blockingPublisher holds its first Publish until release is closed.
type blockingPublisher struct {
	mu      sync.Mutex
	sent    []string
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func (p *blockingPublisher) Publish(_ context.Context, msg model.OutboxMessage) error {
	p.once.Do(func() {
		close(p.started)
		<-p.release
	})
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sent = append(p.sent, msg.Key)
	return nil
}

func TestRelayDoesNotOverlap(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	o := NewOutbox(db)
	for _, key := range []string{"a", "b", "c", "d"} {
		require.NoError(t, o.Enqueue(db, EventRSVPSubmitted, key, map[string]string{"key": key}))
	}

	pub := &blockingPublisher{started: make(chan struct{}), release: make(chan struct{})}
	type result struct {
		n   int
		err error
	}
	first := make(chan result, 1)
	go func() {
		n, err := o.Relay(ctx, pub)
		first <- result{n, err}
	}()
	<-pub.started

	n, err := o.Relay(ctx, pub)
	require.NoError(t, err)
	assert.Zero(t, n)

	close(pub.release)
	r := <-first
	require.NoError(t, r.err)
	assert.Equal(t, 4, r.n)
	assert.Equal(t, []string{"a", "b", "c", "d"}, pub.sent)

	n, err = o.Relay(ctx, pub)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Len(t, pub.sent, 4)
}

func TestEnqueueOnNilOutbox(t *testing.T) {
	var o *Outbox
	assert.NoError(t, o.Enqueue(nil, EventRSVPUpdated, "k", nil))
}
