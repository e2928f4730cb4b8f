package core

import (
	"io"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/lumen/engine/containers"
)

func init() {
	SetLogOutput(io.Discard)
}

func TestEventRegisterRejectsDuplicates(t *testing.T) {
	es := NewEventSystem(4)
	listener := &struct{ n int }{}
	cb := func(EventContext, interface{}) bool { return false }

	assert.True(t, es.Register(EVENT_CODE_RESIZED, listener, cb))
	assert.False(t, es.Register(EVENT_CODE_RESIZED, listener, cb))
	assert.True(t, es.Register(EVENT_CODE_APPLICATION_QUIT, listener, cb))
	assert.False(t, es.Register(EVENT_CODE_RESIZED, &struct{}{}, nil))
}

func TestEventFireStopsWhenHandled(t *testing.T) {
	es := NewEventSystem(4)
	var order []string
	first, second := &struct{ id int }{1}, &struct{ id int }{2}
	es.Register(EVENT_CODE_RESIZED, first, func(ctx EventContext, _ interface{}) bool {
		order = append(order, "first")
		return true
	})
	es.Register(EVENT_CODE_RESIZED, second, func(ctx EventContext, _ interface{}) bool {
		order = append(order, "second")
		return false
	})

	assert.True(t, es.Fire(EventContext{Type: EVENT_CODE_RESIZED}))
	assert.Equal(t, []string{"first"}, order)

	require.True(t, es.Unregister(EVENT_CODE_RESIZED, first))
	assert.False(t, es.Unregister(EVENT_CODE_RESIZED, first))
	assert.False(t, es.Fire(EventContext{Type: EVENT_CODE_RESIZED}))
	assert.Equal(t, []string{"first", "second"}, order)
}

func TestEventFirePassesListenerAndData(t *testing.T) {
	es := NewEventSystem(4)
	listener := &struct{ name string }{"window"}
	var got *SystemEvent
	var gotListener interface{}
	es.Register(EVENT_CODE_RESIZED, listener, func(ctx EventContext, l interface{}) bool {
		got = ctx.Data.(*SystemEvent)
		gotListener = l
		return true
	})

	es.Fire(EventContext{Type: EVENT_CODE_RESIZED, Data: &SystemEvent{WindowWidth: 800, WindowHeight: 600}})
	require.NotNil(t, got)
	assert.Equal(t, uint32(800), got.WindowWidth)
	assert.Same(t, listener, gotListener)
}

func TestEventPostDrainsInOrder(t *testing.T) {
	es := NewEventSystem(8)
	var paths []string
	es.Register(EVENT_CODE_SHADER_SOURCE_CHANGED, nil, func(ctx EventContext, _ interface{}) bool {
		paths = append(paths, ctx.Data.(string))
		return true
	})

	require.NoError(t, es.Post(EventContext{Type: EVENT_CODE_SHADER_SOURCE_CHANGED, Data: "a.vert"}))
	require.NoError(t, es.Post(EventContext{Type: EVENT_CODE_SHADER_SOURCE_CHANGED, Data: "a.frag"}))
	assert.Empty(t, paths)

	assert.Equal(t, 2, es.Drain())
	assert.Equal(t, []string{"a.vert", "a.frag"}, paths)
	assert.Equal(t, 0, es.Drain())
}

func TestEventPostFromManyGoroutines(t *testing.T) {
	es := NewEventSystem(64)
	count := 0
	es.Register(EVENT_CODE_APPLICATION_QUIT, nil, func(EventContext, interface{}) bool {
		count++
		return true
	})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 8; j++ {
				_ = es.Post(EventContext{Type: EVENT_CODE_APPLICATION_QUIT})
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 64, es.Drain())
	assert.Equal(t, 64, count)
}

func TestEventPostWhenQueueFull(t *testing.T) {
	es := NewEventSystem(1)
	require.NoError(t, es.Post(EventContext{Type: EVENT_CODE_APPLICATION_QUIT}))
	err := es.Post(EventContext{Type: EVENT_CODE_APPLICATION_QUIT})
	assert.ErrorIs(t, err, containers.ErrQueueFull)
}

func TestEventShutdownDropsEverything(t *testing.T) {
	es := NewEventSystem(4)
	fired := false
	es.Register(EVENT_CODE_APPLICATION_QUIT, nil, func(EventContext, interface{}) bool {
		fired = true
		return true
	})
	require.NoError(t, es.Post(EventContext{Type: EVENT_CODE_APPLICATION_QUIT}))

	es.Shutdown()
	assert.Equal(t, 0, es.Drain())
	assert.False(t, es.Fire(EventContext{Type: EVENT_CODE_APPLICATION_QUIT}))
	assert.False(t, fired)
}
