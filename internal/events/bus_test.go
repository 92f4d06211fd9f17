package events

import (
	"testing"
	"time"

	"github.com/aristath/agentboard/internal/activity"
	"github.com/aristath/agentboard/internal/scheduler"
)

// TestPublishSubscribe verifies basic publish/subscribe functionality.
func TestPublishSubscribe(t *testing.T) {
	bus := NewEventBus()
	defer bus.Close()

	ch := bus.Subscribe(TopicAgent, 10)

	bus.Publish(TopicAgent, AgentAssignedEvent{
		ID:        "task-1",
		Agent:     scheduler.AgentSynthesizer,
		Phase:     scheduler.PhaseBuild,
		Timestamp: time.Now(),
	})

	select {
	case received := <-ch:
		if received.TaskID() != "task-1" {
			t.Errorf("expected task ID 'task-1', got '%s'", received.TaskID())
		}
		if received.EventType() != EventTypeAgentAssigned {
			t.Errorf("expected event type '%s', got '%s'", EventTypeAgentAssigned, received.EventType())
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatal("timeout waiting for event")
	}
}

// TestMultipleSubscribers verifies multiple subscribers receive the same event.
func TestMultipleSubscribers(t *testing.T) {
	bus := NewEventBus()
	defer bus.Close()

	ch1 := bus.Subscribe(TopicTask, 10)
	ch2 := bus.Subscribe(TopicTask, 10)

	bus.Publish(TopicTask, TaskTransitionedEvent{
		ID:        "task-2",
		From:      scheduler.StatusInProgress,
		To:        scheduler.StatusNeedsReview,
		Timestamp: time.Now(),
	})

	for i, ch := range []<-chan Event{ch1, ch2} {
		select {
		case received := <-ch:
			if received.TaskID() != "task-2" {
				t.Errorf("subscriber %d: expected task ID 'task-2', got '%s'", i+1, received.TaskID())
			}
		case <-time.After(100 * time.Millisecond):
			t.Fatalf("subscriber %d: timeout waiting for event", i+1)
		}
	}
}

// TestNonBlockingSend verifies that publishing doesn't block when channels are full.
func TestNonBlockingSend(t *testing.T) {
	bus := NewEventBus()
	defer bus.Close()

	ch := bus.Subscribe(TopicLog, 1)

	done := make(chan bool)
	go func() {
		for i := 0; i < 10; i++ {
			bus.Publish(TopicLog, LogAppendedEvent{Entry: activity.Entry{Seq: uint64(i + 1), Text: "line"}})
		}
		done <- true
	}()

	select {
	case <-done:
	case <-time.After(100 * time.Millisecond):
		t.Fatal("publisher blocked (expected non-blocking behavior)")
	}

	select {
	case received := <-ch:
		entry := received.(LogAppendedEvent).Entry
		if entry.Seq != 1 {
			t.Errorf("expected first buffered entry to be seq 1, got %d", entry.Seq)
		}
	default:
		t.Error("expected at least one event in buffer")
	}

	if got := bus.Dropped(); got != 9 {
		t.Errorf("expected 9 dropped deliveries, got %d", got)
	}
}

// TestCloseSignalsSubscribers verifies that closing the bus closes subscriber channels.
func TestCloseSignalsSubscribers(t *testing.T) {
	bus := NewEventBus()

	ch := bus.Subscribe(TopicTask, 10)
	all := bus.SubscribeAll(10)

	bus.Close()
	bus.Close() // idempotent

	for _, sub := range []<-chan Event{ch, all} {
		received := 0
		for range sub {
			received++
		}
		if received != 0 {
			t.Errorf("expected 0 events after close, got %d", received)
		}
	}
}

// TestSubscribeAfterClose verifies late subscribers get a closed channel.
func TestSubscribeAfterClose(t *testing.T) {
	bus := NewEventBus()
	bus.Close()

	if _, ok := <-bus.Subscribe(TopicTask, 1); ok {
		t.Error("expected closed channel from Subscribe after Close")
	}
	if _, ok := <-bus.SubscribeAll(1); ok {
		t.Error("expected closed channel from SubscribeAll after Close")
	}
}

// TestPublishAfterClose verifies publishing after close doesn't panic.
func TestPublishAfterClose(t *testing.T) {
	bus := NewEventBus()
	ch := bus.Subscribe(TopicSession, 10)

	bus.Close()

	defer func() {
		if r := recover(); r != nil {
			t.Errorf("publishing after close caused panic: %v", r)
		}
	}()

	bus.Publish(TopicSession, SessionStartedEvent{SessionID: "s-1", Timestamp: time.Now()})

	select {
	case _, ok := <-ch:
		if ok {
			t.Error("received event after bus was closed")
		}
	default:
	}
}

// TestMultipleTopics verifies topic isolation.
func TestMultipleTopics(t *testing.T) {
	bus := NewEventBus()
	defer bus.Close()

	taskCh := bus.Subscribe(TopicTask, 10)
	boardCh := bus.Subscribe(TopicBoard, 10)

	bus.Publish(TopicTask, TaskUpdatedEvent{ID: "task-1", Manual: true, Timestamp: time.Now()})
	bus.Publish(TopicBoard, BoardProgressEvent{Total: 4, Backlog: 1, Done: 3, Timestamp: time.Now()})

	select {
	case received := <-taskCh:
		if received.EventType() != EventTypeTaskUpdated {
			t.Errorf("task channel: expected task event, got %s", received.EventType())
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatal("task channel: timeout waiting for event")
	}

	select {
	case received := <-boardCh:
		if received.EventType() != EventTypeBoardProgress {
			t.Errorf("board channel: expected board event, got %s", received.EventType())
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatal("board channel: timeout waiting for event")
	}

	select {
	case <-taskCh:
		t.Error("task channel received unexpected event")
	case <-boardCh:
		t.Error("board channel received unexpected event")
	case <-time.After(10 * time.Millisecond):
	}
}

// TestSubscribeAll verifies that SubscribeAll receives events from all topics in publish order.
func TestSubscribeAll(t *testing.T) {
	bus := NewEventBus()
	defer bus.Close()

	allCh := bus.SubscribeAll(20)

	bus.Publish(TopicTask, TaskTransitionedEvent{ID: "task-1", Timestamp: time.Now()})
	bus.Publish(TopicBoard, BoardProgressEvent{Total: 1, Timestamp: time.Now()})
	bus.Publish(TopicSession, SessionStoppedEvent{SessionID: "s-1", Timestamp: time.Now()})

	want := []string{EventTypeTaskTransitioned, EventTypeBoardProgress, EventTypeSessionStopped}
	for i, typ := range want {
		select {
		case received := <-allCh:
			if received.EventType() != typ {
				t.Errorf("event %d: expected %s, got %s", i, typ, received.EventType())
			}
		case <-time.After(100 * time.Millisecond):
			t.Fatal("timeout waiting for event")
		}
	}
}

// TestUnsubscribe verifies a removed subscriber is closed and stops receiving.
func TestUnsubscribe(t *testing.T) {
	bus := NewEventBus()
	defer bus.Close()

	keep := bus.Subscribe(TopicLog, 10)
	drop := bus.Subscribe(TopicLog, 10)
	dropAll := bus.SubscribeAll(10)

	bus.Unsubscribe(drop)
	bus.Unsubscribe(dropAll)
	bus.Unsubscribe(make(chan Event)) // unknown channel is ignored

	if _, ok := <-drop; ok {
		t.Error("expected unsubscribed channel to be closed")
	}
	if _, ok := <-dropAll; ok {
		t.Error("expected unsubscribed all-topic channel to be closed")
	}

	bus.Publish(TopicLog, LogAppendedEvent{Entry: activity.Entry{Seq: 1}})

	select {
	case <-keep:
	case <-time.After(100 * time.Millisecond):
		t.Fatal("remaining subscriber did not receive event")
	}
}
