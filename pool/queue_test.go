package pool

import (
	"reflect"
	"testing"
	"time"
)

func TestQueueFIFO(t *testing.T) {
	q := newQueue()
	in := []string{"a", "b", "c", "d"}
	for _, id := range in {
		q.Enqueue(&Job{ID: id})
	}
	got := make([]string, 0, len(in))
	for i := 0; i < len(in); i++ {
		j, ok := q.Dequeue()
		if !ok {
			t.Fatalf("dequeue %d: queue reported closed", i)
		}
		got = append(got, j.ID)
	}
	if !reflect.DeepEqual(in, got) {
		t.Fatalf("expected %v, got %v", in, got)
	}
}

func TestQueueDequeueBlocks(t *testing.T) {
	q := newQueue()
	ch := make(chan *Job)
	go func() {
		j, _ := q.Dequeue()
		ch <- j
	}()
	select {
	case j := <-ch:
		t.Fatalf("dequeue returned %v from an empty queue", j)
	case <-time.After(50 * time.Millisecond):
	}
	q.Enqueue(&Job{ID: "x"})
	select {
	case j := <-ch:
		if j.ID != "x" {
			t.Fatalf("expected job x, got %s", j.ID)
		}
	case <-time.After(time.Second):
		t.Fatal("dequeue did not observe the enqueued job")
	}
}

func TestQueueCloseDrains(t *testing.T) {
	q := newQueue()
	q.Enqueue(&Job{ID: "a"})
	q.Enqueue(&Job{ID: "b"})
	q.Close()
	if ok := q.Enqueue(&Job{ID: "c"}); ok {
		t.Fatal("enqueue accepted a job on a closed queue")
	}
	// remaining jobs are still handed out after Close
	for _, want := range []string{"a", "b"} {
		j, ok := q.Dequeue()
		if !ok {
			t.Fatalf("queue reported drained before job %s", want)
		}
		if j.ID != want {
			t.Fatalf("expected job %s, got %s", want, j.ID)
		}
	}
	if _, ok := q.Dequeue(); ok {
		t.Fatal("dequeue succeeded on a closed, drained queue")
	}
}

func TestQueueCloseWakesBlockedConsumers(t *testing.T) {
	q := newQueue()
	done := make(chan struct{})
	for i := 0; i < 3; i++ {
		go func() {
			_, ok := q.Dequeue()
			if !ok {
				done <- struct{}{}
			}
		}()
	}
	time.Sleep(20 * time.Millisecond)
	q.Close()
	for i := 0; i < 3; i++ {
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatalf("consumer %d not woken by close", i)
		}
	}
}
