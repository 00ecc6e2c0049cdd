package log

import (
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/gate-protocol/listener-go/pkg/wire"
)

func TestFileLoggerWriteAndReadBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.cborlog")

	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger: %v", err)
	}

	events := []Event{
		{
			Timestamp:  time.Now(),
			ListenerID: "lis-1",
			Direction:  DirectionOut,
			Category:   CategoryCall,
			Call:       &CallEvent{Function: wire.FunctionBindTLS, Size: 17},
		},
		{
			Timestamp:  time.Now(),
			ListenerID: "lis-1",
			Direction:  DirectionIn,
			Category:   CategoryRecord,
			Record:     &RecordEvent{Code: wire.AcceptCodeNone, ConnID: 7, Peer: "127.0.0.1:51000"},
		},
		{
			Timestamp:  time.Now(),
			ListenerID: "lis-2",
			Category:   CategoryState,
			StateChange: &StateChangeEvent{
				Entity:   StateEntityAcceptor,
				OldState: "BOUND",
				NewState: "CLOSED",
				Reason:   "close handle released",
			},
		},
	}
	for _, e := range events {
		logger.Log(e)
	}
	if err := logger.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	// Log after close is silently ignored
	logger.Log(events[0])
	if err := logger.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}

	reader, err := NewReader(path)
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	defer reader.Close()

	got, err := reader.All()
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if len(got) != len(events) {
		t.Fatalf("read %d events, want %d", len(got), len(events))
	}
	if got[1].Record == nil || got[1].Record.ConnID != 7 {
		t.Errorf("record event mangled: %+v", got[1])
	}
	if got[2].StateChange == nil || got[2].StateChange.NewState != "CLOSED" {
		t.Errorf("state event mangled: %+v", got[2])
	}
}

func TestFilteredReader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.cborlog")

	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger: %v", err)
	}
	for i := 0; i < 4; i++ {
		id := "a"
		if i%2 == 1 {
			id = "b"
		}
		logger.Log(Event{Timestamp: time.Now(), ListenerID: id, Category: CategoryState})
	}
	logger.Close()

	reader, err := NewFilteredReader(path, Filter{ListenerID: "b"})
	if err != nil {
		t.Fatalf("NewFilteredReader: %v", err)
	}
	defer reader.Close()

	got, err := reader.All()
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("filtered read = %d events, want 2", len(got))
	}
}

func TestFileLoggerConcurrent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.cborlog")

	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger: %v", err)
	}

	const writers = 8
	const perWriter = 25

	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				logger.Log(Event{Timestamp: time.Now(), Category: CategoryRecord,
					Record: &RecordEvent{Code: wire.AcceptCodeNone}})
			}
		}()
	}
	wg.Wait()
	logger.Close()

	reader, err := NewReader(path)
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	defer reader.Close()

	got, err := reader.All()
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if len(got) != writers*perWriter {
		t.Errorf("read %d events, want %d", len(got), writers*perWriter)
	}
}
