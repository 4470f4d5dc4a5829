package calculator

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"go-chi-calculator/internal/handlers"
	"go-chi-calculator/internal/keypad"
	"go-chi-calculator/internal/tape"
	"go-chi-calculator/internal/testutil"
)

type memoryTape struct {
	mu      sync.Mutex
	entries []tape.Entry
	failing bool
}

func (m *memoryTape) Append(_ context.Context, e tape.Entry) (tape.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failing {
		return tape.Entry{}, errors.New("disk full")
	}
	e.ID = "entry-" + e.Right
	m.entries = append(m.entries, e)
	return e, nil
}

func (m *memoryTape) Recent(_ context.Context, limit int) ([]tape.Entry, error) {
	return m.filter("", limit), nil
}

func (m *memoryTape) BySession(_ context.Context, sessionID string, limit int) ([]tape.Entry, error) {
	return m.filter(sessionID, limit), nil
}

func (m *memoryTape) filter(sessionID string, limit int) []tape.Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []tape.Entry
	for i := len(m.entries) - 1; i >= 0; i-- {
		if sessionID != "" && m.entries[i].SessionID != sessionID {
			continue
		}
		out = append(out, m.entries[i])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

func createSession(t *testing.T, h http.Handler) Snapshot {
	t.Helper()
	rr := testutil.PostJSON(h, "/calculator/sessions", "")
	testutil.CheckResponseCode(t, http.StatusCreated, rr.Code)
	var snap Snapshot
	testutil.DecodeJSONBody(t, rr.Body, &snap)
	return snap
}

func pressKeys(t *testing.T, h http.Handler, id, body string, status int) *httptest.ResponseRecorder {
	t.Helper()
	rr := testutil.PostJSON(h, "/calculator/sessions/"+id+"/keys", body)
	testutil.CheckResponseCode(t, status, rr.Code)
	return rr
}

func TestSessionLifecycle(t *testing.T) {
	mt := &memoryTape{}
	router := newTestRouter(NewSessionHandler(NewSessionStore(time.Hour), mt))

	snap := createSession(t, router)
	if snap.ID == "" || snap.Display != "0" || snap.Phase != "idle" || snap.ClearLabel != "AC" {
		t.Fatalf("unexpected initial snapshot: %+v", snap)
	}

	rr := pressKeys(t, router, snap.ID, `{"keys":["2","+","3","x"]}`, http.StatusOK)
	testutil.DecodeJSONBody(t, rr.Body, &snap)
	if snap.Display != "5" || snap.PendingOperator != "multiply" || snap.ActiveOperator != "×" {
		t.Fatalf("unexpected snapshot after chaining: %+v", snap)
	}
	if snap.Phase != "operator_pending" || snap.ClearLabel != "C" {
		t.Fatalf("unexpected phase or label: %+v", snap)
	}

	rr = pressKeys(t, router, snap.ID, `{"keys":["4","="]}`, http.StatusOK)
	testutil.DecodeJSONBody(t, rr.Body, &snap)
	if snap.Display != "20" || !snap.ResetNext || snap.Phase != "result_shown" {
		t.Fatalf("unexpected snapshot after equals: %+v", snap)
	}

	rr = testutil.Get(router, "/calculator/sessions/"+snap.ID)
	testutil.CheckResponseCode(t, http.StatusOK, rr.Code)

	rr = testutil.Get(router, "/calculator/sessions/"+snap.ID+"/tape")
	testutil.CheckResponseCode(t, http.StatusOK, rr.Code)
	var tr TapeResponse
	testutil.DecodeJSONBody(t, rr.Body, &tr)
	if len(tr.Entries) != 2 {
		t.Fatalf("expected 2 tape entries, got %d", len(tr.Entries))
	}
	if got := tr.Entries[0].String(); got != "5 × 4 = 20" {
		t.Fatalf("expected newest entry %q, got %q", "5 × 4 = 20", got)
	}

	req := httptest.NewRequest(http.MethodDelete, "/calculator/sessions/"+snap.ID, nil)
	rr = testutil.ExecuteRequest(req, router)
	testutil.CheckResponseCode(t, http.StatusNoContent, rr.Code)

	rr = testutil.Get(router, "/calculator/sessions/"+snap.ID)
	testutil.CheckResponseCode(t, http.StatusNotFound, rr.Code)
}

func TestSessionDivideByZeroShowsError(t *testing.T) {
	mt := &memoryTape{}
	router := newTestRouter(NewSessionHandler(NewSessionStore(0), mt))
	snap := createSession(t, router)

	rr := pressKeys(t, router, snap.ID, `{"keys":["8","÷","0","="]}`, http.StatusOK)
	testutil.DecodeJSONBody(t, rr.Body, &snap)
	if snap.Display != "Error" || snap.Phase != "error_shown" {
		t.Fatalf("expected error display, got %+v", snap)
	}
	if snap.CurrentInput != "" || snap.StoredOperand != "" || snap.PendingOperator != "" {
		t.Fatalf("expected state reset, got %+v", snap)
	}

	entries, _ := mt.Recent(context.Background(), 0)
	if len(entries) != 1 || !entries[0].Failed {
		t.Fatalf("expected one failed entry, got %+v", entries)
	}
}

func TestSessionUnknownKeyLeavesStateUntouched(t *testing.T) {
	router := newTestRouter(NewSessionHandler(NewSessionStore(0), nil))
	snap := createSession(t, router)

	rr := pressKeys(t, router, snap.ID, `{"keys":["7","equal"]}`, http.StatusBadRequest)
	var resp handlers.ErrorResponse
	testutil.DecodeJSONBody(t, rr.Body, &resp)
	if !strings.Contains(resp.Error, `did you mean "equals"`) {
		t.Fatalf("expected suggestion, got %q", resp.Error)
	}

	rr = testutil.Get(router, "/calculator/sessions/"+snap.ID)
	testutil.DecodeJSONBody(t, rr.Body, &snap)
	if snap.Display != "0" || snap.CurrentInput != "" {
		t.Fatalf("expected untouched session, got %+v", snap)
	}
}

func TestSessionKeysRejectsBadBody(t *testing.T) {
	router := newTestRouter(NewSessionHandler(NewSessionStore(0), nil))
	snap := createSession(t, router)

	pressKeys(t, router, snap.ID, `{"keys":[]}`, http.StatusBadRequest)
	pressKeys(t, router, snap.ID, `not json`, http.StatusBadRequest)
}

func TestSessionTapeFailureDoesNotFailRequest(t *testing.T) {
	mt := &memoryTape{failing: true}
	router := newTestRouter(NewSessionHandler(NewSessionStore(0), mt))
	snap := createSession(t, router)

	rr := pressKeys(t, router, snap.ID, `{"keys":["1","+","1","="]}`, http.StatusOK)
	testutil.DecodeJSONBody(t, rr.Body, &snap)
	if snap.Display != "2" {
		t.Fatalf("expected 2, got %q", snap.Display)
	}
}

func TestTapeEndpoints(t *testing.T) {
	router := newTestRouter(NewSessionHandler(NewSessionStore(0), nil))

	rr := testutil.Get(router, "/calculator/tape")
	testutil.CheckResponseCode(t, http.StatusServiceUnavailable, rr.Code)

	mt := &memoryTape{}
	router = newTestRouter(NewSessionHandler(NewSessionStore(0), mt))
	a := createSession(t, router)
	b := createSession(t, router)
	pressKeys(t, router, a.ID, `{"keys":["1","+","2","="]}`, http.StatusOK)
	pressKeys(t, router, b.ID, `{"keys":["3","+","4","="]}`, http.StatusOK)

	rr = testutil.Get(router, "/calculator/tape?limit=1")
	testutil.CheckResponseCode(t, http.StatusOK, rr.Code)
	var tr TapeResponse
	testutil.DecodeJSONBody(t, rr.Body, &tr)
	if len(tr.Entries) != 1 || tr.Entries[0].SessionID != b.ID {
		t.Fatalf("expected newest entry from second session, got %+v", tr.Entries)
	}

	rr = testutil.Get(router, "/calculator/tape?limit=abc")
	testutil.CheckResponseCode(t, http.StatusBadRequest, rr.Code)

	rr = testutil.Get(router, "/calculator/tape")
	testutil.CheckResponseCode(t, http.StatusOK, rr.Code)
	testutil.DecodeJSONBody(t, rr.Body, &tr)
	if len(tr.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(tr.Entries))
	}
}

func TestSessionStoreEvictsIdleSessions(t *testing.T) {
	store := NewSessionStore(time.Minute)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	old := store.Create()
	now = now.Add(45 * time.Second)
	fresh := store.Create()

	now = now.Add(30 * time.Second)
	if _, err := store.Get(old.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected idle session to be evicted, got %v", err)
	}
	if _, err := store.Get(fresh.ID); err != nil {
		t.Fatalf("expected fresh session to survive: %v", err)
	}
	if got := store.Len(); got != 1 {
		t.Fatalf("expected 1 session, got %d", got)
	}
	if err := store.Delete(old.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestSessionPressIsSafeForConcurrentUse(t *testing.T) {
	store := NewSessionStore(0)
	s := store.Create()
	add, err := keypad.Resolve("+")
	if err != nil {
		t.Fatal(err)
	}
	one, _ := keypad.Resolve("1")
	eq, _ := keypad.Resolve("=")

	if _, _, err := s.Press([]keypad.Action{one}); err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, _, err := s.Press([]keypad.Action{add, one, eq}); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()

	if got := s.Snapshot().Display; got != "21" {
		t.Fatalf("expected 21 after 20 increments, got %q", got)
	}
}
