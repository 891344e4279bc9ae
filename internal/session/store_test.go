package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiaot623/gogo/intake/internal/agent"
	"github.com/xiaot623/gogo/intake/internal/domain"
	"github.com/xiaot623/gogo/intake/internal/logger"
	"github.com/xiaot623/gogo/intake/internal/metrics"
)

type memTranscripts struct {
	mu     sync.Mutex
	data   map[string]string
	writes int
	fail   error
}

func newMemTranscripts() *memTranscripts {
	return &memTranscripts{data: map[string]string{}}
}

func (m *memTranscripts) Write(_ context.Context, patientID, text string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	if m.fail != nil {
		return "", m.fail
	}
	m.data[patientID] = text
	return "mem/" + patientID, nil
}

func (m *memTranscripts) Read(_ context.Context, patientID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	text, ok := m.data[patientID]
	if !ok {
		return "", domain.ErrTranscriptNotFound
	}
	return text, nil
}

func (m *memTranscripts) Exists(_ context.Context, patientID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.data[patientID]
	return ok, nil
}

func (m *memTranscripts) Delete(_ context.Context, patientID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.data[patientID]
	delete(m.data, patientID)
	return ok, nil
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []domain.SessionEvent
}

func (r *recordingNotifier) Publish(_ string, event domain.SessionEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

var fixedNow = time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)

func newTestStore(t *testing.T, opts ...Option) (*Store, *memTranscripts) {
	t.Helper()
	transcripts := newMemTranscripts()
	opts = append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)
	return NewStore(agent.NewQuestionAgent(), transcripts, logger.Discard(), metrics.New(), opts...), transcripts
}

func containsWord(questions []string, word string) bool {
	for _, q := range questions {
		if strings.Contains(strings.ToLower(q), word) {
			return true
		}
	}
	return false
}

func TestInterviewScenario(t *testing.T) {
	ctx := context.Background()
	store, transcripts := newTestStore(t)

	started, err := store.Start(ctx, "p1", "headache", nil)
	require.NoError(t, err)
	require.Len(t, started.Questions, 4)
	assert.Contains(t, started.Questions[0], "duration")
	assert.Contains(t, started.Questions[1], "severity")
	assert.Contains(t, started.Questions[2], "triggers")
	assert.Equal(t, "Can you describe more details about: headache?", started.Questions[3])
	assert.False(t, started.Completed)
	assert.Len(t, started.Transcript, 4)

	answered, err := store.Answer(ctx, "p1", "3 days, severity 7")
	require.NoError(t, err)
	assert.False(t, containsWord(answered.Questions, "duration"))
	assert.False(t, containsWord(answered.Questions, "severity"))
	assert.False(t, containsWord(answered.Questions, "triggers"))
	assert.Contains(t, answered.Questions, "Can you describe more details about: headache?")
	require.Len(t, answered.Transcript, 6)
	assert.Equal(t, domain.RolePatient, answered.Transcript[4].Role)

	ended, err := store.End(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "ok", ended.Status)
	assert.Equal(t, "mem/p1", ended.Reference)
	assert.Equal(t, "transcript_written:mem/p1", ended.Detail)
	assert.Equal(t, 0, store.Len())

	_, err = store.Answer(ctx, "p1", "x")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	text, err := transcripts.Read(ctx, "p1")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(text, "Patient Interview Transcript\nPatient ID: p1\nChief Complaint: headache\n"))
	assert.Contains(t, text, "Created: 2024-03-01T09:30:00Z\n")
	assert.Contains(t, text, strings.Repeat("-", 60)+"\n")
	assert.Contains(t, text, "[2024-03-01T09:30:00Z] PATIENT: 3 days, severity 7\n")
}

func TestStartTwiceResumes(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	first, err := store.Start(ctx, "p1", "cough", map[string]interface{}{"source": "triage"})
	require.NoError(t, err)

	second, err := store.Start(ctx, "p1", "fever", map[string]interface{}{"source": "other"})
	require.NoError(t, err)

	assert.Equal(t, 1, store.Len())
	assert.Equal(t, first.Transcript, second.Transcript[:len(first.Transcript)])
	assert.Equal(t, []string{"Can you describe more details about: cough?"}, second.Questions)

	sess, ok := store.Snapshot("p1")
	require.True(t, ok)
	assert.Equal(t, "cough", sess.ChiefComplaint)
	assert.Equal(t, "triage", sess.Context["source"])
}

func TestAnswerWithoutSession(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.Answer(context.Background(), "ghost", "hi")

	assert.ErrorIs(t, err, domain.ErrNoActiveSession)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestEndWithoutSessionDoesNotWrite(t *testing.T) {
	store, transcripts := newTestStore(t)

	_, err := store.End(context.Background(), "ghost")

	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, 0, transcripts.writes)
}

func TestEndTwiceFails(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)
	_, err := store.Start(ctx, "p1", "", nil)
	require.NoError(t, err)

	_, err = store.End(ctx, "p1")
	require.NoError(t, err)

	_, err = store.End(ctx, "p1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestEndPersistenceFailureKeepsSession(t *testing.T) {
	ctx := context.Background()
	store, transcripts := newTestStore(t)
	_, err := store.Start(ctx, "p1", "rash", nil)
	require.NoError(t, err)

	transcripts.fail = errors.New("disk full")
	_, err = store.End(ctx, "p1")
	assert.ErrorIs(t, err, domain.ErrPersistence)
	assert.NotErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, 1, store.Len())

	resp, err := store.Answer(ctx, "p1", "still here")
	require.NoError(t, err)
	assert.False(t, resp.Completed)

	transcripts.fail = nil
	ended, err := store.End(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "mem/p1", ended.Reference)
	assert.Equal(t, 2, transcripts.writes)

	text, err := transcripts.Read(ctx, "p1")
	require.NoError(t, err)
	assert.Contains(t, text, "PATIENT: still here")
}

func TestRestartAfterEndCreatesFreshSession(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)
	_, err := store.Start(ctx, "p1", "old", nil)
	require.NoError(t, err)
	_, err = store.End(ctx, "p1")
	require.NoError(t, err)

	resp, err := store.Start(ctx, "p1", "new", nil)
	require.NoError(t, err)
	assert.Len(t, resp.Questions, 4)
	assert.Equal(t, "Can you describe more details about: new?", resp.Questions[3])
}

func TestBlankPatientIDRejected(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	_, err := store.Start(ctx, " ", "", nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	// No session can exist under an id Start rejects.
	_, err = store.Answer(ctx, "", "x")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = store.End(ctx, "")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestResponseTranscriptIsACopy(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	resp, err := store.Start(ctx, "p1", "", nil)
	require.NoError(t, err)
	resp.Transcript[0].Content = "tampered"

	sess, ok := store.Snapshot("p1")
	require.True(t, ok)
	assert.NotEqual(t, "tampered", sess.Transcript[0].Content)
}

func TestConcurrentAnswersSamePatient(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)
	_, err := store.Start(ctx, "p1", "", nil)
	require.NoError(t, err)

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := store.Answer(ctx, "p1", fmt.Sprintf("answer %d", i))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	sess, ok := store.Snapshot("p1")
	require.True(t, ok)
	patientTurns := 0
	for _, turn := range sess.Transcript {
		if turn.Role == domain.RolePatient {
			patientTurns++
		}
	}
	assert.Equal(t, n, patientTurns)
	assert.Equal(t, 0, store.locks.size())
}

func TestConcurrentStartsDifferentPatients(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		for j := 0; j < 2; j++ {
			go func(i int) {
				defer wg.Done()
				_, err := store.Start(ctx, fmt.Sprintf("p%d", i), "", nil)
				assert.NoError(t, err)
			}(i)
		}
	}
	wg.Wait()

	assert.Equal(t, 20, store.Len())
}

func TestNotifierReceivesEvents(t *testing.T) {
	ctx := context.Background()
	n := &recordingNotifier{}
	store, _ := newTestStore(t, WithNotifier(n))

	_, err := store.Start(ctx, "p1", "", nil)
	require.NoError(t, err)
	_, err = store.End(ctx, "p1")
	require.NoError(t, err)

	require.Len(t, n.events, 4)
	for _, e := range n.events[:3] {
		assert.Equal(t, domain.EventTurnAppended, e.Type)
		require.NotNil(t, e.Turn)
		assert.Equal(t, domain.RoleAgent, e.Turn.Role)
	}
	assert.Equal(t, domain.EventSessionEnded, n.events[3].Type)
	assert.Equal(t, "mem/p1", n.events[3].Reference)
}

func TestStartRejectsIDsStorageCannotHold(t *testing.T) {
	ctx := context.Background()
	store, transcripts := newTestStore(t)

	for _, id := range []string{"a/b", `a\b`, "..", " p2", "p2 "} {
		_, err := store.Start(ctx, id, "x", nil)
		assert.ErrorIs(t, err, domain.ErrInvalidInput, "id %q", id)
	}
	assert.Equal(t, 0, store.Len())

	_, err := store.Start(ctx, "p2", "y", nil)
	require.NoError(t, err)
	_, err = store.End(ctx, "p2")
	require.NoError(t, err)
	assert.Equal(t, 1, transcripts.writes)
}

func TestEndPersistenceErrorKeepsCause(t *testing.T) {
	ctx := context.Background()
	store, transcripts := newTestStore(t)
	_, err := store.Start(ctx, "p1", "", nil)
	require.NoError(t, err)

	transcripts.fail = domain.InvalidInputf("rejected by backend")
	_, err = store.End(ctx, "p1")

	assert.ErrorIs(t, err, domain.ErrPersistence)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestStartCopiesContext(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	callerCtx := map[string]interface{}{"clinic": "north"}
	_, err := store.Start(ctx, "p1", "", callerCtx)
	require.NoError(t, err)

	callerCtx["clinic"] = "south"
	callerCtx["extra"] = true

	sess, ok := store.Snapshot("p1")
	require.True(t, ok)
	assert.Equal(t, map[string]interface{}{"clinic": "north"}, sess.Context)
}
