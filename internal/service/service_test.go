package service

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiaot623/gogo/intake/internal/adapter/retrieval"
	"github.com/xiaot623/gogo/intake/internal/agent"
	"github.com/xiaot623/gogo/intake/internal/domain"
	"github.com/xiaot623/gogo/intake/internal/logger"
	"github.com/xiaot623/gogo/intake/internal/metrics"
	"github.com/xiaot623/gogo/intake/internal/policy"
	"github.com/xiaot623/gogo/intake/internal/repository"
	"github.com/xiaot623/gogo/intake/internal/session"
	"github.com/xiaot623/gogo/intake/internal/testutil"
)

func newTestService(t *testing.T, retriever retrieval.Retriever) *Service {
	t.Helper()
	log := logger.Discard()
	m := metrics.New()

	engine, err := policy.NewEngine(context.Background(), policy.DefaultPolicy)
	require.NoError(t, err)

	base := t.TempDir()
	transcripts := repository.NewFileTranscriptStore(base)
	files := repository.NewFileRepository(base, t.TempDir())
	sessions := session.NewStore(agent.NewQuestionAgent(), transcripts, log, m)
	return New(sessions, agent.NewAdvisorAgent(retriever), transcripts, testutil.NewTestSQLiteStore(t), files, engine, log, m)
}

func TestRunAdvisorOnTextWrapsPatient(t *testing.T) {
	svc := newTestService(t, retrieval.NewMockClient())

	res, err := svc.RunAdvisorOnText(context.Background(), "p1", "headache for three days", 2)
	require.NoError(t, err)

	assert.Equal(t, "p1", res.PatientID)
	require.Len(t, res.Suggestions, 2)
	assert.Equal(t, "Suggestion #1", res.Suggestions[0].Title)
}

func TestRunAdvisorOnTextRejectsOutOfRange(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		fmt.Fprint(w, `{"results":[]}`)
	}))
	defer server.Close()
	svc := newTestService(t, retrieval.NewClient(server.URL, "", time.Second, logger.Discard(), metrics.New()))

	for _, n := range []int{0, 11} {
		_, err := svc.RunAdvisorOnText(context.Background(), "p1", "text", n)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	}
	assert.Equal(t, 0, calls)
}

func TestRunAdvisorOnTextBackendTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		fmt.Fprint(w, `{"results":[{"text":"late"}]}`)
	}))
	defer server.Close()
	svc := newTestService(t, retrieval.NewClient(server.URL, "", 50*time.Millisecond, logger.Discard(), metrics.New()))

	res, err := svc.RunAdvisorOnText(context.Background(), "p1", "chest pain", 3)
	require.NoError(t, err)

	require.Len(t, res.Suggestions, 1)
	assert.Equal(t, 0.2, res.Suggestions[0].Confidence)
	assert.Empty(t, res.Suggestions[0].Citations)
}

func TestRunAdvisorOnTranscript(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, retrieval.NewMockClient())

	_, err := svc.RunAdvisorOnTranscript(ctx, "p1", 3)
	assert.ErrorIs(t, err, domain.ErrTranscriptNotFound)

	_, err = svc.StartSession(ctx, "p1", "dizziness", nil)
	require.NoError(t, err)
	_, err = svc.SubmitAnswer(ctx, "p1", "two weeks")
	require.NoError(t, err)
	ended, err := svc.EndSession(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "Interview/p1.txt", ended.Reference)

	res, err := svc.RunAdvisorOnTranscript(ctx, "p1", 3)
	require.NoError(t, err)
	assert.Len(t, res.Suggestions, 3)

	_, err = svc.RunAdvisorOnTranscript(ctx, "p1", 42)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSubmitAnswerRecordsEmptyAnswer(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, retrieval.NewMockClient())

	_, err := svc.SubmitAnswer(ctx, "nobody", "")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	started, err := svc.StartSession(ctx, "p1", "", nil)
	require.NoError(t, err)

	resp, err := svc.SubmitAnswer(ctx, "p1", "")
	require.NoError(t, err)

	patientTurn := resp.Transcript[len(started.Transcript)]
	assert.Equal(t, domain.RolePatient, patientTurn.Role)
	assert.Equal(t, "", patientTurn.Content)
}

func TestGetSession(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, retrieval.NewMockClient())

	_, err := svc.GetSession(ctx, "p1")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	_, err = svc.StartSession(ctx, "p1", "", nil)
	require.NoError(t, err)
	sess, err := svc.GetSession(ctx, "p1")
	require.NoError(t, err)
	assert.Len(t, sess.Transcript, 3)
}

func TestTranscriptOperations(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, retrieval.NewMockClient())

	ref, err := svc.SaveTranscript(ctx, "p9", "free text")
	require.NoError(t, err)
	assert.Equal(t, "Interview/p9.txt", ref)

	text, err := svc.GetTranscript(ctx, "p9")
	require.NoError(t, err)
	assert.Equal(t, "free text", text)

	require.NoError(t, svc.DeleteTranscript(ctx, "p9"))
	assert.ErrorIs(t, svc.DeleteTranscript(ctx, "p9"), domain.ErrTranscriptNotFound)
}

func TestDeprecatedFlows(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, retrieval.NewMockClient())

	assert.ErrorIs(t, svc.RunInterviewStep(ctx, "int_1"), domain.ErrDeprecatedFlow)
	assert.ErrorIs(t, svc.RunAdvisor(ctx, "int_1", 3), domain.ErrDeprecatedFlow)
	assert.ErrorIs(t, svc.RunCrew(ctx, "int_1", 3), domain.ErrDeprecatedFlow)
}

func TestFileOperations(t *testing.T) {
	svc := newTestService(t, retrieval.NewMockClient())
	ctx := context.Background()

	rel, err := svc.WriteFile(ctx, "notes/visit.txt", "follow up in 2 weeks", true)
	require.NoError(t, err)
	assert.Equal(t, "notes/visit.txt", rel)

	content, err := svc.ReadFile(ctx, rel, true)
	require.NoError(t, err)
	assert.Equal(t, "follow up in 2 weeks", content)

	_, err = svc.ReadFile(ctx, rel, false)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.WriteFile(ctx, "../outside.txt", "x", false)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
