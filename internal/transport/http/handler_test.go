package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"timed-exam-service/internal/app"
	"timed-exam-service/internal/auth"
	"timed-exam-service/internal/domain"
	"timed-exam-service/internal/infra/memory"
)

const (
	adminSecret    = "admin-pass"
	practiceSecret = "practice-pass"
)

type testServer struct {
	*httptest.Server
	service  *app.ExamService
	results  *memory.ResultsStore
	attempts *memory.AttemptRegistry
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	return newTestServerForBank(t, "bank-1")
}

func newTestServerForBank(t *testing.T, bankID string) *testServer {
	t.Helper()
	adminHash, err := auth.HashSecret(adminSecret, bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	practiceHash, err := auth.HashSecret(practiceSecret, bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	ts := &testServer{
		results:  memory.NewResultsStore(),
		attempts: memory.NewAttemptRegistry(),
	}
	ts.service = app.NewExamService(app.Dependencies{
		Sessions: memory.NewSessionStore(),
		Banks:    memory.NewBankRepository(memory.NewStaticBankLoader(sampleBank()), time.Minute),
		Results:  ts.results,
		Attempts: ts.attempts,
		Verifier: auth.NewBcryptVerifier(map[domain.Role]string{
			domain.RoleAdmin:    adminHash,
			domain.RolePractice: practiceHash,
		}),
	}, app.Settings{BankID: bankID}, zerolog.Nop(),
		app.WithTicker(func() (<-chan time.Time, func()) { return make(chan time.Time), func() {} }),
	)
	ts.Server = httptest.NewServer(NewRouter(ts.service, zerolog.Nop()))
	t.Cleanup(func() {
		ts.service.Shutdown()
		ts.Server.Close()
	})
	return ts
}

// sampleBank has every question answered correctly by "A", so tests can
// predict scores whatever the shuffle order.
func sampleBank() domain.Bank {
	questions := make([]domain.Question, 4)
	for i := range questions {
		questions[i] = domain.Question{
			ID:   i + 1,
			Text: fmt.Sprintf("question %d", i+1),
			Options: []domain.Option{
				{ID: "A", Text: "right"},
				{ID: "B", Text: "wrong"},
				{ID: "C", Text: "wrong"},
				{ID: "D", Text: "wrong"},
			},
			CorrectOptionID: "A",
		}
	}
	return domain.Bank{ID: "bank-1", Questions: questions}
}

func (ts *testServer) do(t *testing.T, method, path string, body any, header http.Header) (*http.Response, []byte) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, ts.URL+path, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	for k, v := range header {
		req.Header[k] = v
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	var buf bytes.Buffer
	_, _ = buf.ReadFrom(resp.Body)
	return resp, buf.Bytes()
}

func (ts *testServer) startOfficial(t *testing.T, number string) domain.SessionView {
	t.Helper()
	resp, body := ts.do(t, http.MethodPost, "/sessions", map[string]string{
		"fullName":         "Ana Ruiz",
		"collegiateNumber": number,
		"quizType":         "OFFICIAL",
	}, nil)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.StatusCode, body)
	}
	var view domain.SessionView
	if err := json.Unmarshal(body, &view); err != nil {
		t.Fatalf("unmarshal view: %v", err)
	}
	return view
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t)
	resp, body := ts.do(t, http.MethodGet, "/healthz", nil, nil)
	if resp.StatusCode != http.StatusOK || string(body) != "ok" {
		t.Fatalf("unexpected healthz response %d %q", resp.StatusCode, body)
	}
}

func TestStartSessionWithoutBankIsUnavailable(t *testing.T) {
	ts := newTestServerForBank(t, "missing-bank")
	resp, body := ts.do(t, http.MethodPost, "/sessions", map[string]string{
		"fullName":         "Ana Ruiz",
		"collegiateNumber": "123",
		"quizType":         "OFFICIAL",
	}, nil)
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d: %s", resp.StatusCode, body)
	}
	taken, _ := ts.attempts.HasTaken(context.Background(), "123")
	if taken {
		t.Fatalf("failed start must not consume the attempt")
	}
}

func TestStartSessionHidesCorrectOption(t *testing.T) {
	ts := newTestServer(t)
	resp, body := ts.do(t, http.MethodPost, "/sessions", map[string]string{
		"fullName":         "Ana Ruiz",
		"collegiateNumber": "12345",
		"quizType":         "OFFICIAL",
	}, nil)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.StatusCode, body)
	}
	if bytes.Contains(body, []byte("correctOptionId")) {
		t.Fatalf("view must not leak the correct option: %s", body)
	}
	var view domain.SessionView
	if err := json.Unmarshal(body, &view); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if view.Status != domain.SessionStatusActive || view.Total != 4 || view.Clock != "06:00" || view.RemainingSeconds != 360 {
		t.Fatalf("unexpected view %+v", view)
	}
}

func TestStartSessionValidation(t *testing.T) {
	ts := newTestServer(t)
	resp, body := ts.do(t, http.MethodPost, "/sessions", map[string]string{
		"fullName": "Ana Ruiz",
		"quizType": "FINAL",
	}, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	var errResp errorResponse
	if err := json.Unmarshal(body, &errResp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if errResp.Fields["collegiateNumber"] == "" || errResp.Fields["quizType"] == "" {
		t.Fatalf("expected translated field errors, got %+v", errResp.Fields)
	}

	resp, _ = ts.do(t, http.MethodPost, "/sessions", map[string]string{
		"fullName":         "   ",
		"collegiateNumber": "12345",
		"quizType":         "OFFICIAL",
	}, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for blank name, got %d", resp.StatusCode)
	}
}

func TestPracticeRequiresSecret(t *testing.T) {
	ts := newTestServer(t)
	req := map[string]string{
		"fullName":         "Ana Ruiz",
		"collegiateNumber": "12345",
		"quizType":         "PRACTICE",
		"secret":           "guess",
	}
	if resp, _ := ts.do(t, http.MethodPost, "/sessions", req, nil); resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
	req["secret"] = practiceSecret
	if resp, body := ts.do(t, http.MethodPost, "/sessions", req, nil); resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.StatusCode, body)
	}
}

func TestFinishRecordsResultAndBlocksRetake(t *testing.T) {
	ts := newTestServer(t)
	view := ts.startOfficial(t, "12345")

	session, err := ts.service.Session(view.SessionID)
	if err != nil {
		t.Fatalf("session: %v", err)
	}
	if err := session.SelectOption("A"); err != nil {
		t.Fatalf("select: %v", err)
	}

	resp, body := ts.do(t, http.MethodPost, "/sessions/"+view.SessionID+"/finish", nil, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, body)
	}
	var finished domain.SessionView
	if err := json.Unmarshal(body, &finished); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if finished.Status != domain.SessionStatusSubmitted || finished.Outcome == nil || finished.Outcome.Score != 25 {
		t.Fatalf("unexpected finished view %+v", finished)
	}

	// A second finish is a no-op with the same outcome.
	resp, _ = ts.do(t, http.MethodPost, "/sessions/"+view.SessionID+"/finish", nil, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 on repeat finish, got %d", resp.StatusCode)
	}
	results, _ := ts.results.ListAll(context.Background())
	if len(results) != 1 || results[0].Score != 25 {
		t.Fatalf("expected exactly one stored result, got %+v", results)
	}

	resp, _ = ts.do(t, http.MethodPost, "/sessions", map[string]string{
		"fullName":         "Ana Ruiz",
		"collegiateNumber": "12345",
		"quizType":         "OFFICIAL",
	}, nil)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409 on retake, got %d", resp.StatusCode)
	}
}

func TestSessionLookupAndRelease(t *testing.T) {
	ts := newTestServer(t)
	view := ts.startOfficial(t, "12345")

	if resp, _ := ts.do(t, http.MethodGet, "/sessions/"+view.SessionID, nil, nil); resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if resp, _ := ts.do(t, http.MethodDelete, "/sessions/"+view.SessionID, nil, nil); resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.StatusCode)
	}
	if resp, _ := ts.do(t, http.MethodGet, "/sessions/"+view.SessionID, nil, nil); resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 after release, got %d", resp.StatusCode)
	}
	results, _ := ts.results.ListAll(context.Background())
	if len(results) != 0 {
		t.Fatalf("released session must not be scored, got %+v", results)
	}
}

func TestAdminResults(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()
	_ = ts.results.Append(ctx, domain.ExamResult{FullName: "Ana Ruiz", CollegiateNumber: "111", Score: 70, Type: domain.QuizTypeOfficial})
	_ = ts.results.Append(ctx, domain.ExamResult{FullName: "Luis Gil", CollegiateNumber: "222", Score: 40, Type: domain.QuizTypeOfficial})
	_ = ts.attempts.MarkTaken(ctx, "111")

	if resp, _ := ts.do(t, http.MethodGet, "/admin/results", nil, nil); resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 without secret, got %d", resp.StatusCode)
	}

	header := http.Header{}
	header.Set(AdminSecretHeader, adminSecret)
	resp, body := ts.do(t, http.MethodGet, "/admin/results?q=ana", nil, header)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var list resultsResponse
	if err := json.Unmarshal(body, &list); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if list.Count != 1 || list.Results[0].CollegiateNumber != "111" {
		t.Fatalf("unexpected filtered results %+v", list)
	}

	if resp, _ := ts.do(t, http.MethodDelete, "/admin/results", nil, header); resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.StatusCode)
	}
	remaining, _ := ts.results.ListAll(ctx)
	taken, _ := ts.attempts.HasTaken(ctx, "111")
	if len(remaining) != 0 || taken {
		t.Fatalf("expected results and markers cleared, got %d results taken=%v", len(remaining), taken)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{domain.ErrSessionNotFound, http.StatusNotFound},
		{domain.ErrInvalidUser, http.StatusBadRequest},
		{domain.ErrOptionNotFound, http.StatusBadRequest},
		{domain.ErrInvalidCredentials, http.StatusUnauthorized},
		{domain.ErrAttemptTaken, http.StatusConflict},
		{fmt.Errorf("load bank: %w", domain.ErrBankNotFound), http.StatusServiceUnavailable},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
