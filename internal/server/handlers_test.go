package server

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/hippocampus-app/hippocampus/constants"
	"github.com/hippocampus-app/hippocampus/internal/chat"
	"github.com/hippocampus-app/hippocampus/internal/common"
	"github.com/hippocampus-app/hippocampus/internal/entity"
	"github.com/hippocampus-app/hippocampus/internal/export"
	"github.com/hippocampus-app/hippocampus/internal/llm"
	"github.com/hippocampus-app/hippocampus/internal/repository"
)

// stubStore is the minimal Store needed to drive a handler through the
// chat service. insertMessageErr makes the audit insert fail so handler
// error mapping for store failures can be observed.
type stubStore struct {
	householdID      uuid.UUID
	memberID         uuid.UUID
	insertMessageErr error
}

func newStubStore() *stubStore {
	return &stubStore{householdID: uuid.New(), memberID: uuid.New()}
}

func (s *stubStore) EnsureHousehold(context.Context, string) (entity.Household, error) {
	return entity.Household{ID: s.householdID, Name: "home-001"}, nil
}

func (s *stubStore) EnsureMember(_ context.Context, householdID uuid.UUID, displayName string) (entity.Member, error) {
	return entity.Member{ID: s.memberID, HouseholdID: householdID, DisplayName: displayName}, nil
}

func (s *stubStore) InsertMessage(context.Context, entity.Message) error {
	return s.insertMessageErr
}

func (s *stubStore) InsertExpense(context.Context, entity.Expense) error    { return nil }
func (s *stubStore) InsertExpenses(context.Context, []entity.Expense) error { return nil }

func (s *stubStore) SumExpenses(context.Context, repository.ExpenseFilter) (float64, error) {
	return 0, nil
}

func (s *stubStore) SumByCategory(context.Context, repository.ExpenseFilter) (map[constants.Category]float64, error) {
	return map[constants.Category]float64{}, nil
}

func (s *stubStore) SumByMember(context.Context, repository.ExpenseFilter) (map[string]float64, error) {
	return map[string]float64{}, nil
}

func (s *stubStore) ListExpenses(context.Context, repository.ExpenseFilter) ([]entity.Expense, error) {
	return nil, nil
}

func (s *stubStore) Close() {}

type errRouter struct{ err error }

func (r *errRouter) Route(context.Context, string, string) (llm.Outcome, error) {
	return llm.Outcome{}, r.err
}

type errExtractor struct{ err error }

func (e *errExtractor) Extract(context.Context, []byte) (llm.ExpenseSeed, error) {
	return llm.ExpenseSeed{}, e.err
}

func newTestServer(store repository.Store, router llm.Router, extractor llm.ReceiptExtractor) *Server {
	gin.SetMode(gin.TestMode)
	logger := slog.Default()
	chatSvc := chat.NewService(store, router, extractor, "home-001", "INR", logger)
	exportSvc := export.NewService(store, logger)
	cfg := common.ServerConfig{Addr: ":0", AllowedOrigins: "*"}
	return NewServer(chatSvc, exportSvc, store, cfg, logger)
}

func postMessage(t *testing.T, srv *Server, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/message", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.httpSrv.Handler.ServeHTTP(rec, req)
	return rec
}

func TestHandleMessage_UpstreamFailureSurfacedAs502(t *testing.T) {
	router := &errRouter{err: fmt.Errorf("%w: non-2xx status 503: model overloaded", llm.ErrUpstream)}
	srv := newTestServer(newStubStore(), router, nil)

	rec := postMessage(t, srv, `{"member":"Partner 1","text":"Spent 350 on groceries"}`)
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "model overloaded") {
		t.Errorf("body = %s, want the upstream error text surfaced", rec.Body.String())
	}
}

func TestHandleMessage_StoreFailureStaysGeneric(t *testing.T) {
	store := newStubStore()
	store.insertMessageErr = fmt.Errorf("connection refused to 10.0.0.7:5432")
	srv := newTestServer(store, nil, nil)

	rec := postMessage(t, srv, `{"member":"Partner 1","text":"Spent 350 on groceries"}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "failed to process message") {
		t.Errorf("body = %s, want the generic notice", rec.Body.String())
	}
	if strings.Contains(rec.Body.String(), "10.0.0.7") {
		t.Errorf("store error detail leaked into the response: %s", rec.Body.String())
	}
}

func TestHandleReceipt_UpstreamFailureSurfacedAs502(t *testing.T) {
	extractor := &errExtractor{err: fmt.Errorf("%w: no response from gemini", llm.ErrUpstream)}
	srv := newTestServer(newStubStore(), nil, extractor)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("member", "Partner 1"); err != nil {
		t.Fatalf("write member field: %v", err)
	}
	part, err := mw.CreateFormFile("image", "receipt.png")
	if err != nil {
		t.Fatalf("create image part: %v", err)
	}
	if _, err := part.Write([]byte{0x89, 'P', 'N', 'G'}); err != nil {
		t.Fatalf("write image bytes: %v", err)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/receipt", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	srv.httpSrv.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "no response from gemini") {
		t.Errorf("body = %s, want the upstream error text surfaced", rec.Body.String())
	}
}
