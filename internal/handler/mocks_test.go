package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/mbank/ledger/internal/auth"
	"github.com/mbank/ledger/internal/domain"
	"github.com/mbank/ledger/internal/service/ledger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockLedger struct {
	mock.Mock
}

func (m *mockLedger) Register(ctx context.Context, holderName, email, secret string) (*domain.Account, error) {
	args := m.Called(ctx, holderName, email, secret)
	return accountArg(args)
}

func (m *mockLedger) Login(ctx context.Context, email, secret string) (*domain.Account, error) {
	args := m.Called(ctx, email, secret)
	return accountArg(args)
}

func (m *mockLedger) Account(ctx context.Context, number int64) (*domain.Account, error) {
	args := m.Called(ctx, number)
	return accountArg(args)
}

func (m *mockLedger) Deposit(ctx context.Context, number int64, amount decimal.Decimal) (*domain.Account, error) {
	args := m.Called(ctx, number, amount)
	return accountArg(args)
}

func (m *mockLedger) Withdraw(ctx context.Context, number int64, amount decimal.Decimal) (*domain.Account, error) {
	args := m.Called(ctx, number, amount)
	return accountArg(args)
}

func (m *mockLedger) Transfer(ctx context.Context, req ledger.TransferRequest) (*ledger.TransferResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.TransferResult), args.Error(1)
}

func (m *mockLedger) Statement(ctx context.Context, req ledger.StatementRequest) (*ledger.Statement, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Statement), args.Error(1)
}

func (m *mockLedger) HolderName(ctx context.Context, number int64) (string, error) {
	args := m.Called(ctx, number)
	return args.String(0), args.Error(1)
}

func accountArg(args mock.Arguments) (*domain.Account, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

var createdAt = time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)

func testAccount(number int64, balance string) *domain.Account {
	return &domain.Account{
		Number:     number,
		HolderName: "Thandi",
		Email:      "thandi@mbank.test",
		Balance:    decimal.RequireFromString(balance),
		Version:    2,
		CreatedAt:  createdAt,
	}
}

// newRequest builds a request as the router and Auth middleware would hand
// it over: {number} bound and, when caller is non-zero, authenticated.
func newRequest(t *testing.T, method, target string, pathNumber, caller int64, body any) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	if pathNumber != 0 {
		req.SetPathValue("number", strconv.FormatInt(pathNumber, 10))
	}
	if caller != 0 {
		req = req.WithContext(auth.ContextWithAccountNumber(req.Context(), caller))
	}
	return req
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *APIError       `json:"error"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
	return env
}
