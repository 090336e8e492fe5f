package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mbank/ledger/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestAccountHandler_Register(t *testing.T) {
	svc := new(mockLedger)
	svc.On("Register", mock.Anything, "Thandi", "thandi@mbank.test", "s3cret").
		Return(testAccount(123456, "0"), nil)

	h := NewAccountHandler(svc, svc)
	rec := httptest.NewRecorder()
	h.Register(rec, newRequest(t, http.MethodPost, "/api/v1/accounts", 0, 0, registerRequest{
		HolderName: "Thandi", Email: "thandi@mbank.test", Secret: "s3cret",
	}))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "/api/v1/accounts/123456", rec.Header().Get("Location"))

	env := decodeEnvelope(t, rec)
	require.True(t, env.Success)
	var dto accountDTO
	require.NoError(t, json.Unmarshal(env.Data, &dto))
	assert.Equal(t, int64(123456), dto.AccountNumber)
	assert.Equal(t, "0.00", dto.Balance)
	svc.AssertExpectations(t)
}

func TestAccountHandler_Register_Validation(t *testing.T) {
	svc := new(mockLedger)
	h := NewAccountHandler(svc, svc)

	rec := httptest.NewRecorder()
	h.Register(rec, newRequest(t, http.MethodPost, "/api/v1/accounts", 0, 0, registerRequest{Email: "x@mbank.test"}))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	env := decodeEnvelope(t, rec)
	require.NotNil(t, env.Error)
	assert.Equal(t, "VALIDATION_FAILED", env.Error.Code)
	svc.AssertNotCalled(t, "Register", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAccountHandler_Register_MalformedBody(t *testing.T) {
	svc := new(mockLedger)
	h := NewAccountHandler(svc, svc)

	rec := httptest.NewRecorder()
	h.Register(rec, newRequest(t, http.MethodPost, "/api/v1/accounts", 0, 0, "{not json"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_REQUEST", decodeEnvelope(t, rec).Error.Code)
}

func TestAccountHandler_Register_DuplicateEmail(t *testing.T) {
	svc := new(mockLedger)
	svc.On("Register", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, domain.Rule(domain.ErrDuplicateEmail, "Email thandi@mbank.test is already registered"))

	h := NewAccountHandler(svc, svc)
	rec := httptest.NewRecorder()
	h.Register(rec, newRequest(t, http.MethodPost, "/api/v1/accounts", 0, 0, registerRequest{
		HolderName: "Thandi", Email: "thandi@mbank.test", Secret: "s3cret",
	}))

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestAccountHandler_Get(t *testing.T) {
	tests := []struct {
		name       string
		pathNumber int64
		caller     int64
		wantStatus int
	}{
		{name: "own account", pathNumber: 123456, caller: 123456, wantStatus: http.StatusOK},
		{name: "someone else's account", pathNumber: 654321, caller: 123456, wantStatus: http.StatusNotFound},
		{name: "unauthenticated", pathNumber: 123456, caller: 0, wantStatus: http.StatusUnauthorized},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := new(mockLedger)
			svc.On("Account", mock.Anything, int64(123456)).Return(testAccount(123456, "2990"), nil).Maybe()

			h := NewAccountHandler(svc, svc)
			rec := httptest.NewRecorder()
			h.Get(rec, newRequest(t, http.MethodGet, "/api/v1/accounts/x", tc.pathNumber, tc.caller, nil))

			assert.Equal(t, tc.wantStatus, rec.Code)
			if tc.wantStatus == http.StatusOK {
				var dto accountDTO
				require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &dto))
				assert.Equal(t, "2990.00", dto.Balance)
			}
		})
	}
}

func TestAccountHandler_Holder(t *testing.T) {
	svc := new(mockLedger)
	svc.On("HolderName", mock.Anything, int64(654321)).Return("Sipho", nil)
	svc.On("HolderName", mock.Anything, int64(999999)).Return("", domain.MissingAccount(999999))

	h := NewAccountHandler(svc, svc)

	rec := httptest.NewRecorder()
	h.Holder(rec, newRequest(t, http.MethodGet, "/x", 654321, 123456, nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	var dto holderDTO
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &dto))
	assert.Equal(t, holderDTO{AccountNumber: 654321, HolderName: "Sipho"}, dto)

	rec = httptest.NewRecorder()
	h.Holder(rec, newRequest(t, http.MethodGet, "/x", 999999, 123456, nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Account #999999 not found", decodeEnvelope(t, rec).Error.Message)
}
