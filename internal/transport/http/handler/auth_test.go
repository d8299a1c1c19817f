package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/notes-api/internal/application/auth"
	"github.com/notes-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mock ---

type mockAuthSvc struct{ mock.Mock }

func (m *mockAuthSvc) Signup(ctx context.Context, req auth.SignupRequest) (*domain.User, error) {
	args := m.Called(ctx, req)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAuthSvc) VerifyOTP(ctx context.Context, req auth.VerifyOTPRequest) (*auth.Result, error) {
	args := m.Called(ctx, req)
	if res, _ := args.Get(0).(*auth.Result); res != nil {
		return res, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAuthSvc) Signin(ctx context.Context, req auth.SigninRequest) (*domain.User, error) {
	args := m.Called(ctx, req)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAuthSvc) ResendOTP(ctx context.Context, req auth.ResendOTPRequest) (*domain.User, error) {
	args := m.Called(ctx, req)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAuthSvc) GoogleAuth(ctx context.Context, req auth.GoogleAuthRequest) (*auth.Result, error) {
	args := m.Called(ctx, req)
	if res, _ := args.Get(0).(*auth.Result); res != nil {
		return res, args.Error(1)
	}
	return nil, args.Error(1)
}

func postJSON(t *testing.T, target string, v interface{}) *http.Request {
	t.Helper()
	body, err := json.Marshal(v)
	require.NoError(t, err)
	r := httptest.NewRequest(http.MethodPost, target, bytes.NewReader(body))
	r.Header.Set("Content-Type", "application/json")
	return r
}

// --- Signup tests ---

func TestSignup_InvalidBody(t *testing.T) {
	h := NewAuthHandler(&mockAuthSvc{})
	r := httptest.NewRequest(http.MethodPost, "/v1/auth/signup", bytes.NewBufferString("not-json"))
	rr := httptest.NewRecorder()
	h.Signup(rr, r)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestSignup_ValidationFailure(t *testing.T) {
	svc := &mockAuthSvc{}
	h := NewAuthHandler(svc)
	r := postJSON(t, "/v1/auth/signup", auth.SignupRequest{Email: "ann@example.com"}) // no name, no password
	rr := httptest.NewRecorder()
	h.Signup(rr, r)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	svc.AssertNotCalled(t, "Signup", mock.Anything, mock.Anything)
}

func TestSignup_DuplicateEmail(t *testing.T) {
	svc := &mockAuthSvc{}
	svc.On("Signup", mock.Anything, mock.Anything).Return(nil, domain.ErrDuplicateIdentity)
	h := NewAuthHandler(svc)
	r := postJSON(t, "/v1/auth/signup", auth.SignupRequest{
		Email: "ann@example.com", Name: "Ann", Password: "secret123",
	})
	rr := httptest.NewRecorder()
	h.Signup(rr, r)
	assert.Equal(t, http.StatusConflict, rr.Code)
	svc.AssertExpectations(t)
}

func TestSignup_HappyPath(t *testing.T) {
	svc := &mockAuthSvc{}
	u := &domain.User{UserID: "u1", Email: "ann@example.com", Name: "Ann"}
	svc.On("Signup", mock.Anything, mock.MatchedBy(func(req auth.SignupRequest) bool {
		return req.Email == "ann@example.com" && req.Password == "secret123"
	})).Return(u, nil)
	h := NewAuthHandler(svc)
	r := postJSON(t, "/v1/auth/signup", auth.SignupRequest{
		Email: "ann@example.com", Name: "Ann", Password: "secret123",
	})
	rr := httptest.NewRecorder()
	h.Signup(rr, r)

	assert.Equal(t, http.StatusCreated, rr.Code)
	var resp AuthEnvelope
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Empty(t, resp.Token, "no session token before OTP verification")
	assert.Equal(t, "verification code sent", resp.Message)
	require.NotNil(t, resp.User)
	assert.Equal(t, "u1", resp.User.ID)
	svc.AssertExpectations(t)
}

// --- VerifyOTP tests ---

func TestVerifyOTP_ValidationFailure(t *testing.T) {
	svc := &mockAuthSvc{}
	h := NewAuthHandler(svc)
	r := postJSON(t, "/v1/auth/verify-otp", auth.VerifyOTPRequest{UserID: "u1", OTP: "12345"}) // 5 digits
	rr := httptest.NewRecorder()
	h.VerifyOTP(rr, r)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	svc.AssertNotCalled(t, "VerifyOTP", mock.Anything, mock.Anything)
}

func TestVerifyOTP_WrongCode(t *testing.T) {
	svc := &mockAuthSvc{}
	svc.On("VerifyOTP", mock.Anything, mock.Anything).Return(nil, domain.ErrInvalidOrExpiredOTP)
	h := NewAuthHandler(svc)
	r := postJSON(t, "/v1/auth/verify-otp", auth.VerifyOTPRequest{UserID: "u1", OTP: "123456"})
	rr := httptest.NewRecorder()
	h.VerifyOTP(rr, r)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	svc.AssertExpectations(t)
}

func TestVerifyOTP_HappyPath(t *testing.T) {
	svc := &mockAuthSvc{}
	res := &auth.Result{Token: "signed-token", User: &domain.User{UserID: "u1", Email: "ann@example.com", Name: "Ann"}}
	svc.On("VerifyOTP", mock.Anything, auth.VerifyOTPRequest{UserID: "u1", OTP: "123456"}).Return(res, nil)
	h := NewAuthHandler(svc)
	r := postJSON(t, "/v1/auth/verify-otp", auth.VerifyOTPRequest{UserID: "u1", OTP: "123456"})
	rr := httptest.NewRecorder()
	h.VerifyOTP(rr, r)

	assert.Equal(t, http.StatusOK, rr.Code)
	var resp AuthEnvelope
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, "signed-token", resp.Token)
	require.NotNil(t, resp.User)
	assert.Equal(t, "ann@example.com", resp.User.Email)
	svc.AssertExpectations(t)
}

// --- Signin tests ---

func TestSignin_UnknownEmail(t *testing.T) {
	svc := &mockAuthSvc{}
	svc.On("Signin", mock.Anything, mock.Anything).Return(nil, domain.ErrNotFound)
	h := NewAuthHandler(svc)
	r := postJSON(t, "/v1/auth/signin", auth.SigninRequest{Email: "ghost@example.com"})
	rr := httptest.NewRecorder()
	h.Signin(rr, r)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	svc.AssertExpectations(t)
}

func TestSignin_DeliveryFailure(t *testing.T) {
	svc := &mockAuthSvc{}
	svc.On("Signin", mock.Anything, mock.Anything).Return(nil, domain.ErrDeliveryFailed)
	h := NewAuthHandler(svc)
	r := postJSON(t, "/v1/auth/signin", auth.SigninRequest{Email: "ann@example.com"})
	rr := httptest.NewRecorder()
	h.Signin(rr, r)
	assert.Equal(t, http.StatusBadGateway, rr.Code)
	svc.AssertExpectations(t)
}

func TestSignin_HappyPath(t *testing.T) {
	svc := &mockAuthSvc{}
	u := &domain.User{UserID: "u1", Email: "ann@example.com", Name: "Ann"}
	svc.On("Signin", mock.Anything, auth.SigninRequest{Email: "ann@example.com"}).Return(u, nil)
	h := NewAuthHandler(svc)
	r := postJSON(t, "/v1/auth/signin", auth.SigninRequest{Email: "ann@example.com"})
	rr := httptest.NewRecorder()
	h.Signin(rr, r)

	assert.Equal(t, http.StatusOK, rr.Code)
	var resp AuthEnvelope
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Empty(t, resp.Token)
	assert.Equal(t, "verification code sent", resp.Message)
	svc.AssertExpectations(t)
}

// --- ResendOTP tests ---

func TestResendOTP_ValidationFailure(t *testing.T) {
	svc := &mockAuthSvc{}
	h := NewAuthHandler(svc)
	r := postJSON(t, "/v1/auth/resend-otp", auth.ResendOTPRequest{})
	rr := httptest.NewRecorder()
	h.ResendOTP(rr, r)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	svc.AssertNotCalled(t, "ResendOTP", mock.Anything, mock.Anything)
}

func TestResendOTP_HappyPath(t *testing.T) {
	svc := &mockAuthSvc{}
	u := &domain.User{UserID: "u1", Email: "ann@example.com"}
	svc.On("ResendOTP", mock.Anything, auth.ResendOTPRequest{UserID: "u1"}).Return(u, nil)
	h := NewAuthHandler(svc)
	r := postJSON(t, "/v1/auth/resend-otp", auth.ResendOTPRequest{UserID: "u1"})
	rr := httptest.NewRecorder()
	h.ResendOTP(rr, r)

	assert.Equal(t, http.StatusOK, rr.Code)
	var resp MessageEnvelope
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, "verification code sent", resp.Message)
	svc.AssertExpectations(t)
}

// --- GoogleAuth tests ---

func TestGoogleAuth_InvalidToken(t *testing.T) {
	svc := &mockAuthSvc{}
	svc.On("GoogleAuth", mock.Anything, mock.Anything).Return(nil, domain.ErrInvalidToken)
	h := NewAuthHandler(svc)
	r := postJSON(t, "/v1/auth/google", auth.GoogleAuthRequest{IDToken: "bad-token"})
	rr := httptest.NewRecorder()
	h.GoogleAuth(rr, r)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	svc.AssertExpectations(t)
}

func TestGoogleAuth_HappyPath(t *testing.T) {
	svc := &mockAuthSvc{}
	res := &auth.Result{Token: "signed-token", User: &domain.User{UserID: "u1", Email: "ann@example.com", Name: "Ann"}}
	svc.On("GoogleAuth", mock.Anything, auth.GoogleAuthRequest{IDToken: "good-token"}).Return(res, nil)
	h := NewAuthHandler(svc)
	r := postJSON(t, "/v1/auth/google", auth.GoogleAuthRequest{IDToken: "good-token"})
	rr := httptest.NewRecorder()
	h.GoogleAuth(rr, r)

	assert.Equal(t, http.StatusOK, rr.Code)
	var resp AuthEnvelope
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, "signed-token", resp.Token)
	svc.AssertExpectations(t)
}
