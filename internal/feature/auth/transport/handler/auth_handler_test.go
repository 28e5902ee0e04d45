package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"investment_game/internal/app/web"
	"investment_game/internal/feature/auth/domain"
	"investment_game/internal/feature/auth/domain/entity"
	"investment_game/internal/feature/auth/usecase"
	portfoliodomain "investment_game/internal/feature/portfolio/domain"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

// mockAuthUsecase is a mock implementation of AuthUsecase.
type mockAuthUsecase struct {
	RegisterFunc   func(ctx context.Context, username, password string) error
	LoginFunc      func(ctx context.Context, username, password string, client usecase.ClientInfo) (*entity.Session, error)
	IssueTokenFunc func(ctx context.Context, username, password string) (string, error)
	LogoutFunc     func(ctx context.Context, sessionID string) error
}

func (m *mockAuthUsecase) Register(ctx context.Context, username, password string) error {
	if m.RegisterFunc != nil {
		return m.RegisterFunc(ctx, username, password)
	}
	return nil
}

func (m *mockAuthUsecase) Login(ctx context.Context, username, password string, client usecase.ClientInfo) (*entity.Session, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, username, password, client)
	}
	return nil, domain.ErrInvalidCredentials
}

func (m *mockAuthUsecase) IssueToken(ctx context.Context, username, password string) (string, error) {
	if m.IssueTokenFunc != nil {
		return m.IssueTokenFunc(ctx, username, password)
	}
	return "", domain.ErrInvalidCredentials
}

func (m *mockAuthUsecase) Logout(ctx context.Context, sessionID string) error {
	if m.LogoutFunc != nil {
		return m.LogoutFunc(ctx, sessionID)
	}
	return nil
}

// mockCookies records the session ID written by the handler.
type mockCookies struct {
	sid      string
	bound    string
	cleared  bool
	BindFunc func(w http.ResponseWriter, r *http.Request, id string) error
}

func (m *mockCookies) SessionID(r *http.Request) string { return m.sid }

func (m *mockCookies) Bind(w http.ResponseWriter, r *http.Request, id string) error {
	if m.BindFunc != nil {
		return m.BindFunc(w, r, id)
	}
	m.bound = id
	return nil
}

func (m *mockCookies) Clear(w http.ResponseWriter, r *http.Request) error {
	m.cleared = true
	return nil
}

func newRouter(t *testing.T, uc AuthUsecase, cookies SessionCookies) *gin.Engine {
	t.Helper()

	tmpl, err := web.Templates()
	require.NoError(t, err)

	h := NewAuthHandler(uc, cookies)
	r := gin.New()
	r.SetHTMLTemplate(tmpl)
	r.GET("/", h.LoginPage)
	r.POST("/", h.Login)
	r.GET("/register", h.RegisterPage)
	r.POST("/register", h.Register)
	r.GET("/logout", h.Logout)
	r.POST("/api/v1/login", h.APILogin)
	return r
}

func postForm(r *gin.Engine, path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", "test-agent")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthHandler_Pages(t *testing.T) {
	r := newRouter(t, &mockAuthUsecase{}, &mockCookies{})

	for path, want := range map[string]string{"/": `action="/"`, "/register": `action="/register"`} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))

		assert.Equal(t, http.StatusOK, w.Code, path)
		assert.Contains(t, w.Body.String(), want, path)
	}
}

func TestAuthHandler_Login(t *testing.T) {
	tests := []struct {
		name         string
		form         url.Values
		loginErr     error
		bindErr      error
		wantStatus   int
		wantBody     string
		wantLocation string
	}{
		{
			name:         "success: redirect to portfolio",
			form:         url.Values{"username": {"alice"}, "password": {"password123"}},
			wantStatus:   http.StatusSeeOther,
			wantLocation: "/main",
		},
		{
			name:       "failure: wrong password",
			form:       url.Values{"username": {"alice"}, "password": {"wrong"}},
			loginErr:   domain.ErrInvalidCredentials,
			wantStatus: http.StatusUnauthorized,
			wantBody:   "Invalid username/password combination!",
		},
		{
			name:       "failure: missing password",
			form:       url.Values{"username": {"alice"}},
			wantStatus: http.StatusUnauthorized,
			wantBody:   "Invalid username/password combination!",
		},
		{
			name:       "failure: session store down",
			form:       url.Values{"username": {"alice"}, "password": {"password123"}},
			loginErr:   fmt.Errorf("failed to create session: %w", errors.New("redis down")),
			wantStatus: http.StatusInternalServerError,
			wantBody:   "Something went wrong.",
		},
		{
			name:       "failure: cookie cannot be written",
			form:       url.Values{"username": {"alice"}, "password": {"password123"}},
			bindErr:    errors.New("securecookie: the value is too long"),
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotClient usecase.ClientInfo
			uc := &mockAuthUsecase{LoginFunc: func(ctx context.Context, username, password string, client usecase.ClientInfo) (*entity.Session, error) {
				gotClient = client
				if tt.loginErr != nil {
					return nil, tt.loginErr
				}
				return &entity.Session{ID: "sid-1", Username: username, ExpiresAt: time.Now().Add(time.Hour)}, nil
			}}
			cookies := &mockCookies{}
			if tt.bindErr != nil {
				cookies.BindFunc = func(w http.ResponseWriter, r *http.Request, id string) error { return tt.bindErr }
			}
			r := newRouter(t, uc, cookies)

			w := postForm(r, "/", tt.form)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, w.Body.String())
			}
			if tt.wantLocation != "" {
				assert.Equal(t, tt.wantLocation, w.Header().Get("Location"))
				assert.Equal(t, "sid-1", cookies.bound)
				assert.Equal(t, "test-agent", gotClient.UserAgent)
			} else {
				assert.Empty(t, cookies.bound)
			}
		})
	}
}

func TestAuthHandler_Register(t *testing.T) {
	tests := []struct {
		name         string
		form         url.Values
		registerErr  error
		wantStatus   int
		wantBody     string
		wantLocation string
	}{
		{
			name:         "success: redirect to login",
			form:         url.Values{"username": {"alice"}, "password": {"password123"}},
			wantStatus:   http.StatusSeeOther,
			wantLocation: "/",
		},
		{
			name:        "failure: duplicate username",
			form:        url.Values{"username": {"alice"}, "password": {"password123"}},
			registerErr: portfoliodomain.ErrUsernameTaken,
			wantStatus:  http.StatusConflict,
			wantBody:    "Username already exists!",
		},
		{
			name:        "failure: short password",
			form:        url.Values{"username": {"alice"}, "password": {"short"}},
			registerErr: fmt.Errorf("%w: must be at least 8 characters long", domain.ErrPasswordTooShort),
			wantStatus:  http.StatusUnprocessableEntity,
			wantBody:    "Password must be at least 8 characters.",
		},
		{
			name:        "failure: password longer than bcrypt accepts",
			form:        url.Values{"username": {"alice"}, "password": {strings.Repeat("a", 73)}},
			registerErr: fmt.Errorf("%w: must be at most 72 bytes long", domain.ErrPasswordTooLong),
			wantStatus:  http.StatusUnprocessableEntity,
			wantBody:    "Password must be at most 72 bytes.",
		},
		{
			name:        "failure: invalid username",
			form:        url.Values{"username": {strings.Repeat("a", 65)}, "password": {"password123"}},
			registerErr: domain.ErrInvalidUsername,
			wantStatus:  http.StatusUnprocessableEntity,
		},
		{
			name:       "failure: missing fields",
			form:       url.Values{"username": {"alice"}},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:        "failure: store error",
			form:        url.Values{"username": {"alice"}, "password": {"password123"}},
			registerErr: errors.New("connection refused"),
			wantStatus:  http.StatusInternalServerError,
			wantBody:    "Something went wrong.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := &mockAuthUsecase{RegisterFunc: func(ctx context.Context, username, password string) error {
				return tt.registerErr
			}}
			r := newRouter(t, uc, &mockCookies{})

			w := postForm(r, "/register", tt.form)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, w.Body.String())
			}
			if tt.wantLocation != "" {
				assert.Equal(t, tt.wantLocation, w.Header().Get("Location"))
			}
		})
	}
}

func TestAuthHandler_Logout(t *testing.T) {
	t.Run("revokes the session and clears the cookie", func(t *testing.T) {
		var revoked string
		uc := &mockAuthUsecase{LogoutFunc: func(ctx context.Context, sessionID string) error {
			revoked = sessionID
			return nil
		}}
		cookies := &mockCookies{sid: "sid-1"}
		r := newRouter(t, uc, cookies)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/logout", nil))

		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/", w.Header().Get("Location"))
		assert.Equal(t, "sid-1", revoked)
		assert.True(t, cookies.cleared)
	})

	t.Run("store failure still clears the cookie", func(t *testing.T) {
		uc := &mockAuthUsecase{LogoutFunc: func(ctx context.Context, sessionID string) error {
			return errors.New("redis down")
		}}
		cookies := &mockCookies{sid: "sid-1"}
		r := newRouter(t, uc, cookies)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/logout", nil))

		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.True(t, cookies.cleared)
	})
}

func TestAuthHandler_APILogin(t *testing.T) {
	tests := []struct {
		name           string
		requestBody    gin.H
		issueErr       error
		expectedStatus int
		expectedBody   gin.H
	}{
		{
			name:           "success: token issued",
			requestBody:    gin.H{"username": "alice", "password": "password123"},
			expectedStatus: http.StatusOK,
			expectedBody:   gin.H{"token": "jwt-token"},
		},
		{
			name:           "failure: invalid credentials",
			requestBody:    gin.H{"username": "alice", "password": "wrong"},
			issueErr:       domain.ErrInvalidCredentials,
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   gin.H{"error": "Invalid username/password combination!"},
		},
		{
			name:           "failure: missing username",
			requestBody:    gin.H{"password": "password123"},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   gin.H{"error": "Invalid request."},
		},
		{
			name:           "failure: token signing error",
			requestBody:    gin.H{"username": "alice", "password": "password123"},
			issueErr:       errors.New("failed to sign token"),
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   gin.H{"error": "Something went wrong."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := &mockAuthUsecase{IssueTokenFunc: func(ctx context.Context, username, password string) (string, error) {
				if tt.issueErr != nil {
					return "", tt.issueErr
				}
				return "jwt-token", nil
			}}
			r := newRouter(t, uc, &mockCookies{})

			body, _ := json.Marshal(tt.requestBody)
			req := httptest.NewRequest(http.MethodPost, "/api/v1/login", bytes.NewBuffer(body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)

			var responseBody gin.H
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &responseBody))
			assert.Equal(t, tt.expectedBody, responseBody)
		})
	}
}
