package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/you/authstarter/domain"
	"github.com/you/authstarter/internal/mocks"
)

func performAuthRequest(t *testing.T, tokenSvc domain.TokenService, sessionRepo domain.SessionRepository, authHeader string) (*httptest.ResponseRecorder, *gin.Context) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	var captured *gin.Context

	r := gin.New()
	r.GET("/protected", AuthMiddleware(tokenSvc, sessionRepo), func(c *gin.Context) {
		captured = c.Copy()
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	r.ServeHTTP(w, req)
	return w, captured
}

func TestAuthMiddleware(t *testing.T) {
	validSession := func(ctx context.Context, id string) (*domain.Session, error) {
		return &domain.Session{ID: id, UserID: 1, RefreshTokenHash: "h", Valid: true}, nil
	}

	tests := []struct {
		name           string
		header         string
		setupMocks     func(*mocks.MockTokenService, *mocks.MockSessionRepository)
		expectedStatus int
	}{
		{
			name:           "missing header",
			header:         "",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "malformed header",
			header:         "Token abc",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:   "expired token",
			header: "Bearer expired",
			setupMocks: func(ts *mocks.MockTokenService, sr *mocks.MockSessionRepository) {
				ts.ValidateAccessTokenFunc = func(token string) (*domain.TokenClaims, error) {
					return nil, domain.ErrTokenExpired
				}
			},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:   "token without session claim",
			header: "Bearer orphan",
			setupMocks: func(ts *mocks.MockTokenService, sr *mocks.MockSessionRepository) {
				ts.ValidateAccessTokenFunc = func(token string) (*domain.TokenClaims, error) {
					return &domain.TokenClaims{UserID: 1, Role: domain.RoleUser}, nil
				}
			},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:   "session gone",
			header: "Bearer valid",
			setupMocks: func(ts *mocks.MockTokenService, sr *mocks.MockSessionRepository) {
				sr.FindByIDFunc = func(ctx context.Context, id string) (*domain.Session, error) {
					return nil, domain.ErrSessionNotFound
				}
			},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:   "session invalidated by forced logout",
			header: "Bearer valid",
			setupMocks: func(ts *mocks.MockTokenService, sr *mocks.MockSessionRepository) {
				sr.FindByIDFunc = func(ctx context.Context, id string) (*domain.Session, error) {
					return &domain.Session{ID: id, UserID: 1, Valid: false}, nil
				}
			},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:   "session owned by another user",
			header: "Bearer valid",
			setupMocks: func(ts *mocks.MockTokenService, sr *mocks.MockSessionRepository) {
				sr.FindByIDFunc = func(ctx context.Context, id string) (*domain.Session, error) {
					return &domain.Session{ID: id, UserID: 99, Valid: true}, nil
				}
			},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:   "valid token and live session",
			header: "Bearer valid",
			setupMocks: func(ts *mocks.MockTokenService, sr *mocks.MockSessionRepository) {
				sr.FindByIDFunc = validSession
			},
			expectedStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokenSvc := mocks.NewMockTokenService()
			sessionRepo := mocks.NewMockSessionRepository()
			if tt.setupMocks != nil {
				tt.setupMocks(tokenSvc, sessionRepo)
			}

			w, _ := performAuthRequest(t, tokenSvc, sessionRepo, tt.header)
			if w.Code != tt.expectedStatus {
				t.Errorf("expected status %d, got %d", tt.expectedStatus, w.Code)
			}
		})
	}
}

func TestAuthMiddleware_SetsContextValues(t *testing.T) {
	tokenSvc := mocks.NewMockTokenService()
	sessionRepo := mocks.NewMockSessionRepository()
	sessionRepo.FindByIDFunc = func(ctx context.Context, id string) (*domain.Session, error) {
		return &domain.Session{ID: id, UserID: 1, Valid: true}, nil
	}

	w, captured := performAuthRequest(t, tokenSvc, sessionRepo, "Bearer valid")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if captured == nil {
		t.Fatal("handler not reached")
	}
	if got := captured.GetUint("user_id"); got != 1 {
		t.Errorf("expected user_id 1, got %d", got)
	}
	if got := captured.GetString("user_role"); got != domain.RoleUser {
		t.Errorf("expected role user, got %s", got)
	}
	if got := captured.GetString("session_id"); got != "mock_session_id" {
		t.Errorf("expected session id from claims, got %s", got)
	}
}
