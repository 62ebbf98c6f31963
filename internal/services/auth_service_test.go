package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/you/authstarter/domain"
)

func TestAuthServiceImpl_Register(t *testing.T) {
	tests := []struct {
		name                 string
		email                string
		password             string
		verificationRequired bool
		setupMocks           func(*authFixture)
		expectedError        error
		validate             func(t *testing.T, f *authFixture, result *domain.RegisterResult)
	}{
		{
			name:     "successful registration without verification",
			email:    "NewUser@Example.com ",
			password: "Passw0rd!",
			validate: func(t *testing.T, f *authFixture, result *domain.RegisterResult) {
				if result.EmailVerificationRequired {
					t.Error("expected verification not required")
				}
				if result.Tokens == nil {
					t.Fatal("expected tokens to be issued")
				}
				if result.User.Email != "newuser@example.com" {
					t.Errorf("expected normalized email, got %s", result.User.Email)
				}
				if result.User.PasswordHash != "hashed_Passw0rd!" {
					t.Errorf("unexpected password hash %s", result.User.PasswordHash)
				}
				if result.User.Role != domain.RoleUser {
					t.Errorf("expected role user, got %s", result.User.Role)
				}
				if result.User.EmailVerifiedAt == nil {
					t.Error("expected user created pre-verified")
				}
			},
		},
		{
			name:                 "verification required issues token instead of session",
			email:                "newuser@example.com",
			password:             "Passw0rd!",
			verificationRequired: true,
			setupMocks: func(f *authFixture) {
				f.sessionRepo.CreateFunc = func(ctx context.Context, session *domain.Session) error {
					t.Error("no session may be created when verification is pending")
					return nil
				}
			},
			validate: func(t *testing.T, f *authFixture, result *domain.RegisterResult) {
				if !result.EmailVerificationRequired {
					t.Error("expected verification required")
				}
				if result.Tokens != nil {
					t.Error("expected no tokens before verification")
				}
				if result.User.EmailVerifiedAt != nil {
					t.Error("expected user created unverified")
				}
			},
		},
		{
			name:     "duplicate email maps to EMAIL_TAKEN",
			email:    "taken@example.com",
			password: "Passw0rd!",
			setupMocks: func(f *authFixture) {
				f.userRepo.CreateFunc = func(ctx context.Context, user *domain.User) error {
					return domain.ErrDuplicateEmail
				}
			},
			expectedError: domain.ErrEmailTaken,
		},
		{
			name:     "hashing failure surfaces as internal error",
			email:    "user@example.com",
			password: "Passw0rd!",
			setupMocks: func(f *authFixture) {
				f.passwordSvc.HashFunc = func(password string) (string, error) {
					return "", errors.New("hashing failed")
				}
			},
			expectedError: errors.New("failed to hash password: hashing failed"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultTestAuthConfig()
			cfg.EmailVerificationRequired = tt.verificationRequired
			f := newAuthFixture(cfg)
			if tt.setupMocks != nil {
				tt.setupMocks(f)
			}

			result, err := f.svc.Register(context.Background(), tt.email, tt.password)

			if tt.expectedError != nil {
				if err == nil {
					t.Fatalf("expected error %v, got nil", tt.expectedError)
				}
				if err.Error() != tt.expectedError.Error() {
					t.Fatalf("expected error %v, got %v", tt.expectedError, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.validate != nil {
				tt.validate(t, f, result)
			}
		})
	}
}

func TestAuthServiceImpl_Register_SessionAtomicWithUser(t *testing.T) {
	f := newAuthFixture(defaultTestAuthConfig())

	var txCalls int
	f.tx.WithinTransactionFunc = func(ctx context.Context, fn func(ctx context.Context) error) error {
		txCalls++
		return fn(ctx)
	}
	f.sessionRepo.CreateFunc = func(ctx context.Context, session *domain.Session) error {
		return errors.New("insert failed")
	}

	_, err := f.svc.Register(context.Background(), "user@example.com", "Passw0rd!")
	if err == nil {
		t.Fatal("expected error when session creation fails")
	}
	if txCalls != 1 {
		t.Fatalf("expected user+session creation inside one transaction, got %d", txCalls)
	}
}

func TestAuthServiceImpl_Login(t *testing.T) {
	tests := []struct {
		name                 string
		email                string
		password             string
		verificationRequired bool
		setupMocks           func(*authFixture, *recordedFailure)
		expectedError        error
		expectFailureRecord  bool
	}{
		{
			name:     "successful login",
			email:    "User@Example.com",
			password: "Passw0rd!",
			setupMocks: func(f *authFixture, rec *recordedFailure) {
				f.userRepo.FindByEmailFunc = func(ctx context.Context, email string) (*domain.User, error) {
					if email != "user@example.com" {
						t.Errorf("expected normalized email lookup, got %s", email)
					}
					return validTestUser(), nil
				}
			},
		},
		{
			name:     "unknown email yields generic error and records failure",
			email:    "ghost@example.com",
			password: "whatever",
			setupMocks: func(f *authFixture, rec *recordedFailure) {
				f.userRepo.FindByEmailFunc = func(ctx context.Context, email string) (*domain.User, error) {
					return nil, domain.ErrUserNotFound
				}
			},
			expectedError:       domain.ErrInvalidCredentials,
			expectFailureRecord: true,
		},
		{
			name:     "wrong password yields generic error and records failure",
			email:    "user@example.com",
			password: "wrong",
			setupMocks: func(f *authFixture, rec *recordedFailure) {
				f.userRepo.FindByEmailFunc = func(ctx context.Context, email string) (*domain.User, error) {
					return validTestUser(), nil
				}
			},
			expectedError:       domain.ErrInvalidCredentials,
			expectFailureRecord: true,
		},
		{
			name:                 "unverified account treated as bad credentials",
			email:                "user@example.com",
			password:             "Passw0rd!",
			verificationRequired: true,
			setupMocks: func(f *authFixture, rec *recordedFailure) {
				f.userRepo.FindByEmailFunc = func(ctx context.Context, email string) (*domain.User, error) {
					u := validTestUser()
					u.EmailVerifiedAt = nil
					return u, nil
				}
			},
			expectedError:       domain.ErrInvalidCredentials,
			expectFailureRecord: true,
		},
		{
			name:     "active lock rejects before touching credentials",
			email:    "user@example.com",
			password: "Passw0rd!",
			setupMocks: func(f *authFixture, rec *recordedFailure) {
				lockedUntil := time.Now().Add(10 * time.Minute)
				f.attempts.FindFunc = func(ctx context.Context, email, ip string) (*domain.LoginAttempt, error) {
					return &domain.LoginAttempt{
						Email:        email,
						IPAddress:    ip,
						FailedCount:  5,
						LastFailedAt: time.Now(),
						LockedUntil:  &lockedUntil,
					}, nil
				}
				f.userRepo.FindByEmailFunc = func(ctx context.Context, email string) (*domain.User, error) {
					t.Error("credentials must not be checked while locked")
					return nil, domain.ErrUserNotFound
				}
			},
			expectedError: domain.ErrLoginLocked,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultTestAuthConfig()
			cfg.EmailVerificationRequired = tt.verificationRequired
			f := newAuthFixture(cfg)

			rec := &recordedFailure{}
			f.attempts.UpsertFunc = func(ctx context.Context, attempt *domain.LoginAttempt) error {
				rec.attempt = attempt
				return nil
			}
			if tt.setupMocks != nil {
				tt.setupMocks(f, rec)
			}

			tokens, err := f.svc.Login(context.Background(), tt.email, tt.password, "203.0.113.7")

			if tt.expectedError != nil {
				if !errors.Is(err, tt.expectedError) {
					t.Fatalf("expected error %v, got %v", tt.expectedError, err)
				}
				if tt.expectFailureRecord && rec.attempt == nil {
					t.Error("expected a failure to be recorded")
				}
				if !tt.expectFailureRecord && rec.attempt != nil {
					t.Error("expected no failure record")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tokens == nil || tokens.AccessToken == "" || tokens.RefreshToken == "" {
				t.Fatal("expected a full token pair")
			}
			if rec.attempt != nil {
				t.Error("success must not record a failure")
			}
		})
	}
}

type recordedFailure struct {
	attempt *domain.LoginAttempt
}

func TestAuthServiceImpl_Login_SuccessClearsAttempts(t *testing.T) {
	f := newAuthFixture(defaultTestAuthConfig())
	f.userRepo.FindByEmailFunc = func(ctx context.Context, email string) (*domain.User, error) {
		return validTestUser(), nil
	}

	var deleted bool
	f.attempts.DeleteFunc = func(ctx context.Context, email, ip string) error {
		deleted = true
		return nil
	}

	if _, err := f.svc.Login(context.Background(), "user@example.com", "Passw0rd!", "203.0.113.7"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !deleted {
		t.Error("expected attempt record cleared on success")
	}
}

func TestAuthServiceImpl_Refresh(t *testing.T) {
	session := &domain.Session{
		ID:               "sess-1",
		UserID:           1,
		RefreshTokenHash: "hash_good-token",
		Valid:            true,
	}

	tests := []struct {
		name          string
		token         string
		setupMocks    func(*authFixture)
		expectedError error
	}{
		{
			name:          "empty token",
			token:         "",
			expectedError: domain.ErrRefreshRequired,
		},
		{
			name:  "invalid token",
			token: "garbage",
			setupMocks: func(f *authFixture) {
				f.tokenSvc.ValidateRefreshTokenFunc = func(token string) (*domain.TokenClaims, error) {
					return nil, domain.ErrTokenInvalid
				}
			},
			expectedError: domain.ErrSessionInvalid,
		},
		{
			name:  "missing session",
			token: "good-token",
			setupMocks: func(f *authFixture) {
				f.sessionRepo.FindByIDFunc = func(ctx context.Context, id string) (*domain.Session, error) {
					return nil, domain.ErrSessionNotFound
				}
			},
			expectedError: domain.ErrSessionInvalid,
		},
		{
			name:  "invalidated session",
			token: "good-token",
			setupMocks: func(f *authFixture) {
				f.sessionRepo.FindByIDFunc = func(ctx context.Context, id string) (*domain.Session, error) {
					s := *session
					s.Valid = false
					s.RefreshTokenHash = ""
					return &s, nil
				}
			},
			expectedError: domain.ErrSessionInvalid,
		},
		{
			name:  "successful rotation",
			token: "good-token",
			setupMocks: func(f *authFixture) {
				f.sessionRepo.FindByIDFunc = func(ctx context.Context, id string) (*domain.Session, error) {
					s := *session
					return &s, nil
				}
				f.userRepo.FindByIDFunc = func(ctx context.Context, id uint) (*domain.User, error) {
					return validTestUser(), nil
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAuthFixture(defaultTestAuthConfig())
			f.tokenSvc.ValidateRefreshTokenFunc = func(token string) (*domain.TokenClaims, error) {
				return &domain.TokenClaims{UserID: 1, Role: domain.RoleUser, SessionID: "sess-1"}, nil
			}
			if tt.setupMocks != nil {
				tt.setupMocks(f)
			}

			tokens, err := f.svc.Refresh(context.Background(), tt.token)

			if tt.expectedError != nil {
				if !errors.Is(err, tt.expectedError) {
					t.Fatalf("expected error %v, got %v", tt.expectedError, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tokens == nil || tokens.RefreshToken == "" {
				t.Fatal("expected a rotated token pair")
			}
			if tokens.RefreshToken == tt.token {
				t.Error("rotation must issue a different refresh token")
			}
		})
	}
}

func TestAuthServiceImpl_Refresh_ExpiredTokenBuriesItsSession(t *testing.T) {
	f := newAuthFixture(defaultTestAuthConfig())
	f.tokenSvc.DecodeUnverifiedFunc = func(token string) (*domain.TokenClaims, error) {
		return &domain.TokenClaims{UserID: 1, SessionID: "sess-expired"}, nil
	}
	f.tokenSvc.ValidateRefreshTokenFunc = func(token string) (*domain.TokenClaims, error) {
		return nil, domain.ErrTokenExpired
	}

	var invalidated string
	f.sessionRepo.InvalidateFunc = func(ctx context.Context, id string) error {
		invalidated = id
		return nil
	}

	_, err := f.svc.Refresh(context.Background(), "expired-token")
	if !errors.Is(err, domain.ErrSessionExpired) {
		t.Fatalf("expected SESSION_EXPIRED, got %v", err)
	}
	if invalidated != "sess-expired" {
		t.Errorf("expected fallback session invalidated, got %q", invalidated)
	}
}

func TestAuthServiceImpl_Refresh_ReuseNukesAllSessions(t *testing.T) {
	f := newAuthFixture(defaultTestAuthConfig())
	f.tokenSvc.ValidateRefreshTokenFunc = func(token string) (*domain.TokenClaims, error) {
		return &domain.TokenClaims{UserID: 7, Role: domain.RoleUser, SessionID: "sess-1"}, nil
	}
	f.sessionRepo.FindByIDFunc = func(ctx context.Context, id string) (*domain.Session, error) {
		// Stored hash belongs to the rotated-to token, not the presented one.
		return &domain.Session{ID: "sess-1", UserID: 7, RefreshTokenHash: "hash_new-token", Valid: true}, nil
	}

	var nukedUser uint
	f.sessionRepo.InvalidateAllForUserFunc = func(ctx context.Context, userID uint) (int64, error) {
		nukedUser = userID
		return 3, nil
	}

	_, err := f.svc.Refresh(context.Background(), "old-token")
	if !errors.Is(err, domain.ErrRefreshReuse) {
		t.Fatalf("expected REFRESH_REUSE, got %v", err)
	}
	if nukedUser != 7 {
		t.Errorf("expected every session of user 7 invalidated, got user %d", nukedUser)
	}
}

// TestAuthServiceImpl_RotationRoundTrip drives the full reuse scenario
// against a stateful in-memory session store: refresh rotates, the old token
// then trips reuse detection, and the new token dies with the session.
func TestAuthServiceImpl_RotationRoundTrip(t *testing.T) {
	f := newAuthFixture(defaultTestAuthConfig())
	store := newSessionStore()
	f.sessionRepo.CreateFunc = store.create
	f.sessionRepo.FindByIDFunc = store.findByID
	f.sessionRepo.RotateHashFunc = store.rotateHash
	f.sessionRepo.InvalidateAllForUserFunc = store.invalidateAllForUser
	f.userRepo.FindByEmailFunc = func(ctx context.Context, email string) (*domain.User, error) {
		return validTestUser(), nil
	}
	f.userRepo.FindByIDFunc = func(ctx context.Context, id uint) (*domain.User, error) {
		return validTestUser(), nil
	}
	// Validation recovers the session id of whichever session holds (or
	// held) the token; the mock token format embeds it.
	f.tokenSvc.ValidateRefreshTokenFunc = func(token string) (*domain.TokenClaims, error) {
		return &domain.TokenClaims{UserID: 1, Role: domain.RoleUser, SessionID: store.sessionOf(token)}, nil
	}

	ctx := context.Background()
	pair, err := f.svc.Login(ctx, "user@example.com", "Passw0rd!", "203.0.113.7")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	refreshToken1 := pair.RefreshToken
	store.bind(refreshToken1)

	pair2, err := f.svc.Refresh(ctx, refreshToken1)
	if err != nil {
		t.Fatalf("first refresh: %v", err)
	}
	refreshToken2 := pair2.RefreshToken
	store.bind(refreshToken2)
	if refreshToken2 == refreshToken1 {
		t.Fatal("rotation returned the same refresh token")
	}

	if _, err := f.svc.Refresh(ctx, refreshToken1); !errors.Is(err, domain.ErrRefreshReuse) {
		t.Fatalf("replaying the rotated-past token: expected REFRESH_REUSE, got %v", err)
	}

	if _, err := f.svc.Refresh(ctx, refreshToken2); !errors.Is(err, domain.ErrSessionInvalid) {
		t.Fatalf("refresh after reuse nuke: expected SESSION_INVALID, got %v", err)
	}
}

// sessionStore is a minimal in-memory session table for round-trip tests.
type sessionStore struct {
	mu       sync.Mutex
	sessions map[string]*domain.Session
	byToken  map[string]string
	// pending is the session touched by the last create/rotate, so bind can
	// associate the raw token the service returned with it.
	pending string
}

func newSessionStore() *sessionStore {
	return &sessionStore{
		sessions: make(map[string]*domain.Session),
		byToken:  make(map[string]string),
	}
}

func (s *sessionStore) create(ctx context.Context, session *domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *session
	s.sessions[session.ID] = &cp
	s.pending = session.ID
	return nil
}

func (s *sessionStore) findByID(ctx context.Context, id string) (*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	cp := *session
	return &cp, nil
}

func (s *sessionStore) rotateHash(ctx context.Context, id, newHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[id]
	if !ok || !session.Valid {
		return domain.ErrSessionNotFound
	}
	session.RefreshTokenHash = newHash
	s.pending = id
	return nil
}

func (s *sessionStore) invalidateAllForUser(ctx context.Context, userID uint) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, session := range s.sessions {
		if session.UserID == userID && session.Valid {
			session.Valid = false
			session.RefreshTokenHash = ""
			n++
		}
	}
	return n, nil
}

// bind associates a raw refresh token with the pending session, mirroring
// what claims decoding does in production.
func (s *sessionStore) bind(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byToken[token] = s.pending
}

func (s *sessionStore) sessionOf(token string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.byToken[token]
}

func TestAuthServiceImpl_Logout_Idempotent(t *testing.T) {
	f := newAuthFixture(defaultTestAuthConfig())

	var invalidations int
	f.sessionRepo.InvalidateFunc = func(ctx context.Context, id string) error {
		invalidations++
		if invalidations > 1 {
			return domain.ErrSessionNotFound
		}
		return nil
	}

	ctx := context.Background()
	f.svc.Logout(ctx, "some-refresh-token")
	f.svc.Logout(ctx, "some-refresh-token")
	if invalidations != 2 {
		t.Errorf("expected both calls to attempt invalidation, got %d", invalidations)
	}

	// Garbage and empty tokens never panic or error.
	f.tokenSvc.ValidateRefreshTokenFunc = func(token string) (*domain.TokenClaims, error) {
		return nil, domain.ErrTokenMalformed
	}
	f.tokenSvc.DecodeUnverifiedFunc = func(token string) (*domain.TokenClaims, error) {
		return nil, domain.ErrTokenMalformed
	}
	f.svc.Logout(ctx, "garbage")
	f.svc.Logout(ctx, "")
}

func TestAuthServiceImpl_Logout_ExpiredTokenStillInvalidates(t *testing.T) {
	f := newAuthFixture(defaultTestAuthConfig())
	f.tokenSvc.ValidateRefreshTokenFunc = func(token string) (*domain.TokenClaims, error) {
		return nil, domain.ErrTokenExpired
	}
	f.tokenSvc.DecodeUnverifiedFunc = func(token string) (*domain.TokenClaims, error) {
		return &domain.TokenClaims{UserID: 1, SessionID: "sess-expired"}, nil
	}

	var invalidated string
	f.sessionRepo.InvalidateFunc = func(ctx context.Context, id string) error {
		invalidated = id
		return nil
	}

	f.svc.Logout(context.Background(), "expired-token")
	if invalidated != "sess-expired" {
		t.Errorf("expected expired token's session invalidated, got %q", invalidated)
	}
}

func TestAuthServiceImpl_ListSessions(t *testing.T) {
	f := newAuthFixture(defaultTestAuthConfig())
	now := time.Now()
	f.sessionRepo.FindByUserIDFunc = func(ctx context.Context, userID uint) ([]*domain.Session, error) {
		return []*domain.Session{
			{ID: "sess-new", UserID: userID, RefreshTokenHash: "hash_x", Valid: true, CreatedAt: now},
			{ID: "sess-old", UserID: userID, RefreshTokenHash: "hash_y", Valid: true, CreatedAt: now.Add(-time.Hour)},
		}, nil
	}

	infos, err := f.svc.ListSessions(context.Background(), 1, "sess-old")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(infos) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(infos))
	}
	if infos[0].Current || !infos[1].Current {
		t.Error("expected only the caller's session flagged current")
	}
}

func TestAuthServiceImpl_LogoutAll(t *testing.T) {
	f := newAuthFixture(defaultTestAuthConfig())
	f.sessionRepo.InvalidateAllForUserFunc = func(ctx context.Context, userID uint) (int64, error) {
		return 4, nil
	}

	n, err := f.svc.LogoutAll(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 4 {
		t.Errorf("expected 4 sessions invalidated, got %d", n)
	}
}
