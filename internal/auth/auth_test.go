package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type memUsers struct {
	mu    sync.Mutex
	users map[string]UserRecord
}

func newMemUsers() *memUsers {
	return &memUsers{users: make(map[string]UserRecord)}
}

func (m *memUsers) CreateUser(_ context.Context, u UserRecord) (*UserRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Email == u.Email {
			return nil, ErrEmailTaken
		}
	}
	u.CreatedAt = time.Now()
	m.users[u.ID] = u
	return &u, nil
}

func (m *memUsers) UserByEmail(_ context.Context, email string) (*UserRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, ErrUserNotFound
}

func (m *memUsers) UserByID(_ context.Context, id string) (*UserRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return &u, nil
}

func newTestService() *Service {
	s := NewService(newMemUsers(), "test-secret")
	s.cost = bcrypt.MinCost
	return s
}

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	s := newTestService()

	reg, err := s.Register(ctx, " Ada@Example.com ", "correct horse", "Ada")
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", reg.User.Email)
	assert.True(t, strings.HasPrefix(reg.User.ID, "user_"))

	_, err = s.Register(ctx, "ada@example.com", "another password", "Ada 2")
	assert.ErrorIs(t, err, ErrEmailTaken)

	login, err := s.Login(ctx, "ADA@example.com", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, reg.User, login.User)

	_, err = s.Login(ctx, "ada@example.com", "wrong password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = s.Login(ctx, "nobody@example.com", "correct horse")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestValidateToken(t *testing.T) {
	s := newTestService()
	token, err := s.issueToken("user_123")
	require.NoError(t, err)

	id, err := s.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user_123", id)

	t.Run("expired", func(t *testing.T) {
		s.now = func() time.Time { return time.Now().Add(2 * tokenTTL) }
		defer func() { s.now = time.Now }()
		_, err := s.ValidateToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("other secret", func(t *testing.T) {
		other := NewService(newMemUsers(), "other-secret")
		_, err := other.ValidateToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("none algorithm", func(t *testing.T) {
		unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "user_123"}).
			SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = s.ValidateToken(unsigned)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("no subject", func(t *testing.T) {
		tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"iat": time.Now().Unix()}).
			SignedString(s.jwtSecret)
		require.NoError(t, err)
		_, err = s.ValidateToken(tok)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestHandlers(t *testing.T) {
	s := newTestService()
	h := NewHandler(s)

	tests := []struct {
		name    string
		handler http.HandlerFunc
		body    string
		status  int
	}{
		{"register bad json", h.Register, `{`, http.StatusBadRequest},
		{"register missing fields", h.Register, `{"email":"a@b.c"}`, http.StatusBadRequest},
		{"register bad email", h.Register, `{"email":"ab.c","password":"12345678","displayName":"A"}`, http.StatusBadRequest},
		{"register short password", h.Register, `{"email":"a@b.c","password":"123","displayName":"A"}`, http.StatusBadRequest},
		{"register ok", h.Register, `{"email":"a@b.c","password":"12345678","displayName":"A"}`, http.StatusCreated},
		{"register taken", h.Register, `{"email":"a@b.c","password":"12345678","displayName":"A"}`, http.StatusConflict},
		{"login missing", h.Login, `{"email":"a@b.c"}`, http.StatusBadRequest},
		{"login wrong", h.Login, `{"email":"a@b.c","password":"nope-nope"}`, http.StatusUnauthorized},
		{"login ok", h.Login, `{"email":"a@b.c","password":"12345678"}`, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			tt.handler(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body)))
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		})
	}
}

func TestMiddlewareAndMe(t *testing.T) {
	s := newTestService()
	res, err := s.Register(context.Background(), "me@example.com", "12345678", "Me")
	require.NoError(t, err)

	protected := s.AuthMiddleware(http.HandlerFunc(NewHandler(s).Me))

	for name, header := range map[string]string{
		"missing":   "",
		"scheme":    "Basic abc",
		"bad token": "Bearer abc.def.ghi",
	} {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			rec := httptest.NewRecorder()
			protected.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+res.Token)
	rec := httptest.NewRecorder()
	protected.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":"`+res.User.ID+`","email":"me@example.com","displayName":"Me"}`, rec.Body.String())

	orphan, err := s.issueToken("user_gone")
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+orphan)
	rec = httptest.NewRecorder()
	protected.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
