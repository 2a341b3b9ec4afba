package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"snapbook/internal/database"
	"snapbook/internal/domain"
	"snapbook/internal/logger"
	"snapbook/internal/pkg/jwt"
)

func setup(t *testing.T) (*Service, *miniredis.Miniredis) {
	t.Helper()
	db, err := database.Connect(":memory:")
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.User{}))

	hash, err := bcrypt.GenerateFromPassword([]byte("secret-pass"), bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, db.Create(&domain.User{
		Email:        "linh@snap.test",
		PasswordHash: string(hash),
		Role:         domain.RoleCustomer,
		Name:         "Linh",
	}).Error)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	svc := NewService(NewUserRepository(db), NewRedisSessionStore(rdb), jwt.New("test-secret", time.Hour), logger.Discard())
	return svc, mr
}

func TestSignIn_AuthenticateAndSignOut(t *testing.T) {
	svc, mr := setup(t)
	ctx := context.Background()

	res, err := svc.SignIn(ctx, " LINH@snap.test ", "secret-pass")
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.Equal(t, "Linh", res.User.Name)

	sess, err := svc.Authenticate(ctx, res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, sess.UserID)
	assert.Equal(t, "customer", sess.Role)
	assert.NotEmpty(t, sess.ID)
	assert.True(t, mr.Exists(sessionKey(sess.ID)))
	assert.Equal(t, time.Hour, mr.TTL(sessionKey(sess.ID)))

	require.NoError(t, svc.SignOut(ctx, sess))
	_, err = svc.Authenticate(ctx, res.AccessToken)
	assert.ErrorIs(t, err, ErrSessionExpired)
}

func TestSignIn_InvalidCredentials(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	_, err := svc.SignIn(ctx, "linh@snap.test", "wrong-pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.SignIn(ctx, "nobody@snap.test", "secret-pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthenticate_RejectsTokenWithoutSession(t *testing.T) {
	svc, _ := setup(t)

	token, err := jwt.New("test-secret", time.Hour).GenerateToken(1, "customer")
	require.NoError(t, err)
	_, err = svc.Authenticate(context.Background(), token)
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = svc.Authenticate(context.Background(), "garbage")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestSignInHandler(t *testing.T) {
	svc, _ := setup(t)
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(svc).RegisterPublicRoutes(r.Group("/api/v1"))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/auth/sign-in",
		strings.NewReader(`{"email":"linh@snap.test","password":"wrong-pass"}`)))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_CREDENTIALS")

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/auth/sign-in",
		strings.NewReader(`{"email":"linh@snap.test","password":"secret-pass"}`)))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "access_token")
}
