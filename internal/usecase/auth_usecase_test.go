package usecase

import (
	"context"
	"net/http"
	"testing"
	"time"

	"storefront/internal/domain/dto"
	"storefront/internal/domain/model"
	"storefront/internal/infra/memory"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

// validatorパッケージはusecaseに依存するので、ここでは最小の実装を使う
type stubValidator struct{}

func (stubValidator) ValidateRegister(ctx context.Context, email, password string) error {
	if email == "" || len(password) < 8 {
		return NewHTTPError(http.StatusBadRequest, "invalid input")
	}
	return nil
}

func (stubValidator) ValidateLogin(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		return NewHTTPError(http.StatusBadRequest, "invalid input")
	}
	return nil
}

func (stubValidator) ValidateRefresh(ctx context.Context, token string) error {
	if token == "" {
		return NewHTTPError(http.StatusUnauthorized, "refresh_token required")
	}
	return nil
}

type authFixture struct {
	uc    *AuthUsecase
	store *memory.Store
	clock *fixedClock
}

func newAuthFixture(t *testing.T) authFixture {
	t.Helper()
	store := memory.New()
	clock := newClock()
	uc := NewAuthUsecase(
		store.Users(),
		store.RefreshTokens(),
		stubValidator{},
		NewBcryptPasswordHasher(4),
		BcryptPasswordVerifier{},
		NewJWTIssuer(testSecret, 15*time.Minute),
		&seqIDs{},
		clock,
		14*24*time.Hour,
		testLog,
	)
	return authFixture{uc: uc, store: store, clock: clock}
}

func (f authFixture) register(t *testing.T, email string) dto.User {
	t.Helper()
	u, err := f.uc.Register(context.Background(), dto.RegisterRequest{Email: email, Password: "password123", Name: "Ada"})
	require.NoError(t, err)
	return u
}

func TestAuth_RegisterLoginMe(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)

	u := f.register(t, "  Ada@Example.com ")
	assert.Equal(t, "ada@example.com", u.Email)
	assert.Equal(t, dto.RoleCustomer, u.Role)

	res, err := f.uc.Login(ctx, dto.LoginRequest{Email: "ada@example.com", Password: "password123"}, "go-test")
	require.NoError(t, err)
	assert.Equal(t, u.ID, res.User.ID)
	assert.NotEmpty(t, res.Token.AccessToken)
	assert.NotEmpty(t, res.Token.RefreshToken)
	assert.Equal(t, 900, res.Token.ExpiresIn)

	// 署名を検証してclaimsを確認
	var claims dto.AccessClaims
	_, err = jwt.ParseWithClaims(res.Token.AccessToken, &claims, func(tok *jwt.Token) (interface{}, error) {
		return []byte(testSecret), nil
	}, jwt.WithoutClaimsValidation())
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.Subject)
	assert.Equal(t, "ada@example.com", claims.Email)
	assert.Equal(t, "Ada", claims.Name)
	assert.Equal(t, dto.RoleCustomer, claims.Role)
	assert.Equal(t, f.clock.Now().Add(15*time.Minute).Unix(), claims.ExpiresAt.Unix())

	me, err := f.uc.Me(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, u, me)

	stored, err := f.store.Users().FindByID(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.LastLoginAt)
	assert.NotEqual(t, "password123", stored.PasswordHash)
}

func TestAuth_RegisterDuplicate(t *testing.T) {
	f := newAuthFixture(t)
	f.register(t, "ada@example.com")

	_, err := f.uc.Register(context.Background(), dto.RegisterRequest{Email: "ADA@example.com", Password: "password123"})
	assertHTTPStatus(t, err, http.StatusConflict)
}

func TestAuth_LoginFailures(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)
	u := f.register(t, "ada@example.com")

	_, err := f.uc.Login(ctx, dto.LoginRequest{Email: "ada@example.com", Password: "wrong-password"}, "")
	assertHTTPStatus(t, err, http.StatusUnauthorized)

	_, err = f.uc.Login(ctx, dto.LoginRequest{Email: "nobody@example.com", Password: "password123"}, "")
	assertHTTPStatus(t, err, http.StatusUnauthorized)

	_, err = f.uc.Login(ctx, dto.LoginRequest{Email: "ada@example.com"}, "")
	assertHTTPStatus(t, err, http.StatusBadRequest)

	stored, err := f.store.Users().FindByID(ctx, u.ID)
	require.NoError(t, err)
	stored.IsActive = false
	require.NoError(t, f.store.Users().Update(ctx, stored))

	_, err = f.uc.Login(ctx, dto.LoginRequest{Email: "ada@example.com", Password: "password123"}, "")
	assertHTTPStatus(t, err, http.StatusForbidden)
}

func TestAuth_RefreshRotates(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)
	f.register(t, "ada@example.com")

	login, err := f.uc.Login(ctx, dto.LoginRequest{Email: "ada@example.com", Password: "password123"}, "")
	require.NoError(t, err)

	f.clock.Advance(20 * time.Minute)
	pair, err := f.uc.Refresh(ctx, login.Token.RefreshToken, "")
	require.NoError(t, err)
	assert.NotEqual(t, login.Token.RefreshToken, pair.RefreshToken)
	assert.NotEqual(t, login.Token.AccessToken, pair.AccessToken)

	// 新しい方は使える
	_, err = f.uc.Refresh(ctx, pair.RefreshToken, "")
	require.NoError(t, err)
}

func TestAuth_RefreshReuseRevokesAll(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)
	f.register(t, "ada@example.com")

	login, err := f.uc.Login(ctx, dto.LoginRequest{Email: "ada@example.com", Password: "password123"}, "")
	require.NoError(t, err)

	pair, err := f.uc.Refresh(ctx, login.Token.RefreshToken, "")
	require.NoError(t, err)

	// 使用済みをもう一度
	_, err = f.uc.Refresh(ctx, login.Token.RefreshToken, "")
	assertHTTPStatus(t, err, http.StatusUnauthorized)

	// ローテーション後のトークンも失効している
	_, err = f.uc.Refresh(ctx, pair.RefreshToken, "")
	assertHTTPStatus(t, err, http.StatusUnauthorized)
}

func TestAuth_RefreshExpiredAndUnknown(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)
	f.register(t, "ada@example.com")

	login, err := f.uc.Login(ctx, dto.LoginRequest{Email: "ada@example.com", Password: "password123"}, "")
	require.NoError(t, err)

	_, err = f.uc.Refresh(ctx, "unknown", "")
	assertHTTPStatus(t, err, http.StatusUnauthorized)

	_, err = f.uc.Refresh(ctx, "", "")
	assertHTTPStatus(t, err, http.StatusUnauthorized)

	f.clock.Advance(15 * 24 * time.Hour)
	_, err = f.uc.Refresh(ctx, login.Token.RefreshToken, "")
	assertHTTPStatus(t, err, http.StatusUnauthorized)
}

func TestAuth_Logout(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)
	f.register(t, "ada@example.com")

	login, err := f.uc.Login(ctx, dto.LoginRequest{Email: "ada@example.com", Password: "password123"}, "")
	require.NoError(t, err)

	res, err := f.uc.Logout(ctx, login.Token.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, "logout success", res.Message)

	_, err = f.uc.Refresh(ctx, login.Token.RefreshToken, "")
	assertHTTPStatus(t, err, http.StatusUnauthorized)

	// 2回目・知らないトークンも成功
	_, err = f.uc.Logout(ctx, login.Token.RefreshToken)
	assert.NoError(t, err)
	_, err = f.uc.Logout(ctx, "unknown")
	assert.NoError(t, err)
}

func TestAuth_MeUnknownUser(t *testing.T) {
	f := newAuthFixture(t)

	_, err := f.uc.Me(context.Background(), "")
	assertHTTPStatus(t, err, http.StatusUnauthorized)

	_, err = f.uc.Me(context.Background(), "missing")
	assertHTTPStatus(t, err, http.StatusUnauthorized)
}

func TestToUserDTO_OmitsSecrets(t *testing.T) {
	u := ToUserDTO(&model.User{ID: "u-1", Email: "a@example.com", Name: "A", PasswordHash: "hash", Role: model.RoleVendor})
	assert.Equal(t, dto.User{ID: "u-1", Email: "a@example.com", Name: "A", Role: dto.RoleVendor}, u)
}
