package usecase

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"net/http"
	"strings"
	"time"

	"storefront/internal/domain/dto"
	"storefront/internal/domain/model"
	"storefront/internal/repository"

	"github.com/sirupsen/logrus"
)

// usecaseがValidatorInterfaceに依存する約束
type AuthValidator interface {
	ValidateRegister(ctx context.Context, email string, password string) error
	ValidateLogin(ctx context.Context, email string, password string) error
	ValidateRefresh(ctx context.Context, refreshToken string) error
}

type AuthUsecase struct {
	users      repository.UserRepository
	rtRepo     repository.RefreshTokenRepository
	validator  AuthValidator
	hasher     PasswordHasher
	verifier   PasswordVerifier
	issuer     AccessTokenIssuer
	idGen      IDGenerator
	clock      Clock
	refreshTTL time.Duration
	log        *logrus.Logger
}

func NewAuthUsecase(
	users repository.UserRepository,
	rtRepo repository.RefreshTokenRepository,
	validator AuthValidator,
	hasher PasswordHasher,
	verifier PasswordVerifier,
	issuer AccessTokenIssuer,
	idGen IDGenerator,
	clock Clock,
	refreshTTL time.Duration,
	log *logrus.Logger,
) *AuthUsecase {
	return &AuthUsecase{
		users:      users,
		rtRepo:     rtRepo,
		validator:  validator,
		hasher:     hasher,
		verifier:   verifier,
		issuer:     issuer,
		idGen:      idGen,
		clock:      clock,
		refreshTTL: refreshTTL,
		log:        log,
	}
}

func (u *AuthUsecase) Register(ctx context.Context, req dto.RegisterRequest) (dto.User, error) {
	email := normalizeEmail(req.Email)

	//入力検証（validatorに寄せる）
	if err := u.validator.ValidateRegister(ctx, email, req.Password); err != nil {
		return dto.User{}, err
	}

	//パスワードは必ずハッシュ化して保存（平文保存しない）
	pwHash, err := u.hasher.Hash(req.Password)
	if err != nil {
		return dto.User{}, NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	now := u.clock.Now()
	user := &model.User{
		ID:           u.idGen.NewID(),
		Email:        email,
		Name:         strings.TrimSpace(req.Name),
		PasswordHash: pwHash,
		Role:         model.RoleCustomer,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := u.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return dto.User{}, NewHTTPError(http.StatusConflict, "email already exists")
		}
		return dto.User{}, errDB()
	}

	return ToUserDTO(user), nil
}

func (u *AuthUsecase) Login(ctx context.Context, req dto.LoginRequest, userAgent string) (dto.LoginResponse, error) {
	email := normalizeEmail(req.Email)

	if err := u.validator.ValidateLogin(ctx, email, req.Password); err != nil {
		return dto.LoginResponse{}, err
	}

	user, err := u.users.FindByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return dto.LoginResponse{}, NewHTTPError(http.StatusUnauthorized, "invalid email or password")
	}
	if err != nil {
		return dto.LoginResponse{}, errDB()
	}

	//停止ユーザーはログイン不可
	if !user.IsActive {
		return dto.LoginResponse{}, NewHTTPError(http.StatusForbidden, "user is inactive")
	}

	if !u.verifier.Verify(req.Password, user.PasswordHash) {
		return dto.LoginResponse{}, NewHTTPError(http.StatusUnauthorized, "invalid email or password")
	}

	now := u.clock.Now()
	pair, err := u.issuePair(ctx, user, userAgent, now)
	if err != nil {
		return dto.LoginResponse{}, err
	}

	//last_login更新（失敗してもログインは通す）
	user.LastLoginAt = &now
	if err := u.users.Update(ctx, user); err != nil {
		u.log.WithError(err).WithField("user_id", user.ID).Warn("update last login failed")
	}

	return dto.LoginResponse{User: ToUserDTO(user), Token: pair}, nil
}

// Refresh はリフレッシュトークンをローテーションする。
// 使用済みトークンが来たら再利用とみなし、そのユーザーのトークンを全部失効させる。
func (u *AuthUsecase) Refresh(ctx context.Context, refreshTokenPlain string, userAgent string) (dto.TokenPair, error) {
	if err := u.validator.ValidateRefresh(ctx, refreshTokenPlain); err != nil {
		return dto.TokenPair{}, err
	}

	now := u.clock.Now()

	rt, err := u.rtRepo.FindByTokenHash(ctx, hashToken(refreshTokenPlain))
	if errors.Is(err, repository.ErrNotFound) {
		return dto.TokenPair{}, NewHTTPError(http.StatusUnauthorized, "invalid refresh token")
	}
	if err != nil {
		return dto.TokenPair{}, errDB()
	}

	if rt.RevokedAt != nil {
		return dto.TokenPair{}, NewHTTPError(http.StatusUnauthorized, "invalid refresh token")
	}

	//used済みが来たら replay → 全失効
	if rt.UsedAt != nil {
		u.revokeAll(ctx, rt.UserID, now)
		return dto.TokenPair{}, NewHTTPError(http.StatusUnauthorized, "refresh token reuse detected")
	}

	if !rt.ExpiresAt.After(now) {
		_ = u.rtRepo.Revoke(ctx, rt.ID, now)
		return dto.TokenPair{}, NewHTTPError(http.StatusUnauthorized, "refresh token expired")
	}

	user, err := u.users.FindByID(ctx, rt.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		return dto.TokenPair{}, errUnauthorized()
	}
	if err != nil {
		return dto.TokenPair{}, errDB()
	}
	if !user.IsActive {
		return dto.TokenPair{}, NewHTTPError(http.StatusForbidden, "user is inactive")
	}

	//旧tokenをusedにする（同時に使われたら片方だけ通る）
	if err := u.rtRepo.MarkUsed(ctx, rt.ID, now); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			u.revokeAll(ctx, rt.UserID, now)
			return dto.TokenPair{}, NewHTTPError(http.StatusUnauthorized, "refresh token reuse detected")
		}
		return dto.TokenPair{}, errDB()
	}

	return u.issuePair(ctx, user, userAgent, now)
}

// Logout はリフレッシュトークンを失効させる。知らないトークンでも成功扱い。
func (u *AuthUsecase) Logout(ctx context.Context, refreshTokenPlain string) (dto.MessageResponse, error) {
	ok := dto.MessageResponse{Message: "logout success"}
	if strings.TrimSpace(refreshTokenPlain) == "" {
		return ok, nil
	}

	rt, err := u.rtRepo.FindByTokenHash(ctx, hashToken(refreshTokenPlain))
	if errors.Is(err, repository.ErrNotFound) {
		return ok, nil
	}
	if err != nil {
		return dto.MessageResponse{}, errDB()
	}
	if rt.RevokedAt != nil {
		return ok, nil
	}

	if err := u.rtRepo.Revoke(ctx, rt.ID, u.clock.Now()); err != nil && !errors.Is(err, repository.ErrNotFound) {
		return dto.MessageResponse{}, errDB()
	}
	return ok, nil
}

func (u *AuthUsecase) Me(ctx context.Context, userID string) (dto.User, error) {
	if userID == "" {
		return dto.User{}, errUnauthorized()
	}

	user, err := u.users.FindByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return dto.User{}, errUnauthorized()
	}
	if err != nil {
		return dto.User{}, errDB()
	}
	if !user.IsActive {
		return dto.User{}, NewHTTPError(http.StatusForbidden, "user is inactive")
	}

	return ToUserDTO(user), nil
}

// access + refresh を発行してrefreshのhashを保存
func (u *AuthUsecase) issuePair(ctx context.Context, user *model.User, userAgent string, now time.Time) (dto.TokenPair, error) {
	accessToken, exp, err := u.issuer.Issue(user, now)
	if err != nil {
		return dto.TokenPair{}, NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	plain, hash, err := newRandomTokenAndHash()
	if err != nil {
		return dto.TokenPair{}, NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	rt := &model.RefreshToken{
		ID:        u.idGen.NewID(),
		UserID:    user.ID,
		TokenHash: hash,
		UserAgent: userAgent,
		ExpiresAt: now.Add(u.refreshTTL),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := u.rtRepo.Create(ctx, rt); err != nil {
		return dto.TokenPair{}, errDB()
	}

	return dto.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: plain,
		ExpiresIn:    int(exp.Sub(now).Seconds()),
	}, nil
}

func (u *AuthUsecase) revokeAll(ctx context.Context, userID string, now time.Time) {
	u.log.WithField("user_id", userID).Warn("refresh token reuse detected, revoking all tokens")
	if err := u.rtRepo.RevokeAllByUserID(ctx, userID, now); err != nil {
		u.log.WithError(err).WithField("user_id", userID).Error("revoke refresh tokens failed")
	}
}

// model.UserをAPI返却用DTOに変換。
func ToUserDTO(u *model.User) dto.User {
	return dto.User{
		ID:    u.ID,
		Email: u.Email,
		Name:  u.Name,
		Role:  dto.Role(u.Role),
	}
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// refresh token生成（平文 + DB保存hash）
func newRandomTokenAndHash() (plain string, hash string, err error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", "", err
	}

	plain = base64.RawURLEncoding.EncodeToString(b)
	return plain, hashToken(plain), nil
}

func hashToken(plain string) string {
	sum := sha256.Sum256([]byte(plain))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
