package session

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"storefront/internal/client/nav"
	"storefront/internal/domain/dto"

	"github.com/golang-jwt/jwt/v4"
)

var ErrMalformedToken = errors.New("session: malformed access token")

// Identity はアクセストークンから読んだユーザー情報。
// 画面の出し分けにだけ使う。署名は検証していないので認可の根拠にはしない。
type Identity struct {
	ID        string
	Email     string
	Name      string
	Role      dto.Role
	ExpiresAt time.Time
}

func (i Identity) Expired(now time.Time) bool {
	return !i.ExpiresAt.IsZero() && now.After(i.ExpiresAt)
}

// DecodeIdentity はJWTのclaimsをサーバーに問い合わせずにデコードする
func DecodeIdentity(token string) (Identity, error) {
	claims := &dto.AccessClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return Identity{}, fmt.Errorf("%w: %w", ErrMalformedToken, err)
	}
	if claims.Subject == "" {
		return Identity{}, fmt.Errorf("%w: missing sub", ErrMalformedToken)
	}

	id := Identity{
		ID:    claims.Subject,
		Email: claims.Email,
		Name:  claims.Name,
		Role:  claims.Role,
	}
	if claims.ExpiresAt != nil {
		id.ExpiresAt = claims.ExpiresAt.Time
	}
	return id, nil
}

type access int

const (
	accessPublic access = iota
	accessSignedIn
	accessVendor
	accessAdmin
)

func requiredAccess(path string) access {
	switch {
	case underPath(path, nav.RouteAdmin):
		return accessAdmin
	case underPath(path, nav.RouteVendor):
		return accessVendor
	case underPath(path, "/account"),
		underPath(path, nav.RouteCheckout),
		underPath(path, nav.RouteOrders),
		underPath(path, nav.RouteWishlist):
		return accessSignedIn
	}
	return accessPublic
}

// Gate は遷移先を返す。未ログインならログイン画面、権限不足ならトップ。
func Gate(id *Identity, route string) string {
	path := route
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}

	need := requiredAccess(path)
	if need == accessPublic {
		return route
	}
	if id == nil {
		return nav.RouteLogin
	}

	switch need {
	case accessAdmin:
		if id.Role != dto.RoleAdmin {
			return nav.RouteHome
		}
	case accessVendor:
		if id.Role != dto.RoleVendor && id.Role != dto.RoleAdmin {
			return nav.RouteHome
		}
	}
	return route
}

func underPath(path, prefix string) bool {
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}
