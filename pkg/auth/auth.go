package auth

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

type Config struct {
	Secret string        `envconfig:"JWT_SECRET" default:"local_dev_secret" json:"-"`
	TTL    time.Duration `envconfig:"JWT_TTL" default:"24h"`
}

// Claims is what the client decodes to learn its own id.
type Claims struct {
	UserID   uuid.UUID `json:"userId"`
	Username string    `json:"username"`
	jwt.RegisteredClaims
}

type User struct {
	ID       uuid.UUID
	Username string
}

var (
	ErrNoUser       = errors.New("user is not authenticated")
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

type ctxKey struct{}

func SetAuthContext(ctx context.Context, u User) context.Context {
	return context.WithValue(ctx, ctxKey{}, u)
}

func UserFromContext(ctx context.Context) (User, error) {
	u, ok := ctx.Value(ctxKey{}).(User)
	if !ok || u.ID == uuid.Nil {
		return User{}, ErrNoUser
	}
	return u, nil
}

type Issuer struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

func NewIssuer(cfg Config) *Issuer {
	return &Issuer{key: []byte(cfg.Secret), ttl: cfg.TTL, now: time.Now}
}

// Issue signs an HS256 token and returns it with its expiry.
func (i *Issuer) Issue(u User) (string, time.Time, error) {
	now := i.now()
	exp := now.Add(i.ttl)
	claims := &Claims{
		UserID:   u.ID,
		Username: u.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.key)
	if err != nil {
		return "", time.Time{}, errors.Wrap(err, "sign token")
	}
	return token, exp, nil
}

func (i *Issuer) Parse(tokenStr string) (User, error) {
	claims := new(Claims)
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return i.key, nil
	})
	if err != nil {
		var vErr *jwt.ValidationError
		if errors.As(err, &vErr) && vErr.Errors&jwt.ValidationErrorExpired != 0 {
			return User{}, ErrTokenExpired
		}
		return User{}, ErrInvalidToken
	}
	if !token.Valid || claims.UserID == uuid.Nil {
		return User{}, ErrInvalidToken
	}
	return User{ID: claims.UserID, Username: claims.Username}, nil
}
