package auth

import (
	"context"
	"crypto/rsa"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
	uuid "github.com/satori/go.uuid"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli"
	cs "github.com/webtor-io/common-services"

	"github.com/flixplore-io/web-api/models"
)

const (
	publicKeyFlag = "auth-public-key"
	secretKeyFlag = "auth-secret-key"
	UseFlag       = "use-auth"
)

func RegisterFlags(f []cli.Flag) []cli.Flag {
	return append(f,
		cli.StringFlag{
			Name:   publicKeyFlag,
			Usage:  "identity provider public key (PEM)",
			Value:  "",
			EnvVar: "AUTH_PUBLIC_KEY",
		},
		cli.StringFlag{
			Name:   secretKeyFlag,
			Usage:  "identity provider shared secret",
			Value:  "",
			EnvVar: "AUTH_SECRET_KEY",
		},
		cli.BoolFlag{
			Name:   UseFlag,
			Usage:  "use auth",
			EnvVar: "USE_AUTH",
		},
	)
}

// Auth verifies the identity provider's bearer tokens and resolves
// their opaque subject to a local user row. RS256 tokens are checked
// against the configured public key; when only the shared secret is
// present HS256 is accepted instead.
type Auth struct {
	publicKeyPEM string
	secret       string
	key          *rsa.PublicKey
	pg           *cs.PG
}

func New(c *cli.Context, pg *cs.PG) *Auth {
	if !c.Bool(UseFlag) {
		return nil
	}
	return &Auth{
		publicKeyPEM: c.String(publicKeyFlag),
		secret:       c.String(secretKeyFlag),
		pg:           pg,
	}
}

func (s *Auth) Init() error {
	if s.publicKeyPEM == "" && s.secret == "" {
		return errors.New("either auth public key or secret must be configured")
	}
	if s.publicKeyPEM != "" {
		key, err := jwt.ParseRSAPublicKeyFromPEM([]byte(s.publicKeyPEM))
		if err != nil {
			return errors.Wrap(err, "failed to parse auth public key")
		}
		s.key = key
	}
	return nil
}

type User struct {
	ID         uuid.UUID
	ExternalID string
	Email      string
}

func (s *User) HasAuth() bool {
	return s != nil && s.ExternalID != ""
}

type UserContext struct{}

func GetUserFromContext(c *gin.Context) *User {
	u, ok := c.Request.Context().Value(UserContext{}).(*User)
	if !ok {
		return &User{}
	}
	return u
}

// HasAuth guards routes that require a resolved identity.
func HasAuth(c *gin.Context) {
	u := GetUserFromContext(c)
	if !u.HasAuth() {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	c.Next()
}

func (s *Auth) RegisterHandler(r *gin.Engine) {
	r.Use(s.verifySession())
}

// verifySession resolves the bearer token when present. Requests
// without a valid token proceed anonymous; guarded routes reject them.
func (s *Auth) verifySession() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c.Request)
		if token == "" {
			c.Next()
			return
		}
		subject, email, err := s.verifyToken(token)
		if err != nil {
			log.WithError(err).Debug("failed to verify bearer token")
			c.Next()
			return
		}
		u, err := s.resolveUser(c.Request.Context(), subject, email)
		if err != nil {
			log.WithError(err).Error("failed to resolve user")
			c.Next()
			return
		}
		ctx := context.WithValue(c.Request.Context(), UserContext{}, u)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func (s *Auth) verifyToken(token string) (subject string, email string, err error) {
	t, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
		switch t.Method.(type) {
		case *jwt.SigningMethodRSA:
			if s.key == nil {
				return nil, errors.New("no public key configured")
			}
			return s.key, nil
		case *jwt.SigningMethodHMAC:
			if s.secret == "" {
				return nil, errors.New("no shared secret configured")
			}
			return []byte(s.secret), nil
		}
		return nil, errors.Errorf("unexpected signing method %v", t.Header["alg"])
	})
	if err != nil {
		return "", "", errors.Wrap(err, "failed to parse token")
	}
	claims, ok := t.Claims.(jwt.MapClaims)
	if !ok {
		return "", "", errors.New("unexpected claims type")
	}
	subject, _ = claims["sub"].(string)
	if subject == "" {
		return "", "", errors.New("token carries no subject")
	}
	email, _ = claims["email"].(string)
	return subject, email, nil
}

func (s *Auth) resolveUser(ctx context.Context, subject string, email string) (*User, error) {
	db := s.pg.Get()
	if db == nil {
		return nil, errors.New("database is not available")
	}
	u, _, err := models.GetOrCreateUser(ctx, db, subject, email)
	if err != nil {
		return nil, err
	}
	return &User{
		ID:         u.UserID,
		ExternalID: u.ExternalID,
		Email:      u.Email,
	}, nil
}

func extractToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return ""
}
