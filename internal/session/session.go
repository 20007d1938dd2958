// Package session tracks the current authenticated identity and notifies
// subscribers on every change.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"newsdesk/internal/gateway"
	"newsdesk/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const accountsCollection = "accounts"

var (
	// ErrEmailInUse is returned when registering with an already-taken email.
	ErrEmailInUse = errors.New("email already in use")
	// ErrInvalidCredentials is returned for an unknown email or wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Provider is the session collaborator contract. Subscribers receive the
// current identity (or nil) immediately on subscription and again on every
// change.
type Provider interface {
	Subscribe(fn func(*models.Identity)) (unsubscribe func())
	Register(ctx context.Context, email, password string) (*models.Identity, error)
	SignIn(ctx context.Context, email, password string) (*models.Identity, error)
	SignOut()
	IssueToken(identity *models.Identity) (string, error)
	VerifyToken(token string) (*models.Identity, error)
}

// CredentialProvider implements Provider over an accounts collection in the
// document gateway, with bcrypt-hashed passwords and HMAC-signed JWTs.
type CredentialProvider struct {
	docs      gateway.DocumentGateway
	jwtSecret []byte
	tokenTTL  time.Duration

	mu      sync.Mutex
	current *models.Identity
	subs    map[int]func(*models.Identity)
	nextSub int
}

// NewCredentialProvider builds a provider with no signed-in identity.
func NewCredentialProvider(docs gateway.DocumentGateway, jwtSecret string) *CredentialProvider {
	return &CredentialProvider{
		docs:      docs,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  72 * time.Hour,
		subs:      make(map[int]func(*models.Identity)),
	}
}

// Subscribe registers fn and invokes it once with the present state.
func (p *CredentialProvider) Subscribe(fn func(*models.Identity)) func() {
	p.mu.Lock()
	id := p.nextSub
	p.nextSub++
	p.subs[id] = fn
	current := p.current
	p.mu.Unlock()

	fn(current)

	return func() {
		p.mu.Lock()
		delete(p.subs, id)
		p.mu.Unlock()
	}
}

// Register creates a credential record and signs the new identity in.
func (p *CredentialProvider) Register(ctx context.Context, email, password string) (*models.Identity, error) {
	existing, err := p.docs.Query(ctx, accountsCollection, "email", email)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return nil, ErrEmailInUse
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	id, err := p.docs.Create(ctx, accountsCollection, gateway.Fields{
		"email":        email,
		"passwordHash": string(hash),
		"createdAt":    gateway.ServerTimestamp(),
	})
	if err != nil {
		return nil, err
	}

	identity := &models.Identity{ID: id, Email: email}
	p.broadcast(identity)
	return identity, nil
}

// SignIn checks the credential and broadcasts the identity on success.
func (p *CredentialProvider) SignIn(ctx context.Context, email, password string) (*models.Identity, error) {
	accounts, err := p.docs.Query(ctx, accountsCollection, "email", email)
	if err != nil {
		return nil, err
	}
	if len(accounts) == 0 {
		return nil, ErrInvalidCredentials
	}

	account := accounts[0]
	hash, _ := account.Fields["passwordHash"].(string)
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	identity := &models.Identity{ID: account.ID, Email: email}
	p.broadcast(identity)
	return identity, nil
}

// SignOut clears the current identity and notifies subscribers.
func (p *CredentialProvider) SignOut() {
	p.broadcast(nil)
}

// IssueToken signs a JWT for the identity.
func (p *CredentialProvider) IssueToken(identity *models.Identity) (string, error) {
	claims := jwt.MapClaims{
		"sub":   identity.ID,
		"email": identity.Email,
		"exp":   time.Now().Add(p.tokenTTL).Unix(),
		"iat":   time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(p.jwtSecret)
}

// VerifyToken parses and validates a JWT, returning the identity it carries.
func (p *CredentialProvider) VerifyToken(tokenString string) (*models.Identity, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return p.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidCredentials
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidCredentials
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return nil, ErrInvalidCredentials
	}
	email, _ := claims["email"].(string)
	return &models.Identity{ID: sub, Email: email}, nil
}

func (p *CredentialProvider) broadcast(identity *models.Identity) {
	p.mu.Lock()
	p.current = identity
	subs := make([]func(*models.Identity), 0, len(p.subs))
	for _, fn := range p.subs {
		subs = append(subs, fn)
	}
	p.mu.Unlock()

	for _, fn := range subs {
		fn(identity)
	}
}
