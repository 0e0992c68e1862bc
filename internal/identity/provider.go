// Package identity supplies the current actor to the catalog core.
// Accounts are a seeded, read-only document; the session is a single
// store key holding the logged-in username. Credentials are
// illustrative: stored and compared in clear, with no hardening.
package identity

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/sohaum/bazar/internal/domain"
	"github.com/sohaum/bazar/internal/logger"
	"github.com/sohaum/bazar/internal/store"
)

// ErrInvalidCredentials is returned by Login on a bad username/password pair.
var ErrInvalidCredentials = errors.New("invalid username or password")

// Provider implements the identity contract: CurrentActor plus the
// login/logout operations that maintain the session key.
type Provider struct {
	kv  store.KV
	log logger.Logger
}

// NewProvider creates an identity provider over the given store.
func NewProvider(kv store.KV, log logger.Logger) *Provider {
	return &Provider{kv: kv, log: log}
}

// EnsureUsers seeds the user document if it does not exist yet.
// An existing document is never overwritten.
func (p *Provider) EnsureUsers(ctx context.Context, defaults []domain.User) error {
	_, ok, err := p.kv.Get(ctx, store.KeyUsers)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}

	data, err := json.Marshal(defaults)
	if err != nil {
		return err
	}
	if err := p.kv.Set(ctx, store.KeyUsers, data); err != nil {
		return err
	}
	p.log.Info("seeded default users", logger.Int("count", len(defaults)))
	return nil
}

// Login matches the username case-insensitively and the password
// exactly, then records the session. Returns the resulting actor.
func (p *Provider) Login(ctx context.Context, username, password string) (*domain.Actor, error) {
	username = strings.TrimSpace(username)

	users, err := p.users(ctx)
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		if strings.EqualFold(u.Username, username) && u.Password == password {
			data, err := json.Marshal(u.Username)
			if err != nil {
				return nil, err
			}
			if err := p.kv.Set(ctx, store.KeySession, data); err != nil {
				return nil, &domain.StorageFailure{Key: store.KeySession, Err: err}
			}
			p.log.Info("user logged in", logger.String("username", u.Username))
			return &domain.Actor{Username: u.Username, Role: u.Role}, nil
		}
	}
	return nil, ErrInvalidCredentials
}

// Logout clears the session. Logging out while logged out is a no-op.
func (p *Provider) Logout(ctx context.Context) error {
	if err := p.kv.Del(ctx, store.KeySession); err != nil {
		return &domain.StorageFailure{Key: store.KeySession, Err: err}
	}
	return nil
}

// CurrentActor resolves the session against the user document.
// Returns nil when nobody is logged in or the session points at an
// account that no longer exists.
func (p *Provider) CurrentActor(ctx context.Context) *domain.Actor {
	data, ok, err := p.kv.Get(ctx, store.KeySession)
	if err != nil || !ok {
		return nil
	}

	var username string
	if err := json.Unmarshal(data, &username); err != nil {
		p.log.Warn("session document corrupt", logger.Error(err))
		return nil
	}

	users, err := p.users(ctx)
	if err != nil {
		return nil
	}
	for _, u := range users {
		if u.Username == username {
			return &domain.Actor{Username: u.Username, Role: u.Role}
		}
	}
	p.log.Warn("session references unknown user", logger.String("username", username))
	return nil
}

func (p *Provider) users(ctx context.Context) ([]domain.User, error) {
	data, ok, err := p.kv.Get(ctx, store.KeyUsers)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	var users []domain.User
	if err := json.Unmarshal(data, &users); err != nil {
		return nil, err
	}
	return users, nil
}
