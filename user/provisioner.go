package user

import (
	"context"
	stderrors "errors"
	"strings"
	"time"

	"github.com/kbukum/oidcauth/errors"
	"github.com/kbukum/oidcauth/logger"
)

// Identity is the verified claim set a user is provisioned from.
type Identity struct {
	Subject   string
	Email     string
	FirstName string
	LastName  string
}

// Provisioner resolves verified identities to local accounts.
type Provisioner struct {
	repo             Repository
	activateNewUsers bool
	log              *logger.Logger
}

// NewProvisioner creates a Provisioner. activateNewUsers controls whether
// accounts created on first login start active.
func NewProvisioner(repo Repository, activateNewUsers bool) *Provisioner {
	return &Provisioner{
		repo:             repo,
		activateNewUsers: activateNewUsers,
		log:              logger.WithComponent("user.provisioner"),
	}
}

// GetOrCreate returns the account for the given identity, creating it on
// first login. Name claims and the external subject are refreshed on every
// call so local data follows the provider; the last-login timestamp is
// bumped on each successful resolution.
func (p *Provisioner) GetOrCreate(ctx context.Context, identity Identity) (*User, *errors.AppError) {
	email := strings.ToLower(strings.TrimSpace(identity.Email))
	if email == "" {
		return nil, errors.MissingField("email")
	}

	existing, err := p.repo.FindByEmail(ctx, email)
	switch {
	case err == nil:
		existing.FirstName = identity.FirstName
		existing.LastName = identity.LastName
		existing.ExternalID = identity.Subject
		existing.LastLogin = time.Now()
		if updateErr := p.repo.Update(ctx, existing); updateErr != nil {
			return nil, errors.Internal(updateErr)
		}
		return existing, nil

	case stderrors.Is(err, ErrNotFound):
		now := time.Now()
		created := &User{
			Email:      email,
			FirstName:  identity.FirstName,
			LastName:   identity.LastName,
			IsActive:   p.activateNewUsers,
			ExternalID: identity.Subject,
			LastLogin:  now,
			CreatedAt:  now,
		}
		if createErr := p.repo.Create(ctx, created); createErr != nil {
			return nil, errors.Internal(createErr)
		}
		p.log.Info("provisioned new user", logger.Fields(
			logger.FieldEmail, email,
			logger.FieldUserID, created.ID,
		))
		return created, nil

	default:
		return nil, errors.Internal(err)
	}
}
