// ABOUTME: Directory service owning identity registration and lookup
// ABOUTME: Handles dual-identity admin registration and organisation membership bookkeeping

package directory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/typicallhavok/task-manager/internal/store"
)

// ErrDuplicateIdentity is returned when a username or email is already
// taken within the target namespace.
var ErrDuplicateIdentity = store.ErrDuplicateIdentity

// ErrNotFound is returned when an identity does not exist in the queried namespace.
var ErrNotFound = store.ErrNotFound

// MembershipOutcome records what happened to the organisation side of a
// registration, making the silently-skipped case observable.
type MembershipOutcome string

const (
	// MembershipNone: no organisation was named.
	MembershipNone MembershipOutcome = "none"
	// MembershipRequested: a pending request was enqueued on an existing organisation.
	MembershipRequested MembershipOutcome = "requested"
	// MembershipSkipped: the named organisation does not exist; the
	// registration succeeded but no membership was recorded.
	MembershipSkipped MembershipOutcome = "skipped"
	// MembershipJoined: the admin was appended to an existing organisation.
	MembershipJoined MembershipOutcome = "joined"
	// MembershipFounded: a new organisation was created with the admin as founder.
	MembershipFounded MembershipOutcome = "founded"
)

// Registration is the result of a register call.
type Registration struct {
	User       *store.User  // always set; the shadow user for admin registrations
	Admin      *store.Admin // set for admin registrations only
	Membership MembershipOutcome
}

// Identity is a namespace-resolved view of a user or admin account.
type Identity struct {
	Username     string
	PasswordHash string
	Gender       string
	Organisation string
	Role         store.Role
	TaskIDs      []string
}

// RegisterParams carries the fields common to both registration paths.
// PasswordHash is the already-hashed credential; the directory never
// sees plaintext.
type RegisterParams struct {
	Username     string
	PasswordHash string
	Email        string
	Gender       string
	Organisation string // optional for users, mandatory for admins
}

// Directory owns User, Admin, and Organisation records and their
// membership relations.
type Directory struct {
	store  store.Store
	logger *slog.Logger
}

// New creates a Directory backed by the given store
func New(st store.Store) *Directory {
	return &Directory{
		store:  st,
		logger: slog.Default().With("component", "directory"),
	}
}

// RegisterUser creates a user account. If an organisation is named and
// exists, the new user is enqueued as a pending membership request. If
// the named organisation does not exist the registration still succeeds
// and the outcome is reported as MembershipSkipped; the request is not
// recorded anywhere else.
func (d *Directory) RegisterUser(ctx context.Context, p RegisterParams) (*Registration, error) {
	user := &store.User{
		Username:     p.Username,
		PasswordHash: p.PasswordHash,
		Email:        p.Email,
		Gender:       p.Gender,
		Organisation: p.Organisation,
	}

	if err := d.store.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}

	outcome := MembershipNone
	if p.Organisation != "" {
		switch err := d.store.AppendOrganisationRequest(ctx, p.Organisation, user.ID); {
		case err == nil:
			outcome = MembershipRequested
		case errors.Is(err, store.ErrOrganisationNotFound):
			outcome = MembershipSkipped
			d.logger.Warn("organisation does not exist, membership request dropped",
				"username", p.Username, "organisation", p.Organisation)
		default:
			return nil, fmt.Errorf("enqueueing membership request: %w", err)
		}
	}

	d.logger.Info("user registered", "username", p.Username, "membership", string(outcome))
	return &Registration{User: user, Membership: outcome}, nil
}

// RegisterAdmin creates an admin account plus a shadow user account
// sharing the same credentials: an admin is simultaneously a plain
// user. If the named organisation exists the admin joins its admin set
// and the shadow user its user set; otherwise a new organisation is
// founded with both.
func (d *Directory) RegisterAdmin(ctx context.Context, p RegisterParams) (*Registration, error) {
	if p.Organisation == "" {
		return nil, fmt.Errorf("admin registration requires an organisation")
	}

	admin := &store.Admin{
		Username:     p.Username,
		PasswordHash: p.PasswordHash,
		Email:        p.Email,
		Gender:       p.Gender,
		Organisation: p.Organisation,
	}

	if err := d.store.CreateAdmin(ctx, admin); err != nil {
		return nil, fmt.Errorf("creating admin: %w", err)
	}

	// Shadow user in the user namespace. The username may already be a
	// plain user there; the admin registration stands either way.
	user := &store.User{
		Username:     p.Username,
		PasswordHash: p.PasswordHash,
		Email:        p.Email,
		Gender:       p.Gender,
		Organisation: p.Organisation,
	}
	if err := d.store.CreateUser(ctx, user); err != nil {
		if !errors.Is(err, store.ErrDuplicateIdentity) {
			return nil, fmt.Errorf("creating shadow user: %w", err)
		}
		d.logger.Warn("shadow user already exists in user namespace", "username", p.Username)
		user = nil
	}

	outcome := MembershipJoined
	_, err := d.store.GetOrganisationByName(ctx, p.Organisation)
	switch {
	case err == nil:
		if err := d.store.AppendOrganisationAdmin(ctx, p.Organisation, admin.ID); err != nil {
			return nil, fmt.Errorf("appending organisation admin: %w", err)
		}
		if user != nil {
			if err := d.store.AppendOrganisationUser(ctx, p.Organisation, user.ID); err != nil {
				return nil, fmt.Errorf("appending organisation user: %w", err)
			}
		}
	case errors.Is(err, store.ErrOrganisationNotFound):
		outcome = MembershipFounded
		org := &store.Organisation{
			Name:   p.Organisation,
			Admins: []string{admin.ID},
		}
		if user != nil {
			org.Users = []string{user.ID}
		}
		if err := d.store.CreateOrganisation(ctx, org); err != nil {
			return nil, fmt.Errorf("founding organisation: %w", err)
		}
	default:
		return nil, fmt.Errorf("resolving organisation: %w", err)
	}

	d.logger.Info("admin registered",
		"username", p.Username, "organisation", p.Organisation, "membership", string(outcome))
	return &Registration{User: user, Admin: admin, Membership: outcome}, nil
}

// FindIdentity resolves a username within the namespace selected by
// role. Returns ErrNotFound when the username exists only in the other
// namespace or not at all.
func (d *Directory) FindIdentity(ctx context.Context, username string, role store.Role) (*Identity, error) {
	switch role {
	case store.RoleAdmin:
		admin, err := d.store.GetAdminByUsername(ctx, username)
		if err != nil {
			return nil, err
		}
		return &Identity{
			Username:     admin.Username,
			PasswordHash: admin.PasswordHash,
			Gender:       admin.Gender,
			Organisation: admin.Organisation,
			Role:         store.RoleAdmin,
			TaskIDs:      admin.Tasks,
		}, nil
	case store.RoleUser:
		user, err := d.store.GetUserByUsername(ctx, username)
		if err != nil {
			return nil, err
		}
		return &Identity{
			Username:     user.Username,
			PasswordHash: user.PasswordHash,
			Gender:       user.Gender,
			Organisation: user.Organisation,
			Role:         store.RoleUser,
			TaskIDs:      user.Tasks,
		}, nil
	default:
		return nil, fmt.Errorf("unknown role %q", role)
	}
}

// FindOrganisation resolves an organisation by name
func (d *Directory) FindOrganisation(ctx context.Context, name string) (*store.Organisation, error) {
	return d.store.GetOrganisationByName(ctx, name)
}

// ListPendingRequests lists user IDs awaiting membership approval for
// an organisation. Approval itself is handled elsewhere; this exists so
// the queue is inspectable.
func (d *Directory) ListPendingRequests(ctx context.Context, orgName string) ([]string, error) {
	return d.store.ListOrganisationRequests(ctx, orgName)
}
