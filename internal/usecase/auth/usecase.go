package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"bank-loan-service/internal/domain/apperr"
	"bank-loan-service/internal/domain/uow"
	"bank-loan-service/internal/domain/user"
	"bank-loan-service/pkg/id"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const minPasswordLen = 6

type TokenIssuer interface {
	Issue(u *user.User) (string, error)
}

// Usecase is the thin identity collaborator: it owns users and their roles.
type Usecase struct {
	users  user.Repository
	uow    uow.UnitOfWork
	tokens TokenIssuer
	log    *zap.Logger
}

func NewUsecase(users user.Repository, tx uow.UnitOfWork, tokens TokenIssuer, log *zap.Logger) *Usecase {
	if log == nil {
		log = zap.NewNop()
	}
	return &Usecase{users: users, uow: tx, tokens: tokens, log: log}
}

func (u *Usecase) Register(ctx context.Context, in RegisterInput) (*user.User, error) {
	return u.create(ctx, in, user.RoleUser)
}

func (u *Usecase) CreateUser(ctx context.Context, caller user.Caller, in CreateUserInput) (*user.User, error) {
	if !caller.IsAdmin() {
		return nil, apperr.ErrForbidden
	}
	role := user.RoleUser
	if in.Role != "" {
		r, ok := user.ParseRole(in.Role)
		if !ok {
			return nil, apperr.Validation("unknown role " + in.Role)
		}
		role = r
	}
	return u.create(ctx, in.RegisterInput, role)
}

func (u *Usecase) create(ctx context.Context, in RegisterInput, role user.Role) (*user.User, error) {
	username := strings.TrimSpace(in.Username)
	if username == "" {
		return nil, apperr.Validation("username is required")
	}
	if err := validateEmail(in.Email); err != nil {
		return nil, err
	}
	hash, err := hashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	switch _, err := u.users.GetByUsername(ctx, username); {
	case err == nil:
		return nil, fmt.Errorf("%w: username %s already exists", apperr.ErrConflict, username)
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, apperr.Storage("lookup user", err)
	}

	nu := &user.User{
		UserID:       id.NewID32(),
		Username:     username,
		Email:        strings.TrimSpace(in.Email),
		PasswordHash: hash,
		Role:         role,
	}
	if err := u.users.Create(ctx, nu); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: user already exists", apperr.ErrConflict)
		}
		return nil, apperr.Storage("create user", err)
	}
	u.log.Info("user registered", zap.Uint64("user_id", nu.ID), zap.String("role", string(role)))
	return nu, nil
}

func (u *Usecase) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	usr, err := u.users.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: invalid credentials", apperr.ErrUnauthorized)
		}
		return nil, apperr.Storage("lookup user", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(usr.PasswordHash), []byte(password)) != nil {
		return nil, fmt.Errorf("%w: invalid credentials", apperr.ErrUnauthorized)
	}
	tok, err := u.tokens.Issue(usr)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &LoginResult{Token: tok, UserID: usr.ID, Username: usr.Username, Role: string(usr.Role)}, nil
}

func (u *Usecase) CurrentUser(ctx context.Context, caller user.Caller) (*user.User, error) {
	return u.get(ctx, caller.ID)
}

func (u *Usecase) ListUsers(ctx context.Context, caller user.Caller) ([]user.User, error) {
	if !caller.IsAdmin() {
		return nil, apperr.ErrForbidden
	}
	out, err := u.users.List(ctx)
	if err != nil {
		return nil, apperr.Storage("list users", err)
	}
	return out, nil
}

func (u *Usecase) UpdateUser(ctx context.Context, caller user.Caller, userID uint64, in UpdateUserInput) (*user.User, error) {
	if !caller.IsAdmin() {
		return nil, apperr.ErrForbidden
	}
	usr, err := u.get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if in.Username != nil {
		name := strings.TrimSpace(*in.Username)
		if name == "" {
			return nil, apperr.Validation("username is required")
		}
		usr.Username = name
	}
	if in.Email != nil {
		if err := validateEmail(*in.Email); err != nil {
			return nil, err
		}
		usr.Email = strings.TrimSpace(*in.Email)
	}
	if in.Role != nil {
		role, ok := user.ParseRole(*in.Role)
		if !ok {
			return nil, apperr.Validation("unknown role " + *in.Role)
		}
		usr.Role = role
	}
	if in.Password != nil && *in.Password != "" {
		hash, err := hashPassword(*in.Password)
		if err != nil {
			return nil, err
		}
		usr.PasswordHash = hash
	}
	if err := u.users.Save(ctx, usr); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: username or email taken", apperr.ErrConflict)
		}
		return nil, apperr.Storage("save user", err)
	}
	return usr, nil
}

// DeleteUser refuses to remove a user that still owns documents or
// applications. The user row stays locked from the ownership counts to the
// delete so a concurrent upload or apply cannot slip in between.
func (u *Usecase) DeleteUser(ctx context.Context, caller user.Caller, userID uint64) error {
	if !caller.IsAdmin() {
		return apperr.ErrForbidden
	}
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		if _, err := r.Users.GetByIDForUpdate(ctx, userID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("user")
			}
			return apperr.Storage("lock user", err)
		}
		nd, err := r.Documents.CountByUser(ctx, userID)
		if err != nil {
			return apperr.Storage("count documents", err)
		}
		nl, err := r.Loans.CountByUser(ctx, userID)
		if err != nil {
			return apperr.Storage("count loans", err)
		}
		if nd > 0 || nl > 0 {
			return fmt.Errorf("%w: user owns %d documents and %d applications", apperr.ErrConflict, nd, nl)
		}
		if err := r.Users.Delete(ctx, userID); err != nil {
			return apperr.Storage("delete user", err)
		}
		return nil
	})
	if err != nil {
		if apperr.Known(err) {
			return err
		}
		return apperr.Storage("delete user", err)
	}
	u.log.Info("user deleted", zap.Uint64("user_id", userID), zap.Uint64("by", caller.ID))
	return nil
}

// SeedAdmin creates the bootstrap admin if the username is free.
func (u *Usecase) SeedAdmin(ctx context.Context, in RegisterInput) (bool, error) {
	_, err := u.users.GetByUsername(ctx, in.Username)
	switch {
	case err == nil:
		return false, nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return false, apperr.Storage("lookup user", err)
	}
	if _, err := u.create(ctx, in, user.RoleAdmin); err != nil {
		return false, err
	}
	return true, nil
}

func (u *Usecase) get(ctx context.Context, userID uint64) (*user.User, error) {
	usr, err := u.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("user")
		}
		return nil, apperr.Storage("get user", err)
	}
	return usr, nil
}

func validateEmail(email string) error {
	if _, err := mail.ParseAddress(strings.TrimSpace(email)); err != nil {
		return apperr.Validation("invalid email")
	}
	return nil
}

func hashPassword(pw string) (string, error) {
	if len(pw) < minPasswordLen {
		return "", apperr.Validation(fmt.Sprintf("password must be at least %d characters", minPasswordLen))
	}
	b, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(b), nil
}
