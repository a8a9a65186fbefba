package user

import (
	"context"
	"errors"
	"net/mail"
	"time"

	pkgerrors "github.com/pkg/errors"

	"github.com/htpham/tutorhub/core"
)

var (
	// errors
	ErrNotFound    = errors.New("user not found")
	ErrEmailExists = errors.New("a user with this email already exists")
	ErrDisabled    = errors.New("account disabled")
)

type (
	Repository interface {
		CheckEmailUniqueness(ctx context.Context, email string, excludedUsers ...User) error
		CreateUser(ctx context.Context, usr User) (User, error)
		QueryAllUsers(ctx context.Context) ([]User, error)
		GetUserByID(ctx context.Context, id string) (User, error)
		GetUserByEmail(ctx context.Context, email string) (User, error)
		UpdateUser(ctx context.Context, usr User, isActive *bool) (User, error)
		DeleteUsersByID(ctx context.Context, ids ...string) error
	}

	Service struct {
		conf     *core.Config
		repo     Repository
		mailSvc  core.EmailService
		logger   core.Logger
		tokenGen tokenGenerator
	}
)

func NewService(conf *core.Config, repo Repository, mailSvc core.EmailService, logger core.Logger) *Service {
	return &Service{
		conf:    conf,
		repo:    repo,
		mailSvc: mailSvc,
		logger:  logger,
		tokenGen: tokenGenerator{
			secretKey: conf.SecretKey,
			timeout:   conf.PasswordResetTimeoutDelta,
		},
	}
}

func (svc *Service) checkUniqueness(email string, exclUsers ...User) error {
	if err := svc.repo.CheckEmailUniqueness(context.Background(), email, exclUsers...); err != nil {
		if err == ErrEmailExists {
			return core.NewValidationError(err, core.FieldError{Field: "email", Error: err.Error()})
		}
		return err
	}
	return nil
}

func (svc *Service) Create(ctx context.Context, nu NewUser) (User, error) {
	now := time.Now().UTC()
	usr := User{
		Name:      nu.Name,
		Email:     nu.Email,
		Phone:     nu.Phone,
		Role:      nu.Role,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := usr.SetPassword(nu.Password); err != nil {
		return User{}, pkgerrors.Wrap(err, "hashing password")
	}
	return svc.repo.CreateUser(ctx, usr)
}

func (svc *Service) QueryAll(ctx context.Context) ([]User, error) {
	return svc.repo.QueryAllUsers(ctx)
}

func (svc *Service) GetByID(ctx context.Context, id string) (User, error) {
	return svc.repo.GetUserByID(ctx, id)
}

func (svc *Service) GetByEmail(ctx context.Context, email string) (User, error) {
	return svc.repo.GetUserByEmail(ctx, core.CleanString(email, true /* lower */))
}

func (svc *Service) Update(ctx context.Context, id string, uu UpdateUser) (User, error) {
	usr := User{
		ID:        id,
		Name:      uu.Name,
		Email:     uu.Email,
		Role:      uu.Role,
		UpdatedAt: time.Now().UTC(),
	}
	if uu.Phone != nil {
		usr.Phone = *uu.Phone
	}
	if uu.Password != "" {
		if err := usr.SetPassword(uu.Password); err != nil {
			return User{}, pkgerrors.Wrap(err, "hashing password")
		}
	}
	return svc.repo.UpdateUser(ctx, usr, uu.IsActive)
}

func (svc *Service) Delete(ctx context.Context, ids ...string) error {
	return svc.repo.DeleteUsersByID(ctx, ids...)
}

// Authenticate verifies the credentials and stamps the user's last login.
// Inactive accounts are rejected even with a valid password.
func (svc *Service) Authenticate(ctx context.Context, email, pwd string) (User, error) {
	usr, err := svc.GetByEmail(ctx, email)
	if err != nil {
		return User{}, err
	}
	if err := usr.CheckPassword(pwd); err != nil {
		return User{}, ErrNotFound
	}
	if !usr.IsActive {
		return User{}, ErrDisabled
	}
	if usr, err = svc.setLastLogin(ctx, usr); err != nil {
		return User{}, pkgerrors.Wrap(err, "setting last login")
	}
	return usr, nil
}

func (svc *Service) setLastLogin(ctx context.Context, usr User) (User, error) {
	usr.LastLogin = time.Now().UTC()
	return svc.repo.UpdateUser(ctx, User{ID: usr.ID, LastLogin: usr.LastLogin}, nil)
}

// RequestPasswordReset emails a reset link to the account with the given
// email, if one exists and is active.
func (svc *Service) RequestPasswordReset(ctx context.Context, email string) error {
	usr, err := svc.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if !usr.IsActive {
		return ErrNotFound
	}

	token, err := svc.tokenGen.MakeToken(usr)
	if err != nil {
		return pkgerrors.Wrap(err, "making token")
	}

	svc.mailSvc.SendMessages(
		&core.EmailMessage{
			To:           []mail.Address{{Name: usr.Name, Address: usr.Email}},
			Subject:      "Password Reset",
			TemplateName: "password-reset",
			TemplateData: struct {
				Name    string
				AppName string
				UID     string
				Token   string
			}{
				Name:    usr.Name,
				AppName: svc.conf.AppName,
				UID:     EncodeUID(usr),
				Token:   token,
			},
		},
	)
	return nil
}

// ResetPassword sets a new password on the account identified by the
// UID/token pair. The token is single-use; the password change invalidates it.
func (svc *Service) ResetPassword(ctx context.Context, rp ResetUserPassword) error {
	uid, err := decodeUID(rp.UID)
	if err != nil {
		return errInvalidToken
	}
	usr, err := svc.GetByID(ctx, uid)
	if err != nil {
		if err == ErrNotFound {
			return errInvalidToken
		}
		return err
	}

	if err := svc.tokenGen.VerifyToken(usr, rp.Token); err != nil {
		return err
	}

	if err := usr.SetPassword(rp.Password); err != nil {
		return pkgerrors.Wrap(err, "hashing password")
	}
	usr.UpdatedAt = time.Now().UTC()
	if _, err := svc.repo.UpdateUser(ctx, usr, nil); err != nil {
		return pkgerrors.Wrap(err, "persisting new password")
	}

	svc.logger.Info("password reset for " + usr.Email)
	return nil
}
