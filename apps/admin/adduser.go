package main

import (
	"context"
	"time"

	"github.com/htpham/tutorhub/core"
	"github.com/htpham/tutorhub/core/user"
)

// addUser updates or creates an active user.User with the given role.
func (cli *commandLine) addUser(name, email, role, pwd string) error {
	ctx := context.Background()
	name = core.CleanString(name)
	email = core.CleanString(email, true /* lower */)
	now := time.Now().UTC()

	usr, err := cli.usrRepo.GetUserByEmail(ctx, email)
	if err != nil {
		if err != user.ErrNotFound {
			return err
		}
		usr = user.User{
			Name:      name,
			Email:     email,
			CreatedAt: now,
		}
	}
	usr.Name = name
	usr.Role = role
	usr.UpdatedAt = now
	if err := usr.SetPassword(pwd); err != nil {
		return err
	}

	isActive := true
	if usr.ID == "" {
		usr.IsActive = isActive
		_, err = cli.usrRepo.CreateUser(ctx, usr)
	} else {
		_, err = cli.usrRepo.UpdateUser(ctx, usr, &isActive)
	}
	return err
}
