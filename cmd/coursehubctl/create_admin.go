package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"

	"github.com/yungbote/coursehub-backend/internal/data/repos"
	types "github.com/yungbote/coursehub-backend/internal/domain"
	"github.com/yungbote/coursehub-backend/internal/pkg/dbctx"
)

type adminInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

func (in adminInput) validate() error {
	switch {
	case !strings.Contains(in.Email, "@"):
		return fmt.Errorf("a valid --email is required")
	case len(in.Password) < 8:
		return fmt.Errorf("--password must be at least 8 characters")
	case strings.TrimSpace(in.FirstName) == "" || strings.TrimSpace(in.LastName) == "":
		return fmt.Errorf("--first-name and --last-name are required")
	}
	return nil
}

// createAdmin inserts an active admin account. Existing emails are rejected.
func createAdmin(dbc dbctx.Context, users repos.UserRepo, in adminInput) (*types.User, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	email := types.NormalizeEmail(in.Email)
	exists, err := users.EmailExists(dbc, email)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if exists {
		return nil, fmt.Errorf("a user with email %s already exists", email)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &types.User{
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
		Email:     email,
		Password:  string(hash),
		Role:      types.RoleAdmin,
		IsActive:  true,
	}
	if err := users.Create(dbc, u); err != nil {
		return nil, fmt.Errorf("create admin: %w", err)
	}
	return u, nil
}

func createAdminCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an active admin account",
		RunE: func(cmd *cobra.Command, args []string) error {
			in := adminInput{
				Email:     v.GetString("email"),
				Password:  v.GetString("password"),
				FirstName: v.GetString("first-name"),
				LastName:  v.GetString("last-name"),
			}
			if err := in.validate(); err != nil {
				return err
			}

			log, pg, err := openPostgres(v)
			if err != nil {
				return err
			}
			defer pg.Close()
			defer log.Sync()

			u, err := createAdmin(dbctx.New(context.Background()), repos.NewUserRepo(pg.DB(), log), in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created admin %s (%s)\n", u.Email, u.ID)
			return nil
		},
	}
	f := cmd.Flags()
	f.String("email", "", "admin email")
	f.String("password", "", "admin password (or COURSEHUB_PASSWORD)")
	f.String("first-name", "", "first name")
	f.String("last-name", "", "last name")
	return cmd
}
