package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/spf13/cobra"

	"github.com/spec-kit/internship-portal/internal/domain"
	"github.com/spec-kit/internship-portal/internal/repository"
)

var (
	roleEmail string
	roleName  string
)

var setRoleCmd = &cobra.Command{
	Use:     "set-role",
	Short:   "Change the role of an existing account",
	Example: `  portalctl set-role --email dean@college.edu --role admin`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt := runtimeFrom(cmd)
		user, err := setRole(cmd.Context(), repository.NewUserRepository(rt.pg.PoolHandle()), roleEmail, roleName)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s <%s> is now %s\n", user.Name, user.Email, user.Role)
		return nil
	},
}

func init() {
	setRoleCmd.Flags().StringVar(&roleEmail, "email", "", "email of the account to change")
	setRoleCmd.Flags().StringVar(&roleName, "role", string(domain.RoleAdmin), "new role: student or admin")
	_ = setRoleCmd.MarkFlagRequired("email")
}

func setRole(ctx context.Context, users repository.UserRepository, email, role string) (*domain.User, error) {
	target := domain.Role(strings.ToLower(strings.TrimSpace(role)))
	if !target.Valid() {
		return nil, fmt.Errorf("invalid role %q: must be student or admin", role)
	}
	user, err := users.GetByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("no account with email %s", email)
		}
		return nil, err
	}
	if err := users.UpdateRole(ctx, user.ID, target); err != nil {
		return nil, fmt.Errorf("update role: %w", err)
	}
	user.Role = target
	return user, nil
}
