package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fekuna/omnipos-warehouse/internal/auth"
	"github.com/fekuna/omnipos-warehouse/internal/pkg/database"
	"github.com/fekuna/omnipos-warehouse/internal/user/dto"
	userRepo "github.com/fekuna/omnipos-warehouse/internal/user/repository"
	userUC "github.com/fekuna/omnipos-warehouse/internal/user/usecase"
)

func newCreateAdminCommand(opts *rootOptions) *cobra.Command {
	var (
		input dto.CreateUserInput
		force bool
	)

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create the admin account",
		Long:  "Create the admin account. With --force an existing account is reset to the given password and email.",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openPostgres(opts.cfg)
			if err != nil {
				return err
			}
			defer db.Close()
			if err := database.Migrate(cmd.Context(), db); err != nil {
				return err
			}

			tokens := auth.NewTokenManager(opts.cfg.JWT.SecretKey, opts.cfg.JWT.TTL, opts.cfg.JWT.Issuer)
			uc := userUC.NewUserUseCase(userRepo.NewPGRepository(db), tokens, opts.log)

			u, err := uc.EnsureAdmin(cmd.Context(), &input, force)
			if err != nil {
				return err
			}
			opts.log.Info("admin account ready", zap.String("username", u.Username), zap.Bool("reset", force))
			fmt.Fprintf(cmd.OutOrStdout(), "admin %q ready (%s)\n", u.Username, u.Email)
			return nil
		},
	}

	cmd.Flags().StringVar(&input.Username, "username", "admin", "admin username")
	cmd.Flags().StringVar(&input.Password, "password", "admin@123", "admin password")
	cmd.Flags().StringVar(&input.Email, "email", "admin@jockeywarehouse.com", "admin email")
	cmd.Flags().BoolVar(&force, "force", false, "reset the account if it already exists")
	return cmd
}
