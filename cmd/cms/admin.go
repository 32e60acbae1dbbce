package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/blogcms/cms-api/internal/core/domain"
	"github.com/blogcms/cms-api/internal/core/ports"
	"github.com/blogcms/cms-api/internal/core/service"
	"github.com/blogcms/cms-api/internal/infrastructure/db/mongo"
	"github.com/blogcms/cms-api/internal/infrastructure/token"
)

type seedAdminOptions struct {
	name     string
	username string
	email    string
	password string
	role     string
}

func newSeedAdminCmd() *cobra.Command {
	opts := &seedAdminOptions{}

	cmd := &cobra.Command{
		Use:   "seed-admin",
		Short: "Create a staff account (superadmin by default)",
		Long: `Create a staff account directly in the database. Use it to bootstrap the
first superadmin; later accounts can be created through POST /api/admin/staff.

The password may be passed with --password or the SEED_ADMIN_PASSWORD variable.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.password == "" {
				opts.password = os.Getenv("SEED_ADMIN_PASSWORD")
			}
			return runSeedAdmin(cmd.Context(), opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.name, "name", "Administrator", "display name")
	f.StringVar(&opts.username, "username", "admin", "login username")
	f.StringVar(&opts.email, "email", "", "email address (required)")
	f.StringVar(&opts.password, "password", "", "password, at least 8 characters")
	f.StringVar(&opts.role, "role", string(domain.RoleSuperAdmin), "staff role: superadmin or admin")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}

func runSeedAdmin(ctx context.Context, opts *seedAdminOptions) error {
	role, err := domain.ParseRole(opts.role)
	if err != nil {
		return err
	}
	if role != domain.RoleSuperAdmin && role != domain.RoleAdmin {
		return fmt.Errorf("seed-admin: role must be superadmin or admin, got %q", role)
	}

	cfg, log, err := bootstrap(ctx)
	if err != nil {
		return err
	}

	client, db, err := mongo.Connect(ctx, mongoConfig(cfg))
	if err != nil {
		return err
	}
	defer func() { _ = client.Disconnect(context.Background()) }()

	users := mongo.NewUserRepository(db)
	staff := mongo.NewStaffRepository(db)
	if err := mongo.EnsureIndexes(ctx, staff); err != nil {
		return err
	}

	codec, err := token.NewCodec(tokenConfig(cfg))
	if err != nil {
		return err
	}

	identity, err := service.NewAuthService(users, staff, codec, log).CreateStaff(ctx, ports.CreateStaffInput{
		DisplayName: opts.name,
		Username:    opts.username,
		Email:       opts.email,
		Password:    opts.password,
		Role:        role,
	})
	if errors.Is(err, domain.ErrIdentityExists) {
		log.Info().Str("email", opts.email).Msg("staff account already exists, nothing to do")
		return nil
	}
	if err != nil {
		return err
	}

	log.Info().
		Str("id", identity.ID).
		Str("username", identity.Username).
		Str("role", string(identity.Role)).
		Msg("seed-admin complete")
	return nil
}

func newEnsureIndexesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ensure-indexes",
		Short: "Create the MongoDB indexes and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg, log, err := bootstrap(ctx)
			if err != nil {
				return err
			}

			client, db, err := mongo.Connect(ctx, mongoConfig(cfg))
			if err != nil {
				return err
			}
			defer func() { _ = client.Disconnect(context.Background()) }()

			if err := mongo.EnsureIndexes(ctx,
				mongo.NewUserRepository(db),
				mongo.NewStaffRepository(db),
				mongo.NewBlogRepository(db),
				mongo.NewCommentRepository(db),
			); err != nil {
				return err
			}
			log.Info().Str("database", cfg.Mongo.Database).Msg("indexes ensured")
			return nil
		},
	}
}
