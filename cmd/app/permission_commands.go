package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/docg1701/iam-dashboard/cmd/app/commands"
	"github.com/docg1701/iam-dashboard/internal/app"
	"github.com/docg1701/iam-dashboard/internal/config"
)

func getPermissionCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "grant-permission",
			Usage: "Create or replace a permission grant for a user on an agent scope",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "user-id",
					Aliases:  []string{"u"},
					Required: true,
					Usage:    "Target user ID (UUID)",
				},
				&cli.StringFlag{
					Name:     "scope",
					Aliases:  []string{"s"},
					Required: true,
					Usage:    "Agent scope: clients, documents, reports, billing or admin",
				},
				&cli.StringFlag{
					Name:     "granted-by",
					Aliases:  []string{"g"},
					Required: true,
					Usage:    "ID of the administrator issuing the grant (UUID)",
				},
				&cli.BoolFlag{
					Name:  "create",
					Value: false,
					Usage: "Allow create operations",
				},
				&cli.BoolFlag{
					Name:  "read",
					Value: true,
					Usage: "Allow read operations",
				},
				&cli.BoolFlag{
					Name:  "update",
					Value: false,
					Usage: "Allow update operations",
				},
				&cli.BoolFlag{
					Name:  "delete",
					Value: false,
					Usage: "Allow delete operations",
				},
				&cli.StringFlag{
					Name:  "expires-at",
					Usage: "Optional expiry in RFC 3339 format (omit for a non-expiring grant)",
				},
				&cli.StringFlag{
					Name:    "format",
					Aliases: []string{"f"},
					Value:   "text",
					Usage:   "Output format: 'text' or 'json'",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				permissionUseCase, err := container.PermissionUseCase()
				if err != nil {
					return err
				}

				return commands.RunGrantPermission(
					ctx,
					permissionUseCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("user-id"),
					cmd.String("scope"),
					cmd.String("granted-by"),
					cmd.Bool("create"),
					cmd.Bool("read"),
					cmd.Bool("update"),
					cmd.Bool("delete"),
					cmd.String("expires-at"),
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "revoke-permission",
			Usage: "Remove a user's permission grant for an agent scope",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "user-id",
					Aliases:  []string{"u"},
					Required: true,
					Usage:    "Target user ID (UUID)",
				},
				&cli.StringFlag{
					Name:     "scope",
					Aliases:  []string{"s"},
					Required: true,
					Usage:    "Agent scope: clients, documents, reports, billing or admin",
				},
				&cli.StringFlag{
					Name:     "revoked-by",
					Aliases:  []string{"r"},
					Required: true,
					Usage:    "ID of the administrator revoking the grant (UUID)",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				permissionUseCase, err := container.PermissionUseCase()
				if err != nil {
					return err
				}

				return commands.RunRevokePermission(
					ctx,
					permissionUseCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("user-id"),
					cmd.String("scope"),
					cmd.String("revoked-by"),
				)
			},
		},
		{
			Name:  "list-permissions",
			Usage: "List all permission grants held by a user",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "user-id",
					Aliases:  []string{"u"},
					Required: true,
					Usage:    "Target user ID (UUID)",
				},
				&cli.StringFlag{
					Name:    "format",
					Aliases: []string{"f"},
					Value:   "text",
					Usage:   "Output format: 'text' or 'json'",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				permissionUseCase, err := container.PermissionUseCase()
				if err != nil {
					return err
				}

				return commands.RunListPermissions(
					ctx,
					permissionUseCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("user-id"),
					cmd.String("format"),
				)
			},
		},
	}
}
