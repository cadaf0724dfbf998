package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/bookride/backend/pkg/config"
	"github.com/bookride/backend/pkg/db"
	"github.com/bookride/backend/pkg/logger"
	"github.com/bookride/backend/pkg/migrate"
)

const usage = `usage: migrate [flags] <command> [args]

commands:
  up               apply all pending migrations
  down             roll back the latest migration
  status           print migration status
  version          print the current db version
  up-to <ver>      migrate up to a specific version
  down-to <ver>    migrate down to a specific version
  goto <ver>       migrate up or down to a specific version
  create <name>    create a new SQL migration file
  validate         validate migration filenames and headers
`

func main() {
	dir := flag.String("dir", migrate.DefaultDir, "migrations directory")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(2)
	}
	command := args[0]

	// create/validate never touch the database
	switch command {
	case "create":
		if len(args) < 2 {
			fmt.Fprintln(os.Stderr, "create requires a migration name")
			os.Exit(2)
		}
		path, err := migrate.CreateSQLMigration(*dir, args[1])
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Println(path)
		return
	case "validate":
		if err := migrate.ValidateDir(*dir); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Println("migrations ok")
		return
	}

	_ = godotenv.Load()

	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "bookride-migrate"})

	cfg, err := config.Load()
	if err != nil {
		logg.Error(ctx, "config load failed", err)
		os.Exit(1)
	}

	client, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "database connection failed", err)
		os.Exit(1)
	}
	defer client.Close()

	sqlDB, err := client.DB().DB()
	if err != nil {
		logg.Error(ctx, "extracting sql.DB failed", err)
		os.Exit(1)
	}

	switch command {
	case "up", "down", "status", "version":
		err = migrate.Run(ctx, sqlDB, *dir, command)
	case "up-to", "down-to":
		if len(args) < 2 {
			fmt.Fprintf(os.Stderr, "%s requires a version\n", command)
			os.Exit(2)
		}
		err = migrate.Run(ctx, sqlDB, *dir, command, args[1])
	case "goto":
		if len(args) < 2 {
			fmt.Fprintln(os.Stderr, "goto requires a version")
			os.Exit(2)
		}
		err = migrate.MigrateToVersion(ctx, sqlDB, *dir, args[1])
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", command)
		flag.Usage()
		os.Exit(2)
	}

	if err != nil {
		logg.Error(ctx, "migration command failed", err)
		os.Exit(1)
	}
}
