package main

import (
	"database/sql"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/ledger/backend/internal/infrastructure/config"
	"github.com/ledger/backend/internal/infrastructure/logger"
	"github.com/ledger/backend/internal/infrastructure/migration"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

func main() {
	var (
		dir      string
		logLevel string
	)
	flag.StringVar(&dir, "path", "migrations", "migrations directory")
	flag.StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	flag.Usage = usage
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(1)
	}
	command, args := args[0], args[1:]

	log, err := logger.New(&logger.Config{
		Level:      logLevel,
		Format:     "console",
		Output:     "stdout",
		TimeFormat: "2006-01-02 15:04:05",
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	if dir, err = filepath.Abs(dir); err != nil {
		log.Fatal("resolve migrations directory", zap.Error(err))
	}

	// create and list work without a database
	switch command {
	case "create":
		if len(args) == 0 {
			log.Fatal("usage: migrate create <name>")
		}
		f, err := migration.Create(dir, args[0])
		if err != nil {
			log.Fatal("create migration", zap.Error(err))
		}
		log.Info("migration pair created",
			zap.String("version", f.Version),
			zap.String("up", f.UpPath),
			zap.String("down", f.DownPath),
		)
		return
	case "list":
		names, err := migration.List(dir)
		if err != nil {
			log.Fatal("list migrations", zap.Error(err))
		}
		if len(names) == 0 {
			log.Info("no migrations found", zap.String("dir", dir))
			return
		}
		for _, name := range names {
			fmt.Println(name)
		}
		return
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("load configuration", zap.Error(err))
	}

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("open database", zap.Error(err))
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		log.Fatal("ping database", zap.Error(err))
	}

	runner, err := migration.NewRunner(db, dir, log)
	if err != nil {
		log.Fatal("create migration runner", zap.Error(err))
	}
	defer runner.Close()

	switch command {
	case "up":
		err = runner.Up()
	case "down":
		err = runner.Down()
	case "step":
		n, perr := intArg(args, "migrate step <n>")
		if perr != nil {
			log.Fatal(perr.Error())
		}
		err = runner.Steps(n)
	case "version":
		version, dirty, verr := runner.Version()
		if verr != nil {
			log.Fatal("read schema version", zap.Error(verr))
		}
		if version == 0 {
			log.Info("no migrations applied")
		} else {
			log.Info("schema version", zap.Uint("version", version), zap.Bool("dirty", dirty))
		}
		return
	case "force":
		v, perr := intArg(args, "migrate force <version>")
		if perr != nil {
			log.Fatal(perr.Error())
		}
		err = runner.Force(v)
	default:
		log.Error("unknown command", zap.String("command", command))
		usage()
		os.Exit(1)
	}
	if err != nil {
		log.Fatal("migration failed", zap.String("command", command), zap.Error(err))
	}
}

func intArg(args []string, hint string) (int, error) {
	if len(args) == 0 {
		return 0, fmt.Errorf("missing argument, usage: %s", hint)
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, fmt.Errorf("argument %q is not a number, usage: %s", args[0], hint)
	}
	return n, nil
}

func usage() {
	fmt.Fprintln(os.Stderr, `ledger schema migration tool

usage: migrate [flags] <command> [arguments]

commands:
  up               apply all pending migrations
  down             roll back all migrations
  step <n>         apply n migrations, negative n rolls back
  version          show the current schema version
  force <version>  overwrite the recorded version (dirty-state recovery)
  create <name>    scaffold a new up/down migration pair
  list             list migration pairs in the migrations directory

flags:
  -path string       migrations directory (default "migrations")
  -log-level string  log level (default "info")

database settings come from config.toml or LEDGER_DATABASE_* variables.`)
}
