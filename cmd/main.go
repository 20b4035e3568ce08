package main

import (
	"fmt"
	"log"
	"os"

	"presencia/backend/foundation/web"
	"presencia/backend/internal/auth"
	"presencia/backend/internal/commands"
	"presencia/backend/internal/pkg/config"
	"presencia/backend/internal/pkg/repository/postgresql"
	"presencia/backend/internal/router"

	"github.com/ardanlabs/conf"
	"github.com/redis/go-redis/v9"
)

// build is set through ldflags by the release pipeline.
var build = "develop"

type cli struct {
	conf.Version
	Config      string `conf:"default:config.yaml,help:path to the yaml configuration file"`
	MigrateOnly bool   `conf:"default:false,help:run pending migrations and exit"`
}

func main() {
	if err := run(); err != nil {
		log.Fatalln("main error:", err)
	}
}

func run() error {
	args := cli{
		Version: conf.Version{
			SVN:  build,
			Desc: "presencia attendance backend",
		},
	}

	if err := conf.Parse(os.Args[1:], "PRESENCIA", &args); err != nil {
		switch err {
		case conf.ErrHelpWanted:
			usage, err := conf.Usage("PRESENCIA", &args)
			if err != nil {
				return err
			}
			fmt.Println(usage)
			return nil
		case conf.ErrVersionWanted:
			version, err := conf.VersionString("PRESENCIA", &args)
			if err != nil {
				return err
			}
			fmt.Println(version)
			return nil
		}
		return err
	}

	cfg, err := config.NewConfig(args.Config)
	if err != nil {
		return err
	}

	postgresDB := postgresql.New(postgresql.Config{
		Username:   cfg.DBUsername,
		Password:   cfg.DBPassword,
		Host:       cfg.DBHost,
		Port:       cfg.DBPort,
		Name:       cfg.DBName,
		DisableTLS: cfg.DisableTLS,
	})

	commands.MigrateUP(postgresDB)
	if args.MigrateOnly {
		log.Println("migrations applied")
		return nil
	}

	redisDB := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})

	r := router.NewRouter(
		web.NewApp(),
		postgresDB,
		redisDB,
		auth.NewAuth(cfg.JWTKey),
		cfg,
	)

	return r.Init()
}
