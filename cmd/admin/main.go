package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/gokatarajesh/tortaquiz/internal/app"
	"github.com/gokatarajesh/tortaquiz/internal/auth"
	"github.com/gokatarajesh/tortaquiz/internal/config"
	"github.com/gokatarajesh/tortaquiz/internal/db/repository"
)

func main() {
	var (
		command    = flag.String("command", "count", "Admin command: count, reset, pool, token or hash")
		envFile    = flag.String("env", "configs/.env", "Optional dotenv file")
		theme      = flag.String("theme", "", "Restrict count/reset to a theme")
		difficulty = flag.String("difficulty", "", "Restrict count/reset to a difficulty")
		ageGroup   = flag.String("age-group", "", "Restrict count/reset to an age group")
		password   = flag.String("password", "", "Password to hash (hash command)")
	)
	flag.Parse()

	log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()

	// hash needs no configuration: it produces ADMIN_PASSWORD_HASH.
	if *command == "hash" {
		hash, err := auth.HashPassword(*password)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to hash password")
		}
		fmt.Println(hash)
		return
	}

	if err := godotenv.Load(*envFile); err != nil {
		log.Debug().Err(err).Str("file", *envFile).Msg("no dotenv file loaded")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cfg, err := config.Load(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	if *command == "token" {
		resp, err := app.NewAuthService(cfg, log.Logger).IssueToken()
		if err != nil {
			log.Fatal().Err(err).Msg("failed to issue admin token")
		}
		printJSON(resp)
		return
	}

	infra, err := app.Connect(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect")
	}
	defer func() {
		if err := infra.Close(); err != nil {
			log.Warn().Err(err).Msg("close failed")
		}
	}()

	filter := repository.Filter{Theme: *theme, Difficulty: *difficulty, AgeGroup: *ageGroup}

	switch *command {
	case "count":
		n, err := infra.Questions.CountUsed(ctx, filter)
		if err != nil {
			log.Fatal().Err(err).Msg("count failed")
		}
		printJSON(map[string]int64{"count": n})

	case "reset":
		n, err := infra.Questions.ResetUsed(ctx, filter)
		if err != nil {
			log.Fatal().Err(err).Msg("reset failed")
		}
		log.Info().Int64("reset", n).Msg("used questions returned to the pool")
		printJSON(map[string]int64{"reset": n})

	case "pool":
		rows, err := infra.Questions.PartitionCounts(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("pool listing failed")
		}
		printJSON(rows)

	default:
		log.Fatal().Str("command", *command).Msg("unknown command. Use: count, reset, pool, token or hash")
	}
}

func printJSON(v interface{}) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		log.Fatal().Err(err).Msg("failed to encode output")
	}
}
