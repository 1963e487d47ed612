package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"cinesocial/backend/internal/chathub"
	"cinesocial/backend/internal/logging"
	"cinesocial/backend/internal/storage"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type adminConfig struct {
	DatabaseDSN string `envconfig:"DATABASE_DSN" required:"true"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"warn"`
}

func usage() {
	fmt.Println("Usage: admin <command> [args]")
	fmt.Println("  migrate                        create or update all tables")
	fmt.Println("  history <userA> <userB> [n]    print the latest n messages between two users")
	fmt.Println("  unlink-telegram <chatID>       stop offline notifications to a Telegram chat")
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	_ = godotenv.Load()
	var cfg adminConfig
	if err := envconfig.Process("", &cfg); err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: "console"})

	db, err := storage.OpenPostgres(cfg.DatabaseDSN)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to connect database")
	}
	s := storage.NewStorageService(db, nil) // No redis needed for admin CLI
	ctx := context.Background()

	switch os.Args[1] {
	case "migrate":
		if err := storage.Migrate(db); err != nil {
			logging.Fatal().Err(err).Msg("migration failed")
		}
		fmt.Println("Migrations complete.")
	case "history":
		if len(os.Args) < 4 {
			fmt.Println("Usage: admin history <userA> <userB> [limit]")
			os.Exit(1)
		}
		a, errA := parseID(os.Args[2])
		b, errB := parseID(os.Args[3])
		if errA != nil || errB != nil {
			fmt.Println("User ids must be positive integers.")
			os.Exit(1)
		}
		limit := 0
		if len(os.Args) > 4 {
			if limit, err = strconv.Atoi(os.Args[4]); err != nil {
				fmt.Println("Invalid limit. Please provide an integer.")
				os.Exit(1)
			}
		}
		if err := printHistory(ctx, s, a, b, limit); err != nil {
			logging.Fatal().Err(err).Msg("failed to load history")
		}
	case "unlink-telegram":
		if len(os.Args) != 3 {
			fmt.Println("Usage: admin unlink-telegram <chatID>")
			os.Exit(1)
		}
		chatID, err := strconv.ParseInt(os.Args[2], 10, 64)
		if err != nil {
			fmt.Println("Invalid chat id.")
			os.Exit(1)
		}
		if err := s.UnlinkTelegramChat(ctx, chatID); err != nil {
			logging.Fatal().Err(err).Int64("chat_id", chatID).Msg("unlink failed")
		}
		fmt.Printf("Telegram chat %d unlinked.\n", chatID)
	default:
		fmt.Println("Unknown command")
		usage()
		os.Exit(1)
	}
}

func parseID(s string) (uint, error) {
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil || n == 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return uint(n), nil
}

// printHistory goes through the hub so the page size rules match the live service.
func printHistory(ctx context.Context, s storage.ChatStore, a, b uint, limit int) error {
	msgs, err := chathub.NewManagerService(s).GetChatHistory(ctx, a, b, limit, nil)
	if err != nil {
		return err
	}
	if len(msgs) == 0 {
		fmt.Println("No messages.")
		return nil
	}
	for _, m := range msgs {
		fmt.Printf("%s  #%d  %d -> %d: %s\n", m.Timestamp.Local().Format(time.DateTime), m.ID, m.SenderID, m.ReceiverID, m.Text)
	}
	return nil
}
