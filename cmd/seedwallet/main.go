package main // seedwallet creates wallet accounts for development and operations

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/joho/godotenv"

	"github.com/iliyamo/bus-seat-reservation/internal/config"
	"github.com/iliyamo/bus-seat-reservation/internal/database"
	"github.com/iliyamo/bus-seat-reservation/internal/repository"
	"github.com/iliyamo/bus-seat-reservation/internal/utils"
)

// The API never opens wallet accounts, so this tool is the only write path
// into wallet_accounts besides settlement debits.  The PIN is hashed here
// with the configured bcrypt cost; the plain PIN is never stored.
func main() {
	balance := flag.Uint64("balance", 0, "opening balance in cents")
	currency := flag.String("currency", "EUR", "ISO currency code")
	pin := flag.String("pin", "", "wallet PIN to hash (required)")
	flag.Parse()

	if *pin == "" {
		log.Fatal("seedwallet: -pin is required")
	}

	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("seedwallet: database: %v", err)
	}
	defer db.Close()

	hash, err := utils.HashPIN(*pin, cfg.BcryptCost)
	if err != nil {
		log.Fatalf("seedwallet: hash pin: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	id, err := repository.NewWalletRepo(db).Create(ctx, *balance, *currency, hash)
	if err != nil {
		log.Fatalf("seedwallet: create account: %v", err)
	}

	log.Printf("seedwallet: created account %d (balance=%d cents, currency=%s)", id, *balance, *currency)
}
