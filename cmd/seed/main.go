package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/WaveLink/WL-Backend/internal/auth"
	"github.com/WaveLink/WL-Backend/internal/db"
	"github.com/WaveLink/WL-Backend/internal/seeds"
	"github.com/WaveLink/WL-Backend/internal/transit"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"golang.org/x/time/rate"
)

// CLI flags
var (
	file    = flag.String("file", "seed.yaml", "Path to the seed file")
	dsn     = flag.String("dsn", "", "Postgres DSN (default: env DATABASE_URL)")
	dryRun  = flag.Bool("dry-run", false, "Parse + validate only; no DB writes")
	confirm = flag.Bool("confirm", false, "Required to write to the database")
	migrate = flag.Bool("migrate", true, "Create the tables the seed writes to first")
	perSec  = flag.Float64("rate", 20, "Statements per second (0 = unlimited)")
	cost    = flag.Int("bcrypt-cost", 10, "bcrypt cost for admin passwords")
)

func main() {
	_ = godotenv.Load(".env.local")
	flag.Parse()
	if *dsn == "" {
		*dsn = os.Getenv("DATABASE_URL")
	}

	f, err := seeds.Load(*file)
	if err != nil {
		fatalf("seed file: %v", err)
	}
	fmt.Printf("Loaded %s: %s\n", *file, f.Summary())

	if *dryRun {
		fmt.Println("Dry run complete. No changes made.")
		return
	}
	if !*confirm {
		fatalf("Refusing to run without --confirm. Add --dry-run to preview.")
	}
	if *dsn == "" {
		fatalf("--dsn not provided and DATABASE_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if *migrate {
		svc, err := db.Connect(*dsn, false)
		if err != nil {
			fatalf("connect: %v", err)
		}
		if err := auth.Init(svc); err != nil {
			fatalf("migrate: %v", err)
		}
		if err := transit.Init(svc); err != nil {
			fatalf("migrate: %v", err)
		}
		svc.Close()
	}

	sqlDB, err := sql.Open("pgx", *dsn)
	if err != nil {
		fatalf("connect: %v", err)
	}
	defer sqlDB.Close()

	if err := sqlDB.PingContext(ctx); err != nil {
		fatalf("ping: %v", err)
	}

	hasher, err := auth.NewHasher(*cost)
	if err != nil {
		fatalf("hasher: %v", err)
	}

	limit := rate.Inf
	if *perSec > 0 {
		limit = rate.Limit(*perSec)
	}
	s := &seeds.Seeder{
		DB:      sqlDB,
		Hasher:  hasher,
		Limiter: rate.NewLimiter(limit, 1),
	}

	counts, err := s.Run(ctx, f)
	if err != nil {
		fatalf("seed: %v", err)
	}
	fmt.Printf("Inserted: terminals=%d routes=%d admins=%d (existing rows skipped)\n",
		counts.Terminals, counts.Routes, counts.Admins)
	fmt.Println("Seed complete")
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
