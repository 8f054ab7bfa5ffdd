package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/joho/godotenv"
	_ "modernc.org/sqlite"

	"github.com/agenciacheck/pix-portal/internal/config"
	"github.com/agenciacheck/pix-portal/internal/db"
	"github.com/agenciacheck/pix-portal/internal/logging"
	"github.com/agenciacheck/pix-portal/internal/pix"
)

// Re-validate stored charges: every code must still parse, and the parsed
// amount and reference must match the stored columns.
//
// Usage:
//   go run ./cmd/verify-charges [-limit 1000]

// BrokenCharge is a stored charge that failed verification.
type BrokenCharge struct {
	Charge db.Charge
	Reason string
}

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Fprintln(os.Stderr, "No .env file found, using environment variables")
	}
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("verify-charges", flag.ContinueOnError)
	fs.SetOutput(stderr)
	limit := fs.Int64("limit", 1000, "number of most recent charges to check")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "Failed to load config: %v\n", err)
		return 1
	}
	logger := logging.New(stderr, cfg.LogLevel, cfg.LogFormat)

	database, err := sql.Open("sqlite", cfg.DatabaseURL)
	if err != nil {
		logger.Error("Failed to connect to database: %v", err)
		return 1
	}
	defer database.Close()

	ctx := context.Background()
	if err := db.Migrate(ctx, database); err != nil {
		logger.Error("Failed to migrate database: %v", err)
		return 1
	}
	queries := db.New(database)

	broken, checked, err := verifyCharges(ctx, queries, *limit)
	if err != nil {
		logger.Error("Failed to verify charges: %v", err)
		return 1
	}

	printReport(stdout, checked, broken)

	level := "success"
	if len(broken) > 0 {
		level = "warning"
	}
	if _, err := queries.CreateLog(ctx, db.CreateLogParams{
		Subsystem: "verify",
		Level:     level,
		Message:   fmt.Sprintf("Verified %d charges, %d broken", checked, len(broken)),
	}); err != nil {
		logger.Warn("Failed to write audit log: %v", err)
	}

	if len(broken) > 0 {
		return 1
	}
	return 0
}

// verifyCharges checks the most recent charges and returns those that fail.
func verifyCharges(ctx context.Context, queries *db.Queries, limit int64) ([]BrokenCharge, int, error) {
	charges, err := queries.ListCharges(ctx, limit)
	if err != nil {
		return nil, 0, err
	}

	var broken []BrokenCharge
	for _, c := range charges {
		if reason := verifyCharge(c); reason != "" {
			broken = append(broken, BrokenCharge{Charge: c, Reason: reason})
		}
	}
	return broken, len(charges), nil
}

func verifyCharge(c db.Charge) string {
	parsed, err := pix.ParsePayload(c.Code)
	if err != nil {
		return err.Error()
	}
	if !parsed.IsPix() {
		return fmt.Sprintf("GUI %q is not %s", parsed.GUI, pix.GUI)
	}
	if parsed.AmountText != c.Amount {
		return fmt.Sprintf("code amount %s, stored %s", parsed.AmountText, c.Amount)
	}
	if parsed.ReferenceLabel != c.Reference {
		return fmt.Sprintf("code reference %s, stored %s", parsed.ReferenceLabel, c.Reference)
	}
	return ""
}

func printReport(w io.Writer, checked int, broken []BrokenCharge) {
	fmt.Fprintln(w, strings.Repeat("=", 100))
	fmt.Fprintln(w, "PIX CHARGE VERIFICATION REPORT")
	fmt.Fprintln(w, strings.Repeat("=", 100))
	fmt.Fprintf(w, "\nCharges checked: %d\n", checked)
	fmt.Fprintf(w, "Broken charges: %d\n\n", len(broken))

	if len(broken) == 0 {
		fmt.Fprintln(w, "✓ All charges verified")
		return
	}

	fmt.Fprintf(w, "%-36s %-12s %-12s %-25s %s\n", "ID", "Date", "Amount", "Reference", "Reason")
	fmt.Fprintln(w, strings.Repeat("-", 100))
	for _, b := range broken {
		fmt.Fprintf(w, "%-36s %-12s %-12s %-25s %s\n",
			b.Charge.ID,
			b.Charge.CreatedAt.Format("2006-01-02"),
			b.Charge.Amount,
			b.Charge.Reference,
			b.Reason,
		)
	}
	fmt.Fprintln(w)
}
