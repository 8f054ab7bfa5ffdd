package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/agenciacheck/pix-portal/internal/pix"
)

// Generate and inspect BR Codes offline.
//
// Usage:
//   pixcode generate -amount 2.50 -ref FB12345678 [-desc text] [-key k -name n -city c] [-static] [-png out.png]
//   pixcode parse <code>
//
// Merchant flags default to PIX_KEY, PIX_MERCHANT_NAME, PIX_MERCHANT_CITY and
// PIX_INITIATION from the environment or a .env file.

func main() {
	godotenv.Load()
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		usage(stderr)
		return 2
	}

	switch args[0] {
	case "generate":
		return generate(args[1:], stdout, stderr)
	case "parse":
		return parse(args[1:], stdout, stderr)
	default:
		usage(stderr)
		return 2
	}
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "usage: pixcode generate -amount AMOUNT [-ref TXID] [-desc TEXT] [-key KEY -name NAME -city CITY] [-static] [-png FILE]")
	fmt.Fprintln(w, "       pixcode parse CODE")
}

func generate(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("generate", flag.ContinueOnError)
	fs.SetOutput(stderr)

	amount := fs.String("amount", "", "amount in BRL, e.g. 12.50 or 12,50")
	ref := fs.String("ref", "", "transaction id (letters and digits)")
	desc := fs.String("desc", "", "free text shown to the payer")
	key := fs.String("key", os.Getenv("PIX_KEY"), "merchant PIX key")
	name := fs.String("name", os.Getenv("PIX_MERCHANT_NAME"), "merchant name")
	city := fs.String("city", os.Getenv("PIX_MERCHANT_CITY"), "merchant city")
	static := fs.Bool("static", false, "emit a reusable code (initiation 11)")
	pngPath := fs.String("png", "", "also write the QR code to this PNG file")
	size := fs.Int("size", pix.DefaultQRSize, "QR code size in pixels")

	if err := fs.Parse(args); err != nil {
		return 2
	}

	initiation, err := pix.ParseInitiation(os.Getenv("PIX_INITIATION"))
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	if *static {
		initiation = pix.InitiationStatic
	}

	value, err := pix.ParseAmount(*amount)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	svc := pix.NewService(pix.Merchant{
		Key:        *key,
		Name:       *name,
		City:       *city,
		Initiation: initiation,
	}, *size)

	payload, err := svc.GenerateCode(pix.GenerateParams{
		Amount:      value,
		Reference:   *ref,
		Description: *desc,
	})
	if errors.Is(err, pix.ErrNotConfigured) {
		fmt.Fprintln(stderr, "Error: -key, -name and -city are required (or PIX_KEY, PIX_MERCHANT_NAME, PIX_MERCHANT_CITY)")
		return 1
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	fmt.Fprintln(stdout, payload.Code)
	for _, w := range payload.Warnings {
		fmt.Fprintf(stderr, "warning: %s\n", w)
	}

	if *pngPath != "" {
		png, err := svc.RenderPNG(payload.Code, *size)
		if err != nil {
			fmt.Fprintf(stderr, "Error: rendering QR code: %v\n", err)
			return 1
		}
		if err := os.WriteFile(*pngPath, png, 0o644); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
	}

	return 0
}

func parse(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		usage(stderr)
		return 2
	}

	parsed, err := pix.ParsePayload(strings.Join(args, ""))
	if err != nil {
		fmt.Fprintf(stderr, "Invalid BR Code: %v\n", err)
		return 1
	}

	printFields(stdout, parsed.Fields, "")
	fmt.Fprintln(stdout)
	fmt.Fprintf(stdout, "pix:        %t\n", parsed.IsPix())
	fmt.Fprintf(stdout, "merchant:   %s, %s\n", parsed.MerchantName, parsed.MerchantCity)
	if parsed.MerchantKey != "" {
		fmt.Fprintf(stdout, "key:        %s\n", parsed.MerchantKey)
	}
	if parsed.MerchantURL != "" {
		fmt.Fprintf(stdout, "location:   %s\n", parsed.MerchantURL)
	}
	if parsed.AmountText != "" {
		fmt.Fprintf(stdout, "amount:     %s\n", parsed.AmountText)
	}
	if parsed.HasReference() {
		fmt.Fprintf(stdout, "reference:  %s\n", parsed.ReferenceLabel)
	}
	if parsed.Description != "" {
		fmt.Fprintf(stdout, "message:    %s\n", parsed.Description)
	}
	for _, advisory := range parsed.Advisories() {
		fmt.Fprintf(stderr, "warning: %v\n", advisory)
	}
	return 0
}

func printFields(w io.Writer, fields []pix.Field, indent string) {
	for _, f := range fields {
		if len(f.Children) > 0 {
			fmt.Fprintf(w, "%s%s\n", indent, f.ID)
			printFields(w, f.Children, indent+"  ")
			continue
		}
		fmt.Fprintf(w, "%s%s %02d %s\n", indent, f.ID, len(f.Value), f.Value)
	}
}
