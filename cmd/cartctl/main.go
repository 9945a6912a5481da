// cartctl is a small storefront client over the cart store: it keeps a cart
// in a local SQLite file and mirrors it to a Cart API server whenever a
// token from `cartctl login` is present.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/shopspring/decimal"

	"domcart/internal/cartapi"
	"domcart/internal/cartstore"
	"domcart/internal/cartstore/localdb"
	"domcart/internal/domain"
	"domcart/internal/platform/logger"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "cartctl:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	flags := flag.NewFlagSet("cartctl", flag.ContinueOnError)
	dbPath := flags.String("db", defaultDBPath(), "path to the local cart database")
	serverURL := flags.String("server", "http://localhost:8080", "cart API base URL")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if flags.NArg() == 0 {
		return fmt.Errorf("usage: cartctl [flags] login|logout|add|rm|ls|clear|sync")
	}

	ctx := context.Background()

	if err := os.MkdirAll(filepath.Dir(*dbPath), 0o755); err != nil {
		return err
	}
	local, err := localdb.Open(*dbPath)
	if err != nil {
		return err
	}
	defer local.Close()

	cmd, rest := flags.Arg(0), flags.Args()[1:]

	// Token commands only touch local storage.
	switch cmd {
	case "login":
		if len(rest) != 1 {
			return fmt.Errorf("usage: cartctl login <token>")
		}
		return local.SetToken(ctx, rest[0])
	case "logout":
		return local.ClearToken(ctx)
	}

	store, err := cartstore.New(ctx, local, local, cartapi.New(*serverURL), logger.New())
	if err != nil {
		return err
	}

	switch cmd {
	case "add":
		return addItem(ctx, store, rest)
	case "rm":
		if len(rest) != 1 {
			return fmt.Errorf("usage: cartctl rm <domain>")
		}
		store.RemoveItem(ctx, rest[0])
	case "ls":
		printCart(store)
		return nil
	case "clear":
		store.ClearCart(ctx)
	case "sync":
		store.SyncWithServer(ctx)
		printCart(store)
		return nil
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}

	store.Flush(ctx)
	return nil
}

func addItem(ctx context.Context, store *cartstore.Store, args []string) error {
	flags := flag.NewFlagSet("add", flag.ContinueOnError)
	name := flags.String("domain", "", "fully qualified domain name")
	price := flags.String("price", "", "per-year price")
	currency := flags.String("currency", "USD", "currency code")
	years := flags.Int("years", 1, "registration period in years")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if *name == "" || *price == "" {
		return fmt.Errorf("usage: cartctl add -domain <name> -price <amount> [-currency code] [-years n]")
	}

	parsedPrice, err := decimal.NewFromString(*price)
	if err != nil {
		return fmt.Errorf("price %q is not a number: %w", *price, err)
	}

	corrected := store.AddItem(ctx, domain.CartItem{
		DomainName:         *name,
		Price:              parsedPrice,
		Currency:           *currency,
		RegistrationPeriod: *years,
	})
	if corrected {
		fmt.Printf("note: registration period raised to the %s minimum\n", domain.TLD(*name))
	}
	store.Flush(ctx)
	return nil
}

func printCart(store *cartstore.Store) {
	items := store.Items()
	if len(items) == 0 {
		fmt.Println("cart is empty")
		return
	}
	for _, item := range items {
		fmt.Printf("%-30s %s %s x %dy\n", item.DomainName, item.Price.String(), item.Currency, item.RegistrationPeriod)
	}
	fmt.Printf("total: %s\n", store.TotalPrice().String())
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "cart.db"
	}
	return filepath.Join(home, ".domcart", "cart.db")
}
