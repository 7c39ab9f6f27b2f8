// Package main implements the operator CLI for the POS client. Every remote
// read flows through the client-side entity cache; stock adjustments go
// through the optimistic mutation coordinator.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/caraseli02/inventory-app-sub002/internal/catalog"
	"github.com/caraseli02/inventory-app-sub002/internal/config"
	"github.com/caraseli02/inventory-app-sub002/internal/mutation"
	"github.com/caraseli02/inventory-app-sub002/internal/prefs"
	"github.com/caraseli02/inventory-app-sub002/internal/remote"
	"github.com/caraseli02/inventory-app-sub002/internal/session"
	"github.com/caraseli02/inventory-app-sub002/pkg/bootstrap"
	"github.com/caraseli02/inventory-app-sub002/pkg/config/configloader"
)

const appName = "posclient"

const usage = `Usage: posclient <command> [flags]

Commands:
  list      show the product list (filterable, sortable)
  scan      look up a product by barcode
  history   show a product's stock movements
  adjust    record a stock adjustment (optimistic)
`

func main() {
	if err := run(); err != nil {
		log.Printf("posclient failed: %v", err)
		os.Exit(1)
	}
}

func run() error {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("missing command")
	}

	cfg, err := configloader.Load[*config.ClientConfig](appName)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logger := bootstrap.NewLogger(cfg.Log.Level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := remote.NewClient(cfg.API.BaseURL, cfg.API.Timeout, logger)
	sess := session.New(client, session.Options{
		CacheTTL:         cfg.Cache.TTL,
		RetryAttempts:    cfg.Retry.Attempts,
		ConfirmThreshold: cfg.Mutation.ConfirmThreshold,
		NotifyCapacity:   cfg.Notify.Capacity,
		NotifyTTL:        cfg.Notify.TTL,
	}, logger)
	defer sess.Close()

	store := prefs.New(cfg.Prefs.Path, logger)

	switch os.Args[1] {
	case "list":
		err = cmdList(ctx, sess, store, os.Args[2:])
	case "scan":
		err = cmdScan(ctx, sess, os.Args[2:])
	case "history":
		err = cmdHistory(ctx, sess, os.Args[2:])
	case "adjust":
		err = cmdAdjust(ctx, sess, os.Args[2:])
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", os.Args[1])
	}

	printNotifications(sess)
	return err
}

func cmdList(ctx context.Context, sess *session.Session, store *prefs.Store, args []string) error {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	search := fs.String("search", "", "free-text filter over name and barcode")
	category := fs.String("category", "", "exact category filter")
	lowStock := fs.Bool("low-stock", false, "only products below their configured minimum")
	sortField := fs.String("sort", store.Get("sortField"), "sort field: name, stock, price, category")
	sortDir := fs.String("dir", store.Get("sortDir"), "sort direction: asc, desc")
	if err := fs.Parse(args); err != nil {
		return err
	}

	for name, value := range map[string]any{
		"search":       *search,
		"category":     *category,
		"lowStockOnly": *lowStock,
	} {
		if err := sess.SetFilter(name, value); err != nil {
			return err
		}
	}
	if *sortField != "" {
		if err := sess.SetFilter("sortField", *sortField); err != nil {
			return err
		}
		store.Set("sortField", *sortField)
	}
	if *sortDir != "" {
		if err := sess.SetFilter("sortDir", *sortDir); err != nil {
			return err
		}
		store.Set("sortDir", *sortDir)
	}

	result, err := sess.Visible(ctx)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tPRICE\tSTOCK\tMIN\tLOW")
	for _, p := range result.Items {
		low := ""
		if p.LowStock() {
			low = "!"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%d\t%s\n",
			shortID(p.ID), p.Name, p.Category, p.Price.StringFixed(2), p.Stock, p.MinStock, low)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Printf("\n%d of %d products; categories: %s\n",
		result.Filtered, result.Total, strings.Join(result.Categories, ", "))
	return nil
}

func cmdScan(ctx context.Context, sess *session.Session, args []string) error {
	fs := flag.NewFlagSet("scan", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: posclient scan <barcode>")
	}

	product, err := sess.LookupBarcode(ctx, fs.Arg(0))
	if err != nil {
		return err
	}
	if product == nil {
		fmt.Printf("No product with barcode %s\n", fs.Arg(0))
		return nil
	}
	fmt.Printf("%s  %s  %s  stock=%d min=%d\n",
		product.ID, product.Name, product.Price.StringFixed(2), product.Stock, product.MinStock)
	return nil
}

func cmdHistory(ctx context.Context, sess *session.Session, args []string) error {
	fs := flag.NewFlagSet("history", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: posclient history <product-id>")
	}

	movements, err := sess.Movements(ctx, fs.Arg(0))
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "WHEN\tDIRECTION\tQUANTITY\tSTATE")
	for _, m := range movements {
		state := "confirmed"
		if m.Pending() {
			state = "pending"
		}
		fmt.Fprintf(tw, "%s\t%s\t%+d\t%s\n",
			m.CreatedAt.Format("2006-01-02 15:04:05"), m.Direction, m.Quantity, state)
	}
	return tw.Flush()
}

func cmdAdjust(ctx context.Context, sess *session.Session, args []string) error {
	fs := flag.NewFlagSet("adjust", flag.ExitOnError)
	qty := fs.Int("qty", 0, "quantity to move (positive integer)")
	dir := fs.String("dir", "", "direction: IN or OUT")
	yes := fs.Bool("yes", false, "confirm large quantities without prompting")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: posclient adjust <product-id> -qty N -dir IN|OUT")
	}

	confirm := promptConfirm
	if *yes {
		confirm = func(string, int) bool { return true }
	}

	applied, err := sess.AdjustStock(ctx, mutation.AdjustRequest{
		ProductID: fs.Arg(0),
		Quantity:  *qty,
		Direction: catalog.Direction(strings.ToUpper(*dir)),
		Confirm:   confirm,
	})
	if err != nil {
		return err
	}
	if !applied {
		fmt.Println("Adjustment abandoned")
	}
	return nil
}

// promptConfirm asks the operator to confirm an unusually large quantity.
func promptConfirm(productID string, quantity int) bool {
	fmt.Printf("Move %d units for product %s? [y/N]: ", quantity, shortID(productID))
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

func printNotifications(sess *session.Session) {
	for _, n := range sess.Notifications() {
		fmt.Printf("[%s] %s\n", n.Level, n.Message)
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
