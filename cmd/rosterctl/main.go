// Command rosterctl inspects and edits the traveller roster directly in its
// store, using the same STORE_* settings as the server.  Run it while the
// server is stopped: the server keeps its own in-memory copy.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/iliyamo/traveller-reservation/internal/config"
	"github.com/iliyamo/traveller-reservation/internal/model"
	"github.com/iliyamo/traveller-reservation/internal/repository"
	"github.com/iliyamo/traveller-reservation/internal/roster"
)

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, pflag.ErrHelp) {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if len(args) < 1 {
		printUsage(stderr)
		return fmt.Errorf("subcommand required")
	}
	if err := config.LoadDotEnv(); err != nil {
		return err
	}

	switch args[0] {
	case "list":
		return runList(ctx, args[1:], stdout, stderr)
	case "add":
		return runAdd(ctx, args[1:], stdout, stderr)
	case "remove":
		return runRemove(ctx, args[1:], stdout, stderr)
	case "seats":
		return runSeats(ctx, args[1:], stdout, stderr)
	case "-h", "--help", "help":
		printUsage(stdout)
		return nil
	default:
		printUsage(stderr)
		return fmt.Errorf("unknown subcommand: %q", args[0])
	}
}

func printUsage(w io.Writer) {
	fmt.Fprint(w, `Usage: rosterctl <subcommand> [flags]

Subcommands:
  list     Show booked travellers (-o table|json|yaml)
  add      Book a seat (--id, --name, --phone)
  remove   Cancel a booking (--id)
  seats    Show seat occupancy

Store flags (all subcommands):
  --driver        redis|mysql|sqlite (default $STORE_DRIVER)
  --key           snapshot key (default $STORE_KEY)
  --sqlite-path   database file for the sqlite driver (default $SQLITE_PATH)
`)
}

// errEphemeralStore rejects drivers whose data dies with the process.
var errEphemeralStore = errors.New("the memory driver does not persist between runs; use --driver redis, mysql or sqlite")

// storeFlags registers the store overrides shared by every subcommand.
type storeFlags struct {
	cfg config.StoreConfig
}

func newFlagSet(name string, stderr io.Writer) (*pflag.FlagSet, *storeFlags) {
	sf := &storeFlags{cfg: config.LoadStoreConfig()}
	fs := pflag.NewFlagSet("rosterctl "+name, pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&sf.cfg.Driver, "driver", sf.cfg.Driver, "store driver")
	fs.StringVar(&sf.cfg.Key, "key", sf.cfg.Key, "snapshot key")
	fs.StringVar(&sf.cfg.SQLitePath, "sqlite-path", sf.cfg.SQLitePath, "sqlite database file")
	return fs, sf
}

// open loads the roster.  A discarded snapshot is reported on stderr
// because a following add or remove would overwrite it.
func (sf *storeFlags) open(ctx context.Context, stderr io.Writer) (*roster.Manager, func() error, error) {
	sf.cfg.Driver = strings.ToLower(sf.cfg.Driver)
	if sf.cfg.Driver == config.DriverMemory || sf.cfg.Driver == "" {
		return nil, nil, errEphemeralStore
	}
	if err := sf.cfg.Validate(); err != nil {
		return nil, nil, err
	}
	store, closeFn, err := repository.Open(ctx, sf.cfg)
	if err != nil {
		return nil, nil, err
	}
	m := roster.Load(ctx, store, roster.WithKey(sf.cfg.Key))
	if issue := m.LoadIssue(); issue != nil {
		fmt.Fprintf(stderr, "warning: stored roster ignored: %v\n", issue)
	}
	return m, closeFn, nil
}

func runList(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs, sf := newFlagSet("list", stderr)
	var output string
	fs.StringVarP(&output, "output", "o", "table", "output format: table, json or yaml")
	if err := fs.Parse(args); err != nil {
		return err
	}
	m, closeFn, err := sf.open(ctx, stderr)
	if err != nil {
		return err
	}
	defer closeFn()

	return writeTravellers(stdout, output, m.List())
}

func writeTravellers(w io.Writer, format string, items []model.Reservation) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(items)
	case "yaml":
		enc := yaml.NewEncoder(w)
		if err := enc.Encode(items); err != nil {
			_ = enc.Close()
			return err
		}
		return enc.Close()
	case "table":
		if len(items) == 0 {
			_, err := fmt.Fprintln(w, "No Travellers Found")
			return err
		}
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tNAME\tPHONE\tBOOKING TIME")
		for _, it := range items {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", it.ID, it.Name, it.Phone, it.BookingTime)
		}
		return tw.Flush()
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

func runAdd(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs, sf := newFlagSet("add", stderr)
	var id, name, phone string
	fs.StringVar(&id, "id", "", "traveller identifier")
	fs.StringVar(&name, "name", "", "traveller name")
	fs.StringVar(&phone, "phone", "", "traveller phone")
	if err := fs.Parse(args); err != nil {
		return err
	}
	m, closeFn, err := sf.open(ctx, stderr)
	if err != nil {
		return err
	}
	defer closeFn()

	if _, err := m.Add(ctx, id, name, phone); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "booked %s; %d seats free\n", id, m.FreeSeatCount())
	return nil
}

func runRemove(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs, sf := newFlagSet("remove", stderr)
	var id string
	fs.StringVar(&id, "id", "", "traveller identifier")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if id == "" && fs.NArg() == 1 {
		id = fs.Arg(0)
	}
	m, closeFn, err := sf.open(ctx, stderr)
	if err != nil {
		return err
	}
	defer closeFn()

	_, becameEmpty, err := m.Remove(ctx, id)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "removed %s; %d seats free\n", id, m.FreeSeatCount())
	if becameEmpty {
		fmt.Fprintln(stdout, "roster is now empty")
	}
	return nil
}

func runSeats(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs, sf := newFlagSet("seats", stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}
	m, closeFn, err := sf.open(ctx, stderr)
	if err != nil {
		return err
	}
	defer closeFn()

	for i, taken := range m.SeatOccupancy() {
		status := "Available"
		if taken {
			status = "Reserved"
		}
		fmt.Fprintf(stdout, "seat %2d  %s\n", i+1, status)
	}
	fmt.Fprintf(stdout, "Available Free Seats: %d\n", m.FreeSeatCount())
	return nil
}
