package main

import (
	"bufio"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"golang.org/x/net/context"

	"github.com/pkg/errors"
	"github.com/urfave/cli"

	"github.com/nitekry/BLE-Recon/dedup"
	"github.com/nitekry/BLE-Recon/driver/bluez"
	"github.com/nitekry/BLE-Recon/driver/replay"
	"github.com/nitekry/BLE-Recon/filter"
	"github.com/nitekry/BLE-Recon/scan"
)

// curr holds state shared across commands of one shell session. The filter
// lives for the whole process; the scan session is rebuilt per scan pass.
var curr struct {
	filter  *filter.Filter
	session *scan.Session
	seen    []dedup.Device
}

var errNoScan = errors.New("no devices from last scan; run a scan first")

func main() {
	app := cli.NewApp()

	app.Name = "blerecon"
	app.Usage = "scan, filter and deduplicate BLE advertisements"
	app.Version = "0.1.0"
	app.Action = cli.ShowAppHelp

	app.Commands = []cli.Command{
		{
			Name:    "scan",
			Aliases: []string{"s"},
			Usage:   "Run one scan pass",
			Action:  cmdScan,
			Flags: []cli.Flag{
				cli.DurationFlag{Name: "duration, d", Value: 10 * time.Second, Usage: "scan duration"},
				cli.BoolTFlag{Name: "dedup", Usage: "suppress unchanged devices"},
				cli.StringFlag{Name: "driver", Value: "bluez", Usage: "scan driver (bluez / replay)"},
				cli.StringFlag{Name: "adapter", Value: "hci0", Usage: "bluez adapter id"},
			},
		},
		{
			Name:   "seed",
			Usage:  "Load the built-in Apple/Google deny catalog",
			Action: cmdSeed,
		},
		{
			Name:      "allow",
			Usage:     "Add an allow-list pattern: allow <mac|oui|name|uuid|payload> <value>",
			Action:    func(c *cli.Context) error { return cmdAdd(c, filter.Allow) },
			ArgsUsage: "<category> <value>",
		},
		{
			Name:      "deny",
			Usage:     "Add a deny-list pattern: deny <mac|oui|name|uuid|payload> <value>",
			Action:    func(c *cli.Context) error { return cmdAdd(c, filter.Deny) },
			ArgsUsage: "<category> <value>",
		},
		{
			Name:      "clear",
			Usage:     "Clear a list: clear <allow|deny|all>",
			Action:    cmdClear,
			ArgsUsage: "<allow|deny|all>",
		},
		{
			Name:      "enable",
			Usage:     "Re-enable a non-empty list: enable <allow|deny>",
			Action:    cmdEnable,
			ArgsUsage: "<allow|deny>",
		},
		{
			Name:   "disable",
			Usage:  "Disable both lists without dropping patterns",
			Action: cmdDisable,
		},
		{
			Name:    "status",
			Aliases: []string{"f"},
			Usage:   "Show filter status",
			Action:  cmdStatus,
		},
		{
			Name:   "devices",
			Usage:  "List devices tracked in the last scan pass",
			Action: cmdDevices,
		},
		{
			Name:      "pick",
			Usage:     "Filter a device from the last scan: pick <n> <deny-mac|deny-oui|deny-name|allow-mac|allow-oui>",
			Action:    cmdPick,
			ArgsUsage: "<n> <action>",
		},
		{
			Name:    "shell",
			Aliases: []string{"sh"},
			Usage:   "Entering interactive mode",
			Action:  func(c *cli.Context) { shell(app) },
		},
	}

	app.Before = setup
	app.Run(os.Args)
}

func setup(c *cli.Context) error {
	if curr.filter == nil {
		curr.filter = filter.New()
	}
	return nil
}

func newDriver(c *cli.Context) (scan.Driver, error) {
	switch c.String("driver") {
	case "bluez":
		return bluez.New(c.String("adapter")), nil
	case "replay":
		return replay.New(300 * time.Millisecond), nil
	}
	return nil, errors.Errorf("unknown driver %q", c.String("driver"))
}

func cmdScan(c *cli.Context) error {
	drv, err := newDriver(c)
	if err != nil {
		return err
	}
	if curr.session == nil {
		curr.session = scan.NewSession(curr.filter)
	}
	curr.session.SetDedup(c.Bool("dedup"))

	fmt.Printf("Scanning for %s...\n", c.Duration("duration"))
	ctx, cancel := sigCtx(context.WithTimeout(context.Background(), c.Duration("duration")))
	defer cancel()

	err = curr.session.Run(ctx, drv, func(res scan.Result) {
		renderResult(os.Stdout, res)
	})
	curr.seen = curr.session.Seen()
	renderSummary(os.Stdout, curr.session.Summary(), curr.session.Dedup())
	return chkErr(err)
}

func cmdSeed(c *cli.Context) error {
	n := curr.filter.Seed()
	fmt.Printf("Loaded %d built-in deny entries\n", n)
	return nil
}

func parseCategory(s string) (filter.Category, error) {
	switch strings.ToLower(s) {
	case "mac":
		return filter.MAC, nil
	case "oui":
		return filter.OUI, nil
	case "name":
		return filter.Name, nil
	case "uuid":
		return filter.UUID, nil
	case "payload":
		return filter.Payload, nil
	}
	return 0, errors.Errorf("unknown category %q (mac, oui, name, uuid, payload)", s)
}

func cmdAdd(c *cli.Context, k filter.ListKind) error {
	if c.NArg() < 2 {
		return errors.New("usage: <category> <value>")
	}
	cat, err := parseCategory(c.Args().Get(0))
	if err != nil {
		return err
	}
	value := strings.Join(c.Args()[1:], " ")
	if err := curr.filter.Add(k, cat, value); err != nil {
		return err
	}
	fmt.Printf("Added %s %s pattern: %s\n", k, cat, strings.ToUpper(strings.TrimSpace(value)))
	return nil
}

func cmdClear(c *cli.Context) error {
	switch c.Args().First() {
	case "allow":
		curr.filter.Clear(filter.Allow)
	case "deny":
		curr.filter.Clear(filter.Deny)
	case "all", "":
		curr.filter.ClearAll()
	default:
		return errors.Errorf("unknown list %q", c.Args().First())
	}
	fmt.Printf("Cleared\n")
	return nil
}

func cmdEnable(c *cli.Context) error {
	switch c.Args().First() {
	case "allow":
		curr.filter.Enable(filter.Allow)
	case "deny":
		curr.filter.Enable(filter.Deny)
	default:
		return errors.Errorf("unknown list %q", c.Args().First())
	}
	return cmdStatus(c)
}

func cmdDisable(c *cli.Context) error {
	curr.filter.Disable()
	fmt.Printf("Filters disabled\n")
	return nil
}

func cmdStatus(c *cli.Context) error {
	renderStatus(os.Stdout, curr.filter.Status())
	return nil
}

func cmdDevices(c *cli.Context) error {
	if len(curr.seen) == 0 {
		return errNoScan
	}
	for i, d := range curr.seen {
		if d.Name != "" {
			fmt.Printf("%3d - %s (%s) %d dBm\n", i+1, d.Addr, d.Name, d.RSSI)
		} else {
			fmt.Printf("%3d - %s %d dBm\n", i+1, d.Addr, d.RSSI)
		}
	}
	return nil
}

func cmdPick(c *cli.Context) error {
	if len(curr.seen) == 0 {
		return errNoScan
	}
	if c.NArg() < 2 {
		return errors.New("usage: pick <n> <deny-mac|deny-oui|deny-name|allow-mac|allow-oui>")
	}
	n, err := strconv.Atoi(c.Args().Get(0))
	if err != nil || n < 1 || n > len(curr.seen) {
		return errors.Errorf("invalid selection %q (1-%d)", c.Args().Get(0), len(curr.seen))
	}
	dev := curr.seen[n-1]

	switch c.Args().Get(1) {
	case "deny-mac":
		err = curr.filter.Add(filter.Deny, filter.MAC, dev.Addr)
	case "deny-oui":
		err = curr.filter.Add(filter.Deny, filter.OUI, dev.Addr)
	case "deny-name":
		if dev.Name == "" {
			return errors.New("device has no name")
		}
		err = curr.filter.Add(filter.Deny, filter.Name, dev.Name)
	case "allow-mac":
		err = curr.filter.Add(filter.Allow, filter.MAC, dev.Addr)
	case "allow-oui":
		err = curr.filter.Add(filter.Allow, filter.OUI, dev.Addr)
	default:
		return errors.Errorf("unknown action %q", c.Args().Get(1))
	}
	if err != nil {
		return err
	}
	fmt.Printf("Filter applied; it takes effect on the next scan\n")
	return nil
}

func shell(app *cli.App) {
	reader := bufio.NewReader(os.Stdin)
	sigs := make(chan os.Signal, 1)
	go func() {
		for range sigs {
			fmt.Printf("\n(type quit or q to exit)\n")
		}
	}()
	defer close(sigs)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	for {
		fmt.Print("blerecon > ")
		text, _ := reader.ReadString('\n')
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		if text == "quit" || text == "q" {
			break
		}
		app.Run(append(os.Args[:1], strings.Split(text, " ")...))
	}
	signal.Stop(sigs)
}

// sigCtx cancels the context on SIGINT/SIGTERM.
func sigCtx(ctx context.Context, cancel context.CancelFunc) (context.Context, context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-sigs:
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigs)
	}()
	return ctx, cancel
}

func chkErr(err error) error {
	switch errors.Cause(err) {
	case context.DeadlineExceeded:
		// Specified duration passed, which is the expected case.
		return nil
	case context.Canceled:
		fmt.Printf("\n(Canceled)\n")
		return nil
	}
	return err
}
