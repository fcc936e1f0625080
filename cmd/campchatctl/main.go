package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"go.uber.org/fx"

	"github.com/matheus3301/campchat/internal/chat"
	"github.com/matheus3301/campchat/internal/config"
	"github.com/matheus3301/campchat/internal/console"
	"github.com/matheus3301/campchat/internal/origin"
	"github.com/matheus3301/campchat/internal/profile"
	"github.com/matheus3301/campchat/internal/rooms"
	"github.com/matheus3301/campchat/internal/widget"
)

const requestTimeout = 15 * time.Second

func main() {
	profileFlag := flag.String("profile", "", "profile name (overrides config default)")
	jsonFlag := flag.Bool("json", false, "output in JSON format")
	flag.Usage = printUsage
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	active, err := profile.Load(*profileFlag)
	if err != nil {
		fatal(err)
	}

	if args[0] == "init" {
		cmdInit(active.Name, args[1:])
		return
	}
	if err := active.Settings.Validate(); err != nil {
		fatal(fmt.Errorf("profile %s: %w", active.Name, err))
	}

	switch args[0] {
	case "rooms":
		cmdRooms(active, *jsonFlag)
	case "history":
		cmdHistory(active, args[1:], *jsonFlag)
	case "send":
		if len(args) < 3 {
			fmt.Fprintln(os.Stderr, "usage: campchatctl send <roomId> <text>")
			os.Exit(1)
		}
		cmdSend(active, args[1], strings.Join(args[2:], " "), *jsonFlag)
	case "tail":
		if len(args) < 2 {
			fmt.Fprintln(os.Stderr, "usage: campchatctl tail <roomId>")
			os.Exit(1)
		}
		cmdTail(active, args[1], *jsonFlag)
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", args[0])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "usage: campchatctl [--profile <name>] [--json] <command>")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "commands:")
	fmt.Fprintln(os.Stderr, "  init --origin <url> --admin <id> --campaign <id>   Write the profile")
	fmt.Fprintln(os.Stderr, "  rooms                          List the campaign's rooms")
	fmt.Fprintln(os.Stderr, "  history <roomId> [--page N]    Show one page of a room, oldest first")
	fmt.Fprintln(os.Stderr, "  send <roomId> <text>           Send a message and wait for its echo")
	fmt.Fprintln(os.Stderr, "  tail <roomId>                  Follow a room until interrupted")
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}

func cmdInit(name string, args []string) {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	originURL := fs.String("origin", "", "origin base URL")
	admin := fs.String("admin", "", "admin user id")
	campaign := fs.String("campaign", "", "campaign id")
	token := fs.String("token", "", "bearer token")
	pageSize := fs.Int("page-size", 0, "history page size")
	tz := fs.String("timezone", "", "IANA zone for day headers")
	_ = fs.Parse(args)

	p := config.Profile{
		OriginURL:  *originURL,
		AdminID:    *admin,
		CampaignID: *campaign,
		Token:      *token,
		PageSize:   *pageSize,
		Timezone:   *tz,
	}
	if err := p.Validate(); err != nil {
		fatal(err)
	}

	path := profile.ConfigPath()
	cfg, err := config.LoadOrEmpty(path)
	if err != nil {
		fatal(err)
	}
	if cfg.Profiles == nil {
		cfg.Profiles = make(map[string]config.Profile)
	}
	cfg.Profiles[name] = p
	if cfg.DefaultProfile == "" {
		cfg.DefaultProfile = name
	}
	if err := config.Save(path, cfg); err != nil {
		fatal(err)
	}
	fmt.Printf("Profile %s written to %s\n", name, path)
}

func newClient(active profile.Active) *origin.Client {
	s := active.Settings
	c, err := origin.NewClient(s.OriginURL, s.Token, nil, nil)
	if err != nil {
		fatal(err)
	}
	return c
}

func cmdRooms(active profile.Active, jsonOut bool) {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	list := rooms.NewList(active.Settings.AdminID, newClient(active), nil)
	if err := list.Load(ctx, active.Settings.CampaignID); err != nil {
		fatal(err)
	}
	entries := list.Entries()
	if jsonOut {
		outputJSON(entries)
		return
	}

	c := list.Campaign()
	fmt.Printf("Campaign: %s (%s)\n\n", c.Title, c.ID)
	if len(entries) == 0 {
		fmt.Println("No conversations yet.")
		return
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ROOM\tNAME\tLAST MESSAGE\tAT")
	for _, e := range entries {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", e.RoomID, e.Name, e.Preview, e.LastActivity.Local().Format(time.DateTime))
	}
	_ = w.Flush()
}

func cmdHistory(active profile.Active, args []string, jsonOut bool) {
	if len(args) == 0 || strings.HasPrefix(args[0], "-") {
		fmt.Fprintln(os.Stderr, "usage: campchatctl history <roomId> [--page N] [--size N]")
		os.Exit(1)
	}
	roomID := args[0]
	fs := flag.NewFlagSet("history", flag.ExitOnError)
	page := fs.Int("page", 1, "page index, 1 is the newest")
	size := fs.Int("size", active.Settings.Pages(), "page size")
	_ = fs.Parse(args[1:])

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	msgs, err := newClient(active).FetchMessages(ctx, roomID, *page, *size)
	if err != nil {
		fatal(err)
	}
	slices.Reverse(msgs)
	if jsonOut {
		outputJSON(msgs)
		return
	}
	if len(msgs) == 0 {
		fmt.Println("No messages on this page.")
		return
	}
	for _, m := range msgs {
		printMessage(active.Settings.AdminID, m)
	}
}

// headless starts a console session on a loop without a screen. stop must
// be called before exiting.
func headless(active profile.Active, onRender func(widget.Change)) (s *console.Session, surface *console.Headless, stop func()) {
	surface = console.NewHeadless(onRender)
	ctx, cancel := context.WithCancel(context.Background())
	go surface.Loop.Run(ctx)

	app := fx.New(
		fx.NopLogger,
		console.Module(console.Params{
			Active:  active,
			Binary:  "campchatctl",
			Surface: surface,
		}),
		fx.Populate(&s),
	)
	startCtx, startCancel := context.WithTimeout(ctx, requestTimeout)
	defer startCancel()
	if err := app.Start(startCtx); err != nil {
		cancel()
		fatal(err)
	}
	return s, surface, func() {
		stopCtx, stopCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer stopCancel()
		_ = app.Stop(stopCtx)
		cancel()
	}
}

// notify forwards renders to changes without ever blocking the loop.
func notify(changes chan<- widget.Change) func(widget.Change) {
	return func(c widget.Change) {
		select {
		case changes <- c:
		default:
		}
	}
}

// messageKey identifies a message across renders.
func messageKey(m chat.Message) string {
	if m.ID != "" {
		return m.ID
	}
	return m.SenderID + "\x00" + m.Content + "\x00" + m.CreatedAt.String()
}

// openRoom waits for the room list and opens roomID. Returns once the
// first page is in.
func openRoom(s *console.Session, h *console.Headless, changes <-chan widget.Change, roomID string) error {
	if err := waitFor(changes, widget.ChangeRooms, requestTimeout); err != nil {
		return err
	}
	var err error
	if doErr := h.Loop.Do(context.Background(), func() {
		if err = s.RoomsErr(); err == nil {
			err = s.Open(roomID)
		}
	}); doErr != nil {
		return doErr
	}
	if err != nil {
		return err
	}
	return waitFor(changes, widget.ChangeInitial, requestTimeout)
}

func waitFor(changes <-chan widget.Change, want widget.Change, timeout time.Duration) error {
	deadline := time.After(timeout)
	for {
		select {
		case c := <-changes:
			if c == want {
				return nil
			}
			if c == widget.ChangeError {
				return errors.New("history request failed")
			}
		case <-deadline:
			return fmt.Errorf("timed out waiting for %s", want)
		}
	}
}

func cmdSend(active profile.Active, roomID, text string, jsonOut bool) {
	changes := make(chan widget.Change, 64)
	s, surface, stop := headless(active, notify(changes))
	defer stop()

	if err := openRoom(s, surface, changes, roomID); err != nil {
		stop()
		fatal(err)
	}

	seen := make(map[string]bool)
	var sent bool
	_ = surface.Loop.Do(context.Background(), func() {
		for _, m := range s.Widget.Timeline().Messages() {
			seen[messageKey(m)] = true
		}
		s.Widget.Composer().SetText(text)
		sent = s.Widget.Send()
	})
	if !sent {
		stop()
		fatal(errors.New("message not sent: not connected or empty text"))
	}

	want := strings.TrimSpace(text)
	deadline := time.After(requestTimeout)
	for {
		select {
		case c := <-changes:
			if c != widget.ChangeAppend {
				continue
			}
			var echo *chat.Message
			_ = surface.Loop.Do(context.Background(), func() {
				for _, m := range s.Widget.Timeline().Messages() {
					if !seen[messageKey(m)] && m.SenderID == active.Settings.AdminID && m.Content == want {
						echo = &m
						return
					}
				}
			})
			if echo == nil {
				continue
			}
			if jsonOut {
				outputJSON(echo)
			} else {
				printMessage(active.Settings.AdminID, *echo)
			}
			return
		case <-deadline:
			stop()
			fatal(errors.New("no echo from the origin"))
		}
	}
}

func cmdTail(active profile.Active, roomID string, jsonOut bool) {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	changes := make(chan widget.Change, 64)
	s, surface, stop := headless(active, notify(changes))
	defer stop()

	if err := openRoom(s, surface, changes, roomID); err != nil {
		stop()
		fatal(err)
	}

	seen := make(map[string]bool)
	flush := func() {
		var fresh []chat.Message
		_ = surface.Loop.Do(ctx, func() {
			for _, m := range s.Widget.Timeline().Messages() {
				if k := messageKey(m); !seen[k] {
					seen[k] = true
					fresh = append(fresh, m)
				}
			}
		})
		for _, m := range fresh {
			if jsonOut {
				printJSONLine(m)
			} else {
				printMessage(active.Settings.AdminID, m)
			}
		}
	}
	flush()

	for {
		select {
		case c := <-changes:
			if c == widget.ChangeAppend {
				flush()
			}
		case <-ctx.Done():
			return
		}
	}
}

func printMessage(adminID string, m chat.Message) {
	who := m.SenderID
	if who == adminID {
		who = "you"
	}
	fmt.Printf("[%s] %s: %s\n", m.CreatedAt.Local().Format(time.DateTime), who, m.Content)
}

func printJSONLine(v any) {
	data, err := json.Marshal(v)
	if err != nil {
		fatal(err)
	}
	fmt.Println(string(data))
}

func outputJSON(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fatal(err)
	}
	fmt.Println(string(data))
}
