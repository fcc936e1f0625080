package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/fx"

	"github.com/matheus3301/campchat/internal/console"
	"github.com/matheus3301/campchat/internal/profile"
	"github.com/matheus3301/campchat/internal/tui"
)

func main() {
	profileFlag := flag.String("profile", "", "profile name (overrides config default)")
	devFlag := flag.Bool("dev", false, "start a seeded local origin if none answers")
	flag.Parse()

	active, err := profile.Load(*profileFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if err := active.Settings.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "error: profile %s: %v\n", active.Name, err)
		fmt.Fprintln(os.Stderr, "run: campchatctl init --origin <url> --admin <id> --campaign <id>")
		os.Exit(1)
	}

	if *devFlag && !probeOrigin(active.Settings.OriginURL) {
		fmt.Fprintf(os.Stderr, "origin not answering at %s, starting a local one...\n", active.Settings.OriginURL)
		if err := startOrigin(active); err != nil {
			fmt.Fprintf(os.Stderr, "failed to start origin: %v\n", err)
			os.Exit(1)
		}
		if !waitForOrigin(active.Settings.OriginURL, 10*time.Second) {
			fmt.Fprintln(os.Stderr, "origin did not become ready")
			os.Exit(1)
		}
	}

	ui := tui.NewApp()
	var session *console.Session
	app := fx.New(
		fx.NopLogger,
		console.Module(console.Params{
			Active:  active,
			Binary:  "campchat",
			Surface: ui,
		}),
		fx.Populate(&session),
	)

	startCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	err = app.Start(startCtx)
	cancel()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	ui.Bind(session)
	runErr := ui.Run()
	ui.Stop()

	stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = app.Stop(stopCtx)

	if runErr != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", runErr)
		os.Exit(1)
	}
}

// probeOrigin checks that an origin answers its health endpoint.
func probeOrigin(origin string) bool {
	hc := &http.Client{Timeout: 2 * time.Second}
	resp, err := hc.Get(strings.TrimSuffix(origin, "/") + "/healthz")
	if err != nil {
		return false
	}
	_ = resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// startOrigin runs campchat-origin for the profile, listening on the
// origin URL's host. Only loopback origins are started.
func startOrigin(active profile.Active) error {
	u, err := url.Parse(active.Settings.OriginURL)
	if err != nil {
		return err
	}
	switch u.Hostname() {
	case "127.0.0.1", "localhost", "::1":
	default:
		return fmt.Errorf("%s is not a local origin", u.Host)
	}

	executable, err := os.Executable()
	if err != nil {
		return err
	}
	bin := filepath.Join(filepath.Dir(executable), "campchat-origin")
	if _, err := os.Stat(bin); err != nil {
		bin = "campchat-origin"
	}

	args := []string{"--profile", active.Name, "--addr", u.Host, "--seed"}
	if active.Settings.Token != "" {
		args = append(args, "--token", active.Settings.Token)
	}
	// Output stays off the terminal the TUI draws on; the origin logs to
	// its own file.
	return exec.Command(bin, args...).Start()
}

func waitForOrigin(origin string, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if probeOrigin(origin) {
			return true
		}
		time.Sleep(300 * time.Millisecond)
	}
	return false
}
