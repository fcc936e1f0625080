package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/fx"

	"github.com/matheus3301/campchat/internal/devorigin"
	"github.com/matheus3301/campchat/internal/profile"
)

func main() {
	profileFlag := flag.String("profile", "", "profile name (overrides config default)")
	addrFlag := flag.String("addr", "127.0.0.1:8080", "listen address")
	seedFlag := flag.Bool("seed", false, "create the demo campaign on start")
	tokenFlag := flag.String("token", "", "require this bearer token")
	flag.Parse()

	active, err := profile.Load(*profileFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if err := profile.EnsureDir(active.Name); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	app := fx.New(
		devorigin.Module(devorigin.Params{
			Profile: active.Name,
			Addr:    *addrFlag,
			Token:   *tokenFlag,
			Seed:    *seedFlag,
		}),
	)

	app.Run()
}
