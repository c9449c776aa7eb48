package main

import (
	"fmt"
	"os"

	"InventoryStore/internal/cli"
	"InventoryStore/pkg/kit"
)

func main() {
	log := kit.NewLogger("inventoryctl", getenv("LOG_LEVEL", "warn"))
	defer func() { _ = log.Sync() }()

	app := cli.NewApp(os.Stdout, log)
	if err := cli.NewRootCmd(app).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, cli.Describe(err))
		os.Exit(1)
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
