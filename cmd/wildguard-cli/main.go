package main

import (
	"context"

	"github.com/ParkerCase/wildlife-conservation-tracker-sub003/cmd/wildguard-cli/commands"
	"github.com/ParkerCase/wildlife-conservation-tracker-sub003/lib/telemetry"
)

func main() {
	telemetry.SetupFromEnv(context.Background(), "wildguard-cli")
	commands.ExecuteContext(context.Background())
}
