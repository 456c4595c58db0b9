package system

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/julianstephens/sipstreak/internal/cli"
	"github.com/julianstephens/sipstreak/internal/logger"
)

type DebugCmd struct {
	DBPath *DebugDBPathCmd `cmd:"" help:"Show database and log paths."`
	Dump   *DebugDumpCmd   `cmd:"" help:"Dump every stored key as JSON."`
}

type DebugDBPathCmd struct{}

func (cmd *DebugDBPathCmd) Run(ctx *cli.Context) error {
	return printJSON(ctx, map[string]string{
		"path": ctx.Store.GetConfigPath(),
		"log":  logger.Path(),
	})
}

type DebugDumpCmd struct {
	Key string `arg:"" optional:"" help:"Only dump this key."`
}

// Run prints raw stored values. Values that are valid JSON are embedded as
// JSON; anything else is printed as a string.
func (cmd *DebugDumpCmd) Run(ctx *cli.Context) error {
	keys, err := ctx.Store.Keys()
	if err != nil {
		return fmt.Errorf("failed to list keys: %w", err)
	}
	sort.Strings(keys)

	out := make(map[string]interface{}, len(keys))
	for _, k := range keys {
		if cmd.Key != "" && k != cmd.Key {
			continue
		}
		v, ok, err := ctx.Store.Get(k)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", k, err)
		}
		if !ok {
			continue
		}
		if json.Valid([]byte(v)) {
			out[k] = json.RawMessage(v)
		} else {
			out[k] = v
		}
	}
	if cmd.Key != "" && len(out) == 0 {
		return fmt.Errorf("key not found: %s", cmd.Key)
	}
	return printJSON(ctx, out)
}

func printJSON(ctx *cli.Context, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	ctx.Println(string(data))
	return nil
}
