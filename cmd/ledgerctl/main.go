// Command ledgerctl inspects a running game from the terminal: players,
// pool, the suggested distribution, the ledger and live events.
//
// Usage:
//
//	ledgerctl [-server URL] [-token TOKEN] game|pool|suggest|ledger|audit|watch
//
// The token is a session token returned by CreateGame or JoinGame. It can
// also be set with POKERBANK_TOKEN.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"

	"connectrpc.com/connect"
	"github.com/pterm/pterm"

	"github.com/mmynk/pokerbank/internal/middleware"
	"github.com/mmynk/pokerbank/pkg/api"
)

func main() {
	server := flag.String("server", envOr("POKERBANK_SERVER", "http://localhost:8080"), "server base URL")
	token := flag.String("token", os.Getenv("POKERBANK_TOKEN"), "session token")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: ledgerctl [flags] game|pool|suggest|ledger|audit|watch\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	slog.SetDefault(slog.New(pterm.NewSlogHandler(&pterm.DefaultLogger)))

	if flag.NArg() != 1 || *token == "" {
		flag.Usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	client := api.NewGameServiceClient(http.DefaultClient, *server,
		connect.WithInterceptors(middleware.BearerToken(*token)))
	if err := run(ctx, client, flag.Arg(0)); err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}
}

func run(ctx context.Context, client *api.GameServiceClient, cmd string) error {
	empty := connect.NewRequest(&api.Empty{})
	switch cmd {
	case "game":
		resp, err := client.GetGame(ctx, empty)
		if err != nil {
			return err
		}
		g := resp.Msg.Game
		pterm.DefaultSection.Printfln("Game %s (%s)", g.Code, g.Status)
		return pterm.DefaultTable.WithHasHeader().WithData(playerTable(g)).Render()

	case "pool":
		resp, err := client.GetPool(ctx, empty)
		if err != nil {
			return err
		}
		pterm.DefaultBox.WithTitle("Pool").Println(poolSummary(resp.Msg.Pool))
		return nil

	case "suggest":
		game, err := client.GetGame(ctx, empty)
		if err != nil {
			return err
		}
		resp, err := client.GetDistributionSuggestion(ctx, empty)
		if err != nil {
			return err
		}
		data := distributionTable(game.Msg.Game, resp.Msg.Distributions)
		return pterm.DefaultTable.WithHasHeader().WithData(data).Render()

	case "ledger":
		game, err := client.GetGame(ctx, empty)
		if err != nil {
			return err
		}
		resp, err := client.GetLedger(ctx, empty)
		if err != nil {
			return err
		}
		data := ledgerTable(game.Msg.Game, resp.Msg.Entries)
		return pterm.DefaultTable.WithHasHeader().WithData(data).Render()

	case "audit":
		if _, err := client.CheckInvariants(ctx, empty); err != nil {
			return err
		}
		pterm.Success.Println("Ledger and pool are consistent")
		return nil

	case "watch":
		stream, err := client.WatchGame(ctx, empty)
		if err != nil {
			return err
		}
		defer stream.Close()
		for stream.Receive() {
			ev := stream.Msg()
			pterm.Info.Printfln("v%d %s %s %s", ev.Version, ev.Type, ev.PlayerID, ev.Status)
		}
		if err := stream.Err(); err != nil && ctx.Err() == nil {
			return err
		}
		return nil
	}
	return fmt.Errorf("unknown command %q", cmd)
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
