package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	sonic "github.com/bytedance/sonic"
	"github.com/joho/godotenv"
	"github.com/riskibarqy/pickem-league/internal/app"
	"github.com/riskibarqy/pickem-league/internal/config"
	"github.com/riskibarqy/pickem-league/internal/domain/user"
	"github.com/riskibarqy/pickem-league/internal/platform/logging"
	"github.com/riskibarqy/pickem-league/internal/usecase"
	"github.com/urfave/cli/v2"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newApp(loadServices).RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// serviceLoader builds the use cases for one command run.
type serviceLoader func(ctx context.Context) (*app.Services, error)

func loadServices(ctx context.Context) (*app.Services, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger := logging.New(logging.Options{
		Level:   cfg.LogLevel,
		Output:  os.Stderr,
		Service: cfg.ServiceName + "-scorectl",
		Env:     cfg.AppEnv,
	})
	logging.SetDefault(logger)
	return app.NewServices(ctx, cfg, logger)
}

func newApp(load serviceLoader) *cli.App {
	return &cli.App{
		Name:  "scorectl",
		Usage: "operate the pick'em scoring engine against the configured store",
		Commands: []*cli.Command{
			{
				Name:  "recalculate",
				Usage: "recompute weekly scores",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "league", Usage: "league id"},
					&cli.IntFlag{Name: "week", Usage: "week to recompute, 0 for the whole season"},
					&cli.BoolFlag{Name: "all-weeks", Usage: "recompute every week of --league"},
					&cli.BoolFlag{Name: "all-leagues", Usage: "recompute every league --user belongs to"},
					&cli.StringFlag{Name: "user", Usage: "acting user id", Required: true},
					&cli.BoolFlag{Name: "admin", Usage: "act as an admin, allowed on any league"},
				},
				Action: func(c *cli.Context) error {
					scope, err := scopeFromFlags(c)
					if err != nil {
						return err
					}
					services, err := load(c.Context)
					if err != nil {
						return err
					}
					defer services.Close()

					principal := user.Principal{UserID: c.String("user"), IsAdmin: c.Bool("admin")}
					result, err := services.Recalculation.RecalculateScores(c.Context, principal, scope)
					if printErr := printJSON(c.App.Writer, result); printErr != nil {
						return printErr
					}
					if err != nil {
						return err
					}
					if result.FailedCount > 0 {
						return cli.Exit(fmt.Sprintf("%d unit(s) failed", result.FailedCount), 2)
					}
					return nil
				},
			},
			{
				Name:  "stats",
				Usage: "print weekly and season leaderboards for a league week",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "league", Usage: "league id", Required: true},
					&cli.IntFlag{Name: "week", Usage: "week number", Required: true},
				},
				Action: func(c *cli.Context) error {
					services, err := load(c.Context)
					if err != nil {
						return err
					}
					defer services.Close()

					stats, err := services.Scoring.GetLeagueStats(c.Context, c.String("league"), c.Int("week"))
					if err != nil {
						return err
					}
					return printJSON(c.App.Writer, stats)
				},
			},
		},
	}
}

func scopeFromFlags(c *cli.Context) (usecase.RecalculateScope, error) {
	scope := usecase.RecalculateScope{
		LeagueID:   c.String("league"),
		Week:       c.Int("week"),
		AllLeagues: c.Bool("all-leagues"),
	}
	if c.Bool("all-weeks") {
		if scope.Week != 0 {
			return usecase.RecalculateScope{}, fmt.Errorf("--all-weeks cannot be combined with --week")
		}
		if scope.LeagueID == "" {
			return usecase.RecalculateScope{}, fmt.Errorf("--all-weeks requires --league")
		}
	}
	if !scope.AllLeagues && scope.LeagueID == "" {
		return usecase.RecalculateScope{}, fmt.Errorf("one of --league or --all-leagues is required")
	}
	return scope, nil
}

func printJSON(w io.Writer, payload any) error {
	out, err := sonic.ConfigStd.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}
