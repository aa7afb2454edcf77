// Command arenactl inspects and exports leaderboards without the web server.
//
// Usage:
//
//	arenactl formats
//	arenactl migrate
//	arenactl scopes
//	arenactl standings --event vanguard --game bgmi --stage round1 --group A
//	arenactl export --event lockload --game ml --out ml.xlsx
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"text/tabwriter"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/AdamBeresnev/arena-leaderboard/internal/config"
	"github.com/AdamBeresnev/arena-leaderboard/internal/export"
	"github.com/AdamBeresnev/arena-leaderboard/internal/leaderboard"
	"github.com/AdamBeresnev/arena-leaderboard/internal/service"
	"github.com/AdamBeresnev/arena-leaderboard/internal/snapshot"
	"github.com/AdamBeresnev/arena-leaderboard/internal/store"
	"github.com/AdamBeresnev/arena-leaderboard/internal/tournament"
)

var logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

func main() {
	_ = godotenv.Load(".env")

	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "arenactl",
		Short:        "Arena leaderboard admin CLI",
		SilenceUsage: true,
	}

	root.AddCommand(formatsCmd())
	root.AddCommand(migrateCmd())
	root.AddCommand(scopesCmd())
	root.AddCommand(standingsCmd())
	root.AddCommand(exportCmd())
	return root
}

// --------------------------------------------------------------------------
// formats command
// --------------------------------------------------------------------------

func formatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "formats",
		Short: "List the tournament formats and the games they match",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			reg, err := tournament.LoadRegistry(cfg.FormatsDir)
			if err != nil {
				return fmt.Errorf("load formats: %w", err)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tEVENTS\tGAMES\tKEY")
			for _, t := range reg.All() {
				f := t.Format
				fmt.Fprintf(tw, "%s\t%s\t%v\t%v\t%s\n", f.ID, f.Name, f.Match.Events, f.Match.Games, f.LeaderboardKey)
			}
			return tw.Flush()
		},
	}
}

// --------------------------------------------------------------------------
// migrate / scopes commands
// --------------------------------------------------------------------------

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade the snapshot schema for the configured backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(func(ctx context.Context, cfg *config.Config, svc *service.LeaderboardService, _ snapshot.Store) error {
				if !cfg.PersistenceConfigured() {
					return snapshot.ErrPersistenceNotConfigured
				}
				logger.Info("schema up to date", "persistence", cfg.Persistence)
				return nil
			})
		},
	}
}

func scopesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scopes",
		Short: "List saved leaderboards in the sqlite store",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(func(ctx context.Context, cfg *config.Config, _ *service.LeaderboardService, st snapshot.Store) error {
				sqlite, ok := st.(*store.SnapshotStore)
				if !ok {
					return fmt.Errorf("scopes needs the sqlite backend, got %q", cfg.Persistence)
				}
				infos, err := sqlite.List(ctx)
				if err != nil {
					return fmt.Errorf("list scopes: %w", err)
				}
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "EVENT\tGAME\tKEY\tUPDATED")
				for _, info := range infos {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", info.Scope.EventID, info.Scope.GameID, info.Scope.Key, info.UpdatedAt.Format("2006-01-02 15:04:05"))
				}
				return tw.Flush()
			})
		},
	}
}

// --------------------------------------------------------------------------
// standings / export commands
// --------------------------------------------------------------------------

func standingsCmd() *cobra.Command {
	var eventID, gameID, stage, group string
	cmd := &cobra.Command{
		Use:   "standings",
		Short: "Print stage standings or finals for one leaderboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(func(ctx context.Context, cfg *config.Config, svc *service.LeaderboardService, _ snapshot.Store) error {
				if err := loadSaved(ctx, svc, eventID, gameID); err != nil {
					return err
				}

				var rows []leaderboard.AggregateRow
				var err error
				if stage == tournament.TargetFinals {
					rows, err = svc.FinalsStandings(eventID, gameID)
				} else {
					if stage == "" {
						stage, err = firstStage(svc, eventID, gameID)
						if err != nil {
							return err
						}
					}
					rows, err = svc.Standings(eventID, gameID, stage, group)
				}
				if err != nil {
					return err
				}

				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', tabwriter.AlignRight)
				fmt.Fprintln(tw, "#\tTEAM\tWWCD\tPLACE\tKILLS\tTOTAL\t")
				for _, r := range rows {
					fmt.Fprintf(tw, "%d\t%s\t%d\t%d\t%d\t%d\t\n", r.Rank, r.Team, r.WWCD, r.Placement, r.Kills, r.Total)
				}
				return tw.Flush()
			})
		},
	}
	cmd.Flags().StringVar(&eventID, "event", "", "Event id")
	cmd.Flags().StringVar(&gameID, "game", "", "Game id")
	cmd.Flags().StringVar(&stage, "stage", "", "Stage name, or \"finals\" (defaults to the first stage)")
	cmd.Flags().StringVar(&group, "group", "", "Group letter (defaults to overall)")
	_ = cmd.MarkFlagRequired("event")
	_ = cmd.MarkFlagRequired("game")
	return cmd
}

func exportCmd() *cobra.Command {
	var eventID, gameID, out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write one leaderboard to an xlsx workbook",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(func(ctx context.Context, cfg *config.Config, svc *service.LeaderboardService, _ snapshot.Store) error {
				if err := loadSaved(ctx, svc, eventID, gameID); err != nil {
					return err
				}
				sess, err := svc.Session(eventID, gameID)
				if err != nil {
					return err
				}

				f, err := os.Create(out)
				if err != nil {
					return fmt.Errorf("create %s: %w", out, err)
				}
				if err := export.Write(f, sess.Tournament(), sess.State()); err != nil {
					f.Close()
					return err
				}
				if err := f.Close(); err != nil {
					return err
				}
				logger.Info("workbook written", "scope", sess.Scope().String(), "path", out)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&eventID, "event", "", "Event id")
	cmd.Flags().StringVar(&gameID, "game", "", "Game id")
	cmd.Flags().StringVarP(&out, "out", "o", "leaderboard.xlsx", "Output file")
	_ = cmd.MarkFlagRequired("event")
	_ = cmd.MarkFlagRequired("game")
	return cmd
}

// --------------------------------------------------------------------------
// helpers
// --------------------------------------------------------------------------

func withService(fn func(ctx context.Context, cfg *config.Config, svc *service.LeaderboardService, st snapshot.Store) error) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	reg, err := tournament.LoadRegistry(cfg.FormatsDir)
	if err != nil {
		return fmt.Errorf("load formats: %w", err)
	}
	st, closeStore, err := store.Open(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer closeStore()

	svc := service.NewLeaderboardService(reg, st, logger)
	defer svc.Close()

	return fn(ctx, cfg, svc, st)
}

// loadSaved pulls the saved snapshot when there is a store. Without one the
// default state is used.
func loadSaved(ctx context.Context, svc *service.LeaderboardService, eventID, gameID string) error {
	_, err := svc.Load(ctx, eventID, gameID)
	if errors.Is(err, snapshot.ErrPersistenceNotConfigured) {
		logger.Warn("persistence not configured, using the default state")
		return nil
	}
	return err
}

func firstStage(svc *service.LeaderboardService, eventID, gameID string) (string, error) {
	sess, err := svc.Session(eventID, gameID)
	if err != nil {
		return "", err
	}
	stages := sess.Tournament().Format.Stages
	if len(stages) == 0 {
		return "", fmt.Errorf("%s has no stats stages", sess.Tournament().ID())
	}
	return stages[0].Name, nil
}
