package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"studentspend/internal/assistant"
	"studentspend/internal/cli"
	"studentspend/internal/config"
	"studentspend/internal/core"
	"studentspend/internal/log"
	"studentspend/internal/services"
)

type app struct {
	now    func() time.Time
	logOut io.Writer
}

func newRootCmd() *cobra.Command {
	return (&app{now: time.Now, logOut: os.Stderr}).rootCmd()
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "studentspend-cli",
		Short: "Track student expenses from the terminal",
		Long: `studentspend-cli reads and changes the same ledger the studentspend server
uses. The backend is chosen by DATA_BACKEND and the related variables.`,
		SilenceUsage: true,
	}

	root.AddCommand(
		a.addCmd(),
		a.listCmd(),
		a.rmCmd(),
		a.clearCmd(),
		a.goalCmd(),
		a.statsCmd(),
		a.askCmd(),
		a.loginCmd(),
		a.logoutCmd(),
		a.whoamiCmd(),
	)
	return root
}

// withLedger opens the configured store, runs fn and closes everything.
func (a *app) withLedger(cmd *cobra.Command, fn func(ctx context.Context, ledger *services.LedgerService) error) error {
	cli.LoadEnvFile()
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return err
	}
	logger := log.New(log.Config{
		Level:     slog.LevelWarn,
		Component: log.ComponentCLI,
		Output:    a.logOut,
	})
	if cfg.LogLevel == "debug" {
		logger = log.New(log.Config{Level: slog.LevelDebug, Component: log.ComponentCLI, Output: a.logOut})
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	repo, cleanup, err := cli.OpenRepository(ctx, logger, cfg)
	if err != nil {
		return err
	}
	ledger, err := cli.NewLedger(ctx, logger, cfg, repo, cli.LedgerOptions{
		Publisher: cli.NewPublisher(logger, cfg),
	})
	if err != nil {
		_ = cleanup()
		return err
	}
	defer ledger.Close()

	return fn(ctx, ledger)
}

func (a *app) addCmd() *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:     "add AMOUNT CATEGORY DESCRIPTION...",
		Short:   "Record an expense",
		Example: `  studentspend-cli add 12,50 food pizza with friends --date 2024-03-10`,
		Args:    cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := core.ParseAmount(args[0])
			if err != nil {
				return err
			}
			category, err := core.ParseCategory(args[1])
			if err != nil {
				return fmt.Errorf("%w: must be one of %v", err, core.Categories())
			}
			draft := core.ExpenseDraft{
				Amount:      amount,
				Category:    category,
				Description: strings.Join(args[2:], " "),
			}
			if date != "" {
				if draft.Date, err = core.ParseDate(date); err != nil {
					return err
				}
			}

			return a.withLedger(cmd, func(ctx context.Context, ledger *services.LedgerService) error {
				e, ev, err := ledger.AddExpense(ctx, draft)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n%s\n", ev.Title, ev.Description, e.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "expense date (YYYY-MM-DD), defaults to today")
	return cmd
}

func (a *app) listCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List expenses, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withLedger(cmd, func(ctx context.Context, ledger *services.LedgerService) error {
				expenses := ledger.Expenses()
				if limit > 0 {
					expenses = core.RecentExpenses(expenses, limit)
				}
				if len(expenses) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No expenses recorded.")
					return nil
				}
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "DATE\tAMOUNT\tCATEGORY\tDESCRIPTION\tID")
				for _, e := range expenses {
					fmt.Fprintf(tw, "%s\t%s\t%s %s\t%s\t%s\n",
						e.Date, core.FormatDollars(e.Amount), e.Category.Emoji(), e.Category, e.Description, e.ID)
				}
				return tw.Flush()
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "show only the N most recent expenses")
	return cmd
}

func (a *app) rmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm ID",
		Short: "Delete an expense",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withLedger(cmd, func(ctx context.Context, ledger *services.LedgerService) error {
				_, ev, err := ledger.RemoveExpense(ctx, args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", ev.Title, ev.Description)
				return nil
			})
		},
	}
}

func (a *app) clearCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every expense (the savings goal is kept)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("refusing to clear without --yes")
			}
			return a.withLedger(cmd, func(ctx context.Context, ledger *services.LedgerService) error {
				ev, err := ledger.ClearExpenses(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s. %s\n", ev.Title, ev.Description)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm deleting all expenses")
	return cmd
}

func (a *app) goalCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "goal [AMOUNT]",
		Short: "Show or set the monthly savings goal",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withLedger(cmd, func(ctx context.Context, ledger *services.LedgerService) error {
				if len(args) == 0 {
					fmt.Fprintf(cmd.OutOrStdout(), "Savings goal: %s\n", core.FormatDollars(ledger.SavingsGoal()))
					return nil
				}
				goal, err := core.ParseAmount(args[0])
				if err != nil {
					return fmt.Errorf("%w: %w", core.ErrInvalidGoal, err)
				}
				ev, err := ledger.UpdateSavingsGoal(ctx, goal)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", ev.Title, ev.Description)
				return nil
			})
		},
	}
}

// parseMonth accepts YYYY-MM and returns a time inside that month.
func parseMonth(s string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation("2006-01", s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid month %q: want YYYY-MM", s)
	}
	return t.AddDate(0, 0, 14), nil
}

func (a *app) statsCmd() *cobra.Command {
	var month string
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show spending statistics for a month",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ref := a.now()
			if month != "" {
				var err error
				if ref, err = parseMonth(month, ref.Location()); err != nil {
					return err
				}
			}
			return a.withLedger(cmd, func(ctx context.Context, ledger *services.LedgerService) error {
				writeStats(cmd.OutOrStdout(), ref, ledger.Stats(ref))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&month, "month", "", "reference month (YYYY-MM), defaults to the current one")
	return cmd
}

func writeStats(w io.Writer, ref time.Time, st core.Stats) {
	fmt.Fprintf(w, "Month:           %s\n", ref.Format("2006-01"))
	fmt.Fprintf(w, "Total spent:     %s\n", core.FormatDollars(st.TotalSpent))
	fmt.Fprintf(w, "Monthly spent:   %s\n", core.FormatDollars(st.MonthlySpent))
	fmt.Fprintf(w, "Savings goal:    %s\n", core.FormatDollars(st.SavingsGoal))
	fmt.Fprintf(w, "Current savings: %s (%s%%)\n", core.FormatDollars(st.CurrentSavings), st.SavingsProgress().StringFixed(1))
	if !st.OnTrack() {
		fmt.Fprintf(w, "Over budget by:  %s\n", core.FormatDollars(st.Overage()))
	}
	for _, ca := range st.Breakdown() {
		fmt.Fprintf(w, "  %s %-14s %s\n", ca.Category.Emoji(), ca.Category, core.FormatDollars(ca.Amount))
	}
}

func (a *app) askCmd() *cobra.Command {
	var typing bool
	cmd := &cobra.Command{
		Use:   "ask [QUESTION...]",
		Short: "Ask the budgeting assistant; without a question it greets you",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), assistant.Greeting)
				return nil
			}
			return a.withLedger(cmd, func(ctx context.Context, ledger *services.LedgerService) error {
				if typing {
					fmt.Fprint(cmd.ErrOrStderr(), "typing...\r")
					if err := assistant.NewTypist(time.Second, time.Second, nil).Wait(ctx); err != nil {
						return err
					}
				}
				reply, err := ledger.Ask(ctx, strings.Join(args, " "))
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), reply)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&typing, "typing", false, "pause like a person typing before answering")
	return cmd
}

func (a *app) loginCmd() *cobra.Command {
	var u core.User
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store the current user profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if u.ID == "" {
				u.ID = strconv.FormatInt(a.now().UnixMilli(), 10)
			}
			return a.withLedger(cmd, func(ctx context.Context, ledger *services.LedgerService) error {
				ev, err := ledger.StartSession(ctx, u)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", ev.Title, ev.Description)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&u.ID, "id", "", "user id, generated when empty")
	cmd.Flags().StringVar(&u.Email, "email", "", "email address")
	cmd.Flags().StringVar(&u.Name, "name", "", "display name")
	return cmd
}

func (a *app) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the user and their expenses (the savings goal is kept)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withLedger(cmd, func(ctx context.Context, ledger *services.LedgerService) error {
				ev, err := ledger.EndSession(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s. %s\n", ev.Title, ev.Description)
				return nil
			})
		},
	}
}

func (a *app) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the stored user profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withLedger(cmd, func(ctx context.Context, ledger *services.LedgerService) error {
				u, err := ledger.CurrentUser(ctx)
				if err != nil {
					return fmt.Errorf("not logged in: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s <%s>\n", u.Name, u.Email)
				return nil
			})
		},
	}
}
