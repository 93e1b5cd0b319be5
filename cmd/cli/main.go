package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/iho/chequebook/internal/adapter/apiclient"
	"github.com/iho/chequebook/internal/adapter/http/dto"
	"github.com/iho/chequebook/internal/adapter/report"
	redisRepo "github.com/iho/chequebook/internal/adapter/repository/redis"
	"github.com/iho/chequebook/internal/domain"
	"github.com/iho/chequebook/internal/infrastructure/logger"
	"github.com/iho/chequebook/internal/infrastructure/redis"
	"github.com/iho/chequebook/internal/ledger"
)

type options struct {
	baseURL  string
	timeout  time.Duration
	snapshot string
	redisURL string
	jsonOut  bool
	logLevel string
	currency string

	out    io.Writer
	errOut io.Writer
}

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	opts := &options{out: out, errOut: errOut}

	rootCmd := &cobra.Command{
		Use:   "chequectl",
		Short: "Chequebook CLI tool",
		Long: `Track outgoing and incoming cheques against the chequebook API.
Changes are kept in a local snapshot when the API cannot be reached.`,
		SilenceUsage: true,
	}
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)

	rootCmd.PersistentFlags().StringVar(&opts.baseURL, "url", envOr("CHEQUEBOOK_URL", "http://localhost:8080"), "Base URL of the chequebook API")
	rootCmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 10*time.Second, "Request timeout")
	rootCmd.PersistentFlags().StringVar(&opts.snapshot, "snapshot", defaultSnapshotPath(), "Local snapshot file")
	rootCmd.PersistentFlags().StringVar(&opts.redisURL, "redis-url", "", "Keep the local snapshot in Redis instead of a file")
	rootCmd.PersistentFlags().BoolVar(&opts.jsonOut, "json", false, "Print JSON")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "Log level for fallback warnings")
	rootCmd.PersistentFlags().StringVar(&opts.currency, "currency", "", "Currency label for reports")

	rootCmd.AddCommand(
		kindCmd(opts, domain.KindOutgoing),
		kindCmd(opts, domain.KindIncoming),
		summaryCmd(opts),
		dueCmd(opts),
		syncCmd(opts),
		reportCmd(opts),
	)

	return rootCmd
}

// session is an open ledger plus what must be released with it.
type session struct {
	ledger  *ledger.Ledger
	release func()
}

func (o *options) open(ctx context.Context) (*session, error) {
	log := logger.NewWithWriter(logger.Config{Level: o.logLevel, Format: "console", Component: "chequectl"}, o.errOut)

	var (
		store   ledger.SnapshotStore = ledger.NewFileSnapshotStore(o.snapshot)
		release                      = func() {}
	)
	if o.redisURL != "" {
		client, err := redis.NewClient(ctx, o.redisURL)
		if err != nil {
			return nil, err
		}
		store = redisRepo.NewSnapshotStore(client, "")
		release = func() { client.Close() }
	}

	l, err := ledger.Open(ctx, store, apiclient.New(o.baseURL, o.timeout),
		ledger.WithLogger(log),
	)
	if err != nil {
		release()
		return nil, err
	}

	return &session{ledger: l, release: release}, nil
}

// withLedger opens the ledger, optionally refreshes kinds from the API,
// runs fn and saves the snapshot.
func (o *options) withLedger(ctx context.Context, kinds []domain.Kind, fn func(l *ledger.Ledger) error) error {
	s, err := o.open(ctx)
	if err != nil {
		return err
	}
	defer s.release()

	for _, kind := range kinds {
		if _, err := s.ledger.Refresh(ctx, kind); err != nil {
			return err
		}
	}

	if err := fn(s.ledger); err != nil {
		return err
	}
	return s.ledger.Save(ctx)
}

func kindCmd(opts *options, kind domain.Kind) *cobra.Command {
	cmd := &cobra.Command{
		Use:   string(kind),
		Short: fmt.Sprintf("Manage %s cheques", kind),
	}

	cmd.AddCommand(
		listCmd(opts, kind),
		addCmd(opts, kind),
		settleCmd(opts, kind),
		deleteCmd(opts, kind),
		activeCmd(opts, kind),
		historyCmd(opts, kind),
	)
	return cmd
}

func listCmd(opts *options, kind domain.Kind) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: fmt.Sprintf("List %s cheques, newest first", kind),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withLedger(cmd.Context(), []domain.Kind{kind}, func(l *ledger.Ledger) error {
				return opts.printCheques(kind, l.List(kind))
			})
		},
	}
}

func addCmd(opts *options, kind domain.Kind) *cobra.Command {
	labels := labelsFor(kind)

	var (
		draft  domain.Draft
		amount string
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: fmt.Sprintf("Record a new %s cheque", kind),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			draft.Amount = decimal.NullDecimal{}
			if amount != "" {
				d, err := decimal.NewFromString(amount)
				if err != nil {
					return &domain.ValidationError{Field: "amount", Reason: "must be a number"}
				}
				draft.Amount = decimal.NewNullDecimal(d)
			}

			return opts.withLedger(cmd.Context(), nil, func(l *ledger.Ledger) error {
				res, err := l.Create(cmd.Context(), kind, draft)
				if err != nil {
					return err
				}
				return opts.printResult("recorded", res)
			})
		},
	}

	cmd.Flags().StringVar(&draft.RecordedDate, labels.recordedFlag, "", labels.recorded+" (YYYY-MM-DD)")
	cmd.Flags().StringVar(&draft.DueDate, labels.dueFlag, "", labels.due+" (YYYY-MM-DD)")
	cmd.Flags().StringVar(&draft.ChequeNumber, "number", "", "Cheque number")
	cmd.Flags().StringVar(&draft.Counterparty, labels.partyFlag, "", labels.party)
	cmd.Flags().StringVar(&draft.Purpose, "purpose", "", "Purpose")
	cmd.Flags().StringVar(&amount, "amount", "", "Amount")
	cmd.Flags().StringVar(&draft.BankName, "bank", "", "Bank name")

	return cmd
}

func settleCmd(opts *options, kind domain.Kind) *cobra.Command {
	verb := "complete"
	past := "completed"
	if kind == domain.KindIncoming {
		verb, past = "deposit", "deposited"
	}

	return &cobra.Command{
		Use:   verb + " <id>",
		Short: fmt.Sprintf("Mark a pending %s cheque %s today", kind, past),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withLedger(cmd.Context(), []domain.Kind{kind}, func(l *ledger.Ledger) error {
				res, err := l.Transition(cmd.Context(), kind, args[0])
				if err != nil {
					return err
				}
				return opts.printResult(past, res)
			})
		},
	}
}

func deleteCmd(opts *options, kind domain.Kind) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: fmt.Sprintf("Delete an %s cheque in any state", kind),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withLedger(cmd.Context(), []domain.Kind{kind}, func(l *ledger.Ledger) error {
				res, err := l.Delete(cmd.Context(), kind, args[0])
				if err != nil {
					return err
				}
				if opts.jsonOut {
					printJSON(opts.out, dto.OKResponse{OK: true})
					return nil
				}
				fmt.Fprintf(opts.out, "deleted %s%s\n", args[0], locally(res))
				return nil
			})
		},
	}
}

func activeCmd(opts *options, kind domain.Kind) *cobra.Command {
	var f domain.Filter
	cmd := &cobra.Command{
		Use:   "active",
		Short: fmt.Sprintf("List pending %s cheques", kind),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := domain.ValidateFilterStatus(f.Status); err != nil {
				return err
			}
			return opts.withLedger(cmd.Context(), []domain.Kind{kind}, func(l *ledger.Ledger) error {
				return opts.printCheques(kind, l.Active(kind, f))
			})
		},
	}
	cmd.Flags().StringVarP(&f.Query, "query", "q", "", "Match cheque number, party or purpose")
	cmd.Flags().StringVar(&f.Bank, "bank", "", "Only this bank")
	cmd.Flags().StringVar(&f.Status, "status", "", `"all" or "due"`)
	return cmd
}

func historyCmd(opts *options, kind domain.Kind) *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: fmt.Sprintf("List settled %s cheques", kind),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withLedger(cmd.Context(), []domain.Kind{kind}, func(l *ledger.Ledger) error {
				return opts.printCheques(kind, l.History(kind))
			})
		},
	}
}

func summaryCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Show totals, outstanding amounts and cash flow",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withLedger(cmd.Context(), domain.Kinds, func(l *ledger.Ledger) error {
				sum := l.Summary()
				if opts.jsonOut {
					printJSON(opts.out, dto.SummaryFromDomain(sum))
					return nil
				}
				printSummary(opts.out, sum)
				return nil
			})
		},
	}
}

func dueCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "due",
		Short: "List pending cheques due today",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withLedger(cmd.Context(), domain.Kinds, func(l *ledger.Ledger) error {
				due := l.DueToday()
				if opts.jsonOut {
					printJSON(opts.out, dto.ChequeValuesFromDomain(due))
					return nil
				}
				if len(due) == 0 {
					fmt.Fprintln(opts.out, "nothing due today")
					return nil
				}
				writeTable(opts.out, due)
				return nil
			})
		},
	}
}

func syncCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Reload both collections from the API and save the snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withLedger(cmd.Context(), nil, func(l *ledger.Ledger) error {
				remote, err := l.Load(cmd.Context())
				if err != nil {
					return err
				}
				if remote {
					fmt.Fprintf(opts.out, "synced %d outgoing and %d incoming cheques\n",
						len(l.List(domain.KindOutgoing)), len(l.List(domain.KindIncoming)))
					return nil
				}
				fmt.Fprintln(opts.out, "API unavailable, using local snapshot")
				return nil
			})
		},
	}
}

func reportCmd(opts *options) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Write a PDF summary report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withLedger(cmd.Context(), domain.Kinds, func(l *ledger.Ledger) error {
				pdf, err := report.NewBuilder(opts.currency).BuildSummaryPDF(
					l.Summary(),
					l.Active(domain.KindOutgoing, domain.Filter{}),
					l.Active(domain.KindIncoming, domain.Filter{}),
				)
				if err != nil {
					return err
				}
				if err := os.WriteFile(out, pdf, 0o644); err != nil {
					return fmt.Errorf("write report: %w", err)
				}
				fmt.Fprintf(opts.out, "report written to %s\n", out)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "chequebook-summary.pdf", "Output file")
	return cmd
}

func (o *options) printCheques(kind domain.Kind, cheques []domain.Cheque) error {
	if o.jsonOut {
		printJSON(o.out, dto.ChequeValuesFromDomain(cheques))
		return nil
	}
	if len(cheques) == 0 {
		fmt.Fprintf(o.out, "no %s cheques\n", kind)
		return nil
	}
	writeTable(o.out, cheques)
	return nil
}

func (o *options) printResult(verb string, res ledger.Result) error {
	if o.jsonOut {
		printJSON(o.out, dto.ChequeFromDomain(&res.Cheque))
		return nil
	}
	fmt.Fprintf(o.out, "%s %s %s%s\n", verb, res.Cheque.Kind, res.Cheque.ID, locally(res))
	return nil
}

func locally(res ledger.Result) string {
	if res.AppliedRemotely {
		return ""
	}
	return " (local only, API unavailable)"
}

func writeTable(w io.Writer, cheques []domain.Cheque) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tKIND\tNUMBER\tPARTY\tBANK\tAMOUNT\tDUE\tSTATUS\tSETTLED")
	for _, c := range cheques {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			c.ID, c.Kind, c.ChequeNumber, truncate(c.Counterparty, 24), truncate(c.BankName, 20),
			c.Amount.StringFixed(2), c.DueDate, c.Status, c.SettledDate)
	}
	tw.Flush()
}

func printSummary(w io.Writer, s domain.Summary) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Date\t%s\n", s.Date)
	for _, k := range []struct {
		name string
		sum  domain.KindSummary
	}{{"Outgoing", s.Outgoing}, {"Incoming", s.Incoming}} {
		fmt.Fprintf(tw, "%s\ttotal %d\tactive %d\tsettled %d\tdue today %d\tready %d\n",
			k.name, k.sum.Total, k.sum.Active, k.sum.Settled, k.sum.DueToday, k.sum.Ready)
		fmt.Fprintf(tw, "\toutstanding %s\tsettled %s\trate %s%%\n",
			k.sum.Outstanding.StringFixed(2), k.sum.SettledAmount.StringFixed(2), k.sum.SettlementRate.StringFixed(1))
	}
	fmt.Fprintf(tw, "Net cash flow\t%s\n", s.NetCashFlow.StringFixed(2))
	fmt.Fprintf(tw, "Gross cash flow\t%s\n", s.GrossCashFlow.StringFixed(2))
	for _, b := range s.TopBanks {
		fmt.Fprintf(tw, "Bank\t%s\t%d\t%s%%\n", b.Bank, b.Count, b.Percent.StringFixed(1))
	}
	tw.Flush()
}

type kindLabels struct {
	recorded, recordedFlag string
	due, dueFlag           string
	party, partyFlag       string
}

func labelsFor(kind domain.Kind) kindLabels {
	if kind == domain.KindIncoming {
		return kindLabels{"Received date", "received-date", "Cheque date", "cheque-date", "Payer name", "payer"}
	}
	return kindLabels{"Issue date", "issue-date", "Start date", "start-date", "Payee name", "payee"}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}

func printJSON(w io.Writer, v any) {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(w, "Error formatting JSON: %v\n", err)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func defaultSnapshotPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "chequebook-snapshot.json"
	}
	return filepath.Join(dir, "chequebook", "snapshot.json")
}

