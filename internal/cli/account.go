package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/alphatrack/alphatrack/internal/app/tracker"
	"github.com/alphatrack/alphatrack/internal/domain"
)

func init() {
	rootCmd.AddCommand(accountCmd)
	accountCmd.AddCommand(accountAddCmd)
	accountCmd.AddCommand(accountListCmd)
	accountCmd.AddCommand(accountRemoveCmd)
	accountCmd.AddCommand(accountHistoryCmd)
	accountCmd.AddCommand(accountAdjustCmd)
	accountCmd.AddCommand(accountSetResetCmd)

	accountAddCmd.Flags().Float64Var(&addCurrent, "current", 0, "current base score")
	accountAddCmd.Flags().Float64Var(&addDaily, "daily", 0, "daily accrual")
	accountAddCmd.Flags().Float64Var(&addRegression, "regression", 0, "bonus points per matching date tag")
	accountAddCmd.Flags().StringVar(&addTags, "dates", "", "comma-joined MM/DD bonus tags")
	accountAddCmd.MarkFlagRequired("current")
	accountAddCmd.MarkFlagRequired("daily")
	accountAddCmd.MarkFlagRequired("regression")

	accountRemoveCmd.Flags().BoolVar(&assumeYes, "yes", false, "skip the confirmation prompt")
	accountAdjustCmd.Flags().StringVar(&adjustReason, "reason", "", "reason recorded in the history")
}

var (
	addCurrent    float64
	addDaily      float64
	addRegression float64
	addTags       string
	assumeYes     bool
	adjustReason  string
)

var accountCmd = &cobra.Command{
	Use:   "account",
	Short: "Manage tracked accounts",
}

// ─── account add ────────────────────────────────────────────────────────────

var accountAddCmd = &cobra.Command{
	Use:   "add NAME",
	Short: "Add a new account",
	Args:  cobra.ExactArgs(1),
	RunE:  runAccountAdd,
}

func runAccountAdd(cmd *cobra.Command, args []string) error {
	tr, err := openTracker()
	if err != nil {
		return err
	}
	defer tr.Close()

	acc, err := tr.CreateAccount(tracker.AccountParams{
		Name:            args[0],
		CurrentScore:    &addCurrent,
		DailyScore:      &addDaily,
		RegressionScore: &addRegression,
		RegressionDates: domain.ParseTags(addTags),
	})
	if err != nil {
		return err
	}
	fmt.Printf("added %s (%s)\n", acc.Name, acc.ID)
	return nil
}

// ─── account list ───────────────────────────────────────────────────────────

var accountListCmd = &cobra.Command{
	Use:   "list",
	Short: "List accounts by descending score",
	RunE:  runAccountList,
}

func runAccountList(cmd *cobra.Command, args []string) error {
	tr, err := openTracker()
	if err != nil {
		return err
	}
	defer tr.Close()

	views := tr.ListAccounts()
	if len(views) == 0 {
		fmt.Println("no accounts yet, add one with: alphatrack account add")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tSCORE\tTIER\tTODAY\tRESET\tBONUS DATES")
	for _, v := range views {
		reset := fmt.Sprintf("%dd (%s)", v.ResetDays, v.ResetSource)
		fmt.Fprintf(w, "%s\t%.2f\t%s\t%d\t%s\t%s\n",
			v.Name, v.AlphaScore, v.Tier, v.TodayBonusCount, reset, v.TagSummary)
	}
	return w.Flush()
}

// ─── account rm ─────────────────────────────────────────────────────────────

var accountRemoveCmd = &cobra.Command{
	Use:   "rm ACCOUNT",
	Short: "Delete an account",
	Args:  cobra.ExactArgs(1),
	RunE:  runAccountRemove,
}

func runAccountRemove(cmd *cobra.Command, args []string) error {
	tr, err := openTracker()
	if err != nil {
		return err
	}
	defer tr.Close()

	id, err := resolveAccount(tr, args[0])
	if err != nil {
		return err
	}
	if !assumeYes {
		return fmt.Errorf("deleting %q is permanent, re-run with --yes to confirm", args[0])
	}
	if err := tr.DeleteAccount(id, true); err != nil {
		return err
	}
	fmt.Printf("deleted %s\n", args[0])
	return nil
}

// ─── account history ────────────────────────────────────────────────────────

var accountHistoryCmd = &cobra.Command{
	Use:   "history ACCOUNT",
	Short: "Show an account's score history",
	Args:  cobra.ExactArgs(1),
	RunE:  runAccountHistory,
}

func runAccountHistory(cmd *cobra.Command, args []string) error {
	tr, err := openTracker()
	if err != nil {
		return err
	}
	defer tr.Close()

	id, err := resolveAccount(tr, args[0])
	if err != nil {
		return err
	}
	events, err := tr.History(id)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "DATE\tACTION\tCHANGE\tSCORE\tNOTE")
	for _, ev := range events {
		fmt.Fprintf(w, "%s\t%s\t%+.2f\t%.2f\t%s\n",
			ev.Date.Format("2006-01-02 15:04"), ev.Action, ev.Change, ev.AlphaScore, ev.Description)
	}
	return w.Flush()
}

// ─── account adjust ─────────────────────────────────────────────────────────

var accountAdjustCmd = &cobra.Command{
	Use:   "adjust ACCOUNT CHANGE",
	Short: "Apply a signed score adjustment",
	Long:  `Apply an arbitrary signed score change, e.g. "account adjust main -- -3.5".`,
	Args:  cobra.ExactArgs(2),
	RunE:  runAccountAdjust,
}

func runAccountAdjust(cmd *cobra.Command, args []string) error {
	tr, err := openTracker()
	if err != nil {
		return err
	}
	defer tr.Close()

	id, err := resolveAccount(tr, args[0])
	if err != nil {
		return err
	}
	var change float64
	if _, err := fmt.Sscanf(args[1], "%g", &change); err != nil {
		return fmt.Errorf("%w: %q", domain.ErrInvalidAmount, args[1])
	}
	acc, err := tr.AdjustScore(id, change, adjustReason)
	if err != nil {
		return err
	}
	fmt.Printf("adjusted %s by %+g, base score now %.2f\n", acc.Name, change, acc.CurrentScore)
	return nil
}

// ─── account set-reset ──────────────────────────────────────────────────────

var accountSetResetCmd = &cobra.Command{
	Use:   "set-reset ACCOUNT [DATE]",
	Short: "Set or clear an account's own reset date (YYYY-MM-DD)",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runAccountSetReset,
}

func runAccountSetReset(cmd *cobra.Command, args []string) error {
	tr, err := openTracker()
	if err != nil {
		return err
	}
	defer tr.Close()

	id, err := resolveAccount(tr, args[0])
	if err != nil {
		return err
	}
	date := ""
	if len(args) == 2 {
		date = args[1]
	}
	if err := tr.SetAccountResetDate(id, date); err != nil {
		return err
	}
	if date == "" {
		fmt.Printf("%s now follows the global cycle reset\n", args[0])
	} else {
		fmt.Printf("%s resets on %s\n", args[0], date)
	}
	return nil
}
