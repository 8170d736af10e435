package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/alphatrack/alphatrack/internal/domain"
)

func init() {
	rootCmd.AddCommand(cycleCmd)
	cycleCmd.AddCommand(cycleStatusCmd)
	cycleCmd.AddCommand(cycleResetCmd)
	cycleCmd.AddCommand(cycleSetDaysCmd)

	cycleResetCmd.Flags().BoolVar(&resetYes, "yes", false, "skip the confirmation prompt")
}

var resetYes bool

var cycleCmd = &cobra.Command{
	Use:   "cycle",
	Short: "Inspect and control the 15-day cycle",
}

var cycleStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show where the current cycle stands",
	RunE:  runCycleStatus,
}

func runCycleStatus(cmd *cobra.Command, args []string) error {
	tr, err := openTracker()
	if err != nil {
		return err
	}
	defer tr.Close()

	st := tr.CycleStatus()
	fmt.Printf("cycle #%d, day %d of %d (%d%%)\n", st.CurrentCycle, st.CycleDay, domain.CycleLength, st.ProgressPct)
	fmt.Printf("started %s\n", st.CycleStartDate.Format("2006-01-02"))
	if st.ManualResetDays != nil {
		fmt.Printf("reset in %d days (manual override)\n", st.DaysUntilReset)
	} else {
		fmt.Printf("reset in %d days\n", st.DaysUntilReset)
	}
	return nil
}

var cycleResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Start a fresh cycle, wiping all accounts",
	RunE:  runCycleReset,
}

func runCycleReset(cmd *cobra.Command, args []string) error {
	tr, err := openTracker()
	if err != nil {
		return err
	}
	defer tr.Close()

	if !resetYes {
		return fmt.Errorf("resetting wipes every account, re-run with --yes to confirm")
	}
	cycle, err := tr.ResetCycle(true)
	if err != nil {
		return err
	}
	fmt.Printf("cycle #%d started\n", cycle)
	return nil
}

var cycleSetDaysCmd = &cobra.Command{
	Use:   "set-days DAYS",
	Short: "Override days-until-reset, 0 clears the override",
	Args:  cobra.ExactArgs(1),
	RunE:  runCycleSetDays,
}

func runCycleSetDays(cmd *cobra.Command, args []string) error {
	tr, err := openTracker()
	if err != nil {
		return err
	}
	defer tr.Close()

	days, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid day count %q", args[0])
	}
	if err := tr.SetManualResetDays(days); err != nil {
		return err
	}
	if days <= 0 {
		fmt.Println("override cleared, reset follows the cycle day")
	} else {
		fmt.Printf("reset overridden to %d days\n", days)
	}
	return nil
}
