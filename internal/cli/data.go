package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/alphatrack/alphatrack/internal/domain"
)

func init() {
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().BoolVar(&importYes, "yes", false, "skip the confirmation prompt")
}

var importYes bool

var exportCmd = &cobra.Command{
	Use:   "export [FILE]",
	Short: "Write a JSON snapshot of all accounts and cycle state",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runExport,
}

func runExport(cmd *cobra.Command, args []string) error {
	tr, err := openTracker()
	if err != nil {
		return err
	}
	defer tr.Close()

	data, err := tr.Export()
	if err != nil {
		return err
	}
	if len(args) == 0 {
		_, err = os.Stdout.Write(append(data, '\n'))
		return err
	}
	if err := os.WriteFile(args[0], data, 0o600); err != nil {
		return err
	}
	fmt.Printf("exported to %s\n", args[0])
	return nil
}

var importCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Replace all local data with a JSON snapshot",
	Args:  cobra.ExactArgs(1),
	RunE:  runImport,
}

func runImport(cmd *cobra.Command, args []string) error {
	tr, err := openTracker()
	if err != nil {
		return err
	}
	defer tr.Close()

	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	err = tr.Import(data, importYes)
	if errors.Is(err, domain.ErrConfirmationRequired) {
		return fmt.Errorf("importing replaces all local data, re-run with --yes to confirm")
	}
	if err != nil {
		return err
	}
	st := tr.CycleStatus()
	fmt.Printf("imported %d accounts, cycle #%d\n", st.Accounts, st.CurrentCycle)
	return nil
}
