package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/alphatrack/alphatrack/internal/app/tracker"
	"github.com/alphatrack/alphatrack/internal/domain"
)

func init() {
	rootCmd.AddCommand(airdropCmd)
	airdropCmd.AddCommand(airdropClaimCmd)
	airdropCmd.AddCommand(airdropConfirmCmd)

	airdropClaimCmd.Flags().BoolVar(&claimYes, "yes", false, "skip the confirmation prompt")
	airdropConfirmCmd.Flags().StringVar(&airdropDate, "date", "", "airdrop date (YYYY-MM-DD)")
	airdropConfirmCmd.Flags().Float64Var(&airdropAmount, "amount", 0, "points spent on the airdrop")
	airdropConfirmCmd.MarkFlagRequired("date")
	airdropConfirmCmd.MarkFlagRequired("amount")
}

var (
	claimYes      bool
	airdropDate   string
	airdropAmount float64
)

var airdropCmd = &cobra.Command{
	Use:   "airdrop",
	Short: "Claim airdrops and record confirmed ones",
}

var airdropClaimCmd = &cobra.Command{
	Use:   "claim ACCOUNT",
	Short: "Spend 15 points on a quick airdrop claim",
	Args:  cobra.ExactArgs(1),
	RunE:  runAirdropClaim,
}

func runAirdropClaim(cmd *cobra.Command, args []string) error {
	tr, err := openTracker()
	if err != nil {
		return err
	}
	defer tr.Close()

	id, err := resolveAccount(tr, args[0])
	if err != nil {
		return err
	}
	acc, err := tr.ClaimAirdrop(id, claimYes)
	if errors.Is(err, domain.ErrConfirmationRequired) {
		return fmt.Errorf("claiming deducts %d points from %q, re-run with --yes to confirm", tracker.QuickClaimCost, args[0])
	}
	if err != nil {
		return err
	}
	fmt.Printf("claimed, %s now at %.2f\n", acc.Name, acc.Score(time.Now()))
	return nil
}

var airdropConfirmCmd = &cobra.Command{
	Use:   "confirm ACCOUNT",
	Short: "Record a confirmed airdrop and schedule the point return",
	Long: `Record a confirmed airdrop: the amount is deducted now and a bonus
date tag is added 15 days after the airdrop date.`,
	Args: cobra.ExactArgs(1),
	RunE: runAirdropConfirm,
}

func runAirdropConfirm(cmd *cobra.Command, args []string) error {
	tr, err := openTracker()
	if err != nil {
		return err
	}
	defer tr.Close()

	id, err := resolveAccount(tr, args[0])
	if err != nil {
		return err
	}
	acc, err := tr.ConfirmAirdrop(id, airdropDate, airdropAmount)
	if err != nil {
		return err
	}
	fmt.Printf("recorded, %g points return to %s on %s\n",
		airdropAmount, acc.Name, acc.RegressionDates[len(acc.RegressionDates)-1])
	return nil
}
