package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/go-amule/amulec"
	"github.com/go-amule/amulec/cmd/ectl/cmdutil"
	"github.com/go-amule/amulec/internal/codes"
)

var partfileCmd = &cobra.Command{
	Use:   "partfile",
	Short: "Control in-progress downloads",
}

var partfileRemoveReason string

func init() {
	simple := []struct {
		use   string
		short string
		run   func(*amulec.Client, []string) (bool, error)
	}{
		{"pause <hash>...", "Pause the given partfiles", (*amulec.Client).PartfilePause},
		{"resume <hash>...", "Resume the given partfiles", (*amulec.Client).PartfileResume},
		{"stop <hash>...", "Stop the given partfiles", (*amulec.Client).PartfileStop},
		{"delete <hash>...", "Delete the given partfiles", (*amulec.Client).PartfileDelete},
		{"cleanup-sources <hash>...", "Clean up dead sources for the given partfiles", (*amulec.Client).PartfileCleanupSources},
	}
	for _, s := range simple {
		run := s.run
		partfileCmd.AddCommand(&cobra.Command{
			Use:   s.use,
			Short: s.short,
			Args:  cobra.MinimumNArgs(1),
			RunE:  partfileAction(run),
		})
	}

	removeCmd := &cobra.Command{
		Use:   "remove <hash>...",
		Short: "Remove the given partfiles from the queue",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runPartfileRemove,
	}
	removeCmd.Flags().StringVar(&partfileRemoveReason, "reason", "noneed", "removal reason: noneed|fullqueue|highqueue")

	swapCmd := &cobra.Command{Use: "swap-a4af", Short: "Swap \"already for another file\" sources"}
	swapCmd.AddCommand(
		&cobra.Command{Use: "this <hash>...", Args: cobra.MinimumNArgs(1), RunE: partfileAction((*amulec.Client).PartfileSwapA4AFThis)},
		&cobra.Command{Use: "this-auto <hash>...", Args: cobra.MinimumNArgs(1), RunE: partfileAction((*amulec.Client).PartfileSwapA4AFThisAuto)},
		&cobra.Command{Use: "others <hash>...", Args: cobra.MinimumNArgs(1), RunE: partfileAction((*amulec.Client).PartfileSwapA4AFOthers)},
	)

	setPrioCmd := &cobra.Command{
		Use:   "set-prio <prio> <hash>...",
		Short: "Set the download priority of the given partfiles",
		Args:  cobra.MinimumNArgs(2),
		RunE:  runPartfileSetPrio,
	}
	setCatCmd := &cobra.Command{
		Use:   "set-cat <cat> <hash>...",
		Short: "Set the category of the given partfiles",
		Args:  cobra.MinimumNArgs(2),
		RunE:  runPartfileSetCat,
	}

	partfileCmd.AddCommand(removeCmd, swapCmd, setPrioCmd, setCatCmd)
}

// partfileAction wraps a one-shot Client method that takes a hash list and
// returns (bool, error) into a cobra RunE, handling connect/disconnect and
// the success/failure report uniformly.
func partfileAction(fn func(*amulec.Client, []string) (bool, error)) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		c, err := cmdutil.Connect()
		if err != nil {
			return err
		}
		defer c.Disconnect()

		ok, err := fn(c, args)
		if err != nil {
			return fmt.Errorf("partfile command failed: %w", err)
		}
		if !ok {
			return fmt.Errorf("daemon rejected the request")
		}
		cmdutil.PrintSuccess("ok")
		return nil
	}
}

func runPartfileRemove(cmd *cobra.Command, args []string) error {
	c, err := cmdutil.Connect()
	if err != nil {
		return err
	}
	defer c.Disconnect()

	var ok bool
	switch partfileRemoveReason {
	case "noneed", "":
		ok, err = c.PartfileRemoveNoNeed(args)
	case "fullqueue":
		ok, err = c.PartfileRemoveFullQueue(args)
	case "highqueue":
		ok, err = c.PartfileRemoveHighQueue(args)
	default:
		return fmt.Errorf("invalid removal reason: %q (valid: noneed, fullqueue, highqueue)", partfileRemoveReason)
	}
	if err != nil {
		return fmt.Errorf("failed to remove partfiles: %w", err)
	}
	if !ok {
		return fmt.Errorf("daemon rejected the request")
	}
	cmdutil.PrintSuccess("removed")
	return nil
}

func runPartfileSetPrio(cmd *cobra.Command, args []string) error {
	prio, err := parsePrio(args[0])
	if err != nil {
		return err
	}

	c, err := cmdutil.Connect()
	if err != nil {
		return err
	}
	defer c.Disconnect()

	ok, err := c.PartfileSetPrio(args[1:], prio)
	if err != nil {
		return fmt.Errorf("failed to set priority: %w", err)
	}
	if !ok {
		return fmt.Errorf("daemon rejected the request")
	}
	cmdutil.PrintSuccess("priority updated")
	return nil
}

func runPartfileSetCat(cmd *cobra.Command, args []string) error {
	var cat uint64
	if _, err := fmt.Sscanf(args[0], "%d", &cat); err != nil {
		return fmt.Errorf("invalid category: %q", args[0])
	}

	c, err := cmdutil.Connect()
	if err != nil {
		return err
	}
	defer c.Disconnect()

	ok, err := c.PartfileSetCat(args[1:], uint8(cat))
	if err != nil {
		return fmt.Errorf("failed to set category: %w", err)
	}
	if !ok {
		return fmt.Errorf("daemon rejected the request")
	}
	cmdutil.PrintSuccess("category updated")
	return nil
}

func parsePrio(s string) (uint8, error) {
	switch s {
	case "very-low":
		return codes.PrioVeryLow, nil
	case "low":
		return codes.PrioLow, nil
	case "normal":
		return codes.PrioNormal, nil
	case "high":
		return codes.PrioHigh, nil
	case "very-high":
		return codes.PrioVeryHigh, nil
	case "auto":
		return codes.PrioAuto, nil
	case "power-share":
		return codes.PrioPowerShare, nil
	default:
		var n uint64
		if _, err := fmt.Sscanf(s, "%d", &n); err != nil {
			return 0, fmt.Errorf("invalid priority: %q", s)
		}
		return uint8(n), nil
	}
}
