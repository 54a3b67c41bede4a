package commands

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/go-amule/amulec/cmd/ectl/cmdutil"
	"github.com/go-amule/amulec/internal/output"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Query the daemon's current statistics and connection state",
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	c, err := cmdutil.Connect()
	if err != nil {
		return err
	}
	defer c.Disconnect()

	status, err := c.GetServerStatus()
	if err != nil {
		return fmt.Errorf("failed to get server status: %w", err)
	}

	table := output.KeyValueTable{
		{"ul_speed", strconv.FormatUint(uint64(status.ULSpeed), 10)},
		{"dl_speed", strconv.FormatUint(uint64(status.DLSpeed), 10)},
		{"ul_speed_limit", strconv.FormatUint(uint64(status.ULSpeedLimit), 10)},
		{"dl_speed_limit", strconv.FormatUint(uint64(status.DLSpeedLimit), 10)},
		{"ul_queue_len", strconv.FormatUint(uint64(status.ULQueueLen), 10)},
		{"total_src_count", strconv.FormatUint(uint64(status.TotalSrcCount), 10)},
		{"ed2k_users", strconv.FormatUint(uint64(status.ED2KUsers), 10)},
		{"kad_users", strconv.FormatUint(uint64(status.KadUsers), 10)},
		{"ed2k_files", strconv.FormatUint(uint64(status.ED2KFiles), 10)},
		{"kad_files", strconv.FormatUint(uint64(status.KadFiles), 10)},
		{"connstate", strconv.FormatUint(uint64(status.ConnState), 10)},
		{"client_id", strconv.FormatUint(uint64(status.ClientID), 10)},
	}

	return cmdutil.PrintOutput(os.Stdout, status, false, "", table)
}
