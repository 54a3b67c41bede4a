package commands

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/go-amule/amulec"
	"github.com/go-amule/amulec/cmd/ectl/cmdutil"
)

var downloadCmd = &cobra.Command{
	Use:   "download",
	Short: "Add downloads and inspect the download queue",
}

var (
	downloadCategory uint8
	downloadDetail   string
	downloadUpdate   bool
)

var downloadStartCmd = &cobra.Command{
	Use:   "start <hash>...",
	Short: "Add search-result hashes to the download queue",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runDownloadStart,
}

var downloadEd2kCmd = &cobra.Command{
	Use:   "ed2k <link>...",
	Short: "Add ed2k links to the download queue",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runDownloadEd2k,
}

var downloadListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the current download queue",
	RunE:  runDownloadList,
}

func init() {
	downloadStartCmd.Flags().Uint8Var(&downloadCategory, "category", 0, "category to assign")
	downloadEd2kCmd.Flags().Uint8Var(&downloadCategory, "category", 0, "category to assign")
	downloadListCmd.Flags().StringVar(&downloadDetail, "detail", "cmd", "detail level: cmd|web|full|update|inc_update")
	downloadListCmd.Flags().BoolVar(&downloadUpdate, "update", false, "request incremental updates only")

	downloadCmd.AddCommand(downloadStartCmd, downloadEd2kCmd, downloadListCmd)
}

func runDownloadStart(cmd *cobra.Command, args []string) error {
	c, err := cmdutil.Connect()
	if err != nil {
		return err
	}
	defer c.Disconnect()

	ok, err := c.DownloadSearchResults(args, downloadCategory)
	if err != nil {
		return fmt.Errorf("failed to queue downloads: %w", err)
	}
	if !ok {
		return fmt.Errorf("daemon rejected the request")
	}
	cmdutil.PrintSuccess("download queued")
	return nil
}

func runDownloadEd2k(cmd *cobra.Command, args []string) error {
	c, err := cmdutil.Connect()
	if err != nil {
		return err
	}
	defer c.Disconnect()

	ok, err := c.DownloadEd2kLinks(args, downloadCategory)
	if err != nil {
		return fmt.Errorf("failed to add ed2k links: %w", err)
	}
	if !ok {
		return fmt.Errorf("daemon rejected the request")
	}
	cmdutil.PrintSuccess("ed2k links added")
	return nil
}

// partfileList adapts a map[string]Partfile for table rendering.
type partfileList map[string]amulec.Partfile

func (l partfileList) Headers() []string {
	return []string{"HASH", "NAME", "STATUS", "SIZE", "DONE", "SPEED", "PRIO", "CAT"}
}

func (l partfileList) Rows() [][]string {
	rows := make([][]string, 0, len(l))
	for hash, p := range l {
		rows = append(rows, []string{
			hash,
			p.Name,
			strconv.FormatUint(uint64(p.Status), 10),
			strconv.FormatUint(p.Size, 10),
			strconv.FormatUint(p.SizeDone, 10),
			strconv.FormatUint(uint64(p.Speed), 10),
			strconv.FormatUint(uint64(p.Prio), 10),
			strconv.FormatUint(uint64(p.Cat), 10),
		})
	}
	return rows
}

func runDownloadList(cmd *cobra.Command, args []string) error {
	detail, err := parseDownloadDetail(downloadDetail)
	if err != nil {
		return err
	}

	c, err := cmdutil.Connect()
	if err != nil {
		return err
	}
	defer c.Disconnect()

	files, err := c.GetDownloadList(detail, downloadUpdate)
	if err != nil {
		return fmt.Errorf("failed to get download list: %w", err)
	}

	return cmdutil.PrintOutput(os.Stdout, files, len(files) == 0, "No downloads in progress.", partfileList(files))
}

func parseDownloadDetail(s string) (amulec.DownloadDetail, error) {
	switch s {
	case "cmd", "web", "update", "inc_update", "":
		return amulec.DownloadListBasic, nil
	case "full":
		return amulec.DownloadListDetail, nil
	default:
		return 0, fmt.Errorf("invalid detail level: %q", s)
	}
}
