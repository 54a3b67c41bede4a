package commands

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/go-amule/amulec"
	"github.com/go-amule/amulec/cmd/ectl/cmdutil"
	"github.com/go-amule/amulec/internal/output"
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Start, poll, and fetch results for a server-side search",
}

var (
	searchMethod   string
	searchFileType string
	searchExt      string
	searchMinSize  uint32
	searchMaxSize  uint32
	searchMinAvail uint32
	searchUpdate   bool
)

var searchStartCmd = &cobra.Command{
	Use:   "start <query>",
	Short: "Start a new search",
	Args:  cobra.ExactArgs(1),
	RunE:  runSearchStart,
}

var searchProgressCmd = &cobra.Command{
	Use:   "progress",
	Short: "Report the current search completion percentage",
	RunE:  runSearchProgress,
}

var searchResultsCmd = &cobra.Command{
	Use:   "results",
	Short: "Fetch the results of the last search",
	RunE:  runSearchResults,
}

func init() {
	searchStartCmd.Flags().StringVar(&searchMethod, "method", "local", "search method: local|global|kad")
	searchStartCmd.Flags().StringVar(&searchFileType, "type", "", "ed2k file type filter")
	searchStartCmd.Flags().StringVar(&searchExt, "ext", "", "file extension filter")
	searchStartCmd.Flags().Uint32Var(&searchMinSize, "min-size", 0, "minimum file size in bytes")
	searchStartCmd.Flags().Uint32Var(&searchMaxSize, "max-size", 0, "maximum file size in bytes")
	searchStartCmd.Flags().Uint32Var(&searchMinAvail, "min-avail", 0, "minimum source availability")

	searchResultsCmd.Flags().BoolVar(&searchUpdate, "update", false, "request incremental updates only")

	searchCmd.AddCommand(searchStartCmd, searchProgressCmd, searchResultsCmd)
}

func parseSearchMethod(s string) (amulec.SearchMethod, error) {
	switch s {
	case "local", "":
		return amulec.SearchLocal, nil
	case "global":
		return amulec.SearchGlobal, nil
	case "kad":
		return amulec.SearchKad, nil
	default:
		return 0, fmt.Errorf("invalid search method: %q (valid: local, global, kad)", s)
	}
}

func runSearchStart(cmd *cobra.Command, args []string) error {
	method, err := parseSearchMethod(searchMethod)
	if err != nil {
		return err
	}

	params := amulec.SearchParams{
		Query:     args[0],
		Method:    method,
		FileType:  searchFileType,
		Extension: searchExt,
	}
	if cmd.Flags().Changed("min-size") {
		params.MinSize = &searchMinSize
	}
	if cmd.Flags().Changed("max-size") {
		params.MaxSize = &searchMaxSize
	}
	if cmd.Flags().Changed("min-avail") {
		params.MinAvailable = &searchMinAvail
	}

	c, err := cmdutil.Connect()
	if err != nil {
		return err
	}
	defer c.Disconnect()

	result, err := c.SearchStart(params)
	if err != nil {
		return fmt.Errorf("failed to start search: %w", err)
	}
	if !result.OK {
		return fmt.Errorf("search rejected: %s", result.Message)
	}

	cmdutil.PrintSuccess("search started")
	return nil
}

func runSearchProgress(cmd *cobra.Command, args []string) error {
	c, err := cmdutil.Connect()
	if err != nil {
		return err
	}
	defer c.Disconnect()

	progress, err := c.GetSearchProgress()
	if err != nil {
		return fmt.Errorf("failed to get search progress: %w", err)
	}
	cmd.Printf("%d%%\n", progress)
	return nil
}

// searchResultList adapts a map[string]SearchResult for table rendering.
type searchResultList map[string]amulec.SearchResult

func (l searchResultList) Headers() []string {
	return []string{"HASH", "NAME", "SIZE", "SOURCES", "COMPLETE SOURCES"}
}

func (l searchResultList) Rows() [][]string {
	rows := make([][]string, 0, len(l))
	for hash, r := range l {
		rows = append(rows, []string{
			hash,
			r.Name,
			strconv.FormatUint(r.Size, 10),
			strconv.FormatUint(uint64(r.SrcCount), 10),
			strconv.FormatUint(uint64(r.SrcCountXfer), 10),
		})
	}
	return rows
}

func runSearchResults(cmd *cobra.Command, args []string) error {
	c, err := cmdutil.Connect()
	if err != nil {
		return err
	}
	defer c.Disconnect()

	results, err := c.GetSearchResults(searchUpdate)
	if err != nil {
		return fmt.Errorf("failed to get search results: %w", err)
	}

	return cmdutil.PrintOutput(os.Stdout, results, len(results) == 0, "No search results.", searchResultList(results))
}

var _ output.TableRenderer = searchResultList(nil)
