package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/go-amule/amulec/cmd/ectl/cmdutil"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Report the protocol and server version negotiated with the daemon",
	RunE:  runVersion,
}

func runVersion(cmd *cobra.Command, args []string) error {
	c, err := cmdutil.Connect()
	if err != nil {
		return err
	}
	defer c.Disconnect()

	protocolVersion, serverVersion, ok := c.Version()
	if !ok {
		return fmt.Errorf("not connected")
	}

	cmd.Printf("protocol: 0x%04X\nserver:   %s\n", protocolVersion, serverVersion)
	return nil
}
