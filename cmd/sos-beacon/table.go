package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/sweeney/sos-beacon/internal/logic"
)

func newTableCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "table",
		Short: "Print the SOS and OK message tables",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			printTables(cmd.OutOrStdout())
		},
	}
}

func printTables(w io.Writer) {
	for i, msg := range []logic.Message{logic.SOS, logic.OK} {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "%s (%d units)\n", msg.Name(), msg.Len())
		for j, u := range msg.Units() {
			fmt.Fprintf(w, "  %2d  %-10s hold=%d\n", j, u, u.Hold())
		}
		fmt.Fprintf(w, "  total hold=%d pause=%d cycle=%d ticks\n",
			msg.TotalHold(), logic.InterMessagePause, logic.CycleTicks(msg))
	}
}
