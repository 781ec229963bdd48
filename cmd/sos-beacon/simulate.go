package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/sweeney/sos-beacon/internal/gpio"
	"github.com/sweeney/sos-beacon/internal/logic"
	"github.com/sweeney/sos-beacon/internal/timer"
)

func newSimulateCmd() *cobra.Command {
	var (
		ticks    int
		toggleAt []int
		fast     bool
		mode     string
	)

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run the beacon against console lamps instead of GPIO",
		Example: "  sos-beacon simulate --ticks 120 --toggle-at 20 --fast\n" +
			"  sos-beacon simulate --mode OK",
		RunE: func(cmd *cobra.Command, args []string) error {
			initial, ok := logic.ParseMode(mode)
			if !ok {
				return fmt.Errorf("mode %q must be SOS or OK", mode)
			}
			if ticks <= 0 {
				return fmt.Errorf("ticks must be positive, got %d", ticks)
			}

			wait := func() {}
			if !fast {
				tm, err := timer.Open(timer.DefaultPeriod)
				if err != nil {
					return fmt.Errorf("open timer: %w", err)
				}
				if err := tm.Start(); err != nil {
					return fmt.Errorf("start timer: %w", err)
				}
				defer tm.Stop()
				c := tm.C()
				wait = func() { <-c }
			}

			simulate(cmd.OutOrStdout(), initial, ticks, toggleAt, wait)
			return nil
		},
	}

	cmd.Flags().IntVar(&ticks, "ticks", 2*logic.CycleTicks(logic.SOS), "number of ticks to run")
	cmd.Flags().IntSliceVar(&toggleAt, "toggle-at", nil, "ticks before which a button press is simulated")
	cmd.Flags().BoolVar(&fast, "fast", false, "don't wait for the timer between ticks")
	cmd.Flags().StringVar(&mode, "mode", logic.ModeSOS.String(), "message played first (SOS or OK)")
	return cmd
}

// simulate ticks a controller wired to console lamps and prints one line per
// tick. wait is called before every tick.
func simulate(w io.Writer, initial logic.Mode, ticks int, toggleAt []int, wait func()) {
	lamps := gpio.NewConsoleIndicators()
	defer lamps.Close()
	ctrl := logic.NewController(lamps, initial)

	presses := make(map[int]int, len(toggleAt))
	for _, n := range toggleAt {
		presses[n]++
	}

	for i := 1; i <= ticks; i++ {
		for n := presses[i]; n > 0; n-- {
			fmt.Fprintf(w, "%5d  press -> next %s\n", i, ctrl.Toggle())
		}

		wait()
		step := ctrl.Tick()

		detail := ""
		switch step.Kind {
		case logic.StepStart, logic.StepRender:
			detail = fmt.Sprintf("%-10s hold=%d", step.Unit, step.Hold)
		case logic.StepHold:
			detail = fmt.Sprintf("%-10s left=%d", "", step.Hold)
		case logic.StepEnd:
			detail = fmt.Sprintf("%-10s pause=%d", "", step.Hold)
		}
		fmt.Fprintf(w, "%5d  %s  %-3s %-7s %s\n", i, lamps.Lamps(), step.Mode, step.Kind, detail)
	}

	c := ctrl.Counts()
	fmt.Fprintf(w, "sos=%d ok=%d toggles=%d\n", c.SOSCycles, c.OKCycles, c.Toggles)
}
