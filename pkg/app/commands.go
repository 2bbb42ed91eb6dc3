package app

// pkg/app/commands.go: the cobra command tree of an Application.

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/kashvi-events/config"
	"github.com/shashiranjanraj/kashvi-events/pkg/event"
	"github.com/shashiranjanraj/kashvi-events/pkg/metrics"
)

// Command builds the root command. Sub-commands act on this Application.
func (a *Application) Command() *cobra.Command {
	root := &cobra.Command{
		Use:           config.AppName(),
		Short:         "Inspect and exercise the kashvi-events dispatcher",
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	root.AddCommand(a.debugCmd())
	root.AddCommand(a.dispatchCmd())
	root.AddCommand(a.metricsCmd())
	return root
}

// kashvi-events debug:event-dispatcher [event]
func (a *Application) debugCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "debug:event-dispatcher [event]",
		Short: "List the registered listeners, in call order",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if len(args) == 1 {
				if !a.bus.HasListeners(args[0]) {
					fmt.Fprintf(out, "No listeners registered for %q.\n", args[0])
					return nil
				}
				return writeListeners(out, a.bus, args[0])
			}

			all := a.bus.AllListeners()
			if len(all) == 0 {
				fmt.Fprintln(out, "No listeners registered.")
				return nil
			}
			names := make([]string, 0, len(all))
			for name := range all {
				names = append(names, name)
			}
			sort.Strings(names)

			for i, name := range names {
				if i > 0 {
					fmt.Fprintln(out)
				}
				fmt.Fprintf(out, "%q event\n", name)
				if err := writeListeners(out, a.bus, name); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func writeListeners(out io.Writer, d event.Dispatcher, name string) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ORDER\tPRIORITY\tLISTENER")
	for i, l := range d.Listeners(name) {
		prio, _ := d.ListenerPriority(name, l)
		fmt.Fprintf(tw, "#%d\t%d\t%s\n", i+1, prio, event.Describe(l))
	}
	return tw.Flush()
}

// kashvi-events dispatch <event>
func (a *Application) dispatchCmd() *cobra.Command {
	var (
		subject string
		rawArgs []string
	)

	cmd := &cobra.Command{
		Use:   "dispatch <event>",
		Short: "Dispatch a generic event and report what ran",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			name := args[0]

			e := event.NewGenericEvent(subject, nil)
			for _, kv := range rawArgs {
				k, v, ok := strings.Cut(kv, "=")
				if !ok || k == "" {
					return fmt.Errorf("dispatch: --arg %q is not key=value", kv)
				}
				e.SetArgument(k, parseScalar(v))
			}

			if a.tracer != nil {
				a.tracer.Reset()
			}
			_, err := a.bus.Dispatch(name, e)

			fmt.Fprintf(out, "Dispatched %q\n", name)
			if a.tracer != nil {
				for _, c := range a.tracer.Called() {
					fmt.Fprintf(out, "  ran      %s (priority %d, %s)\n", c.Listener, c.Priority, c.Duration)
				}
				for _, s := range a.tracer.Skipped() {
					fmt.Fprintf(out, "  skipped  %s (%s)\n", s.Listener, s.Reason)
				}
				if len(a.tracer.Orphaned()) > 0 {
					fmt.Fprintln(out, "  no listener")
				}
			}
			if e.IsPropagationStopped() {
				fmt.Fprintln(out, "Propagation stopped.")
			}
			if e.Arguments().Len() > 0 {
				fmt.Fprintln(out, "Arguments:")
				for k, v := range e.All() {
					fmt.Fprintf(out, "  %s = %s\n", k, v)
				}
			}
			return err
		},
	}

	cmd.Flags().StringVarP(&subject, "subject", "s", "", "Subject of the generic event")
	cmd.Flags().StringArrayVarP(&rawArgs, "arg", "a", nil, "Event argument as key=value (repeatable)")
	return cmd
}

// parseScalar reads an int, float or bool, falling back to the raw string.
func parseScalar(s string) any {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}
	return s
}

// kashvi-events metrics
func (a *Application) metricsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "metrics",
		Short: "Print the dispatcher metrics in Prometheus text format",
		RunE: func(cmd *cobra.Command, args []string) error {
			return metrics.WriteText(cmd.OutOrStdout())
		},
	}
}
