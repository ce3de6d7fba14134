package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/evyataryagoni/iptracker/internal/geolocation"
	"github.com/evyataryagoni/iptracker/internal/logger"
	"github.com/evyataryagoni/iptracker/internal/models"
	"github.com/evyataryagoni/iptracker/internal/tracker"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// errNoResult is returned when the lookup failed and there is nothing to print
var errNoResult = errors.New("lookup failed, no result")

func newRootCmd(provider geolocation.Provider) *cobra.Command {
	var (
		asJSON  bool
		verbose bool
	)

	cmd := &cobra.Command{
		Use:   "lookup [ip-or-domain]",
		Short: "Look up where an IP address or domain is located",
		Long: `Resolves an IP address or domain to its location, timezone and ISP.
Without an argument the caller's own public IP address is resolved.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logger.NewNop()
			if verbose {
				log = logger.New(logger.Config{Level: "debug", Pretty: true, Output: cmd.ErrOrStderr()})
			}

			ctrl := tracker.New(tracker.Options{
				Provider: provider,
				Logger:   log,
				Notifier: tracker.NotifierFunc(func(message string) {
					color.New(color.FgYellow, color.Bold).Fprintln(cmd.ErrOrStderr(), message)
				}),
			})

			if len(args) == 1 {
				if err := ctrl.Submit(cmd.Context(), args[0]); err != nil {
					return err
				}
			} else {
				ctrl.AutoLocate(cmd.Context())
			}

			result := ctrl.State().Result
			if result == nil {
				return errNoResult
			}

			if asJSON {
				encoder := json.NewEncoder(cmd.OutOrStdout())
				encoder.SetIndent("", "  ")
				return encoder.Encode(result)
			}
			printResult(cmd.OutOrStdout(), result)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the result as JSON")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log the lookup to stderr")
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// printResult writes the four labelled panel fields
func printResult(w io.Writer, result *models.LookupResult) {
	label := color.New(color.FgHiBlack, color.Bold).SprintFunc()
	value := color.New(color.FgCyan).SprintFunc()

	for _, field := range tracker.Panel(result) {
		fmt.Fprintf(w, "%-11s %s\n", label(field.Label), value(field.Value))
	}
}
