package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/robbyt/go-livescript/platform/service"
)

var errCompileFailed = errors.New("compile failed")

func printOutcome(w io.Writer, name string, outcome service.Outcome) {
	fmt.Fprintf(w, "%s: %s\n", name, outcome.Kind)
	if outcome.Reason != nil {
		fmt.Fprintf(w, "  reason: %v\n", outcome.Reason)
	}
	for _, d := range outcome.Diagnostics {
		fmt.Fprintf(w, "  %s\n", d)
	}
}

func newCompileCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "compile <script>",
		Short: "Compile a script and print its diagnostics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, done, err := a.open(cmd, args[0])
			if err != nil {
				return err
			}
			defer done()

			outcome := res.OnLoaded(cmd.Context())
			printOutcome(cmd.OutOrStdout(), res.Name(), outcome)
			if !outcome.HasModule() {
				return fmt.Errorf("%w: %s", errCompileFailed, outcome)
			}
			return nil
		},
	}
}

func newRunCommand(a *app) *cobra.Command {
	var method string
	cmd := &cobra.Command{
		Use:   "run <script> [args...]",
		Short: "Instantiate a script's entry type and call one of its methods",
		Long: "Instantiate the entry type named after the script and optionally call a method.\n" +
			"Arguments are decoded as JSON when they parse, otherwise passed as strings.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, done, err := a.open(cmd, args[0])
			if err != nil {
				return err
			}
			defer done()

			outcome := res.OnLoaded(cmd.Context())
			script, err := res.Instantiate(cmd.Context())
			if err != nil {
				printOutcome(cmd.ErrOrStderr(), res.Name(), outcome)
				return err
			}
			if method == "" {
				fmt.Fprintf(cmd.OutOrStdout(), "instantiated %s\n", script.Name())
				return nil
			}

			result, err := script.Call(cmd.Context(), method, decodeArgs(args[1:])...)
			if err != nil {
				return err
			}
			out, err := json.Marshal(result)
			if err != nil {
				return fmt.Errorf("unable to encode result: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}
	cmd.Flags().StringVarP(&method, "method", "m", "", "Method to call on the new instance.")
	return cmd
}

func decodeArgs(raw []string) []any {
	out := make([]any, len(raw))
	for i, s := range raw {
		var v any
		if err := json.Unmarshal([]byte(s), &v); err != nil {
			out[i] = s
			continue
		}
		out[i] = v
	}
	return out
}

func newReloadCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "reload <script>",
		Short: "Recompile a script and stamp its reload marker",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, done, err := a.open(cmd, args[0])
			if err != nil {
				return err
			}
			defer done()

			outcome, err := res.Reload(cmd.Context())
			printOutcome(cmd.OutOrStdout(), res.Name(), outcome)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "marker: %s\n", res.MetafilePath())
			return nil
		},
	}
}

func newSaveCommand(a *app) *cobra.Command {
	var (
		to   string
		text string
	)
	cmd := &cobra.Command{
		Use:   "save <script>",
		Short: "Write a script's source text to its own path or to --to",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, done, err := a.open(cmd, args[0])
			if err != nil {
				return err
			}
			defer done()

			if cmd.Flags().Changed("text") {
				res.SetText(text)
			}
			if err := res.SaveScript(to); err != nil {
				return err
			}
			target := to
			if target == "" {
				target = res.Path()
			}
			fmt.Fprintf(cmd.OutOrStdout(), "saved %s\n", target)
			return nil
		},
	}
	cmd.Flags().StringVar(&to, "to", "", "Destination path. Defaults to the script's own path.")
	cmd.Flags().StringVar(&text, "text", "", "Replacement source text.")
	return cmd
}

func newMetaCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "meta <script>",
		Short: "Show the reload marker of a script",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, done, err := a.open(cmd, args[0])
			if err != nil {
				return err
			}
			defer done()

			info, err := res.Marker()
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "path: %s\n", info.Path)
			fmt.Fprintf(w, "exists: %t\n", info.Exists)
			if info.Exists {
				fmt.Fprintf(w, "hidden: %t\n", info.Hidden)
				fmt.Fprintf(w, "reloaded: %s\n", info.Reloaded.Format(time.RFC3339))
			}
			return nil
		},
	}
}
