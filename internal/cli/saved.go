package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/skuquery/internal/savedquery"
	"github.com/roach88/skuquery/internal/share"
)

// SavedOptions holds flags shared by the saved subcommands.
type SavedOptions struct {
	*RootOptions
	DB string
}

// database returns the --db flag or the configured path.
func (o *SavedOptions) database() string {
	if o.DB != "" {
		return o.DB
	}
	return o.settings().Database
}

// withStore opens the store, runs fn and closes the store.
func (o *SavedOptions) withStore(fn func(st *savedquery.Store) error) error {
	st, err := openStore(o.database())
	if err != nil {
		return err
	}
	defer st.Close()
	return fn(st)
}

// NewSavedCommand creates the saved command and its subcommands.
func NewSavedCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SavedOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "saved",
		Short: "Manage saved queries",
		Long: `Save, list, apply and share named queries.

Saved queries keep the filter, sort and hidden columns of a query. The
pagination window is never stored: applying a saved query starts on the
first page.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.DB, "db", "", "saved query database (overrides config)")

	cmd.AddCommand(newSavedSaveCommand(opts))
	cmd.AddCommand(newSavedListCommand(opts))
	cmd.AddCommand(newSavedShowCommand(opts))
	cmd.AddCommand(newSavedApplyCommand(opts))
	cmd.AddCommand(newSavedDeleteCommand(opts))
	cmd.AddCommand(newSavedShareCommand(opts))

	return cmd
}

func newSavedSaveCommand(opts *SavedOptions) *cobra.Command {
	var shared bool
	cmd := &cobra.Command{
		Use:   "save <name> <request.json|->",
		Short: "Save a query under a name",
		Args:  cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := opts.formatter(cmd)
			req, err := readRequest(args[1], cmd.InOrStdin())
			if err != nil {
				if isExitError(err) {
					return err
				}
				return formatter.Fail(ExitFailure, "invalid query", err)
			}
			return opts.withStore(func(st *savedquery.Store) error {
				sq, err := st.SaveQuery(cmd.Context(), args[0], req.Query, shared)
				if errors.Is(err, savedquery.ErrInvalidName) {
					return formatter.Fail(ExitCommandError, "cannot save query", err)
				}
				if err != nil {
					return WrapExitError(ExitCommandError, "failed to save query", err)
				}
				opts.log().Info("saved query", "id", sq.ID, "name", sq.Name)
				if opts.Format == "json" {
					return formatter.Success(sq)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Saved %q as %s\n", sq.Name, sq.ID)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&shared, "shared", false, "mark the query as shared")
	return cmd
}

func newSavedListCommand(opts *SavedOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved queries in creation order",
		Args:  cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withStore(func(st *savedquery.Store) error {
				list, err := st.List(cmd.Context())
				if err != nil {
					return WrapExitError(ExitCommandError, "failed to list saved queries", err)
				}
				if opts.Format == "json" {
					return opts.formatter(cmd).Success(list)
				}
				w := cmd.OutOrStdout()
				if len(list) == 0 {
					fmt.Fprintln(w, "No saved queries.")
					return nil
				}
				for _, sq := range list {
					flag := ""
					if sq.Shared {
						flag = " (shared)"
					}
					fmt.Fprintf(w, "%s  %s  %s%s\n", sq.ID, sq.Created().UTC().Format("2006-01-02 15:04:05"), sq.Name, flag)
				}
				return nil
			})
		},
	}
}

func newSavedShowCommand(opts *SavedOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Print a saved query",
		Args:  cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withStore(func(st *savedquery.Store) error {
				sq, err := getSaved(cmd.Context(), opts, cmd, st, args[0])
				if err != nil {
					return err
				}
				if opts.Format == "json" {
					return opts.formatter(cmd).Success(sq)
				}
				data, err := json.Marshal(sq)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return nil
			})
		},
	}
}

func newSavedApplyCommand(opts *SavedOptions) *cobra.Command {
	qopts := &QueryOptions{RootOptions: opts.RootOptions}
	cmd := &cobra.Command{
		Use:   "apply <id> <snapshot>",
		Short: "Evaluate a saved query against a snapshot",
		Long: `Restore a saved query and evaluate it from the first page.
--offset and --limit page through the restored query.`,
		Args: cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withStore(func(st *savedquery.Store) error {
				sq, err := getSaved(cmd.Context(), opts, cmd, st, args[0])
				if err != nil {
					return err
				}
				opts.log().Debug("applying saved query", "id", sq.ID, "name", sq.Name)
				qopts.preset = &request{Query: savedquery.Apply(sq)}
				return runQuery(qopts, cmd, args[1:])
			})
		},
	}
	cmd.Flags().IntVar(&qopts.Offset, "offset", 0, "window offset")
	cmd.Flags().IntVar(&qopts.Limit, "limit", 0, "window limit")
	cmd.Flags().BoolVar(&qopts.Metrics, "metrics", false, "print Prometheus metrics after the result")
	return cmd
}

func newSavedDeleteCommand(opts *SavedOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a saved query",
		Args:  cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withStore(func(st *savedquery.Store) error {
				if err := st.Delete(cmd.Context(), args[0]); err != nil {
					return savedError(opts, cmd, err)
				}
				if opts.Format == "json" {
					return opts.formatter(cmd).Success(map[string]string{"deleted": args[0]})
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
				return nil
			})
		},
	}
}

// ShareOutput is the JSON payload of the saved share command.
type ShareOutput struct {
	ID     string `json:"id"`
	Shared bool   `json:"shared"`
	Params string `json:"params,omitempty"`
}

func newSavedShareCommand(opts *SavedOptions) *cobra.Command {
	var revoke bool
	cmd := &cobra.Command{
		Use:   "share <id>",
		Short: "Mark a saved query as shared and print its URL parameters",
		Long: `Mark a saved query as shared, or unshared with --revoke.

When the query only uses literal text matches on attributes it is also
printed as URL share parameters (search=..., filter_<key>=..., sort=...).`,
		Args: cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withStore(func(st *savedquery.Store) error {
				if err := st.SetShared(cmd.Context(), args[0], !revoke); err != nil {
					return savedError(opts, cmd, err)
				}
				sq, err := getSaved(cmd.Context(), opts, cmd, st, args[0])
				if err != nil {
					return err
				}

				out := ShareOutput{ID: sq.ID, Shared: sq.Shared}
				if sq.Shared {
					params, err := share.EncodeString(savedquery.Apply(sq))
					switch {
					case errors.Is(err, share.ErrNotShareable):
						opts.log().Debug("saved query has no URL form", "id", sq.ID, "error", err)
					case err != nil:
						return err
					default:
						out.Params = params
					}
				}

				if opts.Format == "json" {
					return opts.formatter(cmd).Success(out)
				}
				w := cmd.OutOrStdout()
				state := "shared"
				if !out.Shared {
					state = "not shared"
				}
				fmt.Fprintf(w, "%s is %s\n", out.ID, state)
				if out.Params != "" {
					fmt.Fprintf(w, "?%s\n", out.Params)
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&revoke, "revoke", false, "clear the shared flag")
	return cmd
}

func getSaved(ctx context.Context, opts *SavedOptions, cmd *cobra.Command, st *savedquery.Store, id string) (savedquery.SavedQuery, error) {
	sq, err := st.Get(ctx, strings.TrimSpace(id))
	if err != nil {
		return savedquery.SavedQuery{}, savedError(opts, cmd, err)
	}
	return sq, nil
}

// savedError reports unknown ids as failures and anything else as a
// store error.
func savedError(opts *SavedOptions, cmd *cobra.Command, err error) error {
	if errors.Is(err, savedquery.ErrNotFound) {
		return opts.formatter(cmd).Fail(ExitFailure, "saved query not found", err)
	}
	return WrapExitError(ExitCommandError, "saved query store error", err)
}
