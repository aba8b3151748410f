package cli

import (
	"fmt"
	"io"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/skuquery/internal/attr"
	"github.com/roach88/skuquery/internal/catalog"
	"github.com/roach88/skuquery/internal/engine"
	"github.com/roach88/skuquery/internal/metrics"
	"github.com/roach88/skuquery/internal/query"
	"github.com/roach88/skuquery/internal/schema"
)

// QueryOptions holds flags for the query command.
type QueryOptions struct {
	*RootOptions
	Share       string
	Offset      int
	Limit       int
	Parallelism int
	SchemaDir   string
	Metrics     bool

	// preset replaces the request argument when set (saved apply).
	preset *request
}

// QueryOutput is the JSON payload of a successful query.
type QueryOutput struct {
	Query    query.Query     `json:"query"`
	Result   *query.Result   `json:"result"`
	Warnings []query.Warning `json:"warnings,omitempty"`
}

// NewQueryCommand creates the query command.
func NewQueryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &QueryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "query <snapshot> [request.json|-]",
		Short: "Evaluate a query against a record snapshot",
		Long: `Filter, sort and paginate the records in a JSON or YAML snapshot.

The query comes from a JSON request file, from stdin ("-"), or from URL
share parameters given with --share. Without any of them every record
matches. --offset and --limit override the request's window.

Exit codes:
  0 - Query evaluated
  1 - Query rejected (malformed pattern, bad window, unknown operator)
  2 - Command error (missing files, bad config)

Examples:
  skuquery query products.yaml request.json
  skuquery query products.yaml --share "search=mouse&sort=price&order=desc"
  echo '{"filter":{"brand":{"equals":"Tech"}}}' | skuquery query products.yaml -
  skuquery query products.yaml request.json --format json --metrics`,
		Args: cobra.RangeArgs(1, 2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(opts, cmd, args)
		},
	}

	cmd.Flags().StringVar(&opts.Share, "share", "", "URL share parameters to decode into the query")
	cmd.Flags().IntVar(&opts.Offset, "offset", 0, "window offset")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "window limit")
	cmd.Flags().IntVar(&opts.Parallelism, "parallelism", 0, "filter workers (overrides config)")
	cmd.Flags().StringVar(&opts.SchemaDir, "schema", "", "CUE schema directory used to lint the query (overrides config)")
	cmd.Flags().BoolVar(&opts.Metrics, "metrics", false, "print Prometheus metrics after the result")

	return cmd
}

func runQuery(opts *QueryOptions, cmd *cobra.Command, args []string) error {
	formatter := opts.formatter(cmd)
	cfg := opts.settings()

	if opts.Share != "" && len(args) == 2 {
		return NewExitError(ExitCommandError, "--share and a request file are mutually exclusive")
	}

	snap, err := loadSnapshot(args[0])
	if err != nil {
		return err
	}
	formatter.VerboseLog("Loaded %d record(s) from %s", snap.Len(), args[0])

	req := request{Query: query.Query{Window: query.DefaultWindow()}}
	switch {
	case opts.preset != nil:
		req = *opts.preset
	case opts.Share != "":
		req, err = shareRequest(opts.Share)
	case len(args) == 2:
		req, err = readRequest(args[1], cmd.InOrStdin())
	}
	if err != nil {
		if isExitError(err) {
			return err
		}
		return formatter.Fail(ExitFailure, "invalid query", err)
	}

	q := req.Query
	if !req.HasWindow {
		q.Window.Limit = cfg.DefaultLimit
	}
	if cmd.Flags().Changed("offset") {
		q.Window.Offset = opts.Offset
	}
	if cmd.Flags().Changed("limit") {
		q.Window.Limit = opts.Limit
	}

	var warnings []query.Warning
	schemaDir := cfg.SchemaDir
	if opts.SchemaDir != "" {
		schemaDir = opts.SchemaDir
	}
	if schemaDir != "" {
		sch, err := loadSchema(schemaDir)
		if err != nil {
			return err
		}
		warnings = lintQuery(opts, q, sch)
	}

	var extra []engine.Option
	if cmd.Flags().Changed("parallelism") {
		extra = append(extra, engine.WithParallelism(opts.Parallelism))
	}
	var collector *metrics.Collector
	if opts.Metrics {
		collector = metrics.New()
		extra = append(extra, engine.WithMetrics(collector))
	}

	res, evalErr := opts.newEngine(extra...).Evaluate(q, snap)
	if evalErr != nil {
		err = formatter.Fail(ExitFailure, "query rejected", evalErr)
	} else if opts.Format == "json" {
		err = formatter.Success(QueryOutput{Query: q, Result: res, Warnings: warnings})
	} else {
		err = writeQueryText(cmd.OutOrStdout(), q, res, warnings)
	}

	if collector != nil {
		w := cmd.OutOrStdout()
		if opts.Format == "json" {
			w = cmd.ErrOrStderr()
		}
		if mErr := collector.WriteText(w); mErr != nil && err == nil {
			err = WrapExitError(ExitCommandError, "failed to write metrics", mErr)
		}
	}
	return err
}

func lintQuery(opts *QueryOptions, q query.Query, sch *schema.Schema) []query.Warning {
	lint := query.Lint(q, sch)
	for _, w := range lint.Warnings {
		opts.log().Warn("query lint", "code", w.Code, "field", w.Field, "message", w.Message)
	}
	return lint.Warnings
}

// writeQueryText prints one line per record followed by a summary.
// Hidden columns are left out of the attribute listing.
func writeQueryText(w io.Writer, q query.Query, res *query.Result, warnings []query.Warning) error {
	for _, warning := range warnings {
		fmt.Fprintf(w, "warning: %s\n", warning)
	}
	for _, r := range res.Data {
		attrs, err := attr.MarshalCanonical(visibleAttributes(r, q.HiddenColumns))
		if err != nil {
			return err
		}
		sku := r.SKU
		if sku == "" {
			sku = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", r.ID, sku, attrs)
	}

	fmt.Fprintln(w)
	if len(res.Data) == 0 {
		fmt.Fprintf(w, "No records in window (total %d)\n", res.Total)
	} else {
		first := res.Pagination.Offset + 1
		last := res.Pagination.Offset + len(res.Data)
		fmt.Fprintf(w, "Showing %d-%d of %d\n", first, last, res.Total)
	}
	if res.Pagination.HasMore {
		fmt.Fprintf(w, "More records after offset %d\n", res.Pagination.Offset+len(res.Data))
	}
	fmt.Fprintf(w, "Duration: %.3fms\n", res.Debug.Milliseconds())
	return nil
}

func visibleAttributes(r catalog.Record, hidden []string) map[string]any {
	out := r.AttributeMap()
	for key := range out {
		if slices.Contains(hidden, key) || slices.Contains(hidden, catalog.AttributePrefix+key) {
			delete(out, key)
		}
	}
	return out
}
