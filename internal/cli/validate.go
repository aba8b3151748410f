package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/skuquery/internal/query"
	"github.com/roach88/skuquery/internal/schema"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	Query  string
	Strict bool
}

// GroupSummary lists the attribute keys of one display group.
type GroupSummary struct {
	Name string   `json:"name"`
	Keys []string `json:"keys"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid      bool            `json:"valid"`
	Attributes int             `json:"attributes"`
	Groups     []GroupSummary  `json:"groups"`
	Records    int             `json:"records,omitempty"`
	Invalid    int             `json:"invalid,omitempty"`
	Errors     []string        `json:"errors,omitempty"`
	Warnings   []query.Warning `json:"warnings,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate <schema-dir> [snapshot]",
		Short: "Check an attribute schema, records and queries",
		Long: `Compile the CUE attribute schema in schema-dir. When a snapshot is
given, every record is validated against the schema. With --query the
request is linted against the schema: unknown fields, operators that do
not fit the attribute type and values outside declared choices.

Lint findings are warnings; --strict turns them into failures.

Exit codes:
  0 - Schema, records and query are valid
  1 - Invalid records (or warnings with --strict)
  2 - Command error (schema does not compile, missing files)`,
		Args: cobra.RangeArgs(1, 2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, cmd, args)
		},
	}

	cmd.Flags().StringVar(&opts.Query, "query", "", "request JSON to lint against the schema")
	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "treat lint warnings as failures")

	return cmd
}

func runValidate(opts *ValidateOptions, cmd *cobra.Command, args []string) error {
	formatter := opts.formatter(cmd)

	sch, err := loadSchema(args[0])
	if err != nil {
		return err
	}
	formatter.VerboseLog("Compiled %d attribute(s) from %s", len(sch.Keys()), args[0])

	result := ValidationResult{
		Valid:      true,
		Attributes: len(sch.Keys()),
		Groups:     summarizeGroups(sch),
	}

	if len(args) == 2 {
		snap, err := loadSnapshot(args[1])
		if err != nil {
			return err
		}
		v, err := schema.NewValidator(sch)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to build validator", err)
		}
		result.Records = snap.Len()
		for _, verr := range v.ValidateSnapshot(snap) {
			result.Errors = append(result.Errors, verr.Error())
			result.Invalid++
		}
	}

	if opts.Query != "" {
		req, err := readRequest(opts.Query, cmd.InOrStdin())
		if err != nil {
			if isExitError(err) {
				return err
			}
			result.Errors = append(result.Errors, err.Error())
		} else {
			result.Warnings = query.Lint(req.Query, sch).Warnings
		}
	}

	result.Valid = len(result.Errors) == 0 && (!opts.Strict || len(result.Warnings) == 0)

	if opts.Format == "json" {
		if err := outputValidateJSON(formatter, result); err != nil {
			return err
		}
	} else {
		writeValidateText(cmd, result)
	}

	if !result.Valid {
		return NewExitError(ExitFailure, "validation failed")
	}
	return nil
}

func summarizeGroups(sch *schema.Schema) []GroupSummary {
	groups := sch.Groups()
	out := make([]GroupSummary, len(groups))
	for i, g := range groups {
		out[i] = GroupSummary{Name: g.Name, Keys: g.Keys}
	}
	return out
}

func outputValidateJSON(formatter *OutputFormatter, result ValidationResult) error {
	if result.Valid {
		return formatter.Success(result)
	}
	return formatter.Error(ErrCodeInvalid, "validation failed", result)
}

func writeValidateText(cmd *cobra.Command, result ValidationResult) {
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Schema: %d attribute(s)\n", result.Attributes)
	for _, g := range result.Groups {
		fmt.Fprintf(w, "  %s: %s\n", g.Name, strings.Join(g.Keys, ", "))
	}
	if result.Records > 0 {
		fmt.Fprintf(w, "Records: %d checked, %d invalid\n", result.Records, result.Invalid)
	}
	for _, e := range result.Errors {
		fmt.Fprintf(w, "✗ %s\n", e)
	}
	for _, warning := range result.Warnings {
		fmt.Fprintf(w, "warning: %s\n", warning)
	}
	if result.Valid {
		fmt.Fprintln(w, "✓ Valid")
	}
}
