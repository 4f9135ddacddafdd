package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/jensneuse/abstractlogger"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/gqlerror"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v2"

	"github.com/wundergraph/gqlstatic/pkg/astvalidation"
	"github.com/wundergraph/gqlstatic/pkg/graphql"
	"github.com/wundergraph/gqlstatic/pkg/irep"
	"github.com/wundergraph/gqlstatic/pkg/warden"
)

const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

var ErrInvalidDocuments = errors.New("invalid documents")

// validateCmd represents the validate command
var validateCmd = &cobra.Command{
	Use:   "validate QUERY_FILE...",
	Short: "validates GraphQL documents against a schema",
	Long: `validate checks every query file against the schema and prints the errors
found or, for valid documents, their internal representation.

Query files contain a GraphQL document. Files ending in .json are read as
GraphQL requests ({"query": "...", "operationName": "..."}).`,
	Example: "gqlstatic validate --schema starwars.graphql --hide-directive inaccessible queries/*.graphql",
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		config := validateConfigFromViper()
		return runValidate(cmd.Context(), cmd.OutOrStdout(), config, args)
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringSlice("schema", nil, "schema files, all of them make up the schema")
	validateCmd.Flags().Bool("no-validate", false, "only build the internal representation, skip all rules")
	validateCmd.Flags().StringSlice("rules", nil, "rules to run, defaults to all (see gqlstatic rules)")
	validateCmd.Flags().StringSlice("hide-directive", nil, "hide types and fields annotated with this directive")
	validateCmd.Flags().StringSlice("allow-field", nil, "only allow these fields, given as Type.field or Type.*")
	validateCmd.Flags().StringSlice("block-field", nil, "block these fields, given as Type.field or Type.*")
	validateCmd.Flags().String("format", formatText, "output format: text, json or yaml")
	validateCmd.Flags().Int("document-cache-size", 256, "number of parsed documents kept for identical queries, 0 disables the cache")
	validateCmd.Flags().Int("concurrency", runtime.NumCPU(), "number of documents validated in parallel")

	for _, name := range []string{"schema", "no-validate", "rules", "hide-directive", "allow-field", "block-field", "format", "document-cache-size", "concurrency"} {
		_ = viper.BindPFlag(name, validateCmd.Flags().Lookup(name))
	}
}

type validateConfig struct {
	SchemaFiles      []string
	NoValidate       bool
	Rules            []string
	HiddenDirectives []string
	AllowedFields    []string
	BlockedFields    []string
	Format           string
	CacheSize        int
	Concurrency      int
}

func validateConfigFromViper() validateConfig {
	return validateConfig{
		SchemaFiles:      viper.GetStringSlice("schema"),
		NoValidate:       viper.GetBool("no-validate"),
		Rules:            viper.GetStringSlice("rules"),
		HiddenDirectives: viper.GetStringSlice("hide-directive"),
		AllowedFields:    viper.GetStringSlice("allow-field"),
		BlockedFields:    viper.GetStringSlice("block-field"),
		Format:           viper.GetString("format"),
		CacheSize:        viper.GetInt("document-cache-size"),
		Concurrency:      viper.GetInt("concurrency"),
	}
}

func visibilityFilter(config validateConfig) (warden.Filter, error) {
	var filters []warden.Filter
	if len(config.HiddenDirectives) != 0 {
		filters = append(filters, warden.HiddenByDirective(config.HiddenDirectives...))
	}
	for _, restriction := range []struct {
		kind    graphql.FieldRestrictionListKind
		entries []string
	}{
		{graphql.AllowList, config.AllowedFields},
		{graphql.BlockList, config.BlockedFields},
	} {
		if len(restriction.entries) == 0 {
			continue
		}
		list, err := graphql.ParseFieldRestrictions(restriction.kind, restriction.entries...)
		if err != nil {
			return nil, err
		}
		filters = append(filters, list.Filter())
	}
	return warden.All(filters...), nil
}

type documentResult struct {
	File       string                            `json:"file" yaml:"file"`
	Valid      bool                              `json:"valid" yaml:"valid"`
	Operations []string                          `json:"operations,omitempty" yaml:"operations,omitempty"`
	Errors     graphql.OperationValidationErrors `json:"errors,omitempty" yaml:"errors,omitempty"`

	outline string
}

func runValidate(ctx context.Context, out io.Writer, config validateConfig, files []string) error {
	switch config.Format {
	case formatText, formatJSON, formatYAML:
	default:
		return errors.Errorf("unknown format %q", config.Format)
	}

	schema, err := loadSchema(config.SchemaFiles)
	if err != nil {
		return err
	}
	validator, err := newValidator(config.Rules)
	if err != nil {
		return err
	}

	visibility, err := visibilityFilter(config)
	if err != nil {
		return err
	}
	registry := prometheus.NewRegistry()
	metrics, err := graphql.NewMetricsTracer(registry)
	if err != nil {
		return err
	}
	options := []graphql.Option{
		graphql.WithTracer(graphql.Tracers(graphql.NewLoggerTracer(logger), metrics)),
		graphql.WithVisibility(visibility),
	}
	if config.CacheSize > 0 {
		cache, err := graphql.NewDocumentCache(config.CacheSize)
		if err != nil {
			return err
		}
		options = append(options, graphql.WithDocumentCache(cache))
	}

	results := make([]documentResult, len(files))
	group, ctx := errgroup.WithContext(ctx)
	if config.Concurrency > 0 {
		group.SetLimit(config.Concurrency)
	}
	for i, file := range files {
		i, file := i, file
		group.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			result, err := validateFile(schema, validator, file, !config.NoValidate, options)
			if err != nil {
				return errors.Wrapf(err, "validating %s", file)
			}
			results[i] = result
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return err
	}

	invalid := 0
	for _, result := range results {
		if !result.Valid {
			invalid++
		}
	}
	logger.Debug("validated documents",
		abstractlogger.Int("documents", len(results)),
		abstractlogger.Int("invalid", invalid),
	)
	logTraceSummary(registry)

	if err := printResults(out, config.Format, results); err != nil {
		return err
	}
	if invalid != 0 {
		return errors.Wrapf(ErrInvalidDocuments, "%d of %d", invalid, len(results))
	}
	return nil
}

func logTraceSummary(registry *prometheus.Registry) {
	families, err := registry.Gather()
	if err != nil {
		logger.Error("gathering trace metrics", abstractlogger.Error(err))
		return
	}
	for _, family := range families {
		for _, metric := range family.GetMetric() {
			var key string
			for _, label := range metric.GetLabel() {
				if label.GetName() == "key" {
					key = label.GetValue()
				}
			}
			logger.Debug("trace summary",
				abstractlogger.String("key", key),
				abstractlogger.Any("calls", metric.GetHistogram().GetSampleCount()),
				abstractlogger.Any("seconds", metric.GetHistogram().GetSampleSum()),
			)
		}
	}
}

func loadSchema(files []string) (*graphql.Schema, error) {
	if len(files) == 0 {
		return nil, errors.New("no schema file given, use --schema")
	}
	sources := make([]*ast.Source, 0, len(files))
	for _, file := range files {
		content, err := os.ReadFile(file)
		if err != nil {
			return nil, errors.Wrap(err, "reading schema")
		}
		sources = append(sources, &ast.Source{Name: file, Input: string(content)})
	}
	return graphql.NewSchemaFromSources(sources...)
}

func newValidator(rules []string) (*astvalidation.Validator, error) {
	if len(rules) == 0 {
		rules = astvalidation.RuleNames()
	}
	configured, err := astvalidation.RulesByName(rules...)
	if err != nil {
		return nil, err
	}
	validator, err := astvalidation.NewValidator(configured...)
	if err != nil {
		return nil, err
	}
	validator.SetLogger(logger)
	return validator, nil
}

func validateFile(schema *graphql.Schema, validator *astvalidation.Validator, file string, validate bool, options []graphql.Option) (documentResult, error) {
	result := documentResult{File: file}

	content, err := os.ReadFile(file)
	if err != nil {
		return result, err
	}

	query, err := parseFile(schema, file, content, options)
	if err != nil {
		var gqlErr *gqlerror.Error
		if !errors.As(err, &gqlErr) {
			return result, err
		}
		result.Errors = syntaxErrors(gqlErr)
		return result, nil
	}

	validation, err := query.ValidateWith(validator, validate)
	if err != nil {
		return result, err
	}
	result.Valid = validation.Valid
	if !validation.Valid {
		result.Errors = validation.Errors.(graphql.OperationValidationErrors)
		return result, nil
	}

	for _, op := range validation.IRep.OperationDefinitions {
		result.Operations = append(result.Operations, strings.TrimSpace(string(op.OperationType)+" "+op.Name))
	}
	result.outline, err = irep.PrintString(validation.IRep)
	return result, err
}

func parseFile(schema *graphql.Schema, file string, content []byte, options []graphql.Option) (*graphql.Query, error) {
	options = append(options[:len(options):len(options)], graphql.WithSourceName(file))
	if filepath.Ext(file) != ".json" {
		return graphql.NewQuery(schema, string(content), options...)
	}
	request, err := graphql.UnmarshalRequest(strings.NewReader(string(content)))
	if err != nil {
		return nil, err
	}
	return request.Parse(schema, options...)
}

func syntaxErrors(err *gqlerror.Error) graphql.OperationValidationErrors {
	validationErr := graphql.OperationValidationError{Message: err.Message}
	for _, location := range err.Locations {
		validationErr.Locations = append(validationErr.Locations, graphql.ErrorLocation{Line: location.Line, Column: location.Column})
	}
	return graphql.OperationValidationErrors{validationErr}
}

func printResults(out io.Writer, format string, results []documentResult) error {
	switch format {
	case formatJSON:
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(results)
	case formatYAML:
		data, err := yaml.Marshal(results)
		if err != nil {
			return err
		}
		_, err = out.Write(data)
		return err
	default:
		return printText(out, results)
	}
}

func printText(out io.Writer, results []documentResult) error {
	var text strings.Builder
	for _, result := range results {
		if result.Valid {
			fmt.Fprintf(&text, "%s: valid\n", result.File)
			for _, line := range strings.SplitAfter(result.outline, "\n") {
				if line != "" {
					text.WriteString("  " + line)
				}
			}
			continue
		}
		fmt.Fprintf(&text, "%s: %d error(s)\n", result.File, len(result.Errors))
		for _, err := range result.Errors {
			text.WriteString("  ")
			for _, location := range err.Locations {
				fmt.Fprintf(&text, "%d:%d ", location.Line, location.Column)
			}
			text.WriteString(err.Message)
			if len(err.Path) != 0 {
				fmt.Fprintf(&text, " (at %s)", errorPathString(err.Path))
			}
			text.WriteString("\n")
		}
	}
	_, err := io.WriteString(out, text.String())
	return err
}

func errorPathString(path graphql.ErrorPath) string {
	segments := make([]string, 0, len(path))
	for _, segment := range path {
		segments = append(segments, fmt.Sprint(segment))
	}
	return strings.Join(segments, ".")
}
