// Package report renders aggregated results for people and for monitoring.
package report

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/signalnine/tribunal/internal/aggregate"
	"github.com/signalnine/tribunal/internal/result"
)

const (
	FormatTable    = "table"
	FormatMarkdown = "markdown"
	FormatJSON     = "json"
	FormatHTML     = "html"
)

const (
	GroupModel    = "model"
	GroupScenario = "scenario"
	GroupOverall  = "overall"
)

var (
	Formats = []string{FormatTable, FormatMarkdown, FormatJSON, FormatHTML}
	Groups  = []string{GroupModel, GroupScenario, GroupOverall}

	ErrUnknownFormat = errors.New("unknown format")
	ErrUnknownGroup  = errors.New("unknown group")
)

var tracer trace.Tracer = otel.Tracer("tribunal/report")

type Options struct {
	Format string
	Group  string
	// Width caps the table separator. Zero sizes it to the terminal when
	// the writer is one.
	Width int
}

// Row is the summary of one group.
type Row struct {
	Key     string            `json:"key"`
	Summary aggregate.Summary `json:"summary"`
}

// Section is a grouped summary ready for rendering.
type Section struct {
	Group   string   `json:"group"`
	Metrics []string `json:"metrics"`
	Rows    []Row    `json:"rows"`
}

// Build summarizes results under group. Rows are sorted by key.
func Build(ctx context.Context, agg *aggregate.Aggregator, results []result.Normalized, group string) (*Section, error) {
	_, span := tracer.Start(ctx, "report.Build", trace.WithAttributes(
		attribute.String("group", group),
		attribute.Int("results", len(results)),
	))
	defer span.End()

	sec, err := build(agg, results, group)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int("rows", len(sec.Rows)))
	return sec, nil
}

func build(agg *aggregate.Aggregator, results []result.Normalized, group string) (*Section, error) {
	sec := &Section{Group: group, Metrics: aggregate.MetricNames(results)}
	switch group {
	case GroupOverall:
		s, err := agg.Summarize(results)
		if err != nil {
			return nil, err
		}
		sec.Rows = []Row{{Key: GroupOverall, Summary: s}}
		return sec, nil
	case GroupModel, GroupScenario:
		keyFn := aggregate.ByModel
		if group == GroupScenario {
			keyFn = aggregate.ByScenario
		}
		if len(results) == 0 {
			return nil, aggregate.ErrEmptyInput
		}
		summaries, err := agg.GroupAndSummarize(results, keyFn)
		if err != nil {
			return nil, err
		}
		keys := make([]string, 0, len(summaries))
		for k := range summaries {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			sec.Rows = append(sec.Rows, Row{Key: k, Summary: summaries[k]})
		}
		return sec, nil
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownGroup, group)
	}
}

// Generate summarizes results and writes them to w in opts.Format.
func Generate(ctx context.Context, agg *aggregate.Aggregator, results []result.Normalized, opts Options, w io.Writer) error {
	if opts.Format == "" {
		opts.Format = FormatTable
	}
	if opts.Group == "" {
		opts.Group = GroupModel
	}
	ctx, span := tracer.Start(ctx, "report.Generate", trace.WithAttributes(
		attribute.String("format", opts.Format),
	))
	defer span.End()

	err := generate(ctx, agg, results, opts, w)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

func generate(ctx context.Context, agg *aggregate.Aggregator, results []result.Normalized, opts Options, w io.Writer) error {
	switch opts.Format {
	case FormatTable, FormatMarkdown, FormatJSON, FormatHTML:
	default:
		return fmt.Errorf("%w %q", ErrUnknownFormat, opts.Format)
	}

	sec, err := Build(ctx, agg, results, opts.Group)
	if err != nil {
		return err
	}

	switch opts.Format {
	case FormatMarkdown:
		return writeMarkdown(sec, w)
	case FormatJSON:
		return writeJSON(sec, w)
	case FormatHTML:
		return writeHTML(sec, w)
	default:
		width := opts.Width
		if width == 0 {
			width = terminalWidth(w)
		}
		return writeTable(sec, w, width)
	}
}

func writeJSON(sec *Section, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(sec)
}
