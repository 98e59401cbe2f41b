// Package cli implements the triage command: single, batch and list modes.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"mortgage-triage-go/internal/config"
	"mortgage-triage-go/internal/logger"
	"mortgage-triage-go/internal/pipeline"
	"mortgage-triage-go/internal/report"
	"mortgage-triage-go/internal/rules"
	"mortgage-triage-go/internal/source"
	"mortgage-triage-go/internal/types"
)

const batchBase = "batch_results"

var (
	ErrNoMode         = errors.New("one of -single, -batch or -list is required")
	ErrTooManyModes   = errors.New("-single, -batch and -list are mutually exclusive")
	ErrFormatRequired = errors.New("-format is required for -single and -batch")
	ErrNoTranscripts  = errors.New("no transcripts found")
)

// Command holds parsed flags and the writers output goes to.
type Command struct {
	cfg      config.Config
	single   string
	batch    bool
	list     bool
	workbook string

	out io.Writer
	log *logger.Logger
}

// Run parses args (without the program name) and executes the selected mode.
func Run(ctx context.Context, args []string, out io.Writer, log *logger.Logger) error {
	if log == nil {
		log = logger.Nop()
	}
	c := &Command{out: out, log: log.Component("cli")}

	fs := flag.NewFlagSet("triage", flag.ContinueOnError)
	fs.SetOutput(out)
	c.cfg.RegisterFlags(fs)
	fs.StringVar(&c.single, "single", "", "triage one transcript file or http(s) URL")
	fs.BoolVar(&c.batch, "batch", false, "triage every .txt file in -dir")
	fs.BoolVar(&c.list, "list", false, "list transcripts in -dir")
	fs.StringVar(&c.workbook, "workbook", "", "with -batch, read transcripts from an XLSX workbook instead of -dir")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := c.validate(); err != nil {
		return err
	}

	switch {
	case c.list:
		return c.runList()
	case c.single != "":
		return c.runSingle(ctx)
	default:
		return c.runBatch(ctx)
	}
}

func (c *Command) validate() error {
	modes := 0
	for _, on := range []bool{c.single != "", c.batch, c.list} {
		if on {
			modes++
		}
	}
	switch {
	case modes == 0:
		return ErrNoMode
	case modes > 1:
		return ErrTooManyModes
	}
	if !c.list && c.cfg.Format == "" {
		return ErrFormatRequired
	}
	return c.cfg.Validate()
}

func (c *Command) pipeline(src pipeline.Reader) (*pipeline.Pipeline, error) {
	opts := []pipeline.Option{pipeline.WithLogger(c.log)}
	if c.cfg.RulesPath != "" {
		rs, err := rules.Load(c.cfg.RulesPath)
		if err != nil {
			return nil, err
		}
		opts = append(opts, pipeline.WithRules(rs))
	}
	return pipeline.New(src, opts...), nil
}

func (c *Command) reader() source.Mux {
	return source.Mux{
		Files: source.FileReader{},
		HTTP:  source.NewHTTPReader(c.cfg.HTTPTimeout, c.log),
	}
}

func (c *Command) runList() error {
	files, err := source.Discover(c.cfg.TranscriptsDir, ".txt")
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Fprintf(c.out, "No transcript files found in %s\n", c.cfg.TranscriptsDir)
		return nil
	}
	fmt.Fprintf(c.out, "Available transcripts in %s:\n", c.cfg.TranscriptsDir)
	for i, f := range files {
		fmt.Fprintf(c.out, "  %d. %s\n", i+1, filepath.Base(f))
	}
	fmt.Fprintf(c.out, "\nUsage:\n  triage -single %s -format json\n  triage -batch -format both\n", files[0])
	return nil
}

func (c *Command) runSingle(ctx context.Context) error {
	p, err := c.pipeline(c.reader())
	if err != nil {
		return err
	}
	res, err := p.ProcessSingle(ctx, c.single)
	if err != nil {
		return fmt.Errorf("process %s: %w", c.single, err)
	}

	name := refName(c.single)
	base := strings.TrimSuffix(name, path.Ext(name))
	saved, err := c.save(base, []string{name}, []*types.TriageResult{res}, false)
	if err != nil {
		return err
	}
	c.printResult(res)
	c.printSaved(saved)
	return nil
}

func (c *Command) runBatch(ctx context.Context) error {
	var (
		refs  []string
		names []string
		src   pipeline.Reader
	)
	if c.workbook != "" {
		wb, err := source.OpenWorkbook(c.workbook)
		if err != nil {
			return err
		}
		refs, src = wb.Refs(), wb
		names = refs
	} else {
		files, err := source.Discover(c.cfg.TranscriptsDir, ".txt")
		if err != nil {
			return err
		}
		refs, src = files, c.reader()
		for _, f := range files {
			names = append(names, filepath.Base(f))
		}
	}
	if len(refs) == 0 {
		return fmt.Errorf("%w in %s", ErrNoTranscripts, c.cfg.TranscriptsDir)
	}

	p, err := c.pipeline(src)
	if err != nil {
		return err
	}
	results, err := p.ProcessBatchParallel(ctx, refs, c.cfg.Workers)
	if err != nil {
		return fmt.Errorf("batch: %w", err)
	}

	saved, err := c.save(batchBase, names, results, true)
	if err != nil {
		return err
	}
	c.printStats(results)
	c.printSaved(saved)
	return nil
}

// save writes results under the results dir in the configured format and
// returns the paths written.
func (c *Command) save(base string, names []string, results []*types.TriageResult, batch bool) ([]string, error) {
	if err := os.MkdirAll(c.cfg.ResultsDir, 0o755); err != nil {
		return nil, fmt.Errorf("create results dir: %w", err)
	}
	stem := filepath.Join(c.cfg.ResultsDir, base)

	var saved []string
	if c.cfg.Format == config.FormatJSON || c.cfg.Format == config.FormatBoth {
		var v any = results[0]
		if batch {
			v = withNames(names, results)
		}
		if err := writeJSON(stem+".json", v); err != nil {
			return nil, err
		}
		saved = append(saved, stem+".json")
	}
	if c.cfg.Format == config.FormatCSV || c.cfg.Format == config.FormatBoth {
		write := report.WriteResultCSV
		if batch {
			write = report.WriteCSV
		}
		if err := writeFile(stem+".csv", func(w io.Writer) error { return write(w, names, results) }); err != nil {
			return nil, err
		}
		saved = append(saved, stem+".csv")
	}
	if c.cfg.Format == config.FormatXLSX {
		if err := report.WriteXLSX(stem+".xlsx", names, results); err != nil {
			return nil, err
		}
		saved = append(saved, stem+".xlsx")
	}
	return saved, nil
}

func withNames(names []string, results []*types.TriageResult) []map[string]any {
	out := make([]map[string]any, 0, len(results))
	for i, r := range results {
		m := r.ToMap()
		if i < len(names) {
			m["filename"] = names[i]
		} else {
			m["filename"] = report.DefaultName(i)
		}
		out = append(out, m)
	}
	return out
}

func writeJSON(p string, v any) error {
	return writeFile(p, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	})
}

func writeFile(p string, fill func(io.Writer) error) error {
	f, err := os.Create(p)
	if err != nil {
		return fmt.Errorf("create %s: %w", p, err)
	}
	if err := fill(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", p, err)
	}
	return f.Close()
}

func (c *Command) printResult(res *types.TriageResult) {
	codes := make([]string, 0, len(res.ReasonCodes))
	for _, rc := range res.ReasonCodes {
		codes = append(codes, rc.GetCode())
	}
	fmt.Fprintf(c.out, "Intent: %s\n", res.Intent)
	fmt.Fprintf(c.out, "Escalate: %t\n", res.Escalate)
	fmt.Fprintf(c.out, "Risk Level: %s\n", res.RiskLevel)
	fmt.Fprintf(c.out, "Reason Codes: %s\n", strings.Join(codes, ", "))
	fmt.Fprintln(c.out, "Summary:")
	for _, b := range res.SummaryBullet {
		fmt.Fprintf(c.out, "  - %s\n", b)
	}
}

func (c *Command) printStats(results []*types.TriageResult) {
	s := report.Summarize(results)
	fmt.Fprintf(c.out, "Total processed: %d\n", s.Total)
	fmt.Fprintf(c.out, "Escalation rate: %.1f%%\n", s.EscalationRate)
	if len(s.TopIntents) > 0 {
		fmt.Fprintln(c.out, "Top intents:")
		for i, t := range s.TopIntents {
			fmt.Fprintf(c.out, "  %d. %s (%d)\n", i+1, t.Name, t.Count)
		}
	}
}

func (c *Command) printSaved(paths []string) {
	for _, p := range paths {
		fmt.Fprintf(c.out, "Saved: %s\n", p)
	}
}

// refName is the last element of a file path or URL path.
func refName(ref string) string {
	if source.IsURL(ref) {
		ref = strings.SplitN(ref, "?", 2)[0]
		return path.Base(ref)
	}
	return filepath.Base(ref)
}
