package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/joeychilson/regexpoutline/config"
	"github.com/joeychilson/regexpoutline/document"
	"github.com/joeychilson/regexpoutline/logger"
	"github.com/joeychilson/regexpoutline/outline"
	"github.com/joeychilson/regexpoutline/outliner"
	"github.com/joeychilson/regexpoutline/rules"
)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

type options struct {
	configFile string
	rulesFile  string
	presets    string
	stdinName  string
	jsonOutput bool
	logLevel   string
	paths      []string
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	fs := flag.NewFlagSet("outline", flag.ContinueOnError)
	fs.SetOutput(stderr)

	opts := &options{}
	fs.StringVar(&opts.configFile, "config", "", "YAML config file with presets and rules")
	fs.StringVar(&opts.rulesFile, "rules", "", "rule specification file (JSON or YAML)")
	fs.StringVar(&opts.presets, "preset", "", "comma separated rule presets ("+strings.Join(rules.PresetNames(), ", ")+")")
	fs.StringVar(&opts.stdinName, "name", "stdin.txt", "document name used to select rules when reading stdin")
	fs.BoolVar(&opts.jsonOutput, "json", false, "Output as JSON")
	fs.StringVar(&opts.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: outline [OPTIONS] FILE...\n\n")
		fmt.Fprintf(stderr, "Prints the heading outline of each file. Use - to read stdin.\n")
		fmt.Fprintf(stderr, "Without -config, -rules or -preset all presets are used.\n\n")
		fmt.Fprintf(stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(stderr, "\nExamples:\n")
		fmt.Fprintf(stderr, "    outline README.md\n")
		fmt.Fprintf(stderr, "    outline -rules rules.yaml -json notes.txt\n")
		fmt.Fprintf(stderr, "    cat notes.txt | outline -preset markdown -name notes.md -\n")
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	opts.paths = fs.Args()
	if len(opts.paths) == 0 {
		fs.Usage()
		return nil, errors.New("at least one file is required")
	}
	if opts.configFile != "" && opts.rulesFile != "" {
		return nil, errors.New("-config and -rules cannot be combined")
	}
	return opts, nil
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}

	level, err := logger.ParseLevel(opts.logLevel)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}
	log := logger.NewText(stderr, level)

	sets, err := loadRules(opts, log)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	o := outliner.New(sets).WithLogger(log)

	var results []*outliner.Result
	status := 0
	for _, path := range opts.paths {
		doc, err := openDocument(path, opts.stdinName, stdin)
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			status = 1
			continue
		}

		result := &outliner.Result{Name: doc.Name(), Nodes: o.OutlineDocument(ctx, doc)}
		if set, ok := rules.Select(sets, doc.Name()); ok {
			result.Ext = set.Ext
		} else {
			log.Warn("no rule set matches document", "name", doc.Name())
		}
		results = append(results, result)
	}

	if err := write(stdout, results, opts.jsonOutput); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return status
}

func loadRules(opts *options, log logger.Logger) ([]rules.RuleSet, error) {
	if opts.configFile != "" {
		cfg, err := config.LoadConfig(opts.configFile)
		if err != nil {
			return nil, err
		}
		if opts.presets != "" {
			cfg.Presets = append(cfg.Presets, splitList(opts.presets)...)
		}
		return cfg.LoadRules(log), nil
	}

	var raw []rules.RawRuleSet
	if opts.rulesFile != "" {
		data, err := os.ReadFile(opts.rulesFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read rules file: %w", err)
		}
		if raw, err = rules.Decode(data); err != nil {
			return nil, fmt.Errorf("failed to parse rules file: %w", err)
		}
		if err := rules.Validate(raw); err != nil {
			return nil, fmt.Errorf("invalid rules file: %w", err)
		}
	}

	presets := splitList(opts.presets)
	if opts.rulesFile == "" && len(presets) == 0 {
		presets = rules.PresetNames()
	}
	for _, name := range presets {
		preset, err := rules.Preset(name)
		if err != nil {
			return nil, err
		}
		raw = append(raw, preset...)
	}

	return rules.Resolve(raw, log), nil
}

func openDocument(path, stdinName string, stdin io.Reader) (document.Document, error) {
	var (
		doc *document.Text
		err error
	)
	if path == "-" {
		doc, err = document.Read(stdinName, stdin)
	} else {
		doc, err = document.Open(path)
	}
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func write(w io.Writer, results []*outliner.Result, jsonOutput bool) error {
	if jsonOutput {
		encoder := json.NewEncoder(w)
		encoder.SetEscapeHTML(false)
		encoder.SetIndent("", "  ")
		return encoder.Encode(results)
	}

	for i, result := range results {
		if len(results) > 1 {
			if i > 0 {
				fmt.Fprintln(w)
			}
			fmt.Fprintf(w, "==> %s <==\n", result.Name)
		}
		if err := outline.Format(w, result.Nodes); err != nil {
			return err
		}
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
