package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/goliatone/go-legaldocs/internal/app"
	"github.com/goliatone/go-legaldocs/internal/cli"
	"github.com/goliatone/go-legaldocs/internal/config"
	"github.com/goliatone/go-legaldocs/internal/logging"
	"github.com/goliatone/go-legaldocs/pkg/assembler"
	"github.com/goliatone/go-legaldocs/pkg/orchestrator"
	"github.com/goliatone/go-legaldocs/pkg/records"
)

func main() {
	configPath := flag.String("config", "", "YAML configuration file")
	input := flag.String("input", "", "JSON file with company, associates, managers and lease")
	companyID := flag.String("company", "cli", "company identifier used for storage paths")
	kinds := flag.String("kinds", "all", "comma separated document kinds, or all")
	formats := flag.String("formats", "", "comma separated formats (pdf, docx, txt, xlsx)")
	engine := flag.String("engine", "", "pdf engine (browser or layout)")
	out := flag.String("out", "", "output directory (local storage root)")
	interactive := flag.Bool("interactive", false, "choose kinds and formats interactively")
	asJSON := flag.Bool("json", false, "print the batch result as JSON")
	flag.Parse()

	ctx := context.Background()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *out != "" {
		cfg.Storage.Driver = config.StorageLocal
		cfg.Storage.Root = *out
	}
	if *engine != "" {
		cfg.Render.PDFEngine = *engine
	}
	if *engine == string(records.PDFEngineLayout) {
		cfg.Browser.Enabled = false
	}

	logger, err := logging.New(cfg.Log.Level, "console", "legaldocs-cli")
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if *input == "" {
		log.Fatal("-input is required")
	}
	raw, err := assembler.LoadRawInput(*input)
	if err != nil {
		log.Fatalf("Failed to read input: %v", err)
	}

	req := orchestrator.BatchRequest{
		CompanyID: *companyID,
		PDFEngine: records.PDFEngine(*engine),
		Input:     raw,
	}
	if req.Kinds, err = parseKinds(*kinds); err != nil {
		log.Fatal(err)
	}
	if req.Formats, err = parseFormats(*formats); err != nil {
		log.Fatal(err)
	}
	if *interactive {
		if err := choose(ctx, &req, cfg.Formats()); err != nil {
			if errors.Is(err, cli.ErrAborted) {
				os.Exit(130)
			}
			log.Fatalf("Prompt failed: %v", err)
		}
	}

	a, err := app.Build(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("Failed to start: %v", err)
	}
	defer func() { _ = a.Close() }()

	res := a.Orchestrator.GenerateMultipleDocuments(ctx, req)

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res); err != nil {
			log.Fatalf("Failed to write result: %v", err)
		}
	} else if err := cli.WriteSummary(os.Stdout, res); err != nil {
		log.Fatalf("Failed to write summary: %v", err)
	}
	if cfg.Storage.Driver == config.StorageLocal {
		fmt.Fprintf(os.Stderr, "Documents written under %s\n", cfg.Storage.Root)
	}
	if res.Failed() > 0 {
		_ = a.Close()
		os.Exit(1)
	}
}

func choose(ctx context.Context, req *orchestrator.BatchRequest, defaults []records.Format) error {
	prompter := cli.SurveyPrompter{}
	current := req.Kinds
	if len(current) == 0 {
		current = records.AllKinds()
	}
	kinds, err := cli.SelectKinds(ctx, prompter, current)
	if err != nil {
		return err
	}
	formats := req.Formats
	if len(formats) == 0 {
		formats = defaults
	}
	if formats, err = cli.SelectFormats(ctx, prompter, formats); err != nil {
		return err
	}
	req.Kinds = kinds
	req.Formats = formats
	return nil
}

func parseKinds(raw string) ([]records.DocumentKind, error) {
	if strings.TrimSpace(raw) == "" || strings.EqualFold(strings.TrimSpace(raw), "all") {
		return nil, nil
	}
	var out []records.DocumentKind
	for _, part := range strings.Split(raw, ",") {
		k, err := records.ParseKind(part)
		if err != nil {
			return nil, err
		}
		out = append(out, k)
	}
	return out, nil
}

func parseFormats(raw string) ([]records.Format, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var out []records.Format
	for _, part := range strings.Split(raw, ",") {
		f, err := records.ParseFormat(part)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}
