// Package main implements the qrvalidator CLI tool.
// It validates QuestionnaireResponse documents against their
// questionnaires and prints the resulting issues.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	qv "github.com/reason-healthcare/qrvalidator"
	"github.com/reason-healthcare/qrvalidator/engine"
	"github.com/reason-healthcare/qrvalidator/loader"
	"github.com/reason-healthcare/qrvalidator/logger"
	"github.com/reason-healthcare/qrvalidator/model"
	"github.com/reason-healthcare/qrvalidator/specs"
	"github.com/reason-healthcare/qrvalidator/terminology"
	"github.com/reason-healthcare/qrvalidator/units"
)

const version = "0.1.0"

const usage = `qrvalidator - QuestionnaireResponse Validator

Usage:
  qrvalidator [options] <response.json>...
  qrvalidator [options] -              (read response from stdin)
  cat response.json | qrvalidator -q form.json -
  qrvalidator -demo                    (validate the embedded example)

Examples:
  qrvalidator -q intake-form.json response.json
  qrvalidator -url http://example.org/fhir/Questionnaire/intake -dir ./forms response.json
  qrvalidator -q form.json -tx ./terminology -output json responses/*.json
  qrvalidator -q form.json -strict response.json

Options:
`

// OutputFormat specifies the output format.
type OutputFormat string

// Output format constants.
const (
	OutputText OutputFormat = "text"
	OutputJSON OutputFormat = "json"
)

// Config holds CLI configuration
type Config struct {
	FormFile       string
	FormURL        string
	FormDirs       []string
	TerminologyDir string
	Output         OutputFormat
	Strict         bool
	Quiet          bool
	Verbose        bool
	Demo           bool
	ShowVersion    bool
	Help           bool
	Files          []string
}

// ValidationOutput represents the JSON output structure
type ValidationOutput struct {
	Resource      string        `json:"resource"`
	Questionnaire string        `json:"questionnaire,omitempty"`
	Valid         bool          `json:"valid"`
	Errors        int           `json:"errors"`
	Warnings      int           `json:"warnings"`
	Issues        []IssueOutput `json:"issues,omitempty"`
	Duration      string        `json:"duration"`
}

// IssueOutput represents a single issue in JSON output
type IssueOutput struct {
	Severity    string `json:"severity"`
	Code        string `json:"code"`
	Diagnostics string `json:"diagnostics"`
	Path        string `json:"path,omitempty"`
}

func main() {
	config := parseFlags()

	if config.ShowVersion {
		fmt.Printf("qrvalidator v%s\n", version)
		os.Exit(0)
	}

	if config.Help || (len(config.Files) == 0 && !config.Demo) {
		flag.Usage()
		os.Exit(0)
	}

	os.Exit(run(config))
}

func parseFlags() *Config {
	config := &Config{
		Output: OutputText,
	}

	var dirs, output string

	flag.StringVar(&config.FormFile, "q", "", "Questionnaire file to validate against")
	flag.StringVar(&config.FormURL, "url", "", "Canonical URL of the questionnaire (resolved from -dir)")
	flag.StringVar(&dirs, "dir", "", "Questionnaire search directories (comma-separated)")
	flag.StringVar(&config.TerminologyDir, "tx", "", "Directory of ValueSet/CodeSystem files for coded-answer checks")
	flag.StringVar(&output, "output", "text", "Output format: text, json")
	flag.BoolVar(&config.Strict, "strict", false, "Treat warnings as errors")
	flag.BoolVar(&config.Quiet, "quiet", false, "Only print issues")
	flag.BoolVar(&config.Verbose, "verbose", false, "Show detailed output")
	flag.BoolVar(&config.Demo, "demo", false, "Validate the embedded example response")
	flag.BoolVar(&config.ShowVersion, "v", false, "Show version")
	flag.BoolVar(&config.Help, "help", false, "Show help")

	flag.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		flag.PrintDefaults()
	}

	flag.Parse()

	if dirs != "" {
		config.FormDirs = strings.Split(dirs, ",")
	}

	switch strings.ToLower(output) {
	case "json":
		config.Output = OutputJSON
	default:
		config.Output = OutputText
	}

	config.Files = flag.Args()

	return config
}

func run(config *Config) int {
	if config.Verbose {
		logger.SetLevel(logger.LevelDebug)
	} else if config.Quiet {
		logger.Disable()
	}

	opts := []qv.Option{}
	if config.Strict {
		opts = append(opts, qv.WithStrictMode(true))
	}

	v := engine.New(opts...)

	forms := loader.NewFormLoader(config.FormDirs, qv.DefaultFormCacheSize)
	v.SetForms(forms)

	if config.TerminologyDir != "" {
		ts := terminology.NewInMemoryValueSetService()
		stats, err := ts.LoadFromDirectory(config.TerminologyDir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to load terminology: %v\n", err)
			return 1
		}
		if !config.Quiet {
			fmt.Fprintf(os.Stderr, "Loaded %d value set(s) and %d code system(s)\n",
				stats.ValueSetsLoaded, stats.CodeSystemsLoaded)
		}
		v.SetValueSets(ts)
	}
	v.SetUnits(units.NewInMemoryUnitService())

	if config.Demo {
		return runDemo(v, forms, config)
	}

	form, err := resolveForm(v, forms, config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	hasErrors := false
	outputs := make([]ValidationOutput, 0, len(config.Files))

	for _, file := range config.Files {
		if file == "-" {
			data, err := io.ReadAll(os.Stdin)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error reading stdin: %v\n", err)
				hasErrors = true
				continue
			}
			output, fileHasErrors := validateData(v, form, data, "stdin", config)
			outputs = append(outputs, output)
			if fileHasErrors {
				hasErrors = true
			}
			continue
		}

		matches, globErr := filepath.Glob(file)
		if globErr != nil {
			fmt.Fprintf(os.Stderr, "Error with pattern '%s': %v\n", file, globErr)
			hasErrors = true
			continue
		}
		if len(matches) == 0 {
			fmt.Fprintf(os.Stderr, "No files match pattern: %s\n", file)
			hasErrors = true
			continue
		}

		for _, match := range matches {
			output, fileHasErrors := validateFile(v, form, match, config)
			outputs = append(outputs, output)
			if fileHasErrors {
				hasErrors = true
			}
		}
	}

	if config.Output == OutputJSON {
		jsonOutput, _ := json.MarshalIndent(outputs, "", "  ")
		fmt.Println(string(jsonOutput))
	}

	if hasErrors {
		return 1
	}
	return 0
}

// resolveForm loads the questionnaire named by -q or -url.
func resolveForm(v *engine.Validator, forms *loader.FormLoader, config *Config) (*model.Form, error) {
	switch {
	case config.FormFile != "":
		form, err := forms.LoadFromFile(config.FormFile)
		if err != nil {
			return nil, fmt.Errorf("load questionnaire: %w", err)
		}
		return form, nil
	case config.FormURL != "":
		if len(config.FormDirs) == 0 {
			return nil, fmt.Errorf("-url requires at least one -dir search directory")
		}
		form, err := forms.Resolve(context.Background(), config.FormURL)
		if err != nil {
			return nil, fmt.Errorf("resolve questionnaire: %w", err)
		}
		return form, nil
	default:
		return nil, fmt.Errorf("no questionnaire given; use -q, -url, or -demo")
	}
}

// runDemo validates the embedded example response against the embedded
// questionnaire, with the embedded terminology attached.
func runDemo(v *engine.Validator, forms *loader.FormLoader, config *Config) int {
	formData, err := specs.ReadFile(specs.Files.Questionnaire)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	form, err := forms.LoadFromJSON(formData)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	ts := terminology.NewInMemoryValueSetService()
	fsys, dir := specs.FS()
	if _, err := ts.LoadFromFS(fsys, dir); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	v.SetValueSets(ts)

	responseData, err := specs.ReadFile(specs.Files.Response)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	output, hasErrors := validateData(v, form, responseData, specs.Files.Response, config)
	if config.Output == OutputJSON {
		jsonOutput, _ := json.MarshalIndent([]ValidationOutput{output}, "", "  ")
		fmt.Println(string(jsonOutput))
	}
	if hasErrors {
		return 1
	}
	return 0
}

func validateFile(v *engine.Validator, form *model.Form, path string, config *Config) (ValidationOutput, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		output := ValidationOutput{
			Resource: path,
			Valid:    false,
			Errors:   1,
			Issues: []IssueOutput{{
				Severity:    "error",
				Code:        "exception",
				Diagnostics: fmt.Sprintf("Failed to read file: %v", err),
			}},
		}
		if config.Output == OutputText {
			fmt.Printf("Error reading %s: %v\n", path, err)
		}
		return output, true
	}

	return validateData(v, form, data, path, config)
}

func validateData(v *engine.Validator, form *model.Form, data []byte, name string, config *Config) (ValidationOutput, bool) {
	ctx := context.Background()
	startTime := time.Now()

	result, err := v.Validate(ctx, form, data)
	duration := time.Since(startTime)

	if err != nil {
		output := ValidationOutput{
			Resource: name,
			Valid:    false,
			Errors:   1,
			Duration: duration.String(),
			Issues: []IssueOutput{{
				Severity:    "error",
				Code:        "exception",
				Diagnostics: fmt.Sprintf("Validation failed: %v", err),
			}},
		}
		if config.Output == OutputText {
			fmt.Printf("Error validating %s: %v\n", name, err)
		}
		return output, true
	}
	defer result.Release()

	output := ValidationOutput{
		Resource:      name,
		Questionnaire: form.URL,
		Valid:         !result.HasErrors(),
		Errors:        result.ErrorCount(),
		Warnings:      result.WarningCount(),
		Duration:      duration.Round(time.Microsecond).String(),
	}

	for _, iss := range result.Issues {
		output.Issues = append(output.Issues, IssueOutput{
			Severity:    string(iss.Severity),
			Code:        string(iss.Code),
			Diagnostics: iss.Diagnostics,
			Path:        iss.Path,
		})
	}

	if config.Output == OutputText {
		printTextResult(name, form, result, duration, config)
	}

	return output, result.HasErrors()
}

func printTextResult(name string, form *model.Form, result *qv.Result, duration time.Duration, config *Config) {
	status := "VALID"
	if result.HasErrors() {
		status = "INVALID"
	}

	if !config.Quiet {
		fmt.Printf("== %s ==\n", name)
		fmt.Printf("Status: %s\n", status)
		fmt.Printf("Errors: %d, Warnings: %d\n", result.ErrorCount(), result.WarningCount())
		if config.Verbose {
			fmt.Printf("Questionnaire: %s\n", form.URL)
			fmt.Printf("Duration: %s\n", duration.Round(time.Microsecond))
		}
	}

	if len(result.Issues) > 0 {
		if !config.Quiet {
			fmt.Println("\nIssues:")
		}
		for _, iss := range result.Issues {
			severityIcon := getSeverityIcon(iss.Severity)
			location := ""
			if iss.Path != "" {
				location = fmt.Sprintf(" @ %s", iss.Path)
			}

			fmt.Printf("  %s [%s] %s%s\n", severityIcon, iss.Code, iss.Diagnostics, location)
		}
	}

	if !config.Quiet {
		fmt.Println()
	}
}

func getSeverityIcon(severity qv.IssueSeverity) string {
	switch severity {
	case qv.SeverityError:
		return "ERROR"
	case qv.SeverityWarning:
		return "WARN "
	default:
		return "     "
	}
}
