package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/AlexArancibia/SicloConcarDashboard-sub001/internal/model"
	"github.com/AlexArancibia/SicloConcarDashboard-sub001/internal/parser"
	"github.com/AlexArancibia/SicloConcarDashboard-sub001/internal/processor"
)

var (
	outputFile  string
	timeout     time.Duration
	useFallback bool
)

var processCmd = &cobra.Command{
	Use:   "process [files...]",
	Short: "Process CPE XML files",
	Long: `Process one or more electronic tax document XML files and extract
normalized records.

The default parser builds a structural tree from the XML and applies the
full classification and monetary decomposition rules. The --fallback flag
switches to a relaxed traversal parser that tolerates structurally odd
documents but yields nothing rather than a partial record when required
identity fields are absent.

Examples:
  cpe-processor process factura.xml
  cpe-processor process recibo.xml --fallback
  cpe-processor process *.xml -o results.json
  cpe-processor process facturas/ -f table`,
	Args: cobra.MinimumNArgs(1),
	RunE: runProcess,
}

func init() {
	rootCmd.AddCommand(processCmd)

	processCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")
	processCmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "Processing timeout per file")
	processCmd.Flags().BoolVar(&useFallback, "fallback", false, "Use the relaxed traversal parser")
}

func runProcess(cmd *cobra.Command, args []string) error {
	files, err := collectFiles(args)
	if err != nil {
		return err
	}

	if len(files) == 0 {
		return fmt.Errorf("no files found to process")
	}

	printVerbose("Found %d files to process\n", len(files))

	pipeline := processor.NewPipeline()

	results := make([]*ProcessResult, 0, len(files))
	for _, file := range files {
		printVerbose("Processing: %s\n", file)

		result := processFile(pipeline, file)
		results = append(results, result)

		if result.Error != "" {
			printVerbose("  Error: %s\n", result.Error)
		} else {
			printVerbose("  Method: %s\n", result.Method)
		}
	}

	return outputResults(results)
}

func collectFiles(args []string) ([]string, error) {
	var files []string

	for _, arg := range args {
		matches, err := filepath.Glob(arg)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %s: %w", arg, err)
		}

		if len(matches) == 0 {
			info, err := os.Stat(arg)
			if err != nil {
				return nil, fmt.Errorf("file not found: %s", arg)
			}

			if info.IsDir() {
				err := filepath.Walk(arg, func(path string, info os.FileInfo, err error) error {
					if err != nil {
						return err
					}
					if !info.IsDir() && isSupportedFile(path) {
						files = append(files, path)
					}
					return nil
				})
				if err != nil {
					return nil, err
				}
			} else {
				files = append(files, arg)
			}
		} else {
			for _, match := range matches {
				info, err := os.Stat(match)
				if err != nil {
					continue
				}
				if !info.IsDir() && isSupportedFile(match) {
					files = append(files, match)
				}
			}
		}
	}

	return files, nil
}

func isSupportedFile(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".xml")
}

func processFile(pipeline *processor.Pipeline, filePath string) *ProcessResult {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	result := &ProcessResult{
		File: filePath,
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.Error = fmt.Sprintf("failed to read file: %v", err)
		return result
	}

	in := parser.Input{
		XML:        string(data),
		FileName:   filepath.Base(filePath),
		CompanyID:  companyID,
		SupplierID: supplierID,
		UserID:     userID,
	}

	var pipelineResult *processor.Result
	if useFallback {
		pipelineResult = pipeline.ProcessXMLFallback(ctx, in)
	} else {
		pipelineResult = pipeline.ProcessXML(ctx, in)
	}

	if pipelineResult.Error != nil {
		result.Error = pipelineResult.Error.Error()
		return result
	}

	result.Document = pipelineResult.Document
	result.Method = string(pipelineResult.Method)
	result.Warnings = pipelineResult.Warnings

	return result
}

func outputResults(results []*ProcessResult) error {
	var writer = os.Stdout
	if outputFile != "" {
		f, err := os.Create(outputFile)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		writer = f
	}

	switch outputFormat {
	case "json":
		return outputJSON(writer, results)
	case "table":
		return outputTable(writer, results)
	case "csv":
		return outputCSV(writer, results)
	default:
		return fmt.Errorf("unsupported output format: %s", outputFormat)
	}
}

func outputJSON(w *os.File, results []*ProcessResult) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(results)
}

func outputTable(w *os.File, results []*ProcessResult) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "FILE\tNUMBER\tTYPE\tDATE\tSUPPLIER\tTOTAL\tNET\tMETHOD")
	fmt.Fprintln(tw, "----\t------\t----\t----\t--------\t-----\t---\t------")

	for _, r := range results {
		if r.Error != "" {
			fmt.Fprintf(tw, "%s\tERROR: %s\t\t\t\t\t\t\n", r.File, r.Error)
			continue
		}

		if r.Document != nil {
			date := ""
			if !r.Document.IssueDate.IsZero() {
				date = r.Document.IssueDate.Format("2006-01-02")
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
				r.File,
				r.Document.FullNumber,
				r.Document.Type,
				date,
				r.Document.Supplier.DocumentNumber,
				r.Document.Total.String(),
				r.Document.NetPayable.String(),
				r.Method,
			)
		}
	}

	return tw.Flush()
}

func outputCSV(w *os.File, results []*ProcessResult) error {
	fmt.Fprintln(w, "file,full_number,type,issue_date,supplier_name,supplier_ruc,currency,subtotal,igv,total,retention,detraction,net_payable,method,error")

	for _, r := range results {
		if r.Error != "" {
			fmt.Fprintf(w, "%s,,,,,,,,,,,,,,%s\n", r.File, escapeCSV(r.Error))
			continue
		}

		if r.Document != nil {
			date := ""
			if !r.Document.IssueDate.IsZero() {
				date = r.Document.IssueDate.Format("2006-01-02")
			}
			fmt.Fprintf(w, "%s,%s,%s,%s,%s,%s,%s,%s,%s,%s,%s,%s,%s,%s,\n",
				r.File,
				r.Document.FullNumber,
				r.Document.Type,
				date,
				escapeCSV(r.Document.Supplier.BusinessName),
				r.Document.Supplier.DocumentNumber,
				r.Document.Currency,
				r.Document.Subtotal.String(),
				r.Document.IGV.String(),
				r.Document.Total.String(),
				r.Document.RetentionAmount.String(),
				r.Document.DetractionAmount.String(),
				r.Document.NetPayable.String(),
				r.Method,
			)
		}
	}

	return nil
}

func escapeCSV(s string) string {
	if strings.Contains(s, ",") || strings.Contains(s, "\"") || strings.Contains(s, "\n") {
		return "\"" + strings.ReplaceAll(s, "\"", "\"\"") + "\""
	}
	return s
}

// ProcessResult holds the result of processing a single file
type ProcessResult struct {
	File     string          `json:"file"`
	Document *model.Document `json:"document,omitempty"`
	Method   string          `json:"method,omitempty"`
	Warnings []string        `json:"warnings,omitempty"`
	Error    string          `json:"error,omitempty"`
}
