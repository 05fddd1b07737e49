package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/AlexArancibia/SicloConcarDashboard-sub001/internal/parser"
	"github.com/AlexArancibia/SicloConcarDashboard-sub001/internal/processor"
)

var validateCmd = &cobra.Command{
	Use:   "validate [files...]",
	Short: "Validate CPE XML files",
	Long: `Validate one or more electronic tax document files for completeness
and internal consistency.

Checks performed:
  - Well-formed XML with a recognized root element
  - Required identity fields (document ID, supplier name, supplier RUC)
  - Series-number composition
  - Payable amount derivation (total minus retention minus detraction)
  - Retention and detraction flag/amount agreement

Examples:
  cpe-processor validate factura.xml
  cpe-processor validate *.xml -f json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	files, err := collectFiles(args)
	if err != nil {
		return err
	}

	if len(files) == 0 {
		return fmt.Errorf("no files found to validate")
	}

	pipeline := processor.NewPipeline()
	results := make([]*ValidationResult, 0, len(files))
	allValid := true

	for _, file := range files {
		result := validateFile(pipeline, file)
		results = append(results, result)

		if !result.Valid {
			allValid = false
		}
	}

	if outputFormat == "json" {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(results); err != nil {
			return err
		}
	} else {
		for _, r := range results {
			if r.Valid {
				fmt.Printf("✓ %s: VALID\n", r.File)
			} else {
				fmt.Printf("✗ %s: INVALID\n", r.File)
				for _, e := range r.Errors {
					fmt.Printf("  - %s\n", e)
				}
			}
			for _, w := range r.Warnings {
				fmt.Printf("  ⚠ %s\n", w)
			}
		}
	}

	if !allValid {
		return fmt.Errorf("validation failed for some files")
	}

	return nil
}

func validateFile(pipeline *processor.Pipeline, filePath string) *ValidationResult {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	result := &ValidationResult{
		File:     filePath,
		Valid:    true,
		Errors:   []string{},
		Warnings: []string{},
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("failed to read file: %v", err))
		return result
	}

	in := parser.Input{
		XML:      string(data),
		FileName: filepath.Base(filePath),
	}

	pipelineResult := pipeline.ProcessXML(ctx, in)
	if pipelineResult.Error != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("parse error: %v", pipelineResult.Error))
		return result
	}

	doc := pipelineResult.Document
	for _, v := range doc.CheckInvariants() {
		result.Valid = false
		result.Errors = append(result.Errors, v.Error())
	}

	if doc.Total.IsZero() {
		result.Warnings = append(result.Warnings, "total amount is zero or missing")
	}

	expected := doc.Subtotal.Add(doc.IGV).Add(doc.OtherTaxes)
	if !doc.Total.IsZero() && !expected.IsZero() && !expected.Equal(doc.Total) {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("amount mismatch: subtotal(%s) + igv(%s) + other(%s) = %s, but total is %s",
				doc.Subtotal, doc.IGV, doc.OtherTaxes, expected, doc.Total))
	}

	for _, item := range doc.Lines {
		if item.Description == "" {
			result.Warnings = append(result.Warnings, fmt.Sprintf("line %d: missing description", item.Number))
		}
		if item.Quantity.IsZero() && !item.FreeOfCharge {
			result.Warnings = append(result.Warnings, fmt.Sprintf("line %d: quantity is zero", item.Number))
		}
	}

	return result
}

// ValidationResult holds the result of validating a single file
type ValidationResult struct {
	File     string   `json:"file"`
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}
