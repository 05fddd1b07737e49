package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/AlexArancibia/SicloConcarDashboard-sub001/internal/parser"
	"github.com/AlexArancibia/SicloConcarDashboard-sub001/internal/processor"
)

var infoCmd = &cobra.Command{
	Use:   "info [files...]",
	Short: "Show information about CPE files",
	Long: `Display a quick summary of XML files: detected format, root element,
document type, series/number and amounts.

Examples:
  cpe-processor info factura.xml
  cpe-processor info *.xml`,
	Args: cobra.MinimumNArgs(1),
	RunE: runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	files, err := collectFiles(args)
	if err != nil {
		return err
	}

	if len(files) == 0 {
		return fmt.Errorf("no files found")
	}

	pipeline := processor.NewPipeline()
	for _, file := range files {
		printFileInfo(pipeline, file)
		fmt.Println()
	}

	return nil
}

func printFileInfo(pipeline *processor.Pipeline, filePath string) {
	fmt.Printf("File: %s\n", filePath)

	info, err := os.Stat(filePath)
	if err != nil {
		fmt.Printf("  Error: %v\n", err)
		return
	}

	fmt.Printf("  Size: %d bytes\n", info.Size())
	fmt.Printf("  Modified: %s\n", info.ModTime().Format("2006-01-02 15:04:05"))

	data, err := os.ReadFile(filePath)
	if err != nil {
		fmt.Printf("  Error reading file: %v\n", err)
		return
	}

	format := processor.DetectFormat(data)
	fmt.Printf("  Format: %s\n", format)
	if format != processor.FormatXML {
		return
	}

	content := string(data)
	fmt.Printf("  Root: %s\n", detectRootElement(content))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	result := pipeline.ProcessXML(ctx, parser.Input{
		XML:      content,
		FileName: filepath.Base(filePath),
	})
	if result.Error != nil {
		fmt.Printf("  Parse: %v\n", result.Error)
		return
	}

	doc := result.Document
	fmt.Printf("  Type: %s (%s)\n", doc.Type, doc.TypeDescription)
	fmt.Printf("  Number: %s\n", doc.FullNumber)
	fmt.Printf("  Supplier: %s (%s)\n", doc.Supplier.BusinessName, doc.Supplier.DocumentNumber)
	fmt.Printf("  Issued: %s\n", doc.IssueDate.Format("2006-01-02"))
	fmt.Printf("  Total: %s %s\n", doc.Currency, doc.Total.String())
	if doc.HasDetraction {
		fmt.Printf("  Detraction: %s %s\n", doc.Currency, doc.DetractionAmount.String())
	}
	if doc.HasRetention {
		fmt.Printf("  Retention: %s %s\n", doc.Currency, doc.RetentionAmount.String())
	}
	fmt.Printf("  Net payable: %s %s\n", doc.Currency, doc.NetPayable.String())
	fmt.Printf("  Lines: %d\n", len(doc.Lines))
}

func detectRootElement(content string) string {
	for _, root := range []string{"CreditNote", "DebitNote", "Invoice"} {
		if strings.Contains(content, "<"+root) || strings.Contains(content, ":"+root) {
			return root
		}
	}
	return "Unknown"
}
