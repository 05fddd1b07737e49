package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "1.0.0"

	// Global flags
	verbose      bool
	outputFormat string
	companyID    string
	supplierID   string
	userID       string
)

var rootCmd = &cobra.Command{
	Use:   "cpe-processor",
	Short: "Process SUNAT electronic tax documents (CPE XML)",
	Long: `CPE Processor is a CLI tool for normalizing Peruvian electronic
tax documents (comprobantes de pago electrónicos) into reconciliation-ready
records.

Supports:
  - UBL 2.0 and 2.1 XML: facturas, boletas, notas de crédito/débito
  - Recibos por honorarios (4th-category withholding receipts)
  - Detraction and retention decomposition
  - A relaxed traversal mode for malformed or partial XML

Examples:
  # Process a single XML file
  cpe-processor process factura.xml

  # Process with the relaxed traversal parser
  cpe-processor process recibo.xml --fallback

  # Process multiple files, table output
  cpe-processor process *.xml -f table

  # Validate a document
  cpe-processor validate factura.xml`,
	Version: version,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "format", "f", "json", "Output format (json, csv, table)")
	rootCmd.PersistentFlags().StringVar(&companyID, "company", "", "Company ID to stamp on processed documents")
	rootCmd.PersistentFlags().StringVar(&supplierID, "supplier", "", "Supplier ID to stamp on processed documents")
	rootCmd.PersistentFlags().StringVar(&userID, "user", "", "User ID to stamp on processed documents")
}

func printVerbose(format string, args ...interface{}) {
	if verbose {
		fmt.Fprintf(os.Stderr, format, args...)
	}
}
