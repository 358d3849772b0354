package cmd

import (
	"fmt"
	"os"

	"github.com/ginjaninja78/asycuda-converter/internal/asycuda"
	"github.com/ginjaninja78/asycuda-converter/internal/xmlwriter"
	"github.com/spf13/cobra"
)

// schemaOut is the file the XSD is written to; empty means stdout.
var schemaOut string

// schemaCmd prints an XSD describing the output document.
var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print an XSD describing the ASYCUDA output layout",
	RunE: func(cmd *cobra.Command, args []string) error {
		xsd, err := xmlwriter.GenerateXSD(asycuda.Skeleton(), asycuda.ItemTag)
		if err != nil {
			return fmt.Errorf("failed to generate schema: %w", err)
		}
		if schemaOut == "" {
			_, err = cmd.OutOrStdout().Write(xsd)
			return err
		}
		return os.WriteFile(schemaOut, xsd, 0644)
	},
}

func init() {
	rootCmd.AddCommand(schemaCmd)
	schemaCmd.Flags().StringVarP(&schemaOut, "output", "o", "", "Write the schema to this file")
}
