package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aescanero/helloapi/internal/config"
	"github.com/aescanero/helloapi/pkg/api/openapi"
)

var openapiCmd = &cobra.Command{
	Use:   "openapi",
	Short: "Print the API discovery document",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		asYAML, _ := cmd.Flags().GetBool("yaml")

		cfg, err := config.Load()
		if err != nil {
			return err
		}

		docs, err := openapi.New(openapi.Options{Title: cfg.AppName, Version: Version})
		if err != nil {
			return err
		}

		out, err := docs.Render(format, asYAML)
		if err != nil {
			return err
		}

		_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return err
	},
}

func init() {
	openapiCmd.Flags().String("format", openapi.FormatV2, "document format: v2 (Swagger 2.0) or v3 (OpenAPI 3)")
	openapiCmd.Flags().Bool("yaml", false, "print YAML instead of JSON")
	rootCmd.AddCommand(openapiCmd)
}
