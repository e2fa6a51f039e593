package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"quotefill/adapters/excel"
	"quotefill/app"
	"quotefill/domain/catalog"
	"quotefill/domain/template"
	apperrors "quotefill/internal/errors"
	"quotefill/internal/layout"
	"quotefill/internal/logger"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		printFailure(os.Stderr, err)
		os.Exit(1)
	}
}

// cliFailure mirrors the {success: false, error} body the HTTP API answers with
type cliFailure struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code"`
}

func printFailure(w io.Writer, err error) {
	if encErr := printJSON(w, cliFailure{Error: err.Error(), Code: apperrors.GetCode(err)}); encErr != nil {
		fmt.Fprintln(w, err)
	}
}

// cliOptions are the persistent flags shared by every command
type cliOptions struct {
	layoutFile string
	env        string
}

func newRootCmd() *cobra.Command {
	opts := &cliOptions{}

	rootCmd := &cobra.Command{
		Use:           "quotefill",
		Short:         "Fill supplier quotation templates with crawled products",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&opts.layoutFile, "layout", os.Getenv("LAYOUT_FILE"), "Template layout YAML (default: built-in layout)")
	rootCmd.PersistentFlags().StringVar(&opts.env, "env", envOr("APP_ENV", "development"), "Logging environment (development or production)")

	rootCmd.AddCommand(
		newFillCmd(opts),
		newInspectCmd(opts),
		newQuoteCmd(opts),
		newEditCmd(opts),
		newLayoutCmd(opts),
	)
	return rootCmd
}

func newFillCmd(opts *cliOptions) *cobra.Command {
	var category, size, weight string
	var tags []string

	cmd := &cobra.Command{
		Use:   "fill <template.xlsx> <products.json>",
		Short: "Write product rows into a quotation template in place",
		Long: `Resolve the template's header row, write one row per product option
starting at the layout's first data row and save the workbook.

Example: quotefill fill 견적서.xlsx products.json --category 의류 --tags 여름,반팔 --size 10x20x30 --weight 500`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			products, err := readProducts(args[1])
			if err != nil {
				return err
			}
			dims, err := catalog.ParseDimensions(size)
			if err != nil {
				return apperrors.InvalidInput(err.Error())
			}

			svc, err := opts.fillService()
			if err != nil {
				return err
			}
			result, err := svc.Fill(cmd.Context(), app.FillRequest{
				Path:     args[0],
				Products: products,
				Shared: catalog.SharedFields{
					Category:   category,
					SearchTags: catalog.JoinTags(tags),
					Size:       dims.String(),
					Weight:     catalog.FormatWeight(catalog.Text(weight)),
				},
			})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), result)
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "Category written on every row")
	cmd.Flags().StringSliceVar(&tags, "tags", nil, "Search tags, comma separated")
	cmd.Flags().StringVar(&size, "size", "", "Package size as WxHxD")
	cmd.Flags().StringVar(&weight, "weight", "", "Weight in grams")

	return cmd
}

func newInspectCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <template.xlsx>",
		Short: "Show the template's headers and the columns each field resolves to",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := opts.fillService()
			if err != nil {
				return err
			}
			inspection, err := svc.Inspect(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), inspection)
		},
	}
}

func newQuoteCmd(opts *cliOptions) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "quote <products.json>",
		Short: "Generate a standalone quotation workbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			products, err := readProducts(args[0])
			if err != nil {
				return err
			}

			svc := app.NewQuoteService(excel.NewQuoteWriter(), opts.logger())
			quote, err := svc.Generate(cmd.Context(), products)
			if err != nil {
				return err
			}
			if output == "" {
				output = quote.Filename
			}
			if err := os.WriteFile(output, quote.Content.Bytes(), 0o644); err != nil {
				return fmt.Errorf("write quotation: %w", err)
			}
			return printJSON(cmd.OutOrStdout(), map[string]interface{}{
				"success": true,
				"file":    output,
				"summary": quote.Summary,
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output path (default: 견적서_<date>_<ms>.xlsx)")
	return cmd
}

func newEditCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "edit <workbook.xlsx> <updates.json>",
		Short: "Apply cell updates to a workbook in place",
		Long: `Apply a JSON list of cell updates, e.g.
[{"sheet": "상품정보", "row": 9, "col": 2, "value": "티셔츠"}]
A null or missing sheet selects the second sheet, or the first when there is only one.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[1])
			if err != nil {
				return fmt.Errorf("read updates: %w", err)
			}
			updates, err := excel.DecodeCellUpdates(data)
			if err != nil {
				return err
			}

			svc := app.NewEditService(excel.NewOpener(), opts.logger())
			result, err := svc.EditFile(cmd.Context(), args[0], updates)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), result)
		},
	}
}

func newLayoutCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "layout",
		Short: "Print the active template layout as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := opts.layout()
			if err != nil {
				return err
			}
			out, err := layout.Marshal(l)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
}

func (o *cliOptions) layout() (template.Layout, error) {
	return layout.Load(o.layoutFile)
}

func (o *cliOptions) logger() *zap.Logger {
	return logger.Must(o.env)
}

func (o *cliOptions) fillService() (*app.FillService, error) {
	l, err := o.layout()
	if err != nil {
		return nil, err
	}
	cfg := app.FillServiceConfig{Layout: l, Concurrency: 1}
	return app.NewFillService(excel.NewOpener(), nil, cfg, o.logger()), nil
}

func readProducts(path string) ([]catalog.Product, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read products %s: %w", filepath.Base(path), err)
	}
	return catalog.DecodeProducts(data)
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
