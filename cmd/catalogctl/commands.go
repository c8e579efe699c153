package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"book-catalog/internal/domains/book/model"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending schema migrations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := openContainer(true)
		if err != nil {
			return err
		}
		defer c.Cleanup()

		fmt.Fprintf(cmd.OutOrStdout(), "migrations applied (%s)\n", c.Config.Database.Driver)
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file.csv|file.xlsx>",
	Short: "Import books from a CSV or XLSX file",
	Long: `Import books from a spreadsheet. The header row must name the columns
title, published_date, isbn, pages and one of author_id or author_name.
Nothing is written unless every row is valid.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

var exportAuthorID int64

var exportCmd = &cobra.Command{
	Use:   "export <file.xlsx>",
	Short: "Export books to an XLSX workbook",
	Args:  cobra.ExactArgs(1),
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().Int64Var(&exportAuthorID, "author-id", 0, "only export books by this author")
}

func runImport(cmd *cobra.Command, args []string) error {
	path := args[0]

	info, err := os.Stat(path)
	if err != nil {
		return err
	}

	c, err := openContainer(false)
	if err != nil {
		return err
	}
	defer c.Cleanup()

	upload := model.ImportFile{Name: filepath.Base(path), Size: info.Size(), MaxSize: c.Config.Import.MaxFileSize}
	if err := upload.Validate(); err != nil {
		return fmt.Errorf("invalid file: %w", err)
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	result, err := c.BulkImportService.ImportBooks(cmd.Context(), upload.Name, f)
	if err != nil {
		var importErr *model.ImportError
		if errors.As(err, &importErr) {
			out := cmd.ErrOrStderr()
			for _, row := range importErr.Rows {
				for _, fe := range row.Errors {
					fmt.Fprintf(out, "row %d: %s\n", row.Row, fe.Error())
				}
			}
		}
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "imported %d books from %s\n", len(result.CreatedBooks), result.FileName)
	return nil
}

func runExport(cmd *cobra.Command, args []string) error {
	c, err := openContainer(false)
	if err != nil {
		return err
	}
	defer c.Cleanup()

	file, err := c.BookService.ExportBooksToExcel(cmd.Context(), model.BookFilter{AuthorID: exportAuthorID})
	if err != nil {
		return err
	}
	defer file.Close()

	if err := file.SaveAs(args[0]); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "exported books to %s\n", args[0])
	return nil
}
