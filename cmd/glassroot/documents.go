package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/glassroot/glassroot/internal/cli"
	"github.com/glassroot/glassroot/internal/extract"
	"github.com/glassroot/glassroot/internal/models"
)

func (a *app) documentsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "documents",
		Aliases: []string{"docs"},
		Short:   "Create, list and show documents",
	}
	cmd.AddCommand(a.documentsCreateCmd(), a.documentsListCmd(), a.documentsGetCmd())
	return cmd
}

func (a *app) documentsCreateCmd() *cobra.Command {
	var title, content, file string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Store and embed a document",
		Long: `Stores a document and indexes its embedding for search.
Content comes from --content, from --file, or from stdin when --file is "-".
PDF, DOCX, PPTX and XLSX files are converted to text; other files are read as text.
With --file the title defaults to the file name.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := a.outputFormat()
			if err != nil {
				return err
			}
			input, err := readInput(cmd.InOrStdin(), title, content, file)
			if err != nil {
				return err
			}
			created, err := a.apiClient().CreateDocument(cmd.Context(), input)
			if err != nil {
				return err
			}
			if format == cli.OutputJSON {
				return cli.WriteDocument(cmd.OutOrStdout(), &models.Document{ID: created.ID, Title: created.Title, Content: created.Content, VectorID: created.ID}, format, true)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Document created: %s\n", created.ID)
			return nil
		},
	}
	cmd.Flags().StringVarP(&title, "title", "t", "", "document title")
	cmd.Flags().StringVarP(&content, "content", "c", "", "document content")
	cmd.Flags().StringVarP(&file, "file", "f", "", `read content from a file ("-" for stdin)`)
	cmd.MarkFlagsMutuallyExclusive("content", "file")
	return cmd
}

// readInput resolves the document to create from the flags. A file is run through
// text extraction and lends its name as the title when none is given.
func readInput(stdin io.Reader, title, content, file string) (models.DocumentInput, error) {
	switch file {
	case "":
		return models.DocumentInput{Title: title, Content: content}, nil
	case "-":
		data, err := io.ReadAll(stdin)
		if err != nil {
			return models.DocumentInput{}, fmt.Errorf("failed to read stdin: %w", err)
		}
		return models.DocumentInput{Title: title, Content: string(data)}, nil
	default:
		doc, err := extract.File(file)
		if err != nil {
			return models.DocumentInput{}, err
		}
		if strings.TrimSpace(title) == "" {
			title = doc.Title
		}
		return models.DocumentInput{Title: title, Content: doc.Content}, nil
	}
}

func (a *app) documentsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the most recent documents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := a.outputFormat()
			if err != nil {
				return err
			}
			docs, err := a.apiClient().ListDocuments(cmd.Context())
			if err != nil {
				return err
			}
			return cli.WriteDocuments(cmd.OutOrStdout(), docs, format)
		},
	}
}

func (a *app) documentsGetCmd() *cobra.Command {
	var full bool
	cmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Show one document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := a.outputFormat()
			if err != nil {
				return err
			}
			doc, err := a.apiClient().GetDocument(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return cli.WriteDocument(cmd.OutOrStdout(), doc, format, full)
		},
	}
	cmd.Flags().BoolVar(&full, "full", false, "print the whole content instead of a preview")
	return cmd
}

func (a *app) searchCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Semantic search over stored documents",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := a.outputFormat()
			if err != nil {
				return err
			}
			query := strings.TrimSpace(strings.Join(args, " "))
			if query == "" {
				return errors.New("query must not be empty")
			}
			resp, err := a.apiClient().Search(cmd.Context(), query, limit)
			if err != nil {
				return err
			}
			return cli.WriteSearchResults(cmd.OutOrStdout(), resp, format)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, fmt.Sprintf("maximum number of results, 1-%d (default %d)", models.MaxSearchLimit, models.DefaultSearchLimit))
	return cmd
}
