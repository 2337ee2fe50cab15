package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"documentum/internal/config"
	"documentum/internal/domain/models/docsystem"
	"documentum/internal/service/console"
	docsysService "documentum/internal/service/docsystem"
	"documentum/internal/service/upload"
	"documentum/internal/task"
)

var (
	userID     string
	verbose    bool
	jsonOutput bool
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rootCmd := newRootCommand()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "docconsole: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "docconsole",
		Short: "Browse the document console from the terminal",
		Long: `docconsole opens a console session over the built-in repository and prints
the folder tree, breadcrumbs and document views with the same filtering,
sorting and paging the HTTP API applies.`,
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVarP(&userID, "user", "u", "user-1", "User whose session to open")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log session activity to stderr")
	cmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Print JSON instead of text")
	cmd.AddCommand(
		newTreeCmd(),
		newSearchCmd(),
		newBreadcrumbCmd(),
		newDocsCmd(),
		newViewCmd(),
	)
	return cmd
}

// openSession starts an in-memory session; nothing is persisted
func openSession(ctx context.Context) (*console.Session, error) {
	cfg := config.Load()
	var logOut io.Writer = io.Discard
	if verbose {
		logOut = os.Stderr
	}
	scheduler := task.NewRealScheduler()
	return console.NewSession(ctx, userID, console.Options{
		Scheduler:            scheduler,
		Transport:            upload.NewSimulatedTransport(scheduler, cfg.UploadSeed),
		NotificationDuration: cfg.NotificationDuration,
		Logger:               config.NewLogger(cfg, logOut),
	})
}

func withSession(fn func(cmd *cobra.Command, s *console.Session, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd.Context())
		if err != nil {
			return err
		}
		defer s.Close()
		return fn(cmd, s, args)
	}
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newTreeCmd() *cobra.Command {
	var depth int
	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Print the folder tree",
		RunE: withSession(func(cmd *cobra.Command, s *console.Session, args []string) error {
			roots := s.Tree.Roots()
			if jsonOutput {
				return printJSON(cmd.OutOrStdout(), roots)
			}
			printTree(cmd.OutOrStdout(), roots, 0, depth)
			return nil
		}),
	}
	cmd.Flags().IntVarP(&depth, "depth", "d", 0, "Maximum depth to print (0 prints everything)")
	return cmd
}

func newSearchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Print the folders whose names match query, with their ancestors",
		Args:  cobra.ExactArgs(1),
		RunE: withSession(func(cmd *cobra.Command, s *console.Session, args []string) error {
			if len(args[0]) > config.MaxSearchQueryLength {
				return fmt.Errorf("query longer than %d characters", config.MaxSearchQueryLength)
			}
			matches := s.Tree.Search(cmd.Context(), args[0])
			if jsonOutput {
				return printJSON(cmd.OutOrStdout(), matches)
			}
			if len(matches) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "no folders match %q\n", args[0])
				return nil
			}
			printTree(cmd.OutOrStdout(), matches, 0, 0)
			return nil
		}),
	}
}

func newBreadcrumbCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "breadcrumb <folder-id>",
		Short: "Print the path from the root to a folder",
		Args:  cobra.ExactArgs(1),
		RunE: withSession(func(cmd *cobra.Command, s *console.Session, args []string) error {
			path, err := s.Tree.Breadcrumb(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if jsonOutput {
				return printJSON(cmd.OutOrStdout(), path)
			}
			names := make([]string, len(path))
			for i, f := range path {
				names[i] = f.Name
			}
			fmt.Fprintln(cmd.OutOrStdout(), strings.Join(names, " / "))
			return nil
		}),
	}
}

func newDocsCmd() *cobra.Command {
	var recursive bool
	cmd := &cobra.Command{
		Use:   "docs <folder-id>",
		Short: "List the documents of a folder",
		Args:  cobra.ExactArgs(1),
		RunE: withSession(func(cmd *cobra.Command, s *console.Session, args []string) error {
			docs, err := s.Tree.Documents(cmd.Context(), args[0], recursive)
			if err != nil {
				return err
			}
			if jsonOutput {
				return printJSON(cmd.OutOrStdout(), docs)
			}
			return printDocuments(cmd.OutOrStdout(), docs)
		}),
	}
	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "Include documents of subfolders")
	return cmd
}

func newViewCmd() *cobra.Command {
	var (
		sortBy   string
		order    string
		types    []string
		query    string
		window   string
		page     int
		pageSize int
	)
	cmd := &cobra.Command{
		Use:       "view <documents|recent|shared|starred>",
		Short:     "List a document view with filters, sorting and paging",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"documents", "recent", "shared", "starred"},
		RunE: withSession(func(cmd *cobra.Command, s *console.Session, args []string) error {
			c, err := s.Collection(docsystem.View(args[0]))
			if err != nil {
				return err
			}

			patch := docsystem.FilterPatch{}
			if query != "" {
				patch.Query = &query
			}
			if window != "" {
				tw := docsystem.TimeFilter(window)
				patch.TimeWindow = &tw
			}
			for _, t := range types {
				patch.Types = append(patch.Types, docsystem.DocumentType(t))
			}
			if err := c.SetFilter(patch); err != nil {
				return err
			}

			if sortBy != "" {
				if order == "" {
					err = c.SetSortBy(docsystem.SortKey(sortBy))
				} else {
					err = c.SetSorting(docsystem.SortKey(sortBy), docsystem.SortDirection(order))
				}
				if err != nil {
					return err
				}
			}

			if err := c.SetPagination(docsystem.Pagination{Page: page, PageSize: pageSize}); err != nil {
				return err
			}
			result := c.Page(s.Now())
			st := c.Get()

			if jsonOutput {
				return printJSON(cmd.OutOrStdout(), result)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s: %d documents, sorted by %s %s, page %d of %d\n\n",
				args[0], result.Total, st.SortBy, st.SortOrder, result.Page, max(result.TotalPages, 1))
			if docsysService.ShouldGroup(st.View, st.SortBy) {
				for _, g := range docsysService.GroupBySharer(result.Items) {
					fmt.Fprintf(out, "Shared by %s\n", g.Key)
					if err := printDocuments(out, g.Documents); err != nil {
						return err
					}
					fmt.Fprintln(out)
				}
				return nil
			}
			return printDocuments(out, result.Items)
		}),
	}
	cmd.Flags().StringVarP(&sortBy, "sort", "s", "", "Sort key, e.g. name, updatedAt, size")
	cmd.Flags().StringVarP(&order, "order", "o", "", "asc or desc (defaults to the key's natural order)")
	cmd.Flags().StringSliceVarP(&types, "type", "t", nil, "Only these document types (repeatable)")
	cmd.Flags().StringVarP(&query, "query", "q", "", "Name search")
	cmd.Flags().StringVar(&window, "time", "", "today, week, month or all")
	cmd.Flags().IntVarP(&page, "page", "p", 1, "Page number")
	cmd.Flags().IntVar(&pageSize, "page-size", docsystem.DefaultPageSize, "Documents per page")
	return cmd
}

func printTree(w io.Writer, folders []*docsystem.TreeFolder, level, maxDepth int) {
	if maxDepth > 0 && level >= maxDepth {
		return
	}
	for _, f := range folders {
		fmt.Fprintf(w, "%s%s  [%s, %d docs]\n", strings.Repeat("  ", level), f.Name, f.ID, f.DocumentCount)
		printTree(w, f.Children, level+1, maxDepth)
	}
}

func printDocuments(w io.Writer, docs []docsystem.Document) error {
	p := message.NewPrinter(language.English)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tTYPE\tSTATUS\tSIZE\tUPDATED")
	for _, d := range docs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			d.ID, d.Name, d.Type, d.Status,
			p.Sprintf("%d B", d.Size),
			d.UpdatedAt.Format("2006-01-02 15:04"),
		)
	}
	return tw.Flush()
}
