package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/worksheet/internal/store"
	"github.com/abhisek/worksheet/internal/worksheet"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved worksheets",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		subjectVal, _ := cmd.Flags().GetString("subject")

		opts := store.QueryOpts{Limit: limit}
		if subjectVal != "" {
			subject, err := worksheet.ParseSubject(subjectVal)
			if err != nil {
				return err
			}
			opts.Subject = subject
		}

		return withStore(cmd, func(ctx context.Context, st *store.Store) error {
			items, err := st.WorksheetRepo().List(ctx, opts)
			if err != nil {
				return fmt.Errorf("list worksheets: %w", err)
			}
			out := cmd.OutOrStdout()
			if len(items) == 0 {
				fmt.Fprintln(out, "No saved worksheets.")
				return nil
			}

			tw := table(out)
			fmt.Fprintln(tw, "ID\tCREATED\tSUBJECT\tN\tSOURCE\tSETTINGS")
			for _, it := range items {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\n",
					it.ID, it.CreatedAt.Local().Format("2006-01-02 15:04"),
					it.Subject, it.Count, it.Source, it.Label)
			}
			return tw.Flush()
		})
	},
}

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print a saved worksheet",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(ctx context.Context, st *store.Store) error {
			sheet, err := st.WorksheetRepo().Get(ctx, args[0])
			if err != nil {
				return notFound(args[0], "get worksheet", err)
			}
			return output(cmd, sheet)
		})
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a saved worksheet",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(ctx context.Context, st *store.Store) error {
			if err := st.WorksheetRepo().Delete(ctx, args[0]); err != nil {
				return notFound(args[0], "delete worksheet", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
			return nil
		})
	},
}

func notFound(id, op string, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("worksheet %s not found", id)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func init() {
	listCmd.Flags().IntP("limit", "n", 20, "Number of worksheets to show")
	listCmd.Flags().StringP("subject", "s", "", "Filter by subject: math, hanja, english")

	addOutputFlags(showCmd.Flags())
}
