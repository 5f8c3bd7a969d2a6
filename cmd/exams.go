// ABOUTME: Exam commands for examctl CLI
// ABOUTME: Lists, shows and starts exams for the signed-in user

package cmd

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/waynezhang680/examctl/internal/models"
)

// maxConcurrentFetches bounds parallel exam detail requests
const maxConcurrentFetches = 4

var (
	examsPage  int
	examsLimit int
)

var examsCmd = &cobra.Command{
	Use:   "exams",
	Short: "List, show and start exams",
}

var examsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List available exams",
	Run: func(cmd *cobra.Command, args []string) {
		runWithApp(func(ctx context.Context, a *app, w io.Writer) int {
			return runExamsList(ctx, a, w, examsPage, examsLimit)
		})
	},
}

var examsShowCmd = &cobra.Command{
	Use:   "show ID [ID...]",
	Short: "Show exam details",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runWithApp(func(ctx context.Context, a *app, w io.Writer) int {
			ids, err := parseExamIDs(args)
			if err != nil {
				return reportError(w, err)
			}
			return runExamsShow(ctx, a, w, ids)
		})
	},
}

var examsStartCmd = &cobra.Command{
	Use:   "start ID",
	Short: "Start an exam",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runWithApp(func(ctx context.Context, a *app, w io.Writer) int {
			ids, err := parseExamIDs(args)
			if err != nil {
				return reportError(w, err)
			}
			return runExamsStart(ctx, a, w, ids[0])
		})
	},
}

func init() {
	rootCmd.AddCommand(examsCmd)
	examsCmd.AddCommand(examsListCmd, examsShowCmd, examsStartCmd)
	examsListCmd.Flags().IntVar(&examsPage, "page", 1, "Page number")
	examsListCmd.Flags().IntVar(&examsLimit, "limit", 0, "Exams per page (default from config)")
}

// runExamsList fetches one page of exams and returns exit code
func runExamsList(ctx context.Context, a *app, w io.Writer, page, limit int) int {
	if _, code, ok := a.guard(w, "/exams"); !ok {
		return code
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = a.cfg.PageSize
	}

	list, err := a.exams.FetchExams(ctx, page, limit)
	if err != nil {
		return reportError(w, err)
	}

	if IsJSONOutput() {
		writeJSON(w, list)
		return 0
	}
	fmt.Fprintln(w, formatExamTable(list.Exams))
	fmt.Fprintln(w, formatPageFooter(page, limit, list.Total))
	return 0
}

// runExamsShow fetches exams concurrently and prints them in argument order
func runExamsShow(ctx context.Context, a *app, w io.Writer, ids []int64) int {
	for _, id := range ids {
		if _, code, ok := a.guard(w, examRoute(id)); !ok {
			return code
		}
	}

	results := make([]*models.Exam, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentFetches)
	for i, id := range ids {
		g.Go(func() error {
			exam, err := a.exams.ExamDetails(gctx, id)
			if err != nil {
				return fmt.Errorf("exam %d: %w", id, err)
			}
			results[i] = exam
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return reportError(w, err)
	}

	if IsJSONOutput() {
		writeJSON(w, results)
		return 0
	}
	details := make([]string, len(results))
	for i, exam := range results {
		details[i] = formatExamDetail(exam)
	}
	fmt.Fprintln(w, strings.Join(details, "\n\n"))
	return 0
}

// runExamsStart starts an exam and returns exit code
func runExamsStart(ctx context.Context, a *app, w io.Writer, id int64) int {
	if _, code, ok := a.guard(w, examRoute(id)); !ok {
		return code
	}

	exam, err := a.exams.StartExam(ctx, id)
	if err != nil {
		return reportError(w, err)
	}

	if IsJSONOutput() {
		writeJSON(w, exam)
		return 0
	}
	fmt.Fprintf(w, "Started exam %d: %s (%s)\n", exam.ID, exam.Title, exam.Status.Label())
	return 0
}

func examRoute(id int64) string {
	return "/exam/" + strconv.FormatInt(id, 10)
}

func parseExamIDs(args []string) ([]int64, error) {
	ids := make([]int64, 0, len(args))
	for _, arg := range args {
		id, err := strconv.ParseInt(arg, 10, 64)
		if err != nil || id < 1 {
			return nil, fmt.Errorf("invalid exam id %q", arg)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// formatExamTable renders exams as a bordered table
func formatExamTable(list []models.Exam) string {
	if len(list) == 0 {
		return "No exams found."
	}

	rows := make([][]string, 0, len(list))
	for _, e := range list {
		rows = append(rows, []string{
			strconv.FormatInt(e.ID, 10),
			e.Title,
			e.Status.Label(),
			fmt.Sprintf("%d min", e.Duration),
			strconv.Itoa(e.TotalQuestions),
		})
	}

	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "TITLE", "STATUS", "DURATION", "QUESTIONS").
		Rows(rows...).
		String()
}

func formatPageFooter(page, limit, total int) string {
	pages := (total + limit - 1) / limit
	if pages < 1 {
		pages = 1
	}
	return fmt.Sprintf("Page %d of %d (%d exams)", page, pages, total)
}

// formatExamDetail formats one exam for human readability
func formatExamDetail(e *models.Exam) string {
	out := fmt.Sprintf(`Exam %d: %s
Status:     %s
Duration:   %d min
Questions:  %d`, e.ID, e.Title, e.Status.Label(), e.Duration, e.TotalQuestions)
	if e.Description != "" {
		out += "\n\n" + e.Description
	}
	return out
}
