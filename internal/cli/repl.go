// Package cli implements the interactive search prompt.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Adithya-Monish-Kumar-K/corpus-search/internal/searcher/executor"
)

const (
	prompt    = "Search (or 'exit'): "
	exitWord  = "exit"
	noResults = "No results found."
	header    = "Ranked results (TF-IDF):"
)

// Styles renders REPL output.
type Styles struct {
	Header  lipgloss.Style
	DocID   lipgloss.Style
	Score   lipgloss.Style
	Muted   lipgloss.Style
	Summary lipgloss.Style
}

// NewStyles returns styles bound to r. A renderer whose output is not a
// terminal produces plain text.
func NewStyles(r *lipgloss.Renderer) Styles {
	return Styles{
		Header:  r.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		DocID:   r.NewStyle().Foreground(lipgloss.Color("10")),
		Score:   r.NewStyle().Foreground(lipgloss.Color("11")),
		Muted:   r.NewStyle().Faint(true),
		Summary: r.NewStyle().Bold(true),
	}
}

// REPL reads queries line by line and prints ranked results.
type REPL struct {
	exec   *executor.Executor
	limit  int
	styles Styles
}

// New returns a REPL printing at most limit results per query. A limit of
// zero or less prints every scoring document.
func New(exec *executor.Executor, limit int, styles Styles) *REPL {
	return &REPL{exec: exec, limit: limit, styles: styles}
}

// Banner prints the corpus summary shown before the first prompt.
func (r *REPL) Banner(out io.Writer) {
	idx := r.exec.Engine().Index()
	fmt.Fprintln(out, r.styles.Summary.Render(
		fmt.Sprintf("Indexed %d documents. Unique terms: %d", idx.DocCount(), idx.TermCount())))
	fmt.Fprintln(out, r.styles.Muted.Render("Type a query and press enter. Type exit to quit."))
	fmt.Fprintln(out)
}

// Run prompts until in is exhausted, the user types exit, or ctx is done.
// Blank lines are skipped.
func (r *REPL) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		fmt.Fprint(out, prompt)
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		query := strings.TrimSpace(scanner.Text())
		if query == "" {
			continue
		}
		if strings.EqualFold(query, exitWord) {
			return nil
		}
		res, err := r.exec.Search(ctx, query, r.limit)
		if err != nil {
			return fmt.Errorf("searching %q: %w", query, err)
		}
		r.print(out, res)
	}
}

func (r *REPL) print(out io.Writer, res *executor.SearchResult) {
	if len(res.Results) == 0 {
		fmt.Fprintln(out, r.styles.Muted.Render(noResults))
		fmt.Fprintln(out)
		return
	}
	fmt.Fprintln(out, r.styles.Header.Render(header))
	for _, doc := range res.Results {
		fmt.Fprintf(out, "- %s: %s\n",
			r.styles.DocID.Render(doc.DocID),
			r.styles.Score.Render(fmt.Sprintf("%.4f", doc.Score)))
	}
	if res.TotalHits > len(res.Results) {
		fmt.Fprintln(out, r.styles.Muted.Render(
			fmt.Sprintf("(%d of %d matching documents)", len(res.Results), res.TotalHits)))
	}
	fmt.Fprintln(out)
}
