package report

import (
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/secretsanta/internal/history"
)

// MarkdownWriter writes the history as a Markdown document.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter returns a MarkdownWriter writing to output.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{baseWriter: newBaseWriter(output)}
}

// Write implements Writer.
func (w *MarkdownWriter) Write(records []*history.Record) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Secret Santa Submissions")
	md.PlainText("")

	sum := Summarize(records)
	w.writeSummary(md, sum)

	if len(records) > 0 {
		w.writeTable(md, records)
		w.writeFailures(md, records)
	}

	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Generated by secretsanta*")

	return len(md.String()), md.Build()
}

func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, sum Summary) {
	md.H2("Summary")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Outcome", "Count"},
		Rows: [][]string{
			{"✅ " + title("succeeded"), strconv.Itoa(sum.Succeeded)},
			{"❌ " + title("failed"), strconv.Itoa(sum.Failed)},
			{"**Total**", "**" + strconv.Itoa(sum.Total) + "**"},
		},
	})
	md.PlainText("")

	switch {
	case sum.Total == 0:
		md.Note("No submissions recorded yet.")
	case sum.Failed == 0:
		md.Tip("Every submission produced a result file.")
	case sum.Succeeded == 0:
		md.Cautionf("All %d submission(s) failed.", sum.Failed)
	default:
		md.Warningf("%d of %d submission(s) failed.", sum.Failed, sum.Total)
		w.writePieChart(md, sum)
	}
	md.PlainText("")
}

func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, sum Summary) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Submission Outcomes"),
		piechart.WithShowData(true),
	)
	chart.LabelAndIntValue(title("succeeded"), uint64(sum.Succeeded)) //nolint:gosec // counts are non-negative
	chart.LabelAndIntValue(title("failed"), uint64(sum.Failed))       //nolint:gosec // counts are non-negative

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

func (w *MarkdownWriter) writeTable(md *markdown.Markdown, records []*history.Record) {
	md.H2("Submissions")
	md.PlainText("")

	rows := make([][]string, len(records))
	for i, r := range records {
		rows[i] = []string{
			r.Timestamp.Local().Format(timeFormat),
			Outcome(r),
			StatusLabel(r),
			"`" + orDash(r.FileName) + "`",
			strconv.FormatInt(r.Size, 10),
			truncateString(orDash(r.Source), 40),
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Date", "Outcome", "Status", "File", "Bytes", "Source"},
		Rows:   rows,
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeFailures(md *markdown.Markdown, records []*history.Record) {
	var failed []*history.Record
	for _, r := range records {
		if !r.Succeeded() {
			failed = append(failed, r)
		}
	}
	if len(failed) == 0 {
		return
	}

	md.H2("Failures")
	md.PlainText("")
	for _, r := range failed {
		md.Details(r.SubmissionID, r.Error)
	}
	md.PlainText("")
}
