package newsthreads

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

//go:embed templates/report.html
var htmlTemplate string

//go:embed templates/styles.css
var cssStyles string

const reportTitle = "News Threads"

var reportOpts struct {
	input string
}

var GenerateReportCmd = &cobra.Command{
	Use:   "generate-report",
	Short: "Generate the threads report in markdown and HTML formats",
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := loadThreads(reportOpts.input)
		if err != nil {
			return err
		}

		report := formatThreadsReport(result, time.Now())
		if err := os.WriteFile("report.md", []byte(report), 0644); err != nil {
			return fmt.Errorf("failed to write report file: %w", err)
		}
		log.Info().Msg("Report generated: report.md")

		htmlContent, err := generateCompleteHTML(report, time.Now())
		if err != nil {
			return err
		}
		if err := os.WriteFile("report.html", []byte(htmlContent), 0644); err != nil {
			return fmt.Errorf("failed to write HTML file: %w", err)
		}
		log.Info().Msg("HTML report generated: report.html")
		return nil
	},
}

func init() {
	GenerateReportCmd.Flags().StringVar(&reportOpts.input, "input", threadsFile, "threads file written by cluster-threads")
}

// formatThreadsReport renders threads as markdown, one section per thread with
// the representative article first.
func formatThreadsReport(result ThreadsResult, now time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", reportTitle)

	if len(result.Threads) == 0 {
		b.WriteString("No threads found.\n")
		return b.String()
	}

	fmt.Fprintf(&b, "*%s - %d threads (%s clustering)*\n\n", now.Format("2 January 2006"), len(result.Threads), result.ClusteringType)

	for i, t := range result.Threads {
		fmt.Fprintf(&b, "## %d. %s <span class=\"lang\">%s</span>\n\n", i+1, escapeMarkdown(t.Title), escapeMarkdown(t.Language))
		for _, a := range t.Articles {
			title, site := escapeMarkdown(a.Title), escapeMarkdown(a.SiteName)
			if link, ok := articleLink(a.URL); ok {
				fmt.Fprintf(&b, "- [%s](<%s>) (%s)\n", title, link, site)
			} else {
				fmt.Fprintf(&b, "- %s (%s)\n", title, site)
			}
		}
		b.WriteString("\n---\n\n")
	}
	return b.String()
}

var markdownEscaper = strings.NewReplacer(
	"\\", "\\\\",
	"`", "\\`",
	"*", "\\*",
	"_", "\\_",
	"[", "\\[",
	"]", "\\]",
	"|", "\\|",
	"~", "\\~",
	"#", "\\#",
	"\n", " ",
	"\r", " ",
)

// escapeMarkdown makes scraped text inert in the report. HTML is escaped
// because the renderer passes raw HTML through.
func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(template.HTMLEscapeString(s))
}

// articleLink returns an http(s) URL safe to use as a markdown link destination.
func articleLink(raw string) (string, bool) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return "", false
	}
	return strings.NewReplacer("<", "%3C", ">", "%3E", " ", "%20").Replace(u.String()), true
}

// generateCompleteHTML generates a complete HTML document with embedded CSS
func generateCompleteHTML(markdownContent string, now time.Time) (string, error) {
	// The template renders its own title.
	lines := strings.Split(markdownContent, "\n")
	if len(lines) > 0 && strings.HasPrefix(lines[0], "# ") {
		lines = lines[1:]
	}
	cleanMarkdown := strings.TrimLeft(strings.Join(lines, "\n"), "\n")

	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Linkify,
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			html.WithXHTML(),
			html.WithUnsafe(),
		),
	)

	var buf bytes.Buffer
	if err := md.Convert([]byte(cleanMarkdown), &buf); err != nil {
		return "", fmt.Errorf("failed to convert markdown to HTML: %w", err)
	}

	tmpl, err := template.New("report").Parse(htmlTemplate)
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML template: %w", err)
	}

	data := struct {
		Title string
		Date  string
		Body  template.HTML
		CSS   template.CSS
	}{
		Title: reportTitle,
		Date:  now.Format("2 January 2006"),
		Body:  template.HTML(buf.String()),
		CSS:   template.CSS(cssStyles),
	}

	var result bytes.Buffer
	if err := tmpl.Execute(&result, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return result.String(), nil
}
