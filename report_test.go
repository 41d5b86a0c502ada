package newsthreads

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleThreads() ThreadsResult {
	return ThreadsResult{
		ClusteringType: ClusteringSlink,
		Threads: []Thread{
			{
				ThreadID: 0,
				Language: "en",
				Title:    "Storm hits coast",
				Articles: []ThreadArticle{
					{ID: "a", Title: "Storm hits coast", URL: "https://big.com/storm", SiteName: "big.com", Authority: 1},
					{ID: "b", Title: "Coastal storm", SiteName: "small.com"},
				},
			},
		},
	}
}

func TestFormatThreadsReport(t *testing.T) {
	now := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	report := formatThreadsReport(sampleThreads(), now)

	assert.True(t, strings.HasPrefix(report, "# News Threads\n"))
	assert.Contains(t, report, "5 March 2024 - 1 threads (slink clustering)")
	assert.Contains(t, report, "## 1. Storm hits coast")
	assert.Contains(t, report, "- [Storm hits coast](<https://big.com/storm>) (big.com)")
	assert.Contains(t, report, "- Coastal storm (small.com)")

	empty := formatThreadsReport(ThreadsResult{}, now)
	assert.Contains(t, empty, "No threads found.")
}

func TestGenerateCompleteHTML(t *testing.T) {
	now := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	htmlContent, err := generateCompleteHTML(formatThreadsReport(sampleThreads(), now), now)
	require.NoError(t, err)

	assert.Contains(t, htmlContent, "<title>News Threads - 5 March 2024</title>")
	assert.Contains(t, htmlContent, `<a href="https://big.com/storm">Storm hits coast</a>`)
	assert.Contains(t, htmlContent, "<h2")
	// The markdown title is rendered by the template only.
	assert.Equal(t, 1, strings.Count(htmlContent, "<h1>"))
}

func TestReportEscapesScrapedText(t *testing.T) {
	now := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	result := ThreadsResult{
		ClusteringType: ClusteringDbscan,
		Threads: []Thread{{
			Language: "en",
			Title:    "<script>alert(1)</script>",
			Articles: []ThreadArticle{
				{ID: "a", Title: "<script>alert(1)</script>", URL: "https://a.com/x", SiteName: "a.com"},
				{ID: "b", Title: "<img src=x onerror=alert(1)>", URL: "javascript:alert(1)", SiteName: "b.com"},
				{ID: "c", Title: "[click](https://evil.com) *bold*", SiteName: "<b>c.com</b>"},
			},
		}},
	}

	htmlContent, err := generateCompleteHTML(formatThreadsReport(result, now), now)
	require.NoError(t, err)

	assert.NotContains(t, htmlContent, "<script>")
	assert.NotContains(t, htmlContent, "<img")
	assert.NotContains(t, htmlContent, "<b>c.com")
	assert.NotContains(t, htmlContent, "javascript:")
	assert.NotContains(t, htmlContent, ">click</a>")
	assert.NotContains(t, htmlContent, "<em>bold</em>")
	assert.Contains(t, htmlContent, "&lt;script&gt;alert(1)&lt;/script&gt;")
	assert.Contains(t, htmlContent, `<a href="https://a.com/x">`)
	assert.Contains(t, htmlContent, `<span class="lang">en</span>`)
}

func TestArticleLink(t *testing.T) {
	tests := []struct {
		raw  string
		want string
		ok   bool
	}{
		{"https://a.com/x?q=1", "https://a.com/x?q=1", true},
		{" http://a.com/a b ", "http://a.com/a%20b", true},
		{"javascript:alert(1)", "", false},
		{"/relative/path", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := articleLink(tt.raw)
		assert.Equal(t, tt.ok, ok, tt.raw)
		assert.Equal(t, tt.want, got, tt.raw)
	}
}

func TestThreadsRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "threads", "threads.json")
	require.NoError(t, saveThreads(path, sampleThreads()))

	got, err := loadThreads(path)
	require.NoError(t, err)
	assert.Equal(t, sampleThreads(), got)
}

func TestTruncateString(t *testing.T) {
	assert.Equal(t, "short", truncateString("short", 10))
	assert.Equal(t, "abcdefg...", truncateString("abcdefghijklmnop", 10))
	assert.Equal(t, "ab", truncateString("abcdef", 2))
	assert.Equal(t, "abc", truncateString("abcdef", 3))
	assert.Equal(t, "", truncateString("abcdef", 0))
	assert.Equal(t, "", truncateString("abcdef", -1))
}
