//go:build gui

package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"net/url"
	"os"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"github.com/Hice-Bot/linkmark/internal/annotate"
	"github.com/Hice-Bot/linkmark/internal/config"
	"github.com/Hice-Bot/linkmark/internal/dataset"
	"github.com/Hice-Bot/linkmark/internal/doc"
	"github.com/Hice-Bot/linkmark/internal/match"
)

// Version info (injected via ldflags)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	configPath := flag.String("config", "linkmark.yaml", "Config file path")
	baseURL := flag.String("base-url", "", "Reference base URL (overrides config)")
	names := flag.String("names", "", "Comma-separated dataset files (case-insensitive partition)")
	exact := flag.String("exact", "", "Comma-separated dataset files (case-sensitive partition)")
	showVersion := flag.Bool("v", false, "Show version information")
	showVersionLong := flag.Bool("version", false, "Show version information")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Linkmark GUI - Reference Name Highlighter\n\n")
		fmt.Fprintf(os.Stderr, "Usage:\n")
		fmt.Fprintf(os.Stderr, "  linkmark-gui [options] [file]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nClick a highlighted name to open its reference entry\n")
		fmt.Fprintf(os.Stderr, "in the system browser.\n")
	}
	flag.Parse()

	if *showVersion || *showVersionLong {
		fmt.Printf("linkmark-gui %s (commit: %s, built: %s)\n", version, commit, date)
		os.Exit(0)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *baseURL != "" {
		cfg.BaseURL = *baseURL
	}
	if *names != "" {
		cfg.Datasets.Primary = splitList(*names)
	}
	if *exact != "" {
		cfg.Datasets.Exact = splitList(*exact)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	list, err := dataset.Load(cfg.Datasets.Primary...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := list.LoadExact(cfg.Datasets.Exact...); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if list.Skipped > 0 {
		log.Printf("linkmark: skipped %d malformed dataset entries", list.Skipped)
	}
	if list.Len() == 0 {
		fmt.Fprintln(os.Stderr, "Error: dataset is empty")
		os.Exit(1)
	}

	annotator := annotate.New(match.NewTable(list, cfg.BaseURL))
	if cfg.MarkerClass != "" {
		annotator.MarkerClass = cfg.MarkerClass
	}
	annotator.Exclude(cfg.ExcludeTags...)

	var result *doc.Result
	source := "stdin"
	if flag.NArg() > 0 {
		source = flag.Arg(0)
		result, err = doc.Process(source, annotator)
	} else {
		stat, _ := os.Stdin.Stat()
		if (stat.Mode() & os.ModeCharDevice) != 0 {
			fmt.Fprintln(os.Stderr, "Error: No input provided. Provide a file or pipe HTML to stdin.")
			os.Exit(1)
		}
		result, err = annotateStdin(os.Stdin, annotator)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	root, err := parsePreview(result.HTML)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	segments := annotator.Segments(root)

	a := app.New()
	w := a.NewWindow("linkmark - " + source)

	statusLabel := widget.NewLabel(fmt.Sprintf("%s | %d references", source, len(result.Matches)))
	statusLabel.Alignment = fyne.TextAlignCenter

	rich := widget.NewRichText(richSegments(segments)...)
	rich.Wrapping = fyne.TextWrapWord

	content := container.NewBorder(
		statusLabel,
		nil, nil, nil,
		container.NewVScroll(rich),
	)

	w.Canvas().SetOnTypedRune(func(r rune) {
		if r == 'q' || r == 'Q' {
			a.Quit()
		}
	})

	w.Resize(fyne.NewSize(800, 600))
	w.SetContent(content)
	w.ShowAndRun()
}

// richSegments maps annotated segments onto RichText: plain runs stay text,
// markers become hyperlinks the toolkit opens in the system browser.
func richSegments(segments []annotate.Segment) []widget.RichTextSegment {
	out := make([]widget.RichTextSegment, 0, len(segments))
	for _, seg := range segments {
		if seg.URL == "" {
			out = append(out, &widget.TextSegment{Text: seg.Text})
			continue
		}
		u, err := url.Parse(seg.URL)
		if err != nil {
			out = append(out, &widget.TextSegment{Text: seg.Text})
			continue
		}
		out = append(out, &widget.HyperlinkSegment{Text: seg.Text, URL: u})
	}
	return out
}

func annotateStdin(r io.Reader, annotator *annotate.Annotator) (*doc.Result, error) {
	return doc.ProcessReader(r, annotator)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
