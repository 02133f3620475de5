//go:build !gui

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Hice-Bot/linkmark/internal/annotate"
	"github.com/Hice-Bot/linkmark/internal/config"
	"github.com/Hice-Bot/linkmark/internal/dataset"
	"github.com/Hice-Bot/linkmark/internal/doc"
	"github.com/Hice-Bot/linkmark/internal/match"
	"github.com/Hice-Bot/linkmark/internal/server"
	"github.com/Hice-Bot/linkmark/internal/watch"
)

// Version info (injected via ldflags)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	markStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFD700")).
			Underline(true)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			Padding(0, 1)

	controlsStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666")).
			Italic(true)
)

type model struct {
	viewport viewport.Model
	segments []annotate.Segment
	matches  int
	source   string
	ready    bool
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "Q", "ctrl+c":
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-2)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - 2
		}
		m.viewport.SetContent(renderSegments(m.segments, msg.Width))
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m model) View() string {
	if !m.ready {
		return "loading..."
	}
	status := statusStyle.Render(fmt.Sprintf("%s | %d references", m.source, m.matches))
	controls := controlsStyle.Render("↑/↓ pgup/pgdn: scroll  Q: quit")
	return status + "\n" + m.viewport.View() + "\n" + controls
}

// renderSegments styles highlighted names inline and wraps to the window.
func renderSegments(segments []annotate.Segment, width int) string {
	var sb strings.Builder
	for _, seg := range segments {
		if seg.URL != "" {
			sb.WriteString(markStyle.Render(seg.Text))
		} else {
			sb.WriteString(seg.Text)
		}
	}
	if width > 0 {
		return lipgloss.NewStyle().Width(width).Render(sb.String())
	}
	return sb.String()
}

func main() {
	configPath := flag.String("config", "linkmark.yaml", "Config file path")
	baseURL := flag.String("base-url", "", "Reference base URL (overrides config)")
	names := flag.String("names", "", "Comma-separated dataset files (case-insensitive partition)")
	exact := flag.String("exact", "", "Comma-separated dataset files (case-sensitive partition)")
	exclude := flag.String("exclude", "", "Extra container tags to skip, comma-separated")
	output := flag.String("o", "", "Write annotated HTML to this file instead of stdout")
	serveMode := flag.Bool("serve", false, "Serve annotated documents over HTTP")
	watchMode := flag.Bool("watch", false, "Re-annotate files as they change")
	tuiMode := flag.Bool("tui", false, "Review matches in an interactive pane")
	showVersion := flag.Bool("v", false, "Show version information")
	showVersionLong := flag.Bool("version", false, "Show version information")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Linkmark - Reference Name Highlighter\n\n")
		fmt.Fprintf(os.Stderr, "Usage:\n")
		fmt.Fprintf(os.Stderr, "  linkmark [options] [file]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  linkmark page.html                 Annotate a file to stdout\n")
		fmt.Fprintf(os.Stderr, "  linkmark -o out.html page.html     Annotate to a file\n")
		fmt.Fprintf(os.Stderr, "  cat page.html | linkmark           Annotate stdin\n")
		fmt.Fprintf(os.Stderr, "  linkmark -tui book.epub            Review matches interactively\n")
		fmt.Fprintf(os.Stderr, "  linkmark -serve -watch             Live preview server\n")
		fmt.Fprintf(os.Stderr, "\nSupported formats:\n")
		for _, f := range doc.SupportedFormats() {
			fmt.Fprintf(os.Stderr, "  %s\n", f)
		}
	}
	flag.Parse()

	if *showVersion || *showVersionLong {
		fmt.Printf("linkmark %s (commit: %s, built: %s)\n", version, commit, date)
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
	if *exclude != "" {
		cfg.ExcludeTags = append(cfg.ExcludeTags, splitList(*exclude)...)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	table, err := buildTable(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *serveMode || *watchMode {
		runDaemon(cfg, table, *serveMode, *watchMode)
		return
	}

	annotator := newAnnotator(cfg, table)

	var result *doc.Result
	source := "stdin"
	if flag.NArg() > 0 {
		source = flag.Arg(0)
		result, err = doc.Process(source, annotator)
	} else {
		stat, _ := os.Stdin.Stat()
		if (stat.Mode() & os.ModeCharDevice) != 0 {
			fmt.Fprintln(os.Stderr, "Error: No input provided. Provide a file or pipe HTML to stdin.")
			fmt.Fprintln(os.Stderr, "Try: linkmark -h")
			os.Exit(1)
		}
		result, err = doc.ProcessReader(os.Stdin, annotator)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *tuiMode {
		runTUI(source, result, annotator)
		return
	}

	out := io.Writer(os.Stdout)
	if *output != "" {
		f, err := os.Create(*output)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		out = f
	}
	if _, err := io.WriteString(out, result.HTML); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// runTUI reparses the annotated output into display segments and opens the
// review pane.
func runTUI(source string, result *doc.Result, annotator *annotate.Annotator) {
	segments, err := previewSegments(result.HTML, annotator)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	m := model{
		segments: segments,
		matches:  len(result.Matches),
		source:   source,
	}
	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runDaemon(cfg *config.Config, table *match.Table, serveMode, watchMode bool) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var srv *server.Server
	if serveMode {
		srv = server.New(server.Config{
			Addr:        cfg.Serve.Addr,
			Root:        cfg.Serve.Root,
			MarkerClass: cfg.MarkerClass,
			ExcludeTags: cfg.ExcludeTags,
		}, table)
		go func() {
			if err := srv.Start(); err != nil {
				log.Printf("linkmark: %v", err)
				stop()
			}
		}()
	}

	if watchMode {
		dirs := cfg.Watch.Dirs
		if len(dirs) == 0 {
			dirs = []string{cfg.Serve.Root}
		}
		w, err := watch.New(dirs, cfg.Watch.Patterns, func(path string) {
			annotator := newAnnotator(cfg, table)
			result, err := doc.Process(path, annotator)
			if err != nil {
				log.Printf("linkmark: %s: %v", path, err)
				return
			}
			if cfg.Watch.OutDir != "" {
				if err := writeAnnotated(cfg.Watch.OutDir, path, result.HTML); err != nil {
					log.Printf("linkmark: %s: %v", path, err)
					return
				}
			}
			log.Printf("linkmark: %s: %d references", path, len(result.Matches))
			if srv != nil {
				srv.Broadcast("reload")
			}
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer w.Close()
		go func() {
			if err := w.Run(ctx); err != nil {
				log.Printf("linkmark: watch: %v", err)
			}
		}()
	}

	<-ctx.Done()
	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("linkmark: shutdown: %v", err)
		}
	}
}

func newAnnotator(cfg *config.Config, table *match.Table) *annotate.Annotator {
	a := annotate.New(table)
	if cfg.MarkerClass != "" {
		a.MarkerClass = cfg.MarkerClass
	}
	a.Exclude(cfg.ExcludeTags...)
	return a
}

func buildTable(cfg *config.Config) (*match.Table, error) {
	list, err := dataset.Load(cfg.Datasets.Primary...)
	if err != nil {
		return nil, err
	}
	if err := list.LoadExact(cfg.Datasets.Exact...); err != nil {
		return nil, err
	}
	if list.Skipped > 0 {
		log.Printf("linkmark: skipped %d malformed dataset entries", list.Skipped)
	}
	if list.Len() == 0 {
		return nil, fmt.Errorf("dataset is empty")
	}
	return match.NewTable(list, cfg.BaseURL), nil
}

// previewSegments flattens annotated HTML back into styled display runs.
func previewSegments(annotated string, annotator *annotate.Annotator) ([]annotate.Segment, error) {
	root, err := parsePreview(annotated)
	if err != nil {
		return nil, err
	}
	return annotator.Segments(root), nil
}

func writeAnnotated(outDir, src, content string) error {
	name := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src)) + ".html"
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(outDir, name), []byte(content), 0644)
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
