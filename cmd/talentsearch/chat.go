package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/smallnest/talentsearch/agent"
	"github.com/smallnest/talentsearch/filters"
)

var (
	promptStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#8BC34A")).Bold(true)
	progressStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6c7a89")).Italic(true)
	replyStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#f2f2f2"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#e53935")).Bold(true)
	panelStyle    = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#2196F3")).
			Padding(0, 1)
	titleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#2196F3")).Bold(true)
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with the assistant in the terminal",
	Long: `Starts an interactive session against the in-process assistant.

Commands:
  /clear          start a new search, keeping the old one as context
  /skip <field>   stop asking about a field (e.g. /skip industries)
  /filters        show the current filters
  /quit           exit`,
	RunE: runChat,
}

func runChat(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	r := &repl{app: a, out: cmd.OutOrStdout()}
	return r.run(ctx, cmd.InOrStdin())
}

type repl struct {
	app       *app
	out       io.Writer
	sessionID string
}

func (r *repl) run(ctx context.Context, in io.Reader) error {
	fmt.Fprintln(r.out, titleStyle.Render("talentsearch")+progressStyle.Render("  try \"Find CTOs in Singapore\", /quit to exit"))

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(r.out, promptStyle.Render("you › "))
		if !scanner.Scan() {
			fmt.Fprintln(r.out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "/") {
			if done := r.command(ctx, line); done {
				return nil
			}
			continue
		}
		r.turn(ctx, line)
		if ctx.Err() != nil {
			return nil
		}
	}
}

func (r *repl) command(ctx context.Context, line string) (quit bool) {
	name, arg, _ := strings.Cut(line, " ")
	switch name {
	case "/quit", "/exit":
		return true
	case "/clear":
		if r.sessionID == "" {
			return false
		}
		if _, err := r.app.service.Clear(ctx, r.sessionID); err != nil {
			r.fail(err)
			return false
		}
		fmt.Fprintln(r.out, progressStyle.Render("search cleared"))
	case "/skip":
		field, ok := filters.ParseField(arg)
		if !ok || r.sessionID == "" {
			r.fail(fmt.Errorf("usage: /skip <field> after the first message, fields: %v", filters.Fields))
			return false
		}
		sess, err := r.app.service.Skip(ctx, r.sessionID, field)
		if err != nil {
			r.fail(err)
			return false
		}
		r.showFilters(sess.Filters, sess.Meta)
	case "/filters":
		if r.sessionID == "" {
			r.showFilters(filters.SearchFilters{}, filters.DefaultMeta())
			return false
		}
		sess, err := r.app.store.Get(ctx, r.sessionID, false)
		if err != nil {
			r.fail(err)
			return false
		}
		r.showFilters(sess.Filters, sess.Meta)
	default:
		r.fail(fmt.Errorf("unknown command %s", name))
	}
	return false
}

func (r *repl) turn(ctx context.Context, message string) {
	turn, err := r.app.service.Chat(ctx, r.sessionID, message)
	if err != nil {
		r.fail(err)
		return
	}
	r.sessionID = turn.SessionID

	streaming := false
	for e := range turn.Events {
		switch d := e.Data.(type) {
		case agent.ProgressData:
			if d.Status == agent.StatusStarted {
				fmt.Fprintln(r.out, progressStyle.Render("  "+d.Message))
			}
		case agent.ContentData:
			if d.Chunk != "" {
				if !streaming {
					fmt.Fprint(r.out, promptStyle.Render("assistant › "))
					streaming = true
				}
				fmt.Fprint(r.out, replyStyle.Render(d.Chunk))
			}
			if d.IsComplete && streaming {
				fmt.Fprintln(r.out)
				streaming = false
			}
		case agent.FiltersData:
			r.showFilters(d.Filters, d.Meta)
		case agent.ErrorData:
			r.fail(fmt.Errorf("%s: %s", d.Code, d.Message))
		}
	}
}

func (r *repl) showFilters(f filters.SearchFilters, meta filters.SearchMeta) {
	lines := f.Lines(filters.Labels)
	if len(lines) == 0 {
		lines = []string{"(no filters yet)"}
	}
	header := fmt.Sprintf("%s search · %d%% complete", meta.Domain, meta.CompletenessScore)
	body := titleStyle.Render(header) + "\n" + strings.Join(lines, "\n")
	fmt.Fprintln(r.out, panelStyle.Render(body))
}

func (r *repl) fail(err error) {
	fmt.Fprintln(r.out, errorStyle.Render("error: "+err.Error()))
}
