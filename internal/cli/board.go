package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/hundredx/go100x/hundredx/client"
	"github.com/hundredx/go100x/hundredx/types"
)

const boardDepth = 5

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15"))

	bidStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("2"))

	askStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("1"))

	borderStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("238"))
)

// marketSource is the part of the client the board polls.
type marketSource interface {
	GetDepth(ctx context.Context, symbol string, opts client.DepthOptions) (*types.Depth, error)
	GetSymbol(ctx context.Context, symbol string) (*types.Ticker, error)
}

type boardTickMsg time.Time

type boardSnapshotMsg struct {
	symbol string
	depth  *types.Depth
	ticker *types.Ticker
	at     time.Time
}

type boardErrMsg struct{ err error }

type boardModel struct {
	ctx      context.Context
	source   marketSource
	symbols  []string
	interval time.Duration

	snapshots map[string]boardSnapshotMsg
	err       error
}

func newBoardModel(ctx context.Context, source marketSource, symbols []string, interval time.Duration) boardModel {
	return boardModel{
		ctx:       ctx,
		source:    source,
		symbols:   symbols,
		interval:  interval,
		snapshots: make(map[string]boardSnapshotMsg),
	}
}

func (m boardModel) Init() tea.Cmd {
	return tea.Batch(m.fetchAll(), m.tick())
}

func (m boardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		}

	case boardTickMsg:
		return m, tea.Batch(m.fetchAll(), m.tick())

	case boardSnapshotMsg:
		m.snapshots[msg.symbol] = msg
		m.err = nil

	case boardErrMsg:
		m.err = msg.err
	}
	return m, nil
}

func (m boardModel) View() string {
	var s strings.Builder

	status := "waiting for data..."
	if m.err != nil {
		status = "error: " + m.err.Error()
	} else if len(m.snapshots) > 0 {
		status = fmt.Sprintf("refresh every %s", m.interval)
	}
	s.WriteString(headerStyle.Render(fmt.Sprintf("100x | %s", status)))
	s.WriteString("\n\n")

	books := make([]string, 0, len(m.symbols))
	for _, symbol := range m.symbols {
		books = append(books, renderBook(symbol, m.snapshots[symbol]))
	}
	s.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, books...))
	s.WriteString("\n\npress q to quit")
	return s.String()
}

func renderBook(symbol string, snap boardSnapshotMsg) string {
	var s strings.Builder
	s.WriteString(titleStyle.Render(strings.ToUpper(symbol)))
	s.WriteString("\n")
	if snap.ticker != nil {
		s.WriteString(fmt.Sprintf("mark %s  last %s\n", units(snap.ticker.MarkPrice), units(snap.ticker.LastPrice)))
	}
	s.WriteString("\n")

	if snap.depth == nil {
		s.WriteString("  --\n")
		return borderStyle.Render(s.String())
	}

	asks := snap.depth.Asks
	if len(asks) > boardDepth {
		asks = asks[:boardDepth]
	}
	// best ask nearest the spread
	for i := len(asks) - 1; i >= 0; i-- {
		s.WriteString(askStyle.Render(fmt.Sprintf("  %12s  %10s", units(asks[i].Price()), units(asks[i].Quantity()))))
		s.WriteString("\n")
	}
	s.WriteString("  ------------------------\n")
	for i, l := range snap.depth.Bids {
		if i == boardDepth {
			break
		}
		s.WriteString(bidStyle.Render(fmt.Sprintf("  %12s  %10s", units(l.Price()), units(l.Quantity()))))
		s.WriteString("\n")
	}
	return borderStyle.Render(s.String())
}

func (m boardModel) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return boardTickMsg(t)
	})
}

func (m boardModel) fetchAll() tea.Cmd {
	cmds := make([]tea.Cmd, 0, len(m.symbols))
	for _, symbol := range m.symbols {
		cmds = append(cmds, m.fetch(symbol))
	}
	return tea.Batch(cmds...)
}

func (m boardModel) fetch(symbol string) tea.Cmd {
	return func() tea.Msg {
		depth, err := m.source.GetDepth(m.ctx, symbol, client.DepthOptions{Limit: boardDepth})
		if err != nil {
			return boardErrMsg{err: err}
		}
		ticker, err := m.source.GetSymbol(m.ctx, symbol)
		if err != nil {
			return boardErrMsg{err: err}
		}
		return boardSnapshotMsg{symbol: symbol, depth: depth, ticker: ticker, at: time.Now()}
	}
}

var boardCmd = &cobra.Command{
	Use:          "board SYMBOL...",
	Short:        "full screen order book board",
	Args:         cobra.MinimumNArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		interval, _ := cmd.Flags().GetDuration("interval")
		c, err := newClient(false)
		if err != nil {
			return err
		}
		p := tea.NewProgram(newBoardModel(ctx, c, args, interval), tea.WithAltScreen(), tea.WithContext(ctx))
		_, err = p.Run()
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return err
	},
}

func init() {
	boardCmd.Flags().Duration("interval", time.Second, "refresh interval")

	RootCmd.AddCommand(boardCmd)
}
