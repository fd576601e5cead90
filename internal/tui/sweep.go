// Package tui renders sweep progress in the terminal.
package tui

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/sysid/internal/sweep"
)

type pointMsg sweep.Point

type doneMsg struct {
	res *sweep.Result
	err error
}

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg { return tickMsg(t) })
}

var spinner = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

type SweepModel struct {
	name   string
	metric string
	total  int
	points []sweep.Point
	start  time.Time
	frame  int
	done   bool
	err    error
	cancel context.CancelFunc
}

func NewSweepModel(name, metric string, total int, cancel context.CancelFunc) SweepModel {
	return SweepModel{
		name:   name,
		metric: metric,
		total:  total,
		start:  time.Now(),
		cancel: cancel,
	}
}

func (m SweepModel) Init() tea.Cmd { return tick() }

func (m SweepModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			if m.cancel != nil {
				m.cancel()
			}
			return m, tea.Quit
		}
	case pointMsg:
		m.points = append(m.points, sweep.Point(msg))
		sort.Slice(m.points, func(i, j int) bool { return m.points[i].Param < m.points[j].Param })
	case doneMsg:
		m.done = true
		m.err = msg.err
		return m, tea.Quit
	case tickMsg:
		m.frame++
		if m.done {
			return m, nil
		}
		return m, tick()
	}
	return m, nil
}

func (m SweepModel) View() string {
	var b strings.Builder

	state := accent.Render(spinner[m.frame%len(spinner)])
	if m.done {
		state = good.Render("✓")
		if m.err != nil {
			state = fail.Render("✗")
		}
	}
	b.WriteString(Header.Render(fmt.Sprintf("sweep %s", m.name)) + "\n\n")

	pct := 0.0
	if m.total > 0 {
		pct = float64(len(m.points)) / float64(m.total)
	}
	b.WriteString(fmt.Sprintf(" %s %s %s\n\n", state, ProgressBar(pct, 40),
		muted.Render(fmt.Sprintf("%d/%d  %s", len(m.points), m.total, time.Since(m.start).Round(time.Millisecond)))))

	values := make([]float64, 0, len(m.points))
	for _, p := range m.points {
		v, ok := p.Value(m.metric)
		cell := muted.Render("-")
		if ok {
			cell = Value.Render(fmt.Sprintf("%.4g", v))
			values = append(values, v)
		}
		b.WriteString(fmt.Sprintf("   %s %-12s %s = %s\n",
			Label.Render("param"), plain.Render(fmt.Sprintf("%g", p.Param)),
			Label.Render(m.metric), cell+"  "+Status(p.Status)))
	}
	if len(values) > 1 {
		b.WriteString("\n   " + trend.Render(Sparkline(values, 40)) + "\n")
	}
	if m.err != nil {
		b.WriteString("\n   " + fail.Render(m.err.Error()) + "\n")
	}
	b.WriteString("\n" + muted.Render("   q quit") + "\n")
	return b.String()
}

// RunSweep runs the sweep while rendering its progress. Quitting the view
// cancels the remaining points.
func RunSweep(ctx context.Context, runner sweep.Runner, name string, params []float64) (*sweep.Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(NewSweepModel(name, runner.Metric, len(params), cancel))
	runner.OnPoint = func(pt sweep.Point) { p.Send(pointMsg(pt)) }

	results := make(chan doneMsg, 1)
	go func() {
		res, err := runner.Run(ctx, name, params)
		results <- doneMsg{res: res, err: err}
		p.Send(doneMsg{res: res, err: err})
	}()

	if _, err := p.Run(); err != nil {
		cancel()
		<-results
		return nil, err
	}
	done := <-results
	return done.res, done.err
}
