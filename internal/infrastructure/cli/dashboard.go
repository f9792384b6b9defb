package cli

import (
	"fmt"
	"os"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/felixgeelhaar/workbench/pkg/application"
	"github.com/felixgeelhaar/workbench/pkg/domain/execution"
	"github.com/felixgeelhaar/workbench/pkg/storage"
	"github.com/spf13/cobra"
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Interactive TUI view of the execution plan",
	RunE: func(cmd *cobra.Command, args []string) error {
		if os.Getenv("WORKBENCH_SKIP_DASHBOARD_RUN") == "true" {
			return nil
		}
		p := tea.NewProgram(initialModel())
		if _, err := p.Run(); err != nil {
			return fmt.Errorf("dashboard run failed: %w", err)
		}
		return nil
	},
}

func init() {
	RootCmd.AddCommand(dashboardCmd)
}

var baseStyle = lipgloss.NewStyle().
	BorderStyle(lipgloss.NormalBorder()).
	BorderForeground(lipgloss.Color("240"))

type model struct {
	table    table.Model
	workflow string
	branch   string
	progress string
	gate     []string
	next     string
	err      error
}

func initialModel() model {
	cwd, _ := os.Getwd()
	svc := application.NewPlanService(storage.NewFilesystemRepository(cwd), nil, cwd)

	state, err := svc.LoadState()
	if err != nil {
		return model{err: err}
	}
	plan := state.ExecutionPlan

	columns := []table.Column{
		{Title: "Status", Width: 12},
		{Title: "Phase", Width: 12},
		{Title: "Step", Width: 36},
		{Title: "ID", Width: 28},
	}

	rows := []table.Row{}
	for _, phase := range plan.Phases {
		for _, step := range phase.Steps {
			name := step.Name
			if !step.Required {
				name += " (optional)"
			}
			rows = append(rows, table.Row{step.Status.DisplayName(), phase.Name, name, step.ID})
		}
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(14),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240"))

	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229"))

	t.SetStyles(s)

	m := model{
		table:    t,
		workflow: string(plan.WorkflowType),
		branch:   plan.BranchName,
		progress: fmt.Sprintf("%d/%d steps", plan.CompletedStepCount(), plan.StepCount()),
	}

	if next := execution.NextStep(plan); next != nil {
		m.next = next.ID
		if gate, err := execution.EnforceStepCompletion(plan.WorkspacePath, plan, next.ID); err == nil {
			m.gate = gate.Issues
		}
	}
	return m
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}
	}
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m model) View() string {
	if m.err != nil {
		return fmt.Sprintf("Error loading dashboard: %v\nPress q to quit.", m.err)
	}

	header := headerStyle.Render(fmt.Sprintf("workbench · %s · %s", m.workflow, m.branch))

	gateView := statusDone.Render("\nGate: clear")
	if len(m.gate) > 0 {
		gateView = statusErr.Render("\nGate issues:\n")
		for _, issue := range m.gate {
			gateView += fmt.Sprintf("- %s\n", issue)
		}
	}

	footer := fmt.Sprintf("Progress: %s", m.progress)
	if m.next != "" {
		footer += fmt.Sprintf(" · next: %s", m.next)
	}

	return baseStyle.Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header,
			"\nExecution Plan:",
			m.table.View(),
			gateView,
			footer,
		),
	)
}
