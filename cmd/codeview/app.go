package main

import (
	"fmt"
	"os"
	"path/filepath"

	tea "charm.land/bubbletea/v2"
	"github.com/rs/zerolog/log"

	"github.com/xonecas/codeview/pkg/codeview"
)

// app is the full-screen program around one editor host.
type app struct {
	host  *codeview.Model
	props codeview.Props
	// paths holds the original and modified files; single view uses paths[1].
	paths [2]string
	patch string
}

func newApp(opts codeview.Options, props codeview.Props, paths [2]string) *app {
	a := &app{host: codeview.New(opts), props: props, paths: paths}
	a.props.OnChange = func(v string) { a.props.Value = v }
	a.props.OnOriginalValueChange = func(v string) { a.props.OriginalValue = v }
	a.props.OnModifiedValueChange = func(v string) { a.props.ModifiedValue = v }
	a.host.SetProps(a.props)
	return a
}

func run(a *app) error {
	p := tea.NewProgram(a, tea.WithFilter(codeview.MouseEventFilter))
	_, err := p.Run()
	a.host.Close()
	if err != nil {
		return fmt.Errorf("run: %w", err)
	}
	if a.patch != "" {
		fmt.Print(a.patch)
	}
	return nil
}

func (a *app) Init() tea.Cmd { return a.host.Init() }

func (a *app) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.host.SetSize(msg.Width, msg.Height)
		return a, nil
	case tea.KeyPressMsg:
		switch msg.Keystroke() {
		case "ctrl+c", "ctrl+q":
			return a, tea.Quit
		case "ctrl+s":
			if err := a.save(); err != nil {
				log.Warn().Err(err).Msg("save failed")
				a.host.Notify("save failed: " + err.Error())
			} else {
				a.host.Notify("saved")
			}
			return a, nil
		case "ctrl+p":
			if a.host.DiffMode() {
				a.patch = a.host.UnifiedPatch(filepath.Base(a.paths[1]))
				return a, tea.Quit
			}
		}
	}
	return a, a.host.Update(msg)
}

func (a *app) View() tea.View {
	v := tea.NewView(a.host.View())
	v.AltScreen = true
	v.MouseMode = tea.MouseModeAllMotion
	return v
}

// save writes every edited document back to its file.
func (a *app) save() error {
	if a.props.ReadOnly {
		return fmt.Errorf("read-only")
	}
	var writes [][2]string
	switch {
	case a.host.DiffMode():
		if a.props.DiffView && !a.props.OriginalReadOnly {
			writes = append(writes, [2]string{a.paths[0], a.host.OriginalValue()})
		}
		writes = append(writes, [2]string{a.paths[1], a.host.ModifiedValue()})
	case a.props.DiffView:
		// The single view of a diff run holds no document.
		return fmt.Errorf("switch back to the diff view to save")
	default:
		writes = append(writes, [2]string{a.paths[1], a.host.Value()})
	}
	for _, w := range writes {
		if w[0] == "" {
			return fmt.Errorf("no file to save to")
		}
		if err := os.WriteFile(w[0], []byte(w[1]), 0644); err != nil {
			return fmt.Errorf("write %s: %w", w[0], err)
		}
		log.Info().Str("path", w[0]).Int("bytes", len(w[1])).Msg("saved")
	}
	return nil
}
