package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/sketchport/pkg/scene"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// SceneListModel - Interactive scene file selection
// =============================================================================

// sceneCandidate is one JSON file offered by the picker.
type sceneCandidate struct {
	Path     string
	Elements int  // element count, -1 if the file failed to parse
	Valid    bool // whether the file decoded as a diagram document
}

// SceneListModel is the bubbletea model for interactive scene selection.
type SceneListModel struct {
	Scenes   []sceneCandidate
	Cursor   int
	Selected *sceneCandidate
}

// NewSceneListModel creates a new scene list model.
func NewSceneListModel(scenes []sceneCandidate) SceneListModel {
	return SceneListModel{Scenes: scenes}
}

func (m SceneListModel) Init() tea.Cmd {
	return nil
}

func (m SceneListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
			}
		case "down", "j":
			if m.Cursor < len(m.Scenes)-1 {
				m.Cursor++
			}
		case "enter":
			if !m.Scenes[m.Cursor].Valid {
				return m, nil
			}
			m.Selected = &m.Scenes[m.Cursor]
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m SceneListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Scene"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("arrows: navigate  enter: select  q: quit"))
	b.WriteString("\n\n")

	for i, sc := range m.Scenes {
		cursor := "  "
		if i == m.Cursor {
			cursor = "> "
		}

		var status, detail string
		if sc.Valid {
			status = StyleSuccess.Render("*")
			detail = fmt.Sprintf("%d elements", sc.Elements)
		} else {
			status = StyleWarning.Render("!")
			detail = "not a diagram document"
		}

		line := fmt.Sprintf("%s%s %-30s  %s", cursor, status, sc.Path, listDimStyle.Render(detail))

		if i == m.Cursor {
			b.WriteString(listSelectedStyle.Render(line))
		} else if !sc.Valid {
			b.WriteString(listDimStyle.Render(line))
		} else {
			b.WriteString(listNormalStyle.Render(line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(strings.Repeat("-", 40)))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  %s renderable   %s not renderable\n",
		StyleSuccess.Render("*"), StyleWarning.Render("!")))

	return b.String()
}

// =============================================================================
// Picker Entry Point
// =============================================================================

// pickSceneFile scans dir for JSON files and lets the user choose one
// interactively. It returns "" with a nil error when the picker is
// dismissed without a selection.
func pickSceneFile(dir string) (string, error) {
	scenes, err := scanScenes(dir)
	if err != nil {
		return "", err
	}
	if len(scenes) == 0 {
		return "", fmt.Errorf("no JSON files in %s (pass a scene file as argument)", dir)
	}

	m := NewSceneListModel(scenes)
	p := tea.NewProgram(m)
	finalModel, err := p.Run()
	if err != nil {
		return "", err
	}

	fm, ok := finalModel.(SceneListModel)
	if !ok || fm.Selected == nil {
		return "", nil
	}
	return fm.Selected.Path, nil
}

// scanScenes lists the JSON files in dir and probes each one for a
// decodable elements array. Probing failures mark the entry instead of
// dropping it, so the picker shows why a file is not selectable.
func scanScenes(dir string) ([]sceneCandidate, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", dir, err)
	}

	var scenes []sceneCandidate
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".json") {
			continue
		}
		name := entry.Name()
		if dir != "." {
			name = filepath.Join(dir, name)
		}

		candidate := sceneCandidate{Path: name, Elements: -1}
		if doc, err := scene.ImportDocument(name); err == nil {
			candidate.Valid = true
			candidate.Elements = doc.Count()
		}
		scenes = append(scenes, candidate)
	}

	sort.Slice(scenes, func(i, j int) bool { return scenes[i].Path < scenes[j].Path })
	return scenes, nil
}
