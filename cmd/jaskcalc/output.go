package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"gopkg.in/yaml.v3"

	"github.com/jask/jaskcalc/internal/service"
)

type outputFormat string

const (
	formatTable outputFormat = "table"
	formatYAML  outputFormat = "yaml"
	formatJSON  outputFormat = "json"
)

func parseFormat(s string) (outputFormat, error) {
	switch f := outputFormat(strings.ToLower(s)); f {
	case formatTable, formatYAML, formatJSON:
		return f, nil
	}
	return "", fmt.Errorf("unknown format %q (table, yaml or json)", s)
}

type fieldDoc struct {
	ID      string `yaml:"id" json:"id"`
	Value   string `yaml:"value" json:"value"`
	Unit    string `yaml:"unit,omitempty" json:"unit,omitempty"`
	Derived bool   `yaml:"derived,omitempty" json:"derived,omitempty"`
}

type snapshotDoc struct {
	Variant  string     `yaml:"variant" json:"variant"`
	Units    string     `yaml:"units" json:"units"`
	Speed    string     `yaml:"speed" json:"speed"`
	Lock     string     `yaml:"lock" json:"lock"`
	Selected int        `yaml:"selected,omitempty" json:"selected,omitempty"`
	Fields   []fieldDoc `yaml:"fields" json:"fields"`
}

func snapshot(calc *service.CalculatorService) snapshotDoc {
	m := calc.Modes()
	doc := snapshotDoc{
		Variant:  string(calc.FieldSet().Variant),
		Units:    unitsName(calc.Units()),
		Speed:    m.Speed.Name(),
		Lock:     m.Lock.Name(),
		Selected: calc.State().Selected,
	}
	for _, r := range calc.Snapshot() {
		doc.Fields = append(doc.Fields, fieldDoc{ID: string(r.ID), Value: r.Value, Unit: r.Unit, Derived: r.Derived})
	}
	return doc
}

var (
	headerStyle   = lipgloss.NewStyle().Bold(true)
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	derivedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
)

func render(w io.Writer, calc *service.CalculatorService, f outputFormat) error {
	switch f {
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(snapshot(calc)); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	case formatJSON:
		b, err := json.MarshalIndent(snapshot(calc), "", "  ")
		if err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		_, err = fmt.Fprintln(w, string(b))
		return err
	}
	return renderTable(w, calc, isTerminal(w))
}

// renderTable prints one field per line; styled only on a terminal.
func renderTable(w io.Writer, calc *service.CalculatorService, styled bool) error {
	style := func(s lipgloss.Style, text string) string {
		if !styled {
			return text
		}
		return s.Render(text)
	}
	var b strings.Builder
	m := calc.Modes()
	b.WriteString(style(headerStyle, fmt.Sprintf("%s  %s · lock %s · speed %s",
		calc.FieldSet().Variant, unitsName(calc.Units()), m.Lock.Name(), m.Speed.Name())))
	b.WriteByte('\n')
	for _, r := range calc.Snapshot() {
		idx := "  "
		if !r.Derived {
			idx = fmt.Sprintf("%2d", r.Index)
		}
		line := fmt.Sprintf("%s  %-3s %14s %s", idx, r.ID, r.Value, r.Unit)
		switch {
		case r.Selected:
			line = style(selectedStyle, line)
		case r.Derived:
			line = style(derivedStyle, line)
		}
		b.WriteString(strings.TrimRight(line, " "))
		b.WriteByte('\n')
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}
