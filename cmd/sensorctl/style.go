package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/berfenger/lowcarbon-sensors/internal/core/domain"

	"github.com/charmbracelet/lipgloss"
)

var (
	headerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	cellStyle    = lipgloss.NewStyle().PaddingRight(2)
)

func printSensors(w io.Writer, sensors []domain.Sensor) {
	if len(sensors) == 0 {
		fmt.Fprintln(w, labelStyle.Render("no sensors"))
		return
	}

	widths := make([]int, len(domain.SensorFields))
	for i, name := range domain.SensorFields {
		widths[i] = lipgloss.Width(name)
		for _, s := range sensors {
			v, _ := s.Field(name)
			widths[i] = max(widths[i], lipgloss.Width(v))
		}
	}

	header := make([]string, len(domain.SensorFields))
	for i, name := range domain.SensorFields {
		header[i] = cellStyle.Width(widths[i] + 2).Render(name)
	}
	fmt.Fprintln(w, headerStyle.Render(strings.TrimRight(lipgloss.JoinHorizontal(lipgloss.Top, header...), " ")))

	for _, s := range sensors {
		row := make([]string, len(domain.SensorFields))
		for i, name := range domain.SensorFields {
			v, _ := s.Field(name)
			row[i] = cellStyle.Width(widths[i] + 2).Render(v)
		}
		fmt.Fprintln(w, strings.TrimRight(lipgloss.JoinHorizontal(lipgloss.Top, row...), " "))
	}
}

func printForm(w io.Writer, form map[string]any) {
	for _, name := range domain.SensorFields {
		value := ""
		switch v := form[name].(type) {
		case string:
			value = v
		case []string:
			value = strings.Join(v, ",")
		}
		fmt.Fprintf(w, "%s %s\n", labelStyle.Render(name+":"), value)
	}
}
