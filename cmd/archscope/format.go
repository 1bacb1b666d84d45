package main

import (
	"encoding/json"
	"fmt"
	"strings"
)

// OutputFormat represents the output format type
type OutputFormat string

const (
	FormatJSON  OutputFormat = "json"
	FormatHuman OutputFormat = "human"
)

// FormatResponse formats a response according to the specified format
func FormatResponse(resp interface{}, format OutputFormat) (string, error) {
	switch format {
	case FormatJSON:
		return formatJSON(resp)
	case FormatHuman:
		return formatHuman(resp)
	default:
		return "", fmt.Errorf("unsupported format: %s", format)
	}
}

func formatJSON(resp interface{}) (string, error) {
	data, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return string(data), nil
}

func formatHuman(resp interface{}) (string, error) {
	switch v := resp.(type) {
	case *ArchitectureResponse:
		return formatArchitectureHuman(v)
	case *DiffResponse:
		return formatDiffHuman(v)
	case *DiagramResponse:
		return formatDiagramHuman(v)
	case *HistoryResponse:
		return formatHistoryHuman(v)
	default:
		// Unknown types fall back to JSON.
		return formatJSON(resp)
	}
}

func formatArchitectureHuman(resp *ArchitectureResponse) (string, error) {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Crate:    %s\n", resp.CrateName))
	b.WriteString(fmt.Sprintf("Root:     %s\n", resp.Root))
	b.WriteString(fmt.Sprintf("Snapshot: %s\n", resp.SnapshotDir))
	b.WriteString(fmt.Sprintf("Files:    %d scanned\n", resp.FilesScanned))
	b.WriteString(fmt.Sprintf("Types:    %d registered\n", resp.TypesFound))

	if len(resp.Skipped) > 0 {
		b.WriteString("\nSkipped files:\n")
		for _, s := range resp.Skipped {
			b.WriteString(fmt.Sprintf("  ! %s: %s\n", s.Path, s.Reason))
		}
	}
	if len(resp.Duplicates) > 0 {
		b.WriteString("\nDuplicate qualified names (excluded from resolution):\n")
		for _, d := range resp.Duplicates {
			b.WriteString(fmt.Sprintf("  ! %s\n", d))
		}
	}
	return b.String(), nil
}

func formatDiffHuman(resp *DiffResponse) (string, error) {
	var b strings.Builder
	if resp.Result.Empty() {
		b.WriteString("No structural changes.\n")
		return b.String(), nil
	}

	for _, q := range resp.Result.Added {
		b.WriteString(fmt.Sprintf("+ %s\n", q))
	}
	for _, q := range resp.Result.Removed {
		b.WriteString(fmt.Sprintf("- %s\n", q))
	}
	for _, m := range resp.Result.Modified {
		b.WriteString(fmt.Sprintf("~ %s\n", m.Qualified))
		if m.KindChanged {
			b.WriteString("    kind changed\n")
		}
		if m.FieldsChanged {
			b.WriteString("    fields changed\n")
		}
		for _, tr := range m.TraitsAdded {
			b.WriteString(fmt.Sprintf("    +impl %s\n", tr))
		}
		for _, tr := range m.TraitsRemoved {
			b.WriteString(fmt.Sprintf("    -impl %s\n", tr))
		}
		for _, name := range m.Methods.Added {
			b.WriteString(fmt.Sprintf("    +fn %s\n", name))
		}
		for _, name := range m.Methods.Removed {
			b.WriteString(fmt.Sprintf("    -fn %s\n", name))
		}
		for _, name := range m.Methods.Changed {
			b.WriteString(fmt.Sprintf("    ~fn %s\n", name))
		}
	}

	b.WriteString(fmt.Sprintf("\n%d added, %d removed, %d modified\n",
		len(resp.Result.Added), len(resp.Result.Removed), len(resp.Result.Modified)))
	return b.String(), nil
}

func formatDiagramHuman(resp *DiagramResponse) (string, error) {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Mode:   %s\n", resp.Mode))
	b.WriteString(fmt.Sprintf("Markup: %s\n", resp.MarkupPath))
	if resp.ImagePath != "" {
		b.WriteString(fmt.Sprintf("Image:  %s\n", resp.ImagePath))
	}
	b.WriteString(fmt.Sprintf("Nodes:  %d\nEdges:  %d\n", resp.Nodes, resp.Edges))
	return b.String(), nil
}

func formatHistoryHuman(resp *HistoryResponse) (string, error) {
	var b strings.Builder
	if len(resp.Runs) == 0 {
		b.WriteString("No recorded runs.\n")
		return b.String(), nil
	}
	for _, run := range resp.Runs {
		b.WriteString(fmt.Sprintf("%s  %-14s %4d files %4d types %6dms  %s\n",
			run.StartedAt.Format("2006-01-02 15:04:05"),
			run.Command, run.FilesScanned, run.TypesFound, run.DurationMS, run.Root))
	}
	return b.String(), nil
}
