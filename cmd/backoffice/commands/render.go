package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"
	"go.trai.ch/backoffice/internal/core/domain"
	"go.trai.ch/backoffice/internal/engine/listview"
	"go.trai.ch/backoffice/internal/ui/output"
	"go.trai.ch/backoffice/internal/ui/style"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// ErrUsage is returned when flags or arguments cannot be interpreted.
var ErrUsage = zerr.New("invalid usage")

const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

// Item fields shown in text listings, in order of preference.
var (
	idFields    = []string{"id", "key"}
	labelFields = []string{"name", "email", "value", "action"}
)

// printer writes command results in the selected output format.
type printer struct {
	out    io.Writer
	format string

	heading lipgloss.Style
	label   lipgloss.Style
	success lipgloss.Style
	failure lipgloss.Style
	pending lipgloss.Style
}

func newPrinter(cmd *cobra.Command) (*printer, error) {
	format, _ := cmd.Flags().GetString("output")
	switch format {
	case formatText, formatJSON, formatYAML:
	default:
		return nil, zerr.With(zerr.Wrap(ErrUsage, "unknown output format"), "format", format)
	}

	out := cmd.OutOrStdout()
	r := lipgloss.NewRenderer(out)
	r.SetColorProfile(output.ColorProfile())
	return &printer{
		out:     out,
		format:  format,
		heading: style.Heading.Renderer(r),
		label:   style.Label.Renderer(r),
		success: style.Success.Renderer(r),
		failure: style.Failure.Renderer(r),
		pending: style.Pending.Renderer(r),
	}, nil
}

// value writes v as JSON or YAML. Text output is YAML.
func (p *printer) value(v any) error {
	if p.format == formatJSON {
		enc := json.NewEncoder(p.out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	enc := yaml.NewEncoder(p.out)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

// list writes one page of a resource. Text output is one line per item.
func (p *printer) list(name string, v any) error {
	if p.format != formatText {
		return p.value(v)
	}

	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	doc := gjson.ParseBytes(raw)
	meta := doc.Get("pagination")
	p.line(p.heading.Render(name) + p.label.Render(fmt.Sprintf("  page %d/%d, %d total",
		meta.Get("page").Int(), max(meta.Get("totalPages").Int(), 1), meta.Get("total").Int())))

	items := doc.Get("items").Array()
	if len(items) == 0 {
		p.line(p.label.Render("  no results"))
		return nil
	}
	for _, item := range items {
		p.line("  " + firstOf(item, idFields) + "  " + p.label.Render(firstOf(item, labelFields)))
	}
	return nil
}

// snapshot writes one state of a watched list.
func (p *printer) snapshot(name string, snap listview.Snapshot) error {
	if p.format != formatText {
		view := struct {
			Page   int    `json:"page"            yaml:"page"`
			Status string `json:"status"          yaml:"status"`
			Stale  bool   `json:"stale"           yaml:"stale"`
			Error  string `json:"error,omitempty" yaml:"error,omitempty"`
			Data   any    `json:"data,omitempty"  yaml:"data,omitempty"`
		}{
			Page:   snap.State.Page,
			Status: snap.Entry.Status.String(),
			Stale:  snap.Entry.Stale,
			Data:   snap.Entry.Data,
		}
		if snap.Entry.Err != nil {
			view.Error = snap.Entry.Err.Error()
		}
		return p.value(view)
	}

	switch snap.Entry.Status {
	case domain.StatusSuccess:
		return p.list(name, snap.Entry.Data)
	case domain.StatusError:
		p.line(p.failure.Render(style.Cross+" "+name) + " " + snap.Entry.Err.Error())
	default:
		p.line(p.pending.Render(style.Circle+" "+name) + p.label.Render(fmt.Sprintf(" loading page %d", snap.State.Page)))
	}
	return nil
}

// done confirms a write that returns no entity.
func (p *printer) done(action, name, id string) error {
	if p.format != formatText {
		return p.value(map[string]any{"resource": name, "id": id, action: true})
	}
	p.line(p.success.Render(style.Check) + " " + action + " " + name + " " + id)
	return nil
}

func (p *printer) line(s string) {
	_, _ = fmt.Fprintln(p.out, s)
}

func firstOf(item gjson.Result, fields []string) string {
	for _, f := range fields {
		if v := item.Get(f); v.Exists() && strings.TrimSpace(v.String()) != "" {
			return v.String()
		}
	}
	return "-"
}
