package commands

import (
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.trai.ch/backoffice/internal/app"
	"go.trai.ch/backoffice/internal/core/domain"
	"go.trai.ch/zerr"
)

func (c *CLI) newResourceCmd(name string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   name,
		Short: "List, read and change " + name,
	}
	cmd.AddCommand(
		c.newListCmd(name),
		c.newGetCmd(name),
		c.newCreateCmd(name),
		c.newUpdateCmd(name),
		c.newDeleteCmd(name),
	)
	return cmd
}

func (c *CLI) newListCmd(name string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List one page of " + name,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			state, err := pageState(cmd)
			if err != nil {
				return err
			}
			return c.withSession(cmd, func(s *app.Session, p *printer) error {
				r, err := s.Resource(name)
				if err != nil {
					return err
				}
				page, err := r.List(cmd.Context(), state)
				if err != nil {
					return err
				}
				return p.list(name, page)
			})
		},
	}
	addPageFlags(cmd)
	return cmd
}

func (c *CLI) newGetCmd(name string) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one of " + name,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withSession(cmd, func(s *app.Session, p *printer) error {
				r, err := s.Resource(name)
				if err != nil {
					return err
				}
				v, err := r.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return p.value(v)
			})
		},
	}
}

func (c *CLI) newCreateCmd(name string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create one of " + name + " from a JSON payload",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			payload, err := readPayload(cmd)
			if err != nil {
				return err
			}
			return c.withSession(cmd, func(s *app.Session, p *printer) error {
				r, err := s.Resource(name)
				if err != nil {
					return err
				}
				v, err := r.Create(cmd.Context(), payload)
				if err != nil {
					return err
				}
				return p.value(v)
			})
		},
	}
	addPayloadFlags(cmd)
	return cmd
}

func (c *CLI) newUpdateCmd(name string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change fields of one of " + name + " from a JSON payload",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := readPayload(cmd)
			if err != nil {
				return err
			}
			return c.withSession(cmd, func(s *app.Session, p *printer) error {
				r, err := s.Resource(name)
				if err != nil {
					return err
				}
				v, err := r.Update(cmd.Context(), args[0], payload)
				if err != nil {
					return err
				}
				return p.value(v)
			})
		},
	}
	addPayloadFlags(cmd)
	return cmd
}

func (c *CLI) newDeleteCmd(name string) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete one of " + name,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withSession(cmd, func(s *app.Session, p *printer) error {
				r, err := s.Resource(name)
				if err != nil {
					return err
				}
				if err := r.Delete(cmd.Context(), args[0]); err != nil {
					return err
				}
				return p.done("deleted", name, args[0])
			})
		},
	}
}

func addPageFlags(cmd *cobra.Command) {
	cmd.Flags().Int("page", 1, "Page number, starting at 1")
	cmd.Flags().Int("limit", 0, "Page size (default: the resource's page size)")
	cmd.Flags().String("search", "", "Free-text search")
	cmd.Flags().StringArray("filter", nil, "Filter as field=value, repeatable")
}

// pageState reads the page flags. Filters are checked when the page is requested.
func pageState(cmd *cobra.Command) (domain.PageState, error) {
	flags := cmd.Flags()
	page, _ := flags.GetInt("page")
	limit, _ := flags.GetInt("limit")
	search, _ := flags.GetString("search")
	raw, _ := flags.GetStringArray("filter")

	state := domain.PageState{Page: page, PageSize: limit}
	for _, f := range raw {
		field, value, ok := strings.Cut(f, "=")
		if !ok || strings.TrimSpace(field) == "" {
			return domain.PageState{}, zerr.With(zerr.Wrap(domain.ErrInvalidFilter, "expected field=value"), "filter", f)
		}
		state = state.WithFilter(strings.TrimSpace(field), value)
	}
	if search != "" {
		state = state.WithFilter("search", search)
	}
	state.Page = page
	if err := state.ValidateFilters(); err != nil {
		return domain.PageState{}, err
	}
	return state.Normalize(), nil
}

func addPayloadFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("data", "d", "", "JSON payload")
	cmd.Flags().StringP("file", "f", "", "Read the JSON payload from a file, - for stdin")
	cmd.MarkFlagsMutuallyExclusive("data", "file")
	cmd.MarkFlagsOneRequired("data", "file")
}

func readPayload(cmd *cobra.Command) ([]byte, error) {
	data, _ := cmd.Flags().GetString("data")
	if data != "" {
		return []byte(data), nil
	}

	path, _ := cmd.Flags().GetString("file")
	if path == "-" {
		payload, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, zerr.Wrap(err, "failed to read payload from stdin")
		}
		return payload, nil
	}
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to read payload"), "path", path)
	}
	return payload, nil
}
