// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stacklok/skillsmp/compare"
)

type diffOutput struct {
	Name       string              `json:"name"`
	Dir        string              `json:"dir"`
	RemoteName string              `json:"remote_name"`
	Exact      bool                `json:"exact_match"`
	HasChanges bool                `json:"has_changes"`
	Fields     []compare.FieldDiff `json:"fields"`
	SourceURL  string              `json:"source_url,omitempty"`
}

func (a *app) diffCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "diff <skill-name>",
		Short: "Compare an installed skill with its marketplace listing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := a.registryRoot()
			if err != nil {
				return err
			}
			client, err := a.client()
			if err != nil {
				return err
			}
			c, err := compare.Compare(cmd.Context(), client, root, args[0])
			if err != nil {
				return err
			}

			out := diffOutput{
				Name:       c.Local.Name,
				Dir:        c.Local.Dir,
				RemoteName: c.Remote.Name,
				Exact:      c.Exact,
				HasChanges: compare.HasChanges(c.Fields),
				Fields:     c.Fields,
				SourceURL:  c.Remote.SourceURL(),
			}
			if a.jsonOut {
				return writeJSON(cmd.OutOrStdout(), out)
			}

			w := cmd.OutOrStdout()
			_, _ = headerStyle.Fprintf(w, "%s\n", out.Name)
			_, _ = fmt.Fprintf(w, "  local:  %s\n", out.Dir)
			_, _ = fmt.Fprintf(w, "  remote: %s", out.RemoteName)
			if !out.Exact {
				_, _ = warningStyle.Fprint(w, " (closest match, names differ)")
			}
			_, _ = fmt.Fprintln(w)
			if out.SourceURL != "" {
				_, _ = mutedStyle.Fprintf(w, "          %s\n", out.SourceURL)
			}
			_, _ = fmt.Fprintln(w)

			for _, d := range c.Fields {
				if d.Informational {
					_, _ = mutedStyle.Fprintf(w, "  %s %s\n", pad(d.Field+":", 13), d.Remote)
					continue
				}
				_, _ = fmt.Fprintf(w, "  %s %s %s %s\n", pad(d.Field+":", 13), d.Local, arrow, d.Remote)
			}
			if !out.HasChanges {
				_, _ = successStyle.Fprintf(w, "%s No differences\n", checkmark)
			}
			return nil
		},
	}
}
