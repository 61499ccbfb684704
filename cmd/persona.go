package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/abhisek/studyhall/internal/store"
)

var personaCmd = &cobra.Command{
	Use:     "persona",
	Aliases: []string{"personas"},
	Short:   "Manage encouragement personas",
}

var personaListCmd = &cobra.Command{
	Use:   "list",
	Short: "List personas",
	RunE: withDeps(func(cmd *cobra.Command, args []string, d *deps) error {
		ctx := cmd.Context()
		all, err := d.enc.Personas(ctx)
		if err != nil {
			return err
		}
		active, err := d.enc.ActivePersona(ctx)
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "\tID\tNAME\tKIND\tTONE")
		for _, p := range all {
			mark := ""
			if p.ID == active.ID {
				mark = "*"
			}
			fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\n", mark, p.ID, p.Name, p.Kind, p.ToneStyle)
		}
		return w.Flush()
	}),
}

var personaAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a custom persona",
	Args:  cobra.MinimumNArgs(1),
	RunE: withDeps(func(cmd *cobra.Command, args []string, d *deps) error {
		prompt, _ := cmd.Flags().GetString("prompt")
		tone, _ := cmd.Flags().GetString("tone")
		desc, _ := cmd.Flags().GetString("description")
		color, _ := cmd.Flags().GetString("color")
		p, err := d.enc.AddPersona(cmd.Context(), store.Persona{
			Name:         strings.Join(args, " "),
			Description:  desc,
			SystemPrompt: prompt,
			ToneStyle:    tone,
			Color:        color,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Added persona %s (#%d)\n", p.Name, p.ID)
		return nil
	}),
}

var personaPromptCmd = &cobra.Command{
	Use:   "prompt <id> <system prompt>",
	Short: "Replace a persona's system prompt",
	Args:  cobra.MinimumNArgs(2),
	RunE: withDeps(func(cmd *cobra.Command, args []string, d *deps) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		if err := d.enc.UpdatePersonaPrompt(cmd.Context(), id, strings.Join(args[1:], " ")); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Prompt updated.")
		return nil
	}),
}

var personaUseCmd = &cobra.Command{
	Use:   "use <id>",
	Short: "Make a persona the active one",
	Args:  cobra.ExactArgs(1),
	RunE: withDeps(func(cmd *cobra.Command, args []string, d *deps) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		if err := d.enc.SetActivePersona(cmd.Context(), id); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Active persona set.")
		return nil
	}),
}

var personaDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a persona",
	Args:  cobra.ExactArgs(1),
	RunE: withDeps(func(cmd *cobra.Command, args []string, d *deps) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		if err := d.enc.DeletePersona(cmd.Context(), id); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Persona deleted.")
		return nil
	}),
}

func init() {
	personaAddCmd.Flags().String("prompt", "", "System prompt (required)")
	personaAddCmd.Flags().String("tone", "", "Tone style, e.g. \"warm and playful\"")
	personaAddCmd.Flags().String("description", "", "Short description")
	personaAddCmd.Flags().String("color", "", "Hex color")
	personaAddCmd.MarkFlagRequired("prompt")

	personaCmd.AddCommand(personaListCmd, personaAddCmd, personaPromptCmd, personaUseCmd, personaDeleteCmd)
}
