package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/opencode-ai/shellshim/internal/safecmd"
)

var templatesDir string

func init() {
	rootCmd.AddCommand(templatesCmd)
	templatesCmd.AddCommand(templatesListCmd)
	templatesCmd.AddCommand(templatesShowCmd)

	templatesCmd.PersistentFlags().StringVar(&templatesDir, "dir", "", "definitions directory (default from config template_dir)")
}

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "Inspect command template definitions",
}

var templatesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List template definitions",
	RunE: func(cmd *cobra.Command, args []string) error {
		defs, err := loadDefinitions()
		if err != nil {
			return err
		}

		if IsJSONOutput() {
			return WriteOutput(os.Stdout, defs)
		}

		rows := make([][]string, 0, len(defs))
		for _, def := range defs {
			tmpl, parseErr := safecmd.Parse(def.Command)
			placeholders := "-"
			if parseErr == nil {
				placeholders = strconv.Itoa(len(tmpl.Placeholders()))
			}
			rows = append(rows, []string{def.Name, placeholders, def.Description})
		}
		return writeTable(os.Stdout, []string{"NAME", "PLACEHOLDERS", "DESCRIPTION"}, rows)
	},
}

var templatesShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show one template definition with its validator policy",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		defs, err := loadDefinitions()
		if err != nil {
			return err
		}

		for _, def := range defs {
			if def.Name != args[0] {
				continue
			}
			if IsJSONOutput() {
				return WriteOutput(os.Stdout, def)
			}
			printDefinition(def)
			return nil
		}

		return fmt.Errorf("template %q not found", args[0])
	},
}

func loadDefinitions() ([]*safecmd.Definition, error) {
	dir := templatesDir
	if dir == "" {
		dir = GetConfig().TemplateDir
	}
	if dir == "" {
		return nil, fmt.Errorf("no definitions directory: pass --dir or set template_dir")
	}
	return safecmd.LoadDefinitionsFromDir(dir)
}

func printDefinition(def *safecmd.Definition) {
	fmt.Printf("Name:        %s\n", def.Name)
	if def.Description != "" {
		fmt.Printf("Description: %s\n", def.Description)
	}
	fmt.Printf("Command:     %s\n", def.Command)
	fmt.Printf("Source:      %s\n", def.Source)

	if len(def.Placeholders) == 0 {
		return
	}
	fmt.Println("Placeholders:")
	for _, ph := range def.Placeholders {
		policy := "default allow-list"
		switch {
		case ph.Pattern != "":
			policy = "pattern " + ph.Pattern
		case len(ph.Choices) > 0:
			policy = "one of: " + strings.Join(ph.Choices, ", ")
		}
		fmt.Printf("  %-12s %s\n", ph.Name, policy)
	}
}
