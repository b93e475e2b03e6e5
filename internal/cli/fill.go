package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/opencode-ai/shellshim/internal/safecmd"
)

var (
	fillTemplate string
	fillDefs     string
	fillSets     []string
	fillAsArgs   bool
	fillStrict   bool
)

func init() {
	rootCmd.AddCommand(fillCmd)
	rootCmd.AddCommand(checkCmd)

	for _, cmd := range []*cobra.Command{fillCmd, checkCmd} {
		cmd.Flags().StringVarP(&fillTemplate, "template", "t", "", "command template with {name} placeholders")
		cmd.Flags().StringVar(&fillDefs, "defs", "", "YAML definition file instead of --template")
		cmd.Flags().StringArrayVarP(&fillSets, "set", "s", nil, "placeholder binding name=value (repeatable)")
		cmd.Flags().BoolVar(&fillStrict, "strict", false, "reject bindings the template never references")
	}
	fillCmd.Flags().BoolVar(&fillAsArgs, "args", false, "print the argv form, one element per line")
}

var fillCmd = &cobra.Command{
	Use:   "fill",
	Short: "Validate bindings and print the filled command line",
	Example: `  shellshim fill -t 'grep {pattern} {file}' -s pattern=root -s file=passwd

  # From a definition file with per-placeholder validators
  shellshim fill --defs grep.yaml -s switch=-i -s pattern=x -s file=y`,
	RunE: func(cmd *cobra.Command, args []string) error {
		tmpl, registry, err := resolveTemplate()
		if err != nil {
			return err
		}
		bindings, err := parseBindings(fillSets)
		if err != nil {
			return err
		}

		if fillAsArgs {
			argv, err := registry.FillArgs(tmpl, bindings)
			if err != nil {
				return err
			}
			if IsJSONOutput() {
				return WriteOutput(os.Stdout, map[string]any{"args": argv})
			}
			for _, arg := range argv {
				fmt.Println(arg)
			}
			return nil
		}

		filled, err := registry.Fill(tmpl, bindings)
		if err != nil {
			return err
		}
		if IsJSONOutput() {
			return WriteOutput(os.Stdout, map[string]any{"command": filled})
		}
		fmt.Println(filled)
		return nil
	},
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate bindings against a template without printing the command",
	RunE: func(cmd *cobra.Command, args []string) error {
		tmpl, registry, err := resolveTemplate()
		if err != nil {
			return err
		}
		bindings, err := parseBindings(fillSets)
		if err != nil {
			return err
		}

		if _, err := registry.FillArgs(tmpl, bindings); err != nil {
			return err
		}

		if IsJSONOutput() {
			return WriteOutput(os.Stdout, map[string]any{"valid": true})
		}
		fmt.Println("ok")
		return nil
	},
}

func resolveTemplate() (*safecmd.Template, *safecmd.Registry, error) {
	opts := registryOptions()

	if fillDefs != "" {
		if fillTemplate != "" {
			return nil, nil, fmt.Errorf("--template and --defs are mutually exclusive")
		}
		def, err := safecmd.LoadDefinition(fillDefs)
		if err != nil {
			return nil, nil, err
		}
		return def.Build(opts...)
	}

	if fillTemplate == "" {
		return nil, nil, fmt.Errorf("either --template or --defs is required")
	}

	tmpl, err := safecmd.Parse(fillTemplate)
	if err != nil {
		return nil, nil, err
	}
	return tmpl, safecmd.NewRegistry(opts...), nil
}

func registryOptions() []safecmd.Option {
	strict := fillStrict || GetConfig().StrictBindings
	if !strict {
		return nil
	}
	return []safecmd.Option{safecmd.WithStrict(true)}
}

func parseBindings(pairs []string) (map[string]string, error) {
	bindings := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid binding %q, expected name=value", pair)
		}
		bindings[name] = value
	}
	return bindings, nil
}
