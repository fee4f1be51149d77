package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fxlab/paramcheck/internal/catalog"
)

// InstanceInfo is one catalog entry for display.
type InstanceInfo struct {
	Name        string `json:"name"`
	Implementor string `json:"implementor"`
	UUID        string `json:"uuid"`
	MaxLevelDB  int    `json:"max_level_db"`
	TestName    string `json:"test_name"`
}

// ListResult holds the list command output.
type ListResult struct {
	Band      string         `json:"band"`
	Instances []InstanceInfo `json:"instances"`
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list <catalog.cue>",
		Short: "Enumerate the instances in a catalog",
		Long: `List every effect instance a catalog declares, with its
implementor, UUID, reported capability, and sanitized test name.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runList(opts *RootOptions, catalogPath string, cmd *cobra.Command) error {
	cat, err := catalog.Load(catalogPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load catalog", err)
	}

	result := ListResult{Band: cat.Band.String()}
	for _, inst := range cat.Instances {
		result.Instances = append(result.Instances, InstanceInfo{
			Name:        inst.Descriptor.Name,
			Implementor: inst.Descriptor.Implementor,
			UUID:        inst.Descriptor.UUID.String(),
			MaxLevelDB:  inst.Capability.MaxLevelDB,
			TestName:    inst.Descriptor.TestName(),
		})
	}

	if opts.Format == "json" {
		return writeJSON(cmd.OutOrStdout(), CLIResponse{Status: "ok", Data: result})
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Band: %s\n", result.Band)
	for _, inst := range result.Instances {
		fmt.Fprintf(w, "%s\n", inst.Name)
		fmt.Fprintf(w, "  implementor: %s\n", inst.Implementor)
		fmt.Fprintf(w, "  uuid:        %s\n", inst.UUID)
		fmt.Fprintf(w, "  capability:  max %d dB\n", inst.MaxLevelDB)
	}
	return nil
}
