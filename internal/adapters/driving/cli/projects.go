package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var projectsJSON bool

var projectsCmd = &cobra.Command{
	Use:   "projects",
	Short: "List projects",
	Long:  `Lists the projects found in the projects directory.`,
	Args:  cobra.NoArgs,
	RunE:  runProjects,
}

var projectsConfigCmd = &cobra.Command{
	Use:   "config [project-id]",
	Short: "Show the resolved configuration of a project",
	Args:  cobra.ExactArgs(1),
	RunE:  runProjectsConfig,
}

func init() {
	projectsCmd.Flags().BoolVar(&projectsJSON, "json", false, "output as JSON")
	projectsCmd.AddCommand(projectsConfigCmd)
	rootCmd.AddCommand(projectsCmd)
}

func runProjects(cmd *cobra.Command, _ []string) error {
	if projectService == nil {
		return errNotConfigured("project")
	}

	ids, err := projectService.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list projects: %w", err)
	}

	if projectsJSON {
		return printJSON(cmd, ids)
	}
	if len(ids) == 0 {
		cmd.Println("No projects found.")
		return nil
	}
	for _, id := range ids {
		fmt.Fprintln(cmd.OutOrStdout(), id)
	}
	return nil
}

func runProjectsConfig(cmd *cobra.Command, args []string) error {
	if projectService == nil {
		return errNotConfigured("project")
	}

	cfg, err := projectService.Config(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	return printJSON(cmd, cfg)
}
