package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"svcman/internal/pkg/console"
	"svcman/internal/pkg/systemd"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all services once and exit",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		sorted, _ := cmd.Flags().GetBool("sort")
		format, _ := cmd.Flags().GetString("output")
		units := rt.svc.List(cmd.Context(), sorted)
		return printUnits(cmd.OutOrStdout(), "Services Status", units, format, "No services found.")
	},
}

var findCmd = &cobra.Command{
	Use:   "find <keyword>",
	Short: "Search service names and descriptions",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("output")
		matches, err := rt.svc.Search(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		title := fmt.Sprintf("Found %d matching services:", len(matches))
		return printUnits(cmd.OutOrStdout(), title, matches, format, fmt.Sprintf("No services found matching '%s'.", args[0]))
	},
}

func init() {
	listCmd.Flags().Bool("sort", false, "Show running services first")
	listCmd.Flags().StringP("output", "o", "table", "Output format: table, json or yaml")
	findCmd.Flags().StringP("output", "o", "table", "Output format: table, json or yaml")
}

// printUnits 按格式输出服务列表
func printUnits(w io.Writer, title string, units []systemd.Unit, format, empty string) error {
	if units == nil {
		units = []systemd.Unit{}
	}

	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(units)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(units); err != nil {
			return err
		}
		return enc.Close()
	case "table", "":
		con := console.New(nil, w)
		if len(units) == 0 {
			con.Warn("%s", empty)
			return nil
		}
		con.Println(con.UnitTable(title, units))
		return nil
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}
