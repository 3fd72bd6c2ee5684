package main

import (
	"fmt"

	"github.com/berfenger/lowcarbon-sensors/internal/core/domain"

	"github.com/carlmjohnson/versioninfo"
	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "sensorctl %s (%s)\n", versioninfo.Short(), versioninfo.Revision)
			return nil
		},
	}
}

func newListCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all sensors",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newController(flags)
			if err != nil {
				return err
			}
			c.LoadAll(cmd.Context())
			if err := checkError(c); err != nil {
				return err
			}
			printSensors(cmd.OutOrStdout(), c.Assets())
			return nil
		},
	}
}

func newGetCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one sensor",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newController(flags)
			if err != nil {
				return err
			}
			c.GetForm(cmd.Context(), args[0])
			if err := checkError(c); err != nil {
				return err
			}
			printForm(cmd.OutOrStdout(), c.Form().Value())
			return nil
		},
	}
}

func newAddCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a sensor",
		Args:  cobra.NoArgs,
	}
	fields := addFieldFlags(cmd)
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		values := fields.changed(cmd)
		if fields.interactive {
			var err error
			if values, err = runFieldForm(values); err != nil {
				return err
			}
		}
		if _, ok := values[domain.FIELD_SENSOR_ID]; !ok {
			return fmt.Errorf("required flag --%s not set", domain.FIELD_SENSOR_ID)
		}

		c, err := newController(flags)
		if err != nil {
			return err
		}
		c.PatchForm(values)
		c.AddAsset(cmd.Context())
		if err := checkError(c); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render(fmt.Sprintf("sensor %s created", values[domain.FIELD_SENSOR_ID])))
		printSensors(cmd.OutOrStdout(), c.Assets())
		return nil
	}
	return cmd
}

// newUpdateCmd loads the sensor into the form, applies the given fields and
// sends the result.
func newUpdateCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a sensor",
		Args:  cobra.ExactArgs(1),
	}
	fields := addFieldFlags(cmd, domain.FIELD_SENSOR_ID)
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		c, err := newController(flags)
		if err != nil {
			return err
		}
		c.GetForm(cmd.Context(), args[0])
		if err := checkError(c); err != nil {
			return err
		}

		values := fields.changed(cmd)
		if fields.interactive {
			current := c.Form().Value()
			for name, v := range values {
				current[name] = v
			}
			if values, err = runFieldForm(current, domain.FIELD_SENSOR_ID); err != nil {
				return err
			}
		}
		c.PatchForm(values)
		c.UpdateAsset(cmd.Context())
		if err := checkError(c); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render(fmt.Sprintf("sensor %s updated", args[0])))
		return nil
	}
	return cmd
}

func newDeleteCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a sensor",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newController(flags)
			if err != nil {
				return err
			}
			c.SetId(args[0])
			c.DeleteAsset(cmd.Context())
			if err := checkError(c); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render(fmt.Sprintf("sensor %s deleted", args[0])))
			return nil
		},
	}
}
