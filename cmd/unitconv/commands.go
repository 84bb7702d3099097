package main

import (
	"fmt"

	"github.com/JonMunkholm/unitconv/internal/application"
	"github.com/JonMunkholm/unitconv/internal/core"
	"github.com/spf13/cobra"
)

func newCategoriesCommand(opts *rootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List measurement categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.json {
				return opts.printJSON(cmd, opts.service.DescribeAll())
			}
			for _, name := range opts.service.Categories() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}

func newUnitsCommand(opts *rootOpts) *cobra.Command {
	return &cobra.Command{
		Use:     "units <category>",
		Short:   "List the units of a category",
		Example: `  unitconv units Length
  unitconv units "Data Storage"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			info, err := opts.service.Describe(args[0])
			if err != nil {
				return err
			}
			if opts.json {
				return opts.printJSON(cmd, info)
			}
			for _, name := range info.Units {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}

type convertOpts struct {
	category string
}

func newConvertCommand(opts *rootOpts) *cobra.Command {
	c := convertOpts{}

	cmd := &cobra.Command{
		Use:   "convert <value> <from> <to>",
		Short: "Convert a value between two units of one category",
		Long: `Convert a value between two units of one category.

The value accepts thousands separators, accounting negatives such as (12.5)
and exponents. Put "--" before a negative value so it is not read as a flag.
Unit names with spaces must be quoted.`,
		Example: `  unitconv convert 100 Celsius Fahrenheit -c Temperature
  unitconv convert 1,250 meters "nautical miles" -c Length
  unitconv convert -c Temperature -- -40 Celsius Fahrenheit`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := opts.service.Convert(cmd.Context(), core.Request{
				Category: c.category,
				From:     args[1],
				To:       args[2],
				Input:    args[0],
			})
			if err != nil {
				return err
			}
			if opts.json {
				return opts.printJSON(cmd, res)
			}
			fmt.Fprintln(cmd.OutOrStdout(), res.Display)
			return nil
		},
	}

	cmd.Flags().StringVarP(&c.category, "category", "c", "", "category of both units (see: unitconv categories)")
	_ = cmd.MarkFlagRequired("category")
	return cmd
}

func newMenuCommand(opts *rootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "menu",
		Short: "Pick category, units and value interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return application.Run(cmd.Context(), opts.service, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}
