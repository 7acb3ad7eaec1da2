package main

import (
	"github.com/spf13/cobra"
)

func newDiffCmd(root *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "diff <original> <modified>",
		Short: "Compare two files side by side",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiff(root, args[0], args[1])
		},
	}

	cmd.Flags().BoolVar(&root.collapse, "collapse", false, "Read-only review with unchanged regions folded")
	cmd.Flags().BoolVar(&root.originalReadOnly, "original-read-only", false, "Lock the original side")

	return cmd
}

func runDiff(flags *rootFlags, origPath, modPath string) error {
	e, err := setup(flags)
	if err != nil {
		return err
	}
	defer e.Close()

	props, err := baseProps(flags, e.cfg, modPath)
	if err != nil {
		return err
	}
	orig, err := readOptional(origPath)
	if err != nil {
		return err
	}
	mod, err := readOptional(modPath)
	if err != nil {
		return err
	}
	props.DiffView = true
	props.OriginalValue = orig
	props.ModifiedValue = mod
	return run(newApp(e.opts, props, [2]string{origPath, modPath}))
}
