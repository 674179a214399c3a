// Command sconfig converts and inspects serialized configuration files
// without needing the Go types that produced them.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/zoobzio/sconfig"
	"github.com/zoobzio/sconfig/bson"
	"github.com/zoobzio/sconfig/json"
	"github.com/zoobzio/sconfig/msgpack"
	"github.com/zoobzio/sconfig/yaml"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "sconfig",
		Short:        "Convert and inspect serialized configuration files",
		SilenceUsage: true,
	}
	root.AddCommand(
		newConvertCmd(),
		newGetCmd(),
		newPathsCmd(),
	)
	return root
}

func newConvertCmd() *cobra.Command {
	var comments bool
	cmd := &cobra.Command{
		Use:   "convert <in> <out>",
		Short: "Convert a file between formats chosen by extension",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := openSource(args[0])
			if err != nil {
				return err
			}
			out, err := openSource(args[1], sconfig.WithComments(comments))
			if err != nil {
				return err
			}

			tree, err := in.Load(cmd.Context())
			if err != nil {
				return err
			}
			if tree == nil {
				return fmt.Errorf("%w: %s", sconfig.ErrNoData, args[0])
			}
			return out.Save(cmd.Context(), tree)
		},
	}
	cmd.Flags().BoolVar(&comments, "comments", false, "write field comments when the output format supports them")
	return cmd
}

func newGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <file> <path>",
		Short: "Print the value at a dotted path",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			tree, err := loadTree(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			v, err := lookup(tree, sconfig.SplitPath(args[1]))
			if err != nil {
				return err
			}
			return printValue(cmd, v)
		},
	}
}

func newPathsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "paths <file>",
		Short: "List the leaf paths of a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tree, err := loadTree(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			for _, p := range leafPaths(tree, "") {
				fmt.Fprintln(cmd.OutOrStdout(), p)
			}
			return nil
		},
	}
}

// formatFor picks a format from a file extension.
func formatFor(path string) (sconfig.Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.New(), nil
	case ".json":
		return json.New(), nil
	case ".msgpack", ".mp":
		return msgpack.New(), nil
	case ".bson":
		return bson.New(), nil
	}
	return nil, fmt.Errorf("unsupported file extension %q", filepath.Ext(path))
}

func openSource(path string, opts ...sconfig.SourceOption) (*sconfig.Source, error) {
	format, err := formatFor(path)
	if err != nil {
		return nil, err
	}
	return sconfig.NewFileSource(path, format, opts...), nil
}

func loadTree(ctx context.Context, path string) (any, error) {
	src, err := openSource(path)
	if err != nil {
		return nil, err
	}
	tree, err := src.Load(ctx)
	if err != nil {
		return nil, err
	}
	if tree == nil {
		return nil, fmt.Errorf("%w: %s", sconfig.ErrNoData, path)
	}
	return tree, nil
}

func printValue(cmd *cobra.Command, v any) error {
	switch v.(type) {
	case map[string]any, []any:
		data, err := yaml.New().Marshal(v)
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}
	_, err := fmt.Fprintln(cmd.OutOrStdout(), sconfig.FormatText(v))
	return err
}
