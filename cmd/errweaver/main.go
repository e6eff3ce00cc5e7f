// Command errweaver compiles the typed error response catalogue of a Go
// HTTP service into its OpenAPI document.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/spf13/cobra"

	"github.com/drblury/errweaver/artifact"
	"github.com/drblury/errweaver/compiler"
	"github.com/drblury/errweaver/routes"
	"github.com/drblury/errweaver/source"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:           "errweaver",
		Short:         "Discover typed error responses and weave them into an OpenAPI document",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log skipped constructs and dropped raise sites")

	root.AddCommand(newCompileCommand())
	return root
}

type compileOptions struct {
	dir     string
	out     string
	base    string
	modules []string
	title   string
	version string
}

func newCompileCommand() *cobra.Command {
	opts := &compileOptions{}

	cmd := &cobra.Command{
		Use:   "compile <pattern>:<routes-func>",
		Short: "Compile the error response catalogue of a service",
		Long: `Compile loads the packages matched by <pattern>, finds the route
registration function <routes-func>, statically walks every registered
handler and request dependency for panicked API errors, and writes the
augmented OpenAPI document.

Examples:
  errweaver compile ./...:RegisterRoutes
  errweaver compile ./cmd/api:RegisterRoutes --base openapi.json -o openapi.json
  errweaver compile ./...:RegisterRoutes -m github.com/acme/widgets`,
		Args:          cobra.ExactArgs(1),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.dir, "dir", ".", "working directory for package loading")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "openapi.json", "output artifact path")
	cmd.Flags().StringVar(&opts.base, "base", "", "existing OpenAPI document to merge into")
	cmd.Flags().StringArrayVarP(&opts.modules, "module", "m", nil, "target module prefix to analyze (repeatable; default: all loaded packages)")
	cmd.Flags().StringVar(&opts.title, "title", "API", "document title when no base document is given")
	cmd.Flags().StringVar(&opts.version, "version", "0.1.0", "document version when no base document is given")

	return cmd
}

func runCompile(target string, opts *compileOptions) error {
	pattern, routesFunc, ok := strings.Cut(target, ":")
	if !ok || pattern == "" || routesFunc == "" {
		return fmt.Errorf("invalid target %q, expected <pattern>:<routes-func>", target)
	}
	log := slog.Default()

	prog, err := source.LoadWithLogger(log, opts.dir, pattern)
	if err != nil {
		return err
	}

	descs, err := compiler.Discover(prog, routesFunc)
	if err != nil {
		return err
	}
	log.Info("Discovered routes", "count", len(descs))

	var modules *source.ModuleFilter
	if len(opts.modules) > 0 {
		modules = source.NewModuleFilter(opts.modules...)
	}

	c := compiler.New(prog, compiler.WithModules(modules), compiler.WithLogger(log))
	catalogue := c.Compile(descs)

	doc, err := baseDocument(opts, descs)
	if err != nil {
		return err
	}
	compiler.Merge(doc, catalogue)

	if err := artifact.Save(opts.out, doc); err != nil {
		return err
	}
	log.Info("Wrote artifact", "path", opts.out, "routes", len(descs))
	return nil
}

func baseDocument(opts *compileOptions, descs []routes.Descriptor) (*openapi3.T, error) {
	if opts.base != "" {
		return artifact.Load(opts.base)
	}
	return compiler.Skeleton(opts.title, opts.version, descs), nil
}
