package assets

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
)

const shimNamespace = "node-shim"

// aliasPlugin maps virtual module names, and anything below them, onto paths.
func aliasPlugin(aliases map[string]string) api.Plugin {
	names := make([]string, 0, len(aliases))
	for name := range aliases {
		names = append(names, name)
	}
	slices.Sort(names)

	return api.Plugin{
		Name: "demosify-alias",
		Setup: func(pb api.PluginBuild) {
			for _, name := range names {
				target := aliases[name]
				pb.OnResolve(api.OnResolveOptions{
					Filter: "^" + regexp.QuoteMeta(name) + "(/.*)?$",
				}, func(args api.OnResolveArgs) (api.OnResolveResult, error) {
					path := target
					if rest := strings.TrimPrefix(args.Path, name); rest != "" {
						path = filepath.Join(target, filepath.FromSlash(rest))
					}

					result := pb.Resolve(path, api.ResolveOptions{
						Importer:   args.Importer,
						ResolveDir: args.ResolveDir,
						Kind:       args.Kind,
					})
					if len(result.Errors) > 0 {
						errs := make([]error, len(result.Errors))
						for i, msg := range result.Errors {
							errs[i] = errors.New(msg.Text)
						}
						return api.OnResolveResult{}, fmt.Errorf("alias %s: %w", name, errors.Join(errs...))
					}

					return api.OnResolveResult{Path: result.Path, Namespace: result.Namespace}, nil
				})
			}
		},
	}
}

// nodeShimPlugin resolves node built-ins marked "empty" to an empty module.
func nodeShimPlugin(shims map[string]string) api.Plugin {
	var empty []string
	for name, kind := range shims {
		if kind == "empty" {
			empty = append(empty, regexp.QuoteMeta(name))
		}
	}
	slices.Sort(empty)

	return api.Plugin{
		Name: "demosify-node-shims",
		Setup: func(pb api.PluginBuild) {
			if len(empty) == 0 {
				return
			}

			pb.OnResolve(api.OnResolveOptions{
				Filter: "^(" + strings.Join(empty, "|") + ")$",
			}, func(args api.OnResolveArgs) (api.OnResolveResult, error) {
				return api.OnResolveResult{Path: args.Path, Namespace: shimNamespace}, nil
			})

			pb.OnLoad(api.OnLoadOptions{
				Filter:    ".*",
				Namespace: shimNamespace,
			}, func(args api.OnLoadArgs) (api.OnLoadResult, error) {
				contents := "module.exports = {};"
				return api.OnLoadResult{Contents: &contents, Loader: api.LoaderJS}, nil
			})
		},
	}
}
