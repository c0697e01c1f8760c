// Package config resolves a project descriptor into the build configuration
// handed to the bundler.
//
// The descriptor lives at the project root as .demosrc.js (or .ts, .yaml,
// .yml, .json). Script descriptors may export an object or a function of the
// environment name:
//
//	export default (env) => ({
//	  output: env === "production" ? { dir: "dist", publicUrl: "/docs/" } : "tmp",
//	  devServer: { port: 8080 },
//	  demosPath: "demos",
//	  themeFile: "theme.scss",
//	});
//
// Static descriptors express the same through an env section:
//
//	output: tmp
//	env:
//	  production:
//	    output:
//	      dir: dist
//	      publicUrl: /docs/
//
// # Usage
//
//	cfg, err := config.Resolve(".", config.Options{Env: "production", Logger: logger})
//	if err != nil {
//	    return err
//	}
//
//	fmt.Println("Output:", cfg.Output.Path)
package config
