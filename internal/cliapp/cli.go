package cliapp

import "flag"

const versionString = "1.0.0"
const defaultConfigPath = "./lattice.toml"

type cliOptions struct {
	configPath string
	once       bool
	watch      bool
	ui         bool
	validate   bool
	path       string
	prereqs    string
	neighbors  string
	depth      int
	centrality int
	bridges    string
	rebuild    bool
	verbose    bool
	version    bool
	args       []string
}

func parseOptions(args []string) (cliOptions, error) {
	var opts cliOptions
	fs := flag.NewFlagSet("lattice", flag.ContinueOnError)

	fs.StringVar(&opts.configPath, "config", defaultConfigPath, "Path to config file")
	fs.BoolVar(&opts.once, "once", false, "Build the graph once, print a summary, and exit")
	fs.BoolVar(&opts.watch, "watch", false, "Watch the content directory and rebuild on change")
	fs.BoolVar(&opts.ui, "ui", false, "Enable terminal UI mode")
	fs.BoolVar(&opts.validate, "validate", false, "Validate the graph and exit non-zero on errors")
	fs.StringVar(&opts.path, "path", "", "Find the shortest path between two nodes (from:to)")
	fs.StringVar(&opts.prereqs, "prereqs", "", "List prerequisites of a node in learning order")
	fs.StringVar(&opts.neighbors, "neighbors", "", "Explore the neighborhood of a node")
	fs.IntVar(&opts.depth, "depth", 1, "Neighborhood depth for -neighbors")
	fs.IntVar(&opts.centrality, "centrality", 0, "Print the N most connected nodes")
	fs.StringVar(&opts.bridges, "bridges", "", "Find nodes bridging two categories (catA:catB)")
	fs.BoolVar(&opts.rebuild, "rebuild", false, "Ignore the cache and rebuild from content")
	fs.BoolVar(&opts.verbose, "verbose", false, "Enable verbose logging")
	fs.BoolVar(&opts.version, "version", false, "Print version and exit")

	if err := fs.Parse(args); err != nil {
		return cliOptions{}, err
	}

	opts.args = fs.Args()
	return opts, nil
}
