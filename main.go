package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	logging "github.com/op/go-logging"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/chazu/simplex/pkg/config"
	"github.com/chazu/simplex/pkg/loader"
	"github.com/chazu/simplex/pkg/orient"
	"github.com/chazu/simplex/pkg/scene"
	"github.com/chazu/simplex/pkg/simplex"
	"github.com/chazu/simplex/pkg/volume"
)

// Version is the release version, set at build time.
var Version = "0.1.0"

var log = logging.MustGetLogger("simplex")

var helpTemplate = `NAME:
{{.Name}} - {{.Usage}}

USAGE:
{{.Name}} {{if .Flags}}[flags] {{end}}command [arguments...]

COMMANDS:
	{{range .Commands}}{{join .Names ", "}}{{ "\t" }}{{.Usage}}
	{{end}}{{if .Flags}}
FLAGS:
	{{range .Flags}}{{.}}
	{{end}}{{end}}
`

var globalFlags = []cli.Flag{
	cli.StringFlag{
		Name:  "config, c",
		Usage: "Load configuration from `FILE` (default $SIMPLEX_CONFIG or simplex.toml)",
	},
}

var jsonFlag = cli.BoolFlag{Name: "json", Usage: "Print results as JSON"}

// cmd carries the App and the output stream through command actions.
type cmd struct {
	app *App
	out io.Writer
}

func newApp(out io.Writer) *cli.App {
	c := &cmd{out: out}

	app := cli.NewApp()
	app.Name = "simplex"
	app.Usage = "ray casting queries against closed simplicial complexes"
	app.Version = Version
	app.Writer = out
	app.Flags = globalFlags
	app.CustomAppHelpTemplate = helpTemplate
	app.Before = c.before
	app.Commands = []cli.Command{
		{
			Name:      "run",
			Usage:     "Evaluate a scene script and run its queries",
			ArgsUsage: "SCRIPT",
			Flags:     []cli.Flag{jsonFlag},
			Action:    c.run,
		},
		{
			Name:      "contains",
			Usage:     "Classify points as inside or outside a complex",
			ArgsUsage: "COMPLEX POINT...",
			Action:    c.contains,
		},
		{
			Name:      "cross",
			Usage:     "Count the simplices each segment crosses",
			ArgsUsage: "COMPLEX SEGMENT...",
			Action:    c.cross,
		},
		{
			Name:      "intersect",
			Usage:     "Report the first crossing of each segment",
			ArgsUsage: "COMPLEX SEGMENT...",
			Flags:     []cli.Flag{jsonFlag},
			Action:    c.intersect,
		},
		{
			Name:      "volume",
			Usage:     "Compute the signed volume (length, area) enclosed by a complex",
			ArgsUsage: "COMPLEX",
			Flags: []cli.Flag{
				cli.BoolFlag{Name: "no-orient", Usage: "Use the simplices as given instead of orienting first"},
			},
			Action: c.volume,
		},
		{
			Name:      "normals",
			Usage:     "Print per-simplex unit normals",
			ArgsUsage: "COMPLEX",
			Flags: []cli.Flag{
				cli.BoolFlag{Name: "outward", Usage: "Orient normals away from the bounded region"},
				cli.BoolFlag{Name: "upward", Usage: "Flip normals to a non-negative last component"},
			},
			Action: c.normals,
		},
		{
			Name:      "orient",
			Usage:     "Write the complex with every simplex oriented outward",
			ArgsUsage: "COMPLEX",
			Action:    c.orient,
		},
		{
			Name:      "check",
			Usage:     "Check that a complex is closed",
			ArgsUsage: "COMPLEX",
			Action:    c.check,
		},
		{
			Name:   "version",
			Usage:  "Print the version",
			Action: c.version,
		},
	}
	return app
}

func (c *cmd) before(ctx *cli.Context) error {
	cfg, err := config.FromEnv(ctx.GlobalString("config"))
	if err != nil {
		return cli.NewExitError(color.RedString("Error loading config: %s", err), 2)
	}
	if err := cfg.SetupLogging(); err != nil {
		return cli.NewExitError(color.RedString("Error configuring logging: %s", err), 2)
	}
	c.app = NewApp(cfg)
	return nil
}

func fail(format string, args ...interface{}) error {
	return cli.NewExitError(color.RedString(format, args...), 1)
}

func (c *cmd) run(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return fail("run: expected one script, got %d arguments", ctx.NArg())
	}
	src, err := os.ReadFile(ctx.Args().First())
	if err != nil {
		return fail("run: %s", err)
	}
	log.Infof("evaluating %s", ctx.Args().First())

	res := c.app.Evaluate(string(src))
	if ctx.Bool("json") {
		if err := c.writeJSON(res); err != nil {
			return err
		}
	} else {
		c.printResult(res)
	}
	if len(res.Errors) > 0 {
		return cli.NewExitError("", 1)
	}
	return nil
}

func (c *cmd) printResult(res EvalResult) {
	for _, e := range res.Errors {
		if e.Line > 0 {
			fmt.Fprintln(c.out, color.RedString("line %d: %s", e.Line, e.Message))
		} else {
			fmt.Fprintln(c.out, color.RedString("%s", e.Message))
		}
	}
	if res.Complex != nil {
		fmt.Fprintf(c.out, "complex: %dD, %d vertices, %d simplices\n",
			res.Complex.Dim, res.Complex.Vertices, res.Complex.Simplices)
	}
	for _, q := range res.Queries {
		if q.Error != "" {
			fmt.Fprintln(c.out, color.RedString("%s", q.Summary))
			continue
		}
		fmt.Fprintln(c.out, q.Summary)
	}
}

// loadWithArgs loads the complex named by the first argument and returns
// the remaining arguments.
func (c *cmd) loadWithArgs(ctx *cli.Context, name string, minArgs int) (*simplex.Complex, []string, error) {
	if ctx.NArg() < 1+minArgs {
		return nil, nil, fail("%s: expected a complex file and at least %d more arguments", name, minArgs)
	}
	cx, err := loader.Load(ctx.Args().First())
	if err != nil {
		return nil, nil, fail("%s: %s", name, err)
	}
	log.Infof("loaded %s: %dD, %d simplices", ctx.Args().First(), cx.Dim(), cx.Len())
	return cx, ctx.Args().Tail(), nil
}

func (c *cmd) contains(ctx *cli.Context) error {
	cx, args, err := c.loadWithArgs(ctx, "contains", 1)
	if err != nil {
		return err
	}
	pts, err := parsePoints(args)
	if err != nil {
		return fail("contains: %s", err)
	}
	inside, err := c.app.Runner().Caster.Contains(pts, cx)
	if err != nil {
		return fail("contains: %s", err)
	}
	for i, in := range inside {
		if in {
			fmt.Fprintf(c.out, "%s\t%s\n", args[i], color.GreenString("inside"))
		} else {
			fmt.Fprintf(c.out, "%s\t%s\n", args[i], color.YellowString("outside"))
		}
	}
	return nil
}

func (c *cmd) cross(ctx *cli.Context) error {
	cx, args, err := c.loadWithArgs(ctx, "cross", 1)
	if err != nil {
		return err
	}
	start, end, err := parseSegments(args)
	if err != nil {
		return fail("cross: %s", err)
	}
	counts, err := c.app.Runner().Caster.CrossCount(start, end, cx)
	if err != nil {
		return fail("cross: %s", err)
	}
	for i, n := range counts {
		fmt.Fprintf(c.out, "%s\t%d\n", args[i], n)
	}
	return nil
}

func (c *cmd) intersect(ctx *cli.Context) error {
	cx, args, err := c.loadWithArgs(ctx, "intersect", 1)
	if err != nil {
		return err
	}
	start, end, err := parseSegments(args)
	if err != nil {
		return fail("intersect: %s", err)
	}
	_, results, err := c.app.Runner().Run(&scene.Scene{
		Complex: cx,
		Queries: []scene.Query{{Kind: scene.QueryIntersect, Start: start, End: end}},
	})
	if err != nil {
		return fail("intersect: %s", err)
	}
	r := results[0]
	if r.Err != nil {
		return fail("intersect: %s", r.Err)
	}
	if ctx.Bool("json") {
		return c.writeJSON(queryData(r))
	}
	for i := range r.Indices {
		fmt.Fprintf(c.out, "%s\tsimplex %d at %s normal %s\n",
			args[i], r.Indices[i], formatPoint(r.Points[i]), formatPoint(r.Normals[i]))
	}
	return nil
}

func (c *cmd) volume(ctx *cli.Context) error {
	cx, _, err := c.loadWithArgs(ctx, "volume", 0)
	if err != nil {
		return err
	}
	var o volume.Orienter
	if !ctx.Bool("no-orient") {
		o = c.app.Runner().Orienter
	}
	v, err := volume.Compute(cx, o)
	if err != nil {
		return fail("volume: %s", err)
	}
	fmt.Fprintln(c.out, strconv.FormatFloat(v, 'g', -1, 64))
	return nil
}

func (c *cmd) normals(ctx *cli.Context) error {
	cx, _, err := c.loadWithArgs(ctx, "normals", 0)
	if err != nil {
		return err
	}
	var normals [][]float64
	switch {
	case ctx.Bool("outward") && ctx.Bool("upward"):
		return fail("normals: --outward and --upward are exclusive")
	case ctx.Bool("outward"):
		normals, err = c.app.Runner().Orienter.OutwardNormals(cx)
	case ctx.Bool("upward"):
		normals, err = orient.UpwardNormals(cx)
	default:
		normals, err = orient.Normals(cx)
	}
	if err != nil {
		return fail("normals: %s", err)
	}
	for i, n := range normals {
		fmt.Fprintf(c.out, "%d\t%s\n", i, formatPoint(n))
	}
	return nil
}

func (c *cmd) orient(ctx *cli.Context) error {
	cx, _, err := c.loadWithArgs(ctx, "orient", 0)
	if err != nil {
		return err
	}
	oriented, err := c.app.Runner().Orienter.Oriented(cx)
	if err != nil {
		return fail("orient: %s", err)
	}
	return loader.Write(c.out, oriented)
}

func (c *cmd) check(ctx *cli.Context) error {
	cx, _, err := c.loadWithArgs(ctx, "check", 0)
	if err != nil {
		return err
	}
	r := simplex.Validate(cx)
	if r.OK() {
		fmt.Fprintln(c.out, color.GreenString("closed"))
		return nil
	}
	for _, e := range r.Errors {
		fmt.Fprintln(c.out, color.RedString("%s", e.Error()))
	}
	return cli.NewExitError(color.RedString("%d problems", len(r.Errors)), 1)
}

func (c *cmd) version(ctx *cli.Context) error {
	fmt.Fprintln(c.out, Version)
	return nil
}

func (c *cmd) writeJSON(v interface{}) error {
	enc := json.NewEncoder(c.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// parsePoint parses "x", "x,y" or "x,y,z".
func parsePoint(s string) ([]float64, error) {
	fields := strings.Split(s, ",")
	if len(fields) > simplex.MaxDim {
		return nil, fmt.Errorf("point %q has %d coordinates, want at most %d", s, len(fields), simplex.MaxDim)
	}
	p := make([]float64, len(fields))
	for i, f := range fields {
		x, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return nil, fmt.Errorf("point %q: %w", s, err)
		}
		p[i] = x
	}
	return p, nil
}

func parsePoints(args []string) ([][]float64, error) {
	pts := make([][]float64, len(args))
	for i, a := range args {
		p, err := parsePoint(a)
		if err != nil {
			return nil, err
		}
		pts[i] = p
	}
	return pts, nil
}

// parseSegments parses arguments of the form "x,y:x,y".
func parseSegments(args []string) (start, end [][]float64, err error) {
	for _, a := range args {
		parts := strings.Split(a, ":")
		if len(parts) != 2 {
			return nil, nil, fmt.Errorf("segment %q: want START:END", a)
		}
		p, err := parsePoint(parts[0])
		if err != nil {
			return nil, nil, err
		}
		q, err := parsePoint(parts[1])
		if err != nil {
			return nil, nil, err
		}
		start = append(start, p)
		end = append(end, q)
	}
	return start, end, nil
}

func formatPoint(p []float64) string {
	parts := make([]string, len(p))
	for i, x := range p {
		parts[i] = strconv.FormatFloat(x, 'g', 6, 64)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// main relies on cli to exit with the code of any ExitCoder it returns.
func main() {
	if err := newApp(os.Stdout).Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("%s", err))
		os.Exit(1)
	}
}
