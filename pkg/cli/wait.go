package cli

import (
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/devicelab-dev/pagekit/pkg/core"
	"github.com/devicelab-dev/pagekit/pkg/element"
	"github.com/devicelab-dev/pagekit/pkg/page"
)

// locatorFlags are shared by every element-targeting command.
var locatorFlags = []cli.Flag{
	&cli.StringFlag{
		Name:     "by",
		Usage:    "Locator strategy (id, xpath, accessibility id, ...)",
		Required: true,
	},
	&cli.StringFlag{
		Name:     "value",
		Usage:    "Locator value",
		Required: true,
	},
	&cli.IntFlag{
		Name:  "index",
		Usage: "Pick the index-th match of a multi-match query",
		Value: -1,
	},
	&cli.StringFlag{
		Name:  "remark",
		Usage: "Element name used in logs and messages",
	},
}

func elementFrom(c *cli.Context, p *page.Page) *element.Element {
	loc := core.By(c.String("by"), c.String("value"))
	var opts []element.Option
	if i := c.Int("index"); i >= 0 {
		opts = append(opts, element.WithIndex(i))
	}
	if r := c.String("remark"); r != "" {
		opts = append(opts, element.WithRemark(r))
	}
	return p.Define("target", loc, opts...)
}

var waitCommand = &cli.Command{
	Name:      "wait",
	Usage:     "Wait for an element to reach a state",
	ArgsUsage: "<state>",
	Description: `Wait until the element reaches the given state. States:
present, absent, visible, invisible, clickable, unclickable,
selected, unselected.

Examples:
  pagekit --caps caps.yaml wait visible --by "accessibility id" --value Login
  pagekit --caps caps.yaml wait absent --by id --value spinner --timeout 10s`,
	Flags: append([]cli.Flag{
		&cli.DurationFlag{
			Name:  "timeout",
			Usage: "Wait budget (default: configured timeout)",
		},
		&cli.BoolFlag{
			Name:  "absorb",
			Usage: "Report timeout as a result instead of an error",
		},
		&cli.BoolFlag{
			Name:  "allow-absent",
			Usage: "Accept absence for invisible/unclickable waits",
		},
	}, locatorFlags...),
	Action: runWait,
}

func runWait(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("expected exactly one state argument")
	}
	state, err := element.ParseState(c.Args().First())
	if err != nil {
		return err
	}

	p, cleanup, err := setup(c)
	if err != nil {
		return err
	}
	defer cleanup()

	e := elementFrom(c, p)
	var opts []element.WaitOption
	if d := c.Duration("timeout"); d > 0 {
		opts = append(opts, element.Within(d))
	}
	if c.Bool("absorb") {
		opts = append(opts, element.Reraise(false))
	}
	if c.Bool("allow-absent") {
		opts = append(opts, element.AllowAbsent())
	}

	res, err := e.WaitFor(state, opts...)
	if err != nil {
		return err
	}
	fmt.Printf("state=%s satisfied=%t absent=%t elapsed=%s\n",
		state, res.Satisfied, res.Absent, res.Elapsed.Round(time.Millisecond))
	return nil
}
