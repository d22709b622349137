package cli

import (
	"fmt"
	"time"

	"github.com/urfave/cli/v2"
)

var statusCommand = &cli.Command{
	Name:  "status",
	Usage: "Report an element's current states",
	Description: `Probe the element and print whether it is present, visible,
clickable and selected. Absent elements report all false.`,
	Flags: append([]cli.Flag{
		&cli.DurationFlag{
			Name:  "timeout",
			Usage: "Presence probe budget",
			Value: 3 * time.Second,
		},
	}, locatorFlags...),
	Action: runStatus,
}

func runStatus(c *cli.Context) error {
	p, cleanup, err := setup(c)
	if err != nil {
		return err
	}
	defer cleanup()

	e := elementFrom(c, p)
	present, err := e.IsPresent(c.Duration("timeout"))
	if err != nil {
		return err
	}
	if !present {
		fmt.Println("present=false visible=false clickable=false selected=false")
		return nil
	}

	visible, err := e.IsVisible()
	if err != nil {
		return err
	}
	clickable, err := e.IsClickable()
	if err != nil {
		return err
	}
	selected, err := e.IsSelected()
	if err != nil {
		return err
	}
	fmt.Printf("present=true visible=%t clickable=%t selected=%t\n",
		visible, clickable, selected)
	return nil
}
