package cli

import (
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/devicelab-dev/pagekit/pkg/element"
	"github.com/devicelab-dev/pagekit/pkg/gesture"
)

var directions = map[string]gesture.Offset{
	"up":          gesture.Up,
	"down":        gesture.Down,
	"left":        gesture.Left,
	"right":       gesture.Right,
	"upper-left":  gesture.UpperLeft,
	"upper-right": gesture.UpperRight,
	"lower-left":  gesture.LowerLeft,
	"lower-right": gesture.LowerRight,
}

var swipeCommand = &cli.Command{
	Name:  "swipe",
	Usage: "Swipe until an element is viewable inside an area",
	Description: `Scroll in the given direction until the element appears, then
issue fine correction swipes until its border lies inside the
target area.

Examples:
  pagekit --caps caps.yaml swipe --by xpath --value "//Row[20]" --toward up
  pagekit --caps caps.yaml swipe --by id --value footer --toward up --area 0,0.2,1,0.6`,
	Flags: append([]cli.Flag{
		&cli.StringFlag{
			Name:  "toward",
			Usage: "Scroll direction (up, down, left, right, upper-left, ...)",
			Value: "up",
		},
		&cli.Float64SliceFlag{
			Name:  "area",
			Usage: "Target area as window fractions: x,y,width,height",
		},
		&cli.IntFlag{
			Name:  "max-round",
			Usage: "Maximum scroll rounds (0 disables scrolling)",
			Value: element.DefaultMaxRound,
		},
		&cli.IntFlag{
			Name:  "max-adjustment",
			Usage: "Maximum fine correction rounds (0 disables corrections)",
			Value: element.DefaultMaxAdjustment,
		},
		&cli.IntFlag{
			Name:  "min-distance",
			Usage: "Minimum correction swipe length in pixels",
			Value: element.DefaultMinDistance,
		},
		&cli.IntFlag{
			Name:  "duration",
			Usage: "Gesture duration in milliseconds (0 flicks)",
			Value: element.DefaultSwipeDuration,
		},
		&cli.DurationFlag{
			Name:  "swipe-timeout",
			Usage: "Per-round presence check budget",
			Value: element.DefaultSwipeTimeout,
		},
	}, locatorFlags...),
	Action: runSwipe,
}

func runSwipe(c *cli.Context) error {
	offset, ok := directions[c.String("toward")]
	if !ok {
		return fmt.Errorf("unknown direction %q", c.String("toward"))
	}

	opts := []element.SwipeOption{
		element.Toward(offset),
		element.MaxRound(c.Int("max-round")),
		element.MaxAdjustment(c.Int("max-adjustment")),
		element.MinDistance(c.Int("min-distance")),
		element.SwipeDuration(c.Int("duration")),
		element.SwipeTimeout(c.Duration("swipe-timeout")),
	}
	if vals := c.Float64Slice("area"); len(vals) > 0 {
		if len(vals) != 4 {
			return fmt.Errorf("--area expects x,y,width,height")
		}
		opts = append(opts, element.WithinArea(gesture.RelArea(vals[0], vals[1], vals[2], vals[3])))
	}

	p, cleanup, err := setup(c)
	if err != nil {
		return err
	}
	defer cleanup()

	e := elementFrom(c, p)
	start := time.Now()
	res, err := e.SwipeBy(opts...)
	if err != nil {
		return err
	}
	fmt.Printf("viewable=%t aligned=%t swipes=%d adjustments=%d elapsed=%s\n",
		res.Viewable, res.Aligned, res.SwipeRounds, res.AdjustRounds,
		time.Since(start).Round(time.Millisecond))
	return nil
}
