package appium

import (
	"fmt"

	"github.com/devicelab-dev/pagekit/pkg/core"
)

// FindElement locates a single element. A query matching nothing returns
// core.ErrNoSuchElement.
func (c *Client) FindElement(loc core.Locator) (core.Handle, error) {
	body := map[string]interface{}{
		"using": loc.Strategy,
		"value": loc.Value,
	}

	resp, err := c.post(c.sessionPath()+"/element", body)
	if err != nil {
		return nil, err
	}

	value, ok := resp["value"].(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("invalid element response")
	}
	id := extractElementID(value)
	if id == "" {
		return nil, fmt.Errorf("%w: empty element id", core.ErrNoSuchElement)
	}
	return &handle{id: id, client: c}, nil
}

// FindElements locates all matching elements. Zero matches is an empty
// slice, not an error.
func (c *Client) FindElements(loc core.Locator) ([]core.Handle, error) {
	body := map[string]interface{}{
		"using": loc.Strategy,
		"value": loc.Value,
	}

	resp, err := c.post(c.sessionPath()+"/elements", body)
	if err != nil {
		return nil, err
	}

	values, ok := resp["value"].([]interface{})
	if !ok {
		return nil, fmt.Errorf("invalid elements response")
	}

	handles := make([]core.Handle, 0, len(values))
	for _, v := range values {
		if elem, ok := v.(map[string]interface{}); ok {
			if id := extractElementID(elem); id != "" {
				handles = append(handles, &handle{id: id, client: c})
			}
		}
	}
	return handles, nil
}

// WindowRect returns the current window rect.
func (c *Client) WindowRect() (core.Rect, error) {
	resp, err := c.get(c.sessionPath() + "/window/rect")
	if err != nil {
		return core.Rect{}, err
	}
	value, ok := resp["value"].(map[string]interface{})
	if !ok {
		return core.Rect{}, fmt.Errorf("invalid window rect response")
	}
	return rectFrom(value), nil
}

// Swipe performs a swipe gesture using W3C pointer actions.
func (c *Client) Swipe(startX, startY, endX, endY, durationMs int) error {
	return c.performTouchAction([]map[string]interface{}{
		{"type": "pointerMove", "duration": 0, "x": startX, "y": startY},
		{"type": "pointerDown", "button": 0},
		{"type": "pointerMove", "duration": durationMs, "x": endX, "y": endY},
		{"type": "pointerUp", "button": 0},
	})
}

// Flick performs a fast swipe with a minimal move duration.
func (c *Client) Flick(startX, startY, endX, endY int) error {
	return c.performTouchAction([]map[string]interface{}{
		{"type": "pointerMove", "duration": 0, "x": startX, "y": startY},
		{"type": "pointerDown", "button": 0},
		{"type": "pointerMove", "duration": 50, "x": endX, "y": endY},
		{"type": "pointerUp", "button": 0},
	})
}

func (c *Client) performTouchAction(actions []map[string]interface{}) error {
	payload := []map[string]interface{}{
		{
			"type":       "pointer",
			"id":         "finger1",
			"parameters": map[string]interface{}{"pointerType": "touch"},
			"actions":    actions,
		},
	}
	_, err := c.post(c.sessionPath()+"/actions", map[string]interface{}{"actions": payload})
	return err
}

func rectFrom(value map[string]interface{}) core.Rect {
	x, _ := value["x"].(float64)
	y, _ := value["y"].(float64)
	w, _ := value["width"].(float64)
	h, _ := value["height"].(float64)
	return core.Rect{X: int(x), Y: int(y), Width: int(w), Height: int(h)}
}
