package appium

import (
	"fmt"

	"github.com/devicelab-dev/pagekit/pkg/core"
)

// handle is a W3C element reference. Every method is a round-trip; a handle
// whose UI node is gone reports core.ErrStaleElement via the wire error
// mapping in the client.
type handle struct {
	id     string
	client *Client
}

func (h *handle) ID() string { return h.id }

func (h *handle) IsDisplayed() (bool, error) {
	return h.boolProp("/displayed")
}

func (h *handle) IsEnabled() (bool, error) {
	return h.boolProp("/enabled")
}

func (h *handle) IsSelected() (bool, error) {
	return h.boolProp("/selected")
}

func (h *handle) boolProp(suffix string) (bool, error) {
	resp, err := h.client.get(h.client.elementPath(h.id) + suffix)
	if err != nil {
		return false, err
	}
	v, _ := resp["value"].(bool)
	return v, nil
}

func (h *handle) Rect() (core.Rect, error) {
	resp, err := h.client.get(h.client.elementPath(h.id) + "/rect")
	if err != nil {
		return core.Rect{}, err
	}
	value, ok := resp["value"].(map[string]interface{})
	if !ok {
		return core.Rect{}, fmt.Errorf("invalid rect response")
	}
	return rectFrom(value), nil
}

func (h *handle) Text() (string, error) {
	resp, err := h.client.get(h.client.elementPath(h.id) + "/text")
	if err != nil {
		return "", err
	}
	text, _ := resp["value"].(string)
	return text, nil
}

func (h *handle) Attribute(name string) (string, error) {
	resp, err := h.client.get(h.client.elementPath(h.id) + "/attribute/" + name)
	if err != nil {
		return "", err
	}
	value, _ := resp["value"].(string)
	return value, nil
}

func (h *handle) Click() error {
	_, err := h.client.post(h.client.elementPath(h.id)+"/click", nil)
	return err
}

func (h *handle) Clear() error {
	_, err := h.client.post(h.client.elementPath(h.id)+"/clear", nil)
	return err
}

func (h *handle) SendKeys(text string) error {
	_, err := h.client.post(h.client.elementPath(h.id)+"/value", map[string]interface{}{
		"text": text,
	})
	return err
}
