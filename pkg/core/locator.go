package core

import "fmt"

// Locator strategies understood by W3C WebDriver and Appium servers.
const (
	ByID                 = "id"
	ByName               = "name"
	ByClassName          = "class name"
	ByTagName            = "tag name"
	ByLinkText           = "link text"
	ByPartialLinkText    = "partial link text"
	ByCSSSelector        = "css selector"
	ByXPath              = "xpath"
	ByAccessibilityID    = "accessibility id"
	ByAndroidUIAutomator = "-android uiautomator"
	ByIOSPredicate       = "-ios predicate string"
	ByIOSClassChain      = "-ios class chain"
)

// Locator identifies zero or more UI elements in the driver's query language.
// It is an opaque (strategy, value) pair; the engine never interprets Value.
type Locator struct {
	Strategy string
	Value    string
}

// By builds a locator.
func By(strategy, value string) Locator {
	return Locator{Strategy: strategy, Value: value}
}

// IsZero reports whether the locator has not been assigned yet.
func (l Locator) IsZero() bool {
	return l.Strategy == "" && l.Value == ""
}

func (l Locator) String() string {
	return fmt.Sprintf("(by=%q, value=%q)", l.Strategy, l.Value)
}
