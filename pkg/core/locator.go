package core

import "fmt"

// Locator strategies understood by Appium.
const (
	StrategyXPath           = "xpath"
	StrategyAccessibilityID = "accessibility id"
	StrategyID              = "id"
	StrategyClassName       = "class name"
	StrategyUIAutomator     = "-android uiautomator"
	StrategyIOSPredicate    = "-ios predicate string"
	StrategyIOSClassChain   = "-ios class chain"
)

// By describes how to find an element on screen.
type By struct {
	Using string `json:"using"`
	Value string `json:"value"`
}

func ByXPath(xpath string) By            { return By{Using: StrategyXPath, Value: xpath} }
func ByAccessibilityID(id string) By     { return By{Using: StrategyAccessibilityID, Value: id} }
func ByID(id string) By                  { return By{Using: StrategyID, Value: id} }
func ByClassName(name string) By         { return By{Using: StrategyClassName, Value: name} }
func ByUIAutomator(selector string) By   { return By{Using: StrategyUIAutomator, Value: selector} }
func ByIOSPredicate(predicate string) By { return By{Using: StrategyIOSPredicate, Value: predicate} }
func ByIOSClassChain(chain string) By    { return By{Using: StrategyIOSClassChain, Value: chain} }

// IsZero reports whether the locator is unset.
func (b By) IsZero() bool {
	return b.Using == "" && b.Value == ""
}

// String describes the locator for logs and error messages.
func (b By) String() string {
	return fmt.Sprintf("By.%s(%s)", b.Using, b.Value)
}
