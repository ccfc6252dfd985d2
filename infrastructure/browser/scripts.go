package browser

// Element scripts receive the resolved element as their first argument
const (
	validationMessageScript = `el => el.validationMessage || ""`
	attributeScript         = `(el, name) => el.getAttribute(name)`
)

// WebDriver scripts take the element as arguments[0]
const (
	textContentArgScript       = `return arguments[0].textContent;`
	validationMessageArgScript = `return arguments[0].validationMessage || "";`
	attributeArgScript         = `return arguments[0].getAttribute(arguments[1]);`
)
