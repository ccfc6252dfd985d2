package entities

// Semantic names of the target application's elements. Renaming an identity
// on the target means changing its locator, never these names.
const (
	ElementEmailInput          = "email input"
	ElementPasswordInput       = "password input"
	ElementLoginSubmit         = "login submit"
	ElementErrorModal          = "error modal"
	ElementEmailRequired       = "email required indicator"
	ElementPasswordRequired    = "password required indicator"
	ElementForgotPasswordLink  = "forgot password link"
	ElementForgotEmailInput    = "forgot password email input"
	ElementForgotSubmit        = "forgot password submit"
	ElementForgotConfirmation  = "forgot password confirmation"
	ElementCountryCodeSelector = "country code selector"
)
