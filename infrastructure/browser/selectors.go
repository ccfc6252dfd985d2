package browser

import (
	"fmt"
	"strings"

	"auth_harness/domain/entities"
)

// playwrightSelector maps a locator onto playwright's selector engines
func playwrightSelector(loc entities.Locator) (string, error) {
	switch loc.Strategy {
	case entities.ByID:
		return "id=" + loc.Pattern, nil
	case entities.ByXPath:
		return "xpath=" + loc.Pattern, nil
	case entities.ByCSS:
		return "css=" + loc.Pattern, nil
	case entities.ByTextMatch:
		return "text=" + loc.Pattern, nil
	case entities.ByRole:
		role, name := loc.Role()
		if name == "" {
			return "role=" + role, nil
		}
		return fmt.Sprintf(`role=%s[name="%s"]`, role, escapeAttributeValue(name)), nil
	default:
		return "", fmt.Errorf("%w: %s", entities.ErrUnsupportedStrategy, loc.Strategy)
	}
}

func escapeAttributeValue(s string) string {
	return strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s)
}

// roleXPaths approximates implicit ARIA roles for drivers that only speak XPath
var roleXPaths = map[string]string{
	"button":   "//button | //input[@type='submit' or @type='button' or @type='reset'] | //*[@role='button']",
	"link":     "//a[@href] | //*[@role='link']",
	"textbox":  "//input[not(@type) or @type='text' or @type='email' or @type='tel' or @type='url' or @type='search' or @type='password'] | //textarea | //*[@role='textbox']",
	"heading":  "//h1 | //h2 | //h3 | //h4 | //h5 | //h6 | //*[@role='heading']",
	"alert":    "//*[@role='alert']",
	"dialog":   "//dialog | //*[@role='dialog']",
	"combobox": "//select | //*[@role='combobox']",
	"checkbox": "//input[@type='checkbox'] | //*[@role='checkbox']",
}

// toXPath converts a locator into an XPath expression. CSS selectors have no
// general XPath form and are rejected; callers route them natively.
func toXPath(loc entities.Locator) (string, error) {
	switch loc.Strategy {
	case entities.ByID:
		return fmt.Sprintf("//*[@id=%s]", xpathLiteral(loc.Pattern)), nil
	case entities.ByXPath:
		return loc.Pattern, nil
	case entities.ByTextMatch:
		lit := xpathLiteral(loc.Pattern)
		return fmt.Sprintf("//*[contains(normalize-space(.), %[1]s)][not(*[contains(normalize-space(.), %[1]s)])]", lit), nil
	case entities.ByRole:
		role, name := loc.Role()
		base, ok := roleXPaths[role]
		if !ok {
			base = fmt.Sprintf("//*[@role=%s]", xpathLiteral(role))
		}
		if name == "" {
			return base, nil
		}
		lit := xpathLiteral(name)
		return fmt.Sprintf("(%s)[normalize-space(.)=%[2]s or @aria-label=%[2]s or @value=%[2]s or @title=%[2]s]", base, lit), nil
	default:
		return "", fmt.Errorf("%w: %s has no xpath form", entities.ErrUnsupportedStrategy, loc.Strategy)
	}
}

// xpathLiteral quotes s for use inside an XPath 1.0 expression
func xpathLiteral(s string) string {
	if !strings.Contains(s, "'") {
		return "'" + s + "'"
	}
	if !strings.Contains(s, `"`) {
		return `"` + s + `"`
	}
	parts := strings.Split(s, "'")
	quoted := make([]string, 0, len(parts)*2)
	for i, part := range parts {
		if i > 0 {
			quoted = append(quoted, `"'"`)
		}
		if part != "" {
			quoted = append(quoted, "'"+part+"'")
		}
	}
	return "concat(" + strings.Join(quoted, ", ") + ")"
}
