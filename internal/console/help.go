package console

import (
	"fmt"
	"sort"
	"strings"
)

var commandHelp = map[string]string{
	"search": `Syntax: search <text>   (aliases: s, find)
Description: Runs a free-text search and clears any selected tag.
Example: search "lion king"`,

	"tag": `Syntax: tag <name>
Description: Shows movies with the tag. Picking the active tag again deselects it.
Example: tag princess`,

	"untag": `Syntax: untag
Description: Clears the selected tag without searching again.`,

	"tags": `Syntax: tags
Description: Reloads the common tag list from the backend.`,

	"more": `Syntax: more
Description: Reveals the next batch of tags.`,

	"sort": `Syntax: sort [release_date|budget|box_office|profit|relevancy] [asc|desc]
Description: Sorts the current results. Without arguments, toggles the sort menu.
Example: sort budget desc`,

	"order": `Syntax: order [asc|desc]
Description: Sets the sort order, or flips it when no argument is given.
Relevancy is always descending.`,

	"date": `Syntax: date [all_years|past_year|past_decade]
Description: Filters results by release date. Without arguments, toggles the date menu.`,

	"limit": `Syntax: limit [5|10|25|50|all]
Description: Caps the number of results. Without arguments, toggles the limit menu.`,

	"menu": `Syntax: menu <sort|date|limit>
Description: Opens a menu, closing any other. Opening the open menu closes it.`,

	"pick": `Syntax: pick <option>
Description: Chooses an option from the open menu.
Example: menu limit, then pick 25`,

	"close": `Syntax: close
Description: Closes the open menu.`,

	"next": `Syntax: next   (alias: n)
Description: Scrolls the results forward one page.`,

	"prev": `Syntax: prev   (alias: p)
Description: Scrolls the results back one page.`,

	"show": `Syntax: show
Description: Redraws tags, options and the current page.`,

	"layout": `Syntax: layout <cards|table>   (shortcuts: cards, table)
Description: Switches how results are drawn.`,

	"refresh": `Syntax: refresh
Description: Repeats the current search against the backend.`,

	"exit": `Syntax: exit   (alias: quit)
Description: Leaves the browser.`,
}

func helpText(args []string) string {
	if len(args) > 0 {
		name := strings.ToLower(args[0])
		if help, ok := commandHelp[name]; ok {
			return help
		}
		return fmt.Sprintf("Unknown command: %s", args[0])
	}

	names := make([]string, 0, len(commandHelp))
	for name := range commandHelp {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString("Available commands:\n")
	for _, name := range names {
		b.WriteString("  " + name + "\n")
	}
	b.WriteString("\nUse 'help <command>' for details.")
	return b.String()
}
