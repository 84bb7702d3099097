package application

import (
	"fmt"

	"github.com/JonMunkholm/unitconv/internal/core"
	tea "github.com/charmbracelet/bubbletea"
)

/* ----------------------------------------
	MENU TREE
---------------------------------------- */

type MenuItem struct {
	Label   string
	Submenu *Menu
	Action  func() tea.Cmd
}

type Menu struct {
	Title  string
	Items  []MenuItem
	Parent *Menu
}

const backLabel = "Back"

/* ----------------------------------------
	MENU TREE DEFINITION
---------------------------------------- */

// linkParents sets Parent on menu and every nested submenu, and points
// "Back" items at the parent.
func linkParents(menu *Menu, parent *Menu) {
	menu.Parent = parent

	for i := range menu.Items {
		item := &menu.Items[i]

		if item.Label == backLabel {
			item.Submenu = parent
			continue
		}

		if item.Submenu != nil {
			linkParents(item.Submenu, menu)
		}
	}
}

// emit returns an Action that sends msg.
func emit(msg tea.Msg) func() tea.Cmd {
	return func() tea.Cmd {
		return func() tea.Msg { return msg }
	}
}

// buildRootMenu lists the categories.
func buildRootMenu(svc *core.Service) *Menu {
	root := &Menu{Title: "Select Category"}
	for _, name := range svc.Categories() {
		root.Items = append(root.Items, MenuItem{
			Label:  name + " ->",
			Action: emit(categoryMsg(name)),
		})
	}
	root.Items = append(root.Items, MenuItem{Label: "Quit", Action: func() tea.Cmd { return tea.Quit }})

	linkParents(root, nil)
	return root
}

/* ----------------------------------------
	LOAD MENUS
---------------------------------------- */

// loadFromMenu lists the units a conversion in category may start from.
func loadFromMenu(svc *core.Service, category string, parent *Menu) *Menu {
	info, err := svc.Describe(category)
	if err != nil {
		return loadErrorMenu(category, err, parent)
	}

	menu := &Menu{Title: fmt.Sprintf("%s - From Unit", category)}
	for _, u := range info.SourceUnits {
		menu.Items = append(menu.Items, MenuItem{Label: u, Action: emit(fromMsg(u))})
	}
	menu.Items = append(menu.Items, MenuItem{Label: backLabel})

	linkParents(menu, parent)
	return menu
}

// loadToMenu lists the target units of category.
func loadToMenu(svc *core.Service, category, from string, parent *Menu) *Menu {
	names, err := svc.Units(category)
	if err != nil {
		return loadErrorMenu(category, err, parent)
	}

	menu := &Menu{Title: fmt.Sprintf("%s - %s to", category, from)}
	for _, u := range names {
		menu.Items = append(menu.Items, MenuItem{Label: u, Action: emit(toMsg(u))})
	}
	menu.Items = append(menu.Items, MenuItem{Label: backLabel})

	linkParents(menu, parent)
	return menu
}

func loadErrorMenu(title string, err error, parent *Menu) *Menu {
	menu := &Menu{
		Title: title,
		Items: []MenuItem{
			{Label: "Error: " + core.FormatUserError(err)},
			{Label: backLabel},
		},
	}
	linkParents(menu, parent)
	return menu
}
