// Package ui holds the seams between screen controllers and whatever renders
// them: navigation, blocking alerts and confirmation prompts.
package ui

import "fmt"

// Screen names a destination.
type Screen string

const (
	ScreenLanding  Screen = "landing"
	ScreenLogin    Screen = "login"
	ScreenRegister Screen = "register"
	ScreenFeed     Screen = "feed"
	ScreenProject  Screen = "project"
	ScreenEdit     Screen = "edit"
	ScreenCreate   Screen = "create"
	ScreenProfile  Screen = "profile"
	ScreenSaved    Screen = "saved"
)

// Route is a screen plus the id it is about, if any.
type Route struct {
	Screen Screen
	ID     string
}

// String renders the route as a path.
func (r Route) String() string {
	switch r.Screen {
	case ScreenLanding:
		return "/"
	case ScreenProject, ScreenEdit, ScreenProfile:
		if r.ID != "" {
			return fmt.Sprintf("/%s/%s", r.Screen, r.ID)
		}
	}
	return "/" + string(r.Screen)
}

func Landing() Route { return Route{Screen: ScreenLanding} }
func Login() Route { return Route{Screen: ScreenLogin} }
func Feed() Route { return Route{Screen: ScreenFeed} }
func Project(id string) Route { return Route{Screen: ScreenProject, ID: id} }
func Edit(id string) Route { return Route{Screen: ScreenEdit, ID: id} }
func Profile(userID string) Route { return Route{Screen: ScreenProfile, ID: userID} }

// Navigator moves the user to another screen.
type Navigator interface {
	Navigate(to Route)
}

// Alerter shows a blocking message.
type Alerter interface {
	Alert(message string)
}

// Confirmer asks the user a yes/no question.
type Confirmer interface {
	Confirm(question string) bool
}

// Nop ignores navigation and alerts and declines every confirmation.
type Nop struct{}

func (Nop) Navigate(Route)      {}
func (Nop) Alert(string)        {}
func (Nop) Confirm(string) bool { return false }
