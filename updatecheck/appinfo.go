package updatecheck

import "strconv"

// CheckType distinguishes timer-driven checks from user-requested ones in
// the query sent to the update server.
type CheckType int

const (
	// CheckTypeAutomatic marks checks fired by the periodic schedule.
	CheckTypeAutomatic CheckType = 0
	// CheckTypeManual marks checks forced by the user.
	CheckTypeManual CheckType = 1
)

func (t CheckType) code() string {
	return strconv.Itoa(int(t))
}

// AppInfo identifies the component checking for updates and its host
// application. It is immutable for the lifetime of a Manager.
type AppInfo struct {
	// Name is the add-on or component identifier known to the update server.
	Name string
	// Version is the currently installed component version.
	Version string
	// Application and ApplicationVersion identify the host application.
	Application        string
	ApplicationVersion string
	// DevBuild selects the development-builds endpoint template.
	DevBuild bool
}
